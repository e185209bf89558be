// models/pedido.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Status de pedido, na ordem do fluxo do fornecedor. Transições só
// andam para frente; ver handlers.CanTransitionPedido.
const (
	PedidoStatusPendente     = "pendente"
	PedidoStatusConfirmado   = "confirmado"
	PedidoStatusEmPreparacao = "em_preparacao"
	PedidoStatusEnviado      = "enviado"
	PedidoStatusEntregue     = "entregue"
)

// ResumoFinanceiro is the financial summary kept inside the pedido
// snapshot. Status updates may merge-patch it; proposta amendments
// rewrite it via the sync path.
type ResumoFinanceiro struct {
	Subtotal         float64 `json:"subtotal"`
	Frete            float64 `json:"frete"`
	Impostos         float64 `json:"impostos"`
	PrazoEntregaDias *int    `json:"prazoEntregaDias,omitempty"`
	FormaPagamento   *string `json:"formaPagamento,omitempty"`
}

// PedidoSnapshot freezes the parties, line items and financial summary
// as they were when the pedido was created from the winning proposta.
type PedidoSnapshot struct {
	Cliente    SnapshotParte    `json:"cliente"`
	Fornecedor SnapshotParte    `json:"fornecedor"`
	Obra       SnapshotObra     `json:"obra"`
	Itens      []SnapshotItem   `json:"itens"`
	Resumo     ResumoFinanceiro `json:"resumo"`
}

type SnapshotParte struct {
	ID          uuid.UUID `json:"id"`
	NomeEmpresa string    `json:"nomeEmpresa"`
	CNPJ        string    `json:"cnpj,omitempty"`
	Telefone    string    `json:"telefone,omitempty"`
	Email       string    `json:"email,omitempty"`
}

type SnapshotObra struct {
	ID       uuid.UUID `json:"id"`
	Nome     string    `json:"nome"`
	Endereco string    `json:"endereco,omitempty"`
	Cidade   string    `json:"cidade,omitempty"`
	Estado   string    `json:"estado,omitempty"`
}

type SnapshotItem struct {
	Nome          string  `json:"nome"`
	Quantidade    float64 `json:"quantidade"`
	Unidade       string  `json:"unidade,omitempty"`
	PrecoUnitario float64 `json:"precoUnitario"`
	Subtotal      float64 `json:"subtotal"`
}

// Pedido is one supplier's fulfillment obligation, created from one
// accepted proposta (PropostaID may be nil on legacy rows). One pedido
// per (cotação, fornecedor), enforced by unique index.
type Pedido struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Numero       string      `gorm:"size:40;index;not null" json:"numero"`
	CotacaoID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_pedido_cotacao_fornecedor" json:"cotacaoId"`
	Cotacao      *Cotacao    `gorm:"foreignKey:CotacaoID" json:"cotacao,omitempty"`
	PropostaID   *uuid.UUID  `gorm:"type:uuid;index" json:"propostaId,omitempty"`
	ClienteID    uuid.UUID   `gorm:"type:uuid;index;not null" json:"clienteId"`
	Cliente      *Cliente    `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	FornecedorID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_pedido_cotacao_fornecedor" json:"fornecedorId"`
	Fornecedor   *Fornecedor `gorm:"foreignKey:FornecedorID" json:"fornecedor,omitempty"`
	ObraID       uuid.UUID   `gorm:"type:uuid;index;not null" json:"obraId"`
	Obra         *Obra       `gorm:"foreignKey:ObraID" json:"obra,omitempty"`

	Status        string  `gorm:"size:20;not null;default:'pendente';index" json:"status"`
	ValorTotal    float64 `gorm:"not null" json:"valorTotal"`
	ValorImpostos float64 `gorm:"default:0" json:"valorImpostos"`

	Snapshot datatypes.JSON `gorm:"type:jsonb" json:"snapshot,omitempty"`

	NotaFiscalURL  *string `gorm:"size:500" json:"notaFiscalUrl,omitempty"`
	NotaFiscalNome *string `gorm:"size:200" json:"notaFiscalNome,omitempty"`

	ConfirmadoEm        *time.Time `json:"confirmadoEm,omitempty"`
	EntregueEm          *time.Time `json:"entregueEm,omitempty"`
	DataEntregaPrevista *time.Time `json:"dataEntregaPrevista,omitempty"`

	Itens []PedidoItem `gorm:"foreignKey:PedidoID" json:"itens,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type PedidoItem struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PedidoID uuid.UUID `gorm:"type:uuid;index;not null" json:"pedidoId"`

	Nome          string  `gorm:"size:200;not null" json:"nome"`
	Quantidade    float64 `gorm:"not null" json:"quantidade"`
	Unidade       string  `gorm:"size:20" json:"unidade"`
	PrecoUnitario float64 `gorm:"not null" json:"precoUnitario"`
	Subtotal      float64 `gorm:"not null" json:"subtotal"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// DecodeSnapshot unmarshals the jsonb snapshot; missing or malformed
// snapshots come back zero-valued rather than erroring the caller.
func (p *Pedido) DecodeSnapshot() PedidoSnapshot {
	var snap PedidoSnapshot
	if len(p.Snapshot) > 0 {
		_ = json.Unmarshal(p.Snapshot, &snap)
	}
	return snap
}

// EncodeSnapshot marshals snap back onto the pedido row.
func (p *Pedido) EncodeSnapshot(snap PedidoSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	p.Snapshot = datatypes.JSON(raw)
	return nil
}
