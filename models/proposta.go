// models/proposta.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PropostaStatusEnviada  = "enviada"
	PropostaStatusAceita   = "aceita"
	PropostaStatusRecusada = "recusada"
)

const (
	DisponibilidadeDisponivel   = "disponivel"
	DisponibilidadeIndisponivel = "indisponivel"
	DisponibilidadeParcial      = "parcial"
)

// Proposta is one supplier's priced answer to one cotação. The unique
// index on (cotacao_id, fornecedor_id) makes the insert the
// serialization point: a duplicate-key error means another submission
// won and the caller falls back to update-in-place.
type Proposta struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CotacaoID    uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_proposta_cotacao_fornecedor" json:"cotacaoId"`
	Cotacao      *Cotacao    `gorm:"foreignKey:CotacaoID" json:"cotacao,omitempty"`
	FornecedorID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_proposta_cotacao_fornecedor" json:"fornecedorId"`
	Fornecedor   *Fornecedor `gorm:"foreignKey:FornecedorID" json:"fornecedor,omitempty"`

	Status        string  `gorm:"size:20;not null;default:'enviada';index" json:"status"`
	ValorTotal    float64 `gorm:"not null" json:"valorTotal"`
	ValorFrete    float64 `gorm:"default:0" json:"valorFrete"`
	ValorImpostos float64 `gorm:"default:0" json:"valorImpostos"`

	// nil means the supplier did not state a lead time; 0 means immediate.
	PrazoEntregaDias   *int      `json:"prazoEntregaDias,omitempty"`
	CondicoesPagamento *string   `gorm:"size:200" json:"condicoesPagamento,omitempty"`
	Observacoes        string    `gorm:"type:text" json:"observacoes,omitempty"`
	EnviadaEm          time.Time `gorm:"not null" json:"enviadaEm"`
	Validade           *JSONTime `json:"validade,omitempty"`

	Itens []PropostaItem `gorm:"foreignKey:PropostaID" json:"itens,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// PropostaItem prices one cotação line. Resubmission deletes and
// reinserts the whole set, so items never accumulate across versions.
type PropostaItem struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PropostaID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"propostaId"`
	CotacaoItemID *uuid.UUID `gorm:"type:uuid;index" json:"cotacaoItemId,omitempty"`

	Nome            string  `gorm:"size:200;not null" json:"nome"`
	PrecoUnitario   float64 `gorm:"not null" json:"precoUnitario"`
	Quantidade      float64 `gorm:"not null" json:"quantidade"`
	Subtotal        float64 `gorm:"not null" json:"subtotal"`
	Disponibilidade string  `gorm:"size:20;not null;default:'indisponivel'" json:"disponibilidade"`
	// nil means not specified; 0 means immediate delivery.
	PrazoDias   *int   `json:"prazoDias,omitempty"`
	Observacoes string `gorm:"size:300" json:"observacoes,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
