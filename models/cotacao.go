// models/cotacao.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Status de cotação. "respondida" is never persisted: it is derived at
// view time whenever an open cotação already has at least one proposta.
const (
	CotacaoStatusEnviada    = "enviada"
	CotacaoStatusRespondida = "respondida"
	CotacaoStatusFechada    = "fechada"
)

// Cotacao is one client request for a single insumo group's materials
// on one obra. Multi-group submissions are split into one cotação per
// group before insert, so a cotação never mixes groups.
type Cotacao struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Numero    string    `gorm:"size:40;uniqueIndex;not null" json:"numero"`
	ClienteID uuid.UUID `gorm:"type:uuid;index;not null" json:"clienteId"`
	Cliente   *Cliente  `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	ObraID    uuid.UUID `gorm:"type:uuid;index;not null" json:"obraId"`
	Obra      *Obra     `gorm:"foreignKey:ObraID" json:"obra,omitempty"`

	Status      string    `gorm:"size:20;not null;default:'enviada';index" json:"status"`
	Observacoes string    `gorm:"type:text" json:"observacoes,omitempty"` // carries the [Grupo: X] marker
	Validade    *JSONTime `json:"validade,omitempty"`

	// Frozen at close time by order finalization; nil while open.
	QtdPropostas *int `json:"qtdPropostas,omitempty"`
	// Top-ranked proposta ids recorded at close time, reporting only.
	MelhoresPropostas pq.StringArray `gorm:"type:text[]" json:"melhoresPropostas,omitempty"`

	Itens []CotacaoItem `gorm:"foreignKey:CotacaoID" json:"itens,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CotacaoItem is one requested material line. InsumoID may be nil for
// free-text items; GrupoNome then carries the caller-supplied group
// label used by the router's name fallback.
type CotacaoItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CotacaoID uuid.UUID  `gorm:"type:uuid;index;not null" json:"cotacaoId"`
	InsumoID  *uuid.UUID `gorm:"type:uuid;index" json:"insumoId,omitempty"`

	Nome       string  `gorm:"size:200;not null" json:"nome"`
	Quantidade float64 `gorm:"not null" json:"quantidade"`
	Unidade    string  `gorm:"size:20" json:"unidade"`
	GrupoNome  string  `gorm:"size:100" json:"grupoNome"`
	Fase       *string `gorm:"size:100" json:"fase,omitempty"`
	Servico    *string `gorm:"size:100" json:"servico,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
