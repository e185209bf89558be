// models/cadastro.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Cliente is the buying side of the marketplace (construtora). Every
// cotação and pedido hangs off a Cliente, never directly off a User.
type Cliente struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UsuarioID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"usuarioId"`
	Usuario     *User     `gorm:"foreignKey:UsuarioID" json:"usuario,omitempty"`
	NomeEmpresa string    `gorm:"size:200;not null" json:"nomeEmpresa"`
	CNPJ        string    `gorm:"size:18;index" json:"cnpj"`
	Telefone    string    `gorm:"size:20" json:"telefone"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Fornecedor is the selling side. Group memberships drive which
// cotações the supplier is allowed to see (see handlers/grupo_router.go).
type Fornecedor struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UsuarioID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"usuarioId"`
	Usuario     *User     `gorm:"foreignKey:UsuarioID" json:"usuario,omitempty"`
	NomeEmpresa string    `gorm:"size:200;not null" json:"nomeEmpresa"`
	CNPJ        string    `gorm:"size:18;index" json:"cnpj"`
	Telefone    string    `gorm:"size:20" json:"telefone"`

	Grupos []GrupoInsumo `gorm:"many2many:fornecedor_grupos" json:"grupos,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Obra is a construction site owned by a Cliente. Cotações are always
// raised against one obra.
type Obra struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClienteID uuid.UUID `gorm:"type:uuid;index;not null" json:"clienteId"`
	Cliente   *Cliente  `gorm:"foreignKey:ClienteID" json:"cliente,omitempty"`
	Nome      string    `gorm:"size:200;not null" json:"nome"`
	Endereco  string    `gorm:"size:300" json:"endereco"`
	Cidade    string    `gorm:"size:100" json:"cidade"`
	Estado    string    `gorm:"size:2" json:"estado"`
	CEP       string    `gorm:"size:9" json:"cep"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
