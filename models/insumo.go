// models/insumo.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GrupoInsumo is a material category ("Cimento", "Tijolos", ...).
// Routing of cotação items to suppliers is entirely group-driven.
type GrupoInsumo struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Nome      string    `gorm:"size:100;uniqueIndex;not null" json:"nome"`
	Descricao string    `gorm:"size:300" json:"descricao,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Insumo is a catalog material. GrupoID is the primary routing key for
// cotação items; items without a known insumo fall back to matching the
// group by name.
type Insumo struct {
	ID      uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GrupoID uuid.UUID    `gorm:"type:uuid;index;not null" json:"grupoId"`
	Grupo   *GrupoInsumo `gorm:"foreignKey:GrupoID" json:"grupo,omitempty"`
	Nome    string       `gorm:"size:200;not null;index" json:"nome"`
	Unidade string       `gorm:"size:20" json:"unidade"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
