// models/notificacao.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificacaoSeveridade string

const (
	NotificacaoInfo    NotificacaoSeveridade = "info"
	NotificacaoSucesso NotificacaoSeveridade = "sucesso"
	NotificacaoAlerta  NotificacaoSeveridade = "alerta"
	NotificacaoErro    NotificacaoSeveridade = "erro"
)

// Notificacao is one in-app notification row. Delivery is fire and
// forget: a failed insert is logged and never aborts the operation
// that produced it.
type Notificacao struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`

	Titulo     string                `gorm:"size:200;not null" json:"titulo"`
	Mensagem   string                `gorm:"type:text;not null" json:"mensagem"`
	Severidade NotificacaoSeveridade `gorm:"size:20;default:'info'" json:"severidade"`
	Link       string                `gorm:"size:500" json:"link,omitempty"`

	// What triggered it, for deep links and filtering.
	CotacaoID  *uuid.UUID `gorm:"type:uuid;index" json:"cotacaoId,omitempty"`
	PropostaID *uuid.UUID `gorm:"type:uuid;index" json:"propostaId,omitempty"`
	PedidoID   *uuid.UUID `gorm:"type:uuid;index" json:"pedidoId,omitempty"`

	Lida   bool       `gorm:"default:false;index" json:"lida"`
	LidaEm *time.Time `json:"lidaEm,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
