// models/mensagem.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Mensagem is one negotiation-room message. RoomID is either a bare
// pedido/cotação id or the composite "<cotacaoId>::<fornecedorId>"
// form; access is resolved per request, never stored here.
type Mensagem struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RoomID string    `gorm:"size:80;not null;index" json:"roomId"`

	RemetenteID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"remetenteId"`
	DestinatarioID *uuid.UUID `gorm:"type:uuid;index" json:"destinatarioId,omitempty"`

	CotacaoID *uuid.UUID `gorm:"type:uuid;index" json:"cotacaoId,omitempty"`
	PedidoID  *uuid.UUID `gorm:"type:uuid;index" json:"pedidoId,omitempty"`

	Conteudo string `gorm:"type:text;not null" json:"conteudo"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
