// handlers/notification_service.go
package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/middleware"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// NotificationService writes in-app notification rows. It is fire and
// forget by contract: callers never see its errors, only the log does.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService() *NotificationService {
	return &NotificationService{db: config.DB}
}

// NotifyRef links a notification to the record that triggered it.
type NotifyRef struct {
	CotacaoID  *uuid.UUID
	PropostaID *uuid.UUID
	PedidoID   *uuid.UUID
}

// Notify persists one notification for userID. Failures are logged and
// swallowed so the calling operation always proceeds.
func (ns *NotificationService) Notify(userID uuid.UUID, titulo, mensagem string, severidade models.NotificacaoSeveridade, link string, ref NotifyRef) {
	if userID == uuid.Nil {
		return
	}
	n := models.Notificacao{
		UserID:     userID,
		Titulo:     titulo,
		Mensagem:   mensagem,
		Severidade: severidade,
		Link:       link,
		CotacaoID:  ref.CotacaoID,
		PropostaID: ref.PropostaID,
		PedidoID:   ref.PedidoID,
	}
	if err := ns.db.Create(&n).Error; err != nil {
		log.Printf("❌ notificação não enviada para %s (%s): %v", userID, titulo, err)
	}
}

// ListNotificacoes returns the caller's notifications, newest first.
func ListNotificacoes(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == uuid.Nil {
		respondError(w, http.StatusUnauthorized, "não autenticado")
		return
	}

	var notificacoes []models.Notificacao
	q := config.DB.Where("user_id = ?", userID).Order("created_at DESC").Limit(100)
	if r.URL.Query().Get("naoLidas") == "true" {
		q = q.Where("lida = ?", false)
	}
	if err := q.Find(&notificacoes).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar notificações")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": notificacoes})
}

// MarcarNotificacaoLida marks one of the caller's notifications read.
func MarcarNotificacaoLida(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	id := mux.Vars(r)["id"]

	now := time.Now()
	result := config.DB.Model(&models.Notificacao{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"lida": true, "lida_em": now})
	if result.Error != nil {
		respondError(w, http.StatusInternalServerError, "erro ao atualizar notificação")
		return
	}
	if result.RowsAffected == 0 {
		respondError(w, http.StatusNotFound, "notificação não encontrada")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
