// handlers/mensagens.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/middleware"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// ListMensagens returns the room's messages in chronological order.
// Access is resolved on every call, never cached on the rows.
func ListMensagens(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	roomID := mux.Vars(r)["roomId"]

	grant := NewAccessService().Resolve(roomID, userID)
	if !grant.Allowed {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var mensagens []models.Mensagem
	if err := config.DB.Where("room_id = ?", roomID).
		Order("created_at ASC").Find(&mensagens).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar mensagens")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": mensagens})
}

type postMensagemReq struct {
	Conteudo string `json:"conteudo"`
}

// PostMensagem records a message in the room, attributing it to the
// quote/pedido the access grant resolved and, when a counterparty
// exists, notifying them.
func PostMensagem(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	roomID := mux.Vars(r)["roomId"]

	grant := NewAccessService().Resolve(roomID, userID)
	if !grant.Allowed {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var req postMensagemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	req.Conteudo = strings.TrimSpace(req.Conteudo)
	if req.Conteudo == "" {
		respondError(w, http.StatusBadRequest, "mensagem vazia")
		return
	}

	mensagem := models.Mensagem{
		RoomID:      roomID,
		RemetenteID: userID,
		Conteudo:    req.Conteudo,
	}
	if grant.CounterpartyID != uuid.Nil {
		destinatario := grant.CounterpartyID
		mensagem.DestinatarioID = &destinatario
	}
	if grant.CotacaoID != uuid.Nil {
		cotacaoID := grant.CotacaoID
		mensagem.CotacaoID = &cotacaoID
	}
	if grant.PedidoID != uuid.Nil {
		pedidoID := grant.PedidoID
		mensagem.PedidoID = &pedidoID
	}

	if err := config.DB.Create(&mensagem).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao enviar mensagem")
		return
	}

	if grant.CounterpartyID != uuid.Nil {
		NewNotificationService().Notify(grant.CounterpartyID, "Nova mensagem",
			"Você recebeu uma nova mensagem na negociação", models.NotificacaoInfo,
			"/mensagens/"+roomID,
			NotifyRef{CotacaoID: mensagem.CotacaoID, PedidoID: mensagem.PedidoID})
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "mensagem": mensagem})
}
