// handlers/propostas.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// ErrCotacaoIndisponivel is the state-conflict error shown to suppliers
// when a quote no longer accepts proposal updates.
var ErrCotacaoIndisponivel = errors.New("esta cotação não aceita mais atualizações de proposta")

// PodeReceberProposta decides whether a supplier may submit or amend a
// proposta. Open quotes always accept. A closed quote still accepts
// only while the supplier's own pedido remains negotiable (pendente or
// confirmado), so pricing can be corrected between award and shipping.
func PodeReceberProposta(statusCotacao string, pedido *models.Pedido) error {
	switch statusCotacao {
	case models.CotacaoStatusEnviada, models.CotacaoStatusRespondida:
		return nil
	case models.CotacaoStatusFechada:
		if pedido == nil {
			return ErrCotacaoIndisponivel
		}
		if pedido.Status == models.PedidoStatusPendente || pedido.Status == models.PedidoStatusConfirmado {
			return nil
		}
		return ErrCotacaoIndisponivel
	default:
		return ErrCotacaoIndisponivel
	}
}

type propostaItemInput struct {
	CotacaoItemID   *uuid.UUID `json:"cotacaoItemId,omitempty"`
	Nome            string     `json:"nome"`
	PrecoUnitario   float64    `json:"precoUnitario"`
	Quantidade      float64    `json:"quantidade"`
	Subtotal        float64    `json:"subtotal"`
	Disponibilidade string     `json:"disponibilidade"`
	PrazoDias       *int       `json:"prazoDias,omitempty"`
	Observacoes     string     `json:"observacoes"`
}

type submitPropostaReq struct {
	ValorTotal         float64             `json:"valorTotal"`
	ValorFrete         float64             `json:"valorFrete"`
	ValorImpostos      float64             `json:"valorImpostos"`
	PrazoEntregaDias   *int                `json:"prazoEntregaDias,omitempty"`
	CondicoesPagamento *string             `json:"condicoesPagamento,omitempty"`
	Observacoes        string              `json:"observacoes"`
	Validade           *models.JSONTime    `json:"validade,omitempty"`
	Itens              []propostaItemInput `json:"itens"`
}

// montarItens normalizes the submitted line items: missing subtotals
// are computed and a missing availability tag defaults to indisponivel.
func montarItens(propostaID uuid.UUID, inputs []propostaItemInput) []models.PropostaItem {
	itens := make([]models.PropostaItem, 0, len(inputs))
	for _, in := range inputs {
		subtotal := in.Subtotal
		if subtotal == 0 {
			subtotal = in.PrecoUnitario * in.Quantidade
		}
		disponibilidade := in.Disponibilidade
		if disponibilidade == "" {
			disponibilidade = models.DisponibilidadeIndisponivel
		}
		itens = append(itens, models.PropostaItem{
			PropostaID:      propostaID,
			CotacaoItemID:   in.CotacaoItemID,
			Nome:            in.Nome,
			PrecoUnitario:   in.PrecoUnitario,
			Quantidade:      in.Quantidade,
			Subtotal:        subtotal,
			Disponibilidade: disponibilidade,
			PrazoDias:       in.PrazoDias,
			Observacoes:     in.Observacoes,
		})
	}
	return itens
}

// SubmitProposta creates or amends the caller's proposta on a cotação.
// Resubmission updates in place and replaces the line items wholesale,
// so one (cotação, fornecedor) pair never accumulates rows. When the
// quote is closed but the linked pedido is still negotiable, the
// amendment also propagates into the pedido (see pedido_sync.go).
func SubmitProposta(w http.ResponseWriter, r *http.Request) {
	fornecedor := currentFornecedor(r)
	if fornecedor == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	cotacaoID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "id de cotação inválido")
		return
	}

	var req submitPropostaReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if len(req.Itens) == 0 {
		respondError(w, http.StatusBadRequest, "a proposta precisa de pelo menos um item")
		return
	}

	var cotacao models.Cotacao
	if err := config.DB.First(&cotacao, "id = ?", cotacaoID).Error; err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "cotação não encontrada")
		} else {
			respondError(w, http.StatusInternalServerError, "erro ao buscar cotação")
		}
		return
	}

	// Negotiable-after-close exception needs the supplier's own pedido.
	var pedido *models.Pedido
	var pedidoRow models.Pedido
	if err := config.DB.Where("cotacao_id = ? AND fornecedor_id = ?", cotacao.ID, fornecedor.ID).
		First(&pedidoRow).Error; err == nil {
		pedido = &pedidoRow
	}

	if err := PodeReceberProposta(cotacao.Status, pedido); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var proposta models.Proposta
	atualizacao := false
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("cotacao_id = ? AND fornecedor_id = ?", cotacao.ID, fornecedor.ID).
			First(&proposta).Error
		switch {
		case err == nil:
			atualizacao = true
		case isNotFound(err):
			proposta = models.Proposta{CotacaoID: cotacao.ID, FornecedorID: fornecedor.ID}
			if err := tx.Create(&proposta).Error; err != nil {
				// Lost the race against a concurrent first submission:
				// the unique index decided, fall back to updating theirs.
				if strings.Contains(err.Error(), "duplicate key") {
					if err := tx.Where("cotacao_id = ? AND fornecedor_id = ?", cotacao.ID, fornecedor.ID).
						First(&proposta).Error; err != nil {
						return err
					}
					atualizacao = true
				} else {
					return err
				}
			}
		default:
			return err
		}

		proposta.Status = models.PropostaStatusEnviada
		proposta.ValorTotal = req.ValorTotal
		proposta.ValorFrete = req.ValorFrete
		proposta.ValorImpostos = req.ValorImpostos
		proposta.PrazoEntregaDias = req.PrazoEntregaDias
		proposta.CondicoesPagamento = req.CondicoesPagamento
		proposta.Observacoes = req.Observacoes
		proposta.Validade = req.Validade
		proposta.EnviadaEm = time.Now()
		if err := tx.Save(&proposta).Error; err != nil {
			return err
		}

		if err := tx.Where("proposta_id = ?", proposta.ID).Delete(&models.PropostaItem{}).Error; err != nil {
			return err
		}
		itens := montarItens(proposta.ID, req.Itens)
		for i := range itens {
			if err := tx.Create(&itens[i]).Error; err != nil {
				return err
			}
		}
		proposta.Itens = itens

		// Amendment on a closed quote: push the new pricing into the
		// still-negotiable pedido before committing.
		if cotacao.Status == models.CotacaoStatusFechada && pedido != nil {
			if err := SyncPedidoComProposta(tx, pedido, &proposta); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao salvar proposta")
		return
	}

	notificarCliente(cotacao, fornecedor, proposta, atualizacao)

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "proposta": proposta})
}

// notificarCliente tells the quote owner a proposta arrived or changed.
func notificarCliente(cotacao models.Cotacao, fornecedor *models.Fornecedor, proposta models.Proposta, atualizacao bool) {
	var cliente models.Cliente
	if err := config.DB.First(&cliente, "id = ?", cotacao.ClienteID).Error; err != nil {
		return
	}

	titulo := "Nova proposta recebida"
	mensagem := fmt.Sprintf("%s enviou uma proposta de R$ %.2f para a cotação %s",
		fornecedor.NomeEmpresa, proposta.ValorTotal, cotacao.Numero)
	if atualizacao {
		titulo = "Proposta atualizada"
		mensagem = fmt.Sprintf("%s atualizou a proposta da cotação %s (novo total R$ %.2f)",
			fornecedor.NomeEmpresa, cotacao.Numero, proposta.ValorTotal)
	}

	NewNotificationService().Notify(cliente.UsuarioID, titulo, mensagem, models.NotificacaoInfo,
		"/cotacoes/"+cotacao.ID.String(),
		NotifyRef{CotacaoID: &cotacao.ID, PropostaID: &proposta.ID})
}

// ListMinhasPropostas returns the supplier's propostas with their
// cotação context.
func ListMinhasPropostas(w http.ResponseWriter, r *http.Request) {
	fornecedor := currentFornecedor(r)
	if fornecedor == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var propostas []models.Proposta
	if err := config.DB.Preload("Itens").Preload("Cotacao").Preload("Cotacao.Obra").
		Where("fornecedor_id = ?", fornecedor.ID).
		Order("created_at DESC").Find(&propostas).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar propostas")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": propostas})
}
