// handlers/pedidos.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/middleware"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// NumeroPedido derives the order number from the quote number: the
// sole surviving supplier inherits it unchanged; with k>1 survivors
// each order gets a 1-based ".N" suffix in processing order.
func NumeroPedido(numeroCotacao string, idx, total int) string {
	if total <= 1 {
		return numeroCotacao
	}
	return fmt.Sprintf("%s.%d", numeroCotacao, idx+1)
}

// CanTransitionPedido enforces the forward-only fulfillment flow
// pendente → confirmado → em_preparacao → enviado → entregue.
func CanTransitionPedido(from, to string) bool {
	ordem := map[string]int{
		models.PedidoStatusPendente:     0,
		models.PedidoStatusConfirmado:   1,
		models.PedidoStatusEmPreparacao: 2,
		models.PedidoStatusEnviado:      3,
		models.PedidoStatusEntregue:     4,
	}
	de, okDe := ordem[from]
	para, okPara := ordem[to]
	return okDe && okPara && para > de
}

// MensagemStatusPedido is the client-facing copy for each fulfillment
// stage.
func MensagemStatusPedido(status string) string {
	switch status {
	case models.PedidoStatusConfirmado:
		return "Seu pedido foi confirmado e está em faturamento"
	case models.PedidoStatusEmPreparacao:
		return "Seu pedido está em separação"
	case models.PedidoStatusEnviado:
		return "Seu pedido saiu para entrega"
	case models.PedidoStatusEntregue:
		return "Seu pedido foi entregue"
	default:
		return "Seu pedido foi atualizado"
	}
}

// DataPrevistaEntrega returns the expected delivery date: the explicit
// field when set, else creation date plus the summary's delivery days.
func DataPrevistaEntrega(pedido *models.Pedido) (time.Time, bool) {
	if pedido.DataEntregaPrevista != nil {
		return *pedido.DataEntregaPrevista, true
	}
	resumo := pedido.DecodeSnapshot().Resumo
	if resumo.PrazoEntregaDias != nil {
		return pedido.CreatedAt.AddDate(0, 0, *resumo.PrazoEntregaDias), true
	}
	return time.Time{}, false
}

// PedidoAtrasado reports late delivery: open orders compare now against
// the expected date, delivered orders compare the delivery timestamp.
func PedidoAtrasado(pedido *models.Pedido, now time.Time) bool {
	prevista, ok := DataPrevistaEntrega(pedido)
	if !ok {
		return false
	}
	referencia := now
	if pedido.Status == models.PedidoStatusEntregue && pedido.EntregueEm != nil {
		referencia = *pedido.EntregueEm
	}
	return referencia.After(prevista)
}

type pedidoItemInput struct {
	Nome          string  `json:"nome"`
	Quantidade    float64 `json:"quantidade"`
	Unidade       string  `json:"unidade"`
	PrecoUnitario float64 `json:"precoUnitario"`
	Total         float64 `json:"total"`
}

type fornecedorAwardInput struct {
	FornecedorID     uuid.UUID         `json:"fornecedorId"`
	PropostaID       *uuid.UUID        `json:"propostaId,omitempty"`
	Itens            []pedidoItemInput `json:"itens"`
	Frete            float64           `json:"frete"`
	Impostos         float64           `json:"impostos"`
	PrazoEntregaDias *int              `json:"prazoEntregaDias,omitempty"`
	FormaPagamento   *string           `json:"formaPagamento,omitempty"`
}

type finalizarReq struct {
	CotacaoID    uuid.UUID              `json:"cotacaoId"`
	ObraID       uuid.UUID              `json:"obraId"`
	Fornecedores []fornecedorAwardInput `json:"fornecedores"`
}

// DedupeAwards keeps only the first occurrence of each supplier in the
// request, preserving order.
func DedupeAwards(awards []fornecedorAwardInput) []fornecedorAwardInput {
	seen := map[uuid.UUID]bool{}
	out := make([]fornecedorAwardInput, 0, len(awards))
	for _, award := range awards {
		if seen[award.FornecedorID] {
			continue
		}
		seen[award.FornecedorID] = true
		out = append(out, award)
	}
	return out
}

// FiltrarSemPedido drops suppliers already awarded a pedido on this
// quote by a prior finalize call, making finalization idempotent per
// supplier.
func FiltrarSemPedido(awards []fornecedorAwardInput, jaAtendidos map[uuid.UUID]bool) []fornecedorAwardInput {
	out := make([]fornecedorAwardInput, 0, len(awards))
	for _, award := range awards {
		if jaAtendidos[award.FornecedorID] {
			continue
		}
		out = append(out, award)
	}
	return out
}

// PropostasVencedoras collects the proposta ids that must read aceita
// after a finalize round: the ids awarded now plus the ids behind
// pedidos created by earlier rounds on the same quote. Seeding with the
// earlier rounds keeps a later award from revoking a standing
// acceptance.
func PropostasVencedoras(awards []fornecedorAwardInput, existentes []models.Pedido) []uuid.UUID {
	seen := map[uuid.UUID]bool{}
	var ids []uuid.UUID
	for _, pedido := range existentes {
		if pedido.PropostaID != nil && !seen[*pedido.PropostaID] {
			seen[*pedido.PropostaID] = true
			ids = append(ids, *pedido.PropostaID)
		}
	}
	for _, award := range awards {
		if award.PropostaID != nil && !seen[*award.PropostaID] {
			seen[*award.PropostaID] = true
			ids = append(ids, *award.PropostaID)
		}
	}
	return ids
}

// FinalizarPedidos awards a cotação to one or more suppliers: creates
// one pedido per awarded supplier, flips every proposta to aceita or
// recusada and closes the quote with its proposal count frozen.
func FinalizarPedidos(w http.ResponseWriter, r *http.Request) {
	cliente := currentCliente(r)
	if cliente == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var req finalizarReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	var cotacao models.Cotacao
	if err := config.DB.Where("id = ? AND cliente_id = ?", req.CotacaoID, cliente.ID).First(&cotacao).Error; err != nil {
		respondError(w, http.StatusNotFound, "cotação não encontrada")
		return
	}
	var obra models.Obra
	if err := config.DB.Where("id = ? AND cliente_id = ?", req.ObraID, cliente.ID).First(&obra).Error; err != nil {
		respondError(w, http.StatusNotFound, "obra não encontrada")
		return
	}

	awards := DedupeAwards(req.Fornecedores)

	// Idempotency: suppliers already awarded on this quote are skipped,
	// checked against persisted pedidos, not just this request.
	var existentes []models.Pedido
	if err := config.DB.Where("cotacao_id = ? AND cliente_id = ?", cotacao.ID, cliente.ID).
		Find(&existentes).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao verificar pedidos existentes")
		return
	}
	jaAtendidos := map[uuid.UUID]bool{}
	for _, pedido := range existentes {
		jaAtendidos[pedido.FornecedorID] = true
	}
	awards = FiltrarSemPedido(awards, jaAtendidos)
	if len(awards) == 0 {
		respondError(w, http.StatusBadRequest, "todos os fornecedores selecionados já possuem pedido para esta cotação")
		return
	}

	// Proposal census before any mutation: the frozen count and the
	// top-3 ranking must reflect the state at close time.
	var todasPropostas []models.Proposta
	if err := config.DB.Where("cotacao_id = ?", cotacao.ID).
		Order("valor_total ASC").Find(&todasPropostas).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar propostas")
		return
	}
	qtdPropostas := len(todasPropostas)
	melhores := pq.StringArray{}
	for i, proposta := range todasPropostas {
		if i == 3 {
			break
		}
		melhores = append(melhores, proposta.ID.String())
	}

	clienteUser := fetchUser(cliente.UsuarioID)

	type notificacaoPendente struct {
		usuarioID uuid.UUID
		pedidoID  uuid.UUID
		numero    string
	}
	var criados []models.Pedido
	var pendentes []notificacaoPendente
	aceitas := PropostasVencedoras(awards, existentes)

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for i, award := range awards {
			var fornecedor models.Fornecedor
			if err := tx.Preload("Usuario").First(&fornecedor, "id = ?", award.FornecedorID).Error; err != nil {
				return fmt.Errorf("fornecedor %s: %w", award.FornecedorID, err)
			}

			var subtotal float64
			for _, item := range award.Itens {
				subtotal += item.Total
			}
			total := subtotal + award.Frete + award.Impostos

			snap := models.PedidoSnapshot{
				Cliente: models.SnapshotParte{
					ID:          cliente.ID,
					NomeEmpresa: cliente.NomeEmpresa,
					CNPJ:        cliente.CNPJ,
					Telefone:    cliente.Telefone,
				},
				Fornecedor: models.SnapshotParte{
					ID:          fornecedor.ID,
					NomeEmpresa: fornecedor.NomeEmpresa,
					CNPJ:        fornecedor.CNPJ,
					Telefone:    fornecedor.Telefone,
				},
				Obra: models.SnapshotObra{
					ID:       obra.ID,
					Nome:     obra.Nome,
					Endereco: obra.Endereco,
					Cidade:   obra.Cidade,
					Estado:   obra.Estado,
				},
				Resumo: models.ResumoFinanceiro{
					Subtotal:         subtotal,
					Frete:            award.Frete,
					Impostos:         award.Impostos,
					PrazoEntregaDias: award.PrazoEntregaDias,
					FormaPagamento:   award.FormaPagamento,
				},
			}
			if clienteUser != nil {
				snap.Cliente.Email = clienteUser.Email
			}
			if fornecedor.Usuario != nil {
				snap.Fornecedor.Email = fornecedor.Usuario.Email
			}
			for _, item := range award.Itens {
				snap.Itens = append(snap.Itens, models.SnapshotItem{
					Nome:          item.Nome,
					Quantidade:    item.Quantidade,
					Unidade:       item.Unidade,
					PrecoUnitario: item.PrecoUnitario,
					Subtotal:      item.Total,
				})
			}

			// idx/total count previously persisted pedidos too, so a later
			// round never reissues a number an earlier round already used.
			pedido := models.Pedido{
				Numero:        NumeroPedido(cotacao.Numero, len(existentes)+i, len(existentes)+len(awards)),
				CotacaoID:     cotacao.ID,
				PropostaID:    award.PropostaID,
				ClienteID:     cliente.ID,
				FornecedorID:  fornecedor.ID,
				ObraID:        obra.ID,
				Status:        models.PedidoStatusPendente,
				ValorTotal:    total,
				ValorImpostos: award.Impostos,
			}
			if award.PrazoEntregaDias != nil {
				prevista := time.Now().AddDate(0, 0, *award.PrazoEntregaDias)
				pedido.DataEntregaPrevista = &prevista
			}
			if err := pedido.EncodeSnapshot(snap); err != nil {
				return err
			}
			if err := tx.Create(&pedido).Error; err != nil {
				return fmt.Errorf("pedido para fornecedor %s: %w", fornecedor.ID, err)
			}
			for _, item := range award.Itens {
				pi := models.PedidoItem{
					PedidoID:      pedido.ID,
					Nome:          item.Nome,
					Quantidade:    item.Quantidade,
					Unidade:       item.Unidade,
					PrecoUnitario: item.PrecoUnitario,
					Subtotal:      item.Total,
				}
				if err := tx.Create(&pi).Error; err != nil {
					return err
				}
				pedido.Itens = append(pedido.Itens, pi)
			}

			criados = append(criados, pedido)
			if fornecedor.Usuario != nil {
				pendentes = append(pendentes, notificacaoPendente{
					usuarioID: fornecedor.Usuario.ID,
					pedidoID:  pedido.ID,
					numero:    pedido.Numero,
				})
			}
		}

		// Exactly the winning propostas read aceita, every other proposta
		// on the quote recusada. The winner set carries earlier rounds
		// (see PropostasVencedoras).
		if len(aceitas) > 0 {
			if err := tx.Model(&models.Proposta{}).
				Where("cotacao_id = ? AND id IN ?", cotacao.ID, aceitas).
				Update("status", models.PropostaStatusAceita).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Proposta{}).
				Where("cotacao_id = ? AND id NOT IN ?", cotacao.ID, aceitas).
				Update("status", models.PropostaStatusRecusada).Error; err != nil {
				return err
			}
		} else if err := tx.Model(&models.Proposta{}).
			Where("cotacao_id = ?", cotacao.ID).
			Update("status", models.PropostaStatusRecusada).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao criar pedidos")
		return
	}

	fechamentoErr := fecharCotacao(&cotacao, qtdPropostas, melhores)

	ns := NewNotificationService()
	for _, p := range pendentes {
		pedidoID := p.pedidoID
		cotacaoID := cotacao.ID
		ns.Notify(p.usuarioID, "Novo pedido recebido",
			fmt.Sprintf("Você recebeu o pedido %s de %s", p.numero, cliente.NomeEmpresa),
			models.NotificacaoSucesso, "/pedidos/"+pedidoID.String(),
			NotifyRef{CotacaoID: &cotacaoID, PedidoID: &pedidoID})
	}

	respondJSON(w, http.StatusCreated, ResultadoFinalizacao(criados, qtdPropostas, aceitas, fechamentoErr))
}

type finalizacaoResultado struct {
	Success            bool            `json:"success"`
	Pedidos            []models.Pedido `json:"pedidos"`
	CotacaoFechada     bool            `json:"cotacaoFechada"`
	QtdPropostas       int             `json:"qtdPropostas"`
	PropostasAceitas   int             `json:"propostasAceitas"`
	PropostasRecusadas int             `json:"propostasRecusadas"`
}

// ResultadoFinalizacao shapes the finalize response. CotacaoFechada is
// false when the post-commit close-out failed: the pedidos stand, and
// the caller sees the quote still needs closing instead of a clean
// success.
func ResultadoFinalizacao(criados []models.Pedido, qtdPropostas int, aceitas []uuid.UUID, fechamentoErr error) finalizacaoResultado {
	return finalizacaoResultado{
		Success:            true,
		Pedidos:            criados,
		CotacaoFechada:     fechamentoErr == nil,
		QtdPropostas:       qtdPropostas,
		PropostasAceitas:   len(aceitas),
		PropostasRecusadas: qtdPropostas - len(aceitas),
	}
}

// fecharCotacao closes the quote and freezes its proposal count. Older
// schemas lack the qtd_propostas column, so a failed update mentioning
// it is retried without the frozen count. Runs after the pedido
// transaction: a failure here leaves the orders in place and is
// reported back so the response can flag the quote as still open.
func fecharCotacao(cotacao *models.Cotacao, qtdPropostas int, melhores pq.StringArray) error {
	err := config.DB.Model(&models.Cotacao{}).Where("id = ?", cotacao.ID).
		Updates(map[string]interface{}{
			"status":             models.CotacaoStatusFechada,
			"qtd_propostas":      qtdPropostas,
			"melhores_propostas": melhores,
		}).Error
	if err != nil && strings.Contains(err.Error(), "qtd_propostas") {
		err = config.DB.Model(&models.Cotacao{}).Where("id = ?", cotacao.ID).
			Updates(map[string]interface{}{
				"status":             models.CotacaoStatusFechada,
				"melhores_propostas": melhores,
			}).Error
	}
	if err != nil {
		// Orders exist; the quote close must not undo them. Logged for
		// manual reconciliation.
		log.Printf("erro ao fechar cotação %s: %v", cotacao.ID, err)
	}
	return err
}

func fetchUser(id uuid.UUID) *models.User {
	var u models.User
	if err := config.DB.First(&u, "id = ?", id).Error; err != nil {
		return nil
	}
	return &u
}

type resumoPatch struct {
	Subtotal         *float64 `json:"subtotal,omitempty"`
	Frete            *float64 `json:"frete,omitempty"`
	Impostos         *float64 `json:"impostos,omitempty"`
	PrazoEntregaDias *int     `json:"prazoEntregaDias,omitempty"`
	FormaPagamento   *string  `json:"formaPagamento,omitempty"`
}

// MergeResumo applies a partial update onto the snapshot's financial
// summary; absent fields keep their current value.
func MergeResumo(resumo models.ResumoFinanceiro, patch resumoPatch) models.ResumoFinanceiro {
	if patch.Subtotal != nil {
		resumo.Subtotal = *patch.Subtotal
	}
	if patch.Frete != nil {
		resumo.Frete = *patch.Frete
	}
	if patch.Impostos != nil {
		resumo.Impostos = *patch.Impostos
	}
	if patch.PrazoEntregaDias != nil {
		resumo.PrazoEntregaDias = patch.PrazoEntregaDias
	}
	if patch.FormaPagamento != nil {
		resumo.FormaPagamento = patch.FormaPagamento
	}
	return resumo
}

type updateStatusReq struct {
	Status string       `json:"status"`
	Resumo *resumoPatch `json:"resumo,omitempty"`
}

// UpdatePedidoStatus advances the supplier-driven fulfillment state,
// optionally merge-patching the financial summary, and notifies the
// client. Late delivery triggers a separate warning notification.
func UpdatePedidoStatus(w http.ResponseWriter, r *http.Request) {
	fornecedor := currentFornecedor(r)
	if fornecedor == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}
	id := mux.Vars(r)["id"]

	var pedido models.Pedido
	if err := config.DB.Where("id = ? AND fornecedor_id = ?", id, fornecedor.ID).First(&pedido).Error; err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "pedido não encontrado")
		} else {
			respondError(w, http.StatusInternalServerError, "erro ao buscar pedido")
		}
		return
	}

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if !CanTransitionPedido(pedido.Status, req.Status) {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("transição de %s para %s não permitida", pedido.Status, req.Status))
		return
	}

	now := time.Now()
	pedido.Status = req.Status
	switch req.Status {
	case models.PedidoStatusConfirmado:
		pedido.ConfirmadoEm = &now
	case models.PedidoStatusEntregue:
		pedido.EntregueEm = &now
	}

	if req.Resumo != nil {
		snap := pedido.DecodeSnapshot()
		snap.Resumo = MergeResumo(snap.Resumo, *req.Resumo)
		if err := pedido.EncodeSnapshot(snap); err != nil {
			respondError(w, http.StatusInternalServerError, "erro ao atualizar resumo")
			return
		}
	}

	if err := config.DB.Save(&pedido).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao atualizar pedido")
		return
	}

	notificarStatusPedido(&pedido, now)

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "pedido": pedido})
}

// notificarStatusPedido sends the status-specific copy to the client
// and, independently, a late-delivery warning when the expected date
// has passed.
func notificarStatusPedido(pedido *models.Pedido, now time.Time) {
	var cliente models.Cliente
	if err := config.DB.First(&cliente, "id = ?", pedido.ClienteID).Error; err != nil {
		return
	}

	ns := NewNotificationService()
	ref := NotifyRef{PedidoID: &pedido.ID}
	ns.Notify(cliente.UsuarioID, fmt.Sprintf("Pedido %s atualizado", pedido.Numero),
		MensagemStatusPedido(pedido.Status), models.NotificacaoInfo,
		"/pedidos/"+pedido.ID.String(), ref)

	if PedidoAtrasado(pedido, now) {
		prevista, _ := DataPrevistaEntrega(pedido)
		ns.Notify(cliente.UsuarioID, fmt.Sprintf("Pedido %s em atraso", pedido.Numero),
			fmt.Sprintf("A entrega estava prevista para %s", prevista.Format("02/01/2006")),
			models.NotificacaoAlerta, "/pedidos/"+pedido.ID.String(), ref)
	}
}

// ListPedidos returns the caller's pedidos, client or supplier side.
func ListPedidos(w http.ResponseWriter, r *http.Request) {
	tipo := middleware.GetUserTipo(r)
	q := config.DB.Preload("Itens").Preload("Obra").Preload("Fornecedor").Preload("Cliente").
		Order("created_at DESC")

	switch tipo {
	case models.UserTipoCliente:
		cliente := currentCliente(r)
		if cliente == nil {
			respondError(w, http.StatusForbidden, msgAcessoNegado)
			return
		}
		q = q.Where("cliente_id = ?", cliente.ID)
	case models.UserTipoFornecedor:
		fornecedor := currentFornecedor(r)
		if fornecedor == nil {
			respondError(w, http.StatusForbidden, msgAcessoNegado)
			return
		}
		q = q.Where("fornecedor_id = ?", fornecedor.ID)
	default:
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var pedidos []models.Pedido
	if err := q.Find(&pedidos).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar pedidos")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": pedidos})
}

// GetPedido returns one pedido to either of its parties.
func GetPedido(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var pedido models.Pedido
	if err := config.DB.Preload("Itens").Preload("Obra").Preload("Fornecedor").Preload("Cliente").
		First(&pedido, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "pedido não encontrado")
		} else {
			respondError(w, http.StatusInternalServerError, "erro ao buscar pedido")
		}
		return
	}

	grant := NewAccessService().Resolve(pedido.ID.String(), middleware.GetUserID(r))
	if !grant.Allowed {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": pedido})
}
