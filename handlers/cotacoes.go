// handlers/cotacoes.go
package handlers

import (
	"encoding/json"
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

type createCotacaoReq struct {
	ObraID      uuid.UUID          `json:"obraId"`
	Observacoes string             `json:"observacoes"`
	Validade    *models.JSONTime   `json:"validade,omitempty"`
	Itens       []ItemCotacaoInput `json:"itens"`
}

// CreateCotacoes splits the submitted items by insumo group and creates
// one cotação per group, all inside a single transaction: either every
// group's quote lands or none does.
func CreateCotacoes(w http.ResponseWriter, r *http.Request) {
	cliente := currentCliente(r)
	if cliente == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var req createCotacaoReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if len(req.Itens) == 0 {
		respondError(w, http.StatusBadRequest, "a cotação precisa de pelo menos um item")
		return
	}

	var obra models.Obra
	if err := config.DB.Where("id = ? AND cliente_id = ?", req.ObraID, cliente.ID).First(&obra).Error; err != nil {
		respondError(w, http.StatusNotFound, "obra não encontrada")
		return
	}

	insumos, grupos, err := loadCatalogo(req.Itens)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao carregar catálogo de insumos")
		return
	}

	buckets, invalidos := RouteItems(req.Itens, insumos, grupos)
	if len(invalidos) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":          "itens sem grupo de insumo válido",
			"itensInvalidos": invalidos,
		})
		return
	}

	var criadas []models.Cotacao
	err = config.DB.Transaction(func(tx *gorm.DB) error {
		for i, bucket := range buckets {
			cotacao := models.Cotacao{
				Numero:      gerarNumeroCotacao(i),
				ClienteID:   cliente.ID,
				ObraID:      obra.ID,
				Status:      models.CotacaoStatusEnviada,
				Observacoes: marcarGrupo(req.Observacoes, bucket.GrupoNome),
				Validade:    req.Validade,
			}
			if err := tx.Create(&cotacao).Error; err != nil {
				return err
			}
			for _, item := range bucket.Itens {
				ci := models.CotacaoItem{
					CotacaoID:  cotacao.ID,
					InsumoID:   item.InsumoID,
					Nome:       item.Nome,
					Quantidade: item.Quantidade,
					Unidade:    item.Unidade,
					GrupoNome:  bucket.GrupoNome,
					Fase:       item.Fase,
					Servico:    item.Servico,
				}
				if err := tx.Create(&ci).Error; err != nil {
					return err
				}
				cotacao.Itens = append(cotacao.Itens, ci)
			}
			criadas = append(criadas, cotacao)
		}
		return nil
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao criar cotações")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"cotacoes": criadas,
	})
}

// loadCatalogo fetches the insumos referenced by the request plus all
// active groups, so routing runs entirely in memory.
func loadCatalogo(itens []ItemCotacaoInput) (map[uuid.UUID]models.Insumo, []models.GrupoInsumo, error) {
	var ids []uuid.UUID
	for _, item := range itens {
		if item.InsumoID != nil {
			ids = append(ids, *item.InsumoID)
		}
	}

	insumos := map[uuid.UUID]models.Insumo{}
	if len(ids) > 0 {
		var rows []models.Insumo
		if err := config.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
			return nil, nil, err
		}
		for _, insumo := range rows {
			insumos[insumo.ID] = insumo
		}
	}

	var grupos []models.GrupoInsumo
	if err := config.DB.Where("is_active = ?", true).Find(&grupos).Error; err != nil {
		return nil, nil, err
	}
	return insumos, grupos, nil
}

// marcarGrupo embeds the group-name marker in the cotação notes.
func marcarGrupo(observacoes, grupoNome string) string {
	marker := fmt.Sprintf("[Grupo: %s]", grupoNome)
	if observacoes == "" {
		return marker
	}
	return observacoes + " " + marker
}

func gerarNumeroCotacao(seq int) string {
	// uuid fragment keeps numbers unique across same-second requests
	return fmt.Sprintf("COT-%s-%s%02d", time.Now().Format("20060102"),
		strings.ToUpper(uuid.NewString()[:6]), seq+1)
}

// StatusExibicao derives the display status: an open cotação with at
// least one proposta reads "respondida" without ever persisting it.
func StatusExibicao(status string, qtdPropostas int) string {
	if status == models.CotacaoStatusEnviada && qtdPropostas > 0 {
		return models.CotacaoStatusRespondida
	}
	return status
}

type cotacaoClienteView struct {
	models.Cotacao
	StatusExibicao string `json:"statusExibicao"`
	QtdPropostas   int    `json:"qtdPropostas"`
}

// ListCotacoesCliente returns the caller's cotações with a live
// proposta count while open and the frozen snapshot once closed.
func ListCotacoesCliente(w http.ResponseWriter, r *http.Request) {
	cliente := currentCliente(r)
	if cliente == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var cotacoes []models.Cotacao
	if err := config.DB.Preload("Itens").Preload("Obra").
		Where("cliente_id = ?", cliente.ID).
		Order("created_at DESC").Find(&cotacoes).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar cotações")
		return
	}

	views := make([]cotacaoClienteView, 0, len(cotacoes))
	for _, cotacao := range cotacoes {
		qtd := 0
		if cotacao.Status == models.CotacaoStatusFechada && cotacao.QtdPropostas != nil {
			qtd = *cotacao.QtdPropostas
		} else {
			var count int64
			config.DB.Model(&models.Proposta{}).Where("cotacao_id = ?", cotacao.ID).Count(&count)
			qtd = int(count)
		}
		views = append(views, cotacaoClienteView{
			Cotacao:        cotacao,
			StatusExibicao: StatusExibicao(cotacao.Status, qtd),
			QtdPropostas:   qtd,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": views})
}

// Resultado de uma cotação fechada do ponto de vista do fornecedor.
const (
	ResultadoGanhou     = "ganhou"
	ResultadoPerdeu     = "perdeu"
	ResultadoIndefinido = "indefinido"
)

// ResultadoParaFornecedor reports how a closed cotação ended for one
// supplier: awarded to them, awarded to someone else, or not resolved.
func ResultadoParaFornecedor(pedidos []models.Pedido, fornecedorID uuid.UUID) string {
	for _, pedido := range pedidos {
		if pedido.FornecedorID == fornecedorID {
			return ResultadoGanhou
		}
	}
	if len(pedidos) > 0 {
		return ResultadoPerdeu
	}
	return ResultadoIndefinido
}

type cotacaoFornecedorView struct {
	models.Cotacao
	StatusExibicao string           `json:"statusExibicao"`
	MinhaProposta  *models.Proposta `json:"minhaProposta,omitempty"`
	Resultado      string           `json:"resultado,omitempty"`
}

// ListCotacoesDisponiveis is the supplier feed: open cotações the
// supplier's groups make it eligible for, plus closed ones it actually
// answered (closed quotes it never proposed on are hidden).
func ListCotacoesDisponiveis(w http.ResponseWriter, r *http.Request) {
	fornecedor := currentFornecedor(r)
	if fornecedor == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var cotacoes []models.Cotacao
	if err := config.DB.Preload("Itens").Preload("Obra").Preload("Cliente").
		Where("status IN ?", []string{models.CotacaoStatusEnviada, models.CotacaoStatusRespondida, models.CotacaoStatusFechada}).
		Order("created_at DESC").Find(&cotacoes).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar cotações")
		return
	}

	insumos, err := loadInsumosDeCotacoes(cotacoes)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao carregar catálogo de insumos")
		return
	}

	views := make([]cotacaoFornecedorView, 0, len(cotacoes))
	for _, cotacao := range cotacoes {
		if !FornecedorElegivel(cotacao.Itens, insumos, fornecedor.Grupos) {
			continue
		}

		var minha *models.Proposta
		var proposta models.Proposta
		err := config.DB.Preload("Itens").
			Where("cotacao_id = ? AND fornecedor_id = ?", cotacao.ID, fornecedor.ID).
			First(&proposta).Error
		if err == nil {
			minha = &proposta
		}

		view := cotacaoFornecedorView{Cotacao: cotacao, MinhaProposta: minha}
		if cotacao.Status == models.CotacaoStatusFechada {
			// Closed quotes the supplier never answered are hidden outright.
			if minha == nil {
				continue
			}
			var pedidos []models.Pedido
			config.DB.Where("cotacao_id = ?", cotacao.ID).Find(&pedidos)
			view.Resultado = ResultadoParaFornecedor(pedidos, fornecedor.ID)
			view.StatusExibicao = cotacao.Status
		} else {
			var count int64
			config.DB.Model(&models.Proposta{}).Where("cotacao_id = ?", cotacao.ID).Count(&count)
			view.StatusExibicao = StatusExibicao(cotacao.Status, int(count))
		}
		views = append(views, view)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"data": views})
}

func loadInsumosDeCotacoes(cotacoes []models.Cotacao) (map[uuid.UUID]models.Insumo, error) {
	var ids []uuid.UUID
	for _, cotacao := range cotacoes {
		for _, item := range cotacao.Itens {
			if item.InsumoID != nil {
				ids = append(ids, *item.InsumoID)
			}
		}
	}
	insumos := map[uuid.UUID]models.Insumo{}
	if len(ids) == 0 {
		return insumos, nil
	}
	var rows []models.Insumo
	if err := config.DB.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, insumo := range rows {
		insumos[insumo.ID] = insumo
	}
	return insumos, nil
}

// PodeVerCotacao is the supplier-side gate for a direct fetch, the same
// rule the feed applies: an own proposta always grants access; without
// one, only open cotações the supplier is eligible for are visible.
// Closed cotações the supplier never answered stay hidden.
func PodeVerCotacao(status string, elegivel, temProposta bool) bool {
	if temProposta {
		return true
	}
	return status != models.CotacaoStatusFechada && elegivel
}

// GetCotacao returns one cotação for its owner or for a supplier that
// passes the visibility gate.
func GetCotacao(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var cotacao models.Cotacao
	if err := config.DB.Preload("Itens").Preload("Obra").First(&cotacao, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "cotação não encontrada")
		} else {
			respondError(w, http.StatusInternalServerError, "erro ao buscar cotação")
		}
		return
	}

	if cliente := currentCliente(r); cliente != nil && cliente.ID == cotacao.ClienteID {
		respondJSON(w, http.StatusOK, map[string]interface{}{"data": cotacao})
		return
	}
	if fornecedor := currentFornecedor(r); fornecedor != nil {
		var count int64
		config.DB.Model(&models.Proposta{}).
			Where("cotacao_id = ? AND fornecedor_id = ?", cotacao.ID, fornecedor.ID).Count(&count)
		elegivel := false
		if insumos, err := loadInsumosDeCotacoes([]models.Cotacao{cotacao}); err == nil {
			elegivel = FornecedorElegivel(cotacao.Itens, insumos, fornecedor.Grupos)
		}
		if PodeVerCotacao(cotacao.Status, elegivel, count > 0) {
			respondJSON(w, http.StatusOK, map[string]interface{}{"data": cotacao})
			return
		}
	}
	respondError(w, http.StatusForbidden, msgAcessoNegado)
}

// GrupoDaCotacao extracts the group-name marker embedded in the notes.
func GrupoDaCotacao(observacoes string) string {
	start := strings.Index(observacoes, "[Grupo: ")
	if start < 0 {
		return ""
	}
	rest := observacoes[start+len("[Grupo: "):]
	end := strings.Index(rest, "]")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
