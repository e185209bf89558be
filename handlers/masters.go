// handlers/masters.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// ListObras returns the client's construction sites.
func ListObras(w http.ResponseWriter, r *http.Request) {
	cliente := currentCliente(r)
	if cliente == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var obras []models.Obra
	if err := config.DB.Where("cliente_id = ?", cliente.ID).
		Order("created_at DESC").Find(&obras).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar obras")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": obras})
}

type createObraReq struct {
	Nome     string `json:"nome"`
	Endereco string `json:"endereco"`
	Cidade   string `json:"cidade"`
	Estado   string `json:"estado"`
	CEP      string `json:"cep"`
}

// CreateObra registers a new construction site under the client.
func CreateObra(w http.ResponseWriter, r *http.Request) {
	cliente := currentCliente(r)
	if cliente == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var req createObraReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	req.Nome = strings.TrimSpace(req.Nome)
	if req.Nome == "" {
		respondError(w, http.StatusBadRequest, "nome da obra é obrigatório")
		return
	}

	obra := models.Obra{
		ClienteID: cliente.ID,
		Nome:      req.Nome,
		Endereco:  req.Endereco,
		Cidade:    req.Cidade,
		Estado:    strings.ToUpper(strings.TrimSpace(req.Estado)),
		CEP:       req.CEP,
	}
	if err := config.DB.Create(&obra).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao criar obra")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "obra": obra})
}

// ListGrupos returns the active material groups. Public within the
// authenticated surface; both sides need it for forms.
func ListGrupos(w http.ResponseWriter, r *http.Request) {
	var grupos []models.GrupoInsumo
	if err := config.DB.Where("is_active = ?", true).
		Order("nome ASC").Find(&grupos).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar grupos")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": grupos})
}

// ListInsumos returns the material catalog, optionally filtered by
// group.
func ListInsumos(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("Grupo").Order("nome ASC")
	if grupoID := r.URL.Query().Get("grupoId"); grupoID != "" {
		id, err := uuid.Parse(grupoID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "grupoId inválido")
			return
		}
		q = q.Where("grupo_id = ?", id)
	}

	var insumos []models.Insumo
	if err := q.Find(&insumos).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar insumos")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"data": insumos})
}

type atualizarGruposReq struct {
	GrupoIDs []uuid.UUID `json:"grupoIds"`
}

// AtualizarGruposFornecedor replaces the supplier's group memberships
// wholesale. An empty list is rejected: a supplier with no groups would
// silently stop seeing every quote.
func AtualizarGruposFornecedor(w http.ResponseWriter, r *http.Request) {
	fornecedor := currentFornecedor(r)
	if fornecedor == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	var req atualizarGruposReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if len(req.GrupoIDs) == 0 {
		respondError(w, http.StatusBadRequest, "informe ao menos um grupo")
		return
	}

	var grupos []models.GrupoInsumo
	if err := config.DB.Where("id IN ? AND is_active = ?", req.GrupoIDs, true).
		Find(&grupos).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao buscar grupos")
		return
	}
	if len(grupos) != len(req.GrupoIDs) {
		respondError(w, http.StatusBadRequest, "grupo inexistente ou inativo na lista")
		return
	}

	if err := config.DB.Model(fornecedor).Association("Grupos").Replace(grupos); err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao atualizar grupos")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "grupos": grupos})
}
