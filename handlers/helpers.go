// handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/middleware"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// Uniform authorization failure body: never explains why, so room and
// pedido ids cannot be probed.
const msgAcessoNegado = "acesso negado"

func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, map[string]string{"error": msg})
}

// currentCliente resolves the Cliente profile behind the JWT, or nil
// when the caller is not a cliente.
func currentCliente(r *http.Request) *models.Cliente {
	userID := middleware.GetUserID(r)
	var cliente models.Cliente
	err := config.DB.Where("usuario_id = ?", userID).First(&cliente).Error
	if err != nil {
		return nil
	}
	return &cliente
}

// currentFornecedor resolves the Fornecedor profile behind the JWT,
// with group memberships preloaded.
func currentFornecedor(r *http.Request) *models.Fornecedor {
	userID := middleware.GetUserID(r)
	var fornecedor models.Fornecedor
	err := config.DB.Preload("Grupos").Where("usuario_id = ?", userID).First(&fornecedor).Error
	if err != nil {
		return nil
	}
	return &fornecedor
}

// isNotFound distinguishes a missing row from a store failure so
// handlers can map to 404 vs 500.
func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
