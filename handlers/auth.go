// handlers/auth.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/middleware"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

type registerReq struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Password    string `json:"password"`
	Tipo        string `json:"tipo"` // cliente | fornecedor
	NomeEmpresa string `json:"nomeEmpresa"`
	CNPJ        string `json:"cnpj"`
}

// Register creates the User plus its Cliente or Fornecedor profile in
// one transaction.
func Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "name, email e password são obrigatórios")
		return
	}
	if req.Tipo != models.UserTipoCliente && req.Tipo != models.UserTipoFornecedor {
		respondError(w, http.StatusBadRequest, "tipo deve ser cliente ou fornecedor")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao processar senha")
		return
	}

	u := models.User{
		Name:         req.Name,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Tipo:         req.Tipo,
		IsActive:     true,
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&u).Error; err != nil {
			return err
		}
		switch req.Tipo {
		case models.UserTipoCliente:
			return tx.Create(&models.Cliente{
				UsuarioID:   u.ID,
				NomeEmpresa: req.NomeEmpresa,
				CNPJ:        req.CNPJ,
				Telefone:    req.Phone,
			}).Error
		case models.UserTipoFornecedor:
			return tx.Create(&models.Fornecedor{
				UsuarioID:   u.ID,
				NomeEmpresa: req.NomeEmpresa,
				CNPJ:        req.CNPJ,
				Telefone:    req.Phone,
			}).Error
		}
		return nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "e-mail já cadastrado")
		} else {
			respondError(w, http.StatusInternalServerError, "erro ao criar cadastro")
		}
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "id": u.ID})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Tipo  string    `json:"tipo"`
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	var u models.User
	if err := config.DB.Where("email = ? AND is_active = ?", strings.ToLower(req.Email), true).First(&u).Error; err != nil {
		respondError(w, http.StatusUnauthorized, "credenciais inválidas")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		respondError(w, http.StatusUnauthorized, "credenciais inválidas")
		return
	}
	token, err := middleware.GenerateToken(u.ID.String(), u.Tipo, u.Name, u.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao gerar token")
		return
	}
	respondJSON(w, http.StatusOK, loginResp{
		Token: token,
		User:  userPayload{ID: u.ID, Name: u.Name, Email: u.Email, Tipo: u.Tipo},
	})
}
