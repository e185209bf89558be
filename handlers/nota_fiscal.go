// handlers/nota_fiscal.go
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

const (
	notaFiscalMaxBytes = 10 << 20 // 10MB
	notaFiscalDir      = "./uploads/notas-fiscais"
)

var notaFiscalExtensoes = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ValidateNotaFiscal checks the uploaded invoice before anything is
// written: PDF or image only, 10MB cap.
func ValidateNotaFiscal(nome string, tamanho int64) error {
	if tamanho <= 0 {
		return errors.New("arquivo vazio")
	}
	if tamanho > notaFiscalMaxBytes {
		return errors.New("arquivo excede o limite de 10MB")
	}
	ext := strings.ToLower(filepath.Ext(nome))
	if !notaFiscalExtensoes[ext] {
		return errors.New("formato inválido: envie PDF, JPG ou PNG")
	}
	return nil
}

// UploadNotaFiscal attaches an invoice file to the supplier's own
// pedido. Storage backend follows the environment: Google Cloud Storage
// in production, local disk in development.
func UploadNotaFiscal(w http.ResponseWriter, r *http.Request) {
	fornecedor := currentFornecedor(r)
	if fornecedor == nil {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	pedidoID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "id de pedido inválido")
		return
	}

	var pedido models.Pedido
	if err := config.DB.First(&pedido, "id = ?", pedidoID).Error; err != nil {
		if isNotFound(err) {
			respondError(w, http.StatusNotFound, "pedido não encontrado")
		} else {
			respondError(w, http.StatusInternalServerError, "erro ao buscar pedido")
		}
		return
	}
	if pedido.FornecedorID != fornecedor.ID {
		respondError(w, http.StatusForbidden, msgAcessoNegado)
		return
	}

	if err := r.ParseMultipartForm(notaFiscalMaxBytes); err != nil {
		respondError(w, http.StatusBadRequest, "formulário multipart inválido")
		return
	}
	file, header, err := r.FormFile("arquivo")
	if err != nil {
		respondError(w, http.StatusBadRequest, "campo 'arquivo' ausente")
		return
	}
	defer file.Close()

	if err := ValidateNotaFiscal(header.Filename, header.Size); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	objeto := fmt.Sprintf("%s-%s%s", pedido.ID, time.Now().Format("20060102-150405"),
		strings.ToLower(filepath.Ext(header.Filename)))

	var url string
	if usarGCS() {
		url, err = salvarNotaFiscalGCS(r.Context(), objeto, file)
	} else {
		url, err = salvarNotaFiscalLocal(objeto, file)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao armazenar arquivo")
		return
	}

	nome := header.Filename
	if err := config.DB.Model(&models.Pedido{}).Where("id = ?", pedido.ID).
		Updates(map[string]interface{}{
			"nota_fiscal_url":  url,
			"nota_fiscal_nome": nome,
		}).Error; err != nil {
		respondError(w, http.StatusInternalServerError, "erro ao salvar nota fiscal")
		return
	}

	var cliente models.Cliente
	if err := config.DB.First(&cliente, "id = ?", pedido.ClienteID).Error; err == nil {
		NewNotificationService().Notify(cliente.UsuarioID, "Nota fiscal disponível",
			fmt.Sprintf("A nota fiscal do pedido %s foi anexada", pedido.Numero),
			models.NotificacaoInfo, "/pedidos/"+pedido.ID.String(),
			NotifyRef{PedidoID: &pedido.ID})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"notaFiscalUrl":  url,
		"notaFiscalNome": nome,
	})
}

// usarGCS mirrors how the deploy environment announces itself: an
// explicit flag, application credentials, or the Cloud Run marker.
func usarGCS() bool {
	return os.Getenv("USE_GCS") == "true" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" ||
		os.Getenv("K_SERVICE") != ""
}

func salvarNotaFiscalGCS(ctx context.Context, objeto string, file io.Reader) (string, error) {
	bucket := os.Getenv("GCS_BUCKET")
	if bucket == "" {
		return "", errors.New("GCS_BUCKET não configurado")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	wc := client.Bucket(bucket).Object("notas-fiscais/" + objeto).NewWriter(ctx)
	if _, err := io.Copy(wc, file); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/notas-fiscais/%s", bucket, objeto), nil
}

func salvarNotaFiscalLocal(objeto string, file io.Reader) (string, error) {
	if err := os.MkdirAll(notaFiscalDir, 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(filepath.Join(notaFiscalDir, objeto))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return "", err
	}
	return "/uploads/notas-fiscais/" + objeto, nil
}
