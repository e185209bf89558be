package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hsandinha/cotareconstruir-sub002/handlers"
	"github.com/hsandinha/cotareconstruir-sub002/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.SecurityMiddleware)
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handleProfile).Methods("GET")

	registerCotacaoRoutes(api)
	registerPedidoRoutes(api)
	registerSuporteRoutes(api)
	registerCadastroRoutes(api)

	return r
}

// handleProfile returns the identity behind the token.
func handleProfile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"userID": claims.UserID,
		"name":   claims.Name,
		"email":  claims.Email,
		"tipo":   claims.Tipo,
	})
}

// registerCotacaoRoutes covers the quote and proposal lifecycle.
func registerCotacaoRoutes(api *mux.Router) {
	api.HandleFunc("/cotacoes", handlers.CreateCotacoes).Methods("POST")
	api.HandleFunc("/cotacoes", handlers.ListCotacoesCliente).Methods("GET")
	api.HandleFunc("/cotacoes/disponiveis", handlers.ListCotacoesDisponiveis).Methods("GET")
	api.HandleFunc("/cotacoes/{id}", handlers.GetCotacao).Methods("GET")
	api.HandleFunc("/cotacoes/{id}/propostas", handlers.SubmitProposta).Methods("POST")
	api.HandleFunc("/propostas/minhas", handlers.ListMinhasPropostas).Methods("GET")
}

// registerPedidoRoutes covers award and fulfillment.
func registerPedidoRoutes(api *mux.Router) {
	api.HandleFunc("/pedidos/finalizar", handlers.FinalizarPedidos).Methods("POST")
	api.HandleFunc("/pedidos", handlers.ListPedidos).Methods("GET")
	api.HandleFunc("/pedidos/{id}", handlers.GetPedido).Methods("GET")
	api.HandleFunc("/pedidos/{id}/status", handlers.UpdatePedidoStatus).Methods("PUT")
	api.HandleFunc("/pedidos/{id}/nota-fiscal", handlers.UploadNotaFiscal).Methods("POST")
}

// registerSuporteRoutes covers messaging, notifications and exports.
func registerSuporteRoutes(api *mux.Router) {
	api.HandleFunc("/mensagens/{roomId}", handlers.ListMensagens).Methods("GET")
	api.HandleFunc("/mensagens/{roomId}", handlers.PostMensagem).Methods("POST")
	api.HandleFunc("/notificacoes", handlers.ListNotificacoes).Methods("GET")
	api.HandleFunc("/notificacoes/{id}/lida", handlers.MarcarNotificacaoLida).Methods("PUT")
	api.HandleFunc("/export/pedidos.xlsx", handlers.ExportPedidosExcel).Methods("GET")
	api.HandleFunc("/export/cotacoes.xlsx", handlers.ExportCotacoesExcel).Methods("GET")
}

// registerCadastroRoutes covers master data.
func registerCadastroRoutes(api *mux.Router) {
	api.HandleFunc("/obras", handlers.ListObras).Methods("GET")
	api.HandleFunc("/obras", handlers.CreateObra).Methods("POST")
	api.HandleFunc("/grupos", handlers.ListGrupos).Methods("GET")
	api.HandleFunc("/insumos", handlers.ListInsumos).Methods("GET")
	api.HandleFunc("/fornecedores/grupos", handlers.AtualizarGruposFornecedor).Methods("PUT")
}
