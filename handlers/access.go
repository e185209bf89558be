// handlers/access.go
package handlers

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hsandinha/cotareconstruir-sub002/config"
	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// AccessGrant is the result of resolving a negotiation room for a
// user. When Allowed is false every id is uuid.Nil; callers must check
// the flag before using anything else.
type AccessGrant struct {
	Allowed        bool
	CounterpartyID uuid.UUID // user id of the other side, Nil when none exists yet
	ClienteID      uuid.UUID
	FornecedorID   uuid.UUID
	CotacaoID      uuid.UUID
	PedidoID       uuid.UUID
}

var accessDenied = AccessGrant{}

// accessStore is the slice of the store the resolver needs. Lookups
// return (nil, nil) for missing rows; only real store failures error.
type accessStore interface {
	Cotacao(id uuid.UUID) (*models.Cotacao, error)
	Pedido(id uuid.UUID) (*models.Pedido, error)
	Cliente(id uuid.UUID) (*models.Cliente, error)
	Fornecedor(id uuid.UUID) (*models.Fornecedor, error)
	FornecedorPorUsuario(usuarioID uuid.UUID) (*models.Fornecedor, error)
	Proposta(cotacaoID, fornecedorID uuid.UUID) (*models.Proposta, error)
	PropostasPorValor(cotacaoID uuid.UUID) ([]models.Proposta, error)
}

// AccessService resolves whether a user may act on a quote/order room
// and derives the counterparty for message and notification attribution.
type AccessService struct {
	store accessStore
}

func NewAccessService() *AccessService {
	return &AccessService{store: &gormAccessStore{db: config.DB}}
}

// Resolve handles both room shapes: the composite
// "<cotacaoId>::<fornecedorId>" pre-proposal negotiation room, and a
// bare id tried first as pedido, then as cotação. Any unresolved link
// in the chain denies access; this function never errors.
func (s *AccessService) Resolve(roomID string, userID uuid.UUID) AccessGrant {
	return resolveAccess(s.store, roomID, userID)
}

func resolveAccess(store accessStore, roomID string, userID uuid.UUID) AccessGrant {
	if userID == uuid.Nil || roomID == "" {
		return accessDenied
	}
	if strings.Contains(roomID, "::") {
		return resolveCompositeRoom(store, roomID, userID)
	}

	id, err := uuid.Parse(roomID)
	if err != nil {
		return accessDenied
	}

	if pedido, err := store.Pedido(id); err == nil && pedido != nil {
		return resolvePedidoRoom(store, pedido, userID)
	}
	if cotacao, err := store.Cotacao(id); err == nil && cotacao != nil {
		return resolveCotacaoRoom(store, cotacao, userID)
	}
	return accessDenied
}

// resolveCompositeRoom requires the cotação, the fornecedor and a
// proposta linking them: without a proposta there is nothing to
// negotiate yet. Only the quote's owning client and the supplier's
// linked user get in.
func resolveCompositeRoom(store accessStore, roomID string, userID uuid.UUID) AccessGrant {
	parts := strings.SplitN(roomID, "::", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return accessDenied
	}
	cotacaoID, err := uuid.Parse(parts[0])
	if err != nil {
		return accessDenied
	}
	fornecedorID, err := uuid.Parse(parts[1])
	if err != nil {
		return accessDenied
	}

	cotacao, err := store.Cotacao(cotacaoID)
	if err != nil || cotacao == nil {
		return accessDenied
	}
	fornecedor, err := store.Fornecedor(fornecedorID)
	if err != nil || fornecedor == nil {
		return accessDenied
	}
	proposta, err := store.Proposta(cotacaoID, fornecedorID)
	if err != nil || proposta == nil {
		return accessDenied
	}
	cliente, err := store.Cliente(cotacao.ClienteID)
	if err != nil || cliente == nil {
		return accessDenied
	}

	grant := AccessGrant{
		Allowed:      true,
		ClienteID:    cliente.ID,
		FornecedorID: fornecedor.ID,
		CotacaoID:    cotacao.ID,
	}
	switch userID {
	case cliente.UsuarioID:
		grant.CounterpartyID = fornecedor.UsuarioID
	case fornecedor.UsuarioID:
		grant.CounterpartyID = cliente.UsuarioID
	default:
		return accessDenied
	}
	return grant
}

func resolvePedidoRoom(store accessStore, pedido *models.Pedido, userID uuid.UUID) AccessGrant {
	cliente, err := store.Cliente(pedido.ClienteID)
	if err != nil || cliente == nil {
		return accessDenied
	}
	fornecedor, err := store.Fornecedor(pedido.FornecedorID)
	if err != nil || fornecedor == nil {
		return accessDenied
	}

	grant := AccessGrant{
		Allowed:      true,
		ClienteID:    cliente.ID,
		FornecedorID: fornecedor.ID,
		CotacaoID:    pedido.CotacaoID,
		PedidoID:     pedido.ID,
	}
	switch userID {
	case cliente.UsuarioID:
		grant.CounterpartyID = fornecedor.UsuarioID
	case fornecedor.UsuarioID:
		grant.CounterpartyID = cliente.UsuarioID
	default:
		return accessDenied
	}
	return grant
}

// resolveCotacaoRoom admits the owning client, or a supplier that has
// at least one proposta against the quote. For the client the
// counterparty is the supplier of the cheapest existing proposta, when
// any exists.
func resolveCotacaoRoom(store accessStore, cotacao *models.Cotacao, userID uuid.UUID) AccessGrant {
	cliente, err := store.Cliente(cotacao.ClienteID)
	if err != nil || cliente == nil {
		return accessDenied
	}

	if userID == cliente.UsuarioID {
		grant := AccessGrant{
			Allowed:   true,
			ClienteID: cliente.ID,
			CotacaoID: cotacao.ID,
		}
		propostas, err := store.PropostasPorValor(cotacao.ID)
		if err == nil && len(propostas) > 0 {
			if fornecedor, err := store.Fornecedor(propostas[0].FornecedorID); err == nil && fornecedor != nil {
				grant.FornecedorID = fornecedor.ID
				grant.CounterpartyID = fornecedor.UsuarioID
			}
		}
		return grant
	}

	fornecedor, err := store.FornecedorPorUsuario(userID)
	if err != nil || fornecedor == nil {
		return accessDenied
	}
	proposta, err := store.Proposta(cotacao.ID, fornecedor.ID)
	if err != nil || proposta == nil {
		return accessDenied
	}
	return AccessGrant{
		Allowed:        true,
		CounterpartyID: cliente.UsuarioID,
		ClienteID:      cliente.ID,
		FornecedorID:   fornecedor.ID,
		CotacaoID:      cotacao.ID,
	}
}

// gormAccessStore is the production accessStore over config.DB.
type gormAccessStore struct {
	db *gorm.DB
}

func (s *gormAccessStore) Cotacao(id uuid.UUID) (*models.Cotacao, error) {
	var c models.Cotacao
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *gormAccessStore) Pedido(id uuid.UUID) (*models.Pedido, error) {
	var p models.Pedido
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *gormAccessStore) Cliente(id uuid.UUID) (*models.Cliente, error) {
	var c models.Cliente
	if err := s.db.First(&c, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *gormAccessStore) Fornecedor(id uuid.UUID) (*models.Fornecedor, error) {
	var f models.Fornecedor
	if err := s.db.First(&f, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (s *gormAccessStore) FornecedorPorUsuario(usuarioID uuid.UUID) (*models.Fornecedor, error) {
	var f models.Fornecedor
	if err := s.db.First(&f, "usuario_id = ?", usuarioID).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (s *gormAccessStore) Proposta(cotacaoID, fornecedorID uuid.UUID) (*models.Proposta, error) {
	var p models.Proposta
	if err := s.db.First(&p, "cotacao_id = ? AND fornecedor_id = ?", cotacaoID, fornecedorID).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *gormAccessStore) PropostasPorValor(cotacaoID uuid.UUID) ([]models.Proposta, error) {
	var propostas []models.Proposta
	err := s.db.Where("cotacao_id = ?", cotacaoID).Order("valor_total ASC").Find(&propostas).Error
	return propostas, err
}
