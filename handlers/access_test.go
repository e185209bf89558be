package handlers

import (
	"fmt"
	"sort"
	"testing"

	"github.com/google/uuid"

	"github.com/hsandinha/cotareconstruir-sub002/models"
)

// fakeAccessStore backs the resolver with maps so the decision logic
// can be exercised without a database.
type fakeAccessStore struct {
	cotacoes     map[uuid.UUID]*models.Cotacao
	pedidos      map[uuid.UUID]*models.Pedido
	clientes     map[uuid.UUID]*models.Cliente
	fornecedores map[uuid.UUID]*models.Fornecedor
	propostas    map[string]*models.Proposta // key cotacaoID/fornecedorID
}

func newFakeAccessStore() *fakeAccessStore {
	return &fakeAccessStore{
		cotacoes:     map[uuid.UUID]*models.Cotacao{},
		pedidos:      map[uuid.UUID]*models.Pedido{},
		clientes:     map[uuid.UUID]*models.Cliente{},
		fornecedores: map[uuid.UUID]*models.Fornecedor{},
		propostas:    map[string]*models.Proposta{},
	}
}

func propostaKey(cotacaoID, fornecedorID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", cotacaoID, fornecedorID)
}

func (f *fakeAccessStore) Cotacao(id uuid.UUID) (*models.Cotacao, error) { return f.cotacoes[id], nil }
func (f *fakeAccessStore) Pedido(id uuid.UUID) (*models.Pedido, error)   { return f.pedidos[id], nil }
func (f *fakeAccessStore) Cliente(id uuid.UUID) (*models.Cliente, error) { return f.clientes[id], nil }
func (f *fakeAccessStore) Fornecedor(id uuid.UUID) (*models.Fornecedor, error) {
	return f.fornecedores[id], nil
}

func (f *fakeAccessStore) FornecedorPorUsuario(usuarioID uuid.UUID) (*models.Fornecedor, error) {
	for _, fornecedor := range f.fornecedores {
		if fornecedor.UsuarioID == usuarioID {
			return fornecedor, nil
		}
	}
	return nil, nil
}

func (f *fakeAccessStore) Proposta(cotacaoID, fornecedorID uuid.UUID) (*models.Proposta, error) {
	return f.propostas[propostaKey(cotacaoID, fornecedorID)], nil
}

func (f *fakeAccessStore) PropostasPorValor(cotacaoID uuid.UUID) ([]models.Proposta, error) {
	var out []models.Proposta
	for _, p := range f.propostas {
		if p.CotacaoID == cotacaoID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValorTotal < out[j].ValorTotal })
	return out, nil
}

type accessFixture struct {
	store          *fakeAccessStore
	clienteUser    uuid.UUID
	fornecedorUser uuid.UUID
	cliente        *models.Cliente
	fornecedor     *models.Fornecedor
	cotacao        *models.Cotacao
}

func newAccessFixture() *accessFixture {
	store := newFakeAccessStore()
	clienteUser := uuid.New()
	fornecedorUser := uuid.New()

	cliente := &models.Cliente{ID: uuid.New(), UsuarioID: clienteUser}
	fornecedor := &models.Fornecedor{ID: uuid.New(), UsuarioID: fornecedorUser}
	cotacao := &models.Cotacao{ID: uuid.New(), ClienteID: cliente.ID, Status: models.CotacaoStatusEnviada}

	store.clientes[cliente.ID] = cliente
	store.fornecedores[fornecedor.ID] = fornecedor
	store.cotacoes[cotacao.ID] = cotacao

	return &accessFixture{
		store:          store,
		clienteUser:    clienteUser,
		fornecedorUser: fornecedorUser,
		cliente:        cliente,
		fornecedor:     fornecedor,
		cotacao:        cotacao,
	}
}

func (fx *accessFixture) addProposta(valor float64) *models.Proposta {
	p := &models.Proposta{
		ID:           uuid.New(),
		CotacaoID:    fx.cotacao.ID,
		FornecedorID: fx.fornecedor.ID,
		ValorTotal:   valor,
		Status:       models.PropostaStatusEnviada,
	}
	fx.store.propostas[propostaKey(fx.cotacao.ID, fx.fornecedor.ID)] = p
	return p
}

func TestResolveAccessCompositeRoom(t *testing.T) {
	fx := newAccessFixture()
	fx.addProposta(500)
	roomID := fmt.Sprintf("%s::%s", fx.cotacao.ID, fx.fornecedor.ID)

	t.Run("cliente side allowed", func(t *testing.T) {
		grant := resolveAccess(fx.store, roomID, fx.clienteUser)
		if !grant.Allowed {
			t.Fatal("expected cliente to be allowed")
		}
		if grant.CounterpartyID != fx.fornecedorUser {
			t.Errorf("counterparty = %s, expected fornecedor user %s", grant.CounterpartyID, fx.fornecedorUser)
		}
		if grant.CotacaoID != fx.cotacao.ID || grant.FornecedorID != fx.fornecedor.ID {
			t.Error("grant should carry cotacao and fornecedor ids")
		}
	})

	t.Run("fornecedor side allowed", func(t *testing.T) {
		grant := resolveAccess(fx.store, roomID, fx.fornecedorUser)
		if !grant.Allowed {
			t.Fatal("expected fornecedor to be allowed")
		}
		if grant.CounterpartyID != fx.clienteUser {
			t.Errorf("counterparty = %s, expected cliente user %s", grant.CounterpartyID, fx.clienteUser)
		}
	})

	t.Run("third user denied", func(t *testing.T) {
		grant := resolveAccess(fx.store, roomID, uuid.New())
		if grant.Allowed {
			t.Fatal("expected third user to be denied")
		}
		if grant.CounterpartyID != uuid.Nil || grant.CotacaoID != uuid.Nil {
			t.Error("denied grant must not leak ids")
		}
	})
}

func TestResolveAccessCompositeRoomWithoutProposta(t *testing.T) {
	fx := newAccessFixture()
	roomID := fmt.Sprintf("%s::%s", fx.cotacao.ID, fx.fornecedor.ID)

	// No proposta yet: there is nothing to negotiate, even the owner is denied.
	if grant := resolveAccess(fx.store, roomID, fx.clienteUser); grant.Allowed {
		t.Error("expected denial when no proposta links the pair")
	}
}

func TestResolveAccessMalformedRooms(t *testing.T) {
	fx := newAccessFixture()
	fx.addProposta(500)

	cases := []struct {
		name   string
		roomID string
	}{
		{"empty room", ""},
		{"half composite", fx.cotacao.ID.String() + "::"},
		{"other half composite", "::" + fx.fornecedor.ID.String()},
		{"not a uuid", "pedido-123"},
		{"unknown bare id", uuid.New().String()},
		{"composite with unknown fornecedor", fmt.Sprintf("%s::%s", fx.cotacao.ID, uuid.New())},
		{"composite with unknown cotacao", fmt.Sprintf("%s::%s", uuid.New(), fx.fornecedor.ID)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if grant := resolveAccess(fx.store, tc.roomID, fx.clienteUser); grant.Allowed {
				t.Errorf("room %q should be denied", tc.roomID)
			}
		})
	}
}

func TestResolveAccessPedidoRoom(t *testing.T) {
	fx := newAccessFixture()
	pedido := &models.Pedido{
		ID:           uuid.New(),
		CotacaoID:    fx.cotacao.ID,
		ClienteID:    fx.cliente.ID,
		FornecedorID: fx.fornecedor.ID,
		Status:       models.PedidoStatusPendente,
	}
	fx.store.pedidos[pedido.ID] = pedido

	grant := resolveAccess(fx.store, pedido.ID.String(), fx.clienteUser)
	if !grant.Allowed || grant.PedidoID != pedido.ID {
		t.Fatalf("cliente should access pedido room, got %+v", grant)
	}
	if grant.CounterpartyID != fx.fornecedorUser {
		t.Error("counterparty should be the fornecedor user")
	}

	grant = resolveAccess(fx.store, pedido.ID.String(), fx.fornecedorUser)
	if !grant.Allowed || grant.CounterpartyID != fx.clienteUser {
		t.Fatalf("fornecedor should access pedido room, got %+v", grant)
	}

	if grant := resolveAccess(fx.store, pedido.ID.String(), uuid.New()); grant.Allowed {
		t.Error("stranger should be denied on pedido room")
	}
}

func TestResolveAccessCotacaoRoom(t *testing.T) {
	fx := newAccessFixture()

	t.Run("cliente without propostas has no counterparty", func(t *testing.T) {
		grant := resolveAccess(fx.store, fx.cotacao.ID.String(), fx.clienteUser)
		if !grant.Allowed {
			t.Fatal("owner must be allowed")
		}
		if grant.CounterpartyID != uuid.Nil {
			t.Error("no proposta means no counterparty yet")
		}
	})

	t.Run("cliente counterparty is cheapest proposta supplier", func(t *testing.T) {
		caro := &models.Fornecedor{ID: uuid.New(), UsuarioID: uuid.New()}
		barato := &models.Fornecedor{ID: uuid.New(), UsuarioID: uuid.New()}
		fx.store.fornecedores[caro.ID] = caro
		fx.store.fornecedores[barato.ID] = barato
		fx.store.propostas[propostaKey(fx.cotacao.ID, caro.ID)] = &models.Proposta{
			ID: uuid.New(), CotacaoID: fx.cotacao.ID, FornecedorID: caro.ID, ValorTotal: 900,
		}
		fx.store.propostas[propostaKey(fx.cotacao.ID, barato.ID)] = &models.Proposta{
			ID: uuid.New(), CotacaoID: fx.cotacao.ID, FornecedorID: barato.ID, ValorTotal: 450,
		}

		grant := resolveAccess(fx.store, fx.cotacao.ID.String(), fx.clienteUser)
		if !grant.Allowed {
			t.Fatal("owner must be allowed")
		}
		if grant.CounterpartyID != barato.UsuarioID {
			t.Errorf("counterparty = %s, expected cheapest supplier user %s", grant.CounterpartyID, barato.UsuarioID)
		}
	})

	t.Run("fornecedor with proposta allowed", func(t *testing.T) {
		fx := newAccessFixture()
		fx.addProposta(500)
		grant := resolveAccess(fx.store, fx.cotacao.ID.String(), fx.fornecedorUser)
		if !grant.Allowed || grant.CounterpartyID != fx.clienteUser {
			t.Fatalf("proposing fornecedor should be allowed, got %+v", grant)
		}
	})

	t.Run("fornecedor without proposta denied", func(t *testing.T) {
		fx := newAccessFixture()
		if grant := resolveAccess(fx.store, fx.cotacao.ID.String(), fx.fornecedorUser); grant.Allowed {
			t.Error("fornecedor with no proposta should be denied")
		}
	})
}
