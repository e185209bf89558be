package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/hsandinha/cotareconstruir-sub002/models"
)

func TestPodeReceberProposta(t *testing.T) {
	tests := []struct {
		name          string
		statusCotacao string
		pedido        *models.Pedido
		aceita        bool
	}{
		{"open quote accepts", models.CotacaoStatusEnviada, nil, true},
		{"answered quote accepts", models.CotacaoStatusRespondida, nil, true},
		{"closed quote without a pedido rejects", models.CotacaoStatusFechada, nil, false},
		{"closed quote with pending pedido accepts", models.CotacaoStatusFechada,
			&models.Pedido{Status: models.PedidoStatusPendente}, true},
		{"closed quote with confirmed pedido accepts", models.CotacaoStatusFechada,
			&models.Pedido{Status: models.PedidoStatusConfirmado}, true},
		{"closed quote with shipped pedido rejects", models.CotacaoStatusFechada,
			&models.Pedido{Status: models.PedidoStatusEnviado}, false},
		{"closed quote with delivered pedido rejects", models.CotacaoStatusFechada,
			&models.Pedido{Status: models.PedidoStatusEntregue}, false},
		{"unknown status rejects", "arquivada", &models.Pedido{Status: models.PedidoStatusPendente}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PodeReceberProposta(tt.statusCotacao, tt.pedido)
			if tt.aceita && err != nil {
				t.Errorf("expected acceptance, got %v", err)
			}
			if !tt.aceita && err != ErrCotacaoIndisponivel {
				t.Errorf("expected ErrCotacaoIndisponivel, got %v", err)
			}
		})
	}
}

func TestMontarItens(t *testing.T) {
	inputs := []propostaItemInput{
		{Nome: "Cimento", PrecoUnitario: 30, Quantidade: 10},
		{Nome: "Areia", PrecoUnitario: 100, Quantidade: 2, Subtotal: 190, Disponibilidade: models.DisponibilidadeDisponivel},
	}
	itens := montarItens(uuid.New(), inputs)
	if len(itens) != 2 {
		t.Fatalf("expected 2 items, got %d", len(itens))
	}
	if itens[0].Subtotal != 300 {
		t.Errorf("missing subtotal must be computed, got %v", itens[0].Subtotal)
	}
	if itens[0].Disponibilidade != models.DisponibilidadeIndisponivel {
		t.Errorf("missing availability must default to indisponivel, got %q", itens[0].Disponibilidade)
	}
	if itens[1].Subtotal != 190 {
		t.Errorf("explicit subtotal must be kept even when it disagrees, got %v", itens[1].Subtotal)
	}
	if itens[1].Disponibilidade != models.DisponibilidadeDisponivel {
		t.Errorf("explicit availability must be kept, got %q", itens[1].Disponibilidade)
	}
}
