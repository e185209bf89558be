package handlers

import (
	"testing"

	"github.com/google/uuid"

	"github.com/hsandinha/cotareconstruir-sub002/models"
)

func TestAplicarPropostaNosItens(t *testing.T) {
	pedidoItens := []models.PedidoItem{
		{ID: uuid.New(), Nome: "Cimento CP-II 50kg", Quantidade: 100, PrecoUnitario: 30, Subtotal: 3000},
		{ID: uuid.New(), Nome: "Cal hidratada", Quantidade: 10, PrecoUnitario: 15, Subtotal: 150},
	}

	t.Run("matched items overwritten, subtotal recomputed", func(t *testing.T) {
		propItens := []models.PropostaItem{
			{Nome: "Cimento CP-II 50kg", Quantidade: 100, PrecoUnitario: 28, Subtotal: 2800},
		}
		atualizados, subtotal, matched := AplicarPropostaNosItens(propItens, pedidoItens)
		if matched != 1 {
			t.Fatalf("matched = %d, expected 1", matched)
		}
		if atualizados[0].PrecoUnitario != 28 || atualizados[0].Subtotal != 2800 {
			t.Error("matched item must take the amended price and subtotal")
		}
		if atualizados[1].Subtotal != 150 {
			t.Error("unmatched item must stay untouched")
		}
		if subtotal != 2950 {
			t.Errorf("subtotal = %v, expected 2950 (updated + untouched)", subtotal)
		}
	})

	t.Run("match ignores case and accents", func(t *testing.T) {
		propItens := []models.PropostaItem{
			{Nome: "CIMENTO CP-II 50KG", Quantidade: 90, PrecoUnitario: 25, Subtotal: 2250},
		}
		atualizados, _, matched := AplicarPropostaNosItens(propItens, pedidoItens)
		if matched != 1 {
			t.Fatalf("case-folded name should match, matched = %d", matched)
		}
		if atualizados[0].Quantidade != 90 {
			t.Error("amended quantity must be carried over")
		}
	})

	t.Run("no matches leaves everything as is", func(t *testing.T) {
		propItens := []models.PropostaItem{
			{Nome: "Produto renomeado", Quantidade: 1, PrecoUnitario: 1, Subtotal: 1},
		}
		atualizados, subtotal, matched := AplicarPropostaNosItens(propItens, pedidoItens)
		if matched != 0 {
			t.Fatalf("matched = %d, expected 0", matched)
		}
		if subtotal != 3150 {
			t.Errorf("subtotal = %v, expected untouched 3150", subtotal)
		}
		if atualizados[0].PrecoUnitario != 30 {
			t.Error("items must keep their prices when nothing matches")
		}
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		propItens := []models.PropostaItem{
			{Nome: "Cal hidratada", Quantidade: 10, PrecoUnitario: 12, Subtotal: 120},
		}
		AplicarPropostaNosItens(propItens, pedidoItens)
		if pedidoItens[1].PrecoUnitario != 15 {
			t.Error("caller's slice must stay intact")
		}
	})
}
