package handlers

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hsandinha/cotareconstruir-sub002/models"
)

var errUpdateFalhou = errors.New("update falhou")

func TestNumeroPedido(t *testing.T) {
	tests := []struct {
		name     string
		idx      int
		total    int
		expected string
	}{
		{"single survivor keeps quote number", 0, 1, "COT-20250810-A1B2C301"},
		{"first of three", 0, 3, "COT-20250810-A1B2C301.1"},
		{"second of three", 1, 3, "COT-20250810-A1B2C301.2"},
		{"third of three", 2, 3, "COT-20250810-A1B2C301.3"},
		// Later rounds offset idx/total by the pedidos already persisted,
		// so a number issued in round one is never reused.
		{"second round after one existing order", 1, 2, "COT-20250810-A1B2C301.2"},
		{"third round after two existing orders", 2, 3, "COT-20250810-A1B2C301.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NumeroPedido("COT-20250810-A1B2C301", tt.idx, tt.total)
			if got != tt.expected {
				t.Errorf("NumeroPedido(idx=%d, total=%d) = %q, expected %q", tt.idx, tt.total, got, tt.expected)
			}
		})
	}
}

func TestCanTransitionPedido(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{models.PedidoStatusPendente, models.PedidoStatusConfirmado, true},
		{models.PedidoStatusConfirmado, models.PedidoStatusEmPreparacao, true},
		{models.PedidoStatusEmPreparacao, models.PedidoStatusEnviado, true},
		{models.PedidoStatusEnviado, models.PedidoStatusEntregue, true},
		// Skipping forward is tolerated, going back never is.
		{models.PedidoStatusPendente, models.PedidoStatusEntregue, true},
		{models.PedidoStatusConfirmado, models.PedidoStatusPendente, false},
		{models.PedidoStatusEntregue, models.PedidoStatusEnviado, false},
		{models.PedidoStatusEntregue, models.PedidoStatusEntregue, false},
		{"cancelado", models.PedidoStatusEntregue, false},
		{models.PedidoStatusPendente, "qualquer", false},
	}
	for _, tt := range tests {
		if got := CanTransitionPedido(tt.from, tt.to); got != tt.allowed {
			t.Errorf("CanTransitionPedido(%q, %q) = %v, expected %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestDedupeAwards(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	awards := DedupeAwards([]fornecedorAwardInput{
		{FornecedorID: a, Frete: 10},
		{FornecedorID: b},
		{FornecedorID: a, Frete: 99}, // duplicate, dropped
	})
	if len(awards) != 2 {
		t.Fatalf("expected 2 awards after dedupe, got %d", len(awards))
	}
	if awards[0].FornecedorID != a || awards[0].Frete != 10 {
		t.Error("first occurrence must win")
	}
	if awards[1].FornecedorID != b {
		t.Error("order must be preserved")
	}
}

func TestPropostasVencedoras(t *testing.T) {
	pa, pb := uuid.New(), uuid.New()

	t.Run("earlier round's acceptance survives a new award", func(t *testing.T) {
		existentes := []models.Pedido{{PropostaID: &pa}}
		awards := []fornecedorAwardInput{{FornecedorID: uuid.New(), PropostaID: &pb}}
		ids := PropostasVencedoras(awards, existentes)
		if len(ids) != 2 {
			t.Fatalf("expected both rounds' propostas, got %d", len(ids))
		}
		if ids[0] != pa || ids[1] != pb {
			t.Error("existing acceptance must come first and stay in the set")
		}
	})

	t.Run("award without proposta id contributes nothing", func(t *testing.T) {
		awards := []fornecedorAwardInput{{FornecedorID: uuid.New()}}
		if ids := PropostasVencedoras(awards, nil); len(ids) != 0 {
			t.Errorf("expected empty set, got %v", ids)
		}
	})

	t.Run("re-awarding the same proposta deduplicates", func(t *testing.T) {
		existentes := []models.Pedido{{PropostaID: &pa}}
		awards := []fornecedorAwardInput{{FornecedorID: uuid.New(), PropostaID: &pa}}
		if ids := PropostasVencedoras(awards, existentes); len(ids) != 1 {
			t.Errorf("expected 1 id, got %d", len(ids))
		}
	})

	t.Run("legacy pedido without proposta id is skipped", func(t *testing.T) {
		existentes := []models.Pedido{{}, {PropostaID: &pb}}
		ids := PropostasVencedoras(nil, existentes)
		if len(ids) != 1 || ids[0] != pb {
			t.Errorf("expected only the linked proposta, got %v", ids)
		}
	})
}

func TestResultadoFinalizacao(t *testing.T) {
	pa, pb := uuid.New(), uuid.New()
	criados := []models.Pedido{{Numero: "COT-1"}}

	t.Run("clean close", func(t *testing.T) {
		res := ResultadoFinalizacao(criados, 5, []uuid.UUID{pa, pb}, nil)
		if !res.Success || !res.CotacaoFechada {
			t.Error("successful close must report success and cotacaoFechada")
		}
		if res.PropostasAceitas != 2 || res.PropostasRecusadas != 3 {
			t.Errorf("counts = %d aceitas / %d recusadas, expected 2/3",
				res.PropostasAceitas, res.PropostasRecusadas)
		}
	})

	t.Run("close-out failure is surfaced", func(t *testing.T) {
		res := ResultadoFinalizacao(criados, 5, []uuid.UUID{pa}, errUpdateFalhou)
		if !res.Success {
			t.Error("orders stand, so success must remain true")
		}
		if res.CotacaoFechada {
			t.Error("a failed close-out must not read as closed")
		}
	})
}

func TestFiltrarSemPedido(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	awards := []fornecedorAwardInput{{FornecedorID: a}, {FornecedorID: b}, {FornecedorID: c}}

	restantes := FiltrarSemPedido(awards, map[uuid.UUID]bool{b: true})
	if len(restantes) != 2 {
		t.Fatalf("expected 2 remaining awards, got %d", len(restantes))
	}
	if restantes[0].FornecedorID != a || restantes[1].FornecedorID != c {
		t.Error("already-awarded supplier should be dropped, order preserved")
	}

	if len(FiltrarSemPedido(awards, map[uuid.UUID]bool{a: true, b: true, c: true})) != 0 {
		t.Error("all awarded means nothing remains")
	}
}

func pedidoComPrazo(status string, createdAt time.Time, prazoDias int) *models.Pedido {
	prazo := prazoDias
	pedido := &models.Pedido{Status: status, CreatedAt: createdAt}
	_ = pedido.EncodeSnapshot(models.PedidoSnapshot{
		Resumo: models.ResumoFinanceiro{PrazoEntregaDias: &prazo},
	})
	return pedido
}

func TestDataPrevistaEntrega(t *testing.T) {
	criado := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("explicit date wins", func(t *testing.T) {
		explicita := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
		pedido := pedidoComPrazo(models.PedidoStatusPendente, criado, 5)
		pedido.DataEntregaPrevista = &explicita
		got, ok := DataPrevistaEntrega(pedido)
		if !ok || !got.Equal(explicita) {
			t.Errorf("expected explicit date %v, got %v (ok=%v)", explicita, got, ok)
		}
	})

	t.Run("derived from delivery days", func(t *testing.T) {
		pedido := pedidoComPrazo(models.PedidoStatusPendente, criado, 5)
		got, ok := DataPrevistaEntrega(pedido)
		if !ok || !got.Equal(criado.AddDate(0, 0, 5)) {
			t.Errorf("expected created+5d, got %v (ok=%v)", got, ok)
		}
	})

	t.Run("no information", func(t *testing.T) {
		pedido := &models.Pedido{Status: models.PedidoStatusPendente, CreatedAt: criado}
		if _, ok := DataPrevistaEntrega(pedido); ok {
			t.Error("no explicit date and no delivery days should report ok=false")
		}
	})
}

func TestPedidoAtrasado(t *testing.T) {
	criado := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	pedido := pedidoComPrazo(models.PedidoStatusConfirmado, criado, 5)

	t.Run("before expected date", func(t *testing.T) {
		if PedidoAtrasado(pedido, criado.AddDate(0, 0, 3)) {
			t.Error("order within its window is not late")
		}
	})

	t.Run("open order past expected date", func(t *testing.T) {
		if !PedidoAtrasado(pedido, criado.AddDate(0, 0, 6)) {
			t.Error("open order past created+5d must be late")
		}
	})

	t.Run("delivered order compares delivery timestamp", func(t *testing.T) {
		entregueNoPrazo := pedidoComPrazo(models.PedidoStatusEntregue, criado, 5)
		emDia := criado.AddDate(0, 0, 4)
		entregueNoPrazo.EntregueEm = &emDia
		// Even evaluated long after, an on-time delivery stays on time.
		if PedidoAtrasado(entregueNoPrazo, criado.AddDate(0, 0, 30)) {
			t.Error("delivered on time is never late")
		}

		entregueTarde := pedidoComPrazo(models.PedidoStatusEntregue, criado, 5)
		tarde := criado.AddDate(0, 0, 9)
		entregueTarde.EntregueEm = &tarde
		if !PedidoAtrasado(entregueTarde, criado.AddDate(0, 0, 30)) {
			t.Error("delivered past the expected date is late")
		}
	})

	t.Run("no expected date never late", func(t *testing.T) {
		semPrazo := &models.Pedido{Status: models.PedidoStatusPendente, CreatedAt: criado}
		if PedidoAtrasado(semPrazo, criado.AddDate(1, 0, 0)) {
			t.Error("without an expected date there is no late state")
		}
	})
}

func TestMergeResumo(t *testing.T) {
	prazo := 10
	pagamento := "boleto 28d"
	base := models.ResumoFinanceiro{Subtotal: 100, Frete: 20, Impostos: 5, PrazoEntregaDias: &prazo, FormaPagamento: &pagamento}

	novoFrete := 50.0
	merged := MergeResumo(base, resumoPatch{Frete: &novoFrete})
	if merged.Frete != 50 {
		t.Errorf("Frete = %v, expected patched 50", merged.Frete)
	}
	if merged.Subtotal != 100 || merged.Impostos != 5 {
		t.Error("unpatched numeric fields must keep their values")
	}
	if merged.PrazoEntregaDias == nil || *merged.PrazoEntregaDias != 10 {
		t.Error("unpatched prazo must keep its value")
	}
	if merged.FormaPagamento == nil || *merged.FormaPagamento != "boleto 28d" {
		t.Error("unpatched payment terms must keep their value")
	}
}

func TestMensagemStatusPedido(t *testing.T) {
	for status, fragmento := range map[string]string{
		models.PedidoStatusConfirmado:   "faturamento",
		models.PedidoStatusEmPreparacao: "separação",
		models.PedidoStatusEnviado:      "entrega",
		models.PedidoStatusEntregue:     "entregue",
	} {
		msg := MensagemStatusPedido(status)
		if !strings.Contains(msg, fragmento) {
			t.Errorf("MensagemStatusPedido(%q) = %q, expected to mention %q", status, msg, fragmento)
		}
	}
}
