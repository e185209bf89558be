package handlers

import (
	"testing"

	"github.com/hsandinha/cotareconstruir-sub002/models"
)

func TestPodeVerCotacao(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		elegivel    bool
		temProposta bool
		visivel     bool
	}{
		{"open and eligible", models.CotacaoStatusEnviada, true, false, true},
		{"open but not eligible", models.CotacaoStatusEnviada, false, false, false},
		{"answered and eligible", models.CotacaoStatusRespondida, true, false, true},
		{"own proposta always grants access", models.CotacaoStatusFechada, false, true, true},
		// Same rule as the supplier feed: a closed quote the supplier
		// never answered stays hidden even when eligible.
		{"closed and eligible but never proposed", models.CotacaoStatusFechada, true, false, false},
		{"closed, not eligible, never proposed", models.CotacaoStatusFechada, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PodeVerCotacao(tt.status, tt.elegivel, tt.temProposta); got != tt.visivel {
				t.Errorf("PodeVerCotacao(%q, elegivel=%v, temProposta=%v) = %v, expected %v",
					tt.status, tt.elegivel, tt.temProposta, got, tt.visivel)
			}
		})
	}
}
