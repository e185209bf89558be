package handlers

import "testing"

func TestValidateNotaFiscal(t *testing.T) {
	tests := []struct {
		name    string
		arquivo string
		tamanho int64
		valido  bool
	}{
		{"pdf accepted", "nf-12345.pdf", 1 << 20, true},
		{"uppercase extension accepted", "NF.PDF", 500, true},
		{"jpeg accepted", "foto-nf.jpeg", 2 << 20, true},
		{"png accepted", "nf.png", 1024, true},
		{"at the 10MB cap", "nf.pdf", 10 << 20, true},
		{"over the 10MB cap", "nf.pdf", 10<<20 + 1, false},
		{"empty file", "nf.pdf", 0, false},
		{"executable rejected", "nf.exe", 1024, false},
		{"no extension rejected", "notafiscal", 1024, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNotaFiscal(tt.arquivo, tt.tamanho)
			if tt.valido && err != nil {
				t.Errorf("ValidateNotaFiscal(%q, %d) = %v, expected acceptance", tt.arquivo, tt.tamanho, err)
			}
			if !tt.valido && err == nil {
				t.Errorf("ValidateNotaFiscal(%q, %d) accepted, expected rejection", tt.arquivo, tt.tamanho)
			}
		})
	}
}
