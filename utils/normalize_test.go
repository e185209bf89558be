package utils

import "testing"

func TestNormalizeNome(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercase passthrough", "cimento", "cimento"},
		{"uppercase folded", "CIMENTO", "cimento"},
		{"accents stripped", "Concreto Usinado", "concreto usinado"},
		{"cedilla and acute", "Aço e Ferragens", "aco e ferragens"},
		{"tilde", "Instalações Elétricas", "instalacoes eletricas"},
		{"circumflex", "cimênto", "cimento"},
		{"surrounding whitespace", "  Tijolos  ", "tijolos"},
		{"mixed case accented", "HIDRÁULICA", "hidraulica"},
		{"empty", "", ""},
		{"only spaces", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeNome(tt.input); got != tt.expected {
				t.Errorf("NormalizeNome(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}
