package fiscal

import "testing"

func TestNormalizarNumeroNota(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"0000123", "123"},
		{"123", "123"},
		{"  00045 ", "45"},
		{"000", "0"},
		{"0", "0"},
		{"", ""},
		{"   ", ""},
		{"98765", "98765"},
		{"0A12", "A12"},
	}
	for _, tc := range cases {
		got := NormalizarNumeroNota(tc.in)
		if got != tc.expected {
			t.Fatalf("NormalizarNumeroNota(%q) esperado %q, obtido %q", tc.in, tc.expected, got)
		}
	}
}

func TestNormalizarNumeroNota_Idempotente(t *testing.T) {
	entradas := []string{"0000123", "123", "000", "", "  07 ", "ABC"}
	for _, in := range entradas {
		uma := NormalizarNumeroNota(in)
		duas := NormalizarNumeroNota(uma)
		if uma != duas {
			t.Fatalf("normalização não idempotente para %q: %q != %q", in, uma, duas)
		}
	}
}

func TestNormalizarNumeroNota_CruzamentoComZeros(t *testing.T) {
	if NormalizarNumeroNota("0000123") != NormalizarNumeroNota("123") {
		t.Fatalf("\"0000123\" e \"123\" devem normalizar para a mesma chave")
	}
}
