package fiscal

import "testing"

func TestTransicionar(t *testing.T) {
	cases := []struct {
		nome      string
		estado    EstadoSaldo
		evento    EventoSaldo
		esperado  EstadoSaldo
		daErro    bool
	}{
		{"sugerir sobre vazio", EstadoVazio, EventoSugerir, EstadoSugerido, false},
		{"sugerir sobre editado", EstadoEditado, EventoSugerir, EstadoEditado, true},
		{"sugerir sobre sugerido", EstadoSugerido, EventoSugerir, EstadoSugerido, true},
		{"restaurar sobre vazio", EstadoVazio, EventoRestaurar, EstadoRestaurado, false},
		{"restaurar sobre confirmado", EstadoConfirmado, EventoRestaurar, EstadoConfirmado, true},
		{"editar sobre sugerido", EstadoSugerido, EventoEditar, EstadoEditado, false},
		{"editar sobre vazio", EstadoVazio, EventoEditar, EstadoEditado, false},
		{"editar sobre confirmado permanece confirmado", EstadoConfirmado, EventoEditar, EstadoConfirmado, false},
		{"confirmar sobre editado", EstadoEditado, EventoConfirmar, EstadoConfirmado, false},
		{"confirmar sobre confirmado", EstadoConfirmado, EventoConfirmar, EstadoConfirmado, false},
		{"reabrir sobre confirmado", EstadoConfirmado, EventoReabrir, EstadoVazio, false},
	}

	for _, tc := range cases {
		got, err := Transicionar(tc.estado, tc.evento)
		if tc.daErro && err == nil {
			t.Fatalf("%s: esperava erro", tc.nome)
		}
		if !tc.daErro && err != nil {
			t.Fatalf("%s: erro inesperado: %v", tc.nome, err)
		}
		if got != tc.esperado {
			t.Fatalf("%s: esperado %q, obtido %q", tc.nome, tc.esperado, got)
		}
	}
}

// A sugestão automática só pode acontecer uma vez: depois que o operador
// edita, uma nova sugestão deve falhar e nunca sobrescrever o valor.
func TestTransicionar_SugestaoNaoSobrescreveEdicao(t *testing.T) {
	estado, err := Transicionar(EstadoVazio, EventoSugerir)
	if err != nil {
		t.Fatalf("primeira sugestão: %v", err)
	}
	estado, err = Transicionar(estado, EventoEditar)
	if err != nil {
		t.Fatalf("edição: %v", err)
	}
	if _, err = Transicionar(estado, EventoSugerir); err == nil {
		t.Fatalf("sugestão após edição deveria ser rejeitada")
	}
}
