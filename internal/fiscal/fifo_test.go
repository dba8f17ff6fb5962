package fiscal

import (
	"testing"

	"github.com/shopspring/decimal"

	"ressarcimento-service/internal/models"
)

func linhaTeste(numero string, saldoAtual string) GuiaEnriquecida {
	return GuiaEnriquecida{
		Guia:              models.Guia{NumeroNota: numero, Status: models.GuiaUtilizavel},
		NumeroNormalizado: NormalizarNumeroNota(numero),
		SaldoAtual:        dec(saldoAtual),
	}
}

func TestAlocarSaidas_CenarioBasico(t *testing.T) {
	linhas := []GuiaEnriquecida{
		linhaTeste("1", "100"),
		linhaTeste("2", "50"),
		linhaTeste("3", "30"),
	}

	resultado := AlocarSaidas(dec("120"), linhas)
	if len(resultado.Notas) != 3 {
		t.Fatalf("esperava 3 notas, obtive %d", len(resultado.Notas))
	}

	esperados := []struct {
		numero    string
		consumido string
		final     string
		situacao  string
	}{
		{"1", "100", "0", models.SituacaoUtilizado},
		{"2", "20", "30", models.SituacaoParcial},
		{"3", "0", "30", models.SituacaoPendente},
	}
	for i, e := range esperados {
		nota := resultado.Notas[i]
		if nota.NumeroNota != e.numero {
			t.Fatalf("posição %d: nota esperada %s, obtida %s", i, e.numero, nota.NumeroNota)
		}
		if !nota.Consumido.Equal(dec(e.consumido)) {
			t.Fatalf("nota %s: consumido esperado %s, obtido %s", e.numero, e.consumido, nota.Consumido)
		}
		if !nota.SaldoFinal.Equal(dec(e.final)) {
			t.Fatalf("nota %s: saldo final esperado %s, obtido %s", e.numero, e.final, nota.SaldoFinal)
		}
		if nota.Situacao != e.situacao {
			t.Fatalf("nota %s: situação esperada %s, obtida %s", e.numero, e.situacao, nota.Situacao)
		}
	}

	if resultado.NotasUtilizadas != 1 {
		t.Fatalf("esperava 1 nota utilizada, obtive %d", resultado.NotasUtilizadas)
	}
	if !resultado.TotalConsumido.Equal(dec("120")) {
		t.Fatalf("total consumido esperado 120, obtido %s", resultado.TotalConsumido)
	}
}

func TestAlocarSaidas_Conservacao(t *testing.T) {
	linhas := []GuiaEnriquecida{
		linhaTeste("5", "12.5"),
		linhaTeste("9", "7.25"),
		linhaTeste("11", "3"),
	}

	cases := []struct {
		totalSaidas string
	}{
		{"0"},
		{"10"},
		{"22.75"},
		{"50"}, // excede a soma dos saldos
	}

	somaSaldos := dec("22.75")
	for _, tc := range cases {
		resultado := AlocarSaidas(dec(tc.totalSaidas), linhas)

		esperado := decimal.Min(dec(tc.totalSaidas), somaSaldos)
		if !resultado.TotalConsumido.Equal(esperado) {
			t.Fatalf("saídas=%s: consumo total esperado %s, obtido %s",
				tc.totalSaidas, esperado, resultado.TotalConsumido)
		}
		for _, nota := range resultado.Notas {
			if nota.Consumido.GreaterThan(nota.SaldoAnterior) {
				t.Fatalf("saídas=%s: nota %s consumiu %s acima do saldo %s",
					tc.totalSaidas, nota.NumeroNota, nota.Consumido, nota.SaldoAnterior)
			}
			if nota.Consumido.IsNegative() || nota.SaldoFinal.IsNegative() {
				t.Fatalf("saídas=%s: nota %s com valores negativos", tc.totalSaidas, nota.NumeroNota)
			}
		}
	}
}

func TestAlocarSaidas_OrdemNumericaNaoLexicografica(t *testing.T) {
	// lexicograficamente "10" < "9"; a ordenação FIFO deve ser numérica
	linhas := []GuiaEnriquecida{
		linhaTeste("10", "5"),
		linhaTeste("9", "5"),
	}

	resultado := AlocarSaidas(dec("5"), linhas)
	if resultado.Notas[0].NumeroNota != "9" {
		t.Fatalf("nota 9 deve ser consumida antes da 10")
	}
	if !resultado.Notas[0].Consumido.Equal(dec("5")) {
		t.Fatalf("nota 9 deveria absorver todas as saídas")
	}
	if !resultado.Notas[1].Consumido.IsZero() {
		t.Fatalf("nota 10 não deveria ser tocada")
	}
}

func TestAlocarSaidas_Deterministico(t *testing.T) {
	a := []GuiaEnriquecida{
		linhaTeste("0003", "30"),
		linhaTeste("1", "100"),
		linhaTeste("02", "50"),
	}
	// mesmas linhas em outra ordem de entrada
	b := []GuiaEnriquecida{
		linhaTeste("02", "50"),
		linhaTeste("0003", "30"),
		linhaTeste("1", "100"),
	}

	ra := AlocarSaidas(dec("120"), a)
	rb := AlocarSaidas(dec("120"), b)

	if len(ra.Notas) != len(rb.Notas) {
		t.Fatalf("resultados com tamanhos diferentes")
	}
	for i := range ra.Notas {
		na, nb := ra.Notas[i], rb.Notas[i]
		if na.NumeroNota != nb.NumeroNota || !na.Consumido.Equal(nb.Consumido) ||
			!na.SaldoFinal.Equal(nb.SaldoFinal) || na.Situacao != nb.Situacao {
			t.Fatalf("alocação não determinística na posição %d: %+v != %+v", i, na, nb)
		}
	}
}

func TestAlocarSaidas_NaoMutaEntrada(t *testing.T) {
	linhas := []GuiaEnriquecida{
		linhaTeste("2", "10"),
		linhaTeste("1", "10"),
	}
	_ = AlocarSaidas(dec("15"), linhas)
	if linhas[0].Guia.NumeroNota != "2" || linhas[1].Guia.NumeroNota != "1" {
		t.Fatalf("o alocador não deve reordenar a entrada do chamador")
	}
	if !linhas[0].SaldoAtual.Equal(dec("10")) {
		t.Fatalf("o alocador não deve alterar saldos de entrada")
	}
}

func TestAlocarSaidas_SaldoZeradoContaComoUtilizado(t *testing.T) {
	linhas := []GuiaEnriquecida{linhaTeste("4", "0")}
	resultado := AlocarSaidas(dec("10"), linhas)
	if resultado.Notas[0].Situacao != models.SituacaoUtilizado {
		t.Fatalf("nota com saldo final zero é utilizada, obtive %s", resultado.Notas[0].Situacao)
	}
	if !resultado.SaidasRestantes.Equal(dec("10")) {
		t.Fatalf("saídas restantes esperadas 10, obtidas %s", resultado.SaidasRestantes)
	}
}
