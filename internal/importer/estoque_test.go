package importer

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"ressarcimento-service/internal/models"
)

const cabecalho = "Data;Documento;Tipo;Quantidade;Valor Unitario;Valor Total;Saldo\n"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLerRelatorioEstoque(t *testing.T) {
	conteudo := cabecalho +
		"02/01/2025;NF 123;ENTRADA;100;10,50;1.050,00;150\n" +
		"15/01/2025;NF 456;SAIDA;30;12,00;360,00;120\n" +
		"\n" +
		"20/01/2025;NF 789;SAIDA;20;12,00;240,00;100\n"

	relatorio, err := LerRelatorioEstoque(strings.NewReader(conteudo))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if len(relatorio.Movimentos) != 3 {
		t.Fatalf("esperava 3 movimentos, obtive %d", len(relatorio.Movimentos))
	}
	if !relatorio.TotalEntradas.Equal(dec("100")) {
		t.Fatalf("total de entradas esperado 100, obtido %s", relatorio.TotalEntradas)
	}
	if !relatorio.TotalSaidas.Equal(dec("50")) {
		t.Fatalf("total de saídas esperado 50, obtido %s", relatorio.TotalSaidas)
	}
	if !relatorio.ValorEntradas.Equal(dec("1050.00")) {
		t.Fatalf("valor de entradas esperado 1050.00, obtido %s", relatorio.ValorEntradas)
	}
	if !relatorio.ValorSaidas.Equal(dec("600.00")) {
		t.Fatalf("valor de saídas esperado 600.00, obtido %s", relatorio.ValorSaidas)
	}
	// saldo 150 após entrada de 100 => 50 antes do período
	if !relatorio.QuantidadeInicial.Equal(dec("50")) {
		t.Fatalf("quantidade inicial esperada 50, obtida %s", relatorio.QuantidadeInicial)
	}

	primeiro := relatorio.Movimentos[0]
	if primeiro.Tipo != models.MovimentoEntrada {
		t.Fatalf("tipo esperado entrada, obtido %s", primeiro.Tipo)
	}
	if primeiro.Data.Day() != 2 || primeiro.Data.Month() != 1 || primeiro.Data.Year() != 2025 {
		t.Fatalf("data mal interpretada: %s", primeiro.Data)
	}
	if !primeiro.ValorUnitario.Equal(dec("10.50")) {
		t.Fatalf("valor unitário esperado 10.50, obtido %s", primeiro.ValorUnitario)
	}
}

func TestLerRelatorioEstoque_SeparadorVirgula(t *testing.T) {
	conteudo := "Data,Documento,Tipo,Quantidade,Valor Unitario,Valor Total,Saldo\n" +
		"02/01/2025,NF 1,S,10,1,10,90\n"

	relatorio, err := LerRelatorioEstoque(strings.NewReader(conteudo))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if relatorio.Movimentos[0].Tipo != models.MovimentoSaida {
		t.Fatalf("abreviação S deve mapear para saída")
	}
}

func TestLerRelatorioEstoque_SeparadorVirgulaComDecimalVirgula(t *testing.T) {
	// separador vírgula com valores em vírgula decimal é ambíguo: a linha
	// ganha campos a mais e deve ser rejeitada apontando a causa
	conteudo := "Data,Documento,Tipo,Quantidade,Valor Unitario,Valor Total,Saldo\n" +
		"02/01/2025,NF 1,ENTRADA,100,10,50,1.050,00,150\n"

	_, err := LerRelatorioEstoque(strings.NewReader(conteudo))
	if err == nil {
		t.Fatalf("esperava rejeição")
	}
	if !strings.Contains(err.Error(), "vírgula decimal") {
		t.Fatalf("erro deveria explicar o conflito com vírgula decimal, obtido: %v", err)
	}
}

func TestLerRelatorioEstoque_Rejeicoes(t *testing.T) {
	cases := []struct {
		nome     string
		conteudo string
	}{
		{"vazio", ""},
		{"cabecalho errado", "Foo;Bar\n02/01/2025;NF;ENTRADA;1;1;1;1\n"},
		{"data invalida", cabecalho + "2025-01-02;NF;ENTRADA;1;1;1;1\n"},
		{"tipo invalido", cabecalho + "02/01/2025;NF;TRANSFERENCIA;1;1;1;1\n"},
		{"quantidade invalida", cabecalho + "02/01/2025;NF;ENTRADA;abc;1;1;1\n"},
		{"campos faltando", cabecalho + "02/01/2025;NF;ENTRADA;1;1\n"},
	}

	for _, tc := range cases {
		if _, err := LerRelatorioEstoque(strings.NewReader(tc.conteudo)); err == nil {
			t.Fatalf("%s: importação deveria ser rejeitada", tc.nome)
		}
	}
}

func TestLerRelatorioEstoque_RejeicaoNaoProduzParcial(t *testing.T) {
	// a terceira linha é inválida: nada do arquivo deve ser aproveitado
	conteudo := cabecalho +
		"02/01/2025;NF 1;ENTRADA;10;1,00;10,00;10\n" +
		"03/01/2025;NF 2;SAIDA;x;1,00;5,00;5\n"

	relatorio, err := LerRelatorioEstoque(strings.NewReader(conteudo))
	if err == nil {
		t.Fatalf("esperava rejeição")
	}
	if relatorio != nil {
		t.Fatalf("rejeição não pode devolver dados parciais")
	}
}
