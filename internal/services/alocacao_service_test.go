package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"ressarcimento-service/internal/models"
)

func TestImportarRelatorioAnexaNaSessao(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)

	relatorio, err := amb.servico.ImportarRelatorio(context.Background(), "matriz", strings.NewReader(relatorioTeste()))
	if err != nil {
		t.Fatalf("ImportarRelatorio: %v", err)
	}
	if !relatorio.TotalSaidas.Equal(dec("120")) {
		t.Errorf("total de saídas %s, esperava 120", relatorio.TotalSaidas)
	}
	if len(relatorio.Movimentos) != 2 {
		t.Errorf("movimentos %d, esperava 2", len(relatorio.Movimentos))
	}
}

func TestImportarRelatorioSemSessao(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())

	_, err := amb.servico.ImportarRelatorio(context.Background(), "matriz", strings.NewReader(relatorioTeste()))
	if !errors.Is(err, ErrSessaoNaoAberta) {
		t.Fatalf("esperava ErrSessaoNaoAberta, veio %v", err)
	}
}

func TestImportarRelatorioInvalidoNaoAnexa(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)
	ctx := context.Background()

	if _, err := amb.servico.ImportarRelatorio(ctx, "matriz", strings.NewReader("lixo sem cabeçalho")); err == nil {
		t.Fatal("esperava erro de importação")
	}

	// sessão segue sem relatório
	if _, err := amb.servico.ExecutarAlocacao(ctx, "matriz"); !errors.Is(err, ErrRelatorioNaoImportado) {
		t.Fatalf("esperava ErrRelatorioNaoImportado, veio %v", err)
	}
}

func TestExecutarAlocacaoFIFO(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)
	ctx := context.Background()

	if _, err := amb.servico.ImportarRelatorio(ctx, "matriz", strings.NewReader(relatorioTeste())); err != nil {
		t.Fatalf("ImportarRelatorio: %v", err)
	}

	// saldos atuais: nota 100 ⇒ 100, nota 101 ⇒ 50, nota 102 ⇒ 30;
	// saídas 120 consomem 100 da nota 100 e 20 da nota 101
	resultado, err := amb.servico.ExecutarAlocacao(ctx, "matriz")
	if err != nil {
		t.Fatalf("ExecutarAlocacao: %v", err)
	}

	if resultado.NotasUtilizadas != 1 {
		t.Errorf("notas utilizadas %d, esperava 1", resultado.NotasUtilizadas)
	}
	if !resultado.TotalConsumido.Equal(dec("120")) {
		t.Errorf("total consumido %s, esperava 120", resultado.TotalConsumido)
	}
	if !resultado.SaidasRestantes.IsZero() {
		t.Errorf("saídas restantes %s, esperava 0", resultado.SaidasRestantes)
	}

	esperado := map[string]struct {
		consumido string
		situacao  string
	}{
		"100": {"100", models.SituacaoUtilizado},
		"101": {"20", models.SituacaoParcial},
		"102": {"0", models.SituacaoPendente},
	}
	for _, nota := range resultado.Notas {
		exp, ok := esperado[strings.TrimLeft(nota.NumeroNota, "0")]
		if !ok {
			t.Errorf("nota inesperada na alocação: %s", nota.NumeroNota)
			continue
		}
		if !nota.Consumido.Equal(dec(exp.consumido)) {
			t.Errorf("nota %s: consumido %s, esperava %s", nota.NumeroNota, nota.Consumido, exp.consumido)
		}
		if nota.Situacao != exp.situacao {
			t.Errorf("nota %s: situação %s, esperava %s", nota.NumeroNota, nota.Situacao, exp.situacao)
		}
	}
}

func TestExecutarAlocacaoReflitaEdicao(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)
	ctx := context.Background()

	if _, err := amb.servico.ImportarRelatorio(ctx, "matriz", strings.NewReader(relatorioTeste())); err != nil {
		t.Fatalf("ImportarRelatorio: %v", err)
	}

	// nota 100 passa a ter saldo atual 60 (100 − 40)
	if _, err := amb.servico.EditarSaldo(ctx, &models.EditarSaldoRequest{
		Empresa: "matriz", NumeroNota: "100", SaldoAnterior: dec("40"),
	}); err != nil {
		t.Fatalf("EditarSaldo: %v", err)
	}

	resultado, err := amb.servico.ExecutarAlocacao(ctx, "matriz")
	if err != nil {
		t.Fatalf("ExecutarAlocacao: %v", err)
	}

	// 120 de saídas: 60 da nota 100, 50 da nota 101, 10 da nota 102
	if resultado.NotasUtilizadas != 2 {
		t.Errorf("notas utilizadas %d, esperava 2", resultado.NotasUtilizadas)
	}
	if !resultado.SaidasRestantes.IsZero() {
		t.Errorf("saídas restantes %s, esperava 0", resultado.SaidasRestantes)
	}
}

func TestSalvarAlocacaoGravaFechamento(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)
	ctx := context.Background()

	if _, err := amb.servico.ImportarRelatorio(ctx, "matriz", strings.NewReader(relatorioTeste())); err != nil {
		t.Fatalf("ImportarRelatorio: %v", err)
	}
	if _, err := amb.servico.ExecutarAlocacao(ctx, "matriz"); err != nil {
		t.Fatalf("ExecutarAlocacao: %v", err)
	}

	quantos, err := amb.servico.SalvarAlocacao(ctx, "matriz")
	if err != nil {
		t.Fatalf("SalvarAlocacao: %v", err)
	}
	if quantos != 3 {
		t.Errorf("gravou %d saldos, esperava 3", quantos)
	}
	if amb.saldoRepo.lotes != 1 {
		t.Errorf("esperava 1 lote, foram %d", amb.saldoRepo.lotes)
	}

	chave := models.SaldoKey{Empresa: "matriz", NumeroNota: "101", Ano: 2024, Mes: 3}
	saldo, ok := amb.saldoRepo.saldos[chave]
	if !ok {
		t.Fatal("fechamento da nota 101 não gravado")
	}
	if !saldo.QuantidadeConsumida.Equal(dec("20")) {
		t.Errorf("consumida %s, esperava 20", saldo.QuantidadeConsumida)
	}
	if !saldo.SaldoRemanescente.Equal(dec("30")) {
		t.Errorf("remanescente %s, esperava 30", saldo.SaldoRemanescente)
	}
	if !saldo.QuantidadeOriginal.Equal(dec("50")) {
		t.Errorf("original %s, esperava 50", saldo.QuantidadeOriginal)
	}
	if !saldo.Confirmado {
		t.Error("fechamento deve gravar confirmado")
	}
}

func TestEditarAposSalvarZeraConsumoGravado(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)
	ctx := context.Background()

	if _, err := amb.servico.ImportarRelatorio(ctx, "matriz", strings.NewReader(relatorioTeste())); err != nil {
		t.Fatalf("ImportarRelatorio: %v", err)
	}
	if _, err := amb.servico.ExecutarAlocacao(ctx, "matriz"); err != nil {
		t.Fatalf("ExecutarAlocacao: %v", err)
	}
	if _, err := amb.servico.SalvarAlocacao(ctx, "matriz"); err != nil {
		t.Fatalf("SalvarAlocacao: %v", err)
	}

	// editar uma nota já confirmada invalida o consumo gravado pela
	// alocação: o write-through zera a coluna até a FIFO ser salva de novo
	if _, err := amb.servico.EditarSaldo(ctx, &models.EditarSaldoRequest{
		Empresa: "matriz", NumeroNota: "101", SaldoAnterior: dec("10"),
	}); err != nil {
		t.Fatalf("EditarSaldo: %v", err)
	}

	chave := models.SaldoKey{Empresa: "matriz", NumeroNota: "101", Ano: 2024, Mes: 3}
	saldo := amb.saldoRepo.saldos[chave]
	if !saldo.QuantidadeConsumida.IsZero() {
		t.Errorf("consumida %s, esperava 0 após a edição", saldo.QuantidadeConsumida)
	}
	if !saldo.SaldoRemanescente.Equal(dec("40")) {
		t.Errorf("remanescente %s, esperava 40 (quantidade 50 − saldo anterior 10)", saldo.SaldoRemanescente)
	}
	if !saldo.Confirmado {
		t.Error("write-through deve manter a nota confirmada")
	}
}

func TestSalvarAlocacaoSemExecutar(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)
	ctx := context.Background()

	if _, err := amb.servico.SalvarAlocacao(ctx, "matriz"); !errors.Is(err, ErrAlocacaoNaoExecutada) {
		t.Fatalf("esperava ErrAlocacaoNaoExecutada, veio %v", err)
	}
}

func TestNovoRelatorioDescartaAlocacao(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)
	ctx := context.Background()

	if _, err := amb.servico.ImportarRelatorio(ctx, "matriz", strings.NewReader(relatorioTeste())); err != nil {
		t.Fatalf("ImportarRelatorio: %v", err)
	}
	if _, err := amb.servico.ExecutarAlocacao(ctx, "matriz"); err != nil {
		t.Fatalf("ExecutarAlocacao: %v", err)
	}

	if _, err := amb.servico.ImportarRelatorio(ctx, "matriz", strings.NewReader(relatorioTeste())); err != nil {
		t.Fatalf("reimportar: %v", err)
	}

	if _, err := amb.servico.SalvarAlocacao(ctx, "matriz"); !errors.Is(err, ErrAlocacaoNaoExecutada) {
		t.Fatalf("reimportar deve descartar a alocação, veio %v", err)
	}
}

func TestAbrirNovamenteDescartaRelatorio(t *testing.T) {
	amb := novoAmbiente(notasExemplo(), guiasExemplo())
	abrir(t, amb, 2024, 3)
	ctx := context.Background()

	if _, err := amb.servico.ImportarRelatorio(ctx, "matriz", strings.NewReader(relatorioTeste())); err != nil {
		t.Fatalf("ImportarRelatorio: %v", err)
	}

	abrir(t, amb, 2024, 4)

	if _, err := amb.servico.ExecutarAlocacao(ctx, "matriz"); !errors.Is(err, ErrRelatorioNaoImportado) {
		t.Fatalf("nova abertura deve descartar o relatório, veio %v", err)
	}
}
