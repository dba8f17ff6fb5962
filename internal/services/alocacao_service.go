package services

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ressarcimento-service/internal/fiscal"
	"ressarcimento-service/internal/importer"
	"ressarcimento-service/internal/models"
)

// ImportarRelatorio lê e valida o relatório de movimentação física do ERP
// e o anexa à sessão aberta. Um relatório novo descarta a alocação
// anterior: os números na tela nunca misturam dois arquivos.
func (s *apuracaoService) ImportarRelatorio(ctx context.Context, empresa string, arquivo io.Reader) (*models.RelatorioEstoque, error) {
	relatorio, err := importer.LerRelatorioEstoque(arquivo)
	if err != nil {
		s.logger.Error("Erro importando relatório de estoque",
			zap.String("empresa", empresa),
			zap.Error(err))
		return nil, fmt.Errorf("erro importando relatório: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessao, ok := s.sessoes[empresa]
	if !ok {
		return nil, ErrSessaoNaoAberta
	}

	sessao.relatorio = relatorio
	sessao.alocacao = nil

	s.logger.Info("Relatório de estoque importado",
		zap.String("empresa", empresa),
		zap.String("competencia", sessao.competencia.String()),
		zap.Int("movimentos", len(relatorio.Movimentos)),
		zap.String("total_saidas", relatorio.TotalSaidas.String()))

	return relatorio, nil
}

// ExecutarAlocacao roda a alocação FIFO sobre as linhas da sessão usando o
// total de saídas do relatório importado. Pode ser reexecutada após
// edições de saldo; cada execução substitui a anterior.
func (s *apuracaoService) ExecutarAlocacao(ctx context.Context, empresa string) (*fiscal.ResultadoAlocacao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessao, ok := s.sessoes[empresa]
	if !ok {
		return nil, ErrSessaoNaoAberta
	}
	if sessao.relatorio == nil {
		return nil, ErrRelatorioNaoImportado
	}

	resultado := fiscal.AlocarSaidas(sessao.relatorio.TotalSaidas, sessao.linhas)
	sessao.alocacao = &resultado

	s.logger.Info("Alocação FIFO executada",
		zap.String("empresa", empresa),
		zap.String("competencia", sessao.competencia.String()),
		zap.Int("notas", len(resultado.Notas)),
		zap.Int("notas_utilizadas", resultado.NotasUtilizadas),
		zap.String("total_consumido", resultado.TotalConsumido.String()),
		zap.String("saidas_restantes", resultado.SaidasRestantes.String()))

	return &resultado, nil
}

// SalvarAlocacao grava o fechamento da competência: um saldo por nota
// alocada, em um único lote atômico, com o consumo e o remanescente da
// alocação. O lote inteiro falha ou grava junto.
func (s *apuracaoService) SalvarAlocacao(ctx context.Context, empresa string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessao, ok := s.sessoes[empresa]
	if !ok {
		return 0, ErrSessaoNaoAberta
	}
	if sessao.alocacao == nil {
		return 0, ErrAlocacaoNaoExecutada
	}

	quantidades := make(map[string]decimal.Decimal, len(sessao.linhas))
	for i := range sessao.linhas {
		quantidades[sessao.linhas[i].NumeroNormalizado] = sessao.linhas[i].Quantidade
	}

	saldos := make([]*models.SaldoNota, 0, len(sessao.alocacao.Notas))
	for _, nota := range sessao.alocacao.Notas {
		numero := fiscal.NormalizarNumeroNota(nota.NumeroNota)
		saldos = append(saldos, &models.SaldoNota{
			Empresa:             empresa,
			NumeroNota:          nota.NumeroNota,
			Ano:                 sessao.competencia.Ano,
			Mes:                 sessao.competencia.Mes,
			SaldoRemanescente:   nota.SaldoFinal,
			QuantidadeOriginal:  quantidades[numero],
			QuantidadeConsumida: nota.Consumido,
			Confirmado:          true,
		})
	}

	if err := s.saldoRepo.UpsertSaldos(ctx, saldos); err != nil {
		s.logger.Error("Erro gravando fechamento da alocação",
			zap.String("empresa", empresa),
			zap.Int("notas", len(saldos)),
			zap.Error(err))
		return 0, fmt.Errorf("erro gravando fechamento: %w", err)
	}

	for i := range sessao.linhas {
		sessao.linhas[i].Estado, _ = fiscal.Transicionar(sessao.linhas[i].Estado, fiscal.EventoConfirmar)
	}

	s.logger.Info("Fechamento da alocação gravado",
		zap.String("empresa", empresa),
		zap.String("competencia", sessao.competencia.String()),
		zap.Int("notas", len(saldos)))

	return len(saldos), nil
}
