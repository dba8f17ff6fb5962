package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"ressarcimento-service/internal/cache"
	"ressarcimento-service/internal/fiscal"
	"ressarcimento-service/internal/models"
	"ressarcimento-service/internal/repository"
)

var (
	// ErrSessaoNaoAberta indica que nenhuma competência foi aberta para a empresa
	ErrSessaoNaoAberta = errors.New("nenhuma competência aberta para a empresa")
	// ErrNotaNaoEncontrada indica que a nota não está na sessão aberta
	ErrNotaNaoEncontrada = errors.New("nota não encontrada na competência aberta")
	// ErrSaldoNegativo indica edição manual com valor negativo
	ErrSaldoNegativo = errors.New("saldo anterior não pode ser negativo")
	// ErrRelatorioNaoImportado indica alocação sem relatório de estoque
	ErrRelatorioNaoImportado = errors.New("relatório de estoque não importado")
	// ErrAlocacaoNaoExecutada indica tentativa de salvar sem alocar
	ErrAlocacaoNaoExecutada = errors.New("alocação FIFO não executada")
)

// AberturaCompetencia é o resultado de abrir uma competência
type AberturaCompetencia struct {
	Empresa     string                   `json:"empresa"`
	Competencia models.Competencia       `json:"competencia"`
	Confirmada  bool                     `json:"confirmada"`
	Linhas      []fiscal.GuiaEnriquecida `json:"linhas"`
}

// ApuracaoService orquestra o fluxo de apuração do crédito ICMS-ST de uma
// competência: abertura e semeadura de saldos, edições e confirmações do
// operador, importação do relatório de estoque, alocação FIFO e gravação
// dos fechamentos.
type ApuracaoService interface {
	// Fluxo de saldos (carry-forward)
	AbrirCompetencia(ctx context.Context, req *models.AbrirCompetenciaRequest) (*AberturaCompetencia, error)
	Linhas(empresa string) (*AberturaCompetencia, error)
	EditarSaldo(ctx context.Context, req *models.EditarSaldoRequest) (*fiscal.GuiaEnriquecida, error)
	ConfirmarSaldo(ctx context.Context, req *models.ConfirmarSaldoRequest) error
	ConfirmarTodas(ctx context.Context, req *models.ConfirmarTodasRequest) (int, error)

	// Trava de competência
	ConfirmarCompetencia(ctx context.Context, req *models.CompetenciaRequest) error
	ReabrirCompetencia(ctx context.Context, req *models.CompetenciaRequest) error

	// Alocação FIFO
	ImportarRelatorio(ctx context.Context, empresa string, arquivo io.Reader) (*models.RelatorioEstoque, error)
	ExecutarAlocacao(ctx context.Context, empresa string) (*fiscal.ResultadoAlocacao, error)
	SalvarAlocacao(ctx context.Context, empresa string) (int, error)
}

// sessaoApuracao é o estado em memória de uma competência aberta. Trocar a
// competência (ou a empresa) descarta a sessão inteira: edições não
// confirmadas e o relatório importado nunca sobrevivem à troca.
type sessaoApuracao struct {
	competencia models.Competencia
	confirmada  bool
	linhas      []fiscal.GuiaEnriquecida
	relatorio   *models.RelatorioEstoque
	alocacao    *fiscal.ResultadoAlocacao
}

// apuracaoService implementa ApuracaoService
type apuracaoService struct {
	fiscalRepo      repository.FiscalRepository
	saldoRepo       repository.SaldoRepository
	competenciaRepo repository.CompetenciaRepository
	notaCache       *cache.NotaCache
	logger          *zap.Logger

	// uma sessão por empresa; o fluxo de apuração é sequencial por
	// operador, o mutex só protege contra requisições simultâneas
	mu      sync.Mutex
	sessoes map[string]*sessaoApuracao
}

// NewApuracaoService cria uma nova instância do serviço
func NewApuracaoService(
	fiscalRepo repository.FiscalRepository,
	saldoRepo repository.SaldoRepository,
	competenciaRepo repository.CompetenciaRepository,
	notaCache *cache.NotaCache,
	logger *zap.Logger,
) ApuracaoService {
	return &apuracaoService{
		fiscalRepo:      fiscalRepo,
		saldoRepo:       saldoRepo,
		competenciaRepo: competenciaRepo,
		notaCache:       notaCache,
		logger:          logger,
		sessoes:         make(map[string]*sessaoApuracao),
	}
}

// AbrirCompetencia carrega notas, guias e saldos de uma competência e monta
// a sessão de trabalho. A semeadura segue a precedência: saldos persistidos
// da própria competência (restaurado/confirmado) > fechamento da
// competência anterior (sugerido) > vazio. Abrir de novo descarta qualquer
// sessão anterior da empresa.
func (s *apuracaoService) AbrirCompetencia(ctx context.Context, req *models.AbrirCompetenciaRequest) (*AberturaCompetencia, error) {
	comp := models.Competencia{Ano: req.Ano, Mes: req.Mes}
	if err := comp.Valida(); err != nil {
		return nil, err
	}

	logger := s.logger.With(
		zap.String("operation", "abrir_competencia"),
		zap.String("empresa", req.Empresa),
		zap.String("competencia", comp.String()),
	)

	registro, err := s.competenciaRepo.Get(ctx, req.Empresa, comp)
	if err != nil {
		logger.Error("Erro consultando trava de competência", zap.Error(err))
		return nil, fmt.Errorf("erro consultando competência: %w", err)
	}
	confirmada := registro != nil && registro.Status == models.CompetenciaConfirmada

	notas, err := s.carregarNotas(ctx, req.Empresa, comp)
	if err != nil {
		return nil, err
	}

	guias, err := s.fiscalRepo.GetGuiasUtilizaveis(ctx, req.Empresa)
	if err != nil {
		logger.Error("Erro carregando guias", zap.Error(err))
		return nil, fmt.Errorf("erro carregando guias: %w", err)
	}

	saldos, err := s.saldoRepo.GetSaldosByCompetencia(ctx, req.Empresa, comp)
	if err != nil {
		logger.Error("Erro carregando saldos persistidos", zap.Error(err))
		return nil, fmt.Errorf("erro carregando saldos: %w", err)
	}

	seeds := make(map[string]decimal.Decimal)
	estados := make(map[string]fiscal.EstadoSaldo)

	if len(saldos) > 0 {
		// a competência já tem artefatos próprios: restaurar
		for _, saldo := range saldos {
			numero := fiscal.NormalizarNumeroNota(saldo.NumeroNota)
			seeds[numero] = saldo.QuantidadeOriginal.Sub(saldo.SaldoRemanescente)
			if saldo.Confirmado {
				estados[numero] = fiscal.EstadoConfirmado
			} else {
				estados[numero] = fiscal.EstadoRestaurado
			}
		}
		logger.Info("Saldos restaurados do armazenamento", zap.Int("notas", len(saldos)))
	} else {
		// sem artefatos: sugerir a partir do fechamento anterior
		anteriores, err := s.saldoRepo.GetSaldosByCompetencia(ctx, req.Empresa, comp.Anterior())
		if err != nil {
			logger.Error("Erro carregando competência anterior", zap.Error(err))
			return nil, fmt.Errorf("erro carregando competência anterior: %w", err)
		}
		if len(anteriores) == 0 {
			// competência anterior pulada: sugerir do fechamento mais
			// recente de cada nota
			anteriores, err = s.fechamentosMaisRecentes(ctx, req.Empresa, comp, guias)
			if err != nil {
				return nil, err
			}
		}
		for _, saldo := range anteriores {
			if saldo.SaldoRemanescente.IsZero() {
				continue
			}
			numero := fiscal.NormalizarNumeroNota(saldo.NumeroNota)
			seeds[numero] = saldo.SaldoRemanescente
			estados[numero] = fiscal.EstadoSugerido
		}
		if len(seeds) > 0 {
			logger.Info("Saldos sugeridos de fechamentos anteriores",
				zap.Int("notas", len(seeds)))
		}
	}

	linhas := fiscal.EnriquecerGuias(guias, notas, seeds)
	for i := range linhas {
		if estado, ok := estados[linhas[i].NumeroNormalizado]; ok {
			linhas[i].Estado = estado
		}
	}

	s.mu.Lock()
	s.sessoes[req.Empresa] = &sessaoApuracao{
		competencia: comp,
		confirmada:  confirmada,
		linhas:      linhas,
	}
	s.mu.Unlock()

	logger.Info("Competência aberta",
		zap.Int("linhas", len(linhas)),
		zap.Bool("confirmada", confirmada))

	return &AberturaCompetencia{
		Empresa:     req.Empresa,
		Competencia: comp,
		Confirmada:  confirmada,
		Linhas:      copiarLinhas(linhas),
	}, nil
}

// Linhas retorna a visão atual da sessão aberta da empresa
func (s *apuracaoService) Linhas(empresa string) (*AberturaCompetencia, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessao, ok := s.sessoes[empresa]
	if !ok {
		return nil, ErrSessaoNaoAberta
	}

	return &AberturaCompetencia{
		Empresa:     empresa,
		Competencia: sessao.competencia,
		Confirmada:  sessao.confirmada,
		Linhas:      copiarLinhas(sessao.linhas),
	}, nil
}

// EditarSaldo sobrescreve o saldo anterior de uma nota imediatamente na
// sessão. Se a nota já estava confirmada, a edição também é gravada de
// forma síncrona no armazenamento, para não haver divergência entre a
// tela e o persistido.
func (s *apuracaoService) EditarSaldo(ctx context.Context, req *models.EditarSaldoRequest) (*fiscal.GuiaEnriquecida, error) {
	if req.SaldoAnterior.IsNegative() {
		return nil, ErrSaldoNegativo
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sessao, ok := s.sessoes[req.Empresa]
	if !ok {
		return nil, ErrSessaoNaoAberta
	}

	linha := buscarLinha(sessao, req.NumeroNota)
	if linha == nil {
		return nil, ErrNotaNaoEncontrada
	}

	estadoAnterior := linha.Estado
	novoEstado, err := fiscal.Transicionar(linha.Estado, fiscal.EventoEditar)
	if err != nil {
		return nil, err
	}

	linha.SaldoAnterior = req.SaldoAnterior
	if linha.SaldoAnterior.IsPositive() {
		linha.SaldoAtual = linha.Quantidade.Sub(linha.SaldoAnterior)
	} else {
		linha.SaldoAtual = linha.Quantidade
	}
	linha.Estado = novoEstado

	if estadoAnterior == fiscal.EstadoConfirmado {
		saldo := saldoDaLinha(req.Empresa, sessao.competencia, linha, true)
		if err := s.saldoRepo.UpsertSaldo(ctx, saldo); err != nil {
			s.logger.Error("Erro no write-through da edição",
				zap.String("empresa", req.Empresa),
				zap.String("numero_nota", req.NumeroNota),
				zap.Error(err))
			return nil, fmt.Errorf("erro gravando edição confirmada: %w", err)
		}
		// a edição invalida qualquer alocação gravada: o consumo da nota
		// volta a zero até a FIFO ser reexecutada e salva
		s.logger.Warn("Edição sobre nota confirmada zerou o consumo gravado, reexecute a alocação",
			zap.String("empresa", req.Empresa),
			zap.String("numero_nota", req.NumeroNota))
	}

	s.logger.Info("Saldo anterior editado",
		zap.String("empresa", req.Empresa),
		zap.String("numero_nota", req.NumeroNota),
		zap.String("saldo_anterior", req.SaldoAnterior.String()),
		zap.String("estado", string(linha.Estado)))

	copia := *linha
	return &copia, nil
}

// ConfirmarSaldo grava o saldo de uma nota como definitivo. Confirmar duas
// vezes com o mesmo valor é um no-op no armazenamento: a chave é a mesma e
// o upsert não duplica linhas.
func (s *apuracaoService) ConfirmarSaldo(ctx context.Context, req *models.ConfirmarSaldoRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessao, ok := s.sessoes[req.Empresa]
	if !ok {
		return ErrSessaoNaoAberta
	}

	linha := buscarLinha(sessao, req.NumeroNota)
	if linha == nil {
		return ErrNotaNaoEncontrada
	}

	saldo := saldoDaLinha(req.Empresa, sessao.competencia, linha, true)
	if err := s.saldoRepo.UpsertSaldo(ctx, saldo); err != nil {
		s.logger.Error("Erro confirmando saldo",
			zap.String("empresa", req.Empresa),
			zap.String("numero_nota", req.NumeroNota),
			zap.Error(err))
		return fmt.Errorf("erro confirmando saldo: %w", err)
	}

	linha.Estado, _ = fiscal.Transicionar(linha.Estado, fiscal.EventoConfirmar)
	return nil
}

// ConfirmarTodas confirma todas as linhas da sessão em um único lote
func (s *apuracaoService) ConfirmarTodas(ctx context.Context, req *models.ConfirmarTodasRequest) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessao, ok := s.sessoes[req.Empresa]
	if !ok {
		return 0, ErrSessaoNaoAberta
	}

	saldos := make([]*models.SaldoNota, 0, len(sessao.linhas))
	for i := range sessao.linhas {
		saldos = append(saldos, saldoDaLinha(req.Empresa, sessao.competencia, &sessao.linhas[i], true))
	}

	if err := s.saldoRepo.UpsertSaldos(ctx, saldos); err != nil {
		s.logger.Error("Erro confirmando lote de saldos",
			zap.String("empresa", req.Empresa),
			zap.Int("notas", len(saldos)),
			zap.Error(err))
		return 0, fmt.Errorf("erro confirmando saldos: %w", err)
	}

	for i := range sessao.linhas {
		sessao.linhas[i].Estado, _ = fiscal.Transicionar(sessao.linhas[i].Estado, fiscal.EventoConfirmar)
	}

	s.logger.Info("Saldos confirmados em lote",
		zap.String("empresa", req.Empresa),
		zap.Int("notas", len(saldos)))

	return len(saldos), nil
}

// ConfirmarCompetencia trava a competência no armazenamento. Se outro
// operador já confirmou, repository.ErrCompetenciaConfirmada é propagado.
func (s *apuracaoService) ConfirmarCompetencia(ctx context.Context, req *models.CompetenciaRequest) error {
	comp := models.Competencia{Ano: req.Ano, Mes: req.Mes}
	if err := comp.Valida(); err != nil {
		return err
	}

	if err := s.competenciaRepo.Confirmar(ctx, req.Empresa, comp); err != nil {
		return err
	}

	s.mu.Lock()
	if sessao, ok := s.sessoes[req.Empresa]; ok && sessao.competencia == comp {
		sessao.confirmada = true
	}
	s.mu.Unlock()

	s.logger.Info("Competência confirmada",
		zap.String("empresa", req.Empresa),
		zap.String("competencia", comp.String()))
	return nil
}

// ReabrirCompetencia destrava a competência por ação explícita do operador
// e descarta a sessão em memória: a próxima abertura semeia do zero.
func (s *apuracaoService) ReabrirCompetencia(ctx context.Context, req *models.CompetenciaRequest) error {
	comp := models.Competencia{Ano: req.Ano, Mes: req.Mes}
	if err := comp.Valida(); err != nil {
		return err
	}

	if err := s.competenciaRepo.Reabrir(ctx, req.Empresa, comp); err != nil {
		return err
	}

	s.mu.Lock()
	if sessao, ok := s.sessoes[req.Empresa]; ok && sessao.competencia == comp {
		delete(s.sessoes, req.Empresa)
	}
	s.mu.Unlock()

	if err := s.notaCache.Invalidate(ctx, req.Empresa, comp); err != nil {
		s.logger.Warn("Erro invalidando cache de notas", zap.Error(err))
	}

	s.logger.Info("Competência reaberta",
		zap.String("empresa", req.Empresa),
		zap.String("competencia", comp.String()))
	return nil
}

// fechamentosMaisRecentes busca, nota a nota, o fechamento mais recente
// anterior à competência informada
func (s *apuracaoService) fechamentosMaisRecentes(ctx context.Context, empresa string, comp models.Competencia, guias []models.Guia) ([]*models.SaldoNota, error) {
	var saldos []*models.SaldoNota
	for _, guia := range guias {
		if guia.Status != models.GuiaUtilizavel {
			continue
		}
		saldo, err := s.saldoRepo.GetSaldoAnterior(ctx, empresa, guia.NumeroNota, comp)
		if err != nil {
			return nil, fmt.Errorf("erro carregando fechamento anterior da nota %s: %w", guia.NumeroNota, err)
		}
		if saldo != nil {
			saldos = append(saldos, saldo)
		}
	}
	return saldos, nil
}

// carregarNotas busca as notas da competência com cache multi-nível
func (s *apuracaoService) carregarNotas(ctx context.Context, empresa string, comp models.Competencia) ([]models.NotaFiscal, error) {
	if notas, ok := s.notaCache.GetNotas(ctx, empresa, comp); ok {
		return notas, nil
	}

	notas, err := s.fiscalRepo.GetNotasByCompetencia(ctx, empresa, comp)
	if err != nil {
		return nil, fmt.Errorf("erro carregando notas: %w", err)
	}

	if err := s.notaCache.SetNotas(ctx, empresa, comp, notas); err != nil {
		s.logger.Warn("Erro populando cache de notas", zap.Error(err))
	}

	return notas, nil
}

// copiarLinhas devolve uma cópia das linhas da sessão. Tudo que sai do
// mutex é cópia: os chamadores serializam e inspecionam fora do lock,
// enquanto edições concorrentes mutam o estado vivo.
func copiarLinhas(linhas []fiscal.GuiaEnriquecida) []fiscal.GuiaEnriquecida {
	copia := make([]fiscal.GuiaEnriquecida, len(linhas))
	copy(copia, linhas)
	return copia
}

// buscarLinha localiza uma linha da sessão pelo número de nota normalizado
func buscarLinha(sessao *sessaoApuracao, numeroNota string) *fiscal.GuiaEnriquecida {
	numero := fiscal.NormalizarNumeroNota(numeroNota)
	for i := range sessao.linhas {
		if sessao.linhas[i].NumeroNormalizado == numero {
			return &sessao.linhas[i]
		}
	}
	return nil
}

// saldoDaLinha monta o snapshot persistível de uma linha. No momento da
// confirmação o consumo ainda não é conhecido (só depois da importação do
// estoque), então quantidade_consumida sai zerada.
func saldoDaLinha(empresa string, comp models.Competencia, linha *fiscal.GuiaEnriquecida, confirmado bool) *models.SaldoNota {
	return &models.SaldoNota{
		Empresa:             empresa,
		NumeroNota:          linha.Guia.NumeroNota,
		Ano:                 comp.Ano,
		Mes:                 comp.Mes,
		SaldoRemanescente:   linha.SaldoAtual,
		QuantidadeOriginal:  linha.Quantidade,
		QuantidadeConsumida: decimal.Zero,
		Confirmado:          confirmado,
	}
}
