package handlers

import (
	"errors"
	"net/http"
	"time"

	"ressarcimento-service/internal/models"
	"ressarcimento-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AlocacaoHandler atende as requisições HTTP do fluxo de alocação FIFO
type AlocacaoHandler struct {
	apuracaoService services.ApuracaoService
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewAlocacaoHandler cria uma nova instância do handler
func NewAlocacaoHandler(apuracaoService services.ApuracaoService, logger *zap.Logger) *AlocacaoHandler {
	return &AlocacaoHandler{
		apuracaoService: apuracaoService,
		validator:       validator.New(),
		logger:          logger,
	}
}

func (h *AlocacaoHandler) logError(msg string, fields ...zap.Field) {
	h.logger.Error("❌ "+msg, fields...)
}

func (h *AlocacaoHandler) logSuccess(msg string, fields ...zap.Field) {
	h.logger.Info("✅ "+msg, fields...)
}

// ImportarRelatorio recebe o arquivo do relatório de movimentação (multipart)
// e o anexa à sessão aberta da empresa
func (h *AlocacaoHandler) ImportarRelatorio(c *gin.Context) {
	start := time.Now()

	empresa := c.PostForm("empresa")
	if empresa == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Campo empresa é obrigatório",
		})
		return
	}

	arquivo, header, err := c.Request.FormFile("arquivo")
	if err != nil {
		h.logError("Erro lendo arquivo do upload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Arquivo do relatório é obrigatório",
			"error":   err.Error(),
		})
		return
	}
	defer arquivo.Close()

	relatorio, err := h.apuracaoService.ImportarRelatorio(c.Request.Context(), empresa, arquivo)
	if err != nil {
		if errors.Is(err, services.ErrSessaoNaoAberta) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nenhuma competência aberta para a empresa",
			})
			return
		}
		h.logError("Erro importando relatório",
			zap.String("empresa", empresa),
			zap.String("arquivo", header.Filename),
			zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "❌ Relatório inválido, nenhum dado foi importado",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Relatório importado",
		zap.String("empresa", empresa),
		zap.String("arquivo", header.Filename),
		zap.Int("movimentos", len(relatorio.Movimentos)),
		zap.Duration("latency", time.Since(start)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Relatório importado",
		"data":    relatorio,
	})
}

// ExecutarAlocacao roda a alocação FIFO sobre a sessão aberta
func (h *AlocacaoHandler) ExecutarAlocacao(c *gin.Context) {
	var req models.AlocacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Formato de dados inválido",
			"error":   err.Error(),
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logError("Validation error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Dados de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}

	resultado, err := h.apuracaoService.ExecutarAlocacao(c.Request.Context(), req.Empresa)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessaoNaoAberta):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nenhuma competência aberta para a empresa",
			})
		case errors.Is(err, services.ErrRelatorioNaoImportado):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "❌ Importe o relatório de estoque antes de alocar",
			})
		default:
			h.logError("Erro executando alocação",
				zap.String("empresa", req.Empresa),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "❌ Erro executando alocação",
				"error":   err.Error(),
			})
		}
		return
	}

	h.logSuccess("Alocação executada",
		zap.String("empresa", req.Empresa),
		zap.Int("notas", len(resultado.Notas)),
		zap.Int("notas_utilizadas", resultado.NotasUtilizadas))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Alocação executada",
		"data":    resultado,
	})
}

// SalvarAlocacao grava o fechamento da alocação da sessão aberta
func (h *AlocacaoHandler) SalvarAlocacao(c *gin.Context) {
	start := time.Now()

	var req models.AlocacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logError("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Formato de dados inválido",
			"error":   err.Error(),
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		h.logError("Validation error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Dados de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}

	quantos, err := h.apuracaoService.SalvarAlocacao(c.Request.Context(), req.Empresa)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessaoNaoAberta):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nenhuma competência aberta para a empresa",
			})
		case errors.Is(err, services.ErrAlocacaoNaoExecutada):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "❌ Execute a alocação antes de salvar",
			})
		default:
			h.logError("Erro salvando alocação",
				zap.String("empresa", req.Empresa),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "❌ Erro salvando alocação",
				"error":   err.Error(),
			})
		}
		return
	}

	h.logSuccess("Alocação salva",
		zap.String("empresa", req.Empresa),
		zap.Int("notas", quantos),
		zap.Duration("latency", time.Since(start)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Fechamento gravado",
		"notas":   quantos,
	})
}
