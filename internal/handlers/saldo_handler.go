package handlers

import (
	"errors"
	"net/http"
	"time"

	"ressarcimento-service/internal/models"
	"ressarcimento-service/internal/repository"
	"ressarcimento-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SaldoHandler atende as requisições HTTP do fluxo de saldos e da trava de
// competência
type SaldoHandler struct {
	apuracaoService services.ApuracaoService
	validator       *validator.Validate
	logger          *zap.Logger
}

// NewSaldoHandler cria uma nova instância do handler
func NewSaldoHandler(apuracaoService services.ApuracaoService, logger *zap.Logger) *SaldoHandler {
	return &SaldoHandler{
		apuracaoService: apuracaoService,
		validator:       validator.New(),
		logger:          logger,
	}
}

// logDebug logs apenas em modo debug
func (h *SaldoHandler) logDebug(msg string, fields ...zap.Field) {
	h.logger.Debug("🔍 [DEBUG] "+msg, fields...)
}

// logError logs de erro em todos os modos
func (h *SaldoHandler) logError(msg string, fields ...zap.Field) {
	h.logger.Error("❌ "+msg, fields...)
}

// logSuccess logs de sucesso em todos os modos
func (h *SaldoHandler) logSuccess(msg string, fields ...zap.Field) {
	h.logger.Info("✅ "+msg, fields...)
}

// AbrirCompetencia abre (ou reabre a visão de) uma competência para a empresa
func (h *SaldoHandler) AbrirCompetencia(c *gin.Context) {
	start := time.Now()

	var req models.AbrirCompetenciaRequest
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

	abertura, err := h.apuracaoService.AbrirCompetencia(c.Request.Context(), &req)
	if err != nil {
		h.logError("Erro abrindo competência",
			zap.String("empresa", req.Empresa),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Erro abrindo competência",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Competência aberta",
		zap.String("empresa", req.Empresa),
		zap.String("competencia", abertura.Competencia.String()),
		zap.Int("linhas", len(abertura.Linhas)),
		zap.Duration("latency", time.Since(start)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Competência aberta",
		"data":    abertura,
	})
}

// GetSaldos retorna a visão atual da sessão aberta da empresa
func (h *SaldoHandler) GetSaldos(c *gin.Context) {
	empresa := c.Query("empresa")
	if empresa == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Parâmetro empresa é obrigatório",
		})
		return
	}

	h.logDebug("Consultando sessão", zap.String("empresa", empresa))

	visao, err := h.apuracaoService.Linhas(empresa)
	if err != nil {
		if errors.Is(err, services.ErrSessaoNaoAberta) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nenhuma competência aberta para a empresa",
			})
			return
		}
		h.logError("Erro consultando sessão", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Erro consultando sessão",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    visao,
	})
}

// EditarSaldo sobrescreve manualmente o saldo anterior de uma nota
func (h *SaldoHandler) EditarSaldo(c *gin.Context) {
	var req models.EditarSaldoRequest
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

	linha, err := h.apuracaoService.EditarSaldo(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSaldoNegativo):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "❌ Saldo anterior não pode ser negativo",
			})
		case errors.Is(err, services.ErrSessaoNaoAberta):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nenhuma competência aberta para a empresa",
			})
		case errors.Is(err, services.ErrNotaNaoEncontrada):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nota não encontrada na competência aberta",
			})
		default:
			h.logError("Erro editando saldo",
				zap.String("empresa", req.Empresa),
				zap.String("numero_nota", req.NumeroNota),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "❌ Erro editando saldo",
				"error":   err.Error(),
			})
		}
		return
	}

	h.logSuccess("Saldo editado",
		zap.String("empresa", req.Empresa),
		zap.String("numero_nota", req.NumeroNota))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Saldo atualizado",
		"data":    linha,
	})
}

// ConfirmarSaldo confirma o saldo de uma nota individual
func (h *SaldoHandler) ConfirmarSaldo(c *gin.Context) {
	var req models.ConfirmarSaldoRequest
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

	if err := h.apuracaoService.ConfirmarSaldo(c.Request.Context(), &req); err != nil {
		switch {
		case errors.Is(err, services.ErrSessaoNaoAberta):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nenhuma competência aberta para a empresa",
			})
		case errors.Is(err, services.ErrNotaNaoEncontrada):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nota não encontrada na competência aberta",
			})
		default:
			h.logError("Erro confirmando saldo",
				zap.String("empresa", req.Empresa),
				zap.String("numero_nota", req.NumeroNota),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "❌ Erro confirmando saldo",
				"error":   err.Error(),
			})
		}
		return
	}

	h.logSuccess("Saldo confirmado",
		zap.String("empresa", req.Empresa),
		zap.String("numero_nota", req.NumeroNota))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Saldo confirmado",
	})
}

// ConfirmarTodas confirma todos os saldos da sessão em lote
func (h *SaldoHandler) ConfirmarTodas(c *gin.Context) {
	start := time.Now()

	var req models.ConfirmarTodasRequest
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

	quantos, err := h.apuracaoService.ConfirmarTodas(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrSessaoNaoAberta) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Nenhuma competência aberta para a empresa",
			})
			return
		}
		h.logError("Erro confirmando saldos em lote",
			zap.String("empresa", req.Empresa),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Erro confirmando saldos",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Saldos confirmados em lote",
		zap.String("empresa", req.Empresa),
		zap.Int("notas", quantos),
		zap.Duration("latency", time.Since(start)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Saldos confirmados",
		"notas":   quantos,
	})
}

// ConfirmarCompetencia trava a competência contra alterações
func (h *SaldoHandler) ConfirmarCompetencia(c *gin.Context) {
	var req models.CompetenciaRequest
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

	if err := h.apuracaoService.ConfirmarCompetencia(c.Request.Context(), &req); err != nil {
		if errors.Is(err, repository.ErrCompetenciaConfirmada) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "❌ Competência já está confirmada",
			})
			return
		}
		h.logError("Erro confirmando competência",
			zap.String("empresa", req.Empresa),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Erro confirmando competência",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Competência confirmada",
		zap.String("empresa", req.Empresa),
		zap.Int("ano", req.Ano),
		zap.Int("mes", req.Mes))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Competência confirmada",
	})
}

// ReabrirCompetencia destrava a competência por ação explícita do operador
func (h *SaldoHandler) ReabrirCompetencia(c *gin.Context) {
	var req models.CompetenciaRequest
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

	if err := h.apuracaoService.ReabrirCompetencia(c.Request.Context(), &req); err != nil {
		h.logError("Erro reabrindo competência",
			zap.String("empresa", req.Empresa),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Erro reabrindo competência",
			"error":   err.Error(),
		})
		return
	}

	h.logSuccess("Competência reaberta",
		zap.String("empresa", req.Empresa),
		zap.Int("ano", req.Ano),
		zap.Int("mes", req.Mes))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Competência reaberta",
	})
}
