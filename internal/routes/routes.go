package routes

import (
	"ressarcimento-service/internal/handlers"
	"ressarcimento-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configura todas as rotas da aplicação
func SetupRoutes(router *gin.Engine, saldoHandler *handlers.SaldoHandler, alocacaoHandler *handlers.AlocacaoHandler, monitoringHandler *handlers.MonitoringHandler, healthChecker *middleware.HealthChecker) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Fluxo de saldos (carry-forward entre competências)
		saldos := v1.Group("/saldos")
		{
			saldos.POST("/abrir", saldoHandler.AbrirCompetencia)
			saldos.GET("", saldoHandler.GetSaldos)
			saldos.PUT("/nota", saldoHandler.EditarSaldo)
			saldos.POST("/confirmar", saldoHandler.ConfirmarSaldo)
			saldos.POST("/confirmar-todas", saldoHandler.ConfirmarTodas)
		}

		// Trava de competência
		competencias := v1.Group("/competencias")
		{
			competencias.POST("/confirmar", saldoHandler.ConfirmarCompetencia)
			competencias.POST("/reabrir", saldoHandler.ReabrirCompetencia)
		}

		// Alocação FIFO das saídas físicas
		alocacao := v1.Group("/alocacao")
		{
			alocacao.POST("/importar", alocacaoHandler.ImportarRelatorio)
			alocacao.POST("/executar", alocacaoHandler.ExecutarAlocacao)
			alocacao.POST("/salvar", alocacaoHandler.SalvarAlocacao)
		}

		// Monitoring routes
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/metrics", monitoringHandler.GetMetrics)
			monitoring.GET("/metrics/summary", monitoringHandler.GetMetricsSummary)
			monitoring.GET("/ws", monitoringHandler.WebSocketMetrics)
		}
	}

	// Health check na raiz
	router.GET("/health", healthChecker.HealthCheck)
	router.GET("/health/monitoring", monitoringHandler.HealthCheck)

	// API info na raiz
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Ressarcimento ICMS-ST API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health": "/health",
				"api":    "/api/v1",
				"saldos": gin.H{
					"abrir":           "POST /api/v1/saldos/abrir",
					"visao":           "GET /api/v1/saldos?empresa=",
					"editar":          "PUT /api/v1/saldos/nota",
					"confirmar":       "POST /api/v1/saldos/confirmar",
					"confirmar_todas": "POST /api/v1/saldos/confirmar-todas",
				},
				"competencias": gin.H{
					"confirmar": "POST /api/v1/competencias/confirmar",
					"reabrir":   "POST /api/v1/competencias/reabrir",
				},
				"alocacao": gin.H{
					"importar": "POST /api/v1/alocacao/importar",
					"executar": "POST /api/v1/alocacao/executar",
					"salvar":   "POST /api/v1/alocacao/salvar",
				},
			},
		})
	})
}
