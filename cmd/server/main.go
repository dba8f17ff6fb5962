package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ressarcimento-service/internal/cache"
	"ressarcimento-service/internal/config"
	"ressarcimento-service/internal/database"
	"ressarcimento-service/internal/handlers"
	"ressarcimento-service/internal/middleware"
	"ressarcimento-service/internal/repository"
	"ressarcimento-service/internal/routes"
	"ressarcimento-service/internal/services"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "executa as migrações e encerra")
	migrationsPath := flag.String("migrations", "migrations", "diretório das migrações SQL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("erro carregando configuração: " + err.Error())
	}

	logger := newLogger(cfg.Logging.Level)
	defer logger.Sync()

	postgresDB, err := database.NewPostgresDB(
		cfg.Database.URL,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		logger,
	)
	if err != nil {
		logger.Fatal("Erro conectando ao PostgreSQL", zap.Error(err))
	}
	defer postgresDB.Close()

	if err := postgresDB.RunMigrations(*migrationsPath, logger); err != nil {
		logger.Fatal("Erro aplicando migrações", zap.Error(err))
	}
	if *migrateOnly {
		logger.Info("Migrações aplicadas, encerrando")
		return
	}

	redisDB, err := database.NewRedisDB(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("Erro conectando ao Redis", zap.Error(err))
	}
	defer redisDB.Close()

	// Repositories
	fiscalRepo, err := repository.NewFiscalRepository(postgresDB.DB)
	if err != nil {
		logger.Fatal("Erro inicializando repositório fiscal", zap.Error(err))
	}
	saldoRepo, err := repository.NewSaldoRepository(postgresDB.DB)
	if err != nil {
		logger.Fatal("Erro inicializando repositório de saldos", zap.Error(err))
	}
	competenciaRepo := repository.NewCompetenciaRepository(postgresDB.DB)

	// Cache e services
	notaCache := cache.NewNotaCache(redisDB.Client, cfg.Cache.NotasTTL, logger)
	apuracaoService := services.NewApuracaoService(fiscalRepo, saldoRepo, competenciaRepo, notaCache, logger)
	monitoringService := services.NewMonitoringService(logger, cfg, redisDB.Client, postgresDB.DB, notaCache)

	// Handlers
	saldoHandler := handlers.NewSaldoHandler(apuracaoService, logger)
	alocacaoHandler := handlers.NewAlocacaoHandler(apuracaoService, logger)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService, logger)
	healthChecker := middleware.NewHealthChecker(postgresDB, redisDB, logger)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(monitoringHandler.RecordRequestMiddleware())

	routes.SetupRoutes(router, saldoHandler, alocacaoHandler, monitoringHandler, healthChecker)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		middleware.ServerInfo(cfg.Server.Port, logger)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Erro no servidor HTTP", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Encerrando servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Erro no shutdown do servidor", zap.Error(err))
	}

	logger.Info("Servidor encerrado")
}

func newLogger(level string) *zap.Logger {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		panic("erro inicializando logger: " + err.Error())
	}
	return logger
}
