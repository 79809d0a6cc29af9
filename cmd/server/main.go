package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appdocument "github.com/docflow/backend/internal/application/document"
	"github.com/docflow/backend/internal/domain/document"
	"github.com/docflow/backend/internal/infrastructure/config"
	"github.com/docflow/backend/internal/infrastructure/directory"
	"github.com/docflow/backend/internal/infrastructure/event"
	"github.com/docflow/backend/internal/infrastructure/logger"
	"github.com/docflow/backend/internal/infrastructure/persistence"
	"github.com/docflow/backend/internal/interfaces/http/handler"
	"github.com/docflow/backend/internal/interfaces/http/middleware"
	"github.com/docflow/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting document engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	customerDirectory := directory.NewGormCustomerDirectory(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	documentService := appdocument.NewDocumentService(documentRepo, customerDirectory, txScope)
	conversionService := appdocument.NewConversionService(txScope, document.ConversionPolicy{
		AllowRepeatedConversion: cfg.Engine.AllowRepeatedConversion,
	})
	paymentService := appdocument.NewPaymentService(documentRepo)
	overdueService := appdocument.NewOverdueService(documentRepo, log)

	eventBus := event.NewInMemoryEventBus(log)
	documentService.SetEventPublisher(eventBus)
	conversionService.SetEventPublisher(eventBus)
	paymentService.SetEventPublisher(eventBus)

	documentHandler := handler.NewDocumentHandler(documentService, conversionService)
	paymentHandler := handler.NewPaymentHandler(paymentService, overdueService)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := router.New(router.Config{
		Logger:        log,
		SystemHandler: systemHandler,
		Registrars: []router.RouteRegistrar{
			documentHandler,
			paymentHandler,
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
