package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/construtivo/construtivo-api/docs"
	"github.com/construtivo/construtivo-api/internal/auth"
	"github.com/construtivo/construtivo-api/internal/config"
	"github.com/construtivo/construtivo-api/internal/database"
	"github.com/construtivo/construtivo-api/internal/excel"
	"github.com/construtivo/construtivo-api/internal/http/handler"
	"github.com/construtivo/construtivo-api/internal/http/middleware"
	"github.com/construtivo/construtivo-api/internal/http/router"
	"github.com/construtivo/construtivo-api/internal/jobs"
	"github.com/construtivo/construtivo-api/internal/logger"
	"github.com/construtivo/construtivo-api/internal/pdf"
	"github.com/construtivo/construtivo-api/internal/repository"
	"github.com/construtivo/construtivo-api/internal/service"
	"go.uber.org/zap"
)

// @title Construtivo API
// @version 1.0
// @description API de controle financeiro de obras: orçamento, pedidos de compra, negociações, medições e contas a pagar

// @contact.name API Support
// @contact.email suporte@construtivo.com.br

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token issued by Supabase Auth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch cfg.App.Environment {
	case "production":
		docs.SwaggerInfo.Host = "api.construtivo.com.br"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", cfg.App.Port)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	obraRepo := repository.NewObraRepository(db)
	fornecedorRepo := repository.NewFornecedorRepository(db)
	centroRepo := repository.NewCentroCustoRepository(db)
	grupoRepo := repository.NewGrupoRepository(db)
	itemRepo := repository.NewItemCustoRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	negociacaoRepo := repository.NewNegociacaoRepository(db)
	medicaoRepo := repository.NewMedicaoRepository(db)
	financeiroRepo := repository.NewFinanceiroRepository(db)

	// Initialize services
	obraService := service.NewObraService(obraRepo, log, db)
	fornecedorService := service.NewFornecedorService(fornecedorRepo, log, db)
	orcamentoService := service.NewOrcamentoService(centroRepo, grupoRepo, itemRepo, obraRepo, log, db)
	pedidoService := service.NewPedidoService(pedidoRepo, itemRepo, obraRepo, fornecedorRepo, log, db)
	negociacaoService := service.NewNegociacaoService(negociacaoRepo, medicaoRepo, itemRepo, obraRepo, fornecedorRepo, log, db)
	medicaoService := service.NewMedicaoService(medicaoRepo, negociacaoRepo, log, db)
	financeiroService := service.NewFinanceiroService(financeiroRepo, log)

	// Document generators
	pdfGenerator := pdf.NewGenerator()
	excelGenerator := excel.NewGenerator()

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	obraHandler := handler.NewObraHandler(obraService, log)
	fornecedorHandler := handler.NewFornecedorHandler(fornecedorService, log)
	orcamentoHandler := handler.NewOrcamentoHandler(orcamentoService, log)
	pedidoHandler := handler.NewPedidoHandler(pedidoService, pdfGenerator, log)
	negociacaoHandler := handler.NewNegociacaoHandler(negociacaoService, medicaoService, log)
	medicaoHandler := handler.NewMedicaoHandler(medicaoService, negociacaoService, pdfGenerator, log)
	financeiroHandler := handler.NewFinanceiroHandler(financeiroService, excelGenerator, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		obraHandler,
		fornecedorHandler,
		orcamentoHandler,
		pedidoHandler,
		negociacaoHandler,
		medicaoHandler,
		financeiroHandler,
	)

	// Background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler = jobs.NewScheduler(log)
		if err := jobs.RegisterTotalsCheckJob(
			scheduler,
			orcamentoService,
			log,
			cfg.Jobs.TotalsCheckSchedule,
			10*time.Minute,
		); err != nil {
			log.Error("Failed to register totals check job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started",
				zap.String("totals_check_schedule", cfg.Jobs.TotalsCheckSchedule),
			)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
