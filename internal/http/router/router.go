package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/construtivo/construtivo-api/internal/auth"
	"github.com/construtivo/construtivo-api/internal/config"
	"github.com/construtivo/construtivo-api/internal/database"
	"github.com/construtivo/construtivo-api/internal/http/handler"
	"github.com/construtivo/construtivo-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/construtivo/construtivo-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	obraHandler       *handler.ObraHandler
	fornecedorHandler *handler.FornecedorHandler
	orcamentoHandler  *handler.OrcamentoHandler
	pedidoHandler     *handler.PedidoHandler
	negociacaoHandler *handler.NegociacaoHandler
	medicaoHandler    *handler.MedicaoHandler
	financeiroHandler *handler.FinanceiroHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	obraHandler *handler.ObraHandler,
	fornecedorHandler *handler.FornecedorHandler,
	orcamentoHandler *handler.OrcamentoHandler,
	pedidoHandler *handler.PedidoHandler,
	negociacaoHandler *handler.NegociacaoHandler,
	medicaoHandler *handler.MedicaoHandler,
	financeiroHandler *handler.FinanceiroHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		obraHandler:       obraHandler,
		fornecedorHandler: fornecedorHandler,
		orcamentoHandler:  orcamentoHandler,
		pedidoHandler:     pedidoHandler,
		negociacaoHandler: negociacaoHandler,
		medicaoHandler:    medicaoHandler,
		financeiroHandler: financeiroHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Public endpoints are throttled per IP; authenticated traffic is
	// throttled per user inside the API group, after authentication.
	r.Group(func(r chi.Router) {
		r.Use(rt.rateLimiter.LimitByIP)

		// Health check (basic liveness probe)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		// Database health check (readiness probe)
		r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if err := database.HealthCheck(r.Context(), rt.db); err != nil {
				rt.logger.Error("Database health check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"status":  "unhealthy",
					"error":   err.Error(),
					"service": "database",
				})
				return
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "healthy",
				"service": "database",
			})
		})

		// Combined readiness check
		r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
			checks := make(map[string]interface{})
			allHealthy := true

			if err := database.HealthCheck(r.Context(), rt.db); err != nil {
				rt.logger.Error("Database health check failed", zap.Error(err))
				checks["database"] = map[string]interface{}{
					"status": "unhealthy",
					"error":  err.Error(),
				}
				allHealthy = false
			} else {
				checks["database"] = map[string]interface{}{
					"status": "healthy",
				}
			}

			w.Header().Set("Content-Type", "application/json")
			status := "healthy"
			code := http.StatusOK
			if !allHealthy {
				status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
			w.WriteHeader(code)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": status,
				"checks": checks,
			})
		})

		// Swagger documentation
		if rt.cfg.Server.EnableSwagger {
			r.Get("/swagger/*", httpSwagger.Handler(
				httpSwagger.URL("/swagger/doc.json"),
			))
		}
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.authMiddleware.Authenticate)
		r.Use(rt.rateLimiter.Limit)

		// Obras
		r.Route("/obras", func(r chi.Router) {
			r.Get("/", rt.obraHandler.List)
			r.Post("/", rt.obraHandler.Create)
			r.Get("/{id}", rt.obraHandler.Get)
			r.Put("/{id}", rt.obraHandler.Update)
			r.Delete("/{id}", rt.obraHandler.Delete)
			r.Get("/{id}/centros-custo", rt.orcamentoHandler.ListCentros)
			r.Get("/{id}/itens-custo", rt.orcamentoHandler.ListItensByObra)
		})

		// Fornecedores
		r.Route("/fornecedores", func(r chi.Router) {
			r.Get("/", rt.fornecedorHandler.List)
			r.Post("/", rt.fornecedorHandler.Create)
			r.Get("/{id}", rt.fornecedorHandler.Get)
			r.Put("/{id}", rt.fornecedorHandler.Update)
			r.Delete("/{id}", rt.fornecedorHandler.Delete)
		})

		// Orçamento
		r.Route("/centros-custo", func(r chi.Router) {
			r.Post("/", rt.orcamentoHandler.CreateCentro)
			r.Get("/{id}", rt.orcamentoHandler.GetCentro)
			r.Put("/{id}", rt.orcamentoHandler.UpdateCentro)
			r.Delete("/{id}", rt.orcamentoHandler.DeleteCentro)
			r.Post("/{id}/grupos", rt.orcamentoHandler.CreateGrupo)
		})

		r.Route("/grupos", func(r chi.Router) {
			r.Get("/{id}", rt.orcamentoHandler.GetGrupo)
			r.Put("/{id}", rt.orcamentoHandler.UpdateGrupo)
			r.Delete("/{id}", rt.orcamentoHandler.DeleteGrupo)
			r.Post("/{id}/itens", rt.orcamentoHandler.CreateItem)
		})

		r.Post("/orcamento/refresh", rt.orcamentoHandler.Refresh)

		r.Route("/itens-custo", func(r chi.Router) {
			r.Get("/{id}", rt.orcamentoHandler.GetItem)
			r.Put("/{id}", rt.orcamentoHandler.UpdateItem)
			r.Delete("/{id}", rt.orcamentoHandler.DeleteItem)
		})

		// Pedidos de compra
		r.Route("/pedidos", func(r chi.Router) {
			r.Get("/", rt.pedidoHandler.List)
			r.Post("/", rt.pedidoHandler.Create)
			r.Get("/{id}", rt.pedidoHandler.Get)
			r.Put("/{id}", rt.pedidoHandler.Update)
			r.Delete("/{id}", rt.pedidoHandler.Delete)
			r.Post("/{id}/aprovar", rt.pedidoHandler.Approve)
			r.Get("/{id}/pdf", rt.pedidoHandler.PDF)
		})

		// Negociações
		r.Route("/negociacoes", func(r chi.Router) {
			r.Get("/", rt.negociacaoHandler.List)
			r.Post("/", rt.negociacaoHandler.Create)
			r.Get("/{id}", rt.negociacaoHandler.Get)
			r.Put("/{id}", rt.negociacaoHandler.Update)
			r.Delete("/{id}", rt.negociacaoHandler.Delete)
			r.Get("/{id}/relatorio", rt.negociacaoHandler.Report)
			r.Get("/{id}/medicoes", rt.negociacaoHandler.ListMedicoes)
		})

		// Medições
		r.Route("/medicoes", func(r chi.Router) {
			r.Post("/", rt.medicaoHandler.Create)
			r.Get("/{id}", rt.medicaoHandler.Get)
			r.Put("/{id}", rt.medicaoHandler.Update)
			r.Delete("/{id}", rt.medicaoHandler.Delete)
			r.Post("/{id}/aprovar", rt.medicaoHandler.Approve)
			r.Get("/{id}/pdf", rt.medicaoHandler.PDF)
		})

		// Financeiro
		r.Route("/financeiro", func(r chi.Router) {
			r.Get("/contas", rt.financeiroHandler.Contas)
			r.Get("/export", rt.financeiroHandler.Export)
			r.Post("/parcelas/{origem}/{id}/pagar", rt.financeiroHandler.PagarParcela)
		})
	})

	return r
}
