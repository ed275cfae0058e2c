// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"almacen/internal/domain/auth"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/catalogs/supplier"
	"almacen/internal/domain/ledger/closing"
	"almacen/internal/domain/ledger/expense"
	"almacen/internal/domain/ledger/payment"
	"almacen/internal/domain/ledger/sale"
	"almacen/internal/domain/registers/stock"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/http/v1/handlers"
	"almacen/internal/infrastructure/http/v1/middleware"
	"almacen/internal/infrastructure/storage/postgres"
	"almacen/pkg/logger"
)

// RouterConfig holds everything the HTTP layer depends on.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	// JWTValidator validates web session tokens.
	JWTValidator middleware.TokenValidator

	// APIKeys authenticates the mobile assistant and manages keys.
	APIKeys *auth.APIKeyService

	Products  *product.Service
	Customers *customer.Service
	Suppliers *supplier.Service
	Stock     *stock.Service

	Sales    *sale.Service
	Payments *payment.Service
	Expenses *expense.Service
	Closings *closing.Service
	Reports  *reports.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	// Web API: staff sessions.
	web := router.Group("/api/v1")
	web.Use(middleware.SessionAuth(cfg.JWTValidator))
	{
		handlers.NewProductHandler(base, cfg.Products, cfg.Stock).RegisterRoutes(web.Group("/products"))
		handlers.NewCustomerHandler(base, cfg.Customers, cfg.Payments).RegisterRoutes(web.Group("/customers"))
		handlers.NewSupplierHandler(base, cfg.Suppliers).RegisterRoutes(web.Group("/suppliers"))
		handlers.NewSaleHandler(base, cfg.Sales).RegisterRoutes(web.Group("/sales"))
		handlers.NewPaymentHandler(base, cfg.Payments).RegisterRoutes(web.Group("/payments"))
		handlers.NewExpenseHandler(base, cfg.Expenses).RegisterRoutes(web.Group("/expenses"))
		handlers.NewClosingHandler(base, cfg.Closings, cfg.Reports).RegisterRoutes(web.Group("/cash-closings"))
		handlers.NewReportHandler(base, cfg.Reports).RegisterRoutes(web.Group("/reports"))
		handlers.NewAPIKeyHandler(base, cfg.APIKeys).RegisterRoutes(web.Group("/api-keys"))
	}

	// Mobile API: keyed assistant access, one permission per route.
	mobile := router.Group("/api/v1/mobile")
	mobile.Use(middleware.APIKeyAuth(cfg.APIKeys))
	handlers.NewMobileHandler(
		base,
		cfg.Products,
		cfg.Customers,
		cfg.Sales,
		cfg.Payments,
		cfg.Stock,
		cfg.Reports,
	).RegisterRoutes(mobile)

	return router
}
