// Package main is the entry point for the almacen API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"almacen/internal/core/types"
	"almacen/internal/domain/auth"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/catalogs/supplier"
	"almacen/internal/domain/ledger/closing"
	"almacen/internal/domain/ledger/expense"
	"almacen/internal/domain/ledger/payment"
	"almacen/internal/domain/ledger/sale"
	"almacen/internal/domain/registers/debt"
	"almacen/internal/domain/registers/stock"
	"almacen/internal/domain/reports"
	"almacen/internal/infrastructure/cache"
	v1 "almacen/internal/infrastructure/http/v1"
	"almacen/internal/infrastructure/storage/postgres"
	"almacen/internal/infrastructure/storage/postgres/auth_repo"
	"almacen/internal/infrastructure/storage/postgres/catalog_repo"
	"almacen/internal/infrastructure/storage/postgres/ledger_repo"
	"almacen/internal/infrastructure/storage/postgres/register_repo"
	"almacen/internal/infrastructure/storage/postgres/report_repo"
	"almacen/pkg/logger"
	"almacen/pkg/numerator"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting almacen server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	stockRepo := register_repo.NewStockRepo(txManager)
	debtRepo := register_repo.NewDebtRepo(txManager)
	saleRepo := ledger_repo.NewSaleRepo(txManager)
	paymentRepo := ledger_repo.NewPaymentRepo(txManager)
	expenseRepo := ledger_repo.NewExpenseRepo(txManager)
	closingRepo := ledger_repo.NewClosingRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)
	apiKeyRepo := auth_repo.NewAPIKeyRepo(txManager)

	// --- Numbering ---
	numbers := numerator.New(func(ctx context.Context) numerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	// --- Audit trail ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Optional Redis summary cache ---
	var summaryCache *cache.SummaryCache
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		summaryCache = cache.New(cache.Config{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		if err := summaryCache.Ping(ctx); err != nil {
			log.Warnw("redis unavailable, daily summaries will not be cached", "error", err)
			summaryCache = nil
		} else {
			defer summaryCache.Close()
			log.Infow("summary cache connected", "addr", addr)
		}
	}

	// --- Domain services ---
	productService := product.NewService(productRepo)
	customerService := customer.NewService(customerRepo)
	supplierService := supplier.NewService(supplierRepo)
	stockService := stock.NewService(stockRepo)
	debtService := debt.NewService(debtRepo)

	saleService := sale.NewService(
		saleRepo,
		productService,
		customerService,
		stockService,
		debtService,
		numbers,
		txManager,
	).WithAudit(auditService)

	paymentService := payment.NewService(
		paymentRepo,
		customerService,
		debtService,
		txManager,
	).WithAudit(auditService)

	expenseService := expense.NewService(expenseRepo)

	tolerance, err := types.ParseMoney("CLOSING_TOLERANCE", getEnv("CLOSING_TOLERANCE", "1"))
	if err != nil {
		log.Fatalw("invalid CLOSING_TOLERANCE", "error", err)
	}
	closingService := closing.NewService(
		closingRepo,
		reportRepo,
		numbers,
		txManager,
		tolerance,
	).WithAudit(auditService)

	reportService := reports.NewService(reportRepo, closingRepo)
	if summaryCache != nil {
		reportService = reportService.WithCache(summaryCache)
		saleService = saleService.WithSummaryCache(summaryCache)
		paymentService = paymentService.WithSummaryCache(summaryCache)
		expenseService = expenseService.WithSummaryCache(summaryCache)
	}

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(mustEnv("JWT_SECRET")))
	apiKeyService := auth.NewAPIKeyService(apiKeyRepo)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool,
		Logger:       log,
		JWTValidator: jwtService,
		APIKeys:      apiKeyService,
		Products:     productService,
		Customers:    customerService,
		Suppliers:    supplierService,
		Stock:        stockService,
		Sales:        saleService,
		Payments:     paymentService,
		Expenses:     expenseService,
		Closings:     closingService,
		Reports:      reportService,
	})

	// --- HTTP Server ---
	addr := getEnv("HTTP_ADDR", ":8080")
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}
