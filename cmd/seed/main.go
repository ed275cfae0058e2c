// Package main seeds the database with demo data: a small catalog, a
// few credit customers and an admin API key for the mobile assistant.
// The plain API key is printed exactly once.
package main

import (
	"context"
	"fmt"
	"os"

	"almacen/internal/core/types"
	"almacen/internal/domain/auth"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/catalogs/supplier"
	"almacen/internal/domain/registers/stock"
	"almacen/internal/infrastructure/storage/postgres"
	"almacen/internal/infrastructure/storage/postgres/auth_repo"
	"almacen/internal/infrastructure/storage/postgres/catalog_repo"
	"almacen/internal/infrastructure/storage/postgres/register_repo"
	"almacen/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	products := product.NewService(catalog_repo.NewProductRepo(txManager))
	customers := customer.NewService(catalog_repo.NewCustomerRepo(txManager))
	suppliers := supplier.NewService(catalog_repo.NewSupplierRepo(txManager))
	stockSvc := stock.NewService(register_repo.NewStockRepo(txManager))
	apiKeys := auth.NewAPIKeyService(auth_repo.NewAPIKeyRepo(txManager))

	if err := seedCatalog(ctx, suppliers, products, stockSvc); err != nil {
		log.Fatalw("failed to seed catalog", "error", err)
	}
	if err := seedCustomers(ctx, customers); err != nil {
		log.Fatalw("failed to seed customers", "error", err)
	}

	key, plain, err := apiKeys.Issue(ctx, "mobile-assistant", auth.AllPermissions)
	if err != nil {
		log.Fatalw("failed to issue api key", "error", err)
	}

	log.Info("seeding completed")
	fmt.Printf("\nAPI key %q issued (key id %s).\n", key.Name, key.KeyID)
	fmt.Printf("Store it now, it will not be shown again:\n\n    %s\n\n", plain)
}

func seedCatalog(ctx context.Context, suppliers *supplier.Service, products *product.Service, stockSvc *stock.Service) error {
	dist := supplier.New("Distribuidora Central")
	dist.Phone = ptr("+34 600 111 222")
	if err := suppliers.Create(ctx, dist); err != nil {
		return err
	}

	demo := []struct {
		name     string
		price    string
		stock    string
		minStock string
		unit     string
	}{
		{"Rice 1kg", "2.50", "40", "10", "unit"},
		{"Cooking oil 1L", "4.80", "25", "8", "unit"},
		{"Sugar 1kg", "1.90", "30", "10", "unit"},
		{"Ground coffee 250g", "3.75", "18", "6", "unit"},
		{"Cheese", "12.40", "7.500", "2", "kg"},
	}

	for _, d := range demo {
		p := product.New(d.name, types.MustMoney(d.price))
		p.SupplierID = &dist.ID
		p.MinStock = types.MustMoney(d.minStock)
		p.Unit = d.unit
		if err := products.Create(ctx, p); err != nil {
			return err
		}
		if _, err := stockSvc.Adjust(ctx, p.ID, types.MustMoney(d.stock), "initial stock"); err != nil {
			return err
		}
	}
	return nil
}

func seedCustomers(ctx context.Context, customers *customer.Service) error {
	demo := []struct {
		name        string
		phone       string
		creditLimit string
	}{
		{"Maria Lopez", "+34 600 333 444", "150"},
		{"Juan Perez", "+34 600 555 666", "100"},
		{"Bar El Rincon", "+34 600 777 888", "500"},
	}

	for _, d := range demo {
		c := customer.New(d.name)
		c.Phone = ptr(d.phone)
		c.CreditLimit = types.MustMoney(d.creditLimit)
		if err := customers.Create(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func ptr(s string) *string {
	return &s
}
