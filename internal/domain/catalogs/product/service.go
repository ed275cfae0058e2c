package product

import (
	"context"
	"strings"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/pkg/logger"
)

// Service provides business logic for the product catalog.
type Service struct {
	repo Repository
}

// NewService creates a new product service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new product.
// Barcodes must be unique among active products.
func (s *Service) Create(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if p.Barcode != nil && *p.Barcode != "" {
		existing, err := s.repo.GetByBarcode(ctx, *p.Barcode)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if existing != nil {
			return apperror.NewDuplicate("product", "barcode", *p.Barcode)
		}
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)
	return nil
}

// Update validates and persists changes to an existing product.
// CurrentStock on the passed struct is ignored; only the stock register
// mutates it.
func (s *Service) Update(ctx context.Context, p *Product) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	current, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CurrentStock = current.CurrentStock

	if p.Barcode != nil && *p.Barcode != "" {
		existing, err := s.repo.GetByBarcode(ctx, *p.Barcode)
		if err != nil && !apperror.IsNotFound(err) {
			return err
		}
		if existing != nil && existing.ID != p.ID {
			return apperror.NewDuplicate("product", "barcode", *p.Barcode)
		}
	}

	return s.repo.Update(ctx, p)
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetByBarcode retrieves a product by its barcode.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, apperror.NewValidation("barcode is required")
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

// Search returns active products matching the query by name.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.NewValidation("search query is required")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Search(ctx, query, limit)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Deactivate soft-deletes a product. Historical sales keep referencing it.
func (s *Service) Deactivate(ctx context.Context, productID id.ID) error {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.Deactivate(ctx, productID); err != nil {
		return err
	}
	logger.Info(ctx, "product deactivated", "id", productID)
	return nil
}
