package customer

import (
	"context"
	"strings"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/pkg/logger"
)

// Service provides business logic for the customer catalog.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	logger.Info(ctx, "customer created", "id", c.ID, "name", c.Name)
	return nil
}

// Update validates and persists changes. CurrentDebt on the passed
// struct is ignored; only the debt register mutates it.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	current, err := s.repo.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	c.CurrentDebt = current.CurrentDebt
	return s.repo.Update(ctx, c)
}

// GetByID retrieves a customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// Search returns active customers matching the query by name.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.NewValidation("search query is required")
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.Search(ctx, query, limit)
}

// FindByName resolves a customer by fuzzy name match, first match wins.
// Used by the mobile assistant, which works with names instead of ids.
func (s *Service) FindByName(ctx context.Context, name string) (*Customer, error) {
	matches, err := s.Search(ctx, name, 1)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, apperror.NewNotFound("customer", name)
	}
	return matches[0], nil
}

// List retrieves customers with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Customer, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// ListWithDebt returns all customers carrying debt, largest first.
func (s *Service) ListWithDebt(ctx context.Context, limit int) ([]*Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListWithDebt(ctx, limit)
}

// Deactivate soft-deletes a customer. Customers with outstanding debt
// cannot be deactivated.
func (s *Service) Deactivate(ctx context.Context, customerID id.ID) error {
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return err
	}
	if c.CurrentDebt.IsPositive() {
		return apperror.NewConflict("customer has outstanding debt").
			WithDetail("current_debt", c.CurrentDebt.StringFixed(2))
	}
	if err := s.repo.Deactivate(ctx, customerID); err != nil {
		return err
	}
	logger.Info(ctx, "customer deactivated", "id", customerID)
	return nil
}
