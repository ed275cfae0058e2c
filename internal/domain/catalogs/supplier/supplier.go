// Package supplier provides the supplier directory. Plain CRUD, no
// ledger invariants.
package supplier

import (
	"context"
	"strings"
	"time"

	"almacen/internal/core/apperror"
	"almacen/internal/core/id"
	"almacen/pkg/logger"
)

// Supplier represents a goods or services provider.
type Supplier struct {
	ID            id.ID   `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	ContactPerson *string `db:"contact_person" json:"contactPerson,omitempty"`
	Phone         *string `db:"phone" json:"phone,omitempty"`
	Email         *string `db:"email" json:"email,omitempty"`
	Address       *string `db:"address" json:"address,omitempty"`
	Notes         *string `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// New creates a supplier.
func New(name string) *Supplier {
	now := time.Now().UTC()
	return &Supplier{
		ID:        id.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks supplier invariants.
func (s *Supplier) Validate(ctx context.Context) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.NewValidation("supplier name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository defines persistence operations for suppliers.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
	List(ctx context.Context, limit, offset int) ([]*Supplier, error)
	Delete(ctx context.Context, supplierID id.ID) error
}

// Service provides business logic for the supplier directory.
type Service struct {
	repo Repository
}

// NewService creates a new supplier service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists a new supplier.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, sup); err != nil {
		return err
	}
	logger.Info(ctx, "supplier created", "id", sup.ID, "name", sup.Name)
	return nil
}

// Update validates and persists changes.
func (s *Service) Update(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, sup.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, sup)
}

// GetByID retrieves a supplier.
func (s *Service) GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

// List retrieves suppliers.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Supplier, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

// Delete removes a supplier.
func (s *Service) Delete(ctx context.Context, supplierID id.ID) error {
	if _, err := s.repo.GetByID(ctx, supplierID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, supplierID)
}
