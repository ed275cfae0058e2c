package dto

import (
	"strings"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
	"almacen/internal/domain/catalogs/customer"
	"almacen/internal/domain/catalogs/product"
	"almacen/internal/domain/catalogs/supplier"
)

// --- Product DTOs ---

// CreateProductRequest for creating products. Monetary fields accept
// JSON numbers or strings; decimal parsing happens at bind time.
type CreateProductRequest struct {
	Name       string          `json:"name" binding:"required"`
	Barcode    *string         `json:"barcode,omitempty"`
	Category   *string         `json:"category,omitempty"`
	SupplierID *string         `json:"supplierId,omitempty"`
	CostPrice  *types.Money    `json:"costPrice,omitempty"`
	SalePrice  types.Money     `json:"salePrice"`
	MinStock   *types.Quantity `json:"minStock,omitempty"`
	MaxStock   *types.Quantity `json:"maxStock,omitempty"`
	Unit       string          `json:"unit,omitempty"`
}

// ToEntity builds a product from the request.
func (r *CreateProductRequest) ToEntity() *product.Product {
	p := product.New(r.Name, types.RoundMoney(r.SalePrice))
	p.Barcode = r.Barcode
	p.Category = r.Category
	if r.SupplierID != nil {
		if parsed, err := id.Parse(*r.SupplierID); err == nil {
			p.SupplierID = &parsed
		}
	}
	if r.CostPrice != nil {
		cp := types.RoundMoney(*r.CostPrice)
		p.CostPrice = &cp
	}
	if r.MinStock != nil {
		p.MinStock = types.RoundQuantity(*r.MinStock)
	}
	if r.MaxStock != nil {
		p.MaxStock = types.RoundQuantity(*r.MaxStock)
	}
	if r.Unit != "" {
		p.Unit = strings.TrimSpace(r.Unit)
	}
	return p
}

// UpdateProductRequest for updating products. Omitted fields keep their
// stored values. Stock levels are not updatable here; that is the stock
// register's job.
type UpdateProductRequest struct {
	Name       *string         `json:"name,omitempty"`
	Barcode    *string         `json:"barcode,omitempty"`
	Category   *string         `json:"category,omitempty"`
	SupplierID *string         `json:"supplierId,omitempty"`
	CostPrice  *types.Money    `json:"costPrice,omitempty"`
	SalePrice  *types.Money    `json:"salePrice,omitempty"`
	MinStock   *types.Quantity `json:"minStock,omitempty"`
	MaxStock   *types.Quantity `json:"maxStock,omitempty"`
	Unit       *string         `json:"unit,omitempty"`
	IsActive   *bool           `json:"isActive,omitempty"`
}

// ApplyTo copies the set fields onto an existing product.
func (r *UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = strings.TrimSpace(*r.Name)
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.Category != nil {
		p.Category = r.Category
	}
	if r.SupplierID != nil {
		if parsed, err := id.Parse(*r.SupplierID); err == nil {
			p.SupplierID = &parsed
		}
	}
	if r.CostPrice != nil {
		cp := types.RoundMoney(*r.CostPrice)
		p.CostPrice = &cp
	}
	if r.SalePrice != nil {
		p.SalePrice = types.RoundMoney(*r.SalePrice)
	}
	if r.MinStock != nil {
		p.MinStock = types.RoundQuantity(*r.MinStock)
	}
	if r.MaxStock != nil {
		p.MaxStock = types.RoundQuantity(*r.MaxStock)
	}
	if r.Unit != nil {
		p.Unit = strings.TrimSpace(*r.Unit)
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}

// --- Customer DTOs ---

// CreateCustomerRequest for creating customers.
type CreateCustomerRequest struct {
	Name        string       `json:"name" binding:"required"`
	Phone       *string      `json:"phone,omitempty"`
	Email       *string      `json:"email,omitempty"`
	Address     *string      `json:"address,omitempty"`
	IDDocument  *string      `json:"idDocument,omitempty"`
	CreditLimit *types.Money `json:"creditLimit,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
}

// ToEntity builds a customer from the request.
func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.New(r.Name)
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	c.IDDocument = r.IDDocument
	c.Notes = r.Notes
	if r.CreditLimit != nil {
		c.CreditLimit = types.RoundMoney(*r.CreditLimit)
	}
	return c
}

// UpdateCustomerRequest for updating customers. CurrentDebt is absent on
// purpose: only the debt register writes it.
type UpdateCustomerRequest struct {
	Name        *string      `json:"name,omitempty"`
	Phone       *string      `json:"phone,omitempty"`
	Email       *string      `json:"email,omitempty"`
	Address     *string      `json:"address,omitempty"`
	IDDocument  *string      `json:"idDocument,omitempty"`
	CreditLimit *types.Money `json:"creditLimit,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	IsActive    *bool        `json:"isActive,omitempty"`
}

// ApplyTo copies the set fields onto an existing customer.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	if r.Name != nil {
		c.Name = strings.TrimSpace(*r.Name)
	}
	if r.Phone != nil {
		c.Phone = r.Phone
	}
	if r.Email != nil {
		c.Email = r.Email
	}
	if r.Address != nil {
		c.Address = r.Address
	}
	if r.IDDocument != nil {
		c.IDDocument = r.IDDocument
	}
	if r.CreditLimit != nil {
		c.CreditLimit = types.RoundMoney(*r.CreditLimit)
	}
	if r.Notes != nil {
		c.Notes = r.Notes
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}

// --- Supplier DTOs ---

// CreateSupplierRequest for creating suppliers.
type CreateSupplierRequest struct {
	Name          string  `json:"name" binding:"required"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ToEntity builds a supplier from the request.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.New(r.Name)
	s.ContactPerson = r.ContactPerson
	s.Phone = r.Phone
	s.Email = r.Email
	s.Address = r.Address
	s.Notes = r.Notes
	return s
}

// UpdateSupplierRequest for updating suppliers.
type UpdateSupplierRequest struct {
	Name          *string `json:"name,omitempty"`
	ContactPerson *string `json:"contactPerson,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// ApplyTo copies the set fields onto an existing supplier.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	if r.Name != nil {
		s.Name = strings.TrimSpace(*r.Name)
	}
	if r.ContactPerson != nil {
		s.ContactPerson = r.ContactPerson
	}
	if r.Phone != nil {
		s.Phone = r.Phone
	}
	if r.Email != nil {
		s.Email = r.Email
	}
	if r.Address != nil {
		s.Address = r.Address
	}
	if r.Notes != nil {
		s.Notes = r.Notes
	}
}
