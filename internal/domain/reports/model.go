// Package reports provides read-only aggregation over committed ledger
// rows: the daily dashboard summary, sales history, low-stock and
// purchase-suggestion views, debtor rankings and spreadsheet exports.
// No invariant lives here.
package reports

import (
	"time"

	"almacen/internal/core/id"
	"almacen/internal/core/types"
)

// DailySummary is the dashboard's view of one calendar date.
// TotalIncome counts only settled sales; credit sales appear in
// CreditGiven.
type DailySummary struct {
	Date string `json:"date"`

	CashSales     types.Money `json:"cashSales"`
	TransferSales types.Money `json:"transferSales"`
	TotalIncome   types.Money `json:"totalIncome"`

	CreditGiven   types.Money `json:"creditGiven"`
	DebtCollected types.Money `json:"debtCollected"`
	TotalExpenses types.Money `json:"totalExpenses"`

	ExpectedCash      types.Money `json:"expectedCash"`
	ExpectedTransfers types.Money `json:"expectedTransfers"`

	SalesCount    int `json:"salesCount"`
	APISalesCount int `json:"apiSalesCount"`
}

// SalesByDay is one row of the sales history report.
type SalesByDay struct {
	Day         time.Time   `db:"day" json:"day"`
	TotalAmount types.Money `db:"total_amount" json:"totalAmount"`
	SalesCount  int         `db:"sales_count" json:"salesCount"`
}

// SuggestionPriority ranks how urgently a product needs restocking.
type SuggestionPriority string

const (
	PriorityUrgent SuggestionPriority = "urgent"
	PriorityNormal SuggestionPriority = "normal"
)

// PurchaseSuggestion recommends a restock quantity for a product at or
// below its minimum threshold.
type PurchaseSuggestion struct {
	ProductID    id.ID          `json:"productId"`
	ProductName  string         `json:"productName"`
	SupplierID   *id.ID         `json:"supplierId,omitempty"`
	CurrentStock types.Quantity `json:"currentStock"`
	MinStock     types.Quantity `json:"minStock"`
	MaxStock     types.Quantity `json:"maxStock"`

	SuggestedQuantity types.Quantity     `json:"suggestedQuantity"`
	Priority          SuggestionPriority `json:"priority"`
}

// Debtor is one row of the outstanding-debt ranking.
type Debtor struct {
	CustomerID  id.ID       `db:"customer_id" json:"customerId"`
	Name        string      `db:"name" json:"name"`
	Phone       *string     `db:"phone" json:"phone,omitempty"`
	CurrentDebt types.Money `db:"current_debt" json:"currentDebt"`
	CreditLimit types.Money `db:"credit_limit" json:"creditLimit"`
}
