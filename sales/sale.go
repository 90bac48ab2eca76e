package sales

import (
	"github.com/shopspring/decimal"
)

// Status is the lifecycle status a synthetic sale is created with.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Product is a catalog entry with its current base price.
type Product struct {
	ID        string
	BasePrice decimal.Decimal
}

// Salesman is a reference entity a sale is attributed to.
type Salesman struct {
	ID string
}

// Store is the point of sale a sale happened at.
type Store struct {
	ID string
}

// ReferenceSnapshot is the catalog read fresh for each generated sale. It is never cached across cycles.
type ReferenceSnapshot struct {
	Products []Product
	Salesmen []Salesman
	Stores   []Store
}

// SyntheticSale is a fabricated sale that has not been persisted yet.
type SyntheticSale struct {
	ProductID   string
	SalesmanID  string
	StoreID     string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
	Status      Status
}

// PersistedSale is a SyntheticSale plus the identifier assigned by the store
// and the total/status as the store confirmed them.
type PersistedSale struct {
	SyntheticSale
	SaleID            string
	StoredTotalAmount decimal.Decimal
	StoredStatus      Status
}

// Diverged reports whether the store returned a total or status different from the synthesized values.
func (p PersistedSale) Diverged() bool {
	return !p.StoredTotalAmount.Equal(p.TotalAmount) || p.StoredStatus != p.Status
}
