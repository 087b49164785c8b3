package product

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// TaxRate is the flat tax applied to every item.
var TaxRate = decimal.RequireFromString("0.18")

// Taxable computes the tax owed on a monetary amount.
type Taxable interface {
	CalculateTax(amount decimal.Decimal) decimal.Decimal
}

var _ Taxable = (*Item)(nil)

// Item represents a catalog item available for purchase.
//
// Stock is owned by the catalog and only ever decremented by the order when
// a cart addition succeeds.
type Item struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	Stock    int
}

// CalculateTax returns the flat-rate tax for the given amount.
func (i *Item) CalculateTax(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(TaxRate)
}
