package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// Sentinel errors for cart validation. The typed errors below match them
// with errors.Is.
var (
	ErrOutOfStock      = errors.New("out of stock")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// OutOfStockError indicates a cart addition asked for more than is in stock.
type OutOfStockError struct {
	ItemID    string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("product %s out of stock: requested %d, available %d",
		e.ItemID, e.Requested, e.Available)
}

// Is reports whether target is ErrOutOfStock.
func (e *OutOfStockError) Is(target error) bool {
	return target == ErrOutOfStock
}

// InvalidQuantityError indicates a cart addition with a non-positive quantity.
type InvalidQuantityError struct {
	ItemID   string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s, got %d", e.ItemID, e.Quantity)
}

// Is reports whether target is ErrInvalidQuantity.
func (e *InvalidQuantityError) Is(target error) bool {
	return target == ErrInvalidQuantity
}
