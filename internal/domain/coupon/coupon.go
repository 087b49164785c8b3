package coupon

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ErrInvalidCoupon is returned when a coupon code is not present in the table.
var ErrInvalidCoupon = errors.New("invalid coupon code")

// Rule is a named percentage discount.
type Rule struct {
	Code       string
	Percentage decimal.Decimal
}

// Apply returns the discount this rule grants on the given amount.
func (r Rule) Apply(amount decimal.Decimal) decimal.Decimal {
	return Discount(amount, r.Percentage)
}

// Discount returns pct percent of amount.
func Discount(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Finder provides lookup of coupon rules by their code.
type Finder interface {
	FindByCode(code string) (Rule, error)
}
