package order

import (
	"slices"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/coupon"
	"github.com/xenking/kart-checkout/internal/domain/product"
)

// Line is a single cart entry. The item is shared with the catalog.
type Line struct {
	Item     *product.Item
	Quantity int
}

// Subtotal returns unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Tax returns the item's tax on the line subtotal.
func (l Line) Tax() decimal.Decimal {
	return l.Item.CalculateTax(l.Subtotal())
}

// Order is the cart of a single session: lines in insertion order plus the
// discount percentage of the last applied coupon.
//
// Order is not safe for concurrent use.
type Order struct {
	lines      []Line
	discount   decimal.Decimal
	couponCode string
}

// New returns an empty order with no discount.
func New() *Order {
	return &Order{discount: decimal.Zero}
}

// AddToCart reserves quantity units of item and appends a line for them.
// Stock is decremented immediately. On error neither the cart nor the stock
// is changed.
//
// The check and the decrement are not synchronized; callers sharing a catalog
// between goroutines must serialize calls per item.
func (o *Order) AddToCart(item *product.Item, quantity int) error {
	if item == nil {
		return product.ErrNotFound
	}
	if quantity <= 0 {
		return &InvalidQuantityError{ItemID: item.ID, Quantity: quantity}
	}
	if quantity > item.Stock {
		return &OutOfStockError{ItemID: item.ID, Requested: quantity, Available: item.Stock}
	}

	o.lines = append(o.lines, Line{Item: item, Quantity: quantity})
	item.Stock -= quantity
	return nil
}

// ApplyCoupon sets the order discount to the percentage of the coupon with
// the given code, replacing any earlier coupon. Unknown codes leave the
// discount unchanged.
func (o *Order) ApplyCoupon(code string, coupons coupon.Finder) error {
	rule, err := coupons.FindByCode(code)
	if err != nil {
		if errors.Is(err, coupon.ErrInvalidCoupon) {
			return errors.Wrapf(coupon.ErrInvalidCoupon, "apply %q", code)
		}
		return errors.Wrap(err, "find coupon")
	}

	o.discount = rule.Percentage
	o.couponCode = rule.Code
	return nil
}

// Lines returns a copy of the cart lines in insertion order.
func (o *Order) Lines() []Line {
	return slices.Clone(o.lines)
}

// IsEmpty reports whether the cart has no lines.
func (o *Order) IsEmpty() bool {
	return len(o.lines) == 0
}

// DiscountPercentage returns the applied discount percentage, zero if none.
func (o *Order) DiscountPercentage() decimal.Decimal {
	return o.discount
}

// CouponCode returns the code of the applied coupon, empty if none.
func (o *Order) CouponCode() string {
	return o.couponCode
}

// Subtotal returns the sum of all line subtotals.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}

// DiscountAmount returns the discount on the pre-tax subtotal.
func (o *Order) DiscountAmount() decimal.Decimal {
	return coupon.Discount(o.Subtotal(), o.discount)
}

// TaxAmount returns the sum of per-line taxes. Tax is computed on each line's
// undiscounted subtotal.
func (o *Order) TaxAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.lines {
		sum = sum.Add(l.Tax())
	}
	return sum
}

// Total returns subtotal - discount + tax.
func (o *Order) Total() decimal.Decimal {
	return o.Subtotal().Sub(o.DiscountAmount()).Add(o.TaxAmount())
}
