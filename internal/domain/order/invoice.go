package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InvoiceTitle heads every rendered invoice.
const InvoiceTitle = "------ INVOICE ------"

// Invoice is a read-only pricing snapshot of an order.
type Invoice struct {
	Title      string
	Lines      []InvoiceLine
	CouponCode string
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	Total      decimal.Decimal
}

// InvoiceLine is one rendered cart entry.
type InvoiceLine struct {
	ItemID   string
	Name     string
	Quantity int
	Subtotal decimal.Decimal
}

// Invoice captures the current pricing of the order. It does not modify the
// order.
func (o *Order) Invoice() *Invoice {
	inv := &Invoice{
		Title:      InvoiceTitle,
		Lines:      make([]InvoiceLine, len(o.lines)),
		CouponCode: o.couponCode,
		Subtotal:   o.Subtotal(),
		Discount:   o.DiscountAmount(),
		Tax:        o.TaxAmount(),
		Total:      o.Total(),
	}
	for i, l := range o.lines {
		inv.Lines[i] = InvoiceLine{
			ItemID:   l.Item.ID,
			Name:     l.Item.Name,
			Quantity: l.Quantity,
			Subtotal: l.Subtotal(),
		}
	}
	return inv
}

// GenerateInvoice renders the current state of the order as text.
func (o *Order) GenerateInvoice() string {
	return o.Invoice().String()
}

// String renders the invoice as text, one entry per line.
func (inv *Invoice) String() string {
	var b strings.Builder
	b.WriteString(inv.Title)
	b.WriteByte('\n')
	for _, l := range inv.Lines {
		fmt.Fprintf(&b, "%s x %d = %s\n", l.Name, l.Quantity, FormatAmount(l.Subtotal))
	}
	fmt.Fprintf(&b, "Subtotal : %s\n", FormatAmount(inv.Subtotal))
	fmt.Fprintf(&b, "Discount : %s\n", FormatAmount(inv.Discount))
	fmt.Fprintf(&b, "Tax      : %s\n", FormatAmount(inv.Tax))
	fmt.Fprintf(&b, "Total    : %s\n", FormatAmount(inv.Total))
	return b.String()
}

// FormatAmount renders a monetary amount with two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
