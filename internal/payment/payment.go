// Package payment records payments for a checked-out order.
//
// There is no real payment integration: a method prints a confirmation and
// returns a receipt.
package payment

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Tags accepted by ForTag.
const (
	TagCard = "card"
	TagCash = "cash"
)

// Method accepts a monetary amount and records it as paid.
type Method interface {
	Name() string
	Pay(ctx context.Context, amount decimal.Decimal) (*Receipt, error)
}

// Receipt confirms a recorded payment.
type Receipt struct {
	ID     string
	Method string
	Amount decimal.Decimal
	PaidAt time.Time
}

var (
	_ Method = (*Card)(nil)
	_ Method = (*Cash)(nil)
)

// ForTag selects a payment method by case-insensitive tag. Any tag other than
// "card" selects cash.
func ForTag(tag string, out io.Writer) Method {
	if strings.EqualFold(strings.TrimSpace(tag), TagCard) {
		return NewCard(out)
	}
	return NewCash(out)
}

// Card records card payments.
type Card struct {
	recorder
}

// NewCard returns a card method writing confirmations to out.
func NewCard(out io.Writer) *Card {
	return &Card{recorder{name: "Card", out: out, now: time.Now}}
}

// Cash records cash payments.
type Cash struct {
	recorder
}

// NewCash returns a cash method writing confirmations to out.
func NewCash(out io.Writer) *Cash {
	return &Cash{recorder{name: "Cash", out: out, now: time.Now}}
}

type recorder struct {
	name string
	out  io.Writer
	now  func() time.Time
}

// Name returns the display name of the method.
func (r *recorder) Name() string {
	return r.name
}

// Pay prints the confirmation and returns a receipt.
func (r *recorder) Pay(ctx context.Context, amount decimal.Decimal) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, errors.Errorf("negative amount %s", amount)
	}

	if _, err := fmt.Fprintf(r.out, "Paid %s using %s\n", amount.StringFixed(2), r.name); err != nil {
		return nil, errors.Wrap(err, "write confirmation")
	}

	return &Receipt{
		ID:     uuid.New().String(),
		Method: r.name,
		Amount: amount,
		PaidAt: r.now(),
	}, nil
}
