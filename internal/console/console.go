// Package console implements the interactive menu that drives a checkout
// session from a text stream.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-checkout/internal/checkout"
	"github.com/xenking/kart-checkout/internal/domain/coupon"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/product"
)

const (
	mainMenu = "1.Add to Cart  2.View Cart  3.Sort  4.Coupon  5.Checkout  6.Exit"
	sortMenu = "1.By Price  2.By Category"
)

// Menu choices.
const (
	choiceAdd = iota + 1
	choiceView
	choiceSort
	choiceCoupon
	choiceCheckout
	choiceExit
)

// Session reads commands from in and writes prompts and results to out.
type Session struct {
	flow *checkout.Flow
	in   *bufio.Scanner
	out  io.Writer
}

// New returns a Session driving flow.
func New(flow *checkout.Flow, in io.Reader, out io.Writer) *Session {
	return &Session{
		flow: flow,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run processes commands until exit, checkout, end of input or context
// cancellation. Rejected operations are reported and the loop continues.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printf("\n%s\n", mainMenu)
		line, ok := s.readLine()
		if !ok {
			return s.in.Err()
		}

		choice, err := strconv.Atoi(line)
		if err != nil {
			s.printf("Invalid choice %q\n", line)
			continue
		}

		switch choice {
		case choiceAdd:
			if err := s.addToCart(ctx); err != nil {
				return err
			}
		case choiceView:
			s.viewCart()
		case choiceSort:
			s.sortCatalog()
		case choiceCoupon:
			if err := s.applyCoupon(ctx); err != nil {
				return err
			}
		case choiceCheckout:
			done, err := s.checkout(ctx)
			if err != nil || done {
				return err
			}
		case choiceExit:
			return nil
		default:
			s.printf("Invalid choice %d\n", choice)
		}
	}
}

func (s *Session) addToCart(ctx context.Context) error {
	id, ok := s.prompt("Product ID: ")
	if !ok {
		return s.in.Err()
	}
	qtyText, ok := s.prompt("Qty: ")
	if !ok {
		return s.in.Err()
	}
	qty, err := strconv.Atoi(qtyText)
	if err != nil {
		s.printf("Invalid quantity %q\n", qtyText)
		return nil
	}

	if err := s.flow.AddToCart(ctx, id, qty); err != nil {
		return s.report(err)
	}
	s.printf("Added!\n")
	return nil
}

func (s *Session) viewCart() {
	lines := s.flow.Cart()
	if len(lines) == 0 {
		s.printf("Cart is empty\n")
		return
	}
	for _, l := range lines {
		s.printf("%s x %d\n", l.Item.Name, l.Quantity)
	}
}

// sortCatalog lists the catalog by price for choice 1 and by category for
// anything else.
func (s *Session) sortCatalog() {
	s.printf("%s\n", sortMenu)
	line, _ := s.readLine()

	if line == "1" {
		for _, it := range s.flow.Catalog(product.SortByPrice) {
			s.printf("%s %s\n", it.Name, order.FormatAmount(it.Price))
		}
		return
	}
	for _, it := range s.flow.Catalog(product.SortByCategory) {
		s.printf("%s %s\n", it.Name, it.Category)
	}
}

func (s *Session) applyCoupon(ctx context.Context) error {
	code, ok := s.prompt("Coupon: ")
	if !ok {
		return s.in.Err()
	}

	if err := s.flow.ApplyCoupon(ctx, code); err != nil {
		return s.report(err)
	}
	s.printf("Coupon Applied\n")
	return nil
}

// checkout reports whether the session is finished.
func (s *Session) checkout(ctx context.Context) (bool, error) {
	pending, err := s.flow.Checkout(ctx)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			s.printf("Cart is empty\n")
			return false, nil
		}
		s.printf("Checkout failed: %s\n", err)
		return false, nil
	}
	s.printf("Invoice: %s\n", pending.InvoicePath)

	tag, _ := s.prompt("Payment (card/cash): ")
	if _, err := s.flow.Pay(ctx, tag); err != nil {
		return true, errors.Wrap(err, "pay")
	}
	return true, nil
}

// report prints recoverable domain errors and returns anything else.
func (s *Session) report(err error) error {
	var oosErr *order.OutOfStockError
	switch {
	case errors.As(err, &oosErr):
		s.printf("Stock not available for %s (requested %d, available %d)\n",
			oosErr.ItemID, oosErr.Requested, oosErr.Available)
	case errors.Is(err, order.ErrInvalidQuantity):
		s.printf("Quantity must be greater than 0\n")
	case errors.Is(err, product.ErrNotFound):
		s.printf("Unknown product\n")
	case errors.Is(err, coupon.ErrInvalidCoupon):
		s.printf("Invalid Coupon\n")
	default:
		return err
	}
	return nil
}

func (s *Session) prompt(label string) (string, bool) {
	s.printf("%s", label)
	return s.readLine()
}

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
