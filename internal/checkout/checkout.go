// Package checkout drives a single shopping session: it owns the order and
// wires it to the catalog, the coupon table, the invoice store and payment.
package checkout

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/xenking/kart-checkout/internal/domain/coupon"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/product"
	"github.com/xenking/kart-checkout/internal/invoice"
	"github.com/xenking/kart-checkout/internal/payment"
)

const instrumentationName = "github.com/xenking/kart-checkout/internal/checkout"

// Flow state errors.
var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrCheckedOut    = errors.New("order already checked out")
	ErrNotCheckedOut = errors.New("order not checked out")
	ErrPaid          = errors.New("order already paid")
)

type state int

const (
	stateOpen state = iota
	stateCheckedOut
	statePaid
)

// Options configures a Flow. Zero values fall back to no-op implementations,
// except Invoices which is required.
type Options struct {
	Invoices       invoice.Store
	PaymentOut     io.Writer
	Logger         *zap.Logger
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Flow is one checkout session. It is not safe for concurrent use.
type Flow struct {
	catalog  *product.Catalog
	coupons  coupon.Finder
	order    *order.Order
	invoices invoice.Store
	out      io.Writer

	lg      *zap.Logger
	tracer  trace.Tracer
	metrics *metrics

	state   state
	invoice *order.Invoice
}

// Pending is a checked-out order awaiting payment.
type Pending struct {
	Invoice     *order.Invoice
	InvoicePath string
}

// New creates a Flow over the given catalog and coupons with an empty order.
func New(catalog *product.Catalog, coupons coupon.Finder, opts Options) (*Flow, error) {
	if catalog == nil || coupons == nil {
		return nil, errors.New("catalog and coupons are required")
	}
	if opts.Invoices == nil {
		return nil, errors.New("invoice store is required")
	}
	if opts.PaymentOut == nil {
		opts.PaymentOut = io.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MeterProvider == nil {
		opts.MeterProvider = metricnoop.NewMeterProvider()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = tracenoop.NewTracerProvider()
	}

	m, err := newMetrics(opts.MeterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}

	return &Flow{
		catalog:  catalog,
		coupons:  coupons,
		order:    order.New(),
		invoices: opts.Invoices,
		out:      opts.PaymentOut,
		lg:       opts.Logger,
		tracer:   opts.TracerProvider.Tracer(instrumentationName),
		metrics:  m,
	}, nil
}

// AddToCart reserves quantity units of the catalog item with the given ID.
func (f *Flow) AddToCart(ctx context.Context, itemID string, quantity int) error {
	if f.state != stateOpen {
		return ErrCheckedOut
	}

	item, err := f.catalog.Get(itemID)
	if err != nil {
		f.metrics.reject(ctx, "not_found")
		f.lg.Info("Unknown product", zap.String("item", itemID))
		return errors.Wrapf(err, "add %q", itemID)
	}

	if err := f.order.AddToCart(item, quantity); err != nil {
		reason := "invalid_quantity"
		if errors.Is(err, order.ErrOutOfStock) {
			reason = "out_of_stock"
		}
		f.metrics.reject(ctx, reason)
		f.lg.Info("Cart addition rejected",
			zap.String("item", itemID),
			zap.Int("quantity", quantity),
			zap.String("reason", reason),
		)
		return err
	}

	f.metrics.itemsAdded.Add(ctx, int64(quantity), metric.WithAttributes(attribute.String("item", itemID)))
	f.lg.Info("Added to cart",
		zap.String("item", itemID),
		zap.Int("quantity", quantity),
		zap.Int("stock_left", item.Stock),
	)
	return nil
}

// ApplyCoupon applies the coupon with the given code to the order.
func (f *Flow) ApplyCoupon(ctx context.Context, code string) error {
	if f.state != stateOpen {
		return ErrCheckedOut
	}

	if err := f.order.ApplyCoupon(code, f.coupons); err != nil {
		f.metrics.reject(ctx, "invalid_coupon")
		f.lg.Info("Coupon rejected", zap.String("code", code), zap.Error(err))
		return err
	}

	f.metrics.couponsApplied.Add(ctx, 1)
	f.lg.Info("Coupon applied",
		zap.String("code", code),
		zap.Stringer("percentage", f.order.DiscountPercentage()),
	)
	return nil
}

// Cart returns the current cart lines in insertion order.
func (f *Flow) Cart() []order.Line {
	return f.order.Lines()
}

// Order exposes the session order for read access.
func (f *Flow) Order() *order.Order {
	return f.order
}

// Catalog returns the catalog items ordered by the given key.
func (f *Flow) Catalog(by product.SortKey) []*product.Item {
	return f.catalog.Sorted(by)
}

// Checkout freezes the order, renders the invoice and stores it. After a
// successful checkout the cart can no longer change and Pay must be called.
func (f *Flow) Checkout(ctx context.Context) (_ *Pending, rerr error) {
	ctx, span := f.tracer.Start(ctx, "checkout.Checkout")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	if f.state != stateOpen {
		return nil, ErrCheckedOut
	}
	if f.order.IsEmpty() {
		return nil, ErrEmptyCart
	}

	inv := f.order.Invoice()
	span.SetAttributes(
		attribute.Int("kart.order.lines", len(inv.Lines)),
		attribute.String("kart.order.total", inv.Total.String()),
		attribute.String("kart.order.coupon", inv.CouponCode),
	)

	path, err := f.invoices.Save(ctx, inv)
	if err != nil {
		return nil, errors.Wrap(err, "save invoice")
	}

	f.state = stateCheckedOut
	f.invoice = inv
	f.lg.Info("Checked out",
		zap.String("invoice", path),
		zap.Int("lines", len(inv.Lines)),
		zap.Stringer("subtotal", inv.Subtotal),
		zap.Stringer("discount", inv.Discount),
		zap.Stringer("tax", inv.Tax),
		zap.Stringer("total", inv.Total),
	)
	return &Pending{Invoice: inv, InvoicePath: path}, nil
}

// Pay records payment of the checked-out total using the method selected by
// tag. Unrecognized tags pay in cash.
func (f *Flow) Pay(ctx context.Context, tag string) (_ *payment.Receipt, rerr error) {
	ctx, span := f.tracer.Start(ctx, "checkout.Pay")
	defer func() {
		if rerr != nil {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, rerr.Error())
		}
		span.End()
	}()

	switch f.state {
	case stateOpen:
		return nil, ErrNotCheckedOut
	case statePaid:
		return nil, ErrPaid
	}

	method := payment.ForTag(tag, f.out)
	span.SetAttributes(attribute.String("kart.payment.method", method.Name()))

	receipt, err := method.Pay(ctx, f.invoice.Total)
	if err != nil {
		return nil, errors.Wrap(err, "pay")
	}

	f.state = statePaid
	attrs := metric.WithAttributes(attribute.String("method", method.Name()))
	f.metrics.checkouts.Add(ctx, 1, attrs)
	f.metrics.orderTotal.Record(ctx, f.invoice.Total.InexactFloat64(), attrs)
	f.lg.Info("Payment recorded",
		zap.String("receipt", receipt.ID),
		zap.String("method", receipt.Method),
		zap.Stringer("amount", receipt.Amount),
	)
	return receipt, nil
}
