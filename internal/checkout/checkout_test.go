package checkout

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xenking/kart-checkout/internal/domain/coupon"
	"github.com/xenking/kart-checkout/internal/domain/order"
	"github.com/xenking/kart-checkout/internal/domain/product"
)

// --- Mock implementations ---

type mockInvoiceStore struct {
	saved []*order.Invoice
	path  string
	err   error
}

func (m *mockInvoiceStore) Save(_ context.Context, inv *order.Invoice) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, inv)
	return m.path, nil
}

// --- Helpers ---

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func newTestCatalog(t *testing.T) *product.Catalog {
	t.Helper()
	c, err := product.NewCatalog(
		&product.Item{ID: "P101", Name: "Laptop", Category: "Electronics", Price: d("55000"), Stock: 10},
		&product.Item{ID: "P103", Name: "Headphones", Category: "Accessories", Price: d("2000"), Stock: 30},
		&product.Item{ID: "P105", Name: "Mouse", Category: "Accessories", Price: d("800"), Stock: 40},
	)
	require.NoError(t, err)
	return c
}

func newTestCoupons(t *testing.T) *coupon.Table {
	t.Helper()
	table, err := coupon.NewTable(
		coupon.Rule{Code: "SAVE20", Percentage: d("20")},
		coupon.Rule{Code: "save5", Percentage: d("5")},
	)
	require.NoError(t, err)
	return table
}

type fixture struct {
	flow   *Flow
	store  *mockInvoiceStore
	out    *bytes.Buffer
	logs   *observer.ObservedLogs
	reader *sdkmetric.ManualReader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	reader := sdkmetric.NewManualReader()
	fx := &fixture{
		store:  &mockInvoiceStore{path: "/tmp/invoice_1.txt"},
		out:    &bytes.Buffer{},
		logs:   logs,
		reader: reader,
	}

	flow, err := New(newTestCatalog(t), newTestCoupons(t), Options{
		Invoices:      fx.store,
		PaymentOut:    fx.out,
		Logger:        zap.New(core),
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	})
	require.NoError(t, err)
	fx.flow = flow
	return fx
}

func (fx *fixture) sum(t *testing.T, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, fx.reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			data, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			for _, dp := range data.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

// --- Tests ---

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, newTestCoupons(t), Options{Invoices: &mockInvoiceStore{}})
	require.Error(t, err)

	_, err = New(newTestCatalog(t), newTestCoupons(t), Options{})
	require.Error(t, err)

	flow, err := New(newTestCatalog(t), newTestCoupons(t), Options{Invoices: &mockInvoiceStore{}})
	require.NoError(t, err)
	assert.True(t, flow.Order().IsEmpty())
}

func TestFlow_FullSession(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.flow.AddToCart(ctx, "P101", 3))
	require.NoError(t, fx.flow.ApplyCoupon(ctx, "SAVE20"))

	pending, err := fx.flow.Checkout(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/invoice_1.txt", pending.InvoicePath)
	assert.True(t, d("161700").Equal(pending.Invoice.Total))
	require.Len(t, fx.store.saved, 1)

	receipt, err := fx.flow.Pay(ctx, "CARD")
	require.NoError(t, err)
	assert.Equal(t, "Card", receipt.Method)
	assert.True(t, d("161700").Equal(receipt.Amount))
	assert.Equal(t, "Paid 161700.00 using Card\n", fx.out.String())

	assert.Equal(t, int64(3), fx.sum(t, "kart.cart.items_added"))
	assert.Equal(t, int64(1), fx.sum(t, "kart.coupon.applied"))
	assert.Equal(t, int64(1), fx.sum(t, "kart.checkout.completed"))
	assert.Equal(t, 1, fx.logs.FilterMessage("Payment recorded").Len())
}

func TestFlow_AddToCartErrors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	err := fx.flow.AddToCart(ctx, "P999", 1)
	require.ErrorIs(t, err, product.ErrNotFound)

	err = fx.flow.AddToCart(ctx, "P101", 11)
	require.ErrorIs(t, err, order.ErrOutOfStock)

	err = fx.flow.AddToCart(ctx, "P101", 0)
	require.ErrorIs(t, err, order.ErrInvalidQuantity)

	assert.Empty(t, fx.flow.Cart())
	assert.Equal(t, int64(3), fx.sum(t, "kart.cart.rejections"))
	assert.Equal(t, 1, fx.logs.FilterMessage("Unknown product").Len())
	assert.Equal(t, 2, fx.logs.FilterMessage("Cart addition rejected").Len())

	item, err := fx.flow.catalog.Get("P101")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Stock)
}

func TestFlow_ApplyCouponInvalid(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.flow.ApplyCoupon(ctx, "save5"))
	err := fx.flow.ApplyCoupon(ctx, "BOGUS")

	require.ErrorIs(t, err, coupon.ErrInvalidCoupon)
	assert.True(t, d("5").Equal(fx.flow.Order().DiscountPercentage()))
	assert.Equal(t, 1, fx.logs.FilterMessage("Coupon rejected").Len())
}

func TestFlow_Catalog(t *testing.T) {
	fx := newFixture(t)

	byPrice := fx.flow.Catalog(product.SortByPrice)
	require.Len(t, byPrice, 3)
	assert.Equal(t, "P105", byPrice[0].ID)
	assert.Equal(t, "P101", byPrice[2].ID)

	byCategory := fx.flow.Catalog(product.SortByCategory)
	assert.Equal(t, "Accessories", byCategory[0].Category)
	assert.Equal(t, "Electronics", byCategory[2].Category)
}

func TestFlow_CheckoutEmptyCart(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.flow.Checkout(context.Background())

	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, fx.store.saved)
}

func TestFlow_CheckoutStoreError(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	fx.store.err = errors.New("disk full")

	require.NoError(t, fx.flow.AddToCart(ctx, "P105", 1))
	_, err := fx.flow.Checkout(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save invoice")

	// The session stays open so the user can retry.
	fx.store.err = nil
	_, err = fx.flow.Checkout(ctx)
	require.NoError(t, err)
}

func TestFlow_StateTransitions(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.flow.Pay(ctx, "cash")
	require.ErrorIs(t, err, ErrNotCheckedOut)

	require.NoError(t, fx.flow.AddToCart(ctx, "P103", 2))
	_, err = fx.flow.Checkout(ctx)
	require.NoError(t, err)

	require.ErrorIs(t, fx.flow.AddToCart(ctx, "P103", 1), ErrCheckedOut)
	require.ErrorIs(t, fx.flow.ApplyCoupon(ctx, "SAVE20"), ErrCheckedOut)
	_, err = fx.flow.Checkout(ctx)
	require.ErrorIs(t, err, ErrCheckedOut)

	receipt, err := fx.flow.Pay(ctx, "paypal")
	require.NoError(t, err)
	assert.Equal(t, "Cash", receipt.Method)

	_, err = fx.flow.Pay(ctx, "card")
	require.ErrorIs(t, err, ErrPaid)
	assert.Equal(t, "Paid 4720.00 using Cash\n", fx.out.String())
}
