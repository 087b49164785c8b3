package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type metrics struct {
	itemsAdded     metric.Int64Counter
	rejections     metric.Int64Counter
	couponsApplied metric.Int64Counter
	checkouts      metric.Int64Counter
	orderTotal     metric.Float64Histogram
}

func newMetrics(m metric.Meter) (*metrics, error) {
	var (
		out metrics
		err error
	)
	if out.itemsAdded, err = m.Int64Counter("kart.cart.items_added",
		metric.WithDescription("Units reserved by successful cart additions"),
		metric.WithUnit("{item}"),
	); err != nil {
		return nil, errors.Wrap(err, "items_added")
	}
	if out.rejections, err = m.Int64Counter("kart.cart.rejections",
		metric.WithDescription("Rejected cart and coupon operations by reason"),
	); err != nil {
		return nil, errors.Wrap(err, "rejections")
	}
	if out.couponsApplied, err = m.Int64Counter("kart.coupon.applied",
		metric.WithDescription("Successfully applied coupons"),
	); err != nil {
		return nil, errors.Wrap(err, "coupons_applied")
	}
	if out.checkouts, err = m.Int64Counter("kart.checkout.completed",
		metric.WithDescription("Paid orders by payment method"),
	); err != nil {
		return nil, errors.Wrap(err, "checkouts")
	}
	if out.orderTotal, err = m.Float64Histogram("kart.checkout.total",
		metric.WithDescription("Order totals at payment"),
	); err != nil {
		return nil, errors.Wrap(err, "order_total")
	}
	return &out, nil
}

func (m *metrics) reject(ctx context.Context, reason string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
