package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-checkout/internal/domain/coupon"
)

const (
	listCouponsSQL = `SELECT code, percentage FROM coupons ORDER BY code`

	upsertCouponSQL = `INSERT INTO coupons (code, percentage) VALUES ($1, $2)
	ON CONFLICT (code) DO UPDATE SET percentage = EXCLUDED.percentage`
)

// CouponRepository reads and seeds the coupons table.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// List returns all coupons ordered by code.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Rule, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query coupons")
	}
	rules, err := pgx.CollectRows(rows, scanRule)
	if err != nil {
		return nil, errors.Wrap(err, "scan coupons")
	}
	return rules, nil
}

// Upsert inserts or replaces a coupon.
func (r *CouponRepository) Upsert(ctx context.Context, rule coupon.Rule) error {
	if _, err := r.pool.Exec(ctx, upsertCouponSQL, rule.Code, rule.Percentage); err != nil {
		return errors.Wrapf(err, "upsert coupon %q", rule.Code)
	}
	return nil
}

func scanRule(row pgx.CollectableRow) (coupon.Rule, error) {
	var rule coupon.Rule
	err := row.Scan(&rule.Code, &rule.Percentage)
	return rule, err
}

// LoadCoupons reads every coupon into a table.
func (s *Source) LoadCoupons(ctx context.Context) (*coupon.Table, error) {
	rules, err := s.coupons.List(ctx)
	if err != nil {
		return nil, err
	}
	return coupon.NewTable(rules...)
}
