// Package postgres loads the catalog and coupon table from PostgreSQL.
//
// The database is only read at startup; stock reservations made during a
// session are never written back.
package postgres

import (
	"context"

	"github.com/go-faster/errors"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-checkout/db"
)

// NewPool connects to databaseURL and registers shopspring/decimal for
// NUMERIC columns on every connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse database url")
	}
	cfg.AfterConnect = registerDecimal

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open pool")
	}
	return pool, nil
}

func registerDecimal(_ context.Context, conn *pgx.Conn) error {
	pgxdecimal.Register(conn.TypeMap())
	return nil
}

// RunMigrations creates the products and coupons tables if they are missing.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, db.Schema); err != nil {
		return errors.Wrap(err, "apply schema")
	}
	return nil
}

// Source loads both tables from the database.
type Source struct {
	products *ProductRepository
	coupons  *CouponRepository
}

// NewSource returns a Source reading through the given pool.
func NewSource(pool *pgxpool.Pool) *Source {
	return &Source{
		products: NewProductRepository(pool),
		coupons:  NewCouponRepository(pool),
	}
}
