package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/coupon"
	"github.com/xenking/kart-checkout/internal/domain/product"
	"github.com/xenking/kart-checkout/internal/storage/file"
	"github.com/xenking/kart-checkout/internal/storage/postgres"
)

func sampleItems() []*product.Item {
	item := func(id, name, category string, price int64, stock int) *product.Item {
		return &product.Item{ID: id, Name: name, Category: category, Price: decimal.NewFromInt(price), Stock: stock}
	}
	return []*product.Item{
		item("P101", "Laptop", "Electronics", 55000, 10),
		item("P102", "Smartphone", "Electronics", 25000, 20),
		item("P103", "Headphones", "Accessories", 2000, 30),
		item("P104", "Keyboard", "Accessories", 1500, 25),
		item("P105", "Mouse", "Accessories", 800, 40),
		item("P106", "Smartwatch", "Wearables", 12000, 15),
		item("P107", "Earphones", "Electronics", 12000, 15),
	}
}

func sampleCoupons() []coupon.Rule {
	rule := func(code string, pct int64) coupon.Rule {
		return coupon.Rule{Code: code, Percentage: decimal.NewFromInt(pct)}
	}
	return []coupon.Rule{
		rule("save5", 5),
		rule("SAVE20", 20),
		rule("FESTIVE25", 25),
		rule("NEWUSER15", 15),
		rule("MEGA30", 30),
	}
}

func main() {
	var (
		dir         string
		gzipped     bool
		databaseURL string
	)

	flag.StringVar(&dir, "dir", ".", "directory to write products.csv and coupons.csv into")
	flag.BoolVar(&gzipped, "gzip", false, "write .csv.gz files")
	flag.StringVar(&databaseURL, "database-url", "", "also seed PostgreSQL at this URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dir, gzipped, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, dir string, gzipped bool, databaseURL string) error {
	if err := writeFiles(dir, gzipped); err != nil {
		return errors.Wrap(err, "write files")
	}
	if databaseURL == "" {
		return nil
	}
	if err := seedDatabase(ctx, databaseURL); err != nil {
		return errors.Wrap(err, "seed database")
	}
	return nil
}

func writeFiles(dir string, gzipped bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	ext := ".csv"
	if gzipped {
		ext += ".gz"
	}

	products := filepath.Join(dir, "products"+ext)
	if err := file.Create(products, func(w io.Writer) error {
		return file.WriteItems(w, sampleItems())
	}); err != nil {
		return err
	}
	slog.Info("wrote products file", slog.String("path", products))

	coupons := filepath.Join(dir, "coupons"+ext)
	if err := file.Create(coupons, func(w io.Writer) error {
		return file.WriteCoupons(w, sampleCoupons())
	}); err != nil {
		return err
	}
	slog.Info("wrote coupons file", slog.String("path", coupons))

	return nil
}

func seedDatabase(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	products := postgres.NewProductRepository(pool)
	for _, it := range sampleItems() {
		if err := products.Upsert(ctx, it); err != nil {
			return errors.Wrapf(err, "upsert product %s", it.ID)
		}
		slog.Info("upserted product", slog.String("id", it.ID), slog.String("name", it.Name))
	}

	coupons := postgres.NewCouponRepository(pool)
	for _, r := range sampleCoupons() {
		if err := coupons.Upsert(ctx, r); err != nil {
			return errors.Wrapf(err, "upsert coupon %s", r.Code)
		}
		slog.Info("upserted coupon", slog.String("code", r.Code))
	}

	return nil
}
