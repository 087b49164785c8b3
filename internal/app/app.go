package app

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-checkout/internal/checkout"
	"github.com/xenking/kart-checkout/internal/console"
	"github.com/xenking/kart-checkout/internal/domain/coupon"
	"github.com/xenking/kart-checkout/internal/domain/product"
	"github.com/xenking/kart-checkout/internal/invoice"
	"github.com/xenking/kart-checkout/internal/storage/file"
	"github.com/xenking/kart-checkout/internal/storage/postgres"
)

// Source loads the catalog and coupon table at startup.
type Source interface {
	LoadCatalog(ctx context.Context) (*product.Catalog, error)
	LoadCoupons(ctx context.Context) (*coupon.Table, error)
}

// Run loads the catalog and coupons, then drives one checkout session reading
// commands from in and writing to out. It is the single wiring point for the
// application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, in io.Reader, out io.Writer) error {
	return run(ctx, lg, cfg, in, out, checkout.Options{
		MeterProvider:  m.MeterProvider(),
		TracerProvider: m.TracerProvider(),
	})
}

func run(ctx context.Context, lg *zap.Logger, cfg *Config, in io.Reader, out io.Writer, opts checkout.Options) error {
	lg.Info("Initializing", zap.String("source", cfg.Source))

	src, closeSource, err := openSource(ctx, lg, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	catalog, coupons, err := Load(ctx, src)
	if err != nil {
		return err
	}
	lg.Info("Loaded",
		zap.Int("products", catalog.Len()),
		zap.Int("coupons", coupons.Len()),
	)

	format, err := invoice.ParseFormat(cfg.Invoice.Format)
	if err != nil {
		return errors.Wrap(err, "invoice format")
	}

	opts.Invoices = invoice.NewFileStore(cfg.Invoice.Dir, format)
	opts.PaymentOut = out
	opts.Logger = lg.Named("checkout")
	flow, err := checkout.New(catalog, coupons, opts)
	if err != nil {
		return errors.Wrap(err, "create checkout flow")
	}

	if err := console.New(flow, in, out).Run(ctx); err != nil {
		return errors.Wrap(err, "session")
	}
	lg.Info("Session finished")
	return nil
}

// openSource returns the configured Source and a function releasing its
// resources.
func openSource(ctx context.Context, lg *zap.Logger, cfg *Config) (Source, func(), error) {
	switch cfg.Source {
	case SourcePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		lg.Info("Connected to database")
		return postgres.NewSource(pool), pool.Close, nil
	case SourceFile:
		return file.Source{
			CatalogPath: cfg.CatalogFile,
			CouponsPath: cfg.CouponsFile,
		}, func() {}, nil
	default:
		return nil, nil, errors.Errorf("unknown source %q", cfg.Source)
	}
}

// Load reads the catalog and the coupon table concurrently.
func Load(ctx context.Context, src Source) (*product.Catalog, *coupon.Table, error) {
	var (
		catalog *product.Catalog
		coupons *coupon.Table
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if catalog, err = src.LoadCatalog(ctx); err != nil {
			return errors.Wrap(err, "load catalog")
		}
		return nil
	})
	g.Go(func() (err error) {
		if coupons, err = src.LoadCoupons(ctx); err != nil {
			return errors.Wrap(err, "load coupons")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return catalog, coupons, nil
}
