// Command kart runs an interactive checkout session on stdin/stdout.
package main

import (
	"context"
	"os"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	kart "github.com/xenking/kart-checkout/internal/app"
)

func main() {
	app.Run(session)
}

func session(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
	cfg, err := kart.LoadConfig()
	if err != nil {
		return errors.Wrap(err, "config")
	}
	lg.Debug("Config loaded",
		zap.String("source", cfg.Source),
		zap.String("invoice_dir", cfg.Invoice.Dir),
		zap.String("invoice_format", cfg.Invoice.Format),
	)
	return kart.Run(ctx, lg, m, cfg, os.Stdin, os.Stdout)
}
