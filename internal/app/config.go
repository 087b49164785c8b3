package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/kart-checkout/internal/invoice"
)

// Source names accepted by Config.Source.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (KART_ prefix), flags, or YAML config files.
type Config struct {
	Source      string `default:"file" env:"SOURCE" usage:"Catalog and coupon source: file or postgres"`
	CatalogFile string `default:"products.csv" env:"CATALOG_FILE" usage:"Path to the product catalog (.csv or .csv.gz)" flag:"catalog-file"`
	CouponsFile string `default:"coupons.csv" env:"COUPONS_FILE" usage:"Path to the coupon table (.csv or .csv.gz)" flag:"coupons-file"`
	DatabaseURL string `env:"DATABASE_URL" usage:"PostgreSQL connection URL (KART_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Invoice     InvoiceConfig
}

// InvoiceConfig controls where and how invoices are written at checkout.
type InvoiceConfig struct {
	Dir    string `default:"." env:"DIR" usage:"Directory for invoice files" flag:"dir"`
	Format string `default:"text" env:"FORMAT" usage:"Invoice file format: text or json" flag:"format"`
}

// LoadConfig loads configuration from environment variables, flags, YAML
// config files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		Files: []string{"config.yaml", "/etc/kart/config.yaml"},
	})
}

func loadConfig(base aconfig.Config) (*Config, error) {
	var cfg Config
	base.EnvPrefix = "KART"
	base.FileDecoders = map[string]aconfig.FileDecoder{
		".yaml": aconfigyaml.New(),
	}
	loader := aconfig.LoaderFor(&cfg, base)
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints that tags cannot express.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceFile:
		if c.CatalogFile == "" || c.CouponsFile == "" {
			return errors.New("catalog and coupons files are required for the file source")
		}
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required: set KART_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown source %q: want %q or %q", c.Source, SourceFile, SourcePostgres)
	}

	if _, err := invoice.ParseFormat(c.Invoice.Format); err != nil {
		return errors.Wrap(err, "invoice format")
	}
	return nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL environment
// variable onto the KART_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}
