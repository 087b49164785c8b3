// Package file loads the catalog and coupon table from comma-delimited files.
//
// Catalog records are "id,name,category,price,stock" and coupon records are
// "code,percentage". A catalog line containing the word "id" and a coupon
// line containing the word "coupon" are treated as headers and skipped.
// Paths ending in ".gz" are decompressed on the fly.
package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-checkout/internal/domain/coupon"
	"github.com/xenking/kart-checkout/internal/domain/product"
)

const (
	catalogHeaderToken = "id"
	couponHeaderToken  = "coupon"

	catalogFields = 5
	couponFields  = 2
)

var hundred = decimal.NewFromInt(100)

// RecordError describes a malformed record.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Source loads both tables from files on disk.
type Source struct {
	CatalogPath string
	CouponsPath string
}

// LoadCatalog reads the catalog file.
func (s Source) LoadCatalog(ctx context.Context) (*product.Catalog, error) {
	var items []*product.Item
	err := withFile(s.CatalogPath, func(r io.Reader) (err error) {
		items, err = ReadItems(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}

	c, err := product.NewCatalog(items...)
	if err != nil {
		return nil, errors.Wrapf(err, "build catalog from %s", s.CatalogPath)
	}
	return c, nil
}

// LoadCoupons reads the coupon file.
func (s Source) LoadCoupons(ctx context.Context) (*coupon.Table, error) {
	var rules []coupon.Rule
	err := withFile(s.CouponsPath, func(r io.Reader) (err error) {
		rules, err = ReadCoupons(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}

	t, err := coupon.NewTable(rules...)
	if err != nil {
		return nil, errors.Wrapf(err, "build coupon table from %s", s.CouponsPath)
	}
	return t, nil
}

// withFile opens path, transparently decompressing gzip, and passes the
// reader to fn.
func withFile(path string, fn func(r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	if err := fn(r); err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return nil
}

// ReadItems parses catalog records from r.
func ReadItems(ctx context.Context, r io.Reader) ([]*product.Item, error) {
	var items []*product.Item
	err := readRecords(ctx, r, catalogHeaderToken, catalogFields, func(rec []string) error {
		price, err := decimal.NewFromString(rec[3])
		if err != nil {
			return errors.Wrapf(err, "parse price %q", rec[3])
		}
		if price.IsNegative() {
			return errors.Errorf("negative price %s", price)
		}
		stock, err := strconv.Atoi(rec[4])
		if err != nil {
			return errors.Wrapf(err, "parse stock %q", rec[4])
		}
		if stock < 0 {
			return errors.Errorf("negative stock %d", stock)
		}
		if rec[0] == "" {
			return errors.New("empty product id")
		}

		items = append(items, &product.Item{
			ID:       rec[0],
			Name:     rec[1],
			Category: rec[2],
			Price:    price,
			Stock:    stock,
		})
		return nil
	})
	return items, err
}

// ReadCoupons parses coupon records from r.
func ReadCoupons(ctx context.Context, r io.Reader) ([]coupon.Rule, error) {
	var rules []coupon.Rule
	err := readRecords(ctx, r, couponHeaderToken, couponFields, func(rec []string) error {
		pct, err := decimal.NewFromString(rec[1])
		if err != nil {
			return errors.Wrapf(err, "parse percentage %q", rec[1])
		}
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return errors.Errorf("percentage %s out of range 0..100", pct)
		}

		rules = append(rules, coupon.Rule{Code: rec[0], Percentage: pct})
		return nil
	})
	return rules, err
}

// readRecords calls fn for every non-header record with trimmed fields.
func readRecords(ctx context.Context, r io.Reader, headerToken string, fields int, fn func(rec []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "parse csv")
		}

		line, _ := cr.FieldPos(0)
		if isHeader(rec, headerToken) {
			continue
		}
		if len(rec) != fields {
			return &RecordError{Line: line, Err: errors.Errorf("expected %d fields, got %d", fields, len(rec))}
		}
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		if err := fn(rec); err != nil {
			return &RecordError{Line: line, Err: err}
		}
	}
}

// isHeader reports whether any field of rec contains token as a whole,
// case-sensitive word.
func isHeader(rec []string, token string) bool {
	for _, field := range rec {
		words := strings.FieldsFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, w := range words {
			if w == token {
				return true
			}
		}
	}
	return false
}
