package file

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/kart-checkout/internal/domain/coupon"
	"github.com/xenking/kart-checkout/internal/domain/product"
)

// WriteItems writes catalog records to w, without a header.
func WriteItems(w io.Writer, items []*product.Item) error {
	cw := csv.NewWriter(w)
	for _, it := range items {
		if err := cw.Write([]string{
			it.ID, it.Name, it.Category, it.Price.String(), strconv.Itoa(it.Stock),
		}); err != nil {
			return errors.Wrapf(err, "write item %s", it.ID)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCoupons writes coupon records to w, without a header.
func WriteCoupons(w io.Writer, rules []coupon.Rule) error {
	cw := csv.NewWriter(w)
	for _, r := range rules {
		if err := cw.Write([]string{r.Code, r.Percentage.String()}); err != nil {
			return errors.Wrapf(err, "write coupon %s", r.Code)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Create creates path and passes a writer to fn, compressing when path ends
// in ".gz".
func Create(path string, fn func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "close %s", path)
		}
	}()

	if !strings.HasSuffix(path, ".gz") {
		return fn(f)
	}

	gz := pgzip.NewWriter(f)
	if err := fn(gz); err != nil {
		_ = gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return errors.Wrapf(err, "flush gzip %s", path)
	}
	return nil
}
