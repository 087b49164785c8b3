// Package invoice stores rendered invoices.
package invoice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/kart-checkout/internal/domain/order"
)

// Format selects the invoice encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Ext returns the file extension for the format.
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".txt"
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return "", errors.Errorf("unknown invoice format %q", s)
	}
}

// Store persists an invoice and returns where it was written.
type Store interface {
	Save(ctx context.Context, inv *order.Invoice) (string, error)
}

var _ Store = (*FileStore)(nil)

// FileStore writes each invoice to its own file named
// invoice_<unix millis><ext> under a directory.
type FileStore struct {
	dir    string
	format Format
	now    func() time.Time
}

// NewFileStore returns a FileStore writing to dir in the given format.
func NewFileStore(dir string, format Format) *FileStore {
	return &FileStore{dir: dir, format: format, now: time.Now}
}

// Save encodes inv and writes it to a new file.
func (s *FileStore) Save(ctx context.Context, inv *order.Invoice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := Encode(inv, s.format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create invoice dir %s", s.dir)
	}

	name := fmt.Sprintf("invoice_%d%s", s.now().UnixMilli(), s.format.Ext())
	path := filepath.Join(s.dir, name)
	if err := writeNew(path, data); err != nil {
		return "", errors.Wrapf(err, "write invoice %s", path)
	}
	return path, nil
}

// writeNew writes data to path, failing if path already exists.
func writeNew(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = f.Write(data)
	return err
}

// Encode renders inv in the given format.
func Encode(inv *order.Invoice, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return []byte(inv.String()), nil
	case FormatJSON:
		return encodeJSON(inv), nil
	default:
		return nil, errors.Errorf("unknown invoice format %q", format)
	}
}

// encodeJSON writes amounts as fixed two-decimal strings to keep them exact.
func encodeJSON(inv *order.Invoice) []byte {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("title", func(e *jx.Encoder) { e.Str(inv.Title) })
		e.Field("lines", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, l := range inv.Lines {
					e.Obj(func(e *jx.Encoder) {
						e.Field("id", func(e *jx.Encoder) { e.Str(l.ItemID) })
						e.Field("name", func(e *jx.Encoder) { e.Str(l.Name) })
						e.Field("quantity", func(e *jx.Encoder) { e.Int(l.Quantity) })
						e.Field("subtotal", func(e *jx.Encoder) { e.Str(order.FormatAmount(l.Subtotal)) })
					})
				}
			})
		})
		if inv.CouponCode != "" {
			e.Field("coupon", func(e *jx.Encoder) { e.Str(inv.CouponCode) })
		}
		e.Field("subtotal", func(e *jx.Encoder) { e.Str(order.FormatAmount(inv.Subtotal)) })
		e.Field("discount", func(e *jx.Encoder) { e.Str(order.FormatAmount(inv.Discount)) })
		e.Field("tax", func(e *jx.Encoder) { e.Str(order.FormatAmount(inv.Tax)) })
		e.Field("total", func(e *jx.Encoder) { e.Str(order.FormatAmount(inv.Total)) })
	})
	return e.Bytes()
}
