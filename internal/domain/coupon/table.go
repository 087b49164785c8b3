package coupon

import (
	"slices"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
)

const filterFPR = 0.01

var _ Finder = (*Table)(nil)

// Table is the immutable set of coupons for one session.
//
// Lookups consult a bloom filter first so unknown codes are rejected without
// touching the map.
type Table struct {
	rules  map[string]Rule
	codes  []string
	filter *bloom.BloomFilter
}

// NewTable builds a Table from the given rules. Codes are case-sensitive and
// must be unique.
func NewTable(rules ...Rule) (*Table, error) {
	t := &Table{
		rules:  make(map[string]Rule, len(rules)),
		codes:  make([]string, 0, len(rules)),
		filter: bloom.NewWithEstimates(uint(max(len(rules), 1)), filterFPR),
	}
	for _, r := range rules {
		if r.Code == "" {
			return nil, errors.New("empty coupon code")
		}
		if _, ok := t.rules[r.Code]; ok {
			return nil, errors.Errorf("duplicate coupon code %q", r.Code)
		}
		t.rules[r.Code] = r
		t.codes = append(t.codes, r.Code)
		t.filter.AddString(r.Code)
	}
	return t, nil
}

// FindByCode returns the rule for code, or ErrInvalidCoupon.
func (t *Table) FindByCode(code string) (Rule, error) {
	if !t.filter.TestString(code) {
		return Rule{}, ErrInvalidCoupon
	}
	r, ok := t.rules[code]
	if !ok {
		return Rule{}, ErrInvalidCoupon
	}
	return r, nil
}

// Len returns the number of coupons.
func (t *Table) Len() int {
	return len(t.codes)
}

// Codes returns the coupon codes in load order.
func (t *Table) Codes() []string {
	return slices.Clone(t.codes)
}
