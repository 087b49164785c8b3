package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItem(id, category, price string) *Item {
	return &Item{
		ID:       id,
		Name:     "name-" + id,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Stock:    1,
	}
}

func ids(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestItem_CalculateTax(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{amount: "0", want: "0"},
		{amount: "100", want: "18"},
		{amount: "165000", want: "29700"},
		{amount: "9.99", want: "1.7982"},
	}

	it := newItem("p1", "c", "1")
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := it.CalculateTax(decimal.RequireFromString(tt.amount))
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got),
				"expected %s, got %s", tt.want, got)
		})
	}
}

func TestNewCatalog_DuplicateID(t *testing.T) {
	_, err := NewCatalog(newItem("p1", "a", "1"), newItem("p1", "b", "2"))

	var dupErr *DuplicateIDError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "p1", dupErr.ID)
}

func TestCatalog_Get(t *testing.T) {
	c, err := NewCatalog(newItem("p1", "a", "1"))
	require.NoError(t, err)

	it, err := c.Get("p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", it.ID)

	_, err = c.Get("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_GetSharesItem(t *testing.T) {
	original := newItem("p1", "a", "1")
	c, err := NewCatalog(original)
	require.NoError(t, err)

	it, err := c.Get("p1")
	require.NoError(t, err)
	it.Stock = 0

	assert.Equal(t, 0, original.Stock)
}

func TestCatalog_Sorted(t *testing.T) {
	c, err := NewCatalog(
		newItem("p1", "Electronics", "55000"),
		newItem("p2", "Accessories", "2000"),
		newItem("p3", "Wearables", "12000"),
		newItem("p4", "Electronics", "12000"),
		newItem("p5", "Accessories", "800"),
	)
	require.NoError(t, err)

	tests := []struct {
		name string
		by   SortKey
		want []string
	}{
		{name: "by price keeps load order on ties", by: SortByPrice, want: []string{"p5", "p2", "p3", "p4", "p1"}},
		{name: "by category", by: SortByCategory, want: []string{"p2", "p5", "p1", "p4", "p3"}},
		{name: "unknown key keeps load order", by: SortKey("bogus"), want: []string{"p1", "p2", "p3", "p4", "p5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(c.Sorted(tt.by)))
		})
	}

	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, ids(c.Items()), "sorting must not reorder the catalog")
	assert.Equal(t, 5, c.Len())
}
