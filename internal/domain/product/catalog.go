package product

import (
	"cmp"
	"slices"

	"github.com/go-faster/errors"
)

// SortKey selects the ordering used when listing the catalog.
type SortKey string

const (
	// SortByPrice orders items by ascending unit price.
	SortByPrice SortKey = "price"
	// SortByCategory orders items alphabetically by category.
	SortByCategory SortKey = "category"
)

// DuplicateIDError indicates two catalog records share an identifier.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return "duplicate product id " + e.ID
}

// Catalog is the in-memory set of items for one session, keyed by ID.
// Load order is remembered so listings are deterministic.
type Catalog struct {
	byID  map[string]*Item
	order []*Item
}

// NewCatalog builds a catalog from the given items.
func NewCatalog(items ...*Item) (*Catalog, error) {
	c := &Catalog{
		byID:  make(map[string]*Item, len(items)),
		order: make([]*Item, 0, len(items)),
	}
	for _, it := range items {
		if it == nil {
			return nil, errors.New("nil item")
		}
		if _, ok := c.byID[it.ID]; ok {
			return nil, &DuplicateIDError{ID: it.ID}
		}
		c.byID[it.ID] = it
		c.order = append(c.order, it)
	}
	return c, nil
}

// Get returns the item with the given ID or ErrNotFound.
func (c *Catalog) Get(id string) (*Item, error) {
	it, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return it, nil
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Items returns the items in load order.
func (c *Catalog) Items() []*Item {
	return slices.Clone(c.order)
}

// Sorted returns the items ordered by the given key. The sort is stable, so
// items comparing equal keep their load order. Unknown keys fall back to
// load order.
func (c *Catalog) Sorted(by SortKey) []*Item {
	items := c.Items()
	switch by {
	case SortByPrice:
		slices.SortStableFunc(items, func(a, b *Item) int {
			return a.Price.Cmp(b.Price)
		})
	case SortByCategory:
		slices.SortStableFunc(items, func(a, b *Item) int {
			return cmp.Compare(a.Category, b.Category)
		})
	}
	return items
}
