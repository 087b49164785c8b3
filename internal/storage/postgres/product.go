package postgres

import (
	"context"
	"math"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-checkout/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, name, category, price, stock FROM products ORDER BY id`

	upsertProductSQL = `INSERT INTO products (id, name, category, price, stock)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		category = EXCLUDED.category,
		price = EXCLUDED.price,
		stock = EXCLUDED.stock`
)

// ProductRepository reads and seeds the products table.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]*product.Item, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	items, err := pgx.CollectRows(rows, scanItem)
	if err != nil {
		return nil, errors.Wrap(err, "scan products")
	}
	return items, nil
}

// Upsert inserts or replaces a product.
func (r *ProductRepository) Upsert(ctx context.Context, it *product.Item) error {
	stock, err := stockColumn(it.Stock)
	if err != nil {
		return errors.Wrapf(err, "upsert product %q", it.ID)
	}
	if _, err := r.pool.Exec(ctx, upsertProductSQL, it.ID, it.Name, it.Category, it.Price, stock); err != nil {
		return errors.Wrapf(err, "upsert product %q", it.ID)
	}
	return nil
}

// stockColumn converts stock to the INTEGER column type.
func stockColumn(stock int) (int32, error) {
	if stock < 0 || stock > math.MaxInt32 {
		return 0, errors.Errorf("stock %d out of range 0..%d", stock, math.MaxInt32)
	}
	return int32(stock), nil
}

func scanItem(row pgx.CollectableRow) (*product.Item, error) {
	var (
		it    product.Item
		stock int32
	)
	err := row.Scan(&it.ID, &it.Name, &it.Category, &it.Price, &stock)
	it.Stock = int(stock)
	return &it, err
}

// LoadCatalog reads every product into a catalog.
func (s *Source) LoadCatalog(ctx context.Context) (*product.Catalog, error) {
	items, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return product.NewCatalog(items...)
}
