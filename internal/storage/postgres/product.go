package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yuhlin/craftshop/internal/domain/product"
)

const (
	productColumns = `id, name, price_cents, category, COALESCE(image, '')`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	listRecentProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id DESC LIMIT $1`

	// New products without an explicit id take one past the current maximum,
	// matching how the back office has always assigned ids.
	createProductSQL = `INSERT INTO products (id, name, price_cents, category, image)
		VALUES (
			COALESCE($1, (SELECT COALESCE(MAX(id), 0) + 1 FROM products)),
			$2, $3, $4, NULLIF($5, '')
		)
		RETURNING id`

	updateProductSQL = `UPDATE products
		SET name = $2, price_cents = $3, category = $4, image = NULLIF($5, '')
		WHERE id = $1
		RETURNING ` + productColumns

	upsertProductSQL = `INSERT INTO products (id, name, price_cents, category, image)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			price_cents = excluded.price_cents,
			category = excluded.category,
			image = excluded.image`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns catalog products matching the filter, ordered by id.
func (r *ProductRepository) List(ctx context.Context, f product.Filter) ([]product.Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products WHERE TRUE`
	args := []any{}

	if f.Category != "" && f.Category != "all" {
		args = append(args, f.Category)
		sql += ` AND category = $1`
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		if len(args) == 1 {
			sql += ` AND name ILIKE $1`
		} else {
			sql += ` AND name ILIKE $2`
		}
	}
	sql += ` ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "listing products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListRecent returns the newest products first, for the admin dashboard.
func (r *ProductRepository) ListRecent(ctx context.Context, limit int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listRecentProductsSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing recent products")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "getting product %d", id)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "getting product %d", id)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given ids.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "getting products by ids")
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create inserts a product, assigning the next free id when p.ID is zero.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	var id *int64
	if p.ID != 0 {
		id = &p.ID
	}

	err := r.pool.QueryRow(ctx, createProductSQL,
		id, p.Name, p.PriceCents, p.Category, p.Image,
	).Scan(&p.ID)
	if err != nil {
		return errors.Wrapf(err, "creating product %q", p.Name)
	}
	return nil
}

// Update rewrites all mutable product fields and returns the stored row.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, updateProductSQL,
		p.ID, p.Name, p.PriceCents, p.Category, p.Image,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "updating product %d", p.ID)
	}

	updated, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, errors.Wrapf(err, "updating product %d", p.ID)
	}
	return &updated, nil
}

// Upsert inserts the product or overwrites the existing row with the same id.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	_, err := r.pool.Exec(ctx, upsertProductSQL,
		p.ID, p.Name, p.PriceCents, p.Category, p.Image,
	)
	if err != nil {
		return errors.Wrapf(err, "upserting product %d", p.ID)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Image)
	return p, err
}
