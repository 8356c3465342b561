package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/mreynaud/go-storefront/internal/entity"
	"github.com/mreynaud/go-storefront/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, image_url, stock"

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Stock); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query product %s: %w", id, err)
	}
	return p, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []string) ([]entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to query products by ids: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products (id, name, description, price, image_url, stock) VALUES ($1, $2, $3, $4, $5, $6)",
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Stock,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *entity.Product) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET name = $2, description = $3, price = $4, image_url = $5, stock = $6 WHERE id = $1",
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Stock,
	)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update of product %s: %w", p.ID, err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete of product %s: %w", id, err)
	}
	if n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for _, p := range products {
		if err := r.Create(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	return nil
}
