package repositories

import (
	"context"
	"fmt"
	"time"

	"stock-backend/internal/apperrors"
	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `id, name, COALESCE(description, ''), unit_price, current_stock,
       unit_of_measure, date, storage_id, created_at, updated_at`

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.UnitPrice, &p.CurrentStock,
		&p.UnitOfMeasure, &p.Date, &p.StorageID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func insertProduct(ctx context.Context, q querier, p *models.Product) error {
	err := q.QueryRow(ctx,
		`INSERT INTO products(name, description, unit_price, current_stock, unit_of_measure, date, storage_id)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		p.Name, p.Description, p.UnitPrice, p.CurrentStock, p.UnitOfMeasure, p.Date, p.StorageID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return writeErr(err, "Product")
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return insertProduct(ctx, r.DB, p)
}

func (r *ProductRepository) Get(ctx context.Context, id int) (*models.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if err != nil {
		return nil, readErr(err, "Product", id)
	}
	return p, nil
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*models.Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE name=$1`, name))
	if err != nil {
		return nil, readErr(err, "Product", 0)
	}
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update writes the descriptive fields only; current_stock is left alone.
// Incoming items carry the product name, so a rename is applied to them in the same transaction.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	return pgx.BeginFunc(ctx, r.DB, func(tx pgx.Tx) error {
		return updateProduct(ctx, tx, p)
	})
}

func updateProduct(ctx context.Context, q querier, p *models.Product) error {
	var oldName string
	if err := q.QueryRow(ctx, `SELECT name FROM products WHERE id=$1 FOR UPDATE`, p.ID).Scan(&oldName); err != nil {
		return readErr(err, "Product", p.ID)
	}

	err := q.QueryRow(ctx,
		`UPDATE products
         SET name=$1, description=$2, unit_price=$3, unit_of_measure=$4, storage_id=$5, updated_at=CURRENT_TIMESTAMP
         WHERE id=$6
         RETURNING current_stock, date, created_at, updated_at`,
		p.Name, p.Description, p.UnitPrice, p.UnitOfMeasure, p.StorageID, p.ID,
	).Scan(&p.CurrentStock, &p.Date, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Product", p.ID)
	}

	if oldName == p.Name {
		return nil
	}
	_, err = q.Exec(ctx,
		`UPDATE incoming_invoice_items SET product_name=$1 WHERE product_name=$2`, p.Name, oldName)
	return writeErr(err, "Incoming invoice item")
}

// Delete refuses while any invoice item still points at the product.
// Incoming items reference products by name, so that check is explicit.
func (r *ProductRepository) Delete(ctx context.Context, id int) error {
	var referenced bool
	err := r.DB.QueryRow(ctx,
		`SELECT EXISTS (
             SELECT 1 FROM incoming_invoice_items i JOIN products p ON p.name = i.product_name WHERE p.id=$1
         )`, id).Scan(&referenced)
	if err != nil {
		return fmt.Errorf("check product references: %w", err)
	}
	if referenced {
		return apperrors.ErrConflict(fmt.Sprintf("Product %d is still referenced", id))
	}

	tag, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	return deleteErr(tag, err, "Product", id)
}

// productsByDate returns products last stamped within [from, to), joined with their storage name
func productsByDate(ctx context.Context, q querier, from, to time.Time) ([]*models.ProductWithStorage, error) {
	rows, err := q.Query(ctx,
		`SELECT p.id, p.name, COALESCE(p.description, ''), p.unit_price, p.current_stock,
                p.unit_of_measure, p.date, p.storage_id, p.created_at, p.updated_at, s.name
         FROM products p
         JOIN storages s ON s.id = p.storage_id
         WHERE p.date >= $1 AND p.date < $2
         ORDER BY s.name, p.name`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.ProductWithStorage{}
	for rows.Next() {
		var p models.ProductWithStorage
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.UnitPrice, &p.CurrentStock,
			&p.UnitOfMeasure, &p.Date, &p.StorageID, &p.CreatedAt, &p.UpdatedAt, &p.StorageName); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
