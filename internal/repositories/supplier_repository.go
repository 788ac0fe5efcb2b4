package repositories

import (
	"context"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SupplierRepository struct {
	DB *pgxpool.Pool
}

func NewSupplierRepository(db *pgxpool.Pool) *SupplierRepository {
	return &SupplierRepository{DB: db}
}

func (r *SupplierRepository) Create(ctx context.Context, c *models.Supplier) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO suppliers(name, contact_info, address) VALUES($1, $2, $3)
         RETURNING id, created_at, updated_at`,
		c.Name, c.ContactInfo, c.Address,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return writeErr(err, "Supplier")
}

func (r *SupplierRepository) Get(ctx context.Context, id int) (*models.Supplier, error) {
	var c models.Supplier
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(contact_info, ''), COALESCE(address, ''), created_at, updated_at
         FROM suppliers WHERE id=$1`, id,
	).Scan(&c.ID, &c.Name, &c.ContactInfo, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "Supplier", id)
	}
	return &c, nil
}

func (r *SupplierRepository) List(ctx context.Context) ([]*models.Supplier, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, COALESCE(contact_info, ''), COALESCE(address, ''), created_at, updated_at
         FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Supplier{}
	for rows.Next() {
		var c models.Supplier
		if err := rows.Scan(&c.ID, &c.Name, &c.ContactInfo, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *SupplierRepository) Update(ctx context.Context, c *models.Supplier) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE suppliers SET name=$1, contact_info=$2, address=$3, updated_at=CURRENT_TIMESTAMP
         WHERE id=$4
         RETURNING created_at, updated_at`,
		c.Name, c.ContactInfo, c.Address, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Supplier", c.ID)
	}
	return nil
}

func (r *SupplierRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM suppliers WHERE id=$1`, id)
	return deleteErr(tag, err, "Supplier", id)
}
