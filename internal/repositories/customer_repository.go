package repositories

import (
	"context"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO customers(name, contact_info, address) VALUES($1, $2, $3)
         RETURNING id, created_at, updated_at`,
		c.Name, c.ContactInfo, c.Address,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return writeErr(err, "Customer")
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	var c models.Customer
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(contact_info, ''), COALESCE(address, ''), created_at, updated_at
         FROM customers WHERE id=$1`, id,
	).Scan(&c.ID, &c.Name, &c.ContactInfo, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "Customer", id)
	}
	return &c, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, COALESCE(contact_info, ''), COALESCE(address, ''), created_at, updated_at
         FROM customers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Customer{}
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.ContactInfo, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE customers SET name=$1, contact_info=$2, address=$3, updated_at=CURRENT_TIMESTAMP
         WHERE id=$4
         RETURNING created_at, updated_at`,
		c.Name, c.ContactInfo, c.Address, c.ID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Customer", c.ID)
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	return deleteErr(tag, err, "Customer", id)
}
