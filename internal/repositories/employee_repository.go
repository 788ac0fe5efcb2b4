package repositories

import (
	"context"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type EmployeeRepository struct {
	DB *pgxpool.Pool
}

func NewEmployeeRepository(db *pgxpool.Pool) *EmployeeRepository {
	return &EmployeeRepository{DB: db}
}

func (r *EmployeeRepository) Create(ctx context.Context, e *models.Employee) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO employees(first_name, last_name, position) VALUES($1, $2, $3)
         RETURNING id, created_at, updated_at`,
		e.FirstName, e.LastName, e.Position,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	return writeErr(err, "Employee")
}

func (r *EmployeeRepository) Get(ctx context.Context, id int) (*models.Employee, error) {
	var e models.Employee
	err := r.DB.QueryRow(ctx,
		`SELECT id, first_name, last_name, COALESCE(position, ''), created_at, updated_at
         FROM employees WHERE id=$1`, id,
	).Scan(&e.ID, &e.FirstName, &e.LastName, &e.Position, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "Employee", id)
	}
	return &e, nil
}

func (r *EmployeeRepository) List(ctx context.Context) ([]*models.Employee, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, first_name, last_name, COALESCE(position, ''), created_at, updated_at
         FROM employees ORDER BY last_name, first_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []*models.Employee{}
	for rows.Next() {
		var e models.Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Position, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		employees = append(employees, &e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) Update(ctx context.Context, e *models.Employee) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE employees SET first_name=$1, last_name=$2, position=$3, updated_at=CURRENT_TIMESTAMP
         WHERE id=$4
         RETURNING created_at, updated_at`,
		e.FirstName, e.LastName, e.Position, e.ID,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Employee", e.ID)
	}
	return nil
}

func (r *EmployeeRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM employees WHERE id=$1`, id)
	return deleteErr(tag, err, "Employee", id)
}
