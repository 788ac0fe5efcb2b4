package repositories

import (
	"context"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OperationRepository struct {
	DB *pgxpool.Pool
}

func NewOperationRepository(db *pgxpool.Pool) *OperationRepository {
	return &OperationRepository{DB: db}
}

func (r *OperationRepository) Create(ctx context.Context, m *models.Operation) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO operations(operation_type) VALUES($1)
         RETURNING id, created_at, updated_at`,
		m.OperationType,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return writeErr(err, "Operation")
}

func (r *OperationRepository) Get(ctx context.Context, id int) (*models.Operation, error) {
	var m models.Operation
	err := r.DB.QueryRow(ctx,
		`SELECT id, operation_type, created_at, updated_at FROM operations WHERE id=$1`, id,
	).Scan(&m.ID, &m.OperationType, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "Operation", id)
	}
	return &m, nil
}

func (r *OperationRepository) List(ctx context.Context) ([]*models.Operation, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, operation_type, created_at, updated_at FROM operations ORDER BY operation_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Operation{}
	for rows.Next() {
		var m models.Operation
		if err := rows.Scan(&m.ID, &m.OperationType, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *OperationRepository) Update(ctx context.Context, m *models.Operation) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE operations SET operation_type=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2
         RETURNING created_at, updated_at`,
		m.OperationType, m.ID,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Operation", m.ID)
	}
	return nil
}

func (r *OperationRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM operations WHERE id=$1`, id)
	return deleteErr(tag, err, "Operation", id)
}
