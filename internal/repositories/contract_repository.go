package repositories

import (
	"context"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ContractRepository struct {
	DB *pgxpool.Pool
}

func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{DB: db}
}

func (r *ContractRepository) Create(ctx context.Context, m *models.Contract) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO contracts(contract_number) VALUES($1)
         RETURNING id, created_at, updated_at`,
		m.ContractNumber,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return writeErr(err, "Contract")
}

func (r *ContractRepository) Get(ctx context.Context, id int) (*models.Contract, error) {
	var m models.Contract
	err := r.DB.QueryRow(ctx,
		`SELECT id, contract_number, created_at, updated_at FROM contracts WHERE id=$1`, id,
	).Scan(&m.ID, &m.ContractNumber, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "Contract", id)
	}
	return &m, nil
}

func (r *ContractRepository) List(ctx context.Context) ([]*models.Contract, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, contract_number, created_at, updated_at FROM contracts ORDER BY contract_number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*models.Contract{}
	for rows.Next() {
		var m models.Contract
		if err := rows.Scan(&m.ID, &m.ContractNumber, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *ContractRepository) Update(ctx context.Context, m *models.Contract) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE contracts SET contract_number=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2
         RETURNING created_at, updated_at`,
		m.ContractNumber, m.ID,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Contract", m.ID)
	}
	return nil
}

func (r *ContractRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM contracts WHERE id=$1`, id)
	return deleteErr(tag, err, "Contract", id)
}
