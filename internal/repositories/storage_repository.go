package repositories

import (
	"context"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type StorageRepository struct {
	DB *pgxpool.Pool
}

func NewStorageRepository(db *pgxpool.Pool) *StorageRepository {
	return &StorageRepository{DB: db}
}

func (r *StorageRepository) Create(ctx context.Context, s *models.Storage) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO storages(name, location, capacity) VALUES($1, $2, $3)
         RETURNING id, created_at, updated_at`,
		s.Name, s.Location, s.Capacity,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return writeErr(err, "Storage")
}

func (r *StorageRepository) Get(ctx context.Context, id int) (*models.Storage, error) {
	var s models.Storage
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, COALESCE(location, ''), capacity, created_at, updated_at
         FROM storages WHERE id=$1`, id,
	).Scan(&s.ID, &s.Name, &s.Location, &s.Capacity, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "Storage", id)
	}
	return &s, nil
}

func (r *StorageRepository) List(ctx context.Context) ([]*models.Storage, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, name, COALESCE(location, ''), capacity, created_at, updated_at
         FROM storages ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	storages := []*models.Storage{}
	for rows.Next() {
		var s models.Storage
		if err := rows.Scan(&s.ID, &s.Name, &s.Location, &s.Capacity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		storages = append(storages, &s)
	}
	return storages, rows.Err()
}

func (r *StorageRepository) Update(ctx context.Context, s *models.Storage) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE storages SET name=$1, location=$2, capacity=$3, updated_at=CURRENT_TIMESTAMP
         WHERE id=$4
         RETURNING created_at, updated_at`,
		s.Name, s.Location, s.Capacity, s.ID,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Storage", s.ID)
	}
	return nil
}

func (r *StorageRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM storages WHERE id=$1`, id)
	return deleteErr(tag, err, "Storage", id)
}
