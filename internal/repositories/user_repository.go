package repositories

import (
	"context"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO users(username, email, password_hash)
         VALUES($1, $2, $3)
         RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return writeErr(err, "User")
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at, updated_at
         FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "User", id)
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRow(ctx,
		`SELECT id, username, email, password_hash, created_at, updated_at
         FROM users WHERE username=$1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "User", 0)
	}
	return &u, nil
}
