package repositories

import (
	"context"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OrganizationRepository struct {
	DB *pgxpool.Pool
}

func NewOrganizationRepository(db *pgxpool.Pool) *OrganizationRepository {
	return &OrganizationRepository{DB: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, o *models.Organization) error {
	err := r.DB.QueryRow(ctx,
		`INSERT INTO organizations(name) VALUES($1)
         RETURNING id, created_at, updated_at`,
		o.Name,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return writeErr(err, "Organization")
}

func (r *OrganizationRepository) Get(ctx context.Context, id int) (*models.Organization, error) {
	var o models.Organization
	err := r.DB.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM organizations WHERE id=$1`, id,
	).Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, readErr(err, "Organization", id)
	}
	return &o, nil
}

func (r *OrganizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, created_at, updated_at FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []*models.Organization{}
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		orgs = append(orgs, &o)
	}
	return orgs, rows.Err()
}

func (r *OrganizationRepository) Update(ctx context.Context, o *models.Organization) error {
	err := r.DB.QueryRow(ctx,
		`UPDATE organizations SET name=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2
         RETURNING created_at, updated_at`,
		o.Name, o.ID,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Organization", o.ID)
	}
	return nil
}

func (r *OrganizationRepository) Delete(ctx context.Context, id int) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM organizations WHERE id=$1`, id)
	return deleteErr(tag, err, "Organization", id)
}
