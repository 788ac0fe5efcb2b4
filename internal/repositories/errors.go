package repositories

import (
	"context"
	"errors"
	"fmt"

	"stock-backend/internal/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNumericOutOfRange   = "22003"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// readErr maps a missing row to a not-found error for resource
func readErr(err error, resource string, id int) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if id > 0 {
			return apperrors.ErrNotFoundWithID(resource, id)
		}
		return apperrors.ErrNotFound(resource)
	}
	return fmt.Errorf("read %s: %w", resource, err)
}

// writeErr maps constraint violations raised by inserts and updates
func writeErr(err error, resource string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound(resource)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return apperrors.ErrConflict(fmt.Sprintf("%s already exists", resource)).
				WithDetail("constraint", pgErr.ConstraintName).Wrap(err)
		case pgForeignKeyViolation:
			return apperrors.ErrValidation("referenced record does not exist").
				WithDetail("constraint", pgErr.ConstraintName).Wrap(err)
		case pgNumericOutOfRange:
			return apperrors.ErrValidation("numeric value out of range").
				WithDetail("column", pgErr.ColumnName).Wrap(err)
		}
	}
	return fmt.Errorf("write %s: %w", resource, err)
}

// deleteErr maps a delete that affected nothing to not found, and a delete
// blocked by a referencing row to a conflict
func deleteErr(tag pgconn.CommandTag, err error, resource string, id int) error {
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperrors.ErrConflict(fmt.Sprintf("%s %d is still referenced", resource, id)).
				WithDetail("constraint", pgErr.ConstraintName).Wrap(err)
		}
		return fmt.Errorf("delete %s: %w", resource, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFoundWithID(resource, id)
	}
	return nil
}

// updateErr is writeErr plus not-found when the WHERE matched nothing
func updateErr(tag pgconn.CommandTag, err error, resource string, id int) error {
	if err != nil {
		return writeErr(err, resource)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFoundWithID(resource, id)
	}
	return nil
}

// readOrWriteErr handles UPDATE ... RETURNING: no row means the id does not exist
func readOrWriteErr(err error, resource string, id int) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFoundWithID(resource, id)
	}
	return writeErr(err, resource)
}
