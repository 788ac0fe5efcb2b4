package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables cleared by a reset, children first
var (
	LedgerTables = []string{
		"outgoing_invoice_items",
		"outgoing_invoices",
		"incoming_invoice_items",
		"incoming_invoices",
		"products",
	}
	MasterDataTables = []string{
		"operations",
		"contracts",
		"customers",
		"suppliers",
		"employees",
		"storages",
		"organizations",
	}
)

// ResetStatement truncates tables and restarts their id sequences
func ResetStatement(tables []string) string {
	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = pgx.Identifier{t}.Sanitize()
	}
	return fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(quoted, ", "))
}

// Reset clears stock and invoices; with masterData it also clears the
// reference tables. Users are never touched.
func Reset(ctx context.Context, pool *pgxpool.Pool, masterData bool) ([]string, error) {
	tables := append([]string{}, LedgerTables...)
	if masterData {
		tables = append(tables, MasterDataTables...)
	}
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, ResetStatement(tables))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return tables, nil
}
