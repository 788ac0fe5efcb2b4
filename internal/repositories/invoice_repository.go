package repositories

import (
	"context"
	"fmt"
	"time"

	"stock-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	incomingHeaderColumns = `id, number, date, counter_agent_id, operation_type, organization_id, storage_id,
       COALESCE(contract_number, ''), responsible_person_id, COALESCE(comment, ''), created_at, updated_at`
	incomingItemColumns = `id, incoming_invoice_id, product_name, COALESCE(product_description, ''), quantity,
       unit_of_measure, unit_price, total_price, vat_percentage, vat_amount, COALESCE(account_number, '')`
	outgoingHeaderColumns = `id, number, date, customer_id, organization_id, storage_id, responsible_person_id,
       COALESCE(contract_number, ''), COALESCE(payment_document, ''), COALESCE(comment, ''), created_at, updated_at`
	outgoingItemColumns = `i.id, i.outgoing_invoice_id, i.product_id, p.name, i.quantity, i.unit_of_measure,
       i.unit_price, i.total_price, i.vat_percentage, i.vat_amount, i.discount, COALESCE(i.account_number, '')`
)

// InvoiceRepository serves committed invoice reads outside any unit of work
type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

func invoiceTable(kind models.InvoiceKind) (string, error) {
	switch kind {
	case models.InvoiceIncoming:
		return "incoming_invoices", nil
	case models.InvoiceOutgoing:
		return "outgoing_invoices", nil
	}
	return "", fmt.Errorf("unknown invoice kind %q", kind)
}

func maxInvoiceID(ctx context.Context, q querier, kind models.InvoiceKind) (int, error) {
	table, err := invoiceTable(kind)
	if err != nil {
		return 0, err
	}
	var id int
	err = q.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM `+table).Scan(&id)
	return id, err
}

func invoiceNumberExists(ctx context.Context, q querier, kind models.InvoiceKind, number string) (bool, error) {
	table, err := invoiceTable(kind)
	if err != nil {
		return false, err
	}
	var exists bool
	err = q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM `+table+` WHERE number=$1)`, number).Scan(&exists)
	return exists, err
}

func (r *InvoiceRepository) InvoiceNumberExists(ctx context.Context, kind models.InvoiceKind, number string) (bool, error) {
	return invoiceNumberExists(ctx, r.DB, kind, number)
}

func (r *InvoiceRepository) MaxInvoiceID(ctx context.Context, kind models.InvoiceKind) (int, error) {
	return maxInvoiceID(ctx, r.DB, kind)
}

func (r *InvoiceRepository) ProductsByDate(ctx context.Context, from, to time.Time) ([]*models.ProductWithStorage, error) {
	return productsByDate(ctx, r.DB, from, to)
}

func (r *InvoiceRepository) GetIncomingInvoice(ctx context.Context, id int) (*models.IncomingInvoice, error) {
	return getIncomingInvoice(ctx, r.DB, id, false)
}

func (r *InvoiceRepository) ListIncomingInvoices(ctx context.Context) ([]*models.IncomingInvoice, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+incomingHeaderColumns+` FROM incoming_invoices ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.IncomingInvoice, error) {
		return scanIncomingHeader(row)
	})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return []*models.IncomingInvoice{}, nil
	}

	ids := make([]int, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
	}
	items, err := incomingItems(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		inv.Items = itemsOrEmpty(items[inv.ID])
	}
	return invoices, nil
}

func (r *InvoiceRepository) GetOutgoingInvoice(ctx context.Context, id int) (*models.OutgoingInvoice, error) {
	return getOutgoingInvoice(ctx, r.DB, id, false)
}

func (r *InvoiceRepository) ListOutgoingInvoices(ctx context.Context) ([]*models.OutgoingInvoice, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+outgoingHeaderColumns+` FROM outgoing_invoices ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.OutgoingInvoice, error) {
		return scanOutgoingHeader(row)
	})
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return []*models.OutgoingInvoice{}, nil
	}

	ids := make([]int, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
	}
	items, err := outgoingItems(ctx, r.DB, ids)
	if err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		inv.Items = itemsOrEmpty(items[inv.ID])
	}
	return invoices, nil
}

func getIncomingInvoice(ctx context.Context, q querier, id int, lock bool) (*models.IncomingInvoice, error) {
	query := `SELECT ` + incomingHeaderColumns + ` FROM incoming_invoices WHERE id=$1`
	if lock {
		query += ` FOR UPDATE`
	}
	inv, err := scanIncomingHeader(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, readErr(err, "Incoming invoice", id)
	}
	items, err := incomingItems(ctx, q, []int{id})
	if err != nil {
		return nil, err
	}
	inv.Items = itemsOrEmpty(items[id])
	return inv, nil
}

func getOutgoingInvoice(ctx context.Context, q querier, id int, lock bool) (*models.OutgoingInvoice, error) {
	query := `SELECT ` + outgoingHeaderColumns + ` FROM outgoing_invoices WHERE id=$1`
	if lock {
		query += ` FOR UPDATE`
	}
	inv, err := scanOutgoingHeader(q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, readErr(err, "Outgoing invoice", id)
	}
	items, err := outgoingItems(ctx, q, []int{id})
	if err != nil {
		return nil, err
	}
	inv.Items = itemsOrEmpty(items[id])
	return inv, nil
}

func scanIncomingHeader(row pgx.Row) (*models.IncomingInvoice, error) {
	var inv models.IncomingInvoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Date, &inv.CounterAgentID, &inv.OperationType,
		&inv.OrganizationID, &inv.StorageID, &inv.ContractNumber, &inv.ResponsiblePersonID,
		&inv.Comment, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func scanOutgoingHeader(row pgx.Row) (*models.OutgoingInvoice, error) {
	var inv models.OutgoingInvoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Date, &inv.CustomerID, &inv.OrganizationID,
		&inv.StorageID, &inv.ResponsiblePersonID, &inv.ContractNumber, &inv.PaymentDocument,
		&inv.Comment, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func incomingItems(ctx context.Context, q querier, invoiceIDs []int) (map[int][]models.IncomingInvoiceItem, error) {
	rows, err := q.Query(ctx,
		`SELECT `+incomingItemColumns+`
         FROM incoming_invoice_items WHERE incoming_invoice_id = ANY($1) ORDER BY id`, invoiceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]models.IncomingInvoiceItem)
	for rows.Next() {
		var it models.IncomingInvoiceItem
		if err := rows.Scan(&it.ID, &it.IncomingInvoiceID, &it.ProductName, &it.ProductDescription,
			&it.Quantity, &it.UnitOfMeasure, &it.UnitPrice, &it.TotalPrice, &it.VATPercentage,
			&it.VATAmount, &it.AccountNumber); err != nil {
			return nil, err
		}
		out[it.IncomingInvoiceID] = append(out[it.IncomingInvoiceID], it)
	}
	return out, rows.Err()
}

func outgoingItems(ctx context.Context, q querier, invoiceIDs []int) (map[int][]models.OutgoingInvoiceItem, error) {
	rows, err := q.Query(ctx,
		`SELECT `+outgoingItemColumns+`
         FROM outgoing_invoice_items i
         JOIN products p ON p.id = i.product_id
         WHERE i.outgoing_invoice_id = ANY($1) ORDER BY i.id`, invoiceIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int][]models.OutgoingInvoiceItem)
	for rows.Next() {
		var it models.OutgoingInvoiceItem
		if err := rows.Scan(&it.ID, &it.OutgoingInvoiceID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.UnitOfMeasure, &it.UnitPrice, &it.TotalPrice, &it.VATPercentage, &it.VATAmount,
			&it.Discount, &it.AccountNumber); err != nil {
			return nil, err
		}
		out[it.OutgoingInvoiceID] = append(out[it.OutgoingInvoiceID], it)
	}
	return out, rows.Err()
}

func itemsOrEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
