package repositories

import (
	"context"
	"fmt"

	"stock-backend/internal/models"
	"stock-backend/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitOfWork runs invoice operations in one pgx transaction
type UnitOfWork struct {
	DB *pgxpool.Pool
}

func NewUnitOfWork(db *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{DB: db}
}

func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx store.InvoiceTx) error) error {
	tx, err := u.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// no-op after a successful commit
	defer tx.Rollback(ctx)

	if err := fn(ctx, &invoiceTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type invoiceTx struct {
	tx pgx.Tx
}

var _ store.InvoiceTx = (*invoiceTx)(nil)

// LockInvoiceSequence serializes number allocation per invoice table until the transaction ends
func (t *invoiceTx) LockInvoiceSequence(ctx context.Context, kind models.InvoiceKind) error {
	table, err := invoiceTable(kind)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, table)
	return err
}

func (t *invoiceTx) MaxInvoiceID(ctx context.Context, kind models.InvoiceKind) (int, error) {
	return maxInvoiceID(ctx, t.tx, kind)
}

func (t *invoiceTx) InvoiceNumberExists(ctx context.Context, kind models.InvoiceKind, number string) (bool, error) {
	return invoiceNumberExists(ctx, t.tx, kind, number)
}

func (t *invoiceTx) LockProductByName(ctx context.Context, name string) (*models.Product, error) {
	p, err := scanProduct(t.tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE name=$1 FOR UPDATE`, name))
	if err != nil {
		return nil, readErr(err, "Product", 0)
	}
	return p, nil
}

func (t *invoiceTx) LockProduct(ctx context.Context, id int) (*models.Product, error) {
	p, err := scanProduct(t.tx.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, readErr(err, "Product", id)
	}
	return p, nil
}

func (t *invoiceTx) InsertProduct(ctx context.Context, p *models.Product) error {
	return insertProduct(ctx, t.tx, p)
}

func (t *invoiceTx) UpdateProductStock(ctx context.Context, p *models.Product) error {
	err := t.tx.QueryRow(ctx,
		`UPDATE products SET current_stock=$1, date=$2, storage_id=$3, updated_at=CURRENT_TIMESTAMP
         WHERE id=$4
         RETURNING updated_at`,
		p.CurrentStock, p.Date, p.StorageID, p.ID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Product", p.ID)
	}
	return nil
}

func (t *invoiceTx) InsertIncomingInvoice(ctx context.Context, inv *models.IncomingInvoice) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO incoming_invoices(number, date, counter_agent_id, operation_type, organization_id,
                                       storage_id, contract_number, responsible_person_id, comment)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at, updated_at`,
		inv.Number, inv.Date, inv.CounterAgentID, inv.OperationType, inv.OrganizationID,
		inv.StorageID, inv.ContractNumber, inv.ResponsiblePersonID, inv.Comment,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	return writeErr(err, "Incoming invoice")
}

func (t *invoiceTx) LockIncomingInvoice(ctx context.Context, id int) (*models.IncomingInvoice, error) {
	return getIncomingInvoice(ctx, t.tx, id, true)
}

func (t *invoiceTx) UpdateIncomingInvoice(ctx context.Context, inv *models.IncomingInvoice) error {
	err := t.tx.QueryRow(ctx,
		`UPDATE incoming_invoices
         SET number=$1, date=$2, counter_agent_id=$3, operation_type=$4, organization_id=$5,
             storage_id=$6, contract_number=$7, responsible_person_id=$8, comment=$9,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$10
         RETURNING updated_at`,
		inv.Number, inv.Date, inv.CounterAgentID, inv.OperationType, inv.OrganizationID,
		inv.StorageID, inv.ContractNumber, inv.ResponsiblePersonID, inv.Comment, inv.ID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Incoming invoice", inv.ID)
	}
	return nil
}

func (t *invoiceTx) DeleteIncomingInvoice(ctx context.Context, id int) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM incoming_invoices WHERE id=$1`, id)
	return deleteErr(tag, err, "Incoming invoice", id)
}

func (t *invoiceTx) InsertIncomingItem(ctx context.Context, it *models.IncomingInvoiceItem) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO incoming_invoice_items(incoming_invoice_id, product_name, product_description, quantity,
                                            unit_of_measure, unit_price, total_price, vat_percentage, vat_amount,
                                            account_number)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id`,
		it.IncomingInvoiceID, it.ProductName, it.ProductDescription, it.Quantity, it.UnitOfMeasure,
		it.UnitPrice, it.TotalPrice, it.VATPercentage, it.VATAmount, it.AccountNumber,
	).Scan(&it.ID)
	return writeErr(err, "Incoming invoice item")
}

func (t *invoiceTx) UpdateIncomingItem(ctx context.Context, it *models.IncomingInvoiceItem) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE incoming_invoice_items
         SET product_name=$1, product_description=$2, quantity=$3, unit_of_measure=$4, unit_price=$5,
             total_price=$6, vat_percentage=$7, vat_amount=$8, account_number=$9
         WHERE id=$10`,
		it.ProductName, it.ProductDescription, it.Quantity, it.UnitOfMeasure, it.UnitPrice,
		it.TotalPrice, it.VATPercentage, it.VATAmount, it.AccountNumber, it.ID)
	return updateErr(tag, err, "Incoming invoice item", it.ID)
}

func (t *invoiceTx) DeleteIncomingItem(ctx context.Context, id int) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM incoming_invoice_items WHERE id=$1`, id)
	return deleteErr(tag, err, "Incoming invoice item", id)
}

func (t *invoiceTx) InsertOutgoingInvoice(ctx context.Context, inv *models.OutgoingInvoice) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO outgoing_invoices(number, date, customer_id, organization_id, storage_id,
                                       responsible_person_id, contract_number, payment_document, comment)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at, updated_at`,
		inv.Number, inv.Date, inv.CustomerID, inv.OrganizationID, inv.StorageID,
		inv.ResponsiblePersonID, inv.ContractNumber, inv.PaymentDocument, inv.Comment,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	return writeErr(err, "Outgoing invoice")
}

func (t *invoiceTx) LockOutgoingInvoice(ctx context.Context, id int) (*models.OutgoingInvoice, error) {
	return getOutgoingInvoice(ctx, t.tx, id, true)
}

func (t *invoiceTx) UpdateOutgoingInvoice(ctx context.Context, inv *models.OutgoingInvoice) error {
	err := t.tx.QueryRow(ctx,
		`UPDATE outgoing_invoices
         SET number=$1, date=$2, customer_id=$3, organization_id=$4, storage_id=$5,
             responsible_person_id=$6, contract_number=$7, payment_document=$8, comment=$9,
             updated_at=CURRENT_TIMESTAMP
         WHERE id=$10
         RETURNING updated_at`,
		inv.Number, inv.Date, inv.CustomerID, inv.OrganizationID, inv.StorageID,
		inv.ResponsiblePersonID, inv.ContractNumber, inv.PaymentDocument, inv.Comment, inv.ID,
	).Scan(&inv.UpdatedAt)
	if err != nil {
		return readOrWriteErr(err, "Outgoing invoice", inv.ID)
	}
	return nil
}

func (t *invoiceTx) DeleteOutgoingInvoice(ctx context.Context, id int) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM outgoing_invoices WHERE id=$1`, id)
	return deleteErr(tag, err, "Outgoing invoice", id)
}

func (t *invoiceTx) InsertOutgoingItem(ctx context.Context, it *models.OutgoingInvoiceItem) error {
	err := t.tx.QueryRow(ctx,
		`INSERT INTO outgoing_invoice_items(outgoing_invoice_id, product_id, quantity, unit_of_measure,
                                            unit_price, total_price, vat_percentage, vat_amount, discount,
                                            account_number)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
         RETURNING id`,
		it.OutgoingInvoiceID, it.ProductID, it.Quantity, it.UnitOfMeasure, it.UnitPrice,
		it.TotalPrice, it.VATPercentage, it.VATAmount, it.Discount, it.AccountNumber,
	).Scan(&it.ID)
	return writeErr(err, "Outgoing invoice item")
}

func (t *invoiceTx) DeleteOutgoingItems(ctx context.Context, invoiceID int) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM outgoing_invoice_items WHERE outgoing_invoice_id=$1`, invoiceID)
	if err != nil {
		return fmt.Errorf("delete outgoing invoice items: %w", err)
	}
	return nil
}
