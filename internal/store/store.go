// Package store declares the persistence contracts the invoice coordinators run against.
package store

import (
	"context"
	"time"

	"stock-backend/internal/models"
	"stock-backend/internal/numbering"
	"stock-backend/internal/stock"
)

// InvoiceTx is every write an invoice operation performs, bound to one transaction.
// Lock methods take row locks that are held until the transaction ends.
type InvoiceTx interface {
	stock.Store
	numbering.Source

	InsertIncomingInvoice(ctx context.Context, inv *models.IncomingInvoice) error
	LockIncomingInvoice(ctx context.Context, id int) (*models.IncomingInvoice, error)
	UpdateIncomingInvoice(ctx context.Context, inv *models.IncomingInvoice) error
	DeleteIncomingInvoice(ctx context.Context, id int) error
	InsertIncomingItem(ctx context.Context, item *models.IncomingInvoiceItem) error
	UpdateIncomingItem(ctx context.Context, item *models.IncomingInvoiceItem) error
	DeleteIncomingItem(ctx context.Context, id int) error

	InsertOutgoingInvoice(ctx context.Context, inv *models.OutgoingInvoice) error
	LockOutgoingInvoice(ctx context.Context, id int) (*models.OutgoingInvoice, error)
	UpdateOutgoingInvoice(ctx context.Context, inv *models.OutgoingInvoice) error
	DeleteOutgoingInvoice(ctx context.Context, id int) error
	InsertOutgoingItem(ctx context.Context, item *models.OutgoingInvoiceItem) error
	DeleteOutgoingItems(ctx context.Context, invoiceID int) error
}

// UnitOfWork runs fn inside one transaction. The transaction commits only when fn
// returns nil; any error or panic rolls every write back.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx InvoiceTx) error) error
}

// InvoiceReader serves the read-only side of both invoice types
type InvoiceReader interface {
	numbering.Reader

	GetIncomingInvoice(ctx context.Context, id int) (*models.IncomingInvoice, error)
	ListIncomingInvoices(ctx context.Context) ([]*models.IncomingInvoice, error)
	GetOutgoingInvoice(ctx context.Context, id int) (*models.OutgoingInvoice, error)
	ListOutgoingInvoices(ctx context.Context) ([]*models.OutgoingInvoice, error)
	ProductsByDate(ctx context.Context, from, to time.Time) ([]*models.ProductWithStorage, error)
}
