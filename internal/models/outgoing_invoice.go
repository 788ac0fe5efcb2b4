package models

import (
	"time"

	"stock-backend/internal/apperrors"

	"github.com/shopspring/decimal"
)

// OutgoingInvoice records goods shipped to a customer
type OutgoingInvoice struct {
	ID                  int                   `json:"outgoing_invoice_id"`
	Number              string                `json:"number"`
	Date                time.Time             `json:"date"`
	CustomerID          int                   `json:"customer_id"`
	OrganizationID      int                   `json:"organization_id"`
	StorageID           int                   `json:"storage_id"`
	ResponsiblePersonID int                   `json:"responsible_person_id"`
	ContractNumber      string                `json:"contract_number"`
	PaymentDocument     string                `json:"payment_document"`
	Comment             string                `json:"comment"`
	Items               []OutgoingInvoiceItem `json:"items"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// OutgoingInvoiceItem references its product by id; ProductName is filled on reads
type OutgoingInvoiceItem struct {
	ID                int             `json:"outgoing_invoice_item_id"`
	OutgoingInvoiceID int             `json:"outgoing_invoice_id"`
	ProductID         int             `json:"product_id"`
	ProductName       string          `json:"product_name"`
	Quantity          decimal.Decimal `json:"quantity"`
	UnitOfMeasure     string          `json:"unit_of_measure"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	VATPercentage     decimal.Decimal `json:"vat_percentage"`
	VATAmount         decimal.Decimal `json:"vat_amount"`
	Discount          decimal.Decimal `json:"discount"`
	AccountNumber     string          `json:"account_number"`
}

type CreateOutgoingInvoiceRequest struct {
	Number              string             `json:"number" validate:"max=50"`
	Date                *Timestamp         `json:"date" validate:"required"`
	CustomerID          int                `json:"customer_id" validate:"required,gt=0"`
	OrganizationID      int                `json:"organization_id" validate:"required,gt=0"`
	StorageID           int                `json:"storage_id" validate:"required,gt=0"`
	ResponsiblePersonID int                `json:"responsible_person_id" validate:"required,gt=0"`
	ContractNumber      string             `json:"contract_number" validate:"max=50"`
	PaymentDocument     string             `json:"payment_document" validate:"max=255"`
	Comment             string             `json:"comment"`
	Items               []InvoiceItemInput `json:"items" validate:"dive"`
}

type OutgoingInvoicePatch struct {
	Number              Optional[string]             `json:"number"`
	Date                Optional[Timestamp]          `json:"date"`
	CustomerID          Optional[int]                `json:"customer_id"`
	OrganizationID      Optional[int]                `json:"organization_id"`
	StorageID           Optional[int]                `json:"storage_id"`
	ResponsiblePersonID Optional[int]                `json:"responsible_person_id"`
	ContractNumber      Optional[string]             `json:"contract_number"`
	PaymentDocument     Optional[string]             `json:"payment_document"`
	Comment             Optional[string]             `json:"comment"`
	Items               Optional[[]InvoiceItemInput] `json:"items"`
}

func (p *OutgoingInvoicePatch) Apply(inv *OutgoingInvoice) error {
	fields := make(map[string]string)

	if p.Number.Set {
		if p.Number.Null || p.Number.Value == "" {
			fields["number"] = "number cannot be empty"
		} else {
			inv.Number = p.Number.Value
		}
	}
	if p.Date.Set {
		if p.Date.Null {
			fields["date"] = "date cannot be null"
		} else {
			inv.Date = p.Date.Value.Time
		}
	}
	applyRequiredID(&p.CustomerID, &inv.CustomerID, "customer_id", fields)
	applyRequiredID(&p.OrganizationID, &inv.OrganizationID, "organization_id", fields)
	applyRequiredID(&p.StorageID, &inv.StorageID, "storage_id", fields)
	applyRequiredID(&p.ResponsiblePersonID, &inv.ResponsiblePersonID, "responsible_person_id", fields)
	if p.ContractNumber.Set {
		inv.ContractNumber = p.ContractNumber.Value
	}
	if p.PaymentDocument.Set {
		inv.PaymentDocument = p.PaymentDocument.Value
	}
	if p.Comment.Set {
		inv.Comment = p.Comment.Value
	}

	if p.Items.Set && p.Items.Null {
		fields["items"] = "items cannot be null"
	}
	if len(fields) > 0 {
		return apperrors.ErrValidationWithFields("invalid invoice patch", fields)
	}
	return nil
}
