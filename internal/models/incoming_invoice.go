package models

import (
	"time"

	"stock-backend/internal/apperrors"

	"github.com/shopspring/decimal"
)

// IncomingInvoice records goods received from a supplier
type IncomingInvoice struct {
	ID                  int                   `json:"incoming_invoice_id"`
	Number              string                `json:"number"`
	Date                time.Time             `json:"date"`
	CounterAgentID      int                   `json:"counter_agent_id"`
	OperationType       string                `json:"operation_type"`
	OrganizationID      int                   `json:"organization_id"`
	StorageID           int                   `json:"storage_id"`
	ContractNumber      string                `json:"contract_number"`
	ResponsiblePersonID int                   `json:"responsible_person_id"`
	Comment             string                `json:"comment"`
	Items               []IncomingInvoiceItem `json:"items"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// IncomingInvoiceItem references its product by name
type IncomingInvoiceItem struct {
	ID                 int             `json:"incoming_invoice_item_id"`
	IncomingInvoiceID  int             `json:"incoming_invoice_id"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description"`
	Quantity           decimal.Decimal `json:"quantity"`
	UnitOfMeasure      string          `json:"unit_of_measure"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	VATPercentage      decimal.Decimal `json:"vat_percentage"`
	VATAmount          decimal.Decimal `json:"vat_amount"`
	AccountNumber      string          `json:"account_number"`
}

type CreateIncomingInvoiceRequest struct {
	Number              string             `json:"number" validate:"max=50"`
	Date                *Timestamp         `json:"date" validate:"required"`
	CounterAgentID      int                `json:"counter_agent_id" validate:"required,gt=0"`
	OperationType       string             `json:"operation_type" validate:"required,max=50"`
	OrganizationID      int                `json:"organization_id" validate:"required,gt=0"`
	StorageID           int                `json:"storage_id" validate:"required,gt=0"`
	ContractNumber      string             `json:"contract_number" validate:"max=50"`
	ResponsiblePersonID int                `json:"responsible_person_id" validate:"required,gt=0"`
	Comment             string             `json:"comment"`
	Items               []InvoiceItemInput `json:"items" validate:"dive"`
}

// IncomingInvoicePatch lists every header field a PATCH may carry.
// Items, when present, replace the whole item set.
type IncomingInvoicePatch struct {
	Number              Optional[string]             `json:"number"`
	Date                Optional[Timestamp]          `json:"date"`
	CounterAgentID      Optional[int]                `json:"counter_agent_id"`
	OperationType       Optional[string]             `json:"operation_type"`
	OrganizationID      Optional[int]                `json:"organization_id"`
	StorageID           Optional[int]                `json:"storage_id"`
	ContractNumber      Optional[string]             `json:"contract_number"`
	ResponsiblePersonID Optional[int]                `json:"responsible_person_id"`
	Comment             Optional[string]             `json:"comment"`
	Items               Optional[[]InvoiceItemInput] `json:"items"`
}

// Apply copies the present header fields onto inv
func (p *IncomingInvoicePatch) Apply(inv *IncomingInvoice) error {
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
	applyRequiredID(&p.CounterAgentID, &inv.CounterAgentID, "counter_agent_id", fields)
	applyRequiredID(&p.OrganizationID, &inv.OrganizationID, "organization_id", fields)
	applyRequiredID(&p.StorageID, &inv.StorageID, "storage_id", fields)
	applyRequiredID(&p.ResponsiblePersonID, &inv.ResponsiblePersonID, "responsible_person_id", fields)
	if p.OperationType.Set {
		if p.OperationType.Null || p.OperationType.Value == "" {
			fields["operation_type"] = "operation_type cannot be empty"
		} else {
			inv.OperationType = p.OperationType.Value
		}
	}
	if p.ContractNumber.Set {
		inv.ContractNumber = p.ContractNumber.Value
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

func applyRequiredID(opt *Optional[int], dst *int, name string, fields map[string]string) {
	if !opt.Set {
		return
	}
	if opt.Null || opt.Value <= 0 {
		fields[name] = name + " must be a positive id"
		return
	}
	*dst = opt.Value
}
