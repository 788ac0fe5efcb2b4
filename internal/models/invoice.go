package models

// InvoiceKind distinguishes the two invoice directions
type InvoiceKind string

const (
	InvoiceIncoming InvoiceKind = "incoming"
	InvoiceOutgoing InvoiceKind = "outgoing"
)

func (k InvoiceKind) Valid() bool {
	return k == InvoiceIncoming || k == InvoiceOutgoing
}

// InvoiceItemInput is one line of a create or update payload.
// Numbers stay raw until the ledger parses them. Discount is read on outgoing
// invoices only. Client-sent total_price and vat_amount are ignored.
type InvoiceItemInput struct {
	ProductName        string    `json:"product_name" validate:"required,max=100"`
	ProductDescription string    `json:"product_description"`
	Quantity           RawNumber `json:"quantity"`
	UnitOfMeasure      string    `json:"unit_of_measure" validate:"required,max=20"`
	UnitPrice          RawNumber `json:"unit_price"`
	VATPercentage      RawNumber `json:"vat_percentage"`
	Discount           RawNumber `json:"discount"`
	AccountNumber      string    `json:"account_number" validate:"max=20"`
}

// NextNumberResponse is the body of the next-invoice-number endpoints
type NextNumberResponse struct {
	NextInvoiceNumber string `json:"next_invoice_number"`
}
