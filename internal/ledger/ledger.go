// Package ledger computes invoice line amounts in fixed-point decimal.
//
// total_price = quantity * unit_price, reduced by discount percent when discount > 0.
// vat_amount  = total_price / 6 whenever vat_percentage > 0. The divisor is fixed: it extracts
// the VAT share from a 20%-inclusive total and does not scale with other percentages.
package ledger

import (
	"strings"

	"stock-backend/internal/apperrors"

	"github.com/shopspring/decimal"
)

const (
	MoneyPlaces    = 2
	QuantityPlaces = 3
)

var (
	DefaultVAT  = decimal.NewFromInt(20)
	vatDivisor  = decimal.NewFromInt(6)
	hundred     = decimal.NewFromInt(100)
	maxDiscount = hundred
)

// Exclusive upper bounds matching the invoice item columns:
// quantity NUMERIC(10,3), unit_price NUMERIC(10,2), total/vat NUMERIC(12,2), percentages NUMERIC(5,2).
var (
	MaxQuantity   = decimal.New(1, 7)
	MaxUnitPrice  = decimal.New(1, 8)
	MaxAmount     = decimal.New(1, 10)
	MaxPercentage = decimal.New(1, 3)
)

// Input is one invoice line before computation
type Input struct {
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	VATPercentage decimal.Decimal
	Discount      decimal.Decimal
}

// Line holds the normalized inputs together with the derived amounts
type Line struct {
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	VATPercentage decimal.Decimal
	Discount      decimal.Decimal
	TotalPrice    decimal.Decimal
	VATAmount     decimal.Decimal
}

// ParseVAT reads a VAT percentage, falling back to DefaultVAT on empty or malformed input
func ParseVAT(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultVAT
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return DefaultVAT
	}
	return RoundMoney(v)
}

// ParseQuantity parses and rounds a quantity to QuantityPlaces
func ParseQuantity(raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperrors.ErrValidation("quantity must be a number").WithDetail("quantity", raw)
	}
	return RoundQuantity(v), nil
}

// ParseMoney parses and rounds an amount to MoneyPlaces
func ParseMoney(field, raw string) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperrors.ErrValidation(field + " must be a number").WithDetail(field, raw)
	}
	return RoundMoney(v), nil
}

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityPlaces)
}

// Validate rejects lines that cannot be stocked or priced, or whose amounts would not fit the ledger columns
func Validate(in Input) error {
	fields := make(map[string]string)
	qty := RoundQuantity(in.Quantity)
	price := RoundMoney(in.UnitPrice)
	if !qty.IsPositive() {
		fields["quantity"] = "quantity must be greater than 0"
	} else if !qty.LessThan(MaxQuantity) {
		fields["quantity"] = "quantity must be less than " + MaxQuantity.String()
	}
	if price.IsNegative() {
		fields["unit_price"] = "unit_price must not be negative"
	} else if !price.LessThan(MaxUnitPrice) {
		fields["unit_price"] = "unit_price must be less than " + MaxUnitPrice.String()
	}
	if in.Discount.IsNegative() || in.Discount.GreaterThan(maxDiscount) {
		fields["discount"] = "discount must be between 0 and 100"
	}
	vat := RoundMoney(in.VATPercentage)
	if vat.IsNegative() {
		fields["vat_percentage"] = "vat_percentage must not be negative"
	} else if !vat.LessThan(MaxPercentage) {
		fields["vat_percentage"] = "vat_percentage must be less than " + MaxPercentage.String()
	}
	if len(fields) > 0 {
		return apperrors.ErrValidationWithFields("invalid invoice line", fields)
	}

	if line := Compute(in); !line.TotalPrice.LessThan(MaxAmount) {
		return apperrors.ErrValidationWithFields("invalid invoice line",
			map[string]string{"total_price": "total_price must be less than " + MaxAmount.String()})
	}
	return nil
}

// Compute derives total_price and vat_amount for one line
func Compute(in Input) Line {
	qty := RoundQuantity(in.Quantity)
	price := RoundMoney(in.UnitPrice)

	total := qty.Mul(price)
	if in.Discount.IsPositive() {
		total = total.Mul(decimal.NewFromInt(1).Sub(in.Discount.Div(hundred)))
	}
	total = RoundMoney(total)

	vat := decimal.Zero
	if in.VATPercentage.IsPositive() {
		vat = RoundMoney(total.Div(vatDivisor))
	}

	return Line{
		Quantity:      qty,
		UnitPrice:     price,
		VATPercentage: RoundMoney(in.VATPercentage),
		Discount:      RoundMoney(in.Discount),
		TotalPrice:    total,
		VATAmount:     vat,
	}
}

// Sum adds the totals and VAT of a set of lines
func Sum(lines []Line) (total, vat decimal.Decimal) {
	total, vat = decimal.Zero, decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice)
		vat = vat.Add(l.VATAmount)
	}
	return total, vat
}
