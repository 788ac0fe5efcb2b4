package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a stocked item. CurrentStock is derived from invoice items and
// is only written by the stock engine after creation.
type Product struct {
	ID            int             `json:"product_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	Date          time.Time       `json:"date"`
	StorageID     int             `json:"storage_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductWithStorage is a product row joined with its storage name
type ProductWithStorage struct {
	Product
	StorageName string `json:"storage_name"`
}

type CreateProductRequest struct {
	Name          string     `json:"name" validate:"required,max=100"`
	Description   string     `json:"description"`
	UnitPrice     RawNumber  `json:"unit_price"`
	CurrentStock  RawNumber  `json:"current_stock"`
	UnitOfMeasure string     `json:"unit_of_measure" validate:"required,max=20"`
	StorageID     int        `json:"storage_id" validate:"required,gt=0"`
	Date          *Timestamp `json:"date"`
}

// UpdateProductRequest has no stock field; stock only moves through invoices
type UpdateProductRequest struct {
	Name          string    `json:"name" validate:"required,max=100"`
	Description   string    `json:"description"`
	UnitPrice     RawNumber `json:"unit_price"`
	UnitOfMeasure string    `json:"unit_of_measure" validate:"required,max=20"`
	StorageID     int       `json:"storage_id" validate:"required,gt=0"`
}
