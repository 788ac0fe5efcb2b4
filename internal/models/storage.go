package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Storage is a warehouse location products are kept in
type Storage struct {
	ID        int                 `json:"storage_id"`
	Name      string              `json:"name"`
	Location  string              `json:"location"`
	Capacity  decimal.NullDecimal `json:"capacity"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

type StorageRequest struct {
	Name     string    `json:"name" validate:"required,max=100"`
	Location string    `json:"location" validate:"max=255"`
	Capacity RawNumber `json:"capacity"`
}
