package models

import "time"

type Supplier struct {
	ID          int       `json:"supplier_id"`
	Name        string    `json:"name"`
	ContactInfo string    `json:"contact_info"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type SupplierRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	ContactInfo string `json:"contact_info" validate:"max=255"`
	Address     string `json:"address"`
}
