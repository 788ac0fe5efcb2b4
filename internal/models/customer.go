package models

import "time"

type Customer struct {
	ID          int       `json:"customer_id"`
	Name        string    `json:"name"`
	ContactInfo string    `json:"contact_info"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerRequest is used for both create and update; names are unique
type CustomerRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	ContactInfo string `json:"contact_info" validate:"max=255"`
	Address     string `json:"address"`
}
