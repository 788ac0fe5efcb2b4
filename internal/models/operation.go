package models

import "time"

// Operation is a named operation type an incoming invoice can be filed under
type Operation struct {
	ID            int       `json:"operation_id"`
	OperationType string    `json:"operation_type"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type OperationRequest struct {
	OperationType string `json:"operation_type" validate:"required,max=50"`
}
