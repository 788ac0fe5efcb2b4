package models

import "time"

type Contract struct {
	ID             int       `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ContractRequest struct {
	ContractNumber string `json:"contract_number" validate:"required,max=50"`
}
