package models

import "time"

type Organization struct {
	ID        int       `json:"organization_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type OrganizationRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
