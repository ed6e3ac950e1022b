package dto

import "time"

// CreateHubRequest entrada para crear un hub.
type CreateHubRequest struct {
	Name string `json:"name"`
	City string `json:"city"`
}

// UpdateHubRequest entrada para renombrar un hub o cambiar su ciudad.
type UpdateHubRequest struct {
	Name *string `json:"name"`
	City *string `json:"city"`
}

// HubResponse salida de un hub.
type HubResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
