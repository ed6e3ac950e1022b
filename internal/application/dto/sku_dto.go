package dto

import "time"

// CreateSKURequest entrada para crear un SKU. LowStockThreshold nil = umbral por defecto.
type CreateSKURequest struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	Barcode           string `json:"barcode"`
	LowStockThreshold *int   `json:"low_stock_threshold"`
}

// UpdateSKURequest entrada para actualizar un SKU.
type UpdateSKURequest struct {
	Code              *string `json:"code"`
	Name              *string `json:"name"`
	Barcode           *string `json:"barcode"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
}

// SKUResponse salida de un SKU.
type SKUResponse struct {
	ID                string    `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	Barcode           string    `json:"barcode"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SKUListResponse lista paginada de SKUs.
type SKUListResponse struct {
	Items []SKUResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// SetHubsRequest hubs a los que queda asignado el SKU; el resto se desactiva.
type SetHubsRequest struct {
	HubIDs []string `json:"hub_ids"`
}

// HubAssignmentResponse vínculo hub-SKU.
type HubAssignmentResponse struct {
	HubID        string `json:"hub_id"`
	SKUID        string `json:"sku_id"`
	Active       bool   `json:"active"`
	ReorderPoint *int   `json:"reorder_point,omitempty"`
}

// ImportResultResponse resumen de una importación CSV de SKUs.
type ImportResultResponse struct {
	Rows             int      `json:"rows"`
	SKUsCreated      int      `json:"skus_created"`
	SKUsUpdated      int      `json:"skus_updated"`
	HubsCreated      int      `json:"hubs_created"`
	LinksCreated     int      `json:"links_created"`
	LinksActivated   int      `json:"links_activated"`
	AssignmentsReset int      `json:"assignments_reset"`
	Skipped          []string `json:"skipped,omitempty"`
}
