package dto

import "time"

// CreateShipmentRequest entrada para crear un envío hacia un hub.
type CreateShipmentRequest struct {
	DestHubID string `json:"dest_hub_id"`
}

// AddShipmentLineRequest agrega un SKU al envío. Se acepta SKUID o SKUCode.
type AddShipmentLineRequest struct {
	SKUID    string `json:"sku_id"`
	SKUCode  string `json:"sku_code"`
	Quantity int64  `json:"quantity"`
}

// ShipmentLineResponse línea de un envío.
type ShipmentLineResponse struct {
	ID       string `json:"id"`
	SKUID    string `json:"sku_id"`
	SKUCode  string `json:"sku_code"`
	Quantity int64  `json:"quantity"`
	Position int    `json:"position"`
}

// ShipmentResponse salida de un envío con sus líneas.
type ShipmentResponse struct {
	ID          string                 `json:"id"`
	SupplierID  string                 `json:"supplier_id,omitempty"`
	DestHubID   string                 `json:"dest_hub_id"`
	DestHubName string                 `json:"dest_hub_name"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	ReceivedAt  *time.Time             `json:"received_at,omitempty"`
	Lines       []ShipmentLineResponse `json:"lines"`
}
