package entity

import "time"

// Estados de un envío. La transición es única: PENDING -> RECEIVED.
const (
	ShipmentStatusPending  = "PENDING"
	ShipmentStatusReceived = "RECEIVED"
)

// Shipment representa una entrega entrante de proveedor hacia un hub.
type Shipment struct {
	ID          string
	SupplierID  string // vacío = NULL
	DestHubID   string
	DestHubName string
	Status      string
	CreatedAt   time.Time
	ReceivedAt  *time.Time
	Lines       []ShipmentLine
}

// IsReceived indica si el envío ya fue aplicado al inventario.
func (s *Shipment) IsReceived() bool {
	return s.Status == ShipmentStatusReceived
}

// ShipmentLine un SKU + cantidad dentro de un envío; Position conserva el orden de inserción.
type ShipmentLine struct {
	ID         string
	ShipmentID string
	SKUID      string
	SKUCode    string
	Quantity   int64
	Position   int
}
