package entity

// HubSKU asigna un SKU a un hub. ReorderPoint, si existe, reemplaza el umbral del SKU en ese hub.
type HubSKU struct {
	HubID        string
	SKUID        string
	Active       bool
	ReorderPoint *int
}
