package entity

import "time"

// DefaultLowStockThreshold umbral de stock bajo cuando no se indica uno.
const DefaultLowStockThreshold = 5

// SKU representa un ítem de catálogo (código único, independiente de la bodega).
// LowStockThreshold es informativo: el ledger no lo consulta.
type SKU struct {
	ID                string
	Code              string
	Name              string
	Barcode           string
	LowStockThreshold int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
