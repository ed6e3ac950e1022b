package dto

import "time"

// AdjustStockRequest entrada para un ajuste manual de stock.
type AdjustStockRequest struct {
	HubID string `json:"hub_id"`
	SKUID string `json:"sku_id"`
	Delta int64  `json:"delta"`
	Note  string `json:"note"`
}

// AdjustStockResponse cantidad resultante tras el ajuste.
type AdjustStockResponse struct {
	HubID    string `json:"hub_id"`
	SKUID    string `json:"sku_id"`
	Quantity int64  `json:"quantity"`
}

// StockResponse fila de stock con nombres resueltos.
type StockResponse struct {
	HubID             string    `json:"hub_id"`
	HubName           string    `json:"hub_name"`
	SKUID             string    `json:"sku_id"`
	SKUCode           string    `json:"sku_code"`
	SKUName           string    `json:"sku_name"`
	Quantity          int64     `json:"quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	Low               bool      `json:"low"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LedgerEntryResponse entrada del ledger para listados y dashboard.
type LedgerEntryResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ActorID   string    `json:"actor_id,omitempty"`
	ActorName string    `json:"user"`
	HubID     string    `json:"hub_id"`
	HubName   string    `json:"hub"`
	SKUID     string    `json:"sku_id"`
	SKUCode   string    `json:"sku"`
	Delta     int64     `json:"change"`
	Note      string    `json:"note"`
}

// InventoryListResponse stock visible para el usuario con la etiqueta del alcance.
type InventoryListResponse struct {
	Scope string          `json:"scope"`
	Items []StockResponse `json:"items"`
}
