package dto

// DashboardResponse resumen de la pantalla inicial para el usuario actual.
type DashboardResponse struct {
	Welcome       string                `json:"welcome"`
	RoleLabel     string                `json:"role_label"`
	HubDisplay    string                `json:"hub_display"`
	TotalSKUs     int                   `json:"total_skus"`
	TotalQuantity int64                 `json:"total_quantity"`
	LowStock      []LowStockItem        `json:"low_stock"`
	RecentEntries []LedgerEntryResponse `json:"recent_entries"`
}

// LowStockItem total de un SKU (sumado sobre los hubs visibles) por debajo del umbral.
type LowStockItem struct {
	SKUID    string `json:"sku_id"`
	SKUCode  string `json:"sku_code"`
	SKUName  string `json:"sku_name"`
	Quantity int64  `json:"quantity"`
}
