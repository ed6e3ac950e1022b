package entity

import "time"

// StockLevel es el saldo de un par (hub, sku). Hay exactamente una fila por par
// y Quantity nunca es negativo. Solo el ledger la modifica.
type StockLevel struct {
	HubID     string
	SKUID     string
	Quantity  int64
	UpdatedAt time.Time
}
