package entity

import "time"

// LedgerEntry registro inmutable de un cambio de cantidad. ActorID vacío = NULL
// (usuario eliminado o proceso sin usuario).
type LedgerEntry struct {
	ID        string
	ActorID   string
	HubID     string
	SKUID     string
	Delta     int64 // positivo entrada, negativo salida
	Note      string
	CreatedAt time.Time
}
