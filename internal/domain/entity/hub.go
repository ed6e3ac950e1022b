package entity

import "time"

// Hub representa una ubicación física de stock (nombre único).
type Hub struct {
	ID        string
	Name      string
	City      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
