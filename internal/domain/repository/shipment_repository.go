package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

// ShipmentReceiptRepository operaciones sobre envíos dentro de la transacción de recepción.
type ShipmentReceiptRepository interface {
	// GetForUpdate obtiene el envío con sus líneas (en orden de inserción) y bloquea su fila.
	// Devuelve nil, nil si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error)
	MarkReceived(ctx context.Context, id string, at time.Time) error
}

// ShipmentRepository puerto de persistencia para envíos fuera del ledger.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *entity.Shipment) error
	// AddLine agrega la línea al final (Position se asigna en orden de inserción).
	AddLine(ctx context.Context, line *entity.ShipmentLine) error
	GetByID(ctx context.Context, id string) (*entity.Shipment, error)
	// ListByHubs lista envíos de los hubs destino indicados (nil = todos), más recientes primero.
	ListByHubs(ctx context.Context, hubIDs []string, limit int) ([]*entity.Shipment, error)
}
