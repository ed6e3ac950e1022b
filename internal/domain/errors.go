package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("conflicto de concurrencia, reintente la operación")
	ErrPersistence         = errors.New("fallo de persistencia")
)

// InsufficientStockError detalla un ajuste rechazado porque dejaría el stock en negativo.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	HubID   string
	SKUID   string
	Delta   int64
	Current int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente: hub=%s sku=%s cantidad actual %d, delta %d",
		e.HubID, e.SKUID, e.Current, e.Delta)
}

// Is permite comparar contra el sentinel ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ShipmentLineError identifica la línea (SKU) que abortó la recepción de un envío.
type ShipmentLineError struct {
	ShipmentID string
	SKUID      string
	SKUCode    string
	Err        error
}

func (e *ShipmentLineError) Error() string {
	sku := e.SKUCode
	if sku == "" {
		sku = e.SKUID
	}
	return fmt.Sprintf("envío %s: línea del SKU %s: %v", e.ShipmentID, sku, e.Err)
}

func (e *ShipmentLineError) Unwrap() error { return e.Err }
