package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// ReceiveShipmentUseCase recibe un envío: aplica cada línea al hub destino a través del ledger
// y marca el envío como RECEIVED, todo en una sola unidad de trabajo.
type ReceiveShipmentUseCase struct {
	txRunner TxRunner
	ledger   *AdjustStockUseCase
}

// NewReceiveShipmentUseCase construye el caso de uso.
func NewReceiveShipmentUseCase(txRunner TxRunner, ledger *AdjustStockUseCase) *ReceiveShipmentUseCase {
	return &ReceiveShipmentUseCase{txRunner: txRunner, ledger: ledger}
}

// ShipmentNote es la nota que llevan las entradas del ledger generadas por una recepción.
func ShipmentNote(shipmentID string) string {
	return "Shipment " + shipmentID
}

// Receive es idempotente: un envío ya recibido no escribe nada y devuelve nil.
// Si una línea falla, nada se aplica y el error es *domain.ShipmentLineError.
func (uc *ReceiveShipmentUseCase) Receive(ctx context.Context, actorID, shipmentID string) error {
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return domain.ErrInvalidInput
	}

	var changes []StockChange
	err := uc.txRunner.Run(ctx, func(
		stockRepo repository.StockLevelRepository,
		entryRepo repository.LedgerEntryRepository,
		receiptRepo repository.ShipmentReceiptRepository,
	) error {
		changes = changes[:0]

		// Bloquea el envío primero: dos recepciones simultáneas se serializan aquí
		shipment, err := receiptRepo.GetForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if shipment == nil {
			return domain.ErrNotFound
		}
		if shipment.IsReceived() {
			return nil
		}

		// Toma los locks de los pares en orden de SKU para no cruzarse con otro envío
		for _, line := range linesBySKU(shipment.Lines) {
			if _, err := stockRepo.LockOrCreate(ctx, shipment.DestHubID, line.SKUID); err != nil {
				return lineError(shipment, line, err)
			}
		}

		note := ShipmentNote(shipment.ID)
		for _, line := range shipment.Lines {
			change, err := uc.ledger.AdjustInTx(ctx, stockRepo, entryRepo, AdjustInput{
				ActorID: actorID,
				HubID:   shipment.DestHubID,
				SKUID:   line.SKUID,
				Delta:   line.Quantity,
				Note:    note,
			})
			if err != nil {
				return lineError(shipment, line, err)
			}
			changes = append(changes, *change)
		}

		return receiptRepo.MarkReceived(ctx, shipment.ID, uc.ledger.now())
	})
	if err != nil {
		return err
	}

	uc.ledger.notify(ctx, changes)
	return nil
}

// linesBySKU devuelve una línea por SKU distinto, ordenadas por SKU ID ascendente.
func linesBySKU(lines []entity.ShipmentLine) []entity.ShipmentLine {
	seen := make(map[string]bool, len(lines))
	out := make([]entity.ShipmentLine, 0, len(lines))
	for _, l := range lines {
		if seen[l.SKUID] {
			continue
		}
		seen[l.SKUID] = true
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKUID < out[j].SKUID })
	return out
}

func lineError(s *entity.Shipment, line entity.ShipmentLine, err error) error {
	return &domain.ShipmentLineError{
		ShipmentID: s.ID,
		SKUID:      line.SKUID,
		SKUCode:    line.SKUCode,
		Err:        err,
	}
}
