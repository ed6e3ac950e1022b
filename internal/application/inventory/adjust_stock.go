package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
	"github.com/jhoicas/hub-inventory/pkg/logger"
)

// AdjustStockUseCase es el único punto que muta cantidades de stock. Bloquea la fila del par
// (hub, sku), valida que la cantidad no quede negativa, guarda la nueva cantidad y agrega la
// entrada al ledger en la misma unidad de trabajo.
type AdjustStockUseCase struct {
	txRunner  TxRunner
	hubRepo   repository.HubRepository
	skuRepo   repository.SKURepository
	observers []StockObserver
	log       *logger.Logger
	now       func() time.Time
}

// NewAdjustStockUseCase construye el caso de uso. log puede ser nil.
func NewAdjustStockUseCase(
	txRunner TxRunner,
	hubRepo repository.HubRepository,
	skuRepo repository.SKURepository,
	log *logger.Logger,
	observers ...StockObserver,
) *AdjustStockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustStockUseCase{
		txRunner:  txRunner,
		hubRepo:   hubRepo,
		skuRepo:   skuRepo,
		observers: observers,
		log:       log.Named("ledger"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// AdjustInput entrada de un ajuste. ActorID vacío = sin usuario (p. ej. CLI).
type AdjustInput struct {
	ActorID string
	HubID   string
	SKUID   string
	Delta   int64
	Note    string
}

// Adjust aplica delta al par (hub, sku) y devuelve la nueva cantidad.
// Delta cero se acepta y se registra igual.
func (uc *AdjustStockUseCase) Adjust(ctx context.Context, in AdjustInput) (int64, error) {
	in.HubID = strings.TrimSpace(in.HubID)
	in.SKUID = strings.TrimSpace(in.SKUID)
	if in.HubID == "" || in.SKUID == "" {
		return 0, domain.ErrInvalidInput
	}

	hub, err := uc.hubRepo.GetByID(ctx, in.HubID)
	if err != nil {
		return 0, err
	}
	if hub == nil {
		return 0, domain.ErrNotFound
	}
	sku, err := uc.skuRepo.GetByID(ctx, in.SKUID)
	if err != nil {
		return 0, err
	}
	if sku == nil {
		return 0, domain.ErrNotFound
	}

	var change *StockChange
	err = uc.txRunner.Run(ctx, func(
		stockRepo repository.StockLevelRepository,
		entryRepo repository.LedgerEntryRepository,
		_ repository.ShipmentReceiptRepository,
	) error {
		var err error
		change, err = uc.AdjustInTx(ctx, stockRepo, entryRepo, in)
		return err
	})
	if err != nil {
		return 0, err
	}

	uc.notify(ctx, []StockChange{*change})
	return change.Quantity, nil
}

// AdjustInTx ejecuta el ajuste con los repositorios de una unidad de trabajo ya abierta por el caller.
// No hace Commit ni notifica observers: eso queda a cargo de quien abrió la unidad de trabajo.
func (uc *AdjustStockUseCase) AdjustInTx(
	ctx context.Context,
	stockRepo repository.StockLevelRepository,
	entryRepo repository.LedgerEntryRepository,
	in AdjustInput,
) (*StockChange, error) {
	// Bloquea la fila (SELECT FOR UPDATE); la crea en 0 si no existe
	level, err := stockRepo.LockOrCreate(ctx, in.HubID, in.SKUID)
	if err != nil {
		return nil, err
	}

	candidate := level.Quantity + in.Delta
	if candidate < 0 {
		return nil, &domain.InsufficientStockError{
			HubID:   in.HubID,
			SKUID:   in.SKUID,
			Delta:   in.Delta,
			Current: level.Quantity,
		}
	}

	// El timestamp se toma con el lock tomado: por par, el orden de created_at sigue al del lock
	now := uc.now()
	level.Quantity = candidate
	level.UpdatedAt = now
	if err := stockRepo.Update(ctx, level); err != nil {
		return nil, err
	}

	entry := &entity.LedgerEntry{
		ID:        uuid.New().String(),
		ActorID:   in.ActorID,
		HubID:     in.HubID,
		SKUID:     in.SKUID,
		Delta:     in.Delta,
		Note:      in.Note,
		CreatedAt: now,
	}
	if err := entryRepo.Append(ctx, entry); err != nil {
		return nil, err
	}

	return &StockChange{
		EntryID:  entry.ID,
		ActorID:  entry.ActorID,
		HubID:    entry.HubID,
		SKUID:    entry.SKUID,
		Delta:    entry.Delta,
		Quantity: candidate,
		Note:     entry.Note,
		At:       now,
	}, nil
}

func (uc *AdjustStockUseCase) notify(ctx context.Context, changes []StockChange) {
	if len(changes) == 0 {
		return
	}
	for _, o := range uc.observers {
		if err := o.StockChanged(ctx, changes); err != nil {
			uc.log.Warn().Err(err).Int("changes", len(changes)).Msg("observer de stock falló")
		}
	}
}
