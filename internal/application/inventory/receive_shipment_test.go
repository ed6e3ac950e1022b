package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

func TestReceive_AplicaLineasYMarcaRecibido(t *testing.T) {
	f := newFixture(t, 0)
	f.hub(t, "hubB", "Hub B")
	f.sku(t, "sku1", "SKU1")
	f.sku(t, "sku2", "SKU2")
	f.shipment(t, "sh1", "hubB",
		entity.ShipmentLine{SKUID: "sku1", Quantity: 20},
		entity.ShipmentLine{SKUID: "sku2", Quantity: 5},
	)
	ctx := context.Background()

	require.NoError(t, f.receive.Receive(ctx, "supplier", "sh1"))

	assert.Equal(t, int64(20), f.quantity(t, "hubB", "sku1"))
	assert.Equal(t, int64(5), f.quantity(t, "hubB", "sku2"))

	sh, err := f.repos.Shipments.GetByID(ctx, "sh1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusReceived, sh.Status)
	require.NotNil(t, sh.ReceivedAt)

	rows, err := f.repos.Ledger.List(ctx, repository.LedgerFilter{HubIDs: []string{"hubB"}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, inventory.ShipmentNote("sh1"), r.Note)
		assert.Equal(t, "supplier", r.ActorID)
	}
	assert.Len(t, f.recorder.all(), 2)
}

func TestReceive_SegundaVezNoHaceNada(t *testing.T) {
	f := newFixture(t, 0)
	f.hub(t, "hubB", "Hub B")
	f.sku(t, "sku1", "SKU1")
	f.sku(t, "sku2", "SKU2")
	f.shipment(t, "sh1", "hubB",
		entity.ShipmentLine{SKUID: "sku1", Quantity: 20},
		entity.ShipmentLine{SKUID: "sku2", Quantity: 5},
	)
	ctx := context.Background()
	require.NoError(t, f.receive.Receive(ctx, "", "sh1"))

	require.NoError(t, f.receive.Receive(ctx, "", "sh1"))

	assert.Equal(t, int64(20), f.quantity(t, "hubB", "sku1"))
	assert.Equal(t, int64(5), f.quantity(t, "hubB", "sku2"))
	_, c1 := f.entries(t, "hubB", "sku1")
	_, c2 := f.entries(t, "hubB", "sku2")
	assert.Equal(t, 2, c1+c2)
	assert.Len(t, f.recorder.all(), 2)
}

func TestReceive_EnvioInexistente(t *testing.T) {
	f := newFixture(t, 0)
	assert.ErrorIs(t, f.receive.Receive(context.Background(), "", "nope"), domain.ErrNotFound)
	assert.ErrorIs(t, f.receive.Receive(context.Background(), "", ""), domain.ErrInvalidInput)
}

func TestReceive_LineaNegativaAbortaTodo(t *testing.T) {
	f := newFixture(t, 0)
	f.hub(t, "hubB", "Hub B")
	f.sku(t, "sku1", "SKU1")
	f.sku(t, "sku2", "RET-SKU2")
	f.shipment(t, "sh1", "hubB",
		entity.ShipmentLine{SKUID: "sku1", Quantity: 20},
		entity.ShipmentLine{SKUID: "sku2", Quantity: -4},
	)
	ctx := context.Background()

	err := f.receive.Receive(ctx, "", "sh1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var lineErr *domain.ShipmentLineError
	require.True(t, errors.As(err, &lineErr))
	assert.Equal(t, "sku2", lineErr.SKUID)
	assert.Contains(t, err.Error(), "RET-SKU2")

	assert.Zero(t, f.quantity(t, "hubB", "sku1"))
	_, count := f.entries(t, "hubB", "sku1")
	assert.Zero(t, count)
	sh, _ := f.repos.Shipments.GetByID(ctx, "sh1")
	assert.Equal(t, entity.ShipmentStatusPending, sh.Status)
	assert.Empty(t, f.recorder.all())
}

func TestReceive_LineaNegativaConStockSuficiente(t *testing.T) {
	f := newFixture(t, 0)
	f.hub(t, "hubB", "Hub B")
	f.sku(t, "sku1", "SKU1")
	ctx := context.Background()
	_, err := f.adjust.Adjust(ctx, inventory.AdjustInput{HubID: "hubB", SKUID: "sku1", Delta: 10})
	require.NoError(t, err)
	f.shipment(t, "ret", "hubB", entity.ShipmentLine{SKUID: "sku1", Quantity: -4})

	require.NoError(t, f.receive.Receive(ctx, "", "ret"))
	assert.Equal(t, int64(6), f.quantity(t, "hubB", "sku1"))
}

func TestReceive_DobleRecepcionConcurrenteAplicaUnaVez(t *testing.T) {
	f := newFixture(t, 0)
	f.hub(t, "hubB", "Hub B")
	f.sku(t, "sku1", "SKU1")
	f.shipment(t, "sh1", "hubB", entity.ShipmentLine{SKUID: "sku1", Quantity: 7})
	ctx := context.Background()

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error { return f.receive.Receive(ctx, "", "sh1") })
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(7), f.quantity(t, "hubB", "sku1"))
	_, count := f.entries(t, "hubB", "sku1")
	assert.Equal(t, 1, count)
}

func TestReceive_EnviosConSKUsCruzadosNoSeBloquean(t *testing.T) {
	f := newFixture(t, 2*time.Second)
	f.hub(t, "hubB", "Hub B")
	f.sku(t, "sku1", "SKU1")
	f.sku(t, "sku2", "SKU2")

	const rounds = 20
	for i := 0; i < rounds; i++ {
		f.shipment(t, fmt.Sprintf("a%d", i), "hubB",
			entity.ShipmentLine{SKUID: "sku1", Quantity: 1},
			entity.ShipmentLine{SKUID: "sku2", Quantity: 1},
		)
		f.shipment(t, fmt.Sprintf("b%d", i), "hubB",
			entity.ShipmentLine{SKUID: "sku2", Quantity: 1},
			entity.ShipmentLine{SKUID: "sku1", Quantity: 1},
		)
	}

	ctx := context.Background()
	var g errgroup.Group
	for i := 0; i < rounds; i++ {
		a, b := fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i)
		g.Go(func() error { return f.receive.Receive(ctx, "", a) })
		g.Go(func() error { return f.receive.Receive(ctx, "", b) })
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(2*rounds), f.quantity(t, "hubB", "sku1"))
	assert.Equal(t, int64(2*rounds), f.quantity(t, "hubB", "sku2"))
}

func TestReceive_EntradasEnOrdenDeLineas(t *testing.T) {
	f := newFixture(t, 0)
	f.hub(t, "hubB", "Hub B")
	f.sku(t, "z-sku", "ZZZ")
	f.sku(t, "a-sku", "AAA")
	f.shipment(t, "sh1", "hubB",
		entity.ShipmentLine{SKUID: "z-sku", Quantity: 1},
		entity.ShipmentLine{SKUID: "a-sku", Quantity: 2},
	)
	require.NoError(t, f.receive.Receive(context.Background(), "", "sh1"))

	changes := f.recorder.all()
	require.Len(t, changes, 2)
	assert.Equal(t, "z-sku", changes[0].SKUID)
	assert.Equal(t, "a-sku", changes[1].SKUID)
	assert.False(t, changes[1].At.Before(changes[0].At))
}

// lockHookTxRunner ejecuta afterLock justo después de que la recepción bloquea el envío.
type lockHookTxRunner struct {
	inner     inventory.TxRunner
	afterLock func()
}

func (r lockHookTxRunner) Run(ctx context.Context, fn func(
	repository.StockLevelRepository, repository.LedgerEntryRepository, repository.ShipmentReceiptRepository,
) error) error {
	return r.inner.Run(ctx, func(stock repository.StockLevelRepository, entries repository.LedgerEntryRepository, receipts repository.ShipmentReceiptRepository) error {
		return fn(stock, entries, lockHookReceipts{ShipmentReceiptRepository: receipts, afterLock: r.afterLock})
	})
}

type lockHookReceipts struct {
	repository.ShipmentReceiptRepository
	afterLock func()
}

func (h lockHookReceipts) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	sh, err := h.ShipmentReceiptRepository.GetForUpdate(ctx, id)
	if err == nil {
		h.afterLock()
	}
	return sh, err
}

func TestReceive_LineaAgregadaDuranteRecepcionEsRechazada(t *testing.T) {
	f := newFixture(t, 0)
	f.hub(t, "hubB", "Hub B")
	f.sku(t, "sku1", "SKU1")
	f.sku(t, "sku2", "SKU2")
	f.shipment(t, "sh1", "hubB", entity.ShipmentLine{SKUID: "sku1", Quantity: 20})
	ctx := context.Background()

	added := make(chan error, 1)
	var once sync.Once
	runner := lockHookTxRunner{inner: f.repos.Transactor, afterLock: func() {
		once.Do(func() {
			go func() {
				added <- f.repos.Shipments.AddLine(ctx, &entity.ShipmentLine{ID: "late", ShipmentID: "sh1", SKUID: "sku2", Quantity: 5})
			}()
			assert.Never(t, func() bool { return len(added) > 0 }, 50*time.Millisecond, 5*time.Millisecond,
				"AddLine no debe avanzar mientras la recepción tiene el envío bloqueado")
		})
	}}
	receive := inventory.NewReceiveShipmentUseCase(runner, f.adjust)

	require.NoError(t, receive.Receive(ctx, "supplier", "sh1"))

	select {
	case err := <-added:
		assert.ErrorIs(t, err, domain.ErrConflict)
	case <-time.After(2 * time.Second):
		t.Fatal("AddLine sigue bloqueado después del commit")
	}

	sh, err := f.repos.Shipments.GetByID(ctx, "sh1")
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusReceived, sh.Status)
	assert.Len(t, sh.Lines, 1)
	assert.Equal(t, int64(20), f.quantity(t, "hubB", "sku1"))
	_, count := f.entries(t, "hubB", "sku2")
	assert.Zero(t, count)
}
