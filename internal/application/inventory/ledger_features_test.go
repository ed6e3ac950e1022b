package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/memory"
)

// ledgerWorld estado de un escenario. Los nombres del feature se usan también como IDs.
type ledgerWorld struct {
	repos   *memory.Repositories
	adjust  *inventory.AdjustStockUseCase
	receive *inventory.ReceiveShipmentUseCase
	err     error
}

func (w *ledgerWorld) reset() {
	w.repos = memory.NewRepositories(memory.NewStore(), time.Second)
	w.adjust = inventory.NewAdjustStockUseCase(w.repos.Transactor, w.repos.Hubs, w.repos.SKUs, nil)
	w.receive = inventory.NewReceiveShipmentUseCase(w.repos.Transactor, w.adjust)
	w.err = nil
}

func (w *ledgerWorld) aHub(name string) error {
	return w.repos.Hubs.Create(context.Background(), &entity.Hub{ID: name, Name: name})
}

func (w *ledgerWorld) aSKU(code string) error {
	return w.repos.SKUs.Create(context.Background(), &entity.SKU{ID: code, Code: code, Name: code})
}

func (w *ledgerWorld) startsAt(hub, sku string, qty int) error {
	_, err := w.adjust.Adjust(context.Background(), inventory.AdjustInput{HubID: hub, SKUID: sku, Delta: int64(qty), Note: "setup"})
	return err
}

func (w *ledgerWorld) iAdjust(hub, sku string, delta int, note string) error {
	_, w.err = w.adjust.Adjust(context.Background(), inventory.AdjustInput{HubID: hub, SKUID: sku, Delta: int64(delta), Note: note})
	return nil
}

func (w *ledgerWorld) iConcurrentlyAdjust(hub, sku string, a, b int) error {
	var g errgroup.Group
	for _, d := range []int{a, b} {
		d := d
		g.Go(func() error {
			_, err := w.adjust.Adjust(context.Background(), inventory.AdjustInput{HubID: hub, SKUID: sku, Delta: int64(d)})
			return err
		})
	}
	w.err = g.Wait()
	return w.err
}

func (w *ledgerWorld) aPendingShipment(id, hub string, table *godog.Table) error {
	ctx := context.Background()
	if err := w.repos.Shipments.Create(ctx, &entity.Shipment{ID: id, DestHubID: hub, Status: entity.ShipmentStatusPending, CreatedAt: time.Now()}); err != nil {
		return err
	}
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		qty, err := strconv.ParseInt(row.Cells[1].Value, 10, 64)
		if err != nil {
			return err
		}
		line := &entity.ShipmentLine{ID: fmt.Sprintf("%s-%d", id, i), ShipmentID: id, SKUID: row.Cells[0].Value, Quantity: qty}
		if err := w.repos.Shipments.AddLine(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (w *ledgerWorld) iReceive(id string) error {
	w.err = w.receive.Receive(context.Background(), "", id)
	return nil
}

func (w *ledgerWorld) theQuantityIs(hub, sku string, want int) error {
	lvl, err := w.repos.Stock.Get(context.Background(), hub, sku)
	if err != nil {
		return err
	}
	if lvl.Quantity != int64(want) {
		return fmt.Errorf("cantidad de %s/%s: esperada %d, obtenida %d", hub, sku, want, lvl.Quantity)
	}
	return nil
}

func (w *ledgerWorld) hasLogRows(hub, sku string, want int) error {
	sum, count, err := w.repos.Ledger.SumByPair(context.Background(), hub, sku)
	if err != nil {
		return err
	}
	if count != want {
		return fmt.Errorf("entradas de %s/%s: esperadas %d, obtenidas %d", hub, sku, want, count)
	}
	return w.theQuantityIs(hub, sku, int(sum))
}

func (w *ledgerWorld) failsWithInsufficientStock() error {
	if !errors.Is(w.err, domain.ErrInsufficientStock) {
		return fmt.Errorf("se esperaba stock insuficiente, se obtuvo %v", w.err)
	}
	return nil
}

func (w *ledgerWorld) succeeds() error {
	return w.err
}

func (w *ledgerWorld) shipmentIsReceived(id string) error {
	sh, err := w.repos.Shipments.GetByID(context.Background(), id)
	if err != nil {
		return err
	}
	if sh == nil || !sh.IsReceived() {
		return fmt.Errorf("el envío %s no está recibido", id)
	}
	return nil
}

func initializeLedgerScenario(ctx *godog.ScenarioContext) {
	w := &ledgerWorld{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		w.reset()
		return ctx, nil
	})

	ctx.Step(`^a hub "([^"]*)"$`, w.aHub)
	ctx.Step(`^a SKU "([^"]*)"$`, w.aSKU)
	ctx.Step(`^"([^"]*)" "([^"]*)" starts at (\d+)$`, w.startsAt)
	ctx.Step(`^a pending shipment "([^"]*)" to "([^"]*)" with lines:$`, w.aPendingShipment)

	ctx.Step(`^I adjust "([^"]*)" "([^"]*)" by (-?\d+) with note "([^"]*)"$`, w.iAdjust)
	ctx.Step(`^I concurrently adjust "([^"]*)" "([^"]*)" by (-?\d+) and (-?\d+)$`, w.iConcurrentlyAdjust)
	ctx.Step(`^I receive shipment "([^"]*)"$`, w.iReceive)

	ctx.Step(`^the quantity of "([^"]*)" "([^"]*)" is (\d+)$`, w.theQuantityIs)
	ctx.Step(`^"([^"]*)" "([^"]*)" has (\d+) log rows$`, w.hasLogRows)
	ctx.Step(`^the operation fails with insufficient stock$`, w.failsWithInsufficientStock)
	ctx.Step(`^the operation succeeds$`, w.succeeds)
	ctx.Step(`^shipment "([^"]*)" is received$`, w.shipmentIsReceived)
}

func TestLedgerFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeLedgerScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("los escenarios del ledger fallaron")
	}
}
