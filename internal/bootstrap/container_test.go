package bootstrap_test

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/hub-inventory/internal/application/auth"
	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/bootstrap"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/events"
	"github.com/jhoicas/hub-inventory/pkg/config"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	v.Set("DB_DRIVER", "memory")
	v.Set("JWT_SECRET", "test-secret")
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestNew_MemoriaCableaLedgerYDashboard(t *testing.T) {
	ctx := context.Background()
	c, err := bootstrap.New(ctx, memoryConfig(t), nil, bootstrap.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	defer func() { assert.NoError(t, c.Close()) }()

	hub, err := c.HubUC.Create(ctx, dto.CreateHubRequest{Name: "Hub Norte", City: "Bogotá"})
	require.NoError(t, err)
	sku, err := c.SKUUC.Create(ctx, dto.CreateSKURequest{Code: "SOCK-RED", Name: "Calcetín rojo"})
	require.NoError(t, err)
	admin, err := c.AuthUC.CreateUser(ctx, dto.CreateUserRequest{Username: "root", Password: "secret123", Role: entity.RoleAdmin})
	require.NoError(t, err)

	p := auth.Principal{UserID: admin.ID, Username: admin.Username, Role: entity.RoleAdmin}
	before, err := c.Dashboard.Get(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(0), before.TotalQuantity)

	qty, err := c.AdjustStock.Adjust(ctx, inventory.AdjustInput{ActorID: admin.ID, HubID: hub.ID, SKUID: sku.ID, Delta: 7, Note: "conteo"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), qty)

	// el ajuste invalida la caché del dashboard
	after, err := c.Dashboard.Get(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(7), after.TotalQuantity)
	require.Len(t, after.RecentEntries, 1)

	// sin brokers los cambios van al publicador nulo
	assert.IsType(t, events.NopPublisher{}, c.Events)

	list, err := c.Reports.ListStock(ctx, p.Scope())
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "SOCK-RED", list.Items[0].SKUCode)
}

func TestNew_RecepcionDeEnvio(t *testing.T) {
	ctx := context.Background()
	c, err := bootstrap.New(ctx, memoryConfig(t), nil, bootstrap.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	defer c.Close()

	hub, err := c.HubUC.Create(ctx, dto.CreateHubRequest{Name: "Hub Sur"})
	require.NoError(t, err)
	_, err = c.SKUUC.Create(ctx, dto.CreateSKURequest{Code: "HAT", Name: "Gorro"})
	require.NoError(t, err)
	supplier, err := c.AuthUC.CreateUser(ctx, dto.CreateUserRequest{Username: "prov", Password: "secret123", Role: entity.RoleSupplier})
	require.NoError(t, err)

	sh, err := c.ShipmentUC.Create(ctx, supplier.ID, dto.CreateShipmentRequest{DestHubID: hub.ID})
	require.NoError(t, err)
	_, err = c.ShipmentUC.AddLine(ctx, sh.ID, dto.AddShipmentLineRequest{SKUCode: "HAT", Quantity: 12})
	require.NoError(t, err)

	require.NoError(t, c.ReceiveShipment.Receive(ctx, supplier.ID, sh.ID))
	// segunda recepción no duplica
	require.NoError(t, c.ReceiveShipment.Receive(ctx, supplier.ID, sh.ID))

	list, err := c.Reports.ListStock(ctx, auth.Scope{All: true})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(12), list.Items[0].Quantity)

	got, err := c.ShipmentUC.GetByID(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ShipmentStatusReceived, got.Status)
}

func TestNew_DriverDesconocido(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.DB.Driver = "sqlite"

	_, err := bootstrap.New(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}
