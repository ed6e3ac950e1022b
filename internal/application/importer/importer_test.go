package importer_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-inventory/internal/application/importer"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/memory"
)

func newImporter() (*importer.SKUImporter, *memory.Repositories) {
	repos := memory.NewRepositories(memory.NewStore(), 0)
	return importer.NewSKUImporter(repos.SKUs, repos.Hubs, repos.HubSKUs), repos
}

const catalog = "\ufeffSKU, Name ,Barcode,Low_Stock_Threshold,Hubs\n" +
	"SOCK-RED,Calcetín rojo,111,3,\"Hub 1, Hub 2\"\n" +
	"SOCK-BLUE,Calcetín azul,,abc,Hub 2\n" +
	",sin código,,,\n" +
	"SOCK-GRN,Calcetín verde,,,\n"

func TestImport_CreaSKUsHubsYVinculos(t *testing.T) {
	im, repos := newImporter()
	ctx := context.Background()

	res, err := im.Import(ctx, strings.NewReader(catalog), importer.Options{DefaultThreshold: 5})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Rows)
	assert.Equal(t, 3, res.SKUsCreated)
	assert.Equal(t, 2, res.HubsCreated)
	assert.Equal(t, 3, res.LinksCreated)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0], "línea 4")

	red, _ := repos.SKUs.GetByCode(ctx, "SOCK-RED")
	require.NotNil(t, red)
	assert.Equal(t, 3, red.LowStockThreshold)
	assert.Equal(t, "111", red.Barcode)

	blue, _ := repos.SKUs.GetByCode(ctx, "SOCK-BLUE")
	assert.Equal(t, 5, blue.LowStockThreshold, "umbral inválido usa el valor por defecto")

	hub2, _ := repos.Hubs.GetByName(ctx, "Hub 2")
	require.NotNil(t, hub2)
	inHub2, _ := repos.HubSKUs.ListSKUsByHub(ctx, hub2.ID)
	require.Len(t, inHub2, 2)
	assert.Equal(t, "SOCK-BLUE", inHub2[0].Code)

	// sin stock
	rows, _ := repos.Stock.ListByHubs(ctx, nil)
	assert.Empty(t, rows)
}

func TestImport_EsIdempotente(t *testing.T) {
	im, repos := newImporter()
	ctx := context.Background()
	_, err := im.Import(ctx, strings.NewReader(catalog), importer.Options{DefaultThreshold: 5})
	require.NoError(t, err)

	res, err := im.Import(ctx, strings.NewReader(catalog), importer.Options{DefaultThreshold: 5})
	require.NoError(t, err)
	assert.Zero(t, res.SKUsCreated)
	assert.Equal(t, 3, res.SKUsUpdated)
	assert.Zero(t, res.HubsCreated)
	assert.Zero(t, res.LinksCreated)

	hubs, _ := repos.Hubs.List(ctx)
	assert.Len(t, hubs, 2)
}

func TestImport_ReactivaYLimpiaAsignaciones(t *testing.T) {
	im, repos := newImporter()
	ctx := context.Background()
	_, err := im.Import(ctx, strings.NewReader("sku,name,hubs\nS1,Uno,\"A, B\"\n"), importer.Options{})
	require.NoError(t, err)

	s1, _ := repos.SKUs.GetByCode(ctx, "S1")
	a, _ := repos.Hubs.GetByName(ctx, "A")
	_, err = repos.HubSKUs.Upsert(ctx, &entity.HubSKU{HubID: a.ID, SKUID: s1.ID, Active: false})
	require.NoError(t, err)

	res, err := im.Import(ctx, strings.NewReader("sku,name,hubs\nS1,Uno,A\n"), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.LinksActivated)

	res, err = im.Import(ctx, strings.NewReader("sku,name,hubs\nS1,Uno,A\n"), importer.Options{ClearAssignments: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.AssignmentsReset)
	assert.Equal(t, 1, res.LinksCreated)
	links, _ := repos.HubSKUs.ListBySKU(ctx, s1.ID)
	require.Len(t, links, 1)
	assert.Equal(t, a.ID, links[0].HubID)
}

func TestImport_ColumnasObligatorias(t *testing.T) {
	im, _ := newImporter()
	_, err := im.Import(context.Background(), strings.NewReader("code,title\nX,Y\n"), importer.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "name, sku")

	_, err = im.Import(context.Background(), strings.NewReader(""), importer.Options{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
