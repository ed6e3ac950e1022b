package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/bootstrap"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	apphttp "github.com/jhoicas/hub-inventory/internal/interfaces/http"
	"github.com/jhoicas/hub-inventory/pkg/config"
)

// apiFixture API completa sobre el driver en memoria con dos hubs y un usuario por rol.
type apiFixture struct {
	app    *fiber.App
	c      *bootstrap.Container
	hubA   *dto.HubResponse
	hubB   *dto.HubResponse
	sock   *dto.SKUResponse
	tokens map[string]string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()

	v := viper.New()
	v.Set("DB_DRIVER", "memory")
	v.Set("JWT_SECRET", testJWTSecret)
	cfg, err := config.FromViper(v)
	require.NoError(t, err)

	c, err := bootstrap.New(ctx, cfg, nil, bootstrap.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:          c.AuthUC,
		HubUC:           c.HubUC,
		SKUUC:           c.SKUUC,
		ShipmentUC:      c.ShipmentUC,
		AdjustStock:     c.AdjustStock,
		ReceiveShipment: c.ReceiveShipment,
		Importer:        c.Importer,
		Reports:         c.Reports,
		DashboardUC:     c.Dashboard,
		ImportThreshold: cfg.Inventory.ImportDefaultThreshold,
		JWTSecret:       cfg.JWT.Secret,
	})

	f := &apiFixture{app: app, c: c, tokens: map[string]string{}}
	f.hubA, err = c.HubUC.Create(ctx, dto.CreateHubRequest{Name: "Hub A"})
	require.NoError(t, err)
	f.hubB, err = c.HubUC.Create(ctx, dto.CreateHubRequest{Name: "Hub B"})
	require.NoError(t, err)
	f.sock, err = c.SKUUC.Create(ctx, dto.CreateSKURequest{Code: "SOCK-RED", Name: "Calcetín rojo"})
	require.NoError(t, err)

	users := []dto.CreateUserRequest{
		{Username: "admin", Password: "secret123", Role: entity.RoleAdmin},
		{Username: "manager", Password: "secret123", Role: entity.RoleHub, HubID: f.hubA.ID},
		{Username: "supplier", Password: "secret123", Role: entity.RoleSupplier},
	}
	for _, u := range users {
		_, err := c.AuthUC.CreateUser(ctx, u)
		require.NoError(t, err)
		f.tokens[u.Username] = f.login(t, u.Username, u.Password)
	}
	return f
}

func (f *apiFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return out.Token
}

func (f *apiFixture) do(t *testing.T, method, path, user string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[user])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	var e dto.ErrorResponse
	decode(t, resp, &e)
	return e.Code
}

func TestAPI_LoginCredencialesInvalidas(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Username: "admin", Password: "otra"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))
}

func TestAPI_AjusteRespetaAlcanceDelHub(t *testing.T) {
	f := newAPIFixture(t)

	// el manager del hub A no puede tocar el hub B
	resp := f.do(t, http.MethodPost, "/api/inventory/adjust", "manager",
		dto.AdjustStockRequest{HubID: f.hubB.ID, SKUID: f.sock.ID, Delta: 5})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/inventory/adjust", "manager",
		dto.AdjustStockRequest{HubID: f.hubA.ID, SKUID: f.sock.ID, Delta: 5, Note: "conteo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var adj dto.AdjustStockResponse
	decode(t, resp, &adj)
	assert.Equal(t, int64(5), adj.Quantity)

	resp = f.do(t, http.MethodPost, "/api/inventory/adjust", "manager",
		dto.AdjustStockRequest{HubID: f.hubA.ID, SKUID: f.sock.ID, Delta: -6})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", errorCode(t, resp))

	resp = f.do(t, http.MethodPost, "/api/inventory/adjust", "admin",
		dto.AdjustStockRequest{HubID: f.hubB.ID, SKUID: f.sock.ID, Delta: 2})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// cada rol ve solo sus hubs
	resp = f.do(t, http.MethodGet, "/api/inventory", "manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine dto.InventoryListResponse
	decode(t, resp, &mine)
	assert.Equal(t, "Hub A", mine.Scope)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, int64(5), mine.Items[0].Quantity)

	resp = f.do(t, http.MethodGet, "/api/inventory", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all dto.InventoryListResponse
	decode(t, resp, &all)
	assert.Len(t, all.Items, 2)

	resp = f.do(t, http.MethodGet, "/api/logs", "manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logs []dto.LedgerEntryResponse
	decode(t, resp, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, int64(5), logs[0].Delta)
}

func TestAPI_FlujoDeEnvio(t *testing.T) {
	f := newAPIFixture(t)

	// solo SUPPLIER (o admin) crea envíos
	resp := f.do(t, http.MethodPost, "/api/shipments", "manager", dto.CreateShipmentRequest{DestHubID: f.hubA.ID})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/shipments", "supplier", dto.CreateShipmentRequest{DestHubID: f.hubA.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sh dto.ShipmentResponse
	decode(t, resp, &sh)
	assert.Equal(t, entity.ShipmentStatusPending, sh.Status)

	resp = f.do(t, http.MethodPost, "/api/shipments/"+sh.ID+"/lines", "supplier",
		dto.AddShipmentLineRequest{SKUCode: "SOCK-RED", Quantity: 9})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// el proveedor ve su envío pero no puede recibirlo (no tiene el hub destino)
	resp = f.do(t, http.MethodGet, "/api/shipments/"+sh.ID, "supplier", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = f.do(t, http.MethodPost, "/api/shipments/"+sh.ID+"/receive", "supplier", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	for i := 0; i < 2; i++ {
		resp = f.do(t, http.MethodPost, "/api/shipments/"+sh.ID+"/receive", "manager", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var got dto.ShipmentResponse
		decode(t, resp, &got)
		assert.Equal(t, entity.ShipmentStatusReceived, got.Status)
	}

	resp = f.do(t, http.MethodGet, "/api/inventory", "manager", nil)
	var inv dto.InventoryListResponse
	decode(t, resp, &inv)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, int64(9), inv.Items[0].Quantity)

	// recibido: no admite más líneas
	resp = f.do(t, http.MethodPost, "/api/shipments/"+sh.ID+"/lines", "supplier",
		dto.AddShipmentLineRequest{SKUCode: "SOCK-RED", Quantity: 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ExportCSVYDashboard(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodPost, "/api/inventory/adjust", "manager",
		dto.AdjustStockRequest{HubID: f.hubA.ID, SKUID: f.sock.ID, Delta: 3, Note: "inicial"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/logs/export.csv", "manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "inventory_logs_")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "manager")
	assert.Contains(t, lines[1], "SOCK-RED")

	resp = f.do(t, http.MethodGet, "/api/dashboard", "manager", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var dash dto.DashboardResponse
	decode(t, resp, &dash)
	assert.Equal(t, "Welcome Manager! You’re managing: Hub A.", dash.Welcome)
	assert.Equal(t, "Hub Manager", dash.RoleLabel)
	assert.Equal(t, int64(3), dash.TotalQuantity)
	require.Len(t, dash.LowStock, 1)
}

func TestAPI_CambiosDeCatalogoRefrescanDashboard(t *testing.T) {
	f := newAPIFixture(t)
	dashboard := func() dto.DashboardResponse {
		resp := f.do(t, http.MethodGet, "/api/dashboard", "manager", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out dto.DashboardResponse
		decode(t, resp, &out)
		return out
	}

	resp := f.do(t, http.MethodPost, "/api/inventory/adjust", "manager",
		dto.AdjustStockRequest{HubID: f.hubA.ID, SKUID: f.sock.ID, Delta: 3})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	before := dashboard()
	assert.Equal(t, "Hub A", before.HubDisplay)
	require.Len(t, before.LowStock, 1)
	assert.Equal(t, "SOCK-RED", before.LowStock[0].SKUCode)

	name := "Hub Centro"
	resp = f.do(t, http.MethodPut, "/api/hubs/"+f.hubA.ID, "admin", dto.UpdateHubRequest{Name: &name})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	code := "SOCK-BLUE"
	resp = f.do(t, http.MethodPut, "/api/skus/"+f.sock.ID, "admin", dto.UpdateSKURequest{Code: &code})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	after := dashboard()
	assert.Equal(t, "Hub Centro", after.HubDisplay)
	assert.Equal(t, "Welcome Manager! You’re managing: Hub Centro.", after.Welcome)
	require.Len(t, after.LowStock, 1)
	assert.Equal(t, "SOCK-BLUE", after.LowStock[0].SKUCode)
}

func TestAPI_ImportarSKUsSoloAdmin(t *testing.T) {
	f := newAPIFixture(t)

	upload := func(user string) *http.Response {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", "skus.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte("sku,name,hubs\nHAT-01,Gorro,\"Hub A,Hub C\"\nSCARF,Bufanda,Hub C\n"))
		require.NoError(t, err)
		require.NoError(t, w.WriteField("clear_hub_assignments", "true"))
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/skus/import", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+f.tokens[user])
		resp, err := f.app.Test(req, -1)
		require.NoError(t, err)
		return resp
	}

	resp := upload("manager")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = upload("admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res dto.ImportResultResponse
	decode(t, resp, &res)
	assert.Equal(t, 2, res.Rows)
	assert.Equal(t, 2, res.SKUsCreated)
	assert.Equal(t, 1, res.HubsCreated)
}

func TestAPI_SinTokenEs401(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/api/inventory", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, resp))
}
