package http

import (
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/bootstrap"
	"github.com/jhoicas/costeo-api/internal/infrastructure/memory"
	"github.com/jhoicas/costeo-api/pkg/config"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	c := bootstrap.New(store.Materials(), store.Movements(), store.Products(), store.BOM(), store.Orders(), store,
		config.CostingConfig{RecomputeOnReversal: true, OrderPrefix: "CP"}, logger.Nop())
	app := fiber.New()
	Router(app, RouterDeps{
		Purchases:   c.Purchases,
		PurchasePDF: c.PurchasePDF,
		Costing:     c.Costing,
		Catalog:     c.Catalog,
		Adjustments: c.Adjustments,
		Log:         logger.Nop(),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func createMaterial(t *testing.T, app *fiber.App) string {
	t.Helper()
	status, body := do(t, app, nethttp.MethodPost, "/api/materials", `{"name":"Sensor","unit_measure":"und","minimum_quantity":"5"}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))
	var m dto.MaterialResponse
	require.NoError(t, json.Unmarshal(body, &m))
	return m.ID
}

func TestPurchaseOrders_CrearYConsultar(t *testing.T) {
	app := newTestApp(t)
	materialID := createMaterial(t, app)

	status, body := do(t, app, nethttp.MethodPost, "/api/purchase-orders",
		`{"supplier_id":"prov-1","lines":[{"material_id":"`+materialID+`","quantity":"10","unit_price":"4.5"}]}`)
	require.Equal(t, fiber.StatusCreated, status, string(body))

	var res struct {
		Success bool                      `json:"success"`
		Message string                    `json:"message"`
		Data    dto.PurchaseOrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Success)
	assert.Contains(t, res.Message, res.Data.Number)
	assert.Equal(t, "Pendiente", res.Data.State)
	assert.Equal(t, "45", res.Data.Total.String())

	status, body = do(t, app, nethttp.MethodGet, "/api/purchase-orders/"+res.Data.ID, "")
	assert.Equal(t, fiber.StatusOK, status, string(body))

	status, body = do(t, app, nethttp.MethodGet, "/api/purchase-orders/stats", "")
	require.Equal(t, fiber.StatusOK, status, string(body))
	var stats dto.PurchaseOrderStatsResponse
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.TotalOrders)

	status, body = do(t, app, nethttp.MethodPatch, "/api/purchase-orders/"+res.Data.ID+"/state", `{"new_state":"Recibido"}`)
	assert.Equal(t, fiber.StatusOK, status, string(body))

	status, body = do(t, app, nethttp.MethodDelete, "/api/purchase-orders/"+res.Data.ID, "")
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, string(body), "ALREADY_FINALIZED")
}

func TestPurchaseOrders_NoEncontrada(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, nethttp.MethodGet, "/api/purchase-orders/no-existe", "")
	assert.Equal(t, fiber.StatusNotFound, status)

	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.False(t, e.Success)
	assert.Equal(t, "ORDER_NOT_FOUND", e.Code)
}

func TestPurchaseOrders_CuerpoInvalido(t *testing.T) {
	app := newTestApp(t)

	status, body := do(t, app, nethttp.MethodPost, "/api/purchase-orders", `{"supplier_id":`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "INVALID_BODY")

	status, body = do(t, app, nethttp.MethodPost, "/api/purchase-orders", `{"supplier_id":"p","lines":[]}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestFIFOCost_HistorialInsuficiente(t *testing.T) {
	app := newTestApp(t)
	materialID := createMaterial(t, app)

	status, body := do(t, app, nethttp.MethodGet, "/api/materials/"+materialID+"/fifo-cost?quantity=3", "")
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Contains(t, string(body), "INSUFFICIENT_HISTORY")

	status, _ = do(t, app, nethttp.MethodGet, "/api/materials/"+materialID+"/fifo-cost", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestWriteError_NoExponeDetalleInterno(t *testing.T) {
	app := fiber.New()
	app.Get("/falla", func(c *fiber.Ctx) error {
		return writeError(c, logger.Nop(), errors.New("pgx: conexión rechazada en 10.0.0.5"))
	})

	status, body := do(t, app, nethttp.MethodGet, "/falla", "")
	assert.Equal(t, fiber.StatusInternalServerError, status)

	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "INTERNAL", e.Code)
	assert.Equal(t, "error interno", e.Message)
	assert.NotContains(t, string(body), "10.0.0.5")
}
