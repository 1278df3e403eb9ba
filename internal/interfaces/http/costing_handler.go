package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// CostingHandler consultas de costeo FIFO, costo BOM y validación de producción.
type CostingHandler struct {
	uc  *costing.CostingUseCase
	log *logger.Logger
}

// NewCostingHandler construye el handler.
func NewCostingHandler(uc *costing.CostingUseCase, log *logger.Logger) *CostingHandler {
	return &CostingHandler{uc: uc, log: log}
}

// FIFOCost costo de consumir ?quantity= unidades de la materia prima.
// GET /api/materials/:id/fifo-cost
func (h *CostingHandler) FIFOCost(c *fiber.Ctx) error {
	qty, err := decimalQuery(c, "quantity")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ResolveConsumptionCost(c.UserContext(), c.Params("id"), qty)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ProductCost costo de fabricación y rentabilidad de una unidad del producto.
// GET /api/products/:id/cost
func (h *CostingHandler) ProductCost(c *fiber.Ctx) error {
	out, err := h.uc.ComputeProductCost(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ProductionCheck disponibilidad de materias primas para fabricar ?quantity= unidades.
// GET /api/products/:id/production-check
func (h *CostingHandler) ProductionCheck(c *fiber.Ctx) error {
	qty, err := decimalQuery(c, "quantity")
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.ValidateProduction(c.UserContext(), c.Params("id"), qty)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

func decimalQuery(c *fiber.Ctx, key string) (decimal.Decimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: %s requerido", domain.ErrInvalidInput, key)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s no es numérico", domain.ErrInvalidInput, key)
	}
	return d, nil
}
