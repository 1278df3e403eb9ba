package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// InventoryHandler ajustes manuales, kardex y alertas de reposición.
type InventoryHandler struct {
	uc  *inventory.AdjustmentUseCase
	log *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.AdjustmentUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, log: log}
}

// Adjust registra un ajuste de stock.
// POST /api/materials/:id/adjustments
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	mov, err := h.uc.AdjustStock(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Result{Success: true, Message: "ajuste registrado", Data: mov})
}

// Movements kardex de la materia prima.
// GET /api/materials/:id/movements
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	out, err := h.uc.Movements(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Audit conciliación stock vs kardex.
// GET /api/materials/:id/audit
func (h *InventoryHandler) Audit(c *fiber.Ctx) error {
	out, err := h.uc.Audit(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// LowStock materias primas bajo el punto de reorden.
// GET /api/inventory/low-stock
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "materials": out})
}
