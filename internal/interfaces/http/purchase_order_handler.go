package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// PurchaseOrderHandler maneja las peticiones HTTP de órdenes de compra.
type PurchaseOrderHandler struct {
	uc  *purchasing.PurchaseOrderUseCase
	pdf *purchasing.PDFUseCase
	log *logger.Logger
}

// NewPurchaseOrderHandler construye el handler. pdf puede ser nil (sin documento imprimible).
func NewPurchaseOrderHandler(uc *purchasing.PurchaseOrderUseCase, pdf *purchasing.PDFUseCase, log *logger.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc, pdf: pdf, log: log}
}

// Create registra la orden y su efecto en inventario.
// POST /api/purchase-orders
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.PurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.Result{
		Success: true,
		Message: fmt.Sprintf("orden %s creada", order.Number),
		Data:    order,
	})
}

// Update reemplaza las líneas de una orden no recibida.
// PUT /api/purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	var in dto.PurchaseOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.Result{Success: true, Message: fmt.Sprintf("orden %s actualizada", order.Number), Data: order})
}

// Delete elimina una orden no recibida revirtiendo su efecto.
// DELETE /api/purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.Result{Success: true, Message: "orden eliminada"})
}

// ChangeState aplica una transición de estado.
// PATCH /api/purchase-orders/:id/state
func (h *PurchaseOrderHandler) ChangeState(c *fiber.Ctx) error {
	var in dto.ChangeStateRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	order, err := h.uc.ChangeState(c.UserContext(), c.Params("id"), in.NewState)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.Result{
		Success: true,
		Message: fmt.Sprintf("orden %s en estado %s", order.Number, order.State),
		Data:    order,
	})
}

// GetByID detalle de una orden.
// GET /api/purchase-orders/:id
func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	order, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(order)
}

// List listado paginado. Query: state, supplier_id, from, to (yyyy-mm-dd o RFC3339), limit, offset.
// GET /api/purchase-orders
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	var in dto.PurchaseOrderListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros inválidos"})
	}
	var err error
	if in.From, err = parseDateQuery(c.Query("from")); err != nil {
		return writeError(c, h.log, err)
	}
	if in.To, err = parseDateQuery(c.Query("to")); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Stats conteos y totales por estado y por mes.
// GET /api/purchase-orders/stats
func (h *PurchaseOrderHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.Stats(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// PDF documento imprimible de la orden.
// GET /api/purchase-orders/:id/pdf
func (h *PurchaseOrderHandler) PDF(c *fiber.Ctx) error {
	if h.pdf == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "pdf no disponible"})
	}
	b, filename, err := h.pdf.Render(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(b)
}

// parseDateQuery acepta yyyy-mm-dd o RFC3339; vacío = sin filtro.
func parseDateQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
}
