package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/catalog"
	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// CatalogHandler materias primas, productos y listas de materiales.
type CatalogHandler struct {
	uc  *catalog.CatalogUseCase
	log *logger.Logger
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *catalog.CatalogUseCase, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{uc: uc, log: log}
}

// CreateMaterial POST /api/materials
func (h *CatalogHandler) CreateMaterial(c *fiber.Ctx) error {
	var in dto.CreateMaterialRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateMaterial(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetMaterial GET /api/materials/:id
func (h *CatalogHandler) GetMaterial(c *fiber.Ctx) error {
	out, err := h.uc.GetMaterial(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// RetireMaterial baja lógica.
// DELETE /api/materials/:id
func (h *CatalogHandler) RetireMaterial(c *fiber.Ctx) error {
	if err := h.uc.RetireMaterial(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.Result{Success: true, Message: "materia prima dada de baja"})
}

// CreateProduct POST /api/products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateProduct(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListBOM GET /api/products/:id/bom
func (h *CatalogHandler) ListBOM(c *fiber.Ctx) error {
	out, err := h.uc.ListBOM(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "lines": out})
}

// AddBOMLine POST /api/products/:id/bom
func (h *CatalogHandler) AddBOMLine(c *fiber.Ctx) error {
	var in dto.BOMLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddBOMLine(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateBOMLine PUT /api/bom-lines/:id
func (h *CatalogHandler) UpdateBOMLine(c *fiber.Ctx) error {
	var in dto.UpdateBOMLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.UpdateBOMLine(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// RemoveBOMLine DELETE /api/bom-lines/:id
func (h *CatalogHandler) RemoveBOMLine(c *fiber.Ctx) error {
	if err := h.uc.RemoveBOMLine(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.Result{Success: true, Message: "línea eliminada"})
}
