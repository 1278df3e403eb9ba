package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings del más específico al más general: el primero que coincide con errors.Is gana.
var errorMappings = []errorMapping{
	{domain.ErrInvalidMovement, fiber.StatusBadRequest, "INVALID_MOVEMENT"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrMaterialNotFound, fiber.StatusNotFound, "MATERIAL_NOT_FOUND"},
	{domain.ErrProductNotFound, fiber.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{domain.ErrOrderNotFound, fiber.StatusNotFound, "ORDER_NOT_FOUND"},
	{domain.ErrLineNotFound, fiber.StatusNotFound, "LINE_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrAlreadyFinalized, fiber.StatusConflict, "ALREADY_FINALIZED"},
	{domain.ErrNegativeStock, fiber.StatusConflict, "NEGATIVE_STOCK"},
	{domain.ErrMaterialRetired, fiber.StatusConflict, "MATERIAL_RETIRED"},
	{domain.ErrInsufficientHistory, fiber.StatusUnprocessableEntity, "INSUFFICIENT_HISTORY"},
}

// writeError traduce errores de dominio a status + código + mensaje. Los errores no
// reconocidos se registran y se responden como 500 sin exponer el detalle.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return c.Status(m.status).JSON(dto.ErrorResponse{Success: false, Code: m.code, Message: err.Error()})
		}
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("error no controlado")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Success: false, Code: "INTERNAL", Message: "error interno"})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
