package repository

import (
	"context"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// StockMovementRepository puerto de persistencia del kardex. No expone actualización de registros.
type StockMovementRepository interface {
	// Create persiste el movimiento asignando ID y Seq.
	Create(ctx context.Context, movement *entity.StockMovement) error
	ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error)
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockMovement, error)
	// ListReceipts devuelve las Entradas de la materia prima ordenadas por fecha y Seq.
	ListReceipts(ctx context.Context, materialID string) ([]*entity.StockMovement, error)
	// VoidByReference anula los movimientos de una referencia y tipo (edición/reinstalación de
	// órdenes) y devuelve los eliminados.
	VoidByReference(ctx context.Context, reference string, kind entity.MovementKind) ([]*entity.StockMovement, error)
}
