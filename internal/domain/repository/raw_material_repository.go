package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// RawMaterialReader lectura de materias primas. Es lo único que reciben los
// componentes de consulta (costeo, validación de disponibilidad).
type RawMaterialReader interface {
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.RawMaterial, error)
	ListBelowMinimum(ctx context.Context) ([]*entity.RawMaterial, error)
}

// MaterialStockWriter capacidad de modificar stock y costo promedio.
// Solo la usan el actualizador de costo promedio y el gestor de órdenes de compra.
type MaterialStockWriter interface {
	// GetForUpdate bloquea la fila de la materia prima hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error)
	UpdateStockAndCost(ctx context.Context, id string, onHand, unitCost decimal.Decimal) error
}

// MaterialCatalogWriter alta y edición de datos de catálogo, sin acceso a stock ni costo.
type MaterialCatalogWriter interface {
	RawMaterialReader
	Create(ctx context.Context, material *entity.RawMaterial) error
	// Update modifica datos de catálogo (nombre, unidad, mínimo, proveedor, estado); nunca stock ni costo.
	Update(ctx context.Context, material *entity.RawMaterial) error
}

// RawMaterialRepository puerto de persistencia para RawMaterial.
type RawMaterialRepository interface {
	MaterialCatalogWriter
	MaterialStockWriter
}
