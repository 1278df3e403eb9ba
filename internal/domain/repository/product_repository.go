package repository

import (
	"context"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// ProductRepository puerto de persistencia para productos terminados.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

// BOMRepository puerto de persistencia de la lista de materiales.
// A lo sumo una línea por (producto, materia prima): Create retorna domain.ErrDuplicate.
type BOMRepository interface {
	Create(ctx context.Context, line *entity.BOMLine) error
	GetByID(ctx context.Context, id string) (*entity.BOMLine, error)
	Update(ctx context.Context, line *entity.BOMLine) error
	Delete(ctx context.Context, id string) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.BOMLine, error)
}
