package inventory

import (
	"context"

	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn retorna error no queda ningún efecto.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		materialRepo repository.RawMaterialRepository,
	) error) error
}
