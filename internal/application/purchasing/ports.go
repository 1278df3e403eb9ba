package purchasing

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// PurchaseTxRunner ejecuta una función dentro de una transacción que incluye kardex,
// materias primas y órdenes de compra. Todo o nada: si fn retorna error se hace rollback.
type PurchaseTxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		materialRepo repository.RawMaterialRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error) error
}

// PurchaseOrderLineForPDF línea de la orden con los datos de la materia prima ya resueltos.
type PurchaseOrderLineForPDF struct {
	MaterialName string
	UnitMeasure  string
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Subtotal     decimal.Decimal
}

// PurchaseOrderPDFGenerator genera el documento PDF de una orden de compra.
type PurchaseOrderPDFGenerator interface {
	GeneratePurchaseOrderPDF(ctx context.Context, order *entity.PurchaseOrder, lines []PurchaseOrderLineForPDF) ([]byte, error)
}
