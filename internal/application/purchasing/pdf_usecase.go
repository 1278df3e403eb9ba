package purchasing

import (
	"context"
	"fmt"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// PDFUseCase genera el documento imprimible de una orden de compra.
type PDFUseCase struct {
	orders    repository.PurchaseOrderRepository
	materials repository.RawMaterialReader
	generator PurchaseOrderPDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(orders repository.PurchaseOrderRepository, materials repository.RawMaterialReader, generator PurchaseOrderPDFGenerator) *PDFUseCase {
	return &PDFUseCase{orders: orders, materials: materials, generator: generator}
}

// Render devuelve los bytes del PDF y el nombre de archivo sugerido.
func (uc *PDFUseCase) Render(ctx context.Context, id string) ([]byte, string, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if order == nil {
		return nil, "", domain.ErrOrderNotFound
	}

	lines := make([]PurchaseOrderLineForPDF, 0, len(order.Lines))
	for _, l := range order.Lines {
		item := PurchaseOrderLineForPDF{
			MaterialName: l.MaterialID,
			Quantity:     l.Quantity,
			UnitPrice:    l.UnitPrice,
			Subtotal:     l.Subtotal,
		}
		m, err := uc.materials.GetByID(ctx, l.MaterialID)
		if err != nil {
			return nil, "", err
		}
		if m != nil {
			item.MaterialName = m.Name
			item.UnitMeasure = m.UnitMeasure
		}
		lines = append(lines, item)
	}

	b, err := uc.generator.GeneratePurchaseOrderPDF(ctx, order, lines)
	if err != nil {
		return nil, "", fmt.Errorf("generar pdf: %w", err)
	}
	return b, fmt.Sprintf("orden-compra-%s.pdf", order.Number), nil
}
