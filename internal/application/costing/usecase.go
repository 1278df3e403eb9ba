// Package costing responde consultas de costo: FIFO por materia prima, costo de
// fabricación por lista de materiales y disponibilidad de stock para producir.
// Todas las operaciones son de solo lectura.
package costing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	invdomain "github.com/jhoicas/costeo-api/internal/domain/inventory"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var hundred = decimal.NewFromInt(100)

// CostingUseCase resolutor FIFO, consolidado de costo BOM y validador de disponibilidad.
type CostingUseCase struct {
	ledger    *inventory.Ledger
	materials repository.RawMaterialReader
	products  repository.ProductRepository
	bom       repository.BOMRepository
}

// NewCostingUseCase construye el caso de uso.
func NewCostingUseCase(
	ledger *inventory.Ledger,
	materials repository.RawMaterialReader,
	products repository.ProductRepository,
	bom repository.BOMRepository,
) *CostingUseCase {
	return &CostingUseCase{
		ledger:    ledger,
		materials: materials,
		products:  products,
		bom:       bom,
	}
}

// ResolveConsumptionCost costo de consumir quantity de la materia prima según FIFO.
// Retorna domain.ErrInsufficientHistory si las Entradas registradas no cubren la cantidad.
func (uc *CostingUseCase) ResolveConsumptionCost(ctx context.Context, materialID string, quantity decimal.Decimal) (*dto.FIFOCostResponse, error) {
	material, err := uc.material(ctx, materialID)
	if err != nil {
		return nil, err
	}
	res, err := uc.resolve(ctx, material, quantity)
	if err != nil {
		return nil, err
	}
	layers := make([]dto.FIFOLayerDTO, 0, len(res.Layers))
	for _, l := range res.Layers {
		layers = append(layers, dto.FIFOLayerDTO{
			MovementID: l.MovementID,
			Reference:  l.Reference,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			Cost:       l.Cost,
		})
	}
	return &dto.FIFOCostResponse{
		MaterialID: materialID,
		Quantity:   res.Quantity,
		TotalCost:  res.TotalCost,
		UnitCost:   res.UnitCost,
		Layers:     layers,
	}, nil
}

// ComputeProductCost suma el costo FIFO de cada línea de la lista de materiales del producto.
// Un producto cuyas materias primas nunca se recibieron no puede costearse.
func (uc *CostingUseCase) ComputeProductCost(ctx context.Context, productID string) (*dto.ProductCostResponse, error) {
	product, lines, err := uc.productWithBOM(ctx, productID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	out := make([]dto.BOMLineCostDTO, 0, len(lines))
	for _, line := range lines {
		material, err := uc.material(ctx, line.MaterialID)
		if err != nil {
			return nil, err
		}
		res, err := uc.resolve(ctx, material, line.QuantityRequired)
		if err != nil {
			return nil, err
		}
		total = total.Add(res.TotalCost)
		out = append(out, dto.BOMLineCostDTO{
			MaterialID:       material.ID,
			MaterialName:     material.Name,
			QuantityRequired: line.QuantityRequired,
			UnitCost:         res.UnitCost,
			TotalCost:        res.TotalCost,
		})
	}

	rentability, margin := Rentability(product.SalePrice, total)
	return &dto.ProductCostResponse{
		ProductID:   product.ID,
		ProductName: product.Name,
		TotalCost:   total,
		SalePrice:   product.SalePrice,
		Rentability: rentability,
		MarginPct:   margin,
		Lines:       out,
	}, nil
}

// ValidateProduction compara lo que requiere producir quantity unidades contra el stock disponible.
func (uc *CostingUseCase) ValidateProduction(ctx context.Context, productID string, quantity decimal.Decimal) (*dto.ProductionValidationResponse, error) {
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	_, lines, err := uc.productWithBOM(ctx, productID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProductionValidationResponse{
		ProductID:         productID,
		QuantityToProduce: quantity,
		Sufficient:        true,
		Materials:         make([]dto.MaterialShortfallDTO, 0, len(lines)),
	}
	for _, line := range lines {
		material, err := uc.material(ctx, line.MaterialID)
		if err != nil {
			return nil, err
		}
		needed := line.QuantityRequired.Mul(quantity)
		shortfall := needed.Sub(material.OnHandQuantity)
		if shortfall.IsPositive() {
			resp.Sufficient = false
		} else {
			shortfall = decimal.Zero
		}
		resp.Materials = append(resp.Materials, dto.MaterialShortfallDTO{
			MaterialID:   material.ID,
			MaterialName: material.Name,
			Needed:       needed,
			Available:    material.OnHandQuantity,
			Shortfall:    shortfall,
			SupplierID:   material.SupplierID,
		})
	}
	return resp, nil
}

// Rentability rentabilidad = venta - costo y margen % = rentabilidad / venta * 100
// (0 si el precio de venta es 0). El margen se redondea a 2 decimales.
func Rentability(salePrice, totalCost decimal.Decimal) (rentability, marginPct decimal.Decimal) {
	rentability = salePrice.Sub(totalCost)
	if salePrice.IsZero() {
		return rentability, decimal.Zero
	}
	return rentability, rentability.Div(salePrice).Mul(hundred).Round(2)
}

func (uc *CostingUseCase) resolve(ctx context.Context, material *entity.RawMaterial, quantity decimal.Decimal) (invdomain.FIFOResult, error) {
	receipts, err := uc.ledger.Receipts(ctx, material.ID)
	if err != nil {
		return invdomain.FIFOResult{}, err
	}
	res, err := invdomain.ResolveFIFO(receipts, quantity)
	if err != nil {
		return invdomain.FIFOResult{}, fmt.Errorf("materia prima %s: %w", material.Name, err)
	}
	return res, nil
}

func (uc *CostingUseCase) material(ctx context.Context, id string) (*entity.RawMaterial, error) {
	material, err := uc.materials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}
	return material, nil
}

func (uc *CostingUseCase) productWithBOM(ctx context.Context, productID string) (*entity.Product, []*entity.BOMLine, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, domain.ErrProductNotFound
	}
	lines, err := uc.bom.ListByProduct(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	return product, lines, nil
}
