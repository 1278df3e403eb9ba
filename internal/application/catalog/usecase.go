package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// CatalogUseCase alta de materias primas y productos y edición de la lista de materiales.
// Nunca toca stock ni costo promedio: eso lo hace el motor de costeo.
type CatalogUseCase struct {
	materials repository.MaterialCatalogWriter
	products  repository.ProductRepository
	bom       repository.BOMRepository
	now       func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(materials repository.MaterialCatalogWriter, products repository.ProductRepository, bom repository.BOMRepository) *CatalogUseCase {
	return &CatalogUseCase{materials: materials, products: products, bom: bom, now: time.Now}
}

// CreateMaterial da de alta una materia prima activa con stock y costo en cero.
func (uc *CatalogUseCase) CreateMaterial(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || strings.TrimSpace(in.UnitMeasure) == "" {
		return nil, fmt.Errorf("%w: nombre y unidad de medida requeridos", domain.ErrInvalidInput)
	}
	if in.MinimumQuantity.IsNegative() {
		return nil, fmt.Errorf("%w: mínimo no puede ser negativo", domain.ErrInvalidInput)
	}
	now := uc.now()
	m := &entity.RawMaterial{
		ID:              uuid.New().String(),
		Name:            name,
		UnitMeasure:     strings.TrimSpace(in.UnitMeasure),
		CurrentUnitCost: decimal.Zero,
		OnHandQuantity:  decimal.Zero,
		MinimumQuantity: in.MinimumQuantity,
		Status:          entity.MaterialActive,
		SupplierID:      in.SupplierID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.materials.Create(ctx, m); err != nil {
		return nil, err
	}
	out := ToMaterialResponse(m)
	return &out, nil
}

// GetMaterial devuelve la materia prima con stock y costo vigentes.
func (uc *CatalogUseCase) GetMaterial(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.materials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMaterialNotFound
	}
	out := ToMaterialResponse(m)
	return &out, nil
}

// RetireMaterial baja lógica: el historial del kardex se conserva y no se admiten nuevas compras.
func (uc *CatalogUseCase) RetireMaterial(ctx context.Context, id string) error {
	m, err := uc.materials.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.ErrMaterialNotFound
	}
	if !m.IsActive() {
		return nil
	}
	m.Status = entity.MaterialRetired
	m.UpdatedAt = uc.now()
	return uc.materials.Update(ctx, m)
}

// CreateProduct da de alta un producto terminado.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: sku y nombre requeridos", domain.ErrInvalidInput)
	}
	if in.SalePrice.IsNegative() {
		return nil, fmt.Errorf("%w: precio de venta negativo", domain.ErrInvalidInput)
	}
	now := uc.now()
	p := &entity.Product{
		ID:        uuid.New().String(),
		SKU:       strings.TrimSpace(in.SKU),
		Name:      strings.TrimSpace(in.Name),
		SalePrice: in.SalePrice,
		Status:    entity.ProductActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return &dto.ProductResponse{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		SalePrice: p.SalePrice,
		Active:    true,
		CreatedAt: p.CreatedAt,
	}, nil
}

// AddBOMLine agrega una materia prima a la lista del producto, tomando como foto el costo
// promedio vigente. Una segunda línea para el mismo par retorna domain.ErrDuplicate.
func (uc *CatalogUseCase) AddBOMLine(ctx context.Context, productID string, in dto.BOMLineRequest) (*dto.BOMLineResponse, error) {
	if !in.QuantityRequired.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad requerida debe ser mayor a cero", domain.ErrInvalidInput)
	}
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	material, err := uc.materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}
	if !material.IsActive() {
		return nil, domain.ErrMaterialRetired
	}

	now := uc.now()
	line := &entity.BOMLine{
		ID:               uuid.New().String(),
		ProductID:        productID,
		MaterialID:       material.ID,
		QuantityRequired: in.QuantityRequired,
		UnitCost:         material.CurrentUnitCost,
		TotalCost:        material.CurrentUnitCost.Mul(in.QuantityRequired),
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.bom.Create(ctx, line); err != nil {
		return nil, err
	}
	out := toBOMLineResponse(line)
	return &out, nil
}

// UpdateBOMLine cambia la cantidad requerida; el total de la foto se recalcula con el costo guardado.
func (uc *CatalogUseCase) UpdateBOMLine(ctx context.Context, lineID string, in dto.UpdateBOMLineRequest) (*dto.BOMLineResponse, error) {
	if !in.QuantityRequired.IsPositive() {
		return nil, fmt.Errorf("%w: cantidad requerida debe ser mayor a cero", domain.ErrInvalidInput)
	}
	line, err := uc.bom.GetByID(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, domain.ErrLineNotFound
	}
	line.QuantityRequired = in.QuantityRequired
	line.TotalCost = line.UnitCost.Mul(in.QuantityRequired)
	line.Notes = in.Notes
	line.UpdatedAt = uc.now()
	if err := uc.bom.Update(ctx, line); err != nil {
		return nil, err
	}
	out := toBOMLineResponse(line)
	return &out, nil
}

// RemoveBOMLine elimina una línea de la lista de materiales.
func (uc *CatalogUseCase) RemoveBOMLine(ctx context.Context, lineID string) error {
	line, err := uc.bom.GetByID(ctx, lineID)
	if err != nil {
		return err
	}
	if line == nil {
		return domain.ErrLineNotFound
	}
	return uc.bom.Delete(ctx, lineID)
}

// ListBOM líneas de la lista de materiales de un producto.
func (uc *CatalogUseCase) ListBOM(ctx context.Context, productID string) ([]dto.BOMLineResponse, error) {
	product, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	lines, err := uc.bom.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BOMLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, toBOMLineResponse(l))
	}
	return out, nil
}

// ToMaterialResponse mapea la entidad al DTO de respuesta.
func ToMaterialResponse(m *entity.RawMaterial) dto.MaterialResponse {
	return dto.MaterialResponse{
		ID:              m.ID,
		Name:            m.Name,
		UnitMeasure:     m.UnitMeasure,
		CurrentUnitCost: m.CurrentUnitCost,
		OnHandQuantity:  m.OnHandQuantity,
		StockValue:      m.StockValue(),
		MinimumQuantity: m.MinimumQuantity,
		Active:          m.IsActive(),
		SupplierID:      m.SupplierID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toBOMLineResponse(l *entity.BOMLine) dto.BOMLineResponse {
	return dto.BOMLineResponse{
		ID:               l.ID,
		ProductID:        l.ProductID,
		MaterialID:       l.MaterialID,
		QuantityRequired: l.QuantityRequired,
		UnitCost:         l.UnitCost,
		TotalCost:        l.TotalCost,
		Notes:            l.Notes,
	}
}
