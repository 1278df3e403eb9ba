package catalog_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/application/catalog"
	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
	"github.com/jhoicas/costeo-api/internal/infrastructure/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newCatalog() (*catalog.CatalogUseCase, *memory.Store) {
	store := memory.NewStore()
	return catalog.NewCatalogUseCase(store.Materials(), store.Products(), store.BOM()), store
}

// catalogOnly expone solo alta y edición; los métodos de stock del repositorio quedan ocultos.
type catalogOnly struct {
	repository.MaterialCatalogWriter
}

func TestCatalogo_SinCapacidadDeStock(t *testing.T) {
	store := memory.NewStore()
	uc := catalog.NewCatalogUseCase(catalogOnly{store.Materials()}, store.Products(), store.BOM())
	ctx := context.Background()

	m, err := uc.CreateMaterial(ctx, dto.CreateMaterialRequest{Name: "Sensor", UnitMeasure: "und"})
	require.NoError(t, err)
	require.NoError(t, uc.RetireMaterial(ctx, m.ID))

	got, err := uc.GetMaterial(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, isWriter := any(catalogOnly{store.Materials()}).(repository.MaterialStockWriter)
	assert.False(t, isWriter)
}

func TestCreateMaterial(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()

	m, err := uc.CreateMaterial(ctx, dto.CreateMaterialRequest{Name: "  Sensor ", UnitMeasure: "und", MinimumQuantity: dec("5")})
	require.NoError(t, err)
	assert.Equal(t, "Sensor", m.Name)
	assert.True(t, m.Active)
	assert.True(t, m.OnHandQuantity.IsZero())
	assert.True(t, m.CurrentUnitCost.IsZero())

	_, err = uc.CreateMaterial(ctx, dto.CreateMaterialRequest{Name: "Sin unidad"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CreateMaterial(ctx, dto.CreateMaterialRequest{Name: "X", UnitMeasure: "m", MinimumQuantity: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.GetMaterial(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)
}

func TestRetireMaterial_EsIdempotente(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()
	m, err := uc.CreateMaterial(ctx, dto.CreateMaterialRequest{Name: "Sensor", UnitMeasure: "und"})
	require.NoError(t, err)

	require.NoError(t, uc.RetireMaterial(ctx, m.ID))
	require.NoError(t, uc.RetireMaterial(ctx, m.ID))

	got, err := uc.GetMaterial(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	assert.ErrorIs(t, uc.RetireMaterial(ctx, "no-existe"), domain.ErrMaterialNotFound)
}

func TestCreateProduct_SKUDuplicado(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()

	_, err := uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "EST-1", Name: "Estación", SalePrice: dec("100")})
	require.NoError(t, err)
	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "EST-1", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "EST-2", Name: "Negativo", SalePrice: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBOM_CicloDeVida(t *testing.T) {
	uc, store := newCatalog()
	ctx := context.Background()

	m, err := uc.CreateMaterial(ctx, dto.CreateMaterialRequest{Name: "Sensor", UnitMeasure: "und"})
	require.NoError(t, err)
	require.NoError(t, store.Materials().UpdateStockAndCost(ctx, m.ID, dec("10"), dec("2.5")))
	p, err := uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "EST-1", Name: "Estación"})
	require.NoError(t, err)

	line, err := uc.AddBOMLine(ctx, p.ID, dto.BOMLineRequest{MaterialID: m.ID, QuantityRequired: dec("4")})
	require.NoError(t, err)
	assert.True(t, dec("2.5").Equal(line.UnitCost))
	assert.True(t, dec("10").Equal(line.TotalCost))

	_, err = uc.AddBOMLine(ctx, p.ID, dto.BOMLineRequest{MaterialID: m.ID, QuantityRequired: dec("1")})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// la foto de costo no cambia con compras posteriores
	require.NoError(t, store.Materials().UpdateStockAndCost(ctx, m.ID, dec("20"), dec("9")))
	updated, err := uc.UpdateBOMLine(ctx, line.ID, dto.UpdateBOMLineRequest{QuantityRequired: dec("2")})
	require.NoError(t, err)
	assert.True(t, dec("2.5").Equal(updated.UnitCost))
	assert.True(t, dec("5").Equal(updated.TotalCost))

	lines, err := uc.ListBOM(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)

	require.NoError(t, uc.RemoveBOMLine(ctx, line.ID))
	assert.ErrorIs(t, uc.RemoveBOMLine(ctx, line.ID), domain.ErrLineNotFound)
	_, err = uc.UpdateBOMLine(ctx, line.ID, dto.UpdateBOMLineRequest{QuantityRequired: dec("1")})
	assert.ErrorIs(t, err, domain.ErrLineNotFound)

	_, err = uc.ListBOM(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestAddBOMLine_Validaciones(t *testing.T) {
	uc, _ := newCatalog()
	ctx := context.Background()
	m, err := uc.CreateMaterial(ctx, dto.CreateMaterialRequest{Name: "Sensor", UnitMeasure: "und"})
	require.NoError(t, err)
	p, err := uc.CreateProduct(ctx, dto.CreateProductRequest{SKU: "EST-1", Name: "Estación"})
	require.NoError(t, err)

	_, err = uc.AddBOMLine(ctx, p.ID, dto.BOMLineRequest{MaterialID: m.ID, QuantityRequired: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.AddBOMLine(ctx, "no-existe", dto.BOMLineRequest{MaterialID: m.ID, QuantityRequired: dec("1")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = uc.AddBOMLine(ctx, p.ID, dto.BOMLineRequest{MaterialID: "no-existe", QuantityRequired: dec("1")})
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)

	require.NoError(t, uc.RetireMaterial(ctx, m.ID))
	_, err = uc.AddBOMLine(ctx, p.ID, dto.BOMLineRequest{MaterialID: m.ID, QuantityRequired: dec("1")})
	assert.ErrorIs(t, err, domain.ErrMaterialRetired)
}
