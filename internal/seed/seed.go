// Package seed carga un catálogo inicial (materias primas, compras, productos y listas
// de materiales) desde un archivo YAML usando los casos de uso de la aplicación, de modo
// que el kardex y los costos promedio queden igual que si se hubiera cargado por la API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/costeo-api/internal/application/catalog"
	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// ErrInvalidCatalog el archivo no describe un catálogo consistente.
var ErrInvalidCatalog = errors.New("catálogo inválido")

const dateLayout = "2006-01-02"

// Catalog contenido del archivo de carga.
type Catalog struct {
	Materials []Material `yaml:"materials"`
	Purchases []Purchase `yaml:"purchases"`
	Products  []Product  `yaml:"products"`
}

// Material materia prima; Key es el alias usado por compras y listas de materiales.
type Material struct {
	Key             string `yaml:"key"`
	Name            string `yaml:"name"`
	UnitMeasure     string `yaml:"unit_measure"`
	MinimumQuantity string `yaml:"minimum_quantity"`
	SupplierID      string `yaml:"supplier_id"`
}

// Purchase orden de compra. State vacío deja la orden Pendiente.
type Purchase struct {
	SupplierID string         `yaml:"supplier_id"`
	Date       string         `yaml:"date"`
	State      string         `yaml:"state"`
	Notes      string         `yaml:"notes"`
	Lines      []PurchaseLine `yaml:"lines"`
}

// PurchaseLine línea de compra.
type PurchaseLine struct {
	Material  string `yaml:"material"`
	Quantity  string `yaml:"quantity"`
	UnitPrice string `yaml:"unit_price"`
}

// Product producto terminado con su lista de materiales.
type Product struct {
	SKU       string    `yaml:"sku"`
	Name      string    `yaml:"name"`
	SalePrice string    `yaml:"sale_price"`
	BOM       []BOMLine `yaml:"bom"`
}

// BOMLine componente de un producto.
type BOMLine struct {
	Material string `yaml:"material"`
	Quantity string `yaml:"quantity"`
	Notes    string `yaml:"notes"`
}

// Summary resultado de aplicar un catálogo.
type Summary struct {
	Materials int
	Purchases int
	Products  int
	BOMLines  int
	SKUs      map[string]string // sku → id del producto creado
}

// LoadFromFile lee y valida un catálogo YAML.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo: %w", err)
	}
	return LoadFromBytes(data)
}

// LoadFromBytes decodifica y valida un catálogo YAML.
func LoadFromBytes(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsear catálogo: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Validate comprueba alias únicos, referencias existentes y valores numéricos.
func (c *Catalog) Validate() error {
	keys := make(map[string]bool, len(c.Materials))
	for i, m := range c.Materials {
		if m.Key == "" || m.Name == "" {
			return fmt.Errorf("%w: materials[%d] requiere key y name", ErrInvalidCatalog, i)
		}
		if keys[m.Key] {
			return fmt.Errorf("%w: key duplicada %q", ErrInvalidCatalog, m.Key)
		}
		keys[m.Key] = true
		if _, err := parseDecimal(m.MinimumQuantity); err != nil {
			return fmt.Errorf("%w: materials[%d].minimum_quantity: %v", ErrInvalidCatalog, i, err)
		}
	}

	for i, p := range c.Purchases {
		if p.Date != "" {
			if _, err := time.Parse(dateLayout, p.Date); err != nil {
				return fmt.Errorf("%w: purchases[%d].date: %v", ErrInvalidCatalog, i, err)
			}
		}
		if p.State != "" {
			if _, ok := entity.ParseOrderState(p.State); !ok {
				return fmt.Errorf("%w: purchases[%d].state %q", ErrInvalidCatalog, i, p.State)
			}
		}
		for j, l := range p.Lines {
			if !keys[l.Material] {
				return fmt.Errorf("%w: purchases[%d].lines[%d] material desconocido %q", ErrInvalidCatalog, i, j, l.Material)
			}
			if _, err := parseDecimal(l.Quantity); err != nil {
				return fmt.Errorf("%w: purchases[%d].lines[%d].quantity: %v", ErrInvalidCatalog, i, j, err)
			}
			if _, err := parseDecimal(l.UnitPrice); err != nil {
				return fmt.Errorf("%w: purchases[%d].lines[%d].unit_price: %v", ErrInvalidCatalog, i, j, err)
			}
		}
	}

	for i, p := range c.Products {
		if p.SKU == "" || p.Name == "" {
			return fmt.Errorf("%w: products[%d] requiere sku y name", ErrInvalidCatalog, i)
		}
		if _, err := parseDecimal(p.SalePrice); err != nil {
			return fmt.Errorf("%w: products[%d].sale_price: %v", ErrInvalidCatalog, i, err)
		}
		for j, l := range p.BOM {
			if !keys[l.Material] {
				return fmt.Errorf("%w: products[%d].bom[%d] material desconocido %q", ErrInvalidCatalog, i, j, l.Material)
			}
			if _, err := parseDecimal(l.Quantity); err != nil {
				return fmt.Errorf("%w: products[%d].bom[%d].quantity: %v", ErrInvalidCatalog, i, j, err)
			}
		}
	}
	return nil
}

// Loader aplica catálogos sobre los casos de uso.
type Loader struct {
	catalog   *catalog.CatalogUseCase
	purchases *purchasing.PurchaseOrderUseCase
}

// NewLoader construye el cargador.
func NewLoader(catalogUC *catalog.CatalogUseCase, purchasesUC *purchasing.PurchaseOrderUseCase) *Loader {
	return &Loader{catalog: catalogUC, purchases: purchasesUC}
}

// Apply crea materias primas, registra compras y luego arma productos y listas de
// materiales, para que cada línea tome la foto del costo promedio ya alimentado.
// No es atómico: un error deja aplicado lo anterior.
func (l *Loader) Apply(ctx context.Context, cat *Catalog) (*Summary, error) {
	sum := &Summary{SKUs: make(map[string]string, len(cat.Products))}
	ids := make(map[string]string, len(cat.Materials))

	for _, m := range cat.Materials {
		minQty, _ := parseDecimal(m.MinimumQuantity)
		created, err := l.catalog.CreateMaterial(ctx, dto.CreateMaterialRequest{
			Name:            m.Name,
			UnitMeasure:     m.UnitMeasure,
			MinimumQuantity: minQty,
			SupplierID:      m.SupplierID,
		})
		if err != nil {
			return sum, fmt.Errorf("material %q: %w", m.Key, err)
		}
		ids[m.Key] = created.ID
		sum.Materials++
	}

	for i, p := range cat.Purchases {
		req := dto.PurchaseOrderRequest{SupplierID: p.SupplierID, Notes: p.Notes}
		if p.Date != "" {
			req.OrderDate, _ = time.Parse(dateLayout, p.Date)
		}
		for _, line := range p.Lines {
			qty, _ := parseDecimal(line.Quantity)
			price, _ := parseDecimal(line.UnitPrice)
			req.Lines = append(req.Lines, dto.PurchaseOrderLineRequest{
				MaterialID: ids[line.Material],
				Quantity:   qty,
				UnitPrice:  price,
			})
		}
		order, err := l.purchases.Create(ctx, req)
		if err != nil {
			return sum, fmt.Errorf("compra %d: %w", i, err)
		}
		if p.State != "" && p.State != entity.OrderPendiente.String() {
			if _, err := l.purchases.ChangeState(ctx, order.ID, p.State); err != nil {
				return sum, fmt.Errorf("compra %s: %w", order.Number, err)
			}
		}
		sum.Purchases++
	}

	for _, p := range cat.Products {
		price, _ := parseDecimal(p.SalePrice)
		product, err := l.catalog.CreateProduct(ctx, dto.CreateProductRequest{SKU: p.SKU, Name: p.Name, SalePrice: price})
		if err != nil {
			return sum, fmt.Errorf("producto %q: %w", p.SKU, err)
		}
		sum.Products++
		sum.SKUs[p.SKU] = product.ID
		for _, line := range p.BOM {
			qty, _ := parseDecimal(line.Quantity)
			if _, err := l.catalog.AddBOMLine(ctx, product.ID, dto.BOMLineRequest{
				MaterialID:       ids[line.Material],
				QuantityRequired: qty,
				Notes:            line.Notes,
			}); err != nil {
				return sum, fmt.Errorf("producto %q material %q: %w", p.SKU, line.Material, err)
			}
			sum.BOMLines++
		}
	}
	return sum, nil
}

// parseDecimal vacío equivale a cero.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
