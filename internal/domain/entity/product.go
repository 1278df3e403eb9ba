package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus ciclo de vida de un producto terminado.
type ProductStatus int

const (
	ProductActive ProductStatus = iota + 1
	ProductRetired
)

// Product representa un producto IoT terminado. Su costo de fabricación
// se calcula siempre desde la lista de materiales (BOM), no se almacena.
type Product struct {
	ID        string
	SKU       string
	Name      string
	SalePrice decimal.Decimal
	Status    ProductStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BOMLine línea de la lista de materiales: cuánta materia prima requiere una unidad del producto.
// UnitCost y TotalCost son una foto tomada al crear la línea; el costo vigente lo da el motor.
type BOMLine struct {
	ID               string
	ProductID        string
	MaterialID       string
	QuantityRequired decimal.Decimal
	UnitCost         decimal.Decimal
	TotalCost        decimal.Decimal
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
