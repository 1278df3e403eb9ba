package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/materials.
type CreateMaterialRequest struct {
	Name            string          `json:"name"`
	UnitMeasure     string          `json:"unit_measure"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
	SupplierID      string          `json:"supplier_id"`
}

// MaterialResponse materia prima en respuestas.
type MaterialResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	UnitMeasure     string          `json:"unit_measure"`
	CurrentUnitCost decimal.Decimal `json:"current_unit_cost"`
	OnHandQuantity  decimal.Decimal `json:"on_hand_quantity"`
	StockValue      decimal.Decimal `json:"stock_value"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
	Active          bool            `json:"active"`
	SupplierID      string          `json:"supplier_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	SalePrice decimal.Decimal `json:"sale_price"`
}

// ProductResponse producto en respuestas.
type ProductResponse struct {
	ID        string          `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// BOMLineRequest body para agregar una línea a la lista de materiales.
type BOMLineRequest struct {
	MaterialID       string          `json:"material_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	Notes            string          `json:"notes,omitempty"`
}

// UpdateBOMLineRequest body para editar una línea de la lista de materiales.
type UpdateBOMLineRequest struct {
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	Notes            string          `json:"notes,omitempty"`
}

// BOMLineResponse línea de lista de materiales en respuestas.
type BOMLineResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	MaterialID       string          `json:"material_id"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	UnitCost         decimal.Decimal `json:"unit_cost"`  // foto al crear la línea
	TotalCost        decimal.Decimal `json:"total_cost"` // foto al crear la línea
	Notes            string          `json:"notes,omitempty"`
}
