package dto

import "github.com/shopspring/decimal"

// FIFOLayerDTO porción de una entrada consumida en el costeo FIFO.
type FIFOLayerDTO struct {
	MovementID string          `json:"movement_id"`
	Reference  string          `json:"reference"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Cost       decimal.Decimal `json:"cost"`
}

// FIFOCostResponse costo de consumir una cantidad de materia prima.
type FIFOCostResponse struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Layers     []FIFOLayerDTO  `json:"layers"`
}

// BOMLineCostDTO costo de una línea de la lista de materiales.
type BOMLineCostDTO struct {
	MaterialID       string          `json:"material_id"`
	MaterialName     string          `json:"material_name"`
	QuantityRequired decimal.Decimal `json:"quantity_required"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	TotalCost        decimal.Decimal `json:"total_cost"`
}

// ProductCostResponse costo de fabricación y rentabilidad de un producto.
type ProductCostResponse struct {
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	SalePrice   decimal.Decimal  `json:"sale_price"`
	Rentability decimal.Decimal  `json:"rentability"` // SalePrice - TotalCost
	MarginPct   decimal.Decimal  `json:"margin_pct"`  // Rentability / SalePrice * 100
	Lines       []BOMLineCostDTO `json:"lines"`
}

// MaterialShortfallDTO disponibilidad de una materia prima para producir.
type MaterialShortfallDTO struct {
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Needed       decimal.Decimal `json:"needed"`
	Available    decimal.Decimal `json:"available"`
	Shortfall    decimal.Decimal `json:"shortfall"`
	SupplierID   string          `json:"supplier_id"`
}

// ProductionValidationResponse resultado de validar stock para producir.
type ProductionValidationResponse struct {
	ProductID         string                 `json:"product_id"`
	QuantityToProduce decimal.Decimal        `json:"quantity_to_produce"`
	Sufficient        bool                   `json:"sufficient"`
	Materials         []MaterialShortfallDTO `json:"materials"`
}
