package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/materials/:id/adjustments.
// Delta positivo suma stock, negativo lo resta.
type AdjustStockRequest struct {
	Delta     decimal.Decimal `json:"delta"`
	Reference string          `json:"reference,omitempty"`
	Notes     string          `json:"notes,omitempty"`
}

// MovementResponse movimiento del kardex en respuestas.
type MovementResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Kind       string          `json:"kind"`
	Quantity   decimal.Decimal `json:"quantity"`
	Delta      decimal.Decimal `json:"delta"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Reference  string          `json:"reference"`
	Notes      string          `json:"notes,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// LedgerAuditResponse conciliación del stock disponible con el kardex.
type LedgerAuditResponse struct {
	MaterialID      string          `json:"material_id"`
	OnHandQuantity  decimal.Decimal `json:"on_hand_quantity"`
	LedgerBalance   decimal.Decimal `json:"ledger_balance"`
	CurrentUnitCost decimal.Decimal `json:"current_unit_cost"`
	ReplayedCost    decimal.Decimal `json:"replayed_unit_cost"`
	Movements       int             `json:"movements"`
	Consistent      bool            `json:"consistent"`
}

// LowStockDTO materia prima bajo su punto de reorden.
type LowStockDTO struct {
	MaterialID      string          `json:"material_id"`
	Name            string          `json:"name"`
	OnHandQuantity  decimal.Decimal `json:"on_hand_quantity"`
	MinimumQuantity decimal.Decimal `json:"minimum_quantity"`
	Deficit         decimal.Decimal `json:"deficit"`
	SupplierID      string          `json:"supplier_id"`
}
