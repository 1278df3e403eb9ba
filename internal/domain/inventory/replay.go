package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// LedgerPosition posición de una materia prima reconstruida desde su kardex.
type LedgerPosition struct {
	Quantity decimal.Decimal
	Value    decimal.Decimal
	UnitCost decimal.Decimal
}

// ReplayLedger reconstruye cantidad, valor y costo promedio recorriendo el kardex en orden.
// Las entradas suman cantidad*costo al valor; las salidas restan cantidad*costo registrado,
// de modo que la salida de cancelación de una compra retira exactamente su aporte.
// Si el stock llega a cero se conserva el último costo conocido.
func ReplayLedger(entries []*entity.StockMovement) LedgerPosition {
	var pos LedgerPosition
	for _, e := range SortLedger(entries) {
		delta := e.Delta()
		if delta.IsZero() {
			continue
		}
		if delta.IsPositive() {
			pos.Quantity = pos.Quantity.Add(e.Quantity)
			pos.Value = pos.Value.Add(e.TotalCost())
		} else {
			pos.Quantity = pos.Quantity.Sub(e.Quantity)
			pos.Value = pos.Value.Sub(e.TotalCost())
		}
		if !pos.Quantity.IsPositive() {
			pos.Value = decimal.Zero
			continue
		}
		if pos.Value.IsNegative() {
			pos.Value = decimal.Zero
		}
		pos.UnitCost = pos.Value.Div(pos.Quantity)
	}
	return pos
}

// LedgerBalance suma con signo de todos los movimientos (Entrada +, Salida −, Ajuste ±).
func LedgerBalance(entries []*entity.StockMovement) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range entries {
		sum = sum.Add(e.Delta())
	}
	return sum
}
