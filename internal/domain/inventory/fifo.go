package inventory

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// ConsumedLayer porción de una entrada tomada por el recorrido FIFO.
type ConsumedLayer struct {
	MovementID string
	Reference  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Cost       decimal.Decimal
}

// FIFOResult costo de consumir una cantidad según las entradas más antiguas.
type FIFOResult struct {
	Quantity  decimal.Decimal
	TotalCost decimal.Decimal
	UnitCost  decimal.Decimal // TotalCost / Quantity
	Layers    []ConsumedLayer
}

// SortLedger ordena por Timestamp ascendente y, a igual Timestamp, por orden de inserción.
func SortLedger(entries []*entity.StockMovement) []*entity.StockMovement {
	sorted := make([]*entity.StockMovement, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.Seq < b.Seq
	})
	return sorted
}

// ResolveFIFO recorre las Entradas de la más antigua a la más reciente acumulando
// min(pendiente, cantidad) * costo hasta cubrir quantity. Si las entradas no alcanzan
// retorna domain.ErrInsufficientHistory; nunca se aproxima con el costo promedio.
// Movimientos que no son Entrada se ignoran.
func ResolveFIFO(entries []*entity.StockMovement, quantity decimal.Decimal) (FIFOResult, error) {
	if !quantity.IsPositive() {
		return FIFOResult{}, domain.ErrInvalidInput
	}

	receipts := make([]*entity.StockMovement, 0, len(entries))
	for _, e := range entries {
		if e.Kind == entity.MovementEntrada {
			receipts = append(receipts, e)
		}
	}

	remaining := quantity
	total := decimal.Zero
	var layers []ConsumedLayer
	for _, e := range SortLedger(receipts) {
		if !remaining.IsPositive() {
			break
		}
		used := decimal.Min(remaining, e.Quantity)
		cost := used.Mul(e.UnitCost)
		total = total.Add(cost)
		remaining = remaining.Sub(used)
		layers = append(layers, ConsumedLayer{
			MovementID: e.ID,
			Reference:  e.Reference,
			Quantity:   used,
			UnitCost:   e.UnitCost,
			Cost:       cost,
		})
	}

	if remaining.IsPositive() {
		return FIFOResult{}, fmt.Errorf("%w: faltan %s unidades", domain.ErrInsufficientHistory, remaining.String())
	}

	return FIFOResult{
		Quantity:  quantity,
		TotalCost: total,
		UnitCost:  total.Div(quantity),
		Layers:    layers,
	}, nil
}
