package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/inventory"
)

var t0 = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func entrada(id string, seq int64, qty, cost string, at time.Time) *entity.StockMovement {
	return &entity.StockMovement{
		ID: id, Seq: seq, MaterialID: "m1", Kind: entity.MovementEntrada,
		Quantity: dec(qty), UnitCost: dec(cost), Reference: id, Timestamp: at,
	}
}

func TestCostCalculator_PromedioPonderado(t *testing.T) {
	first := inventory.CostCalculator(decimal.Zero, decimal.Zero, dec("10"), dec("4.00"))
	assert.True(t, first.Equal(dec("4")), "sin stock previo toma el costo de la entrada: %s", first)

	second := inventory.CostCalculator(dec("10"), first, dec("10"), dec("6.00"))
	assert.True(t, second.Equal(dec("5")), "got %s", second)
}

func TestCostCalculator_StockNegativoTomaCostoEntrada(t *testing.T) {
	got := inventory.CostCalculator(dec("-3"), dec("9"), dec("5"), dec("2"))
	assert.True(t, got.Equal(dec("2")))
}

func TestResolveFIFO_ConsumeCapasMasAntiguas(t *testing.T) {
	ledger := []*entity.StockMovement{
		entrada("b", 2, "5", "8", t0.Add(time.Hour)),
		entrada("a", 1, "10", "5", t0),
	}

	res, err := inventory.ResolveFIFO(ledger, dec("12"))
	require.NoError(t, err)
	assert.True(t, res.TotalCost.Equal(dec("66")), "got %s", res.TotalCost)
	assert.True(t, res.UnitCost.Equal(dec("5.5")), "got %s", res.UnitCost)
	require.Len(t, res.Layers, 2)
	assert.Equal(t, "a", res.Layers[0].MovementID)
	assert.True(t, res.Layers[1].Quantity.Equal(dec("2")))
}

func TestResolveFIFO_HistorialInsuficiente(t *testing.T) {
	ledger := []*entity.StockMovement{
		entrada("a", 1, "10", "5", t0),
		entrada("b", 2, "5", "8", t0.Add(time.Hour)),
	}

	_, err := inventory.ResolveFIFO(ledger, dec("16"))
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestResolveFIFO_CantidadNoPositiva(t *testing.T) {
	_, err := inventory.ResolveFIFO(nil, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveFIFO_DesempatePorOrdenDeInsercion(t *testing.T) {
	ledger := []*entity.StockMovement{
		entrada("segunda", 2, "4", "9", t0),
		entrada("primera", 1, "4", "3", t0),
	}

	res, err := inventory.ResolveFIFO(ledger, dec("4"))
	require.NoError(t, err)
	assert.True(t, res.TotalCost.Equal(dec("12")), "got %s", res.TotalCost)
	assert.Equal(t, "primera", res.Layers[0].MovementID)
}

func TestResolveFIFO_IgnoraSalidasYAjustes(t *testing.T) {
	ledger := []*entity.StockMovement{
		entrada("a", 1, "10", "5", t0),
		{ID: "s", Seq: 2, Kind: entity.MovementSalida, Quantity: dec("10"), UnitCost: dec("5"), Timestamp: t0.Add(time.Minute)},
		{ID: "aj", Seq: 3, Kind: entity.MovementAjuste, Increase: true, Quantity: dec("50"), Timestamp: t0.Add(2 * time.Minute)},
	}

	res, err := inventory.ResolveFIFO(ledger, dec("10"))
	require.NoError(t, err)
	assert.True(t, res.TotalCost.Equal(dec("50")))

	_, err = inventory.ResolveFIFO(ledger, dec("11"))
	assert.ErrorIs(t, err, domain.ErrInsufficientHistory)
}

func TestReplayLedger_CancelacionRetiraSuAporte(t *testing.T) {
	ledger := []*entity.StockMovement{
		entrada("a", 1, "10", "4", t0),
		entrada("b", 2, "10", "6", t0.Add(time.Hour)),
		{ID: "c", Seq: 3, Kind: entity.MovementSalida, Quantity: dec("10"), UnitCost: dec("6"),
			Reference: entity.CancellationReference("b"), Timestamp: t0.Add(2 * time.Hour)},
	}

	pos := inventory.ReplayLedger(ledger)
	assert.True(t, pos.Quantity.Equal(dec("10")))
	assert.True(t, pos.UnitCost.Equal(dec("4")), "got %s", pos.UnitCost)
	assert.True(t, inventory.LedgerBalance(ledger).Equal(dec("10")))
}

func TestReplayLedger_StockEnCeroConservaUltimoCosto(t *testing.T) {
	ledger := []*entity.StockMovement{
		entrada("a", 1, "5", "7", t0),
		{ID: "s", Seq: 2, Kind: entity.MovementSalida, Quantity: dec("5"), UnitCost: dec("7"), Timestamp: t0.Add(time.Hour)},
	}

	pos := inventory.ReplayLedger(ledger)
	assert.True(t, pos.Quantity.IsZero())
	assert.True(t, pos.UnitCost.Equal(dec("7")))
}
