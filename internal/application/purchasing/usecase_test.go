package purchasing_test

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/bootstrap"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	invdomain "github.com/jhoicas/costeo-api/internal/domain/inventory"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
	"github.com/jhoicas/costeo-api/internal/infrastructure/memory"
	"github.com/jhoicas/costeo-api/pkg/config"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

var fixedNow = time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	app   *bootstrap.Container
}

func newFixture(t *testing.T, recompute bool) *fixture {
	t.Helper()
	store := memory.NewStore()
	app := bootstrap.New(store.Materials(), store.Movements(), store.Products(), store.BOM(), store.Orders(), store,
		config.CostingConfig{RecomputeOnReversal: recompute, OrderPrefix: "CP"}, logger.Nop())
	app.Purchases.WithClock(func() time.Time { return fixedNow })
	return &fixture{store: store, app: app}
}

func (f *fixture) material(t *testing.T, name string) string {
	t.Helper()
	m, err := f.app.Catalog.CreateMaterial(context.Background(), dto.CreateMaterialRequest{Name: name, UnitMeasure: "und"})
	require.NoError(t, err)
	return m.ID
}

func (f *fixture) stock(t *testing.T, id string) (qty, cost decimal.Decimal) {
	t.Helper()
	m, err := f.store.Materials().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.OnHandQuantity, m.CurrentUnitCost
}

func (f *fixture) ledger(t *testing.T, id string) []*entity.StockMovement {
	t.Helper()
	entries, err := f.store.Movements().ListByMaterial(context.Background(), id)
	require.NoError(t, err)
	return entries
}

func (f *fixture) byReference(t *testing.T, ref string) []*entity.StockMovement {
	t.Helper()
	entries, err := f.store.Movements().ListByReference(context.Background(), ref)
	require.NoError(t, err)
	return entries
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(materialID, qty, price string) dto.PurchaseOrderLineRequest {
	return dto.PurchaseOrderLineRequest{MaterialID: materialID, Quantity: dec(qty), UnitPrice: dec(price)}
}

func order(lines ...dto.PurchaseOrderLineRequest) dto.PurchaseOrderRequest {
	return dto.PurchaseOrderRequest{SupplierID: "prov-1", Lines: lines}
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got)
}

func TestCreate_NumeraYTotaliza(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m1 := f.material(t, "Sensor")
	m2 := f.material(t, "Carcasa")

	out, err := f.app.Purchases.Create(ctx, order(line(m1, "10", "4"), line(m2, "3", "7.5")))
	require.NoError(t, err)

	assert.Equal(t, "CP-202603-0001", out.Number)
	assert.Equal(t, "Pendiente", out.State)
	assertDec(t, "62.5", out.Total, "total")
	assert.True(t, out.OrderDate.Equal(fixedNow))

	qty, cost := f.stock(t, m1)
	assertDec(t, "10", qty, "stock m1")
	assertDec(t, "4", cost, "costo m1")

	entries := f.byReference(t, out.Number)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, entity.MovementEntrada, e.Kind)
	}
}

func TestCreate_PromedioPonderado(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	_, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4.00")))
	require.NoError(t, err)
	qty, cost := f.stock(t, m)
	assertDec(t, "10", qty, "stock")
	assertDec(t, "4", cost, "costo")

	_, err = f.app.Purchases.Create(ctx, order(line(m, "10", "6.00")))
	require.NoError(t, err)
	qty, cost = f.stock(t, m)
	assertDec(t, "20", qty, "stock")
	assertDec(t, "5", cost, "costo")
}

func TestCreate_NumeracionSaltaHuecos(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	first, err := f.app.Purchases.Create(ctx, order(line(m, "1", "1")))
	require.NoError(t, err)
	second, err := f.app.Purchases.Create(ctx, order(line(m, "1", "1")))
	require.NoError(t, err)
	assert.Equal(t, "CP-202603-0002", second.Number)

	require.NoError(t, f.app.Purchases.Delete(ctx, first.ID))

	third, err := f.app.Purchases.Create(ctx, order(line(m, "1", "1")))
	require.NoError(t, err)
	assert.Equal(t, "CP-202603-0003", third.Number)
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	_, err := f.app.Purchases.Create(ctx, dto.PurchaseOrderRequest{Lines: []dto.PurchaseOrderLineRequest{line(m, "1", "1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.app.Purchases.Create(ctx, order())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.app.Purchases.Create(ctx, order(line(m, "0", "1")))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)

	_, err = f.app.Purchases.Create(ctx, order(line(m, "1", "-1")))
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
}

func TestCreate_MateriaPrimaInexistenteNoDejaEfectos(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	_, err := f.app.Purchases.Create(ctx, order(line(m, "5", "2"), line("no-existe", "1", "1")))
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)

	qty, _ := f.stock(t, m)
	assert.True(t, qty.IsZero())
	assert.Empty(t, f.ledger(t, m))
	n, err := f.store.Orders().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreate_MateriaRetiradaRevierteLineasPrevias(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	activa := f.material(t, "Activa")
	retirada := f.material(t, "Retirada")
	require.NoError(t, f.app.Catalog.RetireMaterial(ctx, retirada))

	_, err := f.app.Purchases.Create(ctx, order(line(activa, "5", "2"), line(retirada, "1", "1")))
	assert.ErrorIs(t, err, domain.ErrMaterialRetired)

	qty, cost := f.stock(t, activa)
	assert.True(t, qty.IsZero())
	assert.True(t, cost.IsZero())
	assert.Empty(t, f.ledger(t, activa))
}

func TestUpdate_MismasLineasEsIdempotente(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m1 := f.material(t, "Sensor")
	m2 := f.material(t, "Cable")

	_, err := f.app.Purchases.Create(ctx, order(line(m1, "10", "4")))
	require.NoError(t, err)
	req := order(line(m1, "10", "6"), line(m2, "3", "7"))
	created, err := f.app.Purchases.Create(ctx, req)
	require.NoError(t, err)

	q1, c1 := f.stock(t, m1)
	q2, c2 := f.stock(t, m2)
	before := summarize(f.ledger(t, m1))

	updated, err := f.app.Purchases.Update(ctx, created.ID, req)
	require.NoError(t, err)
	assert.Equal(t, created.Number, updated.Number)

	q1b, c1b := f.stock(t, m1)
	q2b, c2b := f.stock(t, m2)
	assert.True(t, q1.Equal(q1b) && c1.Equal(c1b), "m1 %s@%s vs %s@%s", q1, c1, q1b, c1b)
	assert.True(t, q2.Equal(q2b) && c2.Equal(c2b), "m2 %s@%s vs %s@%s", q2, c2, q2b, c2b)
	assertDec(t, "5", c1b, "costo m1")
	assert.ElementsMatch(t, before, summarize(f.ledger(t, m1)))
}

func TestUpdate_CambiaCantidades(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m1 := f.material(t, "Sensor")
	m2 := f.material(t, "Cable")

	created, err := f.app.Purchases.Create(ctx, order(line(m1, "10", "4")))
	require.NoError(t, err)

	updated, err := f.app.Purchases.Update(ctx, created.ID, order(line(m2, "4", "2.5")))
	require.NoError(t, err)
	assertDec(t, "10", updated.Total, "total")

	q1, _ := f.stock(t, m1)
	q2, c2 := f.stock(t, m2)
	assert.True(t, q1.IsZero())
	assertDec(t, "4", q2, "stock m2")
	assertDec(t, "2.5", c2, "costo m2")
	assert.Empty(t, f.ledger(t, m1))
}

func TestUpdate_OrdenCanceladaNoMueveStock(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	_, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	b, err := f.app.Purchases.Create(ctx, order(line(m, "10", "6")))
	require.NoError(t, err)
	_, err = f.app.Purchases.ChangeState(ctx, b.ID, "Cancelado")
	require.NoError(t, err)

	_, err = f.app.Purchases.Update(ctx, b.ID, order(line(m, "3", "9")))
	require.NoError(t, err)

	qty, cost := f.stock(t, m)
	assertDec(t, "10", qty, "stock")
	assertDec(t, "4", cost, "costo")

	entradas := f.byReference(t, b.Number)
	salidas := f.byReference(t, entity.CancellationReference(b.Number))
	require.Len(t, entradas, 1)
	require.Len(t, salidas, 1)
	assertDec(t, "3", entradas[0].Quantity, "entrada")
	assertDec(t, "3", salidas[0].Quantity, "salida")
}

func TestChangeState_CancelacionIdaYVuelta(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	_, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	b, err := f.app.Purchases.Create(ctx, order(line(m, "10", "6")))
	require.NoError(t, err)
	qty0, cost0 := f.stock(t, m)

	out, err := f.app.Purchases.ChangeState(ctx, b.ID, "Cancelado")
	require.NoError(t, err)
	assert.Equal(t, "Cancelado", out.State)
	qty, cost := f.stock(t, m)
	assertDec(t, "10", qty, "stock cancelado")
	assertDec(t, "4", cost, "costo cancelado")
	require.Len(t, f.byReference(t, entity.CancellationReference(b.Number)), 1)

	out, err = f.app.Purchases.ChangeState(ctx, b.ID, "Pendiente")
	require.NoError(t, err)
	assert.Equal(t, "Pendiente", out.State)

	qty, cost = f.stock(t, m)
	assert.True(t, qty0.Equal(qty), "stock %s vs %s", qty0, qty)
	assert.True(t, cost0.Equal(cost), "costo %s vs %s", cost0, cost)
	assert.Len(t, f.byReference(t, b.Number), 1)
	assert.Empty(t, f.byReference(t, entity.CancellationReference(b.Number)))
}

func TestChangeState_SinRecalculoMantieneCosto(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	_, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	b, err := f.app.Purchases.Create(ctx, order(line(m, "10", "6")))
	require.NoError(t, err)

	_, err = f.app.Purchases.ChangeState(ctx, b.ID, "Cancelado")
	require.NoError(t, err)

	qty, cost := f.stock(t, m)
	assertDec(t, "10", qty, "stock")
	assertDec(t, "5", cost, "costo sin recalcular")
}

func TestChangeState_TransicionesInvalidas(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	o, err := f.app.Purchases.Create(ctx, order(line(m, "1", "1")))
	require.NoError(t, err)

	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Perdido")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Pendiente")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Cancelado")
	require.NoError(t, err)
	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Recibido")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := f.app.Purchases.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cancelado", got.State)

	_, err = f.app.Purchases.ChangeState(ctx, "no-existe", "Recibido")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrdenRecibidaEsDefinitiva(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	o, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Recibido")
	require.NoError(t, err)

	_, err = f.app.Purchases.Update(ctx, o.ID, order(line(m, "1", "1")))
	assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	assert.ErrorIs(t, f.app.Purchases.Delete(ctx, o.ID), domain.ErrAlreadyFinalized)
	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Cancelado")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	qty, _ := f.stock(t, m)
	assertDec(t, "10", qty, "stock")
}

func TestDelete_Pendiente(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	o, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	require.NoError(t, f.app.Purchases.Delete(ctx, o.ID))

	qty, _ := f.stock(t, m)
	assert.True(t, qty.IsZero())
	assert.Empty(t, f.byReference(t, o.Number))

	_, err = f.app.Purchases.GetByID(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.ErrorIs(t, f.app.Purchases.Delete(ctx, o.ID), domain.ErrOrderNotFound)
}

func TestDelete_Cancelada(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	_, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	b, err := f.app.Purchases.Create(ctx, order(line(m, "10", "6")))
	require.NoError(t, err)
	_, err = f.app.Purchases.ChangeState(ctx, b.ID, "Cancelado")
	require.NoError(t, err)

	require.NoError(t, f.app.Purchases.Delete(ctx, b.ID))

	qty, cost := f.stock(t, m)
	assertDec(t, "10", qty, "stock")
	assertDec(t, "4", cost, "costo")
	assert.Empty(t, f.byReference(t, b.Number))
	assert.Empty(t, f.byReference(t, entity.CancellationReference(b.Number)))
}

func TestChangeState_CancelarStockConsumidoSeRechaza(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	o, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	_, err = f.app.Adjustments.AdjustStock(ctx, m, dto.AdjustStockRequest{Delta: dec("-8"), Notes: "consumo"})
	require.NoError(t, err)

	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Cancelado")
	assert.ErrorIs(t, err, domain.ErrNegativeStock)

	got, err := f.app.Purchases.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pendiente", got.State)
	qty, _ := f.stock(t, m)
	assertDec(t, "2", qty, "stock")
	assert.Empty(t, f.byReference(t, entity.CancellationReference(o.Number)))
}

// assertKardexCuadra stock disponible igual a la suma con signo del kardex.
func (f *fixture) assertKardexCuadra(t *testing.T, id string) {
	t.Helper()
	qty, _ := f.stock(t, id)
	balance := invdomain.LedgerBalance(f.ledger(t, id))
	assert.True(t, qty.Equal(balance), "stock %s != kardex %s", qty, balance)
}

// ajusteDirecto registra un Ajuste con referencia arbitraria sin pasar por el caso de uso.
func (f *fixture) ajusteDirecto(t *testing.T, id, delta, reference string) {
	t.Helper()
	updater := inventory.NewCostUpdater(inventory.NewLedger(f.store.Movements()), true)
	err := f.store.Run(context.Background(), func(movRepo repository.StockMovementRepository, materialRepo repository.RawMaterialRepository) error {
		m, err := materialRepo.GetForUpdate(context.Background(), id)
		if err != nil {
			return err
		}
		_, err = updater.ApplyAdjustment(context.Background(), movRepo, materialRepo, m, dec(delta), reference, "")
		return err
	})
	require.NoError(t, err)
}

func TestAjusteConReferenciaDeOrden_SeRechaza(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	o, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)

	for _, ref := range []string{o.Number, entity.CancellationReference(o.Number), "CP-202699-0042"} {
		_, err = f.app.Adjustments.AdjustStock(ctx, m, dto.AdjustStockRequest{Delta: dec("5"), Reference: ref})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, ref)
	}
	_, err = f.app.Adjustments.AdjustStock(ctx, m, dto.AdjustStockRequest{Delta: dec("5"), Reference: "CONTEO-1"})
	require.NoError(t, err)

	require.NoError(t, f.app.Purchases.Delete(ctx, o.ID))
	qty, _ := f.stock(t, m)
	assertDec(t, "5", qty, "stock")
	f.assertKardexCuadra(t, m)
}

func TestDelete_NoAnulaAjustesConLaMismaReferencia(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	o, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	f.ajusteDirecto(t, m, "5", o.Number)

	require.NoError(t, f.app.Purchases.Delete(ctx, o.ID))

	qty, _ := f.stock(t, m)
	assertDec(t, "5", qty, "stock")
	entries := f.ledger(t, m)
	require.Len(t, entries, 1)
	assert.Equal(t, entity.MovementAjuste, entries[0].Kind)
	f.assertKardexCuadra(t, m)
}

func TestChangeState_ReactivarNoAnulaAjustesDeCancelacion(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	o, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Cancelado")
	require.NoError(t, err)
	f.ajusteDirecto(t, m, "2", entity.CancellationReference(o.Number))

	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Pendiente")
	require.NoError(t, err)

	qty, _ := f.stock(t, m)
	assertDec(t, "12", qty, "stock")
	f.assertKardexCuadra(t, m)
	cancel := f.byReference(t, entity.CancellationReference(o.Number))
	require.Len(t, cancel, 1)
	assert.Equal(t, entity.MovementAjuste, cancel[0].Kind)
}

func TestUpdate_CanceladaConservaAjustesAjenos(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	o, err := f.app.Purchases.Create(ctx, order(line(m, "10", "4")))
	require.NoError(t, err)
	_, err = f.app.Purchases.ChangeState(ctx, o.ID, "Cancelado")
	require.NoError(t, err)
	f.ajusteDirecto(t, m, "3", o.Number)

	_, err = f.app.Purchases.Update(ctx, o.ID, order(line(m, "6", "5")))
	require.NoError(t, err)

	qty, _ := f.stock(t, m)
	assertDec(t, "3", qty, "stock")
	f.assertKardexCuadra(t, m)
}

func TestList_Filtros(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	enero := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	febrero := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	a, err := f.app.Purchases.Create(ctx, dto.PurchaseOrderRequest{SupplierID: "prov-1", OrderDate: enero, Lines: []dto.PurchaseOrderLineRequest{line(m, "1", "10")}})
	require.NoError(t, err)
	b, err := f.app.Purchases.Create(ctx, dto.PurchaseOrderRequest{SupplierID: "prov-2", OrderDate: febrero, Lines: []dto.PurchaseOrderLineRequest{line(m, "2", "10")}})
	require.NoError(t, err)
	_, err = f.app.Purchases.ChangeState(ctx, b.ID, "Cancelado")
	require.NoError(t, err)

	all, err := f.app.Purchases.List(ctx, dto.PurchaseOrderListRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, b.ID, all.Items[0].ID, "más reciente primero")
	assert.Equal(t, 2, all.Page.Total)
	assert.Equal(t, 20, all.Page.Limit)

	cancelled, err := f.app.Purchases.List(ctx, dto.PurchaseOrderListRequest{State: "Cancelado"})
	require.NoError(t, err)
	require.Len(t, cancelled.Items, 1)
	assert.Equal(t, b.ID, cancelled.Items[0].ID)

	bySupplier, err := f.app.Purchases.List(ctx, dto.PurchaseOrderListRequest{SupplierID: "prov-1"})
	require.NoError(t, err)
	require.Len(t, bySupplier.Items, 1)
	assert.Equal(t, a.ID, bySupplier.Items[0].ID)

	to := enero.AddDate(0, 0, 1)
	byDate, err := f.app.Purchases.List(ctx, dto.PurchaseOrderListRequest{To: &to})
	require.NoError(t, err)
	require.Len(t, byDate.Items, 1)
	assert.Equal(t, a.ID, byDate.Items[0].ID)

	_, err = f.app.Purchases.List(ctx, dto.PurchaseOrderListRequest{State: "Perdido"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStats_PorEstadoYMes(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	m := f.material(t, "Sensor")

	enero := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	febrero := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	_, err := f.app.Purchases.Create(ctx, dto.PurchaseOrderRequest{SupplierID: "p", OrderDate: enero, Lines: []dto.PurchaseOrderLineRequest{line(m, "1", "10")}})
	require.NoError(t, err)
	r, err := f.app.Purchases.Create(ctx, dto.PurchaseOrderRequest{SupplierID: "p", OrderDate: febrero, Lines: []dto.PurchaseOrderLineRequest{line(m, "2", "10")}})
	require.NoError(t, err)
	_, err = f.app.Purchases.ChangeState(ctx, r.ID, "Recibido")
	require.NoError(t, err)

	stats, err := f.app.Purchases.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalOrders)
	assertDec(t, "30", stats.GrandTotal, "total")

	require.Len(t, stats.ByState, 3)
	assert.Equal(t, "Pendiente", stats.ByState[0].State)
	assert.Equal(t, 1, stats.ByState[0].Count)
	assert.Equal(t, "Recibido", stats.ByState[1].State)
	assertDec(t, "20", stats.ByState[1].Total, "recibido")
	assert.Equal(t, "Cancelado", stats.ByState[2].State)
	assert.Zero(t, stats.ByState[2].Count)

	require.Len(t, stats.ByMonth, 2)
	assert.Equal(t, "2026-01", stats.ByMonth[0].Month)
	assert.Equal(t, "2026-02", stats.ByMonth[1].Month)
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "OC-202612-0042", purchasing.FormatOrderNumber("OC", time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), 42))
}

// Secuencia pseudoaleatoria de altas, ediciones, cancelaciones, reactivaciones y bajas:
// después de cada paso el stock disponible coincide con la suma del kardex.
func TestKardexConservaStock(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	materials := []string{f.material(t, "A"), f.material(t, "B"), f.material(t, "C")}
	rnd := rand.New(rand.NewSource(7))

	randomOrder := func() dto.PurchaseOrderRequest {
		n := 1 + rnd.Intn(3)
		var lines []dto.PurchaseOrderLineRequest
		for i := 0; i < n; i++ {
			lines = append(lines, dto.PurchaseOrderLineRequest{
				MaterialID: materials[rnd.Intn(len(materials))],
				Quantity:   decimal.NewFromInt(int64(1 + rnd.Intn(20))),
				UnitPrice:  decimal.NewFromInt(int64(1 + rnd.Intn(50))),
			})
		}
		return order(lines...)
	}

	states := map[string]string{}
	pick := func(state string) (string, bool) {
		var ids []string
		for id, s := range states {
			if s == state {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return "", false
		}
		sort.Strings(ids)
		return ids[rnd.Intn(len(ids))], true
	}

	for step := 0; step < 150; step++ {
		switch op := rnd.Intn(6); op {
		case 0, 1:
			o, err := f.app.Purchases.Create(ctx, randomOrder())
			require.NoError(t, err)
			states[o.ID] = o.State
		case 2:
			if id, ok := pick("Pendiente"); ok {
				_, err := f.app.Purchases.ChangeState(ctx, id, "Cancelado")
				require.NoError(t, err)
				states[id] = "Cancelado"
			}
		case 3:
			if id, ok := pick("Cancelado"); ok {
				_, err := f.app.Purchases.ChangeState(ctx, id, "Pendiente")
				require.NoError(t, err)
				states[id] = "Pendiente"
			}
		case 4:
			if id, ok := pick("Pendiente"); ok {
				_, err := f.app.Purchases.Update(ctx, id, randomOrder())
				require.NoError(t, err)
			} else if id, ok := pick("Cancelado"); ok {
				_, err := f.app.Purchases.Update(ctx, id, randomOrder())
				require.NoError(t, err)
			}
		case 5:
			if id, ok := pick("Cancelado"); ok {
				require.NoError(t, f.app.Purchases.Delete(ctx, id))
				delete(states, id)
			} else if id, ok := pick("Pendiente"); ok && rnd.Intn(2) == 0 {
				_, err := f.app.Purchases.ChangeState(ctx, id, "Recibido")
				require.NoError(t, err)
				states[id] = "Recibido"
			}
		}

		for _, m := range materials {
			qty, _ := f.stock(t, m)
			balance := invdomain.LedgerBalance(f.ledger(t, m))
			require.True(t, qty.Equal(balance), "paso %d: stock %s, kardex %s", step, qty, balance)
			require.False(t, qty.IsNegative(), "paso %d: stock negativo", step)
		}
	}
}

type movementKey struct {
	Kind      entity.MovementKind
	Quantity  string
	UnitCost  string
	Reference string
}

func summarize(entries []*entity.StockMovement) []movementKey {
	out := make([]movementKey, 0, len(entries))
	for _, e := range entries {
		out = append(out, movementKey{e.Kind, e.Quantity.String(), e.UnitCost.String(), e.Reference})
	}
	return out
}
