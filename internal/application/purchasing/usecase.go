package purchasing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// DefaultNumberPrefix prefijo de numeración de órdenes de compra.
const DefaultNumberPrefix = "CP"

// PurchaseOrderUseCase ciclo de vida de órdenes de compra. Cada operación de escritura corre
// en una sola transacción: orden, kardex, stock y costo promedio quedan consistentes o no
// cambia nada.
type PurchaseOrderUseCase struct {
	txRunner PurchaseTxRunner
	orders   repository.PurchaseOrderRepository
	updater  *inventory.CostUpdater
	prefix   string
	now      func() time.Time
	log      *logger.Logger
}

// NewPurchaseOrderUseCase construye el caso de uso. prefix vacío usa DefaultNumberPrefix.
func NewPurchaseOrderUseCase(
	txRunner PurchaseTxRunner,
	orders repository.PurchaseOrderRepository,
	updater *inventory.CostUpdater,
	prefix string,
	log *logger.Logger,
) *PurchaseOrderUseCase {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PurchaseOrderUseCase{
		txRunner: txRunner,
		orders:   orders,
		updater:  updater,
		prefix:   prefix,
		now:      time.Now,
		log:      log.Component("purchasing"),
	}
}

// WithClock reemplaza el reloj usado para numeración y fechas (tests).
func (uc *PurchaseOrderUseCase) WithClock(now func() time.Time) *PurchaseOrderUseCase {
	uc.now = now
	return uc
}

// NumberPrefix prefijo con que se numeran las órdenes.
func (uc *PurchaseOrderUseCase) NumberPrefix() string { return uc.prefix }

// FormatOrderNumber arma el número <prefijo>-<yyyyMM>-<secuencia de 4 dígitos>.
func FormatOrderNumber(prefix string, t time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, t.Format("200601"), seq)
}

// Create registra la orden en estado Pendiente y aplica cada línea al kardex y al costo promedio.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, req dto.PurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	now := uc.now()
	order := &entity.PurchaseOrder{
		ID:         uuid.New().String(),
		SupplierID: req.SupplierID,
		State:      entity.OrderPendiente,
		OrderDate:  orderDate(req.OrderDate, now),
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	order.Lines = buildLines(order.ID, req.Lines)
	order.RecalculateTotal()

	err := uc.txRunner.RunPurchase(ctx, func(
		movRepo repository.StockMovementRepository,
		materialRepo repository.RawMaterialRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		number, err := uc.nextNumber(ctx, orderRepo, now)
		if err != nil {
			return err
		}
		order.Number = number

		materials, err := lockMaterials(ctx, materialRepo, materialIDs(order.Lines))
		if err != nil {
			return err
		}
		if err := uc.applyLines(ctx, movRepo, materialRepo, materials, order); err != nil {
			return err
		}
		return orderRepo.Create(ctx, order)
	})
	if err != nil {
		uc.logRollback("create", order, err)
		return nil, err
	}
	uc.logCommit("create", order)
	out := toOrderResponse(order)
	return &out, nil
}

// Update reemplaza cabecera y líneas. Una orden Recibido no se puede editar.
// En Pendiente se revierten todos los efectos vigentes y se aplican las líneas nuevas;
// en Cancelado se reescribe el par Entrada + Salida de cancelación sin efecto neto en stock.
func (uc *PurchaseOrderUseCase) Update(ctx context.Context, id string, req dto.PurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var order *entity.PurchaseOrder
	err := uc.txRunner.RunPurchase(ctx, func(
		movRepo repository.StockMovementRepository,
		materialRepo repository.RawMaterialRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		var err error
		order, err = loadEditable(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		newLines := buildLines(order.ID, req.Lines)
		materials, err := lockMaterials(ctx, materialRepo, append(materialIDs(order.Lines), materialIDs(newLines)...))
		if err != nil {
			return err
		}

		switch order.State {
		case entity.OrderPendiente:
			if err := uc.revertReceipt(ctx, movRepo, materialRepo, materials, order); err != nil {
				return err
			}
			order.Lines = newLines
			if err := uc.applyLines(ctx, movRepo, materialRepo, materials, order); err != nil {
				return err
			}
		case entity.OrderCancelado:
			deltas := zeroDeltas(order.QuantityByMaterial(), (&entity.PurchaseOrder{Lines: newLines}).QuantityByMaterial())
			if err := voidCancelledPair(ctx, movRepo, order, deltas); err != nil {
				return err
			}
			order.Lines = newLines
			if err := uc.recordCancelledPair(ctx, movRepo, materials, order); err != nil {
				return err
			}
			if err := uc.rebalance(ctx, movRepo, materialRepo, materials, deltas); err != nil {
				return err
			}
		}

		order.SupplierID = req.SupplierID
		order.OrderDate = orderDate(req.OrderDate, order.OrderDate)
		order.Notes = req.Notes
		order.UpdatedAt = uc.now()
		order.RecalculateTotal()
		return orderRepo.Update(ctx, order)
	})
	if err != nil {
		uc.logRollback("update", order, err)
		return nil, err
	}
	uc.logCommit("update", order)
	out := toOrderResponse(order)
	return &out, nil
}

// Delete revierte los efectos de la orden en stock y kardex y la elimina con sus líneas.
func (uc *PurchaseOrderUseCase) Delete(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	var order *entity.PurchaseOrder
	err := uc.txRunner.RunPurchase(ctx, func(
		movRepo repository.StockMovementRepository,
		materialRepo repository.RawMaterialRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		var err error
		order, err = loadEditable(ctx, orderRepo, id)
		if err != nil {
			return err
		}
		materials, err := lockMaterials(ctx, materialRepo, materialIDs(order.Lines))
		if err != nil {
			return err
		}

		switch order.State {
		case entity.OrderPendiente:
			if err := uc.revertReceipt(ctx, movRepo, materialRepo, materials, order); err != nil {
				return err
			}
		case entity.OrderCancelado:
			deltas := zeroDeltas(order.QuantityByMaterial())
			if err := voidCancelledPair(ctx, movRepo, order, deltas); err != nil {
				return err
			}
			if err := uc.rebalance(ctx, movRepo, materialRepo, materials, deltas); err != nil {
				return err
			}
		}
		return orderRepo.Delete(ctx, order.ID)
	})
	if err != nil {
		uc.logRollback("delete", order, err)
		return err
	}
	uc.logCommit("delete", order)
	return nil
}

// ChangeState aplica una transición permitida:
//
//	Pendiente → Recibido   sin movimientos
//	Pendiente → Cancelado  Salida CANCEL-<número> por línea y descuento de stock
//	Cancelado → Pendiente  elimina las Salidas CANCEL-<número> y repone el stock
//
// Cualquier otra combinación retorna domain.ErrInvalidTransition.
func (uc *PurchaseOrderUseCase) ChangeState(ctx context.Context, id string, newState string) (*dto.PurchaseOrderResponse, error) {
	to, ok := entity.ParseOrderState(newState)
	if !ok {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, newState)
	}

	var order *entity.PurchaseOrder
	err := uc.txRunner.RunPurchase(ctx, func(
		movRepo repository.StockMovementRepository,
		materialRepo repository.RawMaterialRepository,
		orderRepo repository.PurchaseOrderRepository,
	) error {
		var err error
		order, err = orderRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if order == nil {
			return domain.ErrOrderNotFound
		}
		from := order.State
		if !entity.CanTransition(from, to) {
			return fmt.Errorf("%w: %s → %s", domain.ErrInvalidTransition, from, to)
		}

		switch {
		case from == entity.OrderPendiente && to == entity.OrderCancelado:
			materials, err := lockMaterials(ctx, materialRepo, materialIDs(order.Lines))
			if err != nil {
				return err
			}
			ref := entity.CancellationReference(order.Number)
			for _, line := range order.Lines {
				if err := uc.updater.ApplyReceiptReversal(ctx, movRepo, materialRepo, materials[line.MaterialID],
					line.Quantity, line.UnitPrice, ref, "cancelación de orden "+order.Number); err != nil {
					return err
				}
			}
		case from == entity.OrderCancelado && to == entity.OrderPendiente:
			materials, err := lockMaterials(ctx, materialRepo, materialIDs(order.Lines))
			if err != nil {
				return err
			}
			deltas := zeroDeltas(order.QuantityByMaterial())
			if err := voidEntries(ctx, movRepo, entity.CancellationReference(order.Number), entity.MovementSalida, deltas); err != nil {
				return err
			}
			if err := uc.rebalance(ctx, movRepo, materialRepo, materials, deltas); err != nil {
				return err
			}
		}

		order.State = to
		order.UpdatedAt = uc.now()
		return orderRepo.UpdateState(ctx, order.ID, to)
	})
	if err != nil {
		uc.logRollback("change_state", order, err)
		return nil, err
	}
	uc.logCommit("change_state", order)
	out := toOrderResponse(order)
	return &out, nil
}

// GetByID devuelve la orden con sus líneas.
func (uc *PurchaseOrderUseCase) GetByID(ctx context.Context, id string) (*dto.PurchaseOrderResponse, error) {
	order, err := uc.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	out := toOrderResponse(order)
	return &out, nil
}

// List listado paginado con filtros por estado, proveedor y rango de fechas.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, req dto.PurchaseOrderListRequest) (*dto.PurchaseOrderListResponse, error) {
	req.DefaultPage()
	filter := repository.PurchaseOrderFilter{
		SupplierID: req.SupplierID,
		From:       req.From,
		To:         req.To,
		Limit:      req.Limit,
		Offset:     req.Offset,
	}
	if req.State != "" {
		state, ok := entity.ParseOrderState(req.State)
		if !ok {
			return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, req.State)
		}
		filter.State = &state
	}
	orders, total, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	return &dto.PurchaseOrderListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: req.Limit, Offset: req.Offset, Total: total},
	}, nil
}

// Stats conteos y totales por estado (los tres estados siempre presentes) y por mes.
func (uc *PurchaseOrderUseCase) Stats(ctx context.Context) (*dto.PurchaseOrderStatsResponse, error) {
	byState, err := uc.orders.StatsByState(ctx)
	if err != nil {
		return nil, err
	}
	byMonth, err := uc.orders.StatsByMonth(ctx)
	if err != nil {
		return nil, err
	}

	out := &dto.PurchaseOrderStatsResponse{GrandTotal: decimal.Zero}
	found := make(map[entity.OrderState]repository.OrderStateStat, len(byState))
	for _, s := range byState {
		found[s.State] = s
	}
	for _, state := range []entity.OrderState{entity.OrderPendiente, entity.OrderRecibido, entity.OrderCancelado} {
		s := found[state]
		out.TotalOrders += s.Count
		out.GrandTotal = out.GrandTotal.Add(s.Total)
		out.ByState = append(out.ByState, dto.OrderStateStatDTO{State: state.String(), Count: s.Count, Total: s.Total})
	}
	out.ByMonth = make([]dto.OrderMonthStatDTO, 0, len(byMonth))
	for _, m := range byMonth {
		out.ByMonth = append(out.ByMonth, dto.OrderMonthStatDTO{Month: m.Month, Count: m.Count, Total: m.Total})
	}
	return out, nil
}

// nextNumber usa conteo+1 y avanza si el número ya existe (órdenes eliminadas dejan huecos).
func (uc *PurchaseOrderUseCase) nextNumber(ctx context.Context, orderRepo repository.PurchaseOrderRepository, now time.Time) (string, error) {
	count, err := orderRepo.Count(ctx)
	if err != nil {
		return "", err
	}
	for seq := count + 1; ; seq++ {
		number := FormatOrderNumber(uc.prefix, now, seq)
		exists, err := orderRepo.ExistsNumber(ctx, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
}

func (uc *PurchaseOrderUseCase) applyLines(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	writer repository.MaterialStockWriter,
	materials map[string]*entity.RawMaterial,
	order *entity.PurchaseOrder,
) error {
	for _, line := range order.Lines {
		material := materials[line.MaterialID]
		if !material.IsActive() {
			return fmt.Errorf("%w: %s", domain.ErrMaterialRetired, material.Name)
		}
		if err := uc.updater.ApplyReceipt(ctx, movRepo, writer, material, line.Quantity, line.UnitPrice, order.Number, line.Notes); err != nil {
			return err
		}
	}
	return nil
}

// revertReceipt anula las Entradas de una orden Pendiente y descuenta su stock.
func (uc *PurchaseOrderUseCase) revertReceipt(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	writer repository.MaterialStockWriter,
	materials map[string]*entity.RawMaterial,
	order *entity.PurchaseOrder,
) error {
	deltas := zeroDeltas(order.QuantityByMaterial())
	if err := voidEntries(ctx, movRepo, order.Number, entity.MovementEntrada, deltas); err != nil {
		return err
	}
	return uc.rebalance(ctx, movRepo, writer, materials, deltas)
}

// recordCancelledPair deja en el kardex la Entrada y su Salida de cancelación para cada línea.
// El stock no cambia; el costo se recalcula luego con rebalance.
func (uc *PurchaseOrderUseCase) recordCancelledPair(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	materials map[string]*entity.RawMaterial,
	order *entity.PurchaseOrder,
) error {
	ledger := uc.updater.Ledger()
	cancelRef := entity.CancellationReference(order.Number)
	for _, line := range order.Lines {
		material := materials[line.MaterialID]
		if !material.IsActive() {
			return fmt.Errorf("%w: %s", domain.ErrMaterialRetired, material.Name)
		}
		if _, err := ledger.RecordMovement(ctx, movRepo, inventory.MovementInput{
			MaterialID: line.MaterialID,
			Kind:       entity.MovementEntrada,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitPrice,
			Reference:  order.Number,
			Notes:      line.Notes,
		}); err != nil {
			return err
		}
		if _, err := ledger.RecordMovement(ctx, movRepo, inventory.MovementInput{
			MaterialID: line.MaterialID,
			Kind:       entity.MovementSalida,
			Quantity:   line.Quantity,
			UnitCost:   line.UnitPrice,
			Reference:  cancelRef,
			Notes:      "cancelación de orden " + order.Number,
		}); err != nil {
			return err
		}
	}
	return nil
}

// rebalance aplica los deltas en orden de ID para que el resultado sea determinista.
// Materias primas anuladas que no estaban bloqueadas se bloquean antes de escribir.
func (uc *PurchaseOrderUseCase) rebalance(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	writer repository.MaterialStockWriter,
	materials map[string]*entity.RawMaterial,
	deltas map[string]decimal.Decimal,
) error {
	ids := make([]string, 0, len(deltas))
	var missing []string
	for id := range deltas {
		ids = append(ids, id)
		if materials[id] == nil {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		locked, err := lockMaterials(ctx, writer, missing)
		if err != nil {
			return err
		}
		for id, m := range locked {
			materials[id] = m
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := uc.updater.Rebalance(ctx, movRepo, writer, materials[id], deltas[id]); err != nil {
			return err
		}
	}
	return nil
}

func (uc *PurchaseOrderUseCase) logCommit(op string, order *entity.PurchaseOrder) {
	uc.log.Info().
		Str("op", op).
		Str("order_id", order.ID).
		Str("number", order.Number).
		Str("state", order.State.String()).
		Str("total", order.Total.String()).
		Msg("orden de compra confirmada")
}

func (uc *PurchaseOrderUseCase) logRollback(op string, order *entity.PurchaseOrder, err error) {
	ev := uc.log.Warn().Err(err).Str("op", op)
	if order != nil {
		ev = ev.Str("order_id", order.ID).Str("number", order.Number)
	}
	ev.Msg("orden de compra revertida")
}

// loadEditable bloquea la orden y rechaza las ya recibidas.
func loadEditable(ctx context.Context, orderRepo repository.PurchaseOrderRepository, id string) (*entity.PurchaseOrder, error) {
	order, err := orderRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrOrderNotFound
	}
	if order.IsFinalized() {
		return nil, domain.ErrAlreadyFinalized
	}
	return order, nil
}

// lockMaterials toma FOR UPDATE sobre cada materia prima en orden ascendente de ID.
func lockMaterials(ctx context.Context, materialRepo repository.MaterialStockWriter, ids []string) (map[string]*entity.RawMaterial, error) {
	unique := make(map[string]struct{}, len(ids))
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := unique[id]; ok {
			continue
		}
		unique[id] = struct{}{}
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	out := make(map[string]*entity.RawMaterial, len(sorted))
	for _, id := range sorted {
		m, err := materialRepo.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrMaterialNotFound, id)
		}
		out[id] = m
	}
	return out, nil
}

// voidEntries anula los movimientos de la referencia y tipo dados y acumula en deltas,
// por materia prima, el ajuste que revierte exactamente lo eliminado.
func voidEntries(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	reference string,
	kind entity.MovementKind,
	deltas map[string]decimal.Decimal,
) error {
	voided, err := movRepo.VoidByReference(ctx, reference, kind)
	if err != nil {
		return fmt.Errorf("anular movimientos %s: %w", reference, err)
	}
	for _, m := range voided {
		deltas[m.MaterialID] = deltas[m.MaterialID].Sub(m.Delta())
	}
	return nil
}

// voidCancelledPair anula las Entradas de la orden y sus Salidas de cancelación.
func voidCancelledPair(ctx context.Context, movRepo repository.StockMovementRepository, order *entity.PurchaseOrder, deltas map[string]decimal.Decimal) error {
	if err := voidEntries(ctx, movRepo, order.Number, entity.MovementEntrada, deltas); err != nil {
		return err
	}
	return voidEntries(ctx, movRepo, entity.CancellationReference(order.Number), entity.MovementSalida, deltas)
}

// zeroDeltas delta cero para cada materia prima presente en alguno de los mapas.
func zeroDeltas(sets ...map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, set := range sets {
		for id := range set {
			out[id] = decimal.Zero
		}
	}
	return out
}

func validateRequest(req dto.PurchaseOrderRequest) error {
	if req.SupplierID == "" {
		return fmt.Errorf("%w: proveedor requerido", domain.ErrInvalidInput)
	}
	if len(req.Lines) == 0 {
		return fmt.Errorf("%w: la orden debe tener al menos una línea", domain.ErrInvalidInput)
	}
	for i, l := range req.Lines {
		if l.MaterialID == "" {
			return fmt.Errorf("%w: línea %d sin materia prima", domain.ErrInvalidInput, i+1)
		}
		if !l.Quantity.IsPositive() || l.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: línea %d", domain.ErrInvalidMovement, i+1)
		}
	}
	return nil
}

func buildLines(orderID string, in []dto.PurchaseOrderLineRequest) []*entity.PurchaseOrderLine {
	lines := make([]*entity.PurchaseOrderLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, &entity.PurchaseOrderLine{
			ID:         uuid.New().String(),
			OrderID:    orderID,
			MaterialID: l.MaterialID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Notes:      l.Notes,
		})
	}
	return lines
}

func materialIDs(lines []*entity.PurchaseOrderLine) []string {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.MaterialID)
	}
	return ids
}

func orderDate(requested, fallback time.Time) time.Time {
	if requested.IsZero() {
		return fallback
	}
	return requested
}

func toOrderResponse(o *entity.PurchaseOrder) dto.PurchaseOrderResponse {
	lines := make([]dto.PurchaseOrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, dto.PurchaseOrderLineResponse{
			ID:         l.ID,
			MaterialID: l.MaterialID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Subtotal:   l.Subtotal,
			Notes:      l.Notes,
		})
	}
	return dto.PurchaseOrderResponse{
		ID:         o.ID,
		Number:     o.Number,
		SupplierID: o.SupplierID,
		State:      o.State.String(),
		Total:      o.Total,
		OrderDate:  o.OrderDate,
		Notes:      o.Notes,
		Lines:      lines,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
