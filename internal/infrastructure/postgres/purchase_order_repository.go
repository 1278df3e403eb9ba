package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra y sus líneas sobre PostgreSQL (usable con pool o tx).
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

type orderRow struct {
	ID         string          `db:"id"`
	Number     string          `db:"number"`
	SupplierID string          `db:"supplier_id"`
	State      string          `db:"state"`
	Total      decimal.Decimal `db:"total"`
	OrderDate  time.Time       `db:"order_date"`
	Notes      string          `db:"notes"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func (r orderRow) toEntity() (*entity.PurchaseOrder, error) {
	state, ok := entity.ParseOrderState(r.State)
	if !ok {
		return nil, fmt.Errorf("orden %s: estado desconocido %q", r.Number, r.State)
	}
	return &entity.PurchaseOrder{
		ID:         r.ID,
		Number:     r.Number,
		SupplierID: r.SupplierID,
		State:      state,
		Total:      r.Total,
		OrderDate:  r.OrderDate,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

type orderLineRow struct {
	ID         string          `db:"id"`
	OrderID    string          `db:"order_id"`
	MaterialID string          `db:"material_id"`
	Quantity   decimal.Decimal `db:"quantity"`
	UnitPrice  decimal.Decimal `db:"unit_price"`
	Subtotal   decimal.Decimal `db:"subtotal"`
	Notes      string          `db:"notes"`
}

var orderColumns = []string{"id", "number", "supplier_id", "state", "total", "order_date", "notes", "created_at", "updated_at"}

// Create persiste cabecera y líneas. Número repetido → domain.ErrDuplicate.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	sql, args, err := builder().
		Insert("purchase_orders").
		Columns(orderColumns...).
		Values(o.ID, o.Number, o.SupplierID, o.State.String(), o.Total, o.OrderDate, o.Notes, o.CreatedAt, o.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert order: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	return r.insertLines(ctx, o)
}

// GetByID orden con sus líneas; nil, nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, builder().Select(orderColumns...).From("purchase_orders").Where(squirrel.Eq{"id": id}))
}

// GetForUpdate igual que GetByID bloqueando la cabecera hasta el fin de la tx.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.getOne(ctx, builder().Select(orderColumns...).From("purchase_orders").Where(squirrel.Eq{"id": id}).Suffix("FOR UPDATE"))
}

// Update reemplaza cabecera y líneas.
func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder) error {
	sql, args, err := builder().
		Update("purchase_orders").
		SetMap(map[string]any{
			"supplier_id": o.SupplierID,
			"state":       o.State.String(),
			"total":       o.Total,
			"order_date":  o.OrderDate,
			"notes":       o.Notes,
			"updated_at":  o.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update order: %w", err)
	}
	tag, err := r.q.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_order_lines WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("delete order lines: %w", err)
	}
	return r.insertLines(ctx, o)
}

// UpdateState cambia solo el estado.
func (r *PurchaseOrderRepo) UpdateState(ctx context.Context, id string, state entity.OrderState) error {
	tag, err := r.q.Exec(ctx, `UPDATE purchase_orders SET state = $2, updated_at = now() WHERE id = $1`, id, state.String())
	if err != nil {
		return fmt.Errorf("update order state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Delete elimina la orden; las líneas caen por ON DELETE CASCADE.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// Count total de órdenes registradas (base de la numeración).
func (r *PurchaseOrderRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count purchase orders: %w", err)
	}
	return n, nil
}

// ExistsNumber true si ya hay una orden con ese número.
func (r *PurchaseOrderRepo) ExistsNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM purchase_orders WHERE number = $1)`, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists order number: %w", err)
	}
	return exists, nil
}

// List página de órdenes (más recientes primero) y total de coincidencias.
func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	countSQL, countArgs, err := builder().Select("COUNT(*)").From("purchase_orders").Where(orderFilter(f)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count orders: %w", err)
	}
	var total int
	if err := r.q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	sql, args, err := listOrdersQuery(f).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list orders: %w", err)
	}
	var rows []orderRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list purchase orders: %w", err)
	}

	orders := make([]*entity.PurchaseOrder, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		o, err := row.toEntity()
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := r.attachLines(ctx, orders, ids); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// StatsByState conteo y suma de totales por estado.
func (r *PurchaseOrderRepo) StatsByState(ctx context.Context) ([]repository.OrderStateStat, error) {
	sql, args, err := statsByStateQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats by state: %w", err)
	}
	var rows []struct {
		State string          `db:"state"`
		Count int             `db:"count"`
		Total decimal.Decimal `db:"total"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stats by state: %w", err)
	}
	out := make([]repository.OrderStateStat, 0, len(rows))
	for _, row := range rows {
		state, ok := entity.ParseOrderState(row.State)
		if !ok {
			continue
		}
		out = append(out, repository.OrderStateStat{State: state, Count: row.Count, Total: row.Total})
	}
	return out, nil
}

// StatsByMonth conteo y suma de totales por mes de la fecha de orden.
func (r *PurchaseOrderRepo) StatsByMonth(ctx context.Context) ([]repository.OrderMonthStat, error) {
	sql, args, err := statsByMonthQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stats by month: %w", err)
	}
	var rows []struct {
		Month string          `db:"month"`
		Count int             `db:"count"`
		Total decimal.Decimal `db:"total"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stats by month: %w", err)
	}
	out := make([]repository.OrderMonthStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.OrderMonthStat{Month: row.Month, Count: row.Count, Total: row.Total})
	}
	return out, nil
}

func orderFilter(f repository.PurchaseOrderFilter) squirrel.And {
	where := squirrel.And{}
	if f.State != nil {
		where = append(where, squirrel.Eq{"state": f.State.String()})
	}
	if f.SupplierID != "" {
		where = append(where, squirrel.Eq{"supplier_id": f.SupplierID})
	}
	if f.From != nil {
		where = append(where, squirrel.GtOrEq{"order_date": *f.From})
	}
	if f.To != nil {
		where = append(where, squirrel.LtOrEq{"order_date": *f.To})
	}
	return where
}

func listOrdersQuery(f repository.PurchaseOrderFilter) squirrel.SelectBuilder {
	q := builder().
		Select(orderColumns...).
		From("purchase_orders").
		Where(orderFilter(f)).
		OrderBy("order_date DESC", "number DESC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}
	return q
}

func statsByStateQuery() squirrel.SelectBuilder {
	return builder().
		Select("state", "COUNT(*) AS count", "COALESCE(SUM(total), 0) AS total").
		From("purchase_orders").
		GroupBy("state").
		OrderBy("state")
}

func statsByMonthQuery() squirrel.SelectBuilder {
	return builder().
		Select("to_char(order_date, 'YYYY-MM') AS month", "COUNT(*) AS count", "COALESCE(SUM(total), 0) AS total").
		From("purchase_orders").
		GroupBy("month").
		OrderBy("month")
}

func (r *PurchaseOrderRepo) getOne(ctx context.Context, q squirrel.SelectBuilder) (*entity.PurchaseOrder, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get order: %w", err)
	}
	var row orderRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	o, err := row.toEntity()
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, []*entity.PurchaseOrder{o}, []string{o.ID}); err != nil {
		return nil, err
	}
	return o, nil
}

// attachLines carga en una sola consulta las líneas de todas las órdenes dadas.
func (r *PurchaseOrderRepo) attachLines(ctx context.Context, orders []*entity.PurchaseOrder, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	sql, args, err := builder().
		Select("id", "order_id", "material_id", "quantity", "unit_price", "subtotal", "notes").
		From("purchase_order_lines").
		Where(squirrel.Eq{"order_id": ids}).
		OrderBy("order_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build order lines: %w", err)
	}
	var rows []orderLineRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return fmt.Errorf("list order lines: %w", err)
	}

	byOrder := make(map[string]*entity.PurchaseOrder, len(orders))
	for _, o := range orders {
		o.Lines = nil
		byOrder[o.ID] = o
	}
	for _, row := range rows {
		o, ok := byOrder[row.OrderID]
		if !ok {
			continue
		}
		o.Lines = append(o.Lines, &entity.PurchaseOrderLine{
			ID:         row.ID,
			OrderID:    row.OrderID,
			MaterialID: row.MaterialID,
			Quantity:   row.Quantity,
			UnitPrice:  row.UnitPrice,
			Subtotal:   row.Subtotal,
			Notes:      row.Notes,
		})
	}
	return nil
}

func (r *PurchaseOrderRepo) insertLines(ctx context.Context, o *entity.PurchaseOrder) error {
	if len(o.Lines) == 0 {
		return nil
	}
	q := builder().
		Insert("purchase_order_lines").
		Columns("id", "order_id", "position", "material_id", "quantity", "unit_price", "subtotal", "notes")
	for i, l := range o.Lines {
		q = q.Values(l.ID, o.ID, i+1, l.MaterialID, l.Quantity, l.UnitPrice, l.Subtotal, l.Notes)
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}
	if _, err := r.q.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert order lines: %w", err)
	}
	return nil
}
