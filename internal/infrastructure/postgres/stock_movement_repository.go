package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo kardex sobre PostgreSQL (usable con pool o tx). Solo inserta y anula por referencia.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

type movementRow struct {
	ID         string          `db:"id"`
	Seq        int64           `db:"seq"`
	MaterialID string          `db:"material_id"`
	Kind       string          `db:"kind"`
	Quantity   decimal.Decimal `db:"quantity"`
	UnitCost   decimal.Decimal `db:"unit_cost"`
	Increase   bool            `db:"increase"`
	Reference  string          `db:"reference"`
	Notes      string          `db:"notes"`
	CreatedAt  time.Time       `db:"created_at"`
}

func (r movementRow) toEntity() (*entity.StockMovement, error) {
	kind, ok := entity.ParseMovementKind(r.Kind)
	if !ok {
		return nil, fmt.Errorf("movimiento %s: tipo desconocido %q", r.ID, r.Kind)
	}
	return &entity.StockMovement{
		ID:         r.ID,
		Seq:        r.Seq,
		MaterialID: r.MaterialID,
		Kind:       kind,
		Quantity:   r.Quantity,
		UnitCost:   r.UnitCost,
		Increase:   r.Increase,
		Reference:  r.Reference,
		Notes:      r.Notes,
		Timestamp:  r.CreatedAt,
	}, nil
}

// Create inserta el movimiento y devuelve en mov el ID y la secuencia asignada.
func (r *StockMovementRepo) Create(ctx context.Context, mov *entity.StockMovement) error {
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, material_id, kind, quantity, unit_cost, increase, reference, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		mov.ID, mov.MaterialID, mov.Kind.String(), mov.Quantity, mov.UnitCost,
		mov.Increase, mov.Reference, mov.Notes, mov.Timestamp,
	).Scan(&mov.Seq)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByReference movimientos de una referencia en orden (fecha, secuencia).
func (r *StockMovementRepo) ListByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error) {
	return r.list(ctx, squirrel.Eq{"reference": reference})
}

// ListByMaterial historial completo de una materia prima.
func (r *StockMovementRepo) ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, squirrel.Eq{"material_id": materialID})
}

// ListReceipts Entradas de una materia prima, la más antigua primero.
func (r *StockMovementRepo) ListReceipts(ctx context.Context, materialID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, squirrel.Eq{"material_id": materialID, "kind": entity.MovementEntrada.String()})
}

// VoidByReference elimina los movimientos de una referencia y tipo, y los devuelve para
// que el llamador revierta su efecto exacto en el stock.
func (r *StockMovementRepo) VoidByReference(ctx context.Context, reference string, kind entity.MovementKind) ([]*entity.StockMovement, error) {
	sql, args, err := voidQuery(reference, kind).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build void query: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("void stock movements: %w", err)
	}
	return toMovements(rows)
}

func voidQuery(reference string, kind entity.MovementKind) squirrel.DeleteBuilder {
	return builder().
		Delete("stock_movements").
		Where(squirrel.Eq{"reference": reference, "kind": kind.String()}).
		Suffix("RETURNING " + movementColumns)
}

const movementColumns = "id, seq, material_id, kind, quantity, unit_cost, increase, reference, notes, created_at"

func movementsQuery(where squirrel.Sqlizer) squirrel.SelectBuilder {
	return builder().
		Select(movementColumns).
		From("stock_movements").
		Where(where).
		OrderBy("created_at ASC", "seq ASC")
}

func (r *StockMovementRepo) list(ctx context.Context, where squirrel.Sqlizer) ([]*entity.StockMovement, error) {
	sql, args, err := movementsQuery(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build movements query: %w", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return toMovements(rows)
}

func toMovements(rows []movementRow) ([]*entity.StockMovement, error) {
	out := make([]*entity.StockMovement, 0, len(rows))
	for _, row := range rows {
		m, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
