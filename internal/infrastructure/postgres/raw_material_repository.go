package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var _ repository.RawMaterialRepository = (*RawMaterialRepo)(nil)

const rawMaterialColumns = `id, name, unit_measure, current_unit_cost, on_hand_quantity, minimum_quantity, active, supplier_id, created_at, updated_at`

// RawMaterialRepo materias primas sobre PostgreSQL (usable con pool o tx).
type RawMaterialRepo struct {
	q Querier
}

// NewRawMaterialRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRawMaterialRepository(q Querier) *RawMaterialRepo {
	return &RawMaterialRepo{q: q}
}

// Create persiste una materia prima nueva.
func (r *RawMaterialRepo) Create(ctx context.Context, m *entity.RawMaterial) error {
	query := `
		INSERT INTO raw_materials (` + rawMaterialColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Name, m.UnitMeasure, m.CurrentUnitCost, m.OnHandQuantity, m.MinimumQuantity,
		m.IsActive(), m.SupplierID, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert raw material: %w", err)
	}
	return nil
}

// GetByID obtiene una materia prima por ID; nil, nil si no existe.
func (r *RawMaterialRepo) GetByID(ctx context.Context, id string) (*entity.RawMaterial, error) {
	query := `SELECT ` + rawMaterialColumns + ` FROM raw_materials WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate igual que GetByID pero bloquea la fila (SELECT FOR UPDATE) hasta el fin de la tx.
func (r *RawMaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error) {
	query := `SELECT ` + rawMaterialColumns + ` FROM raw_materials WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

// ListBelowMinimum materias primas activas con stock bajo el punto de reorden.
func (r *RawMaterialRepo) ListBelowMinimum(ctx context.Context) ([]*entity.RawMaterial, error) {
	query := `
		SELECT ` + rawMaterialColumns + `
		FROM raw_materials
		WHERE active AND on_hand_quantity < minimum_quantity
		ORDER BY name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list below minimum: %w", err)
	}
	defer rows.Close()

	var out []*entity.RawMaterial
	for rows.Next() {
		m, err := scanRawMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan raw material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateStockAndCost escribe stock disponible y costo promedio.
func (r *RawMaterialRepo) UpdateStockAndCost(ctx context.Context, id string, onHand, unitCost decimal.Decimal) error {
	query := `
		UPDATE raw_materials
		SET on_hand_quantity = $2, current_unit_cost = $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, id, onHand, unitCost)
	if err != nil {
		return fmt.Errorf("update stock and cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

// Update modifica datos de catálogo; stock y costo no se tocan.
func (r *RawMaterialRepo) Update(ctx context.Context, m *entity.RawMaterial) error {
	query := `
		UPDATE raw_materials
		SET name = $2, unit_measure = $3, minimum_quantity = $4, active = $5, supplier_id = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, m.ID, m.Name, m.UnitMeasure, m.MinimumQuantity, m.IsActive(), m.SupplierID, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update raw material: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMaterialNotFound
	}
	return nil
}

func (r *RawMaterialRepo) getOne(ctx context.Context, query string, args ...any) (*entity.RawMaterial, error) {
	m, err := scanRawMaterial(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get raw material: %w", err)
	}
	return m, nil
}

func scanRawMaterial(row pgx.Row) (*entity.RawMaterial, error) {
	var m entity.RawMaterial
	var active bool
	if err := row.Scan(
		&m.ID, &m.Name, &m.UnitMeasure, &m.CurrentUnitCost, &m.OnHandQuantity, &m.MinimumQuantity,
		&active, &m.SupplierID, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.Status = entity.MaterialStatusFromActive(active)
	return &m, nil
}
