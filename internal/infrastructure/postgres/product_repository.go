package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.BOMRepository     = (*BOMRepo)(nil)
)

// ProductRepo productos terminados sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto. SKU repetido → domain.ErrDuplicate.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, sale_price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, p.ID, p.SKU, p.Name, p.SalePrice, p.Status == entity.ProductActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID; nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT id, sku, name, sale_price, active, created_at, updated_at FROM products WHERE id = $1`
	var p entity.Product
	var active bool
	err := r.q.QueryRow(ctx, query, id).Scan(&p.ID, &p.SKU, &p.Name, &p.SalePrice, &active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	p.Status = entity.ProductRetired
	if active {
		p.Status = entity.ProductActive
	}
	return &p, nil
}

// BOMRepo líneas de lista de materiales sobre PostgreSQL.
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

const bomColumns = `id, product_id, material_id, quantity_required, unit_cost, total_cost, notes, created_at, updated_at`

// Create persiste una línea. Par (producto, materia prima) repetido → domain.ErrDuplicate.
func (r *BOMRepo) Create(ctx context.Context, l *entity.BOMLine) error {
	query := `
		INSERT INTO bom_lines (` + bomColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.ProductID, l.MaterialID, l.QuantityRequired, l.UnitCost, l.TotalCost, l.Notes, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert bom line: %w", err)
	}
	return nil
}

// GetByID obtiene una línea; nil, nil si no existe.
func (r *BOMRepo) GetByID(ctx context.Context, id string) (*entity.BOMLine, error) {
	query := `SELECT ` + bomColumns + ` FROM bom_lines WHERE id = $1`
	l, err := scanBOMLine(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bom line: %w", err)
	}
	return l, nil
}

// Update reemplaza cantidad, foto de costo y notas.
func (r *BOMRepo) Update(ctx context.Context, l *entity.BOMLine) error {
	query := `
		UPDATE bom_lines
		SET quantity_required = $2, unit_cost = $3, total_cost = $4, notes = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, l.ID, l.QuantityRequired, l.UnitCost, l.TotalCost, l.Notes, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update bom line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLineNotFound
	}
	return nil
}

// Delete elimina una línea.
func (r *BOMRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM bom_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bom line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLineNotFound
	}
	return nil
}

// ListByProduct líneas del producto en orden de creación.
func (r *BOMRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.BOMLine, error) {
	query := `SELECT ` + bomColumns + ` FROM bom_lines WHERE product_id = $1 ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list bom lines: %w", err)
	}
	defer rows.Close()

	var out []*entity.BOMLine
	for rows.Next() {
		l, err := scanBOMLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bom line: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanBOMLine(row pgx.Row) (*entity.BOMLine, error) {
	var l entity.BOMLine
	if err := row.Scan(
		&l.ID, &l.ProductID, &l.MaterialID, &l.QuantityRequired, &l.UnitCost, &l.TotalCost,
		&l.Notes, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}
