package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner          = (*TxRunner)(nil)
	_ purchasing.PurchaseTxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run transacción con kardex y materias primas (ajustes manuales).
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	materialRepo repository.RawMaterialRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewStockMovementRepository(tx), NewRawMaterialRepository(tx))
	})
}

// RunPurchase transacción con kardex, materias primas y órdenes de compra.
func (r *TxRunner) RunPurchase(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	materialRepo repository.RawMaterialRepository,
	orderRepo repository.PurchaseOrderRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewStockMovementRepository(tx), NewRawMaterialRepository(tx), NewPurchaseOrderRepository(tx))
	})
}

// inTx Begin, fn y Commit; cualquier error de fn deja la transacción en Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
