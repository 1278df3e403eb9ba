package inventory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	invdomain "github.com/jhoicas/costeo-api/internal/domain/inventory"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// CostUpdater único componente que modifica stock disponible y costo promedio de una materia prima.
// Siempre opera dentro de la transacción del llamador (movRepo y writer atados a la tx) y
// sobre una materia prima ya bloqueada con GetForUpdate.
type CostUpdater struct {
	ledger              *Ledger
	recomputeOnReversal bool
}

// NewCostUpdater construye el actualizador. Con recomputeOnReversal el costo promedio se
// recalcula desde el kardex vivo después de cada reverso; sin él queda como estaba hasta
// la siguiente entrada.
func NewCostUpdater(ledger *Ledger, recomputeOnReversal bool) *CostUpdater {
	return &CostUpdater{ledger: ledger, recomputeOnReversal: recomputeOnReversal}
}

// Ledger kardex usado por el actualizador.
func (u *CostUpdater) Ledger() *Ledger { return u.ledger }

// ApplyReceipt registra la Entrada y recalcula costo promedio y stock.
func (u *CostUpdater) ApplyReceipt(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	writer repository.MaterialStockWriter,
	material *entity.RawMaterial,
	quantity, unitCost decimal.Decimal,
	reference, notes string,
) error {
	if _, err := u.ledger.RecordMovement(ctx, movRepo, MovementInput{
		MaterialID: material.ID,
		Kind:       entity.MovementEntrada,
		Quantity:   quantity,
		UnitCost:   unitCost,
		Reference:  reference,
		Notes:      notes,
	}); err != nil {
		return err
	}
	newCost := invdomain.CostCalculator(material.OnHandQuantity, material.CurrentUnitCost, quantity, unitCost)
	return u.store(ctx, writer, material, material.OnHandQuantity.Add(quantity), newCost)
}

// ApplyReceiptReversal registra una Salida que compensa una entrada y descuenta el stock.
func (u *CostUpdater) ApplyReceiptReversal(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	writer repository.MaterialStockWriter,
	material *entity.RawMaterial,
	quantity, unitCost decimal.Decimal,
	reference, notes string,
) error {
	newQty := material.OnHandQuantity.Sub(quantity)
	if newQty.IsNegative() {
		return negativeStock(material, quantity)
	}
	if _, err := u.ledger.RecordMovement(ctx, movRepo, MovementInput{
		MaterialID: material.ID,
		Kind:       entity.MovementSalida,
		Quantity:   quantity,
		UnitCost:   unitCost,
		Reference:  reference,
		Notes:      notes,
	}); err != nil {
		return err
	}
	cost, err := u.reversalCost(ctx, movRepo, material)
	if err != nil {
		return err
	}
	return u.store(ctx, writer, material, newQty, cost)
}

// Rebalance aplica al stock el efecto de movimientos anulados (delta con signo) y,
// si corresponde, recalcula el costo desde el kardex que queda.
func (u *CostUpdater) Rebalance(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	writer repository.MaterialStockWriter,
	material *entity.RawMaterial,
	delta decimal.Decimal,
) error {
	newQty := material.OnHandQuantity.Add(delta)
	if newQty.IsNegative() {
		return negativeStock(material, delta.Neg())
	}
	cost, err := u.reversalCost(ctx, movRepo, material)
	if err != nil {
		return err
	}
	return u.store(ctx, writer, material, newQty, cost)
}

// ApplyAdjustment registra un Ajuste manual valorizado al costo promedio vigente.
func (u *CostUpdater) ApplyAdjustment(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	writer repository.MaterialStockWriter,
	material *entity.RawMaterial,
	delta decimal.Decimal,
	reference, notes string,
) (*entity.StockMovement, error) {
	if delta.IsZero() {
		return nil, domain.ErrInvalidMovement
	}
	newQty := material.OnHandQuantity.Add(delta)
	if newQty.IsNegative() {
		return nil, negativeStock(material, delta.Neg())
	}
	mov, err := u.ledger.RecordMovement(ctx, movRepo, MovementInput{
		MaterialID: material.ID,
		Kind:       entity.MovementAjuste,
		Quantity:   delta.Abs(),
		UnitCost:   material.CurrentUnitCost,
		Increase:   delta.IsPositive(),
		Reference:  reference,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}
	if err := u.store(ctx, writer, material, newQty, material.CurrentUnitCost); err != nil {
		return nil, err
	}
	return mov, nil
}

func (u *CostUpdater) reversalCost(ctx context.Context, movRepo repository.StockMovementRepository, material *entity.RawMaterial) (decimal.Decimal, error) {
	if !u.recomputeOnReversal {
		return material.CurrentUnitCost, nil
	}
	entries, err := movRepo.ListByMaterial(ctx, material.ID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("recalcular costo: %w", err)
	}
	return invdomain.ReplayLedger(entries).UnitCost, nil
}

func (u *CostUpdater) store(ctx context.Context, writer repository.MaterialStockWriter, material *entity.RawMaterial, onHand, cost decimal.Decimal) error {
	if err := writer.UpdateStockAndCost(ctx, material.ID, onHand, cost); err != nil {
		return err
	}
	material.OnHandQuantity = onHand
	material.CurrentUnitCost = cost
	return nil
}

func negativeStock(material *entity.RawMaterial, requested decimal.Decimal) error {
	return fmt.Errorf("%w: %s tiene %s y se requieren %s",
		domain.ErrNegativeStock, material.Name, material.OnHandQuantity.String(), requested.String())
}
