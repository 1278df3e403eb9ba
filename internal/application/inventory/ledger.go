package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

// MovementInput datos de un movimiento a registrar en el kardex.
type MovementInput struct {
	MaterialID string
	Kind       entity.MovementKind
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Increase   bool // solo Ajuste
	Reference  string
	Notes      string
	Timestamp  time.Time // cero = ahora
}

// Ledger kardex de materias primas: solo agrega movimientos, nunca los edita.
type Ledger struct {
	movRepo repository.StockMovementRepository
	now     func() time.Time
}

// NewLedger construye el kardex. movRepo se usa para las consultas fuera de transacción.
func NewLedger(movRepo repository.StockMovementRepository) *Ledger {
	return &Ledger{movRepo: movRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Now hora del reloj del kardex.
func (l *Ledger) Now() time.Time { return l.now() }

// RecordMovement valida y agrega un movimiento usando el repositorio de la transacción en curso.
// Cantidad debe ser > 0 y costo >= 0; si no, domain.ErrInvalidMovement sin escribir nada.
func (l *Ledger) RecordMovement(ctx context.Context, movRepo repository.StockMovementRepository, in MovementInput) (*entity.StockMovement, error) {
	if in.MaterialID == "" {
		return nil, fmt.Errorf("%w: materia prima requerida", domain.ErrInvalidMovement)
	}
	if in.Kind.String() == "" {
		return nil, fmt.Errorf("%w: tipo desconocido", domain.ErrInvalidMovement)
	}
	if !in.Quantity.IsPositive() || in.UnitCost.IsNegative() {
		return nil, domain.ErrInvalidMovement
	}
	ts := in.Timestamp
	if ts.IsZero() {
		ts = l.now()
	}
	mov := &entity.StockMovement{
		MaterialID: in.MaterialID,
		Kind:       in.Kind,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		Increase:   in.Kind == entity.MovementAjuste && in.Increase,
		Reference:  in.Reference,
		Notes:      in.Notes,
		Timestamp:  ts,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

// FindByReference devuelve los movimientos de una referencia (orden, CANCEL-<orden>, ajuste).
func (l *Ledger) FindByReference(ctx context.Context, reference string) ([]*entity.StockMovement, error) {
	return l.movRepo.ListByReference(ctx, reference)
}

// ListByMaterial historial completo de una materia prima.
func (l *Ledger) ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockMovement, error) {
	return l.movRepo.ListByMaterial(ctx, materialID)
}

// Receipts Entradas de una materia prima (cola FIFO).
func (l *Ledger) Receipts(ctx context.Context, materialID string) ([]*entity.StockMovement, error) {
	return l.movRepo.ListReceipts(ctx, materialID)
}
