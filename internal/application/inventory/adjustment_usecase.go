package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/costeo-api/internal/application/dto"
	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	invdomain "github.com/jhoicas/costeo-api/internal/domain/inventory"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// AdjustmentUseCase ajustes manuales de stock, consulta del kardex y conciliación.
type AdjustmentUseCase struct {
	txRunner    TxRunner
	materials   repository.RawMaterialReader
	updater     *CostUpdater
	orderPrefix string
	log         *logger.Logger
}

// NewAdjustmentUseCase construye el caso de uso. orderPrefix es el prefijo de numeración de
// órdenes de compra; un ajuste no puede usar una referencia con ese prefijo.
func NewAdjustmentUseCase(
	txRunner TxRunner,
	materials repository.RawMaterialReader,
	updater *CostUpdater,
	orderPrefix string,
	log *logger.Logger,
) *AdjustmentUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AdjustmentUseCase{
		txRunner:    txRunner,
		materials:   materials,
		updater:     updater,
		orderPrefix: orderPrefix,
		log:         log.Component("inventory"),
	}
}

// AdjustStock registra un Ajuste (delta positivo suma, negativo resta) con bloqueo de fila.
// Un ajuste que deje el stock en negativo se rechaza con domain.ErrNegativeStock.
func (uc *AdjustmentUseCase) AdjustStock(ctx context.Context, materialID string, in dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	if materialID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Delta.IsZero() {
		return nil, domain.ErrInvalidMovement
	}
	reference := in.Reference
	if reference == "" {
		reference = "AJUSTE-" + uuid.New().String()[:8]
	}
	if uc.isOrderReference(reference) {
		return nil, fmt.Errorf("%w: referencia %q reservada para órdenes de compra", domain.ErrInvalidInput, reference)
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.StockMovementRepository,
		materialRepo repository.RawMaterialRepository,
	) error {
		material, err := materialRepo.GetForUpdate(ctx, materialID)
		if err != nil {
			return err
		}
		if material == nil {
			return domain.ErrMaterialNotFound
		}
		if !material.IsActive() {
			return domain.ErrMaterialRetired
		}
		mov, err = uc.updater.ApplyAdjustment(ctx, movRepo, materialRepo, material, in.Delta, reference, in.Notes)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("material_id", materialID).
		Str("delta", in.Delta.String()).
		Str("reference", reference).
		Msg("ajuste de stock registrado")

	out := toMovementResponse(mov)
	return &out, nil
}

// Movements historial del kardex de una materia prima, del más antiguo al más reciente.
func (uc *AdjustmentUseCase) Movements(ctx context.Context, materialID string) ([]dto.MovementResponse, error) {
	material, err := uc.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}
	entries, err := uc.updater.Ledger().ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(entries))
	for _, e := range invdomain.SortLedger(entries) {
		out = append(out, toMovementResponse(e))
	}
	return out, nil
}

// Audit concilia el stock disponible con la suma con signo del kardex.
func (uc *AdjustmentUseCase) Audit(ctx context.Context, materialID string) (*dto.LedgerAuditResponse, error) {
	material, err := uc.materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, domain.ErrMaterialNotFound
	}
	entries, err := uc.updater.Ledger().ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	balance := invdomain.LedgerBalance(entries)
	pos := invdomain.ReplayLedger(entries)
	consistent := balance.Equal(material.OnHandQuantity)
	if !consistent {
		uc.log.Warn().
			Str("material_id", materialID).
			Str("on_hand", material.OnHandQuantity.String()).
			Str("ledger", balance.String()).
			Msg("stock disponible no coincide con el kardex")
	}
	return &dto.LedgerAuditResponse{
		MaterialID:      materialID,
		OnHandQuantity:  material.OnHandQuantity,
		LedgerBalance:   balance,
		CurrentUnitCost: material.CurrentUnitCost,
		ReplayedCost:    pos.UnitCost,
		Movements:       len(entries),
		Consistent:      consistent,
	}, nil
}

// LowStock materias primas activas bajo su punto de reorden, mayor déficit primero.
func (uc *AdjustmentUseCase) LowStock(ctx context.Context) ([]dto.LowStockDTO, error) {
	materials, err := uc.materials.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockDTO, 0, len(materials))
	for _, m := range materials {
		if !m.IsActive() || !m.IsBelowMinimum() {
			continue
		}
		out = append(out, dto.LowStockDTO{
			MaterialID:      m.ID,
			Name:            m.Name,
			OnHandQuantity:  m.OnHandQuantity,
			MinimumQuantity: m.MinimumQuantity,
			Deficit:         m.MinimumQuantity.Sub(m.OnHandQuantity),
			SupplierID:      m.SupplierID,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Deficit.GreaterThan(out[j].Deficit)
	})
	return out, nil
}

// isOrderReference las referencias de órdenes y de sus cancelaciones las anula el gestor de
// órdenes; un ajuste con ellas quedaría fuera del kardex al editar la orden.
func (uc *AdjustmentUseCase) isOrderReference(reference string) bool {
	if strings.HasPrefix(reference, entity.CancellationPrefix) {
		return true
	}
	return uc.orderPrefix != "" && strings.HasPrefix(reference, uc.orderPrefix+"-")
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:         m.ID,
		MaterialID: m.MaterialID,
		Kind:       m.Kind.String(),
		Quantity:   m.Quantity,
		Delta:      m.Delta(),
		UnitCost:   m.UnitCost,
		Reference:  m.Reference,
		Notes:      m.Notes,
		Timestamp:  m.Timestamp,
	}
}
