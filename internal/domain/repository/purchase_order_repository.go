package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain/entity"
)

// PurchaseOrderFilter filtros del listado de órdenes.
type PurchaseOrderFilter struct {
	State      *entity.OrderState
	SupplierID string
	From, To   *time.Time
	Limit      int
	Offset     int
}

// OrderStateStat conteo y total por estado.
type OrderStateStat struct {
	State entity.OrderState
	Count int
	Total decimal.Decimal
}

// OrderMonthStat conteo y total por mes (Month en formato yyyy-MM).
type OrderMonthStat struct {
	Month string
	Count int
	Total decimal.Decimal
}

// PurchaseOrderRepository puerto de persistencia para órdenes de compra y sus líneas.
type PurchaseOrderRepository interface {
	// Create persiste cabecera y líneas. Número repetido → domain.ErrDuplicate.
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	// GetByID devuelve la orden con sus líneas; nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// Update reemplaza cabecera y líneas.
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	UpdateState(ctx context.Context, id string, state entity.OrderState) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	ExistsNumber(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, filter PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error)
	StatsByState(ctx context.Context) ([]OrderStateStat, error)
	StatsByMonth(ctx context.Context) ([]OrderMonthStat, error)
}
