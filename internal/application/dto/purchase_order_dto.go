package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderLineRequest línea de una orden de compra.
type PurchaseOrderLineRequest struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      string          `json:"notes,omitempty"`
}

// PurchaseOrderRequest body para crear o editar una orden de compra.
type PurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id"`
	OrderDate  time.Time                  `json:"order_date"`
	Notes      string                     `json:"notes,omitempty"`
	Lines      []PurchaseOrderLineRequest `json:"lines"`
}

// ChangeStateRequest body para PATCH /api/purchase-orders/:id/state.
type ChangeStateRequest struct {
	NewState string `json:"new_state"`
}

// PurchaseOrderLineResponse línea en respuestas.
type PurchaseOrderLineResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Notes      string          `json:"notes,omitempty"`
}

// PurchaseOrderResponse orden de compra en respuestas.
type PurchaseOrderResponse struct {
	ID         string                      `json:"id"`
	Number     string                      `json:"number"`
	SupplierID string                      `json:"supplier_id"`
	State      string                      `json:"state"`
	Total      decimal.Decimal             `json:"total"`
	OrderDate  time.Time                   `json:"order_date"`
	Notes      string                      `json:"notes,omitempty"`
	Lines      []PurchaseOrderLineResponse `json:"lines"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

// PurchaseOrderListRequest filtros del listado (query string).
type PurchaseOrderListRequest struct {
	PageRequest
	State      string     `query:"state"`
	SupplierID string     `query:"supplier_id"`
	From       *time.Time `query:"-"`
	To         *time.Time `query:"-"`
}

// PurchaseOrderListResponse listado paginado.
type PurchaseOrderListResponse struct {
	Items []PurchaseOrderResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// OrderStateStatDTO conteo y total por estado.
type OrderStateStatDTO struct {
	State string          `json:"state"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// OrderMonthStatDTO conteo y total por mes (yyyy-MM).
type OrderMonthStatDTO struct {
	Month string          `json:"month"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// PurchaseOrderStatsResponse estadísticas de órdenes de compra.
type PurchaseOrderStatsResponse struct {
	TotalOrders int                 `json:"total_orders"`
	GrandTotal  decimal.Decimal     `json:"grand_total"`
	ByState     []OrderStateStatDTO `json:"by_state"`
	ByMonth     []OrderMonthStatDTO `json:"by_month"`
}
