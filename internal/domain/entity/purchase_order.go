package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderState estado de una orden de compra a proveedor.
type OrderState int

const (
	OrderPendiente OrderState = iota + 1
	OrderRecibido
	OrderCancelado
)

// String devuelve el nombre persistido del estado.
func (s OrderState) String() string {
	switch s {
	case OrderPendiente:
		return "Pendiente"
	case OrderRecibido:
		return "Recibido"
	case OrderCancelado:
		return "Cancelado"
	}
	return ""
}

// ParseOrderState convierte el nombre persistido al estado cerrado.
func ParseOrderState(s string) (OrderState, bool) {
	switch s {
	case "Pendiente":
		return OrderPendiente, true
	case "Recibido":
		return OrderRecibido, true
	case "Cancelado":
		return OrderCancelado, true
	}
	return 0, false
}

// CanTransition indica si el cambio de estado from → to está permitido.
func CanTransition(from, to OrderState) bool {
	switch from {
	case OrderPendiente:
		return to == OrderRecibido || to == OrderCancelado
	case OrderCancelado:
		return to == OrderPendiente
	case OrderRecibido:
		return false
	}
	return false
}

// PurchaseOrder orden de compra de materias primas.
type PurchaseOrder struct {
	ID         string
	Number     string // CP-<yyyyMM>-<secuencia>
	SupplierID string
	State      OrderState
	Total      decimal.Decimal
	OrderDate  time.Time
	Notes      string
	Lines      []*PurchaseOrderLine
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PurchaseOrderLine detalle de la orden.
type PurchaseOrderLine struct {
	ID         string
	OrderID    string
	MaterialID string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	Subtotal   decimal.Decimal
	Notes      string
}

// IsFinalized true si la orden ya fue recibida.
func (o *PurchaseOrder) IsFinalized() bool { return o.State == OrderRecibido }

// RecalculateTotal recalcula subtotales de línea y el total de la orden.
func (o *PurchaseOrder) RecalculateTotal() {
	total := decimal.Zero
	for _, l := range o.Lines {
		l.Subtotal = l.Quantity.Mul(l.UnitPrice)
		total = total.Add(l.Subtotal)
	}
	o.Total = total
}

// QuantityByMaterial suma las cantidades de las líneas por materia prima.
func (o *PurchaseOrder) QuantityByMaterial() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(o.Lines))
	for _, l := range o.Lines {
		out[l.MaterialID] = out[l.MaterialID].Add(l.Quantity)
	}
	return out
}
