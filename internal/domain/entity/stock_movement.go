package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento del kardex de materias primas.
type MovementKind int

const (
	MovementEntrada MovementKind = iota + 1 // recepción de compra
	MovementSalida                          // consumo o reverso de una entrada
	MovementAjuste                          // corrección manual
)

// String devuelve el nombre persistido del tipo ("Entrada", "Salida", "Ajuste").
func (k MovementKind) String() string {
	switch k {
	case MovementEntrada:
		return "Entrada"
	case MovementSalida:
		return "Salida"
	case MovementAjuste:
		return "Ajuste"
	}
	return ""
}

// ParseMovementKind convierte el nombre persistido al tipo cerrado.
func ParseMovementKind(s string) (MovementKind, bool) {
	switch s {
	case "Entrada":
		return MovementEntrada, true
	case "Salida":
		return MovementSalida, true
	case "Ajuste":
		return MovementAjuste, true
	}
	return 0, false
}

// CancellationPrefix marca las salidas que compensan una orden cancelada.
const CancellationPrefix = "CANCEL-"

// CancellationReference devuelve la referencia de las salidas de cancelación de una orden.
func CancellationReference(orderNumber string) string {
	return CancellationPrefix + orderNumber
}

// StockMovement es una entrada inmutable del kardex. Las correcciones se hacen
// con movimientos compensatorios, nunca editando un registro existente.
type StockMovement struct {
	ID         string
	Seq        int64 // orden de inserción; desempata movimientos con igual Timestamp
	MaterialID string
	Kind       MovementKind
	Quantity   decimal.Decimal // siempre > 0; el signo lo da Kind
	UnitCost   decimal.Decimal // base de costo al momento del movimiento
	Increase   bool            // solo para Ajuste: true suma, false resta
	Reference  string          // número de orden, CANCEL-<número>, nota de ajuste...
	Notes      string
	Timestamp  time.Time
}

// Delta efecto con signo sobre el stock disponible.
func (m *StockMovement) Delta() decimal.Decimal {
	switch m.Kind {
	case MovementEntrada:
		return m.Quantity
	case MovementSalida:
		return m.Quantity.Neg()
	case MovementAjuste:
		if m.Increase {
			return m.Quantity
		}
		return m.Quantity.Neg()
	}
	return decimal.Zero
}

// TotalCost cantidad por costo unitario.
func (m *StockMovement) TotalCost() decimal.Decimal {
	return m.Quantity.Mul(m.UnitCost)
}

// IsInbound indica si el movimiento suma stock.
func (m *StockMovement) IsInbound() bool {
	return m.Delta().IsPositive()
}
