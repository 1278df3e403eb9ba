package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaterialStatus ciclo de vida de una materia prima (persistido como booleano "active").
type MaterialStatus int

const (
	MaterialActive MaterialStatus = iota + 1
	MaterialRetired
)

// MaterialStatusFromActive traduce la columna booleana al estado.
func MaterialStatusFromActive(active bool) MaterialStatus {
	if active {
		return MaterialActive
	}
	return MaterialRetired
}

// RawMaterial representa una materia prima del catálogo.
// CurrentUnitCost es promedio ponderado; OnHandQuantity nunca es negativo.
// Ambos campos solo los modifica el motor de costeo.
type RawMaterial struct {
	ID              string
	Name            string
	UnitMeasure     string
	CurrentUnitCost decimal.Decimal
	OnHandQuantity  decimal.Decimal
	MinimumQuantity decimal.Decimal // punto de reorden
	Status          MaterialStatus
	SupplierID      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsActive true si la materia prima no ha sido dada de baja.
func (m *RawMaterial) IsActive() bool { return m.Status == MaterialActive }

// IsBelowMinimum true si el stock disponible está por debajo del punto de reorden.
func (m *RawMaterial) IsBelowMinimum() bool {
	return m.OnHandQuantity.LessThan(m.MinimumQuantity)
}

// StockValue valor del inventario al costo promedio vigente.
func (m *RawMaterial) StockValue() decimal.Decimal {
	return m.OnHandQuantity.Mul(m.CurrentUnitCost)
}
