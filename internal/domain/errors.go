package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")

	// Motor de inventario y costeo.
	ErrInvalidMovement     = errors.New("movimiento de inventario inválido: cantidad y costo no pueden ser negativos")
	ErrInsufficientHistory = errors.New("historial de entradas insuficiente para costeo FIFO")
	ErrNegativeStock       = errors.New("la operación dejaría el stock en negativo")
	ErrMaterialNotFound    = errors.New("materia prima no encontrada")
	ErrMaterialRetired     = errors.New("materia prima dada de baja")
	ErrProductNotFound     = errors.New("producto no encontrado")
	ErrLineNotFound        = errors.New("línea no encontrada")

	// Órdenes de compra.
	ErrOrderNotFound     = errors.New("orden de compra no encontrada")
	ErrInvalidTransition = errors.New("cambio de estado no permitido")
	ErrAlreadyFinalized  = errors.New("la orden ya fue recibida y no puede modificarse")
)
