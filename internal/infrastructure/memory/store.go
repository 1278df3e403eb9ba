// Package memory implementa los puertos de persistencia en proceso. Cada unidad de trabajo
// opera sobre una copia del estado confirmado y la publica de una sola vez al terminar sin
// error; si falla, la copia se descarta y nada de lo escrito queda visible.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

type state struct {
	materials map[string]*entity.RawMaterial
	products  map[string]*entity.Product
	bom       map[string]*entity.BOMLine
	orders    map[string]*entity.PurchaseOrder
	movements []*entity.StockMovement // orden de inserción
	seq       int64
}

func newState() *state {
	return &state{
		materials: make(map[string]*entity.RawMaterial),
		products:  make(map[string]*entity.Product),
		bom:       make(map[string]*entity.BOMLine),
		orders:    make(map[string]*entity.PurchaseOrder),
	}
}

func (s *state) clone() *state {
	c := &state{
		materials: make(map[string]*entity.RawMaterial, len(s.materials)),
		products:  make(map[string]*entity.Product, len(s.products)),
		bom:       make(map[string]*entity.BOMLine, len(s.bom)),
		orders:    make(map[string]*entity.PurchaseOrder, len(s.orders)),
		movements: make([]*entity.StockMovement, len(s.movements)),
		seq:       s.seq,
	}
	for k, v := range s.materials {
		c.materials[k] = cloneMaterial(v)
	}
	for k, v := range s.products {
		c.products[k] = cloneProduct(v)
	}
	for k, v := range s.bom {
		c.bom[k] = cloneBOMLine(v)
	}
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	for i, v := range s.movements {
		c.movements[i] = cloneMovement(v)
	}
	return c
}

// Store estado en memoria. Un único escritor a la vez (writeMu); los lectores fuera de
// transacción ven siempre el último estado confirmado.
type Store struct {
	writeMu   sync.Mutex
	mu        sync.RWMutex
	committed *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{committed: newState()}
}

var (
	_ inventory.TxRunner          = (*Store)(nil)
	_ purchasing.PurchaseTxRunner = (*Store)(nil)
)

// Run unidad de trabajo sobre kardex y materias primas.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	materialRepo repository.RawMaterialRepository,
) error) error {
	return s.update(ctx, func(v *view) error {
		return fn(&MovementRepository{v: v}, &MaterialRepository{v: v})
	})
}

// RunPurchase unidad de trabajo sobre kardex, materias primas y órdenes de compra.
func (s *Store) RunPurchase(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	materialRepo repository.RawMaterialRepository,
	orderRepo repository.PurchaseOrderRepository,
) error) error {
	return s.update(ctx, func(v *view) error {
		return fn(&MovementRepository{v: v}, &MaterialRepository{v: v}, &OrderRepository{v: v})
	})
}

// Materials repositorio de materias primas fuera de transacción (cada escritura se confirma sola).
func (s *Store) Materials() *MaterialRepository { return &MaterialRepository{v: &view{store: s}} }

// Movements repositorio del kardex fuera de transacción.
func (s *Store) Movements() *MovementRepository { return &MovementRepository{v: &view{store: s}} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepository { return &ProductRepository{v: &view{store: s}} }

// BOM repositorio de listas de materiales fuera de transacción.
func (s *Store) BOM() *BOMRepository { return &BOMRepository{v: &view{store: s}} }

// Orders repositorio de órdenes de compra fuera de transacción.
func (s *Store) Orders() *OrderRepository { return &OrderRepository{v: &view{store: s}} }

// update ejecuta fn sobre una copia completa del estado confirmado y la publica solo si fn
// termina sin error. Cada escritura, incluso la individual fuera de transacción, copia todo el
// estado: el costo es lineal en el tamaño del kardex. Aceptable para tests y APP_STORAGE=memory;
// volúmenes reales van a PostgreSQL.
func (s *Store) update(ctx context.Context, fn func(v *view) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s.mu.RLock()
	staged := s.committed.clone()
	s.mu.RUnlock()

	if err := fn(&view{store: s, staged: staged}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.mu.Lock()
	s.committed = staged
	s.mu.Unlock()
	return nil
}

// view estado sobre el que trabaja un repositorio: la copia de la transacción en curso o,
// si staged es nil, el estado confirmado.
type view struct {
	store  *Store
	staged *state
}

func (v *view) read(fn func(st *state) error) error {
	if v.staged != nil {
		return fn(v.staged)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.committed)
}

func (v *view) write(ctx context.Context, fn func(st *state) error) error {
	if v.staged != nil {
		return fn(v.staged)
	}
	return v.store.update(ctx, func(inner *view) error {
		return fn(inner.staged)
	})
}

func cloneMaterial(m *entity.RawMaterial) *entity.RawMaterial {
	c := *m
	return &c
}

func cloneProduct(p *entity.Product) *entity.Product {
	c := *p
	return &c
}

func cloneBOMLine(l *entity.BOMLine) *entity.BOMLine {
	c := *l
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}

func cloneOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *o
	c.Lines = make([]*entity.PurchaseOrderLine, len(o.Lines))
	for i, l := range o.Lines {
		lc := *l
		c.Lines[i] = &lc
	}
	return &c
}
