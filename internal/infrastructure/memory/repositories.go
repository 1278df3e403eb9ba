package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/costeo-api/internal/domain"
	"github.com/jhoicas/costeo-api/internal/domain/entity"
	"github.com/jhoicas/costeo-api/internal/domain/repository"
)

var (
	_ repository.RawMaterialRepository   = (*MaterialRepository)(nil)
	_ repository.StockMovementRepository = (*MovementRepository)(nil)
	_ repository.ProductRepository       = (*ProductRepository)(nil)
	_ repository.BOMRepository           = (*BOMRepository)(nil)
	_ repository.PurchaseOrderRepository = (*OrderRepository)(nil)
)

// MaterialRepository materias primas en memoria.
type MaterialRepository struct{ v *view }

func (r *MaterialRepository) Create(ctx context.Context, m *entity.RawMaterial) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.materials[m.ID]; ok {
			return domain.ErrDuplicate
		}
		st.materials[m.ID] = cloneMaterial(m)
		return nil
	})
}

func (r *MaterialRepository) GetByID(_ context.Context, id string) (*entity.RawMaterial, error) {
	var out *entity.RawMaterial
	err := r.v.read(func(st *state) error {
		if m, ok := st.materials[id]; ok {
			out = cloneMaterial(m)
		}
		return nil
	})
	return out, err
}

// GetForUpdate dentro de una unidad de trabajo el escritor ya es exclusivo.
func (r *MaterialRepository) GetForUpdate(ctx context.Context, id string) (*entity.RawMaterial, error) {
	return r.GetByID(ctx, id)
}

func (r *MaterialRepository) ListBelowMinimum(_ context.Context) ([]*entity.RawMaterial, error) {
	var out []*entity.RawMaterial
	err := r.v.read(func(st *state) error {
		for _, m := range st.materials {
			if m.IsActive() && m.IsBelowMinimum() {
				out = append(out, cloneMaterial(m))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *MaterialRepository) UpdateStockAndCost(ctx context.Context, id string, onHand, unitCost decimal.Decimal) error {
	return r.v.write(ctx, func(st *state) error {
		m, ok := st.materials[id]
		if !ok {
			return domain.ErrMaterialNotFound
		}
		m.OnHandQuantity = onHand
		m.CurrentUnitCost = unitCost
		return nil
	})
}

func (r *MaterialRepository) Update(ctx context.Context, in *entity.RawMaterial) error {
	return r.v.write(ctx, func(st *state) error {
		m, ok := st.materials[in.ID]
		if !ok {
			return domain.ErrMaterialNotFound
		}
		m.Name = in.Name
		m.UnitMeasure = in.UnitMeasure
		m.MinimumQuantity = in.MinimumQuantity
		m.SupplierID = in.SupplierID
		m.Status = in.Status
		m.UpdatedAt = in.UpdatedAt
		return nil
	})
}

// MovementRepository kardex en memoria.
type MovementRepository struct{ v *view }

func (r *MovementRepository) Create(ctx context.Context, mov *entity.StockMovement) error {
	return r.v.write(ctx, func(st *state) error {
		st.seq++
		if mov.ID == "" {
			mov.ID = uuid.New().String()
		}
		mov.Seq = st.seq
		st.movements = append(st.movements, cloneMovement(mov))
		return nil
	})
}

func (r *MovementRepository) ListByReference(_ context.Context, reference string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.Reference == reference })
}

func (r *MovementRepository) ListByMaterial(_ context.Context, materialID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool { return m.MaterialID == materialID })
}

func (r *MovementRepository) ListReceipts(_ context.Context, materialID string) ([]*entity.StockMovement, error) {
	return r.filter(func(m *entity.StockMovement) bool {
		return m.MaterialID == materialID && m.Kind == entity.MovementEntrada
	})
}

func (r *MovementRepository) VoidByReference(ctx context.Context, reference string, kind entity.MovementKind) ([]*entity.StockMovement, error) {
	var voided []*entity.StockMovement
	err := r.v.write(ctx, func(st *state) error {
		kept := st.movements[:0]
		for _, m := range st.movements {
			if m.Reference == reference && m.Kind == kind {
				voided = append(voided, cloneMovement(m))
				continue
			}
			kept = append(kept, m)
		}
		st.movements = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voided, nil
}

// filter devuelve copias ordenadas por (Timestamp, Seq).
func (r *MovementRepository) filter(keep func(*entity.StockMovement) bool) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.v.read(func(st *state) error {
		for _, m := range st.movements {
			if keep(m) {
				out = append(out, cloneMovement(m))
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Seq < out[j].Seq
	})
	return out, err
}

// ProductRepository productos en memoria. SKU único.
type ProductRepository struct{ v *view }

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	return r.v.write(ctx, func(st *state) error {
		for _, existing := range st.products {
			if existing.ID == p.ID || existing.SKU == p.SKU {
				return domain.ErrDuplicate
			}
		}
		st.products[p.ID] = cloneProduct(p)
		return nil
	})
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.v.read(func(st *state) error {
		if p, ok := st.products[id]; ok {
			out = cloneProduct(p)
		}
		return nil
	})
	return out, err
}

// BOMRepository listas de materiales en memoria. Par (producto, materia prima) único.
type BOMRepository struct{ v *view }

func (r *BOMRepository) Create(ctx context.Context, line *entity.BOMLine) error {
	return r.v.write(ctx, func(st *state) error {
		for _, existing := range st.bom {
			if existing.ID == line.ID || (existing.ProductID == line.ProductID && existing.MaterialID == line.MaterialID) {
				return domain.ErrDuplicate
			}
		}
		st.bom[line.ID] = cloneBOMLine(line)
		return nil
	})
}

func (r *BOMRepository) GetByID(_ context.Context, id string) (*entity.BOMLine, error) {
	var out *entity.BOMLine
	err := r.v.read(func(st *state) error {
		if l, ok := st.bom[id]; ok {
			out = cloneBOMLine(l)
		}
		return nil
	})
	return out, err
}

func (r *BOMRepository) Update(ctx context.Context, line *entity.BOMLine) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.bom[line.ID]; !ok {
			return domain.ErrLineNotFound
		}
		st.bom[line.ID] = cloneBOMLine(line)
		return nil
	})
}

func (r *BOMRepository) Delete(ctx context.Context, id string) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.bom[id]; !ok {
			return domain.ErrLineNotFound
		}
		delete(st.bom, id)
		return nil
	})
}

func (r *BOMRepository) ListByProduct(_ context.Context, productID string) ([]*entity.BOMLine, error) {
	var out []*entity.BOMLine
	err := r.v.read(func(st *state) error {
		for _, l := range st.bom {
			if l.ProductID == productID {
				out = append(out, cloneBOMLine(l))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

// OrderRepository órdenes de compra en memoria. Número único.
type OrderRepository struct{ v *view }

func (r *OrderRepository) Create(ctx context.Context, order *entity.PurchaseOrder) error {
	return r.v.write(ctx, func(st *state) error {
		for _, existing := range st.orders {
			if existing.ID == order.ID || existing.Number == order.Number {
				return domain.ErrDuplicate
			}
		}
		st.orders[order.ID] = cloneOrder(order)
		return nil
	})
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*entity.PurchaseOrder, error) {
	var out *entity.PurchaseOrder
	err := r.v.read(func(st *state) error {
		if o, ok := st.orders[id]; ok {
			out = cloneOrder(o)
		}
		return nil
	})
	return out, err
}

func (r *OrderRepository) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.GetByID(ctx, id)
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.PurchaseOrder) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.orders[order.ID]; !ok {
			return domain.ErrOrderNotFound
		}
		st.orders[order.ID] = cloneOrder(order)
		return nil
	})
}

func (r *OrderRepository) UpdateState(ctx context.Context, id string, newState entity.OrderState) error {
	return r.v.write(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return domain.ErrOrderNotFound
		}
		o.State = newState
		return nil
	})
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.v.write(ctx, func(st *state) error {
		if _, ok := st.orders[id]; !ok {
			return domain.ErrOrderNotFound
		}
		delete(st.orders, id)
		return nil
	})
}

func (r *OrderRepository) Count(_ context.Context) (int, error) {
	var n int
	err := r.v.read(func(st *state) error {
		n = len(st.orders)
		return nil
	})
	return n, err
}

func (r *OrderRepository) ExistsNumber(_ context.Context, number string) (bool, error) {
	var found bool
	err := r.v.read(func(st *state) error {
		for _, o := range st.orders {
			if o.Number == number {
				found = true
				break
			}
		}
		return nil
	})
	return found, err
}

// List más recientes primero (fecha de orden, luego número).
func (r *OrderRepository) List(_ context.Context, f repository.PurchaseOrderFilter) ([]*entity.PurchaseOrder, int, error) {
	var matched []*entity.PurchaseOrder
	err := r.v.read(func(st *state) error {
		for _, o := range st.orders {
			if f.State != nil && o.State != *f.State {
				continue
			}
			if f.SupplierID != "" && o.SupplierID != f.SupplierID {
				continue
			}
			if f.From != nil && o.OrderDate.Before(*f.From) {
				continue
			}
			if f.To != nil && o.OrderDate.After(*f.To) {
				continue
			}
			matched = append(matched, cloneOrder(o))
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OrderDate.Equal(matched[j].OrderDate) {
			return matched[i].OrderDate.After(matched[j].OrderDate)
		}
		return matched[i].Number > matched[j].Number
	})

	total := len(matched)
	start := f.Offset
	if start > total {
		start = total
	}
	end := total
	if f.Limit > 0 && start+f.Limit < end {
		end = start + f.Limit
	}
	return matched[start:end], total, nil
}

func (r *OrderRepository) StatsByState(_ context.Context) ([]repository.OrderStateStat, error) {
	acc := make(map[entity.OrderState]*repository.OrderStateStat)
	err := r.v.read(func(st *state) error {
		for _, o := range st.orders {
			s, ok := acc[o.State]
			if !ok {
				s = &repository.OrderStateStat{State: o.State, Total: decimal.Zero}
				acc[o.State] = s
			}
			s.Count++
			s.Total = s.Total.Add(o.Total)
		}
		return nil
	})
	out := make([]repository.OrderStateStat, 0, len(acc))
	for _, s := range acc {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].State < out[j].State })
	return out, err
}

func (r *OrderRepository) StatsByMonth(_ context.Context) ([]repository.OrderMonthStat, error) {
	acc := make(map[string]*repository.OrderMonthStat)
	err := r.v.read(func(st *state) error {
		for _, o := range st.orders {
			month := o.OrderDate.Format("2006-01")
			s, ok := acc[month]
			if !ok {
				s = &repository.OrderMonthStat{Month: month, Total: decimal.Zero}
				acc[month] = s
			}
			s.Count++
			s.Total = s.Total.Add(o.Total)
		}
		return nil
	})
	out := make([]repository.OrderMonthStat, 0, len(acc))
	for _, s := range acc {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, err
}
