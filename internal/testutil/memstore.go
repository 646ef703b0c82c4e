// Package testutil provee un almacén en memoria que implementa los puertos de
// persistencia del dominio, para probar casos de uso sin base de datos.
// El TxRunner de este paquete modela la atomicidad real: la función corre
// contra un clon del almacén y el clon solo se publica si no hubo error.
package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// Store almacén en memoria compartido por los repositorios fake.
// Los niveles se indexan por "itemID|warehouseID"; la ausencia de clave
// equivale a cantidad cero, igual que la ausencia de fila en la tabla.
type Store struct {
	Items      map[string]*entity.Item
	Warehouses map[string]*entity.Warehouse
	Categories map[string]*entity.Category
	BOMs       map[string]*entity.BOM
	Details    map[string][]*entity.BOMDetail
	Levels     map[string]*entity.InventoryLevel
	Movements  []*entity.Movement
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		Items:      map[string]*entity.Item{},
		Warehouses: map[string]*entity.Warehouse{},
		Categories: map[string]*entity.Category{},
		BOMs:       map[string]*entity.BOM{},
		Details:    map[string][]*entity.BOMDetail{},
		Levels:     map[string]*entity.InventoryLevel{},
	}
}

func levelKey(itemID, warehouseID string) string { return itemID + "|" + warehouseID }

var (
	_ repository.ItemRepository           = (*ItemRepo)(nil)
	_ repository.WarehouseRepository      = (*WarehouseRepo)(nil)
	_ repository.InventoryLevelRepository = (*LevelRepo)(nil)
	_ repository.MovementRepository       = (*MovementRepo)(nil)
	_ repository.BOMRepository            = (*BOMRepo)(nil)
)

// Clone copia profunda del almacén; las entidades se copian por valor.
func (s *Store) Clone() *Store {
	c := NewStore()
	for id, it := range s.Items {
		cp := *it
		c.Items[id] = &cp
	}
	for id, wh := range s.Warehouses {
		cp := *wh
		c.Warehouses[id] = &cp
	}
	for id, cat := range s.Categories {
		cp := *cat
		c.Categories[id] = &cp
	}
	for id, b := range s.BOMs {
		cp := *b
		c.BOMs[id] = &cp
	}
	for bomID, details := range s.Details {
		list := make([]*entity.BOMDetail, 0, len(details))
		for _, d := range details {
			cp := *d
			list = append(list, &cp)
		}
		c.Details[bomID] = list
	}
	for key, lvl := range s.Levels {
		cp := *lvl
		c.Levels[key] = &cp
	}
	c.Movements = append([]*entity.Movement(nil), s.Movements...)
	return c
}

// LevelQty cantidad actual del par, cero si no hay fila.
func (s *Store) LevelQty(itemID, warehouseID string) decimal.Decimal {
	if lvl, ok := s.Levels[levelKey(itemID, warehouseID)]; ok {
		return lvl.Quantity
	}
	return decimal.Zero
}

// ItemRepo implementación en memoria de repository.ItemRepository.
type ItemRepo struct{ S *Store }

func (r *ItemRepo) Create(item *entity.Item) error {
	cp := *item
	r.S.Items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	it, ok := r.S.Items[id]
	if !ok {
		return nil, nil
	}
	cp := *it
	return &cp, nil
}

func (r *ItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	for _, it := range r.S.Items {
		if it.SKU == sku {
			cp := *it
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) Update(item *entity.Item) error {
	cp := *item
	r.S.Items[item.ID] = &cp
	return nil
}

func (r *ItemRepo) UpdateStandardCost(itemID string, cost decimal.Decimal, at time.Time) error {
	it, ok := r.S.Items[itemID]
	if !ok {
		return nil
	}
	it.StandardCost = &cost
	it.StandardCostAt = &at
	it.UpdatedAt = at
	return nil
}

func (r *ItemRepo) UpdateLastActualCost(itemID string, cost decimal.Decimal, at time.Time) error {
	it, ok := r.S.Items[itemID]
	if !ok {
		return nil
	}
	it.LastActualCost = &cost
	it.LastActualCostAt = &at
	it.UpdatedAt = at
	return nil
}

func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	ids := make([]string, 0, len(r.S.Items))
	for id := range r.S.Items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	items := make([]*entity.Item, 0, len(ids))
	for _, id := range ids {
		cp := *r.S.Items[id]
		items = append(items, &cp)
	}
	return paginate(items, limit, offset), nil
}

func (r *ItemRepo) Delete(id string) error {
	delete(r.S.Items, id)
	return nil
}

// WarehouseRepo implementación en memoria de repository.WarehouseRepository.
type WarehouseRepo struct{ S *Store }

func (r *WarehouseRepo) Create(warehouse *entity.Warehouse) error {
	cp := *warehouse
	r.S.Warehouses[warehouse.ID] = &cp
	return nil
}

func (r *WarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	wh, ok := r.S.Warehouses[id]
	if !ok {
		return nil, nil
	}
	cp := *wh
	return &cp, nil
}

func (r *WarehouseRepo) Update(warehouse *entity.Warehouse) error {
	cp := *warehouse
	r.S.Warehouses[warehouse.ID] = &cp
	return nil
}

func (r *WarehouseRepo) List(limit, offset int) ([]*entity.Warehouse, error) {
	ids := make([]string, 0, len(r.S.Warehouses))
	for id := range r.S.Warehouses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	whs := make([]*entity.Warehouse, 0, len(ids))
	for _, id := range ids {
		cp := *r.S.Warehouses[id]
		whs = append(whs, &cp)
	}
	return paginate(whs, limit, offset), nil
}

func (r *WarehouseRepo) Delete(id string) error {
	delete(r.S.Warehouses, id)
	return nil
}

// LevelRepo implementación en memoria de repository.InventoryLevelRepository.
// Get y GetForUpdate devuelven copias: las mutaciones solo llegan al almacén
// vía Upsert, igual que con filas de base de datos. Si LockLog no es nil,
// GetForUpdate anota el artículo bloqueado, para poder verificar el orden de
// adquisición de locks.
type LevelRepo struct {
	S       *Store
	LockLog *[]string
}

func (r *LevelRepo) Get(itemID, warehouseID string) (*entity.InventoryLevel, error) {
	if lvl, ok := r.S.Levels[levelKey(itemID, warehouseID)]; ok {
		cp := *lvl
		return &cp, nil
	}
	return &entity.InventoryLevel{ItemID: itemID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
}

func (r *LevelRepo) GetForUpdate(itemID, warehouseID string) (*entity.InventoryLevel, error) {
	if r.LockLog != nil {
		*r.LockLog = append(*r.LockLog, itemID)
	}
	return r.Get(itemID, warehouseID)
}

func (r *LevelRepo) Upsert(level *entity.InventoryLevel) error {
	cp := *level
	r.S.Levels[levelKey(level.ItemID, level.WarehouseID)] = &cp
	return nil
}

func (r *LevelRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.InventoryLevel, error) {
	var levels []*entity.InventoryLevel
	for _, lvl := range r.S.Levels {
		if lvl.WarehouseID == warehouseID {
			cp := *lvl
			levels = append(levels, &cp)
		}
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i].ItemID < levels[j].ItemID })
	return paginate(levels, limit, offset), nil
}

func (r *LevelRepo) ListBelowReorder(_ context.Context, warehouseID string, limit int) ([]repository.LowStockRow, error) {
	totals := map[string]decimal.Decimal{}
	for _, lvl := range r.S.Levels {
		if warehouseID != "" && lvl.WarehouseID != warehouseID {
			continue
		}
		totals[lvl.ItemID] = totals[lvl.ItemID].Add(lvl.Quantity)
	}
	var rows []repository.LowStockRow
	for id, it := range r.S.Items {
		if it.ReorderLevel.LessThanOrEqual(decimal.Zero) {
			continue
		}
		qty := totals[id]
		if qty.LessThan(it.ReorderLevel) {
			rows = append(rows, repository.LowStockRow{
				ItemID:       it.ID,
				SKU:          it.SKU,
				Name:         it.Name,
				UnitMeasure:  it.UnitMeasure,
				Quantity:     qty,
				ReorderLevel: it.ReorderLevel,
			})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		di := rows[i].ReorderLevel.Sub(rows[i].Quantity)
		dj := rows[j].ReorderLevel.Sub(rows[j].Quantity)
		return di.GreaterThan(dj)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// MovementRepo implementación en memoria de repository.MovementRepository.
// CreateErr, si se configura, hace fallar Create después de FailAfter
// escrituras exitosas (FailAfter 0 falla de inmediato) para simular errores
// de persistencia a mitad de transacción.
type MovementRepo struct {
	S         *Store
	CreateErr error
	FailAfter int
	created   int
}

func (r *MovementRepo) Create(movement *entity.Movement) error {
	if r.CreateErr != nil && r.created >= r.FailAfter {
		return r.CreateErr
	}
	r.created++
	cp := *movement
	r.S.Movements = append(r.S.Movements, &cp)
	return nil
}

func (r *MovementRepo) GetByID(id string) (*entity.Movement, error) {
	for _, m := range r.S.Movements {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool { return m.ItemID == itemID }, from, to, limit, offset), nil
}

func (r *MovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return r.list(func(m *entity.Movement) bool { return m.WarehouseID == warehouseID }, from, to, limit, offset), nil
}

func (r *MovementRepo) ListRecent(limit int) ([]*entity.Movement, error) {
	return r.list(func(*entity.Movement) bool { return true }, nil, nil, limit, 0), nil
}

func (r *MovementRepo) list(match func(*entity.Movement) bool, from, to *time.Time, limit, offset int) []*entity.Movement {
	var out []*entity.Movement
	for _, m := range r.S.Movements {
		if !match(m) {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset)
}

func (r *MovementRepo) SumByPair(itemID, warehouseID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.S.Movements {
		if m.ItemID != itemID || m.WarehouseID != warehouseID {
			continue
		}
		if m.Kind == entity.MovementKindIN {
			sum = sum.Add(m.Quantity)
		} else {
			sum = sum.Sub(m.Quantity)
		}
	}
	return sum, nil
}

func (r *MovementRepo) CountByReference(itemID, kind, reference string) (int, error) {
	count := 0
	for _, m := range r.S.Movements {
		if m.ItemID == itemID && m.Kind == kind && m.Reference == reference {
			count++
		}
	}
	return count, nil
}

// BOMRepo implementación en memoria de repository.BOMRepository.
type BOMRepo struct{ S *Store }

func (r *BOMRepo) Create(bom *entity.BOM) error {
	cp := *bom
	r.S.BOMs[bom.ID] = &cp
	return nil
}

func (r *BOMRepo) GetByID(id string) (*entity.BOM, error) {
	b, ok := r.S.BOMs[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *BOMRepo) GetByFinalProduct(itemID string) (*entity.BOM, error) {
	for _, b := range r.S.BOMs {
		if b.FinalProductID == itemID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *BOMRepo) Update(bom *entity.BOM) error {
	cp := *bom
	r.S.BOMs[bom.ID] = &cp
	return nil
}

func (r *BOMRepo) List(limit, offset int) ([]*entity.BOM, error) {
	ids := make([]string, 0, len(r.S.BOMs))
	for id := range r.S.BOMs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	boms := make([]*entity.BOM, 0, len(ids))
	for _, id := range ids {
		cp := *r.S.BOMs[id]
		boms = append(boms, &cp)
	}
	return paginate(boms, limit, offset), nil
}

func (r *BOMRepo) Delete(id string) error {
	delete(r.S.BOMs, id)
	delete(r.S.Details, id)
	return nil
}

func (r *BOMRepo) GetDetails(bomID string) ([]*entity.BOMDetail, error) {
	details := r.S.Details[bomID]
	out := make([]*entity.BOMDetail, 0, len(details))
	for _, d := range details {
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ComponentItemID < out[j].ComponentItemID })
	return out, nil
}

func (r *BOMRepo) GetDetail(bomID, componentItemID string) (*entity.BOMDetail, error) {
	for _, d := range r.S.Details[bomID] {
		if d.ComponentItemID == componentItemID {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *BOMRepo) AddDetail(detail *entity.BOMDetail) error {
	cp := *detail
	r.S.Details[detail.BOMID] = append(r.S.Details[detail.BOMID], &cp)
	return nil
}

func (r *BOMRepo) UpdateDetail(detail *entity.BOMDetail) error {
	for i, d := range r.S.Details[detail.BOMID] {
		if d.ComponentItemID == detail.ComponentItemID {
			cp := *detail
			r.S.Details[detail.BOMID][i] = &cp
			return nil
		}
	}
	return nil
}

func (r *BOMRepo) RemoveDetail(bomID, componentItemID string) error {
	details := r.S.Details[bomID]
	for i, d := range details {
		if d.ComponentItemID == componentItemID {
			r.S.Details[bomID] = append(details[:i], details[i+1:]...)
			return nil
		}
	}
	return nil
}

// TxRunner ejecuta la función contra un clon del almacén y publica el clon
// solo si la función termina sin error, imitando Commit/Rollback.
// MovementCreateErr y MovementFailAfter se propagan al MovementRepo de la
// transacción para simular fallos de escritura a mitad de camino; LockLog se
// propaga al LevelRepo para registrar el orden de bloqueo de filas.
type TxRunner struct {
	S                 *Store
	MovementCreateErr error
	MovementFailAfter int
	LockLog           *[]string
}

// Run corre fn con repositorios atados al clon y commitea si no hay error.
func (r *TxRunner) Run(_ context.Context, fn func(
	levelRepo repository.InventoryLevelRepository,
	movRepo repository.MovementRepository,
	itemRepo repository.ItemRepository,
	bomRepo repository.BOMRepository,
) error) error {
	snapshot := r.S.Clone()
	movRepo := &MovementRepo{S: snapshot, CreateErr: r.MovementCreateErr, FailAfter: r.MovementFailAfter}
	err := fn(&LevelRepo{S: snapshot, LockLog: r.LockLog}, movRepo, &ItemRepo{S: snapshot}, &BOMRepo{S: snapshot})
	if err != nil {
		return err
	}
	*r.S = *snapshot
	return nil
}

func paginate[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
