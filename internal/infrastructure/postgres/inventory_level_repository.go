package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo implementación de InventoryLevelRepository sobre
// PostgreSQL (usable con pool o tx). La ausencia de fila equivale a
// cantidad cero: la fila se crea perezosamente con la primera entrada.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// Get obtiene el nivel actual de un artículo en una bodega.
func (r *InventoryLevelRepo) Get(itemID, warehouseID string) (*entity.InventoryLevel, error) {
	query := `
		SELECT item_id, warehouse_id, quantity, updated_at
		FROM inventory_levels WHERE item_id = $1 AND warehouse_id = $2`
	var l entity.InventoryLevel
	err := r.q.QueryRow(context.Background(), query, itemID, warehouseID).Scan(
		&l.ItemID, &l.WarehouseID, &l.Quantity, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InventoryLevel{ItemID: itemID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get inventory level: %w", err)
	}
	return &l, nil
}

// GetForUpdate obtiene el nivel y bloquea la fila (SELECT FOR UPDATE).
// Un SELECT FOR UPDATE sobre un par sin fila no bloquea nada: dos primeras
// entradas concurrentes leerían cero y la segunda pisaría a la primera. Por
// eso la fila se crea primero en cero (ON CONFLICT DO NOTHING) y recién
// entonces se bloquea; el lock serializa todo lector-escritor posterior del
// par dentro de la transacción.
func (r *InventoryLevelRepo) GetForUpdate(itemID, warehouseID string) (*entity.InventoryLevel, error) {
	ensure := `
		INSERT INTO inventory_levels (item_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (item_id, warehouse_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), ensure, itemID, warehouseID); err != nil {
		return nil, fmt.Errorf("ensure inventory level row: %w", err)
	}
	query := `
		SELECT item_id, warehouse_id, quantity, updated_at
		FROM inventory_levels WHERE item_id = $1 AND warehouse_id = $2
		FOR UPDATE`
	var l entity.InventoryLevel
	err := r.q.QueryRow(context.Background(), query, itemID, warehouseID).Scan(
		&l.ItemID, &l.WarehouseID, &l.Quantity, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InventoryLevel{ItemID: itemID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get inventory level for update: %w", err)
	}
	return &l, nil
}

// Upsert inserta o actualiza la cantidad (por artículo y bodega). Las rutas
// de mutación llaman antes a GetForUpdate en la misma transacción, así que
// la escritura absoluta ocurre con la fila ya bloqueada.
func (r *InventoryLevelRepo) Upsert(level *entity.InventoryLevel) error {
	query := `
		INSERT INTO inventory_levels (item_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (item_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = now()`
	_, err := r.q.Exec(context.Background(), query, level.ItemID, level.WarehouseID, level.Quantity)
	if err != nil {
		return fmt.Errorf("upsert inventory level: %w", err)
	}
	return nil
}

// ListByWarehouse lista los niveles de una bodega con paginación.
func (r *InventoryLevelRepo) ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.InventoryLevel, error) {
	query := `
		SELECT l.item_id, l.warehouse_id, l.quantity, l.updated_at
		FROM inventory_levels l
		JOIN items i ON i.id = l.item_id
		WHERE l.warehouse_id = $1
		ORDER BY i.name LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, warehouseID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels by warehouse: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLevel
	for rows.Next() {
		var l entity.InventoryLevel
		if err := rows.Scan(&l.ItemID, &l.WarehouseID, &l.Quantity, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ListBelowReorder devuelve los artículos cuyo stock actual (en la bodega
// indicada, o agregado si warehouseID es vacío) está por debajo de su umbral
// de reposición. Ordena por déficit descendente (mayor quiebre primero).
func (r *InventoryLevelRepo) ListBelowReorder(ctx context.Context, warehouseID string, limit int) ([]repository.LowStockRow, error) {
	var (
		query string
		args  []any
	)

	if warehouseID != "" {
		query = `
			SELECT
				i.id,
				i.sku,
				i.name,
				i.unit_measure,
				COALESCE(l.quantity, 0) AS current_quantity,
				i.reorder_level
			FROM items i
			LEFT JOIN inventory_levels l ON l.item_id = i.id AND l.warehouse_id = $1
			WHERE i.reorder_level > 0
			  AND COALESCE(l.quantity, 0) < i.reorder_level
			ORDER BY (i.reorder_level - COALESCE(l.quantity, 0)) DESC
			LIMIT $2`
		args = []any{warehouseID, limit}
	} else {
		query = `
			SELECT
				i.id,
				i.sku,
				i.name,
				i.unit_measure,
				COALESCE(SUM(l.quantity), 0) AS current_quantity,
				i.reorder_level
			FROM items i
			LEFT JOIN inventory_levels l ON l.item_id = i.id
			WHERE i.reorder_level > 0
			GROUP BY i.id, i.sku, i.name, i.unit_measure, i.reorder_level
			HAVING COALESCE(SUM(l.quantity), 0) < i.reorder_level
			ORDER BY (i.reorder_level - COALESCE(SUM(l.quantity), 0)) DESC
			LIMIT $1`
		args = []any{limit}
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list below reorder level: %w", err)
	}
	defer rows.Close()

	var items []repository.LowStockRow
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(
			&row.ItemID, &row.SKU, &row.Name, &row.UnitMeasure,
			&row.Quantity, &row.ReorderLevel,
		); err != nil {
			return nil, fmt.Errorf("scan low stock row: %w", err)
		}
		items = append(items, row)
	}
	return items, rows.Err()
}
