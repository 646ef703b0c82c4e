package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// InventoryLevelRepository define el puerto para consultar/actualizar stock
// por par (artículo, bodega). Las mutaciones se usan solo dentro de
// transacciones para garantizar consistencia con el libro de movimientos.
type InventoryLevelRepository interface {
	// Get devuelve el nivel actual; si la fila no existe devuelve cantidad cero.
	Get(itemID, warehouseID string) (*entity.InventoryLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) durante la transacción.
	GetForUpdate(itemID, warehouseID string) (*entity.InventoryLevel, error)
	Upsert(level *entity.InventoryLevel) error
	ListByWarehouse(warehouseID string, limit, offset int) ([]*entity.InventoryLevel, error)
	// ListBelowReorder devuelve artículos cuyo stock total está por debajo de su
	// umbral de reposición (lectura de tablero).
	ListBelowReorder(ctx context.Context, warehouseID string, limit int) ([]LowStockRow, error)
}

// LowStockRow es una fila del reporte de stock bajo: artículo con su nivel
// actual y su umbral de reposición.
type LowStockRow struct {
	ItemID       string
	SKU          string
	Name         string
	UnitMeasure  string
	Quantity     decimal.Decimal
	ReorderLevel decimal.Decimal
}
