package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustInventoryRequest body para POST /api/inventory/adjustments.
// Quantity es un delta con signo: el motor lo normaliza a (kind, abs).
// Para TRANSFER se usan from_warehouse_id y to_warehouse_id en lugar de
// warehouse_id.
type AdjustInventoryRequest struct {
	ItemID          string           `json:"item_id" validate:"required"`
	WarehouseID     string           `json:"warehouse_id,omitempty"`
	FromWarehouseID string           `json:"from_warehouse_id,omitempty"`
	ToWarehouseID   string           `json:"to_warehouse_id,omitempty"`
	Kind            string           `json:"kind" validate:"required,oneof=IN OUT TRANSFER"`
	Quantity        decimal.Decimal  `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"` // opcional en entradas
	Reference       string           `json:"reference" validate:"omitempty,max=255"`
}

// AdjustInventoryResponse resultado de un ajuste directo.
type AdjustInventoryResponse struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	NewLevel    decimal.Decimal `json:"new_level"`
	MovementID  string          `json:"movement_id"`
}

// TransferResponse resultado de un traslado entre bodegas.
type TransferResponse struct {
	ItemID          string          `json:"item_id"`
	FromWarehouseID string          `json:"from_warehouse_id"`
	ToWarehouseID   string          `json:"to_warehouse_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	SourceLevel     decimal.Decimal `json:"source_level"`
	DestLevel       decimal.Decimal `json:"dest_level"`
	BatchID         string          `json:"batch_id"`
}

// MovementResponse una fila del libro de movimientos.
type MovementResponse struct {
	ID          string          `json:"id"`
	BatchID     string          `json:"batch_id,omitempty"`
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Kind        string          `json:"kind"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Reference   string          `json:"reference,omitempty"`
	Date        time.Time       `json:"date"`
}

// LevelResponse nivel de stock de un par (artículo, bodega).
type LevelResponse struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ReconciliationResponse compara el nivel materializado contra el saldo
// reconstruido del libro: sum(IN) - sum(OUT) del par.
type ReconciliationResponse struct {
	ItemID      string          `json:"item_id"`
	WarehouseID string          `json:"warehouse_id"`
	Level       decimal.Decimal `json:"level"`
	LedgerSum   decimal.Decimal `json:"ledger_sum"`
	Consistent  bool            `json:"consistent"`
}

// LowStockItemDTO artículo por debajo de su umbral de reposición.
type LowStockItemDTO struct {
	ItemID       string          `json:"item_id"`
	SKU          string          `json:"sku"`
	Name         string          `json:"name"`
	UnitMeasure  string          `json:"unit_measure,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}
