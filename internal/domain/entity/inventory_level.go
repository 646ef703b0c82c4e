package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLevel representa el stock actual de un artículo en una bodega.
// Existe a lo sumo una fila por par (artículo, bodega); la ausencia de fila
// equivale a cantidad cero. La fila se crea perezosamente con la primera
// entrada y solo se muta dentro de una transacción junto con su movimiento.
// Invariante: Quantity >= 0 siempre.
type InventoryLevel struct {
	ItemID      string
	WarehouseID string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
