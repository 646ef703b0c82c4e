package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos.
// El libro es append-only: no hay Update ni Delete.
type MovementRepository interface {
	Create(movement *entity.Movement) error
	GetByID(id string) (*entity.Movement, error)
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
	ListRecent(limit int) ([]*entity.Movement, error)
	// SumByPair reconstruye el saldo del par como sum(IN) - sum(OUT).
	// Debe coincidir con InventoryLevel.Quantity en todo momento.
	SumByPair(itemID, warehouseID string) (decimal.Decimal, error)
	// CountByReference cuenta movimientos de un artículo con una referencia dada
	// (p. ej. cuántas veces se produjo una BOM).
	CountByReference(itemID, kind, reference string) (int, error)
}
