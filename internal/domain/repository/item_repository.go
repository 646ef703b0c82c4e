package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// ItemRepository define el puerto de persistencia para artículos del catálogo.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetBySKU(sku string) (*entity.Item, error)
	Update(item *entity.Item) error
	// UpdateStandardCost restablece el costo estándar derivado del roll-up de la BOM.
	UpdateStandardCost(itemID string, cost decimal.Decimal, at time.Time) error
	// UpdateLastActualCost restablece el costo real del último lote producido.
	UpdateLastActualCost(itemID string, cost decimal.Decimal, at time.Time) error
	List(limit, offset int) ([]*entity.Item, error)
	Delete(id string) error
}
