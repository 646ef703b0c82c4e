package manufacturing

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Misma firma que inventory.TxRunner: el
// adaptador de postgres satisface ambos puertos con un solo método.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		levelRepo repository.InventoryLevelRepository,
		movRepo repository.MovementRepository,
		itemRepo repository.ItemRepository,
		bomRepo repository.BOMRepository,
	) error) error
}
