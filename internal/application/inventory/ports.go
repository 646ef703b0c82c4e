package inventory

import (
	"context"

	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad: nivel y movimiento se
// escriben juntos o no se escribe ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		levelRepo repository.InventoryLevelRepository,
		movRepo repository.MovementRepository,
		itemRepo repository.ItemRepository,
		bomRepo repository.BOMRepository,
	) error) error
}
