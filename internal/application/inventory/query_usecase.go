package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// QueryUseCase lecturas de inventario: niveles, libro de movimientos,
// conciliación nivel-vs-libro y stock bajo. Sin efectos secundarios.
type QueryUseCase struct {
	levelRepo repository.InventoryLevelRepository
	movRepo   repository.MovementRepository
}

// NewQueryUseCase construye el caso de uso de lecturas.
func NewQueryUseCase(
	levelRepo repository.InventoryLevelRepository,
	movRepo repository.MovementRepository,
) *QueryUseCase {
	return &QueryUseCase{levelRepo: levelRepo, movRepo: movRepo}
}

// GetLevel devuelve el nivel actual del par; cantidad cero si la fila no existe.
func (uc *QueryUseCase) GetLevel(itemID, warehouseID string) (*dto.LevelResponse, error) {
	level, err := uc.levelRepo.Get(itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &dto.LevelResponse{
		ItemID:      level.ItemID,
		WarehouseID: level.WarehouseID,
		Quantity:    level.Quantity,
		UpdatedAt:   level.UpdatedAt,
	}, nil
}

// ListWarehouseInventory lista los niveles de una bodega.
func (uc *QueryUseCase) ListWarehouseInventory(warehouseID string, limit, offset int) ([]dto.LevelResponse, error) {
	levels, err := uc.levelRepo.ListByWarehouse(warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LevelResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, dto.LevelResponse{
			ItemID:      l.ItemID,
			WarehouseID: l.WarehouseID,
			Quantity:    l.Quantity,
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return out, nil
}

// Reconcile reconstruye el saldo del par desde el libro (sum(IN) - sum(OUT))
// y lo compara con el nivel materializado. Ambos deben coincidir siempre;
// una divergencia indica corrupción y amerita auditoría.
func (uc *QueryUseCase) Reconcile(itemID, warehouseID string) (*dto.ReconciliationResponse, error) {
	level, err := uc.levelRepo.Get(itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	ledgerSum, err := uc.movRepo.SumByPair(itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	return &dto.ReconciliationResponse{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		Level:       level.Quantity,
		LedgerSum:   ledgerSum,
		Consistent:  level.Quantity.Equal(ledgerSum),
	}, nil
}

// ListMovementsByItem lista el historial de un artículo.
func (uc *QueryUseCase) ListMovementsByItem(itemID string, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	movs, err := uc.movRepo.ListByItem(itemID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movs), nil
}

// ListMovementsByWarehouse lista el historial de una bodega.
func (uc *QueryUseCase) ListMovementsByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	movs, err := uc.movRepo.ListByWarehouse(warehouseID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movs), nil
}

// RecentMovements últimos movimientos del sistema (tablero).
func (uc *QueryUseCase) RecentMovements(limit int) ([]dto.MovementResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	movs, err := uc.movRepo.ListRecent(limit)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movs), nil
}

// LowStock artículos por debajo de su umbral de reposición. warehouseID vacío
// considera el stock agregado de todas las bodegas.
func (uc *QueryUseCase) LowStock(ctx context.Context, warehouseID string, limit int) ([]dto.LowStockItemDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := uc.levelRepo.ListBelowReorder(ctx, warehouseID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItemDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockItemDTO{
			ItemID:       r.ItemID,
			SKU:          r.SKU,
			Name:         r.Name,
			UnitMeasure:  r.UnitMeasure,
			Quantity:     r.Quantity,
			ReorderLevel: r.ReorderLevel,
		})
	}
	return out, nil
}

func toMovementResponses(movs []*entity.Movement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovementResponse{
			ID:          m.ID,
			BatchID:     m.BatchID,
			ItemID:      m.ItemID,
			WarehouseID: m.WarehouseID,
			Kind:        m.Kind,
			Quantity:    m.Quantity,
			UnitCost:    m.UnitCost,
			TotalCost:   m.TotalCost,
			Reference:   m.Reference,
			Date:        m.Date,
		})
	}
	return out
}
