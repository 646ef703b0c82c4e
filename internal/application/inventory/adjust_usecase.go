package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// AdjustUseCase registra ajustes directos de inventario (IN, OUT, TRANSFER)
// de forma transaccional, con bloqueo de fila (SELECT FOR UPDATE) y
// Commit/Rollback. Cada ajuste exitoso escribe exactamente un movimiento por
// cambio de nivel; nunca uno sin el otro.
type AdjustUseCase struct {
	txRunner      TxRunner
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
}

// NewAdjustUseCase construye el caso de uso.
func NewAdjustUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
) *AdjustUseCase {
	return &AdjustUseCase{
		txRunner:      txRunner,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
	}
}

// AdjustInput entrada para un ajuste directo sobre un par (artículo, bodega).
// Quantity es un delta con signo; el motor lo normaliza a (kind, abs).
type AdjustInput struct {
	ItemID      string
	WarehouseID string
	Kind        string
	Quantity    decimal.Decimal
	UnitCost    *decimal.Decimal // opcional en entradas; por defecto el costo vigente
	Reference   string
	UserID      string
}

// AdjustResult resultado de un ajuste exitoso.
type AdjustResult struct {
	NewLevel   decimal.Decimal
	MovementID string
}

// Adjust valida la entrada, normaliza el delta y ejecuta nivel + movimiento en
// una transacción. OUT contra stock inexistente o insuficiente falla con
// InsufficientStockError: el stock nunca queda negativo ni se recorta.
func (uc *AdjustUseCase) Adjust(ctx context.Context, input AdjustInput) (*AdjustResult, error) {
	if input.ItemID == "" || input.WarehouseID == "" || input.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	switch input.Kind {
	case entity.MovementKindIN, entity.MovementKindOUT:
	default:
		// TRANSFER entra por Transfer() con bodegas origen/destino.
		return nil, domain.ErrInvalidInput
	}

	// Normalización: la dirección la da el tipo; un delta negativo fuerza OUT.
	kind := input.Kind
	if input.Quantity.IsNegative() {
		kind = entity.MovementKindOUT
	}
	abs := input.Quantity.Abs()
	delta := abs
	if kind == entity.MovementKindOUT {
		delta = abs.Neg()
	}

	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	warehouse, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrWarehouseNotFound
	}

	unitCost := item.UnitCost()
	if kind == entity.MovementKindIN && input.UnitCost != nil {
		if input.UnitCost.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		unitCost = *input.UnitCost
	}

	now := time.Now()
	result := &AdjustResult{}

	err = uc.txRunner.Run(ctx, func(
		levelRepo repository.InventoryLevelRepository,
		movRepo repository.MovementRepository,
		_ repository.ItemRepository,
		_ repository.BOMRepository,
	) error {
		// Bloquea la fila del par para evitar lost updates bajo concurrencia.
		level, err := levelRepo.GetForUpdate(input.ItemID, input.WarehouseID)
		if err != nil {
			return err
		}
		newQty := level.Quantity.Add(delta)
		if newQty.IsNegative() {
			return domain.NewInsufficientStock([]domain.Shortfall{{
				ComponentID:   item.ID,
				ComponentName: item.Name,
				Required:      abs,
				Available:     level.Quantity,
				Unit:          item.UnitMeasure,
			}})
		}
		level.Quantity = newQty
		level.UpdatedAt = now
		if err := levelRepo.Upsert(level); err != nil {
			return err
		}
		mov := &entity.Movement{
			ID:          uuid.New().String(),
			ItemID:      input.ItemID,
			WarehouseID: input.WarehouseID,
			Kind:        kind,
			Quantity:    abs,
			UnitCost:    unitCost,
			TotalCost:   abs.Mul(unitCost),
			Reference:   input.Reference,
			Date:        now,
			CreatedAt:   now,
			CreatedBy:   input.UserID,
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		result.NewLevel = newQty
		result.MovementID = mov.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransferInput entrada para un traslado entre bodegas.
type TransferInput struct {
	ItemID          string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        decimal.Decimal
	Reference       string
	UserID          string
}

// TransferResult resultado de un traslado exitoso.
type TransferResult struct {
	BatchID     string
	SourceLevel decimal.Decimal
	DestLevel   decimal.Decimal
}

// Transfer resta en la bodega origen y suma en la destino dentro de una misma
// transacción, escribiendo un OUT y un IN con el mismo BatchID. Las filas se
// bloquean en orden fijo (por id de bodega) para evitar deadlocks entre
// traslados cruzados concurrentes.
func (uc *AdjustUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	if input.ItemID == "" || input.FromWarehouseID == "" || input.ToWarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if input.FromWarehouseID == input.ToWarehouseID || !input.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	item, err := uc.itemRepo.GetByID(input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	for _, whID := range []string{input.FromWarehouseID, input.ToWarehouseID} {
		wh, err := uc.warehouseRepo.GetByID(whID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrWarehouseNotFound
		}
	}

	now := time.Now()
	batchID := uuid.New().String()
	unitCost := item.UnitCost()
	reference := input.Reference
	if reference == "" {
		reference = "Traslado entre bodegas"
	}

	result := &TransferResult{BatchID: batchID}

	err = uc.txRunner.Run(ctx, func(
		levelRepo repository.InventoryLevelRepository,
		movRepo repository.MovementRepository,
		_ repository.ItemRepository,
		_ repository.BOMRepository,
	) error {
		// Orden de bloqueo determinista sobre ambas filas.
		ordered := []string{input.FromWarehouseID, input.ToWarehouseID}
		sort.Strings(ordered)
		levels := make(map[string]*entity.InventoryLevel, 2)
		for _, whID := range ordered {
			level, err := levelRepo.GetForUpdate(input.ItemID, whID)
			if err != nil {
				return err
			}
			levels[whID] = level
		}

		origin := levels[input.FromWarehouseID]
		dest := levels[input.ToWarehouseID]
		if origin.Quantity.LessThan(input.Quantity) {
			return domain.NewInsufficientStock([]domain.Shortfall{{
				ComponentID:   item.ID,
				ComponentName: item.Name,
				Required:      input.Quantity,
				Available:     origin.Quantity,
				Unit:          item.UnitMeasure,
			}})
		}

		origin.Quantity = origin.Quantity.Sub(input.Quantity)
		dest.Quantity = dest.Quantity.Add(input.Quantity)
		origin.UpdatedAt = now
		dest.UpdatedAt = now
		if err := levelRepo.Upsert(origin); err != nil {
			return err
		}
		if err := levelRepo.Upsert(dest); err != nil {
			return err
		}

		// Salida en origen y entrada en destino, mismo lote y referencia.
		outMov := &entity.Movement{
			ID:          uuid.New().String(),
			BatchID:     batchID,
			ItemID:      input.ItemID,
			WarehouseID: input.FromWarehouseID,
			Kind:        entity.MovementKindOUT,
			Quantity:    input.Quantity,
			UnitCost:    unitCost,
			TotalCost:   input.Quantity.Mul(unitCost),
			Reference:   reference,
			Date:        now,
			CreatedAt:   now,
			CreatedBy:   input.UserID,
		}
		if err := movRepo.Create(outMov); err != nil {
			return err
		}
		inMov := &entity.Movement{
			ID:          uuid.New().String(),
			BatchID:     batchID,
			ItemID:      input.ItemID,
			WarehouseID: input.ToWarehouseID,
			Kind:        entity.MovementKindIN,
			Quantity:    input.Quantity,
			UnitCost:    unitCost,
			TotalCost:   input.Quantity.Mul(unitCost),
			Reference:   reference,
			Date:        now,
			CreatedAt:   now,
			CreatedBy:   input.UserID,
		}
		if err := movRepo.Create(inMov); err != nil {
			return err
		}

		result.SourceLevel = origin.Quantity
		result.DestLevel = dest.Quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
