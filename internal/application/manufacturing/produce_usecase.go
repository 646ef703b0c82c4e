package manufacturing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// ProductionReference es la referencia por defecto de los movimientos de una
// producción. Contar los IN del producto final con esta referencia da el
// número de veces que se produjo la receta.
const ProductionReference = "Producción desde BOM"

// ProduceUseCase es el motor de producción: consume los componentes de una
// receta y acredita el producto final, todo o nada. La verificación de
// disponibilidad y las mutaciones ocurren en una sola transacción con las
// filas de stock bloqueadas, así que entre el chequeo y el descuento nadie
// puede tocar los pares involucrados.
type ProduceUseCase struct {
	txRunner      TxRunner
	bomRepo       repository.BOMRepository
	itemRepo      repository.ItemRepository
	warehouseRepo repository.WarehouseRepository
	levelRepo     repository.InventoryLevelRepository
}

// NewProduceUseCase construye el motor de producción. levelRepo (atado al
// pool) solo se usa para la verificación de disponibilidad sin efectos.
func NewProduceUseCase(
	txRunner TxRunner,
	bomRepo repository.BOMRepository,
	itemRepo repository.ItemRepository,
	warehouseRepo repository.WarehouseRepository,
	levelRepo repository.InventoryLevelRepository,
) *ProduceUseCase {
	return &ProduceUseCase{
		txRunner:      txRunner,
		bomRepo:       bomRepo,
		itemRepo:      itemRepo,
		warehouseRepo: warehouseRepo,
		levelRepo:     levelRepo,
	}
}

// ProduceInput entrada para producir N unidades de una receta en una bodega.
type ProduceInput struct {
	BOMID       string
	Quantity    int64
	WarehouseID string
	Reference   string
	UserID      string
}

// Produce ejecuta una producción:
//  1. valida cantidad y bodega antes de leer inventario,
//  2. carga la receta (BOMNotFound / EmptyBOM),
//  3. en una transacción: bloquea las filas de los componentes y del producto
//     final en un único orden fijo (por id de artículo, para evitar deadlocks
//     entre producciones que comparten artículos), recolecta TODOS los
//     faltantes,
//  4. si hay faltantes aborta sin escribir nada,
//  5. si no: un OUT por componente, un IN por el producto final (fila creada
//     perezosamente), mismo BatchID y referencia,
//  6. restablece el costo real unitario del producto final con el costo del lote.
//
// Cualquier fallo dentro de la transacción revierte todas las mutaciones:
// un consumo parcial jamás es observable.
func (uc *ProduceUseCase) Produce(ctx context.Context, input ProduceInput) (*dto.ProduceResponse, error) {
	if input.Quantity <= 0 || input.BOMID == "" || input.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	warehouse, err := uc.warehouseRepo.GetByID(input.WarehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrWarehouseNotFound
	}

	bom, details, components, finalItem, err := uc.loadRecipe(input.BOMID)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(input.Quantity)
	now := time.Now()
	batchID := uuid.New().String()
	reference := input.Reference
	if reference == "" {
		reference = ProductionReference
	}

	var response *dto.ProduceResponse

	err = uc.txRunner.Run(ctx, func(
		levelRepo repository.InventoryLevelRepository,
		movRepo repository.MovementRepository,
		itemRepo repository.ItemRepository,
		_ repository.BOMRepository,
	) error {
		// Bloqueo de todas las filas involucradas (componentes y producto
		// final) en un único orden por id de artículo: dos producciones donde
		// la salida de una es insumo de la otra adquieren los locks en el
		// mismo orden y no se interbloquean.
		lockIDs := make([]string, 0, len(details)+1)
		for _, d := range details {
			lockIDs = append(lockIDs, d.ComponentItemID)
		}
		lockIDs = append(lockIDs, bom.FinalProductID)
		sort.Strings(lockIDs)

		levels := make(map[string]*entity.InventoryLevel, len(lockIDs))
		for _, id := range lockIDs {
			level, err := levelRepo.GetForUpdate(id, input.WarehouseID)
			if err != nil {
				return err
			}
			levels[id] = level
		}

		// Recolección de TODOS los faltantes antes de descontar nada.
		var shortfalls []domain.Shortfall
		for _, d := range details {
			level := levels[d.ComponentItemID]
			required := d.QuantityPerUnit.Mul(qty)
			if level.Quantity.LessThan(required) {
				comp := components[d.ComponentItemID]
				shortfalls = append(shortfalls, domain.Shortfall{
					ComponentID:   d.ComponentItemID,
					ComponentName: comp.Name,
					Required:      required,
					Available:     level.Quantity,
					Unit:          d.UnitOfMeasure,
				})
			}
		}
		if len(shortfalls) > 0 {
			return domain.NewInsufficientStock(shortfalls)
		}

		// Descuenta cada componente y registra su salida.
		consumed := make([]manufacturing.Consumption, 0, len(details))
		for _, d := range details {
			comp := components[d.ComponentItemID]
			required := d.QuantityPerUnit.Mul(qty)
			unitCost := comp.UnitCost()

			level := levels[d.ComponentItemID]
			level.Quantity = level.Quantity.Sub(required)
			level.UpdatedAt = now
			if err := levelRepo.Upsert(level); err != nil {
				return err
			}
			mov := &entity.Movement{
				ID:          uuid.New().String(),
				BatchID:     batchID,
				ItemID:      d.ComponentItemID,
				WarehouseID: input.WarehouseID,
				Kind:        entity.MovementKindOUT,
				Quantity:    required,
				UnitCost:    unitCost,
				TotalCost:   required.Mul(unitCost),
				Reference:   reference,
				Date:        now,
				CreatedAt:   now,
				CreatedBy:   input.UserID,
			}
			if err := movRepo.Create(mov); err != nil {
				return err
			}
			consumed = append(consumed, manufacturing.Consumption{
				ComponentID:   d.ComponentItemID,
				ComponentName: comp.Name,
				Quantity:      required,
				UnitCost:      unitCost,
				Unit:          d.UnitOfMeasure,
			})
		}

		// Acredita el producto final (fila ya bloqueada junto con las demás;
		// se crea perezosamente si no existía).
		finalLevel := levels[bom.FinalProductID]
		finalLevel.Quantity = finalLevel.Quantity.Add(qty)
		finalLevel.UpdatedAt = now
		if err := levelRepo.Upsert(finalLevel); err != nil {
			return err
		}

		// Costo real del lote repartido por unidad producida.
		actualUnit := manufacturing.ActualUnitCost(consumed, qty)
		inMov := &entity.Movement{
			ID:          uuid.New().String(),
			BatchID:     batchID,
			ItemID:      bom.FinalProductID,
			WarehouseID: input.WarehouseID,
			Kind:        entity.MovementKindIN,
			Quantity:    qty,
			UnitCost:    actualUnit,
			TotalCost:   qty.Mul(actualUnit),
			Reference:   reference,
			Date:        now,
			CreatedAt:   now,
			CreatedBy:   input.UserID,
		}
		if err := movRepo.Create(inMov); err != nil {
			return err
		}
		if err := itemRepo.UpdateLastActualCost(bom.FinalProductID, actualUnit, now); err != nil {
			return err
		}

		consumedDTOs := make([]dto.ConsumedComponentDTO, 0, len(consumed))
		for _, c := range consumed {
			consumedDTOs = append(consumedDTOs, dto.ConsumedComponentDTO{
				ComponentItemID: c.ComponentID,
				ComponentName:   c.ComponentName,
				Quantity:        c.Quantity,
				UnitCost:        c.UnitCost,
				UnitOfMeasure:   c.Unit,
			})
		}
		response = &dto.ProduceResponse{
			BatchID:  batchID,
			Consumed: consumedDTOs,
			Produced: dto.ProducedDTO{
				ItemID:   bom.FinalProductID,
				ItemName: finalItem.Name,
				Quantity: input.Quantity,
				NewLevel: finalLevel.Quantity,
			},
			UnitCost: actualUnit,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// CheckAvailability calcula los faltantes para producir N unidades sin tocar
// nada: misma aritmética que Produce, sin bloqueos ni escrituras.
func (uc *ProduceUseCase) CheckAvailability(ctx context.Context, bomID string, quantity int64, warehouseID string) (*dto.AvailabilityResponse, error) {
	if quantity <= 0 || bomID == "" || warehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	warehouse, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return nil, err
	}
	if warehouse == nil {
		return nil, domain.ErrWarehouseNotFound
	}
	_, details, components, _, err := uc.loadRecipe(bomID)
	if err != nil {
		return nil, err
	}

	qty := decimal.NewFromInt(quantity)
	var shortfalls []dto.ShortfallDTO
	for _, d := range details {
		level, err := uc.levelRepo.Get(d.ComponentItemID, warehouseID)
		if err != nil {
			return nil, err
		}
		required := d.QuantityPerUnit.Mul(qty)
		if level.Quantity.LessThan(required) {
			shortfalls = append(shortfalls, dto.ShortfallDTO{
				ComponentItemID: d.ComponentItemID,
				ComponentName:   components[d.ComponentItemID].Name,
				Required:        required,
				Available:       level.Quantity,
				UnitOfMeasure:   d.UnitOfMeasure,
			})
		}
	}
	return &dto.AvailabilityResponse{
		CanProduce: len(shortfalls) == 0,
		Shortfalls: shortfalls,
	}, nil
}

// loadRecipe carga la BOM, sus renglones ordenados por id de componente
// (orden de bloqueo fijo), los artículos componentes y el producto final.
func (uc *ProduceUseCase) loadRecipe(bomID string) (
	*entity.BOM, []*entity.BOMDetail, map[string]*entity.Item, *entity.Item, error,
) {
	bom, err := uc.bomRepo.GetByID(bomID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if bom == nil {
		return nil, nil, nil, nil, domain.ErrBOMNotFound
	}
	details, err := uc.bomRepo.GetDetails(bomID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(details) == 0 {
		// Una receta sin insumos no "produce" nada silenciosamente.
		return nil, nil, nil, nil, domain.ErrEmptyBOM
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].ComponentItemID < details[j].ComponentItemID
	})

	components := make(map[string]*entity.Item, len(details))
	for _, d := range details {
		item, err := uc.itemRepo.GetByID(d.ComponentItemID)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if item == nil {
			return nil, nil, nil, nil, fmt.Errorf("componente %s: %w", d.ComponentItemID, domain.ErrItemNotFound)
		}
		components[d.ComponentItemID] = item
	}
	finalItem, err := uc.itemRepo.GetByID(bom.FinalProductID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if finalItem == nil {
		return nil, nil, nil, nil, fmt.Errorf("producto final %s: %w", bom.FinalProductID, domain.ErrItemNotFound)
	}
	return bom, details, components, finalItem, nil
}
