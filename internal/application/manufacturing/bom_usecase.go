package manufacturing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

// BOMUseCase administra el registro de recetas. Toda mutación de renglones
// corre dentro de una transacción que restablece el costo estándar del
// producto final en el mismo commit: la receta y su roll-up nunca divergen.
type BOMUseCase struct {
	txRunner TxRunner
	bomRepo  repository.BOMRepository
	itemRepo repository.ItemRepository
	movRepo  repository.MovementRepository
}

// NewBOMUseCase construye el caso de uso.
func NewBOMUseCase(
	txRunner TxRunner,
	bomRepo repository.BOMRepository,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
) *BOMUseCase {
	return &BOMUseCase{txRunner: txRunner, bomRepo: bomRepo, itemRepo: itemRepo, movRepo: movRepo}
}

// Create crea una receta para un producto final. Un producto tiene a lo sumo
// una receta.
func (uc *BOMUseCase) Create(in dto.CreateBOMRequest) (*dto.BOMResponse, error) {
	if in.FinalProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	item, err := uc.itemRepo.GetByID(in.FinalProductID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	existing, err := uc.bomRepo.GetByFinalProduct(in.FinalProductID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	bom := &entity.BOM{
		ID:             uuid.New().String(),
		FinalProductID: in.FinalProductID,
		Description:    in.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.bomRepo.Create(bom); err != nil {
		return nil, err
	}
	return uc.toResponse(bom, nil)
}

// GetByID devuelve la receta con sus renglones, costo estándar y el número de
// producciones registradas en el libro.
func (uc *BOMUseCase) GetByID(id string) (*dto.BOMResponse, error) {
	bom, err := uc.bomRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, domain.ErrBOMNotFound
	}
	details, err := uc.bomRepo.GetDetails(id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(bom, details)
}

// List lista recetas con paginación.
func (uc *BOMUseCase) List(limit, offset int) (*dto.BOMListResponse, error) {
	boms, err := uc.bomRepo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BOMResponse, 0, len(boms))
	for _, b := range boms {
		resp, err := uc.toResponse(b, nil)
		if err != nil {
			return nil, err
		}
		items = append(items, *resp)
	}
	return &dto.BOMListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Update edita descripción o producto final (lista blanca). Cambiar el
// producto final re-deriva su costo estándar.
func (uc *BOMUseCase) Update(ctx context.Context, id string, in dto.UpdateBOMRequest) (*dto.BOMResponse, error) {
	bom, err := uc.bomRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, domain.ErrBOMNotFound
	}
	if in.Description != nil {
		bom.Description = *in.Description
	}
	if in.FinalProductID != nil && *in.FinalProductID != bom.FinalProductID {
		item, err := uc.itemRepo.GetByID(*in.FinalProductID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrItemNotFound
		}
		existing, err := uc.bomRepo.GetByFinalProduct(*in.FinalProductID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, domain.ErrDuplicate
		}
		// El nuevo producto final no puede figurar como componente de su receta.
		details, err := uc.bomRepo.GetDetails(id)
		if err != nil {
			return nil, err
		}
		for _, d := range details {
			if d.ComponentItemID == *in.FinalProductID {
				return nil, domain.ErrSelfReference
			}
		}
		bom.FinalProductID = *in.FinalProductID
	}
	bom.UpdatedAt = time.Now()

	err = uc.txRunner.Run(ctx, func(
		_ repository.InventoryLevelRepository,
		_ repository.MovementRepository,
		itemRepo repository.ItemRepository,
		bomRepo repository.BOMRepository,
	) error {
		if err := bomRepo.Update(bom); err != nil {
			return err
		}
		return recomputeStandardCost(bomRepo, itemRepo, bom)
	})
	if err != nil {
		return nil, err
	}
	details, err := uc.bomRepo.GetDetails(id)
	if err != nil {
		return nil, err
	}
	return uc.toResponse(bom, details)
}

// Delete elimina la receta y sus renglones. El costo estándar del producto
// final deja de restablecerse; el último valor queda como histórico.
func (uc *BOMUseCase) Delete(id string) error {
	bom, err := uc.bomRepo.GetByID(id)
	if err != nil {
		return err
	}
	if bom == nil {
		return domain.ErrBOMNotFound
	}
	return uc.bomRepo.Delete(id)
}

// AddComponent agrega un renglón a la receta. Rechaza autorreferencias,
// componentes duplicados, cantidades no positivas y cualquier ciclo a través
// de otras recetas; al confirmar, restablece el costo estándar en la misma
// transacción.
func (uc *BOMUseCase) AddComponent(ctx context.Context, bomID string, in dto.BOMComponentRequest) (*dto.BOMResponse, error) {
	bom, err := uc.bomRepo.GetByID(bomID)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, domain.ErrBOMNotFound
	}
	if !in.QuantityPerUnit.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.ComponentItemID == bom.FinalProductID {
		return nil, domain.ErrSelfReference
	}
	component, err := uc.itemRepo.GetByID(in.ComponentItemID)
	if err != nil {
		return nil, err
	}
	if component == nil {
		return nil, domain.ErrItemNotFound
	}
	existing, err := uc.bomRepo.GetDetail(bomID, in.ComponentItemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateComponent
	}
	cycle, err := uc.wouldCreateCycle(bom.FinalProductID, in.ComponentItemID)
	if err != nil {
		return nil, err
	}
	if cycle {
		return nil, domain.ErrBOMCycle
	}

	unit := in.UnitOfMeasure
	if unit == "" {
		unit = component.UnitMeasure
	}
	detail := &entity.BOMDetail{
		ID:              uuid.New().String(),
		BOMID:           bomID,
		ComponentItemID: in.ComponentItemID,
		QuantityPerUnit: in.QuantityPerUnit,
		UnitOfMeasure:   unit,
	}

	err = uc.txRunner.Run(ctx, func(
		_ repository.InventoryLevelRepository,
		_ repository.MovementRepository,
		itemRepo repository.ItemRepository,
		bomRepo repository.BOMRepository,
	) error {
		if err := bomRepo.AddDetail(detail); err != nil {
			return err
		}
		return recomputeStandardCost(bomRepo, itemRepo, bom)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(bomID)
}

// UpdateComponent cambia cantidad o unidad de un renglón existente y
// restablece el costo estándar.
func (uc *BOMUseCase) UpdateComponent(ctx context.Context, bomID, componentItemID string, in dto.BOMComponentRequest) (*dto.BOMResponse, error) {
	bom, err := uc.bomRepo.GetByID(bomID)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, domain.ErrBOMNotFound
	}
	detail, err := uc.bomRepo.GetDetail(bomID, componentItemID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, domain.ErrNotFound
	}
	if !in.QuantityPerUnit.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	detail.QuantityPerUnit = in.QuantityPerUnit
	if in.UnitOfMeasure != "" {
		detail.UnitOfMeasure = in.UnitOfMeasure
	}

	err = uc.txRunner.Run(ctx, func(
		_ repository.InventoryLevelRepository,
		_ repository.MovementRepository,
		itemRepo repository.ItemRepository,
		bomRepo repository.BOMRepository,
	) error {
		if err := bomRepo.UpdateDetail(detail); err != nil {
			return err
		}
		return recomputeStandardCost(bomRepo, itemRepo, bom)
	})
	if err != nil {
		return nil, err
	}
	return uc.GetByID(bomID)
}

// RemoveComponent quita un renglón y restablece el costo estándar.
func (uc *BOMUseCase) RemoveComponent(ctx context.Context, bomID, componentItemID string) error {
	bom, err := uc.bomRepo.GetByID(bomID)
	if err != nil {
		return err
	}
	if bom == nil {
		return domain.ErrBOMNotFound
	}
	detail, err := uc.bomRepo.GetDetail(bomID, componentItemID)
	if err != nil {
		return err
	}
	if detail == nil {
		return domain.ErrNotFound
	}
	return uc.txRunner.Run(ctx, func(
		_ repository.InventoryLevelRepository,
		_ repository.MovementRepository,
		itemRepo repository.ItemRepository,
		bomRepo repository.BOMRepository,
	) error {
		if err := bomRepo.RemoveDetail(bomID, componentItemID); err != nil {
			return err
		}
		return recomputeStandardCost(bomRepo, itemRepo, bom)
	})
}

// CostBreakdown desglosa el costo estándar por componente y el margen contra
// el precio de venta del producto final. Lectura pura.
func (uc *BOMUseCase) CostBreakdown(bomID string) (*dto.CostBreakdownResponse, error) {
	bom, err := uc.bomRepo.GetByID(bomID)
	if err != nil {
		return nil, err
	}
	if bom == nil {
		return nil, domain.ErrBOMNotFound
	}
	finalItem, err := uc.itemRepo.GetByID(bom.FinalProductID)
	if err != nil {
		return nil, err
	}
	if finalItem == nil {
		return nil, domain.ErrItemNotFound
	}
	details, err := uc.bomRepo.GetDetails(bomID)
	if err != nil {
		return nil, err
	}

	lines := make([]dto.CostLineDTO, 0, len(details))
	total := decimal.Zero
	for _, d := range details {
		comp, err := uc.itemRepo.GetByID(d.ComponentItemID)
		if err != nil {
			return nil, err
		}
		if comp == nil {
			return nil, domain.ErrItemNotFound
		}
		unitCost := comp.UnitCost()
		lineTotal := unitCost.Mul(d.QuantityPerUnit)
		total = total.Add(lineTotal)
		lines = append(lines, dto.CostLineDTO{
			ComponentItemID: d.ComponentItemID,
			ComponentName:   comp.Name,
			QuantityPerUnit: d.QuantityPerUnit,
			UnitCost:        unitCost,
			TotalCost:       lineTotal,
		})
	}

	profit := finalItem.Price.Sub(total)
	margin := decimal.Zero
	if finalItem.Price.GreaterThan(decimal.Zero) {
		margin = profit.Div(finalItem.Price).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return &dto.CostBreakdownResponse{
		BOMID:          bom.ID,
		FinalProductID: bom.FinalProductID,
		Components:     lines,
		TotalCost:      total,
		SellingPrice:   finalItem.Price,
		Profit:         profit,
		ProfitMargin:   margin,
	}, nil
}

// wouldCreateCycle detecta si agregar componentID a la receta de
// finalProductID cierra un ciclo en la cadena de BOMs (A requiere B requiere
// A, a cualquier profundidad). Recorre el grafo hacia abajo desde el
// componente; si alcanza al producto final hay ciclo. La expansión anidada no
// se auto-produce, pero un ciclo haría imposible producir cualquiera de los
// involucrados.
func (uc *BOMUseCase) wouldCreateCycle(finalProductID, componentID string) (bool, error) {
	visited := map[string]bool{}
	stack := []string{componentID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == finalProductID {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		sub, err := uc.bomRepo.GetByFinalProduct(current)
		if err != nil {
			return false, err
		}
		if sub == nil {
			continue
		}
		details, err := uc.bomRepo.GetDetails(sub.ID)
		if err != nil {
			return false, err
		}
		for _, d := range details {
			stack = append(stack, d.ComponentItemID)
		}
	}
	return false, nil
}

// recomputeStandardCost re-deriva el costo estándar del producto final de la
// receta: Σ costo unitario * cantidad por unidad. Corre dentro de la misma
// transacción que la mutación de renglones.
func recomputeStandardCost(
	bomRepo repository.BOMRepository,
	itemRepo repository.ItemRepository,
	bom *entity.BOM,
) error {
	details, err := bomRepo.GetDetails(bom.ID)
	if err != nil {
		return err
	}
	costs := make(map[string]decimal.Decimal, len(details))
	for _, d := range details {
		comp, err := itemRepo.GetByID(d.ComponentItemID)
		if err != nil {
			return err
		}
		if comp == nil {
			return domain.ErrItemNotFound
		}
		costs[d.ComponentItemID] = comp.UnitCost()
	}
	cost := manufacturing.StandardCost(details, func(id string) decimal.Decimal { return costs[id] })
	return itemRepo.UpdateStandardCost(bom.FinalProductID, cost, time.Now())
}

func (uc *BOMUseCase) toResponse(bom *entity.BOM, details []*entity.BOMDetail) (*dto.BOMResponse, error) {
	finalItem, err := uc.itemRepo.GetByID(bom.FinalProductID)
	if err != nil {
		return nil, err
	}
	resp := &dto.BOMResponse{
		ID:             bom.ID,
		FinalProductID: bom.FinalProductID,
		Description:    bom.Description,
		CreatedAt:      bom.CreatedAt,
		UpdatedAt:      bom.UpdatedAt,
	}
	if finalItem != nil {
		resp.FinalProductName = finalItem.Name
		if finalItem.StandardCost != nil {
			resp.StandardCost = *finalItem.StandardCost
		}
	}
	count, err := uc.movRepo.CountByReference(bom.FinalProductID, entity.MovementKindIN, ProductionReference)
	if err != nil {
		return nil, err
	}
	resp.ProductionCount = count

	for _, d := range details {
		line := dto.BOMDetailResponse{
			ComponentItemID: d.ComponentItemID,
			QuantityPerUnit: d.QuantityPerUnit,
			UnitOfMeasure:   d.UnitOfMeasure,
		}
		if comp, err := uc.itemRepo.GetByID(d.ComponentItemID); err == nil && comp != nil {
			line.ComponentName = comp.Name
		}
		resp.Details = append(resp.Details, line)
	}
	return resp, nil
}
