package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
)

// InventoryHandler maneja las peticiones HTTP de ajustes, niveles y libro de
// movimientos (protegido).
type InventoryHandler struct {
	adjust *inventory.AdjustUseCase
	query  *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjust *inventory.AdjustUseCase, query *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, query: query}
}

// Adjust godoc
// @Summary      Registrar ajuste de inventario
// @Description  IN/OUT sobre un par (artículo, bodega); TRANSFER usa
//
//	from_warehouse_id y to_warehouse_id y escribe un par OUT+IN atado por batch_id.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustInventoryRequest  true  "Datos del ajuste"
// @Success      201   {object}  dto.AdjustInventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if fieldErrs := validateStruct(in); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: fieldErrs})
	}
	userID := GetUserID(c)

	if in.Kind == "TRANSFER" {
		result, err := h.adjust.Transfer(c.Context(), inventory.TransferInput{
			ItemID:          in.ItemID,
			FromWarehouseID: in.FromWarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Quantity:        in.Quantity,
			Reference:       in.Reference,
			UserID:          userID,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(dto.TransferResponse{
			ItemID:          in.ItemID,
			FromWarehouseID: in.FromWarehouseID,
			ToWarehouseID:   in.ToWarehouseID,
			Quantity:        in.Quantity,
			SourceLevel:     result.SourceLevel,
			DestLevel:       result.DestLevel,
			BatchID:         result.BatchID,
		})
	}

	result, err := h.adjust.Adjust(c.Context(), inventory.AdjustInput{
		ItemID:      in.ItemID,
		WarehouseID: in.WarehouseID,
		Kind:        in.Kind,
		Quantity:    in.Quantity,
		UnitCost:    in.UnitCost,
		Reference:   in.Reference,
		UserID:      userID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.AdjustInventoryResponse{
		ItemID:      in.ItemID,
		WarehouseID: in.WarehouseID,
		NewLevel:    result.NewLevel,
		MovementID:  result.MovementID,
	})
}

// GetLevel godoc
// @Summary      Nivel de stock de un par (artículo, bodega)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  true  "ID del artículo"
// @Param        warehouse_id  query  string  true  "ID de la bodega"
// @Success      200  {object}  dto.LevelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/levels [get]
func (h *InventoryHandler) GetLevel(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	warehouseID := c.Query("warehouse_id")
	if itemID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id y warehouse_id son requeridos"})
	}
	out, err := h.query.GetLevel(itemID, warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListWarehouseInventory godoc
// @Summary      Inventario de una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la bodega"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200  {array}  dto.LevelResponse
// @Router       /api/warehouses/{id}/inventory [get]
func (h *InventoryHandler) ListWarehouseInventory(c *fiber.Ctx) error {
	warehouseID := c.Params("id")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	limit, offset := pageParams(c)
	out, err := h.query.ListWarehouseInventory(warehouseID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Conciliar nivel contra el libro de movimientos
// @Description  Compara el nivel materializado del par contra sum(IN) - sum(OUT) del libro.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  true  "ID del artículo"
// @Param        warehouse_id  query  string  true  "ID de la bodega"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	warehouseID := c.Query("warehouse_id")
	if itemID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id y warehouse_id son requeridos"})
	}
	out, err := h.query.Reconcile(itemID, warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos del libro
// @Description  Filtra por item_id o warehouse_id (excluyentes; sin filtro
//
//	devuelve los más recientes). from/to acotan por fecha (RFC3339 o YYYY-MM-DD).
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id       query  string  false  "Filtrar por artículo"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        from          query  string  false  "Fecha inicial"
// @Param        to            query  string  false  "Fecha final"
// @Param        limit         query  int     false  "Límite"   default(20)
// @Param        offset        query  int     false  "Offset"   default(0)
// @Success      200  {array}  dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	warehouseID := c.Query("warehouse_id")
	limit, offset := pageParams(c)

	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339 o YYYY-MM-DD)"})
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339 o YYYY-MM-DD)"})
	}

	var out []dto.MovementResponse
	switch {
	case itemID != "":
		out, err = h.query.ListMovementsByItem(itemID, from, to, limit, offset)
	case warehouseID != "":
		out, err = h.query.ListMovementsByWarehouse(warehouseID, from, to, limit, offset)
	default:
		out, err = h.query.RecentMovements(limit)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Artículos por debajo de su umbral de reposición
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega. Vacío = stock agregado."
// @Param        limit         query  int     false  "Límite"  default(20)
// @Success      200  {array}  dto.LowStockItemDTO
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouse_id")
	limit, _ := pageParams(c)
	out, err := h.query.LowStock(c.Context(), warehouseID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// parseDateQuery acepta RFC3339 o fecha simple YYYY-MM-DD; vacío devuelve nil.
func parseDateQuery(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
