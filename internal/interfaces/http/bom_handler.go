package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Manufactura-api/internal/application/dto"
	"github.com/jhoicas/Manufactura-api/internal/application/manufacturing"
)

// BOMHandler maneja las peticiones HTTP de recetas y producción (protegido).
type BOMHandler struct {
	bomUC     *manufacturing.BOMUseCase
	produceUC *manufacturing.ProduceUseCase
}

// NewBOMHandler construye el handler.
func NewBOMHandler(bomUC *manufacturing.BOMUseCase, produceUC *manufacturing.ProduceUseCase) *BOMHandler {
	return &BOMHandler{bomUC: bomUC, produceUC: produceUC}
}

// Create godoc
// @Summary      Crear receta (BOM)
// @Tags         boms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBOMRequest  true  "Producto final y descripción"
// @Success      201   {object}  dto.BOMResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/boms [post]
func (h *BOMHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBOMRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if fieldErrs := validateStruct(in); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: fieldErrs})
	}
	out, err := h.bomUC.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener receta con renglones, costo estándar y producciones
// @Tags         boms
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la receta"
// @Success      200  {object}  dto.BOMResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boms/{id} [get]
func (h *BOMHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.bomUC.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar recetas
// @Tags         boms
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"   default(20)
// @Param        offset  query  int  false  "Offset"   default(0)
// @Success      200     {object}  dto.BOMListResponse
// @Router       /api/boms [get]
func (h *BOMHandler) List(c *fiber.Ctx) error {
	limit, offset := pageParams(c)
	out, err := h.bomUC.List(limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar receta
// @Tags         boms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la receta"
// @Param        body  body  dto.UpdateBOMRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.BOMResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/boms/{id} [put]
func (h *BOMHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.UpdateBOMRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.bomUC.Update(c.Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar receta y sus renglones
// @Tags         boms
// @Security     Bearer
// @Param        id  path  string  true  "ID de la receta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boms/{id} [delete]
func (h *BOMHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	if err := h.bomUC.Delete(id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddComponent godoc
// @Summary      Agregar componente a la receta
// @Description  Rechaza autorreferencias, duplicados y ciclos entre recetas.
//
//	Restablece el costo estándar del producto final en la misma transacción.
//
// @Tags         boms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la receta"
// @Param        body  body  dto.BOMComponentRequest  true  "Componente y cantidad por unidad"
// @Success      201   {object}  dto.BOMResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/boms/{id}/components [post]
func (h *BOMHandler) AddComponent(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.BOMComponentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if fieldErrs := validateStruct(in); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: fieldErrs})
	}
	out, err := h.bomUC.AddComponent(c.Context(), id, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateComponent godoc
// @Summary      Actualizar cantidad o unidad de un componente
// @Tags         boms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string  true  "ID de la receta"
// @Param        itemId  path  string  true  "ID del componente"
// @Param        body    body  dto.BOMComponentRequest  true  "Cantidad por unidad"
// @Success      200     {object}  dto.BOMResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/boms/{id}/components/{itemId} [put]
func (h *BOMHandler) UpdateComponent(c *fiber.Ctx) error {
	id := c.Params("id")
	itemID := c.Params("itemId")
	if id == "" || itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id e itemId son requeridos"})
	}
	var in dto.BOMComponentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.bomUC.UpdateComponent(c.Context(), id, itemID, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// RemoveComponent godoc
// @Summary      Quitar un componente de la receta
// @Tags         boms
// @Security     Bearer
// @Param        id      path  string  true  "ID de la receta"
// @Param        itemId  path  string  true  "ID del componente"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boms/{id}/components/{itemId} [delete]
func (h *BOMHandler) RemoveComponent(c *fiber.Ctx) error {
	id := c.Params("id")
	itemID := c.Params("itemId")
	if id == "" || itemID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id e itemId son requeridos"})
	}
	if err := h.bomUC.RemoveComponent(c.Context(), id, itemID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CostBreakdown godoc
// @Summary      Desglose de costos de la receta
// @Description  Por componente: costo unitario vigente y total; más margen
//
//	contra el precio de venta del producto final.
//
// @Tags         boms
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la receta"
// @Success      200  {object}  dto.CostBreakdownResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/boms/{id}/cost [get]
func (h *BOMHandler) CostBreakdown(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	out, err := h.bomUC.CostBreakdown(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CheckAvailability godoc
// @Summary      Verificar disponibilidad para producir
// @Description  Lectura pura: misma aritmética que producir, sin bloqueos ni
//
//	escrituras. Devuelve todos los faltantes.
//
// @Tags         boms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la receta"
// @Param        body  body  dto.AvailabilityRequest  true  "Cantidad y bodega"
// @Success      200   {object}  dto.AvailabilityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/boms/{id}/check-availability [post]
func (h *BOMHandler) CheckAvailability(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.AvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if fieldErrs := validateStruct(in); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: fieldErrs})
	}
	out, err := h.produceUC.CheckAvailability(c.Context(), id, in.Quantity, in.WarehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Produce godoc
// @Summary      Producir N unidades desde la receta
// @Description  Atómico: descuenta todos los componentes y acredita el
//
//	producto final en una sola transacción; si falta cualquier componente no
//	se escribe nada y el 409 lista todos los faltantes.
//
// @Tags         boms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la receta"
// @Param        body  body  dto.ProduceRequest  true  "Cantidad, bodega y referencia"
// @Success      201   {object}  dto.ProduceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/boms/{id}/produce [post]
func (h *BOMHandler) Produce(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_ID", Message: "id es requerido"})
	}
	var in dto.ProduceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if fieldErrs := validateStruct(in); fieldErrs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: fieldErrs})
	}
	out, err := h.produceUC.Produce(c.Context(), manufacturing.ProduceInput{
		BOMID:       id,
		Quantity:    in.Quantity,
		WarehouseID: in.WarehouseID,
		Reference:   in.Reference,
		UserID:      GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
