package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest body para POST /api/items.
type CreateItemRequest struct {
	CategoryID   string          `json:"category_id" validate:"omitempty,uuid4"`
	SKU          string          `json:"sku" validate:"required,max=50"`
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description" validate:"omitempty,max=500"`
	UnitMeasure  string          `json:"unit_measure" validate:"omitempty,max=20"`
	Cost         decimal.Decimal `json:"cost"`
	Price        decimal.Decimal `json:"price"`
	ReorderLevel decimal.Decimal `json:"reorder_level"`
}

// UpdateItemRequest body para PUT /api/items/:id. Campos puntero: solo se
// aplican los presentes; todo lo demás se rechaza en el parseo (lista blanca,
// nunca asignación ciega de atributos). El costo no se edita por aquí: lo
// restablecen el roll-up de BOM y las producciones.
type UpdateItemRequest struct {
	CategoryID   *string          `json:"category_id,omitempty" validate:"omitempty,uuid4"`
	Name         *string          `json:"name,omitempty" validate:"omitempty,max=100"`
	Description  *string          `json:"description,omitempty" validate:"omitempty,max=500"`
	UnitMeasure  *string          `json:"unit_measure,omitempty" validate:"omitempty,max=20"`
	Price        *decimal.Decimal `json:"price,omitempty"`
	ReorderLevel *decimal.Decimal `json:"reorder_level,omitempty"`
}

// ItemResponse representación de un artículo en respuestas.
type ItemResponse struct {
	ID               string           `json:"id"`
	CategoryID       string           `json:"category_id,omitempty"`
	SKU              string           `json:"sku"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	UnitMeasure      string           `json:"unit_measure,omitempty"`
	Cost             decimal.Decimal  `json:"cost"`
	Price            decimal.Decimal  `json:"price"`
	ReorderLevel     decimal.Decimal  `json:"reorder_level"`
	UnitCost         decimal.Decimal  `json:"unit_cost"` // costo vigente (ver entity.Item.UnitCost)
	StandardCost     *decimal.Decimal `json:"standard_cost,omitempty"`
	LastActualCost   *decimal.Decimal `json:"last_actual_cost,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ItemListResponse listado paginado de artículos.
type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// CreateCategoryRequest body para POST /api/categories.
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

// UpdateCategoryRequest body para PUT /api/categories/:id.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// CategoryResponse representación de una categoría.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
