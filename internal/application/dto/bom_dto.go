package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateBOMRequest body para POST /api/boms.
type CreateBOMRequest struct {
	FinalProductID string `json:"final_product_id" validate:"required"`
	Description    string `json:"description" validate:"omitempty,max=500"`
}

// UpdateBOMRequest body para PUT /api/boms/:id (lista blanca).
type UpdateBOMRequest struct {
	FinalProductID *string `json:"final_product_id,omitempty"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// BOMComponentRequest body para agregar/editar un renglón de la receta.
type BOMComponentRequest struct {
	ComponentItemID string          `json:"component_item_id" validate:"required"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	UnitOfMeasure   string          `json:"unit_of_measure" validate:"omitempty,max=20"`
}

// BOMDetailResponse un renglón de la receta con su componente.
type BOMDetailResponse struct {
	ComponentItemID string          `json:"component_item_id"`
	ComponentName   string          `json:"component_name,omitempty"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	UnitOfMeasure   string          `json:"unit_of_measure,omitempty"`
}

// BOMResponse una receta con sus renglones.
type BOMResponse struct {
	ID               string              `json:"id"`
	FinalProductID   string              `json:"final_product_id"`
	FinalProductName string              `json:"final_product_name,omitempty"`
	Description      string              `json:"description,omitempty"`
	Details          []BOMDetailResponse `json:"details,omitempty"`
	StandardCost     decimal.Decimal     `json:"standard_cost"`
	ProductionCount  int                 `json:"production_count"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// BOMListResponse listado paginado de recetas.
type BOMListResponse struct {
	Items []BOMResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// CostLineDTO un renglón del desglose de costos de una receta.
type CostLineDTO struct {
	ComponentItemID string          `json:"component_item_id"`
	ComponentName   string          `json:"component_name"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// CostBreakdownResponse desglose de costos y margen de una receta
// contra el precio de venta del producto final.
type CostBreakdownResponse struct {
	BOMID          string          `json:"bom_id"`
	FinalProductID string          `json:"final_product_id"`
	Components     []CostLineDTO   `json:"components"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	Profit         decimal.Decimal `json:"profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin_pct"`
}
