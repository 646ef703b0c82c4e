package dto

import "github.com/shopspring/decimal"

// ProduceRequest body para POST /api/boms/:id/produce.
type ProduceRequest struct {
	Quantity    int64  `json:"quantity" validate:"required,min=1"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
	Reference   string `json:"reference" validate:"omitempty,max=255"`
}

// ConsumedComponentDTO componente consumido en una producción.
type ConsumedComponentDTO struct {
	ComponentItemID string          `json:"component_item_id"`
	ComponentName   string          `json:"component_name,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UnitOfMeasure   string          `json:"unit_of_measure,omitempty"`
}

// ProduceResponse resultado de una producción exitosa.
type ProduceResponse struct {
	BatchID  string                 `json:"batch_id"`
	Consumed []ConsumedComponentDTO `json:"consumed"`
	Produced ProducedDTO            `json:"produced"`
	UnitCost decimal.Decimal        `json:"unit_cost"` // costo real unitario del lote
}

// ProducedDTO producto final acreditado por la producción.
type ProducedDTO struct {
	ItemID   string          `json:"item_id"`
	ItemName string          `json:"item_name,omitempty"`
	Quantity int64           `json:"quantity"`
	NewLevel decimal.Decimal `json:"new_level"`
}

// AvailabilityRequest body para POST /api/boms/:id/check-availability.
type AvailabilityRequest struct {
	Quantity    int64  `json:"quantity" validate:"required,min=1"`
	WarehouseID string `json:"warehouse_id" validate:"required"`
}

// ShortfallDTO faltante de un componente para la cantidad solicitada.
type ShortfallDTO struct {
	ComponentItemID string          `json:"component_item_id"`
	ComponentName   string          `json:"component_name,omitempty"`
	Required        decimal.Decimal `json:"required"`
	Available       decimal.Decimal `json:"available"`
	UnitOfMeasure   string          `json:"unit_of_measure,omitempty"`
}

// AvailabilityResponse resultado de la verificación de disponibilidad
// (lectura pura, sin efectos).
type AvailabilityResponse struct {
	CanProduce bool           `json:"can_produce"`
	Shortfalls []ShortfallDTO `json:"shortfalls,omitempty"`
}
