package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item representa un artículo del catálogo: materia prima, producto intermedio
// o producto terminado. El stock se maneja por bodega en InventoryLevel.
//
// El costo tiene tres fuentes, explícitas para no pisarse entre sí:
//   - Cost: costo de compra capturado al crear/editar el artículo.
//   - StandardCost: derivado de la BOM (roll-up), restablecido en cada edición de receta.
//   - LastActualCost: costo unitario real del último lote producido.
type Item struct {
	ID               string
	CategoryID       string
	SKU              string // código único
	Name             string
	Description      string
	UnitMeasure      string
	Cost             decimal.Decimal // costo de compra
	Price            decimal.Decimal // precio de venta
	ReorderLevel     decimal.Decimal // umbral de reposición
	StandardCost     *decimal.Decimal
	StandardCostAt   *time.Time
	LastActualCost   *decimal.Decimal
	LastActualCostAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// UnitCost devuelve el costo unitario vigente: el más reciente entre el
// roll-up estándar y el costo real de la última producción; si ninguno
// existe (artículo que no es salida de BOM), el costo de compra.
func (i *Item) UnitCost() decimal.Decimal {
	switch {
	case i.StandardCost != nil && i.LastActualCost != nil:
		if i.LastActualCostAt != nil && i.StandardCostAt != nil && i.LastActualCostAt.After(*i.StandardCostAt) {
			return *i.LastActualCost
		}
		return *i.StandardCost
	case i.LastActualCost != nil:
		return *i.LastActualCost
	case i.StandardCost != nil:
		return *i.StandardCost
	default:
		return i.Cost
	}
}
