package manufacturing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
)

// StandardCost implementa el roll-up de costos de una BOM (servicio de dominio).
// CostoEstandar = Σ CostoUnitario(componente) * CantidadPorUnidad
// Es una rederivación pura e idempotente: con los mismos insumos produce
// siempre el mismo resultado.
func StandardCost(details []*entity.BOMDetail, unitCost func(componentID string) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range details {
		total = total.Add(unitCost(d.ComponentItemID).Mul(d.QuantityPerUnit))
	}
	return total
}

// ActualBatchCost calcula el costo real de un lote producido:
// Σ CostoUnitario(componente) * CantidadConsumida. La cantidad consumida ya
// viene escalada por las unidades producidas.
func ActualBatchCost(consumed []Consumption) decimal.Decimal {
	total := decimal.Zero
	for _, c := range consumed {
		total = total.Add(c.UnitCost.Mul(c.Quantity))
	}
	return total
}

// ActualUnitCost reparte el costo del lote entre las unidades producidas.
// Con producedQty <= 0 devuelve cero (no hay lote sobre el cual repartir).
func ActualUnitCost(consumed []Consumption, producedQty decimal.Decimal) decimal.Decimal {
	if producedQty.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return ActualBatchCost(consumed).Div(producedQty)
}

// Consumption es un componente consumido en una producción: cantidad total
// descontada y costo unitario vigente al momento del lote.
type Consumption struct {
	ComponentID   string
	ComponentName string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Unit          string
}
