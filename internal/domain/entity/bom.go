package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOM (Bill of Materials) es la receta de un producto final o intermedio.
// Una sola BOM por producto final. La expansión es de un nivel: un componente
// puede ser a su vez salida de otra BOM, pero producirlo requiere una
// producción aparte (su stock debe preexistir).
type BOM struct {
	ID             string
	FinalProductID string
	Description    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BOMDetail es un renglón de la receta: componente y cantidad requerida
// por unidad del producto final. Invariantes: QuantityPerUnit > 0 y el
// componente nunca es el producto final de su propia BOM.
type BOMDetail struct {
	ID              string
	BOMID           string
	ComponentItemID string
	QuantityPerUnit decimal.Decimal
	UnitOfMeasure   string
}
