package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario. La dirección la da el tipo, nunca el
// signo: Quantity es siempre positiva. TRANSFER se acepta en la API y el
// motor lo normaliza a un par OUT (origen) + IN (destino) con el mismo BatchID,
// para que el saldo siempre sea reconstruible como sum(IN) - sum(OUT).
const (
	MovementKindIN       = "IN"
	MovementKindOUT      = "OUT"
	MovementKindTRANSFER = "TRANSFER"
)

// Movement es un registro inmutable del libro de movimientos: cada cambio de
// stock escribe exactamente una fila, en la misma transacción que el cambio.
// Nunca se actualiza ni se borra.
type Movement struct {
	ID          string
	BatchID     string // agrupa las filas de una producción o traslado
	ItemID      string
	WarehouseID string
	Kind        string
	Quantity    decimal.Decimal // siempre > 0
	UnitCost    decimal.Decimal
	TotalCost   decimal.Decimal
	Reference   string
	Date        time.Time
	CreatedAt   time.Time
	CreatedBy   string
}
