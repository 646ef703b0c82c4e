package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrItemNotFound       = errors.New("artículo no encontrado")
	ErrWarehouseNotFound  = errors.New("bodega no encontrada")
	ErrBOMNotFound        = errors.New("BOM no encontrada")
	ErrEmptyBOM           = errors.New("la BOM no tiene componentes")
	ErrSelfReference      = errors.New("el componente no puede ser el producto final")
	ErrDuplicateComponent = errors.New("el componente ya es parte de la BOM")
	ErrBOMCycle           = errors.New("ciclo detectado en la cadena de BOMs")
	ErrInsufficientStock  = errors.New("stock insuficiente")
)

// Shortfall describe el faltante de un componente para una producción:
// cuánto se requiere, cuánto hay disponible en la bodega y su unidad.
type Shortfall struct {
	ComponentID   string
	ComponentName string
	Required      decimal.Decimal
	Available     decimal.Decimal
	Unit          string
}

// InsufficientStockError agrupa todos los faltantes de una verificación de
// disponibilidad. El motor de producción nunca reporta solo el primero:
// el operario necesita la lista completa para poder actuar.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortfalls) == 0 {
		return ErrInsufficientStock.Error()
	}
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		name := s.ComponentName
		if name == "" {
			name = s.ComponentID
		}
		parts = append(parts, fmt.Sprintf("%s (requiere %s, disponible %s %s)",
			name, s.Required.String(), s.Available.String(), s.Unit))
	}
	return "stock insuficiente: " + strings.Join(parts, "; ")
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NewInsufficientStock construye el error con los faltantes recolectados.
func NewInsufficientStock(shortfalls []Shortfall) *InsufficientStockError {
	return &InsufficientStockError{Shortfalls: shortfalls}
}
