package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario.
// Para el motor de inventario solo importa la identidad; ubicación y
// capacidad son informativos.
type Warehouse struct {
	ID          string
	Name        string
	Location    string
	Capacity    *int
	ContactInfo string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
