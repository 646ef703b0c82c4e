package dto

import "time"

// CreateWarehouseRequest body para POST /api/warehouses.
type CreateWarehouseRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Location    string `json:"location" validate:"omitempty,max=255"`
	Capacity    *int   `json:"capacity,omitempty" validate:"omitempty,min=0"`
	ContactInfo string `json:"contact_info" validate:"omitempty,max=255"`
}

// UpdateWarehouseRequest body para PUT /api/warehouses/:id (lista blanca).
type UpdateWarehouseRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Capacity    *int    `json:"capacity,omitempty" validate:"omitempty,min=0"`
	ContactInfo *string `json:"contact_info,omitempty" validate:"omitempty,max=255"`
}

// WarehouseResponse representación de una bodega.
type WarehouseResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location,omitempty"`
	Capacity    *int      `json:"capacity,omitempty"`
	ContactInfo string    `json:"contact_info,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WarehouseListResponse listado paginado de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
