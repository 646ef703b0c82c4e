package entity

// Category agrupa artículos del catálogo (materias primas, intermedios,
// terminados). Usada para navegar componentes al armar una BOM.
type Category struct {
	ID          string
	Name        string
	Description string
}
