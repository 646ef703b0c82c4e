package repository

import "github.com/jhoicas/Manufactura-api/internal/domain/entity"

// BOMRepository define el puerto de persistencia para recetas (BOM) y sus
// renglones. Una sola BOM por producto final.
type BOMRepository interface {
	Create(bom *entity.BOM) error
	GetByID(id string) (*entity.BOM, error)
	// GetByFinalProduct devuelve la BOM cuyo producto final es el artículo dado,
	// o nil si el artículo no es manufacturado. Usada para detectar ciclos.
	GetByFinalProduct(itemID string) (*entity.BOM, error)
	Update(bom *entity.BOM) error
	List(limit, offset int) ([]*entity.BOM, error)
	// Delete elimina la BOM y todos sus renglones.
	Delete(id string) error

	GetDetails(bomID string) ([]*entity.BOMDetail, error)
	GetDetail(bomID, componentItemID string) (*entity.BOMDetail, error)
	AddDetail(detail *entity.BOMDetail) error
	UpdateDetail(detail *entity.BOMDetail) error
	RemoveDetail(bomID, componentItemID string) error
}
