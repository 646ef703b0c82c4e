package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.BOMRepository = (*BOMRepo)(nil)

// BOMRepo implementación de BOMRepository sobre PostgreSQL (usable con pool o tx).
type BOMRepo struct {
	q Querier
}

// NewBOMRepository construye el adaptador de recetas. Pasar pool o tx (Querier).
func NewBOMRepository(q Querier) *BOMRepo {
	return &BOMRepo{q: q}
}

// Create persiste la cabecera de una receta. La unicidad por producto final
// la respalda el índice único sobre final_product_id.
func (r *BOMRepo) Create(bom *entity.BOM) error {
	query := `
		INSERT INTO boms (id, final_product_id, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		bom.ID, bom.FinalProductID, bom.Description, bom.CreatedAt, bom.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert bom: %w", err)
	}
	return nil
}

// GetByID obtiene una receta por ID.
func (r *BOMRepo) GetByID(id string) (*entity.BOM, error) {
	query := `SELECT id, final_product_id, description, created_at, updated_at FROM boms WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetByFinalProduct obtiene la receta cuyo producto final es el artículo dado,
// o nil si el artículo no es manufacturado.
func (r *BOMRepo) GetByFinalProduct(itemID string) (*entity.BOM, error) {
	query := `SELECT id, final_product_id, description, created_at, updated_at FROM boms WHERE final_product_id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, itemID))
}

// Update actualiza la cabecera de una receta.
func (r *BOMRepo) Update(bom *entity.BOM) error {
	query := `UPDATE boms SET final_product_id = $2, description = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, bom.ID, bom.FinalProductID, bom.Description, bom.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update bom: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBOMNotFound
	}
	return nil
}

// List lista recetas con paginación.
func (r *BOMRepo) List(limit, offset int) ([]*entity.BOM, error) {
	query := `
		SELECT id, final_product_id, description, created_at, updated_at
		FROM boms ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list boms: %w", err)
	}
	defer rows.Close()
	var list []*entity.BOM
	for rows.Next() {
		var b entity.BOM
		if err := rows.Scan(&b.ID, &b.FinalProductID, &b.Description, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan bom: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

// Delete elimina la receta; los renglones caen por ON DELETE CASCADE.
func (r *BOMRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM boms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bom: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBOMNotFound
	}
	return nil
}

// GetDetails lista los renglones de una receta ordenados por componente.
func (r *BOMRepo) GetDetails(bomID string) ([]*entity.BOMDetail, error) {
	query := `
		SELECT id, bom_id, component_item_id, quantity_per_unit, unit_of_measure
		FROM bom_details WHERE bom_id = $1 ORDER BY component_item_id`
	rows, err := r.q.Query(context.Background(), query, bomID)
	if err != nil {
		return nil, fmt.Errorf("list bom details: %w", err)
	}
	defer rows.Close()
	var list []*entity.BOMDetail
	for rows.Next() {
		var d entity.BOMDetail
		if err := rows.Scan(&d.ID, &d.BOMID, &d.ComponentItemID, &d.QuantityPerUnit, &d.UnitOfMeasure); err != nil {
			return nil, fmt.Errorf("scan bom detail: %w", err)
		}
		list = append(list, &d)
	}
	return list, rows.Err()
}

// GetDetail obtiene un renglón por receta y componente.
func (r *BOMRepo) GetDetail(bomID, componentItemID string) (*entity.BOMDetail, error) {
	query := `
		SELECT id, bom_id, component_item_id, quantity_per_unit, unit_of_measure
		FROM bom_details WHERE bom_id = $1 AND component_item_id = $2`
	var d entity.BOMDetail
	err := r.q.QueryRow(context.Background(), query, bomID, componentItemID).Scan(
		&d.ID, &d.BOMID, &d.ComponentItemID, &d.QuantityPerUnit, &d.UnitOfMeasure,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bom detail: %w", err)
	}
	return &d, nil
}

// AddDetail agrega un renglón. La unicidad por (receta, componente) la
// respalda el índice único compuesto.
func (r *BOMRepo) AddDetail(detail *entity.BOMDetail) error {
	query := `
		INSERT INTO bom_details (id, bom_id, component_item_id, quantity_per_unit, unit_of_measure)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		detail.ID, detail.BOMID, detail.ComponentItemID, detail.QuantityPerUnit, detail.UnitOfMeasure,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateComponent
		}
		return fmt.Errorf("insert bom detail: %w", err)
	}
	return nil
}

// UpdateDetail actualiza cantidad y unidad de un renglón.
func (r *BOMRepo) UpdateDetail(detail *entity.BOMDetail) error {
	query := `
		UPDATE bom_details SET quantity_per_unit = $3, unit_of_measure = $4
		WHERE bom_id = $1 AND component_item_id = $2`
	tag, err := r.q.Exec(context.Background(), query,
		detail.BOMID, detail.ComponentItemID, detail.QuantityPerUnit, detail.UnitOfMeasure,
	)
	if err != nil {
		return fmt.Errorf("update bom detail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RemoveDetail elimina un renglón por receta y componente.
func (r *BOMRepo) RemoveDetail(bomID, componentItemID string) error {
	query := `DELETE FROM bom_details WHERE bom_id = $1 AND component_item_id = $2`
	tag, err := r.q.Exec(context.Background(), query, bomID, componentItemID)
	if err != nil {
		return fmt.Errorf("delete bom detail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BOMRepo) scanOne(row pgx.Row) (*entity.BOM, error) {
	var b entity.BOM
	err := row.Scan(&b.ID, &b.FinalProductID, &b.Description, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bom: %w", err)
	}
	return &b, nil
}
