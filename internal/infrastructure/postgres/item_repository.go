package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de artículos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

const itemColumns = `id, category_id, sku, name, description, unit_measure, cost, price, reorder_level,
	standard_cost, standard_cost_at, last_actual_cost, last_actual_cost_at, created_at, updated_at`

// Create persiste un nuevo artículo.
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (id, category_id, sku, name, description, unit_measure, cost, price, reorder_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, nullIfEmpty(item.CategoryID), item.SKU, item.Name, item.Description,
		item.UnitMeasure, item.Cost, item.Price, item.ReorderLevel,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un artículo por ID.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id))
}

// GetBySKU obtiene un artículo por SKU.
func (r *ItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE sku = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, sku))
}

// Update actualiza los campos editables de un artículo. Los costos derivados
// tienen sus propios métodos.
func (r *ItemRepo) Update(item *entity.Item) error {
	query := `
		UPDATE items
		SET category_id = $2, name = $3, description = $4, unit_measure = $5,
		    price = $6, reorder_level = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		item.ID, nullIfEmpty(item.CategoryID), item.Name, item.Description,
		item.UnitMeasure, item.Price, item.ReorderLevel, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// UpdateStandardCost restablece el costo estándar derivado del roll-up de la BOM.
func (r *ItemRepo) UpdateStandardCost(itemID string, cost decimal.Decimal, at time.Time) error {
	query := `UPDATE items SET standard_cost = $2, standard_cost_at = $3, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, itemID, cost, at)
	if err != nil {
		return fmt.Errorf("update standard cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// UpdateLastActualCost restablece el costo real del último lote producido.
func (r *ItemRepo) UpdateLastActualCost(itemID string, cost decimal.Decimal, at time.Time) error {
	query := `UPDATE items SET last_actual_cost = $2, last_actual_cost_at = $3, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, itemID, cost, at)
	if err != nil {
		return fmt.Errorf("update last actual cost: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// List lista artículos ordenados por nombre, con paginación.
func (r *ItemRepo) List(limit, offset int) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Delete elimina un artículo por ID.
func (r *ItemRepo) Delete(id string) error {
	tag, err := r.q.Exec(context.Background(), `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

func (r *ItemRepo) scanOne(row pgx.Row) (*entity.Item, error) {
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (r *ItemRepo) scanRow(rows pgx.Rows) (*entity.Item, error) {
	it, err := scanItem(rows)
	if err != nil {
		return nil, fmt.Errorf("scan item: %w", err)
	}
	return it, nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	var categoryID *string
	err := row.Scan(
		&it.ID, &categoryID, &it.SKU, &it.Name, &it.Description, &it.UnitMeasure,
		&it.Cost, &it.Price, &it.ReorderLevel,
		&it.StandardCost, &it.StandardCostAt, &it.LastActualCost, &it.LastActualCostAt,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID != nil {
		it.CategoryID = *categoryID
	}
	return &it, nil
}
