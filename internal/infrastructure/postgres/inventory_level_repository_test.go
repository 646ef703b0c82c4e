package postgres_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/infrastructure/postgres"
)

// grabadorQuerier registra cada sentencia emitida, en orden, y responde con
// un resultado fijo. Suficiente para verificar la forma del SQL sin una BD.
type grabadorQuerier struct {
	sentencias []string
	fila       pgx.Row
}

func (q *grabadorQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.sentencias = append(q.sentencias, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *grabadorQuerier) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, errors.New("no usado en este test")
}

func (q *grabadorQuerier) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	q.sentencias = append(q.sentencias, sql)
	return q.fila
}

// filaNivel simula el Scan de una fila de inventory_levels.
type filaNivel struct {
	itemID      string
	warehouseID string
	quantity    decimal.Decimal
	updatedAt   time.Time
}

func (f *filaNivel) Scan(dest ...any) error {
	*dest[0].(*string) = f.itemID
	*dest[1].(*string) = f.warehouseID
	*dest[2].(*decimal.Decimal) = f.quantity
	*dest[3].(*time.Time) = f.updatedAt
	return nil
}

// TestGetForUpdate_CreaLaFilaAntesDeBloquear: sobre un par todavía sin fila,
// un SELECT FOR UPDATE solo no bloquea nada y dos primeras entradas
// concurrentes se pisarían la cantidad. El repositorio debe asegurar la fila
// (INSERT ... ON CONFLICT DO NOTHING) y recién entonces bloquearla.
func TestGetForUpdate_CreaLaFilaAntesDeBloquear(t *testing.T) {
	q := &grabadorQuerier{fila: &filaNivel{
		itemID:      "item-leche",
		warehouseID: "bodega-central",
		quantity:    decimal.NewFromInt(7),
		updatedAt:   time.Now(),
	}}
	repo := postgres.NewInventoryLevelRepository(q)

	level, err := repo.GetForUpdate("item-leche", "bodega-central")
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(7)))

	require.Len(t, q.sentencias, 2, "primero asegurar la fila, luego bloquearla")
	assert.Contains(t, q.sentencias[0], "INSERT INTO inventory_levels")
	assert.Contains(t, q.sentencias[0], "ON CONFLICT (item_id, warehouse_id) DO NOTHING")
	assert.Contains(t, q.sentencias[1], "FOR UPDATE")
	assert.True(t, strings.Contains(q.sentencias[1], "SELECT"), "el bloqueo es un SELECT FOR UPDATE")
}

// TestGet_SinFilaDevuelveCero: la lectura suelta no crea filas; la ausencia
// equivale a cantidad cero.
func TestGet_SinFilaDevuelveCero(t *testing.T) {
	q := &grabadorQuerier{fila: &filaSinResultado{}}
	repo := postgres.NewInventoryLevelRepository(q)

	level, err := repo.Get("item-leche", "bodega-central")
	require.NoError(t, err)
	assert.True(t, level.Quantity.IsZero())

	require.Len(t, q.sentencias, 1, "Get no debe emitir escrituras")
	assert.NotContains(t, q.sentencias[0], "INSERT")
	assert.NotContains(t, q.sentencias[0], "FOR UPDATE")
}

// filaSinResultado simula un par sin fila.
type filaSinResultado struct{}

func (f *filaSinResultado) Scan(...any) error { return pgx.ErrNoRows }
