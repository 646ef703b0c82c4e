package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/testutil"
)

func motorConsultas(s *testutil.Store) *inventory.QueryUseCase {
	return inventory.NewQueryUseCase(
		&testutil.LevelRepo{S: s},
		&testutil.MovementRepo{S: s},
	)
}

// TestGetLevel_ParInexistente: la ausencia de fila equivale a cantidad cero,
// no a un error.
func TestGetLevel_ParInexistente(t *testing.T) {
	s := seedBodegas(t)
	uc := motorConsultas(s)

	resp, err := uc.GetLevel(itemHarina, bodegaNorte)
	require.NoError(t, err)
	assert.Equal(t, itemHarina, resp.ItemID)
	assert.True(t, resp.Quantity.IsZero())
}

// TestReconcile: el saldo reconstruido del libro debe coincidir con el nivel.
func TestReconcile(t *testing.T) {
	s := seedBodegas(t)
	ajustes := motorAjustes(s)
	consultas := motorConsultas(s)
	ctx := context.Background()

	// Historia: entran 10, salen 3, entran 2 → nivel 9.
	for _, mov := range []struct {
		kind string
		qty  int64
	}{
		{entity.MovementKindIN, 10},
		{entity.MovementKindOUT, 3},
		{entity.MovementKindIN, 2},
	} {
		_, err := ajustes.Adjust(ctx, inventory.AdjustInput{
			ItemID: itemHarina, WarehouseID: bodegaNorte,
			Kind: mov.kind, Quantity: decimal.NewFromInt(mov.qty),
		})
		require.NoError(t, err)
	}

	resp, err := consultas.Reconcile(itemHarina, bodegaNorte)
	require.NoError(t, err)
	assert.True(t, resp.Level.Equal(decimal.NewFromInt(9)))
	assert.True(t, resp.LedgerSum.Equal(decimal.NewFromInt(9)))
	assert.True(t, resp.Consistent)
}

// TestReconcile_Divergencia: un nivel tocado por fuera del motor se delata en
// la conciliación.
func TestReconcile_Divergencia(t *testing.T) {
	s := seedBodegas(t)
	s.Levels[itemHarina+"|"+bodegaNorte] = &entity.InventoryLevel{
		ItemID: itemHarina, WarehouseID: bodegaNorte, Quantity: decimal.NewFromInt(7),
	}
	uc := motorConsultas(s)

	resp, err := uc.Reconcile(itemHarina, bodegaNorte)
	require.NoError(t, err)
	assert.True(t, resp.Level.Equal(decimal.NewFromInt(7)))
	assert.True(t, resp.LedgerSum.IsZero())
	assert.False(t, resp.Consistent)
}

// TestListMovementsByItem_FiltroDeFechas: el rango de fechas acota el listado.
func TestListMovementsByItem_FiltroDeFechas(t *testing.T) {
	s := seedBodegas(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		fecha := base.AddDate(0, 0, i)
		s.Movements = append(s.Movements, &entity.Movement{
			ID: movIDInv(i), ItemID: itemHarina, WarehouseID: bodegaNorte,
			Kind: entity.MovementKindIN, Quantity: decimal.NewFromInt(1),
			Date: fecha, CreatedAt: fecha,
		})
	}
	uc := motorConsultas(s)

	desde := base.AddDate(0, 0, 1)
	hasta := base.AddDate(0, 0, 2)
	movs, err := uc.ListMovementsByItem(itemHarina, &desde, &hasta, 50, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 2)

	movs, err = uc.ListMovementsByItem(itemHarina, nil, nil, 50, 0)
	require.NoError(t, err)
	assert.Len(t, movs, 4)
}

// TestLowStock: artículos por debajo de su umbral de reposición.
func TestLowStock(t *testing.T) {
	s := seedBodegas(t)
	// Umbral de la harina: 5. Con 3 en la única bodega está por debajo.
	s.Levels[itemHarina+"|"+bodegaNorte] = &entity.InventoryLevel{
		ItemID: itemHarina, WarehouseID: bodegaNorte, Quantity: decimal.NewFromInt(3),
	}
	uc := motorConsultas(s)

	items, err := uc.LowStock(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, itemHarina, items[0].ItemID)
	assert.True(t, items[0].Quantity.Equal(decimal.NewFromInt(3)))
	assert.True(t, items[0].ReorderLevel.Equal(decimal.NewFromInt(5)))

	// Reponiendo por encima del umbral desaparece del reporte.
	s.Levels[itemHarina+"|"+bodegaSur] = &entity.InventoryLevel{
		ItemID: itemHarina, WarehouseID: bodegaSur, Quantity: decimal.NewFromInt(4),
	}
	items, err = uc.LowStock(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, items, "el total entre bodegas supera el umbral")

	// Filtrado por bodega vuelve a mirar solo el stock local.
	items, err = uc.LowStock(context.Background(), bodegaNorte, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func movIDInv(i int) string {
	return "mov-" + string(rune('a'+i))
}
