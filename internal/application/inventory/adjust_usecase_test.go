package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/testutil"
)

const (
	itemHarina   = "item-harina"
	bodegaNorte  = "bodega-norte"
	bodegaSur    = "bodega-sur"
	usuarioPrueba = "user-1"
)

func seedBodegas(t *testing.T) *testutil.Store {
	t.Helper()
	now := time.Now()
	s := testutil.NewStore()
	s.Items[itemHarina] = &entity.Item{
		ID: itemHarina, SKU: "HAR-001", Name: "Harina de trigo", UnitMeasure: "kg",
		Cost: decimal.NewFromInt(2), ReorderLevel: decimal.NewFromInt(5),
		CreatedAt: now, UpdatedAt: now,
	}
	s.Warehouses[bodegaNorte] = &entity.Warehouse{ID: bodegaNorte, Name: "Bodega Norte"}
	s.Warehouses[bodegaSur] = &entity.Warehouse{ID: bodegaSur, Name: "Bodega Sur"}
	return s
}

func motorAjustes(s *testutil.Store) *inventory.AdjustUseCase {
	return inventory.NewAdjustUseCase(
		&testutil.TxRunner{S: s},
		&testutil.ItemRepo{S: s},
		&testutil.WarehouseRepo{S: s},
	)
}

// TestAdjust_EntradaCreaNivel: la primera entrada crea la fila de nivel
// perezosamente y escribe exactamente un movimiento con el costo capturado.
func TestAdjust_EntradaCreaNivel(t *testing.T) {
	s := seedBodegas(t)
	uc := motorAjustes(s)

	costo := decimal.NewFromFloat(2.5)
	res, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		ItemID:      itemHarina,
		WarehouseID: bodegaNorte,
		Kind:        entity.MovementKindIN,
		Quantity:    decimal.NewFromInt(5),
		UnitCost:    &costo,
		Reference:   "Compra proveedor",
		UserID:      usuarioPrueba,
	})
	require.NoError(t, err)
	assert.True(t, res.NewLevel.Equal(decimal.NewFromInt(5)))
	assert.NotEmpty(t, res.MovementID)

	assert.True(t, s.LevelQty(itemHarina, bodegaNorte).Equal(decimal.NewFromInt(5)))
	require.Len(t, s.Movements, 1)
	mov := s.Movements[0]
	assert.Equal(t, entity.MovementKindIN, mov.Kind)
	assert.True(t, mov.Quantity.Equal(decimal.NewFromInt(5)))
	assert.True(t, mov.UnitCost.Equal(costo))
	assert.True(t, mov.TotalCost.Equal(decimal.NewFromFloat(12.5)))
	assert.Equal(t, "Compra proveedor", mov.Reference)
	assert.Equal(t, usuarioPrueba, mov.CreatedBy)
}

// TestAdjust_SalidaInsuficiente: una salida mayor al disponible falla con el
// faltante y no escribe nada; el stock nunca queda negativo ni se recorta.
func TestAdjust_SalidaInsuficiente(t *testing.T) {
	s := seedBodegas(t)
	s.Levels[itemHarina+"|"+bodegaNorte] = &entity.InventoryLevel{
		ItemID: itemHarina, WarehouseID: bodegaNorte, Quantity: decimal.NewFromInt(2),
	}
	uc := motorAjustes(s)

	_, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		ItemID:      itemHarina,
		WarehouseID: bodegaNorte,
		Kind:        entity.MovementKindOUT,
		Quantity:    decimal.NewFromInt(3),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	require.Len(t, insuf.Shortfalls, 1)
	assert.True(t, insuf.Shortfalls[0].Required.Equal(decimal.NewFromInt(3)))
	assert.True(t, insuf.Shortfalls[0].Available.Equal(decimal.NewFromInt(2)))

	assert.True(t, s.LevelQty(itemHarina, bodegaNorte).Equal(decimal.NewFromInt(2)))
	assert.Empty(t, s.Movements)
}

// TestAdjust_SalidaContraParInexistente: sin fila de nivel el disponible es
// cero, así que cualquier salida falla.
func TestAdjust_SalidaContraParInexistente(t *testing.T) {
	s := seedBodegas(t)
	uc := motorAjustes(s)

	_, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		ItemID:      itemHarina,
		WarehouseID: bodegaNorte,
		Kind:        entity.MovementKindOUT,
		Quantity:    decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, s.Movements)
}

// TestAdjust_DeltaNegativoFuerzaSalida: la dirección la da el tipo, nunca el
// signo; un delta negativo en una entrada se normaliza a OUT con cantidad
// positiva.
func TestAdjust_DeltaNegativoFuerzaSalida(t *testing.T) {
	s := seedBodegas(t)
	s.Levels[itemHarina+"|"+bodegaNorte] = &entity.InventoryLevel{
		ItemID: itemHarina, WarehouseID: bodegaNorte, Quantity: decimal.NewFromInt(5),
	}
	uc := motorAjustes(s)

	res, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		ItemID:      itemHarina,
		WarehouseID: bodegaNorte,
		Kind:        entity.MovementKindIN,
		Quantity:    decimal.NewFromInt(-2),
	})
	require.NoError(t, err)
	assert.True(t, res.NewLevel.Equal(decimal.NewFromInt(3)))

	require.Len(t, s.Movements, 1)
	assert.Equal(t, entity.MovementKindOUT, s.Movements[0].Kind)
	assert.True(t, s.Movements[0].Quantity.Equal(decimal.NewFromInt(2)), "la cantidad del libro siempre es positiva")
}

// TestAdjust_EntradasInvalidas: validaciones de entrada y costo.
func TestAdjust_EntradasInvalidas(t *testing.T) {
	s := seedBodegas(t)
	uc := motorAjustes(s)
	ctx := context.Background()
	uno := decimal.NewFromInt(1)

	_, err := uc.Adjust(ctx, inventory.AdjustInput{ItemID: itemHarina, WarehouseID: bodegaNorte, Kind: entity.MovementKindIN})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.Adjust(ctx, inventory.AdjustInput{ItemID: itemHarina, WarehouseID: bodegaNorte, Kind: entity.MovementKindTRANSFER, Quantity: uno})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "TRANSFER entra por Transfer()")

	_, err = uc.Adjust(ctx, inventory.AdjustInput{ItemID: "item-fantasma", WarehouseID: bodegaNorte, Kind: entity.MovementKindIN, Quantity: uno})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = uc.Adjust(ctx, inventory.AdjustInput{ItemID: itemHarina, WarehouseID: "bodega-fantasma", Kind: entity.MovementKindIN, Quantity: uno})
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)

	negativo := decimal.NewFromInt(-1)
	_, err = uc.Adjust(ctx, inventory.AdjustInput{ItemID: itemHarina, WarehouseID: bodegaNorte, Kind: entity.MovementKindIN, Quantity: uno, UnitCost: &negativo})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "costo unitario negativo")

	assert.Empty(t, s.Movements)
}

// TestAdjust_FallaEscrituraRevierteNivel: si el movimiento no se puede
// escribir, el nivel tampoco cambia; nunca uno sin el otro.
func TestAdjust_FallaEscrituraRevierteNivel(t *testing.T) {
	s := seedBodegas(t)
	boom := errors.New("conexión perdida")
	uc := inventory.NewAdjustUseCase(
		&testutil.TxRunner{S: s, MovementCreateErr: boom},
		&testutil.ItemRepo{S: s},
		&testutil.WarehouseRepo{S: s},
	)

	_, err := uc.Adjust(context.Background(), inventory.AdjustInput{
		ItemID:      itemHarina,
		WarehouseID: bodegaNorte,
		Kind:        entity.MovementKindIN,
		Quantity:    decimal.NewFromInt(5),
	})
	require.ErrorIs(t, err, boom)
	assert.True(t, s.LevelQty(itemHarina, bodegaNorte).IsZero())
	assert.Empty(t, s.Movements)
}

// TestTransfer_Conservacion: un traslado mueve stock sin crearlo ni
// destruirlo y escribe un par OUT+IN con el mismo lote.
func TestTransfer_Conservacion(t *testing.T) {
	s := seedBodegas(t)
	uc := motorAjustes(s)
	ctx := context.Background()

	// Stock inicial por el libro, para poder conciliar después.
	_, err := uc.Adjust(ctx, inventory.AdjustInput{
		ItemID: itemHarina, WarehouseID: bodegaNorte,
		Kind: entity.MovementKindIN, Quantity: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	res, err := uc.Transfer(ctx, inventory.TransferInput{
		ItemID:          itemHarina,
		FromWarehouseID: bodegaNorte,
		ToWarehouseID:   bodegaSur,
		Quantity:        decimal.NewFromInt(4),
		UserID:          usuarioPrueba,
	})
	require.NoError(t, err)
	assert.True(t, res.SourceLevel.Equal(decimal.NewFromInt(6)))
	assert.True(t, res.DestLevel.Equal(decimal.NewFromInt(4)))
	require.NotEmpty(t, res.BatchID)

	// Conservación: la suma total no cambió.
	total := s.LevelQty(itemHarina, bodegaNorte).Add(s.LevelQty(itemHarina, bodegaSur))
	assert.True(t, total.Equal(decimal.NewFromInt(10)))

	// Par OUT+IN con el mismo lote, cantidades positivas.
	require.Len(t, s.Movements, 3)
	var out, in *entity.Movement
	for _, m := range s.Movements {
		if m.BatchID != res.BatchID {
			continue
		}
		switch m.Kind {
		case entity.MovementKindOUT:
			out = m
		case entity.MovementKindIN:
			in = m
		}
	}
	require.NotNil(t, out)
	require.NotNil(t, in)
	assert.Equal(t, bodegaNorte, out.WarehouseID)
	assert.Equal(t, bodegaSur, in.WarehouseID)
	assert.True(t, out.Quantity.Equal(in.Quantity))

	// Consistencia nivel-vs-libro en ambas bodegas.
	movRepo := &testutil.MovementRepo{S: s}
	for _, whID := range []string{bodegaNorte, bodegaSur} {
		sum, err := movRepo.SumByPair(itemHarina, whID)
		require.NoError(t, err)
		assert.True(t, sum.Equal(s.LevelQty(itemHarina, whID)), "bodega %s", whID)
	}
}

// TestTransfer_Insuficiente: sin stock en origen no se escribe nada.
func TestTransfer_Insuficiente(t *testing.T) {
	s := seedBodegas(t)
	s.Levels[itemHarina+"|"+bodegaNorte] = &entity.InventoryLevel{
		ItemID: itemHarina, WarehouseID: bodegaNorte, Quantity: decimal.NewFromInt(2),
	}
	uc := motorAjustes(s)

	_, err := uc.Transfer(context.Background(), inventory.TransferInput{
		ItemID:          itemHarina,
		FromWarehouseID: bodegaNorte,
		ToWarehouseID:   bodegaSur,
		Quantity:        decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, s.LevelQty(itemHarina, bodegaNorte).Equal(decimal.NewFromInt(2)))
	assert.True(t, s.LevelQty(itemHarina, bodegaSur).IsZero())
	assert.Empty(t, s.Movements)
}

// TestTransfer_EntradasInvalidas: misma bodega, cantidad no positiva,
// artículo o bodega inexistente.
func TestTransfer_EntradasInvalidas(t *testing.T) {
	s := seedBodegas(t)
	uc := motorAjustes(s)
	ctx := context.Background()
	uno := decimal.NewFromInt(1)

	_, err := uc.Transfer(ctx, inventory.TransferInput{
		ItemID: itemHarina, FromWarehouseID: bodegaNorte, ToWarehouseID: bodegaNorte, Quantity: uno,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "misma bodega origen y destino")

	_, err = uc.Transfer(ctx, inventory.TransferInput{
		ItemID: itemHarina, FromWarehouseID: bodegaNorte, ToWarehouseID: bodegaSur, Quantity: decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.Transfer(ctx, inventory.TransferInput{
		ItemID: "item-fantasma", FromWarehouseID: bodegaNorte, ToWarehouseID: bodegaSur, Quantity: uno,
	})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = uc.Transfer(ctx, inventory.TransferInput{
		ItemID: itemHarina, FromWarehouseID: bodegaNorte, ToWarehouseID: "bodega-fantasma", Quantity: uno,
	})
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)
}
