package manufacturing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Manufactura-api/internal/application/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/domain"
	"github.com/jhoicas/Manufactura-api/internal/domain/entity"
	"github.com/jhoicas/Manufactura-api/internal/testutil"
)

// ──────────────────────────────────────────────────────────────────────────────
// Escenario base: receta de queso.
// 1 queso = 2 kg de leche ($3/kg) + 0.1 kg de cuajo ($50/kg) → costo 11.
// ──────────────────────────────────────────────────────────────────────────────

const (
	bodegaCentral = "bodega-central"
	itemQueso     = "item-queso"
	itemLeche     = "item-leche"
	itemCuajo     = "item-cuajo"
	bomQueso      = "bom-queso"
)

func seedQueseria(t *testing.T) *testutil.Store {
	t.Helper()
	now := time.Now()
	s := testutil.NewStore()
	s.Warehouses[bodegaCentral] = &entity.Warehouse{ID: bodegaCentral, Name: "Bodega Central"}
	s.Items[itemQueso] = &entity.Item{
		ID: itemQueso, SKU: "QUE-001", Name: "Queso campesino", UnitMeasure: "und",
		Price: decimal.NewFromInt(20), CreatedAt: now, UpdatedAt: now,
	}
	s.Items[itemLeche] = &entity.Item{
		ID: itemLeche, SKU: "LEC-001", Name: "Leche entera", UnitMeasure: "kg",
		Cost: decimal.NewFromInt(3), CreatedAt: now, UpdatedAt: now,
	}
	s.Items[itemCuajo] = &entity.Item{
		ID: itemCuajo, SKU: "CUA-001", Name: "Cuajo", UnitMeasure: "kg",
		Cost: decimal.NewFromInt(50), CreatedAt: now, UpdatedAt: now,
	}
	s.BOMs[bomQueso] = &entity.BOM{
		ID: bomQueso, FinalProductID: itemQueso, Description: "Receta de queso campesino",
		CreatedAt: now, UpdatedAt: now,
	}
	s.Details[bomQueso] = []*entity.BOMDetail{
		{ID: "det-leche", BOMID: bomQueso, ComponentItemID: itemLeche, QuantityPerUnit: decimal.NewFromInt(2), UnitOfMeasure: "kg"},
		{ID: "det-cuajo", BOMID: bomQueso, ComponentItemID: itemCuajo, QuantityPerUnit: decimal.NewFromFloat(0.1), UnitOfMeasure: "kg"},
	}
	return s
}

func nivel(s *testutil.Store, itemID string, qty float64) {
	s.Levels[itemID+"|"+bodegaCentral] = &entity.InventoryLevel{
		ItemID: itemID, WarehouseID: bodegaCentral,
		Quantity: decimal.NewFromFloat(qty), UpdatedAt: time.Now(),
	}
}

func motorProduccion(s *testutil.Store) *manufacturing.ProduceUseCase {
	return manufacturing.NewProduceUseCase(
		&testutil.TxRunner{S: s},
		&testutil.BOMRepo{S: s},
		&testutil.ItemRepo{S: s},
		&testutil.WarehouseRepo{S: s},
		&testutil.LevelRepo{S: s},
	)
}

// TestProduce_Exitosa: producir 4 quesos descuenta los componentes, acredita
// el producto final (fila creada perezosamente) y reparte el costo del lote.
func TestProduce_Exitosa(t *testing.T) {
	s := seedQueseria(t)
	nivel(s, itemLeche, 10)
	nivel(s, itemCuajo, 1)
	uc := motorProduccion(s)

	resp, err := uc.Produce(context.Background(), manufacturing.ProduceInput{
		BOMID: bomQueso, Quantity: 4, WarehouseID: bodegaCentral, UserID: "user-1",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	// Niveles resultantes: leche 10-8, cuajo 1-0.4, queso 0+4.
	assert.True(t, s.LevelQty(itemLeche, bodegaCentral).Equal(decimal.NewFromInt(2)))
	assert.True(t, s.LevelQty(itemCuajo, bodegaCentral).Equal(decimal.NewFromFloat(0.6)))
	assert.True(t, s.LevelQty(itemQueso, bodegaCentral).Equal(decimal.NewFromInt(4)))

	// Costo del lote: 8*3 + 0.4*50 = 44 → 11 por unidad.
	assert.True(t, resp.UnitCost.Equal(decimal.NewFromInt(11)), "costo unitario %s", resp.UnitCost)
	assert.Len(t, resp.Consumed, 2)
	assert.Equal(t, itemQueso, resp.Produced.ItemID)
	assert.Equal(t, int64(4), resp.Produced.Quantity)
	assert.True(t, resp.Produced.NewLevel.Equal(decimal.NewFromInt(4)))

	// Libro: un OUT por componente y un IN por el producto final, mismo lote.
	require.Len(t, s.Movements, 3)
	require.NotEmpty(t, resp.BatchID)
	for _, m := range s.Movements {
		assert.Equal(t, resp.BatchID, m.BatchID)
		assert.Equal(t, manufacturing.ProductionReference, m.Reference)
	}

	// El costo real del lote queda restablecido en el producto final.
	queso := s.Items[itemQueso]
	require.NotNil(t, queso.LastActualCost)
	assert.True(t, queso.LastActualCost.Equal(decimal.NewFromInt(11)))

	// Consistencia nivel-vs-libro en todos los pares tocados.
	movRepo := &testutil.MovementRepo{S: s}
	for _, itemID := range []string{itemLeche, itemCuajo, itemQueso} {
		sum, err := movRepo.SumByPair(itemID, bodegaCentral)
		require.NoError(t, err)
		// El saldo del libro parte de los niveles sembrados: solo el delta debe coincidir.
		switch itemID {
		case itemLeche:
			assert.True(t, sum.Equal(decimal.NewFromInt(-8)))
		case itemCuajo:
			assert.True(t, sum.Equal(decimal.NewFromFloat(-0.4)))
		case itemQueso:
			assert.True(t, sum.Equal(decimal.NewFromInt(4)))
		}
	}
}

// TestProduce_RecolectaTodosLosFaltantes: si varios componentes no alcanzan,
// el error reporta la lista completa y no se escribe nada.
func TestProduce_RecolectaTodosLosFaltantes(t *testing.T) {
	s := seedQueseria(t)
	nivel(s, itemLeche, 5)    // requiere 8
	nivel(s, itemCuajo, 0.1)  // requiere 0.4
	uc := motorProduccion(s)

	_, err := uc.Produce(context.Background(), manufacturing.ProduceInput{
		BOMID: bomQueso, Quantity: 4, WarehouseID: bodegaCentral,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	require.Len(t, insuf.Shortfalls, 2, "debe reportar ambos faltantes, no solo el primero")

	// Nada escrito: niveles intactos, libro vacío.
	assert.True(t, s.LevelQty(itemLeche, bodegaCentral).Equal(decimal.NewFromInt(5)))
	assert.True(t, s.LevelQty(itemCuajo, bodegaCentral).Equal(decimal.NewFromFloat(0.1)))
	assert.True(t, s.LevelQty(itemQueso, bodegaCentral).IsZero())
	assert.Empty(t, s.Movements)
}

// TestProduce_FallaEscrituraRevierteTodo: un error de persistencia a mitad de
// la transacción revierte los descuentos ya aplicados.
func TestProduce_FallaEscrituraRevierteTodo(t *testing.T) {
	s := seedQueseria(t)
	nivel(s, itemLeche, 10)
	nivel(s, itemCuajo, 1)

	boom := errors.New("conexión perdida")
	uc := manufacturing.NewProduceUseCase(
		// Falla al escribir el segundo movimiento: el primer OUT ya fue aplicado.
		&testutil.TxRunner{S: s, MovementCreateErr: boom, MovementFailAfter: 1},
		&testutil.BOMRepo{S: s},
		&testutil.ItemRepo{S: s},
		&testutil.WarehouseRepo{S: s},
		&testutil.LevelRepo{S: s},
	)

	_, err := uc.Produce(context.Background(), manufacturing.ProduceInput{
		BOMID: bomQueso, Quantity: 2, WarehouseID: bodegaCentral,
	})
	require.ErrorIs(t, err, boom)

	// El consumo parcial jamás es observable.
	assert.True(t, s.LevelQty(itemLeche, bodegaCentral).Equal(decimal.NewFromInt(10)))
	assert.True(t, s.LevelQty(itemCuajo, bodegaCentral).Equal(decimal.NewFromInt(1)))
	assert.Empty(t, s.Movements)
	assert.Nil(t, s.Items[itemQueso].LastActualCost)
}

// TestProduce_RecetaVacia: una BOM sin renglones no produce nada en silencio.
func TestProduce_RecetaVacia(t *testing.T) {
	s := seedQueseria(t)
	s.Details[bomQueso] = nil
	uc := motorProduccion(s)

	_, err := uc.Produce(context.Background(), manufacturing.ProduceInput{
		BOMID: bomQueso, Quantity: 1, WarehouseID: bodegaCentral,
	})
	assert.ErrorIs(t, err, domain.ErrEmptyBOM)
}

// TestProduce_EntradasInvalidas: validaciones previas a tocar inventario.
func TestProduce_EntradasInvalidas(t *testing.T) {
	s := seedQueseria(t)
	nivel(s, itemLeche, 10)
	nivel(s, itemCuajo, 1)
	uc := motorProduccion(s)
	ctx := context.Background()

	_, err := uc.Produce(ctx, manufacturing.ProduceInput{BOMID: bomQueso, Quantity: 0, WarehouseID: bodegaCentral})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad cero")

	_, err = uc.Produce(ctx, manufacturing.ProduceInput{BOMID: bomQueso, Quantity: -3, WarehouseID: bodegaCentral})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa")

	_, err = uc.Produce(ctx, manufacturing.ProduceInput{BOMID: bomQueso, Quantity: 1, WarehouseID: "bodega-fantasma"})
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)

	_, err = uc.Produce(ctx, manufacturing.ProduceInput{BOMID: "bom-fantasma", Quantity: 1, WarehouseID: bodegaCentral})
	assert.ErrorIs(t, err, domain.ErrBOMNotFound)

	assert.Empty(t, s.Movements, "ninguna validación fallida debe escribir en el libro")
}

// TestProduce_ReferenciaPersonalizada: la referencia del lote viaja a todos
// los movimientos y no cuenta como producción estándar.
func TestProduce_ReferenciaPersonalizada(t *testing.T) {
	s := seedQueseria(t)
	nivel(s, itemLeche, 10)
	nivel(s, itemCuajo, 1)
	uc := motorProduccion(s)

	_, err := uc.Produce(context.Background(), manufacturing.ProduceInput{
		BOMID: bomQueso, Quantity: 1, WarehouseID: bodegaCentral, Reference: "OP-2024-017",
	})
	require.NoError(t, err)

	for _, m := range s.Movements {
		assert.Equal(t, "OP-2024-017", m.Reference)
	}
	movRepo := &testutil.MovementRepo{S: s}
	count, err := movRepo.CountByReference(itemQueso, entity.MovementKindIN, manufacturing.ProductionReference)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// TestProduce_Acumulada: dos producciones seguidas acumulan el nivel del
// producto final y consumen stock de forma independiente.
func TestProduce_Acumulada(t *testing.T) {
	s := seedQueseria(t)
	nivel(s, itemLeche, 10)
	nivel(s, itemCuajo, 1)
	uc := motorProduccion(s)
	ctx := context.Background()

	r1, err := uc.Produce(ctx, manufacturing.ProduceInput{BOMID: bomQueso, Quantity: 2, WarehouseID: bodegaCentral})
	require.NoError(t, err)
	r2, err := uc.Produce(ctx, manufacturing.ProduceInput{BOMID: bomQueso, Quantity: 3, WarehouseID: bodegaCentral})
	require.NoError(t, err)

	assert.NotEqual(t, r1.BatchID, r2.BatchID, "cada producción tiene su propio lote")
	assert.True(t, s.LevelQty(itemQueso, bodegaCentral).Equal(decimal.NewFromInt(5)))
	assert.True(t, s.LevelQty(itemLeche, bodegaCentral).IsZero())
	require.Len(t, s.Movements, 6)

	movRepo := &testutil.MovementRepo{S: s}
	count, err := movRepo.CountByReference(itemQueso, entity.MovementKindIN, manufacturing.ProductionReference)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

// TestProduce_OrdenDeBloqueoUnico: componentes y producto final se bloquean
// en un solo orden por id de artículo. Si el producto final se bloqueara al
// final, dos producciones donde la salida de una es insumo de la otra
// podrían interbloquearse. El id del producto final se elige de modo que
// ordene entre los dos componentes.
func TestProduce_OrdenDeBloqueoUnico(t *testing.T) {
	now := time.Now()
	s := testutil.NewStore()
	s.Warehouses[bodegaCentral] = &entity.Warehouse{ID: bodegaCentral, Name: "Bodega Central"}
	s.Items["item-crema"] = &entity.Item{
		ID: "item-crema", SKU: "CRE-001", Name: "Crema de leche", UnitMeasure: "kg",
		Cost: decimal.NewFromInt(4), CreatedAt: now, UpdatedAt: now,
	}
	s.Items["item-sal"] = &entity.Item{
		ID: "item-sal", SKU: "SAL-002", Name: "Sal", UnitMeasure: "kg",
		Cost: decimal.NewFromInt(1), CreatedAt: now, UpdatedAt: now,
	}
	s.Items["item-mantequilla"] = &entity.Item{
		ID: "item-mantequilla", SKU: "MAN-001", Name: "Mantequilla", UnitMeasure: "kg",
		CreatedAt: now, UpdatedAt: now,
	}
	s.BOMs["bom-mantequilla"] = &entity.BOM{
		ID: "bom-mantequilla", FinalProductID: "item-mantequilla", CreatedAt: now, UpdatedAt: now,
	}
	s.Details["bom-mantequilla"] = []*entity.BOMDetail{
		{ID: "det-crema", BOMID: "bom-mantequilla", ComponentItemID: "item-crema", QuantityPerUnit: decimal.NewFromInt(2), UnitOfMeasure: "kg"},
		{ID: "det-sal", BOMID: "bom-mantequilla", ComponentItemID: "item-sal", QuantityPerUnit: decimal.NewFromFloat(0.05), UnitOfMeasure: "kg"},
	}
	s.Levels["item-crema|"+bodegaCentral] = &entity.InventoryLevel{
		ItemID: "item-crema", WarehouseID: bodegaCentral, Quantity: decimal.NewFromInt(10),
	}
	s.Levels["item-sal|"+bodegaCentral] = &entity.InventoryLevel{
		ItemID: "item-sal", WarehouseID: bodegaCentral, Quantity: decimal.NewFromInt(1),
	}

	var lockLog []string
	uc := manufacturing.NewProduceUseCase(
		&testutil.TxRunner{S: s, LockLog: &lockLog},
		&testutil.BOMRepo{S: s},
		&testutil.ItemRepo{S: s},
		&testutil.WarehouseRepo{S: s},
		&testutil.LevelRepo{S: s},
	)

	_, err := uc.Produce(context.Background(), manufacturing.ProduceInput{
		BOMID: "bom-mantequilla", Quantity: 1, WarehouseID: bodegaCentral,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"item-crema", "item-mantequilla", "item-sal"}, lockLog)
}

// TestCheckAvailability: la verificación calcula los faltantes sin tocar nada.
func TestCheckAvailability(t *testing.T) {
	s := seedQueseria(t)
	nivel(s, itemLeche, 5)
	nivel(s, itemCuajo, 1)
	uc := motorProduccion(s)
	ctx := context.Background()

	// Con leche para 2 quesos, producir 2 es viable.
	resp, err := uc.CheckAvailability(ctx, bomQueso, 2, bodegaCentral)
	require.NoError(t, err)
	assert.True(t, resp.CanProduce)
	assert.Empty(t, resp.Shortfalls)

	// Producir 4 reporta el faltante de leche (8 requeridos, 5 disponibles).
	resp, err = uc.CheckAvailability(ctx, bomQueso, 4, bodegaCentral)
	require.NoError(t, err)
	assert.False(t, resp.CanProduce)
	require.Len(t, resp.Shortfalls, 1)
	falta := resp.Shortfalls[0]
	assert.Equal(t, itemLeche, falta.ComponentItemID)
	assert.True(t, falta.Required.Equal(decimal.NewFromInt(8)))
	assert.True(t, falta.Available.Equal(decimal.NewFromInt(5)))

	// Lectura pura: ni niveles ni libro cambiaron.
	assert.True(t, s.LevelQty(itemLeche, bodegaCentral).Equal(decimal.NewFromInt(5)))
	assert.Empty(t, s.Movements)
}

// TestCheckAvailability_Errores: mismas validaciones de entrada que Produce.
func TestCheckAvailability_Errores(t *testing.T) {
	s := seedQueseria(t)
	uc := motorProduccion(s)
	ctx := context.Background()

	_, err := uc.CheckAvailability(ctx, bomQueso, 0, bodegaCentral)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.CheckAvailability(ctx, "bom-fantasma", 1, bodegaCentral)
	assert.ErrorIs(t, err, domain.ErrBOMNotFound)

	_, err = uc.CheckAvailability(ctx, bomQueso, 1, "bodega-fantasma")
	assert.ErrorIs(t, err, domain.ErrWarehouseNotFound)
}
