package sales

import (
	"context"
	"testing"

	"retail_sales/internal/money"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storageContract runs the same behaviour checks against any Storage.
func storageContract(t *testing.T, newStorage func(t *testing.T) Storage) {
	ctx := context.Background()

	t.Run("create and read", func(t *testing.T) {
		st := newStorage(t)
		sale := newTestSale(t)
		require.NoError(t, sale.AddItem(uuid.New(), "Widget", 5, money.MustParse("10.00")))
		require.NoError(t, sale.AddItem(uuid.New(), "Gizmo", 12, money.MustParse("3.00")))

		require.NoError(t, st.Create(ctx, sale))

		got, err := st.Read(ctx, sale.ID())
		require.NoError(t, err)
		assert.Equal(t, sale.SaleNumber(), got.SaleNumber())
		assert.Equal(t, sale.CustomerID(), got.CustomerID())
		assert.Equal(t, "Alice", got.CustomerName())
		assert.Equal(t, "73.80", got.TotalAmount().String())
		require.Len(t, got.Items(), 2)
		assert.Equal(t, "Widget", got.Items()[0].ProductName())
		assert.Equal(t, "Gizmo", got.Items()[1].ProductName())
		assert.Equal(t, "0.1", got.Items()[0].Discount().String())
		assert.Equal(t, "28.80", got.Items()[1].TotalPrice().String())
		assert.True(t, sale.Date().Equal(got.Date()))
	})

	t.Run("read missing", func(t *testing.T) {
		st := newStorage(t)
		_, err := st.Read(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate sale number", func(t *testing.T) {
		st := newStorage(t)
		first := newTestSale(t)
		require.NoError(t, first.AddItem(uuid.New(), "Widget", 1, money.MustParse("1.00")))
		require.NoError(t, st.Create(ctx, first))

		second := newTestSale(t)
		second.saleNumber = first.SaleNumber()
		require.NoError(t, second.AddItem(uuid.New(), "Widget", 1, money.MustParse("1.00")))

		assert.ErrorIs(t, st.Create(ctx, second), ErrDuplicateSaleNumber)
	})

	t.Run("update cancellation", func(t *testing.T) {
		st := newStorage(t)
		sale := newTestSale(t)
		require.NoError(t, sale.AddItem(uuid.New(), "Widget", 1, money.MustParse("1.00")))
		require.NoError(t, st.Create(ctx, sale))

		require.NoError(t, sale.Cancel())
		require.NoError(t, st.Update(ctx, sale))

		got, err := st.Read(ctx, sale.ID())
		require.NoError(t, err)
		assert.True(t, got.IsCancelled())
		assert.Equal(t, "1.00", got.TotalAmount().String())
	})

	t.Run("stale cancel rejected", func(t *testing.T) {
		st := newStorage(t)
		sale := newTestSale(t)
		require.NoError(t, sale.AddItem(uuid.New(), "Widget", 1, money.MustParse("1.00")))
		require.NoError(t, st.Create(ctx, sale))

		first, err := st.Read(ctx, sale.ID())
		require.NoError(t, err)
		second, err := st.Read(ctx, sale.ID())
		require.NoError(t, err)

		require.NoError(t, first.Cancel())
		require.NoError(t, second.Cancel())

		require.NoError(t, st.Update(ctx, first))
		err = st.Update(ctx, second)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
		assert.NotErrorIs(t, err, ErrNotFound)

		got, err := st.Read(ctx, sale.ID())
		require.NoError(t, err)
		assert.True(t, got.IsCancelled())
	})

	t.Run("update missing", func(t *testing.T) {
		st := newStorage(t)
		assert.ErrorIs(t, st.Update(ctx, newTestSale(t)), ErrNotFound)
	})

	t.Run("get all", func(t *testing.T) {
		st := newStorage(t)
		for i := 0; i < 3; i++ {
			sale := newTestSale(t)
			require.NoError(t, sale.AddItem(uuid.New(), "Widget", 1, money.MustParse("1.00")))
			require.NoError(t, st.Create(ctx, sale))
		}

		all, err := st.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
		for _, s := range all {
			assert.Len(t, s.Items(), 1)
		}
	})
}

func TestLocalStorage(t *testing.T) {
	storageContract(t, func(t *testing.T) Storage { return NewLocalStorage() })
}

func TestLocalStorage_EmptyID(t *testing.T) {
	sale := newTestSale(t)
	sale.id = uuid.Nil
	assert.ErrorIs(t, NewLocalStorage().Create(context.Background(), sale), ErrEmptyID)
}

func TestLocalStorage_StoresSnapshots(t *testing.T) {
	ctx := context.Background()
	st := NewLocalStorage()
	sale := newTestSale(t)
	require.NoError(t, sale.AddItem(uuid.New(), "Widget", 1, money.MustParse("1.00")))
	require.NoError(t, st.Create(ctx, sale))

	// Mutating the caller's copy must not leak into storage until Update.
	require.NoError(t, sale.Cancel())

	got, err := st.Read(ctx, sale.ID())
	require.NoError(t, err)
	assert.False(t, got.IsCancelled())
}
