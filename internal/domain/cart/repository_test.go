package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/freshbasket/storefront/internal/testutil/pgtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	repo   cart.Repository
	userID uint
}

func (f *fixture) product(t *testing.T, name string) product.Product {
	t.Helper()
	p := product.Product{Name: name, Category: "Dairy", Price: decimal.NewFromInt(30), Stock: 50}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) order(t *testing.T) order.Order {
	t.Helper()
	o := order.Order{
		UserID:          f.userID,
		Subtotal:        decimal.NewFromInt(90),
		DeliveryFee:     decimal.NewFromInt(50),
		TotalAmount:     decimal.NewFromInt(140),
		ShippingAddress: "12 MG Road, Pune, MH - 411001",
		OrderDate:       time.Now().UTC(),
		Status:          order.StatusProcessing,
	}
	require.NoError(t, f.db.Create(&o).Error)
	return o
}

func (f *fixture) quantities(t *testing.T) map[uint]int {
	t.Helper()
	lines, err := f.repo.Lines(f.ctx, f.userID)
	require.NoError(t, err)
	out := make(map[uint]int, len(lines))
	for _, l := range lines {
		out[l.ProductID] = l.Quantity
	}
	return out
}

func TestGormRepository(t *testing.T) {
	db := pgtest.Open(t)
	nextUser := uint(1000)
	newFixture := func() *fixture {
		nextUser++
		return &fixture{ctx: context.Background(), db: db, repo: cart.NewRepository(db), userID: nextUser}
	}

	t.Run("add merges into one line", func(t *testing.T) {
		f := newFixture()
		milk := f.product(t, "Milk")

		require.NoError(t, f.repo.Add(f.ctx, f.userID, milk.ID, 2))
		require.NoError(t, f.repo.Add(f.ctx, f.userID, milk.ID, 3))

		lines, err := f.repo.Lines(f.ctx, f.userID)
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, 5, lines[0].Quantity)
		require.NotNil(t, lines[0].Product)
		assert.Equal(t, "Milk", lines[0].Product.Name)
	})

	t.Run("set quantity and remove", func(t *testing.T) {
		f := newFixture()
		curd := f.product(t, "Curd")

		assert.ErrorIs(t, f.repo.SetQuantity(f.ctx, f.userID, curd.ID, 4), cart.ErrItemNotFound)
		require.NoError(t, f.repo.Add(f.ctx, f.userID, curd.ID, 1))
		require.NoError(t, f.repo.SetQuantity(f.ctx, f.userID, curd.ID, 4))
		assert.Equal(t, map[uint]int{curd.ID: 4}, f.quantities(t))

		require.NoError(t, f.repo.Remove(f.ctx, f.userID, curd.ID))
		assert.Empty(t, f.quantities(t))
	})

	t.Run("remove purchased keeps later additions", func(t *testing.T) {
		f := newFixture()
		milk := f.product(t, "Toned Milk")
		bread := f.product(t, "Brown Bread")
		eggs := f.product(t, "Eggs")
		o := f.order(t)

		require.NoError(t, f.repo.Add(f.ctx, f.userID, milk.ID, 2))
		require.NoError(t, f.repo.Add(f.ctx, f.userID, bread.ID, 1))
		// added while the order was being placed
		require.NoError(t, f.repo.Add(f.ctx, f.userID, milk.ID, 3))
		require.NoError(t, f.repo.Add(f.ctx, f.userID, eggs.ID, 6))

		purchased := []cart.Purchase{{ProductID: milk.ID, Quantity: 2}, {ProductID: bread.ID, Quantity: 1}}
		removed, err := f.repo.RemovePurchased(f.ctx, o.ID, f.userID, purchased)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Equal(t, map[uint]int{milk.ID: 3, eggs.ID: 6}, f.quantities(t))

		var stored order.Order
		require.NoError(t, db.First(&stored, o.ID).Error)
		assert.True(t, stored.CartCleared)

		removed, err = f.repo.RemovePurchased(f.ctx, o.ID, f.userID, purchased)
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, map[uint]int{milk.ID: 3, eggs.ID: 6}, f.quantities(t))
	})

	t.Run("remove purchased ignores another user's order", func(t *testing.T) {
		f := newFixture()
		other := newFixture()
		milk := f.product(t, "Buffalo Milk")
		o := other.order(t)

		require.NoError(t, f.repo.Add(f.ctx, f.userID, milk.ID, 1))
		removed, err := f.repo.RemovePurchased(f.ctx, o.ID, f.userID, []cart.Purchase{{ProductID: milk.ID, Quantity: 1}})
		require.NoError(t, err)
		assert.False(t, removed)
		assert.Equal(t, map[uint]int{milk.ID: 1}, f.quantities(t))
	})

	t.Run("deleted product takes its lines with it", func(t *testing.T) {
		f := newFixture()
		paneer := f.product(t, "Paneer")
		require.NoError(t, f.repo.Add(f.ctx, f.userID, paneer.ID, 1))

		require.NoError(t, db.Delete(&product.Product{}, paneer.ID).Error)
		assert.Empty(t, f.quantities(t))
	})
}
