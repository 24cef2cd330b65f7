package checkout_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/freshbasket/storefront/internal/domain/checkout"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/freshbasket/storefront/internal/domain/ranking"
	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/freshbasket/storefront/internal/notify"
	"github.com/freshbasket/storefront/internal/pkg/lock"
	"github.com/freshbasket/storefront/internal/pkg/logger"
	"github.com/freshbasket/storefront/internal/testutil/memstore"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var checkoutConfig = config.CheckoutConfig{
	FreeDeliveryThreshold: decimal.NewFromInt(199),
	DeliveryFee:           decimal.NewFromInt(50),
	LockTTL:               30 * time.Second,
}

type nopLocker struct{}

func (nopLocker) Acquire(context.Context, string, time.Duration) (lock.Release, error) {
	return func(context.Context) error { return nil }, nil
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, notify.Event) error {
	return errors.New("broker unreachable")
}

type failingRanking struct{}

func (failingRanking) IncrementScore(context.Context, uint, float64) error {
	return errors.New("ranking store unreachable")
}

func (failingRanking) IncrementScores(context.Context, []ranking.Entry) error {
	return errors.New("ranking store unreachable")
}

func (failingRanking) TopK(context.Context, int) ([]ranking.Entry, error) {
	return nil, errors.New("ranking store unreachable")
}

// gatedCarts holds every Lines call after its read until the gate opens
type gatedCarts struct {
	cart.Repository
	entered chan struct{}
	gate    chan struct{}
}

func newGatedCarts(inner cart.Repository) *gatedCarts {
	return &gatedCarts{
		Repository: inner,
		entered:    make(chan struct{}, 8),
		gate:       make(chan struct{}),
	}
}

func (g *gatedCarts) Lines(ctx context.Context, userID uint) ([]cart.CartItem, error) {
	lines, err := g.Repository.Lines(ctx, userID)
	g.entered <- struct{}{}
	<-g.gate
	return lines, err
}

// sabotagedProducts lowers a product's stock just before it is debited
type sabotagedProducts struct {
	product.Repository
	store     *memstore.Store
	productID uint
	stock     int
}

func (s *sabotagedProducts) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	if id == s.productID {
		s.store.SetStock(id, s.stock)
	}
	return s.Repository.DecrementStock(ctx, id, qty)
}

type fixture struct {
	ctx     context.Context
	store   *memstore.Store
	pub     *notify.RecordingPublisher
	mr      *miniredis.Miniredis
	ranks   *ranking.RedisStore
	deps    checkout.Dependencies
	buyer   user.User
	address user.Address
	apples  product.Product
	milk    product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	f := &fixture{
		ctx:   context.Background(),
		store: store,
		pub:   notify.NewRecordingPublisher(64),
		mr:    mr,
		ranks: ranking.NewRedisStore(rdb, "top_products"),
	}
	f.buyer = store.AddUser(user.User{Name: "Asha Rao", Email: "asha@example.com"})
	f.address = store.AddAddress(user.Address{
		UserID:     f.buyer.ID,
		Street:     "12 MG Road",
		City:       "Pune",
		State:      "MH",
		PostalCode: "411001",
		Phone:      "9800000000",
	})
	f.apples = store.AddProduct(product.Product{Name: "Apples", Category: "Fruits", Price: decimal.RequireFromString("120.00"), Unit: "1 kg", Stock: 10})
	f.milk = store.AddProduct(product.Product{Name: "Milk", Category: "Dairy", Price: decimal.RequireFromString("30.00"), Unit: "500 ml", Stock: 20})

	f.deps = checkout.Dependencies{
		Carts:     store.Carts(),
		Products:  store.Products(),
		Users:     store.Users(),
		Orders:    store.Orders(),
		Ranking:   f.ranks,
		Publisher: f.pub,
		Locker:    lock.NewMemoryLocker(),
		Logger:    logger.Discard(),
	}
	return f
}

func (f *fixture) service() *checkout.Service {
	return checkout.NewService(f.deps, checkoutConfig)
}

func (f *fixture) request() checkout.CheckoutRequest {
	return checkout.CheckoutRequest{UserID: f.buyer.ID, UserName: f.buyer.Name, AddressID: f.address.ID}
}

func (f *fixture) score(t *testing.T, productID uint) float64 {
	t.Helper()
	top, err := f.ranks.TopK(f.ctx, 100)
	require.NoError(t, err)
	for _, e := range top {
		if e.ProductID == productID {
			return e.Score
		}
	}
	return 0
}

func TestCheckoutPlacesOrder(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 2)
	f.store.AddToCart(f.buyer.ID, f.milk.ID, 3)

	res, err := f.service().Checkout(f.ctx, f.request())
	require.NoError(t, err)

	// 2*120 + 3*30 = 330, above the free delivery threshold
	assert.Equal(t, "330", res.TotalAmount.String())

	orders := f.store.OrdersFor(f.buyer.ID)
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, res.OrderID, o.ID)
	assert.Equal(t, order.StatusProcessing, o.Status)
	assert.True(t, o.DeliveryFee.IsZero())
	assert.True(t, o.TipAmount.IsZero())
	assert.Nil(t, o.DriverName)
	assert.Equal(t, "12 MG Road, Pune, MH - 411001", o.ShippingAddress)
	assert.True(t, o.CartCleared)
	assert.True(t, o.RankingRecorded)

	require.Len(t, o.Items, 2)
	assert.Equal(t, "Apples", o.Items[0].Name)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "240", o.Items[0].LineTotal.String())

	assert.Equal(t, 8, f.store.Stock(f.apples.ID))
	assert.Equal(t, 17, f.store.Stock(f.milk.ID))
	assert.Empty(t, f.store.CartQuantities(f.buyer.ID))

	assert.Equal(t, float64(2), f.score(t, f.apples.ID))
	assert.Equal(t, float64(3), f.score(t, f.milk.ID))

	events := f.pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notify.EventNewOrder, events[0].Type)
	payload, ok := events[0].Data.(notify.NewOrderPayload)
	require.True(t, ok)
	assert.Equal(t, o.ID, payload.OrderID)
	assert.Equal(t, "Asha Rao", payload.UserName)
	assert.True(t, payload.TotalAmount.Equal(o.TotalAmount))
}

func TestCheckoutDeliveryFeeBoundary(t *testing.T) {
	tests := []struct {
		price string
		fee   string
		total string
	}{
		{price: "198.99", fee: "50", total: "248.99"},
		{price: "199.00", fee: "0", total: "199"},
		{price: "199.01", fee: "0", total: "199.01"},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			f := newFixture(t)
			basket := f.store.AddProduct(product.Product{Name: "Basket", Price: decimal.RequireFromString(tt.price), Stock: 5})
			f.store.AddToCart(f.buyer.ID, basket.ID, 1)

			res, err := f.service().Checkout(f.ctx, f.request())
			require.NoError(t, err)

			o := f.store.OrdersFor(f.buyer.ID)[0]
			assert.True(t, o.DeliveryFee.Equal(decimal.RequireFromString(tt.fee)))
			assert.True(t, res.TotalAmount.Equal(decimal.RequireFromString(tt.total)))
		})
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.service().Checkout(f.ctx, f.request())

	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Zero(t, f.store.OrderCount())
	assert.Empty(t, f.pub.Events())
}

func TestCheckoutTwiceLeavesOneOrder(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	svc := f.service()

	_, err := svc.Checkout(f.ctx, f.request())
	require.NoError(t, err)

	_, err = svc.Checkout(f.ctx, f.request())
	assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	assert.Equal(t, 1, f.store.OrderCount())
	assert.Equal(t, 9, f.store.Stock(f.apples.ID))
}

func TestCheckoutAddressOwnedByAnotherUser(t *testing.T) {
	f := newFixture(t)
	other := f.store.AddUser(user.User{Name: "Vikram", Email: "vikram@example.com"})
	foreign := f.store.AddAddress(user.Address{UserID: other.ID, Street: "1 Park St", City: "Kolkata", State: "WB", PostalCode: "700016"})
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)

	req := f.request()
	req.AddressID = foreign.ID
	_, err := f.service().Checkout(f.ctx, req)

	assert.ErrorIs(t, err, checkout.ErrAddressNotFound)
	assert.Zero(t, f.store.OrderCount())
	assert.Equal(t, 10, f.store.Stock(f.apples.ID))
	assert.Equal(t, map[uint]int{f.apples.ID: 1}, f.store.CartQuantities(f.buyer.ID))
}

func TestCheckoutInsufficientStock(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.milk.ID, 2)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 11)

	_, err := f.service().Checkout(f.ctx, f.request())

	var stockErr *checkout.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, f.apples.ID, stockErr.ProductID)
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, "Not enough stock for Apples. Only 10 left.", err.Error())

	assert.Zero(t, f.store.OrderCount())
	assert.Equal(t, 20, f.store.Stock(f.milk.ID))
	assert.Equal(t, 10, f.store.Stock(f.apples.ID))
	assert.Len(t, f.store.CartQuantities(f.buyer.ID), 2)
}

func TestCheckoutDeletedProduct(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	f.store.AddToCart(f.buyer.ID, f.milk.ID, 1)
	f.store.DeleteProduct(f.milk.ID)

	_, err := f.service().Checkout(f.ctx, f.request())

	assert.ErrorIs(t, err, checkout.ErrProductUnavailable)
	assert.Zero(t, f.store.OrderCount())
	assert.Equal(t, 10, f.store.Stock(f.apples.ID))
}

func TestCheckoutRestoresEarlierDebitsWhenLaterLineFails(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 4)
	f.store.AddToCart(f.buyer.ID, f.milk.ID, 5)
	f.deps.Products = &sabotagedProducts{
		Repository: f.store.Products(),
		store:      f.store,
		productID:  f.milk.ID,
		stock:      1,
	}

	_, err := f.service().Checkout(f.ctx, f.request())

	var stockErr *checkout.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, f.milk.ID, stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 10, f.store.Stock(f.apples.ID))
	assert.Zero(t, f.store.OrderCount())
}

func TestCheckoutStoreErrorDuringDebit(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	f.store.SetFault(memstore.OpProductDecrement, errors.New("connection reset"))

	_, err := f.service().Checkout(f.ctx, f.request())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Zero(t, f.store.OrderCount())
	assert.Equal(t, 10, f.store.Stock(f.apples.ID))
}

func TestCheckoutOrderCreateFailureRestoresStock(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 3)
	f.store.SetFault(memstore.OpOrderCreate, errors.New("disk full"))

	_, err := f.service().Checkout(f.ctx, f.request())

	require.Error(t, err)
	assert.Equal(t, 10, f.store.Stock(f.apples.ID))
	assert.Equal(t, map[uint]int{f.apples.ID: 3}, f.store.CartQuantities(f.buyer.ID))
	assert.Empty(t, f.pub.Events())
	assert.Zero(t, f.score(t, f.apples.ID))
}

func TestCheckoutSucceedsWhenCartClearFails(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	f.store.SetFault(memstore.OpCartClear, errors.New("timeout"))

	res, err := f.service().Checkout(f.ctx, f.request())
	require.NoError(t, err)

	o := f.store.OrdersFor(f.buyer.ID)[0]
	assert.Equal(t, res.OrderID, o.ID)
	assert.False(t, o.CartCleared)
	assert.True(t, o.RankingRecorded)
	assert.Equal(t, map[uint]int{f.apples.ID: 1}, f.store.CartQuantities(f.buyer.ID))
}

func TestCheckoutSucceedsWhenRankingFails(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	f.deps.Ranking = failingRanking{}

	_, err := f.service().Checkout(f.ctx, f.request())
	require.NoError(t, err)

	o := f.store.OrdersFor(f.buyer.ID)[0]
	assert.True(t, o.CartCleared)
	assert.False(t, o.RankingRecorded)
}

func TestCheckoutSucceedsWhenPublishFails(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	f.deps.Publisher = failingPublisher{}

	_, err := f.service().Checkout(f.ctx, f.request())
	require.NoError(t, err)
	assert.Equal(t, 1, f.store.OrderCount())
}

func TestCheckoutConcurrentBuyersNeverOversell(t *testing.T) {
	f := newFixture(t)
	last := f.store.AddProduct(product.Product{Name: "Mangoes", Price: decimal.NewFromInt(300), Stock: 1})

	const buyers = 10
	requests := make([]checkout.CheckoutRequest, buyers)
	for i := range requests {
		u := f.store.AddUser(user.User{Name: "Buyer", Email: "buyer@example.com"})
		a := f.store.AddAddress(user.Address{UserID: u.ID, Street: "1 Lane", City: "Pune", State: "MH", PostalCode: "411001"})
		f.store.AddToCart(u.ID, last.ID, 1)
		requests[i] = checkout.CheckoutRequest{UserID: u.ID, UserName: u.Name, AddressID: a.ID}
	}

	svc := f.service()
	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := range requests {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(f.ctx, requests[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var stockErr *checkout.InsufficientStockError
		assert.ErrorAs(t, err, &stockErr)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, f.store.OrderCount())
	assert.Equal(t, 0, f.store.Stock(last.ID))
}

func TestCheckoutSameUserRaceWithoutLockPlacesTwoOrders(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	carts := newGatedCarts(f.store.Carts())
	f.deps.Carts = carts
	f.deps.Locker = nopLocker{}
	svc := f.service()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(f.ctx, f.request())
		}(i)
	}
	<-carts.entered
	<-carts.entered
	close(carts.gate)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, 2, f.store.OrderCount())
	assert.Equal(t, 8, f.store.Stock(f.apples.ID))
}

func TestCheckoutSameUserRaceWithLockPlacesOneOrder(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	carts := newGatedCarts(f.store.Carts())
	f.deps.Carts = carts
	svc := f.service()

	var firstErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, firstErr = svc.Checkout(f.ctx, f.request())
	}()
	<-carts.entered

	_, err := svc.Checkout(f.ctx, f.request())
	assert.ErrorIs(t, err, checkout.ErrCheckoutInProgress)

	close(carts.gate)
	<-done
	require.NoError(t, firstErr)
	assert.Equal(t, 1, f.store.OrderCount())
	assert.Equal(t, 9, f.store.Stock(f.apples.ID))
}

func TestCheckoutKeepsLinesAddedDuringCheckout(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	carts := newGatedCarts(f.store.Carts())
	f.deps.Carts = carts
	svc := f.service()

	var res *checkout.Result
	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		res, err = svc.Checkout(f.ctx, f.request())
	}()
	<-carts.entered
	f.store.AddToCart(f.buyer.ID, f.milk.ID, 2)
	close(carts.gate)
	<-done

	require.NoError(t, err)
	require.Len(t, res.Order.Items, 1)
	assert.Equal(t, map[uint]int{f.milk.ID: 2}, f.store.CartQuantities(f.buyer.ID))
	assert.Equal(t, 20, f.store.Stock(f.milk.ID))
}

func TestCheckoutKeepsQuantityAddedToExistingLineDuringCheckout(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	carts := newGatedCarts(f.store.Carts())
	f.deps.Carts = carts
	svc := f.service()

	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err = svc.Checkout(f.ctx, f.request())
	}()
	<-carts.entered
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 2)
	close(carts.gate)
	<-done

	require.NoError(t, err)
	assert.Equal(t, 9, f.store.Stock(f.apples.ID))
	assert.Equal(t, map[uint]int{f.apples.ID: 2}, f.store.CartQuantities(f.buyer.ID))
}

func TestClearCartRepeatedForSameOrderRemovesOnce(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 2)
	f.store.SetFault(memstore.OpCartClear, errors.New("timeout"))
	svc := f.service()

	res, err := svc.Checkout(f.ctx, f.request())
	require.NoError(t, err)
	f.store.SetFault(memstore.OpCartClear, nil)

	// the shopper puts apples back before the retry runs
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	stale := f.store.OrdersFor(f.buyer.ID)[0]

	require.NoError(t, svc.ClearCart(f.ctx, &stale))
	assert.Equal(t, map[uint]int{f.apples.ID: 1}, f.store.CartQuantities(f.buyer.ID))

	retry := f.store.OrdersFor(f.buyer.ID)[0]
	retry.CartCleared = false
	require.NoError(t, svc.ClearCart(f.ctx, &retry))
	assert.Equal(t, map[uint]int{f.apples.ID: 1}, f.store.CartQuantities(f.buyer.ID))
	assert.Equal(t, res.OrderID, retry.ID)
}

func TestRecordRankingRetryCountsEachUnitOnce(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 2)
	f.store.AddToCart(f.buyer.ID, f.milk.ID, 3)
	svc := f.service()

	f.mr.SetError("LOADING Redis is loading the dataset in memory")
	_, err := svc.Checkout(f.ctx, f.request())
	require.NoError(t, err)
	f.mr.SetError("")

	o := f.store.OrdersFor(f.buyer.ID)[0]
	require.False(t, o.RankingRecorded)
	assert.Zero(t, f.score(t, f.apples.ID))
	assert.Zero(t, f.score(t, f.milk.ID))

	require.NoError(t, svc.RecordRanking(f.ctx, &o))
	assert.Equal(t, float64(2), f.score(t, f.apples.ID))
	assert.Equal(t, float64(3), f.score(t, f.milk.ID))
	assert.True(t, f.store.OrdersFor(f.buyer.ID)[0].RankingRecorded)
}

func TestCheckoutProceedsWhenLockStoreIsDown(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 2)
	rdb := redis.NewClient(&redis.Options{Addr: f.mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	f.deps.Locker = lock.NewRedisLocker(rdb, "storefront:lock:")
	f.mr.Close()

	res, err := f.service().Checkout(f.ctx, f.request())
	require.NoError(t, err)

	orders := f.store.OrdersFor(f.buyer.ID)
	require.Len(t, orders, 1)
	assert.Equal(t, res.OrderID, orders[0].ID)
	assert.Equal(t, 8, f.store.Stock(f.apples.ID))
	assert.True(t, orders[0].CartCleared)
	// the ranking shares the stopped Redis and is left for the reconciler
	assert.False(t, orders[0].RankingRecorded)
}

func TestCheckoutLockHeldElsewhere(t *testing.T) {
	f := newFixture(t)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 1)
	locker := lock.NewMemoryLocker()
	f.deps.Locker = locker

	release, err := locker.Acquire(f.ctx, fmt.Sprintf("checkout:%d", f.buyer.ID), time.Minute)
	require.NoError(t, err)
	defer release(f.ctx)

	_, err = f.service().Checkout(f.ctx, f.request())
	assert.ErrorIs(t, err, checkout.ErrCheckoutInProgress)
	assert.Zero(t, f.store.OrderCount())
}

func TestQuote(t *testing.T) {
	f := newFixture(t)
	svc := f.service()

	empty, err := svc.Quote(f.ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.False(t, empty.CanCheckout)
	assert.True(t, empty.TotalAmount.IsZero())
	assert.True(t, empty.DeliveryFee.IsZero())

	f.store.AddToCart(f.buyer.ID, f.milk.ID, 2)
	f.store.AddToCart(f.buyer.ID, f.apples.ID, 12)
	f.store.SetStock(f.apples.ID, 10)

	summary, err := svc.Quote(f.ctx, f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemCount)
	assert.Equal(t, 14, summary.TotalQuantity)
	assert.Equal(t, "1500", summary.Subtotal.String())
	assert.True(t, summary.DeliveryFee.IsZero())
	assert.False(t, summary.CanCheckout)
	assert.Equal(t, []string{"Not enough stock for Apples. Only 10 left."}, summary.Warnings)

	assert.Equal(t, 10, f.store.Stock(f.apples.ID))
	assert.Zero(t, f.store.OrderCount())
}
