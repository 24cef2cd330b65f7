// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/freshbasket/storefront/internal/domain/ranking"
	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/freshbasket/storefront/internal/notify"
	"github.com/freshbasket/storefront/internal/pkg/lock"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Dependencies are the stores and side channels checkout coordinates
type Dependencies struct {
	Carts     cart.Repository
	Products  product.Repository
	Users     user.Repository
	Orders    order.Repository
	Ranking   ranking.Store
	Publisher notify.Publisher
	Locker    lock.Locker
	Logger    *logrus.Logger
}

// Service turns a cart into an order
type Service struct {
	carts     cart.Repository
	products  product.Repository
	users     user.Repository
	orders    order.Repository
	ranking   ranking.Store
	publisher notify.Publisher
	locker    lock.Locker
	logger    *logrus.Logger
	pricing   Pricing
	lockTTL   time.Duration
	now       func() time.Time
}

// NewService creates a new checkout service
func NewService(deps Dependencies, cfg config.CheckoutConfig) *Service {
	return &Service{
		carts:     deps.Carts,
		products:  deps.Products,
		users:     deps.Users,
		orders:    deps.Orders,
		ranking:   deps.Ranking,
		publisher: deps.Publisher,
		locker:    deps.Locker,
		logger:    deps.Logger,
		pricing:   NewPricing(cfg),
		lockTTL:   cfg.LockTTL,
		now:       time.Now,
	}
}

// CheckoutRequest identifies the buyer and the saved address to ship to
type CheckoutRequest struct {
	UserID    uint
	UserName  string
	AddressID uint
}

// Result is what the buyer learns about the new order
type Result struct {
	OrderID     uint            `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Order       *order.Order    `json:"-"`
}

// CheckoutSummary prices the current cart without writing anything
type CheckoutSummary struct {
	Totals
	ItemCount             int             `json:"item_count"`
	TotalQuantity         int             `json:"total_quantity"`
	FreeDeliveryRemaining decimal.Decimal `json:"free_delivery_remaining"`
	CanCheckout           bool            `json:"can_checkout"`
	Warnings              []string        `json:"warnings"`
}

type debit struct {
	productID uint
	quantity  int
}

func lockKey(userID uint) string {
	return fmt.Sprintf("checkout:%d", userID)
}

// Checkout validates the cart, debits stock, records the order and then
// completes the advisory steps: live event, cart clear and ranking. Once
// the order is created the call succeeds even if advisory steps fail;
// the reconciler finishes them later.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*Result, error) {
	log := s.logger.WithField("user_id", req.UserID)

	release, err := s.locker.Acquire(ctx, lockKey(req.UserID), s.lockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, ErrCheckoutInProgress
		}
		// The conditional stock debit still prevents overselling; only the
		// duplicate order guard is lost while the lock store is down.
		log.WithError(err).Warn("checkout lock unavailable, continuing unlocked")
		release = func(context.Context) error { return nil }
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.WithError(err).Warn("failed to release checkout lock")
		}
	}()

	lines, err := s.carts.Lines(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Product == nil {
			return nil, fmt.Errorf("%w: product %d", ErrProductUnavailable, line.ProductID)
		}
	}

	address, err := s.users.GetAddress(ctx, req.UserID, req.AddressID)
	if err != nil {
		return nil, err
	}

	totals := s.pricing.Price(cart.Subtotal(lines))

	for _, line := range lines {
		if !line.Product.InStock(line.Quantity) {
			return nil, &InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Available:   line.Product.Stock,
			}
		}
	}

	items := snapshot(lines)

	if err := s.debitStock(ctx, items); err != nil {
		return nil, err
	}

	o := &order.Order{
		UserID:          req.UserID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		DeliveryFee:     totals.DeliveryFee,
		TotalAmount:     totals.TotalAmount,
		ShippingAddress: user.FormatShippingAddress(*address),
		OrderDate:       s.now().UTC(),
		Status:          order.StatusProcessing,
		TipAmount:       decimal.Zero,
	}
	if err := s.orders.Create(ctx, o); err != nil {
		s.restoreStock(context.WithoutCancel(ctx), debitsFor(items))
		return nil, err
	}

	log = log.WithField("order_id", o.ID)
	log.WithField("total_amount", o.TotalAmount.String()).Info("order placed")

	// The order is durable; what follows must not be cut short by the client going away.
	postCtx := context.WithoutCancel(ctx)

	event := notify.NewEvent(notify.EventNewOrder, notify.NewOrderPayload{
		OrderID:     o.ID,
		TotalAmount: o.TotalAmount,
		UserName:    req.UserName,
	})
	if err := s.publisher.Publish(postCtx, event); err != nil {
		log.WithError(err).Warn("failed to publish new order event")
	}

	if err := s.ClearCart(postCtx, o); err != nil {
		log.WithError(err).Warn("cart not cleared after checkout, leaving it to the reconciler")
	}

	if err := s.RecordRanking(postCtx, o); err != nil {
		log.WithError(err).Warn("ranking not updated after checkout, leaving it to the reconciler")
	}

	return &Result{
		OrderID:     o.ID,
		TotalAmount: o.TotalAmount,
		Order:       o,
	}, nil
}

// ClearCart takes the order's quantities off the user's cart and marks the
// order. Quantity added after checkout read the cart is kept, and repeating
// the call for a marked order changes nothing.
func (s *Service) ClearCart(ctx context.Context, o *order.Order) error {
	purchased := make([]cart.Purchase, 0, len(o.Items))
	for _, item := range o.Items {
		purchased = append(purchased, cart.Purchase{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	if _, err := s.carts.RemovePurchased(ctx, o.ID, o.UserID, purchased); err != nil {
		return err
	}
	o.CartCleared = true
	return nil
}

// RecordRanking adds every line's quantity to the sales ranking in one
// batch and marks the order
func (s *Service) RecordRanking(ctx context.Context, o *order.Order) error {
	entries := make([]ranking.Entry, 0, len(o.Items))
	for _, item := range o.Items {
		entries = append(entries, ranking.Entry{ProductID: item.ProductID, Score: float64(item.Quantity)})
	}
	if err := s.ranking.IncrementScores(ctx, entries); err != nil {
		return err
	}
	if err := s.orders.MarkRankingRecorded(ctx, o.ID); err != nil {
		return err
	}
	o.RankingRecorded = true
	return nil
}

// Quote prices the cart the way Checkout would, without writing
func (s *Service) Quote(ctx context.Context, userID uint) (*CheckoutSummary, error) {
	lines, err := s.carts.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &CheckoutSummary{
		Totals: Totals{
			Subtotal:    decimal.Zero,
			DeliveryFee: decimal.Zero,
			TotalAmount: decimal.Zero,
		},
		FreeDeliveryRemaining: s.pricing.FreeDeliveryThreshold,
		Warnings:              []string{},
	}
	if len(lines) == 0 {
		return summary, nil
	}

	summary.CanCheckout = true
	for _, line := range lines {
		summary.ItemCount++
		summary.TotalQuantity += line.Quantity

		if line.Product == nil {
			summary.CanCheckout = false
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("Product %d is no longer available.", line.ProductID))
			continue
		}
		if !line.Product.InStock(line.Quantity) {
			summary.CanCheckout = false
			summary.Warnings = append(summary.Warnings, (&InsufficientStockError{
				ProductID:   line.ProductID,
				ProductName: line.Product.Name,
				Available:   line.Product.Stock,
			}).Error())
		}
	}

	subtotal := cart.Subtotal(lines)
	summary.Totals = s.pricing.Price(subtotal)
	summary.FreeDeliveryRemaining = s.pricing.FreeDeliveryRemaining(subtotal)

	return summary, nil
}

func snapshot(lines []cart.CartItem) []order.OrderItem {
	items := make([]order.OrderItem, 0, len(lines))
	for _, line := range lines {
		p := line.Product
		items = append(items, order.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Unit:      p.Unit,
			Quantity:  line.Quantity,
			LineTotal: p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))),
		})
	}
	return items
}

func debitsFor(items []order.OrderItem) []debit {
	debits := make([]debit, 0, len(items))
	for _, item := range items {
		debits = append(debits, debit{productID: item.ProductID, quantity: item.Quantity})
	}
	return debits
}

// debitStock takes every line's quantity with a conditional decrement.
// If any line fails, the lines already taken are put back.
func (s *Service) debitStock(ctx context.Context, items []order.OrderItem) error {
	taken := make([]debit, 0, len(items))

	for _, item := range items {
		ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.restoreStock(context.WithoutCancel(ctx), taken)
			return fmt.Errorf("failed to debit stock: %w", err)
		}
		if !ok {
			s.restoreStock(context.WithoutCancel(ctx), taken)
			return &InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.Name,
				Available:   s.currentStock(ctx, item.ProductID),
			}
		}
		taken = append(taken, debit{productID: item.ProductID, quantity: item.Quantity})
	}

	return nil
}

func (s *Service) restoreStock(ctx context.Context, debits []debit) {
	for _, d := range debits {
		if err := s.products.RestoreStock(ctx, d.productID, d.quantity); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"product_id": d.productID,
				"quantity":   d.quantity,
			}).Error("failed to restore stock, manual correction needed")
		}
	}
}

func (s *Service) currentStock(ctx context.Context, productID uint) int {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return 0
	}
	return p.Stock
}
