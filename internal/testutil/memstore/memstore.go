// Package memstore is an in-memory implementation of the repository
// interfaces, with fault injection, for tests.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Operation names accepted by SetFault
const (
	OpProductGet        = "products.GetByID"
	OpProductDecrement  = "products.DecrementStock"
	OpProductRestore    = "products.RestoreStock"
	OpCartLines         = "carts.Lines"
	OpCartClear         = "carts.RemovePurchased"
	OpUserAddress       = "users.GetAddress"
	OpOrderCreate       = "orders.Create"
	OpOrderUpdateStatus = "orders.UpdateStatus"
	OpOrderMarkRanked   = "orders.MarkRankingRecorded"
)

// Store holds every table in maps guarded by one mutex
type Store struct {
	mu        sync.Mutex
	nextID    uint
	clock     time.Time
	products  map[uint]*product.Product
	users     map[uint]*user.User
	addresses map[uint]*user.Address
	cartItems map[uint]*cart.CartItem
	orders    map[uint]*order.Order
	faults    map[string]error
}

// New creates an empty store
func New() *Store {
	return &Store{
		clock:     time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		products:  make(map[uint]*product.Product),
		users:     make(map[uint]*user.User),
		addresses: make(map[uint]*user.Address),
		cartItems: make(map[uint]*cart.CartItem),
		orders:    make(map[uint]*order.Order),
		faults:    make(map[string]error),
	}
}

// Products returns the inventory store view
func (s *Store) Products() product.Repository { return &productRepo{s} }

// Carts returns the cart holder view
func (s *Store) Carts() cart.Repository { return &cartRepo{s} }

// Users returns the user view
func (s *Store) Users() user.Repository { return &userRepo{s} }

// Orders returns the order ledger view
func (s *Store) Orders() order.Repository { return &orderRepo{s} }

// SetFault makes every call of op fail with err until cleared with a nil err
func (s *Store) SetFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// Now returns the store clock's current reading
func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// Advance moves the store clock forward
func (s *Store) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = s.clock.Add(d)
}

// tick returns a strictly increasing timestamp; callers hold mu
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *Store) id() uint {
	s.nextID++
	return s.nextID
}

func (s *Store) fault(op string) error {
	return s.faults[op]
}

// AddProduct inserts a product and returns it with its id
func (s *Store) AddProduct(p product.Product) product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	p.CreatedAt = s.tick()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = &p
	return p
}

// DeleteProduct removes a product without touching carts or orders
func (s *Store) DeleteProduct(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.products, id)
}

// SetStock overwrites a product's stock
func (s *Store) SetStock(id uint, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		p.Stock = stock
	}
}

// Stock returns a product's current stock, or -1 when it does not exist
func (s *Store) Stock(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.Stock
	}
	return -1
}

// AddUser inserts a user
func (s *Store) AddUser(u user.User) user.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = s.id()
	if u.Role == "" {
		u.Role = user.RoleCustomer
	}
	u.CreatedAt = s.tick()
	s.users[u.ID] = &u
	return u
}

// AddAddress inserts an address
func (s *Store) AddAddress(a user.Address) user.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	a.CreatedAt = s.tick()
	s.addresses[a.ID] = &a
	return a
}

// AddToCart merges qty into the user's line for the product
func (s *Store) AddToCart(userID, productID uint, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(userID, productID, qty)
}

func (s *Store) addLocked(userID, productID uint, qty int) {
	for _, item := range s.cartItems {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += qty
			item.UpdatedAt = s.tick()
			return
		}
	}
	now := s.tick()
	item := &cart.CartItem{
		ID:        s.id(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.cartItems[item.ID] = item
}

// CartQuantities returns product id to quantity for the user's cart
func (s *Store) CartQuantities(userID uint) map[uint]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint]int)
	for _, item := range s.cartItems {
		if item.UserID == userID {
			out[item.ProductID] = item.Quantity
		}
	}
	return out
}

// OrderCount returns how many orders exist
func (s *Store) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// OrdersFor returns copies of a user's orders by id
func (s *Store) OrdersFor(userID uint) []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PutOrder stores an order as given, for tests that need a specific state
func (s *Store) PutOrder(o order.Order) order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.tick()
	}
	if o.Status == "" {
		o.Status = order.StatusProcessing
	}
	for i := range o.Items {
		o.Items[i].ID = s.id()
		o.Items[i].OrderID = o.ID
	}
	stored := copyOrder(&o)
	s.orders[o.ID] = &stored
	return copyOrder(&stored)
}

func copyOrder(o *order.Order) order.Order {
	c := *o
	c.Items = append([]order.OrderItem(nil), o.Items...)
	c.StatusHistory = append([]order.OrderStatusHistory(nil), o.StatusHistory...)
	if o.DriverName != nil {
		d := *o.DriverName
		c.DriverName = &d
	}
	return c
}

func sumNonCancelled(orders map[uint]*order.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		total = total.Add(o.TotalAmount)
	}
	return total
}
