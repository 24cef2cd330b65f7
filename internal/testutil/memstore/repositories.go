package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/shopspring/decimal"
)

type productRepo struct{ s *Store }

func (r *productRepo) GetByID(_ context.Context, id uint) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpProductGet); err != nil {
		return nil, err
	}
	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (r *productRepo) GetByIDs(_ context.Context, ids []uint) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []product.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *productRepo) DecrementStock(_ context.Context, id uint, qty int) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpProductDecrement); err != nil {
		return false, err
	}
	p, ok := r.s.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	return true, nil
}

func (r *productRepo) RestoreStock(_ context.Context, id uint, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpProductRestore); err != nil {
		return err
	}
	if p, ok := r.s.products[id]; ok {
		p.Stock += qty
	}
	return nil
}

type cartRepo struct{ s *Store }

func (r *cartRepo) Lines(_ context.Context, userID uint) ([]cart.CartItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpCartLines); err != nil {
		return nil, err
	}
	var out []cart.CartItem
	for _, item := range r.s.cartItems {
		if item.UserID != userID {
			continue
		}
		c := *item
		if p, ok := r.s.products[item.ProductID]; ok {
			pc := *p
			c.Product = &pc
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *cartRepo) Add(_ context.Context, userID, productID uint, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.addLocked(userID, productID, qty)
	return nil
}

func (r *cartRepo) SetQuantity(_ context.Context, userID, productID uint, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, item := range r.s.cartItems {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity = qty
			item.UpdatedAt = r.s.tick()
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (r *cartRepo) Remove(_ context.Context, userID, productID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, item := range r.s.cartItems {
		if item.UserID == userID && item.ProductID == productID {
			delete(r.s.cartItems, id)
		}
	}
	return nil
}

func (r *cartRepo) RemovePurchased(_ context.Context, orderID, userID uint, purchased []cart.Purchase) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpCartClear); err != nil {
		return false, err
	}
	o, ok := r.s.orders[orderID]
	if !ok || o.UserID != userID || o.CartCleared {
		return false, nil
	}
	for _, p := range purchased {
		for id, item := range r.s.cartItems {
			if item.UserID != userID || item.ProductID != p.ProductID {
				continue
			}
			if item.Quantity <= p.Quantity {
				delete(r.s.cartItems, id)
				continue
			}
			item.Quantity -= p.Quantity
			item.UpdatedAt = r.s.tick()
		}
	}
	o.CartCleared = true
	return true, nil
}

type userRepo struct{ s *Store }

func (r *userRepo) GetByID(_ context.Context, id uint) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *userRepo) GetAddress(_ context.Context, userID, addressID uint) (*user.Address, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpUserAddress); err != nil {
		return nil, err
	}
	a, ok := r.s.addresses[addressID]
	if !ok || a.UserID != userID {
		return nil, user.ErrAddressNotFound
	}
	c := *a
	return &c, nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpOrderCreate); err != nil {
		return err
	}
	o.ID = r.s.id()
	o.CreatedAt = r.s.tick()
	o.UpdatedAt = o.CreatedAt
	if o.Status == "" {
		o.Status = order.StatusProcessing
	}
	for i := range o.Items {
		o.Items[i].ID = r.s.id()
		o.Items[i].OrderID = o.ID
	}
	stored := copyOrder(o)
	r.s.orders[o.ID] = &stored
	return nil
}

func (r *orderRepo) GetByID(_ context.Context, id uint) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	c := copyOrder(o)
	return &c, nil
}

func (r *orderRepo) ListByUser(_ context.Context, userID uint) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []order.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (r *orderRepo) List(_ context.Context, filter order.ListFilter) ([]order.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []order.Order
	for _, o := range r.s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		all = append(all, copyOrder(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OrderDate.After(all[j].OrderDate) })

	total := int64(len(all))
	start := filter.Offset
	if start > len(all) {
		start = len(all)
	}
	end := len(all)
	if filter.Limit > 0 && start+filter.Limit < end {
		end = start + filter.Limit
	}
	return all[start:end], total, nil
}

func (r *orderRepo) UpdateStatus(_ context.Context, change order.StatusChange) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpOrderUpdateStatus); err != nil {
		return err
	}
	o, ok := r.s.orders[change.OrderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	if change.From != nil && o.Status != *change.From {
		return order.ErrStatusConflict
	}

	o.Status = change.To
	history := order.OrderStatusHistory{
		ID:        r.s.id(),
		OrderID:   o.ID,
		Status:    change.To,
		ChangedBy: change.ChangedBy,
		CreatedAt: r.s.tick(),
	}
	if change.DriverName != "" {
		d := change.DriverName
		o.DriverName = &d
		hd := d
		history.DriverName = &hd
	}
	o.StatusHistory = append([]order.OrderStatusHistory{history}, o.StatusHistory...)
	o.UpdatedAt = history.CreatedAt
	return nil
}

func (r *orderRepo) UpdateTip(_ context.Context, id uint, amount decimal.Decimal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return order.ErrOrderNotFound
	}
	o.TipAmount = amount
	return nil
}

func (r *orderRepo) MarkRankingRecorded(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fault(OpOrderMarkRanked); err != nil {
		return err
	}
	if o, ok := r.s.orders[id]; ok {
		o.RankingRecorded = true
	}
	return nil
}

func (r *orderRepo) ListUnreconciled(_ context.Context, olderThan time.Time, limit int) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []order.Order
	for _, o := range r.s.orders {
		if o.NeedsReconcile() && o.CreatedAt.Before(olderThan) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *orderRepo) Revenue(_ context.Context) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return sumNonCancelled(r.s.orders), nil
}

func (r *orderRepo) SalesByDay(_ context.Context, since time.Time) ([]order.DailySales, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byDay := make(map[string]*order.DailySales)
	for _, o := range r.s.orders {
		if o.Status == order.StatusCancelled || o.OrderDate.Before(since) {
			continue
		}
		day := o.OrderDate.UTC().Format("2006-01-02")
		row, ok := byDay[day]
		if !ok {
			row = &order.DailySales{Day: day, TotalSales: decimal.Zero}
			byDay[day] = row
		}
		row.Orders++
		row.TotalSales = row.TotalSales.Add(o.TotalAmount)
	}

	out := make([]order.DailySales, 0, len(byDay))
	for _, row := range byDay {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
