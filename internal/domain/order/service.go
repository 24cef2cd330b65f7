// internal/domain/order/service.go
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const statsWindowDays = 30

// Service handles order reads, tips and reporting
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new order service
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// OrderListRequest represents the admin listing query
type OrderListRequest struct {
	Status string `form:"status"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

// OrderResponse is a page of orders
type OrderResponse struct {
	Orders []Order `json:"orders"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// ListForUser returns the user's orders, newest first
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// GetForUser returns an order only if it belongs to userID
func (s *Service) GetForUser(ctx context.Context, orderID, userID uint) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// Get returns any order, for staff
func (s *Service) Get(ctx context.Context, orderID uint) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// List returns a page of all orders, for staff
func (s *Service) List(ctx context.Context, req OrderListRequest) (*OrderResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	filter := ListFilter{
		Limit:  req.Limit,
		Offset: (req.Page - 1) * req.Limit,
	}
	if req.Status != "" {
		status, err := ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}

	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Order{}
	}

	return &OrderResponse{
		Orders: orders,
		Total:  total,
		Page:   req.Page,
		Limit:  req.Limit,
	}, nil
}

// AddTip sets the driver tip on one of the user's orders
func (s *Service) AddTip(ctx context.Context, orderID, userID uint, amount decimal.Decimal) (*Order, error) {
	if amount.IsNegative() {
		return nil, ErrInvalidTip
	}

	o, err := s.GetForUser(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateTip(ctx, orderID, amount); err != nil {
		return nil, err
	}

	o.TipAmount = amount
	return o, nil
}

// Stats returns revenue excluding cancelled orders and daily sales for
// the last 30 days
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	revenue, err := s.repo.Revenue(ctx)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(statsWindowDays - 1))

	days, err := s.repo.SalesByDay(ctx, since)
	if err != nil {
		return nil, err
	}
	if days == nil {
		days = []DailySales{}
	}

	return &Stats{
		TotalRevenue: revenue,
		SalesByDay:   days,
	}, nil
}
