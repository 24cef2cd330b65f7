// internal/domain/order/repository.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StatusChange describes one status write. When From is set the write only
// applies if the order is still in that status.
type StatusChange struct {
	OrderID    uint
	From       *OrderStatus
	To         OrderStatus
	DriverName string
	ChangedBy  uint
}

// ListFilter narrows the admin order listing
type ListFilter struct {
	Status OrderStatus
	Limit  int
	Offset int
}

// Repository is the order ledger
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, change StatusChange) error
	UpdateTip(ctx context.Context, id uint, amount decimal.Decimal) error
	MarkRankingRecorded(ctx context.Context, id uint) error
	// ListUnreconciled returns orders created before olderThan whose
	// post-commit steps are incomplete, oldest first.
	ListUnreconciled(ctx context.Context, olderThan time.Time, limit int) ([]Order, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
	SalesByDay(ctx context.Context, since time.Time) ([]DailySales, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed order ledger
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, o *Order) error {
	// gorm writes the order and its items in one transaction
	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&o, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

func (r *gormRepository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	var orders []Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	err := query.
		Preload("Items").
		Order("order_date DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, total, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, change StatusChange) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&Order{}).Where("id = ?", change.OrderID)
		if change.From != nil {
			query = query.Where("status = ?", *change.From)
		}

		updates := map[string]interface{}{
			"status": change.To,
		}
		history := OrderStatusHistory{
			OrderID:   change.OrderID,
			Status:    change.To,
			ChangedBy: change.ChangedBy,
		}
		if change.DriverName != "" {
			updates["driver_name"] = change.DriverName
			driver := change.DriverName
			history.DriverName = &driver
		}

		result := query.Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update order status: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			if change.From != nil {
				return ErrStatusConflict
			}
			return ErrOrderNotFound
		}

		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		return nil
	})
}

func (r *gormRepository) UpdateTip(ctx context.Context, id uint, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update("tip_amount", amount)
	if result.Error != nil {
		return fmt.Errorf("failed to update tip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *gormRepository) MarkRankingRecorded(ctx context.Context, id uint) error {
	return r.setFlag(ctx, id, "ranking_recorded")
}

func (r *gormRepository) setFlag(ctx context.Context, id uint, column string) error {
	err := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", id).Update(column, true).Error
	if err != nil {
		return fmt.Errorf("failed to set %s on order %d: %w", column, id, err)
	}
	return nil
}

func (r *gormRepository) ListUnreconciled(ctx context.Context, olderThan time.Time, limit int) ([]Order, error) {
	var orders []Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("(cart_cleared = ? OR ranking_recorded = ?) AND created_at < ?", false, false, olderThan).
		Order("created_at ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unreconciled orders: %w", err)
	}
	return orders, nil
}

func (r *gormRepository) Revenue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).
		Model(&Order{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("status <> ?", StatusCancelled).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to compute revenue: %w", err)
	}
	return total, nil
}

func (r *gormRepository) SalesByDay(ctx context.Context, since time.Time) ([]DailySales, error) {
	var rows []DailySales
	err := r.db.WithContext(ctx).
		Model(&Order{}).
		Select("TO_CHAR(order_date, 'YYYY-MM-DD') AS day, COUNT(*) AS orders, COALESCE(SUM(total_amount), 0) AS total_sales").
		Where("status <> ? AND order_date >= ?", StatusCancelled, since).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute sales by day: %w", err)
	}
	return rows, nil
}
