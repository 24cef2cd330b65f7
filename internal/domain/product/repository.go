// internal/domain/product/repository.go
package product

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Repository is the inventory store
type Repository interface {
	GetByID(ctx context.Context, id uint) (*Product, error)
	GetByIDs(ctx context.Context, ids []uint) ([]Product, error)
	// DecrementStock debits qty only if at least qty units remain.
	// It reports false, with no write, when stock is short.
	DecrementStock(ctx context.Context, id uint, qty int) (bool, error)
	RestoreStock(ctx context.Context, id uint, qty int) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed inventory store
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var p Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &p, nil
}

func (r *gormRepository) GetByIDs(ctx context.Context, ids []uint) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

func (r *gormRepository) DecrementStock(ctx context.Context, id uint, qty int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return false, fmt.Errorf("failed to decrement stock for product %d: %w", id, result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *gormRepository) RestoreStock(ctx context.Context, id uint, qty int) error {
	err := r.db.WithContext(ctx).
		Model(&Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
	if err != nil {
		return fmt.Errorf("failed to restore stock for product %d: %w", id, err)
	}
	return nil
}
