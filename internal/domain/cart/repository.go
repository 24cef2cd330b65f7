// internal/domain/cart/repository.go
package cart

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the cart holder
type Repository interface {
	// Lines returns the user's cart lines with Product resolved; Product is nil
	// when the product no longer exists.
	Lines(ctx context.Context, userID uint) ([]CartItem, error)
	// Add merges qty into an existing line for the product or creates one.
	Add(ctx context.Context, userID, productID uint, qty int) error
	SetQuantity(ctx context.Context, userID, productID uint, qty int) error
	Remove(ctx context.Context, userID, productID uint) error
	// RemovePurchased takes each purchased quantity off the user's matching
	// line, deleting lines that reach zero, and marks the order's cart as
	// cleared in the same transaction. It reports false without touching the
	// cart when the order is already marked or does not exist.
	RemovePurchased(ctx context.Context, orderID, userID uint, purchased []Purchase) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository returns a gorm backed cart repository
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Lines(ctx context.Context, userID uint) ([]CartItem, error) {
	var items []CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return items, nil
}

func (r *gormRepository) Add(ctx context.Context, userID, productID uint, qty int) error {
	item := CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart_items.quantity + EXCLUDED.quantity"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

func (r *gormRepository) SetQuantity(ctx context.Context, userID, productID uint, qty int) error {
	result := r.db.WithContext(ctx).
		Model(&CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", qty)
	if result.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *gormRepository) Remove(ctx context.Context, userID, productID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&CartItem{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (r *gormRepository) RemovePurchased(ctx context.Context, orderID, userID uint, purchased []Purchase) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Table("orders").
			Where("id = ? AND user_id = ? AND cart_cleared = ?", orderID, userID, false).
			Updates(map[string]interface{}{
				"cart_cleared": true,
				"updated_at":   time.Now().UTC(),
			})
		if claim.Error != nil {
			return fmt.Errorf("failed to mark cart cleared for order %d: %w", orderID, claim.Error)
		}
		if claim.RowsAffected == 0 {
			return nil
		}

		for _, p := range purchased {
			err := tx.Where("user_id = ? AND product_id = ? AND quantity <= ?", userID, p.ProductID, p.Quantity).
				Delete(&CartItem{}).Error
			if err != nil {
				return fmt.Errorf("failed to remove cart item %d: %w", p.ProductID, err)
			}

			err = tx.Model(&CartItem{}).
				Where("user_id = ? AND product_id = ? AND quantity > ?", userID, p.ProductID, p.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", p.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to reduce cart item %d: %w", p.ProductID, err)
			}
		}
		removed = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
