// internal/domain/cart/entity.go
package cart

import (
	"errors"
	"time"

	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// CartItem is one product line in a user's cart
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_items_user_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1;check:quantity >= 1" json:"quantity"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *product.Product `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"product,omitempty"`
}

// TableName overrides the table name
func (CartItem) TableName() string {
	return "cart_items"
}

// CartItemResponse represents a cart line with product details
type CartItemResponse struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Unit      string          `json:"unit"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	InStock   bool            `json:"in_stock"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartResponse represents a user's cart with its running totals
type CartResponse struct {
	UserID        uint               `json:"user_id"`
	Items         []CartItemResponse `json:"items"`
	ItemCount     int                `json:"item_count"`
	TotalQuantity int                `json:"total_quantity"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
}

// Subtotal sums price times quantity over lines whose product still exists
func Subtotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Purchase is a quantity of one product bought from the cart
type Purchase struct {
	ProductID uint
	Quantity  int
}
