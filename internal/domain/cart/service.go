// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"

	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/shopspring/decimal"
)

// Service handles cart business logic
type Service struct {
	repo     Repository
	products product.Repository
}

// NewService creates a new cart service
func NewService(repo Repository, products product.Repository) *Service {
	return &Service{
		repo:     repo,
		products: products,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItemRequest represents update cart item request.
// A quantity of zero or less removes the line.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart returns the user's cart with product details
func (s *Service) GetCart(ctx context.Context, userID uint) (*CartResponse, error) {
	items, err := s.repo.Lines(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &CartResponse{
		UserID:   userID,
		Items:    make([]CartItemResponse, 0, len(items)),
		Subtotal: Subtotal(items),
	}

	for _, item := range items {
		line := CartItemResponse{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.CreatedAt,
		}
		if p := item.Product; p != nil {
			line.Name = p.Name
			line.Image = p.Image
			line.Unit = p.Unit
			line.Price = p.Price
			line.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			line.InStock = p.InStock(item.Quantity)
		}
		resp.Items = append(resp.Items, line)
		resp.TotalQuantity += item.Quantity
	}
	resp.ItemCount = len(resp.Items)

	return resp, nil
}

// AddToCart adds quantity of a product, merging into an existing line
func (s *Service) AddToCart(ctx context.Context, userID uint, req *AddToCartRequest) (*CartResponse, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.products.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	if err := s.repo.Add(ctx, userID, req.ProductID, req.Quantity); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// UpdateCartItem sets the quantity of a line, removing it when quantity <= 0
func (s *Service) UpdateCartItem(ctx context.Context, userID, productID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	if req.Quantity <= 0 {
		return s.RemoveFromCart(ctx, userID, productID)
	}

	if err := s.repo.SetQuantity(ctx, userID, productID, req.Quantity); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, userID)
}

// RemoveFromCart deletes a line; removing an absent line is not an error
func (s *Service) RemoveFromCart(ctx context.Context, userID, productID uint) (*CartResponse, error) {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return nil, fmt.Errorf("failed to remove product %d: %w", productID, err)
	}

	return s.GetCart(ctx, userID)
}
