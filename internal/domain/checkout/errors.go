// internal/domain/checkout/errors.go
package checkout

import (
	"errors"
	"fmt"

	"github.com/freshbasket/storefront/internal/domain/user"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrAddressNotFound    = user.ErrAddressNotFound
	ErrProductUnavailable = errors.New("product is no longer available")
	ErrCheckoutInProgress = errors.New("a checkout is already in progress for this user")
)

// InsufficientStockError names the first cart line that cannot be filled
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for %s. Only %d left.", e.ProductName, e.Available)
}
