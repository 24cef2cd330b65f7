// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/freshbasket/storefront/internal/domain/checkout"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/product"
	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/freshbasket/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var statusByError = []struct {
	err    error
	status int
}{
	{checkout.ErrEmptyCart, http.StatusBadRequest},
	{checkout.ErrProductUnavailable, http.StatusBadRequest},
	{checkout.ErrCheckoutInProgress, http.StatusConflict},
	{user.ErrAddressNotFound, http.StatusNotFound},
	{user.ErrUserNotFound, http.StatusNotFound},
	{product.ErrProductNotFound, http.StatusNotFound},
	{cart.ErrItemNotFound, http.StatusNotFound},
	{cart.ErrInvalidQuantity, http.StatusBadRequest},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{order.ErrInvalidStatus, http.StatusBadRequest},
	{order.ErrInvalidTip, http.StatusBadRequest},
	{order.ErrInvalidTransition, http.StatusConflict},
}

// respondError writes the status and message for a domain error. Anything
// unrecognized is logged and answered with a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var stockErr *checkout.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":        stockErr.Error(),
			"product_id":   stockErr.ProductID,
			"product_name": stockErr.ProductName,
			"available":    stockErr.Available,
		})
		return
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			c.JSON(m.status, gin.H{
				"error": err.Error(),
			})
			return
		}
	}

	entry := logger.WithError(err).WithField("request_id", c.GetString(middleware.ContextRequestID))

	if errors.Is(err, context.DeadlineExceeded) {
		entry.Warn("request deadline exceeded")
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "Request timeout",
		})
		return
	}

	entry.Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

// currentUserID reads the authenticated user or answers 401
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return 0, false
	}
	return userID, true
}
