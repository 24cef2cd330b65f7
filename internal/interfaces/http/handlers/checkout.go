// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/freshbasket/storefront/internal/domain/checkout"
	"github.com/freshbasket/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CheckoutHandler handles checkout endpoints
type CheckoutHandler struct {
	checkoutService *checkout.Service
	logger          *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *checkout.Service, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// CheckoutRequest is the body of POST /orders/checkout
type CheckoutRequest struct {
	AddressID uint `json:"address_id" binding:"required"`
}

// Checkout handles POST /orders/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.checkoutService.Checkout(c.Request.Context(), checkout.CheckoutRequest{
		UserID:    userID,
		UserName:  middleware.GetUserNameFromContext(c),
		AddressID: req.AddressID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Quote handles GET /cart/quote
func (h *CheckoutHandler) Quote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, err := h.checkoutService.Quote(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    summary,
	})
}
