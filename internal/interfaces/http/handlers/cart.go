// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/freshbasket/storefront/internal/domain/cart"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	logger      *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		logger:      logger,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	resp, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    resp,
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.cartService.AddToCart(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart",
		"data":    resp,
	})
}

// UpdateItem handles PUT /cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.cartService.UpdateCartItem(c.Request.Context(), userID, productID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart updated",
		"data":    resp,
	})
}

// RemoveItem handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	productID, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	resp, err := h.cartService.RemoveFromCart(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    resp,
	})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name,
		})
		return 0, false
	}
	return uint(id), true
}
