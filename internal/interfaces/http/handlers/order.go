// internal/interfaces/http/handlers/order.go
package handlers

import (
	"fmt"
	"net/http"

	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/pkg/pdf"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// OrderHandler handles the customer's order endpoints
type OrderHandler struct {
	orderService *order.Service
	pdfService   *pdf.Service
	logger       *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, pdfService *pdf.Service, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		pdfService:   pdfService,
		logger:       logger,
	}
}

// TipRequest is the body of POST /orders/:id/tip
type TipRequest struct {
	TipAmount decimal.Decimal `json:"tip_amount"`
}

// ListOrders handles GET /orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetForUser(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// AddTip handles POST /orders/:id/tip
func (h *OrderHandler) AddTip(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req TipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	o, err := h.orderService.AddTip(c.Request.Context(), orderID, userID, req.TipAmount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tip added successfully",
		"data":    o,
	})
}

// DownloadInvoice handles GET /orders/:id/invoice
func (h *OrderHandler) DownloadInvoice(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetForUser(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	buf, err := h.pdfService.GenerateReceipt(o)
	if err != nil {
		respondError(c, h.logger, fmt.Errorf("failed to generate receipt for order %d: %w", o.ID, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%d.pdf", o.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
