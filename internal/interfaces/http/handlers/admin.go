// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/freshbasket/storefront/internal/domain/ranking"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AdminHandler handles staff endpoints
type AdminHandler struct {
	orderService   *order.Service
	statusService  *order.StatusService
	rankingService *ranking.Service
	logger         *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(orderService *order.Service, statusService *order.StatusService, rankingService *ranking.Service, logger *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		orderService:   orderService,
		statusService:  statusService,
		rankingService: rankingService,
		logger:         logger,
	}
}

// UpdateStatusRequest is the body of PUT /admin/orders/:id/status
type UpdateStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	DriverName string `json:"driver_name"`
}

// ListOrders handles GET /admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.orderService.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    resp,
	})
}

// GetOrder handles GET /admin/orders/:id
func (h *AdminHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.Get(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// UpdateStatus handles PUT /admin/orders/:id/status
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	staffID, ok := currentUserID(c)
	if !ok {
		return
	}

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	result, err := h.statusService.SetStatus(c.Request.Context(), order.SetStatusRequest{
		OrderID:    orderID,
		Status:     req.Status,
		DriverName: req.DriverName,
		ChangedBy:  staffID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    result,
	})
}

// Stats handles GET /admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.orderService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stats retrieved successfully",
		"data":    stats,
	})
}

// Leaderboard handles GET /admin/leaderboard?k=
func (h *AdminHandler) Leaderboard(c *gin.Context) {
	k := parseK(c)

	entries, err := h.rankingService.Leaderboard(c.Request.Context(), k)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Leaderboard retrieved successfully",
		"data":    entries,
	})
}

// TopProducts handles GET /admin/top-products?k=
func (h *AdminHandler) TopProducts(c *gin.Context) {
	k := parseK(c)

	entries, err := h.rankingService.TopProducts(c.Request.Context(), k)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Top products retrieved successfully",
		"data":    entries,
	})
}

// parseK reads the optional k query parameter. Missing, malformed and
// non-positive values all return 0, which the ranking service reads as the
// configured default.
func parseK(c *gin.Context) int {
	k, err := strconv.Atoi(c.Query("k"))
	if err != nil || k < 0 {
		return 0
	}
	return k
}
