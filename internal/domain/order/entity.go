// internal/domain/order/entity.go
package order

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the order status
type OrderStatus string

const (
	StatusProcessing OrderStatus = "Processing"
	StatusShipped    OrderStatus = "Shipped"
	StatusDelivered  OrderStatus = "Delivered"
	StatusCancelled  OrderStatus = "Cancelled"
)

var allStatuses = []OrderStatus{StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidTip        = errors.New("tip amount must not be negative")
	// ErrStatusConflict is returned by the repository when a guarded status
	// update finds the order in a different status than expected.
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// ParseStatus maps a status name, case-insensitively, to its canonical form
func ParseStatus(s string) (OrderStatus, error) {
	s = strings.TrimSpace(s)
	for _, status := range allStatuses {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

// Order is a committed purchase. Line items, amounts, address and order date
// never change after creation.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DeliveryFee     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"delivery_fee"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	ShippingAddress string          `gorm:"type:text;not null" json:"shipping_address"`
	OrderDate       time.Time       `gorm:"not null;index" json:"order_date"`

	Status     OrderStatus     `gorm:"not null;size:20;default:'Processing';index" json:"status"`
	DriverName *string         `gorm:"size:255" json:"driver_name"`
	TipAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tip_amount"`

	// Post-commit bookkeeping, completed by checkout or the reconciler
	CartCleared     bool `gorm:"not null;default:false" json:"-"`
	RankingRecorded bool `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items         []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	StatusHistory []OrderStatusHistory `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"status_history,omitempty"`
}

// OrderItem is a snapshot of a product at checkout time
type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Name      string          `gorm:"not null;size:255" json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image     string          `gorm:"size:500" json:"image"`
	Unit      string          `gorm:"size:50" json:"unit"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_total"`
}

// OrderStatusHistory tracks order status changes
type OrderStatusHistory struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	OrderID    uint        `gorm:"not null;index" json:"order_id"`
	Status     OrderStatus `gorm:"not null;size:20" json:"status"`
	DriverName *string     `gorm:"size:255" json:"driver_name,omitempty"`
	ChangedBy  uint        `gorm:"index" json:"changed_by"`
	CreatedAt  time.Time   `json:"created_at"`
}

// TableName overrides the table name
func (Order) TableName() string {
	return "orders"
}

// TableName overrides the table name
func (OrderItem) TableName() string {
	return "order_items"
}

// TableName overrides the table name
func (OrderStatusHistory) TableName() string {
	return "order_status_histories"
}

// NeedsReconcile reports whether a post-commit step is still outstanding
func (o *Order) NeedsReconcile() bool {
	return !o.CartCleared || !o.RankingRecorded
}

// DailySales is one row of the sales-by-day report
type DailySales struct {
	Day        string          `json:"day"`
	Orders     int64           `json:"orders"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// Stats is the admin dashboard summary
type Stats struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SalesByDay   []DailySales    `json:"sales_by_day"`
}
