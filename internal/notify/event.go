// internal/notify/event.go
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types pushed to live observers
const (
	EventNewOrder          = "newOrder"
	EventOrderStatusUpdate = "orderStatusUpdate"
)

// Event is the envelope every subscriber receives
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"event"`
	Data       interface{} `json:"data"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// NewOrderPayload is sent after a checkout commits
type NewOrderPayload struct {
	OrderID     uint            `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	UserName    string          `json:"userName"`
}

// StatusUpdatePayload is sent after an admin changes an order's status
type StatusUpdatePayload struct {
	OrderID    uint    `json:"orderId"`
	NewStatus  string  `json:"newStatus"`
	DriverName *string `json:"driverName"`
}

// NewEvent stamps an event with an id and time
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// Encode renders the event as it goes on the wire
func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}
	return data, nil
}
