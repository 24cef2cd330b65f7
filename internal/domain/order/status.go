// internal/domain/order/status.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freshbasket/storefront/internal/notify"
	"github.com/sirupsen/logrus"
)

// strictTransitions is enforced only when strict mode is on
var strictTransitions = map[OrderStatus][]OrderStatus{
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {},
	StatusCancelled:  {},
}

// CanTransition reports whether from -> to is allowed in strict mode
func CanTransition(from, to OrderStatus) bool {
	for _, allowed := range strictTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SetStatusRequest is an admin status change
type SetStatusRequest struct {
	OrderID    uint
	Status     string
	DriverName string
	ChangedBy  uint
}

// SetStatusResult is the order's status after the change
type SetStatusResult struct {
	OrderID    uint        `json:"order_id"`
	Status     OrderStatus `json:"status"`
	DriverName *string     `json:"driver_name"`
}

// StatusService applies admin status changes and announces them
type StatusService struct {
	repo      Repository
	publisher notify.Publisher
	strict    bool
	logger    *logrus.Logger
}

// NewStatusService creates the order status machine. When strict is false
// any known status may replace any other.
func NewStatusService(repo Repository, publisher notify.Publisher, strict bool, logger *logrus.Logger) *StatusService {
	return &StatusService{
		repo:      repo,
		publisher: publisher,
		strict:    strict,
		logger:    logger,
	}
}

// SetStatus writes the new status, and the driver name when one is given,
// then publishes an orderStatusUpdate event
func (s *StatusService) SetStatus(ctx context.Context, req SetStatusRequest) (*SetStatusResult, error) {
	status, err := ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}

	change := StatusChange{
		OrderID:    req.OrderID,
		To:         status,
		DriverName: strings.TrimSpace(req.DriverName),
		ChangedBy:  req.ChangedBy,
	}

	if s.strict {
		if !CanTransition(current.Status, status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
		}
		from := current.Status
		change.From = &from
	}

	if err := s.repo.UpdateStatus(ctx, change); err != nil {
		if errors.Is(err, ErrStatusConflict) {
			return nil, fmt.Errorf("%w: order %d changed while updating", ErrInvalidTransition, req.OrderID)
		}
		return nil, err
	}

	result := &SetStatusResult{
		OrderID:    req.OrderID,
		Status:     status,
		DriverName: current.DriverName,
	}
	if change.DriverName != "" {
		driver := change.DriverName
		result.DriverName = &driver
	}

	event := notify.NewEvent(notify.EventOrderStatusUpdate, notify.StatusUpdatePayload{
		OrderID:    result.OrderID,
		NewStatus:  string(result.Status),
		DriverName: result.DriverName,
	})
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithField("order_id", req.OrderID).Warn("failed to publish status update")
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":   req.OrderID,
		"from":       current.Status,
		"to":         status,
		"changed_by": req.ChangedBy,
	}).Info("order status updated")

	return result, nil
}
