// internal/worker/reconcile/worker.go
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/domain/order"
	"github.com/sirupsen/logrus"
)

// Finisher completes the post-commit steps of a checkout
type Finisher interface {
	ClearCart(ctx context.Context, o *order.Order) error
	RecordRanking(ctx context.Context, o *order.Order) error
}

// Worker sweeps orders whose cart clear or ranking update did not finish
// and completes them.
type Worker struct {
	orders      order.Repository
	finisher    Finisher
	logger      *logrus.Logger
	interval    time.Duration
	gracePeriod time.Duration
	batchSize   int
	now         func() time.Time
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// Report counts what one sweep did
type Report struct {
	Scanned       int
	CartsCleared  int
	RankingsAdded int
	Failed        int
}

// NewWorker creates a new reconcile worker
func NewWorker(orders order.Repository, finisher Finisher, cfg config.ReconcileConfig, logger *logrus.Logger) *Worker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	return &Worker{
		orders:      orders,
		finisher:    finisher,
		logger:      logger,
		interval:    interval,
		gracePeriod: cfg.GracePeriod,
		batchSize:   batchSize,
		now:         time.Now,
		stopCh:      make(chan struct{}),
	}
}

// Start sweeps on every tick until ctx is done or Stop is called
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.WithFields(logrus.Fields{
		"interval":     w.interval.String(),
		"grace_period": w.gracePeriod.String(),
		"batch_size":   w.batchSize,
	}).Info("reconcile worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reconcile worker shutting down")
			return
		case <-w.stopCh:
			w.logger.Info("reconcile worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// Stop ends Start. Safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// RunOnce processes one batch of orders older than the grace period.
// Orders inside the grace period may still be finishing their checkout.
func (w *Worker) RunOnce(ctx context.Context) Report {
	var report Report

	orders, err := w.orders.ListUnreconciled(ctx, w.now().Add(-w.gracePeriod), w.batchSize)
	if err != nil {
		w.logger.WithError(err).Error("failed to list unreconciled orders")
		return report
	}
	if len(orders) == 0 {
		return report
	}

	report.Scanned = len(orders)
	for i := range orders {
		o := &orders[i]
		log := w.logger.WithFields(logrus.Fields{"order_id": o.ID, "user_id": o.UserID})

		if !o.CartCleared {
			if err := w.finisher.ClearCart(ctx, o); err != nil {
				log.WithError(err).Warn("failed to clear cart for order, will retry")
				report.Failed++
				continue
			}
			report.CartsCleared++
		}

		if !o.RankingRecorded {
			if err := w.finisher.RecordRanking(ctx, o); err != nil {
				log.WithError(err).Warn("failed to record ranking for order, will retry")
				report.Failed++
				continue
			}
			report.RankingsAdded++
		}
	}

	w.logger.WithFields(logrus.Fields{
		"scanned":        report.Scanned,
		"carts_cleared":  report.CartsCleared,
		"rankings_added": report.RankingsAdded,
		"failed":         report.Failed,
	}).Info("reconcile sweep finished")

	return report
}
