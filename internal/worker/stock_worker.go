package worker

import (
	"context"
	"sync"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/google/uuid"

	"github.com/Pesokrava/point_of_sale/internal/delivery/events"
	"github.com/Pesokrava/point_of_sale/internal/pkg/logger"
)

const (
	maxRetries   = 3
	retryDelay   = 200 * time.Millisecond
	checkTimeout = 5 * time.Second
)

// Checker re-evaluates the stock of one product
type Checker interface {
	Check(ctx context.Context, productID uuid.UUID) error
}

// StockAlertWorker turns sale events into low-stock checks.
// Events for the same product within the debounce window collapse into one check.
type StockAlertWorker struct {
	checker Checker
	retrier *retrier.Retrier
	window  time.Duration
	logger  *logger.Logger

	mu       sync.Mutex
	pending  map[uuid.UUID]*pendingCheck
	shutdown bool
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

type pendingCheck struct {
	latest time.Time
	timer  *time.Timer
}

// NewStockAlertWorker creates a new stock alert worker
func NewStockAlertWorker(checker Checker, window time.Duration, log *logger.Logger) *StockAlertWorker {
	ctx, cancel := context.WithCancel(context.Background())

	return &StockAlertWorker{
		checker: checker,
		retrier: retrier.New(retrier.ConstantBackoff(maxRetries, retryDelay), nil),
		window:  window,
		logger:  log,
		pending: make(map[uuid.UUID]*pendingCheck),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// HandleEvent schedules a check for every product of a sale event
func (w *StockAlertWorker) HandleEvent(data []byte) error {
	event, err := events.ParseSaleEvent(data)
	if err != nil {
		w.logger.Error("Failed to parse sale event", err)
		return err
	}

	ids := event.ProductIDs
	if len(ids) == 0 {
		ids = event.Sale.ProductIDs()
	}

	w.logger.WithFields(map[string]any{
		"sale_id":  event.Sale.ID.String(),
		"products": len(ids),
	}).Info("Received sale event")

	for _, id := range ids {
		w.schedule(id, event.Timestamp)
	}
	return nil
}

func (w *StockAlertWorker) schedule(productID uuid.UUID, ts time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.shutdown {
		w.logger.Debug("Worker shutting down, ignoring event")
		return
	}

	if existing, ok := w.pending[productID]; ok {
		if ts.Before(existing.latest) {
			w.logger.WithFields(map[string]any{
				"product_id": productID.String(),
			}).Debug("Ignoring stale event")
			return
		}
		// A timer that already fired sees it was replaced and exits without checking
		if existing.timer.Stop() {
			w.wg.Done()
		}
	}

	w.wg.Add(1)
	p := &pendingCheck{latest: ts}
	p.timer = time.AfterFunc(w.window, func() {
		w.run(productID, p)
	})
	w.pending[productID] = p
}

func (w *StockAlertWorker) run(productID uuid.UUID, p *pendingCheck) {
	defer w.wg.Done()

	w.mu.Lock()
	if w.pending[productID] != p {
		w.mu.Unlock()
		return
	}
	delete(w.pending, productID)
	w.mu.Unlock()

	err := w.retrier.RunCtx(w.ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, checkTimeout)
		defer cancel()
		return w.checker.Check(ctx, productID)
	})
	if err != nil {
		w.logger.WithFields(map[string]any{
			"product_id": productID.String(),
		}).Error("Stock check failed", err)
	}
}

// Shutdown drops pending checks and waits for running ones to finish
func (w *StockAlertWorker) Shutdown(ctx context.Context) error {
	w.logger.Info("Shutting down stock alert worker...")

	w.mu.Lock()
	w.shutdown = true
	cancelled := 0
	for id, p := range w.pending {
		if p.timer.Stop() {
			cancelled++
			w.wg.Done()
		}
		delete(w.pending, id)
	}
	w.mu.Unlock()

	w.cancel()

	w.logger.WithFields(map[string]any{
		"cancelled_checks": cancelled,
	}).Info("Cancelled pending checks")

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("All in-flight checks completed")
		return nil
	case <-ctx.Done():
		w.logger.Warn("Shutdown timeout reached, forcing exit")
		return ctx.Err()
	}
}

// PendingCount returns the number of scheduled checks
func (w *StockAlertWorker) PendingCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}
