// Package dispatcher serializes all venue-mutating work onto one loop.
// Inbound requests from any number of connections funnel through a single
// unbounded queue; the loop is the only caller of venue order/cancel calls.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/account"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/metrics"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/order"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

// Dispatcher drains the request queue and interleaves the account poll and
// the transport server's lifecycle without blocking either.
type Dispatcher struct {
	translator *order.Translator
	reporter   *account.Reporter
	queue      *queue
	logger     *zap.Logger
}

// New creates a dispatcher over the given translator and reporter.
func New(translator *order.Translator, reporter *account.Reporter, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		translator: translator,
		reporter:   reporter,
		queue:      newQueue(),
		logger:     logger,
	}
}

// Enqueue adds an inbound request to the dispatch queue. It never blocks and
// never mutates shared state; ordering is preserved per connection.
func (d *Dispatcher) Enqueue(req model.Request) {
	d.queue.Push(req)
}

// Run is the central control loop. Priority per iteration: a ready request,
// then transport lifecycle completion, then the account poll tick. Ticks
// missed while the loop is busy are skipped, not queued. Run returns only on
// a structural failure or context cancellation.
func (d *Dispatcher) Run(ctx context.Context, serverErr <-chan error, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		// Requests first: the poll timer must never starve request handling.
		select {
		case req := <-d.queue.out:
			if err := d.handle(ctx, req); err != nil {
				return err
			}
			continue
		default:
		}
		select {
		case err := <-serverErr:
			return fmt.Errorf("transport server: %w", err)
		default:
		}

		select {
		case req := <-d.queue.out:
			if err := d.handle(ctx, req); err != nil {
				return err
			}
		case err := <-serverErr:
			return fmt.Errorf("transport server: %w", err)
		case <-ticker.C:
			if err := d.reporter.Report(ctx); err != nil {
				return fmt.Errorf("account report: %w", err)
			}
		case <-ctx.Done():
			d.logger.Info("dispatcher stopped")
			return nil
		}
	}
}

// handle processes one request. Request-scoped failures are converted to
// reject responses inside the translator and are not errors here.
func (d *Dispatcher) handle(ctx context.Context, req model.Request) error {
	d.logger.Debug("processing request", zap.String("type", string(req.Type)))
	metrics.IncDispatched(string(req.Type))

	switch req.Type {
	case model.RequestLogin, model.RequestLogout:
		// accepted, no action
		return nil
	case model.RequestPlaceOrder:
		if req.Order == nil {
			d.logger.Warn("place_order request without order payload")
			return nil
		}
		return d.translator.Place(ctx, *req.Order)
	case model.RequestCancelOrder:
		if req.Cancel == nil {
			d.logger.Warn("cancel_order request without cancel payload")
			return nil
		}
		return d.translator.Cancel(ctx, *req.Cancel, req.OriginalOrder)
	default:
		d.logger.Warn("unknown request type", zap.String("type", string(req.Type)))
		return nil
	}
}
