// Package order translates canonical order and cancel requests into
// venue-native calls and venue outcomes back into protocol responses.
// Every request produces exactly one response; no call is ever retried.
package order

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/symbology"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/vertex"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/fixedpoint"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

// exchangeOrderIDPrefix marks a venue digest formatted as an exchange order
// id. The same marker is stripped as a prefix when a cancel decodes the id
// back into raw digest bytes; format and parse must stay symmetric.
const exchangeOrderIDPrefix = "0x"

// Emitter publishes order-flow events to the response distributor.
type Emitter interface {
	EmitOrderflow(of model.Orderflow)
}

// Translator is the stateless place/cancel logic. It holds no order book;
// resolving a cancel's original order is the caller's responsibility.
type Translator struct {
	snapshot *symbology.Snapshot
	client   vertex.Client
	emitter  Emitter
	logger   *zap.Logger
}

// NewTranslator creates an order translator over a loaded symbology snapshot.
func NewTranslator(snapshot *symbology.Snapshot, client vertex.Client, emitter Emitter, logger *zap.Logger) *Translator {
	return &Translator{
		snapshot: snapshot,
		client:   client,
		emitter:  emitter,
		logger:   logger,
	}
}

// Place validates and submits a canonical order. Request-scoped failures
// become a single OrderReject; a returned error is a structural failure that
// must stop the dispatcher.
func (t *Translator) Place(ctx context.Context, o model.Order) error {
	info, ok := t.snapshot.Lookup(o.Symbol, o.ExecutionVenue)
	if !ok {
		t.rejectOrder(o, model.RejectUnknown, "no execution info for symbol")
		return nil
	}
	if info.ExchangeSymbol == "" {
		return fmt.Errorf("unexpected no product id for symbol %s", o.Symbol)
	}
	productID, err := strconv.ParseUint(info.ExchangeSymbol, 10, 32)
	if err != nil {
		// A non-numeric product id means the symbology entry is corrupt;
		// that is an invariant violation, not a per-order problem.
		return fmt.Errorf("non-numeric exchange symbol %q for %s: %w", info.ExchangeSymbol, o.Symbol, err)
	}

	quantity, _ := o.Quantity.Float64()
	if math.IsInf(quantity, 0) || math.IsNaN(quantity) {
		t.rejectOrder(o, model.RejectUnknown, "unable to cast quantity")
		return nil
	}

	if o.Type != model.OrderTypeLimit {
		t.rejectOrder(o, model.RejectUnsupportedOrderType, "unsupported order type")
		return nil
	}
	if o.PostOnly {
		t.rejectOrder(o, model.RejectUnsupportedOrderType, "unsupported post-only flag")
		return nil
	}

	price, _ := o.LimitPrice.Float64()
	if math.IsInf(price, 0) || math.IsNaN(price) {
		t.rejectOrder(o, model.RejectUnknown, "unable to cast price")
		return nil
	}

	if o.Side == model.SideSell {
		quantity = -quantity
	}
	res, err := t.client.PlaceOrder(ctx, uint32(productID),
		fixedpoint.FromFloat(quantity), fixedpoint.FromFloat(price))
	if err != nil {
		t.rejectOrder(o, model.RejectUnknown, fmt.Sprintf("unable to place order: %s", err))
		return nil
	}
	if res == nil {
		t.rejectOrder(o, model.RejectUnknown, "unable to place order")
		return nil
	}

	exchangeOrderID := exchangeOrderIDPrefix + hex.EncodeToString(res.Digest[:])
	t.emitter.EmitOrderflow(model.Orderflow{
		Type: model.OrderflowAck,
		Ack: &model.OrderAck{
			OrderID:         o.ID,
			ExchangeOrderID: exchangeOrderID,
		},
	})
	return nil
}

// Cancel submits a cancellation for a previously placed order. The original
// order must be supplied by the caller and carry the venue-assigned exchange
// order id from its ack.
func (t *Translator) Cancel(ctx context.Context, c model.Cancel, original *model.Order) error {
	if original == nil {
		t.rejectCancel(c, "no original order")
		return nil
	}
	if original.ExchangeOrderID == "" {
		t.rejectCancel(c, "no exchange order id")
		return nil
	}
	digestHex, ok := strings.CutPrefix(original.ExchangeOrderID, exchangeOrderIDPrefix)
	if !ok {
		t.rejectCancel(c, "invalid exchange order id")
		return nil
	}
	var digest common.Hash
	if len(digestHex) != 2*common.HashLength {
		t.rejectCancel(c, "invalid exchange order id")
		return nil
	}
	if _, err := hex.Decode(digest[:], []byte(digestHex)); err != nil {
		t.rejectCancel(c, "invalid exchange order id")
		return nil
	}

	res, err := t.client.CancelOrders(ctx, []common.Hash{digest})
	if err != nil || res == nil {
		t.rejectCancel(c, "unable to cancel order")
		return nil
	}
	for _, co := range res.CancelledOrders {
		if co.Digest == digest {
			cancelID := c.CancelID
			t.emitter.EmitOrderflow(model.Orderflow{
				Type: model.OrderflowCanceled,
				Canceled: &model.OrderCanceled{
					OrderID:  original.ID,
					CancelID: &cancelID,
				},
			})
			return nil
		}
	}
	t.rejectCancel(c, "order didn't cancel")
	return nil
}

// rejectOrder emits a single OrderReject and lets the caller short-circuit.
func (t *Translator) rejectOrder(o model.Order, reason model.OrderRejectReason, message string) {
	t.logger.Debug("rejecting order",
		zap.String("orderId", o.ID.String()),
		zap.String("reason", string(reason)),
		zap.String("message", message))
	t.emitter.EmitOrderflow(model.Orderflow{
		Type: model.OrderflowReject,
		Reject: &model.OrderReject{
			OrderID: o.ID,
			Reason:  reason,
			Message: message,
		},
	})
}

// rejectCancel emits a single CancelReject and lets the caller short-circuit.
func (t *Translator) rejectCancel(c model.Cancel, message string) {
	t.logger.Debug("rejecting cancel",
		zap.String("cancelId", c.CancelID.String()),
		zap.String("message", message))
	t.emitter.EmitOrderflow(model.Orderflow{
		Type: model.OrderflowCancelReject,
		CancelReject: &model.CancelReject{
			CancelID: c.CancelID,
			OrderID:  c.OrderID,
			Message:  message,
		},
	})
}
