// Package account snapshots venue balances and positions into the canonical
// protocol shape on a fixed cadence.
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/store"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/symbology"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/vertex"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/fixedpoint"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

// Emitter publishes account summaries to the response distributor.
type Emitter interface {
	EmitAccountSummary(summary model.AccountSummary)
}

// Reporter converts raw venue subaccount state into full canonical
// snapshots. Only strictly positive quantities are retained.
type Reporter struct {
	snapshot *symbology.Snapshot
	client   vertex.Client
	emitter  Emitter
	store    store.Store // optional latest-summary cache
	account  string
	logger   *zap.Logger
}

// NewReporter creates an account state reporter for the given account
// identity. The store may be nil.
func NewReporter(
	snapshot *symbology.Snapshot,
	client vertex.Client,
	emitter Emitter,
	st store.Store,
	account string,
	logger *zap.Logger,
) *Reporter {
	return &Reporter{
		snapshot: snapshot,
		client:   client,
		emitter:  emitter,
		store:    st,
		account:  account,
		logger:   logger,
	}
}

// Report fetches the subaccount's balances and emits one full AccountSummary.
// A returned error means the venue call itself failed, which is fatal to the
// dispatcher loop; individual unresolvable entries are dropped with a log.
func (r *Reporter) Report(ctx context.Context) error {
	now := time.Now().UTC()
	info, err := r.client.GetSubaccountInfo(ctx, r.client.Subaccount())
	if err != nil {
		return fmt.Errorf("fetch subaccount info: %w", err)
	}
	if info == nil {
		return fmt.Errorf("fetch subaccount info: empty result")
	}

	balances := make(map[string]decimal.Decimal)
	for _, item := range info.SpotBalances {
		product, ok := r.snapshot.Products[item.ProductID]
		if !ok {
			r.logger.Warn("unknown product id in spot balances",
				zap.Uint32("productId", item.ProductID))
			continue
		}
		quantity, err := fixedpoint.ToDecimal(item.Balance.Amount)
		if err != nil {
			r.logger.Error("unable to cast balance amount",
				zap.Uint32("productId", item.ProductID),
				zap.Any("amount", item.Balance.Amount))
			continue
		}
		if quantity.IsPositive() {
			balances[product.Symbol] = quantity
		}
	}

	positions := make(map[string][]model.AccountPosition)
	for _, item := range info.PerpBalances {
		tradableProduct, ok := r.snapshot.TradableProducts[item.ProductID]
		if !ok {
			r.logger.Warn("unknown product id in perp balances",
				zap.Uint32("productId", item.ProductID))
			continue
		}
		quantity, err := fixedpoint.ToDecimal(item.Balance.Amount)
		if err != nil {
			r.logger.Error("unable to cast balance amount",
				zap.Uint32("productId", item.ProductID),
				zap.Any("amount", item.Balance.Amount))
			continue
		}
		if quantity.IsPositive() {
			positions[tradableProduct.Symbol()] = []model.AccountPosition{
				{Quantity: quantity},
			}
		}
	}

	summary := model.AccountSummary{
		Account:     r.account,
		Timestamp:   now.Unix(),
		TimestampNs: int64(now.Nanosecond()),
		Balances:    balances,
		Positions:   positions,
		IsSnapshot:  true,
	}

	r.logger.Debug("account summary built",
		zap.Int("balances", len(balances)),
		zap.Int("positions", len(positions)))

	if r.store != nil {
		if err := r.store.RecordAccountSummary(ctx, summary); err != nil {
			r.logger.Warn("store.record_summary_failed", zap.Error(err))
		}
	}

	r.emitter.EmitAccountSummary(summary)
	return nil
}
