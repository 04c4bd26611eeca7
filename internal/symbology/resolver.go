// Package symbology resolves the venue's product catalog into the canonical
// symbology the protocol expects. The catalog is loaded once at startup and
// held as a read-only snapshot for the process lifetime.
package symbology

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/vertex"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/fixedpoint"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

// quoteSymbol is the venue's sole quote currency.
const quoteSymbol = "USDC"

// perpSuffix is the venue's ticker convention for perpetual legs,
// e.g. "BTC-PERP_USDC" -> canonical base "BTC-USDC".
const perpSuffix = "-PERP_" + quoteSymbol

// Snapshot is the immutable result of a symbology load. It is shared by
// reference across components and never mutated after construction.
type Snapshot struct {
	// Products maps venue product id -> canonical spot product.
	Products map[uint32]model.Product
	// TradableProducts maps venue product id -> canonical pair.
	TradableProducts map[uint32]model.TradableProduct
	// ExecutionInfo maps pair symbol -> venue -> trading constraints.
	ExecutionInfo model.ExecutionInfoMap
}

// Lookup returns the execution info for a (symbol, venue) pair.
func (s *Snapshot) Lookup(symbol string, venue model.ExecutionVenue) (model.ExecutionInfo, bool) {
	byVenue, ok := s.ExecutionInfo[symbol]
	if !ok {
		return model.ExecutionInfo{}, false
	}
	info, ok := byVenue[venue]
	return info, ok
}

// Load fetches the venue's asset and product catalogs and builds the
// canonical symbology snapshot. A malformed single entry degrades the
// catalog by omission; failure to fetch either catalog is fatal.
func Load(ctx context.Context, client vertex.Client, logger *zap.Logger) (*Snapshot, error) {
	quote := model.Crypto(quoteSymbol)

	logger.Info("loading assets...")
	products := make(map[uint32]model.Product)
	assets := make(map[uint32]vertex.Asset)
	allAssets, err := client.GetAssets(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch asset catalog: %w", err)
	}
	for _, asset := range allAssets {
		switch asset.MarketType {
		case "perp":
			// perpetual legs are resolved against the product catalog below
		default:
			// absent or unrecognized market type defaults to spot
			products[asset.ProductID] = model.Crypto(asset.Symbol)
		}
		assets[asset.ProductID] = asset
	}
	logger.Info("assets loaded", zap.Int("count", len(assets)))

	logger.Info("loading tradable products and building symbology...")
	tradableProducts := make(map[uint32]model.TradableProduct)
	executionInfo := make(model.ExecutionInfoMap)
	catalog, err := client.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch product catalog: %w", err)
	}
	for _, item := range catalog.PerpProducts {
		asset, ok := assets[item.ProductID]
		if !ok {
			logger.Warn("no asset found for product, skipping",
				zap.Uint32("productId", item.ProductID))
			continue
		}
		if asset.TickerID == "" {
			logger.Warn("no ticker id found for product, skipping",
				zap.Uint32("productId", item.ProductID))
			continue
		}
		rawPerp, ok := strings.CutSuffix(asset.TickerID, perpSuffix)
		if !ok {
			logger.Warn("unexpected quote asset for product, skipping",
				zap.Uint32("productId", item.ProductID),
				zap.String("tickerId", asset.TickerID))
			continue
		}
		base := model.Perpetual(rawPerp+"-"+quoteSymbol, string(model.VenueVertex))
		tradableProduct := model.NewTradableProduct(base, quote)

		tickSize, err := fixedpoint.ToDecimal(item.BookInfo.PriceIncrementX18)
		if err != nil {
			logger.Warn("price increment cannot convert to decimal, skipping",
				zap.String("symbol", asset.Symbol),
				zap.Any("priceIncrementX18", item.BookInfo.PriceIncrementX18))
			continue
		}
		stepSize, err := fixedpoint.ToDecimal(item.BookInfo.SizeIncrement)
		if err != nil {
			logger.Warn("size increment cannot convert to decimal, skipping",
				zap.String("symbol", asset.Symbol),
				zap.Any("sizeIncrement", item.BookInfo.SizeIncrement))
			continue
		}
		minSize, err := fixedpoint.ToDecimal(item.BookInfo.MinSize)
		if err != nil {
			logger.Warn("min size cannot convert to decimal, skipping",
				zap.String("symbol", asset.Symbol),
				zap.Any("minSize", item.BookInfo.MinSize))
			continue
		}

		tradableProducts[item.ProductID] = tradableProduct
		executionInfo[tradableProduct.Symbol()] = map[model.ExecutionVenue]model.ExecutionInfo{
			model.VenueVertex: {
				ExecutionVenue:       model.VenueVertex,
				ExchangeSymbol:       strconv.FormatUint(uint64(item.ProductID), 10),
				TickSize:             tickSize,
				StepSize:             stepSize,
				MinOrderQuantity:     minSize,
				MinOrderQuantityUnit: model.UnitBase,
				IsDelisted:           false,
			},
		}
	}
	// TODO: build execution info for spot products
	logger.Info("tradable products loaded", zap.Int("count", len(executionInfo)))

	return &Snapshot{
		Products:         products,
		TradableProducts: tradableProducts,
		ExecutionInfo:    executionInfo,
	}, nil
}
