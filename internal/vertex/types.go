package vertex

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Asset is one entry of the venue's asset catalog.
type Asset struct {
	ProductID  uint32 `json:"product_id"`
	Symbol     string `json:"symbol"`
	MarketType string `json:"market_type,omitempty"` // "spot" or "perp"; absent means spot
	TickerID   string `json:"ticker_id,omitempty"`   // e.g. "BTC-PERP_USDC"
}

// BookInfo carries a product's order book increments in x18 fixed point.
type BookInfo struct {
	PriceIncrementX18 *big.Int `json:"price_increment_x18"`
	SizeIncrement     *big.Int `json:"size_increment"`
	MinSize           *big.Int `json:"min_size"`
}

// SpotProduct is one spot leg of the venue's product catalog.
type SpotProduct struct {
	ProductID uint32   `json:"product_id"`
	BookInfo  BookInfo `json:"book_info"`
}

// PerpProduct is one perpetual leg of the venue's product catalog.
type PerpProduct struct {
	ProductID uint32   `json:"product_id"`
	BookInfo  BookInfo `json:"book_info"`
}

// ProductCatalog is the venue's full product list.
type ProductCatalog struct {
	SpotProducts []SpotProduct `json:"spot_products"`
	PerpProducts []PerpProduct `json:"perp_products"`
}

// BalanceAmount is a signed x18 balance.
type BalanceAmount struct {
	Amount *big.Int `json:"amount"`
}

// ProductBalance is one per-product balance entry of a subaccount.
type ProductBalance struct {
	ProductID uint32        `json:"product_id"`
	Balance   BalanceAmount `json:"balance"`
}

// SubaccountInfo is the venue's raw balance/position state for one subaccount.
type SubaccountInfo struct {
	SpotBalances []ProductBalance `json:"spot_balances"`
	PerpBalances []ProductBalance `json:"perp_balances"`
}

// PlaceOrderResult is the venue's concrete response to a placement.
type PlaceOrderResult struct {
	Digest common.Hash `json:"digest"`
}

// CancelledOrder is one entry of a cancellation result.
type CancelledOrder struct {
	Digest common.Hash `json:"digest"`
}

// CancelResult lists which identifiers the venue actually cancelled.
type CancelResult struct {
	CancelledOrders []CancelledOrder `json:"cancelled_orders"`
}
