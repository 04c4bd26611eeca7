package model

import "github.com/shopspring/decimal"

// ExecutionVenue identifies the exchange an order is routed to.
type ExecutionVenue string

// VenueVertex is the only venue this adapter serves.
const VenueVertex ExecutionVenue = "VERTEX"

// ProductKind classifies a canonical product.
type ProductKind string

const (
	ProductKindCrypto    ProductKind = "crypto"
	ProductKindPerpetual ProductKind = "perpetual"
)

// Product is the canonical identity of a single tradable asset,
// e.g. the spot currency "USDC" or the perpetual "BTC-USDC".
type Product struct {
	Symbol string      `json:"symbol"`
	Kind   ProductKind `json:"kind"`
	Venue  string      `json:"venue,omitempty"` // set for venue-scoped perpetuals
}

// Crypto builds a canonical spot currency product.
func Crypto(symbol string) Product {
	return Product{Symbol: symbol, Kind: ProductKindCrypto}
}

// Perpetual builds a canonical perpetual product scoped to a venue.
func Perpetual(symbol, venue string) Product {
	return Product{Symbol: symbol, Kind: ProductKindPerpetual, Venue: venue}
}

// TradableProduct is a canonical (base, quote) pair eligible for trading.
type TradableProduct struct {
	Base  Product `json:"base"`
	Quote Product `json:"quote"`
}

// NewTradableProduct pairs a base product with its quote currency.
func NewTradableProduct(base, quote Product) TradableProduct {
	return TradableProduct{Base: base, Quote: quote}
}

// Symbol is the canonical pair symbol, e.g. "BTC-USDC/USDC".
// Orders reference tradable products by this string.
func (tp TradableProduct) Symbol() string {
	return tp.Base.Symbol + "/" + tp.Quote.Symbol
}

// MinOrderQuantityUnit says which leg a minimum order quantity is expressed in.
type MinOrderQuantityUnit string

const (
	UnitBase  MinOrderQuantityUnit = "base"
	UnitQuote MinOrderQuantityUnit = "quote"
)

// ExecutionInfo carries per-venue trading constraints for a tradable product.
// Exactly one ExecutionInfo exists per (tradable product, venue) pair.
type ExecutionInfo struct {
	ExecutionVenue       ExecutionVenue       `json:"execution_venue"`
	ExchangeSymbol       string               `json:"exchange_symbol,omitempty"` // venue-native product id, stringified
	TickSize             decimal.Decimal      `json:"tick_size"`
	StepSize             decimal.Decimal      `json:"step_size"`
	MinOrderQuantity     decimal.Decimal      `json:"min_order_quantity"`
	MinOrderQuantityUnit MinOrderQuantityUnit `json:"min_order_quantity_unit"`
	IsDelisted           bool                 `json:"is_delisted"`
	InitialMargin        *decimal.Decimal     `json:"initial_margin,omitempty"`
	MaintenanceMargin    *decimal.Decimal     `json:"maintenance_margin,omitempty"`
}

// ExecutionInfoMap maps tradable product symbol -> venue -> execution info.
type ExecutionInfoMap map[string]map[ExecutionVenue]ExecutionInfo
