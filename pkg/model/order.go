package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side represents the order side.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// OrderType represents the canonical order type.
type OrderType string

const (
	OrderTypeLimit      OrderType = "limit"
	OrderTypeMarket     OrderType = "market"
	OrderTypeStopLimit  OrderType = "stop_limit"
	OrderTypeStopMarket OrderType = "stop_market"
)

// Order is a canonical order. It is immutable once submitted to the
// dispatcher; this adapter only supports plain limit orders.
type Order struct {
	ID             uuid.UUID       `json:"id"`
	Symbol         string          `json:"symbol"` // tradable product symbol, e.g. "BTC-USDC/USDC"
	ExecutionVenue ExecutionVenue  `json:"execution_venue"`
	Side           Side            `json:"side"`
	Quantity       decimal.Decimal `json:"quantity"`
	Type           OrderType       `json:"type"`
	LimitPrice     decimal.Decimal `json:"limit_price"`
	PostOnly       bool            `json:"post_only,omitempty"`

	// ExchangeOrderID is the venue-assigned identifier ("0x" + hex digest),
	// present only on orders already acknowledged by the venue.
	ExchangeOrderID string `json:"exchange_order_id,omitempty"`
}

// Cancel requests cancellation of a previously placed order.
type Cancel struct {
	CancelID uuid.UUID `json:"cancel_id"`
	OrderID  uuid.UUID `json:"order_id"`
}
