package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestType enumerates the inbound transport request variants.
type RequestType string

const (
	RequestLogin       RequestType = "login"
	RequestLogout      RequestType = "logout"
	RequestPlaceOrder  RequestType = "place_order"
	RequestCancelOrder RequestType = "cancel_order"
)

// Request is the tagged union carried on the inbound request stream.
// Exactly one payload field is set, matching Type.
type Request struct {
	Type          RequestType `json:"type"`
	Order         *Order      `json:"order,omitempty"`
	Cancel        *Cancel     `json:"cancel,omitempty"`
	OriginalOrder *Order      `json:"original_order,omitempty"`
}

// OrderRejectReason is the coarse reason code attached to rejects.
type OrderRejectReason string

const (
	RejectUnknown              OrderRejectReason = "unknown"
	RejectUnsupportedOrderType OrderRejectReason = "unsupported_order_type"
)

// OrderAck acknowledges a successful placement.
type OrderAck struct {
	OrderID         uuid.UUID `json:"order_id"`
	ExchangeOrderID string    `json:"exchange_order_id,omitempty"`
}

// OrderReject reports a failed placement.
type OrderReject struct {
	OrderID uuid.UUID         `json:"order_id"`
	Reason  OrderRejectReason `json:"reason"`
	Message string            `json:"message,omitempty"`
}

// OrderCanceled confirms a cancellation.
type OrderCanceled struct {
	OrderID  uuid.UUID  `json:"order_id"`
	CancelID *uuid.UUID `json:"cancel_id,omitempty"`
}

// CancelReject reports a failed cancellation.
type CancelReject struct {
	CancelID uuid.UUID `json:"cancel_id"`
	OrderID  uuid.UUID `json:"order_id"`
	Message  string    `json:"message,omitempty"`
}

// OrderflowType enumerates order-flow event variants.
type OrderflowType string

const (
	OrderflowAck          OrderflowType = "order_ack"
	OrderflowReject       OrderflowType = "order_reject"
	OrderflowCanceled     OrderflowType = "order_canceled"
	OrderflowCancelReject OrderflowType = "cancel_reject"
)

// Orderflow is the tagged union of order-flow events relayed to the
// subscribe-only stream and mirrored to NATS.
type Orderflow struct {
	Type         OrderflowType  `json:"type"`
	Ack          *OrderAck      `json:"order_ack,omitempty"`
	Reject       *OrderReject   `json:"order_reject,omitempty"`
	Canceled     *OrderCanceled `json:"order_canceled,omitempty"`
	CancelReject *CancelReject  `json:"cancel_reject,omitempty"`
}

// AccountPosition is one open position entry on an account summary.
type AccountPosition struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// AccountSummary is a full balance/position snapshot for one account.
// It always replaces prior state; this adapter never emits deltas.
type AccountSummary struct {
	Account     string                       `json:"account"`
	Timestamp   int64                        `json:"timestamp"`
	TimestampNs int64                        `json:"timestamp_ns"`
	Balances    map[string]decimal.Decimal   `json:"balances"`
	Positions   map[string][]AccountPosition `json:"positions"`
	IsSnapshot  bool                         `json:"is_snapshot"`
}

// SymbologyUpdate carries the one-time execution info snapshot sent to each
// new transport connection.
type SymbologyUpdate struct {
	ExecutionInfo ExecutionInfoMap `json:"execution_info"`
}

// ResponseType enumerates the outbound transport response variants.
type ResponseType string

const (
	ResponseSymbology      ResponseType = "symbology"
	ResponseOrderAck       ResponseType = "order_ack"
	ResponseOrderReject    ResponseType = "order_reject"
	ResponseOrderCanceled  ResponseType = "order_canceled"
	ResponseCancelReject   ResponseType = "cancel_reject"
	ResponseAccountSummary ResponseType = "account_summary"
)

// Response is the tagged union carried on the outbound response stream.
type Response struct {
	Type           ResponseType     `json:"type"`
	Symbology      *SymbologyUpdate `json:"symbology,omitempty"`
	OrderAck       *OrderAck        `json:"order_ack,omitempty"`
	OrderReject    *OrderReject     `json:"order_reject,omitempty"`
	OrderCanceled  *OrderCanceled   `json:"order_canceled,omitempty"`
	CancelReject   *CancelReject    `json:"cancel_reject,omitempty"`
	AccountSummary *AccountSummary  `json:"account_summary,omitempty"`
}

// WrapOrderflow lifts an order-flow event into the response stream union.
func WrapOrderflow(of Orderflow) Response {
	switch of.Type {
	case OrderflowAck:
		return Response{Type: ResponseOrderAck, OrderAck: of.Ack}
	case OrderflowReject:
		return Response{Type: ResponseOrderReject, OrderReject: of.Reject}
	case OrderflowCanceled:
		return Response{Type: ResponseOrderCanceled, OrderCanceled: of.Canceled}
	case OrderflowCancelReject:
		return Response{Type: ResponseCancelReject, CancelReject: of.CancelReject}
	default:
		return Response{}
	}
}
