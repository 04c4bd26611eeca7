package dispatcher

import (
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/broadcast"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

// Distributor fans protocol responses out to every transport subscriber.
// Order-flow events appear on both streams: wrapped on the response stream
// and bare on the subscribe-only order-flow stream.
type Distributor struct {
	responses *broadcast.Broadcaster[model.Response]
	orderflow *broadcast.Broadcaster[model.Orderflow]
}

// NewDistributor creates a distributor with the given replay capacity.
func NewDistributor(capacity int) *Distributor {
	return &Distributor{
		responses: broadcast.New[model.Response](capacity),
		orderflow: broadcast.New[model.Orderflow](capacity),
	}
}

// EmitOrderflow publishes an order-flow event to both streams.
func (d *Distributor) EmitOrderflow(of model.Orderflow) {
	d.orderflow.Send(of)
	d.responses.Send(model.WrapOrderflow(of))
}

// EmitAccountSummary publishes a full account snapshot to the response stream.
func (d *Distributor) EmitAccountSummary(summary model.AccountSummary) {
	d.responses.Send(model.Response{
		Type:           model.ResponseAccountSummary,
		AccountSummary: &summary,
	})
}

// SubscribeResponses attaches a new response-stream subscriber.
func (d *Distributor) SubscribeResponses() *broadcast.Subscriber[model.Response] {
	return d.responses.Subscribe()
}

// SubscribeOrderflow attaches a new order-flow subscriber.
func (d *Distributor) SubscribeOrderflow() *broadcast.Subscriber[model.Orderflow] {
	return d.orderflow.Subscribe()
}
