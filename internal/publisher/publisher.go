// Package publisher mirrors order-flow events to NATS so sibling services
// can consume them without a transport subscription.
package publisher

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/dispatcher"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/metrics"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/broadcast"
)

// Publisher wraps a NATS connection and relays the order-flow broadcast.
type Publisher struct {
	nc      *nats.Conn
	js      nats.JetStreamContext
	service string
	logger  *zap.Logger
}

// New creates a Publisher with JetStream enabled.
func New(nc *nats.Conn, service string, logger *zap.Logger) (*Publisher, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Publisher{
		nc:      nc,
		js:      js,
		service: service,
		logger:  logger,
	}, nil
}

// Run consumes the order-flow broadcast and publishes each event under
// evt.orderflow.<type>.v1.VERTEX. It is just another broadcast subscriber;
// lag here never affects the dispatcher.
func (p *Publisher) Run(ctx context.Context, dist *dispatcher.Distributor) {
	sub := dist.SubscribeOrderflow()
	defer sub.Close()

	for {
		event, err := sub.Recv(ctx)
		if err != nil {
			var lagged *broadcast.LaggedError
			if errors.As(err, &lagged) {
				metrics.IncBroadcastDrop("nats")
				p.logger.Warn("nats mirror lagged", zap.Int64("missed", lagged.Missed))
				continue
			}
			p.logger.Info("nats mirror stopped")
			return
		}
		subject := "evt.orderflow." + string(event.Type) + ".v1.VERTEX"
		if err := p.publish(subject, event); err != nil {
			metrics.NATSPublishErrors.WithLabelValues(subject).Inc()
			p.logger.Debug("nats.publish_failed",
				zap.String("subject", subject),
				zap.Error(err))
		}
	}
}

func (p *Publisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"source":       []string{p.service},
			"content_type": []string{"application/json"},
		},
	}
	_, err = p.js.PublishMsg(msg)
	return err
}

// Close drains the underlying NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil && p.nc.IsConnected() {
		p.nc.Close()
	}
}
