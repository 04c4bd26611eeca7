// Package api exposes the adapter's transport surface: a bidirectional
// request/response websocket stream, a subscribe-only order-flow stream, and
// a small admin HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/dispatcher"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/metrics"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/symbology"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/broadcast"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

// closeDataLoss signals a subscriber that it lagged and messages were
// dropped; the client must reconnect and resynchronize.
const closeDataLoss = websocket.CloseInternalServerErr

// Server serves the protocol streams over websocket.
type Server struct {
	dispatcher *dispatcher.Dispatcher
	dist       *dispatcher.Distributor
	symbology  *symbology.Snapshot
	logger     *zap.Logger
	upgrader   websocket.Upgrader
}

// NewServer wires the transport to the dispatcher queue and the response
// distributor. The symbology snapshot is sent once to each new connection.
func NewServer(
	disp *dispatcher.Dispatcher,
	dist *dispatcher.Distributor,
	snapshot *symbology.Snapshot,
	logger *zap.Logger,
) *Server {
	return &Server{
		dispatcher: disp,
		dist:       dist,
		symbology:  snapshot,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Routes returns the transport mux. The order-flow submission, drop-copy,
// and status/enumeration endpoints exist in the protocol but are
// intentionally not implemented by this adapter.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/cpty", s.handleCpty)
	mux.HandleFunc("/v1/orderflow/subscribe", s.handleSubscribeOrderflow)
	mux.HandleFunc("/v1/orderflow", s.unimplemented)
	mux.HandleFunc("/v1/dropcopy", s.unimplemented)
	mux.HandleFunc("/v1/cpty/status", s.unimplemented)
	mux.HandleFunc("/v1/cptys", s.unimplemented)
	return mux
}

// Run blocks serving the transport until the listener fails.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("transport listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}

// handleCpty serves the bidirectional request/response stream. Parsed
// requests are forwarded to the shared dispatcher queue; the write side
// first sends the one-time symbology snapshot, then relays the response
// broadcast.
func (s *Server) handleCpty(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("cpty upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close() //nolint:errcheck

	connName := conn.RemoteAddr().String()
	s.logger.Debug("cpty stream started", zap.String("conn", connName))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Read pump: enqueue only, never touch shared state directly.
	go func() {
		defer cancel()
		for {
			var req model.Request
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.logger.Info("cpty stream closed", zap.String("conn", connName))
				} else {
					s.logger.Error("cpty stream error", zap.String("conn", connName), zap.Error(err))
				}
				return
			}
			s.logger.Debug("received cpty request",
				zap.String("conn", connName),
				zap.String("type", string(req.Type)))
			s.dispatcher.Enqueue(req)
		}
	}()

	// TODO: reconcile open orders
	sub := s.dist.SubscribeResponses()
	defer sub.Close()

	first := model.Response{
		Type:      model.ResponseSymbology,
		Symbology: &model.SymbologyUpdate{ExecutionInfo: s.symbology.ExecutionInfo},
	}
	if err := conn.WriteJSON(first); err != nil {
		s.logger.Error("cpty symbology write failed", zap.String("conn", connName), zap.Error(err))
		return
	}

	s.relayResponses(ctx, conn, sub, connName)
}

// handleSubscribeOrderflow serves the subscribe-only order-flow stream.
func (s *Server) handleSubscribeOrderflow(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("orderflow upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close() //nolint:errcheck

	connName := conn.RemoteAddr().String()
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Drain the connection to observe client-side close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	sub := s.dist.SubscribeOrderflow()
	defer sub.Close()

	for {
		event, err := sub.Recv(ctx)
		if err != nil {
			var lagged *broadcast.LaggedError
			if errors.As(err, &lagged) {
				s.dropForLag(conn, connName, "orderflow", lagged.Missed)
			}
			return
		}
		if err := conn.WriteJSON(event); err != nil {
			s.logger.Debug("orderflow write failed", zap.String("conn", connName), zap.Error(err))
			return
		}
	}
}

// relayResponses forwards the response broadcast until the connection drops
// or the subscriber lags.
func (s *Server) relayResponses(ctx context.Context, conn *websocket.Conn, sub *broadcast.Subscriber[model.Response], connName string) {
	for {
		res, err := sub.Recv(ctx)
		if err != nil {
			var lagged *broadcast.LaggedError
			if errors.As(err, &lagged) {
				s.dropForLag(conn, connName, "responses", lagged.Missed)
			}
			return
		}
		if err := conn.WriteJSON(res); err != nil {
			s.logger.Debug("cpty write failed", zap.String("conn", connName), zap.Error(err))
			return
		}
	}
}

// dropForLag surfaces data loss to the subscriber instead of silently
// skipping messages; the producer side never blocked on this consumer.
func (s *Server) dropForLag(conn *websocket.Conn, connName, stream string, missed int64) {
	metrics.IncBroadcastDrop(stream)
	s.logger.Warn("subscriber lagged, closing with data loss",
		zap.String("conn", connName),
		zap.String("stream", stream),
		zap.Int64("missed", missed))
	deadline := time.Now().Add(time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(closeDataLoss, "data loss: lagged"), deadline)
}

func (s *Server) unimplemented(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "unimplemented", http.StatusNotImplemented)
}
