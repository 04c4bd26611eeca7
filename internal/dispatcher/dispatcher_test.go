package dispatcher

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/account"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/order"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/symbology"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/vertex"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/broadcast"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

type fakeClient struct {
	placeErr error
	info     *vertex.SubaccountInfo
	infoErr  error
}

func (f *fakeClient) GetAssets(ctx context.Context) ([]vertex.Asset, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) GetAllProducts(ctx context.Context) (*vertex.ProductCatalog, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) GetSubaccountInfo(ctx context.Context, subaccount string) (*vertex.SubaccountInfo, error) {
	return f.info, f.infoErr
}

func (f *fakeClient) PlaceOrder(ctx context.Context, productID uint32, amountX18, priceX18 *big.Int) (*vertex.PlaceOrderResult, error) {
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	return &vertex.PlaceOrderResult{Digest: common.Hash{0x01}}, nil
}

func (f *fakeClient) CancelOrders(ctx context.Context, digests []common.Hash) (*vertex.CancelResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeClient) Subaccount() string { return "0xsender" }

const btcSymbol = "BTC-USDC/USDC"

func testSnapshot() *symbology.Snapshot {
	return &symbology.Snapshot{
		Products:         map[uint32]model.Product{},
		TradableProducts: map[uint32]model.TradableProduct{},
		ExecutionInfo: model.ExecutionInfoMap{
			btcSymbol: {
				model.VenueVertex: {
					ExecutionVenue: model.VenueVertex,
					ExchangeSymbol: "7",
				},
			},
		},
	}
}

type fixture struct {
	dispatcher *Dispatcher
	dist       *Distributor
	client     *fakeClient
}

func newFixture() *fixture {
	client := &fakeClient{info: &vertex.SubaccountInfo{}}
	snapshot := testSnapshot()
	dist := NewDistributor(16)
	translator := order.NewTranslator(snapshot, client, dist, zap.NewNop())
	reporter := account.NewReporter(snapshot, client, dist, nil, "acct-1", zap.NewNop())
	return &fixture{
		dispatcher: New(translator, reporter, zap.NewNop()),
		dist:       dist,
		client:     client,
	}
}

func placeRequest() model.Request {
	return model.Request{
		Type: model.RequestPlaceOrder,
		Order: &model.Order{
			ID:             uuid.New(),
			Symbol:         btcSymbol,
			ExecutionVenue: model.VenueVertex,
			Side:           model.SideBuy,
			Quantity:       decimal.RequireFromString("1"),
			Type:           model.OrderTypeLimit,
			LimitPrice:     decimal.RequireFromString("100"),
		},
	}
}

func runDispatcher(t *testing.T, f *fixture, serverErr chan error, pollInterval time.Duration) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- f.dispatcher.Run(ctx, serverErr, pollInterval)
	}()
	return cancel, done
}

func recvResponse(t *testing.T, sub *broadcast.Subscriber[model.Response]) model.Response {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := sub.Recv(ctx)
	require.NoError(t, err)
	return resp
}

func TestRunPreservesRequestOrder(t *testing.T) {
	f := newFixture()
	sub := f.dist.SubscribeResponses()
	defer sub.Close()

	requests := make([]model.Request, 5)
	for i := range requests {
		requests[i] = placeRequest()
		f.dispatcher.Enqueue(requests[i])
	}

	cancel, done := runDispatcher(t, f, make(chan error, 1), time.Hour)
	defer cancel()

	for _, req := range requests {
		resp := recvResponse(t, sub)
		require.Equal(t, model.ResponseOrderAck, resp.Type)
		assert.Equal(t, req.Order.ID, resp.OrderAck.OrderID)
	}

	cancel()
	require.NoError(t, <-done)
}

func TestRunLoginLogoutAreAccepted(t *testing.T) {
	f := newFixture()
	sub := f.dist.SubscribeResponses()
	defer sub.Close()

	f.dispatcher.Enqueue(model.Request{Type: model.RequestLogin})
	f.dispatcher.Enqueue(model.Request{Type: model.RequestLogout})
	req := placeRequest()
	f.dispatcher.Enqueue(req)

	cancel, done := runDispatcher(t, f, make(chan error, 1), time.Hour)
	defer cancel()

	// login and logout produce no responses; the first response belongs
	// to the order
	resp := recvResponse(t, sub)
	require.Equal(t, model.ResponseOrderAck, resp.Type)
	assert.Equal(t, req.Order.ID, resp.OrderAck.OrderID)

	cancel()
	require.NoError(t, <-done)
}

func TestRunRejectedOrderKeepsLoopAlive(t *testing.T) {
	f := newFixture()
	f.client.placeErr = errors.New("rate limited")
	sub := f.dist.SubscribeResponses()
	defer sub.Close()

	f.dispatcher.Enqueue(placeRequest())

	cancel, done := runDispatcher(t, f, make(chan error, 1), time.Hour)
	defer cancel()

	resp := recvResponse(t, sub)
	assert.Equal(t, model.ResponseOrderReject, resp.Type)

	cancel()
	require.NoError(t, <-done)
}

func TestRunAccountPollTick(t *testing.T) {
	f := newFixture()
	sub := f.dist.SubscribeResponses()
	defer sub.Close()

	cancel, done := runDispatcher(t, f, make(chan error, 1), 10*time.Millisecond)
	defer cancel()

	resp := recvResponse(t, sub)
	require.Equal(t, model.ResponseAccountSummary, resp.Type)
	assert.Equal(t, "acct-1", resp.AccountSummary.Account)
	assert.True(t, resp.AccountSummary.IsSnapshot)

	cancel()
	require.NoError(t, <-done)
}

func TestRunReportFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.client.infoErr = errors.New("gateway down")

	_, done := runDispatcher(t, f, make(chan error, 1), 10*time.Millisecond)

	err := <-done
	require.Error(t, err)
	assert.ErrorContains(t, err, "account report")
}

func TestRunServerFailureIsFatal(t *testing.T) {
	f := newFixture()
	serverErr := make(chan error, 1)
	serverErr <- errors.New("listen failed")

	_, done := runDispatcher(t, f, serverErr, time.Hour)

	err := <-done
	require.Error(t, err)
	assert.ErrorContains(t, err, "transport server")
}

func TestRunContextCancelIsClean(t *testing.T) {
	f := newFixture()
	cancel, done := runDispatcher(t, f, make(chan error, 1), time.Hour)

	cancel()
	require.NoError(t, <-done)
}
