package vertex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/metrics"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/rate"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/security"
)

// defaultRateLimit keeps the adapter inside the gateway's request budget.
var defaultRateLimit = rate.Config{RequestsPerSecond: 10, Burst: 20}

// Client is the narrow surface of the venue API this adapter consumes.
// A nil result with a nil error means the venue declined without a reason.
type Client interface {
	GetAssets(ctx context.Context) ([]Asset, error)
	GetAllProducts(ctx context.Context) (*ProductCatalog, error)
	GetSubaccountInfo(ctx context.Context, subaccount string) (*SubaccountInfo, error)
	PlaceOrder(ctx context.Context, productID uint32, amountX18, priceX18 *big.Int) (*PlaceOrderResult, error)
	CancelOrders(ctx context.Context, digests []common.Hash) (*CancelResult, error)
	Subaccount() string
}

// GatewayClient talks to the Vertex gateway over HTTP, signing every
// execute payload with the adapter's secp256k1 key.
type GatewayClient struct {
	baseURL string
	signer  *security.Signer
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGatewayClient constructs a gateway client for the given base URL.
func NewGatewayClient(baseURL string, signer *security.Signer, logger *zap.Logger) *GatewayClient {
	return &GatewayClient{
		baseURL: baseURL,
		signer:  signer,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.New(defaultRateLimit),
		logger:  logger,
	}
}

// Subaccount returns the 32-byte sender identity (address + subaccount name)
// the signer trades under.
func (c *GatewayClient) Subaccount() string {
	return c.signer.Subaccount()
}

// GetAssets fetches the venue's full asset catalog.
func (c *GatewayClient) GetAssets(ctx context.Context) ([]Asset, error) {
	var out struct {
		Assets []Asset `json:"assets"`
	}
	if err := c.query(ctx, map[string]any{"type": "assets"}, &out); err != nil {
		return nil, err
	}
	return out.Assets, nil
}

// GetAllProducts fetches the venue's full product catalog (spot + perp legs).
func (c *GatewayClient) GetAllProducts(ctx context.Context) (*ProductCatalog, error) {
	var out ProductCatalog
	if err := c.query(ctx, map[string]any{"type": "all_products"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSubaccountInfo fetches raw balances for one subaccount.
func (c *GatewayClient) GetSubaccountInfo(ctx context.Context, subaccount string) (*SubaccountInfo, error) {
	var out SubaccountInfo
	payload := map[string]any{"type": "subaccount_info", "subaccount": subaccount}
	if err := c.query(ctx, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaceOrder submits a signed order for the given product. A nil result
// means the venue declined without a specific reason.
func (c *GatewayClient) PlaceOrder(ctx context.Context, productID uint32, amountX18, priceX18 *big.Int) (*PlaceOrderResult, error) {
	order := map[string]any{
		"sender":     c.signer.Subaccount(),
		"product_id": productID,
		"amount":     amountX18.String(),
		"price_x18":  priceX18.String(),
		"nonce":      orderNonce(),
	}
	var out *PlaceOrderResult
	if err := c.execute(ctx, "place_order", order, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelOrders submits a signed cancellation for the given order digests.
func (c *GatewayClient) CancelOrders(ctx context.Context, digests []common.Hash) (*CancelResult, error) {
	hexDigests := make([]string, 0, len(digests))
	for _, d := range digests {
		hexDigests = append(hexDigests, d.Hex())
	}
	cancel := map[string]any{
		"sender":      c.signer.Subaccount(),
		"digests":     hexDigests,
		"product_ids": []uint32{},
		"nonce":       orderNonce(),
	}
	var out *CancelResult
	if err := c.execute(ctx, "cancel_orders", cancel, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// query issues an unsigned read-only call against the gateway.
func (c *GatewayClient) query(ctx context.Context, payload any, dest any) error {
	return c.post(ctx, "/v1/query", payload, dest)
}

// execute signs the payload digest and issues a state-mutating call.
func (c *GatewayClient) execute(ctx context.Context, kind string, payload map[string]any, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	sig, err := c.signer.SignPayload(body)
	if err != nil {
		return fmt.Errorf("sign %s payload: %w", kind, err)
	}
	envelope := map[string]any{
		kind:        json.RawMessage(body),
		"signature": hexutil.Encode(sig),
	}
	var wrapped struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  string          `json:"error,omitempty"`
	}
	if err := c.post(ctx, "/v1/execute", envelope, &wrapped); err != nil {
		return err
	}
	if wrapped.Status != "success" {
		return fmt.Errorf("venue rejected %s: %s", kind, wrapped.Error)
	}
	// The venue may answer success with an empty body: declined, no reason.
	if len(wrapped.Data) == 0 || string(wrapped.Data) == "null" {
		return nil
	}
	return json.Unmarshal(wrapped.Data, dest)
}

func (c *GatewayClient) post(ctx context.Context, path string, payload any, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	metrics.ObserveDuration(metrics.VenueRequestDuration, start, path)
	if err != nil {
		metrics.IncVenueRequest(path, "error")
		return fmt.Errorf("vertex gateway request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		metrics.IncVenueRequest(path, fmt.Sprintf("%d", resp.StatusCode))
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		detail := ""
		if msg, ok := errBody["error"].(string); ok {
			detail = msg
		}
		return fmt.Errorf("vertex gateway returned %d: %s", resp.StatusCode, detail)
	}

	metrics.IncVenueRequest(path, "ok")
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func orderNonce() uint64 {
	// Gateway nonces are millisecond recv-time windows.
	return uint64(time.Now().Add(90*time.Second).UnixMilli()) << 20
}
