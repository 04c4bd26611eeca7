package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/store"
	"github.com/Checker-Finance/adapters/vertex-adapter/pkg/model"
)

type fakeStore struct {
	summary   *model.AccountSummary
	getErr    error
	healthErr error
}

func (f *fakeStore) RecordAccountSummary(ctx context.Context, summary model.AccountSummary) error {
	return nil
}

func (f *fakeStore) GetAccountSummary(ctx context.Context, account string) (*model.AccountSummary, error) {
	return f.summary, f.getErr
}

func (f *fakeStore) HealthCheck(ctx context.Context) error { return f.healthErr }

func (f *fakeStore) Close() error { return nil }

func adminRequest(t *testing.T, h *AdminHandler, path string) *http.Response {
	t.Helper()
	app := NewAdminApp(h)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAdminHealth(t *testing.T) {
	t.Run("ok without store", func(t *testing.T) {
		h := &AdminHandler{Snapshot: testSnapshot(), Logger: zap.NewNop()}
		resp := adminRequest(t, h, "/healthz")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unavailable when store is down", func(t *testing.T) {
		h := &AdminHandler{
			Snapshot: testSnapshot(),
			Store:    &fakeStore{healthErr: errors.New("redis down")},
			Logger:   zap.NewNop(),
		}
		resp := adminRequest(t, h, "/healthz")
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestAdminListProducts(t *testing.T) {
	h := &AdminHandler{Snapshot: testSnapshot(), Logger: zap.NewNop()}
	resp := adminRequest(t, h, "/api/v1/products")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count         int                    `json:"count"`
		ExecutionInfo model.ExecutionInfoMap `json:"execution_info"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	assert.Contains(t, body.ExecutionInfo, btcSymbol)
}

func TestAdminAccountSummary(t *testing.T) {
	t.Run("no store configured", func(t *testing.T) {
		h := &AdminHandler{Snapshot: testSnapshot(), Account: "acct-1", Logger: zap.NewNop()}
		resp := adminRequest(t, h, "/api/v1/account-summary")
		assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
	})

	t.Run("not recorded yet", func(t *testing.T) {
		h := &AdminHandler{
			Snapshot: testSnapshot(),
			Store:    &fakeStore{getErr: store.ErrNotFound},
			Account:  "acct-1",
			Logger:   zap.NewNop(),
		}
		resp := adminRequest(t, h, "/api/v1/account-summary")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("cached summary", func(t *testing.T) {
		h := &AdminHandler{
			Snapshot: testSnapshot(),
			Store:    &fakeStore{summary: &model.AccountSummary{Account: "acct-1", IsSnapshot: true}},
			Account:  "acct-1",
			Logger:   zap.NewNop(),
		}
		resp := adminRequest(t, h, "/api/v1/account-summary")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var summary model.AccountSummary
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
		assert.Equal(t, "acct-1", summary.Account)
		assert.True(t, summary.IsSnapshot)
	})
}
