package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Checker-Finance/adapters/vertex-adapter/internal/store"
	"github.com/Checker-Finance/adapters/vertex-adapter/internal/symbology"
)

// AdminHandler serves the operational HTTP API next to the streaming
// transport: health, loaded products, and the last cached account summary.
type AdminHandler struct {
	Snapshot *symbology.Snapshot
	Store    store.Store // may be nil
	Account  string
	Logger   *zap.Logger
}

// NewAdminApp builds the fiber app with all admin routes registered.
func NewAdminApp(h *AdminHandler) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	app.Get("/healthz", h.Health)
	app.Get("/api/v1/products", h.ListProducts)
	app.Get("/api/v1/account-summary", h.AccountSummary)

	return app
}

// GET /healthz
func (h *AdminHandler) Health(c *fiber.Ctx) error {
	if h.Store != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.Store.HealthCheck(ctx); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// GET /api/v1/products
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"count":          len(h.Snapshot.ExecutionInfo),
		"execution_info": h.Snapshot.ExecutionInfo,
	})
}

// GET /api/v1/account-summary
func (h *AdminHandler) AccountSummary(c *fiber.Ctx) error {
	if h.Store == nil {
		return fiber.NewError(fiber.StatusNotImplemented, "no store configured")
	}
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	summary, err := h.Store.GetAccountSummary(ctx, h.Account)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no summary recorded yet")
		}
		h.Logger.Error("account summary lookup failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(summary)
}
