package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/canopyhq/canopy-chat-server/models"
	"github.com/canopyhq/canopy-chat-server/recordstore"
)

// RecordStore is the slice of the record-store client the REST
// handlers need.
type RecordStore interface {
	GetConsultant(ctx context.Context, id string) (*models.Consultant, error)
	CheckHealth(ctx context.Context) (*recordstore.Health, error)
	GetStats(ctx context.Context) (*recordstore.Stats, error)
}

// API serves the REST surface next to the websocket chat endpoint.
type API struct {
	Store  RecordStore
	Logger *zap.Logger
}

// Register mounts the REST routes on the app.
func (a *API) Register(app *fiber.App) {
	app.Get("/healthz", a.Health)
	app.Get("/consultants/:id", a.GetConsultant)
	app.Get("/stats", a.Stats)
}

// Health reports server liveness and record-store reachability.
func (a *API) Health(c *fiber.Ctx) error {
	h, err := a.Store.CheckHealth(c.Context())
	if err != nil {
		a.Logger.Warn("record store health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":             "degraded",
			"recordStoreHealthy": false,
		})
	}
	return c.JSON(fiber.Map{
		"status":             "ok",
		"recordStoreHealthy": h.DatabaseConnected,
		"totalConsultants":   h.TotalConsultants,
	})
}

// GetConsultant proxies a consultant detail fetch.
func (a *API) GetConsultant(c *fiber.Ctx) error {
	id := c.Params("id")
	consultant, err := a.Store.GetConsultant(c.Context(), id)
	if err != nil {
		if errors.Is(err, recordstore.ErrConsultantNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Consultant not found"})
		}
		a.Logger.Error("consultant detail fetch failed", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(consultant)
}

// Stats proxies the record store's database statistics.
func (a *API) Stats(c *fiber.Ctx) error {
	stats, err := a.Store.GetStats(c.Context())
	if err != nil {
		a.Logger.Error("stats fetch failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}
