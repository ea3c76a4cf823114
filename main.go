package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"

	"github.com/canopyhq/canopy-chat-server/config"
	"github.com/canopyhq/canopy-chat-server/handlers"
	"github.com/canopyhq/canopy-chat-server/nats_service"
	"github.com/canopyhq/canopy-chat-server/recordstore"
	"github.com/canopyhq/canopy-chat-server/streamer"
)

func main() {
	configPath := flag.String("config", "canopy.yaml", "path to config file")
	flag.Parse()

	zlog, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zlog.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal("failed to load config", zap.Error(err))
	}

	// --- Initialize NATS Service ---
	natsSvc, err := nats_service.NewNatsService(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize NATS service", zap.Error(err))
	}
	defer natsSvc.Close()
	zlog.Info("NATS service initialized")

	// --- Record store client and turn engine ---
	store := recordstore.New(cfg.RecordStoreURL, zlog, recordstore.WithTimeout(cfg.RequestTimeout))
	engine := streamer.NewEngine(store, zlog,
		streamer.WithWordDelay(cfg.WordDelay),
		streamer.WithSearchDefaults(cfg.SearchLimit, cfg.MinSimilarity),
	)

	// --- Initialize Fiber App ---
	app := fiber.New()
	app.Use(logger.New()) // Basic request logging

	api := &handlers.API{Store: store, Logger: zlog}
	api.Register(app)

	// --- Setup WebSocket Route ---
	app.Use("/chat", func(c *fiber.Ctx) error {
		// Check if the request is a WebSocket upgrade request
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket endpoint: /chat/:conversationID
	app.Get("/chat/:conversationID", websocket.New(func(c *websocket.Conn) {
		handlers.HandleWebSocket(c, natsSvc, engine, cfg, zlog)
	}))

	// --- Start Server ---
	go func() {
		zlog.Info("starting server", zap.String("addr", cfg.ServerAddr))
		if err := app.Listen(cfg.ServerAddr); err != nil {
			zlog.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until signal received

	zlog.Info("shutting down server")

	if err := app.Shutdown(); err != nil {
		zlog.Error("error shutting down fiber", zap.Error(err))
	}

	// NATS connection is closed by defer in main

	zlog.Info("server gracefully stopped")
}
