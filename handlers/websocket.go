package handlers

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/canopyhq/canopy-chat-server/config"
	"github.com/canopyhq/canopy-chat-server/models"
	"github.com/canopyhq/canopy-chat-server/nats_service"
	"github.com/canopyhq/canopy-chat-server/streamer"
)

// TurnRunner executes one chat turn against the record store.
type TurnRunner interface {
	Run(ctx context.Context, history []models.ChatMessage, cb streamer.Callbacks) (*streamer.Result, error)
}

// ConversationLog persists committed conversation turns.
type ConversationLog interface {
	PublishMessage(ctx context.Context, msg *models.ChatMessage) error
}

type Client struct {
	Conn           *websocket.Conn
	Engine         TurnRunner
	Log            ConversationLog
	ConversationID string
	UserID         string                  // Should come from authentication
	FrameChan      chan models.StreamFrame // Outbound frames to the websocket
	DoneChan       chan struct{}           // Channel to signal closure

	cfg     config.Config
	logger  *zap.Logger
	history []models.ChatMessage // In-memory transcript for this connection
}

func NewClient(conn *websocket.Conn, engine TurnRunner, log ConversationLog, cfg config.Config, logger *zap.Logger, convoID, userID string) *Client {
	return &Client{
		Conn:           conn,
		Engine:         engine,
		Log:            log,
		ConversationID: convoID,
		UserID:         userID,
		FrameChan:      make(chan models.StreamFrame, 256), // Buffered channel
		DoneChan:       make(chan struct{}),
		cfg:            cfg,
		logger:         logger,
	}
}

// HandleRead reads user messages from the WebSocket connection and runs
// one turn per message. Turns are serialized: the read loop blocks
// until the current turn finishes streaming.
func (c *Client) HandleRead(ctx context.Context) {
	defer func() {
		c.logger.Info("reader closed",
			zap.String("user", c.UserID),
			zap.String("conversation", c.ConversationID))
		close(c.DoneChan) // Signal writer to stop
	}()
	c.Conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
		return nil
	})

	for {
		var clientMsg struct { // Expecting simple text messages from client
			Text string `json:"text"`
		}
		err := c.Conn.ReadJSON(&clientMsg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read error", zap.String("user", c.UserID), zap.Error(err))
			} else {
				c.logger.Info("websocket closed", zap.String("user", c.UserID), zap.Error(err))
			}
			break // Exit loop on error or close
		}

		if clientMsg.Text == "" {
			continue // Ignore empty messages
		}

		c.RunTurn(ctx, clientMsg.Text)

		// A turn ending with an error leaves the transcript as-is; the
		// next read starts a fresh turn.
	}
}

// RunTurn appends the user message to the transcript, runs the engine,
// and on success freezes and persists the assistant turn.
func (c *Client) RunTurn(ctx context.Context, text string) {
	userMsg := models.ChatMessage{
		ID:             uuid.NewString(),
		ConversationID: c.ConversationID,
		Role:           models.RoleUser,
		Content:        text,
		CreatedAt:      time.Now().UTC(),
	}
	c.history = append(c.history, userMsg)
	c.persist(ctx, &userMsg)

	cb := streamer.Callbacks{
		OnDelta: func(delta string, consultants []models.Consultant) {
			c.enqueue(models.StreamFrame{Type: models.FrameDelta, Text: delta, Consultants: consultants})
		},
		OnDone: func() {
			c.enqueue(models.StreamFrame{Type: models.FrameDone})
		},
		OnError: func(message string) {
			c.enqueue(models.StreamFrame{Type: models.FrameError, Error: message})
		},
	}

	result, err := c.Engine.Run(ctx, c.history, cb)
	if err != nil {
		// OnError already reached the client; nothing is committed.
		return
	}

	assistantMsg := models.ChatMessage{
		ID:             uuid.NewString(),
		ConversationID: c.ConversationID,
		Role:           models.RoleAssistant,
		Content:        result.Content,
		Consultants:    result.Consultants,
		CreatedAt:      time.Now().UTC(),
	}
	c.history = append(c.history, assistantMsg)
	c.persist(ctx, &assistantMsg)
}

func (c *Client) persist(ctx context.Context, msg *models.ChatMessage) {
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Log.PublishMessage(pubCtx, msg); err != nil {
		c.logger.Error("failed to persist message",
			zap.String("user", c.UserID),
			zap.String("id", msg.ID),
			zap.Error(err))
	}
}

// enqueue hands a frame to the write pump, giving up when the client
// is gone.
func (c *Client) enqueue(f models.StreamFrame) {
	select {
	case c.FrameChan <- f:
	case <-c.DoneChan:
	}
}

// HandleWrite writes frames from FrameChan to the WebSocket connection.
func (c *Client) HandleWrite() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.logger.Info("writer closed",
			zap.String("user", c.UserID),
			zap.String("conversation", c.ConversationID))
	}()

	for {
		select {
		case frame, ok := <-c.FrameChan:
			c.Conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if !ok {
				// The frame channel was closed.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(frame); err != nil {
				c.logger.Warn("websocket write error", zap.String("user", c.UserID), zap.Error(err))
				return // Exit loop on write error
			}

		case <-ticker.C:
			// Send ping message periodically
			c.Conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Warn("websocket ping error", zap.String("user", c.UserID), zap.Error(err))
				return
			}

		case <-c.DoneChan:
			return
		}
	}
}

// HandleWebSocket manages the lifecycle of a chat WebSocket connection
func HandleWebSocket(c *websocket.Conn, natsSvc *nats_service.NatsService, engine TurnRunner, cfg config.Config, logger *zap.Logger) {
	// ** IMPORTANT: Add Authentication/Authorization here! **
	userID := "user_" + uuid.NewString()[:6] // Placeholder

	conversationID := c.Params("conversationID")
	if conversationID == "" {
		logger.Warn("missing conversationID parameter")
		c.WriteJSON(fiber.Map{"error": "Missing conversationID"})
		c.Close()
		return
	}

	client := NewClient(c, engine, natsSvc, cfg, logger, conversationID, userID)
	logger.Info("client connected",
		zap.String("user", client.UserID),
		zap.String("conversation", client.ConversationID))

	subCtx, cancelSub := context.WithCancel(context.Background())
	defer cancelSub()

	// Replay the stored transcript and mirror committed turns (this tab's
	// and any other's) as message frames. Live deltas only ever go to the
	// connection that started the turn; clients reconcile by message ID.
	consumeCtx, err := natsSvc.SubscribeToConversation(subCtx, client.ConversationID, func(msg *models.ChatMessage) {
		select {
		case client.FrameChan <- models.StreamFrame{Type: models.FrameMessage, Message: msg}:
		case <-time.After(1 * time.Second): // Don't block NATS delivery
			logger.Warn("timeout delivering message frame", zap.String("user", client.UserID))
		case <-client.DoneChan:
		}
	})
	if err != nil {
		logger.Error("failed to subscribe",
			zap.String("user", client.UserID),
			zap.String("conversation", client.ConversationID),
			zap.Error(err))
		c.Close()
		return
	}

	// Cleanup subscription and connection when handler exits
	defer func() {
		logger.Info("cleaning up client",
			zap.String("user", client.UserID),
			zap.String("conversation", client.ConversationID))
		if consumeCtx != nil {
			consumeCtx.Stop() // Stop the NATS consumer
		}
		close(client.FrameChan) // Close channel *after* stopping consumer
		c.Close()
	}()

	// Start the write in a separate goroutine
	go client.HandleWrite()

	// Blocking read loop; exits when the connection closes or errors.
	client.HandleRead(subCtx)
}
