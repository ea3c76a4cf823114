// Package nats_service persists and distributes conversation turns
// through a NATS JetStream stream, one subject per conversation.
package nats_service

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/canopyhq/canopy-chat-server/config"
	"github.com/canopyhq/canopy-chat-server/models"
)

type NatsService struct {
	js  jetstream.JetStream
	nc  *nats.Conn
	cfg config.Config
	log *zap.Logger
}

// NewNatsService connects to NATS and ensures the conversation stream exists
func NewNatsService(cfg config.Config, log *zap.Logger) (*NatsService, error) {
	nc, err := nats.Connect(cfg.NatsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := js.Stream(ctx, cfg.StreamName)
	if err != nil {
		log.Info("stream not found, creating", zap.String("stream", cfg.StreamName))
		streamCfg := jetstream.StreamConfig{
			Name:        cfg.StreamName,
			Description: "Stores consultant chat conversations",
			Subjects:    []string{fmt.Sprintf("%s.*", cfg.SubjectPrefix)},
			MaxAge:      30 * 24 * time.Hour,
			Storage:     jetstream.FileStorage,
		}
		stream, err = js.CreateStream(ctx, streamCfg)
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create stream '%s': %w", cfg.StreamName, err)
		}
		log.Info("stream created", zap.String("stream", cfg.StreamName))
	} else {
		log.Info("found existing stream", zap.String("stream", stream.CachedInfo().Config.Name))
	}

	return &NatsService{js: js, nc: nc, cfg: cfg, log: log}, nil
}

// Close NATS connection
func (s *NatsService) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}

// PublishMessage appends a committed conversation turn to the log
func (s *NatsService) PublishMessage(ctx context.Context, msg *models.ChatMessage) error {
	subject := s.subject(msg.ConversationID)
	msgData, err := sonic.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	_, err = s.js.Publish(ctx, subject, msgData)
	if err != nil {
		return fmt.Errorf("failed to publish message to subject '%s': %w", subject, err)
	}
	s.log.Debug("published message",
		zap.String("subject", subject),
		zap.String("id", msg.ID),
		zap.String("role", msg.Role))
	return nil
}

// subject generates the NATS subject for a conversation
func (s *NatsService) subject(conversationID string) string {
	return fmt.Sprintf("%s.%s", s.cfg.SubjectPrefix, conversationID)
}

// SubscribeToConversation delivers every persisted turn of a
// conversation, history first and then live, to the handler. The
// returned ConsumeContext must be stopped when the subscriber goes away.
func (s *NatsService) SubscribeToConversation(ctx context.Context, conversationID string, handler func(msg *models.ChatMessage)) (jetstream.ConsumeContext, error) {
	subject := s.subject(conversationID)
	// Ephemeral consumer with DeliverAll: replays the stored history of
	// the conversation before live turns, which is exactly the transcript
	// replay a freshly connected client needs.
	cons, err := s.js.CreateOrUpdateConsumer(ctx, s.cfg.StreamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckNonePolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer for subject '%s': %w", subject, err)
	}

	s.log.Info("subscribing", zap.String("subject", subject))

	consumeCtx, err := cons.Consume(func(jsMsg jetstream.Msg) {
		var msg models.ChatMessage
		if err := sonic.Unmarshal(jsMsg.Data(), &msg); err != nil {
			s.log.Error("failed to unmarshal message",
				zap.String("subject", jsMsg.Subject()),
				zap.Error(err))
			return
		}
		handler(&msg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start consuming from subject '%s': %w", subject, err)
	}

	return consumeCtx, nil
}
