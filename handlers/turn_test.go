package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/canopyhq/canopy-chat-server/classifier"
	"github.com/canopyhq/canopy-chat-server/config"
	"github.com/canopyhq/canopy-chat-server/models"
	"github.com/canopyhq/canopy-chat-server/streamer"
)

// stubEngine replays a scripted turn through the callbacks.
type stubEngine struct {
	result  *streamer.Result
	err     error
	history []models.ChatMessage
}

func (s *stubEngine) Run(_ context.Context, history []models.ChatMessage, cb streamer.Callbacks) (*streamer.Result, error) {
	s.history = history
	if s.err != nil {
		cb.OnError(s.err.Error())
		return nil, s.err
	}
	cb.OnDelta("Here's ", nil)
	cb.OnDelta("one: ", nil)
	if s.result.Consultants != nil {
		cb.OnDelta("", s.result.Consultants)
	}
	cb.OnDone()
	return s.result, nil
}

type memoryLog struct {
	published []*models.ChatMessage
	err       error
}

func (m *memoryLog) PublishMessage(_ context.Context, msg *models.ChatMessage) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, msg)
	return nil
}

func newTestClient(engine TurnRunner, log ConversationLog) *Client {
	return NewClient(nil, engine, log, config.Default(), zap.NewNop(), "conv-1", "user_test")
}

func drainFrames(c *Client) []models.StreamFrame {
	var frames []models.StreamFrame
	for {
		select {
		case f := <-c.FrameChan:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestRunTurn_CommitsBothSidesOfTheTurn(t *testing.T) {
	consultants := []models.Consultant{{ID: "c-1", Name: "Sarah Chen", Similarity: 0.9}}
	engine := &stubEngine{
		result: &streamer.Result{
			Intent:      classifier.IntentCriteriaSearch,
			Content:     "Here's one:",
			Consultants: consultants,
		},
	}
	log := &memoryLog{}
	client := newTestClient(engine, log)

	client.RunTurn(context.Background(), "Find a marketing consultant")

	// The engine saw the user turn in the history it classified.
	require.NotEmpty(t, engine.history)
	assert.Equal(t, "Find a marketing consultant", engine.history[len(engine.history)-1].Content)

	// User message first, then the frozen assistant message.
	require.Len(t, log.published, 2)
	assert.Equal(t, models.RoleUser, log.published[0].Role)
	assert.Equal(t, models.RoleAssistant, log.published[1].Role)
	assert.Equal(t, "Here's one:", log.published[1].Content)
	assert.Equal(t, consultants, log.published[1].Consultants)
	assert.Equal(t, "conv-1", log.published[1].ConversationID)
	assert.NotEmpty(t, log.published[1].ID)

	frames := drainFrames(client)
	require.Len(t, frames, 4)
	assert.Equal(t, models.FrameDelta, frames[0].Type)
	assert.Equal(t, models.FrameDelta, frames[2].Type)
	assert.Equal(t, consultants, frames[2].Consultants)
	assert.Equal(t, models.FrameDone, frames[3].Type)
}

func TestRunTurn_FailedTurnCommitsNoAssistantMessage(t *testing.T) {
	engine := &stubEngine{err: errors.New("search failed: 500 Internal Server Error")}
	log := &memoryLog{}
	client := newTestClient(engine, log)

	client.RunTurn(context.Background(), "Find a finance consultant")

	// The user turn is committed, the assistant turn is not.
	require.Len(t, log.published, 1)
	assert.Equal(t, models.RoleUser, log.published[0].Role)

	frames := drainFrames(client)
	require.Len(t, frames, 1)
	assert.Equal(t, models.FrameError, frames[0].Type)
	assert.Contains(t, frames[0].Error, "500")
}

func TestRunTurn_HistoryAccumulatesAcrossTurns(t *testing.T) {
	engine := &stubEngine{
		result: &streamer.Result{Intent: classifier.IntentConversational, Content: "Here's one:"},
	}
	client := newTestClient(engine, &memoryLog{})

	client.RunTurn(context.Background(), "hello")
	client.RunTurn(context.Background(), "thanks")

	// Second turn classifies against the full transcript: user,
	// assistant, user.
	require.Len(t, engine.history, 3)
	assert.Equal(t, models.RoleUser, engine.history[0].Role)
	assert.Equal(t, models.RoleAssistant, engine.history[1].Role)
	assert.Equal(t, "thanks", engine.history[2].Content)
}
