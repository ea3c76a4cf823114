// Package streamer turns a classified user message into an incremental
// assistant response: classify, fetch consultant data when the intent
// calls for it, then emit the lead-in sentence word by word through
// callbacks, followed by one data-bearing delta and a final done signal.
package streamer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/canopyhq/canopy-chat-server/classifier"
	"github.com/canopyhq/canopy-chat-server/models"
	"github.com/canopyhq/canopy-chat-server/recordstore"
)

// Store is the record-store surface a turn needs.
type Store interface {
	Search(ctx context.Context, req recordstore.SearchRequest) (*recordstore.SearchResponse, error)
	LookupByName(ctx context.Context, name string, limit int) ([]models.Consultant, error)
}

// Callbacks receive the incremental output of a turn. OnDelta fires
// once per streamed word and once more with the consultant payload when
// the branch carries data. OnDone fires exactly once after the last
// delta. OnError fires at most once and excludes OnDone.
type Callbacks struct {
	OnDelta func(text string, consultants []models.Consultant)
	OnDone  func()
	OnError func(message string)
}

// Result is the assembled assistant turn, handed back so the caller
// can freeze it into the conversation history.
type Result struct {
	Intent      classifier.Intent
	Content     string
	Consultants []models.Consultant
}

// Engine runs chat turns. Callers serialize turns per session; the
// engine itself keeps no cross-turn state.
type Engine struct {
	store         Store
	log           *zap.Logger
	wordDelay     time.Duration
	searchLimit   int
	minSimilarity float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWordDelay sets the artificial pause between streamed words.
// Zero disables the pause.
func WithWordDelay(d time.Duration) Option {
	return func(e *Engine) { e.wordDelay = d }
}

// WithSearchDefaults overrides the limit and minimum similarity sent
// with every criteria search.
func WithSearchDefaults(limit int, minSimilarity float64) Option {
	return func(e *Engine) {
		e.searchLimit = limit
		e.minSimilarity = minSimilarity
	}
}

// NewEngine creates a turn engine backed by the given record store.
func NewEngine(store Store, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		log:           log,
		wordDelay:     50 * time.Millisecond,
		searchLimit:   5,
		minSimilarity: 0.7,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one turn: classify the latest user message, retrieve
// consultant data if needed, stream the response through cb. On
// success it returns the assembled assistant turn after calling
// OnDone. On failure it calls OnError once, never calls OnDone, and
// returns the error.
func (e *Engine) Run(ctx context.Context, history []models.ChatMessage, cb Callbacks) (*Result, error) {
	result, err := e.run(ctx, history, cb)
	if err != nil {
		e.log.Warn("turn failed", zap.Error(err))
		if cb.OnError != nil {
			cb.OnError(err.Error())
		}
		return nil, err
	}
	cb.OnDone()
	return result, nil
}

func (e *Engine) run(ctx context.Context, history []models.ChatMessage, cb Callbacks) (*Result, error) {
	cls, err := classifier.Classify(ctx, history, e.store)
	if err != nil {
		return nil, err
	}
	e.log.Debug("classified turn",
		zap.Stringer("intent", cls.Intent),
		zap.String("query", cls.Query))

	switch cls.Intent {
	case classifier.IntentNamedLookup:
		leadIn := fmt.Sprintf("Here's detailed information about %s:", cls.Consultant.Name)
		return e.stream(ctx, cls.Intent, leadIn, []models.Consultant{*cls.Consultant}, cb)

	case classifier.IntentCriteriaSearch:
		resp, err := e.store.Search(ctx, recordstore.SearchRequest{
			Query:         cls.Query,
			Limit:         e.searchLimit,
			MinSimilarity: e.minSimilarity,
			FilterActive:  true,
		})
		if err != nil {
			return nil, err
		}
		leadIn := fmt.Sprintf("I found %d consultants matching your criteria: %q. Here are the top matches:",
			len(resp.Consultants), cls.Query)
		return e.stream(ctx, cls.Intent, leadIn, resp.Consultants, cb)

	default:
		return e.stream(ctx, cls.Intent, cls.Reply, nil, cb)
	}
}

// stream emits the lead-in word by word, then the consultant payload
// when present. All retrieval has already happened, so a turn that
// reaches this point can only fail on context cancellation.
func (e *Engine) stream(ctx context.Context, intent classifier.Intent, leadIn string, consultants []models.Consultant, cb Callbacks) (*Result, error) {
	for _, word := range strings.Fields(leadIn) {
		if err := e.pause(ctx); err != nil {
			return nil, err
		}
		cb.OnDelta(word+" ", nil)
	}
	if consultants != nil {
		cb.OnDelta("", consultants)
	}
	return &Result{
		Intent:      intent,
		Content:     leadIn,
		Consultants: consultants,
	}, nil
}

// pause is the cooperative yield point between word emissions.
func (e *Engine) pause(ctx context.Context) error {
	if e.wordDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(e.wordDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
