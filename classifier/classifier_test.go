package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canopyhq/canopy-chat-server/models"
)

type fakeResolver struct {
	hits      []models.Consultant
	err       error
	calls     int
	lastName  string
	lastLimit int
}

func (f *fakeResolver) LookupByName(_ context.Context, name string, limit int) ([]models.Consultant, error) {
	f.calls++
	f.lastName = name
	f.lastLimit = limit
	return f.hits, f.err
}

func userTurn(content string) []models.ChatMessage {
	return []models.ChatMessage{{Role: models.RoleUser, Content: content}}
}

func TestClassify_NoUserMessage(t *testing.T) {
	resolver := &fakeResolver{}

	t.Run("empty history", func(t *testing.T) {
		_, err := Classify(context.Background(), nil, resolver)
		assert.ErrorIs(t, err, ErrNoUserMessage)
	})

	t.Run("assistant-only history", func(t *testing.T) {
		history := []models.ChatMessage{{Role: models.RoleAssistant, Content: "Hello!"}}
		_, err := Classify(context.Background(), history, resolver)
		assert.ErrorIs(t, err, ErrNoUserMessage)
	})
}

func TestClassify_NamedLookupWinsWhenNameResolves(t *testing.T) {
	resolver := &fakeResolver{
		hits: []models.Consultant{{ID: "c-1", Name: "Alex Rich", Email: "alex@example.com"}},
	}

	// Contains both a name and search keywords; the named-entity
	// interpretation must win when the lookup hits.
	cls, err := Classify(context.Background(), userTurn("Tell me about Alex Rich's healthcare experience"), resolver)
	require.NoError(t, err)

	assert.Equal(t, IntentNamedLookup, cls.Intent)
	require.NotNil(t, cls.Consultant)
	assert.Equal(t, "Alex Rich", cls.Consultant.Name)
	assert.Equal(t, 1.0, cls.Consultant.Similarity)
	assert.Equal(t, 1, resolver.calls)
	assert.Equal(t, 1, resolver.lastLimit)
	// Trigger words and domain keywords are stripped from the candidate.
	assert.Equal(t, "Alex Rich's", resolver.lastName)
}

func TestClassify_FallsThroughToSearchWhenNameDoesNotResolve(t *testing.T) {
	resolver := &fakeResolver{} // no hits

	cls, err := Classify(context.Background(), userTurn("Tell me about Alex Rich's healthcare experience"), resolver)
	require.NoError(t, err)

	assert.Equal(t, IntentCriteriaSearch, cls.Intent)
	assert.Equal(t, "Tell me about Alex Rich's healthcare experience", cls.Query)
	assert.Equal(t, 1, resolver.calls)
}

func TestClassify_CriteriaSearch(t *testing.T) {
	resolver := &fakeResolver{}

	cls, err := Classify(context.Background(), userTurn("Find a marketing strategy consultant"), resolver)
	require.NoError(t, err)

	assert.Equal(t, IntentCriteriaSearch, cls.Intent)
	// The original text, not the lower-cased form, goes to the store.
	assert.Equal(t, "Find a marketing strategy consultant", cls.Query)
	// Every token is either short or a keyword, so no name candidate
	// exists and no lookup call is issued.
	assert.Equal(t, 0, resolver.calls)
}

func TestClassify_Conversational(t *testing.T) {
	resolver := &fakeResolver{}

	t.Run("canned greeting verbatim", func(t *testing.T) {
		cls, err := Classify(context.Background(), userTurn("hello"), resolver)
		require.NoError(t, err)
		assert.Equal(t, IntentConversational, cls.Intent)
		assert.Equal(t, cannedReplies["hello"], cls.Reply)
	})

	t.Run("case and whitespace insensitive", func(t *testing.T) {
		cls, err := Classify(context.Background(), userTurn("  How are YOU  "), resolver)
		require.NoError(t, err)
		assert.Equal(t, IntentConversational, cls.Intent)
		assert.Equal(t, cannedReplies["how are you"], cls.Reply)
	})

	t.Run("fallback for unknown small talk", func(t *testing.T) {
		cls, err := Classify(context.Background(), userTurn("good morning sunshine"), resolver)
		require.NoError(t, err)
		assert.Equal(t, IntentConversational, cls.Intent)
		assert.Equal(t, fallbackReply, cls.Reply)
	})

	assert.Equal(t, 0, resolver.calls)
}

func TestClassify_UsesLatestUserMessage(t *testing.T) {
	resolver := &fakeResolver{}
	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "Find a finance consultant"},
		{Role: models.RoleAssistant, Content: "I found 3 consultants..."},
		{Role: models.RoleUser, Content: "thanks"},
	}

	cls, err := Classify(context.Background(), history, resolver)
	require.NoError(t, err)
	assert.Equal(t, IntentConversational, cls.Intent)
	assert.Equal(t, cannedReplies["thanks"], cls.Reply)
}

func TestClassify_ResolverFailureAbortsTurn(t *testing.T) {
	lookupErr := errors.New("lookup failed: 502 Bad Gateway")
	resolver := &fakeResolver{err: lookupErr}

	// Transport failures must not silently degrade to search or
	// conversation.
	_, err := Classify(context.Background(), userTurn("Tell me about Jane Doe"), resolver)
	assert.ErrorIs(t, err, lookupErr)
}

func TestNameCandidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"strips trigger phrase words", "Tell me about Jane Doe", "Jane Doe"},
		{"strips short tokens", "Who is J Smithson", "Smithson"},
		{"strips search keywords", "contact info for Maria Lopez finance", "Maria Lopez"},
		{"empty when everything stripped", "tell me about marketing", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, nameCandidate(tc.input))
		})
	}
}
