// Package classifier assigns each user turn one of three intents:
// a lookup of one named consultant, a criteria search over the
// consultant database, or plain conversation. Classification is
// lexical — case-insensitive substring matching against fixed keyword
// tables — with a live name resolution against the record store to
// decide whether a "tell me about X" style message actually names a
// known consultant.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/canopyhq/canopy-chat-server/models"
)

// ErrNoUserMessage is returned when the history holds no user turn.
var ErrNoUserMessage = errors.New("no user message found")

// Intent is the response strategy chosen for a user turn.
type Intent int

const (
	// IntentConversational answers small talk from the canned table.
	IntentConversational Intent = iota
	// IntentCriteriaSearch runs a criteria search over the database.
	IntentCriteriaSearch
	// IntentNamedLookup presents one explicitly named consultant.
	IntentNamedLookup
)

func (i Intent) String() string {
	switch i {
	case IntentNamedLookup:
		return "named_lookup"
	case IntentCriteriaSearch:
		return "criteria_search"
	default:
		return "conversational"
	}
}

// Classification is the outcome of classifying one user turn.
type Classification struct {
	Intent Intent

	// Query is the original, untrimmed-case user text.
	Query string

	// Consultant is the resolved record for IntentNamedLookup, with
	// Similarity forced to 1.0 since the user named them explicitly.
	Consultant *models.Consultant

	// Reply is the canned or fallback text for IntentConversational.
	Reply string
}

// NameResolver resolves a candidate consultant name against the record
// store. An empty result slice is a miss, not an error.
type NameResolver interface {
	LookupByName(ctx context.Context, name string, limit int) ([]models.Consultant, error)
}

// Classify inspects the latest user message in history and decides the
// response strategy. The named-lookup interpretation wins over keyword
// search when the name resolves; a failed resolution falls through to
// keyword search. Resolver transport failures abort the turn.
func Classify(ctx context.Context, history []models.ChatMessage, resolver NameResolver) (Classification, error) {
	last := models.LastUserMessage(history)
	if last == nil {
		return Classification{}, ErrNoUserMessage
	}

	original := last.Content
	query := strings.ToLower(strings.TrimSpace(original))

	isSpecificQuery := matchesAny(query, lookupTriggers)
	isSearchQuery := matchesAny(query, searchKeywords)

	if isSpecificQuery {
		if candidate := nameCandidate(original); candidate != "" {
			hits, err := resolver.LookupByName(ctx, candidate, 1)
			if err != nil {
				return Classification{}, fmt.Errorf("resolving name %q: %w", candidate, err)
			}
			if len(hits) > 0 {
				hit := hits[0]
				hit.Similarity = 1.0 // exact match, the user asked for them by name
				return Classification{
					Intent:     IntentNamedLookup,
					Query:      original,
					Consultant: &hit,
				}, nil
			}
		}
		// Name did not resolve; fall through to the coarser intents.
	}

	if isSearchQuery {
		return Classification{Intent: IntentCriteriaSearch, Query: original}, nil
	}

	return Classification{
		Intent: IntentConversational,
		Query:  original,
		Reply:  ConversationalReply(query),
	}, nil
}

func matchesAny(query string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(query, kw) {
			return true
		}
	}
	return false
}

// nameCandidate extracts a probable consultant name from the original
// message: whitespace tokens longer than two runes that are neither
// part of a lookup trigger phrase nor a search keyword, rejoined in
// order.
func nameCandidate(original string) string {
	var kept []string
	for _, word := range strings.Fields(original) {
		if len(word) <= 2 {
			continue
		}
		lower := strings.ToLower(word)
		if partOfTrigger(lower) || isSearchKeyword(lower) {
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " ")
}

func partOfTrigger(word string) bool {
	for _, trigger := range lookupTriggers {
		if strings.Contains(trigger, word) {
			return true
		}
	}
	return false
}

func isSearchKeyword(word string) bool {
	for _, kw := range searchKeywords {
		if kw == word {
			return true
		}
	}
	return false
}
