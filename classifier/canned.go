package classifier

// cannedReplies maps exact (lower-cased, trimmed) small-talk queries to
// fixed replies. Built once at init, never mutated at runtime.
var cannedReplies = map[string]string{
	"hello":           "Hello! I'm the Canopy Assistant. I can help you find consultants for your projects. What kind of consultant are you looking for?",
	"hi":              "Hi there! I'm here to help you find the right consultants. What expertise do you need?",
	"help":            "I can help you find consultants based on their skills, experience, and expertise. Try asking me things like 'Find a marketing consultant', 'Who has healthcare experience?', or 'Tell me about Alex Rich'.",
	"thanks":          "You're welcome! Feel free to ask me about finding consultants anytime.",
	"bye":             "Goodbye! Feel free to come back when you need help finding consultants.",
	"how are you":     "I'm doing well, thank you! I'm ready to help you find the perfect consultants for your needs.",
	"what can you do": "I can help you search through our database of consultants to find the right match for your projects. You can ask me to find consultants by skills, or ask about specific consultants by name. Try asking 'Find a marketing strategy consultant' or 'Tell me about John Smith'.",
}

// fallbackReply describes the assistant's capabilities when no canned
// reply matches a conversational query.
const fallbackReply = "I'm the Canopy Assistant, specialized in helping you find the right consultants. You can ask me to find consultants with specific skills, experience, or expertise. You can also ask about specific consultants by name. For example, try asking 'Find a marketing strategy consultant', 'Who has healthcare experience?', or 'Tell me about Alex Rich'."

// ConversationalReply returns the canned reply for the given
// lower-cased, trimmed query, or the capabilities fallback.
func ConversationalReply(query string) string {
	if reply, ok := cannedReplies[query]; ok {
		return reply
	}
	return fallbackReply
}
