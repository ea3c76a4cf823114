package classifier

// Hand-tuned keyword tables driving intent classification. Matching is
// boolean, case-insensitive substring: any hit counts, no scoring.

// searchKeywords flag a message as a criteria search over the
// consultant database: role nouns, domain nouns, and action verbs.
var searchKeywords = []string{
	"consultant", "expert", "specialist", "professional", "advisor",
	"find", "search", "looking for", "need", "want", "hire",
	"marketing", "finance", "strategy", "operations", "technology",
	"healthcare", "nonprofit", "business", "legal", "law",
	"who has", "who can", "who knows", "available", "experienced",
}

// lookupTriggers flag a message as a request about one specific
// consultant, usually by name.
var lookupTriggers = []string{
	"tell me about", "information about", "details about", "who is",
	"about", "profile of", "show me", "give me info", "more about",
	"contact info", "phone", "email", "address", "rate", "skills",
	"experience", "background", "references", "linkedin", "what is",
	"how to contact", "contact details", "full profile", "complete info",
}
