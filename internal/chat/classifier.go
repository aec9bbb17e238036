package chat

import "strings"

// Intent is the coarse category of a user message, used to decide whether a
// turn needs document retrieval at all.
type Intent string

const (
	// IntentGreeting covers salutations and small talk openers.
	IntentGreeting Intent = "greeting"

	// IntentMetaCommand covers requests about the assistant itself
	// ("what can you do", "help").
	IntentMetaCommand Intent = "meta_command"

	// IntentInformationRequest is everything else and triggers retrieval.
	IntentInformationRequest Intent = "information_request"
)

var greetingPhrases = []string{
	"hi", "hello", "hey", "good morning", "good afternoon", "good evening",
	"howdy", "hi there", "hello there",
}

var metaPhrases = []string{
	"help", "what can you do", "what do you do", "who are you",
	"what are you", "what topics", "how does this work",
}

// Classify tags a user message with its intent. Classification is purely
// lexical: short salutations and questions about the assistant itself skip
// retrieval, everything else is treated as an information request.
func Classify(message string) Intent {
	normalized := normalize(message)
	if normalized == "" {
		return IntentInformationRequest
	}

	for _, p := range greetingPhrases {
		if normalized == p {
			return IntentGreeting
		}
	}
	for _, p := range metaPhrases {
		if normalized == p || strings.HasPrefix(normalized, p) {
			return IntentMetaCommand
		}
	}
	return IntentInformationRequest
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimRight(s, "!?. ")
}
