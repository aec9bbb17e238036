package assistant

import "strings"

const (
	// noRelevantDocumentsMarker is placed in the documents block when the
	// retrieval gate returned no usable context. The marker is explicit so
	// the model can distinguish "no relevant docs" from "docs not checked".
	noRelevantDocumentsMarker = "No relevant documents were found for this query."

	latestMessageHeader = "Based on the CONTEXT, provide a direct and helpful answer to the user's latest message:\n"
)

// ComposePrompt assembles the persona rules, formatted conversation history,
// gated context, and the latest user message into a single completion
// request. Block order is fixed: rules, history, documents, latest message,
// closing instruction. Identical inputs always produce an identical prompt.
func ComposePrompt(policy PromptPolicy, formattedHistory, contextBlock, latestMessage string) string {
	var b strings.Builder

	b.WriteString(policy.Rules)
	b.WriteString("\n\nCONTEXT:\n")

	b.WriteString("CONVERSATIONAL HISTORY:\n")
	if formattedHistory != "" {
		b.WriteString(formattedHistory)
	} else {
		b.WriteString("(none)")
	}
	b.WriteString("\n\n")

	b.WriteString("RELEVANT DOCUMENTS:\n")
	if contextBlock != "" {
		b.WriteString(contextBlock)
	} else {
		b.WriteString(noRelevantDocumentsMarker)
	}
	b.WriteString("\n\n")

	b.WriteString(latestMessageHeader)
	b.WriteString(latestMessage)
	b.WriteString("\n\nAnswer now.")

	return b.String()
}
