package assistant

import (
	"context"
	"log"
	"strings"

	"github.com/restore-pt/clinibot/internal/chat"
)

// QueryFormulator decides the literal text used to search the document store
// for a turn. For a first message the user's words are used directly; for a
// follow-up the rewrite model turns it into a standalone query so that
// references like "simplify that" resolve against the preceding turns.
//
// Formulation never fails: any rewrite problem falls back to the direct
// message, so the output is always non-empty for a non-empty conversation.
type QueryFormulator struct {
	rewriter LLM
}

// NewQueryFormulator creates a formulator. A nil rewriter disables the
// history-aware rewrite and always uses the direct message.
func NewQueryFormulator(rewriter LLM) *QueryFormulator {
	return &QueryFormulator{rewriter: rewriter}
}

// Formulate produces the search string for the conversation's latest message.
func (f *QueryFormulator) Formulate(ctx context.Context, conv chat.Conversation) string {
	latest := conv.LatestMessage()

	history := conv.History()
	if len(history) == 0 || f.rewriter == nil {
		return latest
	}

	rewritten, err := f.rewriter.Generate(ctx, rewritePrompt(history, latest))
	if err != nil {
		log.Printf("[formulator] rewrite failed, using direct query: %v", err)
		return latest
	}

	rewritten = strings.TrimSpace(strings.Trim(strings.TrimSpace(rewritten), `"`))
	if rewritten == "" {
		return latest
	}
	return rewritten
}

func rewritePrompt(history []chat.Turn, latest string) string {
	var b strings.Builder

	b.WriteString("Rewrite the user's latest message as a single standalone search query ")
	b.WriteString("for a physical-therapy document index. Resolve pronouns and references ")
	b.WriteString("using the conversation so far. Respond with the query only, no explanation.\n\n")

	b.WriteString("Conversation so far:\n")
	b.WriteString(chat.FormatHistory(history))
	b.WriteString("\n\nLatest message:\n")
	b.WriteString(latest)

	return b.String()
}
