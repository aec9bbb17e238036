package observability

import "log"

// TraceRecorder records per-turn traces for offline inspection. It is an
// optional collaborator: a nil recorder is valid and all methods on the
// traces it produces are safe to call unconditionally.
type TraceRecorder interface {
	// StartTurn opens a trace for one conversation turn.
	StartTurn(input string) TurnTrace
}

// TurnTrace collects the spans of a single turn.
type TurnTrace interface {
	// RetrievalSpan records the query sent to the vector store and the
	// gated context that came back.
	RetrievalSpan(query, context string)

	// GenerationSpan records the composed prompt size and the answer.
	GenerationSpan(promptChars int, answer string)

	// End closes the trace with the final output, or the error that ended
	// the turn.
	End(output string, err error)
}

// StartTurn opens a trace on a possibly-nil recorder.
func StartTurn(rec TraceRecorder, input string) TurnTrace {
	if rec == nil {
		return noopTrace{}
	}
	return rec.StartTurn(input)
}

type noopTrace struct{}

func (noopTrace) RetrievalSpan(string, string) {}
func (noopTrace) GenerationSpan(int, string)   {}
func (noopTrace) End(string, error)            {}

// LogRecorder writes traces to the process log. It stands in for a hosted
// tracing backend in development and keeps the recorder path exercised.
type LogRecorder struct{}

func (LogRecorder) StartTurn(input string) TurnTrace {
	log.Printf("[trace] turn started input=%q", truncate(input, 120))
	return logTrace{}
}

type logTrace struct{}

func (logTrace) RetrievalSpan(query, context string) {
	log.Printf("[trace] retrieval query=%q context_chars=%d", truncate(query, 120), len(context))
}

func (logTrace) GenerationSpan(promptChars int, answer string) {
	log.Printf("[trace] generation prompt_chars=%d answer_chars=%d", promptChars, len(answer))
}

func (logTrace) End(output string, err error) {
	if err != nil {
		log.Printf("[trace] turn ended with error: %v", err)
		return
	}
	log.Printf("[trace] turn ended output_chars=%d", len(output))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
