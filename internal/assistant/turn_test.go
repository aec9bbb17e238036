package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/restore-pt/clinibot/internal/chat"
	"github.com/restore-pt/clinibot/internal/rag"
)

// mockGate implements ContextGate for testing
type mockGate struct {
	contextText string
	outcome     rag.GateOutcome
	lastQuery   string
	calls       int
}

func (m *mockGate) Context(ctx context.Context, query string) (string, rag.GateOutcome) {
	m.lastQuery = query
	m.calls++
	return m.contextText, m.outcome
}

func newTestHandler(t *testing.T, gate *mockGate, llm LLM, rewriter LLM) *TurnHandler {
	t.Helper()
	h, err := NewTurnHandler(NewQueryFormulator(rewriter), gate, llm, TurnHandlerOptions{})
	if err != nil {
		t.Fatalf("NewTurnHandler() error = %v", err)
	}
	return h
}

func TestAnswerEmptyMessageSkipsExternalCalls(t *testing.T) {
	gate := &mockGate{outcome: rag.GateMiss}
	llm := NewMockLLM("should not be called")
	h := newTestHandler(t, gate, llm, nil)

	for _, conv := range []chat.Conversation{
		{},
		{{Role: chat.RoleUser, Content: ""}},
		{{Role: chat.RoleUser, Content: "   \n\t "}},
	} {
		res := h.Answer(context.Background(), conv)
		if res.Answer != promptToTypeAnswer {
			t.Errorf("Answer = %q, want canned prompt-to-type message", res.Answer)
		}
		if res.Outcome != OutcomeEmptyMessage {
			t.Errorf("Outcome = %q, want empty_message", res.Outcome)
		}
	}
	if gate.calls != 0 || llm.Calls != 0 {
		t.Errorf("external calls made for empty message: gate=%d llm=%d", gate.calls, llm.Calls)
	}
}

func TestAnswerGreetingSkipsRetrieval(t *testing.T) {
	gate := &mockGate{contextText: "should not appear", outcome: rag.GateHit}
	llm := NewMockLLM("Hello! How can I help with your recovery today?")
	h := newTestHandler(t, gate, llm, nil)

	res := h.Answer(context.Background(), chat.Conversation{{Role: chat.RoleUser, Content: "hi"}})
	if res.Outcome != OutcomeAnswered {
		t.Fatalf("Outcome = %q, want answered", res.Outcome)
	}
	if gate.calls != 0 {
		t.Errorf("gate called %d times for a greeting", gate.calls)
	}
	if !strings.Contains(llm.LastPrompt, noRelevantDocumentsMarker) {
		t.Error("greeting prompt should carry the no-documents marker")
	}
}

func TestAnswerWithGatedContext(t *testing.T) {
	gate := &mockGate{
		contextText: "Rest, Ice, Compression, Elevation. Apply ice for 15-20 minutes at a time.",
		outcome:     rag.GateHit,
	}
	llm := NewMockLLM("RICE stands for Rest, Ice, Compression, Elevation.")
	h := newTestHandler(t, gate, llm, nil)

	conv := chat.Conversation{{Role: chat.RoleUser, Content: "what is the RICE method"}}
	res := h.Answer(context.Background(), conv)

	if res.Outcome != OutcomeAnswered {
		t.Fatalf("Outcome = %q, want answered", res.Outcome)
	}
	if gate.lastQuery != "what is the RICE method" {
		t.Errorf("gate query = %q, want the direct message", gate.lastQuery)
	}
	if !strings.Contains(llm.LastPrompt, gate.contextText) {
		t.Error("composed prompt missing retrieved context")
	}
	if strings.Contains(llm.LastPrompt, noRelevantDocumentsMarker) {
		t.Error("no-documents marker present despite gated context")
	}
}

func TestAnswerBelowThresholdUsesMarker(t *testing.T) {
	gate := &mockGate{contextText: "", outcome: rag.GateMiss}
	llm := NewMockLLM("That topic is outside my scope.")
	h := newTestHandler(t, gate, llm, nil)

	conv := chat.Conversation{{Role: chat.RoleUser, Content: "how do I file my taxes"}}
	res := h.Answer(context.Background(), conv)

	if res.Outcome != OutcomeAnswered {
		t.Fatalf("Outcome = %q, want answered", res.Outcome)
	}
	if !strings.Contains(llm.LastPrompt, noRelevantDocumentsMarker) {
		t.Error("prompt missing no-documents marker for a gate miss")
	}
}

func TestAnswerFollowUpRewritesQuery(t *testing.T) {
	gate := &mockGate{contextText: "RICE basics.", outcome: rag.GateHit}
	llm := NewMockLLM("Simply: rest the joint, ice it, wrap it, raise it.")
	rewriter := NewMockLLM("RICE method explained simply")
	h := newTestHandler(t, gate, llm, rewriter)

	conv := chat.Conversation{
		{Role: chat.RoleUser, Content: "explain RICE"},
		{Role: chat.RoleAssistant, Content: "RICE stands for Rest, Ice, Compression, Elevation..."},
		{Role: chat.RoleUser, Content: "simplify that"},
	}
	res := h.Answer(context.Background(), conv)

	if res.Outcome != OutcomeAnswered {
		t.Fatalf("Outcome = %q, want answered", res.Outcome)
	}
	if gate.lastQuery != "RICE method explained simply" {
		t.Errorf("gate query = %q, want the rewritten standalone query", gate.lastQuery)
	}
	if !strings.Contains(llm.LastPrompt, "Assistant: RICE stands for") {
		t.Error("composed prompt missing conversation history")
	}
}

func TestAnswerDegradedRetrievalStillAnswers(t *testing.T) {
	gate := &mockGate{contextText: "", outcome: rag.GateDegraded}
	llm := NewMockLLM("I can still help with general recovery topics.")
	h := newTestHandler(t, gate, llm, nil)

	conv := chat.Conversation{{Role: chat.RoleUser, Content: "what helps a sprained ankle"}}
	res := h.Answer(context.Background(), conv)

	if res.Outcome != OutcomeAnswered {
		t.Fatalf("Outcome = %q, want answered despite degraded retrieval", res.Outcome)
	}
	if !strings.Contains(llm.LastPrompt, noRelevantDocumentsMarker) {
		t.Error("degraded retrieval should read as no documents")
	}
}

func TestAnswerGenerationFailureIsApologetic(t *testing.T) {
	gate := &mockGate{outcome: rag.GateMiss}
	llm := NewMockLLMWithError(errors.New("rate limited"))
	h := newTestHandler(t, gate, llm, nil)

	conv := chat.Conversation{{Role: chat.RoleUser, Content: "what is the RICE method"}}
	res := h.Answer(context.Background(), conv)

	if res.Outcome != OutcomeGenerationFailed {
		t.Fatalf("Outcome = %q, want generation_failed", res.Outcome)
	}
	if res.Answer != apologeticAnswer {
		t.Errorf("Answer = %q, want the apologetic message", res.Answer)
	}
	if strings.Contains(res.Answer, "rate limited") {
		t.Error("raw error text leaked into the user-facing answer")
	}
}

func TestAnswerIdenticalInputsComposeIdenticalPrompts(t *testing.T) {
	gate := &mockGate{contextText: "RICE basics.", outcome: rag.GateHit}
	llm := NewMockLLM("answer")
	h := newTestHandler(t, gate, llm, nil)

	conv := chat.Conversation{{Role: chat.RoleUser, Content: "what is the RICE method"}}
	h.Answer(context.Background(), conv)
	first := llm.LastPrompt
	h.Answer(context.Background(), conv)

	if llm.LastPrompt != first {
		t.Error("identical conversations composed different prompts")
	}
}

type deadlineRewriter struct {
	deadline time.Time
}

func (r *deadlineRewriter) Generate(ctx context.Context, prompt string) (string, error) {
	r.deadline, _ = ctx.Deadline()
	time.Sleep(5 * time.Millisecond)
	return "RICE method explained simply", nil
}

type deadlineGate struct {
	deadline time.Time
}

func (g *deadlineGate) Context(ctx context.Context, query string) (string, rag.GateOutcome) {
	g.deadline, _ = ctx.Deadline()
	return "RICE basics.", rag.GateHit
}

func TestAnswerSearchWindowIndependentOfRewrite(t *testing.T) {
	rewriter := &deadlineRewriter{}
	gate := &deadlineGate{}
	h, err := NewTurnHandler(NewQueryFormulator(rewriter), gate, NewMockLLM("answer"), TurnHandlerOptions{
		CallTimeout: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewTurnHandler() error = %v", err)
	}

	conv := chat.Conversation{
		{Role: chat.RoleUser, Content: "explain RICE"},
		{Role: chat.RoleAssistant, Content: "RICE stands for Rest, Ice, Compression, Elevation..."},
		{Role: chat.RoleUser, Content: "simplify that"},
	}
	h.Answer(context.Background(), conv)

	if rewriter.deadline.IsZero() || gate.deadline.IsZero() {
		t.Fatal("expected both the rewrite and the search to run with deadlines")
	}
	if !gate.deadline.After(rewriter.deadline) {
		t.Errorf("search deadline %v not after rewrite deadline %v; the search should get a fresh timeout window",
			gate.deadline, rewriter.deadline)
	}
}

func TestNewTurnHandlerValidation(t *testing.T) {
	if _, err := NewTurnHandler(nil, nil, NewMockLLM("x"), TurnHandlerOptions{}); err == nil {
		t.Error("expected error for nil gate")
	}
	if _, err := NewTurnHandler(nil, &mockGate{}, nil, TurnHandlerOptions{}); err == nil {
		t.Error("expected error for nil LLM")
	}
}
