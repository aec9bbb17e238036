package assistant

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/restore-pt/clinibot/internal/chat"
	"github.com/restore-pt/clinibot/internal/observability"
	"github.com/restore-pt/clinibot/internal/rag"
)

// Outcome classifies how a turn ended. Every outcome still carries a
// user-facing answer; only configuration failures at startup can prevent a
// turn from being answered at all.
type Outcome string

const (
	OutcomeAnswered         Outcome = "answered"
	OutcomeEmptyMessage     Outcome = "empty_message"
	OutcomeGenerationFailed Outcome = "generation_failed"
)

const (
	promptToTypeAnswer = "Please type a message."

	apologeticAnswer = "I'm sorry, I wasn't able to put an answer together just now. Please try again in a moment."
)

// Result is the output of one conversation turn.
type Result struct {
	Answer  string  `json:"answer"`
	Outcome Outcome `json:"-"`
}

// ContextGate is the retrieval collaborator consumed by the turn handler.
type ContextGate interface {
	Context(ctx context.Context, query string) (string, rag.GateOutcome)
}

// TurnHandlerOptions carries the optional collaborators and tuning knobs.
type TurnHandlerOptions struct {
	Policy PromptPolicy

	// CallTimeout bounds each external call. Zero disables the bound.
	CallTimeout time.Duration

	// Metrics and Tracer may be nil; the handler guards every use.
	Metrics *observability.Metrics
	Tracer  observability.TraceRecorder
}

// TurnHandler orchestrates one conversation turn: validate, formulate,
// retrieve, compose, generate. Formulation and retrieval failures degrade
// rather than aborting the turn; a generation failure produces an apologetic
// answer instead of an error, so the chat never hard-fails mid-conversation.
type TurnHandler struct {
	formulator *QueryFormulator
	gate       ContextGate
	llm        LLM
	opts       TurnHandlerOptions
}

// NewTurnHandler creates a turn handler. The gate and LLM are required.
func NewTurnHandler(formulator *QueryFormulator, gate ContextGate, llm LLM, opts TurnHandlerOptions) (*TurnHandler, error) {
	if gate == nil {
		return nil, fmt.Errorf("context gate cannot be nil")
	}
	if llm == nil {
		return nil, fmt.Errorf("LLM cannot be nil")
	}
	if formulator == nil {
		formulator = NewQueryFormulator(nil)
	}
	if opts.Policy.Rules == "" {
		opts.Policy = DefaultPromptPolicy()
	}
	return &TurnHandler{
		formulator: formulator,
		gate:       gate,
		llm:        llm,
		opts:       opts,
	}, nil
}

// Answer runs the pipeline for one turn and always returns a user-safe
// result.
func (h *TurnHandler) Answer(ctx context.Context, conv chat.Conversation) Result {
	latest := conv.LatestMessage()
	if latest == "" {
		// No external calls for an empty message.
		h.countTurn(OutcomeEmptyMessage)
		return Result{Answer: promptToTypeAnswer, Outcome: OutcomeEmptyMessage}
	}

	trace := observability.StartTurn(h.opts.Tracer, latest)

	contextBlock := ""
	if chat.Classify(latest) == chat.IntentInformationRequest {
		contextBlock = h.retrieve(ctx, conv, trace)
	}

	prompt := ComposePrompt(h.opts.Policy, chat.FormatHistory(conv.History()), contextBlock, latest)

	start := time.Now()
	genCtx, cancel := h.boundedContext(ctx)
	answer, err := h.llm.Generate(genCtx, prompt)
	cancel()
	h.observeStage("generation", start)

	if err != nil {
		log.Printf("[turn] generation failed: %v", err)
		trace.End("", err)
		h.countTurn(OutcomeGenerationFailed)
		return Result{Answer: apologeticAnswer, Outcome: OutcomeGenerationFailed}
	}

	trace.GenerationSpan(len(prompt), answer)
	trace.End(answer, nil)
	h.countTurn(OutcomeAnswered)
	return Result{Answer: answer, Outcome: OutcomeAnswered}
}

// retrieve formulates the search query and runs it through the gate. Both
// steps degrade to "no context" on failure. Each step gets its own timeout
// window, so a slow rewrite cannot starve the search of its budget.
func (h *TurnHandler) retrieve(ctx context.Context, conv chat.Conversation, trace observability.TurnTrace) string {
	start := time.Now()

	rewriteCtx, cancel := h.boundedContext(ctx)
	query := h.formulator.Formulate(rewriteCtx, conv)
	cancel()

	searchCtx, cancel := h.boundedContext(ctx)
	contextBlock, outcome := h.gate.Context(searchCtx, query)
	cancel()

	h.observeStage("retrieval", start)

	if m := h.opts.Metrics; m != nil {
		m.RetrievalGate.WithLabelValues(string(outcome)).Inc()
	}
	trace.RetrievalSpan(query, contextBlock)

	return contextBlock
}

func (h *TurnHandler) boundedContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.opts.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.opts.CallTimeout)
}

func (h *TurnHandler) countTurn(outcome Outcome) {
	if m := h.opts.Metrics; m != nil {
		m.TurnsTotal.WithLabelValues(string(outcome)).Inc()
	}
}

func (h *TurnHandler) observeStage(stage string, start time.Time) {
	if m := h.opts.Metrics; m != nil {
		m.ObserveStage(stage, time.Since(start))
	}
}
