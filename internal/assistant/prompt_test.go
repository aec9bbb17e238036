package assistant

import (
	"strings"
	"testing"
)

func TestComposePromptBlockOrder(t *testing.T) {
	prompt := ComposePrompt(
		DefaultPromptPolicy(),
		"User: explain RICE\nAssistant: Rest, Ice, Compression, Elevation.",
		"Rest, Ice, Compression, Elevation. Apply ice for 15-20 minutes.",
		"simplify that",
	)

	rules := strings.Index(prompt, "CliniBot")
	history := strings.Index(prompt, "CONVERSATIONAL HISTORY:")
	docs := strings.Index(prompt, "RELEVANT DOCUMENTS:")
	latest := strings.Index(prompt, "simplify that")
	closing := strings.Index(prompt, "Answer now.")

	if rules < 0 || history < 0 || docs < 0 || latest < 0 || closing < 0 {
		t.Fatalf("missing block in prompt:\n%s", prompt)
	}
	if !(rules < history && history < docs && docs < latest && latest < closing) {
		t.Errorf("blocks out of order: rules=%d history=%d docs=%d latest=%d closing=%d",
			rules, history, docs, latest, closing)
	}
}

func TestComposePromptNoContextMarker(t *testing.T) {
	prompt := ComposePrompt(DefaultPromptPolicy(), "", "", "what is the RICE method")

	if !strings.Contains(prompt, noRelevantDocumentsMarker) {
		t.Error("missing explicit no-documents marker")
	}
	if !strings.Contains(prompt, "CONVERSATIONAL HISTORY:\n(none)") {
		t.Error("empty history not marked")
	}
}

func TestComposePromptContextVerbatim(t *testing.T) {
	context := "Rest, Ice, Compression, Elevation.\nIce reduces swelling."
	prompt := ComposePrompt(DefaultPromptPolicy(), "", context, "explain RICE")

	if !strings.Contains(prompt, context) {
		t.Error("retrieved context not embedded verbatim")
	}
	if strings.Contains(prompt, noRelevantDocumentsMarker) {
		t.Error("no-documents marker present despite context")
	}
}

func TestComposePromptDeterministic(t *testing.T) {
	a := ComposePrompt(DefaultPromptPolicy(), "User: hi", "ctx", "question")
	b := ComposePrompt(DefaultPromptPolicy(), "User: hi", "ctx", "question")
	if a != b {
		t.Error("identical inputs produced different prompts")
	}
}

func TestDefaultPersonaSafetyRules(t *testing.T) {
	rules := DefaultPromptPolicy().Rules
	checks := []string{
		"NEVER diagnose",
		"NEVER ask for personal",
		"no relevant documents were found",
	}
	lower := strings.ToLower(rules)
	for _, c := range checks {
		if !strings.Contains(lower, strings.ToLower(c)) {
			t.Errorf("persona rules missing %q", c)
		}
	}
}
