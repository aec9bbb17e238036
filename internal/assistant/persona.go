package assistant

import (
	"fmt"
	"os"
	"strings"
)

// defaultPersonaRules is the built-in CliniBot persona. The rules block is
// the first section of every composed prompt and carries the safety
// constraints the assistant must never violate.
const defaultPersonaRules = `You are "CliniBot," an expert AI assistant for a physical therapy clinic. Your persona is professional, knowledgeable, and empathetic.
Your primary goal is to answer the user's question based on the provided CONTEXT.

Your Rules:
- You MUST base your answers on the information found in the CONTEXT.
- If the CONTEXT says no relevant documents were found, state that the topic is outside your scope and then proactively suggest topics you can help with.
- NEVER diagnose, prescribe, or give medical advice that is not explicitly in the CONTEXT.
- NEVER ask for personal or health-history information.`

// PromptPolicy is the prompt configuration selected at startup. Keeping the
// variant in one object avoids scattering persona text across call sites.
type PromptPolicy struct {
	// Rules is the persona block placed at the top of every prompt.
	Rules string
}

// DefaultPromptPolicy returns the built-in CliniBot persona.
func DefaultPromptPolicy() PromptPolicy {
	return PromptPolicy{Rules: defaultPersonaRules}
}

// LoadPromptPolicy reads persona rules from a file, falling back to the
// default policy when the path is empty.
func LoadPromptPolicy(path string) (PromptPolicy, error) {
	if path == "" {
		return DefaultPromptPolicy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptPolicy{}, fmt.Errorf("failed to read persona file: %w", err)
	}
	rules := strings.TrimSpace(string(data))
	if rules == "" {
		return PromptPolicy{}, fmt.Errorf("persona file %s is empty", path)
	}
	return PromptPolicy{Rules: rules}, nil
}
