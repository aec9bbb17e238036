package assistant

import (
	"context"
	"strings"
)

// MockLLM is a deterministic LLM implementation for testing.
// It returns predictable responses based on prompt content.
type MockLLM struct {
	// Response is the fixed text returned by Generate.
	// If empty, a default response is generated from the prompt.
	Response string

	// Error, if set, is returned by Generate instead of a response.
	Error error

	// LastPrompt stores the most recent prompt passed to Generate.
	LastPrompt string

	// Calls counts how many times Generate was invoked.
	Calls int
}

// NewMockLLM creates a mock LLM with the given fixed response.
func NewMockLLM(response string) *MockLLM {
	return &MockLLM{Response: response}
}

// NewMockLLMWithError creates a mock LLM that always returns an error.
func NewMockLLMWithError(err error) *MockLLM {
	return &MockLLM{Error: err}
}

// Generate returns the configured response or generates a deterministic one.
func (m *MockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	m.Calls++

	if m.Error != nil {
		return "", m.Error
	}

	if m.Response != "" {
		return m.Response, nil
	}

	return generateMockResponse(prompt), nil
}

// generateMockResponse creates a predictable answer from the prompt by
// echoing the user's latest message and whether documents were available.
func generateMockResponse(prompt string) string {
	var b strings.Builder

	b.WriteString("Mock answer")

	if latest := extractLatestMessage(prompt); latest != "" {
		b.WriteString(" to: " + latest)
	}

	if strings.Contains(prompt, noRelevantDocumentsMarker) {
		b.WriteString(" (no supporting documents)")
	} else {
		b.WriteString(" (grounded in supporting documents)")
	}

	return b.String()
}

func extractLatestMessage(prompt string) string {
	idx := strings.LastIndex(prompt, latestMessageHeader)
	if idx < 0 {
		return ""
	}
	remainder := prompt[idx+len(latestMessageHeader):]
	if split := strings.SplitN(remainder, "\n\n", 2); len(split) > 0 {
		remainder = split[0]
	}
	return strings.TrimSpace(remainder)
}
