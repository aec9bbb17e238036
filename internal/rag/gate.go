package rag

import (
	"context"
	"log"
	"math"
	"strings"
)

// GateOutcome records how the retrieval gate resolved a query.
type GateOutcome string

const (
	// GateHit means the top match cleared the similarity threshold and its
	// text was surfaced as context.
	GateHit GateOutcome = "hit"

	// GateMiss means the search returned nothing usable: no matches, or a
	// top score below the threshold. Treated identically to empty results.
	GateMiss GateOutcome = "miss"

	// GateDegraded means an embedding or search call failed and the gate
	// fell back to no context.
	GateDegraded GateOutcome = "degraded"
)

// Gate wraps a Retriever with a fixed similarity threshold. It never returns
// an error: retrieval failures degrade to "no context" so a broken vector
// store can never break the chat.
type Gate struct {
	retriever *Retriever
	threshold float32
	topK      int
}

// NewGate creates a retrieval gate. The threshold is a global constant for
// the life of the process, configured at startup.
func NewGate(retriever *Retriever, threshold float64, topK int) *Gate {
	return &Gate{
		retriever: retriever,
		threshold: float32(threshold),
		topK:      topK,
	}
}

// Context runs a gated similarity search for the query. When the top match
// scores at or above the threshold, the matched chunk texts are joined by
// newlines in ranked order; otherwise the context is empty.
func (g *Gate) Context(ctx context.Context, query string) (string, GateOutcome) {
	matches, err := g.retriever.Retrieve(ctx, query, g.topK)
	if err != nil {
		log.Printf("[retrieval gate] degraded to no context: %v", err)
		return "", GateDegraded
	}

	if len(matches) == 0 {
		return "", GateMiss
	}

	top := matches[0].Score
	// Malformed scores (NaN from a bad metadata round-trip) count as
	// below-threshold rather than crashing the turn.
	if math.IsNaN(float64(top)) || top < g.threshold {
		return "", GateMiss
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Text == "" {
			continue
		}
		texts = append(texts, m.Text)
	}
	if len(texts) == 0 {
		return "", GateMiss
	}

	return strings.Join(texts, "\n"), GateHit
}
