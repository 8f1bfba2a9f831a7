package ai

import (
	"context"

	"github.com/civicgraph/schemematch/core"
)

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SchemeExtractor converts unstructured scheme text into structured,
// checkable facts: the scheme name, hard eligibility criteria, benefits,
// and application steps.
//
// Implementations must report failures honestly; the matching pipeline is
// responsible for degrading a failed extraction to permissive criteria so
// that an extraction failure never disqualifies a scheme.
// Implementations must be thread-safe for concurrent use.
type SchemeExtractor interface {
	// ExtractFacts analyzes one scheme text fragment. Fields the text does
	// not mention come back unset, meaning unconstrained — never "fails by
	// default".
	ExtractFacts(ctx context.Context, text string) (core.SchemeFacts, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// SchemeExtractor returns the scheme-fact extraction service.
	// The returned SchemeExtractor is safe for concurrent use.
	SchemeExtractor() SchemeExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
