package match

import (
	"context"
	"log/slog"

	"github.com/civicgraph/schemematch/ai"
	"github.com/civicgraph/schemematch/core"
	"github.com/civicgraph/schemematch/storage"
)

// Retriever fetches candidate scheme fragments for query variations.
type Retriever struct {
	repository storage.SchemeRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// NewRetriever creates a retriever over the given repository and embedder.
func NewRetriever(repository storage.SchemeRepository, embedder ai.Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default().With("component", "retriever")
	}
	return &Retriever{
		repository: repository,
		embedder:   embedder,
		logger:     logger,
	}
}

// Retrieve embeds each query variation and collects similar scheme documents
// above minScore, concatenated in variation order. A failing variation is
// logged and skipped; only context cancellation is returned as an error. If
// every variation fails the result is an empty slice, which the caller treats
// as a recoverable "no candidates" condition.
func (r *Retriever) Retrieve(ctx context.Context, variations []string, topKPerQuery int, minScore float32) ([]core.SchemeCandidate, error) {
	candidates := make([]core.SchemeCandidate, 0, len(variations)*topKPerQuery)

	for _, variation := range variations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		vector, err := r.embedder.EmbedText(ctx, variation)
		if err != nil {
			r.logger.Warn("skipping query variation, embedding failed", "variation", variation, "err", err)
			continue
		}

		matches, err := r.repository.FindSimilar(ctx, vector, minScore, topKPerQuery)
		if err != nil {
			r.logger.Warn("skipping query variation, similarity search failed", "variation", variation, "err", err)
			continue
		}

		for _, m := range matches {
			if m.Document == nil || m.Document.Text == "" {
				r.logger.Debug("dropping candidate without text", "variation", variation)
				continue
			}
			name := m.Document.SchemeName
			if name == "" {
				name = "Unknown Scheme"
			}
			candidates = append(candidates, core.SchemeCandidate{
				SchemeName: name,
				Text:       m.Document.Text,
				SourceFile: m.Document.SourceFile,
				Score:      m.Score,
				Vector:     m.Document.Vector,
				Query:      variation,
			})
		}
	}

	return candidates, nil
}
