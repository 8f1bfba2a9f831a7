// Package mock provides test double implementations of the ai interfaces.
//
// The mocks allow the matching pipeline to be tested without external AI
// services, with controlled deterministic behavior.
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	vector, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
// Default behavior:
//
//   - MockEmbedder: deterministic vectors derived from a text hash
//   - MockSchemeExtractor: shallow keyword parsing of the scheme text,
//     enough to drive income/state/category scenarios in tests
//   - MockProvider: aggregates both
package mock
