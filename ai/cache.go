package ai

import (
	"context"
	"log/slog"

	"github.com/dgraph-io/ristretto/v2"
)

const defaultCacheMaxCost = 64 << 20 // 64 MiB of cached vectors

// cachingEmbedder is a read-through embedding cache. A given text always
// maps to the same vector, so entries are idempotent and never invalidated.
// Safe to share across concurrent matching requests.
type cachingEmbedder struct {
	inner  Embedder
	cache  *ristretto.Cache[string, []float32]
	logger *slog.Logger
}

// NewCachingEmbedder wraps inner with a shared in-process vector cache.
// The cache is a performance optimization only; correctness never depends
// on a hit.
func NewCachingEmbedder(inner Embedder) (Embedder, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: 100_000,
		MaxCost:     defaultCacheMaxCost,
		BufferItems: 64,
		Cost: func(vector []float32) int64 {
			return int64(len(vector) * 4)
		},
	})
	if err != nil {
		return nil, err
	}
	return &cachingEmbedder{
		inner:  inner,
		cache:  cache,
		logger: slog.Default().With("component", "caching-embedder"),
	}, nil
}

func (e *cachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if vector, ok := e.cache.Get(text); ok {
		return vector, nil
	}
	vector, err := e.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	// A request cancelled mid-flight must not poison the cache.
	if len(vector) > 0 && ctx.Err() == nil {
		e.cache.Set(text, vector, 0)
	}
	return vector, nil
}

func (e *cachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	missing := make([]string, 0, len(texts))
	missingAt := make([]int, 0, len(texts))

	for i, text := range texts {
		if vector, ok := e.cache.Get(text); ok {
			vectors[i] = vector
			continue
		}
		missing = append(missing, text)
		missingAt = append(missingAt, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	fetched, err := e.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fetched) != len(missing) {
		e.logger.Warn("embedder returned unexpected batch size", "want", len(missing), "got", len(fetched))
	}
	for i, vector := range fetched {
		if i >= len(missingAt) {
			break
		}
		vectors[missingAt[i]] = vector
		if len(vector) > 0 && ctx.Err() == nil {
			e.cache.Set(missing[i], vector, 0)
		}
	}
	return vectors, nil
}
