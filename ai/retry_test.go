package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicgraph/schemematch/core"
)

type flakyEmbedder struct {
	failures int
	calls    int
}

func (e *flakyEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.calls <= e.failures {
		return nil, errors.New("service unavailable")
	}
	return []float32{1, 0, 0}, nil
}

func (e *flakyEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.calls <= e.failures {
		return nil, errors.New("service unavailable")
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

type flakyExtractor struct {
	failures int
	calls    int
}

func (e *flakyExtractor) ExtractFacts(ctx context.Context, text string) (core.SchemeFacts, error) {
	e.calls++
	if e.calls <= e.failures {
		return core.SchemeFacts{}, errors.New("service unavailable")
	}
	return core.SchemeFacts{SchemeName: "Test Scheme"}, nil
}

func fastPolicy(maxAttempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     maxAttempts,
		CallTimeout:     time.Second,
		InitialInterval: time.Millisecond,
	}
}

func TestRetryingEmbedder(t *testing.T) {
	t.Run("succeeds first try", func(t *testing.T) {
		inner := &flakyEmbedder{}
		embedder := NewRetryingEmbedder(inner, fastPolicy(3))

		vector, err := embedder.EmbedText(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, vector)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		inner := &flakyEmbedder{failures: 2}
		embedder := NewRetryingEmbedder(inner, fastPolicy(3))

		vector, err := embedder.EmbedText(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0, 0}, vector)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		inner := &flakyEmbedder{failures: 10}
		embedder := NewRetryingEmbedder(inner, fastPolicy(3))

		_, err := embedder.EmbedText(context.Background(), "hello")
		assert.Error(t, err)
		assert.Equal(t, 3, inner.calls)
	})

	t.Run("batch retries too", func(t *testing.T) {
		inner := &flakyEmbedder{failures: 1}
		embedder := NewRetryingEmbedder(inner, fastPolicy(3))

		vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "b"})
		require.NoError(t, err)
		assert.Len(t, vectors, 2)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		inner := &flakyEmbedder{failures: 10}
		embedder := NewRetryingEmbedder(inner, fastPolicy(5))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := embedder.EmbedText(ctx, "hello")
		assert.Error(t, err)
		assert.LessOrEqual(t, inner.calls, 1)
	})
}

func TestRetryingExtractor(t *testing.T) {
	t.Run("recovers after transient failures", func(t *testing.T) {
		inner := &flakyExtractor{failures: 1}
		extractor := NewRetryingExtractor(inner, fastPolicy(3))

		facts, err := extractor.ExtractFacts(context.Background(), "scheme text")
		require.NoError(t, err)
		assert.Equal(t, "Test Scheme", facts.SchemeName)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("surfaces error after max attempts", func(t *testing.T) {
		inner := &flakyExtractor{failures: 10}
		extractor := NewRetryingExtractor(inner, fastPolicy(2))

		_, err := extractor.ExtractFacts(context.Background(), "scheme text")
		assert.Error(t, err)
		assert.Equal(t, 2, inner.calls)
	})
}

func TestPolicyFromConfig(t *testing.T) {
	cfg := NewConfig(WithMaxAttempts(4), WithCallTimeout(5*time.Second))
	policy := PolicyFromConfig(cfg)

	assert.Equal(t, 4, policy.MaxAttempts)
	assert.Equal(t, 5*time.Second, policy.CallTimeout)
}

func TestPolicyNormalized(t *testing.T) {
	policy := RetryPolicy{}.normalized()

	assert.Equal(t, 1, policy.MaxAttempts)
	assert.Equal(t, 30*time.Second, policy.CallTimeout)
	assert.Equal(t, 200*time.Millisecond, policy.InitialInterval)
}
