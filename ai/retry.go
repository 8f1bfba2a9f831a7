package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/civicgraph/schemematch/core"
)

// RetryPolicy bounds how external calls are retried. Every call gets its own
// timeout; a call that keeps failing is given up after MaxAttempts so the
// pipeline can degrade to its safe default instead of blocking a request.
type RetryPolicy struct {
	MaxAttempts     int
	CallTimeout     time.Duration
	InitialInterval time.Duration
}

// PolicyFromConfig derives the retry policy from an ai.Config.
func PolicyFromConfig(config *Config) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: config.MaxAttempts,
		CallTimeout: config.CallTimeout,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.CallTimeout <= 0 {
		p.CallTimeout = 30 * time.Second
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = 200 * time.Millisecond
	}
	return p
}

// retry runs op with per-attempt timeouts and capped exponential backoff.
// Cancelling ctx stops retrying immediately.
func (p RetryPolicy) retry(ctx context.Context, op func(ctx context.Context) error) error {
	attempt := func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.CallTimeout)
		defer cancel()
		return op(callCtx)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	return backoff.Retry(attempt,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(p.MaxAttempts-1)), ctx))
}

// retryingEmbedder decorates an Embedder with the retry policy.
type retryingEmbedder struct {
	inner  Embedder
	policy RetryPolicy
	logger *slog.Logger
}

// NewRetryingEmbedder wraps inner so every embedding call is retried per the
// policy before its error is surfaced.
func NewRetryingEmbedder(inner Embedder, policy RetryPolicy) Embedder {
	return &retryingEmbedder{
		inner:  inner,
		policy: policy.normalized(),
		logger: slog.Default().With("component", "retrying-embedder"),
	}
}

func (e *retryingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := e.policy.retry(ctx, func(ctx context.Context) error {
		var opErr error
		vector, opErr = e.inner.EmbedText(ctx, text)
		if opErr != nil {
			e.logger.Debug("embedding attempt failed", "err", opErr)
		}
		return opErr
	})
	return vector, err
}

func (e *retryingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := e.policy.retry(ctx, func(ctx context.Context) error {
		var opErr error
		vectors, opErr = e.inner.EmbedTexts(ctx, texts)
		return opErr
	})
	return vectors, err
}

// retryingExtractor decorates a SchemeExtractor with the retry policy.
type retryingExtractor struct {
	inner  SchemeExtractor
	policy RetryPolicy
	logger *slog.Logger
}

// NewRetryingExtractor wraps inner so every extraction call is retried per
// the policy before its error is surfaced.
func NewRetryingExtractor(inner SchemeExtractor, policy RetryPolicy) SchemeExtractor {
	return &retryingExtractor{
		inner:  inner,
		policy: policy.normalized(),
		logger: slog.Default().With("component", "retrying-extractor"),
	}
}

func (e *retryingExtractor) ExtractFacts(ctx context.Context, text string) (core.SchemeFacts, error) {
	var facts core.SchemeFacts
	err := e.policy.retry(ctx, func(ctx context.Context) error {
		var opErr error
		facts, opErr = e.inner.ExtractFacts(ctx, text)
		if opErr != nil {
			e.logger.Debug("extraction attempt failed", "err", opErr)
		}
		return opErr
	})
	return facts, err
}
