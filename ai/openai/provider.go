// Copyright 2025 CivicGraph Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"log/slog"

	"github.com/civicgraph/schemematch/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// The embedder is wrapped with retry and a shared read-through cache; the
// extractor with retry. Both honour the config's call timeout.
type Provider struct {
	config    *ai.Config
	embedder  ai.Embedder
	extractor ai.SchemeExtractor
	logger    *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	policy := ai.PolicyFromConfig(config)

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	cached, err := ai.NewCachingEmbedder(ai.NewRetryingEmbedder(embedder, policy))
	if err != nil {
		return nil, err
	}

	extractor, err := newSchemeExtractor(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:    config,
		embedder:  cached,
		extractor: ai.NewRetryingExtractor(extractor, policy),
		logger:    slog.Default().With("component", "openai-provider"),
	}, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// SchemeExtractor returns the scheme-fact extraction service.
func (p *Provider) SchemeExtractor() ai.SchemeExtractor {
	return p.extractor
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
