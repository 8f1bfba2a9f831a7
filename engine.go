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


package schemematch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/civicgraph/schemematch/ai"
	"github.com/civicgraph/schemematch/ai/openai"
	"github.com/civicgraph/schemematch/core"
	"github.com/civicgraph/schemematch/match"
	"github.com/civicgraph/schemematch/storage"
	"github.com/civicgraph/schemematch/storage/badger"
)

// Engine owns the storage backend, the AI provider, and the wiring between
// them. It is the single entry point for embedding scheme documents and
// serving match requests.
type Engine struct {
	backend    *badger.Backend
	schemeRepo storage.SchemeRepository
	provider   ai.AIProvider
	aiConfig   *ai.Config
	logger     *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	inMemory bool
}

// WithAIConfig sets the AI service configuration used to build the provider.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider, bypassing config-based
// construction. The engine takes ownership and closes it on Close.
func WithAIProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps all data in memory. The filePath argument is
// ignored. Intended for tests and experiments.
func WithInMemoryStorage() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// NewEngine opens (or creates) the scheme store at filePath and constructs
// the AI provider.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	schemeRepo, err := badger.NewSchemeRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	return &Engine{
		backend:    backend,
		schemeRepo: schemeRepo,
		provider:   provider,
		aiConfig:   options.aiConfig,
		logger:     slog.Default().With("component", "engine"),
	}, nil
}

// Close releases the AI provider and the storage backend.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing storage backend", "err", err)
		return err
	}
	return nil
}

// SchemeRepository exposes the underlying scheme document store.
func (e *Engine) SchemeRepository() storage.SchemeRepository {
	return e.schemeRepo
}

// NewMatcher builds a matcher over the engine's repository and provider.
func (e *Engine) NewMatcher(opts ...match.Option) (*match.Matcher, error) {
	return match.NewMatcher(e.schemeRepo, e.provider, opts...)
}

// SeedScheme is one pre-chunked scheme text to be embedded and stored.
type SeedScheme struct {
	SchemeName string `json:"scheme_name"`
	Text       string `json:"text"`
	SourceFile string `json:"source_file"`
}

// SeedSchemes embeds the given scheme texts and stores them along with index
// metadata recording which embedding model produced the vectors. Documents
// are content-addressed, so re-seeding the same texts is idempotent.
func (e *Engine) SeedSchemes(ctx context.Context, schemes []SeedScheme) (int, error) {
	if len(schemes) == 0 {
		return 0, nil
	}

	docs := make([]*core.SchemeDocument, 0, len(schemes))
	texts := make([]string, 0, len(schemes))
	for _, s := range schemes {
		doc := &core.SchemeDocument{
			SchemeName: s.SchemeName,
			Text:       s.Text,
			SourceFile: s.SourceFile,
		}
		if err := core.ValidateSchemeDocument(doc); err != nil {
			return 0, err
		}
		docs = append(docs, doc)
		texts = append(texts, s.Text)
	}

	vectors, err := e.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding scheme texts: %w", err)
	}
	if len(vectors) != len(docs) {
		return 0, fmt.Errorf("embedding returned %d vectors for %d documents", len(vectors), len(docs))
	}
	for i, doc := range docs {
		doc.Vector = vectors[i]
	}

	added, err := e.schemeRepo.AddSchemeDocuments(ctx, docs...)
	if err != nil {
		return 0, err
	}

	info := &core.IndexInfo{
		EmbeddingModel: e.aiConfig.EmbeddingModel,
		UpdatedAt:      time.Now().UTC(),
	}
	if len(vectors) > 0 {
		info.Dimension = len(vectors[0])
	}
	if err := e.schemeRepo.PutIndexInfo(ctx, info); err != nil {
		return len(added), err
	}

	e.logger.Info("seeded scheme documents",
		"count", len(added), "model", info.EmbeddingModel, "dimension", info.Dimension)
	return len(added), nil
}

// CheckIndex verifies that the stored vectors were produced by the embedding
// model the engine is configured with. An unseeded store passes the check;
// a model mismatch returns storage.ErrIndexMismatch.
func (e *Engine) CheckIndex(ctx context.Context) error {
	info, err := e.schemeRepo.GetIndexInfo(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	if info.EmbeddingModel != e.aiConfig.EmbeddingModel {
		return fmt.Errorf("%w: index built with %q, configured model is %q",
			storage.ErrIndexMismatch, info.EmbeddingModel, e.aiConfig.EmbeddingModel)
	}
	return nil
}

// Search embeds the query and returns raw similarity matches without any
// eligibility reasoning. It backs the diagnostic search command.
func (e *Engine) Search(ctx context.Context, query string, minScore float32, limit int) ([]*core.SimilarityMatch, error) {
	vector, err := e.provider.Embedder().EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return e.schemeRepo.FindSimilar(ctx, vector, minScore, limit)
}
