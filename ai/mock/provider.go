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


package mock

import (
	"github.com/civicgraph/schemematch/ai"
)

// MockProvider aggregates mock AI services behind the ai.AIProvider
// interface.
type MockProvider struct {
	embedder  *MockEmbedder
	extractor *MockSchemeExtractor
}

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() ai.AIProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		extractor: NewMockSchemeExtractor(),
	}
}

// NewMockProviderWithServices creates a provider around caller-supplied
// mocks, letting a test configure behavior before wiring.
func NewMockProviderWithServices(embedder *MockEmbedder, extractor *MockSchemeExtractor) ai.AIProvider {
	return &MockProvider{
		embedder:  embedder,
		extractor: extractor,
	}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *MockProvider) SchemeExtractor() ai.SchemeExtractor {
	return p.extractor
}

func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder exposes the concrete mock for test configuration.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockExtractor exposes the concrete mock for test configuration.
func (p *MockProvider) GetMockExtractor() *MockSchemeExtractor {
	return p.extractor
}
