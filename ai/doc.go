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


// Package ai provides abstractions for the external AI services the matching
// engine depends on: text embedding and structured scheme-fact extraction.
//
// The matching pipeline depends only on the interfaces declared here, so the
// deterministic eligibility logic stays testable without invoking any model.
//
//   - Embedder: converts text to a fixed-length vector
//   - SchemeExtractor: converts unstructured scheme text into core.SchemeFacts
//   - AIProvider: aggregates both for convenient initialization
//
// Two implementation sub-packages exist:
//
//   - ai/openai: production implementation against OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles
//
// Production constructors return interface types to enforce abstraction; mock
// constructors return concrete types so tests can inject behavior and assert
// call counts.
//
// The package also ships two decorators that compose over any Embedder or
// SchemeExtractor: NewRetryingEmbedder / NewRetryingExtractor add bounded
// retries with a per-call timeout, and NewCachingEmbedder adds a shared
// read-through embedding cache. A given text always maps to the same vector,
// so the cache is idempotent and needs no invalidation.
package ai
