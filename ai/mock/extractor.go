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
	"context"
	"strings"
	"sync"

	"github.com/civicgraph/schemematch/core"
)

// MockSchemeExtractor is a configurable test double for ai.SchemeExtractor.
type MockSchemeExtractor struct {
	ExtractFactsFunc func(ctx context.Context, text string) (core.SchemeFacts, error)

	mu        sync.Mutex
	callCount int
}

// NewMockSchemeExtractor returns a MockSchemeExtractor whose default
// behavior derives criteria from simple keyword cues in the text.
func NewMockSchemeExtractor() *MockSchemeExtractor {
	return &MockSchemeExtractor{}
}

func (m *MockSchemeExtractor) ExtractFacts(ctx context.Context, text string) (core.SchemeFacts, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
	if m.ExtractFactsFunc != nil {
		return m.ExtractFactsFunc(ctx, text)
	}
	return KeywordFacts(text), nil
}

// CallCount returns how many extraction calls were made.
func (m *MockSchemeExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call counter.
func (m *MockSchemeExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
}

// KeywordFacts derives SchemeFacts from coarse keyword cues. It is not a
// real extractor; it exists so pipeline tests can exercise restricted and
// unrestricted criteria without an LLM.
func KeywordFacts(text string) core.SchemeFacts {
	lower := strings.ToLower(text)
	facts := core.SchemeFacts{Criteria: core.PermissiveCriteria()}

	if strings.Contains(lower, "women") || strings.Contains(lower, "female") {
		facts.Criteria.Genders = []string{string(core.GenderFemale)}
	}
	if strings.Contains(lower, "scheduled caste") {
		facts.Criteria.Categories = []string{string(core.CategorySC)}
	}
	if strings.Contains(lower, "below poverty line") || strings.Contains(lower, "low income") {
		max := 100000.0
		facts.Criteria.MaxIncome = &max
	}
	if strings.Contains(lower, "senior citizen") {
		min := 60
		facts.Criteria.MinAge = &min
	}
	if strings.Contains(lower, "student") {
		min, max := 16, 30
		facts.Criteria.MinAge = &min
		facts.Criteria.MaxAge = &max
	}
	for _, state := range core.IndianStates {
		if strings.Contains(lower, state+" government") || strings.Contains(lower, "government of "+state) {
			facts.Criteria.States = append(facts.Criteria.States, state)
		}
	}
	return facts
}
