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
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/civicgraph/schemematch/ai"
	"github.com/civicgraph/schemematch/core"
)

// SchemeExtractor implements ai.SchemeExtractor using OpenAI-compatible chat APIs.
type SchemeExtractor struct {
	client llms.Model
	logger *slog.Logger
}

// bound is an internal type used for JSON unmarshaling of an optional range.
type bound struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

// schemeFactsPayload matches the JSON structure the model is prompted for.
type schemeFactsPayload struct {
	SchemeName         string   `json:"scheme_name"`
	Income             bound    `json:"income"`
	Age                bound    `json:"age"`
	EligibleGenders    []string `json:"eligible_genders"`
	EligibleStates     []string `json:"eligible_states"`
	EligibleCategories []string `json:"eligible_categories"`
	Benefits           []string `json:"benefits"`
	ApplicationSteps   []string `json:"application_steps"`
}

// newSchemeExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSchemeExtractor(config *ai.Config) (*SchemeExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ExtractorHost),
		openai.WithToken("none"),
		openai.WithModel(config.ExtractorModel),
	)
	if err != nil {
		return nil, err
	}

	return &SchemeExtractor{
		client: client,
		logger: slog.Default().With("component", "openai-extractor"),
	}, nil
}

// NewSchemeExtractor creates a new scheme-fact extractor using the provided
// configuration.
//
// Returns ai.SchemeExtractor interface to enforce abstraction.
func NewSchemeExtractor(config *ai.Config) (ai.SchemeExtractor, error) {
	return newSchemeExtractor(config)
}

// ExtractFacts extracts structured scheme facts from text using an LLM in
// JSON mode. Malformed replies are repaired and re-requested a bounded
// number of times before the error is surfaced.
func (e *SchemeExtractor) ExtractFacts(ctx context.Context, text string) (core.SchemeFacts, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(extractionSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var payload schemeFactsPayload
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return core.SchemeFacts{}, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return permissiveFacts(), nil
		}

		responseText := stripCodeFences(response.Choices[0].Content)
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &payload); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extractor response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extractor response after retries", "err", lastErr)
		return core.SchemeFacts{}, lastErr
	}

	return payload.toFacts(), nil
}

// toFacts converts the wire payload into domain facts, folding the "all"
// sentinel into the unconstrained (empty) representation.
func (p schemeFactsPayload) toFacts() core.SchemeFacts {
	name := strings.TrimSpace(p.SchemeName)
	if name == "" {
		name = "Unknown Scheme"
	}
	facts := core.SchemeFacts{
		SchemeName:       name,
		Benefits:         trimAll(p.Benefits),
		ApplicationSteps: trimAll(p.ApplicationSteps),
		Criteria: core.HardCriteria{
			MinIncome:  p.Income.Min,
			MaxIncome:  p.Income.Max,
			Genders:    normalizeSet(p.EligibleGenders),
			States:     normalizeSet(p.EligibleStates),
			Categories: normalizeSet(p.EligibleCategories),
		},
	}
	if p.Age.Min != nil {
		min := int(*p.Age.Min)
		facts.Criteria.MinAge = &min
	}
	if p.Age.Max != nil {
		max := int(*p.Age.Max)
		facts.Criteria.MaxAge = &max
	}
	return facts
}

// normalizeSet lowercases entries and collapses the "all" sentinel (or an
// empty list) into nil, meaning no restriction.
func normalizeSet(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if v == "all" || v == "any" {
			return nil
		}
		cleaned = append(cleaned, v)
	}
	if len(cleaned) == 0 {
		return nil
	}
	return cleaned
}

func trimAll(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}

func permissiveFacts() core.SchemeFacts {
	return core.SchemeFacts{SchemeName: "Unknown Scheme", Criteria: core.PermissiveCriteria()}
}

// stripCodeFences removes a surrounding markdown code fence, which some
// models emit even in JSON mode.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
