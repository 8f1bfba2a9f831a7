package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "valid json unchanged",
			input:    `{"scheme_name": "Test", "income": {"min": null, "max": 100000}}`,
			expected: `{"scheme_name": "Test", "income": {"min": null, "max": 100000}}`,
		},
		{
			name:     "missing opening quote on first key",
			input:    `{scheme_name": "Test"}`,
			expected: `{"scheme_name": "Test"}`,
		},
		{
			name:     "missing opening quote after comma",
			input:    `{"min": 1, max": 2}`,
			expected: `{"min": 1, "max": 2}`,
		},
		{
			name:     "missing opening quote with newline",
			input:    "{\n  min\": 1\n}",
			expected: "{\n  \"min\": 1\n}",
		},
		{
			name:     "trailing comma in object",
			input:    `{"a": 1,}`,
			expected: `{"a": 1}`,
		},
		{
			name:     "trailing comma in array",
			input:    `{"benefits": ["a", "b",]}`,
			expected: `{"benefits": ["a", "b"]}`,
		},
		{
			name:     "empty object",
			input:    `{}`,
			expected: `{}`,
		},
		{
			name:     "non-json passes through",
			input:    `not json at all`,
			expected: `not json at all`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, repairJSON(tt.input))
		})
	}
}

func TestRepairJSONProducesParsableOutput(t *testing.T) {
	broken := `{scheme_name": "Widow Pension", income": {"min": null, max": 200000,}, "eligible_genders": ["female",]}`

	var payload schemeFactsPayload
	err := json.Unmarshal([]byte(repairJSON(broken)), &payload)
	require.NoError(t, err)

	assert.Equal(t, "Widow Pension", payload.SchemeName)
	require.NotNil(t, payload.Income.Max)
	assert.Equal(t, 200000.0, *payload.Income.Max)
	assert.Equal(t, []string{"female"}, payload.EligibleGenders)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, stripCodeFences("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripCodeFences("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, stripCodeFences(`{"a": 1}`))
}
