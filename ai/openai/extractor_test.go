package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestPayloadToFacts(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		payload := schemeFactsPayload{
			SchemeName:         "  PM Kisan  ",
			Income:             bound{Max: floatPtr(200000)},
			Age:                bound{Min: floatPtr(18), Max: floatPtr(60)},
			EligibleGenders:    []string{"Female"},
			EligibleStates:     []string{"Karnataka", "Kerala"},
			EligibleCategories: []string{"SC", "ST"},
			Benefits:           []string{" cash transfer ", ""},
			ApplicationSteps:   []string{"apply online"},
		}

		facts := payload.toFacts()

		assert.Equal(t, "PM Kisan", facts.SchemeName)
		assert.Nil(t, facts.Criteria.MinIncome)
		require.NotNil(t, facts.Criteria.MaxIncome)
		assert.Equal(t, 200000.0, *facts.Criteria.MaxIncome)
		require.NotNil(t, facts.Criteria.MinAge)
		assert.Equal(t, 18, *facts.Criteria.MinAge)
		require.NotNil(t, facts.Criteria.MaxAge)
		assert.Equal(t, 60, *facts.Criteria.MaxAge)
		assert.Equal(t, []string{"female"}, facts.Criteria.Genders)
		assert.Equal(t, []string{"karnataka", "kerala"}, facts.Criteria.States)
		assert.Equal(t, []string{"sc", "st"}, facts.Criteria.Categories)
		assert.Equal(t, []string{"cash transfer"}, facts.Benefits)
	})

	t.Run("empty payload is unconstrained", func(t *testing.T) {
		facts := schemeFactsPayload{}.toFacts()

		assert.Equal(t, "Unknown Scheme", facts.SchemeName)
		assert.True(t, facts.Criteria.Unconstrained())
	})

	t.Run("all sentinel means no restriction", func(t *testing.T) {
		payload := schemeFactsPayload{
			SchemeName:         "Universal Scheme",
			EligibleGenders:    []string{"all"},
			EligibleStates:     []string{"All"},
			EligibleCategories: []string{"any"},
		}

		facts := payload.toFacts()

		assert.Nil(t, facts.Criteria.Genders)
		assert.Nil(t, facts.Criteria.States)
		assert.Nil(t, facts.Criteria.Categories)
		assert.True(t, facts.Criteria.Unconstrained())
	})
}

func TestNormalizeSet(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil input", nil, nil},
		{"empty input", []string{}, nil},
		{"lowercases and trims", []string{" Female ", "MALE"}, []string{"female", "male"}},
		{"all sentinel collapses", []string{"female", "all"}, nil},
		{"any sentinel collapses", []string{"ANY"}, nil},
		{"blank entries dropped", []string{"", "  ", "sc"}, []string{"sc"}},
		{"only blanks collapses to nil", []string{"", "  "}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalizeSet(tt.input))
		})
	}
}

func TestPermissiveFacts(t *testing.T) {
	facts := permissiveFacts()

	assert.Equal(t, "Unknown Scheme", facts.SchemeName)
	assert.True(t, facts.Criteria.Unconstrained())
}
