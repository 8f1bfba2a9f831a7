package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegionApplicable(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		userState  string
		applicable bool
	}{
		{
			name:       "unspecified state matches everything",
			text:       "Karnataka government subsidy for weavers",
			userState:  "",
			applicable: true,
		},
		{
			name:       "unspecified sentinel matches everything",
			text:       "Karnataka government subsidy for weavers",
			userState:  "unspecified",
			applicable: true,
		},
		{
			name:       "central scheme overrides other state mention",
			text:       "This centrally sponsored scheme is implemented through the Karnataka nodal agency",
			userState:  "kerala",
			applicable: true,
		},
		{
			name:       "government of india indicator",
			text:       "A Government of India initiative for rural employment",
			userState:  "kerala",
			applicable: true,
		},
		{
			name:       "ministry indicator",
			text:       "Launched by the Ministry of Agriculture and Farmers Welfare",
			userState:  "kerala",
			applicable: true,
		},
		{
			name:       "user state mentioned",
			text:       "The Kerala government provides pension to fishermen",
			userState:  "kerala",
			applicable: true,
		},
		{
			name:       "only another state mentioned",
			text:       "The Karnataka government provides subsidy to silk farmers",
			userState:  "kerala",
			applicable: false,
		},
		{
			name:       "no state signal at all",
			text:       "Subsidy for purchase of drip irrigation equipment",
			userState:  "kerala",
			applicable: true,
		},
		{
			name:       "user state named alongside another state",
			text:       "Applicable in Kerala and Tamil Nadu",
			userState:  "kerala",
			applicable: true,
		},
		{
			name:       "case and whitespace insensitive user state",
			text:       "kerala coastal housing scheme",
			userState:  "  Kerala ",
			applicable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.applicable, RegionApplicable(tt.text, tt.userState))
		})
	}
}
