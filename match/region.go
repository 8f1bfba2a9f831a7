package match

import (
	"strings"

	"github.com/civicgraph/schemematch/core"
)

// centralIndicators are phrases that mark a scheme as nationwide.
var centralIndicators = []string{
	"central scheme",
	"centrally sponsored",
	"nationwide",
	"all states",
	"pan india",
	"government of india",
	"ministry of",
}

// RegionApplicable reports whether a candidate scheme text applies to the
// user's state. Rules, in priority order:
//
//  1. Unspecified user state: every candidate applies.
//  2. Text contains a nationwide indicator phrase: applies.
//  3. Text names the user's state: applies.
//  4. Text names only other states from the jurisdiction list: does not apply.
//  5. No state signal at all: applies.
//
// Ambiguous candidates are included on purpose; the eligibility evaluator
// makes the final call with explicit unknown reasoning.
func RegionApplicable(text, userState string) bool {
	userState = strings.ToLower(strings.TrimSpace(userState))
	if userState == "" || userState == "unspecified" {
		return true
	}

	lower := strings.ToLower(text)

	for _, indicator := range centralIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}

	if strings.Contains(lower, userState) {
		return true
	}

	for _, state := range core.IndianStates {
		if state != userState && strings.Contains(lower, state) {
			return false
		}
	}

	return true
}
