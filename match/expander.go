package match

import (
	"fmt"
	"strings"

	"github.com/civicgraph/schemematch/core"
)

// rewriteRule appends query variants when any of its trigger substrings
// appears in the need text. Rules are additive and independent; several may
// fire for one input, and none removes the original query.
type rewriteRule struct {
	triggers []string
	variants []string
}

var rewriteRules = []rewriteRule{
	{
		triggers: []string{"loan", "credit", "borrow"},
		variants: []string{"loan subsidy scheme", "credit support scheme"},
	},
	{
		triggers: []string{"farm", "agricult", "kisan", "crop", "irrigation"},
		variants: []string{"agricultural farming subsidy krishi", "government schemes for farmers"},
	},
	{
		triggers: []string{"women", "female", "girl", "widow"},
		variants: []string{"women empowerment scheme", "schemes for women"},
	},
	{
		triggers: []string{"education", "scholarship", "student", "study", "tuition"},
		variants: []string{"education scholarship academic", "schemes for students"},
	},
	{
		triggers: []string{"business", "enterprise", "startup", "self-employ", "msme", "entrepreneur"},
		variants: []string{"business entrepreneurship startup msme", "self-employment scheme"},
	},
	{
		triggers: []string{"house", "housing", "home construction", "shelter"},
		variants: []string{"housing assistance scheme", "rural urban housing scheme"},
	},
	{
		triggers: []string{"health", "medical", "treatment", "hospital"},
		variants: []string{"health insurance scheme", "medical assistance scheme"},
	},
	{
		triggers: []string{"pension", "old age", "senior", "retirement"},
		variants: []string{"pension scheme", "old age social security scheme"},
	},
}

// occupationKeywords supplies occupation-flavored retrieval phrasing for
// profile-driven expansion.
var occupationKeywords = map[string]string{
	"farmer":        "agricultural farming subsidy krishi",
	"student":       "education scholarship academic",
	"self-employed": "business entrepreneurship startup msme",
	"homemaker":     "skill development women empowerment self-employment",
}

// Expand turns a raw need into an ordered list of query variations. The
// original text always comes first; rewrite rules append variants; duplicates
// are removed by case-insensitive comparison of the whitespace-collapsed
// text, keeping the first occurrence.
func Expand(need string) []string {
	need = strings.TrimSpace(need)
	variations := []string{need}
	lower := strings.ToLower(need)

	for _, rule := range rewriteRules {
		for _, trigger := range rule.triggers {
			if strings.Contains(lower, trigger) {
				variations = append(variations, rule.variants...)
				break
			}
		}
	}

	return dedupeVariations(variations)
}

// ExpandProfile builds query variations from both the free-text need and the
// structured profile, so retrieval sees the user's occupation, category, and
// gender phrasing even when the need text omits them.
func ExpandProfile(profile core.UserProfile, need string) []string {
	variations := Expand(need)

	occupation := strings.ToLower(strings.TrimSpace(profile.Occupation))
	if occupation != "" {
		variations = append(variations, fmt.Sprintf("schemes for %s", occupation))
		if keywords, ok := occupationKeywords[occupation]; ok {
			variations = append(variations, keywords)
		}
	}
	if profile.Category != "" {
		variations = append(variations, fmt.Sprintf("%s category schemes", profile.Category))
	}
	if profile.Gender != "" {
		variations = append(variations, fmt.Sprintf("schemes for %s", profile.Gender))
	}
	for _, needTag := range profile.SpecificNeeds {
		if needTag = strings.TrimSpace(needTag); needTag != "" {
			variations = append(variations, needTag)
		}
	}

	return dedupeVariations(variations)
}

// dedupeVariations removes duplicates while preserving order and original
// casing. Comparison collapses whitespace and ignores case.
func dedupeVariations(variations []string) []string {
	seen := make(map[string]bool, len(variations))
	unique := make([]string, 0, len(variations))
	for _, v := range variations {
		if strings.TrimSpace(v) == "" {
			continue
		}
		pattern := strings.ToLower(strings.Join(strings.Fields(v), " "))
		if seen[pattern] {
			continue
		}
		seen[pattern] = true
		unique = append(unique, v)
	}
	return unique
}
