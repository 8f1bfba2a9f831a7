package match

import (
	"math"
	"sort"
	"strings"

	"github.com/civicgraph/schemematch/core"
)

// Dedup removes near-duplicate candidates. Two candidates are duplicates when
// the normalized prefix of their text (whitespace-collapsed, lowercased,
// first prefixLen characters) is identical; the first occurrence wins, so
// retrieval order decides which copy survives. Dedup is idempotent.
func Dedup(candidates []core.SchemeCandidate, prefixLen int) []core.SchemeCandidate {
	if prefixLen < 1 {
		prefixLen = defaultDedupPrefixLen
	}
	seen := make(map[string]bool, len(candidates))
	unique := make([]core.SchemeCandidate, 0, len(candidates))
	for _, c := range candidates {
		key := normalizedPrefix(c.Text, prefixLen)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}
	return unique
}

// Diversify selects up to n candidates that are mutually dissimilar. It seeds
// with the highest-scoring candidate, then greedily adds the candidate whose
// minimum cosine similarity to the selected set is smallest, breaking ties by
// score and then input order. Candidates without vectors are appended in
// score order after the vector-bearing ones. This avoids returning n
// paraphrases of one document.
func Diversify(candidates []core.SchemeCandidate, n int) []core.SchemeCandidate {
	if n <= 0 || len(candidates) == 0 {
		return []core.SchemeCandidate{}
	}
	if len(candidates) <= n {
		return sortByScore(candidates)
	}

	withVectors := make([]core.SchemeCandidate, 0, len(candidates))
	withoutVectors := make([]core.SchemeCandidate, 0)
	for _, c := range candidates {
		if len(c.Vector) > 0 {
			withVectors = append(withVectors, c)
		} else {
			withoutVectors = append(withoutVectors, c)
		}
	}

	selected := make([]core.SchemeCandidate, 0, n)

	if len(withVectors) > 0 {
		remaining := sortByScore(withVectors)
		selected = append(selected, remaining[0])
		remaining = remaining[1:]

		for len(selected) < n && len(remaining) > 0 {
			bestIdx := 0
			bestSim := float32(math.MaxFloat32)
			for i, c := range remaining {
				sim := maxSimilarityTo(c, selected)
				if sim < bestSim {
					bestSim = sim
					bestIdx = i
				}
			}
			selected = append(selected, remaining[bestIdx])
			remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
		}
	}

	for _, c := range sortByScore(withoutVectors) {
		if len(selected) >= n {
			break
		}
		selected = append(selected, c)
	}

	return selected
}

// maxSimilarityTo returns the candidate's highest cosine similarity to any
// already-selected candidate. Lower is more diverse.
func maxSimilarityTo(c core.SchemeCandidate, selected []core.SchemeCandidate) float32 {
	max := float32(-1)
	for _, s := range selected {
		if len(s.Vector) == 0 {
			continue
		}
		sim := cosineSimilarity(c.Vector, s.Vector)
		if sim > max {
			max = sim
		}
	}
	return max
}

// sortByScore returns a copy sorted by score descending. The sort is stable,
// so ties keep their input order.
func sortByScore(candidates []core.SchemeCandidate) []core.SchemeCandidate {
	sorted := make([]core.SchemeCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	return sorted
}

// normalizedPrefix collapses whitespace, lowercases, and truncates to n runes.
func normalizedPrefix(text string, n int) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	runes := []rune(normalized)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
