package match

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicgraph/schemematch/ai/mock"
	"github.com/civicgraph/schemematch/core"
	"github.com/civicgraph/schemematch/storage"
	"github.com/civicgraph/schemematch/storage/badger"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func seedDocs(t *testing.T, repo storage.SchemeRepository, docs ...*core.SchemeDocument) {
	t.Helper()
	_, err := repo.AddSchemeDocuments(context.Background(), docs...)
	require.NoError(t, err)
}

// newTestMatcher wires an in-memory repository, a constant-vector embedder,
// and the keyword extractor into a matcher with cleanup registered.
func newTestMatcher(t *testing.T, opts ...Option) (*Matcher, storage.SchemeRepository) {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	provider := mock.NewMockProviderWithServices(axisEmbedder(0, 4), mock.NewMockSchemeExtractor())
	matcher, err := NewMatcher(repo, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(matcher.Release)

	return matcher, repo
}

func TestNewMatcher(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		matcher, err := NewMatcher(repo, provider)
		require.NoError(t, err)
		assert.NotNil(t, matcher)
		matcher.Release()
	})

	t.Run("with options", func(t *testing.T) {
		matcher, err := NewMatcher(repo, provider,
			WithPoolSize(2),
			WithMinScore(0.5),
			WithTopKPerQuery(10),
			WithMaxResults(3),
			WithUncertainPenalty(0.8),
			WithDedupPrefixLen(50),
			WithDiversify(false),
		)
		require.NoError(t, err)
		assert.Equal(t, float32(0.5), matcher.minScore)
		assert.Equal(t, 10, matcher.topKPerQuery)
		assert.Equal(t, 3, matcher.maxResults)
		assert.Equal(t, float32(0.8), matcher.uncertainPenalty)
		assert.Equal(t, 50, matcher.dedupPrefixLen)
		assert.False(t, matcher.diversify)
		matcher.Release()
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewMatcher(nil, provider)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewMatcher(repo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestGetRecommendationsScholarship(t *testing.T) {
	matcher, repo := newTestMatcher(t)
	seedDocs(t, repo,
		&core.SchemeDocument{
			SchemeName: "National Scholarship Portal",
			Text:       "Government of India scholarship for students from low income families",
			Vector:     axisVector(0, 4),
		},
		&core.SchemeDocument{
			SchemeName: "Kerala Vidya Samunnathi",
			Text:       "The Kerala government scholarship for student education support",
			Vector:     axisVector(0, 4),
		},
	)

	profile := core.UserProfile{
		Age:          intPtr(20),
		Gender:       core.GenderFemale,
		Category:     core.CategoryGeneral,
		AnnualIncome: floatPtr(80000),
		Occupation:   "Student",
		State:        "kerala",
	}

	results, err := matcher.GetRecommendations(context.Background(), profile, "scholarship for my studies")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), defaultMaxResults)

	for _, r := range results {
		assert.NotEmpty(t, r.SchemeName)
		assert.Greater(t, r.RelevanceScore, float32(0))
		assert.LessOrEqual(t, r.RelevanceScore, float32(1))
		assert.NotNil(t, r.Verdict)
		assert.True(t, r.Verdict.IsEligible)
	}

	// Ranked by score descending.
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].RelevanceScore, results[i].RelevanceScore)
	}
}

func TestGetRecommendationsIncomeLimitExcludes(t *testing.T) {
	matcher, repo := newTestMatcher(t)
	seedDocs(t, repo, &core.SchemeDocument{
		SchemeName: "BPL Support Scheme",
		Text:       "Nationwide assistance for families below poverty line with low income",
		Vector:     axisVector(0, 4),
	})

	// The keyword extractor derives a maximum income of 100000 from the
	// document text; this profile definitely exceeds it.
	profile := core.UserProfile{
		Age:          intPtr(40),
		AnnualIncome: floatPtr(210000),
		State:        "kerala",
	}

	results, err := matcher.GetRecommendations(context.Background(), profile, "financial assistance")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetRecommendationsEmptyPool(t *testing.T) {
	matcher, _ := newTestMatcher(t)

	results, err := matcher.GetRecommendations(context.Background(), core.UserProfile{}, "anything at all")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestGetRecommendationsInvalidProfile(t *testing.T) {
	matcher, _ := newTestMatcher(t)

	profile := core.UserProfile{Age: intPtr(-5)}
	_, err := matcher.GetRecommendations(context.Background(), profile, "anything")
	assert.ErrorIs(t, err, core.ErrInvalidProfile)
}

func TestGetRecommendationsRegionFilter(t *testing.T) {
	matcher, repo := newTestMatcher(t)
	seedDocs(t, repo, &core.SchemeDocument{
		SchemeName: "Karnataka Silk Subsidy",
		Text:       "The Karnataka government provides subsidy to silk farmers",
		Vector:     axisVector(0, 4),
	})

	profile := core.UserProfile{State: "kerala"}
	results, err := matcher.GetRecommendations(context.Background(), profile, "silk farming subsidy")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetRecommendationsUnknownNeverDisqualifies(t *testing.T) {
	matcher, repo := newTestMatcher(t)
	seedDocs(t, repo, &core.SchemeDocument{
		SchemeName: "Women Empowerment Scheme",
		Text:       "Pan India scheme for women entrepreneurs",
		Vector:     axisVector(0, 4),
	})

	// Gender is restricted to female but the profile omits it: the scheme
	// must still surface, penalized and flagged as partially verified.
	profile := core.UserProfile{AnnualIncome: floatPtr(50000)}
	results, err := matcher.GetRecommendations(context.Background(), profile, "business support")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.True(t, r.Verdict.IsEligible)
	assert.Contains(t, r.Verdict.UnknownCriteria, core.CriterionGender)
	assert.Contains(t, r.Rationale, "partially verified")
	assert.False(t, r.EligibilityStatus[core.CriterionGender])
}

func TestGetRecommendationsUncertainPenalty(t *testing.T) {
	matcher, repo := newTestMatcher(t, WithDiversify(false))
	seedDocs(t, repo,
		&core.SchemeDocument{
			SchemeName: "Verified Scheme",
			Text:       "Nationwide support scheme with no restrictions",
			Vector:     axisVector(0, 4),
		},
		&core.SchemeDocument{
			SchemeName: "Unverified Scheme",
			Text:       "Pan India scheme for women applicants only",
			Vector:     axisVector(0, 4),
		},
	)

	// Gender unknown for the second scheme: its score takes the penalty,
	// so the fully verified scheme ranks first despite equal similarity.
	profile := core.UserProfile{Age: intPtr(30), AnnualIncome: floatPtr(50000), State: "kerala", Category: core.CategoryGeneral}
	results, err := matcher.GetRecommendations(context.Background(), profile, "support scheme")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Verified Scheme", results[0].SchemeName)
	assert.Equal(t, "Unverified Scheme", results[1].SchemeName)
	assert.InDelta(t, float64(results[0].RelevanceScore)*float64(defaultUncertainPenalty),
		float64(results[1].RelevanceScore), 1e-6)
}

func TestGetRecommendationsExtractionFailureDegrades(t *testing.T) {
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer backend.Close()

	extractor := mock.NewMockSchemeExtractor()
	extractor.ExtractFactsFunc = func(_ context.Context, _ string) (core.SchemeFacts, error) {
		return core.SchemeFacts{}, errors.New("model unavailable")
	}
	provider := mock.NewMockProviderWithServices(axisEmbedder(0, 4), extractor)

	matcher, err := NewMatcher(repo, provider)
	require.NoError(t, err)
	defer matcher.Release()

	seedDocs(t, repo, &core.SchemeDocument{
		SchemeName: "Opaque Scheme",
		Text:       "Nationwide scheme with unparseable eligibility rules",
		Vector:     axisVector(0, 4),
	})

	results, err := matcher.GetRecommendations(context.Background(), core.UserProfile{}, "any support")
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "Opaque Scheme", r.SchemeName)
	assert.True(t, r.Verdict.IsEligible)
	assert.Contains(t, r.Rationale, "partially verified")
	assert.InDelta(t, float64(defaultUncertainPenalty), float64(r.RelevanceScore), 1e-6)
}

func TestGetRecommendationsDedupAcrossVariations(t *testing.T) {
	matcher, repo := newTestMatcher(t)
	seedDocs(t, repo, &core.SchemeDocument{
		SchemeName: "Crop Insurance",
		Text:       "Nationwide crop insurance for all farmers",
		Vector:     axisVector(0, 4),
	})

	// A farmer profile expands into several variations; every one retrieves
	// the same document, which must appear once in the output.
	profile := core.UserProfile{Occupation: "Farmer", State: "kerala"}
	results, err := matcher.GetRecommendations(context.Background(), profile, "crop insurance for my farm")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Crop Insurance", results[0].SchemeName)
}

func TestGetRecommendationsMaxResults(t *testing.T) {
	matcher, repo := newTestMatcher(t, WithMaxResults(2))
	for _, name := range []string{"Alpha", "Beta", "Gamma", "Delta"} {
		seedDocs(t, repo, &core.SchemeDocument{
			SchemeName: name,
			Text:       "Nationwide support scheme named " + name,
			Vector:     axisVector(0, 4),
		})
	}

	results, err := matcher.GetRecommendations(context.Background(), core.UserProfile{}, "support")
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

// recordingMonitor captures stage callbacks for pipeline observation tests.
type recordingMonitor struct {
	started       string
	variations    []string
	retrieved     int
	afterRegion   int
	extracts      int
	evaluates     int
	finished      []core.SchemeRecommendation
	finishedCalls int
}

func (r *recordingMonitor) Start(need string) { r.started = need }
func (r *recordingMonitor) AfterExpand(variations []string) { r.variations = variations }
func (r *recordingMonitor) AfterRetrieve(c []core.SchemeCandidate) { r.retrieved = len(c) }
func (r *recordingMonitor) AfterRegionFilter(c []core.SchemeCandidate) {
	r.afterRegion = len(c)
}
func (r *recordingMonitor) AfterExtract(_ core.SchemeCandidate, _ core.SchemeFacts) { r.extracts++ }
func (r *recordingMonitor) AfterEvaluate(_ core.SchemeCandidate, _ core.EligibilityVerdict) {
	r.evaluates++
}
func (r *recordingMonitor) Finish(recs []core.SchemeRecommendation) {
	r.finished = recs
	r.finishedCalls++
}

func TestGetRecommendationsWithMonitor(t *testing.T) {
	matcher, repo := newTestMatcher(t)
	seedDocs(t, repo, &core.SchemeDocument{
		SchemeName: "Crop Insurance",
		Text:       "Nationwide crop insurance for all farmers",
		Vector:     axisVector(0, 4),
	})

	monitor := &recordingMonitor{}
	results, err := matcher.GetRecommendationsWithMonitor(
		context.Background(), core.UserProfile{}, "crop insurance", monitor)
	require.NoError(t, err)

	assert.Equal(t, "crop insurance", monitor.started)
	assert.NotEmpty(t, monitor.variations)
	assert.Equal(t, "crop insurance", monitor.variations[0])
	assert.Greater(t, monitor.retrieved, 0)
	assert.Equal(t, monitor.retrieved, monitor.afterRegion)
	assert.Equal(t, monitor.retrieved, monitor.extracts)
	assert.Equal(t, monitor.extracts, monitor.evaluates)
	assert.Equal(t, 1, monitor.finishedCalls)
	assert.Equal(t, results, monitor.finished)
}

func TestGetRecommendationsMonitorFinishOnEmptyPool(t *testing.T) {
	matcher, _ := newTestMatcher(t)

	monitor := &recordingMonitor{}
	_, err := matcher.GetRecommendationsWithMonitor(
		context.Background(), core.UserProfile{}, "anything", monitor)
	require.NoError(t, err)
	assert.Equal(t, 1, monitor.finishedCalls)
	assert.Empty(t, monitor.finished)
}

func TestGetRecommendationsRationaleMentionsNeed(t *testing.T) {
	matcher, repo := newTestMatcher(t)
	seedDocs(t, repo, &core.SchemeDocument{
		SchemeName: "Housing Assistance",
		Text:       "Nationwide rural housing assistance scheme",
		Vector:     axisVector(0, 4),
	})

	results, err := matcher.GetRecommendations(context.Background(), core.UserProfile{}, "house construction help")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.True(t, strings.Contains(results[0].Rationale, "house construction help"))
}
