package match

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/civicgraph/schemematch/ai"
	"github.com/civicgraph/schemematch/core"
	"github.com/civicgraph/schemematch/storage"
)

// Tunable defaults. The penalty and diversity constants are heuristics, so
// they are options rather than fixed behavior.
const (
	defaultMinScore         = 0.7
	defaultTopKPerQuery     = 20
	defaultMaxResults       = 5
	defaultUncertainPenalty = 0.9
	defaultDedupPrefixLen   = 100
)

// Matcher orchestrates the end-to-end scheme recommendation pipeline.
type Matcher struct {
	retriever *Retriever
	extractor ai.SchemeExtractor
	pool      *ants.Pool
	logger    *slog.Logger

	minScore         float32
	topKPerQuery     int
	maxResults       int
	uncertainPenalty float32
	dedupPrefixLen   int
	diversify        bool
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent candidate processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(m *Matcher) error {
		if size < 1 {
			size = 1
		}
		if m.pool != nil {
			m.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		m.pool = pool
		return nil
	}
}

// WithMinScore sets the minimum similarity score for retrieval.
func WithMinScore(score float32) Option {
	return func(m *Matcher) error {
		m.minScore = score
		return nil
	}
}

// WithTopKPerQuery sets how many neighbors each query variation retrieves.
func WithTopKPerQuery(k int) Option {
	return func(m *Matcher) error {
		if k > 0 {
			m.topKPerQuery = k
		}
		return nil
	}
}

// WithMaxResults bounds the size of the final recommendation list.
func WithMaxResults(n int) Option {
	return func(m *Matcher) error {
		if n > 0 {
			m.maxResults = n
		}
		return nil
	}
}

// WithUncertainPenalty sets the score multiplier applied to recommendations
// whose eligibility could not be fully verified.
func WithUncertainPenalty(penalty float32) Option {
	return func(m *Matcher) error {
		if penalty > 0 && penalty <= 1 {
			m.uncertainPenalty = penalty
		}
		return nil
	}
}

// WithDedupPrefixLen sets the normalized-prefix length used to detect
// duplicate candidates.
func WithDedupPrefixLen(n int) Option {
	return func(m *Matcher) error {
		if n > 0 {
			m.dedupPrefixLen = n
		}
		return nil
	}
}

// WithDiversify toggles embedding-dissimilarity diversification of the final
// result set. When off, results are simply ranked by score.
func WithDiversify(enabled bool) Option {
	return func(m *Matcher) error {
		m.diversify = enabled
		return nil
	}
}

// NewMatcher creates a matcher over the given repository and AI provider.
func NewMatcher(
	repository storage.SchemeRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Matcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	m := &Matcher{
		extractor:        provider.SchemeExtractor(),
		pool:             pool,
		logger:           slog.Default().With("component", "matcher"),
		minScore:         defaultMinScore,
		topKPerQuery:     defaultTopKPerQuery,
		maxResults:       defaultMaxResults,
		uncertainPenalty: defaultUncertainPenalty,
		dedupPrefixLen:   defaultDedupPrefixLen,
		diversify:        true,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			m.Release()
			return nil, err
		}
	}

	m.retriever = NewRetriever(repository, provider.Embedder(), m.logger)

	return m, nil
}

// Release releases the worker pool. The matcher should not be used after
// calling Release.
func (m *Matcher) Release() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// evaluated carries one candidate through extraction and evaluation.
type evaluated struct {
	candidate core.SchemeCandidate
	facts     core.SchemeFacts
	verdict   core.EligibilityVerdict
	degraded  bool // extraction failed or panicked; criteria were permissive
}

// GetRecommendations runs the full matching pipeline for one request.
// It is side-effect-free and deterministic given deterministic collaborators.
// The only fatal error is an invalid profile; every other failure degrades to
// a smaller (possibly empty) result list.
func (m *Matcher) GetRecommendations(ctx context.Context, profile core.UserProfile, need string) ([]core.SchemeRecommendation, error) {
	return m.GetRecommendationsWithMonitor(ctx, profile, need, nil)
}

// GetRecommendationsWithMonitor runs the pipeline with stage observation.
// The monitor receives callbacks at each stage of the matching process.
func (m *Matcher) GetRecommendationsWithMonitor(ctx context.Context, profile core.UserProfile, need string, monitor MatchMonitor) ([]core.SchemeRecommendation, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := core.ValidateUserProfile(profile); err != nil {
		return nil, err
	}

	monitor.Start(need)

	// 1. Expand the need into query variations
	variations := ExpandProfile(profile, need)
	monitor.AfterExpand(variations)

	// 2. Retrieve candidates per variation
	candidates, err := m.retriever.Retrieve(ctx, variations, m.topKPerQuery, m.minScore)
	if err != nil {
		return nil, err
	}
	monitor.AfterRetrieve(candidates)

	// 3. Region applicability filter
	applicable := make([]core.SchemeCandidate, 0, len(candidates))
	for _, c := range candidates {
		if RegionApplicable(c.Text, profile.State) {
			applicable = append(applicable, c)
		}
	}
	monitor.AfterRegionFilter(applicable)

	// Empty pool is a normal terminal state, not an error.
	if len(applicable) == 0 {
		results := []core.SchemeRecommendation{}
		monitor.Finish(results)
		return results, nil
	}

	// 4. Extract criteria and evaluate eligibility, concurrently per candidate.
	// Results land in an index-addressed slice so the join order is stable.
	results := make([]evaluated, len(applicable))
	var wg sync.WaitGroup
	for i, candidate := range applicable {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i] = m.processCandidate(ctx, profile, candidate)
		}
		if err := m.pool.Submit(task); err != nil {
			// Pool unavailable; run inline rather than dropping the candidate.
			task()
		}
	}
	wg.Wait()

	for _, r := range results {
		monitor.AfterExtract(r.candidate, r.facts)
		monitor.AfterEvaluate(r.candidate, r.verdict)
	}

	// 5. Partition: definite rejections are dropped, verified-eligible come
	// before uncertain ones.
	var eligible, uncertain []evaluated
	for _, r := range results {
		switch {
		case !r.verdict.IsEligible:
			m.logger.Debug("candidate rejected",
				"scheme", r.candidate.SchemeName,
				"unknown", r.verdict.UnknownCriteria)
		case r.degraded || r.verdict.Uncertain():
			uncertain = append(uncertain, r)
		default:
			eligible = append(eligible, r)
		}
	}

	combined := append(eligible, uncertain...)

	// 6. Dedup, diversify, rank.
	byPrefix := make(map[string]evaluated, len(combined))
	ordered := make([]core.SchemeCandidate, 0, len(combined))
	for _, r := range combined {
		key := normalizedPrefix(r.candidate.Text, m.dedupPrefixLen)
		if _, ok := byPrefix[key]; ok {
			continue
		}
		byPrefix[key] = r
		ordered = append(ordered, r.candidate)
	}

	var final []core.SchemeCandidate
	if m.diversify {
		final = Diversify(ordered, m.maxResults)
	} else {
		final = sortByScore(ordered)
		if len(final) > m.maxResults {
			final = final[:m.maxResults]
		}
	}

	recommendations := make([]core.SchemeRecommendation, 0, len(final))
	for _, c := range final {
		r := byPrefix[normalizedPrefix(c.Text, m.dedupPrefixLen)]
		recommendations = append(recommendations, m.buildRecommendation(need, r))
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].RelevanceScore > recommendations[j].RelevanceScore
	})

	monitor.Finish(recommendations)
	return recommendations, nil
}

// processCandidate extracts criteria for one candidate and evaluates the
// profile against them. Extraction failure (or panic) degrades to permissive
// criteria: absence of information must never disqualify.
func (m *Matcher) processCandidate(ctx context.Context, profile core.UserProfile, candidate core.SchemeCandidate) (result evaluated) {
	result.candidate = candidate

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("candidate processing panicked", "scheme", candidate.SchemeName, "panic", r)
			result.facts = core.SchemeFacts{SchemeName: candidate.SchemeName, Criteria: core.PermissiveCriteria()}
			result.degraded = true
			result.verdict = core.EvaluateEligibility(profile, result.facts.Criteria)
		}
	}()

	facts, err := m.extractor.ExtractFacts(ctx, candidate.Text)
	if err != nil {
		m.logger.Warn("criteria extraction failed, treating scheme as unverified",
			"scheme", candidate.SchemeName, "err", err)
		facts = core.SchemeFacts{SchemeName: candidate.SchemeName, Criteria: core.PermissiveCriteria()}
		result.degraded = true
	}
	if facts.SchemeName == "" || facts.SchemeName == "Unknown Scheme" {
		if candidate.SchemeName != "" {
			facts.SchemeName = candidate.SchemeName
		} else {
			facts.SchemeName = "Unknown Scheme"
		}
	}

	result.facts = facts
	result.verdict = core.EvaluateEligibility(profile, facts.Criteria)
	return result
}

// buildRecommendation assembles the outward-facing record for one surviving
// candidate, applying the uncertainty penalty and rationale annotation.
func (m *Matcher) buildRecommendation(need string, r evaluated) core.SchemeRecommendation {
	score := clamp01(r.candidate.Score)
	verdict := r.verdict

	rationale := fmt.Sprintf("Matched your need %q", strings.TrimSpace(need))
	if r.candidate.Query != "" && r.candidate.Query != need {
		rationale += fmt.Sprintf(" via %q", r.candidate.Query)
	}

	if r.degraded || verdict.Uncertain() {
		score *= m.uncertainPenalty
		if len(verdict.UnknownCriteria) > 0 {
			rationale += fmt.Sprintf(" (partially verified: %s not confirmed)",
				strings.Join(verdict.UnknownCriteria, ", "))
		} else {
			rationale += " (partially verified: criteria could not be extracted)"
		}
	}

	return core.SchemeRecommendation{
		SchemeName:              r.facts.SchemeName,
		RelevanceScore:          score,
		Benefits:                r.facts.Benefits,
		EligibilityRequirements: core.DescribeCriteria(r.facts.Criteria),
		EligibilityStatus:       verdict.StatusMap(),
		ApplicationSteps:        r.facts.ApplicationSteps,
		Rationale:               rationale,
		Verdict:                 &verdict,
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
