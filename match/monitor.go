package match

import (
	"github.com/civicgraph/schemematch/core"
)

// MatchMonitor provides hooks to observe the matching process.
// Implement this interface to track intermediate steps and results during a
// matching request.
type MatchMonitor interface {
	Start(need string)
	AfterExpand(variations []string)
	AfterRetrieve(candidates []core.SchemeCandidate)
	AfterRegionFilter(candidates []core.SchemeCandidate)
	AfterExtract(candidate core.SchemeCandidate, facts core.SchemeFacts)
	AfterEvaluate(candidate core.SchemeCandidate, verdict core.EligibilityVerdict)
	Finish(recommendations []core.SchemeRecommendation)
}

// noopMonitor is a no-op implementation of MatchMonitor
type noopMonitor struct{}

var _ MatchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string) {}
func (n *noopMonitor) AfterExpand(_ []string) {}
func (n *noopMonitor) AfterRetrieve(_ []core.SchemeCandidate) {}
func (n *noopMonitor) AfterRegionFilter(_ []core.SchemeCandidate) {}
func (n *noopMonitor) AfterExtract(_ core.SchemeCandidate, _ core.SchemeFacts) {}
func (n *noopMonitor) AfterEvaluate(_ core.SchemeCandidate, _ core.EligibilityVerdict) {}
func (n *noopMonitor) Finish(_ []core.SchemeRecommendation) {}
