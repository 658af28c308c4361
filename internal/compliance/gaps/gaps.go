// Package gaps implements ComplianceGapAnalyzer (spec §4.13): control
// assessments that auto-create severity-scored gaps, aggregated into
// roadmaps ordered by descending risk.
package gaps

import (
	"sort"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// ControlStatus is one control's assessment outcome.
type ControlStatus string

const (
	ControlPassed  ControlStatus = "passed"
	ControlFailed  ControlStatus = "failed"
	ControlPartial ControlStatus = "partial"
)

// Control is one input to run_assessment.
type Control struct {
	Name   string
	Status ControlStatus
}

// GapStatus is a gap's remediation lifecycle.
type GapStatus string

const (
	GapOpen       GapStatus = "open"
	GapRemediated GapStatus = "remediated"
	GapAccepted   GapStatus = "accepted"
)

// riskScores maps severity to spec §4.13's fixed risk_score table.
var riskScores = map[severity.Severity]float64{
	severity.Critical: 1.0,
	severity.High:     0.8,
	severity.Medium:   0.6,
	severity.Low:      0.4,
	severity.Info:     0.2,
}

// Gap is one auto-created compliance gap.
type Gap struct {
	ID        string
	Control   string
	Severity  severity.Severity
	RiskScore float64
	Status    GapStatus
	CreatedAt string
}

// Roadmap groups gap ids into a remediation plan.
type Roadmap struct {
	ID      string
	GapIDs  []string // ordered by descending risk_score
	Created string
}

// Analyzer is ComplianceGapAnalyzer's record store.
type Analyzer struct {
	mu       sync.Mutex
	gaps     map[string]*Gap
	roadmaps map[string]*Roadmap
	clock    clock.Clock
	log      *logger.Logger
}

// New creates an empty Analyzer.
func New(c clock.Clock, log *logger.Logger) *Analyzer {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Analyzer{gaps: make(map[string]*Gap), roadmaps: make(map[string]*Roadmap), clock: c, log: log}
}

// severityForStatus derives a gap's severity from a failed/partial
// control. Failed controls are treated as higher risk than partial ones,
// consistent with the domain's general "more broken = more severe"
// convention.
func severityForStatus(status ControlStatus) severity.Severity {
	if status == ControlFailed {
		return severity.High
	}
	return severity.Medium
}

// AssessResult is run_assessment's return shape.
type AssessResult struct {
	Assessed bool
	Score    float64
	GapIDs   []string
	Error    string
}

// RunAssessment computes score = 100 * passed/total and auto-creates a
// gap for every failed or partial control.
func (a *Analyzer) RunAssessment(controls []Control) AssessResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(controls) == 0 {
		return AssessResult{Error: goverrors.Invalid("controls").Error()}
	}

	passed := 0
	var gapIDs []string
	for _, ctl := range controls {
		if ctl.Status == ControlPassed {
			passed++
			continue
		}
		sev := severityForStatus(ctl.Status)
		id := ids.New("gap")
		a.gaps[id] = &Gap{
			ID: id, Control: ctl.Name, Severity: sev, RiskScore: riskScores[sev],
			Status: GapOpen, CreatedAt: clock.ISO8601(a.clock.Now()),
		}
		gapIDs = append(gapIDs, id)
	}

	score := 100 * float64(passed) / float64(len(controls))
	return AssessResult{Assessed: true, Score: score, GapIDs: gapIDs}
}

// BuildRoadmapResult is build_roadmap's return shape.
type BuildRoadmapResult struct {
	Built     bool
	RoadmapID string
	Error     string
}

// BuildRoadmap orders a set of gaps by descending risk_score into a
// remediation plan.
func (a *Analyzer) BuildRoadmap(gapIDs []string) BuildRoadmapResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(gapIDs) == 0 {
		return BuildRoadmapResult{Error: goverrors.Invalid("gap_ids").Error()}
	}
	for _, id := range gapIDs {
		if _, ok := a.gaps[id]; !ok {
			return BuildRoadmapResult{Error: goverrors.NotFound("gap").Error()}
		}
	}
	ordered := append([]string{}, gapIDs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return a.gaps[ordered[i]].RiskScore > a.gaps[ordered[j]].RiskScore
	})
	id := ids.New("road")
	a.roadmaps[id] = &Roadmap{ID: id, GapIDs: ordered, Created: clock.ISO8601(a.clock.Now())}
	return BuildRoadmapResult{Built: true, RoadmapID: id}
}

// UpdateGapResult is update_gap_status's return shape.
type UpdateGapResult struct {
	Updated bool
	Error   string
}

// UpdateGapStatus transitions a gap's remediation status.
func (a *Analyzer) UpdateGapStatus(gapID string, status GapStatus) UpdateGapResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	g, ok := a.gaps[gapID]
	if !ok {
		return UpdateGapResult{Error: goverrors.NotFound("gap").Error()}
	}
	g.Status = status
	return UpdateGapResult{Updated: true}
}

// RoadmapProgressResult is get_roadmap_progress's return shape.
type RoadmapProgressResult struct {
	Retrieved bool
	Progress  float64
	Error     string
}

// GetRoadmapProgress computes progress = 100 * (remediated+accepted) /
// total over a roadmap's gaps.
func (a *Analyzer) GetRoadmapProgress(roadmapID string) RoadmapProgressResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.roadmaps[roadmapID]
	if !ok {
		return RoadmapProgressResult{Error: goverrors.NotFound("roadmap").Error()}
	}
	if len(r.GapIDs) == 0 {
		return RoadmapProgressResult{Retrieved: true, Progress: 0}
	}
	done := 0
	for _, id := range r.GapIDs {
		g := a.gaps[id]
		if g.Status == GapRemediated || g.Status == GapAccepted {
			done++
		}
	}
	return RoadmapProgressResult{Retrieved: true, Progress: 100 * float64(done) / float64(len(r.GapIDs))}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (a *Analyzer) GetSummary() SummaryResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	open := 0
	for _, g := range a.gaps {
		if g.Status == GapOpen {
			open++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"gaps":      len(a.gaps),
		"open_gaps": open,
		"roadmaps":  len(a.roadmaps),
	}}
}
