// Package rootcause implements IncidentRootCauseAnalyzer (spec §4.22): an
// Analysis accumulating root causes, a timeline kept sorted by
// timestamp, entry points, propagations, and linked vulnerabilities.
package rootcause

import (
	"sort"
	"sync"
	"time"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Status is an Analysis's lifecycle state.
type Status string

const (
	StatusOpen      Status = "open"
	StatusCompleted Status = "completed"
)

// Cause is one accumulated root cause, with confidence clamped to
// [0, 1] (spec §4.22).
type Cause struct {
	Description string
	Confidence  float64
}

// TimelineEvent is one timestamped event in an Analysis's timeline.
type TimelineEvent struct {
	Description string
	OccurredAt  time.Time
}

// Analysis is one IncidentRootCauseAnalyzer investigation.
type Analysis struct {
	ID              string
	IncidentID      string
	Status          Status
	Causes          []Cause
	Timeline        []TimelineEvent
	EntryPoints     []string
	Propagations    []string
	Vulnerabilities []string
	Conclusion      string
	CreatedAt       string
}

// Analyzer is IncidentRootCauseAnalyzer's record store.
type Analyzer struct {
	mu       sync.Mutex
	analyses map[string]*Analysis
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
	return &Analyzer{analyses: make(map[string]*Analysis), clock: c, log: log}
}

// StartResult is start_analysis's return shape.
type StartResult struct {
	Started    bool
	AnalysisID string
	Error      string
}

// StartAnalysis opens a new Analysis for an incident.
func (a *Analyzer) StartAnalysis(incidentID string) StartResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if incidentID == "" {
		return StartResult{Error: goverrors.Invalid("incident_id").Error()}
	}
	id := ids.New("ana")
	a.analyses[id] = &Analysis{ID: id, IncidentID: incidentID, Status: StatusOpen, CreatedAt: clock.ISO8601(a.clock.Now())}
	return StartResult{Started: true, AnalysisID: id}
}

// addResult is the common return shape for every accumulation op.
type addResult struct {
	Added bool
	Error string
}

func (a *Analyzer) lookup(analysisID string) (*Analysis, error) {
	an, ok := a.analyses[analysisID]
	if !ok {
		return nil, goverrors.NotFound("analysis")
	}
	if an.Status == StatusCompleted {
		return nil, goverrors.Precondition("analysis is completed")
	}
	return an, nil
}

// AddRootCause appends a cause, clamping confidence to [0, 1].
func (a *Analyzer) AddRootCause(analysisID, description string, confidence float64) addResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	an, err := a.lookup(analysisID)
	if err != nil {
		return addResult{Error: err.Error()}
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	an.Causes = append(an.Causes, Cause{Description: description, Confidence: confidence})
	return addResult{Added: true}
}

// AddTimelineEvent appends a timeline event and re-sorts the timeline
// ascending by timestamp (spec §4.22).
func (a *Analyzer) AddTimelineEvent(analysisID, description string, occurredAt time.Time) addResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	an, err := a.lookup(analysisID)
	if err != nil {
		return addResult{Error: err.Error()}
	}
	an.Timeline = append(an.Timeline, TimelineEvent{Description: description, OccurredAt: occurredAt})
	sort.SliceStable(an.Timeline, func(i, j int) bool { return an.Timeline[i].OccurredAt.Before(an.Timeline[j].OccurredAt) })
	return addResult{Added: true}
}

// AddEntryPoint records an entry point.
func (a *Analyzer) AddEntryPoint(analysisID, entryPoint string) addResult {
	return a.appendString(analysisID, entryPoint, func(an *Analysis, v string) { an.EntryPoints = append(an.EntryPoints, v) })
}

// AddPropagation records a propagation step.
func (a *Analyzer) AddPropagation(analysisID, propagation string) addResult {
	return a.appendString(analysisID, propagation, func(an *Analysis, v string) { an.Propagations = append(an.Propagations, v) })
}

// LinkVulnerability links a vulnerability id.
func (a *Analyzer) LinkVulnerability(analysisID, vulnID string) addResult {
	return a.appendString(analysisID, vulnID, func(an *Analysis, v string) { an.Vulnerabilities = append(an.Vulnerabilities, v) })
}

func (a *Analyzer) appendString(analysisID, value string, apply func(*Analysis, string)) addResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	an, err := a.lookup(analysisID)
	if err != nil {
		return addResult{Error: err.Error()}
	}
	apply(an, value)
	return addResult{Added: true}
}

// CompleteResult is complete_analysis's return shape.
type CompleteResult struct {
	Completed bool
	Error     string
}

// CompleteAnalysis freezes an Analysis's status to completed with a
// conclusion string.
func (a *Analyzer) CompleteAnalysis(analysisID, conclusion string) CompleteResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	an, err := a.lookup(analysisID)
	if err != nil {
		return CompleteResult{Error: err.Error()}
	}
	an.Status = StatusCompleted
	an.Conclusion = conclusion
	return CompleteResult{Completed: true}
}

// GetAnalysisResult is get_analysis's return shape.
type GetAnalysisResult struct {
	Retrieved bool
	Analysis  *Analysis
	Error     string
}

// GetAnalysis retrieves an analysis by id.
func (a *Analyzer) GetAnalysis(analysisID string) GetAnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	an, ok := a.analyses[analysisID]
	if !ok {
		return GetAnalysisResult{Error: goverrors.NotFound("analysis").Error()}
	}
	return GetAnalysisResult{Retrieved: true, Analysis: an}
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
	completed := 0
	for _, an := range a.analyses {
		if an.Status == StatusCompleted {
			completed++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"analyses":  len(a.analyses),
		"completed": completed,
	}}
}
