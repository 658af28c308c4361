// Package monitor implements ProtectedClassMonitor (spec §4.6): per
// (protected_attr, protected_value) outcome tracking, disparity checks
// over a trailing window, and independent differential-treatment
// flagging.
package monitor

import (
	"fmt"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Observation is one tracked outcome.
type Observation struct {
	ID             string
	ProtectedAttr  string
	ProtectedValue string
	Outcome        bool // true = favorable/positive outcome
	CreatedAt      string
}

// Alerter is the subset of EthicsViolationAlert's API this evaluator
// needs. ProtectedClassMonitor does not own Alert records itself (spec
// §3: Alerts are owned by "Alert evaluators") — the orchestrator wires
// the shared alert.Store in through this interface.
type Alerter interface {
	RaiseAlert(violationType string, sev severity.Severity) RaiseResult
}

// RaiseResult mirrors alert.RaiseResult's shape without importing the
// alert package, keeping monitor decoupled from alert's internals.
type RaiseResult struct {
	Raised  bool
	AlertID string
}

// DefaultDisparityThreshold is the gap trigger point (spec §4.6).
const DefaultDisparityThreshold = 0.2

// DefaultUnfavorableRatio is the differential-treatment trigger point.
const DefaultUnfavorableRatio = 0.3

// Monitor is ProtectedClassMonitor's record store.
type Monitor struct {
	mu           sync.Mutex
	observations []*Observation
	clock        clock.Clock
	log          *logger.Logger
	alerter      Alerter

	DisparityThreshold float64
	UnfavorableRatio   float64
}

// New creates a Monitor. alerter may be nil, in which case CheckDisparity
// still computes findings but never raises an alert.
func New(c clock.Clock, log *logger.Logger, alerter Alerter) *Monitor {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Monitor{
		clock: c, log: log, alerter: alerter,
		DisparityThreshold: DefaultDisparityThreshold,
		UnfavorableRatio:   DefaultUnfavorableRatio,
	}
}

// RecordResult is record_observation's return shape.
type RecordResult struct {
	Recorded      bool
	ObservationID string
	Error         string
}

// RecordObservation tracks one (protected_attr, protected_value) outcome.
func (m *Monitor) RecordObservation(protectedAttr, protectedValue string, outcome bool) RecordResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if protectedAttr == "" || protectedValue == "" {
		return RecordResult{Error: goverrors.Invalid("protected_attr/protected_value").Error()}
	}
	id := ids.New("pcm")
	m.observations = append(m.observations, &Observation{
		ID: id, ProtectedAttr: protectedAttr, ProtectedValue: protectedValue, Outcome: outcome,
		CreatedAt: clock.ISO8601(m.clock.Now()),
	})
	return RecordResult{Recorded: true, ObservationID: id}
}

// DisparityResult is check_disparity's return shape.
type DisparityResult struct {
	Checked      bool
	Gap          float64
	Groups       map[string]float64
	AlertRaised  bool
	AlertID      string
	Severity     severity.Severity
	Error        string
}

// CheckDisparity buckets the tail n observations for protectedAttr,
// computes per-value positive-outcome rates, and raises an alert when the
// gap exceeds DisparityThreshold.
func (m *Monitor) CheckDisparity(protectedAttr string, n int) DisparityResult {
	m.mu.Lock()
	tail := m.tailFor(protectedAttr, n)
	m.mu.Unlock()

	if protectedAttr == "" {
		return DisparityResult{Error: goverrors.Invalid("protected_attr").Error()}
	}

	groups := map[string]struct{ total, positive int }{}
	for _, o := range tail {
		g := groups[o.ProtectedValue]
		g.total++
		if o.Outcome {
			g.positive++
		}
		groups[o.ProtectedValue] = g
	}
	if len(groups) < 2 {
		return DisparityResult{Checked: true, Groups: map[string]float64{}}
	}

	rates := map[string]float64{}
	minRate, maxRate := 1.0, 0.0
	for v, g := range groups {
		rate := float64(g.positive) / float64(g.total)
		rates[v] = rate
		if rate < minRate {
			minRate = rate
		}
		if rate > maxRate {
			maxRate = rate
		}
	}
	gap := maxRate - minRate

	result := DisparityResult{Checked: true, Gap: gap, Groups: rates}
	if gap <= m.DisparityThreshold {
		return result
	}

	sev := severity.High
	if gap > 0.5 {
		sev = severity.Critical
	}
	result.Severity = sev

	if m.alerter != nil {
		raise := m.alerter.RaiseAlert(fmt.Sprintf("protected_class_disparity:%s", protectedAttr), sev)
		result.AlertRaised = raise.Raised
		result.AlertID = raise.AlertID
	}
	return result
}

func (m *Monitor) tailFor(protectedAttr string, n int) []*Observation {
	var matching []*Observation
	for _, o := range m.observations {
		if o.ProtectedAttr == protectedAttr {
			matching = append(matching, o)
		}
	}
	if n <= 0 || n > len(matching) {
		return matching
	}
	return matching[len(matching)-n:]
}

// DifferentialResult is check_differential_treatment's return shape.
type DifferentialResult struct {
	Checked       bool
	FlaggedGroups []string
	Error         string
}

// CheckDifferentialTreatment flags any group whose unfavorable-outcome
// ratio over the tail n observations exceeds UnfavorableRatio.
func (m *Monitor) CheckDifferentialTreatment(protectedAttr string, n int) DifferentialResult {
	m.mu.Lock()
	tail := m.tailFor(protectedAttr, n)
	m.mu.Unlock()

	if protectedAttr == "" {
		return DifferentialResult{Error: goverrors.Invalid("protected_attr").Error()}
	}

	groups := map[string]struct{ total, unfavorable int }{}
	for _, o := range tail {
		g := groups[o.ProtectedValue]
		g.total++
		if !o.Outcome {
			g.unfavorable++
		}
		groups[o.ProtectedValue] = g
	}

	var flagged []string
	for v, g := range groups {
		if g.total == 0 {
			continue
		}
		if float64(g.unfavorable)/float64(g.total) > m.UnfavorableRatio {
			flagged = append(flagged, v)
		}
	}
	return DifferentialResult{Checked: true, FlaggedGroups: flagged}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (m *Monitor) GetSummary() SummaryResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"observations": len(m.observations),
	}}
}
