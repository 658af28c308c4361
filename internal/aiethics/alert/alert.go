// Package alert implements EthicsViolationAlert (spec §4.5): a central
// alert store with severity-gated escalation and user-defined alert-rule
// sweeps over a context dictionary.
package alert

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ctxfield"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Status is an Alert's lifecycle state (spec §3).
type Status string

const (
	StatusOpen          Status = "open"
	StatusAcknowledged  Status = "acknowledged"
	StatusInvestigating Status = "investigating"
	StatusResolved      Status = "resolved"
	StatusDismissed     Status = "dismissed"
)

// Alert is a raised violation (spec §3).
type Alert struct {
	ID            string
	ViolationType string
	Severity      severity.Severity
	Status        Status
	RaisedAt      string
	ResolvedAt    string
}

// Escalation records that a high-severity alert was escalated.
type Escalation struct {
	ID        string
	AlertID    string
	CreatedAt string
}

// Rule is a user-defined alert rule swept by CheckViolations.
type Rule struct {
	ID        string
	Name      string
	Condition string
	Threshold *float64 // nil => boolean-true condition
	Severity  severity.Severity
}

// DefaultEscalationThreshold is the severity at or above which raising an
// alert also creates an Escalation record (spec §4.5).
const DefaultEscalationThreshold = severity.High

// Store is EthicsViolationAlert's record store.
type Store struct {
	mu          sync.Mutex
	alerts      map[string]*Alert
	order       []string
	escalations map[string]*Escalation
	rules       map[string]*Rule
	ruleOrder   []string
	clock       clock.Clock
	log         *logger.Logger

	EscalationThreshold severity.Severity
	AutoEscalate        bool
}

// New creates a Store with auto-escalation enabled at the default
// threshold.
func New(c clock.Clock, log *logger.Logger) *Store {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		alerts:               make(map[string]*Alert),
		escalations:          make(map[string]*Escalation),
		rules:                make(map[string]*Rule),
		clock:                c,
		log:                  log,
		EscalationThreshold:  DefaultEscalationThreshold,
		AutoEscalate:         true,
	}
}

// RaiseResult is raise_alert's return shape.
type RaiseResult struct {
	Raised       bool
	AlertID      string
	Escalated    bool
	EscalationID string
	Error        string
}

// RaiseAlert opens a new alert, escalating if AutoEscalate is on and
// severity meets the escalation threshold.
func (s *Store) RaiseAlert(violationType string, sev severity.Severity) RaiseResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if violationType == "" {
		return RaiseResult{Error: goverrors.Invalid("violation_type").Error()}
	}

	id := ids.New("eevl")
	s.alerts[id] = &Alert{
		ID: id, ViolationType: violationType, Severity: sev, Status: StatusOpen,
		RaisedAt: clock.ISO8601(s.clock.Now()),
	}
	s.order = append(s.order, id)

	result := RaiseResult{Raised: true, AlertID: id}
	if s.AutoEscalate && sev.AtLeast(s.EscalationThreshold) {
		escID := ids.New("esc")
		s.escalations[escID] = &Escalation{ID: escID, AlertID: id, CreatedAt: clock.ISO8601(s.clock.Now())}
		result.Escalated = true
		result.EscalationID = escID
		s.log.Op("aiethics.alert", "raise_alert").WithField("alert_id", id).Error("alert escalated")
	} else {
		s.log.Op("aiethics.alert", "raise_alert").WithField("alert_id", id).Warn("alert raised")
	}
	return result
}

// TransitionResult is the shared return shape for the explicit lifecycle
// transitions below.
type TransitionResult struct {
	Transitioned bool
	Error        string
}

// Acknowledge moves an alert from open to acknowledged.
func (s *Store) Acknowledge(alertID string) TransitionResult {
	return s.transition(alertID, StatusOpen, StatusAcknowledged)
}

// Investigate moves an alert from acknowledged to investigating.
func (s *Store) Investigate(alertID string) TransitionResult {
	return s.transition(alertID, StatusAcknowledged, StatusInvestigating)
}

// Resolve moves an alert from acknowledged or investigating to resolved.
func (s *Store) Resolve(alertID string) TransitionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return TransitionResult{Error: goverrors.NotFound("alert").Error()}
	}
	if a.Status != StatusAcknowledged && a.Status != StatusInvestigating {
		return TransitionResult{Error: goverrors.Precondition("alert is not acknowledged or investigating").Error()}
	}
	a.Status = StatusResolved
	a.ResolvedAt = clock.ISO8601(s.clock.Now())
	return TransitionResult{Transitioned: true}
}

// Dismiss moves any non-terminal alert to dismissed.
func (s *Store) Dismiss(alertID string) TransitionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return TransitionResult{Error: goverrors.NotFound("alert").Error()}
	}
	if a.Status == StatusResolved || a.Status == StatusDismissed {
		return TransitionResult{Error: goverrors.Precondition("alert already terminal").Error()}
	}
	a.Status = StatusDismissed
	return TransitionResult{Transitioned: true}
}

func (s *Store) transition(alertID string, from, to Status) TransitionResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return TransitionResult{Error: goverrors.NotFound("alert").Error()}
	}
	if a.Status != from {
		return TransitionResult{Error: goverrors.Precondition("alert is not in " + string(from) + " state").Error()}
	}
	a.Status = to
	return TransitionResult{Transitioned: true}
}

// AddRuleResult is add_alert_rule's return shape.
type AddRuleResult struct {
	Added  bool
	RuleID string
	Error  string
}

// AddAlertRule declares a rule swept by CheckViolations.
func (s *Store) AddAlertRule(name, condition string, threshold *float64, sev severity.Severity) AddRuleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" || condition == "" {
		return AddRuleResult{Error: goverrors.Invalid("name/condition").Error()}
	}
	id := ids.New("avr")
	s.rules[id] = &Rule{ID: id, Name: name, Condition: condition, Threshold: threshold, Severity: sev}
	s.ruleOrder = append(s.ruleOrder, id)
	return AddRuleResult{Added: true, RuleID: id}
}

// CheckResult is check_violations's return shape.
type CheckResult struct {
	Checked  bool
	RaisedIDs []string
}

// CheckViolations sweeps every declared rule against ctx, raising an
// alert for each numeric-threshold rule whose value exceeds its
// threshold, or each boolean-condition rule whose flag is true.
func (s *Store) CheckViolations(ctx map[string]any) CheckResult {
	s.mu.Lock()
	rules := make([]*Rule, 0, len(s.ruleOrder))
	for _, id := range s.ruleOrder {
		rules = append(rules, s.rules[id])
	}
	s.mu.Unlock()

	var raised []string
	for _, r := range rules {
		violated := false
		if r.Threshold != nil {
			if v, ok := ctxfield.GetFloat(ctx, r.Condition); ok && v > *r.Threshold {
				violated = true
			}
		} else {
			if v, ok := ctxfield.GetBool(ctx, r.Condition); ok && v {
				violated = true
			}
		}
		if violated {
			res := s.RaiseAlert(r.Name, r.Severity)
			if res.Raised {
				raised = append(raised, res.AlertID)
			}
		}
	}
	return CheckResult{Checked: true, RaisedIDs: raised}
}

// GetAlertInfoResult is get_alert_info's return shape.
type GetAlertInfoResult struct {
	Retrieved bool
	Alert     *Alert
	Error     string
}

// GetAlertInfo retrieves an alert by id.
func (s *Store) GetAlertInfo(alertID string) GetAlertInfoResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[alertID]
	if !ok {
		return GetAlertInfoResult{Error: goverrors.NotFound("alert").Error()}
	}
	return GetAlertInfoResult{Retrieved: true, Alert: a}
}

// OpenCount returns the number of alerts not in a terminal state, used by
// the orchestrator to feed pkg/metrics' AlertsOpen gauge.
func (s *Store) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.alerts {
		if a.Status != StatusResolved && a.Status != StatusDismissed {
			n++
		}
	}
	return n
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (s *Store) GetSummary() SummaryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	byStatus := map[string]int{}
	for _, a := range s.alerts {
		byStatus[string(a.Status)]++
	}
	stats := map[string]int{
		"alerts":      len(s.alerts),
		"escalations": len(s.escalations),
		"rules":       len(s.rules),
	}
	for st, n := range byStatus {
		stats["status_"+st] = n
	}
	return SummaryResult{Retrieved: true, Stats: stats}
}
