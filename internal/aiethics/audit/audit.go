// Package audit implements EthicsDecisionAuditor (spec §4.4): an
// append-only, FIFO-bounded log of decisions, audited for outcome
// disparity and low-confidence patterns over its tail.
package audit

import (
	"fmt"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// DefaultRetentionLimit bounds the decision log (spec §4.4).
const DefaultRetentionLimit = 10000

// IssueLevel classifies an audit finding's severity within this
// evaluator's own two-tier scale (distinct from the platform-wide
// severity.Severity scale, which this evaluator does not use — spec
// §4.4 only names "minor-issue"/"major-issue").
type IssueLevel string

const (
	IssueMinor IssueLevel = "minor_issue"
	IssueMajor IssueLevel = "major_issue"
)

// Compliance is the audit's overall verdict.
type Compliance string

const (
	Compliant    Compliance = "compliant"
	NonCompliant Compliance = "non_compliant"
	MinorIssue   Compliance = "minor_issue"
)

// Decision is one logged decision.
type Decision struct {
	ID         string
	Attributes map[string]any
	Output     bool
	Confidence float64
	CreatedAt  string
}

// Finding is one audit() result entry.
type Finding struct {
	Type    string
	Level   IssueLevel
	Detail  string
	Measure float64
}

// Auditor is EthicsDecisionAuditor's record store.
type Auditor struct {
	mu        sync.Mutex
	decisions []*Decision
	clock     clock.Clock
	log       *logger.Logger

	RetentionLimit int
}

// New creates an Auditor with the default retention limit.
func New(c clock.Clock, log *logger.Logger) *Auditor {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Auditor{clock: c, log: log, RetentionLimit: DefaultRetentionLimit}
}

// RecordResult is record_decision's return shape.
type RecordResult struct {
	Recorded   bool
	DecisionID string
	Error      string
}

// RecordDecision appends a decision, truncating the oldest entries FIFO
// once RetentionLimit is exceeded.
func (a *Auditor) RecordDecision(attributes map[string]any, output bool, confidence float64) RecordResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if confidence < 0 || confidence > 1 {
		return RecordResult{Error: goverrors.Invalid(fmt.Sprintf("confidence=%v", confidence)).Error()}
	}

	id := ids.New("dec")
	a.decisions = append(a.decisions, &Decision{
		ID: id, Attributes: attributes, Output: output, Confidence: confidence,
		CreatedAt: clock.ISO8601(a.clock.Now()),
	})
	if limit := a.RetentionLimit; limit > 0 && len(a.decisions) > limit {
		overflow := len(a.decisions) - limit
		a.decisions = a.decisions[overflow:]
	}
	return RecordResult{Recorded: true, DecisionID: id}
}

// AuditResult is audit's return shape.
type AuditResult struct {
	Audited    bool
	Findings   []Finding
	Compliance Compliance
	Error      string
}

// Audit scans the tail n decisions (n<=0 or n>len means "all") for
// outcome disparity (when protectedAttr is non-empty) and low-confidence
// patterns.
func (a *Auditor) Audit(n int, protectedAttr string) AuditResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	tail := a.tail(n)
	var findings []Finding

	if protectedAttr != "" {
		if f, ok := outcomeDisparityFinding(tail, protectedAttr); ok {
			findings = append(findings, f)
		}
	}
	if f, ok := lowConfidenceFinding(tail); ok {
		findings = append(findings, f)
	}

	return AuditResult{Audited: true, Findings: findings, Compliance: deriveCompliance(findings)}
}

func (a *Auditor) tail(n int) []*Decision {
	if n <= 0 || n > len(a.decisions) {
		return a.decisions
	}
	return a.decisions[len(a.decisions)-n:]
}

func outcomeDisparityFinding(tail []*Decision, protectedAttr string) (Finding, bool) {
	if len(tail) == 0 {
		return Finding{}, false
	}
	groups := map[string]struct{ total, positive int }{}
	for _, d := range tail {
		key := "unknown"
		if v, ok := d.Attributes[protectedAttr]; ok && v != nil {
			key = fmt.Sprint(v)
		}
		g := groups[key]
		g.total++
		if d.Output {
			g.positive++
		}
		groups[key] = g
	}
	if len(groups) < 2 {
		return Finding{}, false
	}
	minRate, maxRate := 1.0, 0.0
	for _, g := range groups {
		if g.total == 0 {
			continue
		}
		rate := float64(g.positive) / float64(g.total)
		if rate < minRate {
			minRate = rate
		}
		if rate > maxRate {
			maxRate = rate
		}
	}
	gap := maxRate - minRate
	switch {
	case gap > 0.4:
		return Finding{Type: "outcome_disparity", Level: IssueMajor, Detail: protectedAttr, Measure: gap}, true
	case gap > 0.2:
		return Finding{Type: "outcome_disparity", Level: IssueMinor, Detail: protectedAttr, Measure: gap}, true
	default:
		return Finding{}, false
	}
}

func lowConfidenceFinding(tail []*Decision) (Finding, bool) {
	if len(tail) == 0 {
		return Finding{}, false
	}
	low := 0
	for _, d := range tail {
		if d.Confidence < 0.5 {
			low++
		}
	}
	fraction := float64(low) / float64(len(tail))
	if fraction <= 0.3 {
		return Finding{}, false
	}
	level := IssueMinor
	if fraction > 0.5 {
		level = IssueMajor
	}
	return Finding{Type: "low_confidence_pattern", Level: level, Measure: fraction}, true
}

func deriveCompliance(findings []Finding) Compliance {
	if len(findings) == 0 {
		return Compliant
	}
	for _, f := range findings {
		if f.Level == IssueMajor {
			return NonCompliant
		}
	}
	return MinorIssue
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (a *Auditor) GetSummary() SummaryResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"decisions":       len(a.decisions),
		"retention_limit": a.RetentionLimit,
	}}
}
