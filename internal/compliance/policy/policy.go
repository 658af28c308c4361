// Package policy implements PolicyEnforcer (spec §4.3): the compliance
// twin of EthicsRuleEngine, sharing the exception short-circuit shape but
// using an explicit per-rule operator vocabulary instead of fixed
// condition identifiers, plus a symbolic auto-remediate mode.
package policy

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ctxfield"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Operator is one of PolicyEnforcer's five comparison operators.
type Operator string

const (
	OpExists    Operator = "exists"
	OpEquals    Operator = "equals"
	OpNotEquals Operator = "not_equals"
	OpMin       Operator = "min"
	OpMax       Operator = "max"
)

// Policy is a declared compliance policy rule.
type Policy struct {
	ID       string
	Name     string
	Field    string
	Operator Operator
	Value    any
	Severity severity.Severity
	Active   bool
}

// Exception is a per-policy waiver, mirroring rules.Exception.
type Exception struct {
	ID        string
	PolicyID  string
	Reason    string
	Active    bool
	GrantedAt string
	RevokedAt string
}

// Violation is one policy's evaluation failure against a context.
type Violation struct {
	PolicyID   string
	PolicyName string
	Field      string
	Actual     any
	Expected   any
	Severity   severity.Severity
}

// Remediation is a symbolic record appended when AutoRemediate is on and a
// violation fires. It never modifies the evaluated context (spec §4.3).
type Remediation struct {
	ID        string
	PolicyID  string
	Field     string
	CreatedAt string
}

// Enforcer is PolicyEnforcer's record store.
type Enforcer struct {
	mu            sync.RWMutex
	policies      map[string]*Policy
	policyOrder   []string
	exceptions    map[string]*Exception
	byPolicy      map[string][]string
	remediations map[string]*Remediation
	remediOrder  []string
	clock        clock.Clock
	log          *logger.Logger

	AutoRemediate bool
}

// New creates an empty Enforcer with auto-remediate off.
func New(c clock.Clock, log *logger.Logger) *Enforcer {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Enforcer{
		policies:     make(map[string]*Policy),
		exceptions:   make(map[string]*Exception),
		byPolicy:     make(map[string][]string),
		remediations: make(map[string]*Remediation),
		clock:        c,
		log:          log,
	}
}

// AddPolicyResult is add_policy's return shape.
type AddPolicyResult struct {
	Added    bool
	PolicyID string
	Error    string
}

// AddPolicy declares a new active policy rule.
func (e *Enforcer) AddPolicy(name, field string, op Operator, value any, sev severity.Severity) AddPolicyResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" || field == "" {
		return AddPolicyResult{Error: goverrors.Invalid("name/field").Error()}
	}
	switch op {
	case OpExists, OpEquals, OpNotEquals, OpMin, OpMax:
	default:
		return AddPolicyResult{Error: goverrors.Invalid(fmt.Sprintf("operator=%s", op)).Error()}
	}

	id := ids.New("pol")
	e.policies[id] = &Policy{ID: id, Name: name, Field: field, Operator: op, Value: value, Severity: sev, Active: true}
	e.policyOrder = append(e.policyOrder, id)
	return AddPolicyResult{Added: true, PolicyID: id}
}

// EvaluateResult is evaluate's return shape.
type EvaluateResult struct {
	Evaluated      bool
	Violations     []Violation
	Compliant      bool
	RemediationIDs []string
}

// Evaluate runs every active policy against ctx, short-circuiting any
// policy with an active exception. When AutoRemediate is on, each
// violation also appends a symbolic Remediation record.
func (e *Enforcer) Evaluate(ctx map[string]any) EvaluateResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	var violations []Violation
	var remediationIDs []string
	for _, id := range e.policyOrder {
		p := e.policies[id]
		if !p.Active || e.hasActiveException(id) {
			continue
		}
		v, violated := evaluatePolicy(p, ctx)
		if !violated {
			continue
		}
		violations = append(violations, v)
		if e.AutoRemediate {
			remID := ids.New("crem")
			e.remediations[remID] = &Remediation{ID: remID, PolicyID: p.ID, Field: p.Field, CreatedAt: clock.ISO8601(e.clock.Now())}
			e.remediOrder = append(e.remediOrder, remID)
			remediationIDs = append(remediationIDs, remID)
		}
	}
	return EvaluateResult{Evaluated: true, Violations: violations, Compliant: len(violations) == 0, RemediationIDs: remediationIDs}
}

func evaluatePolicy(p *Policy, ctx map[string]any) (Violation, bool) {
	actual, exists := ctxfield.Get(ctx, p.Field)

	violated := false
	switch p.Operator {
	case OpExists:
		violated = !exists
	case OpEquals:
		violated = exists && !reflect.DeepEqual(actual, p.Value)
	case OpNotEquals:
		violated = exists && reflect.DeepEqual(actual, p.Value)
	case OpMin:
		av, ok := ctxfield.GetFloat(ctx, p.Field)
		expected, _ := toFloat(p.Value)
		violated = ok && av < expected
	case OpMax:
		av, ok := ctxfield.GetFloat(ctx, p.Field)
		expected, _ := toFloat(p.Value)
		violated = ok && av > expected
	}

	if !violated {
		return Violation{}, false
	}
	return Violation{
		PolicyID: p.ID, PolicyName: p.Name, Field: p.Field,
		Actual: actual, Expected: p.Value, Severity: p.Severity,
	}, true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func (e *Enforcer) hasActiveException(policyID string) bool {
	for _, exID := range e.byPolicy[policyID] {
		if ex, ok := e.exceptions[exID]; ok && ex.Active {
			return true
		}
	}
	return false
}

// GrantExceptionResult is grant_exception's return shape.
type GrantExceptionResult struct {
	Granted     bool
	ExceptionID string
	Error       string
}

// GrantException waives a policy's enforcement while active.
func (e *Enforcer) GrantException(policyID, reason string) GrantExceptionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.policies[policyID]; !ok {
		return GrantExceptionResult{Error: goverrors.NotFound("policy").Error()}
	}
	id := ids.New("pexc")
	e.exceptions[id] = &Exception{ID: id, PolicyID: policyID, Reason: reason, Active: true, GrantedAt: clock.ISO8601(e.clock.Now())}
	e.byPolicy[policyID] = append(e.byPolicy[policyID], id)
	return GrantExceptionResult{Granted: true, ExceptionID: id}
}

// RevokeExceptionResult is revoke_exception's return shape.
type RevokeExceptionResult struct {
	Revoked bool
	Error   string
}

// RevokeException restores enforcement immediately.
func (e *Enforcer) RevokeException(exceptionID string) RevokeExceptionResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	ex, ok := e.exceptions[exceptionID]
	if !ok {
		return RevokeExceptionResult{Error: goverrors.NotFound("exception").Error()}
	}
	ex.Active = false
	ex.RevokedAt = clock.ISO8601(e.clock.Now())
	return RevokeExceptionResult{Revoked: true}
}

// GetPolicyInfoResult is get_policy_info's return shape.
type GetPolicyInfoResult struct {
	Retrieved bool
	Policy    *Policy
	Error     string
}

// GetPolicyInfo retrieves a declared policy by id.
func (e *Enforcer) GetPolicyInfo(policyID string) GetPolicyInfoResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.policies[policyID]
	if !ok {
		return GetPolicyInfoResult{Error: goverrors.NotFound("policy").Error()}
	}
	return GetPolicyInfoResult{Retrieved: true, Policy: p}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (e *Enforcer) GetSummary() SummaryResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"policies":     len(e.policies),
		"exceptions":   len(e.exceptions),
		"remediations": len(e.remediations),
	}}
}
