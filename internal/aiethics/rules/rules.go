// Package rules implements EthicsRuleEngine (spec §4.3): fixed-identifier
// condition evaluation against a context dictionary, with per-rule
// exceptions that short-circuit evaluation to passing while active.
//
// Direction-of-violation for the four fixed identifiers is intrinsic to
// the condition name per spec.md but spec.md does not spell out which
// direction each one takes; this implementation resolves the ambiguity
// as: bias_score and disparity_ratio share the RuleEngine's own sense of
// "a ratio below threshold is bad" only for disparity_ratio (mirroring
// BiasDetector's disparate-impact ratio, where LOWER is worse), while
// bias_score follows BiasDetector's score convention where HIGHER is
// worse. fairness_score and transparency both read as "the lower, the
// worse" (mirroring FairnessAnalyzer's is_fair = score >= threshold and
// TransparencyReporter's disclosure completeness). See DESIGN.md.
package rules

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ctxfield"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Fixed condition identifiers (spec §4.3).
const (
	ConditionBiasScore      = "bias_score"
	ConditionFairnessScore  = "fairness_score"
	ConditionDisparityRatio = "disparity_ratio"
	ConditionTransparency   = "transparency"
)

// Rule is a declared ethics rule (spec §3 Policy/Rule entity).
type Rule struct {
	ID        string
	Name      string
	Category  string
	Condition string
	Threshold float64
	Severity  severity.Severity
	Active    bool
}

// Exception is a per-rule waiver.
type Exception struct {
	ID        string
	RuleID    string
	Reason    string
	Active    bool
	GrantedAt string
	RevokedAt string
}

// Violation is one rule's evaluation failure against a context.
type Violation struct {
	RuleID    string
	RuleName  string
	Condition string
	Value     float64
	Threshold float64
	Severity  severity.Severity
}

// Engine is EthicsRuleEngine's record store.
type Engine struct {
	mu         sync.RWMutex
	rules      map[string]*Rule
	ruleOrder  []string
	exceptions map[string]*Exception
	byRule     map[string][]string // rule id -> exception ids, insertion order
	clock      clock.Clock
	log        *logger.Logger
}

// New creates an empty Engine.
func New(c clock.Clock, log *logger.Logger) *Engine {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{
		rules:      make(map[string]*Rule),
		exceptions: make(map[string]*Exception),
		byRule:     make(map[string][]string),
		clock:      c,
		log:        log,
	}
}

// AddRuleResult is add_rule's return shape.
type AddRuleResult struct {
	Added  bool
	RuleID string
	Error  string
}

// AddRule declares a new active rule.
func (e *Engine) AddRule(name, category, condition string, threshold float64, sev severity.Severity) AddRuleResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if name == "" || condition == "" {
		return AddRuleResult{Error: goverrors.Invalid("name/condition").Error()}
	}

	id := ids.New("rl")
	e.rules[id] = &Rule{
		ID: id, Name: name, Category: category, Condition: condition,
		Threshold: threshold, Severity: sev, Active: true,
	}
	e.ruleOrder = append(e.ruleOrder, id)
	return AddRuleResult{Added: true, RuleID: id}
}

// EvaluateResult is evaluate's return shape.
type EvaluateResult struct {
	Evaluated  bool
	Violations []Violation
	Compliant  bool
	Error      string
}

// Evaluate runs every active rule against ctx.
func (e *Engine) Evaluate(ctx map[string]any) EvaluateResult {
	e.mu.RLock()
	defer e.mu.RUnlock()

	var violations []Violation
	for _, id := range e.ruleOrder {
		r := e.rules[id]
		if !r.Active {
			continue
		}
		if e.hasActiveException(id) {
			continue
		}
		if v, ok := e.evaluateRule(r, ctx); ok {
			violations = append(violations, v)
		}
	}
	return EvaluateResult{Evaluated: true, Violations: violations, Compliant: len(violations) == 0}
}

func (e *Engine) evaluateRule(r *Rule, ctx map[string]any) (Violation, bool) {
	var value float64
	var ok bool
	var violates bool

	switch r.Condition {
	case ConditionBiasScore:
		value, ok = ctxfield.GetFloat(ctx, r.Condition)
		violates = ok && value > r.Threshold
	case ConditionFairnessScore:
		value, ok = ctxfield.GetFloat(ctx, r.Condition)
		violates = ok && value < r.Threshold
	case ConditionDisparityRatio:
		value, ok = ctxfield.GetFloat(ctx, r.Condition)
		violates = ok && value < r.Threshold
	case ConditionTransparency:
		value, ok = ctxfield.GetFloat(ctx, r.Condition)
		violates = ok && value < r.Threshold
	default:
		value, ok = ctxfield.GetFloat(ctx, r.Condition)
		violates = ok && value > r.Threshold
	}

	if !ok || !violates {
		return Violation{}, false
	}
	return Violation{
		RuleID: r.ID, RuleName: r.Name, Condition: r.Condition,
		Value: value, Threshold: r.Threshold, Severity: r.Severity,
	}, true
}

func (e *Engine) hasActiveException(ruleID string) bool {
	for _, exID := range e.byRule[ruleID] {
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

// GrantException waives a rule's enforcement while active.
func (e *Engine) GrantException(ruleID, reason string) GrantExceptionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.rules[ruleID]; !ok {
		return GrantExceptionResult{Error: goverrors.NotFound("rule").Error()}
	}

	id := ids.New("exc")
	e.exceptions[id] = &Exception{
		ID: id, RuleID: ruleID, Reason: reason, Active: true,
		GrantedAt: clock.ISO8601(e.clock.Now()),
	}
	e.byRule[ruleID] = append(e.byRule[ruleID], id)
	return GrantExceptionResult{Granted: true, ExceptionID: id}
}

// RevokeExceptionResult is revoke_exception's return shape.
type RevokeExceptionResult struct {
	Revoked bool
	Error   string
}

// RevokeException restores enforcement immediately.
func (e *Engine) RevokeException(exceptionID string) RevokeExceptionResult {
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

// GetRuleInfoResult is get_rule_info's return shape.
type GetRuleInfoResult struct {
	Retrieved bool
	Rule      *Rule
	Error     string
}

// GetRuleInfo retrieves a declared rule by id.
func (e *Engine) GetRuleInfo(ruleID string) GetRuleInfoResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.rules[ruleID]
	if !ok {
		return GetRuleInfoResult{Error: goverrors.NotFound("rule").Error()}
	}
	return GetRuleInfoResult{Retrieved: true, Rule: r}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (e *Engine) GetSummary() SummaryResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	active := 0
	for _, r := range e.rules {
		if r.Active {
			active++
		}
	}
	activeExceptions := 0
	for _, ex := range e.exceptions {
		if ex.Active {
			activeExceptions++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"rules":             len(e.rules),
		"active_rules":      active,
		"exceptions":        len(e.exceptions),
		"active_exceptions": activeExceptions,
	}}
}
