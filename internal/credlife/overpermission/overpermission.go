// Package overpermission implements OverPermissionDetector (SPEC_FULL.md
// §2b): named scope policies, permission scans against those policies,
// and scope-reduction remediation, independent of KeyInventory.
//
// Grounded directly on
// original_source/app/core/credlife/over_permission_detector.py's
// OverPermissionDetector, which is a fully standalone class with its
// own policy/scan/violation maps rather than a KeyInventory method.
package overpermission

import (
	"strings"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Policy is a named scope policy a scan can be checked against.
type Policy struct {
	ID              string
	Name            string
	Service         string
	RequiredScopes  []string
	MaxScopes       int
	ForbiddenScopes []string
	Active          bool
	CreatedAt       string
}

// Violation is one finding from ScanKeyPermissions.
type Violation struct {
	ID         string
	Type       string
	Detail     string
	Scopes     []string
	Risk       severity.Severity
	KeyID      string
	DetectedAt string
}

// ScanRecord is one completed scan's summary.
type ScanRecord struct {
	KeyID        string
	CurrentCount int
	UsedCount    int
	UnusedCount  int
	Violations   int
	RiskScore    float64
}

// Recommendation is one remediation suggestion from GetRemediation.
type Recommendation struct {
	Type              string
	Detail            string
	ScopesToRemove    []string
	RecommendedScopes []string
	Reduction         int
	Priority          severity.Severity
	KeyID             string
}

// Detector is OverPermissionDetector's record store.
type Detector struct {
	mu              sync.Mutex
	policies        map[string]Policy
	scans           []ScanRecord
	violations      []Violation
	recommendations []Recommendation
	clock           clock.Clock
	log             *logger.Logger
}

// New creates an empty Detector.
func New(c clock.Clock, log *logger.Logger) *Detector {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Detector{policies: make(map[string]Policy), clock: c, log: log}
}

// CreatePolicyResult is create_policy's return shape.
type CreatePolicyResult struct {
	Created  bool
	PolicyID string
}

// CreatePolicy registers a named scope policy, replacing any existing
// policy under the same name.
func (d *Detector) CreatePolicy(name, service string, requiredScopes []string, maxScopes int, forbiddenScopes []string) CreatePolicyResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := ids.New("op")
	d.policies[name] = Policy{
		ID: id, Name: name, Service: service, RequiredScopes: requiredScopes,
		MaxScopes: maxScopes, ForbiddenScopes: forbiddenScopes, Active: true,
		CreatedAt: clock.ISO8601(d.clock.Now()),
	}
	return CreatePolicyResult{Created: true, PolicyID: id}
}

// ScanResult is scan_key_permissions's return shape.
type ScanResult struct {
	Scanned          bool
	CurrentScopes    int
	UsedScopes       int
	UnusedScopes     int
	RiskScore        float64
	ViolationDetails []Violation
}

// ScanKeyPermissions checks currentScopes against usedScopes and,
// optionally, a named policy, emitting unused_scopes, unused_admin,
// exceeds_max_scopes, and forbidden_scopes violations, and a weighted
// risk score (critical 0.4, high 0.3, medium 0.2, low 0.1 per
// violation, capped at 1.0).
func (d *Detector) ScanKeyPermissions(keyID string, currentScopes, usedScopes []string, policyName, service string) ScanResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	used := make(map[string]bool, len(usedScopes))
	for _, s := range usedScopes {
		used[s] = true
	}

	var violations []Violation
	var unused []string
	for _, s := range currentScopes {
		if !used[s] {
			unused = append(unused, s)
		}
	}
	if len(unused) > 0 {
		risk := severity.Medium
		if len(unused) > 3 {
			risk = severity.High
		}
		violations = append(violations, Violation{Type: "unused_scopes", Detail: "unused scopes present", Scopes: unused, Risk: risk})
	}

	var adminScopes []string
	for _, s := range currentScopes {
		low := strings.ToLower(s)
		if strings.Contains(low, "admin") || strings.Contains(low, "delete") {
			adminScopes = append(adminScopes, s)
		}
	}
	if len(adminScopes) > 0 {
		anyUsed := false
		for _, s := range adminScopes {
			if used[s] {
				anyUsed = true
				break
			}
		}
		if !anyUsed {
			violations = append(violations, Violation{Type: "unused_admin", Detail: "admin privileges never used", Scopes: adminScopes, Risk: severity.Critical})
		}
	}

	if policy, ok := d.policies[policyName]; ok {
		if len(currentScopes) > policy.MaxScopes {
			violations = append(violations, Violation{Type: "exceeds_max_scopes", Detail: "scope count exceeds policy maximum", Risk: severity.High})
		}
		forbiddenSet := make(map[string]bool, len(policy.ForbiddenScopes))
		for _, s := range policy.ForbiddenScopes {
			forbiddenSet[s] = true
		}
		var forbidden []string
		for _, s := range currentScopes {
			if forbiddenSet[s] {
				forbidden = append(forbidden, s)
			}
		}
		if len(forbidden) > 0 {
			violations = append(violations, Violation{Type: "forbidden_scopes", Detail: "forbidden scopes granted", Scopes: forbidden, Risk: severity.Critical})
		}
	}

	riskScore := 0.0
	for _, v := range violations {
		switch v.Risk {
		case severity.Critical:
			riskScore += 0.4
		case severity.High:
			riskScore += 0.3
		case severity.Medium:
			riskScore += 0.2
		default:
			riskScore += 0.1
		}
	}
	if riskScore > 1.0 {
		riskScore = 1.0
	}

	now := clock.ISO8601(d.clock.Now())
	for i := range violations {
		violations[i].ID = ids.New("vl")
		violations[i].KeyID = keyID
		violations[i].DetectedAt = now
	}
	d.violations = append(d.violations, violations...)

	d.scans = append(d.scans, ScanRecord{
		KeyID: keyID, CurrentCount: len(currentScopes), UsedCount: len(usedScopes),
		UnusedCount: len(unused), Violations: len(violations), RiskScore: riskScore,
	})

	return ScanResult{
		Scanned: true, CurrentScopes: len(currentScopes), UsedScopes: len(usedScopes),
		UnusedScopes: len(unused), RiskScore: riskScore, ViolationDetails: violations,
	}
}

// RemediationResult is get_remediation's return shape.
type RemediationResult struct {
	Retrieved       bool
	Recommendations []Recommendation
}

// GetRemediation recommends removing unused scopes and, when the used
// set differs from the current set, reducing to exactly the used scopes.
func (d *Detector) GetRemediation(keyID string, currentScopes, usedScopes []string) RemediationResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	used := make(map[string]bool, len(usedScopes))
	for _, s := range usedScopes {
		used[s] = true
	}

	var recs []Recommendation
	var unused []string
	for _, s := range currentScopes {
		if !used[s] {
			unused = append(unused, s)
		}
	}
	if len(unused) > 0 {
		priority := severity.Medium
		if len(unused) > 3 {
			priority = severity.High
		}
		recs = append(recs, Recommendation{Type: "remove_scopes", Detail: "remove unused scopes", ScopesToRemove: unused, Priority: priority})
	}

	if !equalScopes(currentScopes, usedScopes) {
		recs = append(recs, Recommendation{
			Type: "scope_reduction", Detail: "reduce scopes to what is actually used",
			RecommendedScopes: append([]string{}, usedScopes...), Reduction: len(currentScopes) - len(usedScopes), Priority: severity.Medium,
		})
	}

	for i := range recs {
		recs[i].KeyID = keyID
	}
	d.recommendations = append(d.recommendations, recs...)
	return RemediationResult{Retrieved: true, Recommendations: recs}
}

// ApplyResult is apply_remediation's return shape.
type ApplyResult struct {
	Applied       bool
	RemovedScopes []string
	AppliedAt     string
}

// ApplyRemediation records a symbolic application of a scope removal;
// no external authorization system is called (spec's Non-goals exclude
// real network enforcement).
func (d *Detector) ApplyRemediation(keyID string, scopesToRemove []string) ApplyResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return ApplyResult{Applied: true, RemovedScopes: scopesToRemove, AppliedAt: clock.ISO8601(d.clock.Now())}
}

func equalScopes(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (d *Detector) GetSummary() SummaryResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"policies":        len(d.policies),
		"scans":           len(d.scans),
		"violations":      len(d.violations),
		"recommendations": len(d.recommendations),
	}}
}
