// Package access implements AccessAuditor (SPEC_FULL.md §2a): an
// append-only log of (actor, resource, action, decision) access events,
// queryable per resource, per unauthorized attempt, and per privileged
// action, plus a tail-window unusual-denial sweep.
//
// spec.md §1 names "access auditing" as part of the Compliance core but
// gives it no dedicated §4 entry. Grounded on
// original_source/app/core/compliance/compliance_access_auditor.py's
// ComplianceAccessAuditor; DetectUnusualAccess has no counterpart there
// and is this package's own addition.
package access

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Decision is whether an access attempt was allowed or denied.
type Decision string

const (
	DecisionAllowed Decision = "allowed"
	DecisionDenied  Decision = "denied"
)

// Event is one logged access attempt.
type Event struct {
	ID        string
	Actor     string
	Resource  string
	Action    string
	Decision  Decision
	CreatedAt string
}

// DefaultUnusualDenialRatio mirrors ProtectedClassMonitor's differential
// treatment threshold for consistency within the codebase.
const DefaultUnusualDenialRatio = 0.3

// privilegedActions are the access types ComplianceAccessAuditor treats
// as privilege usage worth its own report, independent of authorization.
var privilegedActions = map[string]bool{"admin": true, "delete": true, "export": true}

// Auditor is AccessAuditor's record store.
type Auditor struct {
	mu             sync.Mutex
	events         []*Event
	byActor        map[string][]int // actor -> indices into events, insertion order
	unauthorized   []*Event
	privilegeUsage []*Event
	clock          clock.Clock
	log            *logger.Logger

	UnusualDenialRatio float64
}

// New creates an Auditor with the default unusual-denial threshold.
func New(c clock.Clock, log *logger.Logger) *Auditor {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Auditor{byActor: make(map[string][]int), clock: c, log: log, UnusualDenialRatio: DefaultUnusualDenialRatio}
}

// RecordResult is record_access's return shape.
type RecordResult struct {
	Recorded bool
	EventID  string
	Error    string
}

// RecordAccess logs an access attempt. It never fails validation beyond
// requiring actor and resource (spec SPEC_FULL.md §2a).
func (a *Auditor) RecordAccess(actor, resource, action string, decision Decision) RecordResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == "" || resource == "" {
		return RecordResult{Error: goverrors.Invalid("actor/resource").Error()}
	}
	id := ids.New("acc")
	event := &Event{ID: id, Actor: actor, Resource: resource, Action: action, Decision: decision, CreatedAt: clock.ISO8601(a.clock.Now())}
	a.events = append(a.events, event)
	a.byActor[actor] = append(a.byActor[actor], len(a.events)-1)

	if decision == DecisionDenied {
		a.unauthorized = append(a.unauthorized, event)
	}
	if privilegedActions[action] {
		a.privilegeUsage = append(a.privilegeUsage, event)
	}

	return RecordResult{Recorded: true, EventID: id}
}

// QueryResult is query_access's return shape.
type QueryResult struct {
	Retrieved bool
	Events    []*Event
}

// QueryAccess returns the ordered access trail for a resource.
func (a *Auditor) QueryAccess(resource string) QueryResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	var matched []*Event
	for _, e := range a.events {
		if e.Resource == resource {
			matched = append(matched, e)
		}
	}
	return QueryResult{Retrieved: true, Events: matched}
}

// ResourceAccessResult is get_resource_access's return shape.
type ResourceAccessResult struct {
	Retrieved    bool
	Events       []*Event
	UniqueActors []string
}

// GetResourceAccess returns a resource's access trail plus the set of
// distinct actors who appear in it.
func (a *Auditor) GetResourceAccess(resource string) ResourceAccessResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	var matched []*Event
	seen := make(map[string]bool)
	var actors []string
	for _, e := range a.events {
		if e.Resource != resource {
			continue
		}
		matched = append(matched, e)
		if !seen[e.Actor] {
			seen[e.Actor] = true
			actors = append(actors, e.Actor)
		}
	}
	return ResourceAccessResult{Retrieved: true, Events: matched, UniqueActors: actors}
}

// UnauthorizedAttemptsResult is get_unauthorized_attempts's return shape.
type UnauthorizedAttemptsResult struct {
	Retrieved bool
	Events    []*Event
}

// GetUnauthorizedAttempts returns every denied access attempt ever
// logged, in the order they occurred.
func (a *Auditor) GetUnauthorizedAttempts() UnauthorizedAttemptsResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return UnauthorizedAttemptsResult{Retrieved: true, Events: append([]*Event{}, a.unauthorized...)}
}

// PrivilegeReportResult is get_privilege_report's return shape.
type PrivilegeReportResult struct {
	Retrieved          bool
	TotalPrivilegeUses int
	ByType             map[string]int
	ByUser             map[string]int
}

// GetPrivilegeReport summarizes every admin/delete/export access logged
// so far, broken down by access type and by actor.
func (a *Auditor) GetPrivilegeReport() PrivilegeReportResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	byType := make(map[string]int)
	byUser := make(map[string]int)
	for _, e := range a.privilegeUsage {
		byType[e.Action]++
		byUser[e.Actor]++
	}
	return PrivilegeReportResult{Retrieved: true, TotalPrivilegeUses: len(a.privilegeUsage), ByType: byType, ByUser: byUser}
}

// UnusualAccessResult is detect_unusual_access's return shape.
type UnusualAccessResult struct {
	Checked    bool
	Unusual    bool
	DenialRate float64
	Error      string
}

// DetectUnusualAccess flags an actor whose denied-action ratio over the
// tail n of their own events exceeds UnusualDenialRatio.
func (a *Auditor) DetectUnusualAccess(actor string, n int) UnusualAccessResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if actor == "" {
		return UnusualAccessResult{Error: goverrors.Invalid("actor").Error()}
	}
	indices := a.byActor[actor]
	if n > 0 && n < len(indices) {
		indices = indices[len(indices)-n:]
	}
	if len(indices) == 0 {
		return UnusualAccessResult{Checked: true}
	}
	denied := 0
	for _, idx := range indices {
		if a.events[idx].Decision == DecisionDenied {
			denied++
		}
	}
	rate := float64(denied) / float64(len(indices))
	return UnusualAccessResult{Checked: true, Unusual: rate > a.UnusualDenialRatio, DenialRate: rate}
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
		"events":         len(a.events),
		"unauthorized":   len(a.unauthorized),
		"privilege_uses": len(a.privilegeUsage),
		"actors":         len(a.byActor),
	}}
}
