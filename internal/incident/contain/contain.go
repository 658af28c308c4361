// Package contain implements AutoContainment (spec §4.20): symbolic
// containment actions applied across the Cartesian product of actions
// and targets.
package contain

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Action enumerates the containment actions AutoContainment applies
// (spec §4.20).
type Action string

const (
	ActionNetworkIsolate   Action = "network_isolate"
	ActionAccountSuspend   Action = "account_suspend"
	ActionServiceShutdown  Action = "service_shutdown"
	ActionPortBlock        Action = "port_block"
	ActionIPBlock          Action = "ip_block"
	ActionProcessKill      Action = "process_kill"
	ActionFileQuarantine   Action = "file_quarantine"
	ActionCredentialRevoke Action = "credential_revoke"
)

var validAction = map[Action]bool{
	ActionNetworkIsolate: true, ActionAccountSuspend: true, ActionServiceShutdown: true,
	ActionPortBlock: true, ActionIPBlock: true, ActionProcessKill: true,
	ActionFileQuarantine: true, ActionCredentialRevoke: true,
}

// RecordStatus is a Quarantine's or Suspension's lifecycle state.
type RecordStatus string

const (
	StatusActive     RecordStatus = "active"
	StatusReleased   RecordStatus = "released"
	StatusReinstated RecordStatus = "reinstated"
)

// Quarantine is created by network_isolate.
type Quarantine struct {
	ID         string
	IncidentID string
	Target     string
	Status     RecordStatus
}

// Suspension is created by account_suspend.
type Suspension struct {
	ID         string
	IncidentID string
	Target     string
	Status     RecordStatus
}

// Containment is AutoContainment's record store.
type Containment struct {
	mu            sync.Mutex
	quarantines   map[string]*Quarantine
	suspensions   map[string]*Suspension
	shutdownCount int
	clock         clock.Clock
	log           *logger.Logger
}

// New creates an empty Containment.
func New(c clock.Clock, log *logger.Logger) *Containment {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Containment{quarantines: make(map[string]*Quarantine), suspensions: make(map[string]*Suspension), clock: c, log: log}
}

// ContainResult is contain_incident's return shape.
type ContainResult struct {
	Contained        bool
	QuarantineIDs    []string
	SuspensionIDs    []string
	ShutdownsApplied int
	Error            string
}

// ContainIncident applies every action in actions to every target in
// targets (the Cartesian product), per spec §4.20's per-action side
// effects.
func (c *Containment) ContainIncident(incidentID string, actions []Action, targets []string) ContainResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if incidentID == "" || len(actions) == 0 || len(targets) == 0 {
		return ContainResult{Error: goverrors.Invalid("incident_id/actions/targets").Error()}
	}
	for _, a := range actions {
		if !validAction[a] {
			return ContainResult{Error: goverrors.Invalid("action").Error()}
		}
	}

	var quarantineIDs, suspensionIDs []string
	shutdowns := 0
	for _, action := range actions {
		for _, target := range targets {
			switch action {
			case ActionNetworkIsolate:
				id := ids.New("qtn")
				c.quarantines[id] = &Quarantine{ID: id, IncidentID: incidentID, Target: target, Status: StatusActive}
				quarantineIDs = append(quarantineIDs, id)
			case ActionAccountSuspend:
				id := ids.New("sus")
				c.suspensions[id] = &Suspension{ID: id, IncidentID: incidentID, Target: target, Status: StatusActive}
				suspensionIDs = append(suspensionIDs, id)
			case ActionServiceShutdown:
				shutdowns++
			default:
				// Symbolic-only actions (spec §4.20 names eight actions
				// but only network_isolate, account_suspend, and
				// service_shutdown have described side effects).
			}
		}
	}
	c.shutdownCount += shutdowns

	return ContainResult{Contained: true, QuarantineIDs: quarantineIDs, SuspensionIDs: suspensionIDs, ShutdownsApplied: shutdowns}
}

// ReleaseResult is release's return shape.
type ReleaseResult struct {
	Released bool
	Error    string
}

// ReleaseQuarantine flips a Quarantine's status to released.
func (c *Containment) ReleaseQuarantine(quarantineID string) ReleaseResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.quarantines[quarantineID]
	if !ok {
		return ReleaseResult{Error: goverrors.NotFound("quarantine").Error()}
	}
	q.Status = StatusReleased
	return ReleaseResult{Released: true}
}

// ReinstateResult is reinstate's return shape.
type ReinstateResult struct {
	Reinstated bool
	Error      string
}

// ReinstateSuspension flips a Suspension's status to reinstated.
func (c *Containment) ReinstateSuspension(suspensionID string) ReinstateResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.suspensions[suspensionID]
	if !ok {
		return ReinstateResult{Error: goverrors.NotFound("suspension").Error()}
	}
	s.Status = StatusReinstated
	return ReinstateResult{Reinstated: true}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (c *Containment) GetSummary() SummaryResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"quarantines": len(c.quarantines),
		"suspensions": len(c.suspensions),
		"shutdowns":   c.shutdownCount,
	}}
}
