// Package recovery implements RecoveryExecutor (spec §4.24): a recovery
// plan's actions, each checkpointed before execution, with rollback and
// a symbolic post-recovery verification pass.
package recovery

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// ActionStatus is a recovery action's lifecycle state.
type ActionStatus string

const (
	ActionStatusExecuted   ActionStatus = "executed"
	ActionStatusRolledBack ActionStatus = "rolled_back"
)

// CheckpointStatus is a Checkpoint's lifecycle state.
type CheckpointStatus string

const (
	CheckpointActive   CheckpointStatus = "active"
	CheckpointRestored CheckpointStatus = "restored"
)

// Plan groups a recovery's ordered actions.
type Plan struct {
	ID         string
	IncidentID string
	ActionIDs  []string
}

// RecoveryAction is one action taken as part of a recovery plan.
type RecoveryAction struct {
	ID           string
	PlanID       string
	Description  string
	CheckpointID string
	Status       ActionStatus
}

// Checkpoint captures pre-action state so an action can be rolled back.
type Checkpoint struct {
	ID       string
	ActionID string
	Status   CheckpointStatus
}

// Executor is RecoveryExecutor's record store.
type Executor struct {
	mu          sync.Mutex
	plans       map[string]*Plan
	actions     map[string]*RecoveryAction
	checkpoints map[string]*Checkpoint
	clock       clock.Clock
	log         *logger.Logger
}

// New creates an empty Executor.
func New(c clock.Clock, log *logger.Logger) *Executor {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Executor{
		plans: make(map[string]*Plan), actions: make(map[string]*RecoveryAction),
		checkpoints: make(map[string]*Checkpoint), clock: c, log: log,
	}
}

// CreatePlanResult is create_plan's return shape.
type CreatePlanResult struct {
	Created bool
	PlanID  string
	Error   string
}

// CreatePlan starts a new recovery plan for an incident.
func (e *Executor) CreatePlan(incidentID string) CreatePlanResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if incidentID == "" {
		return CreatePlanResult{Error: goverrors.Invalid("incident_id").Error()}
	}
	id := ids.New("rpl")
	e.plans[id] = &Plan{ID: id, IncidentID: incidentID}
	return CreatePlanResult{Created: true, PlanID: id}
}

// ExecuteResult is execute_recovery's return shape.
type ExecuteResult struct {
	Executed     bool
	ActionID     string
	CheckpointID string
	Error        string
}

// ExecuteRecovery creates a Checkpoint before performing an action, then
// appends the action to the plan.
func (e *Executor) ExecuteRecovery(planID, description string) ExecuteResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	plan, ok := e.plans[planID]
	if !ok {
		return ExecuteResult{Error: goverrors.NotFound("plan").Error()}
	}

	actionID := ids.New("rac")
	checkpointID := ids.New("chk")
	e.checkpoints[checkpointID] = &Checkpoint{ID: checkpointID, ActionID: actionID, Status: CheckpointActive}
	e.actions[actionID] = &RecoveryAction{ID: actionID, PlanID: planID, Description: description, CheckpointID: checkpointID, Status: ActionStatusExecuted}
	plan.ActionIDs = append(plan.ActionIDs, actionID)

	return ExecuteResult{Executed: true, ActionID: actionID, CheckpointID: checkpointID}
}

// RollbackResult is rollback's return shape.
type RollbackResult struct {
	RolledBack bool
	Error      string
}

// Rollback flips an action's checkpoint to restored and the action
// itself to rolled_back.
func (e *Executor) Rollback(actionID string) RollbackResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	action, ok := e.actions[actionID]
	if !ok {
		return RollbackResult{Error: goverrors.NotFound("action").Error()}
	}
	cp, ok := e.checkpoints[action.CheckpointID]
	if !ok {
		return RollbackResult{Error: goverrors.NotFound("checkpoint").Error()}
	}
	cp.Status = CheckpointRestored
	action.Status = ActionStatusRolledBack
	return RollbackResult{RolledBack: true}
}

// VerifyResult is verify_recovery's return shape.
type VerifyResult struct {
	Verified bool
	Results  map[string]bool
}

// VerifyRecovery runs a symbolic check pass: every named check passes in
// the baseline implementation (spec §4.24).
func (e *Executor) VerifyRecovery(checks []string) VerifyResult {
	results := make(map[string]bool, len(checks))
	for _, c := range checks {
		results[c] = true
	}
	return VerifyResult{Verified: true, Results: results}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (e *Executor) GetSummary() SummaryResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	rolledBack := 0
	for _, a := range e.actions {
		if a.Status == ActionStatusRolledBack {
			rolledBack++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"plans":       len(e.plans),
		"actions":     len(e.actions),
		"rolled_back": rolledBack,
	}}
}
