package recovery

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestExecuteRecoveryCreatesCheckpointBeforeAction(t *testing.T) {
	e := New(clock.Fixed{}, nil)
	plan := e.CreatePlan("inc_1")
	res := e.ExecuteRecovery(plan.PlanID, "restore database from backup")
	if !res.Executed || res.CheckpointID == "" {
		t.Fatalf("ExecuteRecovery failed: %+v", res)
	}
}

func TestRollbackFlipsCheckpointAndAction(t *testing.T) {
	e := New(clock.Fixed{}, nil)
	plan := e.CreatePlan("inc_1")
	res := e.ExecuteRecovery(plan.PlanID, "restart service")

	rb := e.Rollback(res.ActionID)
	if !rb.RolledBack {
		t.Fatalf("Rollback failed: %s", rb.Error)
	}
}

func TestVerifyRecoveryAllPass(t *testing.T) {
	e := New(clock.Fixed{}, nil)
	res := e.VerifyRecovery([]string{"database_reachable", "service_healthy"})
	if !res.Verified || !res.Results["database_reachable"] || !res.Results["service_healthy"] {
		t.Fatalf("expected all checks to pass, got %+v", res.Results)
	}
}

func TestExecuteRecoveryUnknownPlan(t *testing.T) {
	e := New(clock.Fixed{}, nil)
	res := e.ExecuteRecovery("nope", "do something")
	if res.Executed {
		t.Fatalf("expected unknown plan to fail")
	}
}
