package verify

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestRunFullVerificationAllPassed(t *testing.T) {
	v := New(clock.Fixed{}, nil)
	start := v.StartVerification("ki_1", "abcd1234", "ef012345")
	if !start.Started {
		t.Fatalf("StartVerification failed: %s", start.Error)
	}

	res := v.RunFullVerification(start.VerificationID, []TestRecord{
		{Type: TestConnectivity, Passed: true, ResponseTimeMS: 20},
		{Type: TestAuthentication, Passed: true, ResponseTimeMS: 30},
	})
	if !res.Completed || res.Status != StatusPassed {
		t.Fatalf("expected passed verification, got %+v", res)
	}
}

func TestRunFullVerificationFailureWithAutoRollback(t *testing.T) {
	v := New(clock.Fixed{}, nil)
	v.AutoRollback = true
	start := v.StartVerification("ki_1", "abcd1234", "ef012345")

	res := v.RunFullVerification(start.VerificationID, []TestRecord{
		{Type: TestConnectivity, Passed: true},
		{Type: TestAuthorization, Passed: false},
	})
	if res.Status != StatusRolledBack || !res.RolledBack {
		t.Fatalf("expected auto-rollback on failure, got %+v", res)
	}

	sum := v.GetSummary()
	if sum.Stats["rollbacks"] != 1 {
		t.Fatalf("expected 1 rollback recorded, got %d", sum.Stats["rollbacks"])
	}
}

func TestRunFullVerificationFailureWithoutAutoRollback(t *testing.T) {
	v := New(clock.Fixed{}, nil)
	start := v.StartVerification("ki_1", "abcd1234", "ef012345")
	res := v.RunFullVerification(start.VerificationID, []TestRecord{{Type: TestFunctionality, Passed: false}})
	if res.Status != StatusFailed || res.RolledBack {
		t.Fatalf("expected plain failure without rollback, got %+v", res)
	}
}

func TestRunTestMovesStatusToTesting(t *testing.T) {
	v := New(clock.Fixed{}, nil)
	start := v.StartVerification("ki_1", "abcd1234", "ef012345")
	v.RunTest(start.VerificationID, TestPerformance, true, 50)
	got := v.GetVerification(start.VerificationID)
	if got.Verification.Status != StatusTesting {
		t.Fatalf("expected testing status after run_test, got %s", got.Verification.Status)
	}
}

func TestStartVerificationRequiresKeyID(t *testing.T) {
	v := New(clock.Fixed{}, nil)
	res := v.StartVerification("", "a", "b")
	if res.Started {
		t.Fatalf("expected empty key id to be rejected")
	}
}
