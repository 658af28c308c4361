package access

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestRecordAndQueryAccess(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.RecordAccess("alice", "customer_db", "read", DecisionAllowed)
	if !res.Recorded {
		t.Fatalf("RecordAccess failed: %s", res.Error)
	}
	a.RecordAccess("bob", "customer_db", "write", DecisionDenied)

	q := a.QueryAccess("customer_db")
	if len(q.Events) != 2 {
		t.Fatalf("expected 2 events for customer_db, got %d", len(q.Events))
	}
}

func TestRecordAccessRequiresActorAndResource(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.RecordAccess("", "customer_db", "read", DecisionAllowed)
	if res.Recorded {
		t.Fatalf("expected missing actor to be rejected")
	}
}

func TestDetectUnusualAccessFlagsHighDenialRate(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	for i := 0; i < 3; i++ {
		a.RecordAccess("mallory", "vault", "read", DecisionDenied)
	}
	for i := 0; i < 7; i++ {
		a.RecordAccess("mallory", "vault", "read", DecisionAllowed)
	}
	res := a.DetectUnusualAccess("mallory", 0)
	if !res.Checked {
		t.Fatalf("DetectUnusualAccess failed: %s", res.Error)
	}
	if res.Unusual {
		t.Fatalf("expected 30%% denial rate to sit at the threshold, not exceed it")
	}

	a.RecordAccess("mallory", "vault", "read", DecisionDenied)
	res = a.DetectUnusualAccess("mallory", 0)
	if !res.Unusual {
		t.Fatalf("expected denial rate above 0.3 to be flagged")
	}
}

func TestDetectUnusualAccessUnknownActor(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.DetectUnusualAccess("nobody", 0)
	if !res.Checked || res.Unusual {
		t.Fatalf("expected a checked, non-unusual result for an actor with no history")
	}
}

func TestGetUnauthorizedAttempts(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	a.RecordAccess("alice", "vault", "read", DecisionAllowed)
	a.RecordAccess("bob", "vault", "read", DecisionDenied)
	a.RecordAccess("carol", "vault", "write", DecisionDenied)

	res := a.GetUnauthorizedAttempts()
	if !res.Retrieved || len(res.Events) != 2 {
		t.Fatalf("expected 2 unauthorized attempts, got %+v", res)
	}
}

func TestGetResourceAccessReturnsUniqueActors(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	a.RecordAccess("alice", "vault", "read", DecisionAllowed)
	a.RecordAccess("alice", "vault", "read", DecisionAllowed)
	a.RecordAccess("bob", "vault", "read", DecisionAllowed)
	a.RecordAccess("bob", "other", "read", DecisionAllowed)

	res := a.GetResourceAccess("vault")
	if !res.Retrieved || len(res.Events) != 3 || len(res.UniqueActors) != 2 {
		t.Fatalf("expected 3 events and 2 unique actors for vault, got %+v", res)
	}
}

func TestGetPrivilegeReportBreaksDownByTypeAndUser(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	a.RecordAccess("alice", "vault", "admin", DecisionAllowed)
	a.RecordAccess("alice", "vault", "delete", DecisionAllowed)
	a.RecordAccess("bob", "vault", "export", DecisionAllowed)
	a.RecordAccess("bob", "vault", "read", DecisionAllowed)

	res := a.GetPrivilegeReport()
	if !res.Retrieved || res.TotalPrivilegeUses != 3 {
		t.Fatalf("expected 3 privilege uses, got %+v", res)
	}
	if res.ByType["admin"] != 1 || res.ByType["delete"] != 1 || res.ByType["export"] != 1 {
		t.Fatalf("unexpected by-type breakdown: %+v", res.ByType)
	}
	if res.ByUser["alice"] != 2 || res.ByUser["bob"] != 1 {
		t.Fatalf("unexpected by-user breakdown: %+v", res.ByUser)
	}
}
