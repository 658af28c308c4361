package contain

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestContainIncidentAppliesCartesianProduct(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.ContainIncident("inc_1", []Action{ActionNetworkIsolate, ActionAccountSuspend}, []string{"host-a", "host-b"})
	if !res.Contained {
		t.Fatalf("ContainIncident failed: %s", res.Error)
	}
	if len(res.QuarantineIDs) != 2 || len(res.SuspensionIDs) != 2 {
		t.Fatalf("expected 2 quarantines and 2 suspensions, got %+v", res)
	}
}

func TestContainIncidentServiceShutdownIsCounterOnly(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.ContainIncident("inc_1", []Action{ActionServiceShutdown}, []string{"svc-a", "svc-b", "svc-c"})
	if res.ShutdownsApplied != 3 {
		t.Fatalf("expected 3 shutdowns applied, got %d", res.ShutdownsApplied)
	}
	if len(res.QuarantineIDs) != 0 {
		t.Fatalf("expected no quarantines from a shutdown-only action")
	}
}

func TestContainIncidentRejectsInvalidAction(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.ContainIncident("inc_1", []Action{"not_an_action"}, []string{"host-a"})
	if res.Contained {
		t.Fatalf("expected invalid action to be rejected")
	}
}

func TestReleaseAndReinstate(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.ContainIncident("inc_1", []Action{ActionNetworkIsolate, ActionAccountSuspend}, []string{"host-a"})
	if !c.ReleaseQuarantine(res.QuarantineIDs[0]).Released {
		t.Fatalf("expected release to succeed")
	}
	if !c.ReinstateSuspension(res.SuspensionIDs[0]).Reinstated {
		t.Fatalf("expected reinstate to succeed")
	}
}
