package playbook

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestAddProcedureKeepsStepOrder(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	created := g.CreatePlaybook("ransomware response")
	g.AddProcedure(created.PlaybookID, "third step", 3)
	g.AddProcedure(created.PlaybookID, "first step", 1)
	g.AddProcedure(created.PlaybookID, "second step", 2)

	got := g.GetPlaybook(created.PlaybookID)
	if got.Playbook.Procedures[0].Description != "first step" || got.Playbook.Procedures[2].Description != "third step" {
		t.Fatalf("expected procedures sorted by step order, got %+v", got.Playbook.Procedures)
	}
}

func TestPublishIncrementsVersionMonotonically(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	created := g.CreatePlaybook("phishing response")
	first := g.Publish(created.PlaybookID)
	second := g.Publish(created.PlaybookID)
	if first.Version != 1 || second.Version != 2 {
		t.Fatalf("expected versions 1 then 2, got %d then %d", first.Version, second.Version)
	}
}

func TestAddAutomationKeyedByTrigger(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	created := g.CreatePlaybook("ddos response")
	res := g.AddAutomation(created.PlaybookID, "traffic_spike", "enable_rate_limiting")
	if !res.Added {
		t.Fatalf("AddAutomation failed: %s", res.Error)
	}
	got := g.GetPlaybook(created.PlaybookID)
	if got.Playbook.Automations["traffic_spike"].Action != "enable_rate_limiting" {
		t.Fatalf("expected automation keyed by trigger, got %+v", got.Playbook.Automations)
	}
}

func TestRunTestAlwaysPassesInBaseline(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	created := g.CreatePlaybook("insider threat response")
	res := g.RunTest(created.PlaybookID)
	if !res.Ran {
		t.Fatalf("RunTest failed: %s", res.Error)
	}
}

func TestCreatePlaybookRequiresName(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.CreatePlaybook("")
	if res.Created {
		t.Fatalf("expected empty name to be rejected")
	}
}
