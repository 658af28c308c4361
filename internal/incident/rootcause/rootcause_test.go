package rootcause

import (
	"testing"
	"time"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestAddRootCauseClampsConfidence(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	start := a.StartAnalysis("inc_1")
	a.AddRootCause(start.AnalysisID, "misconfigured firewall rule", 1.5)
	got := a.GetAnalysis(start.AnalysisID)
	if got.Analysis.Causes[0].Confidence != 1.0 {
		t.Fatalf("expected confidence clamped to 1.0, got %v", got.Analysis.Causes[0].Confidence)
	}
}

func TestAddTimelineEventKeepsAscendingOrder(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	start := a.StartAnalysis("inc_1")
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.AddTimelineEvent(start.AnalysisID, "third", base.Add(3*time.Hour))
	a.AddTimelineEvent(start.AnalysisID, "first", base.Add(1*time.Hour))
	a.AddTimelineEvent(start.AnalysisID, "second", base.Add(2*time.Hour))

	got := a.GetAnalysis(start.AnalysisID)
	if got.Analysis.Timeline[0].Description != "first" || got.Analysis.Timeline[2].Description != "third" {
		t.Fatalf("expected timeline sorted ascending, got %+v", got.Analysis.Timeline)
	}
}

func TestCompleteAnalysisFreezesFurtherMutation(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	start := a.StartAnalysis("inc_1")
	a.CompleteAnalysis(start.AnalysisID, "root cause identified: expired certificate")

	res := a.AddRootCause(start.AnalysisID, "late addition", 0.5)
	if res.Added {
		t.Fatalf("expected a completed analysis to reject further mutation")
	}
}

func TestStartAnalysisRequiresIncidentID(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.StartAnalysis("")
	if res.Started {
		t.Fatalf("expected empty incident id to be rejected")
	}
}
