package monitor

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
)

type fakeAlerter struct {
	calls []string
	sev   severity.Severity
}

func (f *fakeAlerter) RaiseAlert(violationType string, sev severity.Severity) RaiseResult {
	f.calls = append(f.calls, violationType)
	f.sev = sev
	return RaiseResult{Raised: true, AlertID: "eevl_fake"}
}

func TestCheckDisparityRaisesAlertAboveThreshold(t *testing.T) {
	alerter := &fakeAlerter{}
	m := New(clock.Fixed{}, nil, alerter)

	for i := 0; i < 10; i++ {
		m.RecordObservation("gender", "M", true)
	}
	for i := 0; i < 10; i++ {
		m.RecordObservation("gender", "F", false)
	}

	res := m.CheckDisparity("gender", 0)
	if !res.Checked {
		t.Fatalf("CheckDisparity failed: %s", res.Error)
	}
	if res.Gap < 0.99 {
		t.Fatalf("expected near-total gap, got %v", res.Gap)
	}
	if !res.AlertRaised {
		t.Fatalf("expected alert raised for gap>threshold")
	}
	if res.Severity != severity.Critical {
		t.Fatalf("expected critical severity for gap>0.5, got %s", res.Severity)
	}
	if len(alerter.calls) != 1 {
		t.Fatalf("expected exactly one alert call, got %d", len(alerter.calls))
	}
}

func TestCheckDisparityNoAlertBelowThreshold(t *testing.T) {
	alerter := &fakeAlerter{}
	m := New(clock.Fixed{}, nil, alerter)

	for i := 0; i < 10; i++ {
		m.RecordObservation("gender", "M", i%10 < 6)
	}
	for i := 0; i < 10; i++ {
		m.RecordObservation("gender", "F", i%10 < 5)
	}

	res := m.CheckDisparity("gender", 0)
	if res.AlertRaised {
		t.Fatalf("did not expect alert for small gap")
	}
	if len(alerter.calls) != 0 {
		t.Fatalf("expected no alert calls")
	}
}

func TestCheckDisparitySingleGroupNotChecked(t *testing.T) {
	m := New(clock.Fixed{}, nil, nil)
	m.RecordObservation("gender", "M", true)
	m.RecordObservation("gender", "M", false)
	res := m.CheckDisparity("gender", 0)
	if !res.Checked {
		t.Fatalf("CheckDisparity failed: %s", res.Error)
	}
	if res.AlertRaised {
		t.Fatalf("did not expect alert with a single group")
	}
}

func TestCheckDisparityWindowRespectsTailN(t *testing.T) {
	alerter := &fakeAlerter{}
	m := New(clock.Fixed{}, nil, alerter)
	// Old observations are balanced; only the most recent 4 are skewed.
	for i := 0; i < 20; i++ {
		m.RecordObservation("gender", "M", i%2 == 0)
		m.RecordObservation("gender", "F", i%2 == 0)
	}
	m.RecordObservation("gender", "M", true)
	m.RecordObservation("gender", "M", true)
	m.RecordObservation("gender", "F", false)
	m.RecordObservation("gender", "F", false)

	res := m.CheckDisparity("gender", 4)
	if !res.AlertRaised {
		t.Fatalf("expected tail window to isolate the skewed recent observations")
	}
}

func TestCheckDifferentialTreatmentFlagsHighUnfavorableGroup(t *testing.T) {
	m := New(clock.Fixed{}, nil, nil)
	for i := 0; i < 10; i++ {
		m.RecordObservation("race", "A", i < 3) // 70% unfavorable
	}
	for i := 0; i < 10; i++ {
		m.RecordObservation("race", "B", i < 9) // 10% unfavorable
	}

	res := m.CheckDifferentialTreatment("race", 0)
	if !res.Checked {
		t.Fatalf("CheckDifferentialTreatment failed: %s", res.Error)
	}
	if len(res.FlaggedGroups) != 1 || res.FlaggedGroups[0] != "A" {
		t.Fatalf("expected only group A flagged, got %v", res.FlaggedGroups)
	}
}

func TestCheckDifferentialTreatmentRequiresProtectedAttr(t *testing.T) {
	m := New(clock.Fixed{}, nil, nil)
	res := m.CheckDifferentialTreatment("", 0)
	if res.Checked {
		t.Fatalf("expected validation failure for empty protected_attr")
	}
}

func TestRecordObservationRejectsEmptyFields(t *testing.T) {
	m := New(clock.Fixed{}, nil, nil)
	res := m.RecordObservation("", "M", true)
	if res.Recorded {
		t.Fatalf("expected rejection of empty protected_attr")
	}
}

func TestMonitorSummary(t *testing.T) {
	m := New(clock.Fixed{}, nil, nil)
	m.RecordObservation("gender", "M", true)
	m.RecordObservation("gender", "F", false)
	sum := m.GetSummary()
	if sum.Stats["observations"] != 2 {
		t.Fatalf("expected 2 observations, got %d", sum.Stats["observations"])
	}
}
