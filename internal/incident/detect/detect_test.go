package detect

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
)

func TestDetectIncidentMatchesPatternAtThreshold(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	pat := d.AddPattern([]string{"brute_force", "odd_hour_login", "vpn_anomaly"}, 2, severity.High)
	if !pat.Added {
		t.Fatalf("AddPattern failed: %s", pat.Error)
	}

	res := d.DetectIncident(TypeUnauthorizedAccess, severity.High, []string{"brute_force", "odd_hour_login"}, []string{"auth-svc"})
	if !res.Detected {
		t.Fatalf("DetectIncident failed: %s", res.Error)
	}
	if len(res.MatchedPatterns) != 1 {
		t.Fatalf("expected 1 matched pattern, got %d", len(res.MatchedPatterns))
	}
}

func TestDetectIncidentRejectsInvalidType(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.DetectIncident("not_a_type", severity.High, nil, nil)
	if res.Detected {
		t.Fatalf("expected invalid incident type to be rejected")
	}
}

func TestCorrelateIncidentsComputesStrength(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	a := d.DetectIncident(TypeMalware, severity.High, []string{"x1", "x2"}, nil)
	b := d.DetectIncident(TypeMalware, severity.High, []string{"x1", "x3"}, nil)

	res := d.CorrelateIncidents([]string{a.IncidentID, b.IncidentID})
	if !res.Correlated {
		t.Fatalf("CorrelateIncidents failed: %s", res.Error)
	}
	if len(res.CommonIndicators) != 1 || res.Strength != 0.5 {
		t.Fatalf("expected strength 0.5 with 1 common indicator, got %+v", res)
	}
}

func TestCorrelateIncidentsRequiresAtLeastTwo(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.CorrelateIncidents([]string{"inc_1"})
	if res.Correlated {
		t.Fatalf("expected single incident id to be rejected")
	}
}

func TestUpdateStatusRejectsMutationAfterClosed(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.DetectIncident(TypeMalware, severity.High, nil, nil)
	d.UpdateStatus(res.IncidentID, StatusClosed)

	upd := d.UpdateStatus(res.IncidentID, StatusInvestigating)
	if upd.Updated {
		t.Fatalf("expected a closed incident to reject further transitions")
	}
}
