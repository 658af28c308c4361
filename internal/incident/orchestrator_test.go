package incident

import (
	"testing"

	"github.com/aegisops/govplatform/internal/incident/contain"
	"github.com/aegisops/govplatform/internal/incident/detect"
	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
)

func TestRespondToIncidentFanOut(t *testing.T) {
	o := New(clock.Fixed{}, nil, nil)
	res := o.RespondToIncident(RespondRequest{
		IncidentType:       detect.TypeMalware,
		Severity:           severity.High,
		ObservedIndicators: []string{"c2_beacon"},
		AffectedSystems:    []string{"host-a"},
		AutoContainActions: []contain.Action{contain.ActionNetworkIsolate},
		AffectedUsers:      500,
		FinancialImpact:    20000,
		CategoryCount:      2,
	})
	if !res.Responded {
		t.Fatalf("RespondToIncident failed: %s", res.Error)
	}
	if res.Contained == nil || len(res.Contained.QuarantineIDs) != 1 {
		t.Fatalf("expected containment to run, got %+v", res.Contained)
	}
	if res.Assessment == nil || res.Assessment.ImpactScore <= 0 {
		t.Fatalf("expected an impact assessment, got %+v", res.Assessment)
	}
	if res.AnalysisID == "" {
		t.Fatalf("expected a root-cause analysis to be started")
	}

	got := o.Detector.GetIncident(res.IncidentID)
	if got.Incident.Status != detect.StatusInvestigating {
		t.Fatalf("expected final status investigating, got %s", got.Incident.Status)
	}
}

func TestRespondToIncidentWithoutAutoContain(t *testing.T) {
	o := New(clock.Fixed{}, nil, nil)
	res := o.RespondToIncident(RespondRequest{
		IncidentType: detect.TypeMisconfiguration,
		Severity:     severity.Low,
	})
	if !res.Responded || res.Contained != nil {
		t.Fatalf("expected no containment sub-result when no actions are requested, got %+v", res)
	}
}

func TestRecoverIncidentStaysRecovering(t *testing.T) {
	o := New(clock.Fixed{}, nil, nil)
	res := o.RespondToIncident(RespondRequest{IncidentType: detect.TypeMalware, Severity: severity.High})

	plan := o.Recovery.CreatePlan(res.IncidentID)
	rec := o.RecoverIncident(res.IncidentID, plan.PlanID, []string{"restore from backup"})
	if !rec.Recovered || rec.Status != detect.StatusRecovering {
		t.Fatalf("expected recovering status preserved post-recovery, got %+v", rec)
	}
}

func TestRespondToIncidentInvalidType(t *testing.T) {
	o := New(clock.Fixed{}, nil, nil)
	res := o.RespondToIncident(RespondRequest{IncidentType: "not_a_type", Severity: severity.High})
	if res.Responded {
		t.Fatalf("expected invalid incident type to be rejected")
	}
}
