package transparency

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestCreateModelCardAndPublish(t *testing.T) {
	r := New(clock.Fixed{}, nil)
	res := r.CreateModelCard("risk-scorer-v3", "credit underwriting", "5 years of loan applications",
		[]string{"not validated outside US market"}, []string{"disparate impact on protected classes"},
		map[string]float64{"auc": 0.91})
	if !res.Created {
		t.Fatalf("CreateModelCard failed: %s", res.Error)
	}

	pub := r.PublishDisclosure("model_card", res.CardID)
	if !pub.Published {
		t.Fatalf("PublishDisclosure failed: %s", pub.Error)
	}
	if again := r.PublishDisclosure("model_card", res.CardID); again.Published {
		t.Fatalf("expected double-publish to fail")
	}
}

func TestExplainDecisionValidatesConfidence(t *testing.T) {
	r := New(clock.Fixed{}, nil)
	res := r.ExplainDecision("dec_1", []Factor{{Name: "income", Weight: 0.6}}, []string{"approve_with_conditions"}, 1.5, "applicant")
	if res.Explained {
		t.Fatalf("expected out-of-range confidence to be rejected")
	}
}

func TestBuildStakeholderReportRequiresSections(t *testing.T) {
	r := New(clock.Fixed{}, nil)
	res := r.BuildStakeholderReport(nil)
	if res.Built {
		t.Fatalf("expected empty sections to be rejected")
	}
}

func TestPublishUnknownKind(t *testing.T) {
	r := New(clock.Fixed{}, nil)
	res := r.PublishDisclosure("unknown_kind", "x")
	if res.Published {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestSummaryCountsAcrossDisclosureTypes(t *testing.T) {
	r := New(clock.Fixed{}, nil)
	card := r.CreateModelCard("m", "", "", nil, nil, nil)
	r.PublishDisclosure("model_card", card.CardID)
	r.ExplainDecision("dec_1", nil, nil, 0.8, "regulator")
	r.BuildStakeholderReport([]ReportSection{{Title: "Overview", Findings: []string{"ok"}}})

	sum := r.GetSummary()
	if sum.Stats["model_cards"] != 1 || sum.Stats["decision_explanations"] != 1 || sum.Stats["stakeholder_reports"] != 1 {
		t.Fatalf("unexpected counts: %v", sum.Stats)
	}
	if sum.Stats["published"] != 1 {
		t.Fatalf("expected 1 published disclosure, got %d", sum.Stats["published"])
	}
}
