package aiethics

import (
	"testing"

	"github.com/aegisops/govplatform/internal/aiethics/bias"
	"github.com/aegisops/govplatform/internal/aiethics/fairness"
	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
)

func TestRunFullEvaluationCompliantPath(t *testing.T) {
	o := New(clock.Fixed{}, nil, nil)

	records := make([]bias.Record, 0, 20)
	for i := 0; i < 10; i++ {
		records = append(records, bias.Record{"gender": "M", "hired": true})
	}
	for i := 0; i < 10; i++ {
		records = append(records, bias.Record{"gender": "F", "hired": true})
	}
	add := o.Bias.AddDataset("hiring", records, []string{"gender"}, "hired")
	if !add.Added {
		t.Fatalf("AddDataset failed: %s", add.Error)
	}

	preds := make([]fairness.Prediction, 0, 20)
	for i := 0; i < 20; i++ {
		preds = append(preds, fairness.Prediction{Group: "A", Actual: true, Predicted: true})
	}

	res := o.RunFullEvaluation(add.DatasetID, preds)
	if !res.Evaluated {
		t.Fatalf("RunFullEvaluation failed: %s", res.Error)
	}
	if !res.Compliant {
		t.Fatalf("expected compliant result for balanced data, got violations: %v", res.Violations)
	}
	if len(res.Remediations) != 0 {
		t.Fatalf("did not expect remediations for a compliant evaluation")
	}
}

func TestRunFullEvaluationNonCompliantRaisesAlertAndRemediation(t *testing.T) {
	o := New(clock.Fixed{}, nil, nil)
	o.Rules.AddRule("bias_gate", "fairness", "bias_score", 0.01, severity.High)

	records := make([]bias.Record, 0, 20)
	for i := 0; i < 18; i++ {
		records = append(records, bias.Record{"gender": "M", "hired": true})
	}
	for i := 0; i < 2; i++ {
		records = append(records, bias.Record{"gender": "F", "hired": false})
	}
	add := o.Bias.AddDataset("hiring", records, []string{"gender"}, "hired")

	preds := []fairness.Prediction{
		{Group: "A", Actual: true, Predicted: true},
		{Group: "B", Actual: false, Predicted: true},
	}

	res := o.RunFullEvaluation(add.DatasetID, preds)
	if !res.Evaluated {
		t.Fatalf("RunFullEvaluation failed: %s", res.Error)
	}
	if res.Compliant {
		t.Fatalf("expected a rule violation given the low threshold")
	}
	if len(res.Remediations) == 0 {
		t.Fatalf("expected remediation steps for a non-compliant evaluation")
	}
	if o.Alert.OpenCount() == 0 {
		t.Fatalf("expected an alert to be raised for the non-compliant evaluation")
	}
}

func TestRunFullEvaluationUnknownDataset(t *testing.T) {
	o := New(clock.Fixed{}, nil, nil)
	res := o.RunFullEvaluation("bds_missing", []fairness.Prediction{{Group: "A", Actual: true, Predicted: true}})
	if res.Evaluated {
		t.Fatalf("expected failure for unknown dataset")
	}
}
