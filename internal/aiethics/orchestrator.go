// Package aiethics composes the eight AI-Ethics evaluators (spec §4)
// into AIEthicsOrchestrator: a single entry point that fans bias and
// fairness findings out into rule evaluation, auditing, alerting, and
// remediation suggestion.
package aiethics

import (
	"fmt"

	"github.com/aegisops/govplatform/internal/aiethics/alert"
	"github.com/aegisops/govplatform/internal/aiethics/audit"
	"github.com/aegisops/govplatform/internal/aiethics/bias"
	"github.com/aegisops/govplatform/internal/aiethics/fairness"
	"github.com/aegisops/govplatform/internal/aiethics/monitor"
	"github.com/aegisops/govplatform/internal/aiethics/remediation"
	"github.com/aegisops/govplatform/internal/aiethics/rules"
	"github.com/aegisops/govplatform/internal/aiethics/transparency"
	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
	"github.com/aegisops/govplatform/pkg/logger"
	"github.com/aegisops/govplatform/pkg/metrics"
)

// Orchestrator is AIEthicsOrchestrator: the composition root for the
// AI-Ethics domain. Each evaluator owns its own record maps; the
// orchestrator only sequences calls between them and records metrics.
type Orchestrator struct {
	Bias         *bias.Detector
	Fairness     *fairness.Analyzer
	Rules        *rules.Engine
	Audit        *audit.Auditor
	Alert        *alert.Store
	Monitor      *monitor.Monitor
	Remediation  *remediation.Suggester
	Transparency *transparency.Reporter

	clock   clock.Clock
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New wires all eight evaluators, sharing one clock and logger and
// injecting the Alert store into ProtectedClassMonitor as its Alerter.
func New(c clock.Clock, log *logger.Logger, m *metrics.Metrics) *Orchestrator {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	alertStore := alert.New(c, log)
	return &Orchestrator{
		Bias:         bias.New(c, log),
		Fairness:     fairness.New(c, log),
		Rules:        rules.New(c, log),
		Audit:        audit.New(c, log),
		Alert:        alertStore,
		Monitor:      monitor.New(c, log, alertAdapter{alertStore}),
		Remediation:  remediation.New(c, log),
		Transparency: transparency.New(c, log),
		clock:        c,
		log:          log,
		metrics:      m,
	}
}

// alertAdapter adapts *alert.Store to monitor.Alerter without coupling
// the monitor package to alert's concrete return type.
type alertAdapter struct {
	store *alert.Store
}

func (a alertAdapter) RaiseAlert(violationType string, sev severity.Severity) monitor.RaiseResult {
	r := a.store.RaiseAlert(violationType, sev)
	return monitor.RaiseResult{Raised: r.Raised, AlertID: r.AlertID}
}

// EvaluationResult is run_full_evaluation's return shape: the outcome of
// scanning a dataset for bias, evaluating fairness over its predictions,
// checking rules against the combined scores, and suggesting remediation
// for anything that came back non-compliant.
type EvaluationResult struct {
	Evaluated      bool
	BiasScore      float64
	FairnessScores map[string]float64
	Violations     []rules.Violation
	Compliant      bool
	Remediations   []string
	Error          string
}

// RunFullEvaluation is the orchestrator's single entry point: it scans a
// registered dataset for bias, evaluates fairness over a prediction set,
// runs both scores through the rule engine, records the outcome in the
// audit trail, and—if non-compliant—builds a remediation plan.
func (o *Orchestrator) RunFullEvaluation(datasetID string, predictions []fairness.Prediction) EvaluationResult {
	started := o.clock.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.Observe("aiethics", "run_full_evaluation", started, true)
		}
	}()

	scan := o.Bias.ScanForBias(datasetID)
	if !scan.Scanned {
		return EvaluationResult{Error: scan.Error}
	}

	fairnessEval := o.Fairness.EvaluateFairness(predictions)
	if !fairnessEval.Evaluated {
		return EvaluationResult{Error: fairnessEval.Error}
	}

	ctx := map[string]any{"bias_score": scan.BiasScore}
	worstFairness := 1.0
	fairnessScores := map[string]float64{}
	for _, m := range fairnessEval.Metrics {
		fairnessScores[m.Name] = m.Score
		if m.Score < worstFairness {
			worstFairness = m.Score
		}
	}
	ctx["fairness_score"] = worstFairness

	evalResult := o.Rules.Evaluate(ctx)

	confidence := 1.0
	if !evalResult.Compliant {
		confidence = 0.4
	}
	o.Audit.RecordDecision(ctx, evalResult.Compliant, confidence)

	var remediations []string
	if !evalResult.Compliant {
		for _, f := range scan.Findings {
			r := o.Remediation.SuggestForBias(f.Type, f.Severity.String())
			remediations = append(remediations, r.Steps...)
		}
		for metric, score := range fairnessScores {
			r := o.Remediation.SuggestForFairness(metric, score)
			remediations = append(remediations, r.Steps...)
		}
		o.Alert.RaiseAlert(fmt.Sprintf("dataset_violation:%s", datasetID), scan.Severity)
	}

	if o.metrics != nil {
		o.metrics.SetAlertsOpen("aiethics", o.Alert.OpenCount())
	}

	return EvaluationResult{
		Evaluated:      true,
		BiasScore:      scan.BiasScore,
		FairnessScores: fairnessScores,
		Violations:     evalResult.Violations,
		Compliant:      evalResult.Compliant,
		Remediations:   remediations,
	}
}
