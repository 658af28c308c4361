// Package remediation implements EthicsRemediationSuggester (spec §4.7):
// deterministic suggestion templates for bias and fairness findings, and
// aggregated remediation plans spanning multiple issues.
package remediation

import (
	"fmt"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// BiasType names a bias finding category (mirrors bias.Pattern's Type).
type BiasType string

const (
	BiasDemographic     BiasType = "demographic"
	BiasDisparateImpact BiasType = "disparate_impact"
	BiasRepresentation  BiasType = "representation"
)

// Suggestion is one remediation recommendation.
type Suggestion struct {
	ID       string
	Steps    []string
	Priority string
}

// Plan aggregates suggestions for multiple issues into one ordered list.
type Plan struct {
	ID      string
	Steps   []string
	IssueNo int
}

// Suggester is EthicsRemediationSuggester.
type Suggester struct {
	clock clock.Clock
	log   *logger.Logger
}

// New creates a Suggester.
func New(c clock.Clock, log *logger.Logger) *Suggester {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Suggester{clock: c, log: log}
}

var biasSteps = map[BiasType][]string{
	BiasDemographic:     {"reweighting", "adversarial_debiasing"},
	BiasDisparateImpact: {"disparate_impact_remover", "continuous_monitoring"},
	BiasRepresentation:  {"resampling", "balanced_collection"},
}

var unknownBiasSteps = []string{"general_audit"}

// SuggestResult is suggest_remediation's return shape.
type SuggestResult struct {
	Suggested    bool
	SuggestionID string
	Steps        []string
	Priority     string
	Error        string
}

// SuggestForBias returns a deterministic remediation template for a bias
// finding, keyed by bias type and severity-derived priority.
func (s *Suggester) SuggestForBias(biasType string, severity string) SuggestResult {
	if biasType == "" {
		return SuggestResult{Error: goverrors.Invalid("bias_type").Error()}
	}
	steps, ok := biasSteps[BiasType(biasType)]
	if !ok {
		steps = unknownBiasSteps
	}
	id := ids.New("rem")
	return SuggestResult{Suggested: true, SuggestionID: id, Steps: append([]string{}, steps...), Priority: severity}
}

// fairnessBucket maps a fairness score to a priority bucket (spec §4.7).
func fairnessBucket(score float64) string {
	switch {
	case score < 0.5:
		return "critical"
	case score < 0.7:
		return "high"
	case score < 0.8:
		return "medium"
	default:
		return "low"
	}
}

// SuggestForFairness returns a remediation template keyed by metric name
// and score bucket.
func (s *Suggester) SuggestForFairness(metric string, score float64) SuggestResult {
	if metric == "" {
		return SuggestResult{Error: goverrors.Invalid("metric").Error()}
	}
	bucket := fairnessBucket(score)
	id := ids.New("rem")
	steps := []string{fmt.Sprintf("review_%s", metric)}
	switch bucket {
	case "critical":
		steps = append(steps, "halt_deployment", "retrain_model")
	case "high":
		steps = append(steps, "retrain_model")
	case "medium":
		steps = append(steps, "monitor_closely")
	default:
		steps = append(steps, "no_action_required")
	}
	return SuggestResult{Suggested: true, SuggestionID: id, Steps: steps, Priority: bucket}
}

// Issue is one input to BuildPlan: either a bias finding or a fairness
// finding, discriminated by which field is non-empty.
type Issue struct {
	BiasType       string
	Severity       string
	FairnessMetric string
	FairnessScore  float64
}

// PlanResult is generate_plan's return shape.
type PlanResult struct {
	Generated bool
	PlanID    string
	Steps     []string
	IssueNo   int
	Error     string
}

// BuildPlan aggregates suggestions for every issue into one ordered step
// list, preserving input order.
func (s *Suggester) BuildPlan(issues []Issue) PlanResult {
	if len(issues) == 0 {
		return PlanResult{Error: goverrors.Invalid("issues").Error()}
	}
	var steps []string
	for _, issue := range issues {
		if issue.BiasType != "" {
			r := s.SuggestForBias(issue.BiasType, issue.Severity)
			steps = append(steps, r.Steps...)
			continue
		}
		r := s.SuggestForFairness(issue.FairnessMetric, issue.FairnessScore)
		steps = append(steps, r.Steps...)
	}
	return PlanResult{Generated: true, PlanID: ids.New("plan"), Steps: steps, IssueNo: len(issues)}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters. EthicsRemediationSuggester is
// stateless template lookup, so this reports only static shape info.
func (s *Suggester) GetSummary() SummaryResult {
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"bias_templates": len(biasSteps),
	}}
}
