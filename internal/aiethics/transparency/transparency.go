// Package transparency implements TransparencyReporter (spec §4.8): three
// report shapes (model card, decision explanation, stakeholder report)
// plus a draft-to-published disclosure lifecycle.
package transparency

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Status is a Disclosure's lifecycle state (spec §4.8).
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// ModelCard describes a model for external consumption.
type ModelCard struct {
	ID                      string
	Name                    string
	IntendedUse             string
	Limitations             []string
	TrainingDataDescription string
	PerformanceMetrics      map[string]float64
	EthicalConsiderations   []string
	Status                  Status
	CreatedAt               string
}

// Factor is one weighted contributor to a decision explanation.
type Factor struct {
	Name   string
	Weight float64
}

// DecisionExplanation describes why a decision was made.
type DecisionExplanation struct {
	ID           string
	DecisionID   string
	Factors      []Factor
	Alternatives []string
	Confidence   float64
	Audience     string
	Status       Status
	CreatedAt    string
}

// ReportSection is one titled section of a stakeholder report.
type ReportSection struct {
	Title           string
	Findings        []string
	Recommendations []string
}

// StakeholderReport aggregates titled sections for a non-technical
// audience.
type StakeholderReport struct {
	ID        string
	Sections  []ReportSection
	Status    Status
	CreatedAt string
}

// Reporter is TransparencyReporter's record store. Each disclosure type
// owns its own map, matching the one-exclusive-owner-per-record-map rule
// used throughout this domain.
type Reporter struct {
	mu                 sync.Mutex
	modelCards         map[string]*ModelCard
	explanations       map[string]*DecisionExplanation
	stakeholderReports map[string]*StakeholderReport
	clock              clock.Clock
	log                *logger.Logger
}

// New creates a Reporter.
func New(c clock.Clock, log *logger.Logger) *Reporter {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Reporter{
		modelCards:         make(map[string]*ModelCard),
		explanations:       make(map[string]*DecisionExplanation),
		stakeholderReports: make(map[string]*StakeholderReport),
		clock:              c,
		log:                log,
	}
}

// CreateModelCardResult is create_model_card's return shape.
type CreateModelCardResult struct {
	Created bool
	CardID  string
	Error   string
}

// CreateModelCard drafts a new model card.
func (r *Reporter) CreateModelCard(name, intendedUse, trainingData string, limitations, ethical []string, metrics map[string]float64) CreateModelCardResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		return CreateModelCardResult{Error: goverrors.Invalid("name").Error()}
	}
	id := ids.New("mcard")
	r.modelCards[id] = &ModelCard{
		ID: id, Name: name, IntendedUse: intendedUse, Limitations: limitations,
		TrainingDataDescription: trainingData, PerformanceMetrics: metrics, EthicalConsiderations: ethical,
		Status: StatusDraft, CreatedAt: clock.ISO8601(r.clock.Now()),
	}
	return CreateModelCardResult{Created: true, CardID: id}
}

// ExplainResult is explain_decision's return shape.
type ExplainResult struct {
	Explained     bool
	ExplanationID string
	Error         string
}

// ExplainDecision drafts a decision explanation with weighted factors.
func (r *Reporter) ExplainDecision(decisionID string, factors []Factor, alternatives []string, confidence float64, audience string) ExplainResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if decisionID == "" {
		return ExplainResult{Error: goverrors.Invalid("decision_id").Error()}
	}
	if confidence < 0 || confidence > 1 {
		return ExplainResult{Error: goverrors.Invalid("confidence").Error()}
	}
	id := ids.New("dexp")
	r.explanations[id] = &DecisionExplanation{
		ID: id, DecisionID: decisionID, Factors: factors, Alternatives: alternatives,
		Confidence: confidence, Audience: audience, Status: StatusDraft, CreatedAt: clock.ISO8601(r.clock.Now()),
	}
	return ExplainResult{Explained: true, ExplanationID: id}
}

// BuildReportResult is build_stakeholder_report's return shape.
type BuildReportResult struct {
	Built    bool
	ReportID string
	Error    string
}

// BuildStakeholderReport drafts a stakeholder report from titled sections.
func (r *Reporter) BuildStakeholderReport(sections []ReportSection) BuildReportResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(sections) == 0 {
		return BuildReportResult{Error: goverrors.Invalid("sections").Error()}
	}
	id := ids.New("srep")
	r.stakeholderReports[id] = &StakeholderReport{ID: id, Sections: sections, Status: StatusDraft, CreatedAt: clock.ISO8601(r.clock.Now())}
	return BuildReportResult{Built: true, ReportID: id}
}

// PublishResult is publish_disclosure's return shape.
type PublishResult struct {
	Published bool
	Error     string
}

// PublishDisclosure moves any of the three disclosure types from draft to
// published, identified by kind ("model_card", "decision_explanation",
// "stakeholder_report") and id.
func (r *Reporter) PublishDisclosure(kind, id string) PublishResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var status *Status
	switch kind {
	case "model_card":
		c, ok := r.modelCards[id]
		if !ok {
			return PublishResult{Error: goverrors.NotFound("model_card").Error()}
		}
		status = &c.Status
	case "decision_explanation":
		e, ok := r.explanations[id]
		if !ok {
			return PublishResult{Error: goverrors.NotFound("decision_explanation").Error()}
		}
		status = &e.Status
	case "stakeholder_report":
		s, ok := r.stakeholderReports[id]
		if !ok {
			return PublishResult{Error: goverrors.NotFound("stakeholder_report").Error()}
		}
		status = &s.Status
	default:
		return PublishResult{Error: goverrors.Invalid("kind").Error()}
	}

	if *status == StatusPublished {
		return PublishResult{Error: goverrors.Precondition("disclosure already published").Error()}
	}
	*status = StatusPublished
	return PublishResult{Published: true}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (r *Reporter) GetSummary() SummaryResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	published := 0
	for _, c := range r.modelCards {
		if c.Status == StatusPublished {
			published++
		}
	}
	for _, e := range r.explanations {
		if e.Status == StatusPublished {
			published++
		}
	}
	for _, s := range r.stakeholderReports {
		if s.Status == StatusPublished {
			published++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"model_cards":            len(r.modelCards),
		"decision_explanations":  len(r.explanations),
		"stakeholder_reports":    len(r.stakeholderReports),
		"published":              published,
	}}
}
