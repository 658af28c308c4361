// Package incident composes the Incident-Response core's eight
// evaluators (spec §4.19-§4.25, §4.26) into IncidentOrchestrator: a
// composition root whose RespondToIncident fan-out is spec §4.26's most
// representative example of the pattern every orchestrator in this
// module follows.
package incident

import (
	"github.com/aegisops/govplatform/internal/incident/contain"
	"github.com/aegisops/govplatform/internal/incident/detect"
	"github.com/aegisops/govplatform/internal/incident/forensic"
	"github.com/aegisops/govplatform/internal/incident/impact"
	"github.com/aegisops/govplatform/internal/incident/lessons"
	"github.com/aegisops/govplatform/internal/incident/playbook"
	"github.com/aegisops/govplatform/internal/incident/recovery"
	"github.com/aegisops/govplatform/internal/incident/rootcause"
	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
	"github.com/aegisops/govplatform/pkg/logger"
	"github.com/aegisops/govplatform/pkg/metrics"
)

// Orchestrator is IncidentOrchestrator: the composition root for the
// Incident-Response domain's eight evaluators.
type Orchestrator struct {
	Detector  *detect.Detector
	Contain   *contain.Containment
	Forensic  *forensic.Collector
	RootCause *rootcause.Analyzer
	Impact    *impact.Assessor
	Recovery  *recovery.Executor
	Lessons   *lessons.Learner
	Playbook  *playbook.Generator

	clock   clock.Clock
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New wires all eight evaluators.
func New(c clock.Clock, log *logger.Logger, m *metrics.Metrics) *Orchestrator {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Orchestrator{
		Detector:  detect.New(c, log),
		Contain:   contain.New(c, log),
		Forensic:  forensic.New(c, log),
		RootCause: rootcause.New(c, log),
		Impact:    impact.New(c, log),
		Recovery:  recovery.New(c, log),
		Lessons:   lessons.New(c, log),
		Playbook:  playbook.New(c, log),
		clock:     c,
		log:       log,
		metrics:   m,
	}
}

// severityToImpactLevel maps an incident's severity onto
// IncidentImpactAssessor's impact_level axis (spec §4.26).
func severityToImpactLevel(sev severity.Severity) impact.Level {
	switch sev {
	case severity.Critical, severity.Emergency:
		return impact.LevelCatastrophic
	case severity.High:
		return impact.LevelSevere
	case severity.Medium:
		return impact.LevelModerate
	case severity.Low:
		return impact.LevelMinor
	default:
		return impact.LevelNegligible
	}
}

// RespondRequest bundles RespondToIncident's inputs.
type RespondRequest struct {
	IncidentType       detect.IncidentType
	Severity           severity.Severity
	ObservedIndicators []string
	AffectedSystems    []string
	AutoContainActions []contain.Action
	AffectedUsers      int
	FinancialImpact    float64
	CategoryCount      int
}

// RespondResult aggregates every sub-result from the fan-out (spec
// §4.26: "Aggregated return value carries all four sub-results").
type RespondResult struct {
	Responded  bool
	IncidentID string
	Contained  *contain.ContainResult
	Assessment *impact.AssessResult
	AnalysisID string
	Error      string
}

// RespondToIncident runs spec §4.26's fan-out: detect, optionally
// contain, assess impact, start root-cause analysis, and move the
// incident to investigating.
func (o *Orchestrator) RespondToIncident(req RespondRequest) RespondResult {
	started := o.clock.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.Observe("incident", "respond_to_incident", started, true)
		}
	}()

	det := o.Detector.DetectIncident(req.IncidentType, req.Severity, req.ObservedIndicators, req.AffectedSystems)
	if !det.Detected {
		return RespondResult{Error: det.Error}
	}

	var containResult *contain.ContainResult
	if len(req.AutoContainActions) > 0 {
		cr := o.Contain.ContainIncident(det.IncidentID, req.AutoContainActions, req.AffectedSystems)
		containResult = &cr
		o.Detector.UpdateStatus(det.IncidentID, detect.StatusContained)
	}

	level := severityToImpactLevel(req.Severity)
	assess := o.Impact.AssessImpact(det.IncidentID, level, req.CategoryCount, req.AffectedUsers, req.FinancialImpact)

	analysis := o.RootCause.StartAnalysis(det.IncidentID)

	o.Detector.UpdateStatus(det.IncidentID, detect.StatusInvestigating)

	if o.metrics != nil {
		o.metrics.RecordFinding("incident", req.Severity.String())
	}

	return RespondResult{
		Responded:  true,
		IncidentID: det.IncidentID,
		Contained:  containResult,
		Assessment: &assess,
		AnalysisID: analysis.AnalysisID,
	}
}

// RecoverResult is recover_incident's return shape.
type RecoverResult struct {
	Recovered bool
	Status    detect.Status
	Error     string
}

// RecoverIncident executes a recovery plan's actions and moves the
// incident to recovering. Status stays recovering rather than resolved
// after execution, preserving source behavior (spec §9's redesign-flag
// resolution) — callers drive the resolved/closed transition themselves.
func (o *Orchestrator) RecoverIncident(incidentID, planID string, actionDescriptions []string) RecoverResult {
	for _, desc := range actionDescriptions {
		if res := o.Recovery.ExecuteRecovery(planID, desc); !res.Executed {
			return RecoverResult{Error: res.Error}
		}
	}
	upd := o.Detector.UpdateStatus(incidentID, detect.StatusRecovering)
	if !upd.Updated {
		return RecoverResult{Error: upd.Error}
	}
	return RecoverResult{Recovered: true, Status: detect.StatusRecovering}
}

// SummaryResult mirrors the universal get_summary shape, aggregated
// across every evaluator the orchestrator owns.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary aggregates counters from every evaluator.
func (o *Orchestrator) GetSummary() SummaryResult {
	stats := map[string]int{}
	for k, v := range o.Detector.GetSummary().Stats {
		stats["detect_"+k] = v
	}
	for k, v := range o.Contain.GetSummary().Stats {
		stats["contain_"+k] = v
	}
	for k, v := range o.Forensic.GetSummary().Stats {
		stats["forensic_"+k] = v
	}
	return SummaryResult{Retrieved: true, Stats: stats}
}
