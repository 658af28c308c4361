// Package compliance composes the Compliance core's evaluators (spec §1,
// §4.3, §4.9-§4.13, SPEC_FULL.md §2a) into ComplianceOrchestrator: a
// composition root sharing one clock, logger and metrics sink, plus a
// single entry point that runs a context dictionary through policy
// enforcement and logs the outcome to a shared audit trail.
package compliance

import (
	"github.com/aegisops/govplatform/internal/aiethics/audit"
	"github.com/aegisops/govplatform/internal/compliance/access"
	"github.com/aegisops/govplatform/internal/compliance/consent"
	"github.com/aegisops/govplatform/internal/compliance/dataflow"
	"github.com/aegisops/govplatform/internal/compliance/frameworks"
	"github.com/aegisops/govplatform/internal/compliance/gaps"
	"github.com/aegisops/govplatform/internal/compliance/policy"
	"github.com/aegisops/govplatform/internal/compliance/report"
	"github.com/aegisops/govplatform/internal/compliance/retention"
	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/pkg/logger"
	"github.com/aegisops/govplatform/pkg/metrics"
)

// Orchestrator is ComplianceOrchestrator: the composition root for the
// Compliance domain's eight evaluators plus its report generator. The
// audit trail reuses EthicsDecisionAuditor's shape directly (SPEC_FULL.md
// §2) rather than re-implementing a second bounded FIFO log.
type Orchestrator struct {
	Frameworks *frameworks.Loader
	Policy     *policy.Enforcer
	DataFlow   *dataflow.Mapper
	Retention  *retention.Checker
	Consent    *consent.Manager
	Gaps       *gaps.Analyzer
	Access     *access.Auditor
	Report     *report.Generator
	AuditTrail *audit.Auditor

	clock   clock.Clock
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New wires all eight evaluators, the report generator, and the shared
// audit trail.
func New(c clock.Clock, log *logger.Logger, m *metrics.Metrics) *Orchestrator {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Orchestrator{
		Frameworks: frameworks.New(c, log),
		Policy:     policy.New(c, log),
		DataFlow:   dataflow.New(c, log),
		Retention:  retention.New(c, log),
		Consent:    consent.New(c, log),
		Gaps:       gaps.New(c, log),
		Access:     access.New(c, log),
		Report:     report.New(c, log),
		AuditTrail: audit.New(c, log),
		clock:      c,
		log:        log,
		metrics:    m,
	}
}

// CheckResult is run_compliance_check's return shape.
type CheckResult struct {
	Checked    bool
	Compliant  bool
	Violations []policy.Violation
	Error      string
}

// RunComplianceCheck evaluates ctx against every active policy, records
// the outcome in the shared audit trail, and emits metrics.
func (o *Orchestrator) RunComplianceCheck(ctx map[string]any) CheckResult {
	started := o.clock.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.Observe("compliance", "run_compliance_check", started, true)
		}
	}()

	eval := o.Policy.Evaluate(ctx)

	confidence := 1.0
	if !eval.Compliant {
		confidence = 0.5
	}
	o.AuditTrail.RecordDecision(ctx, eval.Compliant, confidence)

	for _, v := range eval.Violations {
		if o.metrics != nil {
			o.metrics.RecordFinding("compliance", v.Severity.String())
		}
	}

	return CheckResult{Checked: true, Compliant: eval.Compliant, Violations: eval.Violations}
}
