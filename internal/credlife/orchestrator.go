// Package credlife composes the Credential-Lifecycle core's eight
// evaluators (spec §4.14-§4.18, SPEC_FULL.md §2b) into
// CredentialLifecycleOrchestrator: a composition root sharing one clock,
// logger and metrics sink, with a single entry point that runs a key
// through rotation, leak scanning, health scoring, and verification.
package credlife

import (
	"github.com/aegisops/govplatform/internal/credlife/health"
	"github.com/aegisops/govplatform/internal/credlife/inventory"
	"github.com/aegisops/govplatform/internal/credlife/leak"
	"github.com/aegisops/govplatform/internal/credlife/overpermission"
	"github.com/aegisops/govplatform/internal/credlife/revocation"
	"github.com/aegisops/govplatform/internal/credlife/rotation"
	"github.com/aegisops/govplatform/internal/credlife/usageanalyzer"
	"github.com/aegisops/govplatform/internal/credlife/verify"
	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/pkg/logger"
	"github.com/aegisops/govplatform/pkg/metrics"
)

// Orchestrator is CredentialLifecycleOrchestrator: the composition root
// for the Credential-Lifecycle domain's eight evaluators. UsageAnalyzer
// and OverPermission are standalone packages (SPEC_FULL.md §2b), not
// KeyInventory methods; KeyInventory itself tracks only the Key records.
type Orchestrator struct {
	Inventory      *inventory.Inventory
	Rotation       *rotation.Scheduler
	Leak           *leak.Detector
	Revocation     *revocation.Revocator
	Health         *health.Scorer
	Verify         *verify.Verifier
	UsageAnalyzer  *usageanalyzer.Analyzer
	OverPermission *overpermission.Detector

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
		Inventory:      inventory.New(c, log),
		Rotation:       rotation.New(c, log),
		Leak:           leak.New(c, log),
		Revocation:     revocation.New(c, log),
		Health:         health.New(c, log),
		Verify:         verify.New(c, log),
		UsageAnalyzer:  usageanalyzer.New(c, log),
		OverPermission: overpermission.New(c, log),
		clock:          c,
		log:            log,
		metrics:        m,
	}
}

// RotateResult is rotate_key's return shape: the orchestrated pipeline
// of executing a schedule's rotation and immediately starting
// RotationVerifier's post-rotation test run for it.
type RotateResult struct {
	Rotated        bool
	NewValue       string
	VerificationID string
	Error          string
}

// RotateKey executes a schedule's rotation and opens a verification for
// the resulting key swap. Callers drive RunTest/RunFullVerification
// against VerificationID themselves.
func (o *Orchestrator) RotateKey(scheduleID, keyID string) RotateResult {
	started := o.clock.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.Observe("credlife", "rotate_key", started, true)
		}
	}()

	exec := o.Rotation.ExecuteRotation(scheduleID)
	if !exec.Rotated {
		return RotateResult{Error: exec.Error}
	}

	start := o.Verify.StartVerification(keyID, "", exec.NewValue[:8])
	return RotateResult{Rotated: true, NewValue: exec.NewValue, VerificationID: start.VerificationID}
}

// ScanResult is scan_and_respond's return shape: CredentialLeakDetector's
// findings, plus the key ids InstantRevocator was asked to revoke for
// any critical or emergency finding.
type ScanResult struct {
	Scanned  bool
	Findings []leak.Finding
	Revoked  []string
}

// ScanAndRespond scans content for leaked credentials and, when the Leak
// detector has auto-revoke enabled and produced an auto_revoked finding,
// revokes the corresponding key in both KeyInventory and InstantRevocator.
func (o *Orchestrator) ScanAndRespond(keyID, content string) ScanResult {
	started := o.clock.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.Observe("credlife", "scan_and_respond", started, true)
		}
	}()

	res := o.Leak.ScanContent(content)

	var revoked []string
	for _, f := range res.Findings {
		if f.Severity.String() == "critical" || f.Severity.String() == "emergency" {
			if o.Leak.AutoRevoke {
				o.Inventory.Revoke(keyID)
				o.Revocation.RevokeKey(keyID, revocation.ReasonLeaked, true, true, nil)
				revoked = append(revoked, keyID)
			}
			if o.metrics != nil {
				o.metrics.RecordFinding("credlife", f.Severity.String())
			}
		}
	}

	return ScanResult{Scanned: true, Findings: res.Findings, Revoked: revoked}
}
