// Package verify implements RotationVerifier (spec §4.18): a per-rotation
// test pipeline that runs connectivity/authentication/authorization/
// functionality/performance checks and optionally rolls back a failed
// rotation.
package verify

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// TestType enumerates RotationVerifier's test kinds (spec §4.18).
type TestType string

const (
	TestConnectivity   TestType = "connectivity"
	TestAuthentication TestType = "authentication"
	TestAuthorization  TestType = "authorization"
	TestFunctionality  TestType = "functionality"
	TestPerformance    TestType = "performance"
)

// Status is a Verification's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusTesting    Status = "testing"
	StatusPassed     Status = "passed"
	StatusFailed     Status = "failed"
	StatusRolledBack Status = "rolled_back"
)

// TestRecord is one run_test result appended to a Verification.
type TestRecord struct {
	Type           TestType
	Passed         bool
	ResponseTimeMS int
}

// Verification tracks one rotation's post-rotation test run.
type Verification struct {
	ID         string
	KeyID      string
	OldPrefix  string
	NewPrefix  string
	Status     Status
	Tests      []TestRecord
	RolledBack bool
	CreatedAt  string
}

// Rollback is a symbolic record of a failed verification's rollback.
type Rollback struct {
	ID             string
	VerificationID string
	CreatedAt      string
}

// Verifier is RotationVerifier's record store.
type Verifier struct {
	mu            sync.Mutex
	verifications map[string]*Verification
	rollbacks     []*Rollback
	clock         clock.Clock
	log           *logger.Logger

	AutoRollback bool
}

// New creates an empty Verifier.
func New(c clock.Clock, log *logger.Logger) *Verifier {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Verifier{verifications: make(map[string]*Verification), clock: c, log: log}
}

// StartResult is start_verification's return shape.
type StartResult struct {
	Started        bool
	VerificationID string
	Error          string
}

// StartVerification creates a pending Verification for a rotation.
func (v *Verifier) StartVerification(keyID, oldPrefix, newPrefix string) StartResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	if keyID == "" {
		return StartResult{Error: goverrors.Invalid("key_id").Error()}
	}
	id := ids.New("vrf")
	v.verifications[id] = &Verification{
		ID: id, KeyID: keyID, OldPrefix: oldPrefix, NewPrefix: newPrefix,
		Status: StatusPending, CreatedAt: clock.ISO8601(v.clock.Now()),
	}
	return StartResult{Started: true, VerificationID: id}
}

// RunTestResult is run_test's return shape.
type RunTestResult struct {
	Recorded bool
	Error    string
}

// RunTest appends one test outcome and moves the verification into the
// testing state.
func (v *Verifier) RunTest(verificationID string, testType TestType, passed bool, responseTimeMS int) RunTestResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	ver, ok := v.verifications[verificationID]
	if !ok {
		return RunTestResult{Error: goverrors.NotFound("verification").Error()}
	}
	ver.Tests = append(ver.Tests, TestRecord{Type: testType, Passed: passed, ResponseTimeMS: responseTimeMS})
	ver.Status = StatusTesting
	return RunTestResult{Recorded: true}
}

// FullResult is run_full_verification's return shape.
type FullResult struct {
	Completed  bool
	Status     Status
	RolledBack bool
	Error      string
}

// RunFullVerification batches a set of test results: if every test
// passes the verification passes; any failure fails it, and when
// AutoRollback is on a failed verification also creates a Rollback and
// moves to rolled_back.
func (v *Verifier) RunFullVerification(verificationID string, results []TestRecord) FullResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	ver, ok := v.verifications[verificationID]
	if !ok {
		return FullResult{Error: goverrors.NotFound("verification").Error()}
	}

	ver.Tests = append(ver.Tests, results...)
	allPassed := len(ver.Tests) > 0
	for _, r := range ver.Tests {
		if !r.Passed {
			allPassed = false
			break
		}
	}

	if allPassed {
		ver.Status = StatusPassed
		return FullResult{Completed: true, Status: ver.Status}
	}

	ver.Status = StatusFailed
	if v.AutoRollback {
		v.rollbacks = append(v.rollbacks, &Rollback{ID: ids.New("rbk"), VerificationID: verificationID, CreatedAt: clock.ISO8601(v.clock.Now())})
		ver.Status = StatusRolledBack
		ver.RolledBack = true
	}
	return FullResult{Completed: true, Status: ver.Status, RolledBack: ver.RolledBack}
}

// GetVerificationResult is get_verification's return shape.
type GetVerificationResult struct {
	Retrieved    bool
	Verification *Verification
	Error        string
}

// GetVerification retrieves a verification record by id.
func (v *Verifier) GetVerification(verificationID string) GetVerificationResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	ver, ok := v.verifications[verificationID]
	if !ok {
		return GetVerificationResult{Error: goverrors.NotFound("verification").Error()}
	}
	return GetVerificationResult{Retrieved: true, Verification: ver}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (v *Verifier) GetSummary() SummaryResult {
	v.mu.Lock()
	defer v.mu.Unlock()
	passed, failed := 0, 0
	for _, ver := range v.verifications {
		switch ver.Status {
		case StatusPassed:
			passed++
		case StatusFailed, StatusRolledBack:
			failed++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"verifications": len(v.verifications),
		"passed":        passed,
		"failed":        failed,
		"rollbacks":     len(v.rollbacks),
	}}
}
