// Package consent implements ComplianceConsentManager (spec §4.12):
// consent keyed by (user_id, purpose_id), with a validated state machine
// and a full audit trail of every transition.
package consent

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// State is a consent record's lifecycle state (spec §4.12).
type State string

const (
	StateGranted   State = "granted"
	StateDenied    State = "denied"
	StateWithdrawn State = "withdrawn"
	StateExpired   State = "expired"
)

// Consent is one (user_id, purpose_id) consent record.
type Consent struct {
	ID        string
	UserID    string
	PurposeID string
	State     State
	CreatedAt string
}

// AuditEntry logs one state transition.
type AuditEntry struct {
	ID        string
	ConsentID string
	From      State
	To        State
	CreatedAt string
}

func key(userID, purposeID string) string { return userID + "\x00" + purposeID }

// Manager is ComplianceConsentManager's record store.
type Manager struct {
	mu    sync.Mutex
	byKey map[string]*Consent
	trail []*AuditEntry
	clock clock.Clock
	log   *logger.Logger
}

// New creates an empty Manager.
func New(c clock.Clock, log *logger.Logger) *Manager {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{byKey: make(map[string]*Consent), clock: c, log: log}
}

// RecordResult is record_consent's return shape.
type RecordResult struct {
	Recorded  bool
	ConsentID string
	Error     string
}

// RecordConsent grants or denies consent for a (user_id, purpose_id) pair,
// creating the record if it doesn't exist yet or overwriting the prior
// state (and logging the transition) if it does.
func (m *Manager) RecordConsent(userID, purposeID string, state State) RecordResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if userID == "" || purposeID == "" {
		return RecordResult{Error: goverrors.Invalid("user_id/purpose_id").Error()}
	}
	if state != StateGranted && state != StateDenied {
		return RecordResult{Error: goverrors.Invalid("state=" + string(state)).Error()}
	}

	k := key(userID, purposeID)
	existing, ok := m.byKey[k]
	if !ok {
		id := ids.New("cst")
		c := &Consent{ID: id, UserID: userID, PurposeID: purposeID, State: state, CreatedAt: clock.ISO8601(m.clock.Now())}
		m.byKey[k] = c
		m.logTransition(id, "", state)
		return RecordResult{Recorded: true, ConsentID: id}
	}

	from := existing.State
	existing.State = state
	m.logTransition(existing.ID, from, state)
	return RecordResult{Recorded: true, ConsentID: existing.ID}
}

// WithdrawResult is withdraw_consent's return shape.
type WithdrawResult struct {
	Withdrawn bool
	Error     string
}

// WithdrawConsent transitions a granted consent to withdrawn. Withdrawal
// is only valid from the granted state (spec §4.12).
func (m *Manager) WithdrawConsent(userID, purposeID string) WithdrawResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byKey[key(userID, purposeID)]
	if !ok {
		return WithdrawResult{Error: goverrors.NotFound("consent").Error()}
	}
	if c.State != StateGranted {
		return WithdrawResult{Error: goverrors.Precondition("consent is not in granted state").Error()}
	}
	from := c.State
	c.State = StateWithdrawn
	m.logTransition(c.ID, from, StateWithdrawn)
	return WithdrawResult{Withdrawn: true}
}

// ExpireResult is expire_consent's return shape.
type ExpireResult struct {
	Expired bool
	Error   string
}

// ExpireConsent transitions any non-terminal consent to expired.
func (m *Manager) ExpireConsent(userID, purposeID string) ExpireResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byKey[key(userID, purposeID)]
	if !ok {
		return ExpireResult{Error: goverrors.NotFound("consent").Error()}
	}
	if c.State == StateWithdrawn || c.State == StateExpired {
		return ExpireResult{Error: goverrors.Precondition("consent already terminal").Error()}
	}
	from := c.State
	c.State = StateExpired
	m.logTransition(c.ID, from, StateExpired)
	return ExpireResult{Expired: true}
}

func (m *Manager) logTransition(consentID string, from, to State) {
	m.trail = append(m.trail, &AuditEntry{
		ID: ids.New("caud"), ConsentID: consentID, From: from, To: to, CreatedAt: clock.ISO8601(m.clock.Now()),
	})
}

// GetConsentResult is get_consent's return shape.
type GetConsentResult struct {
	Retrieved bool
	Consent   *Consent
	Error     string
}

// GetConsent retrieves the current state for a (user_id, purpose_id) pair.
func (m *Manager) GetConsent(userID, purposeID string) GetConsentResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byKey[key(userID, purposeID)]
	if !ok {
		return GetConsentResult{Error: goverrors.NotFound("consent").Error()}
	}
	return GetConsentResult{Retrieved: true, Consent: c}
}

// AuditTrailResult is get_audit_trail's return shape.
type AuditTrailResult struct {
	Retrieved bool
	Entries   []*AuditEntry
}

// GetAuditTrail returns every logged transition in insertion order.
func (m *Manager) GetAuditTrail() AuditTrailResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return AuditTrailResult{Retrieved: true, Entries: append([]*AuditEntry{}, m.trail...)}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (m *Manager) GetSummary() SummaryResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	byState := map[string]int{}
	for _, c := range m.byKey {
		byState[string(c.State)]++
	}
	stats := map[string]int{"consents": len(m.byKey), "audit_entries": len(m.trail)}
	for s, n := range byState {
		stats["state_"+s] = n
	}
	return SummaryResult{Retrieved: true, Stats: stats}
}
