// Package forensic implements ForensicCollector (spec §4.21): a
// hash-verified evidence store with a custody chain, plus arbitrary-data
// snapshots as a parallel record type.
package forensic

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Integrity is an Evidence record's verification state (spec §3).
type Integrity string

const (
	IntegrityVerified Integrity = "verified"
	IntegrityTampered Integrity = "tampered"
)

// CustodyEntry is one link in an Evidence record's custody chain.
type CustodyEntry struct {
	Action string // "collected" or "transferred"
	From   string
	To     string
	Reason string
}

// Evidence is one collected piece of forensic evidence.
type Evidence struct {
	ID         string
	IncidentID string
	Type       string
	Content    string
	Hash       string
	Integrity  Integrity
	Custody    []CustodyEntry
	CreatedAt  string
}

// Snapshot is a parallel record type carrying an arbitrary data payload.
type Snapshot struct {
	ID         string
	IncidentID string
	Data       map[string]any
	CreatedAt  string
}

// Collector is ForensicCollector's record store.
type Collector struct {
	mu        sync.Mutex
	evidence  map[string]*Evidence
	snapshots map[string]*Snapshot
	clock     clock.Clock
	log       *logger.Logger
}

// New creates an empty Collector.
func New(c clock.Clock, log *logger.Logger) *Collector {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Collector{evidence: make(map[string]*Evidence), snapshots: make(map[string]*Snapshot), clock: c, log: log}
}

func hashOf(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])[:16]
}

// CollectResult is collect_evidence's return shape.
type CollectResult struct {
	Collected  bool
	EvidenceID string
	Hash       string
	Error      string
}

// CollectEvidence hashes content, stores the Evidence record with an
// initial "collected" custody entry, and marks it verified.
func (c *Collector) CollectEvidence(incidentID, evType, content, collectedBy string) CollectResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if incidentID == "" || content == "" {
		return CollectResult{Error: goverrors.Invalid("incident_id/content").Error()}
	}
	hash := hashOf(content)
	id := ids.New("evd")
	c.evidence[id] = &Evidence{
		ID: id, IncidentID: incidentID, Type: evType, Content: content, Hash: hash,
		Integrity: IntegrityVerified,
		Custody:   []CustodyEntry{{Action: "collected", To: collectedBy}},
		CreatedAt: clock.ISO8601(c.clock.Now()),
	}
	return CollectResult{Collected: true, EvidenceID: id, Hash: hash}
}

// VerifyResult is verify_integrity's return shape.
type VerifyResult struct {
	Verified  bool
	Integrity Integrity
	Error     string
}

// VerifyIntegrity recomputes content's hash and compares it against the
// stored hash, updating the record's Integrity field.
func (c *Collector) VerifyIntegrity(evidenceID string) VerifyResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.evidence[evidenceID]
	if !ok {
		return VerifyResult{Error: goverrors.NotFound("evidence").Error()}
	}
	if hashOf(ev.Content) == ev.Hash {
		ev.Integrity = IntegrityVerified
	} else {
		ev.Integrity = IntegrityTampered
	}
	return VerifyResult{Verified: true, Integrity: ev.Integrity}
}

// TransferResult is transfer_custody's return shape.
type TransferResult struct {
	Transferred bool
	Error       string
}

// TransferCustody appends a "transferred" custody entry. Evidence with
// integrity tampered remains in the store but its custody chain is not
// extended (spec §3 invariant).
func (c *Collector) TransferCustody(evidenceID, from, to, reason string) TransferResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.evidence[evidenceID]
	if !ok {
		return TransferResult{Error: goverrors.NotFound("evidence").Error()}
	}
	if ev.Integrity == IntegrityTampered {
		return TransferResult{Error: goverrors.Precondition("evidence integrity is tampered").Error()}
	}
	ev.Custody = append(ev.Custody, CustodyEntry{Action: "transferred", From: from, To: to, Reason: reason})
	return TransferResult{Transferred: true}
}

// SnapshotResult is take_snapshot's return shape.
type SnapshotResult struct {
	Taken      bool
	SnapshotID string
	Error      string
}

// TakeSnapshot stores an arbitrary data payload as a parallel record.
func (c *Collector) TakeSnapshot(incidentID string, data map[string]any) SnapshotResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if incidentID == "" {
		return SnapshotResult{Error: goverrors.Invalid("incident_id").Error()}
	}
	id := ids.New("snp")
	c.snapshots[id] = &Snapshot{ID: id, IncidentID: incidentID, Data: data, CreatedAt: clock.ISO8601(c.clock.Now())}
	return SnapshotResult{Taken: true, SnapshotID: id}
}

// GetEvidenceResult is get_evidence's return shape.
type GetEvidenceResult struct {
	Retrieved bool
	Evidence  *Evidence
	Error     string
}

// GetEvidence retrieves an evidence record by id.
func (c *Collector) GetEvidence(evidenceID string) GetEvidenceResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	ev, ok := c.evidence[evidenceID]
	if !ok {
		return GetEvidenceResult{Error: goverrors.NotFound("evidence").Error()}
	}
	return GetEvidenceResult{Retrieved: true, Evidence: ev}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (c *Collector) GetSummary() SummaryResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	tampered := 0
	for _, ev := range c.evidence {
		if ev.Integrity == IntegrityTampered {
			tampered++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"evidence":  len(c.evidence),
		"tampered":  tampered,
		"snapshots": len(c.snapshots),
	}}
}
