// Package retention implements RetentionPolicyChecker (spec §4.11):
// policies declaring a retention window and deletion mode, tracked
// records checked for expiration against legal holds, and a bulk
// auto-delete sweep.
package retention

import (
	"sync"
	"time"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Type is a retention policy's classification (spec §4.11).
type Type string

const (
	TypeFixed      Type = "fixed"
	TypeEventBased Type = "event_based"
	TypeIndefinite Type = "indefinite"
	TypeRegulatory Type = "regulatory"
)

func validType(t Type) bool {
	switch t {
	case TypeFixed, TypeEventBased, TypeIndefinite, TypeRegulatory:
		return true
	}
	return false
}

// Policy declares how long tracked records may live.
type Policy struct {
	ID            string
	Name          string
	RetentionDays int
	RetentionType Type
	AutoDelete    bool
}

// Record is one record tracked under a policy.
type Record struct {
	ID          string
	PolicyID    string
	CreatedDate string
	Deleted     bool
}

// LegalHold suspends expiration for a specific record while active.
type LegalHold struct {
	ID       string
	RecordID string
	Active   bool
}

// Checker is RetentionPolicyChecker's record store.
type Checker struct {
	mu          sync.Mutex
	policies    map[string]*Policy
	records     map[string]*Record
	recordOrder []string
	holds       map[string]*LegalHold
	byRecord    map[string][]string
	clock       clock.Clock
	log         *logger.Logger
}

// New creates an empty Checker.
func New(c clock.Clock, log *logger.Logger) *Checker {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Checker{
		policies: make(map[string]*Policy),
		records:  make(map[string]*Record),
		holds:    make(map[string]*LegalHold),
		byRecord: make(map[string][]string),
		clock:    c,
		log:      log,
	}
}

// AddPolicyResult is add_policy's return shape.
type AddPolicyResult struct {
	Added    bool
	PolicyID string
	Error    string
}

// AddPolicy declares a retention policy.
func (c *Checker) AddPolicy(name string, retentionDays int, retentionType Type, autoDelete bool) AddPolicyResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" {
		return AddPolicyResult{Error: goverrors.Invalid("name").Error()}
	}
	if !validType(retentionType) {
		return AddPolicyResult{Error: goverrors.Invalid("retention_type=" + string(retentionType)).Error()}
	}
	id := ids.New("rpol")
	c.policies[id] = &Policy{ID: id, Name: name, RetentionDays: retentionDays, RetentionType: retentionType, AutoDelete: autoDelete}
	return AddPolicyResult{Added: true, PolicyID: id}
}

// TrackResult is track_record's return shape.
type TrackResult struct {
	Tracked  bool
	RecordID string
	Error    string
}

// TrackRecord registers a record under a policy with its creation date
// (an ISO-8601 string, matching clock.ISO8601's format).
func (c *Checker) TrackRecord(policyID, createdDate string) TrackResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.policies[policyID]; !ok {
		return TrackResult{Error: goverrors.NotFound("policy").Error()}
	}
	if createdDate == "" {
		return TrackResult{Error: goverrors.Invalid("created_date").Error()}
	}
	id := ids.New("rrec")
	c.records[id] = &Record{ID: id, PolicyID: policyID, CreatedDate: createdDate}
	c.recordOrder = append(c.recordOrder, id)
	return TrackResult{Tracked: true, RecordID: id}
}

// PlaceHoldResult is place_legal_hold's return shape.
type PlaceHoldResult struct {
	Placed bool
	HoldID string
	Error  string
}

// PlaceLegalHold suspends expiration for a record while active.
func (c *Checker) PlaceLegalHold(recordID string) PlaceHoldResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.records[recordID]; !ok {
		return PlaceHoldResult{Error: goverrors.NotFound("record").Error()}
	}
	id := ids.New("hold")
	c.holds[id] = &LegalHold{ID: id, RecordID: recordID, Active: true}
	c.byRecord[recordID] = append(c.byRecord[recordID], id)
	return PlaceHoldResult{Placed: true, HoldID: id}
}

// ReleaseHoldResult is release_legal_hold's return shape.
type ReleaseHoldResult struct {
	Released bool
	Error    string
}

// ReleaseLegalHold lifts a previously placed hold.
func (c *Checker) ReleaseLegalHold(holdID string) ReleaseHoldResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.holds[holdID]
	if !ok {
		return ReleaseHoldResult{Error: goverrors.NotFound("legal_hold").Error()}
	}
	h.Active = false
	return ReleaseHoldResult{Released: true}
}

// CheckExpirationResult is check_expiration's return shape.
type CheckExpirationResult struct {
	Checked bool
	Expired bool
	AgeDays int
	Error   string
}

// CheckExpiration applies spec §4.11's two-step rule: an active legal
// hold forces expired=false; otherwise a record expires once its age in
// days exceeds its policy's retention window.
func (c *Checker) CheckExpiration(recordID string, now clock.Clock) CheckExpirationResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.records[recordID]
	if !ok {
		return CheckExpirationResult{Error: goverrors.NotFound("record").Error()}
	}
	if c.hasActiveHold(recordID) {
		return CheckExpirationResult{Checked: true, Expired: false}
	}
	pol, ok := c.policies[rec.PolicyID]
	if !ok {
		return CheckExpirationResult{Error: goverrors.NotFound("policy").Error()}
	}
	if pol.RetentionType == TypeIndefinite {
		return CheckExpirationResult{Checked: true, Expired: false}
	}

	age, err := ageDays(rec.CreatedDate, now.Now())
	if err != nil {
		return CheckExpirationResult{Error: goverrors.Invalid("created_date").Error()}
	}
	return CheckExpirationResult{Checked: true, Expired: age > pol.RetentionDays, AgeDays: age}
}

func (c *Checker) hasActiveHold(recordID string) bool {
	for _, id := range c.byRecord[recordID] {
		if h, ok := c.holds[id]; ok && h.Active {
			return true
		}
	}
	return false
}

func ageDays(createdDate string, now time.Time) (int, error) {
	created, err := time.Parse(time.RFC3339, createdDate)
	if err != nil {
		return 0, err
	}
	return int(now.Sub(created).Hours() / 24), nil
}

// AutoDeleteResult is auto_delete_expired's return shape.
type AutoDeleteResult struct {
	Swept      bool
	DeletedIDs []string
}

// AutoDeleteExpired scans all active records, marking as deleted those
// that are both expired and whose policy has AutoDelete enabled.
func (c *Checker) AutoDeleteExpired(now clock.Clock) AutoDeleteResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deleted []string
	for _, id := range c.recordOrder {
		rec := c.records[id]
		if rec.Deleted {
			continue
		}
		pol, ok := c.policies[rec.PolicyID]
		if !ok || !pol.AutoDelete {
			continue
		}
		if c.hasActiveHold(id) || pol.RetentionType == TypeIndefinite {
			continue
		}
		age, err := ageDays(rec.CreatedDate, now.Now())
		if err != nil || age <= pol.RetentionDays {
			continue
		}
		rec.Deleted = true
		deleted = append(deleted, id)
	}
	return AutoDeleteResult{Swept: true, DeletedIDs: deleted}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (c *Checker) GetSummary() SummaryResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	deleted := 0
	for _, r := range c.records {
		if r.Deleted {
			deleted++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"policies":        len(c.policies),
		"records":         len(c.records),
		"deleted_records": deleted,
		"legal_holds":     len(c.holds),
	}}
}
