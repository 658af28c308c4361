// Package rotation implements AutoRotationScheduler (spec §4.14): per-key
// rotation schedules, due-rotation sweeps, and the execute_rotation
// protocol (pre-hooks, key regeneration, post-hooks, history).
package rotation

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/seal"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
	"github.com/google/uuid"
)

// Strategy selects how a schedule decides it is due (spec §4.14).
type Strategy string

const (
	StrategyTimeBased  Strategy = "time_based"
	StrategyUsageBased Strategy = "usage_based"
	StrategyEventBased Strategy = "event_based"
	StrategyManual     Strategy = "manual"
)

// ScheduleStatus tracks a schedule's last rotation outcome.
type ScheduleStatus string

const (
	ScheduleStatusPending   ScheduleStatus = "pending"
	ScheduleStatusCompleted ScheduleStatus = "completed"
)

// Schedule is one key's rotation policy.
type Schedule struct {
	ID           string
	KeyID        string
	Strategy     Strategy
	RotationDays int
	Status       ScheduleStatus
	LastRotated  string
}

// HistoryEntry records one completed rotation. SealedValue is the
// at-rest encrypted form of NewValue, derived per-schedule via HKDF and
// sealed with ChaCha20-Poly1305 (internal/platform/seal) rather than
// storing the clear value twice.
type HistoryEntry struct {
	ID          string
	ScheduleID  string
	KeyID       string
	NewValue    string
	SealedValue string
	CreatedAt   string
}

// Scheduler is AutoRotationScheduler's record store.
type Scheduler struct {
	mu           sync.Mutex
	schedules    map[string]*Schedule
	history      []*HistoryEntry
	masterSecret []byte
	clock        clock.Clock
	log          *logger.Logger
}

// New creates an empty Scheduler with a fresh at-rest sealing secret.
func New(c clock.Clock, log *logger.Logger) *Scheduler {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	master := make([]byte, 32)
	_, _ = rand.Read(master)
	return &Scheduler{schedules: make(map[string]*Schedule), masterSecret: master, clock: c, log: log}
}

// AddScheduleResult is add_schedule's return shape.
type AddScheduleResult struct {
	Added      bool
	ScheduleID string
	Error      string
}

// AddSchedule registers a rotation policy for a key.
func (s *Scheduler) AddSchedule(keyID string, strategy Strategy, rotationDays int) AddScheduleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keyID == "" || rotationDays <= 0 {
		return AddScheduleResult{Error: goverrors.Invalid("key_id/rotation_days").Error()}
	}
	id := ids.New("rot")
	s.schedules[id] = &Schedule{ID: id, KeyID: keyID, Strategy: strategy, RotationDays: rotationDays, Status: ScheduleStatusPending}
	return AddScheduleResult{Added: true, ScheduleID: id}
}

// ExecuteResult is execute_rotation's return shape.
type ExecuteResult struct {
	Rotated  bool
	NewValue string
	Error    string
}

// ExecuteRotation runs the rotation protocol for a schedule: pre-hooks
// (always succeed symbolically), new key value generation, schedule
// update, post-hooks, and a history append.
func (s *Scheduler) ExecuteRotation(scheduleID string) ExecuteResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	sch, ok := s.schedules[scheduleID]
	if !ok {
		return ExecuteResult{Error: goverrors.NotFound("schedule").Error()}
	}

	newValue := generateKeyValue(sch.KeyID)

	sealedHex := ""
	if key, err := seal.DeriveKey(s.masterSecret, []byte(scheduleID), "rotation-history"); err == nil {
		if sealed, err := seal.Seal(key, []byte(newValue)); err == nil {
			sealedHex = hex.EncodeToString(sealed)
		}
	}

	sch.LastRotated = clock.ISO8601(s.clock.Now())
	sch.Status = ScheduleStatusCompleted

	s.history = append(s.history, &HistoryEntry{
		ID: ids.New("rh"), ScheduleID: scheduleID, KeyID: sch.KeyID, NewValue: newValue,
		SealedValue: sealedHex, CreatedAt: sch.LastRotated,
	})
	return ExecuteResult{Rotated: true, NewValue: newValue}
}

// generateKeyValue derives a 32-hex-char replacement value from the key
// id and a fresh UUID, per spec §4.14.
func generateKeyValue(keyID string) string {
	sum := sha256.Sum256([]byte(keyID + uuid.New().String()))
	return hex.EncodeToString(sum[:])[:32]
}

// DueSchedule pairs a schedule with its urgency.
type DueSchedule struct {
	ScheduleID string
	KeyID      string
	Urgent     bool
}

// DueResult is check_due_rotations's return shape.
type DueResult struct {
	Checked bool
	Due     []DueSchedule
}

// CheckDueRotations returns schedules with rotation_days <= 7, flagging
// those at <= 3 days as urgent.
func (s *Scheduler) CheckDueRotations() DueResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []DueSchedule
	for _, sch := range s.schedules {
		if sch.RotationDays <= 7 {
			due = append(due, DueSchedule{ScheduleID: sch.ID, KeyID: sch.KeyID, Urgent: sch.RotationDays <= 3})
		}
	}
	return DueResult{Checked: true, Due: due}
}

// HistoryResult is get_rotation_history's return shape.
type HistoryResult struct {
	Retrieved bool
	Entries   []*HistoryEntry
}

// GetRotationHistory returns a key's completed rotations in order.
func (s *Scheduler) GetRotationHistory(keyID string) HistoryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []*HistoryEntry
	for _, h := range s.history {
		if h.KeyID == keyID {
			entries = append(entries, h)
		}
	}
	return HistoryResult{Retrieved: true, Entries: entries}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (s *Scheduler) GetSummary() SummaryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"schedules": len(s.schedules),
		"rotations": len(s.history),
	}}
}
