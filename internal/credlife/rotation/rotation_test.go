package rotation

import (
	"encoding/hex"
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/seal"
)

func TestExecuteRotationGeneratesNewValueAndHistory(t *testing.T) {
	s := New(clock.Fixed{}, nil)
	add := s.AddSchedule("ki_abc123", StrategyTimeBased, 30)
	if !add.Added {
		t.Fatalf("AddSchedule failed: %s", add.Error)
	}

	res := s.ExecuteRotation(add.ScheduleID)
	if !res.Rotated || len(res.NewValue) != 32 {
		t.Fatalf("expected a 32-char rotated value, got %+v", res)
	}

	hist := s.GetRotationHistory("ki_abc123")
	if len(hist.Entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(hist.Entries))
	}

	entry := hist.Entries[0]
	if entry.SealedValue == "" {
		t.Fatalf("expected a sealed at-rest value, got empty")
	}
	sealedBytes, err := hex.DecodeString(entry.SealedValue)
	if err != nil {
		t.Fatalf("sealed value is not hex: %v", err)
	}
	key, err := seal.DeriveKey(s.masterSecret, []byte(add.ScheduleID), "rotation-history")
	if err != nil {
		t.Fatalf("DeriveKey failed: %v", err)
	}
	opened, err := seal.Open(key, sealedBytes)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if string(opened) != entry.NewValue {
		t.Fatalf("expected sealed value to round-trip to %q, got %q", entry.NewValue, opened)
	}
}

func TestExecuteRotationUnknownSchedule(t *testing.T) {
	s := New(clock.Fixed{}, nil)
	res := s.ExecuteRotation("nope")
	if res.Rotated {
		t.Fatalf("expected unknown schedule to fail")
	}
}

func TestCheckDueRotationsFlagsUrgency(t *testing.T) {
	s := New(clock.Fixed{}, nil)
	s.AddSchedule("ki_1", StrategyTimeBased, 2)
	s.AddSchedule("ki_2", StrategyTimeBased, 5)
	s.AddSchedule("ki_3", StrategyTimeBased, 30)

	res := s.CheckDueRotations()
	if len(res.Due) != 2 {
		t.Fatalf("expected 2 due schedules, got %d", len(res.Due))
	}
	urgentCount := 0
	for _, d := range res.Due {
		if d.Urgent {
			urgentCount++
		}
	}
	if urgentCount != 1 {
		t.Fatalf("expected 1 urgent schedule, got %d", urgentCount)
	}
}

func TestAddScheduleRejectsInvalidRotationDays(t *testing.T) {
	s := New(clock.Fixed{}, nil)
	res := s.AddSchedule("ki_1", StrategyManual, 0)
	if res.Added {
		t.Fatalf("expected non-positive rotation_days to be rejected")
	}
}
