package health

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestComputeScoreHealthyKey(t *testing.T) {
	s := New(clock.Fixed{}, nil)
	res := s.ComputeScore("ki_1", Inputs{
		AgeDays: 10, MaxAgeDays: 365,
		Usage:      UsageInput{ErrorRate: 0.01, IdleDays: 1},
		Permission: PermissionInput{TotalScopes: 2},
		Rotation:   RotationInput{DaysSinceRotation: 5, PolicyDays: 30},
		Anomaly:    AnomalyInput{},
	})
	if !res.Computed {
		t.Fatalf("ComputeScore failed: %s", res.Error)
	}
	if res.Score.Grade != "excellent" {
		t.Fatalf("expected excellent grade for a healthy key, got %s (%v)", res.Score.Grade, res.Score)
	}
}

func TestComputeScoreDegradedKey(t *testing.T) {
	s := New(clock.Fixed{}, nil)
	res := s.ComputeScore("ki_2", Inputs{
		AgeDays: 300, MaxAgeDays: 365,
		Usage:      UsageInput{ErrorRate: 0.6, IdleDays: 120},
		Permission: PermissionInput{TotalScopes: 12, UnusedScopes: 5, HasAdmin: true},
		Rotation:   RotationInput{NeverRotated: true, DaysSinceRotation: 400, PolicyDays: 30},
		Anomaly:    AnomalyInput{Critical: 2, NonCritical: 3},
	})
	if !res.Computed {
		t.Fatalf("ComputeScore failed: %s", res.Error)
	}
	if res.Score.Grade != "critical" && res.Score.Grade != "poor" {
		t.Fatalf("expected a degraded grade, got %s (%v)", res.Score.Grade, res.Score)
	}
}

func TestComputeScoreRequiresKeyID(t *testing.T) {
	s := New(clock.Fixed{}, nil)
	res := s.ComputeScore("", Inputs{})
	if res.Computed {
		t.Fatalf("expected empty key id to be rejected")
	}
}

func TestGetScoreUnknownKey(t *testing.T) {
	s := New(clock.Fixed{}, nil)
	res := s.GetScore("nope")
	if res.Retrieved {
		t.Fatalf("expected unknown key to fail")
	}
}

func TestNeverUsedCapsUsageScore(t *testing.T) {
	if got := usageScore(UsageInput{NeverUsed: true}); got != 30 {
		t.Fatalf("expected never-used usage score of 30, got %v", got)
	}
}

func TestZeroScopesMeansFullPermissionScore(t *testing.T) {
	if got := permissionScore(PermissionInput{TotalScopes: 0}); got != 100 {
		t.Fatalf("expected 100 for a key with zero scopes, got %v", got)
	}
}
