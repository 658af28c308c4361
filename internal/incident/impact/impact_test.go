package impact

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestAssessImpactCombinesFactors(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.AssessImpact("inc_1", LevelModerate, 3, 5000, 50000)
	if !res.Assessed {
		t.Fatalf("AssessImpact failed: %s", res.Error)
	}
	// base 0.5 + cat 0.15 + user 0.10 + fin 0.05 = 0.80
	if res.ImpactScore != 0.8 {
		t.Fatalf("expected impact score 0.8, got %v", res.ImpactScore)
	}
}

func TestAssessImpactCapsAtOne(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.AssessImpact("inc_1", LevelCatastrophic, 10, 20000, 2_000_000)
	if res.ImpactScore != 1.0 {
		t.Fatalf("expected impact score capped at 1.0, got %v", res.ImpactScore)
	}
}

func TestAssessImpactRejectsUnknownLevel(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.AssessImpact("inc_1", "not_a_level", 0, 0, 0)
	if res.Assessed {
		t.Fatalf("expected unknown impact level to be rejected")
	}
}

func TestAssessImpactNegligibleFloor(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.AssessImpact("inc_1", LevelNegligible, 0, 0, 0)
	if res.ImpactScore != 0.1 {
		t.Fatalf("expected floor impact score of 0.1, got %v", res.ImpactScore)
	}
}
