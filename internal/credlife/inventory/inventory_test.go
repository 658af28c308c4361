package inventory

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestRegisterAndGetKey(t *testing.T) {
	inv := New(clock.Fixed{}, nil)
	reg := inv.RegisterKey("svc-key", KeyAPIKey, "alice", "billing", []string{"read", "write"}, 90)
	if !reg.Registered {
		t.Fatalf("RegisterKey failed: %s", reg.Error)
	}

	got := inv.GetKey(reg.KeyID)
	if !got.Retrieved || got.Key.Status != StatusActive {
		t.Fatalf("expected retrieved active key, got %+v", got)
	}
}

func TestRevokeNeverTransitionsBackToActive(t *testing.T) {
	inv := New(clock.Fixed{}, nil)
	reg := inv.RegisterKey("svc-key", KeyAPIKey, "alice", "billing", nil, 90)
	if !inv.Revoke(reg.KeyID).Revoked {
		t.Fatalf("expected first revoke to succeed")
	}
	second := inv.Revoke(reg.KeyID)
	if second.Revoked {
		t.Fatalf("expected revoking an already-revoked key to fail")
	}
	got := inv.GetKey(reg.KeyID)
	if got.Key.Status != StatusRevoked {
		t.Fatalf("expected status to remain revoked")
	}
}

func TestRecordUsageIncrementsCount(t *testing.T) {
	inv := New(clock.Fixed{}, nil)
	reg := inv.RegisterKey("svc-key", KeyAPIKey, "alice", "billing", nil, 90)
	if !inv.RecordUsage(reg.KeyID).Recorded {
		t.Fatalf("RecordUsage failed")
	}
	inv.RecordUsage(reg.KeyID)

	got := inv.GetKey(reg.KeyID)
	if got.Key.UsageCount != 2 {
		t.Fatalf("expected usage count 2, got %d", got.Key.UsageCount)
	}
}

func TestRecordUsageUnknownKey(t *testing.T) {
	inv := New(clock.Fixed{}, nil)
	if inv.RecordUsage("nope").Recorded {
		t.Fatalf("expected unknown key to fail")
	}
}
