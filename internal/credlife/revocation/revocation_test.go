package revocation

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestRevokeKeyWithReplacementAndNotifications(t *testing.T) {
	r := New(clock.Fixed{}, nil)
	res := r.RevokeKey("ki_1", ReasonLeaked, true, true, []string{"billing-svc", "auth-svc"})
	if !res.Revoked {
		t.Fatalf("RevokeKey failed: %s", res.Error)
	}
	if len(res.ReplacementKeyID) != 32 {
		t.Fatalf("expected a 32-char replacement key id, got %q", res.ReplacementKeyID)
	}

	sum := r.GetSummary()
	if sum.Stats["revocations"] != 1 || sum.Stats["cascades"] != 1 || sum.Stats["notifications"] != 2 {
		t.Fatalf("unexpected summary: %+v", sum.Stats)
	}
}

func TestRevokeKeyRequiresKeyID(t *testing.T) {
	r := New(clock.Fixed{}, nil)
	res := r.RevokeKey("", ReasonManual, false, false, nil)
	if res.Revoked {
		t.Fatalf("expected empty key id to be rejected")
	}
}

func TestBulkRevokeCountsSuccessesIndependently(t *testing.T) {
	r := New(clock.Fixed{}, nil)
	res := r.BulkRevoke([]string{"ki_1", "", "ki_3"}, ReasonOffboarding)
	if res.Attempted != 3 || res.Succeeded != 2 || len(res.Failed) != 1 {
		t.Fatalf("unexpected bulk revoke result: %+v", res)
	}
	if res.ErrorDetail == "" {
		t.Fatalf("expected a joined error detail for the failed key")
	}
}
