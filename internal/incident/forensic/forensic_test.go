package forensic

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestCollectEvidenceAndVerifyIntegrity(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.CollectEvidence("inc_1", "log_excerpt", "suspicious login at 3am", "analyst1")
	if !res.Collected || len(res.Hash) != 16 {
		t.Fatalf("CollectEvidence failed: %+v", res)
	}

	verify := c.VerifyIntegrity(res.EvidenceID)
	if !verify.Verified || verify.Integrity != IntegrityVerified {
		t.Fatalf("expected verified integrity, got %+v", verify)
	}
}

func TestVerifyIntegrityDetectsTampering(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.CollectEvidence("inc_1", "log_excerpt", "original content", "analyst1")

	got := c.GetEvidence(res.EvidenceID)
	got.Evidence.Content = "tampered content"

	verify := c.VerifyIntegrity(res.EvidenceID)
	if verify.Integrity != IntegrityTampered {
		t.Fatalf("expected tampered integrity after content mutation, got %s", verify.Integrity)
	}
}

func TestTransferCustodyBlockedAfterTampering(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.CollectEvidence("inc_1", "log_excerpt", "original content", "analyst1")
	got := c.GetEvidence(res.EvidenceID)
	got.Evidence.Content = "tampered"
	c.VerifyIntegrity(res.EvidenceID)

	transfer := c.TransferCustody(res.EvidenceID, "analyst1", "analyst2", "handoff")
	if transfer.Transferred {
		t.Fatalf("expected custody transfer to be blocked for tampered evidence")
	}
}

func TestTransferCustodyAppendsEntry(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.CollectEvidence("inc_1", "log_excerpt", "original content", "analyst1")
	if !c.TransferCustody(res.EvidenceID, "analyst1", "analyst2", "handoff").Transferred {
		t.Fatalf("expected custody transfer to succeed")
	}
	got := c.GetEvidence(res.EvidenceID)
	if len(got.Evidence.Custody) != 2 {
		t.Fatalf("expected 2 custody entries, got %d", len(got.Evidence.Custody))
	}
}

func TestTakeSnapshot(t *testing.T) {
	c := New(clock.Fixed{}, nil)
	res := c.TakeSnapshot("inc_1", map[string]any{"processes": []string{"a", "b"}})
	if !res.Taken {
		t.Fatalf("TakeSnapshot failed: %s", res.Error)
	}
}
