package dataflow

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestRegisterAssetRejectsInvalidCategory(t *testing.T) {
	m := New(clock.Fixed{}, nil)
	res := m.RegisterAsset("customer_emails", Category("unknown"))
	if res.Registered {
		t.Fatalf("expected invalid category to be rejected")
	}
}

func TestMapFlowIndexesCrossBorderSeparately(t *testing.T) {
	m := New(clock.Fixed{}, nil)
	asset := m.RegisterAsset("customer_emails", CategoryPersonal)
	if !asset.Registered {
		t.Fatalf("RegisterAsset failed: %s", asset.Error)
	}

	local := m.MapFlow(asset.AssetID, "us-east-1-warehouse", false)
	xborder := m.MapFlow(asset.AssetID, "eu-frankfurt-backup", true)
	if !local.Mapped || !xborder.Mapped {
		t.Fatalf("MapFlow failed: %s / %s", local.Error, xborder.Error)
	}

	report := m.GetCrossBorderFlows()
	if len(report.Flows) != 1 || report.Flows[0].ID != xborder.FlowID {
		t.Fatalf("expected only the cross-border flow indexed, got %+v", report.Flows)
	}

	all := m.GetAssetFlows(asset.AssetID)
	if len(all.Flows) != 2 {
		t.Fatalf("expected both flows retrievable by asset, got %d", len(all.Flows))
	}
}

func TestMapFlowUnknownAsset(t *testing.T) {
	m := New(clock.Fixed{}, nil)
	res := m.MapFlow("asset_missing", "somewhere", false)
	if res.Mapped {
		t.Fatalf("expected failure for unknown asset")
	}
}

func TestSummaryCounts(t *testing.T) {
	m := New(clock.Fixed{}, nil)
	asset := m.RegisterAsset("health_records", CategoryHealth)
	m.MapFlow(asset.AssetID, "partner-clinic", true)
	sum := m.GetSummary()
	if sum.Stats["assets"] != 1 || sum.Stats["flows"] != 1 || sum.Stats["cross_border"] != 1 {
		t.Fatalf("unexpected counts: %+v", sum.Stats)
	}
}
