package overpermission

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
)

func TestCreatePolicy(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.CreatePolicy("billing-default", "billing", []string{"read"}, 3, []string{"admin:all"})
	if !res.Created || res.PolicyID == "" {
		t.Fatalf("expected policy creation to succeed, got %+v", res)
	}
}

func TestScanKeyPermissionsUnusedScopes(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.ScanKeyPermissions("key-1", []string{"read", "write", "delete", "export"}, []string{"read"}, "", "")
	if !res.Scanned || res.UnusedScopes != 3 {
		t.Fatalf("unexpected scan result: %+v", res)
	}
	found := false
	for _, v := range res.ViolationDetails {
		if v.Type == "unused_scopes" && v.Risk == severity.High {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unused_scopes violation at high risk, got %+v", res.ViolationDetails)
	}
}

func TestScanKeyPermissionsUnusedAdmin(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.ScanKeyPermissions("key-1", []string{"admin:users"}, nil, "", "")
	found := false
	for _, v := range res.ViolationDetails {
		if v.Type == "unused_admin" && v.Risk == severity.Critical {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unused_admin violation at critical risk, got %+v", res.ViolationDetails)
	}
}

func TestScanKeyPermissionsExceedsMaxAndForbidden(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	d.CreatePolicy("strict", "billing", nil, 2, []string{"delete:all"})

	res := d.ScanKeyPermissions("key-1", []string{"read", "write", "delete:all"}, []string{"read", "write", "delete:all"}, "strict", "billing")
	types := map[string]bool{}
	for _, v := range res.ViolationDetails {
		types[v.Type] = true
	}
	if !types["exceeds_max_scopes"] {
		t.Fatalf("expected exceeds_max_scopes violation, got %+v", res.ViolationDetails)
	}
	if !types["forbidden_scopes"] {
		t.Fatalf("expected forbidden_scopes violation, got %+v", res.ViolationDetails)
	}
	if res.RiskScore <= 0 {
		t.Fatalf("expected a positive risk score, got %f", res.RiskScore)
	}
}

func TestScanKeyPermissionsRiskScoreCapsAtOne(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	d.CreatePolicy("tight", "billing", nil, 0, []string{"read", "write", "delete", "export", "admin"})
	res := d.ScanKeyPermissions("key-1", []string{"read", "write", "delete", "export", "admin"}, nil, "tight", "billing")
	if res.RiskScore > 1.0 {
		t.Fatalf("expected risk score capped at 1.0, got %f", res.RiskScore)
	}
}

func TestGetRemediationRecommendsRemovalAndReduction(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.GetRemediation("key-1", []string{"read", "write", "delete", "export"}, []string{"read"})
	types := map[string]bool{}
	for _, r := range res.Recommendations {
		types[r.Type] = true
	}
	if !types["remove_scopes"] {
		t.Fatalf("expected remove_scopes recommendation, got %+v", res.Recommendations)
	}
	if !types["scope_reduction"] {
		t.Fatalf("expected scope_reduction recommendation, got %+v", res.Recommendations)
	}
}

func TestGetRemediationNoChangesWhenScopesMatchUsage(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.GetRemediation("key-1", []string{"read"}, []string{"read"})
	if len(res.Recommendations) != 0 {
		t.Fatalf("expected no recommendations when scopes match usage, got %+v", res.Recommendations)
	}
}

func TestApplyRemediation(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	res := d.ApplyRemediation("key-1", []string{"delete", "export"})
	if !res.Applied || len(res.RemovedScopes) != 2 || res.AppliedAt == "" {
		t.Fatalf("unexpected apply result: %+v", res)
	}
}

func TestOverPermissionSummary(t *testing.T) {
	d := New(clock.Fixed{}, nil)
	d.CreatePolicy("p1", "svc", nil, 5, nil)
	d.ScanKeyPermissions("key-1", []string{"read", "write"}, []string{"read"}, "p1", "svc")
	d.GetRemediation("key-1", []string{"read", "write"}, []string{"read"})

	res := d.GetSummary()
	if !res.Retrieved || res.Stats["policies"] != 1 || res.Stats["scans"] != 1 {
		t.Fatalf("unexpected summary: %+v", res)
	}
}
