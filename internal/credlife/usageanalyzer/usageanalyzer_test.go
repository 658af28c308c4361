package usageanalyzer

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
)

func TestRecordUsageAccumulatesLogs(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.RecordUsage("key-1", "read", "10.0.0.1", "curl/8", "/v1/items", 200)
	if !res.Recorded || res.TotalLogs != 1 {
		t.Fatalf("expected first log recorded, got %+v", res)
	}
	res = a.RecordUsage("key-1", "read", "10.0.0.1", "curl/8", "/v1/items", 200)
	if res.TotalLogs != 2 {
		t.Fatalf("expected 2 logs, got %d", res.TotalLogs)
	}
}

func TestAnalyzePatternsComputesErrorRateAndEndpoints(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	a.RecordUsage("key-1", "read", "10.0.0.1", "ua", "/a", 200)
	a.RecordUsage("key-1", "read", "10.0.0.2", "ua", "/a", 500)
	a.RecordUsage("key-1", "read", "10.0.0.2", "ua", "/b", 200)

	res := a.AnalyzePatterns("key-1")
	if !res.Analyzed {
		t.Fatalf("expected analysis to succeed")
	}
	if res.Pattern.TotalUsage != 3 || res.Pattern.UniqueIPs != 2 {
		t.Fatalf("unexpected pattern: %+v", res.Pattern)
	}
	if res.Pattern.Endpoints["/a"] != 2 || res.Pattern.Endpoints["/b"] != 1 {
		t.Fatalf("unexpected endpoint breakdown: %+v", res.Pattern.Endpoints)
	}
	if res.Pattern.ErrorCount != 1 || res.Pattern.ErrorRate != 1.0/3.0 {
		t.Fatalf("unexpected error stats: %+v", res.Pattern)
	}
}

func TestAnalyzePatternsUnknownKey(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.AnalyzePatterns("nope")
	if !res.Analyzed || res.Pattern.TotalUsage != 0 {
		t.Fatalf("expected empty pattern for unknown key, got %+v", res)
	}
}

func TestDetectAnomaliesTooManyIPs(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	for i := 0; i < 5; i++ {
		a.RecordUsage("key-1", "read", "10.0.0."+string(rune('1'+i)), "ua", "/a", 200)
	}
	res := a.DetectAnomalies("key-1", 3, 1.0)
	if !res.Detected {
		t.Fatalf("expected detection to succeed")
	}
	found := false
	for _, an := range res.Anomalies {
		if an.Type == "too_many_ips" && an.Severity == severity.High {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected too_many_ips anomaly, got %+v", res.Anomalies)
	}
}

func TestDetectAnomaliesHighErrorRate(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	a.RecordUsage("key-1", "read", "10.0.0.1", "ua", "/a", 500)
	a.RecordUsage("key-1", "read", "10.0.0.1", "ua", "/a", 200)

	res := a.DetectAnomalies("key-1", 100, 0.25)
	found := false
	for _, an := range res.Anomalies {
		if an.Type == "high_error_rate" && an.Severity == severity.Medium {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected high_error_rate anomaly, got %+v", res.Anomalies)
	}
}

func TestDetectAnomaliesRapidIPChange(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	ips := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}
	for _, ip := range ips {
		a.RecordUsage("key-1", "read", ip, "ua", "/a", 200)
	}
	res := a.DetectAnomalies("key-1", 100, 1.0)
	found := false
	for _, an := range res.Anomalies {
		if an.Type == "rapid_ip_change" && an.Severity == severity.Critical {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected rapid_ip_change anomaly, got %+v", res.Anomalies)
	}
}

func TestFindUnusedKeysClassifiesNeverAndRarelyUsed(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	a.RecordUsage("key-active", "read", "1.1.1.1", "ua", "/a", 200)
	a.RecordUsage("key-active", "read", "1.1.1.1", "ua", "/a", 200)
	a.RecordUsage("key-active", "read", "1.1.1.1", "ua", "/a", 200)
	a.RecordUsage("key-active", "read", "1.1.1.1", "ua", "/a", 200)
	a.RecordUsage("key-rare", "read", "1.1.1.1", "ua", "/a", 200)

	res := a.FindUnusedKeys([]string{"key-active", "key-rare", "key-never"}, 30)
	if !res.Found || res.TotalChecked != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	reasons := map[string]string{}
	for _, u := range res.UnusedKeys {
		reasons[u.KeyID] = u.Reason
	}
	if reasons["key-never"] != "never_used" || reasons["key-rare"] != "rarely_used" {
		t.Fatalf("unexpected classification: %+v", reasons)
	}
	if _, flagged := reasons["key-active"]; flagged {
		t.Fatalf("did not expect key-active to be flagged")
	}
}

func TestGetRecommendationsInvestigateAndRestrict(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	for i := 0; i < 12; i++ {
		ip := "10.0.1." + string(rune('0'+i))
		code := 200
		if i%2 == 0 {
			code = 500
		}
		a.RecordUsage("key-1", "read", ip, "ua", "/a", code)
	}

	res := a.GetRecommendations("key-1")
	types := map[string]bool{}
	for _, r := range res.Recommendations {
		types[r.Type] = true
	}
	if !types["investigate_errors"] {
		t.Fatalf("expected investigate_errors recommendation, got %+v", res.Recommendations)
	}
	if !types["restrict_ips"] {
		t.Fatalf("expected restrict_ips recommendation, got %+v", res.Recommendations)
	}
}

func TestGetRecommendationsRemoveUnused(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	res := a.GetRecommendations("key-never")
	if len(res.Recommendations) != 1 || res.Recommendations[0].Type != "remove_unused" {
		t.Fatalf("expected remove_unused recommendation, got %+v", res.Recommendations)
	}
}

func TestGetAnomalyCountsSplitsCriticalAndNonCritical(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	ips := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3", "10.0.0.4"}
	for _, ip := range ips {
		a.RecordUsage("key-1", "read", ip, "ua", "/a", 500)
	}
	a.DetectAnomalies("key-1", 1, 0.1)

	counts := a.GetAnomalyCounts("key-1")
	if counts.Critical == 0 && counts.NonCritical == 0 {
		t.Fatalf("expected some anomalies to be counted, got %+v", counts)
	}
}

func TestUsageAnalyzerSummary(t *testing.T) {
	a := New(clock.Fixed{}, nil)
	a.RecordUsage("key-1", "read", "1.1.1.1", "ua", "/a", 200)
	a.GetRecommendations("key-1")

	res := a.GetSummary()
	if !res.Retrieved || res.Stats["keys_tracked"] != 1 {
		t.Fatalf("unexpected summary: %+v", res)
	}
}
