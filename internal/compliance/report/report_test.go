package report

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
)

func TestCreateTemplateDefaultsSections(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.CreateTemplate("quarterly", TypeComplianceStatus, nil, "quarterly review")
	if !res.Created || res.TemplateID == "" {
		t.Fatalf("expected template creation to succeed, got %+v", res)
	}
}

func TestCreateTemplateRejectsUnknownType(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.CreateTemplate("bad", Type("not_a_type"), nil, "")
	if res.Created {
		t.Fatalf("expected unknown report type to be rejected")
	}
}

func TestGenerateReportRejectsUnknownType(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.GenerateReport("t", Type("nope"), "gdpr", FormatDetailed, Data{}, "")
	if res.Generated {
		t.Fatalf("expected unknown report type to be rejected")
	}
}

func TestGenerateReportDetailedIncludesAllSections(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.GenerateReport("Q1 report", TypeComplianceStatus, "gdpr", FormatDetailed, Data{
		Summary: "all good", Findings: []any{"f1"}, Recommendations: []any{"r1"},
		AuditInfo: map[string]any{"auditor": "alice"},
	}, "")
	if !res.Generated || res.Sections != 4 {
		t.Fatalf("expected 4 sections for detailed compliance_status, got %+v", res)
	}
}

func TestGenerateReportSummaryFormatSkipsFindings(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.GenerateReport("summary", TypeGapAnalysis, "gdpr", FormatSummary, Data{
		Recommendations: []any{"r1"},
	}, "")
	if !res.Generated || res.Sections != 1 {
		t.Fatalf("expected only the recommendations section for summary gap_analysis, got %+v", res)
	}
}

func TestCollectEvidenceRequiresExistingReport(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.CollectEvidence("cr_missing", "log", "title", "content", "system")
	if res.Collected {
		t.Fatalf("expected evidence collection against a missing report to fail")
	}
}

func TestCollectEvidenceAndExport(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	gen := g.GenerateReport("t", TypeAuditReady, "gdpr", FormatDetailed, Data{}, "")
	ev := g.CollectEvidence(gen.ReportID, "log", "access log", "...", "siem")
	if !ev.Collected {
		t.Fatalf("expected evidence collection to succeed, got %+v", ev)
	}

	exp := g.ExportReport(gen.ReportID, "json")
	if !exp.Exported || exp.EvidenceCount != 1 {
		t.Fatalf("expected export with 1 piece of evidence, got %+v", exp)
	}
}

func TestExportReportUnknownID(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.ExportReport("nope", "json")
	if res.Exported {
		t.Fatalf("expected export of unknown report to fail")
	}
}

func TestGenerateExecutiveSummaryDerivesStatus(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	cases := []struct {
		score float64
		want  string
	}{
		{95, "compliant"},
		{80, "partially_compliant"},
		{50, "non_compliant"},
	}
	for _, c := range cases {
		res := g.GenerateExecutiveSummary("gdpr", c.score, 10, 8, nil)
		if res.Status != c.want {
			t.Fatalf("score %.0f: expected status %s, got %s", c.score, c.want, res.Status)
		}
	}
}

func TestGenerateExecutiveSummaryTalliesFindings(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	res := g.GenerateExecutiveSummary("gdpr", 60, 10, 4, []Finding{
		{Severity: "critical"}, {Severity: "critical"}, {Severity: "high"}, {Severity: "low"},
	})
	if res.CriticalCount != 2 || res.HighCount != 1 || res.TotalFindings != 4 || res.FailedControls != 6 {
		t.Fatalf("unexpected tally: %+v", res)
	}
}

func TestReportGeneratorSummary(t *testing.T) {
	g := New(clock.Fixed{}, nil)
	g.CreateTemplate("t1", TypeComplianceStatus, nil, "")
	gen1 := g.GenerateReport("r1", TypeComplianceStatus, "gdpr", FormatDetailed, Data{}, "")
	g.GenerateReport("r2", TypeGapAnalysis, "gdpr", FormatSummary, Data{}, "")
	g.CollectEvidence(gen1.ReportID, "log", "t", "c", "s")

	res := g.GetSummary()
	if !res.Retrieved || res.TotalReports != 2 || res.TotalTemplates != 1 || res.TotalEvidence != 1 {
		t.Fatalf("unexpected summary: %+v", res)
	}
	if res.ByType["compliance_status"] != 1 || res.ByType["gap_analysis"] != 1 {
		t.Fatalf("unexpected by-type breakdown: %+v", res.ByType)
	}
}
