// Package report implements ComplianceReportGenerator (SPEC_FULL.md
// §2c): named report templates, per-report evidence collection, format-
// conditional report sections, executive-summary scoring, and export.
//
// Grounded directly on
// original_source/app/core/compliance/compliance_report_generator.py's
// ComplianceReportGenerator.
package report

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Type is a report's kind.
type Type string

const (
	TypeComplianceStatus Type = "compliance_status"
	TypeGapAnalysis      Type = "gap_analysis"
	TypeAuditReady       Type = "audit_ready"
	TypeExecutiveSummary Type = "executive_summary"
	TypeIncidentReport   Type = "incident_report"
	TypeDataProtection   Type = "data_protection"
	TypeConsentReport    Type = "consent_report"
)

var validTypes = map[Type]bool{
	TypeComplianceStatus: true, TypeGapAnalysis: true, TypeAuditReady: true,
	TypeExecutiveSummary: true, TypeIncidentReport: true, TypeDataProtection: true,
	TypeConsentReport: true,
}

// Format is a report's rendering format.
type Format string

const (
	FormatDetailed   Format = "detailed"
	FormatSummary    Format = "summary"
	FormatExecutive  Format = "executive"
	FormatTechnical  Format = "technical"
	FormatRegulatory Format = "regulatory"
)

// Template is a named, reusable report shape.
type Template struct {
	ID          string
	Name        string
	ReportType  Type
	Sections    []string
	Description string
	CreatedAt   string
}

// Evidence is one piece of supporting material attached to a report.
type Evidence struct {
	ID           string
	ReportID     string
	EvidenceType string
	Title        string
	Content      string
	Source       string
	CollectedAt  string
}

// Section is one rendered block of a generated report.
type Section struct {
	Name    string
	Title   string
	Content any
}

// Data is the caller-supplied content GenerateReport renders into
// sections; fields not needed by the requested format are ignored.
type Data struct {
	Summary         string
	Findings        []any
	Recommendations []any
	AuditInfo       map[string]any
}

// Report is one generated report.
type Report struct {
	ID           string
	Title        string
	ReportType   Type
	FrameworkKey string
	Format       Format
	Sections     []Section
	TemplateID   string
	Status       string
	GeneratedAt  string
}

// Generator is ComplianceReportGenerator's record store.
type Generator struct {
	mu        sync.Mutex
	reports   map[string]*Report
	evidence  map[string][]*Evidence
	templates map[string]*Template
	stats     map[string]int
	clock     clock.Clock
	log       *logger.Logger
}

// New creates an empty Generator.
func New(c clock.Clock, log *logger.Logger) *Generator {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Generator{
		reports:   make(map[string]*Report),
		evidence:  make(map[string][]*Evidence),
		templates: make(map[string]*Template),
		stats: map[string]int{
			"reports_generated":  0,
			"evidence_collected": 0,
			"templates_created":  0,
			"exports_completed":  0,
		},
		clock: c, log: log,
	}
}

// CreateTemplateResult is create_template's return shape.
type CreateTemplateResult struct {
	Created    bool
	TemplateID string
	Error      string
}

// CreateTemplate registers a named report template. Sections defaults
// to overview/findings/recommendations when unset.
func (g *Generator) CreateTemplate(name string, reportType Type, sections []string, description string) CreateTemplateResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !validTypes[reportType] {
		return CreateTemplateResult{Error: goverrors.Invalid("report_type").Error()}
	}
	if len(sections) == 0 {
		sections = []string{"overview", "findings", "recommendations"}
	}
	id := ids.New("rt")
	g.templates[id] = &Template{
		ID: id, Name: name, ReportType: reportType, Sections: sections,
		Description: description, CreatedAt: clock.ISO8601(g.clock.Now()),
	}
	g.stats["templates_created"]++
	return CreateTemplateResult{Created: true, TemplateID: id}
}

// CollectEvidenceResult is collect_evidence's return shape.
type CollectEvidenceResult struct {
	Collected  bool
	EvidenceID string
	Error      string
}

// CollectEvidence attaches one piece of evidence to an already
// generated report.
func (g *Generator) CollectEvidence(reportID, evidenceType, title, content, source string) CollectEvidenceResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.reports[reportID]; !ok {
		return CollectEvidenceResult{Error: goverrors.NotFound("report").Error()}
	}
	id := ids.New("ev")
	g.evidence[reportID] = append(g.evidence[reportID], &Evidence{
		ID: id, ReportID: reportID, EvidenceType: evidenceType, Title: title,
		Content: content, Source: source, CollectedAt: clock.ISO8601(g.clock.Now()),
	})
	g.stats["evidence_collected"]++
	return CollectEvidenceResult{Collected: true, EvidenceID: id}
}

// GenerateReportResult is generate_report's return shape.
type GenerateReportResult struct {
	Generated bool
	ReportID  string
	Sections  int
	Error     string
}

// GenerateReport renders a new report's sections from data according to
// reportFormat and stores it under a fresh id.
func (g *Generator) GenerateReport(title string, reportType Type, frameworkKey string, reportFormat Format, data Data, templateID string) GenerateReportResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !validTypes[reportType] {
		return GenerateReportResult{Error: goverrors.Invalid("report_type").Error()}
	}
	id := ids.New("cr")
	sections := buildSections(reportType, reportFormat, data)
	g.reports[id] = &Report{
		ID: id, Title: title, ReportType: reportType, FrameworkKey: frameworkKey,
		Format: reportFormat, Sections: sections, TemplateID: templateID,
		Status: "generated", GeneratedAt: clock.ISO8601(g.clock.Now()),
	}
	g.stats["reports_generated"]++
	return GenerateReportResult{Generated: true, ReportID: id, Sections: len(sections)}
}

// buildSections assembles a report's sections: executive_summary for
// detailed/executive/regulatory formats, findings for detailed/technical,
// recommendations unconditionally, and audit_info for audit_ready or
// compliance_status report types.
func buildSections(reportType Type, reportFormat Format, data Data) []Section {
	var sections []Section

	switch reportFormat {
	case FormatDetailed, FormatExecutive, FormatRegulatory:
		sections = append(sections, Section{Name: "executive_summary", Title: "Executive Summary", Content: data.Summary})
	}

	switch reportFormat {
	case FormatDetailed, FormatTechnical:
		sections = append(sections, Section{Name: "findings", Title: "Findings", Content: data.Findings})
	}

	sections = append(sections, Section{Name: "recommendations", Title: "Recommendations", Content: data.Recommendations})

	switch reportType {
	case TypeAuditReady, TypeComplianceStatus:
		sections = append(sections, Section{Name: "audit_info", Title: "Audit Information", Content: data.AuditInfo})
	}

	return sections
}

// ExecutiveSummaryResult is generate_executive_summary's return shape.
type ExecutiveSummaryResult struct {
	Generated       bool
	Status          string
	FrameworkKey    string
	ComplianceScore float64
	TotalControls   int
	PassedControls  int
	FailedControls  int
	CriticalCount   int
	HighCount       int
	TotalFindings   int
	GeneratedAt     string
}

// Finding is a minimal finding shape GenerateExecutiveSummary tallies
// by severity.
type Finding struct {
	Severity string
}

// GenerateExecutiveSummary derives a compliant/partially_compliant/
// non_compliant status from complianceScore (>=90 compliant, >=70
// partially_compliant, else non_compliant) and tallies critical/high
// findings.
func (g *Generator) GenerateExecutiveSummary(frameworkKey string, complianceScore float64, totalControls, passedControls int, findings []Finding) ExecutiveSummaryResult {
	critical, high := 0, 0
	for _, f := range findings {
		switch f.Severity {
		case "critical":
			critical++
		case "high":
			high++
		}
	}

	status := "compliant"
	switch {
	case complianceScore < 70:
		status = "non_compliant"
	case complianceScore < 90:
		status = "partially_compliant"
	}

	return ExecutiveSummaryResult{
		Generated: true, Status: status, FrameworkKey: frameworkKey, ComplianceScore: complianceScore,
		TotalControls: totalControls, PassedControls: passedControls, FailedControls: totalControls - passedControls,
		CriticalCount: critical, HighCount: high, TotalFindings: len(findings),
		GeneratedAt: clock.ISO8601(g.clock.Now()),
	}
}

// ExportResult is export_report's return shape.
type ExportResult struct {
	Exported      bool
	ReportID      string
	Format        string
	EvidenceCount int
	Error         string
}

// ExportReport marks a report exported and returns its evidence count.
// The underlying Report/Evidence records remain retrievable afterward.
func (g *Generator) ExportReport(reportID, exportFormat string) ExportResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	r, ok := g.reports[reportID]
	if !ok {
		return ExportResult{Error: goverrors.NotFound("report").Error()}
	}
	evidence := g.evidence[reportID]
	r.Status = "exported"
	g.stats["exports_completed"]++
	return ExportResult{Exported: true, ReportID: reportID, Format: exportFormat, EvidenceCount: len(evidence)}
}

// SummaryResult is get_summary's return shape, extended with a by-type
// breakdown the way the original's get_summary reports it.
type SummaryResult struct {
	Retrieved      bool
	TotalReports   int
	TotalTemplates int
	TotalEvidence  int
	ByType         map[string]int
	Stats          map[string]int
}

// GetSummary returns aggregate counters plus a per-report-type count.
func (g *Generator) GetSummary() SummaryResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	byType := make(map[string]int)
	for _, r := range g.reports {
		byType[string(r.ReportType)]++
	}
	totalEvidence := 0
	for _, ev := range g.evidence {
		totalEvidence += len(ev)
	}
	stats := make(map[string]int, len(g.stats))
	for k, v := range g.stats {
		stats[k] = v
	}
	return SummaryResult{
		Retrieved: true, TotalReports: len(g.reports), TotalTemplates: len(g.templates),
		TotalEvidence: totalEvidence, ByType: byType, Stats: stats,
	}
}
