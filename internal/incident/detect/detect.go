// Package detect implements IncidentDetector (spec §4.19): indicator
// pattern matching against fixed incident-type/severity enumerations,
// plus cross-incident correlation.
package detect

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// IncidentType enumerates the fixed incident-type taxonomy validated by
// detect_incident (spec §4.19).
type IncidentType string

const (
	TypeDataBreach         IncidentType = "data_breach"
	TypeUnauthorizedAccess IncidentType = "unauthorized_access"
	TypeMalware            IncidentType = "malware"
	TypeDenialOfService    IncidentType = "denial_of_service"
	TypeInsiderThreat      IncidentType = "insider_threat"
	TypeMisconfiguration   IncidentType = "misconfiguration"
)

var validIncidentType = map[IncidentType]bool{
	TypeDataBreach: true, TypeUnauthorizedAccess: true, TypeMalware: true,
	TypeDenialOfService: true, TypeInsiderThreat: true, TypeMisconfiguration: true,
}

// Status is an Incident's lifecycle state (spec §4.19, §4.26).
type Status string

const (
	StatusActive        Status = "active"
	StatusContained     Status = "contained"
	StatusInvestigating Status = "investigating"
	StatusRecovering    Status = "recovering"
	StatusResolved      Status = "resolved"
	StatusClosed        Status = "closed"
)

var validStatus = map[Status]bool{
	StatusActive: true, StatusContained: true, StatusInvestigating: true,
	StatusRecovering: true, StatusResolved: true, StatusClosed: true,
}

// Pattern declares an indicator set, a match threshold, and the
// severity assigned when it matches (spec §4.19).
type Pattern struct {
	ID         string
	Indicators map[string]bool
	Threshold  int
	Severity   severity.Severity
	MatchCount int
}

// Incident is one detected security incident.
type Incident struct {
	ID              string
	Type            IncidentType
	Severity        severity.Severity
	Indicators      map[string]bool
	AffectedSystems map[string]bool
	MatchedPatterns []string
	Status          Status
	CreatedAt       string
}

// Detector is IncidentDetector's record store.
type Detector struct {
	mu        sync.Mutex
	patterns  map[string]*Pattern
	incidents map[string]*Incident
	clock     clock.Clock
	log       *logger.Logger
}

// New creates an empty Detector.
func New(c clock.Clock, log *logger.Logger) *Detector {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Detector{patterns: make(map[string]*Pattern), incidents: make(map[string]*Incident), clock: c, log: log}
}

// AddPatternResult is add_pattern's return shape.
type AddPatternResult struct {
	Added     bool
	PatternID string
	Error     string
}

// AddPattern registers a detection pattern.
func (d *Detector) AddPattern(indicators []string, threshold int, sev severity.Severity) AddPatternResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(indicators) == 0 || threshold <= 0 {
		return AddPatternResult{Error: goverrors.Invalid("indicators/threshold").Error()}
	}
	set := make(map[string]bool, len(indicators))
	for _, i := range indicators {
		set[i] = true
	}
	id := ids.New("pat")
	d.patterns[id] = &Pattern{ID: id, Indicators: set, Threshold: threshold, Severity: sev}
	return AddPatternResult{Added: true, PatternID: id}
}

// DetectResult is detect_incident's return shape.
type DetectResult struct {
	Detected        bool
	IncidentID      string
	MatchedPatterns []string
	Error           string
}

// DetectIncident validates incidentType and severity, runs pattern
// matching against observedIndicators, and stores the resulting
// Incident in active status.
func (d *Detector) DetectIncident(incidentType IncidentType, sev severity.Severity, observedIndicators, affectedSystems []string) DetectResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !validIncidentType[incidentType] {
		return DetectResult{Error: goverrors.Invalid("incident_type").Error()}
	}
	if sev == severity.None {
		return DetectResult{Error: goverrors.Invalid("severity").Error()}
	}

	observed := make(map[string]bool, len(observedIndicators))
	for _, i := range observedIndicators {
		observed[i] = true
	}

	var matched []string
	for _, p := range d.patterns {
		if intersectionSize(p.Indicators, observed) >= p.Threshold {
			matched = append(matched, p.ID)
			p.MatchCount++
		}
	}

	systems := make(map[string]bool, len(affectedSystems))
	for _, s := range affectedSystems {
		systems[s] = true
	}

	id := ids.New("inc")
	d.incidents[id] = &Incident{
		ID: id, Type: incidentType, Severity: sev, Indicators: observed,
		AffectedSystems: systems, MatchedPatterns: matched, Status: StatusActive,
		CreatedAt: clock.ISO8601(d.clock.Now()),
	}
	return DetectResult{Detected: true, IncidentID: id, MatchedPatterns: matched}
}

func intersectionSize(a, b map[string]bool) int {
	n := 0
	for k := range a {
		if b[k] {
			n++
		}
	}
	return n
}

// CorrelateResult is correlate_incidents's return shape.
type CorrelateResult struct {
	Correlated       bool
	CommonIndicators []string
	Strength         float64
	Error            string
}

// CorrelateIncidents computes the intersection of ≥2 incidents'
// indicator and affected-system sets, and a correlation strength.
func (d *Detector) CorrelateIncidents(incidentIDs []string) CorrelateResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(incidentIDs) < 2 {
		return CorrelateResult{Error: goverrors.Invalid("incident_ids must have at least 2 entries").Error()}
	}

	var sets []map[string]bool
	maxSize := 0
	for _, id := range incidentIDs {
		inc, ok := d.incidents[id]
		if !ok {
			return CorrelateResult{Error: goverrors.NotFound("incident").Error()}
		}
		sets = append(sets, inc.Indicators)
		if len(inc.Indicators) > maxSize {
			maxSize = len(inc.Indicators)
		}
	}

	common := sets[0]
	for _, s := range sets[1:] {
		next := make(map[string]bool)
		for k := range common {
			if s[k] {
				next[k] = true
			}
		}
		common = next
	}

	var commonList []string
	for k := range common {
		commonList = append(commonList, k)
	}

	denom := maxSize
	if denom < 1 {
		denom = 1
	}
	strength := float64(len(common)) / float64(denom)
	return CorrelateResult{Correlated: true, CommonIndicators: commonList, Strength: strength}
}

// UpdateStatusResult is update_status's return shape.
type UpdateStatusResult struct {
	Updated bool
	Error   string
}

// UpdateStatus flips an incident's status. Any valid target status is
// accepted without enforcing monotonic progression (spec §4.19); a
// closed incident accepts no further mutations (spec §3 invariant).
func (d *Detector) UpdateStatus(incidentID string, status Status) UpdateStatusResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	inc, ok := d.incidents[incidentID]
	if !ok {
		return UpdateStatusResult{Error: goverrors.NotFound("incident").Error()}
	}
	if !validStatus[status] {
		return UpdateStatusResult{Error: goverrors.Invalid("status").Error()}
	}
	if inc.Status == StatusClosed {
		return UpdateStatusResult{Error: goverrors.Precondition("incident is closed").Error()}
	}
	inc.Status = status
	return UpdateStatusResult{Updated: true}
}

// GetIncidentResult is get_incident's return shape.
type GetIncidentResult struct {
	Retrieved bool
	Incident  *Incident
	Error     string
}

// GetIncident retrieves an incident by id.
func (d *Detector) GetIncident(incidentID string) GetIncidentResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	inc, ok := d.incidents[incidentID]
	if !ok {
		return GetIncidentResult{Error: goverrors.NotFound("incident").Error()}
	}
	return GetIncidentResult{Retrieved: true, Incident: inc}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (d *Detector) GetSummary() SummaryResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	active := 0
	for _, inc := range d.incidents {
		if inc.Status != StatusClosed {
			active++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"incidents": len(d.incidents),
		"active":    active,
		"patterns":  len(d.patterns),
	}}
}
