// Package impact implements IncidentImpactAssessor (spec §4.23): an
// impact score combining a base severity band with category, user, and
// financial factors.
package impact

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Level is IncidentImpactAssessor's impact-level band (spec §4.23).
type Level string

const (
	LevelCatastrophic Level = "catastrophic"
	LevelSevere       Level = "severe"
	LevelMajor        Level = "major"
	LevelModerate     Level = "moderate"
	LevelMinor        Level = "minor"
	LevelNegligible   Level = "negligible"
)

var baseScores = map[Level]float64{
	LevelCatastrophic: 1.0,
	LevelSevere:       0.85,
	LevelMajor:        0.7,
	LevelModerate:     0.5,
	LevelMinor:        0.3,
	LevelNegligible:   0.1,
}

// Assessment is one assess_impact result, kept for retrieval.
type Assessment struct {
	ID              string
	IncidentID      string
	Level           Level
	ImpactScore     float64
	CategoryCount   int
	AffectedUsers   int
	FinancialImpact float64
	CreatedAt       string
}

// Assessor is IncidentImpactAssessor's record store.
type Assessor struct {
	mu          sync.Mutex
	assessments map[string]*Assessment
	clock       clock.Clock
	log         *logger.Logger
}

// New creates an empty Assessor.
func New(c clock.Clock, log *logger.Logger) *Assessor {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Assessor{assessments: make(map[string]*Assessment), clock: c, log: log}
}

// AssessResult is assess_impact's return shape.
type AssessResult struct {
	Assessed     bool
	AssessmentID string
	ImpactScore  float64
	Error        string
}

// AssessImpact computes impact_score = base + cat_factor + user_factor +
// fin_factor, capped at 1.0 (spec §4.23).
func (a *Assessor) AssessImpact(incidentID string, level Level, categoryCount, affectedUsers int, financialImpact float64) AssessResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	base, ok := baseScores[level]
	if !ok {
		return AssessResult{Error: goverrors.Invalid("impact_level").Error()}
	}

	catFactor := 0.05 * float64(categoryCount)
	if catFactor > 0.2 {
		catFactor = 0.2
	}

	var userFactor float64
	switch {
	case affectedUsers > 10000:
		userFactor = 0.15
	case affectedUsers > 1000:
		userFactor = 0.10
	case affectedUsers > 100:
		userFactor = 0.05
	}

	var finFactor float64
	switch {
	case financialImpact > 1_000_000:
		finFactor = 0.15
	case financialImpact > 100_000:
		finFactor = 0.10
	case financialImpact > 10_000:
		finFactor = 0.05
	}

	score := base + catFactor + userFactor + finFactor
	if score > 1.0 {
		score = 1.0
	}

	id := ids.New("ass")
	a.assessments[id] = &Assessment{
		ID: id, IncidentID: incidentID, Level: level, ImpactScore: score,
		CategoryCount: categoryCount, AffectedUsers: affectedUsers, FinancialImpact: financialImpact,
		CreatedAt: clock.ISO8601(a.clock.Now()),
	}
	return AssessResult{Assessed: true, AssessmentID: id, ImpactScore: score}
}

// GetAssessmentResult is get_assessment's return shape.
type GetAssessmentResult struct {
	Retrieved  bool
	Assessment *Assessment
	Error      string
}

// GetAssessment retrieves an assessment by id.
func (a *Assessor) GetAssessment(assessmentID string) GetAssessmentResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	as, ok := a.assessments[assessmentID]
	if !ok {
		return GetAssessmentResult{Error: goverrors.NotFound("assessment").Error()}
	}
	return GetAssessmentResult{Retrieved: true, Assessment: as}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (a *Assessor) GetSummary() SummaryResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{"assessments": len(a.assessments)}}
}
