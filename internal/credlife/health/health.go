// Package health implements KeyHealthScore (spec §4.17): a weighted
// composite of five factor scores, each computed from caller-supplied
// inputs rather than by reaching into other evaluators' record stores
// (spec's "each evaluator exclusively owns its record maps" invariant).
package health

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Weights are the default factor weights (spec §4.17); user-reassignable.
type Weights struct {
	Age        float64
	Usage      float64
	Permission float64
	Rotation   float64
	Anomaly    float64
}

// DefaultWeights matches spec §4.17's nominal weighting.
var DefaultWeights = Weights{Age: 0.20, Usage: 0.25, Permission: 0.20, Rotation: 0.20, Anomaly: 0.15}

// UsageInput feeds the usage factor.
type UsageInput struct {
	NeverUsed bool
	ErrorRate float64
	IdleDays  int
}

// PermissionInput feeds the permission factor.
type PermissionInput struct {
	UnusedScopes int
	TotalScopes  int
	HasAdmin     bool
}

// RotationInput feeds the rotation factor.
type RotationInput struct {
	NeverRotated      bool
	DaysSinceRotation int
	PolicyDays        int
}

// AnomalyInput feeds the anomaly factor.
type AnomalyInput struct {
	Critical    int
	NonCritical int
}

// Inputs bundles every factor's raw inputs for one scoring pass.
type Inputs struct {
	AgeDays    int
	MaxAgeDays int
	Usage      UsageInput
	Permission PermissionInput
	Rotation   RotationInput
	Anomaly    AnomalyInput
}

// Scorer is KeyHealthScore's evaluator. It holds no per-key state beyond
// the last computed score, since every factor is derived from caller
// input at call time.
type Scorer struct {
	mu      sync.Mutex
	last    map[string]Score
	clock   clock.Clock
	log     *logger.Logger
	Weights Weights
}

// New creates a Scorer using DefaultWeights.
func New(c clock.Clock, log *logger.Logger) *Scorer {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Scorer{last: make(map[string]Score), clock: c, log: log, Weights: DefaultWeights}
}

// Score is one computed health score.
type Score struct {
	AgeScore        float64
	UsageScore      float64
	PermissionScore float64
	RotationScore   float64
	AnomalyScore    float64
	Overall         float64
	Grade           string
}

// ScoreResult is compute_score's return shape.
type ScoreResult struct {
	Computed bool
	Score    Score
	Error    string
}

// ComputeScore computes the weighted composite for a key and remembers
// it under keyID for later retrieval.
func (s *Scorer) ComputeScore(keyID string, in Inputs) ScoreResult {
	if keyID == "" {
		return ScoreResult{Error: goverrors.Invalid("key_id").Error()}
	}

	score := Score{
		AgeScore:        ageScore(in.AgeDays, in.MaxAgeDays),
		UsageScore:      usageScore(in.Usage),
		PermissionScore: permissionScore(in.Permission),
		RotationScore:   rotationScore(in.Rotation),
		AnomalyScore:    anomalyScore(in.Anomaly),
	}

	s.mu.Lock()
	w := s.Weights
	s.mu.Unlock()

	score.Overall = score.AgeScore*w.Age + score.UsageScore*w.Usage + score.PermissionScore*w.Permission +
		score.RotationScore*w.Rotation + score.AnomalyScore*w.Anomaly
	score.Grade = grade(score.Overall)

	s.mu.Lock()
	s.last[keyID] = score
	s.mu.Unlock()
	return ScoreResult{Computed: true, Score: score}
}

// ageScore implements spec §4.17's age factor.
func ageScore(ageDays, maxAgeDays int) float64 {
	if ageDays <= 0 || maxAgeDays <= 0 {
		return 100
	}
	v := 100 * (1 - float64(ageDays)/float64(maxAgeDays))
	return clamp(v)
}

// usageScore implements spec §4.17's usage factor.
func usageScore(u UsageInput) float64 {
	if u.NeverUsed {
		return 30
	}
	score := 100.0
	switch {
	case u.ErrorRate > 0.5:
		score -= 40
	case u.ErrorRate > 0.2:
		score -= 20
	case u.ErrorRate > 0.1:
		score -= 10
	}
	switch {
	case u.IdleDays > 90:
		score -= 30
	case u.IdleDays > 30:
		score -= 15
	}
	return clamp(score)
}

// permissionScore implements spec §4.17's permission factor.
func permissionScore(p PermissionInput) float64 {
	if p.TotalScopes == 0 {
		return 100
	}
	score := 100.0
	deduct := 10 * float64(p.UnusedScopes)
	if deduct > 40 {
		deduct = 40
	}
	score -= deduct
	if p.HasAdmin {
		score -= 20
	}
	switch {
	case p.TotalScopes > 10:
		score -= 15
	case p.TotalScopes > 5:
		score -= 5
	}
	return clamp(score)
}

// rotationScore implements spec §4.17's rotation factor.
func rotationScore(r RotationInput) float64 {
	if r.PolicyDays <= 0 {
		return 100
	}
	ratio := float64(r.DaysSinceRotation) / float64(r.PolicyDays)
	var score float64
	switch {
	case ratio > 2.0:
		score = 10
	case ratio > 1.5:
		score = 30
	case ratio > 1.0:
		score = 50
	case ratio > 0.8:
		score = 70
	default:
		score = 100
	}
	if r.NeverRotated && score > 60 {
		score = 60
	}
	return score
}

// anomalyScore implements spec §4.17's anomaly factor.
func anomalyScore(a AnomalyInput) float64 {
	score := 100.0
	critDeduct := 30 * float64(a.Critical)
	if critDeduct > 60 {
		critDeduct = 60
	}
	score -= critDeduct
	nonCritDeduct := 10 * float64(a.NonCritical)
	if nonCritDeduct > 30 {
		nonCritDeduct = 30
	}
	score -= nonCritDeduct
	return clamp(score)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// grade maps an overall score onto spec §4.17's grade bands.
func grade(overall float64) string {
	switch {
	case overall >= 90:
		return "excellent"
	case overall >= 70:
		return "good"
	case overall >= 50:
		return "fair"
	case overall >= 30:
		return "poor"
	default:
		return "critical"
	}
}

// GetScoreResult is get_score's return shape.
type GetScoreResult struct {
	Retrieved bool
	Score     Score
	Error     string
}

// GetScore retrieves the last computed score for a key.
func (s *Scorer) GetScore(keyID string) GetScoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.last[keyID]
	if !ok {
		return GetScoreResult{Error: goverrors.NotFound("score").Error()}
	}
	return GetScoreResult{Retrieved: true, Score: sc}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (s *Scorer) GetSummary() SummaryResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	critical := 0
	for _, sc := range s.last {
		if sc.Grade == "critical" {
			critical++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"scored_keys":    len(s.last),
		"critical_grade": critical,
	}}
}
