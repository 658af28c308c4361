// Package fairness implements FairnessAnalyzer (spec §4.2): five fairness
// metrics computed per protected-attribute group over a sequence of
// predictions, each carrying an actual and a predicted outcome.
package fairness

import (
	"math"
	"sort"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Prediction is one scored item: its protected-attribute group value, its
// actual outcome, and the model's predicted outcome.
type Prediction struct {
	Group     string
	Actual    bool
	Predicted bool
}

// MetricResult is one named fairness metric's outcome.
type MetricResult struct {
	Name   string
	Score  float64
	Passes bool
}

// Evaluation is a stored evaluate_fairness result.
type Evaluation struct {
	ID            string
	Metrics       []MetricResult
	FairnessScore float64
	IsFair        bool
	CreatedAt     string
}

// DefaultThreshold is the metric pass/fail threshold (spec §4.2).
const DefaultThreshold = 0.8

// Analyzer is FairnessAnalyzer's record store.
type Analyzer struct {
	mu    sync.RWMutex
	evals map[string]*Evaluation
	order []string
	clock clock.Clock
	log   *logger.Logger

	Threshold float64
}

// New creates an Analyzer with the default threshold.
func New(c clock.Clock, log *logger.Logger) *Analyzer {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Analyzer{
		evals:     make(map[string]*Evaluation),
		clock:     c,
		log:       log,
		Threshold: DefaultThreshold,
	}
}

// EvaluateResult is evaluate_fairness's return shape.
type EvaluateResult struct {
	Evaluated     bool
	EvaluationID  string
	Metrics       []MetricResult
	FairnessScore float64
	IsFair        bool
	Error         string
}

// EvaluateFairness computes all five metrics over predictions.
func (a *Analyzer) EvaluateFairness(predictions []Prediction) EvaluateResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(predictions) == 0 {
		return EvaluateResult{Error: goverrors.Invalid("predictions").Error()}
	}

	groups := groupBy(predictions)
	metrics := []MetricResult{
		metric("demographic_parity", demographicParity(groups), a.Threshold),
		metric("equal_opportunity", equalOpportunity(groups), a.Threshold),
		metric("equalized_odds", equalizedOdds(groups), a.Threshold),
		metric("calibration", calibration(groups), a.Threshold),
		metric("group_fairness", groupFairness(groups), a.Threshold),
	}

	score := meanMetricScore(metrics)
	isFair := score >= a.Threshold

	id := ids.New("fair")
	a.evals[id] = &Evaluation{
		ID:            id,
		Metrics:       metrics,
		FairnessScore: score,
		IsFair:        isFair,
		CreatedAt:     clock.ISO8601(a.clock.Now()),
	}
	a.order = append(a.order, id)

	a.log.Op("aiethics.fairness", "evaluate_fairness").WithField("fairness_score", score).
		WithField("is_fair", isFair).Debug("fairness evaluation complete")

	return EvaluateResult{
		Evaluated:     true,
		EvaluationID:  id,
		Metrics:       metrics,
		FairnessScore: score,
		IsFair:        isFair,
	}
}

// GetEvaluationResult is get_evaluation_info's return shape.
type GetEvaluationResult struct {
	Retrieved  bool
	Evaluation *Evaluation
	Error      string
}

// GetEvaluationInfo retrieves a stored evaluation.
func (a *Analyzer) GetEvaluationInfo(evaluationID string) GetEvaluationResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ev, ok := a.evals[evaluationID]
	if !ok {
		return GetEvaluationResult{Error: goverrors.NotFound("evaluation").Error()}
	}
	return GetEvaluationResult{Retrieved: true, Evaluation: ev}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (a *Analyzer) GetSummary() SummaryResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	fair, unfair := 0, 0
	for _, ev := range a.evals {
		if ev.IsFair {
			fair++
		} else {
			unfair++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"evaluations": len(a.evals),
		"fair":        fair,
		"unfair":      unfair,
	}}
}

// =============================================================================
// Grouping and per-group rates
// =============================================================================

type groupStats struct {
	total            int
	actualPositives  int
	predictedPos     int
	truePositives    int
	falsePositives   int
	correct          int
}

func groupBy(predictions []Prediction) map[string]*groupStats {
	groups := map[string]*groupStats{}
	for _, p := range predictions {
		g, ok := groups[p.Group]
		if !ok {
			g = &groupStats{}
			groups[p.Group] = g
		}
		g.total++
		if p.Actual {
			g.actualPositives++
		}
		if p.Predicted {
			g.predictedPos++
		}
		if p.Predicted && p.Actual {
			g.truePositives++
		}
		if p.Predicted && !p.Actual {
			g.falsePositives++
		}
		if p.Predicted == p.Actual {
			g.correct++
		}
	}
	return groups
}

func sortedGroupKeys(groups map[string]*groupStats) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func minMaxRatio(rates map[string]float64) float64 {
	if len(rates) == 0 {
		return 1
	}
	if len(rates) == 1 {
		return 1
	}
	minR, maxR := math.Inf(1), math.Inf(-1)
	for _, r := range rates {
		if r < minR {
			minR = r
		}
		if r > maxR {
			maxR = r
		}
	}
	if maxR == 0 {
		return 1
	}
	return minR / maxR
}

// =============================================================================
// Metrics (spec §4.2)
// =============================================================================

func demographicParity(groups map[string]*groupStats) float64 {
	rates := map[string]float64{}
	for _, k := range sortedGroupKeys(groups) {
		g := groups[k]
		if g.total == 0 {
			continue
		}
		rates[k] = float64(g.predictedPos) / float64(g.total)
	}
	return minMaxRatio(rates)
}

func equalOpportunity(groups map[string]*groupStats) float64 {
	rates := map[string]float64{}
	for _, k := range sortedGroupKeys(groups) {
		g := groups[k]
		if g.actualPositives == 0 {
			continue
		}
		rates[k] = float64(g.truePositives) / float64(g.actualPositives)
	}
	return minMaxRatio(rates)
}

func equalizedOdds(groups map[string]*groupStats) float64 {
	tprs := map[string]float64{}
	fprs := map[string]float64{}
	for _, k := range sortedGroupKeys(groups) {
		g := groups[k]
		if g.actualPositives > 0 {
			tprs[k] = float64(g.truePositives) / float64(g.actualPositives)
		}
		negatives := g.total - g.actualPositives
		if negatives > 0 {
			fprs[k] = float64(g.falsePositives) / float64(negatives)
		}
	}
	tprRatio := minMaxRatio(tprs)

	fprMin, fprMax := math.Inf(1), math.Inf(-1)
	for _, r := range fprs {
		if r < fprMin {
			fprMin = r
		}
		if r > fprMax {
			fprMax = r
		}
	}
	fprSpread := 0.0
	if len(fprs) >= 2 {
		fprSpread = fprMax - fprMin
	}
	return (tprRatio + (1 - fprSpread)) / 2
}

func calibration(groups map[string]*groupStats) float64 {
	ppvs := map[string]float64{}
	for _, k := range sortedGroupKeys(groups) {
		g := groups[k]
		if g.predictedPos == 0 {
			continue
		}
		ppvs[k] = float64(g.truePositives) / float64(g.predictedPos)
	}
	return minMaxRatio(ppvs)
}

func groupFairness(groups map[string]*groupStats) float64 {
	accs := map[string]float64{}
	for _, k := range sortedGroupKeys(groups) {
		g := groups[k]
		if g.total == 0 {
			continue
		}
		accs[k] = float64(g.correct) / float64(g.total)
	}
	return minMaxRatio(accs)
}

func metric(name string, score, threshold float64) MetricResult {
	return MetricResult{Name: name, Score: score, Passes: score >= threshold}
}

func meanMetricScore(metrics []MetricResult) float64 {
	if len(metrics) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range metrics {
		sum += m.Score
	}
	return sum / float64(len(metrics))
}
