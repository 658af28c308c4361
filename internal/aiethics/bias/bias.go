// Package bias implements BiasDetector (spec §4.1): statistical disparity
// detection over a tabular dataset across protected attributes with
// respect to a binary outcome.
package bias

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Record is one row of a tabular dataset: an attribute-name to value map.
type Record map[string]any

// Dataset is an immutable-after-creation tabular population.
type Dataset struct {
	ID             string
	Name           string
	Records        []Record
	ProtectedAttrs []string
	OutcomeAttr    string
	CreatedAt      string
}

// Finding is a single detected anomaly (spec §3).
type Finding struct {
	Type      string
	Attribute string
	Score     float64
	Severity  severity.Severity
}

// Detection is one scan_for_bias result, stored for later retrieval.
type Detection struct {
	ID        string
	DatasetID string
	Findings  []Finding
	BiasScore float64
	Severity  severity.Severity
	CreatedAt string
}

// Pattern is one analyze_patterns result: the Shannon entropy of a
// protected attribute's value distribution.
type Pattern struct {
	Attribute string
	Entropy   float64
}

const (
	// DefaultParityThreshold is the demographic-parity trigger point: a
	// finding fires when gap > 1-threshold.
	DefaultParityThreshold = 0.8
	// DefaultImpactThreshold is the disparate-impact trigger point: a
	// finding fires when ratio < threshold.
	DefaultImpactThreshold = 0.8
)

// Detector is BiasDetector's record store and algorithm surface.
type Detector struct {
	mu        sync.RWMutex
	datasets  map[string]*Dataset
	detects   map[string]*Detection
	order     []string // detection ids in insertion order
	clock     clock.Clock
	log       *logger.Logger

	ParityThreshold float64
	ImpactThreshold float64
}

// New creates a Detector with the default thresholds.
func New(c clock.Clock, log *logger.Logger) *Detector {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Detector{
		datasets:        make(map[string]*Dataset),
		detects:         make(map[string]*Detection),
		clock:           c,
		log:             log,
		ParityThreshold: DefaultParityThreshold,
		ImpactThreshold: DefaultImpactThreshold,
	}
}

// AddDatasetResult is add_dataset's return shape.
type AddDatasetResult struct {
	Added     bool
	DatasetID string
	Error     string
}

// AddDataset registers a new dataset. Datasets are immutable after
// registration (spec §3).
func (d *Detector) AddDataset(name string, records []Record, protectedAttrs []string, outcomeAttr string) AddDatasetResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	if name == "" {
		return AddDatasetResult{Error: goverrors.Invalid("name").Error()}
	}
	if len(protectedAttrs) == 0 {
		return AddDatasetResult{Error: goverrors.Invalid("protected_attrs").Error()}
	}
	if outcomeAttr == "" {
		return AddDatasetResult{Error: goverrors.Invalid("outcome_attr").Error()}
	}

	id := ids.New("bds")
	ds := &Dataset{
		ID:             id,
		Name:           name,
		Records:        append([]Record(nil), records...),
		ProtectedAttrs: append([]string(nil), protectedAttrs...),
		OutcomeAttr:    outcomeAttr,
		CreatedAt:      clock.ISO8601(d.clock.Now()),
	}
	d.datasets[id] = ds
	d.log.Op("aiethics.bias", "add_dataset").WithField("dataset_id", id).Debug("dataset registered")
	return AddDatasetResult{Added: true, DatasetID: id}
}

// ScanResult is scan_for_bias's return shape.
type ScanResult struct {
	Scanned     bool
	DetectionID string
	Findings    []Finding
	BiasScore   float64
	Severity    severity.Severity
	Error       string
}

// ScanForBias runs demographic parity, disparate impact and
// representation checks for every protected attribute of the dataset.
func (d *Detector) ScanForBias(datasetID string) ScanResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	ds, ok := d.datasets[datasetID]
	if !ok {
		return ScanResult{Error: goverrors.NotFound("dataset").Error()}
	}

	var findings []Finding
	for _, attr := range ds.ProtectedAttrs {
		groups := partitionBy(ds.Records, attr)
		findings = append(findings, demographicParityFinding(attr, groups, ds.OutcomeAttr, d.ParityThreshold)...)
		findings = append(findings, disparateImpactFinding(attr, groups, ds.OutcomeAttr, d.ImpactThreshold)...)
		findings = append(findings, representationFinding(attr, groups, len(ds.Records))...)
	}

	score := meanScore(findings)
	sev := severity.FromScore(score)

	detID := ids.New("bdet")
	det := &Detection{
		ID:        detID,
		DatasetID: datasetID,
		Findings:  findings,
		BiasScore: score,
		Severity:  sev,
		CreatedAt: clock.ISO8601(d.clock.Now()),
	}
	d.detects[detID] = det
	d.order = append(d.order, detID)

	d.log.Op("aiethics.bias", "scan_for_bias").WithField("detection_id", detID).
		WithField("bias_score", score).Warn("bias scan complete")

	return ScanResult{
		Scanned:     true,
		DetectionID: detID,
		Findings:    findings,
		BiasScore:   score,
		Severity:    sev,
	}
}

// PatternResult is analyze_patterns's return shape.
type PatternResult struct {
	Analyzed bool
	Patterns []Pattern
	Error    string
}

// AnalyzePatterns computes the Shannon entropy of each protected
// attribute's value distribution.
func (d *Detector) AnalyzePatterns(datasetID string) PatternResult {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ds, ok := d.datasets[datasetID]
	if !ok {
		return PatternResult{Error: goverrors.NotFound("dataset").Error()}
	}

	var patterns []Pattern
	for _, attr := range ds.ProtectedAttrs {
		groups := partitionBy(ds.Records, attr)
		patterns = append(patterns, Pattern{Attribute: attr, Entropy: shannonEntropy(groups, len(ds.Records))})
	}
	return PatternResult{Analyzed: true, Patterns: patterns}
}

// DetectionInfoResult is get_detection_info's return shape.
type DetectionInfoResult struct {
	Retrieved bool
	Detection *Detection
	Error     string
}

// GetDetectionInfo retrieves a stored detection by id.
func (d *Detector) GetDetectionInfo(detectionID string) DetectionInfoResult {
	d.mu.RLock()
	defer d.mu.RUnlock()

	det, ok := d.detects[detectionID]
	if !ok {
		return DetectionInfoResult{Error: goverrors.NotFound("detection").Error()}
	}
	return DetectionInfoResult{Retrieved: true, Detection: det}
}

// SummaryResult is get_summary's return shape, universal across evaluators.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (d *Detector) GetSummary() SummaryResult {
	d.mu.RLock()
	defer d.mu.RUnlock()

	bySeverity := map[string]int{}
	for _, det := range d.detects {
		bySeverity[det.Severity.String()]++
	}
	stats := map[string]int{
		"datasets":   len(d.datasets),
		"detections": len(d.detects),
	}
	for sev, n := range bySeverity {
		stats["severity_"+sev] = n
	}
	return SummaryResult{Retrieved: true, Stats: stats}
}

// =============================================================================
// Algorithms (spec §4.1)
// =============================================================================

func partitionBy(records []Record, attr string) map[string][]Record {
	groups := map[string][]Record{}
	for _, r := range records {
		key := "unknown"
		if v, ok := r[attr]; ok && v != nil {
			key = fmt.Sprint(v)
		}
		groups[key] = append(groups[key], r)
	}
	return groups
}

func positiveRate(records []Record, outcomeAttr string) float64 {
	if len(records) == 0 {
		return 0
	}
	positives := 0
	for _, r := range records {
		if isPositive(r[outcomeAttr]) {
			positives++
		}
	}
	return float64(positives) / float64(len(records))
}

func isPositive(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t == "true" || t == "1" || t == "yes"
	default:
		return false
	}
}

func sortedKeys(groups map[string][]Record) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func demographicParityFinding(attr string, groups map[string][]Record, outcomeAttr string, threshold float64) []Finding {
	if len(groups) < 2 {
		return nil
	}
	minRate, maxRate := math.Inf(1), math.Inf(-1)
	for _, key := range sortedKeys(groups) {
		rate := positiveRate(groups[key], outcomeAttr)
		if rate < minRate {
			minRate = rate
		}
		if rate > maxRate {
			maxRate = rate
		}
	}
	gap := maxRate - minRate
	if gap <= 1-threshold {
		return nil
	}
	score := math.Min(1, gap*2)
	return []Finding{{Type: "demographic", Attribute: attr, Score: score, Severity: severity.FromScore(score)}}
}

func disparateImpactFinding(attr string, groups map[string][]Record, outcomeAttr string, threshold float64) []Finding {
	if len(groups) < 2 {
		return nil
	}
	minRate, maxRate := math.Inf(1), math.Inf(-1)
	for _, key := range sortedKeys(groups) {
		rate := positiveRate(groups[key], outcomeAttr)
		if rate < minRate {
			minRate = rate
		}
		if rate > maxRate {
			maxRate = rate
		}
	}
	if maxRate == 0 {
		return nil
	}
	ratio := minRate / maxRate
	if ratio >= threshold {
		return nil
	}
	score := math.Max(0, 1-ratio)
	return []Finding{{Type: "disparate_impact", Attribute: attr, Score: score, Severity: severity.FromScore(score)}}
}

func representationFinding(attr string, groups map[string][]Record, total int) []Finding {
	if len(groups) < 2 || total == 0 {
		return nil
	}
	expected := float64(total) / float64(len(groups))
	maxDev := 0.0
	for _, key := range sortedKeys(groups) {
		count := float64(len(groups[key]))
		dev := math.Abs(count-expected) / math.Max(1, expected)
		if dev > maxDev {
			maxDev = dev
		}
	}
	if maxDev <= 0.5 {
		return nil
	}
	score := math.Min(1, maxDev)
	return []Finding{{Type: "representation", Attribute: attr, Score: score, Severity: severity.FromScore(score)}}
}

func meanScore(findings []Finding) float64 {
	if len(findings) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range findings {
		sum += f.Score
	}
	return sum / float64(len(findings))
}

func shannonEntropy(groups map[string][]Record, total int) float64 {
	if total == 0 {
		return 0
	}
	entropy := 0.0
	for _, key := range sortedKeys(groups) {
		p := float64(len(groups[key])) / float64(total)
		if p <= 0 {
			continue
		}
		entropy -= p * math.Log2(p)
	}
	return entropy
}
