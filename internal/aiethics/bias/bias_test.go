package bias

import (
	"testing"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/severity"
)

func fixedClock() clock.Clock {
	return clock.Fixed{}
}

// TestScanForBias_S1Demographic exercises spec scenario S1: 20 male
// records with a positive outcome, 20 female records with a negative
// outcome, should trigger a demographic-parity finding with high/critical
// severity.
func TestScanForBias_S1Demographic(t *testing.T) {
	d := New(fixedClock(), nil)

	var records []Record
	for i := 0; i < 20; i++ {
		records = append(records, Record{"gender": "M", "result": true})
	}
	for i := 0; i < 20; i++ {
		records = append(records, Record{"gender": "F", "result": false})
	}

	add := d.AddDataset("s1", records, []string{"gender"}, "result")
	if !add.Added {
		t.Fatalf("AddDataset failed: %s", add.Error)
	}

	scan := d.ScanForBias(add.DatasetID)
	if !scan.Scanned {
		t.Fatalf("ScanForBias failed: %s", scan.Error)
	}
	if len(scan.Findings) < 1 {
		t.Fatalf("expected at least one finding, got 0")
	}
	if scan.BiasScore <= 0 {
		t.Fatalf("expected bias_score > 0, got %v", scan.BiasScore)
	}
	if scan.Severity != severity.High && scan.Severity != severity.Critical {
		t.Fatalf("expected severity high or critical, got %s", scan.Severity)
	}
}

func TestScanForBias_UnknownDataset(t *testing.T) {
	d := New(fixedClock(), nil)
	scan := d.ScanForBias("missing")
	if scan.Scanned {
		t.Fatalf("expected scan to fail for unknown dataset")
	}
	if scan.Error == "" {
		t.Fatalf("expected error on missing dataset")
	}
}

func TestScanForBias_EmptyRecordsScoreZero(t *testing.T) {
	d := New(fixedClock(), nil)
	add := d.AddDataset("empty", nil, []string{"gender"}, "result")
	scan := d.ScanForBias(add.DatasetID)
	if !scan.Scanned {
		t.Fatalf("ScanForBias failed: %s", scan.Error)
	}
	if scan.BiasScore != 0 {
		t.Fatalf("expected bias score 0 for empty dataset, got %v", scan.BiasScore)
	}
}

// TestMonotonicity verifies spec §8 domain property 1: raising one
// group's positive-outcome rate (others unchanged) never decreases the
// demographic parity gap/score.
func TestMonotonicity(t *testing.T) {
	base := []Record{
		{"gender": "M", "result": true}, {"gender": "M", "result": true},
		{"gender": "F", "result": false}, {"gender": "F", "result": false},
		{"gender": "F", "result": false}, {"gender": "F", "result": false},
	}
	raised := []Record{
		{"gender": "M", "result": true}, {"gender": "M", "result": true},
		{"gender": "F", "result": true}, {"gender": "F", "result": false},
		{"gender": "F", "result": false}, {"gender": "F", "result": false},
	}

	d1 := New(fixedClock(), nil)
	a1 := d1.AddDataset("base", base, []string{"gender"}, "result")
	s1 := d1.ScanForBias(a1.DatasetID)

	d2 := New(fixedClock(), nil)
	a2 := d2.AddDataset("raised", raised, []string{"gender"}, "result")
	s2 := d2.ScanForBias(a2.DatasetID)

	if s2.BiasScore < s1.BiasScore {
		t.Fatalf("expected non-decreasing bias score, base=%v raised=%v", s1.BiasScore, s2.BiasScore)
	}
}

func TestAnalyzePatternsEntropy(t *testing.T) {
	d := New(fixedClock(), nil)
	records := []Record{
		{"gender": "M", "result": true}, {"gender": "F", "result": false},
	}
	add := d.AddDataset("balanced", records, []string{"gender"}, "result")
	res := d.AnalyzePatterns(add.DatasetID)
	if !res.Analyzed {
		t.Fatalf("AnalyzePatterns failed: %s", res.Error)
	}
	if len(res.Patterns) != 1 {
		t.Fatalf("expected 1 pattern, got %d", len(res.Patterns))
	}
	if res.Patterns[0].Entropy <= 0.99 || res.Patterns[0].Entropy > 1.01 {
		t.Fatalf("expected entropy ~1.0 for balanced 2-group split, got %v", res.Patterns[0].Entropy)
	}
}

func TestGetSummary(t *testing.T) {
	d := New(fixedClock(), nil)
	sum := d.GetSummary()
	if !sum.Retrieved {
		t.Fatalf("expected retrieved true")
	}
	if sum.Stats["datasets"] != 0 {
		t.Fatalf("expected 0 datasets initially")
	}
}
