// Package usageanalyzer implements UsageAnomalyAnalyzer (SPEC_FULL.md
// §2b): per-key call logs, pattern analysis, anomaly detection, unused-key
// discovery, and remediation recommendations, independent of KeyInventory.
//
// Grounded directly on
// original_source/app/core/credlife/key_usage_analyzer.py's
// KeyUsageAnalyzer, which is a fully standalone class with its own
// record maps keyed by key id rather than a KeyInventory method.
package usageanalyzer

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	"github.com/aegisops/govplatform/pkg/logger"
)

// UsageLog is one recorded call against a key.
type UsageLog struct {
	Action       string
	SourceIP     string
	UserAgent    string
	Endpoint     string
	ResponseCode int
	Timestamp    string
}

// Pattern is analyze_patterns's cached result for a key.
type Pattern struct {
	TotalUsage int
	UniqueIPs  int
	Endpoints  map[string]int
	ErrorCount int
	ErrorRate  float64
}

// Anomaly is one detected usage anomaly.
type Anomaly struct {
	ID         string
	Type       string
	Detail     string
	Severity   severity.Severity
	KeyID      string
	DetectedAt string
}

// Recommendation is one usage-driven remediation suggestion.
type Recommendation struct {
	Type     string
	Detail   string
	Priority severity.Severity
	KeyID    string
}

// Analyzer is UsageAnomalyAnalyzer's record store.
type Analyzer struct {
	mu              sync.Mutex
	usageLogs       map[string][]UsageLog
	patterns        map[string]Pattern
	anomalies       []Anomaly
	recommendations []Recommendation
	clock           clock.Clock
	log             *logger.Logger
}

// New creates an empty Analyzer.
func New(c clock.Clock, log *logger.Logger) *Analyzer {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Analyzer{
		usageLogs: make(map[string][]UsageLog),
		patterns:  make(map[string]Pattern),
		clock:     c,
		log:       log,
	}
}

// RecordUsageResult is record_usage's return shape.
type RecordUsageResult struct {
	Recorded  bool
	TotalLogs int
}

// RecordUsage appends one call's detail to key_id's log.
func (a *Analyzer) RecordUsage(keyID, action, sourceIP, userAgent, endpoint string, responseCode int) RecordUsageResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.usageLogs[keyID] = append(a.usageLogs[keyID], UsageLog{
		Action: action, SourceIP: sourceIP, UserAgent: userAgent, Endpoint: endpoint,
		ResponseCode: responseCode, Timestamp: clock.ISO8601(a.clock.Now()),
	})
	return RecordUsageResult{Recorded: true, TotalLogs: len(a.usageLogs[keyID])}
}

// PatternResult is analyze_patterns's return shape.
type PatternResult struct {
	Analyzed bool
	Pattern  Pattern
}

// AnalyzePatterns computes and caches key_id's usage pattern: unique
// source IPs, per-endpoint call counts, and error rate over every log.
func (a *Analyzer) AnalyzePatterns(keyID string) PatternResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	logs := a.usageLogs[keyID]
	if len(logs) == 0 {
		return PatternResult{Analyzed: true}
	}

	ips := make(map[string]bool)
	endpoints := make(map[string]int)
	errors := 0
	for _, l := range logs {
		if l.SourceIP != "" {
			ips[l.SourceIP] = true
		}
		if l.Endpoint != "" {
			endpoints[l.Endpoint]++
		}
		if l.ResponseCode >= 400 {
			errors++
		}
	}

	pattern := Pattern{
		TotalUsage: len(logs),
		UniqueIPs:  len(ips),
		Endpoints:  endpoints,
		ErrorCount: errors,
		ErrorRate:  float64(errors) / float64(len(logs)),
	}
	a.patterns[keyID] = pattern
	return PatternResult{Analyzed: true, Pattern: pattern}
}

// AnomalyResult is detect_anomalies's return shape.
type AnomalyResult struct {
	Detected  bool
	Anomalies []Anomaly
}

// DetectAnomalies flags too_many_ips (unique IPs over the tail 10 logs
// exceeds maxIPs, high), high_error_rate (error rate over every log
// exceeds maxErrorRate, medium), and rapid_ip_change (unique IPs over
// the tail 10 logs exceeds 3, critical).
func (a *Analyzer) DetectAnomalies(keyID string, maxIPs int, maxErrorRate float64) AnomalyResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	logs := a.usageLogs[keyID]
	if len(logs) == 0 {
		return AnomalyResult{Detected: true}
	}

	var found []Anomaly
	ips := make(map[string]bool)
	errors := 0
	for _, l := range logs {
		if l.SourceIP != "" {
			ips[l.SourceIP] = true
		}
		if l.ResponseCode >= 400 {
			errors++
		}
	}
	if len(ips) > maxIPs {
		found = append(found, Anomaly{Type: "too_many_ips", Detail: "too many unique source IPs", Severity: severity.High})
	}

	erate := float64(errors) / float64(len(logs))
	if erate > maxErrorRate {
		found = append(found, Anomaly{Type: "high_error_rate", Detail: "error rate above threshold", Severity: severity.Medium})
	}

	recent := logs
	if len(recent) > 10 {
		recent = recent[len(recent)-10:]
	}
	recentIPs := make(map[string]bool)
	for _, l := range recent {
		if l.SourceIP != "" {
			recentIPs[l.SourceIP] = true
		}
	}
	if len(recentIPs) > 3 {
		found = append(found, Anomaly{Type: "rapid_ip_change", Detail: "multiple IPs in recent requests", Severity: severity.Critical})
	}

	now := clock.ISO8601(a.clock.Now())
	for i := range found {
		found[i].ID = ids.New("an")
		found[i].KeyID = keyID
		found[i].DetectedAt = now
	}
	a.anomalies = append(a.anomalies, found...)

	return AnomalyResult{Detected: true, Anomalies: found}
}

// UnusedKey is one finding from FindUnusedKeys.
type UnusedKey struct {
	KeyID  string
	Reason string
	Risk   severity.Severity
}

// FindUnusedResult is find_unused_keys's return shape.
type FindUnusedResult struct {
	Found        bool
	UnusedKeys   []UnusedKey
	TotalChecked int
}

// FindUnusedKeys flags, among allKeyIDs, keys with no logged usage at
// all (never_used, high risk) or fewer than 3 logs (rarely_used, medium
// risk). minDaysIdle is accepted for parity with the original signature
// but, as in the original, does not gate the result.
func (a *Analyzer) FindUnusedKeys(allKeyIDs []string, minDaysIdle int) FindUnusedResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	var unused []UnusedKey
	for _, kid := range allKeyIDs {
		logs := a.usageLogs[kid]
		switch {
		case len(logs) == 0:
			unused = append(unused, UnusedKey{KeyID: kid, Reason: "never_used", Risk: severity.High})
		case len(logs) < 3:
			unused = append(unused, UnusedKey{KeyID: kid, Reason: "rarely_used", Risk: severity.Medium})
		}
	}
	return FindUnusedResult{Found: true, UnusedKeys: unused, TotalChecked: len(allKeyIDs)}
}

// RecommendationResult is get_recommendations's return shape.
type RecommendationResult struct {
	Retrieved       bool
	Recommendations []Recommendation
}

// GetRecommendations emits remove_unused (no logs, high), investigate_errors
// (error rate over 0.5, critical), and restrict_ips (more than 10 unique
// IPs, medium) recommendations for a key.
func (a *Analyzer) GetRecommendations(keyID string) RecommendationResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	logs := a.usageLogs[keyID]

	var recs []Recommendation
	if len(logs) == 0 {
		recs = append(recs, Recommendation{Type: "remove_unused", Detail: "remove an unused key", Priority: severity.High})
	} else {
		errors := 0
		ips := make(map[string]bool)
		for _, l := range logs {
			if l.ResponseCode >= 400 {
				errors++
			}
			if l.SourceIP != "" {
				ips[l.SourceIP] = true
			}
		}
		if float64(errors)/float64(len(logs)) > 0.5 {
			recs = append(recs, Recommendation{Type: "investigate_errors", Detail: "investigate high error rate", Priority: severity.Critical})
		}
		if len(ips) > 10 {
			recs = append(recs, Recommendation{Type: "restrict_ips", Detail: "add IP restrictions", Priority: severity.Medium})
		}
	}

	for i := range recs {
		recs[i].KeyID = keyID
	}
	a.recommendations = append(a.recommendations, recs...)
	return RecommendationResult{Retrieved: true, Recommendations: recs}
}

// AnomalyCounts is the feed KeyHealthScore's anomaly factor consumes.
type AnomalyCounts struct {
	Critical    int
	NonCritical int
}

// GetAnomalyCounts returns a key's accumulated anomaly counts, split by
// whether each anomaly was recorded as critical.
func (a *Analyzer) GetAnomalyCounts(keyID string) AnomalyCounts {
	a.mu.Lock()
	defer a.mu.Unlock()
	var counts AnomalyCounts
	for _, an := range a.anomalies {
		if an.KeyID != keyID {
			continue
		}
		if an.Severity == severity.Critical {
			counts.Critical++
		} else {
			counts.NonCritical++
		}
	}
	return counts
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (a *Analyzer) GetSummary() SummaryResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"keys_tracked":    len(a.usageLogs),
		"anomalies":       len(a.anomalies),
		"recommendations": len(a.recommendations),
	}}
}
