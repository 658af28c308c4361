// Package leak implements CredentialLeakDetector (spec §4.15): regex
// scanning of arbitrary content (commit diffs, logs, pasted text) for
// exposed credentials, with optional auto-revocation of matched
// monitored keys.
package leak

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	"github.com/aegisops/govplatform/internal/platform/severity"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Pattern is one built-in or registered leak signature.
type Pattern struct {
	Name     string
	Regex    *regexp.Regexp
	Severity severity.Severity
}

// builtinPatterns are CredentialLeakDetector's 5 default signatures
// (spec §4.15).
var builtinPatterns = []Pattern{
	{Name: "generic_api_key", Regex: regexp.MustCompile(`(?i)api[_-]?key["']?\s*[:=]\s*["']?[A-Za-z0-9_\-]{16,}`), Severity: severity.High},
	{Name: "aws_access_key", Regex: regexp.MustCompile(`AKIA[0-9A-Z]{16}`), Severity: severity.Critical},
	{Name: "jwt", Regex: regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`), Severity: severity.Medium},
	{Name: "password_assignment", Regex: regexp.MustCompile(`(?i)password["']?\s*[:=]\s*["'][^"'\s]{4,}["']`), Severity: severity.Medium},
	{Name: "pem_private_key", Regex: regexp.MustCompile(`-----BEGIN (RSA |EC )?PRIVATE KEY-----`), Severity: severity.Critical},
}

// Status is a detected Leak's lifecycle state.
type Status string

const (
	StatusOpen        Status = "open"
	StatusAutoRevoked Status = "auto_revoked"
)

// Finding is one pattern match within scanned content.
type Finding struct {
	Pattern     string
	Severity    severity.Severity
	MatchCount  int
	Sample      string
	AutoRevoked bool
}

// Leak is a persisted finding, one per match.
type Leak struct {
	ID        string
	Pattern   string
	Severity  severity.Severity
	Status    Status
	AlertID   string
	CreatedAt string
}

// Detector is CredentialLeakDetector's record store.
type Detector struct {
	mu            sync.Mutex
	patterns      []Pattern
	leaks         map[string]*Leak
	monitoredKeys map[string]string // content substring -> key id
	clock         clock.Clock
	log           *logger.Logger

	AutoRevoke bool
}

// New creates a Detector pre-seeded with the 5 built-in patterns.
func New(c clock.Clock, log *logger.Logger) *Detector {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Detector{
		patterns:      append([]Pattern{}, builtinPatterns...),
		leaks:         make(map[string]*Leak),
		monitoredKeys: make(map[string]string),
		clock:         c,
		log:           log,
	}
}

// WatchKey registers a key value to be matched at emergency severity if
// it appears in scanned content (spec §4.15).
func (d *Detector) WatchKey(keyID, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.monitoredKeys[value] = keyID
}

// ScanResult is scan_content's return shape.
type ScanResult struct {
	Scanned  bool
	Findings []Finding
}

// ScanContent case-insensitively matches content against every pattern
// and the monitored-key list, creating a Leak (and, when the finding is
// severe enough and AutoRevoke is on, flagging auto-revocation) per
// match.
func (d *Detector) ScanContent(content string) ScanResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	var findings []Finding
	for _, p := range d.patterns {
		matches := p.Regex.FindAllString(content, -1)
		if len(matches) == 0 {
			continue
		}
		f := Finding{Pattern: p.Name, Severity: p.Severity, MatchCount: len(matches), Sample: sampleOf(matches[0])}
		d.recordLeak(f)
		findings = append(findings, f)
	}

	lower := strings.ToLower(content)
	for value := range d.monitoredKeys {
		if value != "" && strings.Contains(lower, strings.ToLower(value)) {
			f := Finding{Pattern: "monitored_key", Severity: severity.Emergency, MatchCount: 1, Sample: sampleOf(value)}
			d.recordLeak(f)
			findings = append(findings, f)
		}
	}

	return ScanResult{Scanned: true, Findings: findings}
}

func (d *Detector) recordLeak(f Finding) {
	status := StatusOpen
	if d.AutoRevoke && (f.Severity == severity.Critical || f.Severity == severity.Emergency) {
		status = StatusAutoRevoked
	}
	id := ids.New("leak")
	d.leaks[id] = &Leak{ID: id, Pattern: f.Pattern, Severity: f.Severity, Status: status, CreatedAt: clock.ISO8601(d.clock.Now())}
}

// sampleOf redacts a matched string to a short, non-reversible sample.
func sampleOf(match string) string {
	sum := sha256.Sum256([]byte(match))
	sample := hex.EncodeToString(sum[:])[:8]
	if len(match) <= 4 {
		return sample
	}
	return match[:4] + "..." + sample
}

// GitScanResult is scan_git_history's return shape.
type GitScanResult struct {
	Scanned    bool
	PerCommit  map[string][]Finding
	TotalFound int
}

// ScanGitHistory scans each commit's diff independently.
func (d *Detector) ScanGitHistory(commits map[string]string) GitScanResult {
	perCommit := make(map[string][]Finding)
	total := 0
	for sha, diff := range commits {
		res := d.ScanContent(diff)
		if len(res.Findings) > 0 {
			perCommit[sha] = res.Findings
			total += len(res.Findings)
		}
	}
	return GitScanResult{Scanned: true, PerCommit: perCommit, TotalFound: total}
}

// DarkWebResult is check_dark_web's return shape.
type DarkWebResult struct {
	Checked  bool
	Breached bool
}

// CheckDarkWeb hashes a key value and checks it against a supplied list
// of breach-record hashes.
func (d *Detector) CheckDarkWeb(keyValue string, breachHashes []string) DarkWebResult {
	sum := sha256.Sum256([]byte(keyValue))
	h := hex.EncodeToString(sum[:])
	for _, b := range breachHashes {
		if b == h {
			return DarkWebResult{Checked: true, Breached: true}
		}
	}
	return DarkWebResult{Checked: true}
}

// GetLeakResult is get_leak's return shape.
type GetLeakResult struct {
	Retrieved bool
	Leak      *Leak
	Error     string
}

// GetLeak retrieves a leak record by id.
func (d *Detector) GetLeak(leakID string) GetLeakResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.leaks[leakID]
	if !ok {
		return GetLeakResult{Error: goverrors.NotFound("leak").Error()}
	}
	return GetLeakResult{Retrieved: true, Leak: l}
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
	autoRevoked := 0
	for _, l := range d.leaks {
		if l.Status == StatusAutoRevoked {
			autoRevoked++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"leaks":        len(d.leaks),
		"auto_revoked": autoRevoked,
	}}
}
