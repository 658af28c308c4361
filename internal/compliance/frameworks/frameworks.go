// Package frameworks implements ComplianceFrameworkLoader (spec §4.9):
// four pre-seeded built-in regulatory frameworks plus custom framework
// registration, with requirements attached and counted separately.
package frameworks

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Framework is a regulatory or custom compliance framework.
type Framework struct {
	Key             string
	Name            string
	Categories      []string
	NominalReqCount int
	BuiltIn         bool
	CreatedAt       string
}

// Requirement is one requirement attached to a framework.
type Requirement struct {
	ID           string
	FrameworkKey string
	Name         string
	Category     string
}

// builtins pre-seeds the four named regulatory frameworks (spec §4.9).
var builtins = []Framework{
	{Key: "gdpr", Name: "General Data Protection Regulation", Categories: []string{"consent", "data_subject_rights", "cross_border", "breach_notification"}, NominalReqCount: 99},
	{Key: "kvkk", Name: "Kişisel Verilerin Korunması Kanunu", Categories: []string{"consent", "data_subject_rights", "cross_border"}, NominalReqCount: 32},
	{Key: "pci_dss", Name: "Payment Card Industry Data Security Standard", Categories: []string{"network_security", "access_control", "encryption", "monitoring"}, NominalReqCount: 12},
	{Key: "soc2", Name: "SOC 2", Categories: []string{"security", "availability", "confidentiality", "privacy"}, NominalReqCount: 64},
}

// Loader is ComplianceFrameworkLoader's record store.
type Loader struct {
	mu           sync.RWMutex
	frameworks   map[string]*Framework
	requirements map[string]*Requirement
	byFramework  map[string][]string
	clock        clock.Clock
	log          *logger.Logger
}

// New creates a Loader pre-seeded with the four built-in frameworks.
func New(c clock.Clock, log *logger.Logger) *Loader {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	l := &Loader{
		frameworks:   make(map[string]*Framework),
		requirements: make(map[string]*Requirement),
		byFramework:  make(map[string][]string),
		clock:        c,
		log:          log,
	}
	for _, b := range builtins {
		f := b
		f.BuiltIn = true
		f.CreatedAt = clock.ISO8601(c.Now())
		l.frameworks[f.Key] = &f
	}
	return l
}

// RegisterResult is register_framework's return shape.
type RegisterResult struct {
	Registered bool
	Key        string
	Error      string
}

// RegisterFramework adds a custom framework under a unique key. Duplicate
// keys, including built-in ones, fail.
func (l *Loader) RegisterFramework(key, name string, categories []string, nominalReqCount int) RegisterResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	if key == "" || name == "" {
		return RegisterResult{Error: goverrors.Invalid("key/name").Error()}
	}
	if _, exists := l.frameworks[key]; exists {
		return RegisterResult{Error: goverrors.Exists(key).Error()}
	}
	l.frameworks[key] = &Framework{
		Key: key, Name: name, Categories: categories, NominalReqCount: nominalReqCount,
		CreatedAt: clock.ISO8601(l.clock.Now()),
	}
	return RegisterResult{Registered: true, Key: key}
}

// AttachRequirementResult is attach_requirement's return shape.
type AttachRequirementResult struct {
	Attached      bool
	RequirementID string
	Error         string
}

// AttachRequirement attaches a requirement to a registered framework.
func (l *Loader) AttachRequirement(frameworkKey, name, category string) AttachRequirementResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.frameworks[frameworkKey]; !ok {
		return AttachRequirementResult{Error: goverrors.NotFound("framework").Error()}
	}
	id := ids.New("req")
	l.requirements[id] = &Requirement{ID: id, FrameworkKey: frameworkKey, Name: name, Category: category}
	l.byFramework[frameworkKey] = append(l.byFramework[frameworkKey], id)
	return AttachRequirementResult{Attached: true, RequirementID: id}
}

// GetFrameworkResult is get_framework's return shape.
type GetFrameworkResult struct {
	Retrieved        bool
	Framework        *Framework
	RequirementCount int
	Error            string
}

// GetFramework retrieves a framework and its attached-requirement count,
// which is tracked separately from NominalReqCount (spec §4.9).
func (l *Loader) GetFramework(key string) GetFrameworkResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, ok := l.frameworks[key]
	if !ok {
		return GetFrameworkResult{Error: goverrors.NotFound("framework").Error()}
	}
	return GetFrameworkResult{Retrieved: true, Framework: f, RequirementCount: len(l.byFramework[key])}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (l *Loader) GetSummary() SummaryResult {
	l.mu.RLock()
	defer l.mu.RUnlock()
	builtInCount := 0
	for _, f := range l.frameworks {
		if f.BuiltIn {
			builtInCount++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"frameworks":   len(l.frameworks),
		"built_in":     builtInCount,
		"requirements": len(l.requirements),
	}}
}
