// Package playbook implements PlaybookGenerator (spec §4.25): playbooks
// owning ordered procedures, trigger-keyed automations, symbolic dry-run
// tests, and a monotonically incrementing version on publish.
package playbook

import (
	"sort"
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Procedure is one ordered step in a playbook.
type Procedure struct {
	Description string
	StepOrder   int
}

// Automation is a trigger-keyed automated response.
type Automation struct {
	Trigger string
	Action  string
}

// TestRun is a symbolic dry-run record.
type TestRun struct {
	ID     string
	Passed bool
}

// Playbook is one incident-response playbook.
type Playbook struct {
	ID          string
	Name        string
	Procedures  []Procedure
	Automations map[string]Automation
	Tests       []TestRun
	Version     int
}

// Generator is PlaybookGenerator's record store.
type Generator struct {
	mu        sync.Mutex
	playbooks map[string]*Playbook
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
	return &Generator{playbooks: make(map[string]*Playbook), clock: c, log: log}
}

// CreateResult is create_playbook's return shape.
type CreateResult struct {
	Created    bool
	PlaybookID string
	Error      string
}

// CreatePlaybook starts a new, unversioned playbook.
func (g *Generator) CreatePlaybook(name string) CreateResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	if name == "" {
		return CreateResult{Error: goverrors.Invalid("name").Error()}
	}
	id := ids.New("pbk")
	g.playbooks[id] = &Playbook{ID: id, Name: name, Automations: make(map[string]Automation)}
	return CreateResult{Created: true, PlaybookID: id}
}

// AddProcedureResult is add_procedure's return shape.
type AddProcedureResult struct {
	Added bool
	Error string
}

// AddProcedure appends a procedure and re-sorts by step_order.
func (g *Generator) AddProcedure(playbookID, description string, stepOrder int) AddProcedureResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	pb, ok := g.playbooks[playbookID]
	if !ok {
		return AddProcedureResult{Error: goverrors.NotFound("playbook").Error()}
	}
	pb.Procedures = append(pb.Procedures, Procedure{Description: description, StepOrder: stepOrder})
	sort.SliceStable(pb.Procedures, func(i, j int) bool { return pb.Procedures[i].StepOrder < pb.Procedures[j].StepOrder })
	return AddProcedureResult{Added: true}
}

// AddAutomationResult is add_automation's return shape.
type AddAutomationResult struct {
	Added bool
	Error string
}

// AddAutomation registers a trigger-keyed automated response.
func (g *Generator) AddAutomation(playbookID, trigger, action string) AddAutomationResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	pb, ok := g.playbooks[playbookID]
	if !ok {
		return AddAutomationResult{Error: goverrors.NotFound("playbook").Error()}
	}
	pb.Automations[trigger] = Automation{Trigger: trigger, Action: action}
	return AddAutomationResult{Added: true}
}

// RunTestResult is run_test's return shape.
type RunTestResult struct {
	Ran    bool
	TestID string
	Error  string
}

// RunTest performs a symbolic dry-run, always passing in the baseline
// implementation.
func (g *Generator) RunTest(playbookID string) RunTestResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	pb, ok := g.playbooks[playbookID]
	if !ok {
		return RunTestResult{Error: goverrors.NotFound("playbook").Error()}
	}
	id := ids.New("pbt")
	pb.Tests = append(pb.Tests, TestRun{ID: id, Passed: true})
	return RunTestResult{Ran: true, TestID: id}
}

// PublishResult is publish's return shape.
type PublishResult struct {
	Published bool
	Version   int
	Error     string
}

// Publish increments a playbook's version.
func (g *Generator) Publish(playbookID string) PublishResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	pb, ok := g.playbooks[playbookID]
	if !ok {
		return PublishResult{Error: goverrors.NotFound("playbook").Error()}
	}
	pb.Version++
	return PublishResult{Published: true, Version: pb.Version}
}

// GetPlaybookResult is get_playbook's return shape.
type GetPlaybookResult struct {
	Retrieved bool
	Playbook  *Playbook
	Error     string
}

// GetPlaybook retrieves a playbook by id.
func (g *Generator) GetPlaybook(playbookID string) GetPlaybookResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	pb, ok := g.playbooks[playbookID]
	if !ok {
		return GetPlaybookResult{Error: goverrors.NotFound("playbook").Error()}
	}
	return GetPlaybookResult{Retrieved: true, Playbook: pb}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (g *Generator) GetSummary() SummaryResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	published := 0
	for _, pb := range g.playbooks {
		if pb.Version > 0 {
			published++
		}
	}
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"playbooks": len(g.playbooks),
		"published": published,
	}}
}
