// Package dataflow implements DataFlowMapper (spec §4.10): a registry of
// classified data assets and the directed flows between them, with
// cross-border flows indexed separately for reporting.
package dataflow

import (
	"sync"

	"github.com/aegisops/govplatform/internal/platform/clock"
	"github.com/aegisops/govplatform/internal/platform/ids"
	goverrors "github.com/aegisops/govplatform/pkg/errors"
	"github.com/aegisops/govplatform/pkg/logger"
)

// Category is a data asset's sensitivity classification (spec §4.10).
type Category string

const (
	CategoryPersonal  Category = "personal"
	CategorySensitive Category = "sensitive"
	CategoryFinancial Category = "financial"
	CategoryHealth    Category = "health"
	CategoryBiometric Category = "biometric"
	CategoryChildren  Category = "children"
	CategoryPublic    Category = "public"
)

func validCategory(c Category) bool {
	switch c {
	case CategoryPersonal, CategorySensitive, CategoryFinancial, CategoryHealth, CategoryBiometric, CategoryChildren, CategoryPublic:
		return true
	}
	return false
}

// Asset is a registered data asset.
type Asset struct {
	ID        string
	Name      string
	Category  Category
	CreatedAt string
}

// Flow is a directed transfer of an asset to a destination.
type Flow struct {
	ID          string
	AssetID     string
	Destination string
	CrossBorder bool
	CreatedAt   string
}

// Mapper is DataFlowMapper's record store.
type Mapper struct {
	mu          sync.RWMutex
	assets      map[string]*Asset
	flows       map[string]*Flow
	flowOrder   []string
	crossBorder []string // flow ids, indexed separately (spec §4.10)
	clock       clock.Clock
	log         *logger.Logger
}

// New creates an empty Mapper.
func New(c clock.Clock, log *logger.Logger) *Mapper {
	if c == nil {
		c = clock.System{}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Mapper{
		assets: make(map[string]*Asset),
		flows:  make(map[string]*Flow),
		clock:  c,
		log:    log,
	}
}

// RegisterAssetResult is register_asset's return shape.
type RegisterAssetResult struct {
	Registered bool
	AssetID    string
	Error      string
}

// RegisterAsset adds a classified data asset. Invalid categories are
// rejected.
func (m *Mapper) RegisterAsset(name string, category Category) RegisterAssetResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if name == "" {
		return RegisterAssetResult{Error: goverrors.Invalid("name").Error()}
	}
	if !validCategory(category) {
		return RegisterAssetResult{Error: goverrors.Invalid("category=" + string(category)).Error()}
	}
	id := ids.New("asset")
	m.assets[id] = &Asset{ID: id, Name: name, Category: category, CreatedAt: clock.ISO8601(m.clock.Now())}
	return RegisterAssetResult{Registered: true, AssetID: id}
}

// MapFlowResult is map_flow's return shape.
type MapFlowResult struct {
	Mapped bool
	FlowID string
	Error  string
}

// MapFlow records a directed flow of a registered asset to a destination.
// crossBorder flows are additionally indexed for cross-border reporting.
func (m *Mapper) MapFlow(assetID, destination string, crossBorder bool) MapFlowResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assets[assetID]; !ok {
		return MapFlowResult{Error: goverrors.NotFound("asset").Error()}
	}
	if destination == "" {
		return MapFlowResult{Error: goverrors.Invalid("destination").Error()}
	}
	id := ids.New("flow")
	m.flows[id] = &Flow{ID: id, AssetID: assetID, Destination: destination, CrossBorder: crossBorder, CreatedAt: clock.ISO8601(m.clock.Now())}
	m.flowOrder = append(m.flowOrder, id)
	if crossBorder {
		m.crossBorder = append(m.crossBorder, id)
	}
	return MapFlowResult{Mapped: true, FlowID: id}
}

// CrossBorderReportResult is get_cross_border_flows's return shape.
type CrossBorderReportResult struct {
	Retrieved bool
	Flows     []*Flow
}

// GetCrossBorderFlows returns every flow indexed as cross-border, in
// registration order.
func (m *Mapper) GetCrossBorderFlows() CrossBorderReportResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	flows := make([]*Flow, 0, len(m.crossBorder))
	for _, id := range m.crossBorder {
		flows = append(flows, m.flows[id])
	}
	return CrossBorderReportResult{Retrieved: true, Flows: flows}
}

// GetAssetFlowsResult is get_asset_flows's return shape.
type GetAssetFlowsResult struct {
	Retrieved bool
	Flows     []*Flow
	Error     string
}

// GetAssetFlows returns every flow mapped from a given asset, in
// registration order.
func (m *Mapper) GetAssetFlows(assetID string) GetAssetFlowsResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.assets[assetID]; !ok {
		return GetAssetFlowsResult{Error: goverrors.NotFound("asset").Error()}
	}
	var flows []*Flow
	for _, id := range m.flowOrder {
		if f := m.flows[id]; f.AssetID == assetID {
			flows = append(flows, f)
		}
	}
	return GetAssetFlowsResult{Retrieved: true, Flows: flows}
}

// SummaryResult mirrors the universal get_summary shape.
type SummaryResult struct {
	Retrieved bool
	Stats     map[string]int
}

// GetSummary returns aggregate counters.
func (m *Mapper) GetSummary() SummaryResult {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return SummaryResult{Retrieved: true, Stats: map[string]int{
		"assets":       len(m.assets),
		"flows":        len(m.flows),
		"cross_border": len(m.crossBorder),
	}}
}
