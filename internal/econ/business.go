package econ

import (
	"math"
	"sort"
	"time"
)

// ActiveProject is the at-most-one running project of a business. StartedAt
// is an absolute wall-clock timestamp so progress survives save/restore and
// skipped ticks.
type ActiveProject struct {
	Name             string    `json:"name"`
	CostMicros       int64     `json:"cost_micros"`
	DurationHours    float64   `json:"duration_hours"`
	RewardMultiplier float64   `json:"reward_multiplier"`
	StartedAt        time.Time `json:"started_at"`
}

// Business is an owned instance layered on an immutable template.
//
// income_per_hour and workers are never stored: they are re-derived from the
// template's base values and the live multiplier stack on every read, so
// repeated upgrades and synergy recomputation cannot compound drift into
// them. Risk and workload are stateful by design (random walks plus flat
// upgrade steps).
type Business struct {
	TemplateID int64    `json:"template_id"`
	Name       string   `json:"name"`
	Category   Category `json:"category"`
	Level      int32    `json:"level"`

	UpgradeLevels map[Track]int32 `json:"upgrade_levels"`
	QualityLevel  int32           `json:"quality_level"`

	Risk     int32 `json:"risk"`
	Workload int32 `json:"workload"`

	// CompletedRewards is the product of every project reward multiplier
	// applied so far; completion multiplies it exactly once per project.
	CompletedRewards float64        `json:"completed_rewards"`
	ActiveProject    *ActiveProject `json:"active_project,omitempty"`

	UnlockedFeatures map[string]bool `json:"unlocked_features,omitempty"`

	// Synergy factors are recomputed from the rule set every tick and are
	// deliberately absent from snapshots.
	synergyIncome  float64
	synergyRisk    float64
	synergyWorkers float64

	tmpl *Template
}

func newBusiness(tmpl *Template) *Business {
	levels := make(map[Track]int32, len(allTracks))
	for _, track := range allTracks {
		levels[track] = 1
	}
	return &Business{
		TemplateID:       tmpl.ID,
		Name:             tmpl.Name,
		Category:         tmpl.Category,
		Level:            1,
		UpgradeLevels:    levels,
		Risk:             tmpl.BaseRisk,
		CompletedRewards: 1,
		UnlockedFeatures: make(map[string]bool),
		synergyIncome:    1,
		synergyRisk:      1,
		synergyWorkers:   1,
		tmpl:             tmpl,
	}
}

func (b *Business) Template() *Template {
	return b.tmpl
}

func (b *Business) trackLevel(track Track) int32 {
	lvl := b.UpgradeLevels[track]
	if lvl < 1 {
		return 1
	}
	return lvl
}

func (b *Business) productivityFactor() float64 {
	return 1 + 0.3*float64(b.trackLevel(TrackProductivity)-1)
}

func (b *Business) automationFactor() float64 {
	return 1 - 0.25*float64(b.trackLevel(TrackAutomation)-1)
}

func (b *Business) featureFactor(cat *Catalog) float64 {
	f := 1.0
	for feature, on := range b.UnlockedFeatures {
		if on {
			f *= cat.FeatureIncomeMultiplier(b.Name, feature)
		}
	}
	return f
}

func (b *Business) darkFactor() float64 {
	if b.Category == CategoryDark {
		return DarkIncomeMultiplier
	}
	return 1
}

// IncomePerHourMicros derives the current effective income from the template
// base and the full multiplier stack. demandMult is the economy-wide demand
// multiplier of the active market event (1 when none).
func (b *Business) IncomePerHourMicros(cat *Catalog, demandMult float64) int64 {
	if demandMult <= 0 {
		demandMult = 1
	}
	income := float64(b.tmpl.BaseIncomeMicros) *
		b.productivityFactor() *
		b.featureFactor(cat) *
		b.CompletedRewards *
		b.darkFactor() *
		b.synergyIncome *
		demandMult
	return int64(math.Round(income))
}

// Workers derives the effective headcount from base workers and automation;
// at least one worker always remains.
func (b *Business) Workers() int32 {
	w := math.Round(float64(b.tmpl.BaseWorkers) * b.automationFactor() * b.synergyWorkers)
	if w < 1 {
		return 1
	}
	return int32(w)
}

// EffectiveRisk applies active risk synergies to the stored risk walk.
func (b *Business) EffectiveRisk() int32 {
	return clampInt32(int32(math.Round(float64(b.Risk)*b.synergyRisk)), 0, 100)
}

func (b *Business) Features() []string {
	out := make([]string, 0, len(b.UnlockedFeatures))
	for f, on := range b.UnlockedFeatures {
		if on {
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}

func (b *Business) resetSynergies() {
	b.synergyIncome = 1
	b.synergyRisk = 1
	b.synergyWorkers = 1
}

// Portfolio is the ordered set of owned businesses: insertion on purchase,
// never removal, at most one instance per template.
type Portfolio struct {
	items []*Business
	byID  map[int64]*Business
}

func NewPortfolio() *Portfolio {
	return &Portfolio{byID: make(map[int64]*Business)}
}

func (p *Portfolio) Add(b *Business) bool {
	if _, owned := p.byID[b.TemplateID]; owned {
		return false
	}
	p.items = append(p.items, b)
	p.byID[b.TemplateID] = b
	return true
}

func (p *Portfolio) Get(templateID int64) (*Business, bool) {
	b, ok := p.byID[templateID]
	return b, ok
}

func (p *Portfolio) GetByName(cat *Catalog, name string) (*Business, bool) {
	tmpl, ok := cat.TemplateByName(name)
	if !ok {
		return nil, false
	}
	return p.Get(tmpl.ID)
}

func (p *Portfolio) All() []*Business {
	return p.items
}

func (p *Portfolio) Len() int {
	return len(p.items)
}
