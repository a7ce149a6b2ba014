package econ

import (
	"log/slog"
	"strings"
)

type Category string

const (
	CategoryLight Category = "light"
	CategoryDark  Category = "dark"
)

// ProjectSpec is one entry of a template's special-mechanics menu:
// research programs, AI-model training, production lines and mining rigs all
// share this shape.
type ProjectSpec struct {
	Name             string  `json:"name"`
	CostMicros       int64   `json:"cost_micros"`
	DurationHours    float64 `json:"duration_hours"`
	RewardMultiplier float64 `json:"reward_multiplier"`
}

// Template is an immutable purchasable-business definition. Instances never
// mutate it; all effective values are derived from it on read.
type Template struct {
	ID                    int64         `json:"id"`
	Name                  string        `json:"name"`
	Icon                  string        `json:"icon"`
	Category              Category      `json:"category"`
	BaseIncomeMicros      int64         `json:"base_income_micros"` // per hour
	BaseRisk              int32         `json:"base_risk"`
	BaseWorkers           int32         `json:"base_workers"`
	PriceMicros           int64         `json:"price_micros"`
	BaseUpgradeCostMicros int64         `json:"base_upgrade_cost_micros"`
	CanGoDark             bool          `json:"can_go_dark"`
	Projects              []ProjectSpec `json:"projects"`
}

func (t *Template) Project(name string) (ProjectSpec, bool) {
	name = strings.TrimSpace(name)
	for _, p := range t.Projects {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return ProjectSpec{}, false
}

type SynergyField string

const (
	SynergyIncome  SynergyField = "income"
	SynergyRisk    SynergyField = "risk"
	SynergyWorkers SynergyField = "workers"
)

// SynergyRule grants a multiplicative bonus to both members of an unordered
// template pair once each owned instance meets the required level.
type SynergyRule struct {
	Name           string         `json:"name"`
	FirstBusiness  string         `json:"first_business"`
	SecondBusiness string         `json:"second_business"`
	RequiredLevel  int32          `json:"required_level"`
	Bonus          float64        `json:"bonus"`
	Fields         []SynergyField `json:"fields"`
}

func (r SynergyRule) affects(f SynergyField) bool {
	for _, field := range r.Fields {
		if field == f {
			return true
		}
	}
	return false
}

// Catalog is the read-only input to business creation. Synergy rules that
// reference unknown templates are dropped at construction and reported once,
// never per tick.
type Catalog struct {
	order     []int64
	templates map[int64]*Template
	byName    map[string]*Template
	rules     []SynergyRule

	// featureIncome maps template name -> innovation feature tag -> one-time
	// income multiplier. Unknown combinations are no-ops.
	featureIncome map[string]map[string]float64
}

func NewCatalog(templates []Template, rules []SynergyRule, featureIncome map[string]map[string]float64, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		templates:     make(map[int64]*Template, len(templates)),
		byName:        make(map[string]*Template, len(templates)),
		featureIncome: featureIncome,
	}
	for i := range templates {
		t := templates[i]
		if _, dup := c.templates[t.ID]; dup {
			logger.Warn("duplicate template id ignored", "id", t.ID, "name", t.Name)
			continue
		}
		c.order = append(c.order, t.ID)
		c.templates[t.ID] = &t
		c.byName[strings.ToLower(t.Name)] = &t
	}
	for _, r := range rules {
		if _, ok := c.byName[strings.ToLower(r.FirstBusiness)]; !ok {
			logger.Warn("synergy rule references unknown template, rule dropped", "rule", r.Name, "template", r.FirstBusiness)
			continue
		}
		if _, ok := c.byName[strings.ToLower(r.SecondBusiness)]; !ok {
			logger.Warn("synergy rule references unknown template, rule dropped", "rule", r.Name, "template", r.SecondBusiness)
			continue
		}
		if r.RequiredLevel < 1 {
			r.RequiredLevel = 1
		}
		c.rules = append(c.rules, r)
	}
	return c
}

func (c *Catalog) Template(id int64) (*Template, bool) {
	t, ok := c.templates[id]
	return t, ok
}

func (c *Catalog) TemplateByName(name string) (*Template, bool) {
	t, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

func (c *Catalog) Templates() []*Template {
	out := make([]*Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

func (c *Catalog) Rules() []SynergyRule {
	return c.rules
}

// FeatureIncome exposes the feature multiplier table for external catalog
// stores.
func (c *Catalog) FeatureIncome() map[string]map[string]float64 {
	return c.featureIncome
}

// FeatureIncomeMultiplier returns the one-time income multiplier a feature
// tag grants for the named template, or 1 when the combination is unknown.
func (c *Catalog) FeatureIncomeMultiplier(templateName, feature string) float64 {
	byFeature, ok := c.featureIncome[templateName]
	if !ok {
		return 1
	}
	m, ok := byFeature[feature]
	if !ok || m <= 0 {
		return 1
	}
	return m
}

var defaultTemplates = []Template{
	{ID: 1, Name: "Coffee Collective", Icon: "cup", Category: CategoryLight, BaseIncomeMicros: coins(4_000), BaseRisk: 5, BaseWorkers: 12, PriceMicros: coins(60_000), BaseUpgradeCostMicros: coins(8_000), Projects: []ProjectSpec{
		{Name: "Roastery Line", CostMicros: coins(12_000), DurationHours: 24, RewardMultiplier: 1.25},
		{Name: "Franchise Study", CostMicros: coins(20_000), DurationHours: 48, RewardMultiplier: 1.4},
	}},
	{ID: 2, Name: "EV Platform", Icon: "car", Category: CategoryLight, BaseIncomeMicros: coins(10_000), BaseRisk: 10, BaseWorkers: 40, PriceMicros: coins(150_000), BaseUpgradeCostMicros: coins(15_000), Projects: []ProjectSpec{
		{Name: "Battery Research", CostMicros: coins(40_000), DurationHours: 48, RewardMultiplier: 1.6},
		{Name: "Autonomy Training", CostMicros: coins(60_000), DurationHours: 72, RewardMultiplier: 1.8},
	}},
	{ID: 3, Name: "Nimbus Hosting", Icon: "cloud", Category: CategoryLight, BaseIncomeMicros: coins(8_000), BaseRisk: 8, BaseWorkers: 25, PriceMicros: coins(120_000), BaseUpgradeCostMicros: coins(12_000), Projects: []ProjectSpec{
		{Name: "Edge Rollout", CostMicros: coins(30_000), DurationHours: 36, RewardMultiplier: 1.5},
		{Name: "AI Model Training", CostMicros: coins(50_000), DurationHours: 60, RewardMultiplier: 1.7},
	}},
	{ID: 4, Name: "Pixelforge Studio", Icon: "gamepad", Category: CategoryLight, BaseIncomeMicros: coins(6_000), BaseRisk: 6, BaseWorkers: 18, PriceMicros: coins(90_000), BaseUpgradeCostMicros: coins(10_000), Projects: []ProjectSpec{
		{Name: "Live Ops Push", CostMicros: coins(15_000), DurationHours: 24, RewardMultiplier: 1.3},
		{Name: "Engine Rewrite", CostMicros: coins(45_000), DurationHours: 96, RewardMultiplier: 2.0},
	}},
	{ID: 5, Name: "Trading Desk", Icon: "chart", Category: CategoryLight, BaseIncomeMicros: coins(12_000), BaseRisk: 20, BaseWorkers: 10, PriceMicros: coins(200_000), BaseUpgradeCostMicros: coins(18_000), CanGoDark: true, Projects: []ProjectSpec{
		{Name: "Quant Research", CostMicros: coins(35_000), DurationHours: 48, RewardMultiplier: 1.55},
		{Name: "Latency Arms Race", CostMicros: coins(55_000), DurationHours: 72, RewardMultiplier: 1.75},
	}},
	{ID: 6, Name: "Crypto Exchange", Icon: "coin", Category: CategoryLight, BaseIncomeMicros: coins(14_000), BaseRisk: 30, BaseWorkers: 15, PriceMicros: coins(250_000), BaseUpgradeCostMicros: coins(20_000), CanGoDark: true, Projects: []ProjectSpec{
		{Name: "Mining Rig Farm", CostMicros: coins(45_000), DurationHours: 36, RewardMultiplier: 1.5},
		{Name: "Token Listing Blitz", CostMicros: coins(70_000), DurationHours: 60, RewardMultiplier: 1.9},
	}},
	{ID: 7, Name: "Helix Pharma", Icon: "flask", Category: CategoryLight, BaseIncomeMicros: coins(9_000), BaseRisk: 15, BaseWorkers: 30, PriceMicros: coins(180_000), BaseUpgradeCostMicros: coins(14_000), CanGoDark: true, Projects: []ProjectSpec{
		{Name: "Clinical Trial", CostMicros: coins(50_000), DurationHours: 120, RewardMultiplier: 2.2},
		{Name: "Generics Line", CostMicros: coins(25_000), DurationHours: 48, RewardMultiplier: 1.45},
	}},
	{ID: 8, Name: "Neon District", Icon: "disco", Category: CategoryLight, BaseIncomeMicros: coins(5_000), BaseRisk: 18, BaseWorkers: 20, PriceMicros: coins(80_000), BaseUpgradeCostMicros: coins(9_000), CanGoDark: true, Projects: []ProjectSpec{
		{Name: "VIP Lounge", CostMicros: coins(18_000), DurationHours: 24, RewardMultiplier: 1.35},
	}},
	{ID: 9, Name: "Aegis Security", Icon: "shield", Category: CategoryLight, BaseIncomeMicros: coins(7_000), BaseRisk: 12, BaseWorkers: 22, PriceMicros: coins(110_000), BaseUpgradeCostMicros: coins(11_000), CanGoDark: true, Projects: []ProjectSpec{
		{Name: "Zero-Day Program", CostMicros: coins(40_000), DurationHours: 72, RewardMultiplier: 1.65},
	}},
	{ID: 10, Name: "Meridian Logistics", Icon: "truck", Category: CategoryLight, BaseIncomeMicros: coins(11_000), BaseRisk: 9, BaseWorkers: 50, PriceMicros: coins(170_000), BaseUpgradeCostMicros: coins(16_000), Projects: []ProjectSpec{
		{Name: "Drone Fleet", CostMicros: coins(38_000), DurationHours: 48, RewardMultiplier: 1.5},
		{Name: "Production Line Retool", CostMicros: coins(28_000), DurationHours: 36, RewardMultiplier: 1.4},
	}},
}

var defaultSynergyRules = []SynergyRule{
	{Name: "Charging Corridor", FirstBusiness: "EV Platform", SecondBusiness: "Meridian Logistics", RequiredLevel: 2, Bonus: 1.15, Fields: []SynergyField{SynergyIncome}},
	{Name: "Market Makers", FirstBusiness: "Trading Desk", SecondBusiness: "Crypto Exchange", RequiredLevel: 3, Bonus: 1.25, Fields: []SynergyField{SynergyIncome}},
	{Name: "Cold Chain", FirstBusiness: "Helix Pharma", SecondBusiness: "Meridian Logistics", RequiredLevel: 2, Bonus: 1.12, Fields: []SynergyField{SynergyIncome}},
	{Name: "Caffeinated Crunch", FirstBusiness: "Coffee Collective", SecondBusiness: "Pixelforge Studio", RequiredLevel: 2, Bonus: 1.1, Fields: []SynergyField{SynergyIncome}},
	{Name: "Edge Streaming", FirstBusiness: "Nimbus Hosting", SecondBusiness: "Pixelforge Studio", RequiredLevel: 2, Bonus: 1.12, Fields: []SynergyField{SynergyIncome}},
	{Name: "Cold Wallet Custody", FirstBusiness: "Aegis Security", SecondBusiness: "Crypto Exchange", RequiredLevel: 2, Bonus: 0.8, Fields: []SynergyField{SynergyRisk}},
	{Name: "Door Policy", FirstBusiness: "Aegis Security", SecondBusiness: "Neon District", RequiredLevel: 2, Bonus: 0.85, Fields: []SynergyField{SynergyRisk}},
	{Name: "Shared Automation", FirstBusiness: "Meridian Logistics", SecondBusiness: "Nimbus Hosting", RequiredLevel: 3, Bonus: 0.9, Fields: []SynergyField{SynergyWorkers}},
}

var defaultFeatureIncome = map[string]map[string]float64{
	"EV Platform":       {FeaturePlatformLaunch: 1.6},
	"Crypto Exchange":   {FeatureMoonshotDivision: 1.5},
	"Pixelforge Studio": {FeatureRapidPrototyping: 1.2},
	"Trading Desk":      {FeaturePlatformLaunch: 1.3},
	"Nimbus Hosting":    {FeaturePatentPortfolio: 1.25},
}

// DefaultCatalog returns the built-in template set, used when no external
// catalog source is configured.
func DefaultCatalog(logger *slog.Logger) *Catalog {
	return NewCatalog(defaultTemplates, defaultSynergyRules, defaultFeatureIncome, logger)
}
