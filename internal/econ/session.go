package econ

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"
)

// PlayerState is the aggregate economy state of the player session. Balances
// are integer micros so sub-coin passive accrual never loses precision.
type PlayerState struct {
	BalanceMicros       int64 `json:"balance_micros"`
	CryptoBalanceMicros int64 `json:"crypto_balance_micros"`
	Reputation          int32 `json:"reputation"`
	RiskLevel           int32 `json:"risk_level"`
	InnovationPoints    int64 `json:"innovation_points"`
}

// Session is the explicit context object for one player economy: it owns the
// portfolio, the player aggregate and the component engines, and serializes
// every mutation behind one mutex. There are no package-level singletons;
// hosts construct a Session once and thread it through all calls. User
// actions and clock ticks are whole-operation atomic, which is the only
// locking granularity the model needs.
type Session struct {
	mu sync.Mutex

	catalog   *Catalog
	player    PlayerState
	portfolio *Portfolio

	upgrades *UpgradeEngine
	projects *ProjectScheduler
	synergy  *SynergyEngine
	risk     *RiskModel

	event     *ActiveEvent
	eventProb float64
	synergies []ActiveSynergy
	lastTick  time.Time

	log *slog.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewSession(catalog *Catalog, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		catalog:   catalog,
		player:    PlayerState{BalanceMicros: StarterBalanceMicros, Reputation: 50},
		portfolio: NewPortfolio(),
		upgrades:  NewUpgradeEngine(catalog),
		projects:  NewProjectScheduler(catalog),
		synergy:   NewSynergyEngine(catalog),
		risk:      NewRiskModel(),
		eventProb: 0.01,
		log:       logger,
		rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetEventProbability overrides the per-tick market event activation chance.
func (s *Session) SetEventProbability(p float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventProb = clampFloat(p, 0, 1)
}

func (s *Session) Catalog() *Catalog {
	return s.catalog
}

func (s *Session) nextFloat() float64 {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rand.Float64()
}

// BuyBusiness debits the template price and adds a fresh level-1 instance to
// the portfolio. One instance per template.
func (s *Session) BuyBusiness(templateID int64, now time.Time) (BusinessView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl, ok := s.catalog.Template(templateID)
	if !ok {
		return BusinessView{}, ErrUnknownTemplate
	}
	if _, owned := s.portfolio.Get(templateID); owned {
		return BusinessView{}, ErrAlreadyOwned
	}
	if s.player.BalanceMicros < tmpl.PriceMicros {
		return BusinessView{}, ErrInsufficientFunds
	}

	s.player.BalanceMicros -= tmpl.PriceMicros
	b := newBusiness(tmpl)
	s.portfolio.Add(b)
	s.synergies = s.synergy.Recompute(s.portfolio)
	s.log.Info("business purchased", "template_id", tmpl.ID, "name", tmpl.Name, "price_micros", tmpl.PriceMicros)
	return s.businessView(b, now), nil
}

// UpgradeCost quotes the next-level cost for one track without mutating.
func (s *Session) UpgradeCost(templateID int64, track Track) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.portfolio.Get(templateID)
	if !ok {
		return 0, ErrUnknownBusiness
	}
	return s.upgrades.Cost(b, track), nil
}

// Upgrade raises one upgrade track by a level.
func (s *Session) Upgrade(templateID int64, track Track, now time.Time) (BusinessView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.portfolio.Get(templateID)
	if !ok {
		return BusinessView{}, ErrUnknownBusiness
	}
	if err := s.upgrades.Upgrade(b, track, &s.player); err != nil {
		return BusinessView{}, err
	}
	s.synergies = s.synergy.Recompute(s.portfolio)
	s.log.Info("upgrade applied", "template_id", templateID, "track", track.String(), "level", b.trackLevel(track))
	return s.businessView(b, now), nil
}

// StartProject begins a named special-mechanics project on one business.
func (s *Session) StartProject(templateID int64, projectName string, now time.Time) (BusinessView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.portfolio.Get(templateID)
	if !ok {
		return BusinessView{}, ErrUnknownBusiness
	}
	if err := s.projects.Start(b, projectName, &s.player, now); err != nil {
		return BusinessView{}, err
	}
	s.log.Info("project started", "template_id", templateID, "project", b.ActiveProject.Name, "duration_hours", b.ActiveProject.DurationHours)
	return s.businessView(b, now), nil
}

// CancelProject abandons a running project. The cost already paid is not
// refunded.
func (s *Session) CancelProject(templateID int64, now time.Time) (BusinessView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.portfolio.Get(templateID)
	if !ok {
		return BusinessView{}, ErrUnknownBusiness
	}
	if err := s.projects.Cancel(b); err != nil {
		return BusinessView{}, err
	}
	s.log.Info("project cancelled", "template_id", templateID)
	return s.businessView(b, now), nil
}

// ToggleDarkSide performs the irreversible light->dark reclassification.
func (s *Session) ToggleDarkSide(templateID int64, now time.Time) (BusinessView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.portfolio.Get(templateID)
	if !ok {
		return BusinessView{}, ErrUnknownBusiness
	}
	if err := s.risk.ToggleDarkSide(b, &s.player); err != nil {
		return BusinessView{}, err
	}
	s.log.Info("business went dark", "template_id", templateID, "risk", b.Risk, "reputation", s.player.Reputation)
	return s.businessView(b, now), nil
}

// Player returns a copy of the aggregate player state.
func (s *Session) Player() PlayerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player
}

// State returns a read-only view of the whole session for presentation.
func (s *Session) State(now time.Time) StateView {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := StateView{
		Player:   s.player,
		LastTick: s.lastTick,
	}
	for _, b := range s.portfolio.All() {
		out.Businesses = append(out.Businesses, s.businessView(b, now))
	}
	if s.event != nil {
		v := s.event.view()
		out.Event = &v
	}
	for _, syn := range s.synergies {
		out.Synergies = append(out.Synergies, syn.Rule.Name)
	}
	return out
}

// businessView assumes s.mu is held.
func (s *Session) businessView(b *Business, now time.Time) BusinessView {
	v := BusinessView{
		TemplateID:          b.TemplateID,
		Name:                b.Name,
		Category:            b.Category,
		Level:               b.Level,
		IncomePerHourMicros: b.IncomePerHourMicros(s.catalog, s.demandMult()),
		Workers:             b.Workers(),
		Risk:                b.EffectiveRisk(),
		Workload:            b.Workload,
		QualityLevel:        b.QualityLevel,
		UpgradeLevels:       make(map[string]int32, len(allTracks)),
		Features:            b.Features(),
	}
	for _, track := range allTracks {
		v.UpgradeLevels[track.String()] = b.trackLevel(track)
	}
	if ap := b.ActiveProject; ap != nil {
		v.Project = &ProjectView{
			Name:             ap.Name,
			StartedAt:        ap.StartedAt,
			DurationHours:    ap.DurationHours,
			RewardMultiplier: ap.RewardMultiplier,
			Progress:         s.projects.Progress(b, now),
		}
	}
	return v
}

// demandMult assumes s.mu is held.
func (s *Session) demandMult() float64 {
	return s.event.DemandMultOr1()
}
