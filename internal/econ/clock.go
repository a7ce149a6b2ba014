package econ

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// MarketEvent is a bounded, economy-wide modifier: demand scales every
// business's income, riskBias leans on the dark-risk walk, and the
// innovation multiplier scales project completion rewards.
type MarketEvent struct {
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	DemandMult     float64       `json:"demand_mult"`
	RiskBias       int32         `json:"risk_bias"`
	InnovationMult float64       `json:"innovation_mult"`
	Duration       time.Duration `json:"duration"`
}

var marketEvents = []MarketEvent{
	{Name: "Consumer Boom", Description: "Demand surges across every sector.", DemandMult: 1.35, RiskBias: 0, InnovationMult: 1, Duration: 10 * time.Minute},
	{Name: "Credit Crunch", Description: "Spending dries up; margins compress.", DemandMult: 0.7, RiskBias: 1, InnovationMult: 1, Duration: 8 * time.Minute},
	{Name: "Regulatory Sweep", Description: "Inspectors lean on grey-area operations.", DemandMult: 0.9, RiskBias: 3, InnovationMult: 1, Duration: 6 * time.Minute},
	{Name: "Tech Expo", Description: "R&D teams race to demo; breakthroughs pay double.", DemandMult: 1.1, RiskBias: 0, InnovationMult: 2, Duration: 12 * time.Minute},
	{Name: "Black Market Rally", Description: "Shadow demand spikes; so does the heat.", DemandMult: 1.5, RiskBias: 2, InnovationMult: 1, Duration: 5 * time.Minute},
}

// ActiveEvent is a live market event instance with its stored expiry. The
// event's effects only ever enter through derived-field recomputation, so
// clearing it on expiry reverts everything.
type ActiveEvent struct {
	ID        string      `json:"id"`
	Event     MarketEvent `json:"event"`
	StartedAt time.Time   `json:"started_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

func (e *ActiveEvent) view() EventView {
	return EventView{
		Name:           e.Event.Name,
		Description:    e.Event.Description,
		DemandMult:     e.Event.DemandMult,
		InnovationMult: e.Event.InnovationMult,
		ExpiresAt:      e.ExpiresAt,
	}
}

func (e *ActiveEvent) DemandMultOr1() float64 {
	if e == nil || e.Event.DemandMult <= 0 {
		return 1
	}
	return e.Event.DemandMult
}

/// Tick advances the whole economy one step. Order is fixed: event expiry,
// project progress, synergy recomputation, passive income, risk/workload
// walks, then possible event activation. Income accrual uses the wall-clock
// span since the previous tick, so skipped or delayed ticks never lose or
// fabricate income.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := time.Duration(0)
	if !s.lastTick.IsZero() && now.After(s.lastTick) {
		elapsed = now.Sub(s.lastTick)
	}
	s.lastTick = now

	if s.event != nil && !now.Before(s.event.ExpiresAt) {
		s.log.Info("market event expired", "event", s.event.Event.Name, "id", s.event.ID)
		s.event = nil
	}

	innovationMult := 1.0
	riskBias := int32(0)
	if s.event != nil {
		innovationMult = s.event.Event.InnovationMult
		riskBias = s.event.Event.RiskBias
	}

	for _, b := range s.portfolio.All() {
		s.projects.Tick(b, &s.player, now, innovationMult)
	}

	s.synergies = s.synergy.Recompute(s.portfolio)

	if elapsed > 0 {
		demand := s.demandMult()
		seconds := elapsed.Seconds()
		for _, b := range s.portfolio.All() {
			income := b.IncomePerHourMicros(s.catalog, demand)
			delta := int64(float64(income) * seconds / 3600)
			if b.Category == CategoryDark {
				s.player.CryptoBalanceMicros += delta
			} else {
				s.player.BalanceMicros += delta
			}
		}
	}

	for _, b := range s.portfolio.All() {
		s.risk.TickBusiness(b, riskBias, s.nextFloat)
	}

	if s.event == nil && s.eventProb > 0 && s.nextFloat() < s.eventProb {
		ev := marketEvents[int(s.nextFloat()*float64(len(marketEvents)))%len(marketEvents)]
		s.event = &ActiveEvent{
			ID:        uuid.NewString(),
			Event:     ev,
			StartedAt: now,
			ExpiresAt: now.Add(ev.Duration),
		}
		s.log.Info("market event activated", "event", ev.Name, "id", s.event.ID, "expires_at", s.event.ExpiresAt)
	}
}

// Clock is the single scheduling authority: a fixed-period driver that is
// the only caller of Session.Tick in a running host.
type Clock struct {
	session *Session
	every   time.Duration
	log     *slog.Logger
}

func NewClock(session *Session, every time.Duration, logger *slog.Logger) *Clock {
	if logger == nil {
		logger = slog.Default()
	}
	if every <= 0 {
		every = 5 * time.Second
	}
	return &Clock{session: session, every: every, log: logger}
}

// Run ticks the session until the context is cancelled.
func (c *Clock) Run(ctx context.Context) {
	ticker := time.NewTicker(c.every)
	defer ticker.Stop()

	c.log.Info("economy clock started", "tick_every", c.every.String())
	for {
		select {
		case <-ctx.Done():
			c.log.Info("economy clock stopped")
			return
		case t := <-ticker.C:
			c.session.Tick(t)
		}
	}
}
