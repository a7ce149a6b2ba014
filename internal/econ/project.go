package econ

import (
	"math"
	"time"
)

// ProjectScheduler runs the Idle -> Running -> Idle lifecycle of the
// per-business special-mechanics projects. One project per business at a
// time; completion applies its reward exactly once.
type ProjectScheduler struct {
	catalog *Catalog
}

func NewProjectScheduler(catalog *Catalog) *ProjectScheduler {
	return &ProjectScheduler{catalog: catalog}
}

// Start looks the named project up in the template menu, debits its cost and
// records the absolute start timestamp.
func (s *ProjectScheduler) Start(b *Business, projectName string, player *PlayerState, now time.Time) error {
	if b.ActiveProject != nil {
		return ErrAlreadyRunning
	}
	spec, ok := b.tmpl.Project(projectName)
	if !ok {
		return ErrUnknownProject
	}
	if player.BalanceMicros < spec.CostMicros {
		return ErrInsufficientFunds
	}
	player.BalanceMicros -= spec.CostMicros
	b.ActiveProject = &ActiveProject{
		Name:             spec.Name,
		CostMicros:       spec.CostMicros,
		DurationHours:    spec.DurationHours,
		RewardMultiplier: spec.RewardMultiplier,
		StartedAt:        now,
	}
	return nil
}

// Cancel returns the business to Idle without a refund.
func (s *ProjectScheduler) Cancel(b *Business) error {
	if b.ActiveProject == nil {
		return ErrNoActiveProject
	}
	b.ActiveProject = nil
	return nil
}

// Progress reports completion in percent, clamped to [0,100], computed from
// the wall clock so it is correct regardless of tick cadence.
func (s *ProjectScheduler) Progress(b *Business, now time.Time) float64 {
	ap := b.ActiveProject
	if ap == nil {
		return 0
	}
	duration := time.Duration(ap.DurationHours * float64(time.Hour))
	if duration <= 0 {
		return 100
	}
	elapsed := now.Sub(ap.StartedAt)
	return clampFloat(100*float64(elapsed)/float64(duration), 0, 100)
}

// Tick advances a running project and applies completion at-most-once: the
// reward multiplies the business's cumulative project factor a single time,
// innovation points are credited, and the project is cleared before any
// later tick can observe it again.
func (s *ProjectScheduler) Tick(b *Business, player *PlayerState, now time.Time, innovationMult float64) {
	if b.ActiveProject == nil {
		return
	}
	if s.Progress(b, now) < 100 {
		return
	}
	b.CompletedRewards *= b.ActiveProject.RewardMultiplier
	if innovationMult <= 0 {
		innovationMult = 1
	}
	player.InnovationPoints += int64(math.Round(float64(ProjectInnovationReward) * innovationMult))
	b.ActiveProject = nil
}
