package econ

import (
	"time"
)

// BusinessSnapshot is the persisted form of one owned business. Project
// start times are absolute so offline progress is computed correctly on
// restore.
type BusinessSnapshot struct {
	TemplateID       int64           `json:"template_id"`
	Category         Category        `json:"category"`
	Level            int32           `json:"level"`
	UpgradeLevels    map[Track]int32 `json:"upgrade_levels"`
	QualityLevel     int32           `json:"quality_level"`
	Risk             int32           `json:"risk"`
	Workload         int32           `json:"workload"`
	CompletedRewards float64         `json:"completed_rewards"`
	Features         []string        `json:"features,omitempty"`
	ActiveProject    *ActiveProject  `json:"active_project,omitempty"`
}

// Snapshot captures everything needed for exact resume: the player
// aggregate, every business, and the active market event with its stored
// expiry.
type Snapshot struct {
	SavedAt    time.Time          `json:"saved_at"`
	Player     PlayerState        `json:"player"`
	Businesses []BusinessSnapshot `json:"businesses"`
	Event      *ActiveEvent       `json:"event,omitempty"`
}

// Snapshot serializes the session state.
func (s *Session) Snapshot(now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SavedAt: now,
		Player:  s.player,
		Event:   s.event,
	}
	for _, b := range s.portfolio.All() {
		levels := make(map[Track]int32, len(b.UpgradeLevels))
		for track, lvl := range b.UpgradeLevels {
			levels[track] = lvl
		}
		snap.Businesses = append(snap.Businesses, BusinessSnapshot{
			TemplateID:       b.TemplateID,
			Category:         b.Category,
			Level:            b.Level,
			UpgradeLevels:    levels,
			QualityLevel:     b.QualityLevel,
			Risk:             b.Risk,
			Workload:         b.Workload,
			CompletedRewards: b.CompletedRewards,
			Features:         b.Features(),
			ActiveProject:    b.ActiveProject,
		})
	}
	return snap
}

// Restore replaces the session state with a snapshot. Businesses whose
// template no longer exists in the catalog are reported once and skipped.
// The last-tick marker is set to the snapshot time so the next tick accrues
// the full offline span, and still-running projects resume from their
// absolute start timestamps.
func (s *Session) Restore(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	portfolio := NewPortfolio()
	for _, bs := range snap.Businesses {
		tmpl, ok := s.catalog.Template(bs.TemplateID)
		if !ok {
			s.log.Warn("saved business references unknown template, skipped", "template_id", bs.TemplateID)
			continue
		}
		b := newBusiness(tmpl)
		b.Category = bs.Category
		if b.Level = bs.Level; b.Level < 1 {
			b.Level = 1
		}
		for track, lvl := range bs.UpgradeLevels {
			b.UpgradeLevels[track] = clampInt32(lvl, 1, MaxTrackLevel)
		}
		b.QualityLevel = bs.QualityLevel
		b.Risk = clampInt32(bs.Risk, 0, 100)
		b.Workload = clampInt32(bs.Workload, 0, 100)
		if b.CompletedRewards = bs.CompletedRewards; b.CompletedRewards <= 0 {
			b.CompletedRewards = 1
		}
		for _, feature := range bs.Features {
			b.UnlockedFeatures[feature] = true
		}
		b.ActiveProject = bs.ActiveProject
		portfolio.Add(b)
	}

	s.player = snap.Player
	s.portfolio = portfolio
	s.event = snap.Event
	s.lastTick = snap.SavedAt
	s.synergies = s.synergy.Recompute(s.portfolio)
	return nil
}
