package econ

import "math"

// Track identifies one of the five fixed upgrade tracks.
type Track int32

const (
	TrackProductivity Track = 1
	TrackQuality      Track = 2
	TrackAutomation   Track = 3
	TrackInnovation   Track = 4
	TrackSecurity     Track = 5

	MaxTrackLevel = int32(5)
)

var allTracks = []Track{TrackProductivity, TrackQuality, TrackAutomation, TrackInnovation, TrackSecurity}

func (t Track) String() string {
	switch t {
	case TrackProductivity:
		return "productivity"
	case TrackQuality:
		return "quality"
	case TrackAutomation:
		return "automation"
	case TrackInnovation:
		return "innovation"
	case TrackSecurity:
		return "security"
	default:
		return "unknown"
	}
}

func ParseTrack(s string) (Track, bool) {
	for _, t := range allTracks {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Innovation milestone vocabulary: one feature tag per level 2..5.
const (
	FeatureRapidPrototyping = "rapid_prototyping"
	FeaturePatentPortfolio  = "patent_portfolio"
	FeaturePlatformLaunch   = "platform_launch"
	FeatureMoonshotDivision = "moonshot_division"
)

var innovationFeatures = map[int32]string{
	2: FeatureRapidPrototyping,
	3: FeaturePatentPortfolio,
	4: FeaturePlatformLaunch,
	5: FeatureMoonshotDivision,
}

const (
	qualityRiskStep  = int32(5)
	securityRiskStep = int32(8)
)

// UpgradeEngine owns the five leveled upgrade tracks. Costs come from the
// immutable template so repeated quotes are deterministic, and every effect
// either re-derives from base values or applies a flat, level-gated step.
type UpgradeEngine struct {
	catalog *Catalog
}

func NewUpgradeEngine(catalog *Catalog) *UpgradeEngine {
	return &UpgradeEngine{catalog: catalog}
}

// Cost quotes the price of raising the given track by one level:
// base_upgrade_cost x 2.5^(current_level-1).
func (e *UpgradeEngine) Cost(b *Business, track Track) int64 {
	lvl := b.trackLevel(track)
	return int64(math.Round(float64(b.tmpl.BaseUpgradeCostMicros) * math.Pow(2.5, float64(lvl-1))))
}

func (e *UpgradeEngine) CanUpgrade(b *Business, track Track) bool {
	return b.trackLevel(track) < MaxTrackLevel
}

// Upgrade raises one track by one level, debits the player and applies the
// track effect. Level 5 is terminal per track.
func (e *UpgradeEngine) Upgrade(b *Business, track Track, player *PlayerState) error {
	if track < TrackProductivity || track > TrackSecurity {
		return ErrUnknownTrack
	}
	if !e.CanUpgrade(b, track) {
		return ErrMaxLevel
	}
	cost := e.Cost(b, track)
	if player.BalanceMicros < cost {
		return ErrInsufficientFunds
	}

	player.BalanceMicros -= cost
	next := b.trackLevel(track) + 1
	b.UpgradeLevels[track] = next
	if next > b.Level {
		b.Level = next
	}

	switch track {
	case TrackProductivity, TrackAutomation:
		// Fully derived from base income / base workers; nothing stored.
	case TrackQuality:
		if b.Category == CategoryDark {
			b.Risk = maxInt32(MinUpgradeRisk, b.Risk-qualityRiskStep)
		} else {
			b.QualityLevel++
		}
	case TrackInnovation:
		if feature, ok := innovationFeatures[next]; ok {
			b.UnlockedFeatures[feature] = true
		}
	case TrackSecurity:
		if b.Category == CategoryDark {
			b.Risk = maxInt32(MinUpgradeRisk, b.Risk-securityRiskStep)
		}
	}
	return nil
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
