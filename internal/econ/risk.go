package econ

// RiskModel owns the dark-side transition and the per-tick risk/workload
// bookkeeping.
type RiskModel struct{}

func NewRiskModel() *RiskModel {
	return &RiskModel{}
}

// ToggleDarkSide reclassifies a light business as dark. The transition is
// monotonic: it succeeds at most once per business and never reverses.
func (m *RiskModel) ToggleDarkSide(b *Business, player *PlayerState) error {
	if b.Category == CategoryDark {
		return ErrAlreadyDark
	}
	if !b.tmpl.CanGoDark {
		return ErrNotEligible
	}
	b.Category = CategoryDark
	b.Risk = DarkInitialRisk
	player.Reputation = maxInt32(0, player.Reputation-DarkReputationPenalty)
	player.RiskLevel = clampInt32(player.RiskLevel+DarkRiskLevelStep, 0, 100)
	return nil
}

// TickBusiness advances the advisory workload gauge for every business and
// random-walks risk for dark ones. riskBias is the active market event's
// per-tick pressure on dark operations (0 when none). nextFloat yields
// uniform values in [0,1).
func (m *RiskModel) TickBusiness(b *Business, riskBias int32, nextFloat func() float64) {
	// Workload drifts upward: informational only.
	b.Workload = clampInt32(b.Workload+int32(nextFloat()*3.5), 0, 100)

	if b.Category != CategoryDark {
		return
	}
	step := int32(nextFloat()*6) - 2 // [-2, +3]
	b.Risk = clampInt32(b.Risk+step+riskBias, 5, 95)
}
