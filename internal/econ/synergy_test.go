package econ

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynergyAppliesWhenBothMeetLevel(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(10_000_000)

	// Charging Corridor: EV Platform + Meridian Logistics, level 2, x1.15 income.
	ev := mustBuy(t, s, 2, now)
	logi := mustBuy(t, s, 10, now)

	active := s.synergy.Recompute(s.portfolio)
	assert.Empty(t, active)
	assert.Equal(t, coins(10_000), ev.IncomePerHourMicros(s.catalog, 1))

	_, err := s.Upgrade(2, TrackProductivity, now) // level 2
	require.NoError(t, err)
	_, err = s.Upgrade(10, TrackProductivity, now)
	require.NoError(t, err)

	active = s.synergy.Recompute(s.portfolio)
	require.Len(t, active, 1)
	assert.Equal(t, "Charging Corridor", active[0].Rule.Name)

	// EV Platform at level 2: 10_000 x 1.3 x 1.15.
	assert.Equal(t, coins(14_950), ev.IncomePerHourMicros(s.catalog, 1))
	assert.Equal(t, coins(16_445), logi.IncomePerHourMicros(s.catalog, 1))
}

func TestSynergyRemovedWhenRequirementLapses(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(10_000_000)

	ev := mustBuy(t, s, 2, now)
	mustBuy(t, s, 10, now)
	_, err := s.Upgrade(2, TrackProductivity, now)
	require.NoError(t, err)
	_, err = s.Upgrade(10, TrackProductivity, now)
	require.NoError(t, err)

	s.Tick(now.Add(time.Second))
	assert.Equal(t, coins(14_950), ev.IncomePerHourMicros(s.catalog, s.demandMult()))

	// Should not normally happen, but the guard must hold: dropping below
	// the threshold removes the bonus at the next recomputation.
	ev.Level = 1
	s.Tick(now.Add(2 * time.Second))
	assert.Equal(t, coins(13_000), ev.IncomePerHourMicros(s.catalog, s.demandMult()))
}

func TestSynergyNeverCompoundsAcrossTicks(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(10_000_000)

	ev := mustBuy(t, s, 2, now)
	mustBuy(t, s, 10, now)
	_, err := s.Upgrade(2, TrackProductivity, now)
	require.NoError(t, err)
	_, err = s.Upgrade(10, TrackProductivity, now)
	require.NoError(t, err)

	for i := 1; i <= 10; i++ {
		s.Tick(now.Add(time.Duration(i) * time.Second))
	}
	// Ten recomputations, one application.
	assert.Equal(t, coins(14_950), ev.IncomePerHourMicros(s.catalog, s.demandMult()))
}

func TestRiskSynergyScalesEffectiveRiskOnly(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(10_000_000)

	// Cold Wallet Custody: Aegis Security + Crypto Exchange, level 2, x0.8 risk.
	aegis := mustBuy(t, s, 9, now)
	exchange := mustBuy(t, s, 6, now)
	_, err := s.ToggleDarkSide(6, now)
	require.NoError(t, err)
	require.Equal(t, DarkInitialRisk, exchange.Risk)

	_, err = s.Upgrade(9, TrackProductivity, now)
	require.NoError(t, err)
	_, err = s.Upgrade(6, TrackProductivity, now)
	require.NoError(t, err)
	s.synergy.Recompute(s.portfolio)

	assert.Equal(t, int32(20), exchange.EffectiveRisk()) // 25 x 0.8
	assert.Equal(t, DarkInitialRisk, exchange.Risk)      // stored walk untouched
	assert.Equal(t, int32(10), aegis.EffectiveRisk())    // 12 x 0.8, stored value intact
	assert.Equal(t, int32(12), aegis.Risk)
}
