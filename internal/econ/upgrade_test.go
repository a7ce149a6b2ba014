package econ

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(DefaultCatalog(testLogger()), testLogger())
	s.eventProb = 0
	return s
}

func mustBuy(t *testing.T, s *Session, templateID int64, now time.Time) *Business {
	t.Helper()
	_, err := s.BuyBusiness(templateID, now)
	require.NoError(t, err)
	b, ok := s.portfolio.Get(templateID)
	require.True(t, ok)
	return b
}

func TestProductivityUpgradeCostAndIncome(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(1_000_000)

	// EV Platform: base income 10_000/h, base upgrade cost 15_000.
	b := mustBuy(t, s, 2, now)
	require.Equal(t, coins(10_000), b.IncomePerHourMicros(s.catalog, 1))

	cost, err := s.UpgradeCost(2, TrackProductivity)
	require.NoError(t, err)
	assert.Equal(t, coins(15_000), cost)

	before := s.player.BalanceMicros
	view, err := s.Upgrade(2, TrackProductivity, now)
	require.NoError(t, err)
	assert.Equal(t, before-coins(15_000), s.player.BalanceMicros)
	assert.Equal(t, coins(13_000), view.IncomePerHourMicros)

	cost, err = s.UpgradeCost(2, TrackProductivity)
	require.NoError(t, err)
	assert.Equal(t, coins(37_500), cost)

	view, err = s.Upgrade(2, TrackProductivity, now)
	require.NoError(t, err)
	assert.Equal(t, coins(16_000), view.IncomePerHourMicros)
}

func TestIncomeRecomputationHasNoPathDrift(t *testing.T) {
	now := time.Now()

	incremental := newTestSession(t)
	incremental.player.BalanceMicros = coins(10_000_000)
	bInc := mustBuy(t, incremental, 2, now)
	for i := 0; i < 4; i++ {
		_, err := incremental.Upgrade(2, TrackProductivity, now)
		require.NoError(t, err)
	}

	replayed := newTestSession(t)
	replayed.player.BalanceMicros = coins(10_000_000)
	bRep := mustBuy(t, replayed, 2, now)
	bRep.UpgradeLevels[TrackProductivity] = bInc.UpgradeLevels[TrackProductivity]

	assert.Equal(t,
		bRep.IncomePerHourMicros(replayed.catalog, 1),
		bInc.IncomePerHourMicros(incremental.catalog, 1))
}

func TestUpgradeMaxLevelIsTerminal(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(100_000_000)
	mustBuy(t, s, 1, now)

	for i := 0; i < 4; i++ {
		_, err := s.Upgrade(1, TrackProductivity, now)
		require.NoError(t, err)
	}
	_, err := s.Upgrade(1, TrackProductivity, now)
	assert.ErrorIs(t, err, ErrMaxLevel)
}

func TestUpgradeInsufficientFunds(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(70_000)
	mustBuy(t, s, 1, now)

	s.player.BalanceMicros = coins(1_000) // below the 8_000 upgrade cost
	_, err := s.Upgrade(1, TrackProductivity, now)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestAutomationReducesWorkersWithFloor(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(100_000_000)

	// EV Platform has 40 base workers.
	b := mustBuy(t, s, 2, now)
	require.Equal(t, int32(40), b.Workers())

	_, err := s.Upgrade(2, TrackAutomation, now)
	require.NoError(t, err)
	assert.Equal(t, int32(30), b.Workers()) // 40 x 0.75

	for i := 0; i < 3; i++ {
		_, err := s.Upgrade(2, TrackAutomation, now)
		require.NoError(t, err)
	}
	// 40 x (1 - 0.25x4) would be zero; floor keeps one worker.
	assert.Equal(t, int32(1), b.Workers())
}

func TestQualityAndSecurityRiskSteps(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(100_000_000)

	b := mustBuy(t, s, 5, now) // Trading Desk, can go dark
	_, err := s.ToggleDarkSide(5, now)
	require.NoError(t, err)
	require.Equal(t, DarkInitialRisk, b.Risk)

	_, err = s.Upgrade(5, TrackQuality, now)
	require.NoError(t, err)
	assert.Equal(t, int32(20), b.Risk)

	_, err = s.Upgrade(5, TrackSecurity, now)
	require.NoError(t, err)
	assert.Equal(t, int32(12), b.Risk)

	// Steps never push below the floor.
	_, err = s.Upgrade(5, TrackSecurity, now)
	require.NoError(t, err)
	_, err = s.Upgrade(5, TrackSecurity, now)
	require.NoError(t, err)
	assert.Equal(t, MinUpgradeRisk, b.Risk)
}

func TestQualityRaisesQualityLevelForLightBusiness(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(100_000_000)

	b := mustBuy(t, s, 1, now)
	risk := b.Risk
	_, err := s.Upgrade(1, TrackQuality, now)
	require.NoError(t, err)
	assert.Equal(t, int32(1), b.QualityLevel)
	assert.Equal(t, risk, b.Risk)
}

func TestInnovationUnlocksFeaturesWithIncomeMultiplier(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(100_000_000)

	b := mustBuy(t, s, 2, now) // EV Platform: platform_launch is worth x1.6
	for i := 0; i < 3; i++ {
		_, err := s.Upgrade(2, TrackInnovation, now)
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{FeatureRapidPrototyping, FeaturePatentPortfolio, FeaturePlatformLaunch}, b.Features())
	// Only platform_launch maps to an income multiplier for this template;
	// the other tags are no-ops, not errors.
	assert.Equal(t, coins(16_000), b.IncomePerHourMicros(s.catalog, 1))
}

func TestUnknownTrackRejected(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(1_000_000)
	mustBuy(t, s, 1, now)

	_, err := s.Upgrade(1, Track(9), now)
	assert.ErrorIs(t, err, ErrUnknownTrack)
}
