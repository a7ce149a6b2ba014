package econ

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassiveIncomeAccrual(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(1_000_000)
	mustBuy(t, s, 2, t0) // 10_000/h

	s.Tick(t0)
	balance := s.player.BalanceMicros

	s.Tick(t0.Add(time.Hour))
	assert.Equal(t, balance+coins(10_000), s.player.BalanceMicros)

	// Sub-coin accrual: five seconds of 10_000/h is 13_888_888 micros, far
	// below one coin but never dropped.
	balance = s.player.BalanceMicros
	s.Tick(t0.Add(time.Hour + 5*time.Second))
	assert.Equal(t, balance+int64(13_888_888), s.player.BalanceMicros)
}

func TestDarkIncomeAccruesToCryptoBalance(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(1_000_000)
	mustBuy(t, s, 5, t0)
	_, err := s.ToggleDarkSide(5, t0)
	require.NoError(t, err)

	s.Tick(t0)
	balance := s.player.BalanceMicros
	crypto := s.player.CryptoBalanceMicros

	s.Tick(t0.Add(time.Hour))
	assert.Equal(t, balance, s.player.BalanceMicros)
	assert.Equal(t, crypto+coins(21_600), s.player.CryptoBalanceMicros)
}

func TestTickDriftHandledByWallClockSpan(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(1_000_000)
	mustBuy(t, s, 2, t0)

	s.Tick(t0)
	balance := s.player.BalanceMicros

	// Host paused for six hours: one late tick accrues the whole span.
	s.Tick(t0.Add(6 * time.Hour))
	assert.Equal(t, balance+coins(60_000), s.player.BalanceMicros)
}

func TestMarketEventActivationAndExpiry(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.rand = rand.New(rand.NewSource(3))
	s.SetEventProbability(1)

	s.Tick(t0)
	require.NotNil(t, s.event)
	firstID := s.event.ID
	assert.True(t, s.event.ExpiresAt.After(t0))

	// Expiry is checked against the stored timestamp and fully reverts the
	// event's effects, because they only enter through recomputation.
	s.SetEventProbability(0)
	s.Tick(s.event.ExpiresAt.Add(time.Second))
	assert.Nil(t, s.event)

	s.SetEventProbability(1)
	s.Tick(t0.Add(time.Hour))
	require.NotNil(t, s.event)
	assert.NotEqual(t, firstID, s.event.ID)
}

func TestEventDemandMultiplierAppliesAndReverts(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(1_000_000)
	b := mustBuy(t, s, 2, t0)

	s.event = &ActiveEvent{
		ID:        "test",
		Event:     MarketEvent{Name: "Consumer Boom", DemandMult: 1.35, InnovationMult: 1, Duration: 10 * time.Minute},
		StartedAt: t0,
		ExpiresAt: t0.Add(10 * time.Minute),
	}
	assert.Equal(t, coins(13_500), b.IncomePerHourMicros(s.catalog, s.demandMult()))

	s.Tick(t0.Add(11 * time.Minute))
	assert.Nil(t, s.event)
	assert.Equal(t, coins(10_000), b.IncomePerHourMicros(s.catalog, s.demandMult()))
}

func TestEventInnovationMultiplierScalesProjectReward(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(1_000_000)
	mustBuy(t, s, 2, t0)
	_, err := s.StartProject(2, "Battery Research", t0)
	require.NoError(t, err)

	s.event = &ActiveEvent{
		ID:        "expo",
		Event:     MarketEvent{Name: "Tech Expo", DemandMult: 1.1, InnovationMult: 2, Duration: 500 * time.Hour},
		StartedAt: t0,
		ExpiresAt: t0.Add(500 * time.Hour),
	}
	s.Tick(t0.Add(48 * time.Hour))
	assert.Equal(t, int64(2*ProjectInnovationReward), s.player.InnovationPoints)
}
