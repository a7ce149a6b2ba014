package econ

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuyBusinessDebitsExactPrice(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)

	before := s.player.BalanceMicros
	view, err := s.BuyBusiness(1, now) // Coffee Collective, 60_000
	require.NoError(t, err)
	assert.Equal(t, before-coins(60_000), s.player.BalanceMicros)
	assert.Equal(t, "Coffee Collective", view.Name)
	assert.Equal(t, CategoryLight, view.Category)
	assert.Equal(t, int32(1), view.Level)
	assert.Equal(t, coins(4_000), view.IncomePerHourMicros)
}

func TestBuyBusinessErrors(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	mustBuy(t, s, 1, now)

	_, err := s.BuyBusiness(1, now)
	assert.ErrorIs(t, err, ErrAlreadyOwned)

	_, err = s.BuyBusiness(999, now)
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	s.player.BalanceMicros = coins(10)
	_, err = s.BuyBusiness(2, now)
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, coins(10), s.player.BalanceMicros)
}

func TestStateViewReflectsSession(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(10_000_000)
	mustBuy(t, s, 2, now)
	mustBuy(t, s, 10, now)
	_, err := s.Upgrade(2, TrackProductivity, now)
	require.NoError(t, err)
	_, err = s.Upgrade(10, TrackProductivity, now)
	require.NoError(t, err)
	_, err = s.StartProject(2, "Battery Research", now)
	require.NoError(t, err)

	view := s.State(now.Add(24 * time.Hour))
	require.Len(t, view.Businesses, 2)
	assert.Contains(t, view.Synergies, "Charging Corridor")

	var ev BusinessView
	for _, b := range view.Businesses {
		if b.TemplateID == 2 {
			ev = b
		}
	}
	require.NotNil(t, ev.Project)
	assert.InDelta(t, 50, ev.Project.Progress, 0.001)
	assert.Equal(t, int32(2), ev.UpgradeLevels["productivity"])
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(10_000_000)

	mustBuy(t, s, 2, t0)
	mustBuy(t, s, 5, t0)
	_, err := s.Upgrade(2, TrackProductivity, t0)
	require.NoError(t, err)
	_, err = s.StartProject(2, "Battery Research", t0)
	require.NoError(t, err)
	_, err = s.ToggleDarkSide(5, t0)
	require.NoError(t, err)

	t1 := t0.Add(24 * time.Hour)
	s.Tick(t0)
	s.Tick(t1)
	snap := s.Snapshot(t1)

	restored := newTestSession(t)
	require.NoError(t, restored.Restore(snap))

	assert.Equal(t, s.player, restored.player)
	require.Equal(t, s.portfolio.Len(), restored.portfolio.Len())

	ev, ok := restored.portfolio.Get(2)
	require.True(t, ok)
	assert.Equal(t, int32(2), ev.Level)
	assert.Equal(t, coins(13_000), ev.IncomePerHourMicros(restored.catalog, 1))
	require.NotNil(t, ev.ActiveProject)
	assert.Equal(t, t0, ev.ActiveProject.StartedAt)
	assert.InDelta(t, 50, restored.projects.Progress(ev, t1), 0.001)

	desk, ok := restored.portfolio.Get(5)
	require.True(t, ok)
	assert.Equal(t, CategoryDark, desk.Category)
}

func TestRestoreAccruesOfflineSpan(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.player.BalanceMicros = coins(1_000_000)
	mustBuy(t, s, 2, t0)
	s.Tick(t0)
	snap := s.Snapshot(t0)

	restored := newTestSession(t)
	require.NoError(t, restored.Restore(snap))
	balance := restored.player.BalanceMicros

	// Two hours passed between save and the first tick after load.
	restored.Tick(t0.Add(2 * time.Hour))
	assert.Equal(t, balance+coins(20_000), restored.player.BalanceMicros)
}

func TestRestoreSkipsUnknownTemplatesAndClamps(t *testing.T) {
	now := time.Now()
	s := newTestSession(t)

	snap := Snapshot{
		SavedAt: now,
		Player:  PlayerState{BalanceMicros: coins(500), Reputation: 40},
		Businesses: []BusinessSnapshot{
			{TemplateID: 999, Level: 3},
			{
				TemplateID:       1,
				Category:         CategoryLight,
				Level:            2,
				UpgradeLevels:    map[Track]int32{TrackProductivity: 9, TrackQuality: 0},
				Risk:             400,
				Workload:         -5,
				CompletedRewards: 0,
			},
		},
	}
	require.NoError(t, s.Restore(snap))

	assert.Equal(t, 1, s.portfolio.Len())
	b, ok := s.portfolio.Get(1)
	require.True(t, ok)
	assert.Equal(t, MaxTrackLevel, b.UpgradeLevels[TrackProductivity])
	assert.Equal(t, int32(1), b.UpgradeLevels[TrackQuality])
	assert.Equal(t, int32(100), b.Risk)
	assert.Equal(t, int32(0), b.Workload)
	assert.Equal(t, 1.0, b.CompletedRewards)
}

func TestSnapshotCarriesActiveEvent(t *testing.T) {
	t0 := time.Now()
	s := newTestSession(t)
	s.event = &ActiveEvent{
		ID:        "carry",
		Event:     marketEvents[0],
		StartedAt: t0,
		ExpiresAt: t0.Add(marketEvents[0].Duration),
	}

	snap := s.Snapshot(t0)
	restored := newTestSession(t)
	require.NoError(t, restored.Restore(snap))
	require.NotNil(t, restored.event)
	assert.Equal(t, "carry", restored.event.ID)
	assert.Equal(t, s.event.ExpiresAt, restored.event.ExpiresAt)

	// Stored expiry survives the reload: the event still ends on schedule.
	restored.Tick(s.event.ExpiresAt.Add(time.Second))
	assert.Nil(t, restored.event)
}
