package savefile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"magnate/internal/econ"
)

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")

	_, found, err := Load(path)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slot", "save.json")

	snap := econ.Snapshot{
		SavedAt: time.Now().UTC().Truncate(time.Second),
		Player:  econ.PlayerState{BalanceMicros: econ.CoinsToMicros(1234.5), Reputation: 42},
		Businesses: []econ.BusinessSnapshot{
			{
				TemplateID:       2,
				Category:         econ.CategoryLight,
				Level:            3,
				UpgradeLevels:    map[econ.Track]int32{econ.TrackProductivity: 3},
				CompletedRewards: 1.6,
				Features:         []string{econ.FeatureRapidPrototyping},
			},
		},
	}
	require.NoError(t, Save(path, snap))

	got, found, err := Load(path)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, snap.Player, got.Player)
	require.Len(t, got.Businesses, 1)
	assert.Equal(t, snap.Businesses[0], got.Businesses[0])
	assert.True(t, snap.SavedAt.Equal(got.SavedAt))
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	require.NoError(t, Save(path, econ.Snapshot{SavedAt: time.Now()}))

	// Overwrite with garbage.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, _, err := Load(path)
	assert.Error(t, err)
}
