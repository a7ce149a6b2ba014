package econ

import (
	"errors"
	"math"
)

const (
	MicrosPerCoin = int64(1_000_000)

	StarterBalanceMicros = int64(250_000) * MicrosPerCoin

	// Dark-side transition constants. The income multiplier is the
	// canonical value for the irreversible light->dark reclassification.
	DarkIncomeMultiplier  = 1.8
	DarkInitialRisk       = int32(25)
	DarkReputationPenalty = int32(20)
	DarkRiskLevelStep     = int32(15)

	MinUpgradeRisk = int32(5)

	// Innovation points credited when a project completes.
	ProjectInnovationReward = int64(25)
)

var (
	ErrUnknownBusiness   = errors.New("business not owned")
	ErrUnknownTemplate   = errors.New("unknown business template")
	ErrAlreadyOwned      = errors.New("business already owned")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMaxLevel          = errors.New("upgrade track already at max level")
	ErrUnknownTrack      = errors.New("unknown upgrade track")
	ErrAlreadyRunning    = errors.New("a project is already running for this business")
	ErrUnknownProject    = errors.New("project not offered by this business")
	ErrNoActiveProject   = errors.New("no active project")
	ErrNotEligible       = errors.New("business cannot go dark")
	ErrAlreadyDark       = errors.New("business is already dark")
)

func CoinsToMicros(v float64) int64 {
	return int64(math.Round(v * float64(MicrosPerCoin)))
}

func MicrosToCoins(v int64) float64 {
	return float64(v) / float64(MicrosPerCoin)
}

func coins(v int64) int64 {
	return v * MicrosPerCoin
}

func clampInt32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
