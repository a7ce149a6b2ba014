package econ

import "time"

type ProjectView struct {
	Name             string    `json:"name"`
	StartedAt        time.Time `json:"started_at"`
	DurationHours    float64   `json:"duration_hours"`
	RewardMultiplier float64   `json:"reward_multiplier"`
	Progress         float64   `json:"progress"`
}

type BusinessView struct {
	TemplateID          int64            `json:"template_id"`
	Name                string           `json:"name"`
	Category            Category         `json:"category"`
	Level               int32            `json:"level"`
	IncomePerHourMicros int64            `json:"income_per_hour_micros"`
	Workers             int32            `json:"workers"`
	Risk                int32            `json:"risk"`
	Workload            int32            `json:"workload"`
	QualityLevel        int32            `json:"quality_level"`
	UpgradeLevels       map[string]int32 `json:"upgrade_levels"`
	Features            []string         `json:"features,omitempty"`
	Project             *ProjectView     `json:"project,omitempty"`
}

type EventView struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	DemandMult     float64   `json:"demand_mult"`
	InnovationMult float64   `json:"innovation_mult"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type StateView struct {
	Player     PlayerState    `json:"player"`
	Businesses []BusinessView `json:"businesses"`
	Event      *EventView     `json:"event,omitempty"`
	Synergies  []string       `json:"synergies,omitempty"`
	LastTick   time.Time      `json:"last_tick"`
}
