package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type APIConfig struct {
	Addr          string
	DatabaseURL   string
	TickEvery     time.Duration
	EventProb     float64
	AutosaveEvery time.Duration
	SaveSlot      string
	SeedCatalog   bool
}

type CLIConfig struct {
	APIBaseURL string
	SavePath   string
}

// LoadAPIFromEnv reads the host configuration. DATABASE_URL is optional: a
// host without it runs purely in memory with local save files.
func LoadAPIFromEnv() APIConfig {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("MAGNATE_API_ADDR", ":8080")
	}

	return APIConfig{
		Addr:          addr,
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		TickEvery:     envDurationDefault("MAGNATE_TICK_EVERY", 5*time.Second),
		EventProb:     envFloatDefault("MAGNATE_EVENT_PROB", 0.01),
		AutosaveEvery: envDurationDefault("MAGNATE_AUTOSAVE_EVERY", time.Minute),
		SaveSlot:      envDefault("MAGNATE_SAVE_SLOT", "default"),
		SeedCatalog:   envBoolDefault("MAGNATE_SEED_CATALOG", true),
	}
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("MGT_API_BASE_URL", "http://localhost:8080"), "/"),
		SavePath:   strings.TrimSpace(os.Getenv("MGT_SAVE_PATH")),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envFloatDefault(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envBoolDefault(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
