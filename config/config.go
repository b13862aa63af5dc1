package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/nations-cup/simulation"
	"github.com/Dosada05/nations-cup/squad"
	"github.com/Dosada05/nations-cup/storage"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"

	defaultMatchEventsStream = "tournament.matches.completed"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	StorageDriver   string
	DatabaseURL     string
	ServerPort      int
	LogLevel        slog.Level
	ShutdownTimeout time.Duration

	SquadPolicy squad.QuotaPolicy
	Simulation  simulation.Config
	// RandomSeed фиксирует жеребьевку и симуляцию; nil означает случайный seed.
	RandomSeed *int64

	RedisURL          string
	MatchEventsStream string

	R2 storage.CloudflareR2UploaderConfig

	CORSAllowedOrigins []string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		StorageDriver:     envOr("STORAGE_DRIVER", StoragePostgres),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisURL:          os.Getenv("REDIS_URL"),
		MatchEventsStream: envOr("MATCH_EVENTS_STREAM", defaultMatchEventsStream),
		R2: storage.CloudflareR2UploaderConfig{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
			BucketName:      os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
		},
		CORSAllowedOrigins: splitList(envOr("CORS_ALLOWED_ORIGINS", "*")),
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			collect(errors.New("DATABASE_URL environment variable is not set"))
		}
	case StorageMemory:
	default:
		collect(fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMemory, cfg.StorageDriver))
	}

	port, err := intEnv("SERVER_PORT", 8080)
	collect(err)
	if err == nil && (port <= 0 || port > 65535) {
		collect(fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port))
	}
	cfg.ServerPort = port

	if err := cfg.LogLevel.UnmarshalText([]byte(envOr("LOG_LEVEL", "info"))); err != nil {
		collect(fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}

	shutdown, err := durationEnv("SHUTDOWN_TIMEOUT", 15*time.Second)
	collect(err)
	cfg.ShutdownTimeout = shutdown

	policy, err := squad.PolicyByName(os.Getenv("SQUAD_POLICY"))
	collect(err)
	cfg.SquadPolicy = policy

	if raw := os.Getenv("RANDOM_SEED"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			collect(fmt.Errorf("invalid RANDOM_SEED environment variable: %w", err))
		} else {
			cfg.RandomSeed = &seed
		}
	}

	sim := simulation.DefaultConfig()
	sim.GoalProbability, err = floatEnv("SIM_GOAL_PROBABILITY", sim.GoalProbability)
	collect(err)
	sim.ExtraTimeGoalProbability, err = floatEnv("SIM_EXTRA_TIME_GOAL_PROBABILITY", sim.ExtraTimeGoalProbability)
	collect(err)
	sim.PenaltySuccess, err = floatEnv("SIM_PENALTY_SUCCESS", sim.PenaltySuccess)
	collect(err)
	sim.Weighting = simulation.Weighting(envOr("SIM_WEIGHTING", string(sim.Weighting)))
	collect(sim.Validate())
	cfg.Simulation = sim

	if cfg.R2.Enabled() {
		collect(cfg.R2.Validate())
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// ArchiveEnabled сообщает, настроена ли выгрузка отчетов в R2.
func (c *Config) ArchiveEnabled() bool {
	return c.R2.Enabled()
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
