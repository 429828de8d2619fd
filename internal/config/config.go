package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"devstudio/internal/game"
)

type ServerConfig struct {
	Addr             string
	DatabaseURL      string
	FrameInterval    time.Duration
	PersistSchedule  string
	Seed             int64
	StartSpeed       int
	GameDaysPerSec   float64
	MarketVolatility string
	RestoreSnapshot  bool
	LogLevel         slog.Level
}

type CLIConfig struct {
	APIBaseURL     string
	SavePath       string
	GameDaysPerSec float64
	LogLevel       slog.Level
}

// LoadServerFromEnv reads the server settings. A .env file in the working directory is loaded first
// when present; real environment variables win.
func LoadServerFromEnv() (ServerConfig, error) {
	_ = godotenv.Load()

	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("STUDIO_ADDR", ":8080")
	}

	cfg := ServerConfig{
		Addr:             addr,
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		FrameInterval:    envDurationDefault("STUDIO_FRAME_INTERVAL", 16*time.Millisecond),
		PersistSchedule:  envDefault("STUDIO_PERSIST_SCHEDULE", "@every 30s"),
		Seed:             envInt64Default("STUDIO_SEED", 0),
		StartSpeed:       envIntDefault("STUDIO_START_SPEED", 1),
		GameDaysPerSec:   envFloatDefault("STUDIO_GAME_DAYS_PER_SECOND", 1.0),
		MarketVolatility: envVolatilityDefault(),
		RestoreSnapshot:  envBoolDefault("STUDIO_RESTORE_SNAPSHOT", true),
		LogLevel:         ParseLogLevel(os.Getenv("STUDIO_LOG_LEVEL")),
	}
	if cfg.FrameInterval <= 0 {
		return cfg, fmt.Errorf("STUDIO_FRAME_INTERVAL must be positive")
	}
	if cfg.StartSpeed < 0 {
		return cfg, fmt.Errorf("STUDIO_START_SPEED must be >= 0")
	}
	if cfg.GameDaysPerSec <= 0 {
		return cfg, fmt.Errorf("STUDIO_GAME_DAYS_PER_SECOND must be positive")
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	_ = godotenv.Load()
	return CLIConfig{
		APIBaseURL:     strings.TrimRight(envDefault("STUDIO_API_BASE_URL", "http://localhost:8080"), "/"),
		SavePath:       envDefault("STUDIO_SAVE_PATH", defaultSavePath()),
		GameDaysPerSec: envFloatDefault("STUDIO_GAME_DAYS_PER_SECOND", 1.0),
		LogLevel:       ParseLogLevel(envDefault("STUDIO_LOG_LEVEL", "warn")),
	}
}

// GameConfig is the simulation config for this server.
func (c ServerConfig) GameConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.GameDaysPerRealSecond = c.GameDaysPerSec
	cfg.VolatilityScale = game.VolatilityScale(c.MarketVolatility)
	return cfg
}

func (c CLIConfig) GameConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.GameDaysPerRealSecond = c.GameDaysPerSec
	return cfg
}

func ParseLogLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSavePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".devstudio", "save.json")
	}
	return filepath.Join(home, ".devstudio", "save.json")
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

func envIntDefault(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envVolatilityDefault() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STUDIO_MARKET_VOLATILITY")))
	switch v {
	case "calm", "normal", "wild":
		return v
	default:
		return "normal"
	}
}
