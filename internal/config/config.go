// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"electional-engine/internal/domain"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Storage     StorageConfig
	NATS        NATSConfig
	Generator   GeneratorConfig
	Mercury     MercuryConfig
	Location    domain.Location
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the stores. Empty values disable a backend.
type StorageConfig struct {
	PostgresDSN   string
	ClickHouseDSN string
	SQLitePath    string
}

// NATSConfig holds NATS configuration. An empty URL disables publishing.
type NATSConfig struct {
	URL            string
	Prefix         string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// GeneratorConfig holds optimal timing scan settings
type GeneratorConfig struct {
	HousesThreshold     float64
	AspectsThreshold    float64
	ElectionalThreshold float64
	MaxPerDay           int
	MinScore            int
	Verbose             bool
}

// MercuryConfig adds retrograde periods past the built-in table.
type MercuryConfig struct {
	Periods    []domain.DateRange
	HorizonEnd time.Time
}

// Thresholds returns the per-method minimum scores.
func (g GeneratorConfig) Thresholds() map[domain.TimingMethod]float64 {
	return map[domain.TimingMethod]float64{
		domain.MethodHouses:     g.HousesThreshold,
		domain.MethodAspects:    g.AspectsThreshold,
		domain.MethodElectional: g.ElectionalThreshold,
	}
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	mercury, mercuryErr := loadMercury()

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			PostgresDSN:   getEnv("POSTGRES_DSN", ""),
			ClickHouseDSN: getEnv("CLICKHOUSE_DSN", ""),
			SQLitePath:    getEnv("SQLITE_PATH", ""),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", ""),
			Prefix:         getEnv("NATS_SUBJECT_PREFIX", "electional"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Generator: GeneratorConfig{
			HousesThreshold:     getEnvAsFloat("GENERATOR_HOUSES_THRESHOLD", 0.3),
			AspectsThreshold:    getEnvAsFloat("GENERATOR_ASPECTS_THRESHOLD", 0.2),
			ElectionalThreshold: getEnvAsFloat("GENERATOR_ELECTIONAL_THRESHOLD", 0.3),
			MaxPerDay:           getEnvAsInt("GENERATOR_MAX_PER_DAY", 3),
			MinScore:            getEnvAsInt("GENERATOR_MIN_SCORE", 3),
			Verbose:             getEnvAsBool("GENERATOR_VERBOSE", false),
		},
		Mercury: mercury,
		Location: domain.Location{
			Latitude:  getEnvAsFloat("DEFAULT_LATITUDE", 40.7128),
			Longitude: getEnvAsFloat("DEFAULT_LONGITUDE", -74.0060),
		},
	}

	if mercuryErr != nil {
		return config, mercuryErr
	}
	return config, validate(config)
}

// loadMercury reads MERCURY_RETROGRADE_PERIODS as comma separated
// start/end date pairs (2028-01-24/2028-02-14) and MERCURY_HORIZON_END. The
// horizon defaults to the end of the last period.
func loadMercury() (MercuryConfig, error) {
	var m MercuryConfig
	for _, pair := range getEnvAsSlice("MERCURY_RETROGRADE_PERIODS", nil) {
		start, end, ok := strings.Cut(pair, "/")
		if !ok {
			return m, fmt.Errorf("mercury period %q: want start/end", pair)
		}
		r, err := parseRange(strings.TrimSpace(start), strings.TrimSpace(end))
		if err != nil {
			return m, fmt.Errorf("mercury period %q: %w", pair, err)
		}
		m.Periods = append(m.Periods, r)
		if r.End.After(m.HorizonEnd) {
			m.HorizonEnd = r.End
		}
	}
	if v := getEnv("MERCURY_HORIZON_END", ""); v != "" {
		end, err := time.Parse(domain.DateLayout, v)
		if err != nil {
			return m, fmt.Errorf("mercury horizon end: %w", err)
		}
		if end.Before(m.HorizonEnd) {
			return m, fmt.Errorf("mercury horizon end %s precedes the last period", v)
		}
		m.HorizonEnd = end
	}
	return m, nil
}

func parseRange(start, end string) (domain.DateRange, error) {
	s, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		return domain.DateRange{}, err
	}
	e, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		return domain.DateRange{}, err
	}
	if e.Before(s) {
		return domain.DateRange{}, fmt.Errorf("end %s before start %s", end, start)
	}
	return domain.DateRange{Start: s, End: e}, nil
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", config.Server.Port)
	}
	for m, v := range config.Generator.Thresholds() {
		if v < 0 {
			return fmt.Errorf("%s threshold must not be negative", m)
		}
	}
	if config.Generator.MaxPerDay < 1 {
		return fmt.Errorf("generator max per day must be at least 1")
	}
	if config.Generator.MinScore < 1 || config.Generator.MinScore > 10 {
		return fmt.Errorf("generator min score %d outside 1-10", config.Generator.MinScore)
	}
	if !config.Location.IsValid() {
		return fmt.Errorf("default location %.4f,%.4f out of range", config.Location.Latitude, config.Location.Longitude)
	}
	if config.Environment == "production" && config.Storage.PostgresDSN == "" && config.Storage.SQLitePath == "" {
		return fmt.Errorf("production requires POSTGRES_DSN or SQLITE_PATH")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
