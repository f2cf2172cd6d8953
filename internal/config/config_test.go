package config

import (
	"testing"
	"time"

	"electional-engine/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.Generator.MaxPerDay != 3 {
		t.Errorf("max per day = %d, want 3", cfg.Generator.MaxPerDay)
	}
	if cfg.Generator.MinScore != 3 {
		t.Errorf("min score = %d, want 3", cfg.Generator.MinScore)
	}
	th := cfg.Generator.Thresholds()
	if th[domain.MethodHouses] != 0.3 || th[domain.MethodAspects] != 0.2 || th[domain.MethodElectional] != 0.3 {
		t.Errorf("unexpected thresholds %v", th)
	}
	if cfg.NATS.URL != "" || cfg.Storage.PostgresDSN != "" {
		t.Error("external services must be disabled by default")
	}
	if cfg.NATS.Prefix != "electional" {
		t.Errorf("prefix = %s", cfg.NATS.Prefix)
	}
	if len(cfg.Mercury.Periods) != 0 || !cfg.Mercury.HorizonEnd.IsZero() {
		t.Errorf("mercury = %+v, want no extension", cfg.Mercury)
	}
}

func TestLoad_MercuryPeriods(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("MERCURY_RETROGRADE_PERIODS", "2028-01-24/2028-02-14, 2028-05-21/2028-06-13")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cfg.Mercury.Periods) != 2 {
		t.Fatalf("periods = %d, want 2", len(cfg.Mercury.Periods))
	}
	if got := cfg.Mercury.Periods[1].Start.Format(domain.DateLayout); got != "2028-05-21" {
		t.Errorf("second period starts %s", got)
	}
	if got := cfg.Mercury.HorizonEnd.Format(domain.DateLayout); got != "2028-06-13" {
		t.Errorf("horizon end = %s, want the last period end", got)
	}

	t.Setenv("MERCURY_HORIZON_END", "2028-12-31")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := cfg.Mercury.HorizonEnd.Format(domain.DateLayout); got != "2028-12-31" {
		t.Errorf("horizon end = %s, want 2028-12-31", got)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("GENERATOR_ASPECTS_THRESHOLD", "0.5")
	t.Setenv("GENERATOR_VERBOSE", "true")
	t.Setenv("SQLITE_PATH", "/tmp/events.db")
	t.Setenv("SERVER_HOST", "127.0.0.1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if len(cfg.Server.CorsOrigins) != 2 || cfg.Server.CorsOrigins[1] != "http://b.test" {
		t.Errorf("cors origins = %v", cfg.Server.CorsOrigins)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("read timeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Generator.AspectsThreshold != 0.5 || !cfg.Generator.Verbose {
		t.Errorf("generator = %+v", cfg.Generator)
	}
	if cfg.Storage.SQLitePath != "/tmp/events.db" {
		t.Errorf("sqlite path = %s", cfg.Storage.SQLitePath)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "not-a-port")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected defaults, got %+v", cfg.Server)
	}
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}},
		{"negative threshold", map[string]string{"GENERATOR_HOUSES_THRESHOLD": "-1"}},
		{"zero per day", map[string]string{"GENERATOR_MAX_PER_DAY": "0"}},
		{"min score above scale", map[string]string{"GENERATOR_MIN_SCORE": "11"}},
		{"bad latitude", map[string]string{"DEFAULT_LATITUDE": "95"}},
		{"production without store", map[string]string{"APP_ENV": "production"}},
		{"mercury period without end", map[string]string{"MERCURY_RETROGRADE_PERIODS": "2028-01-24"}},
		{"mercury period reversed", map[string]string{"MERCURY_RETROGRADE_PERIODS": "2028-02-14/2028-01-24"}},
		{"mercury horizon before period", map[string]string{
			"MERCURY_RETROGRADE_PERIODS": "2028-01-24/2028-02-14",
			"MERCURY_HORIZON_END":        "2027-12-31",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
