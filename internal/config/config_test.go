package config

import (
	"testing"
	"time"
)

func TestLoad_AppEnvValidation(t *testing.T) {
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("UPTRACE_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_CacheTTLDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RosterCacheTTL != 5*time.Minute {
		t.Fatalf("unexpected RosterCacheTTL: %s", cfg.RosterCacheTTL)
	}
	if cfg.PredictionCacheTTL != time.Hour {
		t.Fatalf("unexpected PredictionCacheTTL: %s", cfg.PredictionCacheTTL)
	}
}

func TestLoad_CricketDataRetryBounds(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("CRICKET_DATA_RETRY_BASE_DELAY", "5s")
	t.Setenv("CRICKET_DATA_RETRY_MAX_DELAY", "1s")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when max delay is below base delay")
	}
}

func TestLoad_CricketDataDefaults(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.CricketDataMaxRetries != 3 {
		t.Fatalf("unexpected CricketDataMaxRetries: %d", cfg.CricketDataMaxRetries)
	}
	if cfg.CricketDataRetryBaseDelay != time.Second {
		t.Fatalf("unexpected CricketDataRetryBaseDelay: %s", cfg.CricketDataRetryBaseDelay)
	}
	if cfg.CricketDataRetryMaxDelay != 10*time.Second {
		t.Fatalf("unexpected CricketDataRetryMaxDelay: %s", cfg.CricketDataRetryMaxDelay)
	}
	if !cfg.CricketDataCircuitEnabled {
		t.Fatalf("expected circuit breaker enabled by default")
	}
}

func TestLoad_APIKeyRequiredInProd(t *testing.T) {
	t.Setenv("APP_ENV", EnvProd)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("CRICKET_DATA_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when CRICKET_DATA_API_KEY is missing in prod")
	}
}

func TestLoad_ModelServerRequiresURLWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("MODEL_SERVER_ENABLED", "true")
	t.Setenv("MODEL_SERVER_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when MODEL_SERVER_ENABLED=true without MODEL_SERVER_URL")
	}
}

func TestLoad_PyroscopeRequiresServerAddressWhenEnabled(t *testing.T) {
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("PYROSCOPE_ENABLED", "true")
	t.Setenv("PYROSCOPE_SERVER_ADDRESS", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when PYROSCOPE_ENABLED=true without PYROSCOPE_SERVER_ADDRESS")
	}
}
