package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glgenie/gl-genie/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	DBURL                   string
	DBDisablePreparedBinary bool
	CORSAllowedOrigins      []string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration

	RosterCacheTTL     time.Duration
	PredictionCacheTTL time.Duration
	ScoreWorkers       int

	CricketDataBaseURL            string
	CricketDataAPIKey             string
	CricketDataTimeout            time.Duration
	CricketDataMaxRetries         int
	CricketDataRetryBaseDelay     time.Duration
	CricketDataRetryMaxDelay      time.Duration
	CricketDataCircuitEnabled     bool
	CricketDataCircuitFailures    int
	CricketDataCircuitOpenTimeout time.Duration
	CricketDataCircuitHalfOpenReq int

	ModelServerEnabled    bool
	ModelServerURL        string
	ModelServerTimeout    time.Duration
	ModelServerMaxRetries int

	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
	LogLevel                   logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofAddr == "" {
		pprofAddr = ":6060"
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	rosterCacheTTL, err := time.ParseDuration(getEnv("ROSTER_CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROSTER_CACHE_TTL: %w", err)
	}
	if rosterCacheTTL <= 0 {
		return Config{}, fmt.Errorf("ROSTER_CACHE_TTL must be > 0")
	}
	predictionCacheTTL, err := time.ParseDuration(getEnv("PREDICTION_CACHE_TTL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTION_CACHE_TTL: %w", err)
	}
	if predictionCacheTTL <= 0 {
		return Config{}, fmt.Errorf("PREDICTION_CACHE_TTL must be > 0")
	}
	scoreWorkers, err := getEnvAsInt("SCORE_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse SCORE_WORKERS: %w", err)
	}
	if scoreWorkers < 1 {
		return Config{}, fmt.Errorf("SCORE_WORKERS must be >= 1")
	}

	cricketTimeout, err := time.ParseDuration(getEnv("CRICKET_DATA_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_DATA_TIMEOUT: %w", err)
	}
	if cricketTimeout <= 0 {
		return Config{}, fmt.Errorf("CRICKET_DATA_TIMEOUT must be > 0")
	}
	cricketMaxRetries, err := getEnvAsInt("CRICKET_DATA_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_DATA_MAX_RETRIES: %w", err)
	}
	if cricketMaxRetries < 1 {
		return Config{}, fmt.Errorf("CRICKET_DATA_MAX_RETRIES must be >= 1")
	}
	cricketRetryBaseDelay, err := time.ParseDuration(getEnv("CRICKET_DATA_RETRY_BASE_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_DATA_RETRY_BASE_DELAY: %w", err)
	}
	if cricketRetryBaseDelay <= 0 {
		return Config{}, fmt.Errorf("CRICKET_DATA_RETRY_BASE_DELAY must be > 0")
	}
	cricketRetryMaxDelay, err := time.ParseDuration(getEnv("CRICKET_DATA_RETRY_MAX_DELAY", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_DATA_RETRY_MAX_DELAY: %w", err)
	}
	if cricketRetryMaxDelay < cricketRetryBaseDelay {
		return Config{}, fmt.Errorf("CRICKET_DATA_RETRY_MAX_DELAY must be >= CRICKET_DATA_RETRY_BASE_DELAY")
	}
	cricketCircuitEnabled, err := strconv.ParseBool(getEnv("CRICKET_DATA_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_DATA_CIRCUIT_ENABLED: %w", err)
	}
	cricketCircuitFailures, err := getEnvAsInt("CRICKET_DATA_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_DATA_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if cricketCircuitFailures < 1 {
		return Config{}, fmt.Errorf("CRICKET_DATA_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	cricketCircuitOpenTimeout, err := time.ParseDuration(getEnv("CRICKET_DATA_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_DATA_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if cricketCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("CRICKET_DATA_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	cricketCircuitHalfOpenReq, err := getEnvAsInt("CRICKET_DATA_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse CRICKET_DATA_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if cricketCircuitHalfOpenReq < 1 {
		return Config{}, fmt.Errorf("CRICKET_DATA_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	modelServerEnabled, err := strconv.ParseBool(getEnv("MODEL_SERVER_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MODEL_SERVER_ENABLED: %w", err)
	}
	modelServerURL := strings.TrimSpace(getEnv("MODEL_SERVER_URL", ""))
	if modelServerEnabled && modelServerURL == "" {
		return Config{}, fmt.Errorf("MODEL_SERVER_URL is required when MODEL_SERVER_ENABLED=true")
	}
	modelServerTimeout, err := time.ParseDuration(getEnv("MODEL_SERVER_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MODEL_SERVER_TIMEOUT: %w", err)
	}
	if modelServerTimeout <= 0 {
		return Config{}, fmt.Errorf("MODEL_SERVER_TIMEOUT must be > 0")
	}
	modelServerMaxRetries, err := getEnvAsInt("MODEL_SERVER_MAX_RETRIES", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse MODEL_SERVER_MAX_RETRIES: %w", err)
	}
	if modelServerMaxRetries < 1 {
		return Config{}, fmt.Errorf("MODEL_SERVER_MAX_RETRIES must be >= 1")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "gl-genie-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:             readTimeout,
		WriteTimeout:            writeTimeout,

		RosterCacheTTL:     rosterCacheTTL,
		PredictionCacheTTL: predictionCacheTTL,
		ScoreWorkers:       scoreWorkers,

		CricketDataBaseURL:            strings.TrimSpace(getEnv("CRICKET_DATA_BASE_URL", "https://api.cricapi.com/v1")),
		CricketDataAPIKey:             strings.TrimSpace(getEnv("CRICKET_DATA_API_KEY", "")),
		CricketDataTimeout:            cricketTimeout,
		CricketDataMaxRetries:         cricketMaxRetries,
		CricketDataRetryBaseDelay:     cricketRetryBaseDelay,
		CricketDataRetryMaxDelay:      cricketRetryMaxDelay,
		CricketDataCircuitEnabled:     cricketCircuitEnabled,
		CricketDataCircuitFailures:    cricketCircuitFailures,
		CricketDataCircuitOpenTimeout: cricketCircuitOpenTimeout,
		CricketDataCircuitHalfOpenReq: cricketCircuitHalfOpenReq,

		ModelServerEnabled:    modelServerEnabled,
		ModelServerURL:        modelServerURL,
		ModelServerTimeout:    modelServerTimeout,
		ModelServerMaxRetries: modelServerMaxRetries,

		PprofEnabled:               pprofEnabled,
		PprofAddr:                  pprofAddr,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
		LogLevel:                   parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if appEnv == EnvProd && cfg.CricketDataAPIKey == "" {
		return Config{}, fmt.Errorf("CRICKET_DATA_API_KEY is required in prod")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
