package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/riskibarqy/fpl-dataset/internal/platform/logging"
)

const (
	StoreBackendFS = "fs"
	StoreBackendS3 = "s3"
)

// Config stores runtime configuration for the pipeline.
type Config struct {
	AppEnv         string `validate:"required,oneof=dev stage prod"`
	ServiceName    string `validate:"required"`
	ServiceVersion string
	LogLevel       logging.Level
	LogFormat      logging.Format

	DataDir      string `validate:"required"`
	StoreBackend string `validate:"oneof=fs s3"`
	S3Bucket     string `validate:"required_if=StoreBackend s3"`
	S3Prefix     string
	S3Region     string `validate:"required_if=StoreBackend s3"`
	S3Endpoint   string `validate:"omitempty,url"`
	S3AccessKey  string
	S3SecretKey  string

	FPLBaseURL               string        `validate:"required,url"`
	FPLUserAgent             string        `validate:"required"`
	FPLTimeout               time.Duration `validate:"gt=0"`
	FPLMaxRetries            int           `validate:"gte=0,lte=10"`
	FPLCircuitEnabled        bool
	FPLCircuitFailureCount   int           `validate:"gte=1"`
	FPLCircuitOpenTimeout    time.Duration `validate:"gt=0"`
	FPLCircuitHalfOpenMaxReq int           `validate:"gte=1"`
	HistoryMaxWorkers        int           `validate:"gte=1,lte=32"`
	HistoryRequestInterval   time.Duration `validate:"gte=0"`
	RawArchiveEnabled        bool
	PostgresExportEnabled    bool
	DBURL                    string `validate:"required_if=PostgresExportEnabled true,required_if=RawArchiveEnabled true"`
	DBDisablePreparedBinary  bool
	ClickHouseExportEnabled  bool
	ClickHouseDSN            string `validate:"required_if=ClickHouseExportEnabled true"`
	UptraceEnabled           bool
	UptraceDSN               string `validate:"required_if=UptraceEnabled true"`
	PyroscopeEnabled         bool
	PyroscopeServerAddress   string `validate:"required_if=PyroscopeEnabled true"`
	PyroscopeAppName         string
	PyroscopeAuthToken       string
	PyroscopeBasicAuthUser   string
	PyroscopeBasicAuthPass   string
	PyroscopeUploadRate      time.Duration `validate:"gt=0"`
}

// Load reads the environment, after merging a .env file when one exists.
// Variables already set in the environment win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return fromEnv()
}

func fromEnv() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:                 appEnv,
		ServiceName:            strings.TrimSpace(getEnv("APP_SERVICE_NAME", "fpl-dataset")),
		ServiceVersion:         getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:               parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
		LogFormat:              logging.ParseFormat(getEnv("LOG_FORMAT", string(logging.FormatJSON))),
		DataDir:                strings.TrimSpace(getEnv("DATA_DIR", "data")),
		StoreBackend:           strings.ToLower(strings.TrimSpace(getEnv("STORE_BACKEND", StoreBackendFS))),
		S3Bucket:               strings.TrimSpace(getEnv("S3_BUCKET", "")),
		S3Prefix:               strings.Trim(strings.TrimSpace(getEnv("S3_PREFIX", "")), "/"),
		S3Region:               strings.TrimSpace(getEnv("S3_REGION", "auto")),
		S3Endpoint:             strings.TrimSpace(getEnv("S3_ENDPOINT", "")),
		S3AccessKey:            strings.TrimSpace(getEnv("S3_ACCESS_KEY_ID", "")),
		S3SecretKey:            strings.TrimSpace(getEnv("S3_SECRET_ACCESS_KEY", "")),
		FPLBaseURL:             strings.TrimSpace(getEnv("FPL_BASE_URL", "https://fantasy.premierleague.com/api")),
		FPLUserAgent:           strings.TrimSpace(getEnv("FPL_USER_AGENT", "fpl-dataset/1.0")),
		DBURL:                  getEnv("DB_URL", ""),
		ClickHouseDSN:          strings.TrimSpace(getEnv("CLICKHOUSE_DSN", "")),
		UptraceDSN:             strings.TrimSpace(getEnv("UPTRACE_DSN", "")),
		PyroscopeServerAddress: strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", "")),
		PyroscopeAuthToken:     strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPass: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
	}
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	durations := []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"FPL_TIMEOUT", "30s", &cfg.FPLTimeout},
		{"FPL_CIRCUIT_OPEN_TIMEOUT", "30s", &cfg.FPLCircuitOpenTimeout},
		{"HISTORY_REQUEST_INTERVAL", "250ms", &cfg.HistoryRequestInterval},
		{"PYROSCOPE_UPLOAD_RATE", "15s", &cfg.PyroscopeUploadRate},
	}
	for _, d := range durations {
		value, err := time.ParseDuration(getEnv(d.key, d.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = value
	}

	ints := []struct {
		key      string
		fallback int
		dst      *int
	}{
		{"FPL_MAX_RETRIES", 2, &cfg.FPLMaxRetries},
		{"FPL_CIRCUIT_FAILURE_COUNT", 5, &cfg.FPLCircuitFailureCount},
		{"FPL_CIRCUIT_HALF_OPEN_MAX_REQ", 1, &cfg.FPLCircuitHalfOpenMaxReq},
		{"HISTORY_MAX_WORKERS", 1, &cfg.HistoryMaxWorkers},
	}
	for _, i := range ints {
		value, err := getEnvAsInt(i.key, i.fallback)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", i.key, err)
		}
		*i.dst = value
	}

	bools := []struct {
		key      string
		fallback string
		dst      *bool
	}{
		{"FPL_CIRCUIT_ENABLED", "true", &cfg.FPLCircuitEnabled},
		{"RAW_ARCHIVE_ENABLED", "false", &cfg.RawArchiveEnabled},
		{"POSTGRES_EXPORT_ENABLED", "false", &cfg.PostgresExportEnabled},
		{"DB_DISABLE_PREPARED_BINARY_RESULT", "true", &cfg.DBDisablePreparedBinary},
		{"CLICKHOUSE_EXPORT_ENABLED", "false", &cfg.ClickHouseExportEnabled},
		{"UPTRACE_ENABLED", "false", &cfg.UptraceEnabled},
		{"PYROSCOPE_ENABLED", "false", &cfg.PyroscopeEnabled},
	}
	for _, b := range bools {
		value, err := strconv.ParseBool(getEnv(b.key, b.fallback))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", b.key, err)
		}
		*b.dst = value
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var configValidator = validator.New()

func validate(cfg Config) error {
	err := configValidator.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), describeTag(fe)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
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
