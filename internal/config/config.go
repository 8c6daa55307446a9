package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Search    SearchConfig
	Storage   StorageConfig
	Events    EventsConfig
	Telemetry TelemetryConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	// StoreBackend selects where tickets, customers, comments and files live: memory or postgres.
	StoreBackend string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// SearchConfig tunes the asynchronous tag search.
type SearchConfig struct {
	Delay time.Duration
	// TaskBackend selects the task registry: memory, redis or postgres.
	TaskBackend string
}

// StorageConfig selects where uploaded files are written.
type StorageConfig struct {
	Backend       string
	Dir           string
	PublicPrefix  string
	S3Endpoint    string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3UsePathMode bool
}

// EventsConfig holds the optional NATS forwarding target.
type EventsConfig struct {
	NATSURL       string
	SubjectPrefix string
}

// TelemetryConfig configures OTLP trace export.
type TelemetryConfig struct {
	OTLPEndpoint string
}

// Load reads configuration from environment variables, applying defaults where possible.
// When CONFIG_FILE points to a YAML file of KEY: value pairs those values act as
// defaults that real environment variables still override.
func Load() (*Config, error) {
	_ = godotenv.Load()

	src := source{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		values, err := readFileDefaults(path)
		if err != nil {
			return nil, err
		}
		src.file = values
	}

	redisDB, err := strconv.Atoi(src.get("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	searchDelay, err := time.ParseDuration(src.get("SEARCH_DELAY", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_DELAY: %w", err)
	}
	if searchDelay < 0 {
		return nil, fmt.Errorf("invalid SEARCH_DELAY: must not be negative")
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  src.get("APP_NAME", "servicedesk"),
			Env:                   src.get("APP_ENV", "development"),
			Host:                  src.get("APP_HOST", "0.0.0.0"),
			Port:                  src.get("APP_PORT", "3000"),
			Version:               src.get("APP_VERSION", "dev"),
			RequestTimeoutSeconds: src.getInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			StoreBackend:          strings.ToLower(src.get("STORE_BACKEND", "memory")),
		},
		Postgres: PostgresConfig{
			DSN:            src.get("POSTGRES_DSN", ""),
			MaxConns:       int32(src.getInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(src.getInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  src.getBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(src.getInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(src.getInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:      src.get("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  src.get("REDIS_PASSWORD", ""),
			DB:        redisDB,
			KeyPrefix: src.get("REDIS_KEY_PREFIX", "servicedesk:"),
		},
		Logger: LoggerConfig{
			Level: src.get("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             src.get("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: src.getInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Search: SearchConfig{
			Delay:       searchDelay,
			TaskBackend: strings.ToLower(src.get("TASK_BACKEND", "memory")),
		},
		Storage: StorageConfig{
			Backend:       strings.ToLower(src.get("STORAGE_BACKEND", "disk")),
			Dir:           src.get("STORAGE_DIR", "assets"),
			PublicPrefix:  src.get("STORAGE_PUBLIC_PREFIX", "/assets/"),
			S3Endpoint:    src.get("S3_ENDPOINT", ""),
			S3Region:      src.get("S3_REGION", "us-east-1"),
			S3Bucket:      src.get("S3_BUCKET", "servicedesk"),
			S3AccessKey:   src.get("S3_ACCESS_KEY", ""),
			S3SecretKey:   src.get("S3_SECRET_KEY", ""),
			S3UsePathMode: src.getBool("S3_FORCE_PATH_STYLE", true),
		},
		Events: EventsConfig{
			NATSURL:       src.get("NATS_URL", ""),
			SubjectPrefix: src.get("NATS_SUBJECT_PREFIX", "servicedesk"),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: src.get("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.App.StoreBackend {
	case "memory":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.App.StoreBackend)
	}
	switch c.Search.TaskBackend {
	case "memory", "redis":
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("TASK_BACKEND=postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("unknown TASK_BACKEND %q", c.Search.TaskBackend)
	}
	switch c.Storage.Backend {
	case "disk", "s3":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// AccessTokenTTL returns the lifetime of minted role tokens.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	if a.AccessTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

func readFileDefaults(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	values := map[string]string{}
	if err := yaml.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return values, nil
}

type source struct {
	file map[string]string
}

func (s source) get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if val, ok := s.file[key]; ok && val != "" {
		return val
	}
	return fallback
}

func (s source) getInt(key string, fallback int) int {
	val := s.get(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func (s source) getBool(key string, fallback bool) bool {
	val := s.get(key, "")
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
