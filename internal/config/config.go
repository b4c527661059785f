// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (GEMINI_API_KEY, DATABASE_URL, COACHX_*)
//  2. Config file (~/.coachx/config.yaml or ./config.yaml)
//  3. Default values
//
// The Gemini API key is deliberately NOT validated here: a missing key must
// surface as an authentication error on the first generation call, not as a
// startup configuration error, so the API boundary can report it distinctly.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidTopP indicates the top_p value is out of range.
	ErrInvalidTopP = errors.New("invalid top_p")

	// ErrInvalidMaxTokens indicates a token budget is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidChunking indicates the chunk size/overlap combination is unusable.
	ErrInvalidChunking = errors.New("invalid chunking configuration")
)

const (
	// DefaultModelName is the Gemini model used for chat and plan generation.
	DefaultModelName = "gemini-2.5-flash"

	// DefaultEmbedderModel is the Gemini embedding model.
	// gemini-embedding-001 supports truncation to 768 dimensions via
	// OutputDimensionality; the knowledge_chunks schema uses vector(768).
	DefaultEmbedderModel = "gemini-embedding-001"
)

// TracingConfig holds OTLP trace exporter settings.
// Tracing is optional; when Endpoint is empty tracing stays disabled.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
	ServiceName string `mapstructure:"service_name" json:"service_name"`
	Environment string `mapstructure:"environment" json:"environment"`
}

// Config stores application configuration.
// SECURITY: sensitive fields are masked in MarshalJSON; never log the raw struct.
type Config struct {
	// AI model configuration
	ModelName     string  `mapstructure:"model_name" json:"model_name"`
	EmbedderModel string  `mapstructure:"embedder_model" json:"embedder_model"`
	GeminiAPIKey  string  `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON
	Temperature   float32 `mapstructure:"temperature" json:"temperature"`
	TopP          float32 `mapstructure:"top_p" json:"top_p"`
	TopK          float32 `mapstructure:"top_k" json:"top_k"`
	ChatMaxTokens int32   `mapstructure:"chat_max_tokens" json:"chat_max_tokens"`
	PlanMaxTokens int32   `mapstructure:"plan_max_tokens" json:"plan_max_tokens"`

	// Knowledge base ingestion
	KnowledgeDir string `mapstructure:"knowledge_dir" json:"knowledge_dir"`
	ChunkSize    int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Serve mode
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy  bool     `mapstructure:"trust_proxy" json:"trust_proxy"`
	RateBurst   int      `mapstructure:"rate_burst" json:"rate_burst"`

	// Observability
	Tracing TracingConfig `mapstructure:"tracing" json:"tracing"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".coachx")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, when set, wins over the individual postgres_* fields.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	// AI defaults (matching the Gemini decoding parameters used in production)
	v.SetDefault("model_name", DefaultModelName)
	v.SetDefault("embedder_model", DefaultEmbedderModel)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("top_p", 0.9)
	v.SetDefault("top_k", 40)
	v.SetDefault("chat_max_tokens", 4096)
	v.SetDefault("plan_max_tokens", 8192)

	// Knowledge base defaults
	v.SetDefault("knowledge_dir", "./knowledge_base")
	v.SetDefault("chunk_size", 500)
	v.SetDefault("chunk_overlap", 50)

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "coachx")
	v.SetDefault("postgres_password", "coachx_dev_password")
	v.SetDefault("postgres_db_name", "coachx")
	v.SetDefault("postgres_ssl_mode", "disable")

	// Serve defaults
	v.SetDefault("cors_origins", []string{"http://localhost:5173"})
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_burst", 10)

	// Tracing defaults (disabled until an endpoint is configured)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "coachx")
	v.SetDefault("tracing.environment", "dev")
}

// bindEnvVariables binds environment variables explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug, not a runtime error.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("model_name", "COACHX_MODEL_NAME")
	mustBind("embedder_model", "COACHX_EMBEDDER_MODEL")
	mustBind("knowledge_dir", "COACHX_KNOWLEDGE_DIR")
	mustBind("cors_origins", "COACHX_CORS_ORIGINS")
	mustBind("trust_proxy", "COACHX_TRUST_PROXY")
	mustBind("rate_burst", "COACHX_RATE_BURST")
	mustBind("tracing.endpoint", "COACHX_OTLP_ENDPOINT")
}

// Validate checks configuration ranges. It deliberately does not require
// GeminiAPIKey; see the package comment.
func (c *Config) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("%w: %v (must be 0.0-2.0)", ErrInvalidTemperature, c.Temperature)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("%w: %v (must be in (0, 1])", ErrInvalidTopP, c.TopP)
	}
	if c.ChatMaxTokens < 1 || c.PlanMaxTokens < 1 {
		return fmt.Errorf("%w: chat=%d plan=%d", ErrInvalidMaxTokens, c.ChatMaxTokens, c.PlanMaxTokens)
	}
	if c.ChunkSize < 1 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidChunking, c.ChunkSize, c.ChunkOverlap)
	}
	if c.PostgresHost == "" {
		return ErrInvalidPostgresHost
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	return nil
}

// ConnString returns the PostgreSQL connection URL for pgx and golang-migrate.
func (c *Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// parseDatabaseURL overrides the postgres_* fields from DATABASE_URL when set.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if h := u.Hostname(); h != "" {
		c.PostgresHost = h
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", p, err)
		}
		c.PostgresPort = port
	}
	if u.User != nil {
		if name := u.User.Username(); name != "" {
			c.PostgresUser = name
		}
		if pw, ok := u.User.Password(); ok {
			c.PostgresPassword = pw
		}
	}
	if db := strings.TrimPrefix(u.Path, "/"); db != "" {
		c.PostgresDBName = db
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.PostgresSSLMode = mode
	}
	return nil
}
