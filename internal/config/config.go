package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	CORS       CORSConfig
	Completion CompletionConfig
	Cache      CacheConfig
	Mapping    MappingConfig
	Scoring    ScoringConfig
	Ingest     IngestConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings for upload archival.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CompletionProviderConfig holds settings for a single completion provider.
type CompletionProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	VisionModel  string `mapstructure:"vision_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// CompletionConfig holds external completion/vision service settings with
// primary/secondary provider support.
type CompletionConfig struct {
	Primary   CompletionProviderConfig `mapstructure:"primary"`
	Secondary CompletionProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (c *CompletionConfig) SecondaryConfig() *CompletionProviderConfig {
	if c.Secondary.Provider != "" {
		return &c.Secondary
	}
	return nil
}

// CacheConfig holds AI mapping cache settings.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"` // memory | redis
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
}

// MappingConfig holds header-to-field mapping settings.
type MappingConfig struct {
	HeuristicThreshold float64 `mapstructure:"heuristic_threshold"`
	AIEnabled          bool    `mapstructure:"ai_enabled"`
	AIThreshold        float64 `mapstructure:"ai_threshold"`
}

// ScoringConfig holds the confidence-blend parameters. These were magic numbers
// in earlier revisions; they are configuration now.
type ScoringConfig struct {
	ConfidenceWeight   float64 `mapstructure:"confidence_weight"`
	CompletenessWeight float64 `mapstructure:"completeness_weight"`
	CriticalPenalty    float64 `mapstructure:"critical_penalty"`
	AIConfidenceCutoff float64 `mapstructure:"ai_confidence_cutoff"`
	AIMappingDiscount  float64 `mapstructure:"ai_mapping_discount"`
	ReviewThreshold    float64 `mapstructure:"review_threshold"`
	MinConfidence      float64 `mapstructure:"min_confidence"`
	OptionalCredit     float64 `mapstructure:"optional_credit"`
}

// IngestConfig holds document ingestion settings.
type IngestConfig struct {
	DateOrder   string `mapstructure:"date_order"` // MDY | DMY
	MaxErrorLen int    `mapstructure:"max_error_len"`
}

// Load reads configuration from environment variables with the SHIPSTREAM_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SHIPSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "shipstream")
	v.SetDefault("db.password", "shipstream_secret")
	v.SetDefault("db.name", "shipstream_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "shipstream-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 25)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Completion provider defaults
	v.SetDefault("completion.primary.provider", "openai")
	v.SetDefault("completion.primary.api_key", "")
	v.SetDefault("completion.primary.default_model", "gpt-4o-mini")
	v.SetDefault("completion.primary.vision_model", "gpt-4o")
	v.SetDefault("completion.primary.timeout_secs", 30)
	v.SetDefault("completion.secondary.provider", "")
	v.SetDefault("completion.secondary.api_key", "")
	v.SetDefault("completion.secondary.default_model", "")
	v.SetDefault("completion.secondary.vision_model", "")
	v.SetDefault("completion.secondary.timeout_secs", 30)

	// Cache defaults: one-week TTL per mapping entry
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "168h")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// Mapping defaults
	v.SetDefault("mapping.heuristic_threshold", 0.8)
	v.SetDefault("mapping.ai_enabled", true)
	v.SetDefault("mapping.ai_threshold", 0.7)

	// Scoring defaults
	v.SetDefault("scoring.confidence_weight", 0.7)
	v.SetDefault("scoring.completeness_weight", 0.3)
	v.SetDefault("scoring.critical_penalty", 0.2)
	v.SetDefault("scoring.ai_confidence_cutoff", 0.7)
	v.SetDefault("scoring.ai_mapping_discount", 0.9)
	v.SetDefault("scoring.review_threshold", 0.75)
	v.SetDefault("scoring.min_confidence", 0.1)
	v.SetDefault("scoring.optional_credit", 0.5)

	// Ingest defaults
	v.SetDefault("ingest.date_order", "MDY")
	v.SetDefault("ingest.max_error_len", 500)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                        "SHIPSTREAM_SERVER_PORT",
		"server.read_timeout":                "SHIPSTREAM_SERVER_READ_TIMEOUT",
		"server.write_timeout":               "SHIPSTREAM_SERVER_WRITE_TIMEOUT",
		"server.environment":                 "SHIPSTREAM_SERVER_ENVIRONMENT",
		"db.host":                            "SHIPSTREAM_DB_HOST",
		"db.port":                            "SHIPSTREAM_DB_PORT",
		"db.user":                            "SHIPSTREAM_DB_USER",
		"db.password":                        "SHIPSTREAM_DB_PASSWORD",
		"db.name":                            "SHIPSTREAM_DB_NAME",
		"db.sslmode":                         "SHIPSTREAM_DB_SSLMODE",
		"db.max_open":                        "SHIPSTREAM_DB_MAX_OPEN",
		"db.max_idle":                        "SHIPSTREAM_DB_MAX_IDLE",
		"s3.enabled":                         "SHIPSTREAM_S3_ENABLED",
		"s3.region":                          "SHIPSTREAM_S3_REGION",
		"s3.bucket":                          "SHIPSTREAM_S3_BUCKET",
		"s3.endpoint":                        "SHIPSTREAM_S3_ENDPOINT",
		"s3.access_key":                      "SHIPSTREAM_S3_ACCESS_KEY",
		"s3.secret_key":                      "SHIPSTREAM_S3_SECRET_KEY",
		"s3.max_file_size_mb":                "SHIPSTREAM_S3_MAX_FILE_SIZE_MB",
		"log.level":                          "SHIPSTREAM_LOG_LEVEL",
		"log.format":                         "SHIPSTREAM_LOG_FORMAT",
		"cors.allowed_origins":               "SHIPSTREAM_CORS_ALLOWED_ORIGINS",
		"completion.primary.provider":        "SHIPSTREAM_COMPLETION_PRIMARY_PROVIDER",
		"completion.primary.api_key":         "SHIPSTREAM_COMPLETION_PRIMARY_API_KEY",
		"completion.primary.default_model":   "SHIPSTREAM_COMPLETION_PRIMARY_DEFAULT_MODEL",
		"completion.primary.vision_model":    "SHIPSTREAM_COMPLETION_PRIMARY_VISION_MODEL",
		"completion.primary.timeout_secs":    "SHIPSTREAM_COMPLETION_PRIMARY_TIMEOUT_SECS",
		"completion.secondary.provider":      "SHIPSTREAM_COMPLETION_SECONDARY_PROVIDER",
		"completion.secondary.api_key":       "SHIPSTREAM_COMPLETION_SECONDARY_API_KEY",
		"completion.secondary.default_model": "SHIPSTREAM_COMPLETION_SECONDARY_DEFAULT_MODEL",
		"completion.secondary.vision_model":  "SHIPSTREAM_COMPLETION_SECONDARY_VISION_MODEL",
		"completion.secondary.timeout_secs":  "SHIPSTREAM_COMPLETION_SECONDARY_TIMEOUT_SECS",
		"cache.backend":                      "SHIPSTREAM_CACHE_BACKEND",
		"cache.ttl":                          "SHIPSTREAM_CACHE_TTL",
		"cache.redis_addr":                   "SHIPSTREAM_CACHE_REDIS_ADDR",
		"cache.redis_db":                     "SHIPSTREAM_CACHE_REDIS_DB",
		"mapping.heuristic_threshold":        "SHIPSTREAM_MAPPING_HEURISTIC_THRESHOLD",
		"mapping.ai_enabled":                 "SHIPSTREAM_MAPPING_AI_ENABLED",
		"mapping.ai_threshold":               "SHIPSTREAM_MAPPING_AI_THRESHOLD",
		"scoring.confidence_weight":          "SHIPSTREAM_SCORING_CONFIDENCE_WEIGHT",
		"scoring.completeness_weight":        "SHIPSTREAM_SCORING_COMPLETENESS_WEIGHT",
		"scoring.critical_penalty":           "SHIPSTREAM_SCORING_CRITICAL_PENALTY",
		"scoring.ai_confidence_cutoff":       "SHIPSTREAM_SCORING_AI_CONFIDENCE_CUTOFF",
		"scoring.ai_mapping_discount":        "SHIPSTREAM_SCORING_AI_MAPPING_DISCOUNT",
		"scoring.review_threshold":           "SHIPSTREAM_SCORING_REVIEW_THRESHOLD",
		"scoring.min_confidence":             "SHIPSTREAM_SCORING_MIN_CONFIDENCE",
		"scoring.optional_credit":            "SHIPSTREAM_SCORING_OPTIONAL_CREDIT",
		"ingest.date_order":                  "SHIPSTREAM_INGEST_DATE_ORDER",
		"ingest.max_error_len":               "SHIPSTREAM_INGEST_MAX_ERROR_LEN",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if SHIPSTREAM_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SHIPSTREAM_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Completion = CompletionConfig{
		Primary: CompletionProviderConfig{
			Provider:     v.GetString("completion.primary.provider"),
			APIKey:       v.GetString("completion.primary.api_key"),
			DefaultModel: v.GetString("completion.primary.default_model"),
			VisionModel:  v.GetString("completion.primary.vision_model"),
			TimeoutSecs:  v.GetInt("completion.primary.timeout_secs"),
		},
		Secondary: CompletionProviderConfig{
			Provider:     v.GetString("completion.secondary.provider"),
			APIKey:       v.GetString("completion.secondary.api_key"),
			DefaultModel: v.GetString("completion.secondary.default_model"),
			VisionModel:  v.GetString("completion.secondary.vision_model"),
			TimeoutSecs:  v.GetInt("completion.secondary.timeout_secs"),
		},
	}

	cfg.Cache = CacheConfig{
		Backend:   v.GetString("cache.backend"),
		TTL:       v.GetDuration("cache.ttl"),
		RedisAddr: v.GetString("cache.redis_addr"),
		RedisDB:   v.GetInt("cache.redis_db"),
	}

	cfg.Mapping = MappingConfig{
		HeuristicThreshold: v.GetFloat64("mapping.heuristic_threshold"),
		AIEnabled:          v.GetBool("mapping.ai_enabled"),
		AIThreshold:        v.GetFloat64("mapping.ai_threshold"),
	}

	cfg.Scoring = ScoringConfig{
		ConfidenceWeight:   v.GetFloat64("scoring.confidence_weight"),
		CompletenessWeight: v.GetFloat64("scoring.completeness_weight"),
		CriticalPenalty:    v.GetFloat64("scoring.critical_penalty"),
		AIConfidenceCutoff: v.GetFloat64("scoring.ai_confidence_cutoff"),
		AIMappingDiscount:  v.GetFloat64("scoring.ai_mapping_discount"),
		ReviewThreshold:    v.GetFloat64("scoring.review_threshold"),
		MinConfidence:      v.GetFloat64("scoring.min_confidence"),
		OptionalCredit:     v.GetFloat64("scoring.optional_credit"),
	}

	cfg.Ingest = IngestConfig{
		DateOrder:   strings.ToUpper(v.GetString("ingest.date_order")),
		MaxErrorLen: v.GetInt("ingest.max_error_len"),
	}

	return cfg, nil
}
