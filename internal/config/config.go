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
	Worker     WorkerConfig
	Queue      QueueConfig
	Extraction ExtractionConfig
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

// S3Config holds object storage settings for source document files.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
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

// WorkerProviderConfig holds settings for a single LLM worker backend.
type WorkerProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	APIURL      string `mapstructure:"api_url"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// WorkerConfig holds LLM worker settings with primary/secondary backends.
type WorkerConfig struct {
	Primary   WorkerProviderConfig `mapstructure:"primary"`
	Secondary WorkerProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary worker config, or nil if not configured.
func (w *WorkerConfig) SecondaryConfig() *WorkerProviderConfig {
	if w.Secondary.Provider != "" {
		return &w.Secondary
	}
	return nil
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	PollIntervalSecs int `mapstructure:"poll_interval_secs"`
	Concurrency      int `mapstructure:"concurrency"`
}

// ExtractionConfig holds retrieval and context-window knobs for the field
// extractors. Defaults match the reference extraction policy.
type ExtractionConfig struct {
	ArticleTopK        int `mapstructure:"article_top_k"`
	FieldTopK          int `mapstructure:"field_top_k"`
	ArticleWindowChars int `mapstructure:"article_window_chars"`
	FieldWindowChars   int `mapstructure:"field_window_chars"`
	ContextSections    int `mapstructure:"context_sections"`
}

// Load reads configuration from environment variables with the REGINTEL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REGINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "regintel")
	v.SetDefault("db.password", "regintel_secret")
	v.SetDefault("db.name", "regintel_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "eu-west-1")
	v.SetDefault("s3.bucket", "regintel-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Worker defaults: hosted OpenAI-compatible endpoint as primary,
	// local Ollama as secondary.
	v.SetDefault("worker.primary.provider", "openai")
	v.SetDefault("worker.primary.api_url", "")
	v.SetDefault("worker.primary.api_key", "")
	v.SetDefault("worker.primary.model", "nvidia/nemotron-3-8b-instruct")
	v.SetDefault("worker.primary.timeout_secs", 120)
	v.SetDefault("worker.secondary.provider", "")
	v.SetDefault("worker.secondary.api_url", "http://localhost:11434")
	v.SetDefault("worker.secondary.api_key", "")
	v.SetDefault("worker.secondary.model", "qwen2.5:3b-instruct")
	v.SetDefault("worker.secondary.timeout_secs", 60)

	// Queue defaults
	v.SetDefault("queue.poll_interval_secs", 10)
	v.SetDefault("queue.concurrency", 2)

	// Extraction defaults
	v.SetDefault("extraction.article_top_k", 3)
	v.SetDefault("extraction.field_top_k", 5)
	v.SetDefault("extraction.article_window_chars", 500)
	v.SetDefault("extraction.field_window_chars", 800)
	v.SetDefault("extraction.context_sections", 3)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                     "REGINTEL_SERVER_PORT",
		"server.read_timeout":             "REGINTEL_SERVER_READ_TIMEOUT",
		"server.write_timeout":            "REGINTEL_SERVER_WRITE_TIMEOUT",
		"server.environment":              "REGINTEL_SERVER_ENVIRONMENT",
		"db.host":                         "REGINTEL_DB_HOST",
		"db.port":                         "REGINTEL_DB_PORT",
		"db.user":                         "REGINTEL_DB_USER",
		"db.password":                     "REGINTEL_DB_PASSWORD",
		"db.name":                         "REGINTEL_DB_NAME",
		"db.sslmode":                      "REGINTEL_DB_SSLMODE",
		"db.max_open":                     "REGINTEL_DB_MAX_OPEN",
		"db.max_idle":                     "REGINTEL_DB_MAX_IDLE",
		"s3.region":                       "REGINTEL_S3_REGION",
		"s3.bucket":                       "REGINTEL_S3_BUCKET",
		"s3.endpoint":                     "REGINTEL_S3_ENDPOINT",
		"s3.access_key":                   "REGINTEL_S3_ACCESS_KEY",
		"s3.secret_key":                   "REGINTEL_S3_SECRET_KEY",
		"s3.max_file_size_mb":             "REGINTEL_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":               "REGINTEL_S3_PRESIGN_EXPIRY",
		"log.level":                       "REGINTEL_LOG_LEVEL",
		"log.format":                      "REGINTEL_LOG_FORMAT",
		"cors.allowed_origins":            "REGINTEL_CORS_ALLOWED_ORIGINS",
		"worker.primary.provider":         "REGINTEL_WORKER_PRIMARY_PROVIDER",
		"worker.primary.api_url":          "REGINTEL_WORKER_PRIMARY_API_URL",
		"worker.primary.api_key":          "REGINTEL_WORKER_PRIMARY_API_KEY",
		"worker.primary.model":            "REGINTEL_WORKER_PRIMARY_MODEL",
		"worker.primary.timeout_secs":     "REGINTEL_WORKER_PRIMARY_TIMEOUT_SECS",
		"worker.secondary.provider":       "REGINTEL_WORKER_SECONDARY_PROVIDER",
		"worker.secondary.api_url":        "REGINTEL_WORKER_SECONDARY_API_URL",
		"worker.secondary.api_key":        "REGINTEL_WORKER_SECONDARY_API_KEY",
		"worker.secondary.model":          "REGINTEL_WORKER_SECONDARY_MODEL",
		"worker.secondary.timeout_secs":   "REGINTEL_WORKER_SECONDARY_TIMEOUT_SECS",
		"queue.poll_interval_secs":        "REGINTEL_QUEUE_POLL_INTERVAL_SECS",
		"queue.concurrency":               "REGINTEL_QUEUE_CONCURRENCY",
		"extraction.article_top_k":        "REGINTEL_EXTRACTION_ARTICLE_TOP_K",
		"extraction.field_top_k":          "REGINTEL_EXTRACTION_FIELD_TOP_K",
		"extraction.article_window_chars": "REGINTEL_EXTRACTION_ARTICLE_WINDOW_CHARS",
		"extraction.field_window_chars":   "REGINTEL_EXTRACTION_FIELD_WINDOW_CHARS",
		"extraction.context_sections":     "REGINTEL_EXTRACTION_CONTEXT_SECTIONS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if REGINTEL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("REGINTEL_SERVER_PORT") == "" {
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
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
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
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Worker = WorkerConfig{
		Primary: WorkerProviderConfig{
			Provider:    v.GetString("worker.primary.provider"),
			APIURL:      v.GetString("worker.primary.api_url"),
			APIKey:      v.GetString("worker.primary.api_key"),
			Model:       v.GetString("worker.primary.model"),
			TimeoutSecs: v.GetInt("worker.primary.timeout_secs"),
		},
		Secondary: WorkerProviderConfig{
			Provider:    v.GetString("worker.secondary.provider"),
			APIURL:      v.GetString("worker.secondary.api_url"),
			APIKey:      v.GetString("worker.secondary.api_key"),
			Model:       v.GetString("worker.secondary.model"),
			TimeoutSecs: v.GetInt("worker.secondary.timeout_secs"),
		},
	}

	cfg.Queue = QueueConfig{
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Extraction = ExtractionConfig{
		ArticleTopK:        v.GetInt("extraction.article_top_k"),
		FieldTopK:          v.GetInt("extraction.field_top_k"),
		ArticleWindowChars: v.GetInt("extraction.article_window_chars"),
		FieldWindowChars:   v.GetInt("extraction.field_window_chars"),
		ContextSections:    v.GetInt("extraction.context_sections"),
	}

	return cfg, nil
}
