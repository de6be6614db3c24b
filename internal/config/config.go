package config

import (
	"fmt"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Analysis    AnalysisConfig    `yaml:"analysis"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Profile     ProfileConfig     `yaml:"profile"`
	Wordbook    WordbookConfig    `yaml:"wordbook"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Tab-Id,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"127.0.0.1"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8765"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig holds wordbook storage settings.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"sqlite"`
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	SQLitePath      string        `yaml:"sqlite_path"        env:"DATABASE_SQLITE_PATH"        env-default:"./lexilens.db"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"10"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// Pronunciation sources.
const (
	PronunciationBackend  = "backend"
	PronunciationFreeDict = "freedict"
)

// AnalysisConfig holds settings of the remote analysis endpoint.
type AnalysisConfig struct {
	BaseURL             string        `yaml:"base_url"             env:"ANALYSIS_BASE_URL"             env-default:"http://localhost:8000"`
	StreamTimeout       time.Duration `yaml:"stream_timeout"       env:"ANALYSIS_STREAM_TIMEOUT"       env-default:"0s"`
	RequestTimeout      time.Duration `yaml:"request_timeout"      env:"ANALYSIS_REQUEST_TIMEOUT"      env-default:"30s"`
	DefaultLayers       []int         `yaml:"default_layers"       env:"ANALYSIS_DEFAULT_LAYERS"       env-default:"2,4"`
	PronunciationSource string        `yaml:"pronunciation_source" env:"ANALYSIS_PRONUNCIATION_SOURCE" env-default:"backend"`
	FreeDictURL         string        `yaml:"freedict_url"         env:"ANALYSIS_FREEDICT_URL"         env-default:"https://api.dictionaryapi.dev/api/v2/entries/en"`
}

// CoordinatorConfig holds selection capture and routing settings.
type CoordinatorConfig struct {
	DebounceWindow time.Duration `yaml:"debounce_window"    env:"COORDINATOR_DEBOUNCE_WINDOW"    env-default:"150ms"`
	WeakMaxLength  int           `yaml:"weak_max_length"    env:"COORDINATOR_WEAK_MAX_LENGTH"    env-default:"100"`
	ContextWindow  int           `yaml:"context_window"     env:"COORDINATOR_CONTEXT_WINDOW"     env-default:"500"`
	InboxSize      int           `yaml:"inbox_size"         env:"COORDINATOR_INBOX_SIZE"         env-default:"64"`
}

// ProfileConfig holds the learner profile. File, when set, points to a YAML
// profile that replaces the inline values.
type ProfileConfig struct {
	File             string   `yaml:"file"              env:"PROFILE_FILE"`
	ProficiencyLevel string   `yaml:"proficiency_level" env:"PROFILE_PROFICIENCY_LEVEL" env-default:"B1"`
	BlockedTopics    []string `yaml:"blocked_topics"    env:"PROFILE_BLOCKED_TOPICS"`
}

// WordbookConfig holds persistence settings.
type WordbookConfig struct {
	MaxSnapshots          int `yaml:"max_snapshots"           env:"WORDBOOK_MAX_SNAPSHOTS"           env-default:"5"`
	HistoryLimit          int `yaml:"history_limit"           env:"WORDBOOK_HISTORY_LIMIT"           env-default:"100"`
	RecentVocabularyLimit int `yaml:"recent_vocabulary_limit" env:"WORDBOOK_RECENT_VOCABULARY_LIMIT" env-default:"20"`
	SnapshotRetentionDays int `yaml:"snapshot_retention_days" env:"WORDBOOK_SNAPSHOT_RETENTION_DAYS" env-default:"180"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig holds per-client request limits for the page-facing routes.
type RateLimitConfig struct {
	SelectionsPerMinute int           `yaml:"selections_per_minute" env:"RATE_LIMIT_SELECTIONS_PER_MINUTE" env-default:"600"`
	Burst               int           `yaml:"burst"                 env:"RATE_LIMIT_BURST"                 env-default:"20"`
	CleanupInterval     time.Duration `yaml:"cleanup_interval"      env:"RATE_LIMIT_CLEANUP_INTERVAL"      env-default:"5m"`
}
