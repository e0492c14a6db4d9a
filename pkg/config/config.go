package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	CounterBackendPostgres = "postgres"
	CounterBackendRedis    = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Grading    GradingConfig
	Identifier IdentifierConfig
	Reports    ReportsConfig
	Notify     NotifyConfig
	Stats      StatsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GradingConfig holds the service-wide grading policy; schools may override it.
type GradingConfig struct {
	PromotionThreshold    float64
	PromoteWhenNoSubjects bool
	RankingTieBreak       string
	DefaultPassMark       float64
}

// IdentifierConfig controls student identifier allocation.
type IdentifierConfig struct {
	Prefix         string
	CounterBackend string
}

// ReportsConfig configures report card rendering and downloads.
type ReportsConfig struct {
	StorageDir        string
	PublicBaseURL     string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	Retention         time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// NotifyConfig configures publication notifications. An empty SendGrid key logs instead of sending.
type NotifyConfig struct {
	Enabled           bool
	SendGridAPIKey    string
	FromEmail         string
	AppName           string
	WorkerConcurrency int
	WorkerRetries     int
}

// StatsConfig governs class statistics caching.
type StatsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Grading = GradingConfig{
		PromotionThreshold:    v.GetFloat64("GRADING_PROMOTION_THRESHOLD"),
		PromoteWhenNoSubjects: v.GetBool("GRADING_PROMOTE_WHEN_NO_SUBJECTS"),
		RankingTieBreak:       strings.ToLower(strings.TrimSpace(v.GetString("GRADING_RANKING_TIE_BREAK"))),
		DefaultPassMark:       v.GetFloat64("GRADING_DEFAULT_PASS_MARK"),
	}
	if cfg.Grading.PromotionThreshold < 0 || cfg.Grading.PromotionThreshold > 1 {
		return nil, errors.New("GRADING_PROMOTION_THRESHOLD must be between 0 and 1")
	}

	cfg.Identifier = IdentifierConfig{
		Prefix:         v.GetString("IDENTIFIER_PREFIX"),
		CounterBackend: strings.ToLower(v.GetString("IDENTIFIER_COUNTER_BACKEND")),
	}
	switch cfg.Identifier.CounterBackend {
	case CounterBackendPostgres, CounterBackendRedis:
	default:
		return nil, errors.New("IDENTIFIER_COUNTER_BACKEND must be postgres or redis")
	}

	cfg.Reports = ReportsConfig{
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		PublicBaseURL:     strings.TrimRight(v.GetString("REPORTS_PUBLIC_BASE_URL"), "/"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		Retention:         parseDuration(v.GetString("REPORTS_RETENTION"), 24*time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}

	cfg.Notify = NotifyConfig{
		Enabled:           v.GetBool("ENABLE_NOTIFICATIONS"),
		SendGridAPIKey:    v.GetString("SENDGRID_API_KEY"),
		FromEmail:         v.GetString("NOTIFY_FROM_EMAIL"),
		AppName:           v.GetString("NOTIFY_APP_NAME"),
		WorkerConcurrency: v.GetInt("NOTIFY_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("NOTIFY_WORKER_RETRIES"),
	}

	cfg.Stats = StatsConfig{
		CacheEnabled: v.GetBool("ENABLE_STATS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("STATS_CACHE_TTL"), 10*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_results")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GRADING_PROMOTION_THRESHOLD", 0.6)
	v.SetDefault("GRADING_PROMOTE_WHEN_NO_SUBJECTS", true)
	v.SetDefault("GRADING_RANKING_TIE_BREAK", "competition")
	v.SetDefault("GRADING_DEFAULT_PASS_MARK", 50)

	v.SetDefault("IDENTIFIER_PREFIX", "STU")
	v.SetDefault("IDENTIFIER_COUNTER_BACKEND", CounterBackendPostgres)

	v.SetDefault("REPORTS_STORAGE_DIR", "./storage")
	v.SetDefault("REPORTS_PUBLIC_BASE_URL", "")
	v.SetDefault("REPORTS_SIGNED_URL_SECRET", "dev_reports_secret")
	v.SetDefault("REPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("REPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("REPORTS_RETENTION", "24h")
	v.SetDefault("REPORTS_WORKER_CONCURRENCY", 2)
	v.SetDefault("REPORTS_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_NOTIFICATIONS", true)
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("NOTIFY_FROM_EMAIL", "no-reply@school.local")
	v.SetDefault("NOTIFY_APP_NAME", "School Results")
	v.SetDefault("NOTIFY_WORKER_CONCURRENCY", 1)
	v.SetDefault("NOTIFY_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_STATS_CACHE", true)
	v.SetDefault("STATS_CACHE_TTL", "10m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
