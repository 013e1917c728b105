package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"esg-assess/internal/esg"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	App       AppConfig
	Log       LogConfig
	Scoring   ScoringConfig
	LLM       LLMConfig
	Chat      ChatConfig
	Vault     VaultConfig
	Scheduler SchedulerConfig
	Email     EmailConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host         string
	Port         string
	TimeoutRead  time.Duration
	TimeoutWrite time.Duration
	TimeoutIdle  time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Duration time.Duration
}

// AppConfig holds general application configuration
type AppConfig struct {
	Env                string
	Name               string
	Version            string
	EnableRegistration bool
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string
	Format string
}

// ScoringConfig holds the category weights of the overall ESG score
type ScoringConfig struct {
	WeightEnvironmental float64
	WeightSocial        float64
	WeightGovernance    float64
}

// Weights returns the configured weights in the form the engine expects
func (s ScoringConfig) Weights() esg.Weights {
	return esg.Weights{
		Environmental: s.WeightEnvironmental,
		Social:        s.WeightSocial,
		Governance:    s.WeightGovernance,
	}
}

// LLMConfig holds configuration of the chat assistant model
type LLMConfig struct {
	BaseURL    string
	Model      string
	Enabled    bool
	Timeout    time.Duration
	MaxRetries int
}

// ChatConfig holds chat transcript configuration
type ChatConfig struct {
	HistoryMessages int
	Retention       time.Duration
}

// VaultConfig holds Vault-related configuration
type VaultConfig struct {
	Address      string
	Token        string
	TransitMount string
	KeyName      string
	Enabled      bool
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	ChatRetentionCron      string // e.g., "0 3 * * *" (daily 3 AM)
	ReassessmentCron       string // e.g., "0 9 * * 1" (Monday 9 AM)
	ReassessmentAfterDays  int
	EnableChatRetention    bool
	EnableReassessmentMail bool
}

// EmailConfig holds email-related configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AppURL       string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// godotenv doesn't override already-set variables, so order matters
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnv("SERVER_PORT", "8080"),
			TimeoutRead:  getDurationEnv("SERVER_TIMEOUT_READ", 15*time.Second),
			TimeoutWrite: getDurationEnv("SERVER_TIMEOUT_WRITE", 90*time.Second),
			TimeoutIdle:  getDurationEnv("SERVER_TIMEOUT_IDLE", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "esg"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "esg_db"),
			SSLMode:         getEnv("DB_SSLMODE", "prefer"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnectTimeout:  getDurationEnv("DB_CONNECT_TIMEOUT", 30*time.Second),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", ""),
			Expiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins:   getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods:   getSliceEnv("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders:   getSliceEnv("CORS_ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}),
			ExposedHeaders:   getSliceEnv("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"}),
			AllowCredentials: getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
			MaxAge:           getIntEnv("CORS_MAX_AGE", 300),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getBoolEnv("RATE_LIMIT_ENABLED", true),
			Requests: getIntEnv("RATE_LIMIT_REQUESTS", 100),
			Duration: getDurationEnv("RATE_LIMIT_DURATION", 1*time.Minute),
		},
		App: AppConfig{
			Env:                getEnv("APP_ENV", "development"),
			Name:               getEnv("APP_NAME", "ESG Assess"),
			Version:            getEnv("APP_VERSION", "1.0.0"),
			EnableRegistration: getBoolEnv("ENABLE_REGISTRATION", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Scoring: ScoringConfig{
			WeightEnvironmental: getFloatEnv("SCORING_WEIGHT_ENVIRONMENTAL", 0.4),
			WeightSocial:        getFloatEnv("SCORING_WEIGHT_SOCIAL", 0.3),
			WeightGovernance:    getFloatEnv("SCORING_WEIGHT_GOVERNANCE", 0.3),
		},
		LLM: LLMConfig{
			BaseURL:    getEnv("LLM_BASE_URL", "http://localhost:11434"),
			Model:      getEnv("LLM_MODEL", "llama3"),
			Enabled:    getBoolEnv("LLM_ENABLED", false),
			Timeout:    getDurationEnv("LLM_TIMEOUT", 60*time.Second),
			MaxRetries: getIntEnv("LLM_MAX_RETRIES", 2),
		},
		Chat: ChatConfig{
			HistoryMessages: getIntEnv("CHAT_HISTORY_MESSAGES", 6),
			Retention:       getDurationEnv("CHAT_RETENTION", 90*24*time.Hour),
		},
		Vault: VaultConfig{
			Address:      getEnv("VAULT_ADDR", "http://localhost:8200"),
			Token:        getEnv("VAULT_TOKEN", ""),
			TransitMount: getEnv("VAULT_TRANSIT_MOUNT", "transit"),
			KeyName:      getEnv("VAULT_CHAT_KEY", "chat-transcripts"),
			Enabled:      getBoolEnv("VAULT_ENABLED", false),
		},
		Scheduler: SchedulerConfig{
			ChatRetentionCron:      getEnv("SCHEDULER_CHAT_RETENTION_CRON", "0 3 * * *"), // Daily 3 AM
			ReassessmentCron:       getEnv("SCHEDULER_REASSESSMENT_CRON", "0 9 * * 1"),  // Monday 9 AM
			ReassessmentAfterDays:  getIntEnv("SCHEDULER_REASSESSMENT_AFTER_DAYS", 90),
			EnableChatRetention:    getBoolEnv("SCHEDULER_ENABLE_CHAT_RETENTION", true),
			EnableReassessmentMail: getBoolEnv("SCHEDULER_ENABLE_REASSESSMENT_MAIL", false),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
			AppURL:       getEnv("APP_URL", "http://localhost:3000"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Database.Password == "" && c.App.Env == "production" {
		return fmt.Errorf("DB_PASSWORD is required in production")
	}
	if err := c.Scoring.Weights().Validate(); err != nil {
		return fmt.Errorf("SCORING_WEIGHT_*: %w", err)
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}
	if c.Vault.Enabled && c.Vault.Token == "" {
		return fmt.Errorf("VAULT_TOKEN is required when VAULT_ENABLED is true")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Split by comma and trim whitespace
		parts := strings.Split(value, ",")
		var result []string
		for _, v := range parts {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
