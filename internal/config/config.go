package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	Keys      APIKeys
	Ai        AIConfig
	Auth      AuthConfig
	Credits   CreditsConfig
	Storage   StorageConfig
	Otel      OtelConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	HubLogFilePath     string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	BodyLimitMB        int
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type APIKeys struct {
	GoogleGemini      string
	NaverClientID     string
	NaverClientSecret string
	NaverRedirectURL  string
}

type AIConfig struct {
	Model             string
	CallTimeout       time.Duration
	RequestsPerMinute int
	Burst             int
}

type AuthConfig struct {
	JWTSecret         string
	CredentialTTL     time.Duration
	SessionTTL        time.Duration
	AdminEmails       []string
	AdminPasswordHash string
}

type CreditsConfig struct {
	CostPerBlog         int
	DefaultGrant        int
	NaverSignupBonus    int
	EmailVerifiedReward int
}

type StorageConfig struct {
	Type      string // "local" or "s3"
	LocalPath string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

type OtelConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

type RateLimitConfig struct {
	Enabled  bool
	Capacity int
	Refill   int
	Interval time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			HubLogFilePath:     getEnv("HUB_LOG_FILE_PATH", "logs/realtime.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
			BodyLimitMB:        getEnvAsInt("BODY_LIMIT_MB", 60),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "Blog Autowriter"),
		},
		Keys: APIKeys{
			GoogleGemini:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			NaverClientID:     getEnv("NAVER_CLIENT_ID", ""),
			NaverClientSecret: getEnv("NAVER_CLIENT_SECRET", ""),
			NaverRedirectURL:  getEnv("NAVER_REDIRECT_URL", "http://localhost:5173/auth/naver/callback"),
		},
		Ai: AIConfig{
			Model:             getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			CallTimeout:       getEnvAsDuration("GEMINI_CALL_TIMEOUT", 90*time.Second),
			RequestsPerMinute: getEnvAsInt("GEMINI_RPM", 30),
			Burst:             getEnvAsInt("GEMINI_BURST", 5),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("JWT_SECRET", ""),
			CredentialTTL:     getEnvAsDuration("CREDENTIAL_TTL", 5*time.Minute),
			SessionTTL:        getEnvAsDuration("SESSION_TTL", 24*time.Hour),
			AdminEmails:       getEnvAsList("ADMIN_EMAILS", nil),
			AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		},
		Credits: CreditsConfig{
			CostPerBlog:         getEnvAsInt("CREDITS_PER_BLOG", 1),
			DefaultGrant:        getEnvAsInt("INITIAL_CREDITS", 5),
			NaverSignupBonus:    getEnvAsInt("NAVER_SIGNUP_CREDITS", 5),
			EmailVerifiedReward: getEnvAsInt("EMAIL_VERIFIED_REWARD", 2),
		},
		Storage: StorageConfig{
			Type:      getEnv("STORAGE_TYPE", "local"),
			LocalPath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			Bucket:    getEnv("S3_BUCKET", ""),
			Region:    getEnv("S3_REGION", "ap-northeast-2"),
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Otel: OtelConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "blog-autowriter-backend"),
			SampleRatio: getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvAsBool("GENERATE_RATE_LIMIT_ENABLED", true),
			Capacity: getEnvAsInt("GENERATE_RATE_LIMIT_CAPACITY", 5),
			Refill:   getEnvAsInt("GENERATE_RATE_LIMIT_REFILL", 1),
			Interval: getEnvAsDuration("GENERATE_RATE_LIMIT_INTERVAL", 20*time.Second),
		},
	}
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS.
func (c AuthConfig) IsAdminEmail(email string) bool {
	for _, e := range c.AdminEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
