package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port string
	DSN  string

	SessionSecret string
	SecureCookies bool

	GoogleKey         string
	GoogleSecret      string
	GoogleCallbackURL string
	AppleClientID     string
	OAuthTimeout      time.Duration

	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string
	StorageTimeout  time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPTimeout  time.Duration
	FromEmail    string
	ContactEmail string

	FrontendURL string

	ResetTokenTTL      time.Duration
	RateLimitPerMinute int
	MaxUploadMB        int

	StaticDir   string
	TemplateDir string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		Port: getEnv("PORT", "3000"),
		DSN:  getEnv("DSN", "host=localhost user=flatfly password=flatfly dbname=flatfly port=5432 sslmode=disable"),

		SessionSecret: getEnv("SESSION_SECRET", ""),
		SecureCookies: getEnvBool("SECURE_COOKIES", false),

		GoogleKey:         getEnv("GOOGLE_KEY", ""),
		GoogleSecret:      getEnv("GOOGLE_SECRET", ""),
		GoogleCallbackURL: getEnv("GOOGLE_CALLBACK_URL", "http://localhost:3000/api/google_callback/"),
		AppleClientID:     getEnv("APPLE_CLIENT_ID", ""),
		OAuthTimeout:      getEnvDuration("OAUTH_TIMEOUT", 10*time.Second),

		AccountID:       getEnv("ACCOUNT_ID", ""),
		AccessKeyID:     getEnv("ACCESS_KEY_ID", ""),
		AccessKeySecret: getEnv("ACCESS_KEY_SECRET", ""),
		BucketName:      getEnv("BUCKET_NAME", ""),
		PublicURL:       getEnv("PUBLIC_URL", ""),
		StorageTimeout:  getEnvDuration("STORAGE_TIMEOUT", 30*time.Second),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPTimeout:  getEnvDuration("SMTP_TIMEOUT", 15*time.Second),
		FromEmail:    getEnv("DEFAULT_FROM_EMAIL", "no-reply@flatfly.cz"),
		ContactEmail: getEnv("CONTACT_EMAIL", ""),

		FrontendURL: getEnv("FRONTEND_URL", ""),

		ResetTokenTTL:      getEnvDuration("RESET_TOKEN_TTL", time.Hour),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		MaxUploadMB:        getEnvInt("MAX_UPLOAD_MB", 10),

		StaticDir:   getEnv("STATIC_DIR", "./static"),
		TemplateDir: getEnv("TEMPLATE_DIR", "./templates"),
	}
}

// MaxUploadBytes is the multipart body limit for image uploads.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err == nil {
			return d
		}
	}
	return fallback
}
