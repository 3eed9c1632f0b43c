package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// StoreMySQL persists data through GORM and MySQL.
	StoreMySQL = "mysql"
	// StoreMemory keeps data in process memory; intended for local runs.
	StoreMemory = "memory"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort    string
	StoreDriver   string
	MySQLDSN      string
	ResetDB       bool
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	JWTSecret     string
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
	CookieSecure  bool
	FrontendURL   string
	ContactInbox  string
	SwaggerHost   string
	LogFile       string
	LogLevel      string
	Email         EmailConfig
	S3            S3Config
}

// EmailConfig holds SMTP settings used by the mail dispatcher.
type EmailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	InsecureTLS bool
	Timeout     time.Duration
}

// Enabled reports whether enough settings are present to send mail.
func (e EmailConfig) Enabled() bool {
	return e.Host != "" && e.Port != 0
}

// S3Config holds object storage settings for product images.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Folder        string
}

// Enabled reports whether an image bucket is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMySQL)),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/pinvent?charset=utf8mb4&parseTime=True&loc=Local"),
		ResetDB:       getEnvBool("RESET_DB", false),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionTTL:    getEnvDuration("SESSION_TTL", 24*time.Hour),
		ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", 30*time.Minute),
		CookieSecure:  getEnvBool("COOKIE_SECURE", true),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		ContactInbox:  firstNonEmpty(os.Getenv("CONTACT_INBOX"), os.Getenv("EMAIL_USER")),
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
		LogFile:       os.Getenv("LOG_FILE"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		Email: EmailConfig{
			Host:        os.Getenv("EMAIL_HOST"),
			Port:        getEnvInt("EMAIL_PORT", 587),
			Username:    os.Getenv("EMAIL_USER"),
			Password:    os.Getenv("EMAIL_PASS"),
			InsecureTLS: getEnvBool("EMAIL_INSECURE_TLS", false),
			Timeout:     getEnvDuration("MAIL_TIMEOUT", 10*time.Second),
		},
		S3: S3Config{
			Bucket:        os.Getenv("S3_BUCKET"),
			Region:        getEnv("S3_REGION", "us-east-1"),
			Endpoint:      os.Getenv("S3_ENDPOINT"),
			AccessKey:     os.Getenv("S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("S3_SECRET_KEY"),
			PublicBaseURL: strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),
			Folder:        getEnv("S3_FOLDER", "Pinvent App"),
		},
	}
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	switch c.StoreDriver {
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN is required for store driver %q", c.StoreDriver)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.SessionTTL <= 0 || c.ResetTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := strings.ToLower(strings.Trim(os.Getenv(key), "\"' "))
	switch v {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
