package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port          string
	SessionSecret string
	JWTSecret     string
	JWTTTL        time.Duration
	StaticDir     string
	NotifyTimeout time.Duration
}

type DatabaseConfig struct {
	Driver        string // postgres | sqlite
	Host          string
	User          string
	Password      string
	Name          string
	Port          string
	SSLMode       string
	TimeZone      string
	SQLitePath    string
	LockTimeout   time.Duration
	MaxAttempts   int
	ClampQuantity bool
	RetryInterval time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

type AfricaTalkingConfig struct {
	Username string
	APIKey   string
	SMSURL   string
	SenderID string
}

type EmailConfig struct {
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	SenderEmail        string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers string
	Topic   string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type Config struct {
	App   AppConfig
	DB    DatabaseConfig
	SMTP  SMTPConfig
	SES   EmailConfig
	SMS   AfricaTalkingConfig
	Redis RedisConfig
	Kafka KafkaConfig
	OIDC  OIDCConfig
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: ignoring .env: %v", err)
	}

	return Config{
		App:   LoadAppConfig(),
		DB:    LoadDatabaseConfig(),
		SMTP:  LoadSMTPConfig(),
		SES:   LoadEmailConfig(),
		SMS:   LoadAfricaTalkingConfig(),
		Redis: LoadRedisConfig(),
		Kafka: LoadKafkaConfig(),
		OIDC:  LoadOIDCConfig(),
	}
}

func LoadAppConfig() AppConfig {
	return AppConfig{
		Port:          getEnvOrDefault("PORT", "3000"),
		SessionSecret: getEnvOrDefault("SESSION_SECRET", "change-me"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", "dev_secret_change_me"),
		JWTTTL:        getEnvAsDuration("JWT_TTL", 7*24*time.Hour),
		StaticDir:     getEnvOrDefault("STATIC_DIR", "./public"),
		NotifyTimeout: getEnvAsDuration("NOTIFY_TIMEOUT", 15*time.Second),
	}
}

func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:        strings.ToLower(getEnvOrDefault("DB_DRIVER", "postgres")),
		Host:          getEnvOrDefault("POSTGRES_HOST", "localhost"),
		User:          getEnvOrDefault("POSTGRES_USER", "test"),
		Password:      getEnvOrDefault("POSTGRES_PASSWORD", "test"),
		Name:          getEnvOrDefault("POSTGRES_DB", "web_mobile"),
		Port:          getEnvOrDefault("DB_PORT", "5432"),
		SSLMode:       getEnvOrDefault("DB_SSLMODE", "disable"),
		TimeZone:      getEnvOrDefault("DB_TIMEZONE", "Asia/Ho_Chi_Minh"),
		SQLitePath:    getEnvOrDefault("SQLITE_PATH", "web_mobile.db"),
		LockTimeout:   getEnvAsDuration("DB_LOCK_TIMEOUT", 5*time.Second),
		MaxAttempts:   getEnvAsInt("CHECKOUT_MAX_ATTEMPTS", 3),
		ClampQuantity: getEnvAsBool("CHECKOUT_CLAMP_QUANTITY", false),
		RetryInterval: getEnvAsDuration("DB_BOOTSTRAP_RETRY", 3*time.Second),
	}
}

func LoadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     getEnvAsInt("SMTP_PORT", 587),
		User:     os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     getEnvOrDefault("SMTP_FROM", os.Getenv("SMTP_USER")),
		Timeout:  getEnvAsDuration("SMTP_TIMEOUT", 10*time.Second),
	}
}

// Enabled reports whether SMTP is usable: host, user and password are all required.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

func LoadAfricaTalkingConfig() AfricaTalkingConfig {
	return AfricaTalkingConfig{
		Username: os.Getenv("AT_USERNAME"),
		APIKey:   os.Getenv("AT_API_KEY"),
		SMSURL:   getEnvOrDefault("AT_SMS_URL", "https://api.sandbox.africastalking.com/version1/messaging"), // Sandbox URL
		SenderID: getEnvOrDefault("AT_SENDER_ID", "AFRICASTKNG"),                                          // Default sandbox sender ID
	}
}

func (c AfricaTalkingConfig) Enabled() bool {
	return c.Username != "" && c.APIKey != ""
}

func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		AWSRegion:          getEnvOrDefault("AWS_REGION", "us-east-1"),
		SenderEmail:        os.Getenv("AWS_SENDER_ADDRESS"),
	}
}

func (c EmailConfig) Enabled() bool {
	return c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != "" && c.SenderEmail != ""
}

func LoadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     os.Getenv("REDIS_URL"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getEnvAsInt("REDIS_DB", 0),
		TTL:      getEnvAsDuration("PRODUCT_CACHE_TTL", 5*time.Minute),
	}
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

func LoadKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers: os.Getenv("KAFKA_BROKERS"),
		Topic:   getEnvOrDefault("KAFKA_TOPIC", "orders.events"),
	}
}

func (c KafkaConfig) Enabled() bool {
	return strings.TrimSpace(c.Brokers) != ""
}

func LoadOIDCConfig() OIDCConfig {
	return OIDCConfig{
		Issuer:       os.Getenv("OIDC_ISSUER"),
		ClientID:     os.Getenv("OIDC_CLIENT_ID"),
		ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
	}
}

func (c OIDCConfig) Enabled() bool {
	return c.Issuer != "" && c.ClientID != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("5s") or plain milliseconds ("2500").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}
