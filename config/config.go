package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Events   EventsConfig
	Auth     AuthConfig
	RateLim  RateLimitConfig
	Uploads  UploadConfig
	LogDir   string
	CORSOrig []string

	// ReceiptSecret signs QR payloads on passes and receipts when set.
	ReceiptSecret string
}

type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
	// SecurityHeaders toggles HSTS/CSP style headers; off for plain-http dev.
	SecurityHeaders bool
}

type MongoConfig struct {
	URI           string
	Database      string
	MaxPoolSize   uint64
	MinPoolSize   uint64
	MaxIdleTime   time.Duration
	SelectTimeout time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// EventsConfig.Backend is one of "none", "redis", "kafka".
type EventsConfig struct {
	Backend string
	Channel string
}

type AuthConfig struct {
	JWTSecret         string
	AdminUsername     string
	AdminPasswordHash string
	TokenTTL          time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type UploadConfig struct {
	Dir string
}

var ErrMissingMongoURI = errors.New("MONGODB_URI is not set")

// Load reads the process environment. The caller loads .env beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            normalizePort(getEnv("PORT", ":8080")),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 7*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("HTTP_IDLE_TIMEOUT", 120*time.Second),
			RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
			SecurityHeaders: getEnvBool("SECURITY_HEADERS", true),
		},
		Mongo: MongoConfig{
			URI:           os.Getenv("MONGODB_URI"),
			Database:      getEnv("DB_NAME", "KTV-Family"),
			MaxPoolSize:   uint64(getEnvInt("MONGO_MAX_POOL", 10)),
			MinPoolSize:   uint64(getEnvInt("MONGO_MIN_POOL", 5)),
			MaxIdleTime:   getEnvDuration("MONGO_MAX_IDLE", 60*time.Second),
			SelectTimeout: getEnvDuration("MONGO_SELECT_TIMEOUT", 5*time.Second),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_URL"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "ktv.events"),
		},
		Events: EventsConfig{
			Backend: strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
			Channel: getEnv("EVENTS_CHANNEL", "ktv-events"),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("JWT_SECRET"),
			AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
			AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
			TokenTTL:          getEnvDuration("TOKEN_TTL", 12*time.Hour),
		},
		RateLim: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
		Uploads:  UploadConfig{Dir: getEnv("UPLOAD_DIR", "static/uploads")},
		LogDir:   os.Getenv("LOG_DIR"),
		CORSOrig: splitList(getEnv("CORS_ORIGINS", "*")),

		ReceiptSecret: os.Getenv("RECEIPT_SECRET"),
	}

	if cfg.Mongo.URI == "" {
		return nil, ErrMissingMongoURI
	}
	return cfg, nil
}

// AuthEnabled reports whether data routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != ""
}

func normalizePort(port string) string {
	if port != "" && port[0] != ':' {
		return ":" + port
	}
	return port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
