package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	EmailPostmark = "postmark"
	EmailSendgrid = "sendgrid"
	EmailNone     = "none"
)

type Config struct {
	Port string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	// RedisAddr empty keeps flash messages in process memory
	RedisAddr string
	// RabbitURI empty disables order event publishing
	RabbitURI   string
	RabbitQueue string

	JWTSecret  string
	JWTTTL     time.Duration
	BcryptCost int

	EmailProvider   string
	PostmarkToken   string
	SendgridKey     string
	EmailSender     string
	PublicBaseURL   string
	Currency        currency.Unit
	LogLevel        string
	LogFormat       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SecureCookies   bool
}

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honoured.
func Load() (Config, error) {
	cur, err := currency.ParseISO(getEnv("CURRENCY", "USD"))
	if err != nil {
		return Config{}, fmt.Errorf("CURRENCY: %w", err)
	}

	cfg := Config{
		Port:            getEnv("PORT", "8000"),
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "ordering"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RabbitURI:       os.Getenv("RABBITMQ_URI"),
		RabbitQueue:     getEnv("RABBITMQ_QUEUE", "orders"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          getEnvDuration("JWT_TTL", 24*time.Hour),
		BcryptCost:      getEnvInt("BCRYPT_COST", 10),
		EmailProvider:   strings.ToLower(getEnv("EMAIL_PROVIDER", EmailNone)),
		PostmarkToken:   os.Getenv("POSTMARK_API_TOKEN"),
		SendgridKey:     os.Getenv("SENDGRID_API_KEY"),
		EmailSender:     getEnv("EMAIL_SENDER", "orders@localhost"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8000"),
		Currency:        cur,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		RequestTimeout:  getEnvDuration("REQUEST_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		SecureCookies:   getEnvBool("SECURE_COOKIES", false),
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	switch c.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER %q is not supported", c.StoreDriver))
	}

	switch c.EmailProvider {
	case EmailNone:
	case EmailPostmark:
		if c.PostmarkToken == "" {
			errs = append(errs, errors.New("POSTMARK_API_TOKEN is required for the postmark provider"))
		}
	case EmailSendgrid:
		if c.SendgridKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required for the sendgrid provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("EMAIL_PROVIDER %q is not supported", c.EmailProvider))
	}

	// bcrypt accepts 4..31
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d out of range", c.BcryptCost))
	}

	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
