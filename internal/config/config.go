package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultSeedURL = "https://s3.amazonaws.com/roxiler.com/product_transaction.json"

type Config struct {
	Port         string
	DBDSN        string
	DBName       string
	SeedURL      string
	SeedTimeout  time.Duration
	StoreTimeout time.Duration
	AMQPURL      string
	AMQPExchange string
	LogLevel     string
	LogFile      string
}

func Load() Config {
	// .env is optional; real environment wins over file values
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[config] ignoring .env: %v", err)
	}

	dsn := getEnv("DB_DSN", "")
	if dsn == "" {
		dsn = getEnv("MONGO_URI", "txdash.db") // sqlite file in project root
	}

	cfg := Config{
		Port:         getEnv("PORT", "5000"),
		DBDSN:        dsn,
		DBName:       getEnv("DB_NAME", "txdash"),
		SeedURL:      getEnv("SEED_URL", DefaultSeedURL),
		SeedTimeout:  getEnvDuration("SEED_TIMEOUT", 30*time.Second),
		StoreTimeout: getEnvDuration("STORE_TIMEOUT", 10*time.Second),
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "txdash.events"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFile:      getEnv("LOG_FILE", ""),
	}
	return cfg
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Errorf("invalid port %q: must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d: must be between 1 and 65535", port))
	}
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN cannot be empty"))
	}
	if u, err := url.Parse(c.SeedURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("invalid SEED_URL %q: must be an http(s) URL", c.SeedURL))
	}
	if c.SeedTimeout <= 0 {
		errs = append(errs, errors.New("SEED_TIMEOUT must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Errorf("invalid AMQP URL: %w", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Errorf("invalid AMQP URL scheme %q: must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, errors.New("AMQP exchange name cannot be empty when AMQP URL is provided"))
		}
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
