package config

import (
	"errors"
	"fmt"
	"os"

	"ninepay-gateway/internal/environment"
	"ninepay-gateway/internal/payment"

	"github.com/joho/godotenv"
)

var ErrMissingEnv = errors.New("required environment variable not set")

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	JWTSecret  string
	CORSOrigin string
	// Callers presenting this in X-Service-Auth get the service rate tier.
	ServiceKey string

	NinePayMerchantID  string
	NinePaySecretKey   string
	NinePayChecksumKey string
	NinePayEnv         string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     getEnv("DB_PORT", "5432"),
		AppPort:    getEnv("APP_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),
		JWTSecret:  os.Getenv("JWT_SECRET"),
		CORSOrigin: os.Getenv("CORS_ALLOWED_ORIGIN"),
		ServiceKey: os.Getenv("INTERNAL_SERVICE_KEY"),

		NinePayMerchantID:  os.Getenv("NINEPAY_MERCHANT_ID"),
		NinePaySecretKey:   os.Getenv("NINEPAY_SECRET_KEY"),
		NinePayChecksumKey: os.Getenv("NINEPAY_CHECKSUM_KEY"),
		NinePayEnv:         getEnv("NINEPAY_ENV", environment.Sandbox),
	}
}

// NinePay returns the gateway credentials.
func (c *Config) NinePay() payment.Config {
	return payment.Config{
		MerchantID:  c.NinePayMerchantID,
		SecretKey:   c.NinePaySecretKey,
		ChecksumKey: c.NinePayChecksumKey,
		Env:         c.NinePayEnv,
	}
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingEnv)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET", ErrMissingEnv)
	}
	return c.NinePay().Validate()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
