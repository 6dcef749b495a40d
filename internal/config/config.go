// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds the postgres connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type ShopConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// Enabled reports whether the shop integration is configured. Without
// credentials, stock reconciliation marks every tracked line as failed.
func (s ShopConfig) Enabled() bool {
	return s.BaseURL != "" && s.APIKey != "" && s.APISecret != ""
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type Config struct {
	Port        int
	Environment string
	LogLevel    string
	JWTSecret   string
	CORSOrigins []string

	Database DatabaseConfig
	Shop     ShopConfig
	SMTP     SMTPConfig
}

// Load reads configuration from the environment. A missing .env file is not
// an error; a missing JWT secret outside development is.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 8080)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "invoicer")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("SHOP_API_TIMEOUT", "10s")
	v.SetDefault("SMTP_PORT", 587)

	cfg := &Config{
		Port:        v.GetInt("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		CORSOrigins: v.GetStringSlice("CORS_ORIGINS"),
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Shop: ShopConfig{
			BaseURL:   v.GetString("SHOP_API_URL"),
			APIKey:    v.GetString("SHOP_API_KEY"),
			APISecret: v.GetString("SHOP_API_SECRET"),
			Timeout:   v.GetDuration("SHOP_API_TIMEOUT"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM_EMAIL"),
		},
	}

	if cfg.JWTSecret == "" {
		if cfg.Environment == "development" {
			cfg.JWTSecret = "dev_only_insecure_secret"
		} else {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
