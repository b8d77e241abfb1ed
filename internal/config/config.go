package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	MongoURI                string        `mapstructure:"MONGO_URI"`
	MongoDatabase           string        `mapstructure:"MONGO_DATABASE"`
	Port                    string        `mapstructure:"API_PORT"`
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	TokenTTL                time.Duration `mapstructure:"TOKEN_TTL"`
	DBTimeout               time.Duration `mapstructure:"DB_TIMEOUT"`
	DefaultAvailabilityDate string        `mapstructure:"DEFAULT_AVAILABILITY_DATE"`
	CORSOrigins             []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS            float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst          int           `mapstructure:"RATE_LIMIT_BURST"`
	LogLevel                string        `mapstructure:"LOG_LEVEL"`
	LogFormat               string        `mapstructure:"LOG_FORMAT"`
	BcryptCost              int           `mapstructure:"BCRYPT_COST"`
	TextbeltAPIKey          string        `mapstructure:"TEXTBELT_API_KEY"`
}

var keys = []string{
	"MONGO_URI", "MONGO_DATABASE", "API_PORT", "JWT_SECRET", "TOKEN_TTL",
	"DB_TIMEOUT", "DEFAULT_AVAILABILITY_DATE", "CORS_ORIGINS",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "LOG_LEVEL", "LOG_FORMAT",
	"BCRYPT_COST", "TEXTBELT_API_KEY",
}

// Load reads configuration from the environment. Callers load any .env file
// beforehand so its values are visible here.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("MONGO_DATABASE", "doctorService")
	v.SetDefault("API_PORT", "5000")
	v.SetDefault("TOKEN_TTL", "1h")
	v.SetDefault("DB_TIMEOUT", "5s")
	v.SetDefault("DEFAULT_AVAILABILITY_DATE", "May 14, 2022")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("BCRYPT_COST", 12)

	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	return cfg, nil
}

// Validate reports settings the server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, errors.New("MONGO_URI is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.DBTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DB_TIMEOUT must be positive, got %s", c.DBTimeout))
	}
	return errors.Join(errs...)
}

// AllowAllOrigins reports whether CORS should accept any origin.
func (c *Config) AllowAllOrigins() bool {
	return len(c.CORSOrigins) == 0 || (len(c.CORSOrigins) == 1 && c.CORSOrigins[0] == "*")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
