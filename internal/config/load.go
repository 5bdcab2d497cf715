package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envBindings maps config keys to the environment variable names consumed
// in deployment. The database and auth names follow the operational
// convention DUVET_PG_* / DUVET_AUTH_* rather than the mechanical
// DUVET_DATABASE_* mapping, so they are bound explicitly.
var envBindings = map[string]string{
	"server.port":          "DUVET_SERVER_PORT",
	"server.log_level":     "DUVET_LOG_LEVEL",
	"database.host":        "DUVET_PG_HOST",
	"database.port":        "DUVET_PG_PORT",
	"database.name":        "DUVET_PG_DB",
	"database.admin_user":  "DUVET_PG_ADMIN_USER",
	"database.admin_password": "DUVET_PG_ADMIN_PASSWORD",
	"database.api_user":    "DUVET_PG_API_USER",
	"database.api_password": "DUVET_PG_API_PASSWORD",
	"auth.provider_domain": "DUVET_AUTH_DOMAIN",
	"auth.jwt_secret":      "DUVET_AUTH_JWT_SECRET",
	"auth.audience":        "DUVET_AUTH_AUDIENCE",
	"auth.issuer":          "DUVET_AUTH_ISSUER",
	"redis.host":           "DUVET_REDIS_HOST",
	"redis.port":           "DUVET_REDIS_PORT",
	"redis.db":             "DUVET_REDIS_DB",
}

// Load reads configuration from environment variables and an optional
// config file (duvet.yaml in the working directory). Environment variables
// take precedence over values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults for settings that have a sensible out-of-the-box value.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("redis.db", 0)

	// Optional config file; absence is not an error.
	v.SetConfigName("duvet")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
