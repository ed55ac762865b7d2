// internal/config/config.go
//
// Process configuration.
// Sources, lowest precedence first:
//   1. Built-in defaults (development friendly).
//   2. Optional YAML file named by CONFIG_FILE.
//   3. Environment variables, including those loaded from .env.
//
// Environment variables are the upper-cased keys: PORT, LOG_LEVEL, DB_PATH,
// RULES_DIR, JWT_SECRET, JWT_EXPIRES_DAYS, COOKIE_NAME, CLIENT_ORIGIN, APP_ENV.
package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const devSecret = "dev_secret_change_me"

type Config struct {
	Port           string `mapstructure:"port"`
	LogLevel       string `mapstructure:"log_level"`
	DBPath         string `mapstructure:"db_path"`
	RulesDir       string `mapstructure:"rules_dir"`
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpiresDays int    `mapstructure:"jwt_expires_days"`
	CookieName     string `mapstructure:"cookie_name"`
	ClientOrigin   string `mapstructure:"client_origin"`
	AppEnv         string `mapstructure:"app_env"`
}

var defaults = map[string]any{
	"port":             "5175",
	"log_level":        "info",
	"db_path":          "./data/boardrules.db",
	"rules_dir":        "",
	"jwt_secret":       devSecret,
	"jwt_expires_days": 14,
	"cookie_name":      "boardrules_token",
	"client_origin":    "http://localhost:5173",
	"app_env":          "development",
}

// Load reads .env (if present) and builds the configuration. Extra env files
// may be named; missing ones are ignored.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Production reports whether the process runs with APP_ENV=production.
func (c *Config) Production() bool { return c.AppEnv == "production" }

func (c *Config) validate() error {
	if c.JWTExpiresDays <= 0 {
		return errors.New("jwt_expires_days must be positive")
	}
	if c.Production() && (c.JWTSecret == "" || c.JWTSecret == devSecret) {
		return errors.New("jwt_secret must be set in production")
	}
	return nil
}
