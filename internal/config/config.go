// Package config loads service settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store backends.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Addr             string   `mapstructure:"ADDR"`
	Env              string   `mapstructure:"ENV"`
	LogLevel         string   `mapstructure:"LOG_LEVEL"`
	WebDir           string   `mapstructure:"WEB_DIR"`
	Store            string   `mapstructure:"STORE"`
	DatabaseURL      string   `mapstructure:"DATABASE_URL"`
	DBMaxConns       int      `mapstructure:"DB_MAX_CONNS"`
	KafkaBrokers     []string `mapstructure:"KAFKA_BROKERS"`
	KafkaRiskTopic   string   `mapstructure:"KAFKA_RISK_TOPIC"`
	OIDCIssuer       string   `mapstructure:"OIDC_ISSUER"`
	OIDCClientID     string   `mapstructure:"OIDC_CLIENT_ID"`
	OIDCClientSecret string   `mapstructure:"OIDC_CLIENT_SECRET"`
	OIDCRedirectURL  string   `mapstructure:"OIDC_REDIRECT_URL"`
	DisableAuth      bool     `mapstructure:"DISABLE_AUTH"`
	// ForwardAuth trusts the Remote-User header set by an authenticating
	// reverse proxy. Only enable it when the proxy strips client copies.
	ForwardAuth      bool     `mapstructure:"FORWARD_AUTH"`
}

var keys = []string{
	"ADDR", "ENV", "LOG_LEVEL", "WEB_DIR", "STORE", "DATABASE_URL", "DB_MAX_CONNS",
	"KAFKA_BROKERS", "KAFKA_RISK_TOPIC",
	"OIDC_ISSUER", "OIDC_CLIENT_ID", "OIDC_CLIENT_SECRET", "OIDC_REDIRECT_URL",
	"DISABLE_AUTH", "FORWARD_AUTH",
}

// Load reads the configuration. It does not validate it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("ADDR", ":8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WEB_DIR", "web")
	v.SetDefault("STORE", StorePostgres)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("KAFKA_RISK_TOPIC", "risk.assessed")
	v.SetDefault("DISABLE_AUTH", false)
	v.SetDefault("FORWARD_AUTH", false)

	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// A missing .env file is fine.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Env values arrive as a single comma separated string.
	if raw := v.GetString("KAFKA_BROKERS"); raw != "" {
		cfg.KafkaBrokers = splitList(raw)
	} else {
		cfg.KafkaBrokers = nil
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	return cfg, nil
}

// Validate checks that the settings can be used together.
func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("STORE must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store)
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaRiskTopic == "" {
		return fmt.Errorf("KAFKA_RISK_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.OIDCIssuer != "" && (c.OIDCClientID == "" || c.OIDCRedirectURL == "") {
		return fmt.Errorf("OIDC_CLIENT_ID and OIDC_REDIRECT_URL are required when OIDC_ISSUER is set")
	}
	if c.IsProduction() && c.DisableAuth {
		return fmt.Errorf("DISABLE_AUTH is not allowed in production")
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SSOEnabled reports whether OIDC login is configured.
func (c *Config) SSOEnabled() bool {
	return c.OIDCIssuer != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
