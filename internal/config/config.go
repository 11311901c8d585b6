package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// GCPConfig holds project-level Google Cloud settings shared by the
// BigQuery store and the GCS exporter.
type GCPConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Dataset   string `mapstructure:"dataset"`
	Bucket    string `mapstructure:"bucket"`
}

// GeminiConfig holds the text extraction model settings.
type GeminiConfig struct {
	Model string `mapstructure:"model"`
}

// AuthConfig holds Google sign-in and token signing settings.
type AuthConfig struct {
	GoogleClientID   string `mapstructure:"google_client_id"`
	JWTSecret        string `mapstructure:"jwt_secret"`
	RefreshSecret    string `mapstructure:"refresh_secret"`
	AccessTTLMinutes int    `mapstructure:"access_ttl_minutes"`
	RefreshTTLHours  int    `mapstructure:"refresh_ttl_hours"`
}

// NotionConfig holds the optional Notion mirror settings.
type NotionConfig struct {
	Token         string `mapstructure:"token"`
	TransactionDB string `mapstructure:"transaction_db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config is the full application configuration.
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	GCP    GCPConfig    `mapstructure:"gcp"`
	Gemini GeminiConfig `mapstructure:"gemini"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Notion NotionConfig `mapstructure:"notion"`
	Log    LogConfig    `mapstructure:"log"`
}

// Load reads configuration from the given YAML file, with environment
// variables (prefix SPENDWISE_, e.g. SPENDWISE_AUTH_JWT_SECRET) taking
// precedence over file values. Path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("gcp.dataset", "finance")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("auth.access_ttl_minutes", 15)
	v.SetDefault("auth.refresh_ttl_hours", 168)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("SPENDWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &cfg, nil
}
