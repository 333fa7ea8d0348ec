package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Translator backends selectable with TRANSLATOR
const (
	TranslatorDictionary = "dictionary"
	TranslatorGemini     = "gemini"
)

// Config holds all application configuration
type Config struct {
	Env         string
	BotToken    string
	BotPassword string
	Database    DatabaseConfig
	HTTP        HTTPConfig
	Translator  TranslatorConfig

	SnapshotRetentionDays int
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
}

// HTTPConfig holds the JSON API settings; an empty Addr disables the API.
// Token is the bearer credential API clients send, BOT_PASSWORD unless
// API_TOKEN is set.
type HTTPConfig struct {
	Addr           string
	Token          string
	AllowedOrigins []string
}

// TranslatorConfig selects and configures the translation backend
type TranslatorConfig struct {
	Kind         string
	GeminiAPIKey string
	GeminiModel  string
	SourceLang   string
	TargetLang   string
	GlossaryPath string
}

// Load reads configuration from .env and the environment
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("app_env", "local")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_name", "tango")
	v.SetDefault("db_user", "tango")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("translator", TranslatorDictionary)
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("source_lang", "ja")
	v.SetDefault("target_lang", "en")
	v.SetDefault("glossary_path", "glossary.txt")
	v.SetDefault("snapshot_retention_days", 60)
	v.AutomaticEnv()

	cfg := &Config{
		Env:         v.GetString("app_env"),
		BotToken:    v.GetString("bot_token"),
		BotPassword: v.GetString("bot_password"),
		Database: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			Name:     v.GetString("db_name"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
		},
		HTTP: HTTPConfig{
			Addr:           v.GetString("http_addr"),
			Token:          v.GetString("api_token"),
			AllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		},
		Translator: TranslatorConfig{
			Kind:         strings.ToLower(v.GetString("translator")),
			GeminiAPIKey: v.GetString("gemini_api_key"),
			GeminiModel:  v.GetString("gemini_model"),
			SourceLang:   v.GetString("source_lang"),
			TargetLang:   v.GetString("target_lang"),
			GlossaryPath: v.GetString("glossary_path"),
		},
		SnapshotRetentionDays: v.GetInt("snapshot_retention_days"),
	}

	if cfg.HTTP.Token == "" {
		cfg.HTTP.Token = cfg.BotPassword
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.BotPassword == "" {
		return fmt.Errorf("BOT_PASSWORD is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}

	switch c.Translator.Kind {
	case TranslatorDictionary:
	case TranslatorGemini:
		if c.Translator.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when TRANSLATOR=%s", TranslatorGemini)
		}
	default:
		return fmt.Errorf("TRANSLATOR must be %q or %q, got %q", TranslatorDictionary, TranslatorGemini, c.Translator.Kind)
	}

	if c.SnapshotRetentionDays < 1 {
		return fmt.Errorf("SNAPSHOT_RETENTION_DAYS must be positive, got %d", c.SnapshotRetentionDays)
	}

	return nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
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
