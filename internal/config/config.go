package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file
const (
	EnvDatabaseURL   = "ROSTER_DATABASE_URL"
	EnvSessionSecret = "ROSTER_SESSION_SECRET"
	EnvRedisAddr     = "ROSTER_REDIS_ADDR"
)

// Config represents the application configuration
type Config struct {
	DatabaseURL     string        `yaml:"databaseURL" validate:"required"`
	HTTPAddr        string        `yaml:"httpAddr" validate:"required"`
	RedisAddr       string        `yaml:"redisAddr" validate:"required,hostname_port"`
	SessionSecret   string        `yaml:"sessionSecret" validate:"required,min=32"`
	SessionTTL      time.Duration `yaml:"sessionTTL" validate:"gt=0"`
	PublicBaseURL   string        `yaml:"publicBaseURL" validate:"required,url"`
	RosterSheetID   string        `yaml:"rosterSheetID,omitempty"`
	RosterSheetTab  string        `yaml:"rosterSheetTab,omitempty"`
	LogDir          string        `yaml:"logDir" validate:"required"`
	DefaultPageSize int           `yaml:"defaultPageSize" validate:"min=1,max=100"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

func defaults() Config {
	return Config{
		HTTPAddr:        ":8080",
		RedisAddr:       "localhost:6379",
		SessionTTL:      24 * time.Hour,
		LogDir:          "logs",
		DefaultPageSize: 15,
	}
}

// LoadWithEnv loads roster_config.{env}.yaml (falling back to
// roster_config.yaml) from the current or home directory. Variables from a
// .env file in the working directory are loaded first when it exists.
func LoadWithEnv(env string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	configPath, err := findConfigFile(env)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv(EnvSessionSecret); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.RedisAddr = v
	}
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// findConfigFile searches the current and home directories, preferring the
// environment-specific file
func findConfigFile(env string) (string, error) {
	names := []string{"roster_config.yaml"}
	if env != "" {
		names = append([]string{"roster_config." + env + ".yaml"}, names...)
	}

	homeDir, homeErr := os.UserHomeDir()

	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
		if homeErr != nil {
			continue
		}
		homePath := filepath.Join(homeDir, name)
		if _, err := os.Stat(homePath); err == nil {
			return homePath, nil
		}
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
