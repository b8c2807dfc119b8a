package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	// Backend the client talks to
	Backend struct {
		BaseURL string `toml:"base_url" validate:"required,url"`
	} `toml:"backend"`

	// CLI
	CLI struct {
		RequestTimeout int    `toml:"request_timeout" validate:"gte=1"` // seconds, one-shot requests
		StreamTimeout  int    `toml:"stream_timeout" validate:"gte=0"`  // seconds, 0 waits for the job forever
		LogDir         string `toml:"log_dir" validate:"required"`
		Verbose        bool   `toml:"verbose"`
		DownloadDir    string `toml:"download_dir"`
	} `toml:"cli"`

	// API is the local development backend
	API struct {
		Host           string `toml:"host" validate:"required"`
		Port           int    `toml:"port" validate:"gte=1,lte=65535"`
		DataPath       string `toml:"data_path" validate:"required"`
		ExportPath     string `toml:"export_path" validate:"required"`
		ScraperCommand string `toml:"scraper_command"`
	} `toml:"api"`
}

// DefaultConfig returns a config with default values
// Paths match the layout the scraper writes to
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.Backend.BaseURL = "http://localhost:5001"
	cfg.CLI.RequestTimeout = 30
	cfg.CLI.StreamTimeout = 0
	cfg.CLI.LogDir = "tmp"
	cfg.CLI.DownloadDir = "."
	cfg.API.Host = "0.0.0.0"
	cfg.API.Port = 5001
	cfg.API.DataPath = filepath.Join("data", "merged.json")
	cfg.API.ExportPath = filepath.Join("data", "final_dorahacks_data.xlsx")
	cfg.API.ScraperCommand = "python3 scraper/main.py"
	return cfg
}

// RequestTimeout is the timeout for one-shot backend requests
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.CLI.RequestTimeout) * time.Second
}

// StreamTimeout is the optional deadline for a job's progress stream
func (c *Config) StreamTimeout() time.Duration {
	return time.Duration(c.CLI.StreamTimeout) * time.Second
}

// Addr is the development backend listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// Validate checks the config against its struct tags
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".config", "buidl-explorer")
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadEnvFile loads KEY=value pairs from path into the environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Load reads configuration from ~/.config/buidl-explorer/config.toml
// Creates the file with defaults if it doesn't exist
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from path, creating it with defaults if missing
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveTo(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		if err := applyEnv(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	mergeDefaults(&cfg)
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeDefaults fills zero values with defaults
func mergeDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = def.Backend.BaseURL
	}
	if cfg.CLI.RequestTimeout == 0 {
		cfg.CLI.RequestTimeout = def.CLI.RequestTimeout
	}
	if cfg.CLI.LogDir == "" {
		cfg.CLI.LogDir = def.CLI.LogDir
	}
	if cfg.CLI.DownloadDir == "" {
		cfg.CLI.DownloadDir = def.CLI.DownloadDir
	}
	if cfg.API.Host == "" {
		cfg.API.Host = def.API.Host
	}
	if cfg.API.Port == 0 {
		cfg.API.Port = def.API.Port
	}
	if cfg.API.DataPath == "" {
		cfg.API.DataPath = def.API.DataPath
	}
	if cfg.API.ExportPath == "" {
		cfg.API.ExportPath = def.API.ExportPath
	}
}

// applyEnv overrides file values with environment variables
func applyEnv(cfg *Config) error {
	if baseURL := os.Getenv("BASE_URL"); baseURL != "" {
		cfg.Backend.BaseURL = baseURL
	}
	if logDir := os.Getenv("EXPLORER_LOG_DIR"); logDir != "" {
		cfg.CLI.LogDir = logDir
	}
	if timeout := os.Getenv("EXPLORER_STREAM_TIMEOUT"); timeout != "" {
		secs, err := strconv.Atoi(timeout)
		if err != nil {
			return fmt.Errorf("invalid EXPLORER_STREAM_TIMEOUT %q: %w", timeout, err)
		}
		cfg.CLI.StreamTimeout = secs
	}
	return nil
}

// Save writes the configuration to the config file
func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(configPath string, cfg *Config) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Set assigns one value addressed as "section.key"
func (c *Config) Set(keyPath, value string) error {
	parts := strings.Split(keyPath, ".")
	if len(parts) != 2 {
		return fmt.Errorf("invalid key format: expected 'section.key'")
	}
	section, key := parts[0], parts[1]

	switch section {
	case "backend":
		switch key {
		case "base_url":
			c.Backend.BaseURL = value
		default:
			return fmt.Errorf("unknown backend key: %s", key)
		}
	case "cli":
		switch key {
		case "request_timeout":
			return setInt(&c.CLI.RequestTimeout, key, value)
		case "stream_timeout":
			return setInt(&c.CLI.StreamTimeout, key, value)
		case "log_dir":
			c.CLI.LogDir = value
		case "download_dir":
			c.CLI.DownloadDir = value
		case "verbose":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid verbose value: %s", value)
			}
			c.CLI.Verbose = b
		default:
			return fmt.Errorf("unknown cli key: %s", key)
		}
	case "api":
		switch key {
		case "host":
			c.API.Host = value
		case "port":
			return setInt(&c.API.Port, key, value)
		case "data_path":
			c.API.DataPath = value
		case "export_path":
			c.API.ExportPath = value
		case "scraper_command":
			c.API.ScraperCommand = value
		default:
			return fmt.Errorf("unknown api key: %s", key)
		}
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid %s value: %s", key, value)
	}
	*dst = n
	return nil
}
