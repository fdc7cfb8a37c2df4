package clientconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL          string `yaml:"base_url"`
	TemplateMode     string `yaml:"template_mode"`
	ProgressMode     string `yaml:"progress_mode"`
	Token            string `yaml:"token"`
	PollIntervalMS   int    `yaml:"poll_interval_ms"`
	RequestTimeoutS  int    `yaml:"request_timeout_s"`
	// PreviewWidth and PreviewHeight describe the preview anchors are picked
	// on. Zero means anchors are template pixels.
	PreviewWidth     int    `yaml:"preview_width"`
	PreviewHeight    int    `yaml:"preview_height"`
	MaxTemplateBytes int64  `yaml:"max_template_bytes"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          "http://localhost:8080",
		TemplateMode:     "predefined",
		ProgressMode:     "polled",
		PollIntervalMS:   500,
		RequestTimeoutS:  30,
		MaxTemplateBytes: 10 << 20,
	}
}

// DefaultPath is ~/.config/certctl/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "certctl", "config.yaml")
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, return default config (not an error)
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.TemplateMode != "upload" {
		cfg.TemplateMode = "predefined"
	}
	if cfg.ProgressMode != "simulated" {
		cfg.ProgressMode = "polled"
	}
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = 500
	}
	if cfg.RequestTimeoutS <= 0 {
		cfg.RequestTimeoutS = 30
	}
	return cfg, nil
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a bearer token.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutS) * time.Second
}
