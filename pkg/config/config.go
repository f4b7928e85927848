package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config represents the rigd configuration
type Config struct {
	Radio struct {
		Model       string `yaml:"model"`
		Device      string `yaml:"device"`
		BaudRate    int    `yaml:"baud_rate"`
		TimeoutMs   int    `yaml:"timeout_ms"`
		CatalogFile string `yaml:"catalog_file"`
	} `yaml:"radio"`

	Server struct {
		RigctldPort int    `yaml:"rigctld_port"`
		HTTPPort    int    `yaml:"http_port"`
		BindAddress string `yaml:"bind_address"`
	} `yaml:"server"`

	Storage struct {
		DatabasePath string `yaml:"database_path"`
	} `yaml:"storage"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		Console    bool   `yaml:"console"`
		MaxSize    int    `yaml:"max_size"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	if config.Radio.BaudRate == 0 {
		config.Radio.BaudRate = 38400
	}
	if config.Radio.TimeoutMs == 0 {
		config.Radio.TimeoutMs = 1000
	}
	if config.Server.RigctldPort == 0 {
		config.Server.RigctldPort = 4532
	}
	if config.Server.HTTPPort == 0 {
		config.Server.HTTPPort = 8073
	}
	if config.Server.BindAddress == "" {
		config.Server.BindAddress = "127.0.0.1"
	}
	if config.Storage.DatabasePath == "" {
		config.Storage.DatabasePath = "./rigd.db"
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = 100
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = 5
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = 30
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Radio.Model == "" {
		return fmt.Errorf("radio model is required")
	}
	if c.Radio.Device == "" {
		return fmt.Errorf("radio device is required")
	}
	if c.Radio.BaudRate < 300 {
		return fmt.Errorf("baud rate %d is not usable", c.Radio.BaudRate)
	}
	return nil
}
