// Package config loads ingest configuration from environment variables and
// an optional YAML file, with env taking precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Ingest  IngestConfig  `yaml:"ingest" envconfig:"INGEST"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/ingest.log"`
}

// PathsConfig contains file system paths configuration.
type PathsConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output" validate:"required"`
}

// IngestConfig bounds the heuristic scans so a malformed workbook cannot
// drag the pipeline through thousands of empty rows.
type IngestConfig struct {
	MaxHeaderScanRows int `yaml:"max_header_scan_rows" envconfig:"MAX_HEADER_SCAN_ROWS" default:"60" validate:"min=1"`
	MaxMetadataRows   int `yaml:"max_metadata_rows" envconfig:"MAX_METADATA_ROWS" default:"50" validate:"min=1"`
	MaxMetadataCols   int `yaml:"max_metadata_cols" envconfig:"MAX_METADATA_COLS" default:"30" validate:"min=1"`
	MaxPeriod         int `yaml:"max_period" envconfig:"MAX_PERIOD" default:"90" validate:"min=1"`
}

// Load loads configuration from environment variables and an optional
// config file.
func Load() (*Config, error) {
	return LoadFrom(configFilePath())
}

// LoadFrom loads configuration using the given YAML file path. A missing
// file is not an error; env values and defaults apply.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process("FINETL", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			fileCfg, err := loadFromFile(configFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load config from file: %w", err)
			}
			cfg = mergeConfigs(*fileCfg, cfg)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func configFilePath() string {
	if p := os.Getenv("FINETL_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(".", "config.yaml")
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs merges file config with env config (env takes precedence).
func mergeConfigs(fileConfig, envConfig Config) Config {
	if envConfig.Logging.Level == "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Format == "" {
		envConfig.Logging.Format = fileConfig.Logging.Format
	}
	if envConfig.Logging.Output == "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Logging.FilePath == "" {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}
	if envConfig.Paths.OutputDir == "" {
		envConfig.Paths.OutputDir = fileConfig.Paths.OutputDir
	}
	if envConfig.Ingest.MaxHeaderScanRows == 0 {
		envConfig.Ingest.MaxHeaderScanRows = fileConfig.Ingest.MaxHeaderScanRows
	}
	if envConfig.Ingest.MaxMetadataRows == 0 {
		envConfig.Ingest.MaxMetadataRows = fileConfig.Ingest.MaxMetadataRows
	}
	if envConfig.Ingest.MaxMetadataCols == 0 {
		envConfig.Ingest.MaxMetadataCols = fileConfig.Ingest.MaxMetadataCols
	}
	if envConfig.Ingest.MaxPeriod == 0 {
		envConfig.Ingest.MaxPeriod = fileConfig.Ingest.MaxPeriod
	}
	return envConfig
}

// validate validates the configuration.
func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	return nil
}
