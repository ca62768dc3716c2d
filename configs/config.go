package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/soapsift/soapsift/internal/domain"
)

// FileConfig defines the structure loaded from the YAML configuration file.
// It carries the service metadata a WSDL cannot express: authentication,
// integration guidance and organizational identifiers.
type FileConfig struct {
	API struct {
		Version   string `yaml:"version"`
		Category  string `yaml:"category"`
		OwningApp string `yaml:"owning_app"`
		SealID    string `yaml:"seal_id"`
	} `yaml:"api"`
	Auth struct {
		Type        string `yaml:"type"`
		Description string `yaml:"description"`
		Location    string `yaml:"location"`
		ParamName   string `yaml:"param_name"`
	} `yaml:"auth"`
	Integration struct {
		Steps         []string               `yaml:"steps"`
		BestPractices string                 `yaml:"best_practices"`
		UseCases      []string               `yaml:"use_cases"`
		Custom        map[string]interface{} `yaml:"custom"`
	} `yaml:"integration"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Fields load from environment variables with the
// prefix "SOAPSIFT_", potentially overriding file settings.
type Config struct {
	// Config File Path (loaded first from env).
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	InputDir  string `envconfig:"INPUT_DIR" default:"./input"`
	OutputDir string `envconfig:"OUTPUT_DIR" default:"./output"`

	ChunkStrategy string `envconfig:"CHUNK_STRATEGY" default:"endpoint-based"`
	ChunkSize     int    `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap  int    `envconfig:"CHUNK_OVERLAP" default:"200"`
	MinChunkSize  int    `envconfig:"MIN_CHUNK_SIZE" default:"40"`
	MaxChunks     int    `envconfig:"MAX_CHUNKS" default:"50"`

	Workers       int  `envconfig:"WORKERS" default:"4"`
	ExportOpenAPI bool `envconfig:"EXPORT_OPENAPI" default:"false"`

	SinkURL     string        `envconfig:"SINK_URL"`
	SinkAPIKey  string        `envconfig:"SINK_API_KEY"`
	SinkTimeout time.Duration `envconfig:"SINK_TIMEOUT" default:"15s"`

	OtelExporterOtlpEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool   `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string `envconfig:"LOG_LEVEL" default:"info"`

	// File-loaded spec defaults (merged, not env-overridable field by field).
	APIVersion  string
	Category    string
	OwningApp   string
	SealID      string
	Auth        domain.Authentication
	Integration domain.Integration
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Strategy validates and returns the configured chunking strategy.
func (c *Config) Strategy() (domain.Strategy, error) {
	return domain.ParseStrategy(c.ChunkStrategy)
}

// Load loads configuration first from environment variables (to get the file
// path), then from the specified YAML file, and finally merges/overrides
// with environment variables again.
func Load() (*Config, error) {
	// 1. Load initial config from env (primarily to get ConfigFilePath).
	var initialCfg Config
	if err := envconfig.Process("soapsift", &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	// 2. Load config from YAML file if a path is specified.
	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		slog.Info("Loaded configuration from file.", "path", initialCfg.ConfigFilePath)
	} else {
		slog.Info("No config file path specified (SOAPSIFT_CONFIG_FILE), using defaults/env vars only.")
	}

	// 3. Start from initial env values, apply file-loaded defaults, then
	// process env vars again for overrides.
	finalCfg := initialCfg
	finalCfg.APIVersion = fileCfg.API.Version
	finalCfg.Category = fileCfg.API.Category
	finalCfg.OwningApp = fileCfg.API.OwningApp
	finalCfg.SealID = fileCfg.API.SealID
	finalCfg.Auth = domain.Authentication{
		Type:        fileCfg.Auth.Type,
		Description: fileCfg.Auth.Description,
		Location:    fileCfg.Auth.Location,
		ParamName:   fileCfg.Auth.ParamName,
	}
	finalCfg.Integration = domain.Integration{
		Steps:         fileCfg.Integration.Steps,
		BestPractices: fileCfg.Integration.BestPractices,
		UseCases:      fileCfg.Integration.UseCases,
	}
	if len(fileCfg.Integration.Custom) > 0 {
		finalCfg.Integration.Custom = make(map[string]domain.MetaValue, len(fileCfg.Integration.Custom))
		for key, value := range fileCfg.Integration.Custom {
			finalCfg.Integration.Custom[key] = domain.MetaFromAny(value)
		}
	}

	if err := envconfig.Process("soapsift", &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	if _, err := finalCfg.Strategy(); err != nil {
		return nil, err
	}
	return &finalCfg, nil
}
