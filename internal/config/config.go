package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the main application configuration
type Config struct {
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	PanelApp   PanelAppConfig   `mapstructure:"panelapp"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ReconcilerConfig carries the lab-specific option sets consumed verbatim by
// the core: covered NGS test methods, panel IDs known to be unreachable
// through PanelApp, and genes without clinical transcripts.
type ReconcilerConfig struct {
	NGSTestMethods     []string `mapstructure:"ngs_test_methods"`
	UnaccessiblePanels []string `mapstructure:"unaccessible_panels"`
	NoTranscriptGenes  []string `mapstructure:"no_transcript_genes"`
	OutputDir          string   `mapstructure:"output_dir"`
}

// PanelAppConfig represents PanelApp API client configuration
type PanelAppConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit int           `mapstructure:"rate_limit"`
	CacheSize int           `mapstructure:"cache_size"`
}

// DatabaseConfig represents the panel database used by the presence check
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig represents the report viewer HTTP configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Manager implements configuration loading using Viper
type Manager struct {
	config *Config
}

// NewManager creates a new configuration manager. An empty configFile falls
// back to the default search paths.
func NewManager(configFile string) (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(configFile); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults
func (m *Manager) loadConfig(configFile string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/test-directory-reconciler/")
	}

	viper.SetEnvPrefix("TDC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using defaults and environment variables
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	viper.SetDefault("reconciler.ngs_test_methods", []string{
		"WES", "WGS", "Medium panel", "Small panel",
		"Single gene sequencing <10 amplicons",
		"Single gene sequencing <=10 amplicons",
		"Single gene sequencing >=10 amplicons",
		"Single gene testing (<10 amplicons)",
		"WES or Large panel", "WES or Large Panel", "WES or Large penel",
		"WES or Medium panel", "WES or Medium Panel", "WES or Small Panel",
		"small panel", "Medium panel",
	})
	viper.SetDefault("reconciler.unaccessible_panels", []string{})
	viper.SetDefault("reconciler.no_transcript_genes", []string{})
	viper.SetDefault("reconciler.output_dir", "output")

	viper.SetDefault("panelapp.base_url", "https://panelapp.genomicsengland.co.uk/api/v1")
	viper.SetDefault("panelapp.timeout", "30s")
	viper.SetDefault("panelapp.rate_limit", 3)
	viper.SetDefault("panelapp.cache_size", 512)

	viper.SetDefault("database.driver", "sqlite")
	viper.SetDefault("database.dsn", "panel_database.db")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.PanelApp.BaseURL == "" {
		return fmt.Errorf("panelapp base URL is required")
	}
	if config.PanelApp.RateLimit <= 0 {
		return fmt.Errorf("invalid panelapp rate limit: %d", config.PanelApp.RateLimit)
	}

	switch config.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid database driver: %s", config.Database.Driver)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// UnaccessiblePanelSet returns the blacklisted panel IDs as a set.
func (m *Manager) UnaccessiblePanelSet() map[string]struct{} {
	return toSet(m.config.Reconciler.UnaccessiblePanels)
}

// NoTranscriptGeneSet returns the no-transcript gene IDs as a set.
func (m *Manager) NoTranscriptGeneSet() map[string]struct{} {
	return toSet(m.config.Reconciler.NoTranscriptGenes)
}

// NGSTestMethodSet returns the covered NGS test methods as a set.
func (m *Manager) NGSTestMethodSet() map[string]struct{} {
	return toSet(m.config.Reconciler.NGSTestMethods)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
