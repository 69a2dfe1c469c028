package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"

	"github.com/reltab/reltab/internal/errors"
)

// Conversion modes and output formats accepted by the engine.
const (
	ModeFlattened  = "flattened"
	ModeNormalized = "normalized"

	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Config represents the complete configuration for reltab
type Config struct {
	Mode      string       `yaml:"mode"`
	Separator string       `yaml:"separator"`
	RootTable string       `yaml:"root_table"`
	Output    OutputConfig `yaml:"output"`
	Naming    NamingConfig `yaml:"naming"`
	Dev       DevConfig    `yaml:"dev"`
}

// OutputConfig controls where and how tables are written
type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// NamingConfig controls column header naming
type NamingConfig struct {
	SnakeCaseColumns bool `yaml:"snake_case_columns"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug   bool `yaml:"debug"`
	Verbose bool `yaml:"verbose"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Mode:      ModeFlattened,
		Separator: "/",
		RootTable: "root",
		Output: OutputConfig{
			Format: FormatCSV,
		},
		Naming: NamingConfig{
			SnakeCaseColumns: false,
		},
		Dev: DevConfig{
			Debug:   false,
			Verbose: false,
		},
	}
}

// Validate checks enum-valued fields.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeFlattened, ModeNormalized:
	default:
		return errors.NewConfigError(fmt.Sprintf("invalid mode '%s'", c.Mode), errors.ErrUnknownMode)
	}
	switch c.Output.Format {
	case FormatCSV, FormatSQLite:
	default:
		return errors.NewConfigError(fmt.Sprintf("invalid output format '%s'", c.Output.Format), errors.ErrUnknownFormat)
	}
	if c.Separator == "" {
		c.Separator = "/"
	}
	if c.RootTable == "" {
		c.RootTable = "root"
	}
	return nil
}

// ColumnName returns the header text for a column, applying naming rules.
func (c *Config) ColumnName(column string) string {
	if c.Naming.SnakeCaseColumns {
		return strcase.ToSnake(column)
	}
	return column
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".reltab.yml", ".reltab.yaml", "reltab.yml", "reltab.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// LoadConfigWithCLI loads config with CLI argument precedence. CLI values
// override the file only when they differ from the built-in defaults, so a
// config file still applies when flags are left at their defaults.
func LoadConfigWithCLI(configPath, cliMode, cliSeparator, cliRootTable, cliFormat, cliOutput string) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	if cliMode != "" && cliMode != ModeFlattened {
		cfg.Mode = cliMode
	}
	if cliSeparator != "" && cliSeparator != "/" {
		cfg.Separator = cliSeparator
	}
	if cliRootTable != "" && cliRootTable != "root" {
		cfg.RootTable = cliRootTable
	}
	if cliFormat != "" && cliFormat != FormatCSV {
		cfg.Output.Format = cliFormat
	}
	if cliOutput != "" {
		cfg.Output.Path = cliOutput
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
