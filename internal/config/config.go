package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/rectbin/internal/engine"
	"github.com/piwi3910/rectbin/internal/gcode"
	"github.com/piwi3910/rectbin/internal/model"
)

const envPrefix = "RECTBIN_"

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Bin       model.BinConfig
	Strategy  model.Strategy
	MaxBins   int
	LogLevel  string
	OutputDir string
	Genetic   engine.GeneticConfig
	GCode     gcode.Settings
}

// yamlConfig represents the YAML configuration file structure. Pointers
// distinguish unset keys from zero values.
type yamlConfig struct {
	Bin       yamlBin     `yaml:"bin"`
	Strategy  string      `yaml:"strategy"`
	MaxBins   *int        `yaml:"max_bins"`
	LogLevel  string      `yaml:"log_level"`
	OutputDir string      `yaml:"output_dir"`
	Genetic   yamlGenetic `yaml:"genetic"`
	GCode     yaml.Node   `yaml:"gcode"` // Decoded over the defaults
}

type yamlBin struct {
	Width         *int   `yaml:"width"`
	Height        *int   `yaml:"height"`
	AllowRotation *bool  `yaml:"allow_rotation"`
	LeftBorder    *int   `yaml:"left_border"`
	BottomBorder  *int   `yaml:"bottom_border"`
	Heuristic     string `yaml:"heuristic"`
}

type yamlGenetic struct {
	Population  *int   `yaml:"population"`
	Generations *int   `yaml:"generations"`
	Seed        *int64 `yaml:"seed"`
}

// CLIOverrides holds command-line flag overrides. Nil fields are not set.
type CLIOverrides struct {
	ConfigFile    string
	Width         *int
	Height        *int
	AllowRotation *bool
	LeftBorder    *int
	BottomBorder  *int
	Heuristic     *string
	Strategy      *string
	MaxBins       *int
	LogLevel      *string
	OutputDir     *string
}

// Load resolves configuration with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func defaultConfig() Config {
	return Config{
		Bin:       model.DefaultBinConfig(),
		Strategy:  model.StrategyGreedy,
		LogLevel:  "info",
		OutputDir: ".",
		Genetic:   engine.DefaultGeneticConfig(),
		GCode:     gcode.DefaultSettings(),
	}
}

func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &yamlCfg, nil
}

func applyYAMLConfig(cfg *Config, y *yamlConfig) error {
	setInt(&cfg.Bin.Width, y.Bin.Width)
	setInt(&cfg.Bin.Height, y.Bin.Height)
	setInt(&cfg.Bin.LeftBorder, y.Bin.LeftBorder)
	setInt(&cfg.Bin.BottomBorder, y.Bin.BottomBorder)
	if y.Bin.AllowRotation != nil {
		cfg.Bin.AllowRotation = *y.Bin.AllowRotation
	}
	if y.Bin.Heuristic != "" {
		cfg.Bin.Heuristic = y.Bin.Heuristic
	}
	if y.Strategy != "" {
		cfg.Strategy = model.Strategy(y.Strategy)
	}
	setInt(&cfg.MaxBins, y.MaxBins)
	if y.LogLevel != "" {
		cfg.LogLevel = y.LogLevel
	}
	if y.OutputDir != "" {
		cfg.OutputDir = y.OutputDir
	}
	setInt(&cfg.Genetic.PopulationSize, y.Genetic.Population)
	setInt(&cfg.Genetic.Generations, y.Genetic.Generations)
	if y.Genetic.Seed != nil {
		cfg.Genetic.Seed = *y.Genetic.Seed
	}
	if !y.GCode.IsZero() {
		if err := y.GCode.Decode(&cfg.GCode); err != nil {
			return fmt.Errorf("gcode section: %w", err)
		}
	}
	return nil
}

// applyEnvConfig reads RECTBIN_* variables. Malformed numbers are errors.
func applyEnvConfig(cfg *Config) error {
	ints := []struct {
		key string
		dst *int
	}{
		{"BIN_WIDTH", &cfg.Bin.Width},
		{"BIN_HEIGHT", &cfg.Bin.Height},
		{"LEFT_BORDER", &cfg.Bin.LeftBorder},
		{"BOTTOM_BORDER", &cfg.Bin.BottomBorder},
		{"MAX_BINS", &cfg.MaxBins},
	}
	for _, e := range ints {
		raw := env(e.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s%s: invalid integer %q", envPrefix, e.key, raw)
		}
		*e.dst = v
	}

	if raw := env("ALLOW_ROTATION"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%sALLOW_ROTATION: invalid boolean %q", envPrefix, raw)
		}
		cfg.Bin.AllowRotation = v
	}
	if v := env("HEURISTIC"); v != "" {
		cfg.Bin.Heuristic = v
	}
	if v := env("STRATEGY"); v != "" {
		cfg.Strategy = model.Strategy(v)
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	return nil
}

func applyCLIOverrides(cfg *Config, o *CLIOverrides) {
	setInt(&cfg.Bin.Width, o.Width)
	setInt(&cfg.Bin.Height, o.Height)
	setInt(&cfg.Bin.LeftBorder, o.LeftBorder)
	setInt(&cfg.Bin.BottomBorder, o.BottomBorder)
	setInt(&cfg.MaxBins, o.MaxBins)
	if o.AllowRotation != nil {
		cfg.Bin.AllowRotation = *o.AllowRotation
	}
	setString(&cfg.Bin.Heuristic, o.Heuristic)
	setString(&cfg.LogLevel, o.LogLevel)
	setString(&cfg.OutputDir, o.OutputDir)
	if o.Strategy != nil && *o.Strategy != "" {
		cfg.Strategy = model.Strategy(*o.Strategy)
	}
}

func validateConfig(cfg Config) error {
	if err := cfg.Bin.Validate(); err != nil {
		return err
	}
	if _, err := engine.ParseHeuristic(cfg.Bin.Heuristic); err != nil {
		return err
	}
	switch cfg.Strategy {
	case model.StrategyGreedy, model.StrategySequential, model.StrategyGenetic:
	default:
		return fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}
	if cfg.MaxBins < 0 {
		return fmt.Errorf("max bins must be >= 0, got %d", cfg.MaxBins)
	}
	return cfg.GCode.Validate()
}

// Optimizer builds an optimizer from the resolved configuration.
func (c Config) Optimizer() *engine.Optimizer {
	return &engine.Optimizer{
		Config:   c.Bin,
		Strategy: c.Strategy,
		MaxBins:  c.MaxBins,
		Genetic:  c.Genetic,
	}
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}
