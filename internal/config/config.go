package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/piwi3910/labelnest/internal/engine"
	"github.com/piwi3910/labelnest/internal/model"
	"github.com/piwi3910/labelnest/internal/project"
)

// Output formats understood by the exporter.
const (
	FormatPDF    = "pdf"
	FormatLabels = "labels"
	FormatJSON   = "json"
	FormatXLSX   = "xlsx"
	FormatDXF    = "dxf"
)

// KnownFormats lists every output format, in the order files are written.
func KnownFormats() []string {
	return []string{FormatPDF, FormatLabels, FormatJSON, FormatXLSX, FormatDXF}
}

const (
	defaultPaper     = "A4"
	defaultOutput    = "output.pdf"
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
	defaultEnvFile   = ".env"
	envPrefix        = "LABELNEST_"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Paper         string   `yaml:"paper"`
	Margin        float64  `yaml:"margin"`
	Gutter        float64  `yaml:"gutter"`
	AllowRotation bool     `yaml:"allow_rotation"`
	Heuristic     string   `yaml:"heuristic"`
	Output        string   `yaml:"output"`
	Formats       []string `yaml:"formats"`
	LogLevel      string   `yaml:"log_level"`
	LogFormat     string   `yaml:"log_format"`
	MetricsFile   string   `yaml:"metrics_file"`
	HistoryFile   string   `yaml:"history_file"` // Empty disables run history
}

// yamlConfig mirrors Config with pointer fields so that explicit zero
// values in the file (margin: 0, allow_rotation: false) still apply.
type yamlConfig struct {
	Paper         *string  `yaml:"paper"`
	Margin        *float64 `yaml:"margin"`
	Gutter        *float64 `yaml:"gutter"`
	AllowRotation *bool    `yaml:"allow_rotation"`
	Heuristic     *string  `yaml:"heuristic"`
	Output        *string  `yaml:"output"`
	Formats       []string `yaml:"formats"`
	LogLevel      *string  `yaml:"log_level"`
	LogFormat     *string  `yaml:"log_format"`
	MetricsFile   *string  `yaml:"metrics_file"`
	HistoryFile   *string  `yaml:"history_file"`
}

// CLIOverrides holds command-line flag overrides. Nil fields are unset.
type CLIOverrides struct {
	ConfigFile    string
	EnvFile       string // Defaults to .env in the working directory, if present
	Paper         *string
	Margin        *float64
	Gutter        *float64
	AllowRotation *bool
	Heuristic     *string
	Output        *string
	Formats       []string
	LogLevel      *string
	LogFormat     *string
	MetricsFile   *string
	HistoryFile   *string
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	if overrides == nil {
		overrides = &CLIOverrides{}
	}

	if err := loadEnvFile(overrides.EnvFile); err != nil {
		return Config{}, err
	}

	cfg := defaultConfig()

	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
	}

	applyCLIOverrides(&cfg, overrides)

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	packing := model.DefaultConfiguration()
	return Config{
		Paper:         defaultPaper,
		Margin:        packing.Margin,
		Gutter:        packing.Gutter,
		AllowRotation: packing.AllowRotation,
		Heuristic:     engine.BestShortSideFit.String(),
		Output:        defaultOutput,
		Formats:       []string{FormatPDF},
		LogLevel:      defaultLogLevel,
		LogFormat:     defaultLogFormat,
		HistoryFile:   project.DefaultHistoryPath(),
	}
}

// loadEnvFile seeds the process environment from a dotenv file. Variables
// already set are left alone. An explicit path must exist; the default
// .env is optional.
func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", defaultEnvFile, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// loadFromFile loads configuration from a YAML file.
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

func applyYAMLConfig(cfg *Config, y *yamlConfig) {
	setString(&cfg.Paper, y.Paper)
	setFloat(&cfg.Margin, y.Margin)
	setFloat(&cfg.Gutter, y.Gutter)
	if y.AllowRotation != nil {
		cfg.AllowRotation = *y.AllowRotation
	}
	setString(&cfg.Heuristic, y.Heuristic)
	setString(&cfg.Output, y.Output)
	if len(y.Formats) > 0 {
		cfg.Formats = normalizeFormats(y.Formats)
	}
	setString(&cfg.LogLevel, y.LogLevel)
	setString(&cfg.LogFormat, y.LogFormat)
	if y.MetricsFile != nil {
		cfg.MetricsFile = strings.TrimSpace(*y.MetricsFile)
	}
	if y.HistoryFile != nil {
		cfg.HistoryFile = strings.TrimSpace(*y.HistoryFile)
	}
}

// applyEnvConfig applies environment variable configuration. Malformed
// numbers and booleans are reported rather than silently ignored.
func applyEnvConfig(cfg *Config) error {
	if v := env("PAPER"); v != "" {
		cfg.Paper = v
	}
	if v := env("MARGIN"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sMARGIN: invalid number %q", envPrefix, v)
		}
		cfg.Margin = f
	}
	if v := env("GUTTER"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sGUTTER: invalid number %q", envPrefix, v)
		}
		cfg.Gutter = f
	}
	if v := env("NO_ROTATION"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sNO_ROTATION: invalid boolean %q", envPrefix, v)
		}
		cfg.AllowRotation = !b
	}
	if v := env("HEURISTIC"); v != "" {
		cfg.Heuristic = v
	}
	if v := env("OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := env("FORMATS"); v != "" {
		cfg.Formats = normalizeFormats(strings.Split(v, ","))
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := env("METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}
	if v, ok := os.LookupEnv(envPrefix + "HISTORY_FILE"); ok {
		cfg.HistoryFile = strings.TrimSpace(v)
	}
	return nil
}

func applyCLIOverrides(cfg *Config, o *CLIOverrides) {
	setString(&cfg.Paper, o.Paper)
	setFloat(&cfg.Margin, o.Margin)
	setFloat(&cfg.Gutter, o.Gutter)
	if o.AllowRotation != nil {
		cfg.AllowRotation = *o.AllowRotation
	}
	setString(&cfg.Heuristic, o.Heuristic)
	setString(&cfg.Output, o.Output)
	if len(o.Formats) > 0 {
		cfg.Formats = normalizeFormats(o.Formats)
	}
	setString(&cfg.LogLevel, o.LogLevel)
	setString(&cfg.LogFormat, o.LogFormat)
	if o.MetricsFile != nil {
		cfg.MetricsFile = strings.TrimSpace(*o.MetricsFile)
	}
	if o.HistoryFile != nil {
		cfg.HistoryFile = strings.TrimSpace(*o.HistoryFile)
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.Margin < 0 {
		return fmt.Errorf("margin must be >= 0, got %g", cfg.Margin)
	}
	if cfg.Gutter < 0 {
		return fmt.Errorf("gutter must be >= 0, got %g", cfg.Gutter)
	}
	if _, err := model.ParsePaperSize(cfg.Paper); err != nil {
		return err
	}
	if _, err := engine.ParseHeuristic(cfg.Heuristic); err != nil {
		return err
	}
	if strings.TrimSpace(cfg.Output) == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if len(cfg.Formats) == 0 {
		return fmt.Errorf("at least one output format is required")
	}
	for _, f := range cfg.Formats {
		if !isKnownFormat(f) {
			return fmt.Errorf("unknown output format %q (known: %s)", f, strings.Join(KnownFormats(), ", "))
		}
	}
	return nil
}

// PaperSize returns the parsed paper size.
func (c Config) PaperSize() (model.PaperSize, error) {
	return model.ParsePaperSize(c.Paper)
}

// PackingConfiguration returns the sheet layout options.
func (c Config) PackingConfiguration() model.PackingConfiguration {
	return model.PackingConfiguration{
		Margin:        c.Margin,
		Gutter:        c.Gutter,
		AllowRotation: c.AllowRotation,
	}
}

// ParsedHeuristic returns the parsed placement heuristic.
func (c Config) ParsedHeuristic() (engine.Heuristic, error) {
	return engine.ParseHeuristic(c.Heuristic)
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + name))
}

func setString(dst *string, src *string) {
	if src != nil && strings.TrimSpace(*src) != "" {
		*dst = strings.TrimSpace(*src)
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

// normalizeFormats lower-cases, trims and de-duplicates format names,
// splitting comma-separated entries.
func normalizeFormats(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, raw := range in {
		for _, f := range strings.Split(raw, ",") {
			f = strings.ToLower(strings.TrimSpace(f))
			if f == "" || seen[f] {
				continue
			}
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func isKnownFormat(f string) bool {
	for _, k := range KnownFormats() {
		if f == k {
			return true
		}
	}
	return false
}
