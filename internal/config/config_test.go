package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/labelnest/internal/engine"
	"github.com/piwi3910/labelnest/internal/model"
)

var envKeys = []string{
	"PAPER", "MARGIN", "GUTTER", "NO_ROTATION", "HEURISTIC", "OUTPUT",
	"FORMATS", "LOG_LEVEL", "LOG_FORMAT", "METRICS_FILE",
}

// clearEnv blanks every LABELNEST_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(envPrefix+k, "")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool        { return &b }

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "A4", cfg.Paper)
	assert.Equal(t, 5.0, cfg.Margin)
	assert.Equal(t, 2.0, cfg.Gutter)
	assert.True(t, cfg.AllowRotation)
	assert.Equal(t, "BestShortSideFit", cfg.Heuristic)
	assert.Equal(t, "output.pdf", cfg.Output)
	assert.Equal(t, []string{FormatPDF}, cfg.Formats)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.MetricsFile)

	paper, err := cfg.PaperSize()
	require.NoError(t, err)
	assert.Equal(t, model.PaperA4, paper)
	assert.Equal(t, model.DefaultConfiguration(), cfg.PackingConfiguration())
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LABELNEST_PAPER", "a5")
	t.Setenv("LABELNEST_MARGIN", "3.5")
	t.Setenv("LABELNEST_GUTTER", "0")
	t.Setenv("LABELNEST_NO_ROTATION", "true")
	t.Setenv("LABELNEST_HEURISTIC", "baf")
	t.Setenv("LABELNEST_FORMATS", "pdf, JSON,pdf")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "a5", cfg.Paper)
	assert.Equal(t, 3.5, cfg.Margin)
	assert.Equal(t, 0.0, cfg.Gutter)
	assert.False(t, cfg.AllowRotation)
	assert.Equal(t, []string{FormatPDF, FormatJSON}, cfg.Formats)

	h, err := cfg.ParsedHeuristic()
	require.NoError(t, err)
	assert.Equal(t, engine.BestAreaFit, h)
}

func TestLoadEnvironmentRejectsBadNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("LABELNEST_MARGIN", "wide")

	_, err := Load(nil)
	assert.Error(t, err)
}

func TestYAMLOverridesEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("LABELNEST_PAPER", "A3")
	t.Setenv("LABELNEST_MARGIN", "8")

	path := writeFile(t, "labelnest.yaml", `
paper: A6
margin: 0
allow_rotation: false
formats: [pdf, dxf]
metrics_file: /tmp/labelnest.prom
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	require.NoError(t, err)

	assert.Equal(t, "A6", cfg.Paper)
	assert.Equal(t, 0.0, cfg.Margin, "explicit zero in YAML applies")
	assert.Equal(t, 2.0, cfg.Gutter, "unset YAML keys keep lower layers")
	assert.False(t, cfg.AllowRotation)
	assert.Equal(t, []string{FormatPDF, FormatDXF}, cfg.Formats)
	assert.Equal(t, "/tmp/labelnest.prom", cfg.MetricsFile)
}

func TestCLIOverridesEverything(t *testing.T) {
	clearEnv(t)
	t.Setenv("LABELNEST_GUTTER", "4")
	path := writeFile(t, "labelnest.yaml", "paper: A6\nheuristic: bl\n")

	cfg, err := Load(&CLIOverrides{
		ConfigFile:    path,
		Paper:         strPtr("100x150"),
		Gutter:        floatPtr(1),
		AllowRotation: boolPtr(false),
		Output:        strPtr("out/sheet.pdf"),
		Formats:       []string{"pdf,labels"},
	})
	require.NoError(t, err)

	assert.Equal(t, "100x150", cfg.Paper)
	assert.Equal(t, 1.0, cfg.Gutter)
	assert.False(t, cfg.AllowRotation)
	assert.Equal(t, "bl", cfg.Heuristic, "YAML value survives when no flag is given")
	assert.Equal(t, "out/sheet.pdf", cfg.Output)
	assert.Equal(t, []string{FormatPDF, FormatLabels}, cfg.Formats)
}

func TestUnsetRotationKeepsLowerLayer(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "labelnest.yaml", "allow_rotation: false\n")

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	require.NoError(t, err)
	assert.False(t, cfg.AllowRotation)
}

func TestCLIRotationOverridesYAMLAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LABELNEST_NO_ROTATION", "true")

	cfg, err := Load(&CLIOverrides{AllowRotation: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, cfg.AllowRotation, "flag beats env")

	path := writeFile(t, "labelnest.yaml", "allow_rotation: false\n")
	cfg, err = Load(&CLIOverrides{ConfigFile: path, AllowRotation: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, cfg.AllowRotation, "flag beats YAML")
}

func TestCLINegativeMarginIsRejected(t *testing.T) {
	clearEnv(t)
	_, err := Load(&CLIOverrides{Margin: floatPtr(-3)})
	assert.ErrorContains(t, err, "margin must be >= 0")

	_, err = Load(&CLIOverrides{Gutter: floatPtr(-7)})
	assert.ErrorContains(t, err, "gutter must be >= 0")
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides variables that are already present, so this
	// key must be absent, not blank.
	require.NoError(t, os.Unsetenv("LABELNEST_OUTPUT"))
	t.Cleanup(func() { os.Unsetenv("LABELNEST_OUTPUT") })

	envFile := writeFile(t, "test.env", "LABELNEST_OUTPUT=from-dotenv.pdf\n")

	cfg, err := Load(&CLIOverrides{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.pdf", cfg.Output)
}

func TestLoadMissingFiles(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(&CLIOverrides{EnvFile: filepath.Join(dir, "missing.env")})
	assert.Error(t, err, "explicit env file must exist")

	_, err = Load(&CLIOverrides{ConfigFile: filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	cases := map[string]func(*Config){
		"negative margin": func(c *Config) { c.Margin = -1 },
		"negative gutter": func(c *Config) { c.Gutter = -0.5 },
		"bad paper":       func(c *Config) { c.Paper = "A9" },
		"bad heuristic":   func(c *Config) { c.Heuristic = "guillotine" },
		"empty output":    func(c *Config) { c.Output = " " },
		"no formats":      func(c *Config) { c.Formats = nil },
		"unknown format":  func(c *Config) { c.Formats = []string{"svg"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := defaultConfig()
			mutate(&cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}

	assert.NoError(t, validateConfig(defaultConfig()))
}

func TestNormalizeFormats(t *testing.T) {
	assert.Equal(t, []string{"pdf", "json", "dxf"}, normalizeFormats([]string{" PDF ,json", "", "dxf", "pdf"}))
	assert.Empty(t, normalizeFormats([]string{" , "}))
}
