package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SourceEnvVar is always exported into the test process environment, set to
// the absolute source directory, so the framework under test can locate
// importable source and fixtures.
const SourceEnvVar = "HHSCAN_SRC"

// DefaultViewers are the report viewer commands probed in order after a run.
var DefaultViewers = []string{"xdg-open", "open"}

// Config holds the coverage harness configuration.
type Config struct {
	SourceDir   string            `yaml:"source_dir"`   // Directory containing the module under test
	Packages    string            `yaml:"packages"`     // Package pattern passed to the test framework
	GoBinary    string            `yaml:"go_binary"`    // Path to the Go binary
	CoverageDir string            `yaml:"coverage_dir"` // Directory for profile and HTML report
	CoverMode   string            `yaml:"covermode"`    // Coverage mode (set, count, atomic)
	Bootstrap   string            `yaml:"bootstrap"`    // Optional shell command run before the tests
	Env         map[string]string `yaml:"env"`          // Extra environment for the test process
	Viewers     []string          `yaml:"viewers"`      // Viewer commands probed in order
	OpenReport  bool              `yaml:"open_report"`  // Whether to open the HTML report after the run
	LogDir      string            `yaml:"log_dir"`      // Directory for per-run logs
}

// DefaultConfig returns the configuration used when nothing is overridden:
// test everything under the current directory and open the report. The
// bootstrap step defaults to warming the module cache; set it empty to skip.
func DefaultConfig() Config {
	return Config{
		SourceDir:   ".",
		Packages:    "./...",
		GoBinary:    "go",
		CoverageDir: "coverage",
		CoverMode:   "atomic",
		Bootstrap:   "go mod download",
		Viewers:     append([]string(nil), DefaultViewers...),
		OpenReport:  true,
		LogDir:      "logs",
	}
}

// LoadConfigFile overlays a cover.yaml file onto the given base config.
// Only fields present in the file override the base.
func LoadConfigFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read harness config %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, fmt.Errorf("parse harness config %s: %w", path, err)
	}

	merged := base
	if file.SourceDir != "" {
		merged.SourceDir = file.SourceDir
	}
	if file.Packages != "" {
		merged.Packages = file.Packages
	}
	if file.GoBinary != "" {
		merged.GoBinary = file.GoBinary
	}
	if file.CoverageDir != "" {
		merged.CoverageDir = file.CoverageDir
	}
	if file.CoverMode != "" {
		merged.CoverMode = file.CoverMode
	}
	if file.Bootstrap != "" {
		merged.Bootstrap = file.Bootstrap
	}
	if len(file.Env) > 0 {
		merged.Env = file.Env
	}
	if len(file.Viewers) > 0 {
		merged.Viewers = file.Viewers
	}
	if file.LogDir != "" {
		merged.LogDir = file.LogDir
	}
	return merged, nil
}

// validate checks the fields the harness cannot default its way around.
func (c Config) validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("source directory is required")
	}
	if c.Packages == "" {
		return fmt.Errorf("package pattern is required")
	}
	if c.GoBinary == "" {
		return fmt.Errorf("go binary is required")
	}
	switch c.CoverMode {
	case "set", "count", "atomic":
	default:
		return fmt.Errorf("covermode must be set, count or atomic, got %q", c.CoverMode)
	}
	return nil
}
