// Package flags declares the CLI flags for hhscan. Every flag can also be set
// through an HHSCAN_-prefixed environment variable.
package flags

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "HHSCAN"

// prefixEnvVars derives the environment variable names for a flag.
func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Storage = &cli.StringFlag{
		Name:    "storage",
		Value:   "data/vacancies.json",
		EnvVars: prefixEnvVars("STORAGE"),
		Usage:   "Path to the vacancy storage file; the extension selects the backend (.json, .csv, .xlsx, .txt)",
	}
	APIURL = &cli.StringFlag{
		Name:    "api-url",
		Value:   "https://api.hh.ru",
		EnvVars: prefixEnvVars("API_URL"),
		Usage:   "Base URL of the hh.ru API",
	}
	APITimeout = &cli.DurationFlag{
		Name:    "api-timeout",
		Value:   10 * time.Second,
		EnvVars: prefixEnvVars("API_TIMEOUT"),
		Usage:   "Timeout for a single hh.ru API call",
	}
	Area = &cli.IntFlag{
		Name:    "area",
		Value:   113, // Russia
		EnvVars: prefixEnvVars("AREA"),
		Usage:   "hh.ru area identifier to search in",
	}
	PerPage = &cli.IntFlag{
		Name:    "per-page",
		Value:   100,
		EnvVars: prefixEnvVars("PER_PAGE"),
		Usage:   "Number of vacancies to request per page",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between fetch runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	HealthzAddr = &cli.StringFlag{
		Name:    "healthz-addr",
		Value:   ":7300",
		EnvVars: prefixEnvVars("HEALTHZ_ADDR"),
		Usage:   "Listen address for the healthz/metrics endpoint in continuous mode",
	}

	// Coverage harness flags.
	SourceDir = &cli.StringFlag{
		Name:    "source-dir",
		Value:   ".",
		EnvVars: prefixEnvVars("SOURCE_DIR"),
		Usage:   "Directory containing the module under test",
	}
	Packages = &cli.StringFlag{
		Name:    "packages",
		Value:   "./...",
		EnvVars: prefixEnvVars("PACKAGES"),
		Usage:   "Package pattern to test with coverage",
	}
	GoBinary = &cli.StringFlag{
		Name:    "go-binary",
		Value:   "go",
		EnvVars: prefixEnvVars("GO_BINARY"),
		Usage:   "Path to the Go binary to use for running tests",
	}
	CoverageDir = &cli.StringFlag{
		Name:    "coverage-dir",
		Value:   "coverage",
		EnvVars: prefixEnvVars("COVERAGE_DIR"),
		Usage:   "Directory for the coverage profile and HTML report",
	}
	CoverMode = &cli.StringFlag{
		Name:    "covermode",
		Value:   "atomic",
		EnvVars: prefixEnvVars("COVERMODE"),
		Usage:   "Coverage mode passed to the test framework (set, count, atomic)",
	}
	Bootstrap = &cli.StringFlag{
		Name:    "bootstrap",
		Value:   "go mod download",
		EnvVars: prefixEnvVars("BOOTSTRAP"),
		Usage:   "Shell command run before the tests to prepare the environment; set empty to skip",
	}
	NoOpen = &cli.BoolFlag{
		Name:    "no-open",
		Value:   false,
		EnvVars: prefixEnvVars("NO_OPEN"),
		Usage:   "Do not open the HTML report in a viewer after the run",
	}
	CoverConfig = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: prefixEnvVars("COVER_CONFIG"),
		Usage:   "Path to an optional cover.yaml harness configuration file",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: prefixEnvVars("LOG_DIR"),
		Usage:   "Directory to store per-run harness logs",
	}
)

var requiredFlags = []cli.Flag{
	Storage,
}

var optionalFlags = []cli.Flag{
	APIURL,
	APITimeout,
	Area,
	PerPage,
	RunInterval,
	HealthzAddr,
}

// CoverFlags are the flags accepted by the cover subcommand.
var CoverFlags = []cli.Flag{
	SourceDir,
	Packages,
	GoBinary,
	CoverageDir,
	CoverMode,
	Bootstrap,
	NoOpen,
	CoverConfig,
	LogDir,
}

// Flags contains the flags shared by the vacancy subcommands.
var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

// CheckRequired verifies that required flags carry a value.
func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		name := f.Names()[0]
		if ctx.String(name) == "" {
			return fmt.Errorf("flag %s is required", name)
		}
	}
	return nil
}
