// Package harness runs the test suite of a Go module with coverage enabled,
// prints a per-function summary, renders an HTML report and opens it in the
// first available viewer. Steps run in a fixed order and a failing step does
// not stop the ones after it; the test exit status is carried through to the
// caller instead of being branched on mid-run.
package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/hh-tools/hhscan/logging"
	"github.com/hh-tools/hhscan/metrics"
)

const (
	// ProfileFileName is the raw coverage profile written by the test step.
	ProfileFileName = "coverage.out"
	// ReportFileName is the HTML report rendered from the profile.
	ReportFileName = "index.html"
)

// Step names, used for log files and result reporting.
const (
	StepBootstrap = "bootstrap"
	StepTest      = "test"
	StepSummary   = "summary"
	StepReport    = "report"
	StepView      = "view"
)

// cmdBuilder constructs the command for a step. Swapped out in tests so the
// harness can be exercised without a Go toolchain.
type cmdBuilder func(ctx context.Context, name string, arg ...string) *exec.Cmd

// StepResult records the outcome of a single harness step.
type StepResult struct {
	Name     string
	ExitCode int
	Skipped  bool
	Err      error
}

// Result is the outcome of one harness run.
type Result struct {
	RunID        string
	Module       string
	Steps        []StepResult
	Summary      *Summary
	ReportPath   string
	TestExitCode int
	Duration     time.Duration
}

// Failed reports whether the test step exited non-zero.
func (r *Result) Failed() bool {
	return r.TestExitCode != 0
}

// Harness drives a coverage run end to end.
type Harness struct {
	cfg      Config
	log      *zap.Logger
	stdout   io.Writer
	build    cmdBuilder
	lookPath func(string) (string, error)
}

// New validates the config and returns a Harness bound to the real
// toolchain and PATH.
func New(cfg Config, log *zap.Logger) (*Harness, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid harness config: %w", err)
	}
	abs, err := filepath.Abs(cfg.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("resolve source directory: %w", err)
	}
	cfg.SourceDir = abs
	if log == nil {
		log = zap.NewNop()
	}
	return &Harness{
		cfg:      cfg,
		log:      log,
		stdout:   os.Stdout,
		build:    exec.CommandContext,
		lookPath: exec.LookPath,
	}, nil
}

// Run executes the full step sequence. The returned error covers only
// harness-level failures such as an unwritable coverage directory; failing
// tests are reported through Result.TestExitCode.
func (h *Harness) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	coverageDir := h.cfg.CoverageDir
	if !filepath.IsAbs(coverageDir) {
		coverageDir = filepath.Join(h.cfg.SourceDir, coverageDir)
	}
	if err := os.MkdirAll(coverageDir, 0755); err != nil {
		return nil, fmt.Errorf("create coverage directory %s: %w", coverageDir, err)
	}

	runLog, err := logging.NewRunLog(h.cfg.LogDir)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      runLog.RunID(),
		ReportPath: filepath.Join(coverageDir, ReportFileName),
	}
	if module, err := ModulePath(h.cfg.SourceDir); err == nil {
		result.Module = module
	} else {
		h.log.Warn("Could not determine module under test", zap.Error(err))
		result.Module = h.cfg.SourceDir
	}

	h.log.Info("Starting coverage run",
		zap.String("run_id", result.RunID),
		zap.String("module", result.Module),
		zap.String("packages", h.cfg.Packages),
		zap.String("log_dir", runLog.Dir()))

	profile := filepath.Join(coverageDir, ProfileFileName)

	h.runBootstrap(ctx, runLog, result)
	h.runTests(ctx, runLog, result, profile)
	h.runSummary(ctx, runLog, result, profile)
	h.runReport(ctx, runLog, result, profile)
	h.runViewer(ctx, runLog, result)

	result.Duration = time.Since(start)

	status := "success"
	if result.Failed() {
		status = "fail"
	}
	total := 0.0
	if result.Summary != nil {
		total = result.Summary.Total
	}
	metrics.RecordCoverRun(status, total, result.Duration)

	h.log.Info("Coverage run finished",
		zap.String("run_id", result.RunID),
		zap.Int("test_exit_code", result.TestExitCode),
		zap.Float64("total_coverage", total),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// runBootstrap runs the optional environment preparation command. Its
// failure is logged and recorded but the run continues regardless.
func (h *Harness) runBootstrap(ctx context.Context, runLog *logging.RunLog, result *Result) {
	if h.cfg.Bootstrap == "" {
		result.Steps = append(result.Steps, StepResult{Name: StepBootstrap, Skipped: true})
		return
	}
	out, code, err := h.runCommand(ctx, nil, "sh", "-c", h.cfg.Bootstrap)
	h.recordStep(runLog, result, StepResult{Name: StepBootstrap, ExitCode: code, Err: err}, out)
	if err != nil {
		h.log.Warn("Bootstrap command failed, continuing",
			zap.String("command", h.cfg.Bootstrap),
			zap.Int("exit_code", code),
			zap.Error(err))
	}
}

// runTests invokes the test framework with coverage enabled. The exit status
// is recorded, not branched on; the remaining steps always run.
func (h *Harness) runTests(ctx context.Context, runLog *logging.RunLog, result *Result, profile string) {
	args := []string{
		"test", h.cfg.Packages,
		"-count=1",
		"-coverprofile=" + profile,
		"-covermode=" + h.cfg.CoverMode,
	}
	out, code, err := h.runCommand(ctx, h.stdout, h.cfg.GoBinary, args...)
	result.TestExitCode = code
	h.recordStep(runLog, result, StepResult{Name: StepTest, ExitCode: code, Err: err}, out)
	if err != nil {
		h.log.Warn("Test step exited non-zero", zap.Int("exit_code", code))
	}
}

// runSummary prints the per-function coverage table from the profile.
func (h *Harness) runSummary(ctx context.Context, runLog *logging.RunLog, result *Result, profile string) {
	out, code, err := h.runCommand(ctx, nil, h.cfg.GoBinary, "tool", "cover", "-func="+profile)
	step := StepResult{Name: StepSummary, ExitCode: code, Err: err}
	if err == nil {
		summary, parseErr := ParseFuncSummary(bytes.NewReader(out))
		if parseErr != nil {
			step.Err = parseErr
		} else {
			result.Summary = summary
			RenderSummary(h.stdout, result.Module, summary, !result.Failed())
		}
	}
	h.recordStep(runLog, result, step, out)
	if step.Err != nil {
		h.log.Warn("Coverage summary unavailable", zap.Error(step.Err))
	}
}

// runReport renders the HTML report next to the profile.
func (h *Harness) runReport(ctx context.Context, runLog *logging.RunLog, result *Result, profile string) {
	out, code, err := h.runCommand(ctx, nil, h.cfg.GoBinary,
		"tool", "cover", "-html="+profile, "-o", result.ReportPath)
	h.recordStep(runLog, result, StepResult{Name: StepReport, ExitCode: code, Err: err}, out)
	if err != nil {
		h.log.Warn("HTML report generation failed", zap.Error(err))
	}
}

// runViewer probes the viewer commands in order and opens the report with the
// first one present. No viewer resolving is not an error: the step is
// skipped and the report stays on disk.
func (h *Harness) runViewer(ctx context.Context, runLog *logging.RunLog, result *Result) {
	if !h.cfg.OpenReport {
		result.Steps = append(result.Steps, StepResult{Name: StepView, Skipped: true})
		return
	}
	viewer, ok := findViewer(h.lookPath, h.cfg.Viewers)
	if !ok {
		h.log.Debug("No report viewer available", zap.Strings("probed", h.cfg.Viewers))
		result.Steps = append(result.Steps, StepResult{Name: StepView, Skipped: true})
		return
	}
	out, code, err := h.runCommand(ctx, nil, viewer, result.ReportPath)
	h.recordStep(runLog, result, StepResult{Name: StepView, ExitCode: code, Err: err}, out)
	if err != nil {
		h.log.Debug("Report viewer exited non-zero", zap.String("viewer", viewer), zap.Error(err))
	}
}

// runCommand runs one step command in the source directory with the harness
// environment and returns its combined output and exit code. When mirror is
// non-nil the output is additionally streamed there, so test runs stay
// visible on the terminal.
func (h *Harness) runCommand(ctx context.Context, mirror io.Writer, name string, arg ...string) ([]byte, int, error) {
	cmd := h.build(ctx, name, arg...)
	cmd.Dir = h.cfg.SourceDir
	cmd.Env = h.buildEnv()

	var buf bytes.Buffer
	var out io.Writer = &buf
	if mirror != nil {
		out = io.MultiWriter(&buf, mirror)
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	return buf.Bytes(), exitCode(err), err
}

// buildEnv is the process environment plus the source-path variable and any
// configured extras. The source-path variable is always exported, pointing
// at the absolute source directory.
func (h *Harness) buildEnv() []string {
	env := append(os.Environ(), SourceEnvVar+"="+h.cfg.SourceDir)
	for k, v := range h.cfg.Env {
		env = append(env, k+"="+v)
	}
	return env
}

func (h *Harness) recordStep(runLog *logging.RunLog, result *Result, step StepResult, output []byte) {
	result.Steps = append(result.Steps, step)
	if err := runLog.WriteStep(step.Name, output); err != nil {
		h.log.Warn("Could not persist step log", zap.String("step", step.Name), zap.Error(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
