package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/acarl005/stripansi"
	"github.com/google/uuid"
)

// RunDirectoryPrefix is the standardized prefix for per-run log directories.
const RunDirectoryPrefix = "coverrun-"

// RunLog stores the raw output of a coverage run under
// <baseDir>/coverrun-<runID>/. Output is stripped of ANSI escapes before being
// written so the files stay readable outside a terminal.
type RunLog struct {
	baseDir string
	runID   string
	mu      sync.Mutex
}

// NewRunLog creates the log directory for a fresh run ID.
func NewRunLog(baseDir string) (*RunLog, error) {
	runID := uuid.New().String()
	dir := filepath.Join(baseDir, RunDirectoryPrefix+runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}
	return &RunLog{baseDir: baseDir, runID: runID}, nil
}

// RunID returns the identifier of this run.
func (l *RunLog) RunID() string {
	return l.runID
}

// Dir returns the directory holding this run's log files.
func (l *RunLog) Dir() string {
	return filepath.Join(l.baseDir, RunDirectoryPrefix+l.runID)
}

// WriteStep persists the captured output of a single harness step.
func (l *RunLog) WriteStep(step string, output []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	clean := stripansi.Strip(string(output))
	path := filepath.Join(l.Dir(), step+".log")
	if err := os.WriteFile(path, []byte(clean), 0644); err != nil {
		return fmt.Errorf("failed to write step log %s: %w", path, err)
	}
	return nil
}
