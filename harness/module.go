package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// ModulePath reads go.mod in sourceDir and returns the module path of the
// code under test. Used for logging and the coverage summary title.
func ModulePath(sourceDir string) (string, error) {
	gomod := filepath.Join(sourceDir, "go.mod")
	data, err := os.ReadFile(gomod)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", gomod, err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", fmt.Errorf("no module path in %s", gomod)
	}
	return path, nil
}
