// Package storage provides file-backed vacancy storage. A backend is selected
// by file extension: .json, .csv, .xlsx or .txt.
//
// All backends share the same contract: Add appends one vacancy, List returns
// the vacancies matching the criteria, Delete removes the matching ones.
// A missing or corrupt file reads as an empty collection rather than an error,
// so a fresh storage path is always usable.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hh-tools/hhscan/types"
)

// Storage is the vacancy persistence contract.
type Storage interface {
	Add(v types.Vacancy) error
	List(c types.SearchCriteria) ([]types.Vacancy, error)
	Delete(c types.SearchCriteria) error
	// Backend returns the backend name used for metrics labels.
	Backend() string
}

// ErrUnsupportedFormat is returned by Open for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported storage format")

// Open selects a storage backend from the path's extension.
func Open(path string) (Storage, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return NewJSONStorage(path), nil
	case ".csv":
		return NewCSVStorage(path), nil
	case ".xlsx":
		return NewExcelStorage(path), nil
	case ".txt":
		return NewTXTStorage(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ensureDir creates the parent directory of the storage file.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create storage directory %s: %w", dir, err)
	}
	return nil
}

// encodeSalary serializes a salary range for the flat formats (CSV, Excel,
// TXT), which carry it as an embedded JSON blob. A nil salary encodes as "".
func encodeSalary(s *types.Salary) string {
	if s == nil {
		return ""
	}
	data, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(data)
}

// decodeSalary is the inverse of encodeSalary. Malformed blobs decode to nil.
func decodeSalary(s string) *types.Salary {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out types.Salary
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return &out
}

// filterVacancies returns the vacancies matching the criteria.
func filterVacancies(vacancies []types.Vacancy, c types.SearchCriteria) []types.Vacancy {
	filtered := make([]types.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		if c.Matches(v) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// rejectVacancies returns the vacancies NOT matching the criteria.
func rejectVacancies(vacancies []types.Vacancy, c types.SearchCriteria) []types.Vacancy {
	kept := make([]types.Vacancy, 0, len(vacancies))
	for _, v := range vacancies {
		if !c.Matches(v) {
			kept = append(kept, v)
		}
	}
	return kept
}

var storageHeader = []string{"title", "link", "salary", "description", "requirements"}
