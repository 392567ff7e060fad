package storage

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/hh-tools/hhscan/metrics"
	"github.com/hh-tools/hhscan/types"
)

// TXTStorage keeps vacancies as tab-separated lines, five fields per line.
// Malformed lines are skipped on read.
type TXTStorage struct {
	path string
}

func NewTXTStorage(path string) *TXTStorage {
	return &TXTStorage{path: path}
}

func (s *TXTStorage) Backend() string { return "txt" }

func (s *TXTStorage) Add(v types.Vacancy) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open storage file %s: %w", s.path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(formatLine(v)); err != nil {
		return fmt.Errorf("append vacancy: %w", err)
	}
	metrics.RecordStorageOp(s.Backend(), "add")
	return nil
}

func (s *TXTStorage) List(c types.SearchCriteria) ([]types.Vacancy, error) {
	metrics.RecordStorageOp(s.Backend(), "list")
	return filterVacancies(s.load(), c), nil
}

func (s *TXTStorage) Delete(c types.SearchCriteria) error {
	kept := rejectVacancies(s.load(), c)
	if err := s.save(kept); err != nil {
		return err
	}
	metrics.RecordStorageOp(s.Backend(), "delete")
	return nil
}

func (s *TXTStorage) load() []types.Vacancy {
	file, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	var vacancies []types.Vacancy
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) != len(storageHeader) {
			continue
		}
		vacancies = append(vacancies, types.Vacancy{
			Title:        parts[0],
			Link:         parts[1],
			Salary:       decodeSalary(parts[2]),
			Description:  parts[3],
			Requirements: parts[4],
		})
	}
	return vacancies
}

func (s *TXTStorage) save(vacancies []types.Vacancy) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}
	var sb strings.Builder
	for _, v := range vacancies {
		sb.WriteString(formatLine(v))
	}
	if err := os.WriteFile(s.path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write storage file %s: %w", s.path, err)
	}
	return nil
}

func formatLine(v types.Vacancy) string {
	fields := []string{
		sanitize(v.Title),
		sanitize(v.Link),
		encodeSalary(v.Salary),
		sanitize(v.Description),
		sanitize(v.Requirements),
	}
	return strings.Join(fields, "\t") + "\n"
}

// sanitize keeps the flat format parseable: tabs and newlines inside field
// values would break the five-fields-per-line invariant.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
