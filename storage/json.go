package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hh-tools/hhscan/metrics"
	"github.com/hh-tools/hhscan/types"
)

// JSONStorage keeps vacancies as a JSON array in a single file.
type JSONStorage struct {
	path string
}

func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

func (s *JSONStorage) Backend() string { return "json" }

func (s *JSONStorage) Add(v types.Vacancy) error {
	vacancies := s.load()
	vacancies = append(vacancies, v)
	if err := s.save(vacancies); err != nil {
		return err
	}
	metrics.RecordStorageOp(s.Backend(), "add")
	return nil
}

func (s *JSONStorage) List(c types.SearchCriteria) ([]types.Vacancy, error) {
	metrics.RecordStorageOp(s.Backend(), "list")
	return filterVacancies(s.load(), c), nil
}

func (s *JSONStorage) Delete(c types.SearchCriteria) error {
	kept := rejectVacancies(s.load(), c)
	if err := s.save(kept); err != nil {
		return err
	}
	metrics.RecordStorageOp(s.Backend(), "delete")
	return nil
}

// load reads the stored vacancies. Missing or corrupt files read as empty.
func (s *JSONStorage) load() []types.Vacancy {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var vacancies []types.Vacancy
	if err := json.Unmarshal(data, &vacancies); err != nil {
		return nil
	}
	return vacancies
}

func (s *JSONStorage) save(vacancies []types.Vacancy) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}
	if vacancies == nil {
		vacancies = []types.Vacancy{}
	}
	data, err := json.MarshalIndent(vacancies, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal vacancies: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("write storage file %s: %w", s.path, err)
	}
	return nil
}
