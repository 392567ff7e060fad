package storage

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/hh-tools/hhscan/metrics"
	"github.com/hh-tools/hhscan/types"
)

// CSVStorage keeps vacancies as CSV rows under a fixed header. The salary
// range is embedded as a JSON blob in the salary column.
type CSVStorage struct {
	path string
}

func NewCSVStorage(path string) *CSVStorage {
	return &CSVStorage{path: path}
}

func (s *CSVStorage) Backend() string { return "csv" }

func (s *CSVStorage) Add(v types.Vacancy) error {
	vacancies := s.load()
	vacancies = append(vacancies, v)
	if err := s.save(vacancies); err != nil {
		return err
	}
	metrics.RecordStorageOp(s.Backend(), "add")
	return nil
}

func (s *CSVStorage) List(c types.SearchCriteria) ([]types.Vacancy, error) {
	metrics.RecordStorageOp(s.Backend(), "list")
	return filterVacancies(s.load(), c), nil
}

func (s *CSVStorage) Delete(c types.SearchCriteria) error {
	kept := rejectVacancies(s.load(), c)
	if err := s.save(kept); err != nil {
		return err
	}
	metrics.RecordStorageOp(s.Backend(), "delete")
	return nil
}

func (s *CSVStorage) load() []types.Vacancy {
	file, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = len(storageHeader)
	records, err := reader.ReadAll()
	if err != nil || len(records) < 2 {
		return nil
	}

	vacancies := make([]types.Vacancy, 0, len(records)-1)
	for _, rec := range records[1:] {
		vacancies = append(vacancies, types.Vacancy{
			Title:        rec[0],
			Link:         rec[1],
			Salary:       decodeSalary(rec[2]),
			Description:  rec[3],
			Requirements: rec[4],
		})
	}
	return vacancies
}

func (s *CSVStorage) save(vacancies []types.Vacancy) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}
	file, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create storage file %s: %w", s.path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(storageHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, v := range vacancies {
		row := []string{v.Title, v.Link, encodeSalary(v.Salary), v.Description, v.Requirements}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
