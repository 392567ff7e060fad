package storage

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/hh-tools/hhscan/metrics"
	"github.com/hh-tools/hhscan/types"
)

const excelSheet = "Sheet1"

// ExcelStorage keeps vacancies in an .xlsx workbook, one row per vacancy
// under a header row. The salary range is embedded as a JSON blob.
type ExcelStorage struct {
	path string
}

func NewExcelStorage(path string) *ExcelStorage {
	return &ExcelStorage{path: path}
}

func (s *ExcelStorage) Backend() string { return "excel" }

func (s *ExcelStorage) Add(v types.Vacancy) error {
	vacancies := s.load()
	vacancies = append(vacancies, v)
	if err := s.save(vacancies); err != nil {
		return err
	}
	metrics.RecordStorageOp(s.Backend(), "add")
	return nil
}

func (s *ExcelStorage) List(c types.SearchCriteria) ([]types.Vacancy, error) {
	metrics.RecordStorageOp(s.Backend(), "list")
	return filterVacancies(s.load(), c), nil
}

func (s *ExcelStorage) Delete(c types.SearchCriteria) error {
	kept := rejectVacancies(s.load(), c)
	if err := s.save(kept); err != nil {
		return err
	}
	metrics.RecordStorageOp(s.Backend(), "delete")
	return nil
}

func (s *ExcelStorage) load() []types.Vacancy {
	if _, err := os.Stat(s.path); err != nil {
		return nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheet)
	if err != nil || len(rows) < 2 {
		return nil
	}

	vacancies := make([]types.Vacancy, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// Trailing empty cells are dropped by GetRows; pad to the header width.
		for len(row) < len(storageHeader) {
			row = append(row, "")
		}
		vacancies = append(vacancies, types.Vacancy{
			Title:        row[0],
			Link:         row[1],
			Salary:       decodeSalary(row[2]),
			Description:  row[3],
			Requirements: row[4],
		})
	}
	return vacancies
}

func (s *ExcelStorage) save(vacancies []types.Vacancy) error {
	if err := ensureDir(s.path); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(storageHeader))
	for i, h := range storageHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(excelSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, v := range vacancies {
		row := []interface{}{v.Title, v.Link, encodeSalary(v.Salary), v.Description, v.Requirements}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("compute cell name: %w", err)
		}
		if err := f.SetSheetRow(excelSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", s.path, err)
	}
	return nil
}
