// Package manager coordinates the vacancy API and the storage layer.
package manager

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/hh-tools/hhscan/api"
	"github.com/hh-tools/hhscan/metrics"
	"github.com/hh-tools/hhscan/storage"
	"github.com/hh-tools/hhscan/types"
)

// Manager fetches vacancies from the API and answers queries over storage.
type Manager struct {
	api     api.VacancyAPI
	storage storage.Storage
	log     *zap.Logger
}

func New(vacancyAPI api.VacancyAPI, store storage.Storage, log *zap.Logger) (*Manager, error) {
	if vacancyAPI == nil {
		return nil, fmt.Errorf("vacancy API is required")
	}
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{api: vacancyAPI, storage: store, log: log}, nil
}

// FetchAndStore queries the API and persists every valid vacancy. Invalid
// items are skipped with a warning rather than aborting the run. Returns the
// number of vacancies stored.
func (m *Manager) FetchAndStore(ctx context.Context, query string) (int, error) {
	vacancies, err := m.api.GetVacancies(ctx, query)
	if err != nil {
		metrics.RecordFetchRun("error", 0)
		metrics.RecordErrorDetails("fetch", err)
		return 0, fmt.Errorf("fetch vacancies: %w", err)
	}

	stored := 0
	for _, v := range vacancies {
		if err := v.Validate(); err != nil {
			m.log.Warn("Skipping invalid vacancy", zap.String("link", v.Link), zap.Error(err))
			continue
		}
		if err := m.storage.Add(v); err != nil {
			metrics.RecordFetchRun("error", stored)
			return stored, fmt.Errorf("store vacancy %q: %w", v.Title, err)
		}
		stored++
	}

	m.log.Info("Fetch run completed",
		zap.String("query", query),
		zap.Int("fetched", len(vacancies)),
		zap.Int("stored", stored))
	metrics.RecordFetchRun("success", stored)
	return stored, nil
}

// TopBySalary returns the n stored vacancies with the highest average salary,
// descending.
func (m *Manager) TopBySalary(n int) ([]types.Vacancy, error) {
	if n <= 0 {
		return nil, nil
	}
	vacancies, err := m.storage.List(types.SearchCriteria{})
	if err != nil {
		return nil, fmt.Errorf("list vacancies: %w", err)
	}
	sort.SliceStable(vacancies, func(i, j int) bool {
		return vacancies[j].Less(vacancies[i])
	})
	if n > len(vacancies) {
		n = len(vacancies)
	}
	return vacancies[:n], nil
}

// SearchByKeyword returns stored vacancies whose description or requirements
// contain the keyword.
func (m *Manager) SearchByKeyword(keyword string) ([]types.Vacancy, error) {
	return m.storage.List(types.SearchCriteria{Keyword: keyword})
}

// Delete removes the stored vacancies matching the criteria.
func (m *Manager) Delete(criteria types.SearchCriteria) error {
	if criteria.IsEmpty() {
		return fmt.Errorf("refusing to delete with empty criteria")
	}
	return m.storage.Delete(criteria)
}
