package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hh-tools/hhscan/types"
)

func sampleVacancies() []types.Vacancy {
	return []types.Vacancy{
		{
			Title:        "Go Developer",
			Link:         "https://hh.ru/vacancy/1",
			Salary:       &types.Salary{From: 150000, To: 250000, Currency: "RUR"},
			Description:  "Backend services in Go",
			Requirements: "Docker, Kubernetes",
		},
		{
			Title:        "Python Developer",
			Link:         "https://hh.ru/vacancy/2",
			Salary:       &types.Salary{From: 90000},
			Description:  "Data pipelines",
			Requirements: "Python, SQL",
		},
		{
			Title:        "Intern",
			Link:         "https://hh.ru/vacancy/3",
			Description:  "Learning on the job",
			Requirements: "Curiosity",
		},
	}
}

func TestOpenSelectsBackendByExtension(t *testing.T) {
	tests := []struct {
		file    string
		backend string
	}{
		{"vacancies.json", "json"},
		{"vacancies.csv", "csv"},
		{"vacancies.xlsx", "excel"},
		{"vacancies.txt", "txt"},
		{"VACANCIES.JSON", "json"},
	}

	for _, tc := range tests {
		t.Run(tc.file, func(t *testing.T) {
			s, err := Open(filepath.Join(t.TempDir(), tc.file))
			require.NoError(t, err)
			assert.Equal(t, tc.backend, s.Backend())
		})
	}

	t.Run("unknown extension", func(t *testing.T) {
		_, err := Open("vacancies.yaml")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

// TestBackendRoundTrip exercises the full Add/List/Delete contract against
// every backend.
func TestBackendRoundTrip(t *testing.T) {
	for _, ext := range []string{".json", ".csv", ".xlsx", ".txt"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vacancies"+ext)
			s, err := Open(path)
			require.NoError(t, err)

			// Empty storage lists nothing.
			got, err := s.List(types.SearchCriteria{})
			require.NoError(t, err)
			assert.Empty(t, got)

			for _, v := range sampleVacancies() {
				require.NoError(t, s.Add(v))
			}

			got, err = s.List(types.SearchCriteria{})
			require.NoError(t, err)
			require.Len(t, got, 3)
			assert.Equal(t, "Go Developer", got[0].Title)
			require.NotNil(t, got[0].Salary)
			assert.Equal(t, 200000, got[0].AverageSalary())
			assert.Nil(t, got[2].Salary)

			// Keyword filtering.
			got, err = s.List(types.SearchCriteria{Keyword: "docker"})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Go Developer", got[0].Title)

			// Minimum salary filtering.
			got, err = s.List(types.SearchCriteria{MinSalary: 100000})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "Go Developer", got[0].Title)

			// Delete by criteria leaves the rest intact.
			require.NoError(t, s.Delete(types.SearchCriteria{Title: "Python Developer"}))
			got, err = s.List(types.SearchCriteria{})
			require.NoError(t, err)
			require.Len(t, got, 2)
			for _, v := range got {
				assert.NotEqual(t, "Python Developer", v.Title)
			}
		})
	}
}

func TestJSONStorageCorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "a list"}`), 0644))

	s := NewJSONStorage(path)
	got, err := s.List(types.SearchCriteria{})
	require.NoError(t, err)
	assert.Empty(t, got)

	// Adding to a corrupt file starts a fresh list.
	require.NoError(t, s.Add(sampleVacancies()[0]))
	got, err = s.List(types.SearchCriteria{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTXTStorageSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.txt")
	content := "Go Developer\thttps://hh.ru/vacancy/1\t\tBackend\tDocker\n" +
		"garbage line without tabs\n" +
		"Python Developer\thttps://hh.ru/vacancy/2\t\tPipelines\tSQL\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	s := NewTXTStorage(path)
	got, err := s.List(types.SearchCriteria{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Go Developer", got[0].Title)
	assert.Equal(t, "Python Developer", got[1].Title)
}

func TestTXTStorageSanitizesTabs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacancies.txt")
	s := NewTXTStorage(path)
	require.NoError(t, s.Add(types.Vacancy{
		Title:       "Weird\tTitle",
		Link:        "https://hh.ru/vacancy/9",
		Description: "line\nbreak",
	}))

	got, err := s.List(types.SearchCriteria{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Weird Title", got[0].Title)
	assert.Equal(t, "line break", got[0].Description)
}

func TestSalaryCodec(t *testing.T) {
	t.Run("nil encodes empty", func(t *testing.T) {
		assert.Equal(t, "", encodeSalary(nil))
		assert.Nil(t, decodeSalary(""))
	})

	t.Run("round trip", func(t *testing.T) {
		in := &types.Salary{From: 100000, To: 200000, Currency: "RUR"}
		out := decodeSalary(encodeSalary(in))
		require.NotNil(t, out)
		assert.Equal(t, *in, *out)
	})

	t.Run("malformed blob decodes nil", func(t *testing.T) {
		assert.Nil(t, decodeSalary("{from:"))
	})
}

func TestEnsureDirCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "vacancies.json")
	s := NewJSONStorage(path)
	require.NoError(t, s.Add(sampleVacancies()[0]))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
