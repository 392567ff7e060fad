package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageSalary(t *testing.T) {
	tests := []struct {
		name     string
		salary   *Salary
		expected int
	}{
		{
			name:     "both bounds present returns midpoint",
			salary:   &Salary{From: 100000, To: 150000},
			expected: 125000,
		},
		{
			name:     "only lower bound",
			salary:   &Salary{From: 90000},
			expected: 90000,
		},
		{
			name:     "only upper bound",
			salary:   &Salary{To: 120000},
			expected: 120000,
		},
		{
			name:     "no salary published",
			salary:   nil,
			expected: 0,
		},
		{
			name:     "empty salary struct",
			salary:   &Salary{},
			expected: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := Vacancy{Title: "Go Developer", Salary: tc.salary}
			assert.Equal(t, tc.expected, v.AverageSalary())
		})
	}
}

func TestVacancyOrdering(t *testing.T) {
	low := Vacancy{Title: "Junior", Salary: &Salary{From: 60000, To: 80000}}
	high := Vacancy{Title: "Senior", Salary: &Salary{From: 200000, To: 300000}}
	unpaid := Vacancy{Title: "Intern"}

	assert.True(t, low.Less(high))
	assert.False(t, high.Less(low))
	assert.True(t, unpaid.Less(low))
	assert.False(t, low.Less(low))
}

func TestVacancyValidate(t *testing.T) {
	t.Run("valid vacancy", func(t *testing.T) {
		v := Vacancy{Title: "Go Developer", Link: "https://hh.ru/vacancy/1"}
		require.NoError(t, v.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		v := Vacancy{Link: "https://hh.ru/vacancy/1"}
		err := v.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidVacancy)
	})

	t.Run("negative salary bound", func(t *testing.T) {
		v := Vacancy{Title: "Go Developer", Salary: &Salary{From: -1}}
		assert.ErrorIs(t, v.Validate(), ErrInvalidVacancy)
	})
}

func TestSearchCriteriaMatches(t *testing.T) {
	v := Vacancy{
		Title:        "Go Developer",
		Link:         "https://hh.ru/vacancy/42",
		Salary:       &Salary{From: 100000, To: 200000},
		Description:  "Backend services in Go",
		Requirements: "Experience with Docker and Kubernetes",
	}

	tests := []struct {
		name     string
		criteria SearchCriteria
		expected bool
	}{
		{"empty criteria matches everything", SearchCriteria{}, true},
		{"keyword in description", SearchCriteria{Keyword: "backend"}, true},
		{"keyword in requirements", SearchCriteria{Keyword: "docker"}, true},
		{"keyword is case-insensitive", SearchCriteria{Keyword: "KUBERNETES"}, true},
		{"keyword absent", SearchCriteria{Keyword: "haskell"}, false},
		{"min salary below average", SearchCriteria{MinSalary: 120000}, true},
		{"min salary above average", SearchCriteria{MinSalary: 160000}, false},
		{"exact title match", SearchCriteria{Title: "Go Developer"}, true},
		{"title mismatch", SearchCriteria{Title: "Java Developer"}, false},
		{"exact link match", SearchCriteria{Link: "https://hh.ru/vacancy/42"}, true},
		{"combined constraints all satisfied", SearchCriteria{Keyword: "go", MinSalary: 100000}, true},
		{"combined constraints one failing", SearchCriteria{Keyword: "go", MinSalary: 500000}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.criteria.Matches(v))
		})
	}
}
