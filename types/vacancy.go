// Package types holds the vacancy domain model shared across hhscan.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// Salary is a vacancy salary range as published on hh.ru. Either bound may be
// absent (zero).
type Salary struct {
	From     int    `json:"from"`
	To       int    `json:"to"`
	Currency string `json:"currency,omitempty"`
}

// Vacancy represents a single job vacancy.
type Vacancy struct {
	Title        string  `json:"title"`
	Link         string  `json:"link"`
	Salary       *Salary `json:"salary"`
	Description  string  `json:"description"`
	Requirements string  `json:"requirements"`
}

// ErrInvalidVacancy is returned when an API item cannot be turned into a Vacancy.
var ErrInvalidVacancy = errors.New("invalid vacancy")

// AverageSalary returns the midpoint of the salary range. When only one bound
// is published that bound is returned; a vacancy without salary yields 0.
func (v Vacancy) AverageSalary() int {
	if v.Salary == nil {
		return 0
	}
	switch {
	case v.Salary.From > 0 && v.Salary.To > 0:
		return (v.Salary.From + v.Salary.To) / 2
	case v.Salary.From > 0:
		return v.Salary.From
	case v.Salary.To > 0:
		return v.Salary.To
	}
	return 0
}

// Less orders vacancies by average salary, ascending.
func (v Vacancy) Less(other Vacancy) bool {
	return v.AverageSalary() < other.AverageSalary()
}

// Validate checks the minimal invariants a stored vacancy must hold.
func (v Vacancy) Validate() error {
	if strings.TrimSpace(v.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidVacancy)
	}
	if v.Salary != nil && (v.Salary.From < 0 || v.Salary.To < 0) {
		return fmt.Errorf("%w: salary bounds must be non-negative", ErrInvalidVacancy)
	}
	return nil
}

func (v Vacancy) String() string {
	return fmt.Sprintf("Vacancy(title=%q, link=%q, avgSalary=%d)", v.Title, v.Link, v.AverageSalary())
}

// SearchCriteria selects vacancies from a storage backend. Zero values mean
// "no constraint". Keyword matches case-insensitively against description and
// requirements; MinSalary compares against AverageSalary; Title and Link match
// exactly.
type SearchCriteria struct {
	Keyword   string
	MinSalary int
	Title     string
	Link      string
}

// Matches reports whether the vacancy satisfies every set constraint.
func (c SearchCriteria) Matches(v Vacancy) bool {
	if c.Keyword != "" {
		kw := strings.ToLower(c.Keyword)
		if !strings.Contains(strings.ToLower(v.Description), kw) &&
			!strings.Contains(strings.ToLower(v.Requirements), kw) {
			return false
		}
	}
	if c.MinSalary > 0 && v.AverageSalary() < c.MinSalary {
		return false
	}
	if c.Title != "" && v.Title != c.Title {
		return false
	}
	if c.Link != "" && v.Link != c.Link {
		return false
	}
	return true
}

// IsEmpty reports whether the criteria places no constraints at all.
func (c SearchCriteria) IsEmpty() bool {
	return c == SearchCriteria{}
}
