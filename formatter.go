package hhscan

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hh-tools/hhscan/types"
)

// VacancyFormatter is responsible for formatting and displaying vacancies.
type VacancyFormatter interface {
	FormatVacancies(title string, vacancies []types.Vacancy) error
}

// ConsoleVacancyFormatter renders vacancies as a console table.
type ConsoleVacancyFormatter struct {
	out io.Writer
}

func NewConsoleVacancyFormatter(out io.Writer) *ConsoleVacancyFormatter {
	return &ConsoleVacancyFormatter{out: out}
}

// FormatVacancies renders the vacancy list under the given title.
func (f *ConsoleVacancyFormatter) FormatVacancies(title string, vacancies []types.Vacancy) error {
	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("%s (%d)", title, len(vacancies)))

	t.AppendHeader(table.Row{"#", "Title", "Salary", "Link", "Requirements"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", Align: text.AlignRight},
		{Name: "Title", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Salary", Align: text.AlignRight},
		{Name: "Link", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Requirements", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})

	for i, v := range vacancies {
		t.AppendRow(table.Row{
			i + 1,
			v.Title,
			formatSalary(v.Salary),
			v.Link,
			v.Requirements,
		})
	}

	if len(vacancies) == 0 {
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.Render()
	return nil
}

func formatSalary(s *types.Salary) string {
	switch {
	case s == nil:
		return "not specified"
	case s.From > 0 && s.To > 0:
		return fmt.Sprintf("%d-%d %s", s.From, s.To, currencyOrDefault(s.Currency))
	case s.From > 0:
		return fmt.Sprintf("from %d %s", s.From, currencyOrDefault(s.Currency))
	case s.To > 0:
		return fmt.Sprintf("up to %d %s", s.To, currencyOrDefault(s.Currency))
	default:
		return "not specified"
	}
}

func currencyOrDefault(c string) string {
	if c == "" {
		return "RUR"
	}
	return c
}
