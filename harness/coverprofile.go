package harness

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FuncCoverage is one row of the per-function coverage summary.
type FuncCoverage struct {
	Location string
	Function string
	Percent  float64
}

// Summary is the parsed per-function coverage report.
type Summary struct {
	Funcs []FuncCoverage
	Total float64
}

// ParseFuncSummary parses the output of the coverage tool's per-function
// report. Lines it cannot parse are skipped; a missing total line is an
// error because the run would have no headline number.
func ParseFuncSummary(r io.Reader) (*Summary, error) {
	summary := &Summary{Total: -1}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		pct, err := parsePercent(fields[2])
		if err != nil {
			continue
		}
		if fields[0] == "total:" {
			summary.Total = pct
			continue
		}
		summary.Funcs = append(summary.Funcs, FuncCoverage{
			Location: strings.TrimSuffix(fields[0], ":"),
			Function: fields[1],
			Percent:  pct,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read coverage summary: %w", err)
	}
	if summary.Total < 0 {
		return nil, fmt.Errorf("coverage summary has no total line")
	}
	return summary, nil
}

func parsePercent(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSuffix(s, "%"), 64)
}

// RenderSummary writes the per-function coverage table to w. The table is
// styled green when the test step passed and red otherwise.
func RenderSummary(w io.Writer, module string, s *Summary, passed bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Coverage: %s", module))
	t.AppendHeader(table.Row{"Function", "Location", "Coverage"})

	for _, fc := range s.Funcs {
		t.AppendRow(table.Row{fc.Function, fc.Location, fmt.Sprintf("%.1f%%", fc.Percent)})
	}
	t.AppendFooter(table.Row{"TOTAL", "", fmt.Sprintf("%.1f%%", s.Total)})

	if passed {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}
	t.Style().Title.Align = text.AlignCenter
	t.Render()
}
