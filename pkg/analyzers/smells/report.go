package smells

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

const msgNoIssues = "No issues detected."

// FormatIssuesTable renders issues as a borderless table, one row per issue,
// in emission order. Colors follow issue code; set noColor for plain output.
func FormatIssuesTable(issues []Issue, writer io.Writer, noColor bool) {
	if len(issues) == 0 {
		fmt.Fprintln(writer, msgNoIssues)

		return
	}

	if noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(writer)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(table.Row{"LINE", "CODE", "DESCRIPTION"})

	for _, issue := range issues {
		tbl.AppendRow(table.Row{
			issue.LineNumber,
			colorizeCode(issue.IssueCode),
			issue.Description,
		})
	}

	tbl.Render()
}

func colorizeCode(code IssueCode) string {
	switch code {
	case CodeFuncTooLong:
		return color.New(color.FgRed).Sprint(string(code))
	case CodeMagicNumber:
		return color.New(color.FgYellow).Sprint(string(code))
	default:
		return string(code)
	}
}

// CountByCode tallies issues per code, for summaries and plots.
func CountByCode(issues []Issue) map[IssueCode]int {
	counts := make(map[IssueCode]int)

	for _, issue := range issues {
		counts[issue.IssueCode]++
	}

	return counts
}
