package smells

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const (
	plotWidth  = "900px"
	plotHeight = "500px"

	colorFuncTooLong = "#d9534f"
	colorMagicNumber = "#f0ad4e"
)

// FormatIssuesPlot renders an HTML bar chart of issue counts per code.
func FormatIssuesPlot(issues []Issue, writer io.Writer) error {
	counts := CountByCode(issues)

	labels := []string{string(CodeFuncTooLong), string(CodeMagicNumber)}
	data := []opts.BarData{
		{Value: counts[CodeFuncTooLong], ItemStyle: &opts.ItemStyle{Color: colorFuncTooLong}},
		{Value: counts[CodeMagicNumber], ItemStyle: &opts.ItemStyle{Color: colorMagicNumber}},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: plotWidth, Height: plotHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Code Smell Distribution",
			Subtitle: "Detected issues grouped by issue code",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)

	bar.SetXAxis(labels)
	bar.AddSeries("issues", data)

	err := bar.Render(writer)
	if err != nil {
		return fmt.Errorf("render issues plot: %w", err)
	}

	return nil
}
