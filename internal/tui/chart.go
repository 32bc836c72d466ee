package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/statshaus/internal/activity"
)

const (
	streamChartHeight = 6
	streamLegendWidth = 26
)

// streamChartLines is the height of the rendered chart section including
// its title and border.
const streamChartLines = streamChartHeight + 3

// renderStreamChart draws users per stream as a bar chart with a legend.
// Counts are expected in descending order; only the largest streams that
// fit in the legend are drawn.
func renderStreamChart(counts []activity.StreamCount, width int) string {
	title := chartTitleStyle.Render("Users per stream")
	if len(counts) == 0 {
		body := helpStyle.Render("No activity yet")
		return sectionStyle.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
	}

	shown := counts
	hidden := 0
	if len(shown) > streamChartHeight {
		shown = counts[:streamChartHeight-1]
		hidden = len(counts) - len(shown)
	}

	chartWidth := max(width-streamLegendWidth-6, 10)
	barWidth := max(1, min(6, chartWidth/len(shown)-1))

	bc := barchart.New(chartWidth, streamChartHeight,
		barchart.WithBarGap(1),
		barchart.WithBarWidth(barWidth),
		barchart.WithNoAxis(),
	)
	for i, c := range shown {
		bc.Push(barchart.BarData{
			Label: "",
			Values: []barchart.BarValue{
				{Name: c.Stream, Value: float64(c.Count), Style: streamStyle(i)},
			},
		})
	}
	bc.Draw()

	legend := make([]string, 0, streamChartHeight)
	nameWidth := streamLegendWidth - 8
	for i, c := range shown {
		name := c.Stream
		if name == "" {
			name = "(none)"
		}
		if len(name) > nameWidth {
			name = name[:nameWidth-1] + "…"
		}
		swatch := lipgloss.NewStyle().Foreground(streamPalette[i%len(streamPalette)]).Render("■")
		legend = append(legend, fmt.Sprintf("%s %-*s %5d", swatch, nameWidth, name, c.Count))
	}
	if hidden > 0 {
		legend = append(legend, helpStyle.Render(fmt.Sprintf("+%d more", hidden)))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, bc.View(), "  ", strings.Join(legend, "\n"))
	return sectionStyle.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}
