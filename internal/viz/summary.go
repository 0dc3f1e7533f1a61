package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// Plot draws a series with asciigraph. An empty series renders as nothing.
func Plot(series []float64, caption string, height, width int) string {
	if len(series) == 0 {
		return ""
	}
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderSummary formats the header lines and metrics of a finished run.
func RenderSummary(title string, header [][2]string, metrics map[string]float64) string {
	var b strings.Builder
	b.WriteString(GradientTitle.Render(title))
	b.WriteString("\n")

	for _, kv := range header {
		b.WriteString(MetricLabel.Render(kv[0]))
		b.WriteString(MetricValue.Render(kv[1]))
		b.WriteString("\n")
	}

	if len(metrics) > 0 {
		b.WriteString(Separator(40))
		b.WriteString("\n")

		names := make([]string, 0, len(metrics))
		for name := range metrics {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			b.WriteString(MetricLabel.Render(name))
			b.WriteString(MetricValue.Render(fmt.Sprintf("%.6f", metrics[name])))
			b.WriteString("\n")
		}
	}

	return GlassPanel.Render(strings.TrimRight(b.String(), "\n"))
}
