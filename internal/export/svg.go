// Package export renders stored run columns as standalone SVG charts.
package export

import (
	"fmt"
	"math"
	"strings"
)

// Chart describes one line chart.
type Chart struct {
	Title  string
	Width  int
	Height int
	Stroke string
}

func DefaultChart(title string) Chart {
	return Chart{Title: title, Width: 800, Height: 300, Stroke: "#00ff00"}
}

// SeriesSVG draws values against times as a polyline, skipping NaN samples.
func SeriesSVG(c Chart, times, values []float64) (string, error) {
	if len(times) != len(values) {
		return "", fmt.Errorf("svg: %d times, %d values", len(times), len(values))
	}

	xs := make([]float64, 0, len(times))
	ys := make([]float64, 0, len(values))
	for i := range times {
		if math.IsNaN(values[i]) {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, values[i])
	}
	if len(xs) < 2 {
		return "", fmt.Errorf("svg: need at least two samples, got %d", len(xs))
	}

	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="8" y="16" fill="#cccccc" font-family="monospace" font-size="12">%s</text>
<text x="8" y="%d" fill="#888888" font-family="monospace" font-size="10">%.4g .. %.4g</text>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		c.Width, c.Height, c.Width, c.Height, escape(c.Title), c.Height-6, minY, maxY, c.Stroke)

	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(c.Width)
		y := float64(c.Height) - (ys[i]-minY)/rangeY*float64(c.Height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>
`)
	return sb.String(), nil
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
