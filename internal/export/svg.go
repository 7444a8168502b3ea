package export

import (
	"fmt"
	"math"
	"os"
	"strings"
)

// Series is one line of a chart, indexed by generation. NaN values leave a
// gap in the line.
type Series struct {
	Name   string
	Color  string
	Values []float64
	Dashed bool
}

type Chart struct {
	Title  string
	Width  int
	Height int
	Series []Series
}

var palette = []string{"#00ff00", "#ff5f87", "#5fafff", "#ffd75f", "#af87ff", "#5fffd7"}

const margin = 40.0

// LineChartSVG draws every series against generation on shared axes.
func LineChartSVG(c Chart) string {
	width, height := c.Width, c.Height
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 400
	}

	maxLen := 0
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range c.Series {
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if maxLen < 2 || math.IsInf(minY, 1) {
		return ""
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeY = maxY - minY

	plotW := float64(width) - 2*margin
	plotH := float64(height) - 2*margin
	px := func(gen int) float64 { return margin + float64(gen)/float64(maxLen-1)*plotW }
	py := func(v float64) float64 { return margin + plotH - (v-minY)/rangeY*plotH }

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	if c.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="#d0d0d0" font-family="monospace" font-size="14" text-anchor="middle">%s</text>
`, float64(width)/2, margin/2, escape(c.Title)))
	}

	// axes
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="#606060" stroke-width="1" d="M%.1f,%.1f L%.1f,%.1f L%.1f,%.1f"/>
`, margin, margin, margin, margin+plotH, margin+plotW, margin+plotH))
	sb.WriteString(fmt.Sprintf(`<g fill="#a0a0a0" font-family="monospace" font-size="10">
<text x="%.1f" y="%.1f" text-anchor="end">%.3g</text>
<text x="%.1f" y="%.1f" text-anchor="end">%.3g</text>
<text x="%.1f" y="%.1f">0</text>
<text x="%.1f" y="%.1f" text-anchor="end">%d</text>
</g>
`, margin-4, py(maxY), maxY, margin-4, py(minY), minY,
		margin, margin+plotH+12, margin+plotW, margin+plotH+12, maxLen-1))

	for i, s := range c.Series {
		color := s.Color
		if color == "" {
			color = palette[i%len(palette)]
		}
		dash := ""
		if s.Dashed {
			dash = ` stroke-dasharray="6,4"`
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5"%s d="`, color, dash))
		pen := false
		for gen, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = false
				continue
			}
			if pen {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(gen), py(v)))
			} else {
				sb.WriteString(fmt.Sprintf(" M%.1f,%.1f", px(gen), py(v)))
				pen = true
			}
		}
		sb.WriteString(`"/>
`)

		if s.Name != "" {
			ly := margin + 14*float64(i)
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s" font-family="monospace" font-size="11" text-anchor="end">%s</text>
`, margin+plotW, ly, color, escape(s.Name)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func WriteSVG(path string, c Chart) error {
	svg := LineChartSVG(c)
	if svg == "" {
		return fmt.Errorf("chart %q has nothing to draw", c.Title)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

func escape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
