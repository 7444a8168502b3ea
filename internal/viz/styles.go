package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(lipgloss.Color("#444466"))

	runningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88"))
	pausedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffaa00"))
	doneStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff"))

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Width(16)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ccff")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688")).Italic(true)

	segregating = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	depleted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// maxHeterozygosity is 2pq at p = 1/2.
const maxHeterozygosity = 0.5

// generationBar shows how many of the planned generations have been bred.
func generationBar(gen, total, width int) string {
	filled := width
	if total > 0 {
		filled = gen * width / total
	}
	filled = min(max(filled, 0), width)
	return doneStyle.Render(strings.Repeat("█", filled)) + hintStyle.Render(strings.Repeat("░", width-filled))
}

// heterozygosityTrace draws the last width values of mean 2pq on a fixed
// 0..0.5 scale, so the decay under drift reads the same at any N. Bars turn
// red once less than half of the maximum heterozygosity remains.
func heterozygosityTrace(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	bars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	var b strings.Builder
	for _, h := range values {
		frac := min(max(h/maxHeterozygosity, 0), 1)
		c := string(bars[int(frac*float64(len(bars)-1))])
		if frac >= 0.5 {
			b.WriteString(segregating.Render(c))
		} else {
			b.WriteString(depleted.Render(c))
		}
	}
	return b.String()
}
