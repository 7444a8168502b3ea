package viz

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/popsim/internal/sim"
)

const (
	plotHeight = 12
	plotWidth  = 60
	// maxPaths caps the lines drawn; the statistics use every replicate.
	maxPaths = 8
)

type TickMsg time.Time

// Resizable is implemented by models whose population size can be changed
// while the view is running.
type Resizable interface {
	Size() int
	Resize(n int) error
}

type LiveConfig struct {
	Title       string
	Model       sim.Model
	X0          sim.State
	Replicates  int
	Generations int
	Seed        int64

	// Index is the state component plotted for every replicate.
	Index int

	// Expected, when set, gives the textbook mean or variance shown alongside.
	Expected      func(gen, n int) float64
	ExpectedLabel string
	Interval      time.Duration
}

// Live animates replicate lines of a model, one generation per tick.
type Live struct {
	cfg      LiveConfig
	rngs     []*rand.Rand
	states   []sim.State
	paths    [][]float64
	hetero   []float64
	gen      int
	seed     int64
	running  bool
	lastErr  error
	absorber sim.Absorber
}

func NewLive(cfg LiveConfig) *Live {
	if cfg.Replicates <= 0 {
		cfg.Replicates = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 150 * time.Millisecond
	}
	l := &Live{cfg: cfg, seed: cfg.Seed, running: true}
	l.absorber, _ = cfg.Model.(sim.Absorber)
	l.reset()
	return l
}

func (l *Live) reset() {
	n := l.cfg.Replicates
	l.rngs = make([]*rand.Rand, n)
	l.states = make([]sim.State, n)
	l.paths = make([][]float64, n)
	for i := range l.states {
		l.rngs[i] = sim.NewRand(l.seed + int64(i))
		l.states[i] = l.cfg.X0.Clone()
		l.paths[i] = []float64{l.component(l.states[i])}
	}
	l.gen = 0
	l.hetero = []float64{l.meanHeterozygosity()}
}

func (l *Live) component(x sim.State) float64 {
	if l.cfg.Index < len(x) {
		return x[l.cfg.Index]
	}
	return math.NaN()
}

func (l *Live) tick() tea.Cmd {
	return tea.Tick(l.cfg.Interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (l *Live) Init() tea.Cmd { return l.tick() }

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return l, tea.Quit
		case " ":
			l.running = !l.running
		case "n":
			if !l.running {
				l.step()
			}
		case "r":
			l.seed += int64(l.cfg.Replicates)
			l.reset()
		case "up", "k":
			l.resize(2)
		case "down", "j":
			l.resize(0.5)
		}
	case TickMsg:
		if l.running {
			l.step()
		}
		return l, l.tick()
	}
	return l, nil
}

func (l *Live) resize(factor float64) {
	r, ok := l.cfg.Model.(Resizable)
	if !ok {
		return
	}
	n := int(math.Round(float64(r.Size()) * factor))
	if err := r.Resize(n); err != nil {
		l.lastErr = err
		return
	}
	l.lastErr = nil
	l.reset()
}

// step advances every replicate one generation. It stops at the configured
// horizon or when every line is absorbed.
func (l *Live) step() {
	if l.Done() {
		l.running = false
		return
	}
	l.gen++
	for i, x := range l.states {
		if l.absorber != nil && l.absorber.Absorbed(x) {
			l.paths[i] = append(l.paths[i], l.component(x))
			continue
		}
		next := l.cfg.Model.Step(x, l.gen, l.rngs[i])
		if !next.IsValid() {
			l.lastErr = sim.GenError{Generation: l.gen, Message: "invalid state"}
			l.running = false
			return
		}
		l.states[i] = next
		l.paths[i] = append(l.paths[i], l.component(next))
	}
	l.hetero = append(l.hetero, l.meanHeterozygosity())
}

func (l *Live) Done() bool {
	if l.gen >= l.cfg.Generations {
		return true
	}
	if l.absorber == nil {
		return false
	}
	for _, x := range l.states {
		if !l.absorber.Absorbed(x) {
			return false
		}
	}
	return true
}

func (l *Live) Generation() int { return l.gen }

func (l *Live) Paths() [][]float64 { return l.paths }

func (l *Live) meanHeterozygosity() float64 {
	total := 0.0
	for _, x := range l.states {
		p := l.component(x)
		total += 2 * p * (1 - p)
	}
	return total / float64(len(l.states))
}

func (l *Live) moments() (mean, variance float64, fixed, lost int) {
	n := float64(len(l.states))
	for _, x := range l.states {
		p := l.component(x)
		mean += p
		switch {
		case p >= 1:
			fixed++
		case p <= 0:
			lost++
		}
	}
	mean /= n
	for _, x := range l.states {
		d := l.component(x) - mean
		variance += d * d
	}
	if n > 1 {
		variance /= n - 1
	}
	return mean, variance, fixed, lost
}

func (l *Live) View() string {
	shown := l.paths
	if len(shown) > maxPaths {
		shown = shown[:maxPaths]
	}
	chart := PlotSeries(shown, fmt.Sprintf("replicate paths (%d of %d)", len(shown), len(l.paths)), plotHeight, plotWidth)

	var s strings.Builder
	s.WriteString(titleStyle.Render(strings.ToUpper(l.cfg.Title)) + "\n")

	switch {
	case l.Done():
		s.WriteString(doneStyle.Render("DONE"))
	case l.running:
		s.WriteString(runningStyle.Render("RUNNING"))
	default:
		s.WriteString(pausedStyle.Render("PAUSED"))
	}
	s.WriteString("  " + generationBar(l.gen, l.cfg.Generations, 20) + "\n\n")

	mean, variance, fixed, lost := l.moments()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("generation", fmt.Sprintf("%d / %d", l.gen, l.cfg.Generations))
	if r, ok := l.cfg.Model.(Resizable); ok {
		row("N", fmt.Sprintf("%d", r.Size()))
	}
	row("mean", fmt.Sprintf("%.4f", mean))
	row("variance", fmt.Sprintf("%.4f", variance))
	if l.cfg.Expected != nil {
		n := 0
		if r, ok := l.cfg.Model.(Resizable); ok {
			n = r.Size()
		}
		label := l.cfg.ExpectedLabel
		if label == "" {
			label = "expected"
		}
		row(label, fmt.Sprintf("%.4f", l.cfg.Expected(l.gen, n)))
	}
	if l.absorber != nil {
		row("fixed / lost", fmt.Sprintf("%d / %d", fixed, lost))
	}
	s.WriteString(labelStyle.Render("heterozygosity") + heterozygosityTrace(l.hetero, 24) + "\n")
	if l.lastErr != nil {
		s.WriteString(pausedStyle.Render(l.lastErr.Error()) + "\n")
	}
	s.WriteString("\n" + hintStyle.Render(strings.Repeat("─", 30)) + "\n")
	s.WriteString(hintStyle.Render("SP:Pause N:Step R:Restart ↑↓:N Q:Quit"))

	stats := panelStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, chart, stats)
}

// RunLive starts the live view on the terminal.
func RunLive(cfg LiveConfig) error {
	_, err := tea.NewProgram(NewLive(cfg), tea.WithAltScreen()).Run()
	return err
}
