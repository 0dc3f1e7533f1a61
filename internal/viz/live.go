package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/dynamo"
	"github.com/san-kum/vehsim/internal/physics"
)

const (
	historyCapacity = 600
	throttleStep    = 0.05
)

type TickMsg time.Time

// Model drives a vehicle in real time and renders its history.
type Model struct {
	plant      *physics.Plant
	controller dynamo.Controller
	manual     *control.Manual
	fps        int
	k          int
	u          dynamo.Control
	running    bool
	scenario   string
	velocity   []float64
	position   []float64
	throttle   []float64
}

// NewModel builds a live view. When controller is a *control.Manual the
// up/down keys change its throttle.
func NewModel(plant *physics.Plant, controller dynamo.Controller, scenario string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	manual, _ := controller.(*control.Manual)
	plant.Reset()
	return Model{
		plant:      plant,
		controller: controller,
		manual:     manual,
		fps:        fps,
		u:          make(dynamo.Control, plant.ControlDim()),
		running:    true,
		scenario:   scenario,
		velocity:   make([]float64, 0, historyCapacity),
		position:   make([]float64, 0, historyCapacity),
		throttle:   make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "up", "k":
			if m.manual != nil {
				m.manual.Nudge(throttleStep)
			}
		case "down", "j":
			if m.manual != nil {
				m.manual.Nudge(-throttleStep)
			}
		}
		return m, nil

	case TickMsg:
		if m.running {
			m.advance(m.stepsPerFrame())
		}
		return m, m.tick()
	}

	return m, nil
}

// stepsPerFrame keeps simulated time in step with wall time.
func (m *Model) stepsPerFrame() int {
	n := int(math.Round(1.0 / (float64(m.fps) * m.plant.SampleTime())))
	return max(n, 1)
}

func (m *Model) advance(steps int) {
	if r, ok := m.controller.(dynamo.Resettable); ok && m.k == 0 {
		r.Reset()
	}
	for i := 0; i < steps; i++ {
		x := m.plant.State()
		m.u = m.controller.Compute(x, m.Time())
		m.plant.Step(m.u)
		m.k++
	}
	m.record()
}

func (m *Model) record() {
	m.velocity = pushBounded(m.velocity, m.plant.Velocity())
	m.position = pushBounded(m.position, m.plant.Position())
	if len(m.u) > physics.IdxThrottle {
		m.throttle = pushBounded(m.throttle, m.u[physics.IdxThrottle])
	}
}

func pushBounded(s []float64, v float64) []float64 {
	if len(s) == historyCapacity {
		copy(s, s[1:])
		s = s[:len(s)-1]
	}
	return append(s, v)
}

func (m *Model) reset() {
	m.plant.Reset()
	if r, ok := m.controller.(dynamo.Resettable); ok {
		r.Reset()
	}
	m.k = 0
	m.u = make(dynamo.Control, m.plant.ControlDim())
	m.velocity = m.velocity[:0]
	m.position = m.position[:0]
	m.throttle = m.throttle[:0]
}

// Time is the simulated time of the current state.
func (m Model) Time() float64 {
	return float64(m.k) * m.plant.SampleTime()
}

func (m Model) View() string {
	status := StatusRunning.Render("● running")
	if !m.running {
		status = StatusPaused.Render("❚❚ paused")
	}

	var throttle, grade float64
	if len(m.u) > physics.IdxGrade {
		throttle, grade = m.u[physics.IdxThrottle], m.u[physics.IdxGrade]
	}

	rows := [][2]string{
		{"time", fmt.Sprintf("%.2f s", m.Time())},
		{"position", fmt.Sprintf("%.2f m", m.plant.Position())},
		{"velocity", fmt.Sprintf("%.2f m/s", m.plant.Velocity())},
		{"acceleration", fmt.Sprintf("%.3f m/s²", m.plant.Acceleration())},
		{"engine speed", fmt.Sprintf("%.1f rad/s", m.plant.EngineSpeed())},
		{"grade", fmt.Sprintf("%.2f°", grade*180/math.Pi)},
	}

	var stats strings.Builder
	stats.WriteString(GradientTitle.Render(m.scenario) + "  " + status + "\n\n")
	for _, r := range rows {
		stats.WriteString(MetricLabel.Render(r[0]) + MetricValue.Render(r[1]) + "\n")
	}
	stats.WriteString(MetricLabel.Render("throttle") + ProgressBar(throttle, 20) + fmt.Sprintf(" %.2f", throttle) + "\n")
	stats.WriteString("\n" + Sparkline(m.throttle, 36))

	charts := Plot(m.velocity, "velocity (m/s)", 8, 50) + "\n\n" + Plot(m.position, "position (m)", 6, 50)

	help := "space pause · r reset · q quit"
	if m.manual != nil {
		help = "↑/↓ throttle · " + help
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, GlassPanel.Render(stats.String()), "  ", charts)
	return body + "\n" + KeyHint.Render(help) + "\n"
}
