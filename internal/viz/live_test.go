package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/vehsim/internal/control"
	"github.com/san-kum/vehsim/internal/physics"
)

func newPlant(t *testing.T) *physics.Plant {
	t.Helper()
	v, err := physics.NewVehicle(physics.DefaultVehicleParams())
	if err != nil {
		t.Fatalf("new vehicle: %v", err)
	}
	return physics.NewPlant(v)
}

func tickN(m tea.Model, n int) tea.Model {
	for i := 0; i < n; i++ {
		m, _ = m.Update(TickMsg(time.Now()))
	}
	return m
}

func TestModelAdvancesWithWallTime(t *testing.T) {
	m := NewModel(newPlant(t), control.NewProfile(control.Constant(0.3), nil), "flat", 25)

	got := tickN(m, 25).(Model)
	if math.Abs(got.Time()-1.0) > 1e-9 {
		t.Errorf("25 frames at 25 fps should cover 1 s, got %f", got.Time())
	}
	if len(got.velocity) != 25 {
		t.Errorf("expected 25 history samples, got %d", len(got.velocity))
	}
}

func TestModelPauseAndReset(t *testing.T) {
	var m tea.Model = NewModel(newPlant(t), control.NewProfile(control.Constant(0.3), nil), "flat", 50)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = tickN(m, 10)
	if m.(Model).Time() != 0 {
		t.Error("paused model should not advance")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = tickN(m, 10)
	if m.(Model).Time() == 0 {
		t.Error("resumed model should advance")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	got := m.(Model)
	if got.Time() != 0 || got.plant.Velocity() != physics.DefaultVelocity {
		t.Errorf("reset should restore the initial state, t=%f v=%f", got.Time(), got.plant.Velocity())
	}
}

func TestModelManualThrottle(t *testing.T) {
	manual := control.NewManual(0.5, nil)
	var m tea.Model = NewModel(newPlant(t), manual, "manual", 30)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := manual.Throttle(0); math.Abs(got-0.55) > 1e-12 {
		t.Errorf("expected throttle 0.55, got %f", got)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if got := manual.Throttle(0); math.Abs(got-0.45) > 1e-12 {
		t.Errorf("expected throttle 0.45, got %f", got)
	}
	_ = m
}

func TestModelQuit(t *testing.T) {
	m := NewModel(newPlant(t), control.NewNone(physics.NumControls), "coast", 30)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestModelView(t *testing.T) {
	m := tickN(NewModel(newPlant(t), control.NewManual(0.3, nil), "manual", 30), 5)
	view := m.View()

	for _, want := range []string{"manual", "velocity", "position", "throttle"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryIsBounded(t *testing.T) {
	s := make([]float64, 0, historyCapacity)
	for i := 0; i < historyCapacity+10; i++ {
		s = pushBounded(s, float64(i))
	}
	if len(s) != historyCapacity {
		t.Fatalf("expected %d samples, got %d", historyCapacity, len(s))
	}
	if s[len(s)-1] != float64(historyCapacity+9) || s[0] != 10 {
		t.Errorf("unexpected window [%v .. %v]", s[0], s[len(s)-1])
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary("course", [][2]string{{"run id", "course_1"}}, map[string]float64{"distance": 211.9})
	for _, want := range []string{"course", "course_1", "distance", "211.9"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q", want)
		}
	}
	if Plot(nil, "empty", 5, 20) != "" {
		t.Error("empty plot should render nothing")
	}
}
