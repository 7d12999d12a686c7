package viz

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/blochsim/internal/pulse"
	"github.com/san-kum/blochsim/internal/sim"
)

const (
	defaultWidth    = 60
	defaultHeight   = 24
	panelWidth      = 50
	historyCapacity = 300
	trailCapacity   = 400
	rotateStep      = 0.1
)

type TickMsg time.Time

// ErrMsg reports a failure from a goroutine running alongside the view,
// such as the metrics server. It is shown in the side panel.
type ErrMsg struct{ Err error }

// FrameFunc drains the edit queue into the controller and ticks once.
type FrameFunc func(c *sim.Controller, q *sim.EditQueue) int

type Options struct {
	// StepsPerFrame is the number of ticks per rendered frame. The first
	// goes through Frame so queued edits land before it.
	StepsPerFrame int
	FPS           int
	Theme         string
	Frame         FrameFunc
}

// Model is the live Bloch sphere view. Keys become edits on the queue; each
// frame drains the queue and advances the controller.
type Model struct {
	ctrl          *sim.Controller
	queue         *sim.EditQueue
	frame         FrameFunc
	stepsPerFrame int
	fps           int

	scene  *Scene
	camera *Camera
	canvas *Canvas
	theme  Theme
	styles styles

	trail        []Vec3
	wHistory     []float64
	driveHistory []float64

	running  bool
	showHelp bool
	lastEdit string
	bgErr    string
}

func NewModel(ctrl *sim.Controller, queue *sim.EditQueue, opts Options) Model {
	if queue == nil {
		queue = sim.NewEditQueue()
	}
	frame := opts.Frame
	if frame == nil {
		frame = func(c *sim.Controller, q *sim.EditQueue) int { return c.Frame(q) }
	}
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.FPS < 1 {
		opts.FPS = 60
	}
	theme := GetTheme(opts.Theme)

	return Model{
		ctrl:          ctrl,
		queue:         queue,
		frame:         frame,
		stepsPerFrame: opts.StepsPerFrame,
		fps:           opts.FPS,
		scene:         NewScene(),
		camera:        NewCamera(),
		canvas:        NewCanvas(defaultWidth, defaultHeight),
		theme:         theme,
		styles:        newStyles(theme),
		trail:         make([]Vec3, 0, trailCapacity),
		wHistory:      make([]float64, 0, historyCapacity),
		driveHistory:  make([]float64, 0, historyCapacity),
		running:       true,
	}
}

// Queue is where edits from other goroutines should be pushed.
func (m Model) Queue() *sim.EditQueue { return m.queue }

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// KeyEdit maps the pulse editing keys to edits.
func KeyEdit(key string) (sim.Edit, bool) {
	switch key {
	case "1":
		return sim.Recenter(), true
	case "2":
		return sim.Widen(), true
	case "3":
		return sim.Narrow(), true
	case "4":
		return sim.Raise(), true
	case "5":
		return sim.Lower(), true
	case "g":
		return sim.Select(pulse.Gaussian), true
	case "s":
		return sim.Select(pulse.Square), true
	case "c":
		return sim.Select(pulse.Chirped), true
	}
	return sim.Edit{}, false
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		if e, ok := KeyEdit(key); ok {
			m.queue.Push(e)
			m.lastEdit = e.String()
			return m, nil
		}
		switch key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		case "left":
			m.camera.Rotate(-rotateStep, 0)
		case "right":
			m.camera.Rotate(rotateStep, 0)
		case "up":
			m.camera.Rotate(0, rotateStep)
		case "down":
			m.camera.Rotate(0, -rotateStep)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-panelWidth-6)
		h := max(10, msg.Height-4)
		m.canvas = NewCanvas(w, h)
	case ErrMsg:
		if msg.Err != nil {
			m.bgErr = msg.Err.Error()
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.frame(m.ctrl, m.queue)
	for i := 1; i < m.stepsPerFrame; i++ {
		m.ctrl.Tick()
	}

	r := m.ctrl.State()
	if !finite(r.U, r.V, r.W) {
		return
	}
	m.trail = appendCapped(m.trail, FromBloch(r), trailCapacity)
	m.wHistory = appendCapped(m.wHistory, r.W, historyCapacity)
	m.driveHistory = appendCapped(m.driveHistory, cmplx.Abs(m.ctrl.Drive()), historyCapacity)
}

func (m *Model) reset() {
	m.queue.Drain()
	m.ctrl.Reset()
	m.trail = m.trail[:0]
	m.wHistory = m.wHistory[:0]
	m.driveHistory = m.driveHistory[:0]
	m.lastEdit = ""
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (m Model) View() string {
	snap := m.ctrl.Snapshot()
	m.scene.Render(m.canvas, m.camera, snap.State, m.trail)
	st := m.styles

	var s strings.Builder
	s.WriteString(st.header.Render("BLOCH SPHERE") + "\n")

	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	if n := m.queue.Len(); n > 0 {
		status += fmt.Sprintf("  (%d queued)", n)
	}
	s.WriteString(status + "\n")
	if m.bgErr != "" {
		s.WriteString(st.warning.Render(m.bgErr) + "\n")
	}
	s.WriteString("\n")

	r := snap.State
	s.WriteString(st.row("t", fmt.Sprintf("%.3f s  (tick %d)", snap.Time, snap.Tick)))
	s.WriteString(st.row("(u, v, w)", fmt.Sprintf("(%+.4f, %+.4f, %+.4f)", r.U, r.V, r.W)))
	s.WriteString(st.row("|R|", fmt.Sprintf("%.6f", r.Norm())))
	s.WriteString(st.row("excited", bar(r.Excited(), 1, 20)+fmt.Sprintf(" %.3f", r.Excited())))
	theta, phi := r.Angles()
	s.WriteString(st.row("θ, φ", fmt.Sprintf("%.1f°, %.1f°", theta*180/math.Pi, phi*180/math.Pi)))
	if !finite(r.U, r.V, r.W) {
		s.WriteString(st.warning.Render("state is not finite; press r to reset") + "\n")
	}

	s.WriteString("\n" + st.header.Render("PULSE") + "\n")
	p := snap.Pulse
	for _, k := range pulse.Kinds {
		line := k.String()
		if k == snap.Envelope {
			s.WriteString(st.active.Render("> "+line) + "  ")
		} else {
			s.WriteString(st.label.UnsetWidth().Render("  "+line) + "  ")
		}
	}
	s.WriteString("\n")
	s.WriteString(st.row("center", fmt.Sprintf("%.4f", p.Center)))
	s.WriteString(st.row("width", fmt.Sprintf("%.4f", p.Width)))
	s.WriteString(st.row("amplitude", fmt.Sprintf("%.4f", p.Amplitude)))
	if snap.Envelope == pulse.Chirped {
		s.WriteString(st.row("chirp", fmt.Sprintf("%.1f", p.ChirpRate)))
		s.WriteString(st.row("δω(t)", fmt.Sprintf("%+.2f rad/s", pulse.InstantaneousFrequency(snap.Time, p))))
	}
	s.WriteString(st.row("Ω(t)", fmt.Sprintf("%.3f%+.3fi", real(snap.Drive), imag(snap.Drive))))
	if p.Width <= 0 {
		s.WriteString(st.warning.Render("width is not positive") + "\n")
	}
	if m.lastEdit != "" {
		s.WriteString(st.row("last edit", m.lastEdit))
	}

	if len(m.wHistory) > 1 {
		chart := asciigraph.Plot(m.wHistory,
			asciigraph.Height(4),
			asciigraph.Width(32),
			asciigraph.LowerBound(-1),
			asciigraph.UpperBound(1),
			asciigraph.Caption("w(t)"))
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}
	if len(m.driveHistory) > 1 {
		chart := asciigraph.Plot(m.driveHistory,
			asciigraph.Height(3),
			asciigraph.Width(32),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Caption("|Ω(t)|"))
		s.WriteString("\n" + st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.help.Render("1:Recenter 2/3:Width± 4/5:Amp±\ng/s/c:Envelope ←↑↓→:Rotate\nSP:Pause R:Reset T:Theme ?:Help Q:Quit"))

	canvasView := st.canvas.Render(st.sphere.Render(m.canvas.String()))
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  1        - Recenter pulse ahead     ║
║  2 / 3    - Widen / narrow pulse     ║
║  4 / 5    - Raise / lower amplitude  ║
║  g s c    - Gaussian/square/chirped  ║
║  Arrows   - Rotate the sphere        ║
║  + / -    - Zoom                     ║
║  Space    - Pause/Resume             ║
║  R        - Reset                    ║
║  T        - Cycle themes             ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`
