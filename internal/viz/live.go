package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/bubblesim/internal/dynamo"
	"github.com/san-kum/bubblesim/internal/interact"
	"github.com/san-kum/bubblesim/internal/metrics"
	"github.com/san-kum/bubblesim/internal/sim"
)

const (
	width           = 60
	height          = 32
	historyCapacity = 600

	// canvas origin on screen, from canvasStyle padding
	canvasLeft = 2
	canvasTop  = 1
	statsWidth = 44
)

type TickMsg time.Time

// Builder creates a freshly loaded field. It is called on start and on
// every replan.
type Builder func() (*sim.Field, error)

// Model hosts one field in the terminal.
type Model struct {
	build         Builder
	field         *sim.Field
	energy        *metrics.Energy
	dt            float64
	width, height int
	canvas        *Canvas
	running       bool
	energyHistory []float64
	selection     *dynamo.Selection
	pointer       r2.Vec
	showHelp      bool
	err           error
}

// NewModel builds the first field. dt is the simulated frame length in
// milliseconds.
func NewModel(build Builder, dt float64) (Model, error) {
	m := Model{
		build:         build,
		dt:            dt,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
	}
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.err = m.reset()
		case "esc":
			m.selection = nil
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		m.mouse(msg)
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		return m, tick()
	}
	return m, nil
}

func (m *Model) reset() error {
	field, err := m.build()
	if err != nil {
		return err
	}
	m.energy = metrics.NewEnergy()
	field.AddMetric(m.energy)
	m.field = field
	m.selection = nil
	m.energyHistory = m.energyHistory[:0]
	return nil
}

func (m *Model) resize(w, h int) {
	cols := max(w-statsWidth-2*canvasLeft, 10)
	rows := max(h-2*canvasTop, 5)
	if cols == m.width && rows == m.height {
		return
	}
	m.width, m.height = cols, rows
	m.canvas = NewCanvas(cols, rows)
}

func (m *Model) step() {
	m.field.Tick(m.dt)
	m.energyHistory = append(m.energyHistory, m.energy.Last())
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

// mouse turns left-button input into touch events. While the selection
// panel is open the next press only closes it.
func (m *Model) mouse(msg tea.MouseMsg) {
	p := m.toArena(msg.X, msg.Y)
	m.pointer = p

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if m.selection != nil {
			m.selection = nil
			return
		}
		m.field.Touch(dynamo.TouchEvent{Phase: dynamo.TouchStart, X: p.X, Y: p.Y})
	case tea.MouseActionMotion:
		if m.field.State() == interact.Idle {
			return
		}
		m.field.Touch(dynamo.TouchEvent{Phase: dynamo.TouchMove, X: p.X, Y: p.Y})
	case tea.MouseActionRelease:
		if m.field.State() == interact.Idle {
			return
		}
		if sel, ok := m.field.Touch(dynamo.TouchEvent{Phase: dynamo.TouchEnd}); ok {
			m.selection = &sel
		}
	}
}

// scale is arena units per braille dot. Dots are roughly square, so one
// scale serves both axes.
func (m *Model) scale() float64 {
	a := m.field.Arena()
	if !a.IsValid() {
		return 1
	}
	return max(a.Width/float64(m.width*2), a.Height/float64(m.height*4))
}

// toArena maps a terminal cell to the arena point under its center.
func (m *Model) toArena(col, row int) r2.Vec {
	s := m.scale()
	return r2.Vec{
		X: float64((col-canvasLeft)*2+1) * s,
		Y: float64((row-canvasTop)*4+2) * s,
	}
}

func (m *Model) toCanvas(x, y float64) (int, int) {
	s := m.scale()
	return int(x / s), int(y / s)
}

func (m *Model) draw() {
	m.canvas.Clear()

	a := m.field.Arena()
	if a.IsValid() {
		right, bottom := m.toCanvas(a.Width, a.Height)
		right, bottom = right-1, bottom-1
		m.canvas.DrawLine(0, 0, right, 0)
		m.canvas.DrawLine(right, 0, right, bottom)
		m.canvas.DrawLine(right, bottom, 0, bottom)
		m.canvas.DrawLine(0, bottom, 0, 0)
	}

	frame := m.field.Frame()
	for _, b := range frame.Bodies {
		x, y := m.toCanvas(b.X, b.Y)
		m.canvas.DrawCircle(x, y, int(b.Radius/m.scale()), b.Tag)
	}

	if m.field.State() == interact.Dragging {
		if i := m.field.Focus(); i >= 0 && i < len(frame.Bodies) {
			b := frame.Bodies[i]
			x0, y0 := m.toCanvas(b.X, b.Y)
			x1, y1 := m.toCanvas(m.pointer.X, m.pointer.Y)
			m.canvas.DrawLine(x0, y0, x1, y1)
		}
	}
}

func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render(TagStyle))

	var s strings.Builder
	s.WriteString(headerStyle.Render("BUBBLESIM") + "\n")
	if m.running {
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	}

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
		s.WriteString(SparklineChart(m.energyHistory, 30) + "\n\n")
	}

	frame := m.field.Frame()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.field.Clock()/1000))
	row("Bodies", fmt.Sprintf("%d", len(frame.Bodies)))
	row("Touch", m.field.State().String())
	if f := m.field.Focus(); f >= 0 {
		row("Focus", fmt.Sprintf("#%d", f))
	}
	row("Cascade", fmt.Sprintf("%d pushed", len(m.field.LastCascade().Touched)))
	row("Settled", fmt.Sprintf("%t", m.field.Settled()))
	if p := m.field.Placement(); p != nil && p.Fallback {
		row("Layout", fmt.Sprintf("grid x%.2f", p.Scale))
	}

	if m.selection != nil {
		sel := m.selection
		tag := dynamo.TagFor(sel.Magnitude)
		body := fmt.Sprintf("Body #%d\n%s %s\nat (%.0f, %.0f) r=%.0f",
			sel.Index,
			TagStyle(int(tag)).Render(fmt.Sprintf("%+.2f", sel.Magnitude)),
			tag,
			sel.X, sel.Y, sel.Radius)
		s.WriteString("\n" + modalStyle.Render(body) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + lossStyle.Render(m.err.Error()) + "\n")
	}

	if m.showHelp {
		s.WriteString(helpStyle.Render("\n─────────────────────\n" +
			"Click    - Select a body\n" +
			"Drag     - Move a body\n" +
			"Hold     - Push neighbors\n" +
			"Space    - Pause/Resume\n" +
			"R        - Replan\n" +
			"Esc      - Close selection\n" +
			"Q        - Quit"))
	} else {
		s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Replan Q:Quit ?:Help"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsStyle.Render(s.String()))
}

// Run starts the terminal host and blocks until the user quits.
func Run(build Builder, dt float64) error {
	m, err := NewModel(build, dt)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	return err
}
