package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"phpc/internal/driver"
)

// visibleRoutines bounds the routine list; older finished entries scroll off.
const visibleRoutines = 12

var sessionPhases = []driver.Phase{
	driver.PhaseBind,
	driver.PhaseResolveVariables,
	driver.PhaseAnalyze,
	driver.PhaseEmit,
}

type progressModel struct {
	title      string
	events     <-chan driver.Event
	spinner    spinner.Model
	prog       progress.Model
	items      []routineItem
	index      map[string]int
	phaseDone  map[driver.Phase]bool
	phaseLabel string
	width      int
	done       bool
}

type routineItem struct {
	name   string
	status string
	phase  driver.Phase
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders session progress.
// The model quits when events is closed.
func NewProgressModel(title string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	return &progressModel{
		title:     title,
		events:    events,
		spinner:   sp,
		prog:      prog,
		index:     make(map[string]int),
		phaseDone: make(map[driver.Phase]bool),
		width:     80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.phaseLabel != "" {
		header = fmt.Sprintf("%s (%s)", header, m.phaseLabel)
	}
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 12
	nameWidth := max(m.width-statusWidth-4, 20)

	start := max(len(m.items)-visibleRoutines, 0)
	if start > 0 {
		fmt.Fprintf(&b, "  %s\n", lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf("... %d more routines", start)))
	}
	for _, item := range m.items[start:] {
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", item.status))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.name, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	label := statusLabel(ev.Phase, ev.Status)
	if ev.Routine == "" {
		if ev.Status == driver.StatusDone {
			m.phaseDone[ev.Phase] = true
		} else if label != "" {
			m.phaseLabel = label
		}
		return m.prog.SetPercent(m.percent())
	}
	idx, ok := m.index[ev.Routine]
	if !ok {
		idx = len(m.items)
		m.items = append(m.items, routineItem{name: ev.Routine})
		m.index[ev.Routine] = idx
	}
	if label != "" {
		m.items[idx].status = label
		m.items[idx].phase = ev.Phase
	}
	return m.prog.SetPercent(m.percent())
}

// percent counts finished phases; the emit phase advances per routine.
func (m *progressModel) percent() float64 {
	total := 0.0
	for _, p := range sessionPhases {
		if m.phaseDone[p] {
			total++
		}
	}
	if !m.phaseDone[driver.PhaseEmit] && len(m.items) > 0 {
		emitted := 0
		for _, item := range m.items {
			if item.phase == driver.PhaseEmit && (item.status == "done" || item.status == "error") {
				emitted++
			}
		}
		total += float64(emitted) / float64(len(m.items))
	}
	return total / float64(len(sessionPhases))
}

func statusLabel(phase driver.Phase, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		return "queued"
	case driver.StatusDone:
		if phase == driver.PhaseEmit {
			return "done"
		}
		return phaseLabel(phase)
	case driver.StatusError:
		return "error"
	case driver.StatusWorking:
		return phaseLabel(phase)
	default:
		return ""
	}
}

func phaseLabel(phase driver.Phase) string {
	switch phase {
	case driver.PhaseParse:
		return "parsing"
	case driver.PhaseDeclare:
		return "declaring"
	case driver.PhaseBind:
		return "binding"
	case driver.PhaseResolveVariables:
		return "resolving"
	case driver.PhaseAnalyze:
		return "analyzing"
	case driver.PhaseEmit:
		return "emitting"
	default:
		return ""
	}
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "done":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "parsing", "declaring", "binding", "resolving", "analyzing", "emitting":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
