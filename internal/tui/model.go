package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dwmuller/looper"
	intloop "github.com/dwmuller/looper/internal/loop"
)

var (
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888"))
	recordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f55")).Bold(true)
	playStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f5")).Bold(true)
	pauseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5")).Bold(true)
	meterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fff"))
)

const meterWidth = 24

type Model struct {
	session  *looper.Session
	events   <-chan looper.SessionEvent
	quitting bool
}

type sessionMsg looper.SessionEvent

type tickMsg time.Time

func NewModel(session *looper.Session) Model {
	return Model{
		session: session,
		events:  session.Watch(),
	}
}

func listenForEvents(events <-chan looper.SessionEvent) tea.Cmd {
	return func() tea.Msg {
		return sessionMsg(<-events)
	}
}

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenForEvents(m.events), tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "r":
			m.session.Trigger(intloop.EventRecordToggle)

		case "u":
			m.session.Trigger(intloop.EventUndo)

		case "y":
			m.session.Trigger(intloop.EventRedo)

		case " ":
			m.session.Trigger(intloop.EventPauseToggle)

		case "enter":
			m.session.Trigger(intloop.EventRestartToggle)

		case "x":
			m.session.Trigger(intloop.EventReset)
		}

	case sessionMsg:
		// The view pulls fresh status on every render; the event only
		// forces one.
		return m, listenForEvents(m.events)

	case tickMsg:
		return m, tick()
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	st := m.session.Status()

	stateStyle := emptyStyle
	stateName := "empty"
	switch st.State {
	case intloop.StateRecording:
		stateStyle, stateName = recordStyle, "REC"
	case intloop.StatePlaying:
		stateStyle, stateName = playStyle, "PLAY"
	case intloop.StatePaused:
		stateStyle, stateName = pauseStyle, "PAUSE"
	}

	position := fmt.Sprintf("%s / %s",
		formatTime(st.FrameIndex, st.SampleRate),
		formatTime(st.LoopLength, st.SampleRate))

	layers := fmt.Sprintf("layers:%d", st.ActiveLayers)
	if st.UndoneLayers > 0 {
		layers += fmt.Sprintf("+%d", st.UndoneLayers)
	}

	header := fmt.Sprintf("looper  %s  %s  %s",
		stateStyle.Render(fmt.Sprintf("%-5s", stateName)), position, layers)

	help := dimStyle.Render("r:record  u:undo  y:redo  space:pause  enter:restart  x:reset  q:quit")

	return fmt.Sprintf("\n%s\n%s\n\n%s\n", header, arenaMeter(st.ArenaUsed, st.ArenaCap), help)
}

// arenaMeter draws memory use as a fixed width bar.
func arenaMeter(used, cap int) string {
	filled := 0
	if cap > 0 {
		filled = used * meterWidth / cap
		if filled > meterWidth {
			filled = meterWidth
		}
	}
	bar := meterStyle.Render(strings.Repeat("#", filled)) +
		dimStyle.Render(strings.Repeat("-", meterWidth-filled))
	pct := 0
	if cap > 0 {
		pct = used * 100 / cap
	}
	return fmt.Sprintf("mem [%s] %3d%%", bar, pct)
}

func formatTime(frames, rate int) string {
	if rate <= 0 {
		return "0:00.0"
	}
	secs := float64(frames) / float64(rate)
	m := int(secs) / 60
	return fmt.Sprintf("%d:%04.1f", m, secs-float64(m*60))
}
