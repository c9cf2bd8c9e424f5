package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// TunnelStatus is what the tunnel view needs from a running forward.
type TunnelStatus interface {
	LocalAddr() string
	RemoteAddr() string
	Active() int
	Done() <-chan struct{}
}

type tunnelTickMsg time.Time

type tunnelDoneMsg struct{}

var tunnelQuitKeys = key.NewBinding(
	key.WithKeys("q", "esc", "ctrl+c"),
	key.WithHelp("q", "stop"),
)

// TunnelModel is a Bubble Tea model that shows a running forward until
// the user quits or the tunnel stops on its own.
type TunnelModel struct {
	tunnel  TunnelStatus
	profile string
	spinner spinner.Model
	started time.Time
	now     time.Time
	stopped bool
	quit    bool
}

// NewTunnelModel creates the view for tunnel opened through profile.
func NewTunnelModel(tunnel TunnelStatus, profile string) TunnelModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(ColorSuccess)

	now := time.Now()
	return TunnelModel{
		tunnel:  tunnel,
		profile: profile,
		spinner: s,
		started: now,
		now:     now,
	}
}

// Init starts the spinner, the clock and the watch on the tunnel.
func (m TunnelModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tunnelTick(), waitTunnel(m.tunnel.Done()))
}

func tunnelTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tunnelTickMsg(t)
	})
}

func waitTunnel(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return tunnelDoneMsg{}
	}
}

// Update handles key presses, ticks and the tunnel ending.
func (m TunnelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, tunnelQuitKeys) {
			m.quit = true
			return m, tea.Quit
		}
	case tunnelTickMsg:
		m.now = time.Time(msg)
		return m, tunnelTick()
	case tunnelDoneMsg:
		m.stopped = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Quit reports whether the user asked to stop.
func (m TunnelModel) Quit() bool {
	return m.quit
}

// Stopped reports whether the tunnel ended by itself.
func (m TunnelModel) Stopped() bool {
	return m.stopped
}

// View renders the status block.
func (m TunnelModel) View() string {
	var b strings.Builder

	symbol := m.spinner.View()
	if m.stopped {
		symbol = lipgloss.NewStyle().Foreground(ColorError).Render(SymbolFail)
	}
	fmt.Fprintf(&b, "%s %s %s %s  %s\n",
		symbol,
		m.tunnel.LocalAddr(),
		SymbolArrow,
		m.tunnel.RemoteAddr(),
		Muted("via "+m.profile))

	uptime := m.now.Sub(m.started).Truncate(time.Second)
	fmt.Fprintf(&b, "  %s\n", Muted(fmt.Sprintf("up %s, %d active", uptime, m.tunnel.Active())))

	if !m.stopped && !m.quit {
		b.WriteString("  " + Muted("press q to stop") + "\n")
	}
	return b.String()
}
