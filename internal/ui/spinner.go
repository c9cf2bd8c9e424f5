package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// SpinnerState represents the current state of a spinner.
type SpinnerState int

const (
	SpinnerPending SpinnerState = iota
	SpinnerInProgress
	SpinnerSuccess
	SpinnerFailed
)

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Spinner shows an animated label while a step such as connecting or
// kinit runs, then replaces it with a final line carrying the elapsed time.
// On a non-terminal writer only the final line is printed.
type Spinner struct {
	mu           sync.Mutex
	label        string
	state        SpinnerState
	frame        int
	startTime    time.Time
	stopChan     chan struct{}
	doneChan     chan struct{}
	out          io.Writer
	animated     bool
	running      bool
	lastRendered string
}

// NewSpinner creates a spinner writing to out.
func NewSpinner(label string, out io.Writer) *Spinner {
	return &Spinner{
		label:    label,
		state:    SpinnerPending,
		out:      out,
		animated: IsTerminal(out),
	}
}

// SetAnimated overrides terminal detection.
func (s *Spinner) SetAnimated(animated bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animated = animated
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.state = SpinnerInProgress
	s.startTime = time.Now()
	s.stopChan = make(chan struct{})
	s.doneChan = make(chan struct{})
	animated := s.animated
	s.mu.Unlock()

	if !animated {
		close(s.doneChan)
		return
	}

	s.render()
	go s.animate()
}

// Stop halts the animation without changing state.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	<-s.doneChan
}

// Success stops the spinner and marks it as successful.
func (s *Spinner) Success() {
	s.finish(SpinnerSuccess)
}

// Fail stops the spinner and marks it as failed.
func (s *Spinner) Fail() {
	s.finish(SpinnerFailed)
}

func (s *Spinner) finish(state SpinnerState) {
	s.Stop()
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.renderFinal()
}

// State returns the current spinner state.
func (s *Spinner) State() SpinnerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Label returns the spinner's label.
func (s *Spinner) Label() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.label
}

// SetLabel updates the label shown on the next frame.
func (s *Spinner) SetLabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

func (s *Spinner) animate() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	defer close(s.doneChan)

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.mu.Lock()
			s.frame = (s.frame + 1) % len(spinnerFrames)
			s.mu.Unlock()
			s.render()
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	style := lipgloss.NewStyle().Foreground(ColorSecondary)
	line := fmt.Sprintf("\r%s %s...", style.Render(spinnerFrames[s.frame]), s.label)
	s.clearLocked()
	fmt.Fprint(s.out, line)
	s.lastRendered = line
}

func (s *Spinner) clearLocked() {
	if s.lastRendered == "" {
		return
	}
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", len([]rune(s.lastRendered)))+"\r")
	s.lastRendered = ""
}

func (s *Spinner) renderFinal() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var symbol string
	var style lipgloss.Style
	switch s.state {
	case SpinnerSuccess:
		symbol = SymbolComplete
		style = lipgloss.NewStyle().Foreground(ColorSuccess)
	case SpinnerFailed:
		symbol = SymbolFail
		style = lipgloss.NewStyle().Foreground(ColorError)
	default:
		symbol = SymbolPending
		style = lipgloss.NewStyle().Foreground(ColorMuted)
	}

	var elapsed time.Duration
	if !s.startTime.IsZero() {
		elapsed = time.Since(s.startTime)
	}

	s.clearLocked()
	fmt.Fprintf(s.out, "%s %s %s\n", style.Render(symbol), s.label, Muted(formatDuration(elapsed)))
}

// formatDuration formats a duration for display (e.g., "0.3s", "1.2s").
func formatDuration(d time.Duration) string {
	secs := d.Seconds()
	if secs < 0.1 {
		return fmt.Sprintf("%.2fs", secs)
	}
	return fmt.Sprintf("%.1fs", secs)
}
