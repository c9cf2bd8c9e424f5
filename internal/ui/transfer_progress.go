package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/dustin/go-humanize"
)

// TransferBar draws a byte transfer as a single redrawn bar line:
//
//	part-0000  ████████░░░░░░░░  52%  1.2 MB / 2.3 MB  640 kB/s
//
// Without a terminal it prints one summary line when the transfer ends.
type TransferBar struct {
	mu          sync.Mutex
	out         io.Writer
	label       string
	bar         progress.Model
	interactive bool
	start       time.Time
	lastPct     int
	finished    bool
}

// NewTransferBar creates a bar for label writing to out.
func NewTransferBar(label string, out io.Writer) *TransferBar {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	bar.FullColor = string(ColorSuccess)
	bar.EmptyColor = string(ColorMuted)

	return &TransferBar{
		out:         out,
		label:       label,
		bar:         bar,
		interactive: IsTerminal(out),
		lastPct:     -1,
	}
}

// SetInteractive overrides terminal detection.
func (b *TransferBar) SetInteractive(interactive bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.interactive = interactive
}

// Update records progress. Its signature matches sshutil.ProgressFunc, so
// b.Update can be handed to a transfer directly.
func (b *TransferBar) Update(transferred, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	if b.start.IsZero() {
		b.start = time.Now()
	}

	done := transferred >= total
	pct := 100
	if total > 0 && !done {
		pct = int(transferred * 100 / total)
	}

	if !b.interactive {
		if done {
			fmt.Fprintf(b.out, "%s: %s transferred out of a total of %s\n",
				b.label, humanize.Bytes(uint64(transferred)), humanize.Bytes(uint64(total)))
			b.finished = true
		}
		return
	}

	if pct == b.lastPct && !done {
		return
	}
	b.lastPct = pct

	fmt.Fprint(b.out, "\r"+b.line(transferred, total, pct))
	if done {
		fmt.Fprintln(b.out)
		b.finished = true
	}
}

func (b *TransferBar) line(transferred, total int64, pct int) string {
	line := fmt.Sprintf("%s  %s %3d%%  %s / %s",
		b.label,
		b.bar.ViewAs(float64(pct)/100),
		pct,
		humanize.Bytes(uint64(transferred)),
		humanize.Bytes(uint64(total)))

	if elapsed := time.Since(b.start).Seconds(); elapsed > 0.5 {
		rate := uint64(float64(transferred) / elapsed)
		line += "  " + Muted(humanize.Bytes(rate)+"/s")
	}
	return line
}
