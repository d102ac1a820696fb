package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// writerIsTTY returns true if the given writer exposes an Fd() method
// (e.g. *os.File) and that fd is a terminal. Falls back to false for
// plain io.Writer values such as *bytes.Buffer.
func writerIsTTY(w io.Writer) bool {
	type fder interface {
		Fd() uintptr
	}
	if f, ok := w.(fder); ok {
		return isatty.IsTerminal(f.Fd())
	}
	return false
}

// ProgressBar displays sampling progress with a trailing status message.
// Example: [=========>          ] 9/20 412 tags tracked
type ProgressBar struct {
	total   int
	current int
	status  string
	width   int
	mu      sync.Mutex
	writer  io.Writer
}

// NewProgress creates a progress bar over total steps.
func NewProgress(total int) *ProgressBar {
	return &ProgressBar{
		total:  total,
		width:  40,
		writer: os.Stdout,
	}
}

// SetWriter sets the output writer (useful for testing).
func (p *ProgressBar) SetWriter(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.writer = w
}

// Step advances the bar to step current with the given status message.
func (p *ProgressBar) Step(current int, status string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if p.current > p.total {
		p.current = p.total
	}
	p.status = status
	p.render()
}

// Finish completes the bar and moves to the next line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// render redraws the bar in place. On a non-TTY writer it prints one plain
// line per step instead, so logs stay readable.
func (p *ProgressBar) render() {
	if !writerIsTTY(p.writer) {
		fmt.Fprintf(p.writer, "[%d/%d] %s\n", p.current, p.total, p.status)
		return
	}

	filled := 0
	if p.total > 0 {
		filled = p.width * p.current / p.total
	}
	bar := strings.Repeat("=", filled)
	if filled < p.width {
		bar += ">" + strings.Repeat(" ", p.width-filled-1)
	}

	fmt.Fprintf(p.writer, "\r\033[K[%s] %d/%d %s", bar, p.current, p.total, p.status)
}
