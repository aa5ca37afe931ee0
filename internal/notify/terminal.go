package notify

import (
	"fmt"
	"io"
	"sync"
)

// Icon returns the glyph shown next to a severity. Unknown severities get the
// error glyph.
func Icon(s Severity) string {
	switch s {
	case Success:
		return "✓"
	case Info:
		return "i"
	case Warning:
		return "!"
	default:
		return "✗"
	}
}

// TerminalSurface prints each notification as one line. Terminal output can't
// be taken back, so Remove is a no-op.
type TerminalSurface struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminalSurface(w io.Writer) *TerminalSurface {
	return &TerminalSurface{w: w}
}

func (t *TerminalSurface) Insert(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "[%s %s] %s\n", Icon(n.Severity), n.Severity, n.Message)
}

func (t *TerminalSurface) Remove(Notification) {}
