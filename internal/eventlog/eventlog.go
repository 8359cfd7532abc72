// Package eventlog prints bus signals one per line for the events command.
package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	lua "github.com/yuin/gopher-lua"

	"github.com/jmylchreest/wayglance/internal/script"
)

const timeFormat = "15:04:05.000"

var (
	timeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	backendStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	kindStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	payloadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
)

// Printer writes "<time> <signal> <payload>" lines, the payload as JSON.
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	bridge *script.Bridge
	styled bool
	now    func() time.Time
}

// New creates a Printer. With styled set, the line is coloured with ANSI
// escapes.
func New(w io.Writer, L *lua.LState, styled bool) *Printer {
	return &Printer{
		w:      w,
		bridge: script.NewBridge(L),
		styled: styled,
		now:    time.Now,
	}
}

// Listener returns a bus listener that prints every payload under name.
func (p *Printer) Listener(name string) func(lua.LValue) {
	return func(payload lua.LValue) {
		if err := p.Print(name, payload); err != nil {
			// The writer is stdout; there is nowhere better to report it.
			_, _ = fmt.Fprintf(p.w, "%s: %v\n", name, err)
		}
	}
}

// Print writes one line for a signal.
func (p *Printer) Print(name string, payload lua.LValue) error {
	data, err := json.Marshal(p.bridge.ToGoValue(payload))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	ts := p.now().Format(timeFormat)
	line := ts + " " + name + " " + string(data)
	if p.styled {
		line = timeStyle.Render(ts) + " " + renderName(name) + " " + payloadStyle.Render(string(data))
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err = fmt.Fprintln(p.w, line)
	return err
}

func renderName(name string) string {
	backend, kind, ok := strings.Cut(name, "::")
	if !ok {
		return kindStyle.Render(name)
	}
	return backendStyle.Render(backend) + "::" + kindStyle.Render(kind)
}
