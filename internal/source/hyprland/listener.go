package hyprland

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"path/filepath"

	"github.com/jmylchreest/wayglance/internal/source"
)

// Name is the signal namespace of Hyprland events.
const Name = "hyprland"

// maxLine bounds a single event line. Window titles can be long.
const maxLine = 64 * 1024

// Listener is a source.Adapter for the Hyprland event socket.
type Listener struct {
	dir    string
	logger *slog.Logger
}

// NewListener creates a Listener for the sockets in dir (see SocketDir).
func NewListener(dir string, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		dir:    dir,
		logger: logger.With("component", "hyprland"),
	}
}

// Name implements source.Adapter.
func (l *Listener) Name() string {
	return Name
}

// Listen implements source.Adapter. It returns an error if the socket cannot
// be opened or the connection fails while ctx is still live.
func (l *Listener) Listen(ctx context.Context, out chan<- source.Message) error {
	path := filepath.Join(l.dir, eventSocket)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", path, err)
	}
	defer conn.Close()

	// Unblock the scanner on cancellation.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	l.logger.Debug("connected to event socket", "path", path)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxLine)
	for scanner.Scan() {
		msg, ok := ParseLine(scanner.Text())
		if !ok {
			continue
		}
		if !source.Send(ctx, out, msg, l.logger) {
			return nil
		}
	}

	if ctx.Err() != nil {
		return nil
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("reading hyprland events: %w", err)
	}
	return errors.New("hyprland closed the event socket")
}
