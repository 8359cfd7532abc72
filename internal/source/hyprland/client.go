package hyprland

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds one request on the command socket.
const DefaultTimeout = 2 * time.Second

// ErrInvalidReply is returned when a JSON query returns something else.
var ErrInvalidReply = errors.New("hyprland returned an invalid reply")

// Client sends requests to the Hyprland command socket. Every request uses a
// fresh connection, as Hyprland closes it after replying.
type Client struct {
	path    string
	timeout time.Duration
}

// NewClient creates a Client for the sockets in dir.
func NewClient(dir string) *Client {
	return &Client{
		path:    filepath.Join(dir, commandSocket),
		timeout: DefaultTimeout,
	}
}

// Dispatch runs a dispatcher, e.g. "workspace 2".
func (c *Client) Dispatch(ctx context.Context, cmd string) error {
	reply, err := c.request(ctx, "dispatch "+cmd)
	if err != nil {
		return err
	}
	if r := strings.TrimSpace(string(reply)); r != "ok" {
		return fmt.Errorf("dispatch %q: %s", cmd, r)
	}
	return nil
}

// Query runs a JSON request such as "workspaces" or "activewindow".
func (c *Client) Query(ctx context.Context, cmd string) (gjson.Result, error) {
	reply, err := c.request(ctx, "j/"+cmd)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(reply) {
		return gjson.Result{}, fmt.Errorf("query %q: %w: %s", cmd, ErrInvalidReply, strings.TrimSpace(string(reply)))
	}
	return gjson.ParseBytes(reply), nil
}

func (c *Client) request(ctx context.Context, payload string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.path)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.path, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := io.WriteString(conn, payload); err != nil {
		return nil, fmt.Errorf("writing request: %w", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	return reply, nil
}
