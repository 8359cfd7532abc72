package mpris

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
)

// DefaultPlayer is addressed when no player is configured. playerctld
// forwards commands to the most recently active player.
const DefaultPlayer = "playerctld"

// Conn is the part of *dbus.Conn the controller uses.
type Conn interface {
	Object(dest string, path dbus.ObjectPath) dbus.BusObject
}

// Controller sends transport commands to one player.
type Controller struct {
	player  string
	connect func() (Conn, error)

	mu   sync.Mutex
	conn Conn
}

// NewController creates a Controller for player, or DefaultPlayer when empty.
// The session bus is connected on first use.
func NewController(player string) *Controller {
	return newController(player, func() (Conn, error) {
		conn, err := dbus.SessionBus()
		if err != nil {
			return nil, err
		}
		return conn, nil
	})
}

func newController(player string, connect func() (Conn, error)) *Controller {
	if player == "" {
		player = DefaultPlayer
	}
	return &Controller{player: player, connect: connect}
}

// Player returns the bus name commands are sent to.
func (c *Controller) Player() string {
	return BusName(c.player)
}

// PlayPause toggles playback.
func (c *Controller) PlayPause(ctx context.Context) error {
	return c.call(ctx, "PlayPause")
}

// Next skips to the next track.
func (c *Controller) Next(ctx context.Context) error {
	return c.call(ctx, "Next")
}

// Previous skips to the previous track.
func (c *Controller) Previous(ctx context.Context) error {
	return c.call(ctx, "Previous")
}

func (c *Controller) call(ctx context.Context, method string) error {
	conn, err := c.session()
	if err != nil {
		return err
	}
	obj := conn.Object(c.Player(), objectPath)
	if err := obj.CallWithContext(ctx, playerIface+"."+method, 0).Err; err != nil {
		return fmt.Errorf("%s on %s: %w", method, c.Player(), err)
	}
	return nil
}

func (c *Controller) session() (Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}
	conn, err := c.connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	c.conn = conn
	return conn, nil
}
