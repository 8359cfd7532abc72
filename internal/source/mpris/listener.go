package mpris

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/wayglance/internal/source"
)

// Name is the signal namespace of MPRIS events.
const Name = "mpris"

const (
	busPrefix       = "org.mpris.MediaPlayer2."
	objectPath      = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	playerIface     = "org.mpris.MediaPlayer2.Player"
	propertiesIface = "org.freedesktop.DBus.Properties"
)

// BusName returns the well-known bus name of a player, e.g. "spotify".
func BusName(player string) string {
	return busPrefix + player
}

// Listener is a source.Adapter for MPRIS players on the session bus.
type Listener struct {
	player string
	logger *slog.Logger

	// owners maps unique connection names to player bus names.
	owners map[string]string
}

// NewListener creates a Listener. An empty player follows every player.
func NewListener(player string, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		player: player,
		logger: logger.With("component", "mpris"),
		owners: make(map[string]string),
	}
}

// Name implements source.Adapter.
func (l *Listener) Name() string {
	return Name
}

// Listen implements source.Adapter.
func (l *Listener) Listen(ctx context.Context, out chan<- source.Message) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("failed to connect to session bus: %w", err)
	}
	defer conn.Close()

	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(propertiesIface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchArg(0, playerIface),
	}
	if l.player != "" {
		opts = append(opts, dbus.WithMatchSender(BusName(l.player)))
	}
	if err := conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return fmt.Errorf("failed to add match rule: %w", err)
	}

	signals := make(chan *dbus.Signal, 16)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	l.logger.Info("watching MPRIS players", "player", l.player)

	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return errors.New("session bus connection closed")
			}
			player := l.resolve(ctx, conn, sig.Sender)
			for _, msg := range DecodeSignal(player, sig) {
				if !source.Send(ctx, out, msg, l.logger) {
					return nil
				}
			}
		}
	}
}

// resolve maps the unique sender name to a player bus name, falling back to
// the sender itself.
func (l *Listener) resolve(ctx context.Context, conn *dbus.Conn, sender string) string {
	if l.player != "" {
		return BusName(l.player)
	}
	if name, ok := l.owners[sender]; ok {
		return name
	}

	var names []string
	if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		l.logger.Debug("failed to list bus names", "error", err)
		return sender
	}
	for _, name := range names {
		if !strings.HasPrefix(name, busPrefix) {
			continue
		}
		var owner string
		if err := conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner); err != nil {
			continue
		}
		l.owners[owner] = name
	}
	if name, ok := l.owners[sender]; ok {
		return name
	}
	return sender
}

// DecodeSignal turns a PropertiesChanged signal into messages. Signals for
// other interfaces or without interesting properties yield nothing.
func DecodeSignal(player string, sig *dbus.Signal) []source.Message {
	if sig.Name != propertiesIface+".PropertiesChanged" || len(sig.Body) < 2 {
		return nil
	}
	iface, ok := sig.Body[0].(string)
	if !ok || iface != playerIface {
		return nil
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return nil
	}

	var msgs []source.Message
	if v, ok := changed["PlaybackStatus"]; ok {
		if status, ok := v.Value().(string); ok {
			msgs = append(msgs, source.Message{
				Kind:  KindPlaybackStatus,
				Event: PlaybackStatus{Player: player, Status: status},
			})
		}
	}
	if v, ok := changed["Metadata"]; ok {
		if md, ok := v.Value().(map[string]dbus.Variant); ok {
			msgs = append(msgs, source.Message{
				Kind:  KindMetadata,
				Event: DecodeMetadata(player, md),
			})
		}
	}
	return msgs
}
