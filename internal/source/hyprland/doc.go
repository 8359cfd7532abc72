// Package hyprland talks to the Hyprland compositor over its IPC sockets.
//
// Listener reads the event socket (.socket2.sock) and turns the lines it
// cares about into source messages under the "hyprland" namespace. Client
// sends one-shot requests to the command socket (.socket.sock).
package hyprland
