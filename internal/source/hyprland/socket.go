package hyprland

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	eventSocket   = ".socket2.sock"
	commandSocket = ".socket.sock"
)

// ErrNoInstance is returned when HYPRLAND_INSTANCE_SIGNATURE is not set,
// which means wayglance is not running under Hyprland.
var ErrNoInstance = errors.New("HYPRLAND_INSTANCE_SIGNATURE is not set")

// SocketDir returns the directory holding the IPC sockets of the running
// Hyprland instance.
func SocketDir() (string, error) {
	return socketDir(os.Getenv, exists)
}

func socketDir(getenv func(string) string, exists func(string) bool) (string, error) {
	sig := getenv("HYPRLAND_INSTANCE_SIGNATURE")
	if sig == "" {
		return "", ErrNoInstance
	}

	var candidates []string
	if runtime := getenv("XDG_RUNTIME_DIR"); runtime != "" {
		candidates = append(candidates, filepath.Join(runtime, "hypr", sig))
	}
	candidates = append(candidates, filepath.Join("/tmp", "hypr", sig))

	for _, dir := range candidates {
		if exists(filepath.Join(dir, eventSocket)) {
			return dir, nil
		}
	}
	return "", fmt.Errorf("no hyprland socket for instance %s in %v", sig, candidates)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
