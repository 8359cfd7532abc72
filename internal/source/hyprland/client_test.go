package hyprland

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveCommands answers each connection on the command socket with reply(request).
func serveCommands(t *testing.T, dir string, reply func(string) string) <-chan string {
	t.Helper()
	ln := listen(t, filepath.Join(dir, commandSocket))
	requests := make(chan string, 8)

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			buf := make([]byte, 1024)
			n, _ := conn.Read(buf)
			req := string(buf[:n])
			requests <- req
			_, _ = io.WriteString(conn, reply(req))
			_ = conn.Close()
		}
	}()
	return requests
}

func TestClient_Dispatch(t *testing.T) {
	dir := socketTempDir(t)
	requests := serveCommands(t, dir, func(req string) string {
		if req == "dispatch workspace 2" {
			return "ok"
		}
		return "Invalid dispatcher"
	})
	c := NewClient(dir)

	require.NoError(t, c.Dispatch(context.Background(), "workspace 2"))
	assert.Equal(t, "dispatch workspace 2", <-requests)

	err := c.Dispatch(context.Background(), "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid dispatcher")
}

func TestClient_Query(t *testing.T) {
	dir := socketTempDir(t)
	requests := serveCommands(t, dir, func(req string) string {
		switch req {
		case "j/activeworkspace":
			return `{"id":2,"name":"web","monitor":"DP-1","windows":3}`
		default:
			return "unknown request"
		}
	})
	c := NewClient(dir)

	res, err := c.Query(context.Background(), "activeworkspace")
	require.NoError(t, err)
	assert.Equal(t, "j/activeworkspace", <-requests)
	assert.Equal(t, int64(2), res.Get("id").Int())
	assert.Equal(t, "web", res.Get("name").String())

	_, err = c.Query(context.Background(), "nothing")
	assert.ErrorIs(t, err, ErrInvalidReply)
}

func TestClient_NoSocket(t *testing.T) {
	c := NewClient(socketTempDir(t))
	assert.Error(t, c.Dispatch(context.Background(), "workspace 1"))
}
