package hyprland

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestSocketDir(t *testing.T) {
	t.Run("no instance", func(t *testing.T) {
		_, err := socketDir(env(nil), func(string) bool { return true })
		assert.ErrorIs(t, err, ErrNoInstance)
	})

	t.Run("runtime dir", func(t *testing.T) {
		dir, err := socketDir(env(map[string]string{
			"HYPRLAND_INSTANCE_SIGNATURE": "abc",
			"XDG_RUNTIME_DIR":             "/run/user/1000",
		}), func(p string) bool { return p == "/run/user/1000/hypr/abc/.socket2.sock" })
		require.NoError(t, err)
		assert.Equal(t, "/run/user/1000/hypr/abc", dir)
	})

	t.Run("tmp fallback", func(t *testing.T) {
		dir, err := socketDir(env(map[string]string{
			"HYPRLAND_INSTANCE_SIGNATURE": "abc",
			"XDG_RUNTIME_DIR":             "/run/user/1000",
		}), func(p string) bool { return p == "/tmp/hypr/abc/.socket2.sock" })
		require.NoError(t, err)
		assert.Equal(t, "/tmp/hypr/abc", dir)
	})

	t.Run("missing socket", func(t *testing.T) {
		_, err := socketDir(env(map[string]string{
			"HYPRLAND_INSTANCE_SIGNATURE": "abc",
		}), func(string) bool { return false })
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoInstance)
	})
}
