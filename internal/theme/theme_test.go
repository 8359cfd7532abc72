package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSS(t *testing.T, dir, name, css string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(css), 0o600))
	return path
}

func TestBase_InlinesColors(t *testing.T) {
	css := Base()
	assert.NotContains(t, css, "@import")
	assert.Contains(t, css, "@define-color wg_background")
	assert.Contains(t, css, ".wayglance-label")
}

func TestPartial(t *testing.T) {
	for _, name := range []string{"_colors.css", "_colors", "colors"} {
		css, ok := Partial(name)
		assert.True(t, ok, name)
		assert.Contains(t, css, "wg_accent", name)
	}
	_, ok := Partial("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"_colors.css"}, Partials())
}

func TestLoad_NoImports(t *testing.T) {
	css := `.clock { color: red; }`
	got, err := Load(writeCSS(t, t.TempDir(), "style.css", css))
	require.NoError(t, err)
	assert.Equal(t, css, got)
}

func TestLoad_Imports(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		main    string
		want    []string
		notWant []string
	}{
		{
			name:  "relative file",
			files: map[string]string{"_mine.css": `.mine { color: blue; }`},
			main:  `@import "_mine.css";` + "\n.bar {}",
			want:  []string{"/* _mine.css */", ".mine { color: blue; }", ".bar {}"},
		},
		{
			name: "nested",
			files: map[string]string{
				"a.css": `@import 'b.css'; .a {}`,
				"b.css": `.b {}`,
			},
			main: `@import url("a.css");`,
			want: []string{".a {}", ".b {}"},
		},
		{
			name: "cycle",
			files: map[string]string{
				"a.css": `@import "style.css"; .a {}`,
			},
			main: `@import "a.css"; .main {}`,
			want: []string{"circular import skipped: style.css", ".a {}", ".main {}"},
		},
		{
			name: "bundled partial",
			main: `@import "_colors.css"; .x { color: @wg_accent; }`,
			want: []string{"(bundled)", "@define-color wg_accent"},
		},
		{
			name:    "missing",
			main:    `@import "nope.css"; .x {}`,
			want:    []string{"/* import failed: nope.css:", ".x {}"},
			notWant: []string{"@import"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for name, css := range tt.files {
				writeCSS(t, dir, name, css)
			}
			got, err := Load(writeCSS(t, dir, "style.css", tt.main))
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, got, w)
			}
		})
	}
}

func TestLoad_UserPartialOverridesBundled(t *testing.T) {
	dir := t.TempDir()
	writeCSS(t, dir, "_colors.css", `@define-color wg_accent red;`)
	got, err := Load(writeCSS(t, dir, "style.css", `@import "_colors.css";`))
	require.NoError(t, err)
	assert.Contains(t, got, "wg_accent red")
	assert.False(t, strings.Contains(got, "(bundled)"))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.css"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
