package theme

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed themes/*.css
var embedded embed.FS

const baseName = "base.css"

// Base returns the bundled base stylesheet with its imports inlined.
func Base() string {
	data, _ := embedded.ReadFile(path.Join("themes", baseName))
	return inline(string(data), "", map[string]bool{})
}

// Partial returns a bundled partial such as "_colors.css". The leading
// underscore and the extension may be omitted.
func Partial(name string) (string, bool) {
	if !strings.HasPrefix(name, "_") {
		name = "_" + name
	}
	if !strings.HasSuffix(name, ".css") {
		name += ".css"
	}
	data, err := embedded.ReadFile(path.Join("themes", name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Partials lists the bundled partial names.
func Partials() []string {
	entries, err := fs.ReadDir(embedded, "themes")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if name := e.Name(); strings.HasPrefix(name, "_") {
			names = append(names, name)
		}
	}
	return names
}
