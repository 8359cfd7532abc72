package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// importRegex matches @import "file.css"; @import 'file.css'; and
// @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Load reads the stylesheet at path and inlines its imports. Relative imports
// resolve against the importing file; an import of a missing file whose name
// starts with "_" falls back to the bundled partial of that name.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read stylesheet: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return inline(string(data), filepath.Dir(abs), map[string]bool{abs: true}), nil
}

// inline replaces each @import in css with the imported text. seen guards
// against cycles. Failed imports are left as comments so GTK still parses the
// rest of the sheet.
func inline(css, dir string, seen map[string]bool) string {
	return importRegex.ReplaceAllStringFunc(css, func(match string) string {
		sub := importRegex.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		name := sub[1]

		full := name
		if !filepath.IsAbs(full) && dir != "" {
			full = filepath.Join(dir, name)
		}
		if seen[full] {
			return "/* circular import skipped: " + name + " */"
		}

		err := os.ErrNotExist
		if dir != "" || filepath.IsAbs(name) {
			var data []byte
			if data, err = os.ReadFile(full); err == nil {
				seen[full] = true
				return "/* " + name + " */\n" + inline(string(data), filepath.Dir(full), seen)
			}
		}

		if base := filepath.Base(name); strings.HasPrefix(base, "_") {
			key := "bundled:" + base
			if seen[key] {
				return "/* circular import skipped: " + name + " */"
			}
			if css, ok := Partial(base); ok {
				seen[key] = true
				return "/* " + name + " (bundled) */\n" + inline(css, "", seen)
			}
		}
		return "/* import failed: " + name + ": " + err.Error() + " */"
	})
}
