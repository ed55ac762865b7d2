// Package assets embeds the built-in rule documents shipped with the server.
package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed rules/*.yaml
var FS embed.FS

const rulesDir = "rules"

// RuleNames lists the embedded rule documents by base name, sorted.
func RuleNames() ([]string, error) {
	entries, err := fs.ReadDir(FS, rulesDir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		out = append(out, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(out)
	return out, nil
}

// Rule returns the embedded document called name (without extension).
func Rule(name string) ([]byte, error) {
	return FS.ReadFile(path.Join(rulesDir, name+".yaml"))
}
