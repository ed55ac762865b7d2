// internal/catalog/catalog.go
//
// Built-in rule sets available to every session.
//
// Responsibilities:
//   - Load rule documents from a configured directory, or fall back to the
//     documents embedded in the assets package.
//   - Check every document once at startup; an invalid built-in is fatal.
//   - Serve checked rule sets by name (file base name, e.g. "tictactoe").
//
// Loading behavior (Load):
//   1. If dir is set, every *.yaml / *.yml file in it is loaded.
//   2. Otherwise the embedded documents are used.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robalobadob/boardrules/assets"
	"github.com/robalobadob/boardrules/internal/rules"
)

// Entry is one named, checked rule set.
type Entry struct {
	Name  string
	Rules *rules.Checked
}

// Catalog is read-only after Load and safe for concurrent use.
type Catalog struct {
	names []string
	byKey map[string]*rules.Checked
}

// Load builds the catalog from dir, or from the embedded documents when dir
// is empty.
func Load(dir string) (*Catalog, error) {
	if dir == "" {
		return loadEmbedded()
	}
	return loadDir(dir)
}

func loadEmbedded() (*Catalog, error) {
	names, err := assets.RuleNames()
	if err != nil {
		return nil, err
	}
	c := newCatalog()
	for _, name := range names {
		data, err := assets.Rule(name)
		if err != nil {
			return nil, err
		}
		if err := c.add(name, data); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func loadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	c := newCatalog()
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if err := c.add(strings.TrimSuffix(e.Name(), ext), data); err != nil {
			return nil, err
		}
	}
	if len(c.names) == 0 {
		return nil, fmt.Errorf("catalog: no rule documents in %s", dir)
	}
	return c, nil
}

func newCatalog() *Catalog { return &Catalog{byKey: make(map[string]*rules.Checked)} }

func (c *Catalog) add(name string, data []byte) error {
	if _, dup := c.byKey[name]; dup {
		return fmt.Errorf("catalog: %s defined twice", name)
	}
	u, err := rules.LoadBytes(data)
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", name, err)
	}
	checked, err := u.Check()
	if err != nil {
		return fmt.Errorf("catalog: %s: %w", name, err)
	}
	c.byKey[name] = checked
	c.names = append(c.names, name)
	sort.Strings(c.names)
	return nil
}

// Names lists the catalog keys, sorted.
func (c *Catalog) Names() []string { return append([]string(nil), c.names...) }

// Get returns the rule set called name.
func (c *Catalog) Get(name string) (*rules.Checked, bool) {
	r, ok := c.byKey[name]
	return r, ok
}

// Entries lists every rule set in name order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.names))
	for i, n := range c.names {
		out[i] = Entry{Name: n, Rules: c.byKey[n]}
	}
	return out
}
