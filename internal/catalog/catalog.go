// Package catalog is the read-only content repository: theme files on
// disk, each holding a list of mantra templates with base point values.
package catalog

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/EcstasyEngineer/mantrad/internal/scoring"
)

// Mantra is a single prompt template within a theme. Text may contain
// {subject} and {controller} placeholders resolved at display time.
type Mantra struct {
	Text       string `json:"text"`
	BasePoints int    `json:"base_points"`
}

// Theme is one content category as stored on disk.
type Theme struct {
	Name        string   `json:"theme"`
	Description string   `json:"description"`
	Mantras     []Mantra `json:"mantras"`
}

// Catalog holds all loaded themes, keyed by name.
type Catalog struct {
	themes map[string]Theme
}

// Load reads every *.json theme file in dir. Unreadable or malformed
// files are logged and skipped so one bad theme never takes down the
// daemon. A missing directory yields an empty catalog.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{themes: make(map[string]Theme)}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		log.Printf("catalog: themes directory %s not found", dir)
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read themes dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("catalog: read %s: %v", path, err)
			continue
		}
		var theme Theme
		if err := json.Unmarshal(data, &theme); err != nil {
			log.Printf("catalog: parse %s: %v", path, err)
			continue
		}
		if theme.Name == "" || len(theme.Mantras) == 0 {
			log.Printf("catalog: skipping %s: missing theme name or mantras", path)
			continue
		}
		c.themes[theme.Name] = theme
	}
	return c, nil
}

// NewFromThemes builds a catalog directly from theme values (used by tests
// and embedded defaults).
func NewFromThemes(themes ...Theme) *Catalog {
	c := &Catalog{themes: make(map[string]Theme, len(themes))}
	for _, t := range themes {
		c.themes[t.Name] = t
	}
	return c
}

// Names returns all theme names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.themes))
	for name := range c.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns a theme by name.
func (c *Catalog) Get(name string) (Theme, bool) {
	t, ok := c.themes[name]
	return t, ok
}

// Has reports whether a theme exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.themes[name]
	return ok
}

// Len returns the number of loaded themes.
func (c *Catalog) Len() int {
	return len(c.themes)
}

// HasMantra reports whether any theme contains a mantra with this exact
// template text. Favorites are keyed by template, so this is the
// validation gate for favoriting.
func (c *Catalog) HasMantra(text string) bool {
	for _, t := range c.themes {
		for _, m := range t.Mantras {
			if m.Text == text {
				return true
			}
		}
	}
	return false
}

// Tier returns the difficulty label for a mantra's point value.
func (m Mantra) Tier() string {
	return scoring.Tier(m.BasePoints)
}
