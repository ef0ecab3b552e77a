package catalog

import (
	"math/rand"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Selected is a mantra chosen for delivery, tagged with its theme.
type Selected struct {
	Text       string
	Theme      string
	BasePoints int
}

// Select picks one mantra uniformly from the flattened pool of all
// mantras in the enabled themes. Favorited templates are entered twice,
// giving them double weight. Unknown theme names are ignored. The random
// source is injected so callers can make selection deterministic.
func (c *Catalog) Select(themes []string, favorites []string, rng *rand.Rand) (Selected, bool) {
	favSet := make(map[string]struct{}, len(favorites))
	for _, f := range favorites {
		favSet[f] = struct{}{}
	}

	var pool []Selected
	// Deterministic pool order so a seeded rng yields stable picks.
	sorted := append([]string(nil), themes...)
	sort.Strings(sorted)
	for _, name := range sorted {
		theme, ok := c.themes[name]
		if !ok {
			continue
		}
		for _, m := range theme.Mantras {
			entry := Selected{Text: m.Text, Theme: name, BasePoints: m.BasePoints}
			pool = append(pool, entry)
			if _, fav := favSet[m.Text]; fav {
				pool = append(pool, entry)
			}
		}
	}
	if len(pool) == 0 {
		return Selected{}, false
	}
	return pool[rng.Intn(len(pool))], true
}

var possessiveRe = regexp.MustCompile(`(?i)(\w+s)(?:'s|’s)`)

// FormatText resolves the {subject} and {controller} placeholders,
// capitalizes the first letter, and normalizes possessives of names
// already ending in s ("Goddess's" → "Goddess'").
func FormatText(template, subject, controller string) string {
	r := strings.NewReplacer("{subject}", subject, "{controller}", controller)
	out := r.Replace(template)

	if out != "" {
		runes := []rune(out)
		if unicode.IsLower(runes[0]) {
			runes[0] = unicode.ToUpper(runes[0])
			out = string(runes)
		}
	}

	return possessiveRe.ReplaceAllString(out, "$1'")
}
