// Package lexicon provides the immutable, verified English→Tulu base
// dictionary.
//
// The lexicon is seeded once at construction from a static entry table and is
// never mutated afterwards. All lookups go through [Normalize], which defines
// the canonical key form shared by every layer of the resolution pipeline.
package lexicon

import (
	"sort"
	"strings"
)

// Category classifies a base lexicon entry.
type Category string

const (
	CategoryGreetings    Category = "greetings"
	CategoryNumbers      Category = "numbers"
	CategoryFamily       Category = "family"
	CategoryColors       Category = "colors"
	CategoryCommon       Category = "common"
	CategoryPlacesThings Category = "places_things"
	CategoryActions      Category = "actions"
	CategoryGeneral      Category = "general"
)

// Categories lists the recognised categories in display order.
func Categories() []Category {
	return []Category{
		CategoryGreetings, CategoryNumbers, CategoryFamily, CategoryColors,
		CategoryCommon, CategoryPlacesThings, CategoryActions, CategoryGeneral,
	}
}

// IsValid reports whether c is a recognised category.
func (c Category) IsValid() bool {
	switch c {
	case CategoryGreetings, CategoryNumbers, CategoryFamily, CategoryColors,
		CategoryCommon, CategoryPlacesThings, CategoryActions, CategoryGeneral:
		return true
	}
	return false
}

// Entry is a single verified English→Tulu mapping. Tulu text is stored in
// Roman transliteration.
type Entry struct {
	// English is the normalized lookup key (lowercase, single-spaced).
	English string

	// Tulu is the verified translation.
	Tulu string

	// Category groups the entry for listing and stats.
	Category Category
}

// Normalize converts s into the canonical key form used across all dictionary
// tables: lowercase, trimmed, inner whitespace collapsed to single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Lexicon is the immutable base dictionary. It is safe for concurrent use
// without locking because it is never written after construction.
type Lexicon struct {
	entries map[string]Entry
	keys    []string
}

// New builds the [Lexicon] from the seed table. Seed keys are normalized
// during construction so callers only ever deal with canonical keys.
func New() *Lexicon {
	l := &Lexicon{entries: make(map[string]Entry, len(seedEntries))}
	for _, e := range seedEntries {
		e.English = Normalize(e.English)
		l.entries[e.English] = e
	}
	l.keys = make([]string, 0, len(l.entries))
	for k := range l.entries {
		l.keys = append(l.keys, k)
	}
	sort.Strings(l.keys)
	return l
}

// Lookup returns the verified translation for the normalized key, if any.
func (l *Lexicon) Lookup(key string) (string, bool) {
	e, ok := l.entries[key]
	if !ok {
		return "", false
	}
	return e.Tulu, true
}

// Entry returns the full [Entry] for the normalized key, if any.
func (l *Lexicon) Entry(key string) (Entry, bool) {
	e, ok := l.entries[key]
	return e, ok
}

// Contains reports whether the normalized key exists in the base dictionary.
func (l *Lexicon) Contains(key string) bool {
	_, ok := l.entries[key]
	return ok
}

// Size returns the number of seeded entries.
func (l *Lexicon) Size() int {
	return len(l.entries)
}

// ByCategory returns all entries in category c, sorted by English key.
func (l *Lexicon) ByCategory(c Category) []Entry {
	var out []Entry
	for _, k := range l.keys {
		if e := l.entries[k]; e.Category == c {
			out = append(out, e)
		}
	}
	return out
}
