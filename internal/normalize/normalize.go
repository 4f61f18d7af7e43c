//-------------------------------------------------------------------------
//
// pgEdge Sales Mart
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package normalize maps inconsistent source attribute values onto the
// canonical vocabularies used by the warehouse dimensions.
//
// All tables are immutable once built. Merging overrides returns a new
// table and leaves the receiver untouched, so a Tables value can be shared
// freely between concurrently running transforms.
package normalize

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Unknown is the placeholder used for blank free-text attributes.
const Unknown = "Unknown"

// Fallback selects what a Vocabulary returns for a value it has no entry
// for.
type Fallback int

const (
	// FallbackPlaceholder returns the vocabulary's placeholder.
	FallbackPlaceholder Fallback = iota
	// FallbackTitle returns the title-cased input.
	FallbackTitle
	// FallbackCapitalize upper-cases the first letter and lower-cases the rest.
	FallbackCapitalize
)

// Vocabulary is a case-insensitive synonym table.
type Vocabulary struct {
	entries     map[string]string
	fallback    Fallback
	placeholder string
}

// NewVocabulary builds a vocabulary from synonym -> canonical entries.
// Blank input always maps to placeholder.
func NewVocabulary(entries map[string]string, fallback Fallback, placeholder string) *Vocabulary {
	v := &Vocabulary{
		entries:     make(map[string]string, len(entries)),
		fallback:    fallback,
		placeholder: placeholder,
	}
	for synonym, canonical := range entries {
		v.entries[matchKey(synonym)] = canonical
	}
	return v
}

// Normalize returns the canonical form of raw.
func (v *Vocabulary) Normalize(raw string) string {
	key := matchKey(raw)
	if key == "" {
		return v.placeholder
	}
	if canonical, ok := v.entries[key]; ok {
		return canonical
	}
	switch v.fallback {
	case FallbackTitle:
		return Title(raw)
	case FallbackCapitalize:
		return Capitalize(raw)
	default:
		return v.placeholder
	}
}

// Lookup returns the canonical value for raw when the table has an entry.
func (v *Vocabulary) Lookup(raw string) (string, bool) {
	canonical, ok := v.entries[matchKey(raw)]
	return canonical, ok
}

// Len returns the number of synonyms in the table.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// Merge returns a copy of v with extra entries layered on top.
func (v *Vocabulary) Merge(extra map[string]string) *Vocabulary {
	merged := &Vocabulary{
		entries:     make(map[string]string, len(v.entries)+len(extra)),
		fallback:    v.fallback,
		placeholder: v.placeholder,
	}
	for k, c := range v.entries {
		merged.entries[k] = c
	}
	for synonym, canonical := range extra {
		merged.entries[matchKey(synonym)] = canonical
	}
	return merged
}

type correction struct {
	typo        string
	pattern     *regexp.Regexp
	replacement string
}

// Corrections fixes known misspellings inside a value, matching each typo
// case-insensitively wherever it occurs.
type Corrections struct {
	rules []correction
}

// NewCorrections builds a correction table from typo -> replacement pairs.
func NewCorrections(fixes map[string]string) *Corrections {
	c := &Corrections{}
	for typo, replacement := range fixes {
		typo = strings.TrimSpace(typo)
		if typo == "" {
			continue
		}
		c.rules = append(c.rules, correction{
			typo:        strings.ToLower(typo),
			pattern:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(typo)),
			replacement: replacement,
		})
	}
	// Longer typos first so a typo containing another is fixed whole.
	sort.Slice(c.rules, func(i, j int) bool {
		if len(c.rules[i].typo) != len(c.rules[j].typo) {
			return len(c.rules[i].typo) > len(c.rules[j].typo)
		}
		return c.rules[i].typo < c.rules[j].typo
	})
	return c
}

// Apply returns raw, trimmed and with every known typo replaced. Blank
// input yields Unknown.
func (c *Corrections) Apply(raw string) string {
	s := collapse(raw)
	if s == "" {
		return Unknown
	}
	for _, r := range c.rules {
		s = r.pattern.ReplaceAllLiteralString(s, r.replacement)
	}
	return s
}

// Merge returns a copy of c with extra corrections added.
func (c *Corrections) Merge(extra map[string]string) *Corrections {
	fixes := make(map[string]string, len(c.rules)+len(extra))
	for _, r := range c.rules {
		fixes[r.typo] = r.replacement
	}
	for typo, replacement := range extra {
		fixes[strings.ToLower(strings.TrimSpace(typo))] = replacement
	}
	return NewCorrections(fixes)
}

// FreeText title-cases a free-text attribute such as a city or country.
// Blank input yields Unknown.
func FreeText(raw string) string {
	if collapse(raw) == "" {
		return Unknown
	}
	return Title(raw)
}

// Title returns raw trimmed, with inner whitespace collapsed and every word
// title-cased.
func Title(raw string) string {
	// A Caser keeps state, so each call gets its own.
	return cases.Title(language.English).String(collapse(raw))
}

// Capitalize upper-cases the first letter of the trimmed value and
// lower-cases everything after it.
func Capitalize(raw string) string {
	s := collapse(raw)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func matchKey(s string) string {
	return strings.ToLower(collapse(s))
}
