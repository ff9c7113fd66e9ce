// internal/puzzles/types.go
//
// Core type definitions for puzzle data.
// Defines:
//   - Lang: a supported language tag (en, sn, haw).
//   - Puzzle: one emoji clue, its answer and hint texts.
//   - Collection: the ordered puzzles of one language.

package puzzles

import (
	"strings"
)

// Lang is a language tag identifying one puzzle collection.
type Lang string

const (
	LangEnglish  Lang = "en"
	LangShona    Lang = "sn"
	LangHawaiian Lang = "haw"

	// DefaultLang is used when a request does not name a language.
	DefaultLang = LangEnglish
)

// Supported is the fixed allow-list of language tags, in display order.
var Supported = []Lang{LangEnglish, LangShona, LangHawaiian}

// ParseLang validates a raw language tag against the allow-list.
// An empty tag resolves to DefaultLang.
func ParseLang(raw string) (Lang, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLang, nil
	}
	for _, l := range Supported {
		if string(l) == raw {
			return l, nil
		}
	}
	return "", ErrUnsupportedLanguage
}

// Puzzle is immutable once loaded.
type Puzzle struct {
	ID     int               `json:"-"`      // 0-based ordinal within its collection, assigned at load
	Emojis string            `json:"emojis"` // the clue
	Answer string            `json:"answer"` // space separated words
	Hints  map[string]string `json:"hints"`  // meaning hints keyed by explanation language
}

// Words splits the answer into its words.
func (p Puzzle) Words() []string {
	return strings.Fields(p.Answer)
}

// Hint returns the meaning hint written in base, if any.
func (p Puzzle) Hint(base string) (string, bool) {
	h, ok := p.Hints[base]
	if !ok || strings.TrimSpace(h) == "" {
		return "", false
	}
	return h, true
}

// Number is the 1-based position shown to players.
func (p Puzzle) Number() int { return p.ID + 1 }

// Collection is the ordered puzzle list for one language.
type Collection struct {
	Lang    Lang
	Puzzles []Puzzle
}

// Len reports the number of puzzles.
func (c *Collection) Len() int { return len(c.Puzzles) }

// At returns the puzzle with ordinal id.
func (c *Collection) At(id int) (Puzzle, bool) {
	if id < 0 || id >= len(c.Puzzles) {
		return Puzzle{}, false
	}
	return c.Puzzles[id], true
}
