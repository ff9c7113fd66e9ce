// internal/puzzles/store.go
//
// Loads puzzle collections per language and caches them for the process lifetime.
//
// Responsibilities:
//   - Validate the language tag against the allow-list.
//   - Read "<lang>.json" from the configured fs.FS (embedded assets or PUZZLES_DIR).
//   - Assign each puzzle a stable ordinal so duplicates stay distinct.
//   - Classify failures: unsupported language, data unavailable, data corrupt.
//
// Notes:
//   • Only successful loads are cached; a failing language is retried on the
//     next request and never blocks other languages.
//   • Puzzle data is static, so cached collections are shared read-only.

package puzzles

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrDataUnavailable     = errors.New("puzzle data unavailable")
	ErrDataCorrupt         = errors.New("puzzle data corrupt")
)

// Store serves collections from a filesystem of "<lang>.json" files.
type Store struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[Lang]*Collection
}

// NewStore constructs a Store reading from fsys.
func NewStore(fsys fs.FS) *Store {
	return &Store{fsys: fsys, cache: make(map[Lang]*Collection)}
}

// Load returns the collection for lang, reading it on first use.
func (s *Store) Load(lang Lang) (*Collection, error) {
	if _, err := ParseLang(string(lang)); err != nil || lang == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	s.mu.RLock()
	c, ok := s.cache[lang]
	s.mu.RUnlock()
	if ok {
		return c, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.cache[lang]; ok {
		return c, nil
	}
	c, err := s.read(lang)
	if err != nil {
		log.Error().Err(err).Str("lang", string(lang)).Msg("load puzzles")
		return nil, err
	}
	s.cache[lang] = c
	log.Info().Str("lang", string(lang)).Int("puzzles", c.Len()).Msg("loaded puzzles")
	return c, nil
}

// read parses one collection without touching the cache.
func (s *Store) read(lang Lang) (*Collection, error) {
	name := string(lang) + ".json"
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrDataUnavailable, name, err)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrDataCorrupt, name, err)
	}
	// valid JSON that is not a list holds no collection
	if raw[0] != '[' {
		return nil, fmt.Errorf("%w: %s is not a puzzle list", ErrDataUnavailable, name)
	}
	var list []Puzzle
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrDataCorrupt, name, err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: %s has no puzzles", ErrDataUnavailable, name)
	}

	for i := range list {
		p := &list[i]
		p.ID = i
		p.Answer = strings.TrimSpace(p.Answer)
		if p.Answer == "" || strings.TrimSpace(p.Emojis) == "" {
			return nil, fmt.Errorf("%w: %s entry %d is missing emojis or answer", ErrDataCorrupt, name, i)
		}
		if p.Hints == nil {
			p.Hints = map[string]string{}
		}
	}
	return &Collection{Lang: lang, Puzzles: list}, nil
}

// Stats returns the loaded puzzle count per language; languages that fail to
// load are reported as -1.
func (s *Store) Stats() map[Lang]int {
	out := make(map[Lang]int, len(Supported))
	for _, l := range Supported {
		c, err := s.Load(l)
		if err != nil {
			out[l] = -1
			continue
		}
		out[l] = c.Len()
	}
	return out
}
