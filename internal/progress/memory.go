// internal/progress/memory.go
//
// In-memory implementation of Tracker.
//
// Characteristics:
//   - One set of ordinals per language, created lazily.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package progress

import (
	"context"
	"sync"

	"github.com/samber/lo"

	"github.com/robalobadob/emojiquest/internal/puzzles"
)

type memory struct {
	mu   sync.RWMutex                      // guards used
	used map[puzzles.Lang]map[int]struct{} // consumed ordinals per language
}

// NewMemoryTracker constructs an empty in-memory Tracker.
func NewMemoryTracker() Tracker {
	return &memory{used: make(map[puzzles.Lang]map[int]struct{})}
}

func (m *memory) Consumed(ctx context.Context, lang puzzles.Lang) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Keys(m.used[lang]), nil
}

func (m *memory) Mark(ctx context.Context, lang puzzles.Lang, index int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.used[lang]
	if !ok {
		set = make(map[int]struct{})
		m.used[lang] = set
	}
	if _, dup := set[index]; dup {
		return false, nil
	}
	set[index] = struct{}{}
	return true, nil
}

func (m *memory) Reset(ctx context.Context, lang puzzles.Lang) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.used, lang)
	return nil
}
