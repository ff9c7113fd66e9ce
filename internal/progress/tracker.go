// internal/progress/tracker.go
//
// Progress tracking: which puzzle ordinals of each language have been served
// since the last reset. Shared by every session in the process.
//
// Implementations:
//   - memory: in-process map of sets (default).
//   - redis:  one Redis set per language, for several server processes.

package progress

import (
	"context"

	"github.com/robalobadob/emojiquest/internal/puzzles"
)

// Tracker records consumed puzzle ordinals per language.
type Tracker interface {
	// Consumed lists the consumed ordinals for lang, in no particular order.
	Consumed(ctx context.Context, lang puzzles.Lang) ([]int, error)

	// Mark records index as consumed. It reports false when index was
	// already consumed, in which case nothing changes.
	Mark(ctx context.Context, lang puzzles.Lang, index int) (bool, error)

	// Reset clears lang only.
	Reset(ctx context.Context, lang puzzles.Lang) error
}
