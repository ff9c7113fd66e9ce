// internal/game/engine.go
//
// Puzzle selector shared by every session.
// Responsibilities:
//   - Report remaining puzzles and completion per language.
//   - Draw one unserved puzzle uniformly at random and record it as served.
//   - Reset a language's progress.
//
// Notes:
//   - Read-filter-pick-mark runs under one mutex per language, so concurrent
//     draws in this process never pick the same puzzle.
//   - Tracker.Mark acts as compare-and-set; when a shared tracker reports the
//     pick was already taken by another process, the engine picks again.
//   - Puzzles are identified by their load-time ordinal, never by content.
package game

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/emojiquest/internal/progress"
	"github.com/robalobadob/emojiquest/internal/puzzles"
)

// Loader provides puzzle collections (puzzles.Store in production).
type Loader interface {
	Load(lang puzzles.Lang) (*puzzles.Collection, error)
}

// Engine draws puzzles and tracks progress.
type Engine struct {
	loader  Loader
	tracker progress.Tracker
	src     Source

	locks map[puzzles.Lang]*sync.Mutex
}

// New constructs an Engine. A nil src falls back to CryptoSource.
func New(loader Loader, tracker progress.Tracker, src Source) *Engine {
	if src == nil {
		src = CryptoSource()
	}
	locks := make(map[puzzles.Lang]*sync.Mutex, len(puzzles.Supported))
	for _, l := range puzzles.Supported {
		locks[l] = &sync.Mutex{}
	}
	return &Engine{loader: loader, tracker: tracker, src: src, locks: locks}
}

// Remaining returns the number of unserved puzzles for lang.
func (e *Engine) Remaining(ctx context.Context, lang puzzles.Lang) (int, error) {
	c, err := e.loader.Load(lang)
	if err != nil {
		return 0, err
	}
	avail, err := e.available(ctx, lang, c)
	if err != nil {
		return 0, err
	}
	return len(avail), nil
}

// IsComplete reports whether every puzzle of lang has been served.
func (e *Engine) IsComplete(ctx context.Context, lang puzzles.Lang) (bool, error) {
	n, err := e.Remaining(ctx, lang)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Draw serves one unserved puzzle, or a Completed result once none remain.
func (e *Engine) Draw(ctx context.Context, lang puzzles.Lang) (Result, error) {
	c, err := e.loader.Load(lang)
	if err != nil {
		return Result{}, err
	}

	mu, err := e.lockFor(lang)
	if err != nil {
		return Result{}, err
	}
	mu.Lock()
	defer mu.Unlock()

	avail, err := e.available(ctx, lang, c)
	if err != nil {
		return Result{}, err
	}

	for len(avail) > 0 {
		i := e.src.Intn(len(avail))
		id := avail[i]
		added, err := e.tracker.Mark(ctx, lang, id)
		if err != nil {
			return Result{}, fmt.Errorf("mark puzzle %d: %w", id, err)
		}
		if !added {
			// Taken by another process sharing the tracker.
			avail = append(avail[:i], avail[i+1:]...)
			continue
		}

		p, _ := c.At(id)
		d := &Drawn{
			Lang:             lang,
			Puzzle:           p,
			PuzzleNumber:     p.Number(),
			TotalPuzzles:     c.Len(),
			RemainingPuzzles: len(avail) - 1,
		}
		log.Info().
			Str("lang", string(lang)).
			Int("puzzle", d.PuzzleNumber).
			Int("total", d.TotalPuzzles).
			Int("remaining", d.RemainingPuzzles).
			Msg("served puzzle")
		return Result{Drawn: d}, nil
	}

	return Result{Completed: &Completed{
		Lang:             lang,
		TotalPuzzles:     c.Len(),
		CompletedPuzzles: c.Len(),
		Message:          CompleteMessage,
	}}, nil
}

// Reset clears served puzzles for lang only.
func (e *Engine) Reset(ctx context.Context, lang puzzles.Lang) error {
	mu, err := e.lockFor(lang)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if err := e.tracker.Reset(ctx, lang); err != nil {
		return err
	}
	log.Info().Str("lang", string(lang)).Msg("reset progress")
	return nil
}

func (e *Engine) lockFor(lang puzzles.Lang) (*sync.Mutex, error) {
	mu, ok := e.locks[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %q", puzzles.ErrUnsupportedLanguage, lang)
	}
	return mu, nil
}

// available lists the unserved ordinals of c. Consumed entries outside the
// collection are ignored.
func (e *Engine) available(ctx context.Context, lang puzzles.Lang, c *puzzles.Collection) ([]int, error) {
	consumed, err := e.tracker.Consumed(ctx, lang)
	if err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	used := lo.Associate(consumed, func(i int) (int, struct{}) { return i, struct{}{} })
	return lo.Filter(lo.Range(c.Len()), func(id int, _ int) bool {
		_, ok := used[id]
		return !ok
	}), nil
}
