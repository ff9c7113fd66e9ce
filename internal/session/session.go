// internal/session/session.go
//
// Play session: a linear history of visited puzzles with a cursor, plus the
// session score and level.
//
// Responsibilities:
//   - Append freshly drawn puzzles and move the cursor to them.
//   - Step back through visited puzzles, restoring their hint/reveal state.
//   - Move forward by drawing a new puzzle (never by redoing history).
//   - Mark entries skipped when left unsolved, and track language completion.
//   - Reset history, score and the language's shared progress together.
//
// A Session is not safe for concurrent use; callers serialize access
// (the HTTP layer holds one lock per session).
package session

import (
	"context"
	"errors"

	"github.com/samber/lo"

	"github.com/robalobadob/emojiquest/internal/game"
	"github.com/robalobadob/emojiquest/internal/puzzles"
)

var (
	ErrSessionComplete = errors.New("all puzzles completed for this language")
	ErrNoPuzzle        = errors.New("no puzzle loaded")
	ErrNoHint          = errors.New("no hint for that language")
)

// Drawer serves puzzles (game.Engine in production).
type Drawer interface {
	Draw(ctx context.Context, lang puzzles.Lang) (game.Result, error)
}

// Resetter clears a language's shared progress.
type Resetter interface {
	Reset(ctx context.Context, lang puzzles.Lang) error
}

// Rules are the scoring and hint constants.
type Rules struct {
	MaxWordHints  int
	CorrectReward int
	HintCost      int
}

// DefaultRules: 3 word hints per puzzle, +10 per solve, 1 point per hint.
func DefaultRules() Rules {
	return Rules{MaxWordHints: 3, CorrectReward: 10, HintCost: 1}
}

// Session holds one player's progress through the puzzles.
type Session struct {
	ID    string
	Lang  puzzles.Lang
	Score int
	Level int

	// Completed is set once a draw found the language exhausted; cleared by
	// Start and ResetAll.
	Completed *game.Completed

	entries []*Entry
	cursor  int
	rules   Rules
	src     game.Source
}

// New creates an empty session. A nil src falls back to game.CryptoSource.
func New(id string, lang puzzles.Lang, rules Rules, src game.Source) *Session {
	if src == nil {
		src = game.CryptoSource()
	}
	if lang == "" {
		lang = puzzles.DefaultLang
	}
	return &Session{ID: id, Lang: lang, Level: 1, cursor: -1, rules: rules, src: src}
}

// Rules returns the session's rules.
func (s *Session) Rules() Rules { return s.rules }

// Len is the number of history entries.
func (s *Session) Len() int { return len(s.entries) }

// Cursor is the index of the active entry, or -1 before the first load.
func (s *Session) Cursor() int { return s.cursor }

// Current returns the active entry, or nil before the first load.
func (s *Session) Current() *Entry {
	if s.cursor < 0 || s.cursor >= len(s.entries) {
		return nil
	}
	return s.entries[s.cursor]
}

// EntryAt returns a history entry by position.
func (s *Session) EntryAt(i int) (*Entry, bool) {
	if i < 0 || i >= len(s.entries) {
		return nil, false
	}
	return s.entries[i], true
}

// IsComplete reports whether forward navigation is blocked.
func (s *Session) IsComplete() bool { return s.Completed != nil }

// CanGoBack reports whether GoBack would move.
func (s *Session) CanGoBack() bool { return s.cursor > 0 }

// Append pushes a fresh entry for d and makes it active.
func (s *Session) Append(d game.Drawn) *Entry {
	e := newEntry(d)
	s.entries = append(s.entries, e)
	s.cursor = len(s.entries) - 1
	return e
}

// GoBack moves to the previous entry. It reports false at the first entry.
func (s *Session) GoBack() bool {
	if s.cursor <= 0 {
		return false
	}
	s.freeze()
	s.cursor--
	return true
}

// GoForward leaves the active entry and draws a new puzzle.
// On a draw error nothing changes.
func (s *Session) GoForward(ctx context.Context, d Drawer) error {
	if s.IsComplete() {
		return ErrSessionComplete
	}
	return s.advance(ctx, d)
}

// Start selects lang and draws a puzzle for it, keeping earlier history.
func (s *Session) Start(ctx context.Context, lang puzzles.Lang, d Drawer) error {
	prevLang, prevDone := s.Lang, s.Completed
	s.Lang, s.Completed = lang, nil
	if err := s.advance(ctx, d); err != nil {
		s.Lang, s.Completed = prevLang, prevDone
		return err
	}
	return nil
}

// ResetAll clears the shared progress of the session language and of every
// language in the history, then the history, score and level. On a reset
// error the history is kept.
func (s *Session) ResetAll(ctx context.Context, r Resetter) error {
	for _, lang := range s.languages() {
		if err := r.Reset(ctx, lang); err != nil {
			return err
		}
	}
	s.entries = nil
	s.cursor = -1
	s.Completed = nil
	s.Score = 0
	s.Level = 1
	return nil
}

func (s *Session) advance(ctx context.Context, d Drawer) error {
	res, err := d.Draw(ctx, s.Lang)
	if err != nil {
		return err
	}
	if res.IsComplete() {
		s.Completed = res.Completed
		return nil
	}
	s.freeze()
	s.Append(*res.Drawn)
	return nil
}

// languages lists the session language followed by every other language
// seen in the history.
func (s *Session) languages() []puzzles.Lang {
	seen := lo.Map(s.entries, func(e *Entry, _ int) puzzles.Lang { return e.Lang })
	return lo.Uniq(append([]puzzles.Lang{s.Lang}, seen...))
}

// freeze records whether the active entry is being left unsolved.
func (s *Session) freeze() {
	if cur := s.Current(); cur != nil {
		cur.Skipped = !cur.AnswerRevealed
	}
}

func (s *Session) charge() {
	s.Score -= s.rules.HintCost
	if s.Score < 0 {
		s.Score = 0
	}
}
