// internal/session/view.go
//
// Per-puzzle view state and the actions that change it: word hints, meaning
// hints, revealing the answer and guessing.
//
// State per entry: fresh → (word hint)* → solved | revealed.
//   - Word hints reveal one random hidden word, at most Rules.MaxWordHints.
//   - Meaning hints are unlimited and cost a point only before the reveal.
//   - Revealing shows every word and costs nothing.
//   - A correct guess reveals everything and scores Rules.CorrectReward.

package session

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/robalobadob/emojiquest/internal/game"
	"github.com/robalobadob/emojiquest/internal/puzzles"
)

// Entry is one visited puzzle and its hint/reveal state.
type Entry struct {
	Lang             puzzles.Lang
	Puzzle           puzzles.Puzzle
	PuzzleNumber     int
	TotalPuzzles     int
	RemainingPuzzles int

	WordHintsUsed  int
	Revealed       map[int]struct{} // word indexes shown to the player
	AnswerRevealed bool
	Solved         bool
	Skipped        bool

	words []string
}

func newEntry(d game.Drawn) *Entry {
	return &Entry{
		Lang:             d.Lang,
		Puzzle:           d.Puzzle,
		PuzzleNumber:     d.PuzzleNumber,
		TotalPuzzles:     d.TotalPuzzles,
		RemainingPuzzles: d.RemainingPuzzles,
		Revealed:         map[int]struct{}{},
		words:            d.Puzzle.Words(),
	}
}

// Words are the answer words.
func (e *Entry) Words() []string { return e.words }

// RevealedWords lists revealed word indexes in ascending order.
func (e *Entry) RevealedWords() []int {
	out := lo.Keys(e.Revealed)
	sort.Ints(out)
	return out
}

// WordHintsLeft is how many word hints the entry can still use.
func (e *Entry) WordHintsLeft(r Rules) int {
	if e.AnswerRevealed {
		return 0
	}
	left := r.MaxWordHints - e.WordHintsUsed
	if hidden := len(e.hidden()); hidden < left {
		left = hidden
	}
	if left < 0 {
		return 0
	}
	return left
}

// Mask renders the answer with hidden words as underscores, one per rune.
func (e *Entry) Mask() []string {
	return lo.Map(e.words, func(w string, i int) string {
		if _, ok := e.Revealed[i]; ok {
			return w
		}
		return strings.Repeat("_", len([]rune(w)))
	})
}

func (e *Entry) hidden() []int {
	return lo.Filter(lo.Range(len(e.words)), func(i int, _ int) bool {
		_, ok := e.Revealed[i]
		return !ok
	})
}

func (e *Entry) revealAll() {
	for i := range e.words {
		e.Revealed[i] = struct{}{}
	}
	e.AnswerRevealed = true
}

// RequestWordHint reveals one random hidden word of the active entry and
// returns its index. It does nothing when no puzzle is loaded, the answer is
// revealed, the hint limit is reached or every word is already shown.
func (s *Session) RequestWordHint() (int, bool) {
	e := s.Current()
	if e == nil || e.AnswerRevealed || e.WordHintsUsed >= s.rules.MaxWordHints {
		return 0, false
	}
	hidden := e.hidden()
	if len(hidden) == 0 {
		return 0, false
	}
	idx := hidden[s.src.Intn(len(hidden))]
	e.Revealed[idx] = struct{}{}
	e.WordHintsUsed++
	s.charge()
	return idx, true
}

// RequestMeaningHint returns the active puzzle's meaning hint in base.
// It costs a point only while the answer is still hidden.
func (s *Session) RequestMeaningHint(base string) (string, error) {
	e := s.Current()
	if e == nil {
		return "", ErrNoPuzzle
	}
	h, ok := e.Puzzle.Hint(base)
	if !ok {
		return "", ErrNoHint
	}
	if !e.AnswerRevealed {
		s.charge()
	}
	return h, nil
}

// RevealAnswer shows the whole answer. It reports false if it was already shown.
func (s *Session) RevealAnswer() bool {
	e := s.Current()
	if e == nil || e.AnswerRevealed {
		return false
	}
	e.revealAll()
	return true
}

// SubmitGuess checks guess against the active answer, ignoring case and
// surrounding whitespace. A first correct guess solves the entry, adds the
// reward and raises the level; guessing an already revealed answer scores nothing.
func (s *Session) SubmitGuess(guess string) (bool, error) {
	e := s.Current()
	if e == nil {
		return false, ErrNoPuzzle
	}
	if Normalize(guess) != Normalize(e.Puzzle.Answer) {
		return false, nil
	}
	if e.AnswerRevealed {
		return true, nil
	}
	e.revealAll()
	e.Solved = true
	s.Score += s.rules.CorrectReward
	s.Level++
	return true, nil
}

// Normalize trims, NFC-normalizes and case-folds s for comparison.
func Normalize(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}
