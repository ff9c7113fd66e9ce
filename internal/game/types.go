// internal/game/types.go
//
// Result types returned by the puzzle selector.
// Defines:
//   - Drawn: a freshly served puzzle plus collection counters.
//   - Completed: every puzzle of the language has been served.
//   - Result: holds exactly one of the two.

package game

import "github.com/robalobadob/emojiquest/internal/puzzles"

// CompleteMessage is shown when a language runs out of puzzles.
const CompleteMessage = "🎉 Congratulations! You've completed all puzzles in this language!"

// Drawn describes one served puzzle.
type Drawn struct {
	Lang             puzzles.Lang
	Puzzle           puzzles.Puzzle
	PuzzleNumber     int // 1-based ordinal in the full collection
	TotalPuzzles     int
	RemainingPuzzles int // unserved puzzles left after this one
}

// Completed reports an exhausted language.
type Completed struct {
	Lang             puzzles.Lang
	TotalPuzzles     int
	CompletedPuzzles int
	Message          string
}

// Result is the outcome of a draw. Exactly one field is non-nil.
type Result struct {
	Drawn     *Drawn
	Completed *Completed
}

// IsComplete reports whether the draw found no puzzle left.
func (r Result) IsComplete() bool { return r.Completed != nil }
