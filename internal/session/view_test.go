package session

import (
	"errors"
	"testing"

	"github.com/robalobadob/emojiquest/internal/game"
	"github.com/robalobadob/emojiquest/internal/puzzles"
)

func withPuzzle(answer string, hints map[string]string) *Session {
	s := New("id", puzzles.LangEnglish, DefaultRules(), game.SeededSource(3))
	s.Append(game.Drawn{
		Lang:         puzzles.LangEnglish,
		Puzzle:       puzzles.Puzzle{Emojis: "❓", Answer: answer, Hints: hints},
		PuzzleNumber: 1,
		TotalPuzzles: 1,
	})
	return s
}

func TestRequestWordHint_LimitAndUniqueness(t *testing.T) {
	s := withPuzzle("one two three four five", nil)
	s.Score = 100

	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		idx, ok := s.RequestWordHint()
		if !ok {
			continue
		}
		if seen[idx] {
			t.Fatalf("word %d revealed twice", idx)
		}
		seen[idx] = true
	}
	e := s.Current()
	if len(seen) != 3 || e.WordHintsUsed != 3 || len(e.Revealed) != 3 {
		t.Fatalf("expected exactly 3 word hints, got %d (used %d)", len(seen), e.WordHintsUsed)
	}
	if s.Score != 97 {
		t.Fatalf("expected 3 points charged, score %d", s.Score)
	}
	if e.WordHintsLeft(s.Rules()) != 0 {
		t.Fatalf("expected no hints left")
	}
}

func TestRequestWordHint_StopsWhenAllWordsShown(t *testing.T) {
	s := withPuzzle("honu", nil)
	if _, ok := s.RequestWordHint(); !ok {
		t.Fatalf("expected first hint")
	}
	if _, ok := s.RequestWordHint(); ok {
		t.Fatalf("expected no hint once every word is shown")
	}
	if s.Current().WordHintsUsed != 1 {
		t.Fatalf("expected 1 hint used, got %d", s.Current().WordHintsUsed)
	}
}

func TestRequestWordHint_NoopAfterReveal(t *testing.T) {
	s := withPuzzle("apple pie", nil)
	s.Score = 5
	s.RevealAnswer()
	if _, ok := s.RequestWordHint(); ok {
		t.Fatalf("expected no word hint after reveal")
	}
	if s.Score != 5 || s.Current().WordHintsUsed != 0 {
		t.Fatalf("state changed after refused hint")
	}
}

func TestRequestWordHint_NoPuzzle(t *testing.T) {
	s := New("id", puzzles.LangEnglish, DefaultRules(), nil)
	if _, ok := s.RequestWordHint(); ok {
		t.Fatalf("expected no hint without a puzzle")
	}
}

func TestScoreNeverNegative(t *testing.T) {
	s := withPuzzle("a b c d", map[string]string{"en": "letters"})
	for i := 0; i < 5; i++ {
		s.RequestWordHint()
		if _, err := s.RequestMeaningHint("en"); err != nil {
			t.Fatalf("meaning hint: %v", err)
		}
		if s.Score < 0 {
			t.Fatalf("score went negative: %d", s.Score)
		}
	}
	if s.Score != 0 {
		t.Fatalf("expected score floored at 0, got %d", s.Score)
	}
}

func TestRequestMeaningHint(t *testing.T) {
	s := withPuzzle("mahalo", map[string]string{"en": "Thank you"})
	s.Score = 3

	h, err := s.RequestMeaningHint("en")
	if err != nil || h != "Thank you" {
		t.Fatalf("unexpected hint %q %v", h, err)
	}
	if s.Score != 2 {
		t.Fatalf("expected charge before reveal, score %d", s.Score)
	}
	if _, err := s.RequestMeaningHint("haw"); !errors.Is(err, ErrNoHint) {
		t.Fatalf("expected ErrNoHint, got %v", err)
	}
	if s.Score != 2 {
		t.Fatalf("missing hint must not charge")
	}

	s.RevealAnswer()
	for i := 0; i < 3; i++ {
		if _, err := s.RequestMeaningHint("en"); err != nil {
			t.Fatalf("meaning hint after reveal: %v", err)
		}
	}
	if s.Score != 2 {
		t.Fatalf("meaning hints are free after reveal, score %d", s.Score)
	}
}

func TestRevealAnswer_Once(t *testing.T) {
	s := withPuzzle("mele kalikimaka", nil)
	if !s.RevealAnswer() {
		t.Fatalf("expected first reveal")
	}
	if s.RevealAnswer() {
		t.Fatalf("expected second reveal to be a no-op")
	}
	e := s.Current()
	if len(e.RevealedWords()) != 2 || !e.AnswerRevealed || e.Solved {
		t.Fatalf("unexpected entry after reveal %+v", e)
	}
	if s.Score != 0 || s.Level != 1 {
		t.Fatalf("reveal must not score")
	}
}

func TestSubmitGuess_Normalization(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		guess  string
		want   bool
	}{
		{"case and spaces", "hello world", " HELLO world ", true},
		{"exact", "dog house", "dog house", true},
		{"wrong word", "dog house", "dog home", false},
		{"inner spacing differs", "dog house", "dog  house", false},
		{"unicode fold", "ʻohana", "ʻOHANA", true},
		{"composed vs decomposed", "m\u014d", "mo\u0304", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := withPuzzle(tt.answer, nil)
			got, err := s.SubmitGuess(tt.guess)
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if got != tt.want {
				t.Fatalf("SubmitGuess(%q) vs %q = %v, want %v", tt.guess, tt.answer, got, tt.want)
			}
		})
	}
}

func TestSubmitGuess_Scoring(t *testing.T) {
	s := withPuzzle("star fish", nil)
	if ok, _ := s.SubmitGuess("starfish"); ok {
		t.Fatalf("expected mismatch")
	}
	if s.Score != 0 || s.Current().AnswerRevealed {
		t.Fatalf("mismatch must not change state")
	}

	ok, _ := s.SubmitGuess("Star Fish")
	if !ok {
		t.Fatalf("expected match")
	}
	e := s.Current()
	if !e.Solved || !e.AnswerRevealed || len(e.RevealedWords()) != 2 {
		t.Fatalf("expected solved entry, got %+v", e)
	}
	if s.Score != 10 || s.Level != 2 {
		t.Fatalf("expected score 10 level 2, got %d %d", s.Score, s.Level)
	}

	if ok, _ := s.SubmitGuess("star fish"); !ok {
		t.Fatalf("expected repeated guess to match")
	}
	if s.Score != 10 || s.Level != 2 {
		t.Fatalf("repeated guess must not score again")
	}
}

func TestSubmitGuess_AfterRevealScoresNothing(t *testing.T) {
	s := withPuzzle("honu", nil)
	s.RevealAnswer()
	ok, err := s.SubmitGuess("honu")
	if err != nil || !ok {
		t.Fatalf("expected match, got %v %v", ok, err)
	}
	if s.Score != 0 || s.Current().Solved {
		t.Fatalf("revealed answer must not be rewarded")
	}
}

func TestSubmitGuess_NoPuzzle(t *testing.T) {
	s := New("id", puzzles.LangEnglish, DefaultRules(), nil)
	if _, err := s.SubmitGuess("x"); !errors.Is(err, ErrNoPuzzle) {
		t.Fatalf("expected ErrNoPuzzle, got %v", err)
	}
	if _, err := s.RequestMeaningHint("en"); !errors.Is(err, ErrNoPuzzle) {
		t.Fatalf("expected ErrNoPuzzle, got %v", err)
	}
}

func TestMask(t *testing.T) {
	s := withPuzzle("heʻe nalu", nil)
	e := s.Current()
	m := e.Mask()
	if len(m) != 2 || m[0] != "____" || m[1] != "____" {
		t.Fatalf("unexpected mask %v", m)
	}
	e.Revealed[1] = struct{}{}
	if m := e.Mask(); m[1] != "nalu" || m[0] != "____" {
		t.Fatalf("unexpected mask after reveal %v", m)
	}
}
