// internal/httpserver/routes_daily.go
//
// GET /api/daily?lang= returns the puzzle of the day for a language.
// The pick is deterministic per UTC date and salt, and does not consume
// shared progress.

package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/emojiquest/internal/daily"
	"github.com/robalobadob/emojiquest/internal/puzzles"
)

// dailyRes is returned by /api/daily.
type dailyRes struct {
	Date         string            `json:"date"`
	Emojis       string            `json:"emojis"`
	Answer       string            `json:"answer"`
	Hints        map[string]string `json:"hints"`
	PuzzleNumber int               `json:"puzzleNumber"`
	TotalPuzzles int               `json:"totalPuzzles"`
}

func (s *Server) mountDaily(r chi.Router) {
	r.Get("/daily", s.handleDaily)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	lang, err := puzzles.ParseLang(r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := s.puzzles.Load(lang)
	if err != nil {
		writeError(w, err)
		return
	}
	p := daily.Pick(s.opts.Now(), s.opts.DailySalt, c)
	writeJSON(w, http.StatusOK, dailyRes{
		Date:         p.Date,
		Emojis:       p.Puzzle.Emojis,
		Answer:       p.Puzzle.Answer,
		Hints:        p.Puzzle.Hints,
		PuzzleNumber: p.Puzzle.Number(),
		TotalPuzzles: p.Total,
	})
}
