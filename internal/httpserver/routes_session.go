// internal/httpserver/routes_session.go
//
// Session endpoints: a browser-facing play session with history, hints,
// scoring and reveal, keyed by an anonymous cookie.
//
//	GET  /api/session               current view
//	POST /api/session/start?lang=   switch language and draw
//	POST /api/session/next          draw a new puzzle (or the first one)
//	POST /api/session/back          step back in history
//	POST /api/session/hint/word     reveal one hidden word
//	POST /api/session/hint/meaning  meaning hint in ?base= (default en)
//	POST /api/session/reveal        show the whole answer
//	POST /api/session/guess         {"guess": "..."}
//	POST /api/session/reset         clear history, score and progress
//
// Every endpoint replies with the session view; action results (hint text,
// word index, guess outcome) ride along in the same body.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/robalobadob/emojiquest/internal/puzzles"
	"github.com/robalobadob/emojiquest/internal/session"
	"github.com/robalobadob/emojiquest/internal/store"
)

const anonCookie = "emojiquest_anon"

// entryView is the client-safe rendering of one history entry. The answer
// is only included once it has been revealed or solved.
type entryView struct {
	Lang             puzzles.Lang `json:"lang"`
	Emojis           string       `json:"emojis"`
	Mask             []string     `json:"mask"`
	Answer           string       `json:"answer,omitempty"`
	PuzzleNumber     int          `json:"puzzleNumber"`
	TotalPuzzles     int          `json:"totalPuzzles"`
	RemainingPuzzles int          `json:"remainingPuzzles"`
	WordHintsUsed    int          `json:"wordHintsUsed"`
	WordHintsLeft    int          `json:"wordHintsLeft"`
	RevealedWords    []int        `json:"revealedWords"`
	HintLanguages    []string     `json:"hintLanguages"`
	AnswerRevealed   bool         `json:"answerRevealed"`
	Solved           bool         `json:"solved"`
	Skipped          bool         `json:"skipped"`
}

// sessionView is the body of every /api/session response.
type sessionView struct {
	Lang          puzzles.Lang `json:"lang"`
	Score         int          `json:"score"`
	Level         int          `json:"level"`
	HistoryLength int          `json:"historyLength"`
	Cursor        int          `json:"cursor"`
	CanGoBack     bool         `json:"canGoBack"`
	Entry         *entryView   `json:"entry"`

	GameComplete     bool   `json:"gameComplete"`
	Message          string `json:"message,omitempty"`
	CompletedPuzzles int    `json:"completedPuzzles,omitempty"`

	// action results
	Hint      string `json:"hint,omitempty"`
	WordIndex *int   `json:"wordIndex,omitempty"`
	Correct   *bool  `json:"correct,omitempty"`
}

func renderSession(s *session.Session) sessionView {
	v := sessionView{
		Lang:          s.Lang,
		Score:         s.Score,
		Level:         s.Level,
		HistoryLength: s.Len(),
		Cursor:        s.Cursor(),
		CanGoBack:     s.CanGoBack(),
	}
	if s.Completed != nil {
		v.GameComplete = true
		v.Message = s.Completed.Message
		v.CompletedPuzzles = s.Completed.CompletedPuzzles
	}
	if e := s.Current(); e != nil {
		ev := &entryView{
			Lang:             e.Lang,
			Emojis:           e.Puzzle.Emojis,
			Mask:             e.Mask(),
			PuzzleNumber:     e.PuzzleNumber,
			TotalPuzzles:     e.TotalPuzzles,
			RemainingPuzzles: e.RemainingPuzzles,
			WordHintsUsed:    e.WordHintsUsed,
			WordHintsLeft:    e.WordHintsLeft(s.Rules()),
			RevealedWords:    e.RevealedWords(),
			HintLanguages:    lo.Keys(e.Puzzle.Hints),
			AnswerRevealed:   e.AnswerRevealed,
			Solved:           e.Solved,
			Skipped:          e.Skipped,
		}
		slices.Sort(ev.HintLanguages)
		if e.AnswerRevealed {
			ev.Answer = e.Puzzle.Answer
		}
		v.Entry = ev
	}
	return v
}

func (s *Server) mountSession(r chi.Router) {
	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleSessionView)
		r.Post("/start", s.handleSessionStart)
		r.Post("/next", s.handleSessionNext)
		r.Post("/back", s.handleSessionBack)
		r.Post("/hint/word", s.handleWordHint)
		r.Post("/hint/meaning", s.handleMeaningHint)
		r.Post("/reveal", s.handleReveal)
		r.Post("/guess", s.handleGuess)
		r.Post("/reset", s.handleSessionReset)
	})
}

// withSession runs fn on the caller's session under its lock and replies
// with the resulting view, or with the mapped error.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, sess *session.Session, v *sessionView) error) {
	id := s.ensureAnonID(w, r)
	var out sessionView
	err := s.sessions.Do(r.Context(), id, func(sess *session.Session) error {
		var extra sessionView
		if err := fn(r.Context(), sess, &extra); err != nil {
			return err
		}
		out = renderSession(sess)
		out.Hint, out.WordIndex, out.Correct = extra.Hint, extra.WordIndex, extra.Correct
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSessionView renders the caller's session. It never creates one, so
// cookieless reads do not allocate state.
func (s *Server) handleSessionView(w http.ResponseWriter, r *http.Request) {
	var out sessionView
	err := store.ErrNotFound
	if c, cerr := r.Cookie(anonCookie); cerr == nil && c.Value != "" {
		err = s.sessions.View(r.Context(), c.Value, func(sess *session.Session) error {
			out = renderSession(sess)
			return nil
		})
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusOK, renderSession(session.New("", puzzles.DefaultLang, session.Rules{}, nil)))
	case err != nil:
		writeError(w, err)
	default:
		writeJSON(w, http.StatusOK, out)
	}
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	lang, err := puzzles.ParseLang(r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.withSession(w, r, func(ctx context.Context, sess *session.Session, _ *sessionView) error {
		return sess.Start(ctx, lang, s.engine)
	})
}

// handleSessionNext draws the first puzzle of a fresh session, otherwise
// moves forward.
func (s *Server) handleSessionNext(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctx context.Context, sess *session.Session, _ *sessionView) error {
		if sess.Current() == nil && !sess.IsComplete() {
			return sess.Start(ctx, sess.Lang, s.engine)
		}
		return sess.GoForward(ctx, s.engine)
	})
}

func (s *Server) handleSessionBack(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(_ context.Context, sess *session.Session, _ *sessionView) error {
		sess.GoBack()
		return nil
	})
}

func (s *Server) handleWordHint(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(_ context.Context, sess *session.Session, v *sessionView) error {
		if sess.Current() == nil {
			return session.ErrNoPuzzle
		}
		if idx, ok := sess.RequestWordHint(); ok {
			v.WordIndex = &idx
		}
		return nil
	})
}

func (s *Server) handleMeaningHint(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	if base == "" {
		base = string(puzzles.LangEnglish)
	}
	s.withSession(w, r, func(_ context.Context, sess *session.Session, v *sessionView) error {
		h, err := sess.RequestMeaningHint(base)
		if err != nil {
			return err
		}
		v.Hint = h
		return nil
	})
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(_ context.Context, sess *session.Session, _ *sessionView) error {
		if sess.Current() == nil {
			return session.ErrNoPuzzle
		}
		sess.RevealAnswer()
		return nil
	})
}

type guessReq struct {
	Guess string `json:"guess"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid json", errBadRequest))
		return
	}
	s.withSession(w, r, func(_ context.Context, sess *session.Session, v *sessionView) error {
		ok, err := sess.SubmitGuess(req.Guess)
		if err != nil {
			return err
		}
		v.Correct = &ok
		return nil
	})
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(ctx context.Context, sess *session.Session, _ *sessionView) error {
		return sess.ResetAll(ctx, s.engine)
	})
}

// ensureAnonID returns the anonymous session ID from the cookie, setting a
// new one if missing.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		Expires:  time.Now().Add(365 * 24 * time.Hour),
	})
	return id
}
