// internal/httpserver/server.go
//
// HTTP server wiring for the EmojiQuest backend.
// Responsibilities:
//   - Router + middleware (request IDs, real IP, access log, panic recovery,
//     timeouts, CORS, JSON content type).
//   - Public endpoints: "/", "/health".
//   - Puzzle endpoints: GET /api/puzzle, POST /api/reset, GET /api/stats.
//   - Puzzle of the day: GET /api/daily (routes_daily.go).
//   - Session endpoints: /api/session/* (routes_session.go).
//   - Optional static files from PUBLIC_DIR.
//
// Notes:
//   - Domain errors are mapped to status codes in one place (writeError), so
//     every endpoint reports failures the same way.
//   - Game completion is a normal 200 response, never an error.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/emojiquest/internal/game"
	"github.com/robalobadob/emojiquest/internal/puzzles"
	"github.com/robalobadob/emojiquest/internal/session"
	"github.com/robalobadob/emojiquest/internal/store"
)

// Options configures optional server behaviour.
type Options struct {
	ClientOrigin string           // allowed CORS origin
	PublicDir    string           // static files root; empty disables
	DailySalt    string           // salt for the puzzle of the day
	Now          func() time.Time // clock for the puzzle of the day
}

// Server bundles router, puzzle engine, and session store.
type Server struct {
	r        *chi.Mux
	engine   *game.Engine
	puzzles  game.Loader
	sessions store.Store
	opts     Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(engine *game.Engine, loader game.Loader, sessions store.Store, opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	s := &Server{r: chi.NewRouter(), engine: engine, puzzles: loader, sessions: sessions, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(accessLog)                       // one zerolog line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(cors.New(cors.Options{           // credentials-friendly CORS
		AllowedOrigins:   []string{opts.ClientOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	s.r.Group(func(r chi.Router) {
		r.Use(jsonContentType)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
		})
		if opts.PublicDir == "" {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{
					"service": "emojiquest",
					"endpoints": []string{
						"/health", "GET /api/puzzle", "POST /api/reset", "GET /api/daily",
						"GET /api/stats", "/api/session/*",
					},
				})
			})
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/puzzle", s.handlePuzzle)
			r.Post("/reset", s.handleReset)
			r.Get("/stats", s.handleStats)
			s.mountDaily(r)
			s.mountSession(r)
		})

		// JSON 404 for easier debugging
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
		})
	})

	if opts.PublicDir != "" {
		s.r.Handle("/*", http.FileServer(http.Dir(opts.PublicDir)))
	}

	return s
}

// Handler exposes the router (used by the CLI and tests).
func (s *Server) Handler() http.Handler { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on API responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// accessLog writes one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("requestId", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

// ------------------------------ PUZZLES ------------------------------------

// puzzleRes is the payload of a served puzzle.
type puzzleRes struct {
	Emojis           string            `json:"emojis"`
	Answer           string            `json:"answer"`
	Hints            map[string]string `json:"hints"`
	PuzzleNumber     int               `json:"puzzleNumber"`
	TotalPuzzles     int               `json:"totalPuzzles"`
	RemainingPuzzles int               `json:"remainingPuzzles"`
}

// completeRes is returned once a language has no unserved puzzle.
type completeRes struct {
	GameComplete     bool   `json:"gameComplete"`
	Message          string `json:"message"`
	TotalPuzzles     int    `json:"totalPuzzles"`
	CompletedPuzzles int    `json:"completedPuzzles"`
}

// handlePuzzle draws one unserved puzzle for ?lang= (default en).
func (s *Server) handlePuzzle(w http.ResponseWriter, r *http.Request) {
	lang, err := puzzles.ParseLang(r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.engine.Draw(r.Context(), lang)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.IsComplete() {
		writeJSON(w, http.StatusOK, completeRes{
			GameComplete:     true,
			Message:          res.Completed.Message,
			TotalPuzzles:     res.Completed.TotalPuzzles,
			CompletedPuzzles: res.Completed.CompletedPuzzles,
		})
		return
	}
	d := res.Drawn
	writeJSON(w, http.StatusOK, puzzleRes{
		Emojis:           d.Puzzle.Emojis,
		Answer:           d.Puzzle.Answer,
		Hints:            d.Puzzle.Hints,
		PuzzleNumber:     d.PuzzleNumber,
		TotalPuzzles:     d.TotalPuzzles,
		RemainingPuzzles: d.RemainingPuzzles,
	})
}

// handleReset clears served puzzles for ?lang=.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	lang, err := puzzles.ParseLang(r.URL.Query().Get("lang"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.Reset(r.Context(), lang); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Game progress reset successfully"})
}

// langStats is one row of GET /api/stats.
type langStats struct {
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
	Error     string `json:"error,omitempty"`
}

// handleStats reports collection size and remaining puzzles per language.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	out := make(map[puzzles.Lang]langStats, len(puzzles.Supported))
	for _, l := range puzzles.Supported {
		c, err := s.puzzles.Load(l)
		if err != nil {
			out[l] = langStats{Error: err.Error()}
			continue
		}
		n, err := s.engine.Remaining(r.Context(), l)
		if err != nil {
			out[l] = langStats{Total: c.Len(), Error: err.Error()}
			continue
		}
		out[l] = langStats{Total: c.Len(), Remaining: n}
	}
	writeJSON(w, http.StatusOK, out)
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// errorRes is the body of every failed request.
type errorRes struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status, body := http.StatusInternalServerError, errorRes{Error: "Internal error", Code: "internal"}
	switch {
	case errors.Is(err, puzzles.ErrUnsupportedLanguage):
		status, body = http.StatusBadRequest, errorRes{Error: "Unsupported language", Code: "unsupported_language"}
	case errors.Is(err, puzzles.ErrDataUnavailable):
		status, body = http.StatusNotFound, errorRes{Error: "Language not found", Code: "data_unavailable"}
	case errors.Is(err, puzzles.ErrDataCorrupt):
		status, body = http.StatusInternalServerError, errorRes{Error: "Corrupted puzzle data", Code: "data_corrupt"}
	case errors.Is(err, session.ErrSessionComplete):
		status, body = http.StatusConflict, errorRes{Error: err.Error(), Code: "session_complete"}
	case errors.Is(err, session.ErrNoPuzzle):
		status, body = http.StatusConflict, errorRes{Error: err.Error(), Code: "no_puzzle"}
	case errors.Is(err, session.ErrNoHint):
		status, body = http.StatusNotFound, errorRes{Error: err.Error(), Code: "no_hint"}
	case errors.Is(err, errBadRequest):
		status, body = http.StatusBadRequest, errorRes{Error: err.Error(), Code: "bad_request"}
	default:
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, body)
}

var errBadRequest = errors.New("bad request")
