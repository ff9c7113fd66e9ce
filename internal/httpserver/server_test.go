package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/robalobadob/emojiquest/internal/game"
	"github.com/robalobadob/emojiquest/internal/progress"
	"github.com/robalobadob/emojiquest/internal/puzzles"
	"github.com/robalobadob/emojiquest/internal/session"
	"github.com/robalobadob/emojiquest/internal/store"
)

var enAnswers = []string{"hot dog", "rainbow", "ice cream"}

const enJSON = `[
  {"emojis":"🌭","answer":"hot dog","hints":{"en":"A sausage in a bun"}},
  {"emojis":"🌈","answer":"rainbow","hints":{"en":"Colours after rain"}},
  {"emojis":"🍦","answer":"ice cream","hints":{"en":"Frozen dessert"}}
]`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fsys := fstest.MapFS{
		"en.json":  {Data: []byte(enJSON)},
		"haw.json": {Data: []byte(`not json`)},
	}
	loader := puzzles.NewStore(fsys)
	engine := game.New(loader, progress.NewMemoryTracker(), game.SeededSource(7))
	sessions := store.NewMemoryStore(func(id string) *session.Session {
		return session.New(id, puzzles.LangEnglish, session.DefaultRules(), game.SeededSource(7))
	})
	return New(engine, loader, sessions, Options{
		DailySalt: "test_salt",
		Now:       func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) },
	})
}

// client replays the anonymous cookie between requests.
type client struct {
	t       *testing.T
	h       http.Handler
	cookies []*http.Cookie
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		c.cookies = cs
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	c := &client{t: t, h: newTestServer(t).Handler()}
	rec := c.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestPuzzle_ServesAllThenCompletes(t *testing.T) {
	c := &client{t: t, h: newTestServer(t).Handler()}

	seen := map[string]bool{}
	for i := 0; i < len(enAnswers); i++ {
		rec := c.do(http.MethodGet, "/api/puzzle?lang=en", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("draw %d: status %d", i, rec.Code)
		}
		p := decode[puzzleRes](t, rec)
		if seen[p.Answer] {
			t.Fatalf("puzzle %q served twice", p.Answer)
		}
		seen[p.Answer] = true
		if p.TotalPuzzles != 3 || p.RemainingPuzzles != 2-i {
			t.Fatalf("draw %d: unexpected counts %+v", i, p)
		}
		if p.Answer != enAnswers[p.PuzzleNumber-1] {
			t.Fatalf("puzzle number %d does not match %q", p.PuzzleNumber, p.Answer)
		}
	}

	rec := c.do(http.MethodGet, "/api/puzzle", "")
	done := decode[completeRes](t, rec)
	if rec.Code != http.StatusOK || !done.GameComplete || done.CompletedPuzzles != 3 {
		t.Fatalf("expected completion, got %d %+v", rec.Code, done)
	}

	if rec := c.do(http.MethodPost, "/api/reset?lang=en", ""); rec.Code != http.StatusOK {
		t.Fatalf("reset: status %d", rec.Code)
	}
	p := decode[puzzleRes](t, c.do(http.MethodGet, "/api/puzzle?lang=en", ""))
	if p.RemainingPuzzles != 2 {
		t.Fatalf("expected fresh progress after reset, got %+v", p)
	}
}

func TestPuzzle_Errors(t *testing.T) {
	c := &client{t: t, h: newTestServer(t).Handler()}
	cases := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/puzzle?lang=fr", http.StatusBadRequest, "unsupported_language"},
		{"/api/puzzle?lang=sn", http.StatusNotFound, "data_unavailable"},
		{"/api/puzzle?lang=haw", http.StatusInternalServerError, "data_corrupt"},
		{"/api/daily?lang=xx", http.StatusBadRequest, "unsupported_language"},
	}
	for _, tc := range cases {
		rec := c.do(http.MethodGet, tc.path, "")
		if rec.Code != tc.status {
			t.Fatalf("%s: expected %d, got %d", tc.path, tc.status, rec.Code)
		}
		if e := decode[errorRes](t, rec); e.Code != tc.code {
			t.Fatalf("%s: expected code %q, got %+v", tc.path, tc.code, e)
		}
	}
	if rec := c.do(http.MethodPost, "/api/reset?lang=fr", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("reset unsupported: expected 400, got %d", rec.Code)
	}
}

func TestDaily_StableAndDoesNotConsume(t *testing.T) {
	c := &client{t: t, h: newTestServer(t).Handler()}
	a := decode[dailyRes](t, c.do(http.MethodGet, "/api/daily", ""))
	b := decode[dailyRes](t, c.do(http.MethodGet, "/api/daily?lang=en", ""))
	if a.Date != "2025-03-14" || a.Answer != b.Answer || a.TotalPuzzles != 3 {
		t.Fatalf("expected stable daily puzzle, got %+v and %+v", a, b)
	}
	p := decode[puzzleRes](t, c.do(http.MethodGet, "/api/puzzle?lang=en", ""))
	if p.RemainingPuzzles != 2 {
		t.Fatalf("daily puzzle should not consume progress, got %+v", p)
	}
}

func TestStats(t *testing.T) {
	c := &client{t: t, h: newTestServer(t).Handler()}
	c.do(http.MethodGet, "/api/puzzle?lang=en", "")
	st := decode[map[puzzles.Lang]langStats](t, c.do(http.MethodGet, "/api/stats", ""))
	if st[puzzles.LangEnglish].Total != 3 || st[puzzles.LangEnglish].Remaining != 2 {
		t.Fatalf("unexpected en stats %+v", st[puzzles.LangEnglish])
	}
	if st[puzzles.LangShona].Error == "" || st[puzzles.LangHawaiian].Error == "" {
		t.Fatalf("expected errors for sn and haw, got %+v", st)
	}
}

func TestSession_PlayFlow(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, h: srv.Handler()}

	v := decode[sessionView](t, c.do(http.MethodGet, "/api/session", ""))
	if v.Entry != nil || v.Level != 1 || v.Score != 0 || v.Lang != puzzles.LangEnglish {
		t.Fatalf("expected empty session view, got %+v", v)
	}
	if len(c.cookies) != 0 || srv.sessions.Len() != 0 {
		t.Fatalf("reading must not create a session (cookies=%d sessions=%d)", len(c.cookies), srv.sessions.Len())
	}

	if rec := c.do(http.MethodPost, "/api/session/hint/word", ""); rec.Code != http.StatusConflict {
		t.Fatalf("hint without puzzle: expected 409, got %d", rec.Code)
	}
	if len(c.cookies) == 0 || srv.sessions.Len() != 1 {
		t.Fatalf("expected an action to create the session")
	}

	v = decode[sessionView](t, c.do(http.MethodPost, "/api/session/next", ""))
	if v.Entry == nil || v.Entry.Answer != "" || v.HistoryLength != 1 || v.CanGoBack {
		t.Fatalf("expected first hidden puzzle, got %+v", v)
	}
	answer := enAnswers[v.Entry.PuzzleNumber-1]
	if len(v.Entry.Mask) != len(strings.Fields(answer)) {
		t.Fatalf("mask %v does not match %q", v.Entry.Mask, answer)
	}

	v = decode[sessionView](t, c.do(http.MethodPost, "/api/session/guess", `{"guess":"nope"}`))
	if v.Correct == nil || *v.Correct {
		t.Fatalf("expected wrong guess, got %+v", v)
	}
	v = decode[sessionView](t, c.do(http.MethodPost, "/api/session/guess", `{"guess":"  `+strings.ToUpper(answer)+` "}`))
	if v.Correct == nil || !*v.Correct || v.Score != 10 || v.Level != 2 || !v.Entry.Solved || v.Entry.Answer != answer {
		t.Fatalf("expected solved puzzle, got %+v", v)
	}

	v = decode[sessionView](t, c.do(http.MethodPost, "/api/session/next", ""))
	if v.HistoryLength != 2 || !v.CanGoBack {
		t.Fatalf("expected second puzzle, got %+v", v)
	}
	v = decode[sessionView](t, c.do(http.MethodPost, "/api/session/hint/word", ""))
	if v.WordIndex == nil || v.Score != 9 || v.Entry.WordHintsUsed != 1 {
		t.Fatalf("expected paid word hint, got %+v", v)
	}
	v = decode[sessionView](t, c.do(http.MethodPost, "/api/session/hint/meaning", ""))
	if v.Hint == "" || v.Score != 8 {
		t.Fatalf("expected paid meaning hint, got %+v", v)
	}
	if rec := c.do(http.MethodPost, "/api/session/hint/meaning?base=sn", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing base hint: expected 404, got %d", rec.Code)
	}

	v = decode[sessionView](t, c.do(http.MethodPost, "/api/session/back", ""))
	if v.Cursor != 0 || !v.Entry.Solved || v.Entry.Answer != answer {
		t.Fatalf("expected first entry restored, got %+v", v)
	}

	v = decode[sessionView](t, c.do(http.MethodPost, "/api/session/reset", ""))
	if v.Entry != nil || v.Score != 0 || v.Level != 1 || v.HistoryLength != 0 {
		t.Fatalf("expected cleared session, got %+v", v)
	}
}

func TestSession_CompletionAndConflict(t *testing.T) {
	c := &client{t: t, h: newTestServer(t).Handler()}
	for i := 0; i < len(enAnswers); i++ {
		if rec := c.do(http.MethodPost, "/api/session/next", ""); rec.Code != http.StatusOK {
			t.Fatalf("next %d: status %d", i, rec.Code)
		}
	}
	v := decode[sessionView](t, c.do(http.MethodPost, "/api/session/next", ""))
	if !v.GameComplete || v.Message != game.CompleteMessage || v.HistoryLength != 3 {
		t.Fatalf("expected completion, got %+v", v)
	}
	rec := c.do(http.MethodPost, "/api/session/next", "")
	if rec.Code != http.StatusConflict || decode[errorRes](t, rec).Code != "session_complete" {
		t.Fatalf("expected 409 session_complete, got %d", rec.Code)
	}
}

func TestSession_StartErrors(t *testing.T) {
	c := &client{t: t, h: newTestServer(t).Handler()}
	if rec := c.do(http.MethodPost, "/api/session/start?lang=klingon", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := c.do(http.MethodPost, "/api/session/start?lang=sn", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	v := decode[sessionView](t, c.do(http.MethodGet, "/api/session", ""))
	if v.Lang != puzzles.LangEnglish {
		t.Fatalf("failed start must keep language, got %q", v.Lang)
	}
	if rec := c.do(http.MethodPost, "/api/session/guess", `{bad`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad json, got %d", rec.Code)
	}
}

func TestSession_CookiesIsolatePlayers(t *testing.T) {
	h := newTestServer(t).Handler()
	a := &client{t: t, h: h}
	b := &client{t: t, h: h}
	a.do(http.MethodPost, "/api/session/next", "")
	v := decode[sessionView](t, b.do(http.MethodGet, "/api/session", ""))
	if v.HistoryLength != 0 {
		t.Fatalf("expected separate session, got %+v", v)
	}
}

func TestSession_UnknownCookieReadsEmpty(t *testing.T) {
	srv := newTestServer(t)
	c := &client{t: t, h: srv.Handler(), cookies: []*http.Cookie{{Name: anonCookie, Value: "expired-id"}}}
	v := decode[sessionView](t, c.do(http.MethodGet, "/api/session", ""))
	if v.HistoryLength != 0 || v.Entry != nil || srv.sessions.Len() != 0 {
		t.Fatalf("expected empty view without a stored session, got %+v", v)
	}
}
