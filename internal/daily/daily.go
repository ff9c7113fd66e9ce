// internal/daily/daily.go
//
// Puzzle of the day: every player sees the same puzzle per language and UTC
// date. The choice is HMAC(salt, YYYY-MM-DD) modulo the collection size, so it
// is stable across restarts and never touches shared progress.

package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/emojiquest/internal/puzzles"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Index returns a deterministic index in [0, n) for the date.
func Index(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Puzzle is the day's pick from one collection.
type Puzzle struct {
	Date   string
	Puzzle puzzles.Puzzle
	Total  int
}

// Pick returns the puzzle of the day from c.
func Pick(date time.Time, salt string, c *puzzles.Collection) Puzzle {
	p, _ := c.At(Index(date, salt, c.Len()))
	return Puzzle{Date: DateKey(date), Puzzle: p, Total: c.Len()}
}
