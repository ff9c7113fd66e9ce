// internal/game/source.go
//
// Random sources for puzzle and hint selection. Production uses crypto/rand;
// a seeded source gives reproducible runs (play --seed).

package game

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// Source picks a uniform integer in [0, n). n is always > 0.
type Source interface {
	Intn(n int) int
}

type cryptoSource struct{}

// CryptoSource returns a Source backed by crypto/rand.
func CryptoSource() Source { return cryptoSource{} }

func (cryptoSource) Intn(n int) int {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(nBig.Int64())
}

type seededSource struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// SeededSource returns a deterministic Source safe for concurrent use.
func SeededSource(seed uint64) Source {
	return &seededSource{r: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}
