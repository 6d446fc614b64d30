// Package rng defines the uniform-integer random source the evaluator rolls
// dice against. The default implementation draws from the platform
// cryptographic source, the same source this codebase already reaches for
// when it needs unpredictable bytes; tests inject a deterministic
// Scripted source instead.
package rng

import (
	"crypto/rand"
	"math/big"
)

// Source produces a uniform integer in [1, size] for size >= 1. Next is
// never called with size < 1; the evaluator treats a size-0 die as never
// rolling at all.
type Source interface {
	Next(size int) int
}

// Crypto is the default Source, backed by crypto/rand.
type Crypto struct{}

func (Crypto) Next(size int) int {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(size)))
	if err != nil {
		// crypto/rand failing indicates a broken platform entropy source;
		// there is no sane fallback value to return here.
		panic("rng: crypto/rand unavailable: " + err.Error())
	}
	return int(n.Int64()) + 1
}

// Scripted is a deterministic Source that replays a fixed face sequence,
// for use in tests that need reproducible rolls. Calling Next past the end
// of Faces panics, since a test fixture running out of scripted faces
// indicates the expression under test rolls more dice than expected.
type Scripted struct {
	Faces []int
	i     int
}

func NewScripted(faces ...int) *Scripted {
	return &Scripted{Faces: faces}
}

func (s *Scripted) Next(size int) int {
	if s.i >= len(s.Faces) {
		panic("rng: Scripted source exhausted its fixture faces")
	}
	f := s.Faces[s.i]
	s.i++
	return f
}
