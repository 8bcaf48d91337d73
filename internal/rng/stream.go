package rng

import "strconv"

// Stream is a deterministic pseudo-random source with 32 bits of state
// (Mulberry32). Each stream is owned by exactly one computation; nothing in
// this package shares state between streams, so draw order within a stream
// is the only thing a caller has to keep fixed.
type Stream struct {
	state uint32
}

// New returns a stream seeded with the given 32-bit seed.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

// Next advances the stream and returns a value in [0, 1).
func (s *Stream) Next() float64 {
	return float64(s.Uint32()) / 4294967296.0
}

// Uint32 advances the stream and returns the raw 32-bit output.
func (s *Stream) Uint32() uint32 {
	s.state += 0x6D2B79F5
	t := s.state
	t = (t ^ (t >> 15)) * (t | 1)
	t ^= t + (t^(t>>7))*(t|61)
	return t ^ (t >> 14)
}

// Intn returns an integer in [0, n). n <= 0 returns 0.
func (s *Stream) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.Next() * float64(n))
}

// IntBetween returns an integer in [min, max).
func (s *Stream) IntBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.Intn(max-min)
}

// Float returns a float in [min, max).
func (s *Stream) Float(min, max float64) float64 {
	return min + s.Next()*(max-min)
}

// Chance draws once and reports whether the draw fell under p.
func (s *Stream) Chance(p float64) bool {
	return s.Next() < p
}

// Fork derives an independent child stream from this stream's current state
// and a key. Forking does not advance the parent. Two forks taken at the
// same parent state diverge iff their keys differ, which is why occurrence
// counters belong in the key (e.g. "source-0", "source-1").
func (s *Stream) Fork(key string) *Stream {
	return New(mixKey(s.state, key))
}

// ForkN is Fork with an integer key.
func (s *Stream) ForkN(key int) *Stream {
	return s.Fork(strconv.Itoa(key))
}

// Pick returns a uniformly drawn element of items. Empty slices return the
// zero value without drawing.
func Pick[T any](s *Stream, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[s.Intn(len(items))]
}

// WeightedPick draws an index with probability proportional to weights.
// Non-positive total weight falls back to index 0 after a single draw, so
// the stream advances the same number of times either way.
func WeightedPick(s *Stream, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	r := s.Next() * total
	if total <= 0 {
		return 0
	}
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}
