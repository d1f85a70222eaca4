package workload

import (
	"encoding/binary"
	mrand "math/rand/v2"
	"time"
)

// Sampler produces fresh pseudo-random payloads. The stream only has to
// defeat caching and repeated-pattern shortcuts, so it is not a CSPRNG.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	seed uint64
	rng  *mrand.ChaCha8
}

// NewSampler creates a Sampler. A zero seed is replaced with one derived
// from the current time.
func NewSampler(seed uint64) *Sampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var s [32]byte
	binary.LittleEndian.PutUint64(s[:], seed)

	return &Sampler{
		seed: seed,
		rng:  mrand.NewChaCha8(s),
	}
}

// Seed returns the effective seed.
func (s *Sampler) Seed() uint64 {
	return s.seed
}

// Sample returns a newly allocated buffer of exactly size random bytes.
// Buffers are never recycled between calls.
func (s *Sampler) Sample(size int) []byte {
	buf := make([]byte, size)
	_, _ = s.rng.Read(buf)

	return buf
}

// Key returns an n-byte key drawn from the same stream.
func (s *Sampler) Key(n int) []byte {
	return s.Sample(n)
}
