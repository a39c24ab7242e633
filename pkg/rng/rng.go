package rng

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
)

// ErrEntropy is returned when the operating system refuses to hand out random
// bytes.
var ErrEntropy = errors.New("entropy unavailable")

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(seed, 0))}
}

// NewStreamRNG creates a deterministic RNG on a separate PCG stream. Streams
// sharing a seed but differing in id are independent sequences.
func NewStreamRNG(seed, stream uint64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(seed, stream))}
}

// NewEntropyRNG seeds an RNG from crypto/rand.
func NewEntropyRNG() (*RNG, error) {
	seed, err := EntropySeed()
	if err != nil {
		return nil, err
	}
	return NewRNG(seed), nil
}

// SeedFromString hashes an arbitrary seed string into a PCG seed (FNV-1a 64).
func SeedFromString(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// EntropySeed reads 8 bytes from crypto/rand.
func EntropySeed() (uint64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// Float64 returns a uniform draw in [0, 1).
func (r *RNG) Float64() float64 { return r.r.Float64() }

// IntN returns a uniform int in [0, n).
func (r *RNG) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.r.IntN(n)
}

// Source exposes the underlying rand.Rand for advanced use.
func (r *RNG) Source() *rand.Rand { return r.r }
