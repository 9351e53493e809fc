package dice

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Source produces uniformly distributed floats in [0, 1).
type Source interface {
	Float64() float64
}

// SourceFunc adapts a plain function to a Source.
type SourceFunc func() float64

// Float64 calls f.
func (f SourceFunc) Float64() float64 { return f() }

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every draw, enabling save/restore.
type RNG struct {
	seed int64
	src  *rand.Rand
	pos  int64
}

// NewSeeded creates a deterministic RNG from a seed.
func NewSeeded(seed int64) *RNG {
	return &RNG{
		seed: seed,
		src:  rand.New(rand.NewSource(seed)),
	}
}

// NewRandom creates an RNG seeded from crypto/rand. It is the production
// default; the seed can be read back with Seed for replay.
func NewRandom() (*RNG, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewSeeded(seed), nil
}

// NewSeed generates a non-negative random seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[:]) & (1<<63 - 1)), nil
}

// Float64 returns the next draw in [0, 1).
func (r *RNG) Float64() float64 {
	r.pos++
	return r.src.Float64()
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// Restore creates an RNG and advances it to the given position.
// This reproduces the exact RNG state for save/load.
func Restore(seed int64, position int64) *RNG {
	rng := NewSeeded(seed)
	for i := int64(0); i < position; i++ {
		rng.src.Float64()
	}
	rng.pos = position
	return rng
}

// QueueSource replays a fixed sequence of draws. It panics when the
// sequence is exhausted, which makes an unexpected extra roll fail loudly
// in tests.
type QueueSource struct {
	values []float64
	next   int
}

// Queue returns a source that yields values in order.
func Queue(values ...float64) *QueueSource {
	return &QueueSource{values: values}
}

// Float64 returns the next queued value.
func (q *QueueSource) Float64() float64 {
	if q.next >= len(q.values) {
		panic("dice: queue source exhausted")
	}
	v := q.values[q.next]
	q.next++
	return v
}

// Remaining reports how many queued values are left.
func (q *QueueSource) Remaining() int {
	return len(q.values) - q.next
}

// Face returns the draw that makes a die with the given number of sides
// land on face. It is the inverse of the roll mapping and is meant for
// forcing rolls through a Queue.
func Face(face, sides int) float64 {
	return (float64(face) - 0.5) / float64(sides)
}
