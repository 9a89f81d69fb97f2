package bytetable

import (
	"encoding/binary"
	"hash/fnv"
	randv2 "math/rand/v2"
	"testing"
)

// Named seeds for deterministic reproduction.
const (
	testSeed1 = 0x1234567890ABCDEF
	testSeed2 = 0xFEDCBA9876543210
)

// newTestRNG returns a deterministic RNG seeded per test name, so failures
// reproduce without sharing state between tests.
func newTestRNG(t testing.TB) *randv2.Rand {
	t.Helper()
	h := fnv.New128a()
	h.Write([]byte(t.Name()))
	sum := h.Sum(nil)
	s1 := binary.LittleEndian.Uint64(sum[:8])
	s2 := binary.LittleEndian.Uint64(sum[8:])
	return randv2.New(randv2.NewPCG(testSeed1^s1, testSeed2^s2))
}

// fillFromRNG fills buf with pseudo-random bytes from rng.
func fillFromRNG(rng *randv2.Rand, buf []byte) {
	for i := 0; i+8 <= len(buf); i += 8 {
		binary.LittleEndian.PutUint64(buf[i:], rng.Uint64())
	}
	if tail := len(buf) % 8; tail > 0 {
		v := rng.Uint64()
		start := len(buf) - tail
		for j := 0; j < tail; j++ {
			buf[start+j] = byte(v >> (j * 8))
		}
	}
}

// generateDistinctKeys creates n distinct pseudo-random keys of the specified
// size. Distinctness is enforced against a set, so collisions in the RNG
// output cannot skew size accounting in tests.
func generateDistinctKeys(rng *randv2.Rand, n, keySize int) [][]byte {
	keys := make([][]byte, 0, n)
	seen := make(map[string]struct{}, n)
	for len(keys) < n {
		key := make([]byte, keySize)
		fillFromRNG(rng, key)
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// collidingKeys generates n distinct keys that all map to the same bucket of
// a capacity-slot table, by drawing random keys and keeping those whose hash
// lands in the first key's slot.
func collidingKeys(t testing.TB, n, capacity int) [][]byte {
	t.Helper()
	rng := newTestRNG(t)
	seen := make(map[string]struct{}, n)
	var slot uint64
	keys := make([][]byte, 0, n)
	for len(keys) < n {
		key := make([]byte, 8)
		fillFromRNG(rng, key)
		if _, dup := seen[string(key)]; dup {
			continue
		}
		idx := fnv1a(key) % uint64(capacity)
		if len(keys) == 0 {
			slot = idx
		} else if idx != slot {
			continue
		}
		seen[string(key)] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// uint32Key encodes v as a 4-byte little-endian key.
func uint32Key(v uint32) []byte {
	key := make([]byte, 4)
	binary.LittleEndian.PutUint32(key, v)
	return key
}

// mustNew creates a table and fails the test on error.
func mustNew(t testing.TB, opts ...Option) *Table {
	t.Helper()
	table, err := New(opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return table
}

// releaseRecorder counts release callback invocations and records the
// released values in order.
type releaseRecorder struct {
	calls    int
	released []any
}

func (r *releaseRecorder) fn(value any) {
	r.calls++
	r.released = append(r.released, value)
}
