package bytetable

import (
	"bytes"

	bterrors "github.com/tamirms/bytetable/errors"
)

const (
	// defaultCapacity is the bucket count used when WithCapacity is absent
	// or given a zero hint.
	defaultCapacity = 16

	// loadFactorNum/loadFactorDen express the 3/4 occupancy threshold above
	// which Put doubles the bucket count.
	loadFactorNum = 3
	loadFactorDen = 4
)

// entry is a single key-value pair in a bucket chain.
type entry struct {
	key   []byte // Owned copy; never aliases caller memory after insertion
	value any
	next  *entry
}

// Table is a chained hash table keyed by arbitrary byte sequences.
//
// Keys are copied on insert, so callers may reuse or mutate their key
// buffers after Put returns. Values are stored as given; the table takes
// ownership of them only when a ReleaseFunc is configured via WithRelease.
//
// Thread Safety:
//   - A Table is NOT safe for concurrent mutation, or for reads concurrent
//     with any mutation: Put may replace the bucket array during growth,
//     and an unsynchronized reader could observe a torn intermediate state.
//   - Concurrent read-only use (Get, Contains, Len, IsEmpty) is safe once
//     all mutation has completed.
//   - Callers sharing a Table across goroutines must provide their own
//     mutual exclusion around every operation.
type Table struct {
	buckets []*entry
	size    int
	release ReleaseFunc
	closed  bool
}

// New creates an empty Table.
//
// By default the table starts with 16 buckets and never takes ownership of
// values. Use WithCapacity to size the initial bucket array and WithRelease
// to register a value release callback:
//
//	table, err := bytetable.New(
//	    bytetable.WithCapacity(1024),
//	    bytetable.WithRelease(func(v any) { v.(*os.File).Close() }),
//	)
//	if err != nil { return err }
//	defer table.Close()
func New(opts ...Option) (*Table, error) {
	cfg := defaultTableConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.capacity < 0 {
		return nil, bterrors.ErrInvalidCapacity
	}
	capacity := cfg.capacity
	if capacity == 0 {
		capacity = defaultCapacity
	}

	return &Table{
		buckets: make([]*entry, capacity),
		release: cfg.release,
	}, nil
}

// Put inserts a key-value pair, or replaces the value if the key is already
// present. The key must be non-empty; it is copied, so the caller's buffer
// is not retained.
//
// On replacement with a configured ReleaseFunc, the previous value is
// released unless it is the identical value to the one being stored. Value
// identity is interface comparison; storing values of an uncomparable
// dynamic type (slices, maps, functions) together with a ReleaseFunc is not
// supported.
func (t *Table) Put(key []byte, value any) error {
	if t == nil {
		return bterrors.ErrNilTable
	}
	if t.closed {
		return bterrors.ErrTableClosed
	}
	if len(key) == 0 {
		return bterrors.ErrEmptyKey
	}

	// Grow before the chain scan so insert cost stays amortized O(1). The
	// threshold check also runs for puts that turn out to be updates; a
	// spurious doubling there is harmless since capacity never shrinks.
	if t.size >= len(t.buckets)*loadFactorNum/loadFactorDen {
		t.grow(len(t.buckets) * 2)
	}

	idx := t.bucketIndex(key)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if bytes.Equal(e.key, key) {
			if t.release != nil && e.value != value {
				t.release(e.value)
			}
			e.value = value
			return nil
		}
	}

	t.buckets[idx] = &entry{
		key:   append([]byte(nil), key...),
		value: value,
		next:  t.buckets[idx],
	}
	t.size++
	return nil
}

// Get returns the value stored under key. The second return value reports
// whether the key was present; a miss is a defined result, not an error.
// Get is read-only and never mutates the table.
func (t *Table) Get(key []byte) (any, bool) {
	if t == nil || t.closed || len(key) == 0 {
		return nil, false
	}

	for e := t.buckets[t.bucketIndex(key)]; e != nil; e = e.next {
		if bytes.Equal(e.key, key) {
			return e.value, true
		}
	}
	return nil, false
}

// Contains reports whether key is present. It is defined in terms of Get:
// Contains(key) is true exactly when Get(key) reports a hit.
func (t *Table) Contains(key []byte) bool {
	_, ok := t.Get(key)
	return ok
}

// Remove deletes the entry stored under key and reports whether a matching
// entry was found. The entry's value is released if a ReleaseFunc is
// configured. Removing an absent key leaves the table unchanged.
func (t *Table) Remove(key []byte) bool {
	if t == nil || t.closed || len(key) == 0 {
		return false
	}

	idx := t.bucketIndex(key)
	var prev *entry
	for e := t.buckets[idx]; e != nil; e = e.next {
		if bytes.Equal(e.key, key) {
			if prev != nil {
				prev.next = e.next
			} else {
				t.buckets[idx] = e.next
			}
			if t.release != nil {
				t.release(e.value)
			}
			e.value = nil
			e.next = nil
			t.size--
			return true
		}
		prev = e
	}
	return false
}

// Len returns the number of stored entries. A nil table reports 0.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// IsEmpty reports whether the table holds no entries. A nil table reports true.
func (t *Table) IsEmpty() bool {
	return t.Len() == 0
}

// Clear removes every entry, releasing each value if a ReleaseFunc is
// configured. The bucket array is retained, so capacity is unchanged.
// Clear is idempotent and a safe no-op on nil and closed tables.
func (t *Table) Clear() {
	if t == nil || t.buckets == nil {
		return
	}

	for i, e := range t.buckets {
		for e != nil {
			next := e.next
			if t.release != nil {
				t.release(e.value)
			}
			e.value = nil
			e.next = nil
			e = next
		}
		t.buckets[i] = nil
	}
	t.size = 0
}

// Close clears the table and releases the bucket array. After Close, Put
// returns ErrTableClosed and lookups report misses. Close is idempotent and
// a safe no-op on a nil table; it never fails.
func (t *Table) Close() error {
	if t == nil || t.closed {
		return nil
	}
	t.Clear()
	t.buckets = nil
	t.closed = true
	return nil
}

// bucketIndex maps a key to its bucket slot in the current bucket array.
func (t *Table) bucketIndex(key []byte) uint64 {
	return fnv1a(key) % uint64(len(t.buckets))
}

// grow replaces the bucket array with one of newCapacity slots and relinks
// every entry into its new chain. Entries are rehomed, not copied; relative
// order within a chain is not preserved across growth.
func (t *Table) grow(newCapacity int) {
	newBuckets := make([]*entry, newCapacity)
	for _, e := range t.buckets {
		for e != nil {
			next := e.next
			idx := fnv1a(e.key) % uint64(len(newBuckets))
			e.next = newBuckets[idx]
			newBuckets[idx] = e
			e = next
		}
	}
	t.buckets = newBuckets
}
