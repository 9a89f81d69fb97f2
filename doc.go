// Package bytetable implements an in-memory hash table keyed by arbitrary
// byte sequences, with separate chaining and automatic growth.
//
// Any non-empty byte sequence is a valid key, including sequences with
// embedded zero bytes; keys of different lengths are always distinct, even
// when one is a prefix of the other. Keys are copied on insert, hashing is
// byte-wise FNV-1a, and the bucket count doubles when occupancy crosses 3/4.
//
// # Basic Usage
//
// Storing and retrieving values:
//
//	table, err := bytetable.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer table.Close()
//
//	if err := table.Put([]byte("apple"), "red"); err != nil {
//	    log.Fatal(err)
//	}
//	if v, ok := table.Get([]byte("apple")); ok {
//	    fmt.Println(v)
//	}
//
// Transferring value ownership to the table:
//
//	table, err := bytetable.New(
//	    bytetable.WithRelease(func(v any) { v.(io.Closer).Close() }),
//	)
//
// With a release callback configured, the table releases each stored value
// exactly once: when it is overwritten, removed, or still present at Clear
// or Close.
//
// # Package Structure
//
//   - Public API: table.go (New, Put, Get, Contains, Remove, Len, IsEmpty, Clear, Close)
//   - Configuration: options.go (Option, With* functions)
//   - Hashing: hash.go (byte-wise FNV-1a)
//   - Error sentinels: errors/
//
// A Table is not safe for concurrent mutation; see the Table documentation
// for the exact sharing rules.
package bytetable
