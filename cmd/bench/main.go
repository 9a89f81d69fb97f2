// Bench is a benchmarking tool for measuring bytetable insert, lookup, and
// remove throughput, plus peak memory usage.
//
// Usage:
//
//	go run ./cmd/bench -keys 10000000 -keysize 16 -readers 8
//
// Flags:
//
//	-keys     Number of keys to insert (default: 10,000,000)
//	-keysize  Key size in bytes (default: 16)
//	-capacity Initial bucket count hint, 0 for default (default: 0)
//	-readers  Concurrent reader goroutines for the parallel read phase (default: GOMAXPROCS)
//	-keyfile  Optional file of fixed-width key records to use instead of generated keys
//	-seed     Seed for deterministic key generation (default: 0x1234)
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/edsrzf/mmap-go"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/tamirms/bytetable"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, Maxrss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024 // Convert KB to bytes on Linux
	}
	return maxRSS
}

// generateKeys derives n deterministic pseudo-random keys of keySize bytes by
// murmur3-mixing a counter. Distinct counters give distinct 128-bit digests
// with overwhelming probability, so the keys are treated as unique.
func generateKeys(n, keySize int, seed uint32) [][]byte {
	keys := make([][]byte, n)
	var counter [8]byte
	var block [16]byte
	for i := range keys {
		key := make([]byte, keySize)
		binary.LittleEndian.PutUint64(counter[:], uint64(i))
		for off := 0; off < keySize; off += len(block) {
			h1, h2 := murmur3.Sum128WithSeed(counter[:], seed+uint32(off))
			binary.LittleEndian.PutUint64(block[0:8], h1)
			binary.LittleEndian.PutUint64(block[8:16], h2)
			copy(key[off:], block[:])
		}
		keys[i] = key
	}
	return keys
}

// loadKeyFile memory-maps a file of fixed-width key records. The returned
// keys alias the mapping; Put copies key bytes, so the mapping only needs to
// outlive the read phases.
func loadKeyFile(path string, keySize int) ([][]byte, mmap.MMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open key file: %w", err)
	}
	defer f.Close()

	mm, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap key file: %w", err)
	}

	n := len(mm) / keySize
	if n == 0 {
		_ = mm.Unmap()
		return nil, nil, fmt.Errorf("key file %s holds no %d-byte records", path, keySize)
	}
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = mm[i*keySize : (i+1)*keySize]
	}
	return keys, mm, nil
}

// digestRange reads keys[start:end] back from the table and folds the values
// into an xxh3 digest. The digest doubles as a correctness check: sequential
// and concurrent read phases must produce identical per-shard digests.
func digestRange(table *bytetable.Table, keys [][]byte, start, end int) (uint64, error) {
	h := xxh3.New()
	var buf [8]byte
	for i := start; i < end; i++ {
		v, ok := table.Get(keys[i])
		if !ok {
			return 0, fmt.Errorf("key %d missing during read-back", i)
		}
		binary.LittleEndian.PutUint64(buf[:], v.(uint64))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64(), nil
}

// foldDigests combines per-shard digests in shard order into one value.
func foldDigests(digests []uint64) uint64 {
	h := xxh3.New()
	var buf [8]byte
	for _, d := range digests {
		binary.LittleEndian.PutUint64(buf[:], d)
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

func main() {
	keysFlag := flag.Int("keys", 10_000_000, "number of keys")
	keySizeFlag := flag.Int("keysize", 16, "key size in bytes")
	capacityFlag := flag.Int("capacity", 0, "initial bucket count hint (0 = default)")
	readersFlag := flag.Int("readers", runtime.GOMAXPROCS(0), "concurrent reader goroutines")
	keyFileFlag := flag.String("keyfile", "", "file of fixed-width key records (overrides -keys)")
	seedFlag := flag.Uint("seed", 0x1234, "key generation seed")
	flag.Parse()

	keySize := *keySizeFlag
	if keySize <= 0 {
		fmt.Fprintln(os.Stderr, "keysize must be positive")
		os.Exit(1)
	}
	readers := *readersFlag
	if readers < 1 {
		readers = 1
	}

	var keys [][]byte
	if *keyFileFlag != "" {
		fmt.Printf("Mapping keys from %s...\n", *keyFileFlag)
		loaded, mm, err := loadKeyFile(*keyFileFlag, keySize)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() { _ = mm.Unmap() }()
		keys = loaded
	} else {
		fmt.Println("Generating keys...")
		keys = generateKeys(*keysFlag, keySize, uint32(*seedFlag))
	}
	numKeys := len(keys)

	table, err := bytetable.New(bytetable.WithCapacity(*capacityFlag))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer table.Close()

	fmt.Println("Inserting...")
	putStart := time.Now()
	for i, key := range keys {
		if err := table.Put(key, uint64(i)*2); err != nil {
			fmt.Fprintf(os.Stderr, "put key %d: %v\n", i, err)
			os.Exit(1)
		}
	}
	putDuration := time.Since(putStart)

	if table.Len() != numKeys {
		fmt.Fprintf(os.Stderr, "size mismatch after insert: got %d, want %d\n", table.Len(), numKeys)
		os.Exit(1)
	}

	// Shard boundaries are shared between the sequential and concurrent read
	// phases so their per-shard digests are comparable.
	bounds := make([]int, readers+1)
	for i := 0; i <= readers; i++ {
		bounds[i] = i * numKeys / readers
	}

	fmt.Println("Reading (sequential)...")
	seqDigests := make([]uint64, readers)
	seqStart := time.Now()
	for s := 0; s < readers; s++ {
		d, err := digestRange(table, keys, bounds[s], bounds[s+1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		seqDigests[s] = d
	}
	seqDuration := time.Since(seqStart)

	// Read-only access is safe to run concurrently: nothing mutates the
	// table between here and the remove phase.
	fmt.Printf("Reading (%d concurrent readers)...\n", readers)
	parDigests := make([]uint64, readers)
	var group errgroup.Group
	parStart := time.Now()
	for s := 0; s < readers; s++ {
		group.Go(func() error {
			d, err := digestRange(table, keys, bounds[s], bounds[s+1])
			if err != nil {
				return err
			}
			parDigests[s] = d
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	parDuration := time.Since(parStart)

	seqDigest := foldDigests(seqDigests)
	parDigest := foldDigests(parDigests)
	if seqDigest != parDigest {
		fmt.Fprintf(os.Stderr, "digest mismatch: sequential %016x, concurrent %016x\n", seqDigest, parDigest)
		os.Exit(1)
	}

	fmt.Println("Removing...")
	removeStart := time.Now()
	for i, key := range keys {
		if !table.Remove(key) {
			fmt.Fprintf(os.Stderr, "remove key %d: not found\n", i)
			os.Exit(1)
		}
	}
	removeDuration := time.Since(removeStart)

	if !table.IsEmpty() {
		fmt.Fprintf(os.Stderr, "table not empty after remove phase: %d entries left\n", table.Len())
		os.Exit(1)
	}

	opsPerSec := func(d time.Duration) float64 {
		if d <= 0 {
			return 0
		}
		return float64(numKeys) / d.Seconds()
	}

	fmt.Println()
	fmt.Printf("Keys:               %d (%d bytes each)\n", numKeys, keySize)
	fmt.Printf("Insert:             %v (%.0f ops/sec)\n", putDuration, opsPerSec(putDuration))
	fmt.Printf("Read (sequential):  %v (%.0f ops/sec)\n", seqDuration, opsPerSec(seqDuration))
	fmt.Printf("Read (concurrent):  %v (%.0f ops/sec, %d readers)\n", parDuration, opsPerSec(parDuration), readers)
	fmt.Printf("Remove:             %v (%.0f ops/sec)\n", removeDuration, opsPerSec(removeDuration))
	fmt.Printf("Value digest:       %016x\n", seqDigest)
	fmt.Printf("Peak RSS:           %.1f MiB\n", float64(getMaxRSS())/(1024*1024))
}
