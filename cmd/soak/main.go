// Soak runs a randomized differential check of bytetable against the
// built-in map. Every operation is mirrored into a model map; sizes,
// membership, stored values, and release-callback accounting are verified
// continuously. The process exits non-zero on the first divergence.
//
// Usage:
//
//	go run ./cmd/soak -ops 5000000 -seed 42
//
// Flags:
//
//	-ops      Number of random operations to run (default: 1,000,000)
//	-seed     RNG seed for deterministic reproduction (default: 1)
//	-keyspace Number of distinct keys the run draws from (default: 10,000)
//	-capacity Initial bucket count hint, 0 for default (default: 0)
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tamirms/bytetable"
)

const progressInterval = 100_000

// makeKey maps an id to a key deterministically. The id occupies the first
// 8 bytes and the zero-padded tail length also depends on it, so distinct
// ids always yield distinct keys while exercising variable lengths and
// embedded zero bytes.
func makeKey(id int) []byte {
	key := make([]byte, 8+id%8)
	binary.LittleEndian.PutUint64(key[:8], uint64(id))
	return key
}

// checker mirrors every table operation into a model map and tracks the
// expected number of release-callback invocations.
type checker struct {
	table            *bytetable.Table
	model            map[int]string
	releases         int
	expectedReleases int
}

func (c *checker) put(id int, value string) error {
	old, existed := c.model[id]
	if err := c.table.Put(makeKey(id), value); err != nil {
		return fmt.Errorf("put id %d: %w", id, err)
	}
	if existed && old != value {
		c.expectedReleases++
	}
	c.model[id] = value
	return nil
}

func (c *checker) remove(id int) error {
	_, existed := c.model[id]
	removed := c.table.Remove(makeKey(id))
	if removed != existed {
		return fmt.Errorf("remove id %d: table reported %v, model %v", id, removed, existed)
	}
	if existed {
		c.expectedReleases++
		delete(c.model, id)
	}
	return nil
}

func (c *checker) get(id int) error {
	want, existed := c.model[id]
	got, ok := c.table.Get(makeKey(id))
	if ok != existed {
		return fmt.Errorf("get id %d: table reported %v, model %v", id, ok, existed)
	}
	if existed && got != want {
		return fmt.Errorf("get id %d: got %v, want %v", id, got, want)
	}
	if c.table.Contains(makeKey(id)) != existed {
		return fmt.Errorf("contains id %d disagrees with model", id)
	}
	return nil
}

func (c *checker) clear() {
	c.expectedReleases += len(c.model)
	c.table.Clear()
	clear(c.model)
}

// verify checks the global invariants: size agreement and exactly-once
// release accounting.
func (c *checker) verify() error {
	if c.table.Len() != len(c.model) {
		return fmt.Errorf("size mismatch: table %d, model %d", c.table.Len(), len(c.model))
	}
	if c.table.IsEmpty() != (len(c.model) == 0) {
		return fmt.Errorf("IsEmpty disagrees with model size %d", len(c.model))
	}
	if c.releases != c.expectedReleases {
		return fmt.Errorf("release accounting: %d callbacks, expected %d", c.releases, c.expectedReleases)
	}
	return nil
}

// verifyFull additionally reads back every live key.
func (c *checker) verifyFull() error {
	if err := c.verify(); err != nil {
		return err
	}
	for id := range c.model {
		if err := c.get(id); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})

	opsFlag := flag.Int("ops", 1_000_000, "number of random operations")
	seedFlag := flag.Uint64("seed", 1, "RNG seed")
	keyspaceFlag := flag.Int("keyspace", 10_000, "distinct key ids to draw from")
	capacityFlag := flag.Int("capacity", 0, "initial bucket count hint (0 = default)")
	flag.Parse()

	log.Info().
		Int("ops", *opsFlag).
		Uint64("seed", *seedFlag).
		Int("keyspace", *keyspaceFlag).
		Msg("starting soak run")

	c := &checker{model: make(map[int]string)}
	table, err := bytetable.New(
		bytetable.WithCapacity(*capacityFlag),
		bytetable.WithRelease(func(any) { c.releases++ }),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create the table")
	}
	c.table = table

	rng := rand.New(rand.NewPCG(*seedFlag, ^*seedFlag))
	for op := 1; op <= *opsFlag; op++ {
		id := rng.IntN(*keyspaceFlag)

		var err error
		switch roll := rng.IntN(1000); {
		case roll < 500:
			err = c.put(id, fmt.Sprintf("value-%d", op))
		case roll < 510:
			// Occasionally re-store the identical value; this must not
			// trigger a release.
			if current, ok := c.model[id]; ok {
				err = c.put(id, current)
			} else {
				err = c.put(id, fmt.Sprintf("value-%d", op))
			}
		case roll < 750:
			err = c.get(id)
		case roll < 998:
			err = c.remove(id)
		default:
			c.clear()
		}
		if err == nil {
			err = c.verify()
		}
		if err != nil {
			log.Fatal().Err(err).Int("op", op).Msg("divergence detected")
		}

		if op%progressInterval == 0 {
			log.Info().
				Int("op", op).
				Int("size", c.table.Len()).
				Int("releases", c.releases).
				Msg("progress")
		}
	}

	if err := c.verifyFull(); err != nil {
		log.Fatal().Err(err).Msg("final verification failed")
	}

	// Close releases every remaining value exactly once.
	remaining := len(c.model)
	if err := c.table.Close(); err != nil {
		log.Fatal().Err(err).Msg("close failed")
	}
	if c.releases != c.expectedReleases+remaining {
		log.Fatal().
			Int("callbacks", c.releases).
			Int("expected", c.expectedReleases+remaining).
			Msg("release accounting after close failed")
	}

	log.Info().
		Int("ops", *opsFlag).
		Int("releases", c.releases).
		Msg("soak run passed")
}
