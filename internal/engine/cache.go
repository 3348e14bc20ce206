package engine

import (
	"encoding/gob"
	"fmt"
	"math"
	"os"
)

// valuationEpsilon is the tolerance used when deciding whether two
// valuations stored under the same key actually disagree.
const valuationEpsilon = 1e-9

// PositionCache memoizes heuristic valuations keyed by the canonical
// (polyglot Zobrist) position hash. It grows monotonically: once a key
// is present its value never changes for the lifetime of the process.
type PositionCache struct {
	entries map[uint64]float64
	path    string

	// Statistics
	hits   uint64
	probes uint64
}

// NewPositionCache creates an empty cache backed by the given file path.
func NewPositionCache(path string) *PositionCache {
	return &PositionCache{
		entries: make(map[uint64]float64),
		path:    path,
	}
}

// Lookup returns the cached valuation for a position hash.
func (c *PositionCache) Lookup(key uint64) (float64, bool) {
	c.probes++
	value, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return value, ok
}

// Insert stores a valuation. Storing a different value under an existing
// key indicates a hash collision or a cache-consistency bug and is
// reported as an error rather than silently overwriting; re-inserting
// the same value is a no-op.
func (c *PositionCache) Insert(key uint64, value float64) error {
	if existing, ok := c.entries[key]; ok {
		if math.Abs(existing-value) > valuationEpsilon {
			return fmt.Errorf("position cache conflict for key %016x: have %v, got %v", key, existing, value)
		}
		return nil
	}
	c.entries[key] = value
	return nil
}

// Len returns the number of cached positions.
func (c *PositionCache) Len() int {
	return len(c.entries)
}

// HitRate returns the cache hit rate as a percentage.
func (c *PositionCache) HitRate() float64 {
	if c.probes == 0 {
		return 0
	}
	return float64(c.hits) / float64(c.probes) * 100
}

// Load reads the cache file. A missing file is not an error: the cache
// simply starts empty. Any other failure carries the offending path.
func (c *PositionCache) Load() error {
	file, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open position cache %s: %w", c.path, err)
	}
	defer file.Close()

	entries := make(map[uint64]float64)
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("failed to decode position cache %s: %w", c.path, err)
	}
	c.entries = entries
	return nil
}

// Persist writes the entire mapping to disk. The snapshot goes to a
// temporary file first and is renamed over the target, so a crash
// mid-write never leaves a torn cache file behind.
func (c *PositionCache) Persist() error {
	tmp := c.path + ".tmp"

	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create position cache %s: %w", tmp, err)
	}

	if err := gob.NewEncoder(file).Encode(c.entries); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode position cache %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to close position cache %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace position cache %s: %w", c.path, err)
	}
	return nil
}
