package dbbuild

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"modernc.org/kv"
)

var pairKeyOrder = binary.BigEndian

// ANICache stores previously computed ANI values so repeated dbbuild
// runs over the same genus skip re-invoking the ANI tool. Keys are the
// lexicographically ordered pair of genome paths, so the cache hits
// regardless of which path was given as query and which as reference.
type ANICache struct {
	db *kv.DB
}

// OpenANICache creates path if it does not already exist, or reopens it.
func OpenANICache(path string) (*ANICache, error) {
	opts := &kv.Options{}
	if _, err := os.Stat(path); err == nil {
		db, err := kv.Open(path, opts)
		if err != nil {
			return nil, fmt.Errorf("dbbuild: open ani cache %s: %w", path, err)
		}
		return &ANICache{db: db}, nil
	}
	db, err := kv.Create(path, opts)
	if err != nil {
		return nil, fmt.Errorf("dbbuild: create ani cache %s: %w", path, err)
	}
	return &ANICache{db: db}, nil
}

// Close releases the underlying database file.
func (c *ANICache) Close() error { return c.db.Close() }

func marshalPairKey(a, b string) []byte {
	if b < a {
		a, b = b, a
	}
	var buf bytes.Buffer
	var n [8]byte
	pairKeyOrder.PutUint64(n[:], uint64(len(a)))
	buf.Write(n[:])
	buf.WriteString(a)
	pairKeyOrder.PutUint64(n[:], uint64(len(b)))
	buf.Write(n[:])
	buf.WriteString(b)
	return buf.Bytes()
}

// Get returns the cached ANI value for the unordered pair (a, b), and
// whether it was present.
func (c *ANICache) Get(a, b string) (float64, bool, error) {
	value, err := c.db.Get(nil, marshalPairKey(a, b))
	if err != nil {
		return 0, false, fmt.Errorf("dbbuild: ani cache get: %w", err)
	}
	if value == nil {
		return 0, false, nil
	}
	return math.Float64frombits(pairKeyOrder.Uint64(value)), true, nil
}

// Put records the ANI value computed for the unordered pair (a, b).
func (c *ANICache) Put(a, b string, ani float64) error {
	var value [8]byte
	pairKeyOrder.PutUint64(value[:], math.Float64bits(ani))
	if err := c.db.Set(marshalPairKey(a, b), value[:]); err != nil {
		return fmt.Errorf("dbbuild: ani cache put: %w", err)
	}
	return nil
}
