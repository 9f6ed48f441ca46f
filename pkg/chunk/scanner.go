package chunk

import (
	"errors"
	"math"

	"btrfsusage/pkg/log"
	"btrfsusage/pkg/store"
)

const (
	// DefaultBatchSize is the number of items requested per tree search.
	DefaultBatchSize = 4096

	firstChunkTreeObjectID = 256
	chunkItemKey           = 228
)

var errNoProgress = errors.New("tree search went backwards")

// Source yields chunk descriptors.
type Source interface {
	Next() bool
	Chunk() Descriptor
	Err() error
}

// Scanner reads every chunk item of the chunk tree in bounded batches. It is
// used like bufio.Scanner: call Next until it returns false, then check Err.
type Scanner struct {
	store     store.Store
	batchSize int
	cursor    store.Key
	last      store.Key
	pending   []store.SearchItem
	current   Descriptor
	batches   int
	done      bool
	err       error
}

var _ Source = (*Scanner)(nil)

// NewScanner returns a scanner over the chunk tree of s. A batchSize below 1
// selects DefaultBatchSize.
func NewScanner(s store.Store, batchSize int) *Scanner {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Scanner{
		store:     s,
		batchSize: batchSize,
		cursor:    store.Key{ObjectID: firstChunkTreeObjectID, Type: chunkItemKey, Offset: 0},
		last:      store.Key{ObjectID: firstChunkTreeObjectID, Type: chunkItemKey, Offset: math.MaxUint64},
	}
}

// Next advances to the next chunk, fetching a new batch when needed.
func (sc *Scanner) Next() bool {
	for sc.err == nil {
		if len(sc.pending) == 0 {
			if sc.done {
				return false
			}
			sc.fetch()
			continue
		}

		item := sc.pending[0]
		sc.pending = sc.pending[1:]
		if item.Key.Type != chunkItemKey {
			continue
		}

		d, err := Decode(item.Key.Offset, item.Data)
		if err != nil {
			sc.err = store.IOError{Path: sc.store.Path(), Op: "decode chunk item", Err: err}
			return false
		}
		sc.current = d
		return true
	}
	return false
}

// Chunk returns the chunk read by the last successful Next.
func (sc *Scanner) Chunk() Descriptor {
	return sc.current
}

// Err returns the first error met by the scan.
func (sc *Scanner) Err() error {
	return sc.err
}

// Batches returns the number of searches issued so far.
func (sc *Scanner) Batches() int {
	return sc.batches
}

func (sc *Scanner) fetch() {
	r := store.KeyRange{Min: sc.cursor, Max: sc.last}
	items, err := sc.store.SearchMetadata(store.ChunkTreeID, r, sc.batchSize)
	if err != nil {
		sc.err = err
		return
	}
	sc.batches++

	log.Debug().Int("batch", sc.batches).Int("items", len(items)).
		Str("from", sc.cursor.String()).Msg("Chunk tree batch")

	if len(items) < sc.batchSize {
		sc.done = true
	}
	if len(items) == 0 {
		return
	}

	lastKey := items[len(items)-1].Key
	if lastKey.Compare(sc.cursor) < 0 {
		sc.err = store.IOError{Path: sc.store.Path(), Op: "search chunk tree", Err: errNoProgress}
		return
	}
	sc.pending = items

	next, ok := lastKey.Next()
	if !ok {
		sc.done = true
		return
	}
	sc.cursor = next
}
