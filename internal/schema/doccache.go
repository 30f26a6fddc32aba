package schema

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
)

var (
	keyDocument  = []byte("doc:latest")
	keyFetchedAt = []byte("doc:fetched_at")
	keySource    = []byte("doc:source")
)

// ErrNoCachedDocument is returned by LoadLatest when nothing has been saved.
var ErrNoCachedDocument = errors.New("no cached schema document")

// DocumentCache keeps the last successfully parsed document on disk so a
// restarted process can serve reads before its first upstream fetch. Only
// the latest document is kept.
type DocumentCache struct {
	db *leveldb.DB
}

// OpenDocumentCache opens (or creates) the cache database at dir.
func OpenDocumentCache(dir string) (*DocumentCache, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("opening document cache: %w", err)
	}
	return &DocumentCache{db: db}, nil
}

// Close releases the underlying database.
func (c *DocumentCache) Close() error {
	return c.db.Close()
}

// Save replaces the cached document in a single batch.
func (c *DocumentCache) Save(data []byte, source string, ts time.Time) error {
	var tsBuf [8]byte
	binary.BigEndian.PutUint64(tsBuf[:], uint64(ts.UnixNano()))

	batch := new(leveldb.Batch)
	batch.Put(keyDocument, data)
	batch.Put(keyFetchedAt, tsBuf[:])
	batch.Put(keySource, []byte(source))
	if err := c.db.Write(batch, nil); err != nil {
		return fmt.Errorf("writing document cache: %w", err)
	}
	return nil
}

// LoadLatest returns the cached document, its source and fetch time.
func (c *DocumentCache) LoadLatest() ([]byte, string, time.Time, error) {
	data, err := c.db.Get(keyDocument, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, "", time.Time{}, ErrNoCachedDocument
	}
	if err != nil {
		return nil, "", time.Time{}, fmt.Errorf("reading document cache: %w", err)
	}

	var ts time.Time
	if b, err := c.db.Get(keyFetchedAt, nil); err == nil && len(b) == 8 {
		ts = time.Unix(0, int64(binary.BigEndian.Uint64(b)))
	}
	source := "cache"
	if b, err := c.db.Get(keySource, nil); err == nil && len(b) > 0 {
		source = string(b)
	}
	return data, source, ts, nil
}

// SaveSnapshot stores the document a snapshot was built from.
func (c *DocumentCache) SaveSnapshot(s *Snapshot) error {
	return c.Save(s.Document(), s.Source, s.FetchedAt)
}
