// Package pebble implements the key-value database layer based on pebble.
package pebble

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/ethereum/go-ethereum/common"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to pebble
	// read and write caching, split half and half.
	minCache = 16

	// minHandles is the minimum number of files handles to allocate to the open
	// database files.
	minHandles = 16
)

// Database is a persistent key-value store based on the pebble storage engine.
type Database struct {
	fn string     // filename for reporting
	db *pebble.DB // Underlying pebble storage engine

	closeOnce sync.Once
	logger    log.Logger
}

// New returns a wrapped pebble DB object.
func New(file string, cache int, handles int, logger log.Logger) (*Database, error) {
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	logger.WithFields(log.Fields{
		"database": file,
		"cache":    cache,
		"handles":  handles,
	}).Info("Allocated cache and file handles")
	return open(file, &pebble.Options{MaxOpenFiles: handles}, cache, logger)
}

// NewMemory returns a pebble instance on an in-memory file system, which
// loses all data on close.
func NewMemory() *Database {
	db, err := open("", &pebble.Options{FS: vfs.NewMem()}, minCache, log.NewNullLogger())
	if err != nil {
		panic(err)
	}
	return db
}

func open(file string, opts *pebble.Options, cache int, logger log.Logger) (*Database, error) {
	c := pebble.NewCache(int64(cache * 1024 * 1024))
	defer c.Unref()

	opts.Cache = c
	opts.MemTableSize = uint64(cache * 1024 * 1024 / 4)
	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", file, err)
	}
	return &Database{fn: file, db: db, logger: logger}, nil
}

// Close stops the database and releases its file handles.
func (d *Database) Close() error {
	var err error
	d.closeOnce.Do(func() {
		err = d.db.Close()
		if err == nil {
			d.logger.WithField("database", d.fn).Debug("Database closed")
		}
	})
	return err
}

// Has retrieves if a key is present in the key-value store.
func (d *Database) Has(key []byte) (bool, error) {
	_, closer, err := d.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	closer.Close()
	return true, nil
}

// Get retrieves the given key if it's present in the key-value store.
func (d *Database) Get(key []byte) ([]byte, error) {
	dat, closer, err := d.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ethdb.ErrNotFound
	} else if err != nil {
		return nil, err
	}
	ret := common.CopyBytes(dat)
	closer.Close()
	return ret, nil
}

// Put inserts the given value into the key-value store.
func (d *Database) Put(key []byte, value []byte) error {
	return d.db.Set(key, value, pebble.Sync)
}

// Delete removes the key from the key-value store.
func (d *Database) Delete(key []byte) error {
	return d.db.Delete(key, pebble.Sync)
}

// NewBatch creates a write-only key-value store that buffers changes to its host
// database until a final write is called.
func (d *Database) NewBatch() ethdb.Batch {
	return &batch{
		b:  d.db.NewBatch(),
		db: d,
	}
}

// batch is a write-only batch that commits changes to its host database
// when Write is called. A batch cannot be used concurrently.
type batch struct {
	b    *pebble.Batch
	db   *Database
	size int
}

// Put inserts the given value into the batch for later committing.
func (b *batch) Put(key, value []byte) error {
	b.size += len(key) + len(value)
	return b.b.Set(key, value, nil)
}

// Delete inserts the a key removal into the batch for later committing.
func (b *batch) Delete(key []byte) error {
	b.size += len(key)
	return b.b.Delete(key, nil)
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *batch) ValueSize() int {
	return b.size
}

// Write flushes any accumulated data to disk.
func (b *batch) Write() error {
	return b.b.Commit(pebble.Sync)
}

// Reset resets the batch for reuse.
func (b *batch) Reset() {
	b.b.Reset()
	b.size = 0
}
