// Package badgerdb implements the key-value database layer based on BadgerDB.
package badgerdb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/dominant-strategies/eth-light-client/log"
)

// Database is a persistent key-value store backed by BadgerDB.
type Database struct {
	fn string
	db *badger.DB

	closeOnce sync.Once
	logger    log.Logger
}

// New opens a BadgerDB store rooted at dir.
func New(dir string, logger log.Logger) (*Database, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	logger.WithField("database", dir).Info("Opened badger database")
	return &Database{fn: dir, db: db, logger: logger}, nil
}

// NewMemory returns an in-memory BadgerDB store, which loses all data on close.
func NewMemory() *Database {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		panic(err)
	}
	return &Database{fn: "memory", db: db, logger: log.NewNullLogger()}
}

// Close stops the database.
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
	err := d.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Get retrieves the given key if it's present in the key-value store.
func (d *Database) Get(key []byte) ([]byte, error) {
	var val []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ethdb.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// Put inserts the given value into the key-value store.
func (d *Database) Put(key []byte, value []byte) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// Delete removes the key from the key-value store.
func (d *Database) Delete(key []byte) error {
	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// NewBatch creates a batch whose changes are applied in a single badger
// transaction on Write.
func (d *Database) NewBatch() ethdb.Batch {
	return &batch{db: d.db}
}

type op struct {
	key, value []byte
	del        bool
}

type batch struct {
	db   *badger.DB
	ops  []op
	size int
}

func (b *batch) Put(key, value []byte) error {
	b.ops = append(b.ops, op{key: append([]byte{}, key...), value: append([]byte{}, value...)})
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	b.ops = append(b.ops, op{key: append([]byte{}, key...), del: true})
	b.size += len(key)
	return nil
}

func (b *batch) ValueSize() int {
	return b.size
}

func (b *batch) Write() error {
	return b.db.Update(func(txn *badger.Txn) error {
		for _, o := range b.ops {
			var err error
			if o.del {
				err = txn.Delete(o.key)
			} else {
				err = txn.Set(o.key, o.value)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *batch) Reset() {
	b.ops = b.ops[:0]
	b.size = 0
}
