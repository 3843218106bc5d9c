package rawdb

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/dominant-strategies/eth-light-client/ethdb/badgerdb"
	"github.com/dominant-strategies/eth-light-client/ethdb/leveldb"
	"github.com/dominant-strategies/eth-light-client/ethdb/pebble"
	"github.com/dominant-strategies/eth-light-client/log"
)

// Engine names a key-value storage backend.
type Engine string

const (
	EngineLevelDB Engine = "leveldb"
	EnginePebble  Engine = "pebble"
	EngineBadger  Engine = "badger"
	EngineMemory  Engine = "memory"
)

// ErrDatabaseVersion is returned when a store was written with another schema.
var ErrDatabaseVersion = errors.New("incompatible database version")

// ParseEngine resolves a configured storage engine name.
func ParseEngine(name string) (Engine, error) {
	switch engine := Engine(strings.ToLower(strings.TrimSpace(name))); engine {
	case EngineLevelDB, EnginePebble, EngineBadger, EngineMemory:
		return engine, nil
	default:
		return "", fmt.Errorf("unknown database engine %q", name)
	}
}

// OpenOptions configures Open.
type OpenOptions struct {
	Engine    Engine
	Directory string // Root directory; the engine name is appended
	Cache     int    // Megabytes of memory allocated to read caching
	Handles   int    // Number of file handles
}

// NewMemoryDatabase creates an ephemeral in-memory key-value database.
func NewMemoryDatabase() ethdb.KeyValueStore {
	return leveldb.NewMemory()
}

// Open opens the configured key-value store and checks its schema version,
// stamping fresh stores with the current one.
func Open(o OpenOptions, logger log.Logger) (ethdb.KeyValueStore, error) {
	var (
		db  ethdb.KeyValueStore
		err error
	)
	path := filepath.Join(o.Directory, string(o.Engine))
	switch o.Engine {
	case EngineLevelDB:
		db, err = leveldb.New(path, o.Cache, o.Handles, logger)
	case EnginePebble:
		db, err = pebble.New(path, o.Cache, o.Handles, logger)
	case EngineBadger:
		db, err = badgerdb.New(path, logger)
	case EngineMemory:
		db = NewMemoryDatabase()
	default:
		return nil, fmt.Errorf("unknown database engine %q", o.Engine)
	}
	if err != nil {
		return nil, err
	}
	if err := checkDatabaseVersion(db); err != nil {
		db.Close()
		return nil, err
	}
	logger.WithFields(log.Fields{
		"engine": o.Engine,
		"path":   path,
	}).Info("Opened header database")
	return db, nil
}

func checkDatabaseVersion(db ethdb.KeyValueStore) error {
	version := ReadDatabaseVersion(db)
	if version == nil {
		return WriteDatabaseVersion(db, DatabaseVersion)
	}
	if *version != DatabaseVersion {
		return fmt.Errorf("%w: have %d, want %d", ErrDatabaseVersion, *version, DatabaseVersion)
	}
	return nil
}
