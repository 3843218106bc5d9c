package core

import (
	"fmt"
	"sync"

	"github.com/dominant-strategies/eth-light-client/core/rawdb"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/holiman/uint256"
)

const (
	headerCacheLimit = 512
	numberCacheLimit = 2048
)

// HeaderReader gives read access to the persisted light chain.
type HeaderReader interface {
	// GetHeader retrieves a stored header by hash, nil if unknown.
	GetHeader(hash common.Hash) *types.Header

	// GetHeaderByNumber retrieves the header indexed under a block number.
	GetHeaderByNumber(number uint64) *types.Header

	// Genesis returns the trusted genesis header, nil until set.
	Genesis() *types.Header

	// ChainTip returns a copy of the current tip, nil before the first append.
	ChainTip() *types.ChainTip

	// AuthorityBestNumber returns the best block number reported by the
	// trusted authority.
	AuthorityBestNumber() uint64
}

// StoreTx stages writes of a single Update call.
type StoreTx interface {
	// PutHeader stages a header under its hash and number. Stored headers are
	// immutable, putting a known one fails with ErrKnownHeader.
	PutHeader(header *types.Header) error

	// MutateTip stages a change of the chain tip. The function receives a copy
	// of the current tip, or a zero tip if none exists yet.
	MutateTip(fn func(tip *types.ChainTip) error) error
}

// HeaderStore is the persisted state of the light client.
type HeaderStore interface {
	HeaderReader

	// SetGenesisOnce stores the genesis header unless one is already set.
	SetGenesisOnce(header *types.Header) error

	// SetAuthorityBestNumber records a new authority best number. It never
	// decreases.
	SetAuthorityBestNumber(number uint64) error

	// Update runs fn and commits everything it staged atomically. Nothing is
	// written if fn fails.
	Update(fn func(tx StoreTx) error) error
}

// HeaderChain implements HeaderStore on top of a key-value database, caching
// recently used headers in memory.
type HeaderChain struct {
	db ethdb.KeyValueStore

	genesisHeader *types.Header
	tip           *types.ChainTip
	authBest      uint64

	headerCache *lru.Cache[common.Hash, *types.Header] // Cache for the most recent block headers
	numberCache *lru.Cache[uint64, common.Hash]        // Cache for the most recent block numbers

	headermu sync.RWMutex

	logger log.Logger
}

var _ HeaderStore = (*HeaderChain)(nil)

// NewHeaderStore loads the light chain persisted in db.
func NewHeaderStore(db ethdb.KeyValueStore, logger log.Logger) (*HeaderChain, error) {
	headerCache, err := lru.New[common.Hash, *types.Header](headerCacheLimit)
	if err != nil {
		return nil, err
	}
	numberCache, err := lru.New[uint64, common.Hash](numberCacheLimit)
	if err != nil {
		return nil, err
	}
	hc := &HeaderChain{
		db:            db,
		genesisHeader: rawdb.ReadGenesisHeader(db),
		tip:           rawdb.ReadChainTip(db),
		authBest:      rawdb.ReadAuthorityBestNumber(db),
		headerCache:   headerCache,
		numberCache:   numberCache,
		logger:        logger,
	}
	fields := log.Fields{"authorityBest": hc.authBest}
	if hc.genesisHeader != nil {
		fields["genesis"] = hc.genesisHeader.Hash()
	}
	if hc.tip != nil {
		fields["tip"] = hc.tip.Number
	}
	logger.WithFields(fields).Info("Loaded header store")
	return hc, nil
}

// GetHeader retrieves a copy of a block header from the database by hash,
// caching it if found.
func (hc *HeaderChain) GetHeader(hash common.Hash) *types.Header {
	hc.headermu.RLock()
	defer hc.headermu.RUnlock()
	return copyHeaderOrNil(hc.getHeader(hash))
}

func (hc *HeaderChain) getHeader(hash common.Hash) *types.Header {
	// Short circuit if the header's already in the cache, retrieve otherwise
	if header, ok := hc.headerCache.Get(hash); ok {
		return header
	}
	header := rawdb.ReadHeader(hc.db, hash)
	if header == nil {
		return nil
	}
	// Cache the found header for next time and return
	hc.headerCache.Add(hash, header)
	return header
}

// GetHeaderByNumber retrieves a block header from the database by number,
// caching it (associated with its hash) if found.
func (hc *HeaderChain) GetHeaderByNumber(number uint64) *types.Header {
	hc.headermu.RLock()
	defer hc.headermu.RUnlock()

	hash, ok := hc.numberCache.Get(number)
	if !ok {
		hash = rawdb.ReadCanonicalHash(hc.db, number)
		if hash == (common.Hash{}) {
			return nil
		}
		hc.numberCache.Add(number, hash)
	}
	return copyHeaderOrNil(hc.getHeader(hash))
}

// Genesis returns a copy of the trusted genesis header.
func (hc *HeaderChain) Genesis() *types.Header {
	hc.headermu.RLock()
	defer hc.headermu.RUnlock()
	return copyHeaderOrNil(hc.genesisHeader)
}

// copyHeaderOrNil keeps callers from mutating cached headers.
func copyHeaderOrNil(header *types.Header) *types.Header {
	if header == nil {
		return nil
	}
	return types.CopyHeader(header)
}

// ChainTip returns a copy of the current tip.
func (hc *HeaderChain) ChainTip() *types.ChainTip {
	hc.headermu.RLock()
	defer hc.headermu.RUnlock()
	if hc.tip == nil {
		return nil
	}
	return hc.tip.Copy()
}

// AuthorityBestNumber returns the last reported authority best number.
func (hc *HeaderChain) AuthorityBestNumber() uint64 {
	hc.headermu.RLock()
	defer hc.headermu.RUnlock()
	return hc.authBest
}

// SetGenesisOnce stores header as genesis and indexes it like any other
// header, so that its children find their parent.
func (hc *HeaderChain) SetGenesisOnce(header *types.Header) error {
	hc.headermu.Lock()
	defer hc.headermu.Unlock()

	if hc.genesisHeader != nil {
		return fmt.Errorf("%w: have %s", ErrGenesisSetFailed, hc.genesisHeader.Hash())
	}
	genesis := types.CopyHeader(header)

	batch := hc.db.NewBatch()
	if err := rawdb.WriteGenesisHeader(batch, genesis); err != nil {
		return err
	}
	if err := rawdb.WriteHeader(batch, genesis); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("commit genesis header: %w", err)
	}
	hc.genesisHeader = genesis
	hc.headerCache.Add(genesis.Hash(), genesis)
	hc.numberCache.Add(genesis.Number, genesis.Hash())
	return nil
}

// SetAuthorityBestNumber persists a new authority best number.
func (hc *HeaderChain) SetAuthorityBestNumber(number uint64) error {
	hc.headermu.Lock()
	defer hc.headermu.Unlock()

	if number < hc.authBest {
		return fmt.Errorf("%w: have %d, new %d", ErrAuthBestNumberUF, hc.authBest, number)
	}
	if err := rawdb.WriteAuthorityBestNumber(hc.db, number); err != nil {
		return err
	}
	hc.authBest = number
	return nil
}

// Update stages the writes of fn in a single database batch and commits them
// together. Readers observe either none or all of them.
func (hc *HeaderChain) Update(fn func(tx StoreTx) error) error {
	hc.headermu.Lock()
	defer hc.headermu.Unlock()

	tx := &storeTx{hc: hc, batch: hc.db.NewBatch()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.batch.Write(); err != nil {
		return fmt.Errorf("commit header batch: %w", err)
	}
	for _, header := range tx.headers {
		hc.headerCache.Add(header.Hash(), header)
		hc.numberCache.Add(header.Number, header.Hash())
	}
	if tx.tip != nil {
		hc.tip = tx.tip
	}
	return nil
}

// storeTx collects the writes of one Update call. It is only valid while the
// header lock is held.
type storeTx struct {
	hc      *HeaderChain
	batch   ethdb.Batch
	headers []*types.Header
	tip     *types.ChainTip
}

func (tx *storeTx) PutHeader(header *types.Header) error {
	hash := header.Hash()
	for _, staged := range tx.headers {
		if staged.Hash() == hash {
			return fmt.Errorf("%w: %s", ErrKnownHeader, hash)
		}
	}
	if tx.hc.getHeader(hash) != nil {
		return fmt.Errorf("%w: %s", ErrKnownHeader, hash)
	}
	header = types.CopyHeader(header)
	if err := rawdb.WriteHeader(tx.batch, header); err != nil {
		return err
	}
	tx.headers = append(tx.headers, header)
	return nil
}

func (tx *storeTx) MutateTip(fn func(tip *types.ChainTip) error) error {
	var tip *types.ChainTip
	switch {
	case tx.tip != nil:
		tip = tx.tip.Copy()
	case tx.hc.tip != nil:
		tip = tx.hc.tip.Copy()
	default:
		tip = &types.ChainTip{TotalDifficulty: new(uint256.Int)}
	}
	if tip.TotalDifficulty == nil {
		tip.TotalDifficulty = new(uint256.Int)
	}
	if err := fn(tip); err != nil {
		return err
	}
	if err := rawdb.WriteChainTip(tx.batch, tip); err != nil {
		return err
	}
	tx.tip = tip
	return nil
}
