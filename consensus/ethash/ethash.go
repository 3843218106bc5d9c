// Package ethash implements the ethash proof-of-work verification rules used
// by the light client.
package ethash

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"unsafe"

	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	mmap "github.com/edsrzf/mmap-go"
	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

var (
	// algorithmRevision is the data structure version used for file naming.
	algorithmRevision = 23
	// dumpMagic is a dataset dump header to sanity check a data dump.
	dumpMagic = []uint32{0xbaddcafe, 0xfee1dead}
)

var (
	// ErrInvalidDumpMagic is returned when a memory mapped cache file does not
	// start with the expected header.
	ErrInvalidDumpMagic = errors.New("invalid dump magic")

	// ErrEpochOutOfRange is returned when a header lies in an epoch whose
	// verification cache is not supported.
	ErrEpochOutOfRange = errors.New("epoch out of range")
)

// isLittleEndian returns whether the local system is running in little or big
// endian byte order.
func isLittleEndian() bool {
	n := uint32(0x01020304)
	return *(*byte)(unsafe.Pointer(&n)) == 0x04
}

// memoryMap tries to memory map a file of uint32s for read only access.
func memoryMap(path string, lock bool) (*os.File, mmap.MMap, []uint32, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, nil, nil, err
	}
	mem, buffer, err := memoryMapFile(file, false)
	if err != nil {
		file.Close()
		return nil, nil, nil, err
	}
	for i, magic := range dumpMagic {
		if buffer[i] != magic {
			mem.Unmap()
			file.Close()
			return nil, nil, nil, ErrInvalidDumpMagic
		}
	}
	if lock {
		if err := mem.Lock(); err != nil {
			mem.Unmap()
			file.Close()
			return nil, nil, nil, err
		}
	}
	return file, mem, buffer[len(dumpMagic):], err
}

// memoryMapFile tries to memory map an already opened file descriptor.
func memoryMapFile(file *os.File, write bool) (mmap.MMap, []uint32, error) {
	// Try to memory map the file
	flag := mmap.RDONLY
	if write {
		flag = mmap.RDWR
	}
	mem, err := mmap.Map(file, flag, 0)
	if err != nil {
		return nil, nil, err
	}
	if len(mem) < len(dumpMagic)*4 {
		mem.Unmap()
		return nil, nil, ErrInvalidDumpMagic
	}
	// Yay, we managed to memory map the file, here be dragons
	return mem, unsafe.Slice((*uint32)(unsafe.Pointer(&mem[0])), len(mem)/4), nil
}

// memoryMapAndGenerate tries to memory map a temporary file of uint32s for write
// access, fill it with the data from a generator and then move it into the final
// path requested.
func memoryMapAndGenerate(path string, size uint64, lock bool, generator func(buffer []uint32)) (*os.File, mmap.MMap, []uint32, error) {
	// Ensure the data folder exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, nil, err
	}
	// Create a huge temporary empty file to fill with data
	temp := path + "." + strconv.Itoa(rand.Int())

	dump, err := os.Create(temp)
	if err != nil {
		return nil, nil, nil, err
	}
	if err = dump.Truncate(int64(len(dumpMagic))*4 + int64(size)); err != nil {
		dump.Close()
		return nil, nil, nil, err
	}
	// Memory map the file for writing and fill it with the generator
	mem, buffer, err := memoryMapFile(dump, true)
	if err != nil {
		dump.Close()
		return nil, nil, nil, err
	}
	copy(buffer, dumpMagic)

	data := buffer[len(dumpMagic):]
	generator(data)

	if err := mem.Unmap(); err != nil {
		return nil, nil, nil, err
	}
	if err := dump.Close(); err != nil {
		return nil, nil, nil, err
	}
	if err := os.Rename(temp, path); err != nil {
		return nil, nil, nil, err
	}
	return memoryMap(path, lock)
}

// Mode defines the type and amount of PoW verification an ethash engine makes.
type Mode uint

const (
	ModeNormal Mode = iota
	ModeTest
	ModeFake
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeTest:
		return "test"
	case ModeFake:
		return "fake"
	}
	return "unknown"
}

// Config are the configuration parameters of the ethash verifier.
type Config struct {
	PowMode Mode

	CacheDir       string
	CachesInMem    int
	CachesOnDisk   int
	CachesLockMmap bool
}

// Ethash computes ethash mix digests from per-epoch verification caches.
// It is safe for concurrent use.
type Ethash struct {
	config Config

	caches *lru // In memory caches to avoid regenerating too often

	logger log.Logger
}

// New creates an ethash verifier with full sized caches.
func New(config Config, logger log.Logger) *Ethash {
	if config.CachesInMem <= 0 {
		logger.WithField("requested", config.CachesInMem).Warn("Invalid ethash caches in memory, defaulting to 1")
		config.CachesInMem = 1
	}
	if config.CacheDir != "" && config.CachesOnDisk > 0 {
		logger.WithFields(log.Fields{
			"dir":   config.CacheDir,
			"count": config.CachesOnDisk,
		}).Info("Disk storage enabled for ethash caches")
	}
	return &Ethash{
		config: config,
		caches: newlru(config.CachesInMem, logger),
		logger: logger,
	}
}

// NewTester creates a small sized ethash verifier useful only for testing
// purposes.
func NewTester(logger log.Logger) *Ethash {
	return New(Config{PowMode: ModeTest, CachesInMem: 1}, logger)
}

// NewFaker creates an ethash verifier that trusts the mix digest carried in
// the seal of every header.
func NewFaker() *Ethash {
	return &Ethash{
		config: Config{PowMode: ModeFake},
		logger: log.NewNullLogger(),
	}
}

// Mode returns the verification mode the engine runs in.
func (ethash *Ethash) Mode() Mode {
	return ethash.config.PowMode
}

// lru tracks caches by their last use time, keeping at most N of them.
type lru struct {
	mu sync.Mutex
	// Items are kept in a LRU cache, but there is a special case:
	// We always keep an item for (highest seen epoch) + 1 as the 'future item'.
	cache      *simplelru.LRU[uint64, *cache]
	future     uint64
	futureItem *cache

	logger log.Logger
}

// newlru create a new least-recently-used cache for the verification caches.
func newlru(maxItems int, logger log.Logger) *lru {
	if maxItems <= 0 {
		maxItems = 1
	}
	cache, _ := simplelru.NewLRU[uint64, *cache](maxItems, func(epoch uint64, _ *cache) {
		logger.WithField("epoch", epoch).Trace("Evicted ethash cache")
	})
	return &lru{cache: cache, logger: logger}
}

// get retrieves or creates an item for the given epoch. The first return value is always
// non-nil. The second return value is non-nil if lru thinks that an item will be useful in
// the near future.
func (lru *lru) get(epoch uint64) (item, future *cache) {
	lru.mu.Lock()
	defer lru.mu.Unlock()

	// Get or create the item for the requested epoch.
	item, ok := lru.cache.Get(epoch)
	if !ok {
		if lru.future > 0 && lru.future == epoch {
			item = lru.futureItem
		} else {
			lru.logger.WithField("epoch", epoch).Trace("Requiring new ethash cache")
			item = &cache{epoch: epoch}
		}
		lru.cache.Add(epoch, item)
	}
	// Update the 'future item' if epoch is larger than previously seen.
	if epoch < maxEpoch-1 && lru.future < epoch+1 {
		lru.logger.WithField("epoch", epoch+1).Trace("Requiring new future ethash cache")
		future = &cache{epoch: epoch + 1}
		lru.future = epoch + 1
		lru.futureItem = future
	}
	return item, future
}

// cache wraps an ethash cache with some metadata to allow easier concurrent use.
type cache struct {
	epoch uint64    // Epoch for which this cache is relevant
	dump  *os.File  // File descriptor of the memory mapped cache
	mmap  mmap.MMap // Memory map itself to unmap before releasing
	cache []uint32  // The actual cache data content (may be memory mapped)
	once  sync.Once // Ensures the cache is generated only once
}

// generate ensures that the cache content is generated before use.
func (c *cache) generate(dir string, limit int, lock bool, test bool, logger log.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(log.Fields{
				"error":      r,
				"stacktrace": string(debug.Stack()),
			}).Error("Ethash cache generation panicked")
		}
	}()
	c.once.Do(func() {
		size := cacheSize(c.epoch*epochLength + 1)
		seed := seedHash(c.epoch*epochLength + 1)
		if test {
			size = 1024
		}
		// If we don't store anything on disk, generate and return.
		if dir == "" || limit <= 0 {
			c.cache = make([]uint32, size/4)
			generateCache(c.cache, c.epoch, seed, logger)
			return
		}
		// Disk storage is needed, this will get fancy
		var endian string
		if !isLittleEndian() {
			endian = ".be"
		}
		path := filepath.Join(dir, fmt.Sprintf("cache-R%d-%x%s", algorithmRevision, seed[:8], endian))
		if test {
			path += ".test"
		}
		// We're about to mmap the file, ensure that the mapping is cleaned up when the
		// cache becomes unused.
		runtime.SetFinalizer(c, (*cache).finalizer)

		// Try to load the file from disk and memory map it
		var err error
		c.dump, c.mmap, c.cache, err = memoryMap(path, lock)
		if err == nil {
			logger.WithField("epoch", c.epoch).Debug("Loaded old ethash cache from disk")
			return
		}
		logger.WithField("err", err).Debug("Failed to load old ethash cache from disk")

		// No previous cache available, create a new cache file to fill
		c.dump, c.mmap, c.cache, err = memoryMapAndGenerate(path, size, lock, func(buffer []uint32) { generateCache(buffer, c.epoch, seed, logger) })
		if err != nil {
			logger.WithField("err", err).Error("Failed to generate mapped ethash cache")

			c.cache = make([]uint32, size/4)
			generateCache(c.cache, c.epoch, seed, logger)
		}
		// Iterate over all previous instances and delete old ones
		for ep := int(c.epoch) - limit; ep >= 0; ep-- {
			seed := seedHash(uint64(ep)*epochLength + 1)
			path := filepath.Join(dir, fmt.Sprintf("cache-R%d-%x%s", algorithmRevision, seed[:8], endian))
			os.Remove(path)
		}
	})
}

// finalizer unmaps the memory and closes the file.
func (c *cache) finalizer() {
	if c.mmap != nil {
		c.mmap.Unmap()
		c.dump.Close()
		c.mmap, c.dump = nil, nil
	}
}

// cache tries to retrieve a verification cache for the specified block number
// by first checking against a list of in-memory caches, then against caches
// stored on disk, and finally generating one if none can be found.
func (ethash *Ethash) cache(block uint64) *cache {
	epoch := block / epochLength
	current, future := ethash.caches.get(epoch)

	// Wait for generation finish.
	current.generate(ethash.config.CacheDir, ethash.config.CachesOnDisk, ethash.config.CachesLockMmap, ethash.config.PowMode == ModeTest, ethash.logger)

	// If we need a new future cache, now's a good time to regenerate it.
	if future != nil {
		go future.generate(ethash.config.CacheDir, ethash.config.CachesOnDisk, ethash.config.CachesLockMmap, ethash.config.PowMode == ModeTest, ethash.logger)
	}
	return current
}

// Hashimoto runs the light ethash algorithm for a header at the given height,
// returning the mix digest and the final PoW value.
func (ethash *Ethash) Hashimoto(number uint64, sealHash common.Hash, nonce uint64) (common.Hash, common.Hash, error) {
	if epoch := number / epochLength; epoch >= maxEpoch {
		return common.Hash{}, common.Hash{}, fmt.Errorf("%w: epoch %d, limit %d", ErrEpochOutOfRange, epoch, maxEpoch)
	}
	cache := ethash.cache(number)

	size := datasetSize(number)
	if ethash.config.PowMode == ModeTest {
		size = 32 * 1024
	}
	digest, result := hashimotoLight(size, cache.cache, sealHash.Bytes(), nonce)

	// Caches are unmapped in a finalizer. Ensure that the cache stays alive
	// until after the call to hashimotoLight so it's not unmapped while being used.
	runtime.KeepAlive(cache)

	return common.BytesToHash(digest), common.BytesToHash(result), nil
}

// CalcMixHash recomputes the mix digest committed to by the seal of header.
func (ethash *Ethash) CalcMixHash(header *types.Header) (common.Hash, error) {
	seal, err := types.ParseEthashSeal(header.Seal)
	if err != nil {
		return common.Hash{}, err
	}
	if ethash.config.PowMode == ModeFake {
		return seal.MixDigest, nil
	}
	digest, _, err := ethash.Hashimoto(header.Number, header.SealHash(), seal.Nonce.Uint64())
	return digest, err
}
