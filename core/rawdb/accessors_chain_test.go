package rawdb

import (
	"math/big"
	"testing"

	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func testHeader(number uint64) *types.Header {
	header := &types.Header{
		ParentHash: common.Hash{byte(number)},
		UncleHash:  types.EmptyUncleHash,
		Difficulty: big.NewInt(int64(number) + 1),
		Number:     number,
		GasLimit:   8_000_000,
		Time:       number * 13,
		Seal:       types.EncodeEthashSeal(common.Hash{1}, ethtypes.EncodeNonce(number)),
	}
	header.BlockHash = header.ComputeHash()
	return header
}

// Tests block header storage and retrieval operations.
func TestHeaderStorage(t *testing.T) {
	db := NewMemoryDatabase()

	header := testHeader(42)
	if entry := ReadHeader(db, header.Hash()); entry != nil {
		t.Fatalf("Non existent header returned: %v", entry)
	}
	require.False(t, HasHeader(db, header.Hash()))
	require.Nil(t, ReadHeaderByNumber(db, 42))

	// Write and verify the header in the database
	require.NoError(t, WriteHeader(db, header))
	require.True(t, HasHeader(db, header.Hash()))

	entry := ReadHeader(db, header.Hash())
	require.NotNil(t, entry)
	require.Equal(t, header.Hash(), entry.Hash())
	require.Equal(t, header.ComputeHash(), entry.ComputeHash())

	require.Equal(t, header.Hash(), ReadCanonicalHash(db, 42))
	byNumber := ReadHeaderByNumber(db, 42)
	require.NotNil(t, byNumber)
	require.Equal(t, header.Hash(), byNumber.Hash())
	require.Nil(t, ReadHeaderByNumber(db, 43))
}

func TestCorruptHeader(t *testing.T) {
	db := NewMemoryDatabase()
	hash := common.Hash{0xaa}
	require.NoError(t, db.Put(headerKey(hash), []byte{0xc0, 0x01}))
	require.Nil(t, ReadHeader(db, hash))
}

func TestGenesisHeaderStorage(t *testing.T) {
	db := NewMemoryDatabase()
	require.Nil(t, ReadGenesisHeader(db))

	genesis := testHeader(0)
	require.NoError(t, WriteGenesisHeader(db, genesis))

	stored := ReadGenesisHeader(db)
	require.NotNil(t, stored)
	require.Equal(t, genesis.Hash(), stored.Hash())
	// The genesis slot does not index the header by hash.
	require.False(t, HasHeader(db, genesis.Hash()))
}

func TestChainTipStorage(t *testing.T) {
	db := NewMemoryDatabase()
	require.Nil(t, ReadChainTip(db))

	td := new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	tip := &types.ChainTip{
		Hash:            common.Hash{1},
		Number:          7,
		ParentHash:      common.Hash{2},
		TotalDifficulty: td,
	}
	require.NoError(t, WriteChainTip(db, tip))
	require.Equal(t, tip, ReadChainTip(db))

	// A missing total difficulty is stored as zero.
	require.NoError(t, WriteChainTip(db, &types.ChainTip{Number: 1}))
	require.True(t, ReadChainTip(db).TotalDifficulty.IsZero())
}

func TestMetadataStorage(t *testing.T) {
	db := NewMemoryDatabase()

	require.Nil(t, ReadDatabaseVersion(db))
	require.NoError(t, WriteDatabaseVersion(db, 3))
	require.Equal(t, uint64(3), *ReadDatabaseVersion(db))

	require.Zero(t, ReadAuthorityBestNumber(db))
	require.NoError(t, WriteAuthorityBestNumber(db, 1_000_000))
	require.Equal(t, uint64(1_000_000), ReadAuthorityBestNumber(db))
}

// Tests that every engine can be opened through the same entry point and
// that stores from another schema version are refused.
func TestOpen(t *testing.T) {
	for _, engine := range []Engine{EngineLevelDB, EnginePebble, EngineBadger, EngineMemory} {
		t.Run(string(engine), func(t *testing.T) {
			dir := t.TempDir()
			opts := OpenOptions{Engine: engine, Directory: dir}

			db, err := Open(opts, log.NewNullLogger())
			require.NoError(t, err)
			require.Equal(t, DatabaseVersion, *ReadDatabaseVersion(db))
			if engine == EngineMemory {
				require.NoError(t, db.Close())
				return
			}
			require.NoError(t, WriteDatabaseVersion(db, DatabaseVersion+1))
			require.NoError(t, db.Close())

			_, err = Open(opts, log.NewNullLogger())
			require.ErrorIs(t, err, ErrDatabaseVersion)
		})
	}
}

func TestParseEngine(t *testing.T) {
	engine, err := ParseEngine(" Pebble ")
	require.NoError(t, err)
	require.Equal(t, EnginePebble, engine)

	_, err = ParseEngine("rocksdb")
	require.Error(t, err)
}

var _ ethdb.KeyValueStore = NewMemoryDatabase()
