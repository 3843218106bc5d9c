package ethash

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// Tests that the light verifier reproduces the mix digest of a real mainnet
// block from a full sized epoch cache.
func TestCalcMixHashMainnet(t *testing.T) {
	if testing.Short() {
		t.Skip("full sized cache generation")
	}
	engine := New(Config{CachesInMem: 1}, log.NewNullLogger())
	header := mainnetBlock1()

	mix, err := engine.CalcMixHash(header)
	require.NoError(t, err)
	seal, err := types.ParseEthashSeal(header.Seal)
	require.NoError(t, err)
	require.Equal(t, seal.MixDigest, mix)

	_, result, err := engine.Hashimoto(header.Number, header.SealHash(), seal.Nonce.Uint64())
	require.NoError(t, err)
	target := new(big.Int).Div(two256, header.Difficulty)
	require.True(t, result.Big().Cmp(target) <= 0)
}

func testHeader(number uint64) *types.Header {
	return &types.Header{
		UncleHash:  types.EmptyUncleHash,
		Difficulty: big.NewInt(1),
		Number:     number,
		GasLimit:   8_000_000,
		Time:       number * 10,
		Seal:       types.EncodeEthashSeal(common.Hash{}, ethtypes.EncodeNonce(7)),
	}
}

func TestCalcMixHashTester(t *testing.T) {
	engine := NewTester(log.NewNullLogger())
	header := testHeader(5)

	mix, err := engine.CalcMixHash(header)
	require.NoError(t, err)
	require.NotEqual(t, common.Hash{}, mix)

	digest, _, err := engine.Hashimoto(header.Number, header.SealHash(), 7)
	require.NoError(t, err)
	require.Equal(t, digest, mix)

	// The seal is not part of the hashed input, only its nonce is.
	header.Seal = types.EncodeEthashSeal(mix, ethtypes.EncodeNonce(7))
	again, err := engine.CalcMixHash(header)
	require.NoError(t, err)
	require.Equal(t, mix, again)

	header.Seal = types.EncodeEthashSeal(mix, ethtypes.EncodeNonce(8))
	other, err := engine.CalcMixHash(header)
	require.NoError(t, err)
	require.NotEqual(t, mix, other)

	header.Seal = header.Seal[:1]
	_, err = engine.CalcMixHash(header)
	require.ErrorIs(t, err, types.ErrInvalidSeal)
}

func TestCalcMixHashEpochLimit(t *testing.T) {
	engine := NewTester(log.NewNullLogger())
	_, err := engine.CalcMixHash(testHeader(maxEpoch * epochLength))
	require.ErrorIs(t, err, ErrEpochOutOfRange)
}

func TestFaker(t *testing.T) {
	header := testHeader(1)
	mix := common.HexToHash("0xabcdef")
	header.Seal = types.EncodeEthashSeal(mix, ethtypes.EncodeNonce(1))

	have, err := NewFaker().CalcMixHash(header)
	require.NoError(t, err)
	require.Equal(t, mix, have)
	require.Equal(t, ModeFake, NewFaker().Mode())
}

// Tests that caches persisted to disk are memory mapped back on the next
// start and produce the same digests as in-memory ones.
func TestDiskCache(t *testing.T) {
	dir, err := os.MkdirTemp("", "ethash-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	config := Config{PowMode: ModeTest, CacheDir: dir, CachesInMem: 1, CachesOnDisk: 2}
	header := testHeader(3)

	want, err := NewTester(log.NewNullLogger()).CalcMixHash(header)
	require.NoError(t, err)

	generated, err := New(config, log.NewNullLogger()).CalcMixHash(header)
	require.NoError(t, err)
	require.Equal(t, want, generated)

	files, err := filepath.Glob(filepath.Join(dir, "cache-R*"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	loaded, err := New(config, log.NewNullLogger()).CalcMixHash(header)
	require.NoError(t, err)
	require.Equal(t, want, loaded)
}

func TestLRUFutureItem(t *testing.T) {
	lru := newlru(2, log.NewNullLogger())

	item, future := lru.get(0)
	require.Equal(t, uint64(0), item.epoch)
	require.NotNil(t, future)
	require.Equal(t, uint64(1), future.epoch)

	// The pre-generated future item is handed out once the epoch is reached.
	next, _ := lru.get(1)
	require.Same(t, future, next)

	// Going back does not schedule another future item.
	again, none := lru.get(0)
	require.Same(t, item, again)
	require.Nil(t, none)
}
