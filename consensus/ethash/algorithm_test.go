package ethash

import (
	"bytes"
	"testing"

	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

// Tests that verification caches and mining datasets have the sizes of the
// published ethash tables.
func TestSizeCalculations(t *testing.T) {
	require.Equal(t, uint64(16776896), cacheSize(0))
	require.Equal(t, uint64(16907456), cacheSize(epochLength))
	require.Equal(t, uint64(1073739904), datasetSize(0))
	require.Equal(t, uint64(1082130304), datasetSize(epochLength+1))

	// Sizes only change on epoch boundaries.
	require.Equal(t, cacheSize(0), cacheSize(epochLength-1))
	require.Equal(t, datasetSize(0), datasetSize(epochLength-1))
}

func TestSeedHash(t *testing.T) {
	require.Equal(t, make([]byte, 32), seedHash(0))
	require.Equal(t, make([]byte, 32), seedHash(epochLength-1))
	require.Equal(t,
		hexutil.MustDecode("0x290decd9548b62a8d60345a988386fc84ba6bc95484008f6362f93160ef3e563"),
		seedHash(epochLength),
	)
	require.Equal(t, crypto.Keccak256(seedHash(epochLength)), seedHash(2*epochLength))
}

func TestGenerateCacheDeterministic(t *testing.T) {
	first := make([]uint32, 1024/4)
	generateCache(first, 0, make([]byte, 32), log.NewNullLogger())

	second := make([]uint32, 1024/4)
	generateCache(second, 0, make([]byte, 32), log.NewNullLogger())
	require.Equal(t, first, second)

	other := make([]uint32, 1024/4)
	generateCache(other, 1, seedHash(epochLength), log.NewNullLogger())
	require.NotEqual(t, first, other)
}

func TestHashimotoLight(t *testing.T) {
	cache := make([]uint32, 1024/4)
	generateCache(cache, 0, make([]byte, 32), log.NewNullLogger())

	hash := common.HexToHash("0xc9149cc0386e689d789a1c2f3d5d169a61a6218ed30e74414dc736e442ef3d1f").Bytes()
	digest, result := hashimotoLight(32*1024, cache, hash, 0)
	require.Len(t, digest, common.HashLength)
	require.Len(t, result, common.HashLength)

	again, _ := hashimotoLight(32*1024, cache, hash, 0)
	require.Equal(t, digest, again)

	other, _ := hashimotoLight(32*1024, cache, hash, 1)
	require.False(t, bytes.Equal(digest, other))

	// The final value only depends on the seed and the digest.
	require.Equal(t, result, quickResult(hash, 0, digest))
}

func TestMakeHasher(t *testing.T) {
	data := []byte("ethash")
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	dest := make([]byte, 64)
	keccak512(dest, data)
	require.Equal(t, crypto.Keccak512(data), dest)

	// Reuse must not leak state between runs.
	keccak512(dest, data)
	require.Equal(t, crypto.Keccak512(data), dest)
}
