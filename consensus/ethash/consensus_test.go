package ethash

import (
	"math/big"
	"testing"

	"github.com/dominant-strategies/eth-light-client/consensus/misc"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// mainnetGenesis holds the fields of the mainnet genesis header that the
// difficulty and basic checks look at.
func mainnetGenesis() *types.Header {
	return &types.Header{
		BlockHash:  common.HexToHash("0xd4e56740f876aef8c010b86a40d5f56745a118d0906a34e69aec8c0db1cb8fa3"),
		UncleHash:  types.EmptyUncleHash,
		Difficulty: big.NewInt(17179869184),
		Number:     0,
		GasLimit:   5000,
		Time:       0,
	}
}

func mainnetBlock1() *types.Header {
	return &types.Header{
		BlockHash:   common.HexToHash("0x88e96d4537bea4d9c05d12549907b32561d3bf31f45aae734cdc119f13406cb6"),
		ParentHash:  common.HexToHash("0xd4e56740f876aef8c010b86a40d5f56745a118d0906a34e69aec8c0db1cb8fa3"),
		UncleHash:   types.EmptyUncleHash,
		Coinbase:    common.HexToAddress("0x05a56e2d52c817161883f50c441c3228cfe54d9f"),
		Root:        common.HexToHash("0xd67e4d450343046425ae4271474353857ab860dbc0a1dde64b41b5cd3a532bf3"),
		TxHash:      types.EmptyRootHash,
		ReceiptHash: types.EmptyRootHash,
		Difficulty:  big.NewInt(17171480576),
		Number:      1,
		GasLimit:    5000,
		Time:        1438269988,
		Extra:       hexutil.MustDecode("0x476574682f76312e302e302f6c696e75782f676f312e342e32"),
		Seal: types.EncodeEthashSeal(
			common.HexToHash("0x969b900de27b6ac6a67742365dd65f55a0526c41fd18e1b16f1a1215c2e66f59"),
			ethtypes.EncodeNonce(0x539bd4979fef1ec4),
		),
	}
}

func TestCalcDifficulty(t *testing.T) {
	uncles := common.HexToHash("0x01")
	tests := []struct {
		name   string
		config *params.EthashParams
		parent *types.Header
		time   uint64
		want   int64
	}{
		{
			name:   "frontier mainnet block 1",
			config: params.MainnetEthashParams,
			parent: mainnetGenesis(),
			time:   1438269988,
			want:   17171480576,
		},
		{
			name:   "frontier mainnet block 2",
			config: params.MainnetEthashParams,
			parent: &types.Header{Number: 1, Time: 1438269988, Difficulty: big.NewInt(17171480576), UncleHash: types.EmptyUncleHash},
			time:   1438270017,
			want:   17163096064,
		},
		{
			name:   "frontier fast block",
			config: params.MainnetEthashParams,
			parent: mainnetGenesis(),
			time:   5,
			want:   17188257792,
		},
		{
			name:   "homestead with bomb",
			config: params.MainnetEthashParams,
			parent: &types.Header{Number: 1_150_000, Time: 1000, Difficulty: big.NewInt(20_480_000_000), UncleHash: types.EmptyUncleHash},
			time:   1025,
			want:   20_470_000_512,
		},
		{
			name:   "byzantium steady",
			config: params.TestEthashParams,
			parent: &types.Header{Number: 10, Time: 100, Difficulty: big.NewInt(2_048_000), UncleHash: types.EmptyUncleHash},
			time:   105,
			want:   2_049_000,
		},
		{
			name:   "byzantium slow",
			config: params.TestEthashParams,
			parent: &types.Header{Number: 10, Time: 100, Difficulty: big.NewInt(2_048_000), UncleHash: types.EmptyUncleHash},
			time:   200,
			want:   2_038_000,
		},
		{
			name:   "byzantium parent with uncles",
			config: params.TestEthashParams,
			parent: &types.Header{Number: 10, Time: 100, Difficulty: big.NewInt(2_048_000), UncleHash: uncles},
			time:   105,
			want:   2_050_000,
		},
		{
			name:   "byzantium adjustment floor",
			config: params.TestEthashParams,
			parent: &types.Header{Number: 10, Time: 100, Difficulty: big.NewInt(2_048_000), UncleHash: types.EmptyUncleHash},
			time:   100_000,
			want:   1_949_000,
		},
		{
			name:   "byzantium delayed bomb",
			config: params.MainnetEthashParams,
			parent: &types.Header{Number: 5_000_000, Time: 100, Difficulty: big.NewInt(2_048_000_000), UncleHash: types.EmptyUncleHash},
			time:   109,
			want:   2_048_262_144,
		},
		{
			name:   "minimum difficulty",
			config: params.TestEthashParams,
			parent: &types.Header{Number: 10, Time: 100, Difficulty: big.NewInt(1), UncleHash: types.EmptyUncleHash},
			time:   10_000,
			want:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			have := CalcDifficulty(tt.config, tt.time, tt.parent)
			require.Equal(t, big.NewInt(tt.want).String(), have.String())
		})
	}
}

func TestVerifyBlockBasic(t *testing.T) {
	require.NoError(t, VerifyBlockBasic(params.MainnetEthashParams, mainnetBlock1(), mainnetGenesis()))

	tampered := mainnetBlock1()
	tampered.Seal = types.EncodeEthashSeal(common.HexToHash("0x01"), ethtypes.EncodeNonce(0x539bd4979fef1ec4))
	require.ErrorIs(t, VerifyBlockBasic(params.MainnetEthashParams, tampered, mainnetGenesis()), ErrInvalidPoW)

	// An unparsable seal is left for the full proof-of-work check.
	unsealed := mainnetBlock1()
	unsealed.Seal = nil
	require.NoError(t, VerifyBlockBasic(params.MainnetEthashParams, unsealed, mainnetGenesis()))

	parent := &types.Header{Number: 1, Time: 100, Difficulty: big.NewInt(1), GasLimit: 8_000_000}
	valid := func() *types.Header {
		return &types.Header{Number: 2, Time: 110, Difficulty: big.NewInt(1), GasLimit: 8_000_000, GasUsed: 21_000}
	}
	require.NoError(t, VerifyBlockBasic(params.TestEthashParams, valid(), parent))

	tests := map[string]struct {
		mutate func(h *types.Header)
		err    error
	}{
		"same timestamp":    {func(h *types.Header) { h.Time = parent.Time }, ErrOlderBlockTime},
		"older timestamp":   {func(h *types.Header) { h.Time = parent.Time - 1 }, ErrOlderBlockTime},
		"zero difficulty":   {func(h *types.Header) { h.Difficulty = big.NewInt(0) }, ErrInvalidDifficulty},
		"no difficulty":     {func(h *types.Header) { h.Difficulty = nil }, ErrInvalidDifficulty},
		"long extra":        {func(h *types.Header) { h.Extra = make([]byte, 33) }, ErrExtraDataTooLong},
		"gas used":          {func(h *types.Header) { h.GasUsed = h.GasLimit + 1 }, ErrInvalidGasUsed},
		"gas limit jump":    {func(h *types.Header) { h.GasLimit = 9_000_000 }, misc.ErrInvalidGasLimit},
		"gas limit ceiling": {func(h *types.Header) { h.GasLimit = params.MaxGasLimit + 1 }, misc.ErrInvalidGasLimit},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := valid()
			tt.mutate(h)
			require.ErrorIs(t, VerifyBlockBasic(params.TestEthashParams, h, parent), tt.err)
		})
	}
}
