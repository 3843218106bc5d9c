package core

import (
	"math/big"
	"testing"

	"github.com/dominant-strategies/eth-light-client/consensus/ethash"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/dominant-strategies/eth-light-client/params"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func newTestValidator(store HeaderReader) *HeaderValidator {
	return NewHeaderValidator(store, testEngine, log.NewNullLogger())
}

func TestVerifyBasic(t *testing.T) {
	genesis := makeGenesis(100)
	chain := makeChain(t, genesis, 2)

	t.Run("hash checked first", func(t *testing.T) {
		// Without a genesis the integrity failure still wins.
		v := newTestValidator(newTestStore(t))
		header := types.CopyHeader(chain[0])
		header.BlockHash = common.HexToHash("0xbad")
		_, err := v.VerifyBasic(header)
		require.ErrorIs(t, err, ErrHeaderHashMismatch)

		header = types.CopyHeader(chain[0])
		header.Time++
		_, err = v.VerifyBasic(header)
		require.ErrorIs(t, err, ErrHeaderHashMismatch)
	})
	t.Run("no genesis", func(t *testing.T) {
		v := newTestValidator(newTestStore(t))
		_, err := v.VerifyBasic(chain[0])
		require.ErrorIs(t, err, ErrGenesisHeaderNE)
	})
	t.Run("below genesis", func(t *testing.T) {
		v := newTestValidator(newTestChain(t, genesis))
		_, err := v.VerifyBasic(makeGenesis(50))
		require.ErrorIs(t, err, ErrTooEarly)
	})
	t.Run("unknown parent", func(t *testing.T) {
		v := newTestValidator(newTestChain(t, genesis))
		_, err := v.VerifyBasic(chain[1])
		require.ErrorIs(t, err, ErrPrevHeaderNE)
	})
	t.Run("number mismatch", func(t *testing.T) {
		v := newTestValidator(newTestChain(t, genesis))
		header := types.CopyHeader(chain[0])
		header.Number += 5
		_, err := v.VerifyBasic(rehash(header))
		require.ErrorIs(t, err, ErrBlockNumberMismatch)
	})
	t.Run("valid", func(t *testing.T) {
		v := newTestValidator(newTestChain(t, genesis))
		parent, err := v.VerifyBasic(chain[0])
		require.NoError(t, err)
		require.Equal(t, genesis.Hash(), parent.Hash())
	})
}

func TestCheckDifficulty(t *testing.T) {
	genesis := makeGenesis(0)
	v := newTestValidator(newTestChain(t, genesis))
	config := params.TestEthashParams

	require.NoError(t, v.CheckDifficulty(makeChild(t, genesis), genesis, config))

	tests := map[string]struct {
		mutate  func(header *types.Header)
		wantErr []error
	}{
		"wrong difficulty": {
			mutate:  func(header *types.Header) { header.Difficulty = big.NewInt(2) },
			wantErr: []error{ErrDifficultyVF},
		},
		"older time": {
			mutate:  func(header *types.Header) { header.Time = genesis.Time },
			wantErr: []error{ErrBlockBasicVF, ethash.ErrOlderBlockTime},
		},
		"long extra": {
			mutate:  func(header *types.Header) { header.Extra = make([]byte, params.MaximumExtraDataSize+1) },
			wantErr: []error{ErrBlockBasicVF, ethash.ErrExtraDataTooLong},
		},
		"gas used above limit": {
			mutate:  func(header *types.Header) { header.GasUsed = header.GasLimit + 1 },
			wantErr: []error{ErrBlockBasicVF, ethash.ErrInvalidGasUsed},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			header := makeChild(t, genesis)
			tt.mutate(header)
			header = sealHeader(t, header)
			err := v.CheckDifficulty(header, genesis, config)
			for _, want := range tt.wantErr {
				require.ErrorIs(t, err, want)
			}
		})
	}

	t.Run("seal below target", func(t *testing.T) {
		// A nonce found for difficulty one cannot satisfy a huge one.
		header := makeChild(t, genesis)
		header.Difficulty = new(big.Int).Lsh(big.NewInt(1), 200)
		err := v.CheckDifficulty(rehash(header), genesis, config)
		require.ErrorIs(t, err, ErrBlockBasicVF)
		require.ErrorIs(t, err, ethash.ErrInvalidPoW)
	})
}

func TestCheckPow(t *testing.T) {
	genesis := makeGenesis(0)
	v := newTestValidator(newTestChain(t, genesis))

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.CheckPow(makeChild(t, genesis)))
	})
	t.Run("wrong mix", func(t *testing.T) {
		header := makeChild(t, genesis)
		seal, err := types.ParseEthashSeal(header.Seal)
		require.NoError(t, err)
		header.Seal = types.EncodeEthashSeal(common.Hash{}, seal.Nonce)
		require.ErrorIs(t, v.CheckPow(rehash(header)), ErrMixHashVF)
	})
	t.Run("wrong nonce", func(t *testing.T) {
		header := makeChild(t, genesis)
		seal, err := types.ParseEthashSeal(header.Seal)
		require.NoError(t, err)
		header.Seal = types.EncodeEthashSeal(seal.MixDigest, ethtypes.EncodeNonce(seal.Nonce.Uint64()+1))
		require.ErrorIs(t, v.CheckPow(rehash(header)), ErrMixHashVF)
	})
	t.Run("unparsable seal", func(t *testing.T) {
		header := makeChild(t, genesis)
		header.Seal = header.Seal[:1]
		require.ErrorIs(t, v.CheckPow(rehash(header)), ErrSealParseErr)
	})
	t.Run("epoch out of range", func(t *testing.T) {
		header := makeChild(t, genesis)
		header.Number = 2048 * 30000
		err := v.CheckPow(rehash(header))
		require.ErrorIs(t, err, ErrMixHashCF)
		require.ErrorIs(t, err, ethash.ErrEpochOutOfRange)
	})
}

func TestCheckPrecomputedPow(t *testing.T) {
	genesis := makeGenesis(0)
	v := newTestValidator(newTestChain(t, genesis))
	header := makeChild(t, genesis)

	mix, err := testEngine.CalcMixHash(header)
	require.NoError(t, err)
	require.NoError(t, v.CheckPrecomputedPow(header, mix, nil))
	require.ErrorIs(t, v.CheckPrecomputedPow(header, common.Hash{1}, nil), ErrMixHashVF)
	require.ErrorIs(t, v.CheckPrecomputedPow(header, common.Hash{}, ethash.ErrEpochOutOfRange), ErrMixHashCF)

	broken := types.CopyHeader(header)
	broken.Seal = nil
	require.ErrorIs(t, v.CheckPrecomputedPow(broken, mix, nil), ErrSealParseErr)
}

// Every header of a well formed chain extends the stored one, a header whose
// parent was never stored is rejected.
func TestVerifyBasicLinkage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 8).Draw(t, "n").(int)
		skip := rapid.IntRange(1, n-1).Draw(t, "skip").(int)

		genesis := makeGenesis(rapid.Uint64Range(0, 100_000).Draw(t, "genesis").(uint64))
		chain := makeChain(t, genesis, n)

		hc := newTestChain(t, genesis)
		v := newTestValidator(hc)
		for i, header := range chain[:skip] {
			parent, err := v.VerifyBasic(header)
			if err != nil {
				t.Fatalf("header %d: %v", i, err)
			}
			if i > 0 && parent.Hash() != chain[i-1].Hash() {
				t.Fatalf("header %d: wrong parent %s", i, parent.Hash())
			}
			if err := hc.Update(func(tx StoreTx) error { return tx.PutHeader(header) }); err != nil {
				t.Fatalf("store header %d: %v", i, err)
			}
		}
		if skip+1 < n {
			_, err := v.VerifyBasic(chain[skip+1])
			require.ErrorIs(t, err, ErrPrevHeaderNE)
		}
		_, err := v.VerifyBasic(chain[skip])
		require.NoError(t, err)
	})
}
