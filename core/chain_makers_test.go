// Copyright 2015 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package core

import (
	"math/big"
	"testing"

	"github.com/dominant-strategies/eth-light-client/consensus/ethash"
	"github.com/dominant-strategies/eth-light-client/core/rawdb"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/dominant-strategies/eth-light-client/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

// testEngine is shared by all tests of the package so the verification cache
// is only generated once.
var testEngine = ethash.NewTester(log.NewNullLogger())

// makeGenesis returns an unsealed trusted header at the given height.
func makeGenesis(number uint64) *types.Header {
	header := &types.Header{
		UncleHash:   types.EmptyUncleHash,
		Root:        common.HexToHash("0x01"),
		TxHash:      types.EmptyRootHash,
		ReceiptHash: types.EmptyRootHash,
		Difficulty:  big.NewInt(1),
		Number:      number,
		GasLimit:    8_000_000,
		Time:        1_600_000_000,
		Extra:       []byte("genesis"),
	}
	header.BlockHash = header.ComputeHash()
	return header
}

// makeChain returns n valid sealed successors of parent under the test
// network rules.
func makeChain(t require.TestingT, parent *types.Header, n int) []*types.Header {
	headers, err := GenerateHeaders(params.TestEthashParams, testEngine, parent, n, func(i int, b *HeaderGen) {
		b.SetCoinbase(common.BigToAddress(new(big.Int).SetUint64(b.Number())))
	})
	require.NoError(t, err)
	return headers
}

func makeChild(t require.TestingT, parent *types.Header) *types.Header {
	return makeChain(t, parent, 1)[0]
}

// sealHeader reseals a header after a test mutated it.
func sealHeader(t require.TestingT, header *types.Header) *types.Header {
	require.NoError(t, SealHeader(testEngine, header))
	return header
}

// rehash refreshes the declared hash after a test mutated a header.
func rehash(header *types.Header) *types.Header {
	header.BlockHash = header.ComputeHash()
	return header
}

func newTestStore(t require.TestingT) *HeaderChain {
	hc, err := NewHeaderStore(rawdb.NewMemoryDatabase(), log.NewNullLogger())
	require.NoError(t, err)
	return hc
}

// newTestChain returns a store holding genesis.
func newTestChain(t require.TestingT, genesis *types.Header) *HeaderChain {
	hc := newTestStore(t)
	require.NoError(t, hc.SetGenesisOnce(genesis))
	return hc
}

func TestGenerateHeaders(t *testing.T) {
	genesis := makeGenesis(0)
	root := common.HexToHash("0xfeed")
	headers, err := GenerateHeaders(params.TestEthashParams, testEngine, genesis, 3, func(i int, b *HeaderGen) {
		b.OffsetTime(int64(i))
		b.SetExtra([]byte{byte(i)})
		if i == 1 {
			b.SetReceiptHash(root)
		}
	})
	require.NoError(t, err)
	require.Len(t, headers, 3)

	v := NewHeaderValidator(newTestChain(t, genesis), testEngine, log.NewNullLogger())
	parent := genesis
	for i, header := range headers {
		require.Equal(t, parent.Hash(), header.ParentHash)
		require.Equal(t, parent.Time+10+uint64(i), header.Time)
		require.Equal(t, header.ComputeHash(), header.Hash())
		require.NoError(t, v.CheckDifficulty(header, parent, params.TestEthashParams))
		require.NoError(t, v.CheckPow(header))
		parent = header
	}
	require.Equal(t, root, headers[1].ReceiptHash)
}

func TestSealHeaderRejectsZeroDifficulty(t *testing.T) {
	header := makeGenesis(1)
	header.Difficulty = new(big.Int)
	require.Error(t, SealHeader(testEngine, header))
}
