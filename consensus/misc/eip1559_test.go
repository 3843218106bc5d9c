// Copyright 2021 The go-ethereum Authors
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

package misc

import (
	"math/big"
	"testing"

	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/params"
	"github.com/stretchr/testify/require"
)

// config returns a copy of the test parameters with London at block 5.
func config() *params.EthashParams {
	config := *params.TestEthashParams
	config.LondonBlock = big.NewInt(5)
	return &config
}

// TestBlockGasLimits tests the gasLimit checks for blocks both across
// the EIP-1559 boundary and post-1559 blocks
func TestBlockGasLimits(t *testing.T) {
	initial := new(big.Int).SetUint64(params.InitialBaseFee)

	for i, tc := range []struct {
		pGasLimit uint64
		pNum      uint64
		gasLimit  uint64
		ok        bool
	}{
		// Transitions from non-london to london
		{10000000, 4, 20000000, true},  // No change
		{10000000, 4, 20019530, true},  // Upper limit
		{10000000, 4, 20019531, false}, // Upper +1
		{10000000, 4, 19980470, true},  // Lower limit
		{10000000, 4, 19980469, false}, // Lower limit -1
		// London to London
		{20000000, 5, 20000000, true},
		{20000000, 5, 20019530, true},  // Upper limit
		{20000000, 5, 20019531, false}, // Upper limit +1
		{20000000, 5, 19980470, true},  // Lower limit
		{20000000, 5, 19980469, false}, // Lower limit -1
		{40000000, 5, 40039061, true},  // Upper limit
		{40000000, 5, 40039062, false}, // Upper limit +1
		{40000000, 5, 39960939, true},  // lower limit
		{40000000, 5, 39960938, false}, // Lower limit -1
	} {
		parent := &types.Header{
			GasUsed:  tc.pGasLimit / 2,
			GasLimit: tc.pGasLimit,
			BaseFee:  initial,
			Number:   tc.pNum,
		}
		header := &types.Header{
			GasUsed:  tc.gasLimit / 2,
			GasLimit: tc.gasLimit,
			BaseFee:  initial,
			Number:   tc.pNum + 1,
		}
		err := VerifyEip1559Header(config(), parent, header)
		if tc.ok {
			require.NoError(t, err, "test %d", i)
		} else {
			require.ErrorIs(t, err, ErrInvalidGasLimit, "test %d", i)
		}
	}
}

func TestGasLimitBounds(t *testing.T) {
	parent := &types.Header{Number: 1, GasLimit: params.MinGasLimit}
	header := &types.Header{Number: 2, GasLimit: params.MinGasLimit - 1}
	require.ErrorIs(t, VerifyGasLimitTransition(params.TestEthashParams, parent, header), ErrInvalidGasLimit)

	header.GasLimit = params.MaxGasLimit + 1
	require.ErrorIs(t, VerifyGasLimitTransition(params.TestEthashParams, parent, header), ErrInvalidGasLimit)
}

func TestMissingBaseFee(t *testing.T) {
	parent := &types.Header{Number: 5, GasLimit: 20000000, GasUsed: 10000000, BaseFee: big.NewInt(params.InitialBaseFee)}
	header := &types.Header{Number: 6, GasLimit: 20000000}
	require.ErrorIs(t, VerifyEip1559Header(config(), parent, header), ErrInvalidBaseFee)

	header.BaseFee = big.NewInt(1)
	require.ErrorIs(t, VerifyEip1559Header(config(), parent, header), ErrInvalidBaseFee)
}

// TestCalcBaseFee assumes all blocks are 1559-blocks
func TestCalcBaseFee(t *testing.T) {
	tests := []struct {
		parentBaseFee   int64
		parentGasLimit  uint64
		parentGasUsed   uint64
		expectedBaseFee int64
	}{
		{params.InitialBaseFee, 20000000, 10000000, params.InitialBaseFee}, // usage == target
		{params.InitialBaseFee, 20000000, 9000000, 987500000},              // usage below target
		{params.InitialBaseFee, 20000000, 11000000, 1012500000},            // usage above target
	}
	for i, test := range tests {
		parent := &types.Header{
			Number:   32,
			GasLimit: test.parentGasLimit,
			GasUsed:  test.parentGasUsed,
			BaseFee:  big.NewInt(test.parentBaseFee),
		}
		if have, want := CalcBaseFee(config(), parent), big.NewInt(test.expectedBaseFee); have.Cmp(want) != 0 {
			t.Errorf("test %d: have %d  want %d, ", i, have, want)
		}
	}
	// The first London block starts from the initial base fee.
	parent := &types.Header{Number: 3, GasLimit: 10000000}
	require.Equal(t, int64(params.InitialBaseFee), CalcBaseFee(config(), parent).Int64())
}
