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
	"fmt"
	"math/big"

	"github.com/dominant-strategies/eth-light-client/consensus/ethash"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/params"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

// HeaderGen creates headers for testing.
// See GenerateHeaders for a detailed explanation.
type HeaderGen struct {
	i      int
	parent *types.Header
	header *types.Header

	config *params.EthashParams
}

// SetCoinbase sets the coinbase of the generated header.
func (b *HeaderGen) SetCoinbase(addr common.Address) {
	b.header.Coinbase = addr
}

// SetExtra sets the extra data field of the generated header.
func (b *HeaderGen) SetExtra(data []byte) {
	b.header.Extra = data
}

// SetReceiptHash sets the receipts root committed to by the generated header.
func (b *HeaderGen) SetReceiptHash(root common.Hash) {
	b.header.ReceiptHash = root
}

// SetDifficulty sets the difficulty field of the generated header. The
// header then no longer follows the difficulty adjustment rules.
func (b *HeaderGen) SetDifficulty(diff *big.Int) {
	b.header.Difficulty = diff
}

// Number returns the block number of the header being generated.
func (b *HeaderGen) Number() uint64 {
	return b.header.Number
}

// OffsetTime modifies the time instance of a header, implicitly changing its
// associated difficulty.
func (b *HeaderGen) OffsetTime(seconds int64) {
	b.header.Time = uint64(int64(b.header.Time) + seconds)
	if b.header.Time <= b.parent.Time {
		panic("header time out of range")
	}
	b.header.Difficulty = ethash.CalcDifficulty(b.config, b.header.Time, b.parent)
}

// GenerateHeaders creates a chain of n sealed headers. The first header's
// parent will be the provided parent.
//
// The generator function is called with a new header generator for every
// header. Any changes it makes are applied before the header is sealed on
// the light verification cache of engine. The nonce search is only feasible
// at the tiny difficulties of the test network.
func GenerateHeaders(config *params.EthashParams, engine *ethash.Ethash, parent *types.Header, n int, gen func(int, *HeaderGen)) ([]*types.Header, error) {
	headers := make([]*types.Header, 0, n)
	for i := 0; i < n; i++ {
		b := &HeaderGen{i: i, parent: parent, config: config, header: makeHeader(config, parent)}
		if gen != nil {
			gen(i, b)
		}
		if err := SealHeader(engine, b.header); err != nil {
			return nil, fmt.Errorf("seal header %d: %w", b.header.Number, err)
		}
		headers = append(headers, b.header)
		parent = b.header
	}
	return headers, nil
}

func makeHeader(config *params.EthashParams, parent *types.Header) *types.Header {
	header := &types.Header{
		ParentHash:  parent.Hash(),
		UncleHash:   types.EmptyUncleHash,
		Coinbase:    parent.Coinbase,
		Root:        parent.Root,
		TxHash:      types.EmptyRootHash,
		ReceiptHash: types.EmptyRootHash,
		Number:      parent.Number + 1,
		GasLimit:    parent.GasLimit,
		Time:        parent.Time + 10,
	}
	header.Difficulty = ethash.CalcDifficulty(config, header.Time, parent)
	return header
}

// SealHeader searches for a nonce whose ethash result meets the header's
// difficulty target, then stores the seal and the resulting block hash.
func SealHeader(engine *ethash.Ethash, header *types.Header) error {
	if header.Difficulty == nil || header.Difficulty.Sign() <= 0 {
		return fmt.Errorf("invalid difficulty %v", header.Difficulty)
	}
	target := new(big.Int).Div(two256, header.Difficulty)
	sealHash := header.SealHash()
	for nonce := uint64(0); ; nonce++ {
		digest, result, err := engine.Hashimoto(header.Number, sealHash, nonce)
		if err != nil {
			return err
		}
		if result.Big().Cmp(target) <= 0 {
			header.Seal = types.EncodeEthashSeal(digest, ethtypes.EncodeNonce(nonce))
			header.BlockHash = header.ComputeHash()
			return nil
		}
	}
}
