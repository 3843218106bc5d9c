// Copyright 2014 The go-ethereum Authors
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

// Package types contains data types related to the Ethereum header chain.
package types

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

var (
	// EmptyUncleHash is the known hash of an empty uncle list.
	EmptyUncleHash = ethtypes.EmptyUncleHash

	// EmptyRootHash is the known root hash of an empty trie.
	EmptyRootHash = ethtypes.EmptyRootHash

	// ErrInvalidSeal is returned when a header seal cannot be parsed into an
	// ethash mix digest and nonce.
	ErrInvalidSeal = errors.New("invalid ethash seal")
)

// ethashSealFields is the number of seal items an ethash header carries.
const ethashSealFields = 2

// Header represents an Ethereum block header as submitted to the light client.
//
// BlockHash is the hash declared by the submitter. It is only trusted once it
// equals ComputeHash. Every Seal item holds the RLP encoding of one seal
// value, mix digest first and nonce second for ethash.
type Header struct {
	BlockHash   common.Hash    `json:"hash"`
	ParentHash  common.Hash    `json:"parentHash"`
	UncleHash   common.Hash    `json:"sha3Uncles"`
	Coinbase    common.Address `json:"miner"`
	Root        common.Hash    `json:"stateRoot"`
	TxHash      common.Hash    `json:"transactionsRoot"`
	ReceiptHash common.Hash    `json:"receiptsRoot"`
	Bloom       ethtypes.Bloom `json:"logsBloom"`
	Difficulty  *big.Int       `json:"difficulty"`
	Number      uint64         `json:"number"`
	GasLimit    uint64         `json:"gasLimit"`
	GasUsed     uint64         `json:"gasUsed"`
	Time        uint64         `json:"timestamp"`
	Extra       []byte         `json:"extraData"`
	Seal        [][]byte       `json:"seal"`

	// BaseFee was added by EIP-1559 and is ignored in legacy headers.
	BaseFee *big.Int `json:"baseFeePerGas" rlp:"optional"`
}

// Hash returns the declared block hash of the header.
func (h *Header) Hash() common.Hash {
	return h.BlockHash
}

// ComputeHash recomputes the block hash from the header fields, which is the
// keccak256 hash of the RLP list of all fields with the seal items spliced in
// after the extra data.
func (h *Header) ComputeHash() common.Hash {
	return rlpHash(h.encodingFields(true))
}

// SealHash returns the hash of the header without its seal, the value the
// proof-of-work is computed over.
func (h *Header) SealHash() common.Hash {
	return rlpHash(h.encodingFields(false))
}

func (h *Header) encodingFields(withSeal bool) []interface{} {
	enc := []interface{}{
		h.ParentHash,
		h.UncleHash,
		h.Coinbase,
		h.Root,
		h.TxHash,
		h.ReceiptHash,
		h.Bloom,
		bigOrZero(h.Difficulty),
		h.Number,
		h.GasLimit,
		h.GasUsed,
		h.Time,
		h.Extra,
	}
	if withSeal {
		for _, item := range h.Seal {
			enc = append(enc, rlp.RawValue(item))
		}
	}
	if h.BaseFee != nil {
		enc = append(enc, h.BaseFee)
	}
	return enc
}

// DifficultyOrZero returns the header difficulty, treating a missing value as zero.
func (h *Header) DifficultyOrZero() *big.Int {
	return bigOrZero(h.Difficulty)
}

func (h *Header) String() string {
	return fmt.Sprintf("#%d [%x…]", h.Number, h.BlockHash[:4])
}

// CopyHeader creates a deep copy of a block header.
func CopyHeader(h *Header) *Header {
	cpy := *h
	if h.Difficulty != nil {
		cpy.Difficulty = new(big.Int).Set(h.Difficulty)
	}
	if h.BaseFee != nil {
		cpy.BaseFee = new(big.Int).Set(h.BaseFee)
	}
	if len(h.Extra) > 0 {
		cpy.Extra = common.CopyBytes(h.Extra)
	}
	if h.Seal != nil {
		cpy.Seal = make([][]byte, len(h.Seal))
		for i, item := range h.Seal {
			cpy.Seal[i] = common.CopyBytes(item)
		}
	}
	return &cpy
}

// EthashSeal is the decoded ethash seal of a header.
type EthashSeal struct {
	MixDigest common.Hash
	Nonce     ethtypes.BlockNonce
}

// ParseEthashSeal decodes the mix digest and nonce out of a header seal.
func ParseEthashSeal(seal [][]byte) (*EthashSeal, error) {
	if len(seal) != ethashSealFields {
		return nil, fmt.Errorf("%w: have %d fields, want %d", ErrInvalidSeal, len(seal), ethashSealFields)
	}
	s := new(EthashSeal)
	if err := rlp.DecodeBytes(seal[0], &s.MixDigest); err != nil {
		return nil, fmt.Errorf("%w: mix digest: %v", ErrInvalidSeal, err)
	}
	if err := rlp.DecodeBytes(seal[1], &s.Nonce); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", ErrInvalidSeal, err)
	}
	return s, nil
}

// EncodeEthashSeal builds the seal items of an ethash header.
func EncodeEthashSeal(mixDigest common.Hash, nonce ethtypes.BlockNonce) [][]byte {
	mix, _ := rlp.EncodeToBytes(mixDigest)
	n, _ := rlp.EncodeToBytes(nonce)
	return [][]byte{mix, n}
}

func bigOrZero(b *big.Int) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return b
}

// hasherPool holds LegacyKeccak256 hashers for rlpHash.
var hasherPool = sync.Pool{
	New: func() interface{} { return sha3.NewLegacyKeccak256() },
}

// rlpHash encodes x and hashes the encoded bytes.
func rlpHash(x interface{}) (h common.Hash) {
	sha := hasherPool.Get().(crypto.KeccakState)
	defer hasherPool.Put(sha)
	sha.Reset()
	rlp.Encode(sha, x)
	sha.Read(h[:])
	return h
}
