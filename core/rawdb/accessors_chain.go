// Copyright 2018 The go-ethereum Authors
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

package rawdb

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// ReadCanonicalHash retrieves the hash of the header stored at a block number.
func ReadCanonicalHash(db ethdb.KeyValueReader, number uint64) common.Hash {
	data, _ := db.Get(headerHashKey(number))
	if len(data) == 0 {
		return common.Hash{}
	}
	return common.BytesToHash(data)
}

// WriteCanonicalHash stores the hash assigned to a block number.
func WriteCanonicalHash(db ethdb.KeyValueWriter, hash common.Hash, number uint64) error {
	if err := db.Put(headerHashKey(number), hash.Bytes()); err != nil {
		return fmt.Errorf("store number to hash mapping: %w", err)
	}
	return nil
}

// ReadHeaderRLP retrieves a block header in its raw RLP database encoding.
func ReadHeaderRLP(db ethdb.KeyValueReader, hash common.Hash) rlp.RawValue {
	data, _ := db.Get(headerKey(hash))
	return data
}

// HasHeader verifies the existence of a block header corresponding to the hash.
func HasHeader(db ethdb.KeyValueReader, hash common.Hash) bool {
	has, err := db.Has(headerKey(hash))
	return err == nil && has
}

// ReadHeader retrieves the block header corresponding to the hash.
func ReadHeader(db ethdb.KeyValueReader, hash common.Hash) *types.Header {
	data := ReadHeaderRLP(db, hash)
	if len(data) == 0 {
		return nil
	}
	return decodeHeader(data, hash)
}

func decodeHeader(data []byte, hash common.Hash) *types.Header {
	header := new(types.Header)
	if err := rlp.Decode(bytes.NewReader(data), header); err != nil {
		log.Global.WithFields(log.Fields{
			"hash": hash,
			"err":  err,
		}).Error("Invalid block header RLP")
		return nil
	}
	return header
}

// ReadHeaderByNumber retrieves the header indexed under a block number.
func ReadHeaderByNumber(db ethdb.KeyValueReader, number uint64) *types.Header {
	hash := ReadCanonicalHash(db, number)
	if hash == (common.Hash{}) {
		return nil
	}
	return ReadHeader(db, hash)
}

// WriteHeader stores a block header into the database and indexes it under
// its number.
func WriteHeader(db ethdb.KeyValueWriter, header *types.Header) error {
	data, err := rlp.EncodeToBytes(header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	if err := db.Put(headerKey(header.Hash()), data); err != nil {
		return fmt.Errorf("store header: %w", err)
	}
	return WriteCanonicalHash(db, header.Hash(), header.Number)
}

// ReadGenesisHeader retrieves the trusted genesis header of the light chain.
func ReadGenesisHeader(db ethdb.KeyValueReader) *types.Header {
	data, _ := db.Get(genesisHeaderKey)
	if len(data) == 0 {
		return nil
	}
	return decodeHeader(data, common.Hash{})
}

// WriteGenesisHeader stores the trusted genesis header.
func WriteGenesisHeader(db ethdb.KeyValueWriter, header *types.Header) error {
	data, err := rlp.EncodeToBytes(header)
	if err != nil {
		return fmt.Errorf("encode genesis header: %w", err)
	}
	if err := db.Put(genesisHeaderKey, data); err != nil {
		return fmt.Errorf("store genesis header: %w", err)
	}
	return nil
}

// storedTip is the database encoding of a chain tip.
type storedTip struct {
	Hash            common.Hash
	Number          uint64
	ParentHash      common.Hash
	TotalDifficulty *big.Int
}

// ReadChainTip retrieves the tip of the light chain.
func ReadChainTip(db ethdb.KeyValueReader) *types.ChainTip {
	data, _ := db.Get(chainTipKey)
	if len(data) == 0 {
		return nil
	}
	var stored storedTip
	if err := rlp.DecodeBytes(data, &stored); err != nil {
		log.Global.WithField("err", err).Error("Invalid chain tip RLP")
		return nil
	}
	td, overflow := uint256.FromBig(stored.TotalDifficulty)
	if overflow {
		log.Global.WithField("td", stored.TotalDifficulty).Error("Stored total difficulty overflows 256 bits")
		return nil
	}
	return &types.ChainTip{
		Hash:            stored.Hash,
		Number:          stored.Number,
		ParentHash:      stored.ParentHash,
		TotalDifficulty: td,
	}
}

// WriteChainTip stores the tip of the light chain.
func WriteChainTip(db ethdb.KeyValueWriter, tip *types.ChainTip) error {
	stored := storedTip{
		Hash:            tip.Hash,
		Number:          tip.Number,
		ParentHash:      tip.ParentHash,
		TotalDifficulty: new(big.Int),
	}
	if tip.TotalDifficulty != nil {
		stored.TotalDifficulty = tip.TotalDifficulty.ToBig()
	}
	data, err := rlp.EncodeToBytes(&stored)
	if err != nil {
		return fmt.Errorf("encode chain tip: %w", err)
	}
	if err := db.Put(chainTipKey, data); err != nil {
		return fmt.Errorf("store chain tip: %w", err)
	}
	return nil
}
