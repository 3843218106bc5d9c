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

// Package rawdb contains a collection of low level database accessors.
package rawdb

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
)

// DatabaseVersion is the version of the schema below. Opening a store written
// with another version fails.
const DatabaseVersion uint64 = 1

// The fields below define the low level database schema prefixing.
var (
	// databaseVersionKey tracks the current database version.
	databaseVersionKey = []byte("DatabaseVersion")

	// genesisHeaderKey tracks the trusted starting header of the light chain.
	genesisHeaderKey = []byte("GenesisHeader")

	// authorityBestNumberKey tracks the best block number reported by the
	// trusted off-chain authority.
	authorityBestNumberKey = []byte("AuthorityBestNumber")

	// chainTipKey tracks the most recently appended header and the
	// accumulated difficulty.
	chainTipKey = []byte("ChainTip")

	// Data item prefixes (use single byte to avoid mixing data types).
	headerPrefix     = []byte("h") // headerPrefix + hash -> header
	headerHashPrefix = []byte("n") // headerHashPrefix + num (uint64 big endian) -> hash
)

// encodeBlockNumber encodes a block number as big endian uint64
func encodeBlockNumber(number uint64) []byte {
	enc := make([]byte, 8)
	binary.BigEndian.PutUint64(enc, number)
	return enc
}

// headerKey = headerPrefix + hash
func headerKey(hash common.Hash) []byte {
	return append(append([]byte{}, headerPrefix...), hash.Bytes()...)
}

// headerHashKey = headerHashPrefix + num (uint64 big endian)
func headerHashKey(number uint64) []byte {
	return append(append([]byte{}, headerHashPrefix...), encodeBlockNumber(number)...)
}
