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
	"encoding/binary"
	"fmt"

	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/ethereum/go-ethereum/rlp"
)

// ReadDatabaseVersion retrieves the version number of the database.
func ReadDatabaseVersion(db ethdb.KeyValueReader) *uint64 {
	var version uint64

	enc, _ := db.Get(databaseVersionKey)
	if len(enc) == 0 {
		return nil
	}
	if err := rlp.DecodeBytes(enc, &version); err != nil {
		log.Global.WithField("err", err).Error("Failed to decode database version")
		return nil
	}
	return &version
}

// WriteDatabaseVersion stores the version number of the database
func WriteDatabaseVersion(db ethdb.KeyValueWriter, version uint64) error {
	enc, err := rlp.EncodeToBytes(version)
	if err != nil {
		return fmt.Errorf("encode database version: %w", err)
	}
	if err = db.Put(databaseVersionKey, enc); err != nil {
		return fmt.Errorf("store the database version: %w", err)
	}
	return nil
}

// ReadAuthorityBestNumber retrieves the best block number last reported by
// the trusted authority, zero if none was ever reported.
func ReadAuthorityBestNumber(db ethdb.KeyValueReader) uint64 {
	data, _ := db.Get(authorityBestNumberKey)
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

// WriteAuthorityBestNumber stores the best block number reported by the
// trusted authority.
func WriteAuthorityBestNumber(db ethdb.KeyValueWriter, number uint64) error {
	if err := db.Put(authorityBestNumberKey, encodeBlockNumber(number)); err != nil {
		return fmt.Errorf("store authority best number: %w", err)
	}
	return nil
}
