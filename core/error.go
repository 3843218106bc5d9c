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

package core

import "errors"

var (
	// ErrHeaderHashMismatch is returned when a header's declared hash is not the
	// hash of its contents, or when it does not link to its parent's hash.
	ErrHeaderHashMismatch = errors.New("header hash mismatch")

	// ErrGenesisHeaderNE is returned when a header is submitted before a genesis
	// header has been set.
	ErrGenesisHeaderNE = errors.New("genesis header not set")

	// ErrTooEarly is returned when a header is not yet final, or when a receipt is
	// checked against a block the chain tip has not reached.
	ErrTooEarly = errors.New("too early")

	// ErrTooLate is reserved for headers that fall behind the retained window.
	ErrTooLate = errors.New("too late")

	// ErrPrevHeaderNE is returned when the parent of a submitted header is unknown.
	ErrPrevHeaderNE = errors.New("previous header not found")

	// ErrBlockNumberMismatch is returned when a header's number does not follow
	// its parent's.
	ErrBlockNumberMismatch = errors.New("block number mismatch")

	// ErrBlockBasicVF is returned when a header fails the stateless ethash rules.
	ErrBlockBasicVF = errors.New("block basic verification failed")

	// ErrDifficultyVF is returned when a header's difficulty is not the expected one.
	ErrDifficultyVF = errors.New("difficulty verification failed")

	// ErrMixHashVF is returned when the recomputed mix digest differs from the sealed one.
	ErrMixHashVF = errors.New("mix hash verification failed")

	// ErrMixHashCF is returned when the mix digest cannot be computed at all.
	ErrMixHashCF = errors.New("mix hash calculation failed")

	// ErrSealParseErr is returned when a header's seal is not an ethash seal.
	ErrSealParseErr = errors.New("seal parse error")

	// ErrGenesisSetFailed is returned when a genesis header is already set.
	ErrGenesisSetFailed = errors.New("genesis header already set")

	// ErrHeaderNE is returned when no header is stored for a block number.
	ErrHeaderNE = errors.New("header not found")

	// ErrFinalizedHeaderNE is returned when no header has been appended yet.
	ErrFinalizedHeaderNE = errors.New("finalized header not found")

	// ErrReceiptVF is returned when a receipt is not proven by the header's receipts root.
	ErrReceiptVF = errors.New("receipt verification failed")

	// ErrAuthBestNumberUF is returned when the authority best number would decrease.
	ErrAuthBestNumberUF = errors.New("authority best number underflow")

	// ErrKnownHeader is returned when a header to append is already stored.
	ErrKnownHeader = errors.New("header already known")

	// ErrNilHeader is returned when a header argument is missing.
	ErrNilHeader = errors.New("nil header")

	// ErrTotalDifficultyOverflow is returned when the accumulated difficulty no
	// longer fits in 256 bits.
	ErrTotalDifficultyOverflow = errors.New("total difficulty overflow")
)
