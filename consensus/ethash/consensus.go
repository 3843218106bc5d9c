// Copyright 2017 The go-ethereum Authors
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

package ethash

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/dominant-strategies/eth-light-client/consensus/misc"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/params"
	"github.com/ethereum/go-ethereum/common/math"
)

// Various error messages to mark blocks invalid.
var (
	ErrOlderBlockTime    = errors.New("timestamp older than parent")
	ErrInvalidDifficulty = errors.New("difficulty below minimum")
	ErrExtraDataTooLong  = errors.New("extra-data too long")
	ErrInvalidGasUsed    = errors.New("gas used above gas limit")
	ErrInvalidPoW        = errors.New("invalid proof-of-work")
)

var two256 = new(big.Int).Exp(big.NewInt(2), big.NewInt(256), big.NewInt(0))

// Some weird constants to avoid constant memory allocs for them.
var (
	expDiffPeriod = big.NewInt(100000)
	big1          = big.NewInt(1)
	big2          = big.NewInt(2)
	big9          = big.NewInt(9)
	big10         = big.NewInt(10)
	bigMinus99    = big.NewInt(-99)
)

// VerifyBlockBasic checks the stateless rules a header must satisfy relative
// to its parent. When the seal is well formed, it also checks that the claimed
// mix digest hits the difficulty target; the digest itself is left to the
// full cache-based verification.
func VerifyBlockBasic(config *params.EthashParams, header, parent *types.Header) error {
	if header.Time <= parent.Time {
		return ErrOlderBlockTime
	}
	if header.Difficulty == nil || header.Difficulty.Cmp(config.MinimumDifficulty) < 0 {
		return fmt.Errorf("%w: have %v, min %v", ErrInvalidDifficulty, header.Difficulty, config.MinimumDifficulty)
	}
	if uint64(len(header.Extra)) > config.MaximumExtraDataSize {
		return fmt.Errorf("%w: %d > %d", ErrExtraDataTooLong, len(header.Extra), config.MaximumExtraDataSize)
	}
	if header.GasUsed > header.GasLimit {
		return fmt.Errorf("%w: have %d, gasLimit %d", ErrInvalidGasUsed, header.GasUsed, header.GasLimit)
	}
	if config.IsLondon(header.Number) {
		if err := misc.VerifyEip1559Header(config, parent, header); err != nil {
			return err
		}
	} else if err := misc.VerifyGasLimitTransition(config, parent, header); err != nil {
		return err
	}
	if seal, err := types.ParseEthashSeal(header.Seal); err == nil {
		result := quickResult(header.SealHash().Bytes(), seal.Nonce.Uint64(), seal.MixDigest.Bytes())
		target := new(big.Int).Div(two256, header.Difficulty)
		if new(big.Int).SetBytes(result).Cmp(target) > 0 {
			return ErrInvalidPoW
		}
	}
	return nil
}

// CalcDifficulty is the difficulty adjustment algorithm. It returns
// the difficulty that a new block should have when created at time
// given the parent block's time and difficulty.
func CalcDifficulty(config *params.EthashParams, time uint64, parent *types.Header) *big.Int {
	next := parent.Number + 1
	switch {
	case config.IsByzantium(next):
		return makeDifficultyCalculator(config, config.BombDelay(next))(time, parent)
	case config.IsHomestead(next):
		return calcDifficultyHomestead(config, time, parent)
	default:
		return calcDifficultyFrontier(config, time, parent)
	}
}

// makeDifficultyCalculator creates a difficultyCalculator with the given bomb-delay.
// the difficulty is calculated with Byzantium rules, which differs from Homestead in
// how uncles affect the calculation
func makeDifficultyCalculator(config *params.EthashParams, bombDelay uint64) func(time uint64, parent *types.Header) *big.Int {
	// Note, the calculations below looks at the parent number, which is 1 below
	// the block number. Thus we remove one from the delay given
	bombDelayFromParent := new(big.Int).SetUint64(bombDelay)
	if bombDelay > 0 {
		bombDelayFromParent.Sub(bombDelayFromParent, big1)
	}
	return func(time uint64, parent *types.Header) *big.Int {
		// https://github.com/ethereum/EIPs/issues/100.
		// algorithm:
		// diff = (parent_diff +
		//         (parent_diff / 2048 * max((2 if len(parent.uncles) else 1) - ((timestamp - parent.timestamp) // 9), -99))
		//        ) + 2^(periodCount - 2)

		bigTime := new(big.Int).SetUint64(time)
		bigParentTime := new(big.Int).SetUint64(parent.Time)

		// holds intermediate values to make the algo easier to read & audit
		x := new(big.Int)
		y := new(big.Int)

		// (2 if len(parent_uncles) else 1) - (block_timestamp - parent_timestamp) // 9
		x.Sub(bigTime, bigParentTime)
		x.Div(x, big9)
		if parent.UncleHash == types.EmptyUncleHash {
			x.Sub(big1, x)
		} else {
			x.Sub(big2, x)
		}
		// max((2 if len(parent_uncles) else 1) - (block_timestamp - parent_timestamp) // 9, -99)
		if x.Cmp(bigMinus99) < 0 {
			x.Set(bigMinus99)
		}
		parentDifficulty := parent.DifficultyOrZero()

		// parent_diff + (parent_diff / 2048 * max((2 if len(parent.uncles) else 1) - ((timestamp - parent.timestamp) // 9), -99))
		y.Div(parentDifficulty, config.DifficultyBoundDivisor)
		x.Mul(y, x)
		x.Add(parentDifficulty, x)

		// minimum difficulty can ever be (before exponential factor)
		if x.Cmp(config.MinimumDifficulty) < 0 {
			x.Set(config.MinimumDifficulty)
		}
		// calculate a fake block number for the ice-age delay
		// Specification: https://eips.ethereum.org/EIPS/eip-1234
		parentNumber := new(big.Int).SetUint64(parent.Number)
		fakeBlockNumber := new(big.Int)
		if parentNumber.Cmp(bombDelayFromParent) >= 0 {
			fakeBlockNumber = fakeBlockNumber.Sub(parentNumber, bombDelayFromParent)
		}
		// for the exponential factor
		periodCount := fakeBlockNumber
		periodCount.Div(periodCount, expDiffPeriod)

		// the exponential factor, commonly referred to as "the bomb"
		// diff = diff + 2^(periodCount - 2)
		if periodCount.Cmp(big1) > 0 {
			y.Sub(periodCount, big2)
			y.Exp(big2, y, nil)
			x.Add(x, y)
		}
		return x
	}
}

// calcDifficultyHomestead is the difficulty adjustment algorithm. It returns
// the difficulty that a new block should have when created at time given the
// parent block's time and difficulty. The calculation uses the Homestead rules.
func calcDifficultyHomestead(config *params.EthashParams, time uint64, parent *types.Header) *big.Int {
	// https://github.com/ethereum/EIPs/blob/master/EIPS/eip-2.md
	// algorithm:
	// diff = (parent_diff +
	//         (parent_diff / 2048 * max(1 - (block_timestamp - parent_timestamp) // 10, -99))
	//        ) + 2^(periodCount - 2)

	bigTime := new(big.Int).SetUint64(time)
	bigParentTime := new(big.Int).SetUint64(parent.Time)

	// holds intermediate values to make the algo easier to read & audit
	x := new(big.Int)
	y := new(big.Int)

	// 1 - (block_timestamp - parent_timestamp) // 10
	x.Sub(bigTime, bigParentTime)
	x.Div(x, big10)
	x.Sub(big1, x)

	// max(1 - (block_timestamp - parent_timestamp) // 10, -99)
	if x.Cmp(bigMinus99) < 0 {
		x.Set(bigMinus99)
	}
	parentDifficulty := parent.DifficultyOrZero()

	// (parent_diff + parent_diff // 2048 * max(1 - (block_timestamp - parent_timestamp) // 10, -99))
	y.Div(parentDifficulty, config.DifficultyBoundDivisor)
	x.Mul(y, x)
	x.Add(parentDifficulty, x)

	// minimum difficulty can ever be (before exponential factor)
	if x.Cmp(config.MinimumDifficulty) < 0 {
		x.Set(config.MinimumDifficulty)
	}
	// for the exponential factor
	periodCount := new(big.Int).SetUint64(parent.Number + 1)
	periodCount.Div(periodCount, expDiffPeriod)

	// the exponential factor, commonly referred to as "the bomb"
	// diff = diff + 2^(periodCount - 2)
	if periodCount.Cmp(big1) > 0 {
		y.Sub(periodCount, big2)
		y.Exp(big2, y, nil)
		x.Add(x, y)
	}
	return x
}

// calcDifficultyFrontier is the difficulty adjustment algorithm. It returns the
// difficulty that a new block should have when created at time given the parent
// block's time and difficulty. The calculation uses the Frontier rules.
func calcDifficultyFrontier(config *params.EthashParams, time uint64, parent *types.Header) *big.Int {
	diff := new(big.Int)
	parentDifficulty := parent.DifficultyOrZero()
	adjust := new(big.Int).Div(parentDifficulty, config.DifficultyBoundDivisor)
	bigTime := new(big.Int)
	bigParentTime := new(big.Int)

	bigTime.SetUint64(time)
	bigParentTime.SetUint64(parent.Time)

	if bigTime.Sub(bigTime, bigParentTime).Cmp(config.DurationLimit) < 0 {
		diff.Add(parentDifficulty, adjust)
	} else {
		diff.Sub(parentDifficulty, adjust)
	}
	if diff.Cmp(config.MinimumDifficulty) < 0 {
		diff.Set(config.MinimumDifficulty)
	}

	periodCount := new(big.Int).SetUint64(parent.Number + 1)
	periodCount.Div(periodCount, expDiffPeriod)
	if periodCount.Cmp(big1) > 0 {
		// diff = diff + 2^(periodCount - 2)
		expDiff := periodCount.Sub(periodCount, big2)
		expDiff.Exp(big2, expDiff, nil)
		diff.Add(diff, expDiff)
		diff = math.BigMax(diff, config.MinimumDifficulty)
	}
	return diff
}
