package core

import (
	"fmt"

	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/holiman/uint256"
)

// ChainAppender admits validated headers into the store once the authority
// considers them final.
type ChainAppender struct {
	store         HeaderStore
	confirmations uint64
	logger        log.Logger
}

// NewChainAppender returns an appender that requires confirmations blocks
// between an admitted header and the authority best number.
func NewChainAppender(store HeaderStore, confirmations uint64, logger log.Logger) *ChainAppender {
	return &ChainAppender{store: store, confirmations: confirmations, logger: logger}
}

// Confirmations returns the finality buffer of the appender.
func (a *ChainAppender) Confirmations() uint64 {
	return a.confirmations
}

// CheckFinality reports whether a header at number is final under the current
// authority best number.
func (a *ChainAppender) CheckFinality(number uint64) error {
	best := a.store.AuthorityBestNumber()
	if best < a.confirmations {
		return fmt.Errorf("%w: authority best %d within %d confirmations of genesis", ErrTooEarly, best, a.confirmations)
	}
	if threshold := best - a.confirmations; number >= threshold {
		return fmt.Errorf("%w: number %d, finalized below %d", ErrTooEarly, number, threshold)
	}
	return nil
}

// Append stores header and moves the chain tip to it. The header must already
// have passed the HeaderValidator checks.
func (a *ChainAppender) Append(header *types.Header) (*types.ChainTip, error) {
	if err := a.CheckFinality(header.Number); err != nil {
		return nil, err
	}
	difficulty, overflow := uint256.FromBig(header.DifficultyOrZero())
	if overflow {
		return nil, fmt.Errorf("%w: difficulty %v", ErrTotalDifficultyOverflow, header.Difficulty)
	}
	var tip *types.ChainTip
	err := a.store.Update(func(tx StoreTx) error {
		if err := tx.PutHeader(header); err != nil {
			return err
		}
		return tx.MutateTip(func(t *types.ChainTip) error {
			td, overflow := new(uint256.Int).AddOverflow(t.TotalDifficulty, difficulty)
			if overflow {
				return fmt.Errorf("%w: %v + %v", ErrTotalDifficultyOverflow, t.TotalDifficulty, difficulty)
			}
			t.Hash = header.Hash()
			t.Number = header.Number
			t.ParentHash = header.ParentHash
			t.TotalDifficulty = td
			tip = t.Copy()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	a.logger.WithFields(log.Fields{
		"number": tip.Number,
		"hash":   tip.Hash,
		"td":     tip.TotalDifficulty,
	}).Info("Appended header")
	return tip, nil
}
