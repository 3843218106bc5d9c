package core

import (
	"fmt"

	"github.com/dominant-strategies/eth-light-client/consensus/ethash"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/dominant-strategies/eth-light-client/params"
	"github.com/ethereum/go-ethereum/common"
)

// MixHasher recomputes the ethash mix digest of a sealed header.
type MixHasher interface {
	CalcMixHash(header *types.Header) (common.Hash, error)
}

var _ MixHasher = (*ethash.Ethash)(nil)

// HeaderValidator runs the checks a header has to pass before it may be
// appended: linkage to the stored chain, the ethash block rules and the
// proof-of-work seal.
type HeaderValidator struct {
	store  HeaderReader
	engine MixHasher
	logger log.Logger
}

// NewHeaderValidator returns a validator reading parents from store.
func NewHeaderValidator(store HeaderReader, engine MixHasher, logger log.Logger) *HeaderValidator {
	return &HeaderValidator{store: store, engine: engine, logger: logger}
}

// VerifyBasic checks the integrity of header and that it extends a stored
// header. It returns that parent.
func (v *HeaderValidator) VerifyBasic(header *types.Header) (*types.Header, error) {
	if computed := header.ComputeHash(); computed != header.Hash() {
		return nil, fmt.Errorf("%w: declared %s, computed %s", ErrHeaderHashMismatch, header.Hash(), computed)
	}
	v.logger.WithField("hash", header.Hash()).Trace("Hash is OK")

	genesis := v.store.Genesis()
	if genesis == nil {
		return nil, ErrGenesisHeaderNE
	}
	if header.Number < genesis.Number {
		return nil, fmt.Errorf("%w: number %d below genesis %d", ErrTooEarly, header.Number, genesis.Number)
	}
	parent := v.store.GetHeader(header.ParentHash)
	if parent == nil {
		return nil, fmt.Errorf("%w: %s", ErrPrevHeaderNE, header.ParentHash)
	}
	if header.Number != parent.Number+1 {
		return nil, fmt.Errorf("%w: have %d, parent %d", ErrBlockNumberMismatch, header.Number, parent.Number)
	}
	if header.ParentHash != parent.Hash() {
		return nil, fmt.Errorf("%w: parent hash %s, stored %s", ErrHeaderHashMismatch, header.ParentHash, parent.Hash())
	}
	v.logger.WithField("number", header.Number).Trace("Head number OK")
	return parent, nil
}

// CheckDifficulty applies the ethash block rules and verifies that the header
// carries the difficulty expected after parent.
func (v *HeaderValidator) CheckDifficulty(header, parent *types.Header, config *params.EthashParams) error {
	if err := ethash.VerifyBlockBasic(config, header, parent); err != nil {
		return fmt.Errorf("%w: %w", ErrBlockBasicVF, err)
	}
	expected := ethash.CalcDifficulty(config, header.Time, parent)
	if header.Difficulty.Cmp(expected) != 0 {
		return fmt.Errorf("%w: have %v, want %v", ErrDifficultyVF, header.Difficulty, expected)
	}
	v.logger.WithField("difficulty", header.Difficulty).Trace("Difficulty OK")
	return nil
}

// CheckPow recomputes the mix digest of header and compares it with the
// sealed one.
func (v *HeaderValidator) CheckPow(header *types.Header) error {
	if _, err := types.ParseEthashSeal(header.Seal); err != nil {
		return fmt.Errorf("%w: %w", ErrSealParseErr, err)
	}
	mix, err := v.engine.CalcMixHash(header)
	return v.CheckPrecomputedPow(header, mix, err)
}

// CheckPrecomputedPow is CheckPow for a mix digest that was computed ahead of
// time, together with the error its computation returned.
func (v *HeaderValidator) CheckPrecomputedPow(header *types.Header, mix common.Hash, calcErr error) error {
	seal, err := types.ParseEthashSeal(header.Seal)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSealParseErr, err)
	}
	if calcErr != nil {
		return fmt.Errorf("%w: %w", ErrMixHashCF, calcErr)
	}
	if mix != seal.MixDigest {
		return fmt.Errorf("%w: sealed %s, computed %s", ErrMixHashVF, seal.MixDigest, mix)
	}
	v.logger.WithField("mix", mix).Trace("Mixhash OK")
	return nil
}
