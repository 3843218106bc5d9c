package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ChainTip summarises the most recently appended header of the light chain.
//
// TotalDifficulty is accumulated by adding the difficulty of every appended
// header. It is not a sum over a canonical path, which only holds while no
// competing header is ever admitted.
type ChainTip struct {
	Hash            common.Hash
	Number          uint64
	ParentHash      common.Hash
	TotalDifficulty *uint256.Int
}

// Copy returns a deep copy of the tip.
func (t *ChainTip) Copy() *ChainTip {
	cpy := *t
	if t.TotalDifficulty != nil {
		cpy.TotalDifficulty = new(uint256.Int).Set(t.TotalDifficulty)
	}
	return &cpy
}

func (t *ChainTip) String() string {
	return fmt.Sprintf("{Number: %d Hash: %s Parent: %s TD: %v}", t.Number, t.Hash.Hex(), t.ParentHash.Hex(), t.TotalDifficulty)
}
