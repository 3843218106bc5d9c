package types

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"
)

// Receipt is an Ethereum transaction receipt. Only its consensus fields take
// part in receipt verification.
type Receipt = ethtypes.Receipt

// ReceiptProof is a Merkle-Patricia proof for the receipt at position Index
// of a block's receipts trie. Proof holds the raw trie nodes along the path,
// root first.
type ReceiptProof struct {
	Index uint64          `json:"index"`
	Proof []hexutil.Bytes `json:"proof"`
}

// Key returns the receipts trie key of the proven position.
func (p *ReceiptProof) Key() []byte {
	return rlp.AppendUint64(nil, p.Index)
}

// ReceiptConsensusEqual reports whether two receipts agree on every field that
// is committed to by the receipts root.
func ReceiptConsensusEqual(a, b *Receipt) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Type != b.Type || a.CumulativeGasUsed != b.CumulativeGasUsed || a.Bloom != b.Bloom {
		return false
	}
	// Pre-Byzantium receipts carry an intermediate state root instead of a status.
	if len(a.PostState) > 0 || len(b.PostState) > 0 {
		if !bytes.Equal(a.PostState, b.PostState) {
			return false
		}
	} else if a.Status != b.Status {
		return false
	}
	if len(a.Logs) != len(b.Logs) {
		return false
	}
	for i := range a.Logs {
		if !logConsensusEqual(a.Logs[i], b.Logs[i]) {
			return false
		}
	}
	return true
}

func logConsensusEqual(a, b *ethtypes.Log) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Address != b.Address || len(a.Topics) != len(b.Topics) || !bytes.Equal(a.Data, b.Data) {
		return false
	}
	for i := range a.Topics {
		if a.Topics[i] != b.Topics[i] {
			return false
		}
	}
	return true
}
