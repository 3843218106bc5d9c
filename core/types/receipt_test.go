package types

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReceipt() *Receipt {
	r := &Receipt{
		Type:              ethtypes.DynamicFeeTxType,
		Status:            ethtypes.ReceiptStatusSuccessful,
		CumulativeGasUsed: 21000,
		Logs: []*ethtypes.Log{{
			Address: common.HexToAddress("0x1"),
			Topics:  []common.Hash{common.HexToHash("0xdead")},
			Data:    []byte{1, 2, 3},
		}},
	}
	r.Bloom.Add(r.Logs[0].Address.Bytes())
	r.Bloom.Add(r.Logs[0].Topics[0].Bytes())
	return r
}

func TestReceiptConsensusEqual(t *testing.T) {
	base := testReceipt()
	require.True(t, ReceiptConsensusEqual(base, testReceipt()))

	// Derived fields are not committed to by the receipts root.
	derived := testReceipt()
	derived.TxHash = common.HexToHash("0xbeef")
	derived.GasUsed = 5
	derived.BlockNumber = nil
	assert.True(t, ReceiptConsensusEqual(base, derived))

	mutations := map[string]func(r *Receipt){
		"status":    func(r *Receipt) { r.Status = ethtypes.ReceiptStatusFailed },
		"type":      func(r *Receipt) { r.Type = ethtypes.LegacyTxType },
		"gas":       func(r *Receipt) { r.CumulativeGasUsed++ },
		"bloom":     func(r *Receipt) { r.Bloom[0] ^= 1 },
		"no logs":   func(r *Receipt) { r.Logs = nil },
		"log data":  func(r *Receipt) { r.Logs[0].Data = []byte{1, 2} },
		"log topic": func(r *Receipt) { r.Logs[0].Topics[0][0] ^= 1 },
		"post root": func(r *Receipt) { r.PostState = common.Hash{1}.Bytes() },
	}
	for name, mutate := range mutations {
		r := testReceipt()
		mutate(r)
		assert.False(t, ReceiptConsensusEqual(base, r), name)
	}
	assert.False(t, ReceiptConsensusEqual(base, nil))
}

func TestReceiptProofKey(t *testing.T) {
	require.Equal(t, []byte{0x80}, (&ReceiptProof{Index: 0}).Key())
	require.Equal(t, []byte{0x01}, (&ReceiptProof{Index: 1}).Key())
	require.Equal(t, []byte{0x81, 0x80}, (&ReceiptProof{Index: 128}).Key())
}
