package types

import (
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// headerJSON is the RPC representation of a header. Besides the raw seal it
// accepts the mixHash/nonce pair returned by eth_getBlockByNumber, so node
// output can be submitted unchanged.
type headerJSON struct {
	BlockHash   *common.Hash         `json:"hash"`
	ParentHash  *common.Hash         `json:"parentHash"`
	UncleHash   *common.Hash         `json:"sha3Uncles"`
	Coinbase    *common.Address      `json:"miner"`
	Root        *common.Hash         `json:"stateRoot"`
	TxHash      *common.Hash         `json:"transactionsRoot"`
	ReceiptHash *common.Hash         `json:"receiptsRoot"`
	Bloom       *ethtypes.Bloom      `json:"logsBloom"`
	Difficulty  *hexutil.Big         `json:"difficulty"`
	Number      *hexutil.Uint64      `json:"number"`
	GasLimit    *hexutil.Uint64      `json:"gasLimit"`
	GasUsed     *hexutil.Uint64      `json:"gasUsed"`
	Time        *hexutil.Uint64      `json:"timestamp"`
	Extra       *hexutil.Bytes       `json:"extraData"`
	Seal        []hexutil.Bytes      `json:"seal,omitempty"`
	MixDigest   *common.Hash         `json:"mixHash,omitempty"`
	Nonce       *ethtypes.BlockNonce `json:"nonce,omitempty"`
	BaseFee     *hexutil.Big         `json:"baseFeePerGas,omitempty"`
}

// MarshalJSON marshals as JSON.
func (h Header) MarshalJSON() ([]byte, error) {
	var enc headerJSON
	enc.BlockHash = &h.BlockHash
	enc.ParentHash = &h.ParentHash
	enc.UncleHash = &h.UncleHash
	enc.Coinbase = &h.Coinbase
	enc.Root = &h.Root
	enc.TxHash = &h.TxHash
	enc.ReceiptHash = &h.ReceiptHash
	enc.Bloom = &h.Bloom
	enc.Difficulty = (*hexutil.Big)(h.DifficultyOrZero())
	enc.Number = (*hexutil.Uint64)(&h.Number)
	enc.GasLimit = (*hexutil.Uint64)(&h.GasLimit)
	enc.GasUsed = (*hexutil.Uint64)(&h.GasUsed)
	enc.Time = (*hexutil.Uint64)(&h.Time)
	enc.Extra = (*hexutil.Bytes)(&h.Extra)
	if h.Seal != nil {
		enc.Seal = make([]hexutil.Bytes, len(h.Seal))
		for i, item := range h.Seal {
			enc.Seal[i] = item
		}
	}
	if seal, err := ParseEthashSeal(h.Seal); err == nil {
		enc.MixDigest = &seal.MixDigest
		enc.Nonce = &seal.Nonce
	}
	enc.BaseFee = (*hexutil.Big)(h.BaseFee)
	return json.Marshal(&enc)
}

// UnmarshalJSON unmarshals from JSON.
func (h *Header) UnmarshalJSON(input []byte) error {
	var dec headerJSON
	if err := json.Unmarshal(input, &dec); err != nil {
		return err
	}
	if dec.ParentHash == nil {
		return errors.New("missing required field 'parentHash' for Header")
	}
	h.ParentHash = *dec.ParentHash
	if dec.UncleHash == nil {
		return errors.New("missing required field 'sha3Uncles' for Header")
	}
	h.UncleHash = *dec.UncleHash
	if dec.Coinbase == nil {
		return errors.New("missing required field 'miner' for Header")
	}
	h.Coinbase = *dec.Coinbase
	if dec.Root == nil {
		return errors.New("missing required field 'stateRoot' for Header")
	}
	h.Root = *dec.Root
	if dec.TxHash == nil {
		return errors.New("missing required field 'transactionsRoot' for Header")
	}
	h.TxHash = *dec.TxHash
	if dec.ReceiptHash == nil {
		return errors.New("missing required field 'receiptsRoot' for Header")
	}
	h.ReceiptHash = *dec.ReceiptHash
	if dec.Bloom == nil {
		return errors.New("missing required field 'logsBloom' for Header")
	}
	h.Bloom = *dec.Bloom
	if dec.Difficulty == nil {
		return errors.New("missing required field 'difficulty' for Header")
	}
	h.Difficulty = (*big.Int)(dec.Difficulty)
	if dec.Number == nil {
		return errors.New("missing required field 'number' for Header")
	}
	h.Number = uint64(*dec.Number)
	if dec.GasLimit == nil {
		return errors.New("missing required field 'gasLimit' for Header")
	}
	h.GasLimit = uint64(*dec.GasLimit)
	if dec.GasUsed == nil {
		return errors.New("missing required field 'gasUsed' for Header")
	}
	h.GasUsed = uint64(*dec.GasUsed)
	if dec.Time == nil {
		return errors.New("missing required field 'timestamp' for Header")
	}
	h.Time = uint64(*dec.Time)
	if dec.Extra == nil {
		return errors.New("missing required field 'extraData' for Header")
	}
	h.Extra = *dec.Extra
	switch {
	case dec.Seal != nil:
		h.Seal = make([][]byte, len(dec.Seal))
		for i, item := range dec.Seal {
			h.Seal[i] = item
		}
	case dec.MixDigest != nil && dec.Nonce != nil:
		h.Seal = EncodeEthashSeal(*dec.MixDigest, *dec.Nonce)
	default:
		return errors.New("missing required field 'seal' (or 'mixHash' and 'nonce') for Header")
	}
	if dec.BaseFee != nil {
		h.BaseFee = (*big.Int)(dec.BaseFee)
	}
	if dec.BlockHash != nil {
		h.BlockHash = *dec.BlockHash
	} else {
		h.BlockHash = h.ComputeHash()
	}
	return nil
}
