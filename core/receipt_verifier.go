package core

import (
	"fmt"

	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/trie"
)

// ReceiptVerifier checks receipt inclusion proofs against the receipts roots
// of stored headers.
type ReceiptVerifier struct {
	store  HeaderReader
	logger log.Logger
}

// NewReceiptVerifier returns a verifier reading headers from store.
func NewReceiptVerifier(store HeaderReader, logger log.Logger) *ReceiptVerifier {
	return &ReceiptVerifier{store: store, logger: logger}
}

// Verify proves that receipt sits at proof.Index of the receipts trie of the
// stored block blockNumber.
func (r *ReceiptVerifier) Verify(blockNumber uint64, proof *types.ReceiptProof, receipt *types.Receipt) error {
	tip := r.store.ChainTip()
	if tip == nil {
		return ErrFinalizedHeaderNE
	}
	if blockNumber > tip.Number {
		return fmt.Errorf("%w: block %d above tip %d", ErrTooEarly, blockNumber, tip.Number)
	}
	header := r.store.GetHeaderByNumber(blockNumber)
	if header == nil {
		return fmt.Errorf("%w: block %d", ErrHeaderNE, blockNumber)
	}
	proofDb := memorydb.New()
	for _, node := range proof.Proof {
		proofDb.Put(crypto.Keccak256(node), node)
	}
	value, err := trie.VerifyProof(header.ReceiptHash, proof.Key(), proofDb)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReceiptVF, err)
	}
	if len(value) == 0 {
		return fmt.Errorf("%w: no receipt at index %d", ErrReceiptVF, proof.Index)
	}
	proven := new(types.Receipt)
	if err := proven.UnmarshalBinary(value); err != nil {
		return fmt.Errorf("%w: %w", ErrReceiptVF, err)
	}
	if !types.ReceiptConsensusEqual(proven, receipt) {
		return fmt.Errorf("%w: receipt differs from the proven one", ErrReceiptVF)
	}
	r.logger.WithFields(log.Fields{
		"block": blockNumber,
		"index": proof.Index,
	}).Debug("Receipt verified")
	return nil
}
