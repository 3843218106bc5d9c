// Package lightclient is the entry point of the Ethereum light client. It
// authenticates calls, runs submitted headers through validation and the
// finality-gated append, and verifies receipts against the stored chain.
package lightclient

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/dominant-strategies/eth-light-client/auth"
	"github.com/dominant-strategies/eth-light-client/core"
	"github.com/dominant-strategies/eth-light-client/core/types"
	"github.com/dominant-strategies/eth-light-client/log"
	"github.com/dominant-strategies/eth-light-client/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// LightClient serialises all state changes of the light chain.
type LightClient struct {
	mu sync.Mutex // held by every mutating call

	config *params.EthashParams
	store  core.HeaderStore
	engine core.MixHasher

	validator *core.HeaderValidator
	appender  *core.ChainAppender
	receipts  *core.ReceiptVerifier

	auth    auth.Provider
	sink    EventSink
	workers int

	logger log.Logger
}

// New assembles a light client on top of store. A nil sink drops all events.
func New(store core.HeaderStore, engine core.MixHasher, provider auth.Provider, sink EventSink, network params.NetworkConfig, logger log.Logger) (*LightClient, error) {
	config, err := network.EthashParams()
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = nopSink{}
	}
	lc := &LightClient{
		config:    config,
		store:     store,
		engine:    engine,
		validator: core.NewHeaderValidator(store, engine, logger),
		appender:  core.NewChainAppender(store, network.Confirmations, logger),
		receipts:  core.NewReceiptVerifier(store, logger),
		auth:      provider,
		sink:      sink,
		workers:   runtime.GOMAXPROCS(0),
		logger:    logger,
	}
	if tip := store.ChainTip(); tip != nil {
		tipGauge.Set(float64(tip.Number))
	}
	logger.WithFields(log.Fields{
		"network":       config.Name,
		"confirmations": network.Confirmations,
	}).Info("Light client initialised")
	return lc, nil
}

// SetGenesisHeader stores the trusted header all submitted headers descend
// from. Only privileged callers may set it, and only once.
func (lc *LightClient) SetGenesisHeader(ctx context.Context, origin auth.Origin, header *types.Header) error {
	if _, err := lc.privileged(origin); err != nil {
		return err
	}
	if header == nil {
		return core.ErrNilHeader
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := lc.store.SetGenesisOnce(header); err != nil {
		return err
	}
	lc.logger.WithFields(log.Fields{
		"number": header.Number,
		"hash":   header.Hash(),
	}).Info("Genesis header set")
	lc.sink.Publish(SetGenesisHeaderEvent{Header: types.CopyHeader(header)})
	return nil
}

// SetAuthorityBestNumber records the best block number reported by the
// trusted authority, which drives finality. It never decreases.
func (lc *LightClient) SetAuthorityBestNumber(ctx context.Context, origin auth.Origin, number uint64) error {
	if _, err := lc.privileged(origin); err != nil {
		return err
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := lc.store.SetAuthorityBestNumber(number); err != nil {
		return err
	}
	lc.logger.WithField("number", number).Debug("Authority best number updated")
	lc.sink.Publish(UpdateBestNumberEvent{Number: number})
	return nil
}

// SubmitHeader validates header against the stored chain and appends it.
func (lc *LightClient) SubmitHeader(ctx context.Context, origin auth.Origin, header *types.Header) error {
	caller, err := lc.auth.Authenticate(origin)
	if err != nil {
		return err
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return lc.submit(caller, header, nil)
}

// mixResult is a mix digest computed ahead of the sequential checks.
type mixResult struct {
	mix common.Hash
	err error
}

// SubmitHeaders submits a batch of consecutive headers. The leading headers
// that pass every check short of the proof-of-work have their mix digests
// computed concurrently, then all checks and the appends run in order and
// stop at the first failure. It returns the number of headers appended.
func (lc *LightClient) SubmitHeaders(ctx context.Context, origin auth.Origin, headers []*types.Header) (int, error) {
	caller, err := lc.auth.Authenticate(origin)
	if err != nil {
		return 0, err
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	screened := lc.screen(headers)
	mixes := make([]mixResult, screened)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lc.workers)
	for i, header := range headers[:screened] {
		i, header := i, header
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			timer := prometheus.NewTimer(powTimer)
			mixes[i].mix, mixes[i].err = lc.engine.CalcMixHash(header)
			timer.ObserveDuration()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	for i, header := range headers {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		// The first header past the screened prefix takes the regular pipeline.
		var precomputed *mixResult
		if i < screened {
			precomputed = &mixes[i]
		}
		if err := lc.submit(caller, header, precomputed); err != nil {
			if header == nil {
				return i, fmt.Errorf("batch entry %d: %w", i, err)
			}
			return i, fmt.Errorf("header %d: %w", header.Number, err)
		}
	}
	return len(headers), nil
}

// screen runs the checks that need no ethash work over headers in order and
// returns the length of the prefix passing them. Parents are looked up among
// the earlier headers of the batch before the store. The lock must be held.
func (lc *LightClient) screen(headers []*types.Header) int {
	reader := &batchReader{HeaderReader: lc.store, pending: make(map[common.Hash]*types.Header, len(headers))}
	validator := core.NewHeaderValidator(reader, lc.engine, lc.logger)
	for i, header := range headers {
		if header == nil {
			return i
		}
		parent, err := validator.VerifyBasic(header)
		if err != nil {
			return i
		}
		if err := validator.CheckDifficulty(header, parent, lc.config); err != nil {
			return i
		}
		if err := lc.appender.CheckFinality(header.Number); err != nil {
			return i
		}
		if reader.GetHeader(header.Hash()) != nil {
			return i
		}
		reader.pending[header.Hash()] = header
	}
	return len(headers)
}

// batchReader resolves headers staged earlier in a batch before falling back
// to the store.
type batchReader struct {
	core.HeaderReader
	pending map[common.Hash]*types.Header
}

func (r *batchReader) GetHeader(hash common.Hash) *types.Header {
	if header, ok := r.pending[hash]; ok {
		return header
	}
	return r.HeaderReader.GetHeader(hash)
}

// submit runs the validation pipeline and the append. The lock must be held.
func (lc *LightClient) submit(caller auth.CallerID, header *types.Header, precomputed *mixResult) error {
	if header == nil {
		headerMetrics.WithLabelValues(resultLabel(core.ErrNilHeader)).Inc()
		return core.ErrNilHeader
	}
	tip, err := lc.validateAndAppend(header, precomputed)
	headerMetrics.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		lc.logger.WithFields(log.Fields{
			"number": header.Number,
			"hash":   header.Hash(),
			"caller": caller,
			"err":    err,
		}).Warn("Rejected header")
		return err
	}
	tipGauge.Set(float64(tip.Number))
	lc.sink.Publish(MaintainEvent{Caller: caller, Header: types.CopyHeader(header), Tip: tip})
	return nil
}

func (lc *LightClient) validateAndAppend(header *types.Header, precomputed *mixResult) (*types.ChainTip, error) {
	parent, err := lc.validator.VerifyBasic(header)
	if err != nil {
		return nil, err
	}
	if err := lc.validator.CheckDifficulty(header, parent, lc.config); err != nil {
		return nil, err
	}
	if precomputed != nil {
		err = lc.validator.CheckPrecomputedPow(header, precomputed.mix, precomputed.err)
	} else {
		timer := prometheus.NewTimer(powTimer)
		err = lc.validator.CheckPow(header)
		timer.ObserveDuration()
	}
	if err != nil {
		return nil, err
	}
	return lc.appender.Append(header)
}

// VerifyReceipt checks that receipt is included at proof.Index of the block
// blockNumber of the light chain.
func (lc *LightClient) VerifyReceipt(ctx context.Context, origin auth.Origin, blockNumber uint64, proof *types.ReceiptProof, receipt *types.Receipt) error {
	if _, err := lc.auth.Authenticate(origin); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := lc.receipts.Verify(blockNumber, proof, receipt)
	receiptMetrics.WithLabelValues(resultLabel(err)).Inc()
	return err
}

// ChainTip returns the current chain tip, nil before the first append.
func (lc *LightClient) ChainTip() *types.ChainTip {
	return lc.store.ChainTip()
}

// Genesis returns the trusted genesis header, nil until set.
func (lc *LightClient) Genesis() *types.Header {
	return lc.store.Genesis()
}

// AuthorityBestNumber returns the last best number reported by the authority.
func (lc *LightClient) AuthorityBestNumber() uint64 {
	return lc.store.AuthorityBestNumber()
}

// Confirmations returns the finality buffer in blocks.
func (lc *LightClient) Confirmations() uint64 {
	return lc.appender.Confirmations()
}

func (lc *LightClient) privileged(origin auth.Origin) (auth.CallerID, error) {
	caller, err := lc.auth.Authenticate(origin)
	if err != nil {
		return "", err
	}
	if !lc.auth.IsPrivileged(caller) {
		return "", fmt.Errorf("%w: %s", auth.ErrNotPrivileged, caller)
	}
	return caller, nil
}
