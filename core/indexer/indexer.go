package indexer

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/core/datasources"
	"github.com/gaze-network/ordbridge/core/types"
	"github.com/gaze-network/ordbridge/pkg/logger"
	"github.com/gaze-network/ordbridge/pkg/logger/slogx"
)

// Processor consumes blocks in height order and can roll its state back when
// the chain reorganizes.
type Processor interface {
	Name() string
	// Init prepares in-memory state before the first block.
	Init(ctx context.Context) error
	// CurrentBlock returns the newest indexed block, errs.NotFound when none.
	CurrentBlock(ctx context.Context) (*types.BlockHeader, error)
	Process(ctx context.Context, block *types.Block) error
	// RevertFrom discards indexed data at heights >= height.
	RevertFrom(ctx context.Context, height int64) error
}

const (
	// polling delay when the next block does not exist yet
	defaultBlockWait = 10 * time.Second
	// back-off after a transient datasource failure
	defaultErrorWait = 5 * time.Second
)

type Indexer struct {
	datasource  datasources.BitcoinDatasource
	processor   Processor
	startHeight int64

	currentHeight int64
	lastBlockHash *chainhash.Hash

	blockWait time.Duration
	errorWait time.Duration

	quit chan struct{}
	done chan struct{}
}

func New(datasource datasources.BitcoinDatasource, processor Processor, startHeight int64) *Indexer {
	return &Indexer{
		datasource:  datasource,
		processor:   processor,
		startHeight: startHeight,
		blockWait:   defaultBlockWait,
		errorWait:   defaultErrorWait,
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Run drives the processor until the context is cancelled or Shutdown is
// called. It blocks.
func (i *Indexer) Run(ctx context.Context) error {
	defer close(i.done)

	if err := i.processor.Init(ctx); err != nil {
		return errors.Wrap(err, "failed to initialize processor")
	}

	i.currentHeight = i.startHeight
	currentBlock, err := i.processor.CurrentBlock(ctx)
	if err != nil && !errors.Is(err, errs.NotFound) {
		return errors.Wrap(err, "failed to get current block from processor")
	}
	if err == nil && currentBlock.Height+1 > i.currentHeight {
		i.currentHeight = currentBlock.Height + 1
		hash := currentBlock.Hash
		i.lastBlockHash = &hash
	}

	logger.InfoContext(ctx, "Starting indexer",
		slogx.String("processor", i.processor.Name()),
		slogx.Int64("height", i.currentHeight),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-i.quit:
			return nil
		default:
		}

		if err := i.step(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to process block",
				slogx.Int64("height", i.currentHeight),
				slogx.Error(err),
			)
			if !i.sleep(ctx, i.errorWait) {
				return nil
			}
		}
	}
}

// step fetches and processes a single block, advancing the height on success.
func (i *Indexer) step(ctx context.Context) error {
	block, err := i.datasource.GetBlock(ctx, i.currentHeight)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			// the chain tip has not reached us yet
			i.sleep(ctx, i.blockWait)
			return nil
		}
		return errors.Wrap(err, "failed to fetch block")
	}

	if i.lastBlockHash != nil && block.Header.PrevBlock != *i.lastBlockHash {
		logger.WarnContext(ctx, "Chain reorganization detected",
			slogx.Int64("height", i.currentHeight),
			slogx.Stringer("expected_prev", i.lastBlockHash),
			slogx.Stringer("got_prev", block.Header.PrevBlock),
		)
		if err := i.processor.RevertFrom(ctx, i.currentHeight); err != nil {
			return errors.Wrap(err, "failed to revert processor state")
		}
		// re-fetch the same height next iteration; it now links to the
		// canonical chain
		i.lastBlockHash = nil
		return nil
	}

	if err := i.processor.Process(ctx, block); err != nil {
		return errors.Wrapf(err, "processor failed at height %d", i.currentHeight)
	}

	hash := block.Header.Hash
	i.lastBlockHash = &hash
	i.currentHeight++
	return nil
}

// sleep waits for d, returning false when the indexer should stop instead.
func (i *Indexer) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-i.quit:
		return false
	case <-timer.C:
		return true
	}
}

// Shutdown stops the loop at the next block boundary and waits for it.
func (i *Indexer) Shutdown() {
	close(i.quit)
	<-i.done
}
