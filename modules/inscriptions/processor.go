package inscriptions

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/core/indexer"
	"github.com/gaze-network/ordbridge/core/types"
	"github.com/gaze-network/ordbridge/modules/inscriptions/datagateway"
	"github.com/gaze-network/ordbridge/modules/inscriptions/internal/entity"
	"github.com/gaze-network/ordbridge/modules/inscriptions/ordinals"
	"github.com/gaze-network/ordbridge/pkg/btcutils"
	"github.com/gaze-network/ordbridge/pkg/logger"
	"github.com/gaze-network/ordbridge/pkg/logger/slogx"
)

// TransactionHook receives every indexed transaction after inscription
// extraction. The bridge service implements it; a nil hook disables it.
type TransactionHook interface {
	// ProcessTransaction inspects one transaction for a burn.
	ProcessTransaction(ctx context.Context, tx *types.Transaction, firstOutputAddress string) error
	// Confirm promotes claims that reached the confirmation depth at height.
	Confirm(ctx context.Context, height int64) (int64, error)
	// Reorg rolls back unconfirmed claims at and above height.
	Reorg(ctx context.Context, height int64) (int64, error)
}

// Make sure to implement the indexer.Processor interface
var _ indexer.Processor = (*Processor)(nil)

type Processor struct {
	inscriptionDg datagateway.InscriptionDataGateway
	network       common.Network
	hook          TransactionHook

	// next inscription number, maintained under the indexer's
	// single-writer discipline
	counter int64
}

func NewProcessor(inscriptionDg datagateway.InscriptionDataGateway, network common.Network, hook TransactionHook) *Processor {
	return &Processor{
		inscriptionDg: inscriptionDg,
		network:       network,
		hook:          hook,
	}
}

func (p *Processor) Name() string {
	return "inscriptions"
}

// Init seeds the inscription number counter from the store.
func (p *Processor) Init(ctx context.Context) error {
	count, err := p.inscriptionDg.CountInscriptions(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count inscriptions")
	}
	p.counter = count
	return nil
}

func (p *Processor) CurrentBlock(ctx context.Context) (*types.BlockHeader, error) {
	indexedBlock, err := p.inscriptionDg.GetLatestIndexedBlock(ctx)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "failed to get latest indexed block")
	}
	return &types.BlockHeader{Height: indexedBlock.Height, Hash: indexedBlock.Hash}, nil
}

func (p *Processor) Process(ctx context.Context, block *types.Block) error {
	for _, tx := range block.Transactions {
		var firstOutputAddress string
		if len(tx.TxOut) > 0 {
			firstOutputAddress = btcutils.AddressFromPkScript(tx.TxOut[0].PkScript, p.network)
		}

		localIndex := uint32(0)
		for _, txIn := range tx.TxIn {
			envelope := ordinals.ParseEnvelopeFromWitness(txIn.Witness)
			if envelope == nil {
				continue
			}
			inscription := &entity.Inscription{
				Id:                ordinals.NewInscriptionId(tx.TxHash, localIndex).String(),
				ContentType:       envelope.ContentType,
				Content:           envelope.Content,
				BlockHeight:       block.Header.Height,
				BlockHash:         block.Header.Hash,
				TxHash:            tx.TxHash,
				Vout:              0,
				Owner:             firstOutputAddress,
				Timestamp:         block.Header.Timestamp,
				InscriptionNumber: p.counter,
				Pointer:           envelope.Pointer,
				Parent:            envelope.Parent,
				Metadata:          envelope.Metadata,
				Metaprotocol:      envelope.Metaprotocol,
				ContentEncoding:   envelope.ContentEncoding,
				Delegate:          envelope.Delegate,
			}
			inserted, err := p.inscriptionDg.SaveInscription(ctx, inscription)
			if err != nil {
				return errors.Wrapf(err, "failed to save inscription %s", inscription.Id)
			}
			if inserted {
				// a conflicting insert must not consume a number
				p.counter++
				logger.DebugContext(ctx, "Indexed inscription",
					slogx.String("id", inscription.Id),
					slogx.Int64("number", inscription.InscriptionNumber),
					slogx.String("content_type", inscription.ContentType),
				)
			}
			localIndex++
		}

		if p.hook != nil {
			if err := p.hook.ProcessTransaction(ctx, tx, firstOutputAddress); err != nil {
				return errors.Wrapf(err, "bridge hook failed for tx %s", tx.TxHash)
			}
		}
	}

	if p.hook != nil {
		promoted, err := p.hook.Confirm(ctx, block.Header.Height)
		if err != nil {
			return errors.Wrap(err, "bridge confirmation sweep failed")
		}
		if promoted > 0 {
			logger.InfoContext(ctx, "Confirmed burn claims",
				slogx.Int64("count", promoted),
				slogx.Int64("height", block.Header.Height),
			)
		}
	}
	return nil
}

func (p *Processor) RevertFrom(ctx context.Context, height int64) error {
	deleted, err := p.inscriptionDg.DeleteInscriptionsFromHeight(ctx, height)
	if err != nil {
		return errors.Wrap(err, "failed to delete inscriptions")
	}
	count, err := p.inscriptionDg.CountInscriptions(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to count inscriptions")
	}
	p.counter = count

	logger.WarnContext(ctx, "Reverted inscriptions",
		slogx.Int64("height", height),
		slogx.Int64("deleted", deleted),
		slogx.Int64("surviving", count),
	)

	if p.hook != nil {
		if _, err := p.hook.Reorg(ctx, height); err != nil {
			return errors.Wrap(err, "bridge reorg rollback failed")
		}
	}
	return nil
}
