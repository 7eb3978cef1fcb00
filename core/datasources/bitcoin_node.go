package datasources

import (
	"context"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/rpcclient"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/core/types"
)

// Make sure to implement the BitcoinDatasource interface
var _ BitcoinDatasource = (*BitcoinNodeDatasource)(nil)

// BitcoinNodeDatasource fetches blocks from a Bitcoin node over JSON-RPC.
type BitcoinNodeDatasource struct {
	btcclient *rpcclient.Client
}

func NewBitcoinNode(btcclient *rpcclient.Client) *BitcoinNodeDatasource {
	return &BitcoinNodeDatasource{btcclient: btcclient}
}

func (d *BitcoinNodeDatasource) Name() string {
	return "bitcoin-node"
}

func (d *BitcoinNodeDatasource) GetBlock(ctx context.Context, height int64) (*types.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "context done")
	}

	blockHash, err := d.btcclient.GetBlockHash(height)
	if err != nil {
		if isBlockNotFound(err) {
			return nil, errors.Wrapf(errs.NotFound, "block %d not found", height)
		}
		return nil, errors.Wrapf(err, "failed to get block hash at height %d", height)
	}

	msgBlock, err := d.btcclient.GetBlock(blockHash)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get block %s", blockHash)
	}
	return types.ParseMsgBlock(msgBlock, height), nil
}

// isBlockNotFound reports whether the RPC error means the height is past the
// current tip.
func isBlockNotFound(err error) bool {
	var rpcErr *btcjson.RPCError
	if !errors.As(err, &rpcErr) {
		return false
	}
	switch rpcErr.Code {
	case btcjson.ErrRPCOutOfRange, btcjson.ErrRPCInvalidParameter, btcjson.ErrRPCBlockNotFound:
		return true
	}
	return false
}
