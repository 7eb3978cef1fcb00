package datasources

import (
	"context"

	"github.com/gaze-network/ordbridge/core/types"
)

// BitcoinDatasource supplies blocks by height. GetBlock returns errs.NotFound
// when the height is beyond the current chain tip.
type BitcoinDatasource interface {
	Name() string
	GetBlock(ctx context.Context, height int64) (*types.Block, error)
}
