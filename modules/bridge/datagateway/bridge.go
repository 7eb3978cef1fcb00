package datagateway

import (
	"context"

	"github.com/gaze-network/ordbridge/modules/bridge/internal/entity"
)

type BridgeDataGateway interface {
	// CreateBurnClaim inserts the claim. A conflict on inscription id is a
	// silent no-op; the returned bool reports whether a new row was written.
	CreateBurnClaim(ctx context.Context, claim *entity.BurnClaim) (bool, error)

	// GetBurnClaim returns errs.NotFound when no claim exists for the id.
	GetBurnClaim(ctx context.Context, inscriptionId string) (*entity.BurnClaim, error)
	GetBurnClaimsBySender(ctx context.Context, sender string, limit, offset int32) ([]*entity.BurnClaim, error)
	GetBurnClaimsByStatus(ctx context.Context, status entity.ClaimStatus, limit int32) ([]*entity.BurnClaim, error)
	CountBurnClaimsByStatus(ctx context.Context) (map[entity.ClaimStatus]int64, error)

	// UpdateBurnClaimStatus transitions the claim from one of the given
	// statuses, touching updated_at in the same statement. It returns false
	// when the claim is not in any of the from statuses.
	UpdateBurnClaimStatus(ctx context.Context, inscriptionId string, from []entity.ClaimStatus, to entity.ClaimStatus, attestTxId *string) (bool, error)

	// ConfirmBurnClaims promotes detected claims whose burn height is at
	// least requiredConfirmations below currentHeight. Returns the count.
	ConfirmBurnClaims(ctx context.Context, currentHeight, requiredConfirmations int64) (int64, error)

	// RetryFailedBurnClaims flips every failed claim back to confirmed.
	RetryFailedBurnClaims(ctx context.Context) (int64, error)

	// DeleteDetectedBurnClaimsFromHeight removes detected claims with
	// burn_block_height >= height. Other statuses are preserved.
	DeleteDetectedBurnClaimsFromHeight(ctx context.Context, height int64) (int64, error)
}
