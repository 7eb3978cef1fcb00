package bridge

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/core/types"
	"github.com/gaze-network/ordbridge/modules/bridge/collection"
	"github.com/gaze-network/ordbridge/modules/bridge/datagateway"
	"github.com/gaze-network/ordbridge/modules/bridge/internal/entity"
	"github.com/gaze-network/ordbridge/modules/inscriptions/ordinals"
	"github.com/gaze-network/ordbridge/pkg/btcutils"
	"github.com/gaze-network/ordbridge/pkg/logger"
	"github.com/gaze-network/ordbridge/pkg/logger/slogx"
)

type Config struct {
	BurnAddress           string
	OracleFeeAddress      string
	RequiredConfirmations int64
	MinFeeSats            int64
}

// Service owns the burn claim lifecycle: detection, confirmation accounting,
// retry, and the queries behind the HTTP surface. The store is the
// serialization point; the service keeps no derived claim state in memory.
type Service struct {
	bridgeDg   datagateway.BridgeDataGateway
	collection *collection.Collection
	network    common.Network
	config     Config
}

func NewService(bridgeDg datagateway.BridgeDataGateway, collection *collection.Collection, network common.Network, config Config) *Service {
	return &Service{
		bridgeDg:   bridgeDg,
		collection: collection,
		network:    network,
		config:     config,
	}
}

func (s *Service) Collection() *collection.Collection {
	return s.collection
}

func (s *Service) RequiredConfirmations() int64 {
	return s.config.RequiredConfirmations
}

func (s *Service) MinFeeSats() int64 {
	return s.config.MinFeeSats
}

// ProcessTransaction checks one indexed transaction for a burn of a
// collection inscription. Non-burns and unknown inscriptions are skipped
// silently.
func (s *Service) ProcessTransaction(ctx context.Context, tx *types.Transaction, firstOutputAddress string) error {
	if firstOutputAddress == "" || firstOutputAddress != s.config.BurnAddress {
		return nil
	}
	if len(tx.TxIn) == 0 {
		return nil
	}

	inscriptionId := ordinals.NewInscriptionId(tx.TxIn[0].PreviousOutTxHash, tx.TxIn[0].PreviousOutIndex).String()
	item, ok := s.collection.ByInscriptionId(inscriptionId)
	if !ok {
		return nil
	}

	var (
		senderAddress string
		feePaid       int64
	)
	if len(tx.TxOut) > 1 {
		senderAddress = btcutils.AddressFromPkScript(tx.TxOut[1].PkScript, s.network)
		if s.config.OracleFeeAddress != "" && senderAddress == s.config.OracleFeeAddress {
			feePaid = tx.TxOut[1].Value
		}
	}

	status := entity.ClaimStatusDetected
	if s.config.MinFeeSats > 0 && feePaid < s.config.MinFeeSats {
		status = entity.ClaimStatusUnderpaid
	}

	claim := &entity.BurnClaim{
		InscriptionId:   inscriptionId,
		CollectionName:  s.collection.Name(),
		TokenId:         item.TokenId,
		SenderAddress:   senderAddress,
		BurnTxHash:      tx.TxHash,
		BurnBlockHeight: tx.BlockHeight,
		BurnBlockHash:   tx.BlockHash,
		Status:          status,
	}
	created, err := s.bridgeDg.CreateBurnClaim(ctx, claim)
	if err != nil {
		return errors.Wrapf(err, "failed to create burn claim for %s", inscriptionId)
	}
	if created {
		logger.InfoContext(ctx, "Detected burn",
			slogx.String("inscription_id", inscriptionId),
			slogx.Int64("token_id", item.TokenId),
			slogx.Stringer("status", status),
			slogx.Int64("height", tx.BlockHeight),
		)
	}
	return nil
}

// Confirm promotes detected claims that reached the confirmation depth at
// currentHeight. Returns the number promoted.
func (s *Service) Confirm(ctx context.Context, currentHeight int64) (int64, error) {
	promoted, err := s.bridgeDg.ConfirmBurnClaims(ctx, currentHeight, s.config.RequiredConfirmations)
	if err != nil {
		return 0, errors.Wrap(err, "failed to confirm burn claims")
	}
	return promoted, nil
}

// Reorg deletes detected claims at and above height. Underpaid, confirmed,
// attested and failed claims survive: the former are user-visible records,
// the latter may already be submitted on-chain.
func (s *Service) Reorg(ctx context.Context, height int64) (int64, error) {
	deleted, err := s.bridgeDg.DeleteDetectedBurnClaimsFromHeight(ctx, height)
	if err != nil {
		return 0, errors.Wrap(err, "failed to roll back burn claims")
	}
	if deleted > 0 {
		logger.WarnContext(ctx, "Rolled back detected burn claims",
			slogx.Int64("height", height),
			slogx.Int64("deleted", deleted),
		)
	}
	return deleted, nil
}

// RetryFailed flips every failed claim back to confirmed so the next worker
// cycle picks it up again.
func (s *Service) RetryFailed(ctx context.Context) (int64, error) {
	count, err := s.bridgeDg.RetryFailedBurnClaims(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to retry failed burn claims")
	}
	return count, nil
}

// ReadyForAttestation lists confirmed claims awaiting attestation, oldest
// first.
func (s *Service) ReadyForAttestation(ctx context.Context, limit int32) ([]*entity.BurnClaim, error) {
	claims, err := s.bridgeDg.GetBurnClaimsByStatus(ctx, entity.ClaimStatusConfirmed, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list confirmed claims")
	}
	return claims, nil
}

// MarkFailed transitions a confirmed claim to failed.
func (s *Service) MarkFailed(ctx context.Context, inscriptionId string) error {
	updated, err := s.bridgeDg.UpdateBurnClaimStatus(ctx, inscriptionId,
		[]entity.ClaimStatus{entity.ClaimStatusConfirmed}, entity.ClaimStatusFailed, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to mark claim %s failed", inscriptionId)
	}
	if !updated {
		return errors.Wrapf(errs.Conflict, "claim %s is not confirmed", inscriptionId)
	}
	return nil
}

// MarkAttested transitions a confirmed claim to attested, recording the
// attestation txid. Re-marking an attested claim is a no-op.
func (s *Service) MarkAttested(ctx context.Context, inscriptionId string, attestTxId string) error {
	updated, err := s.bridgeDg.UpdateBurnClaimStatus(ctx, inscriptionId,
		[]entity.ClaimStatus{entity.ClaimStatusConfirmed}, entity.ClaimStatusAttested, &attestTxId)
	if err != nil {
		return errors.Wrapf(err, "failed to mark claim %s attested", inscriptionId)
	}
	if updated {
		return nil
	}
	claim, err := s.bridgeDg.GetBurnClaim(ctx, inscriptionId)
	if err != nil {
		return errors.Wrapf(err, "failed to get claim %s", inscriptionId)
	}
	if claim.Status == entity.ClaimStatusAttested {
		return nil
	}
	return errors.Wrapf(errs.Conflict, "claim %s is %s, not confirmed", inscriptionId, claim.Status)
}

func (s *Service) GetClaim(ctx context.Context, inscriptionId string) (*entity.BurnClaim, error) {
	claim, err := s.bridgeDg.GetBurnClaim(ctx, inscriptionId)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return claim, nil
}

func (s *Service) GetClaimsBySender(ctx context.Context, sender string, limit, offset int32) ([]*entity.BurnClaim, error) {
	claims, err := s.bridgeDg.GetBurnClaimsBySender(ctx, sender, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list claims by sender")
	}
	return claims, nil
}

func (s *Service) Stats(ctx context.Context) (*entity.BridgeStats, error) {
	counts, err := s.bridgeDg.CountBurnClaimsByStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count claims")
	}
	var total int64
	for _, count := range counts {
		total += count
	}
	return &entity.BridgeStats{
		TotalClaims:           total,
		ClaimsByStatus:        counts,
		CollectionSize:        s.collection.Size(),
		BurnAddress:           s.config.BurnAddress,
		RequiredConfirmations: s.config.RequiredConfirmations,
		MinFeeSats:            s.config.MinFeeSats,
	}, nil
}
