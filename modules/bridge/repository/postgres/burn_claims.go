package postgres

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/modules/bridge/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"
)

const insertBurnClaim = `
INSERT INTO burn_claims (inscription_id, collection_name, token_id, sender_address, burn_txid, burn_block_height, burn_block_hash, status, attest_txid, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, $9, $9)
ON CONFLICT (inscription_id) DO NOTHING
`

func (r *Repository) CreateBurnClaim(ctx context.Context, claim *entity.BurnClaim) (bool, error) {
	now := time.Now().UnixMilli()
	tag, err := r.db.Exec(ctx, insertBurnClaim,
		claim.InscriptionId,
		claim.CollectionName,
		claim.TokenId,
		claim.SenderAddress,
		claim.BurnTxHash.String(),
		claim.BurnBlockHeight,
		claim.BurnBlockHash.String(),
		claim.Status.String(),
		now,
	)
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return tag.RowsAffected() > 0, nil
}

const selectBurnClaim = `
SELECT inscription_id, collection_name, token_id, sender_address, burn_txid, burn_block_height, burn_block_hash, status, attest_txid, created_at, updated_at
FROM burn_claims
`

func (r *Repository) GetBurnClaim(ctx context.Context, inscriptionId string) (*entity.BurnClaim, error) {
	row := r.db.QueryRow(ctx, selectBurnClaim+`WHERE inscription_id = $1`, inscriptionId)
	claim, err := scanBurnClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during scan")
	}
	return claim, nil
}

func (r *Repository) GetBurnClaimsBySender(ctx context.Context, sender string, limit, offset int32) ([]*entity.BurnClaim, error) {
	rows, err := r.db.Query(ctx, selectBurnClaim+`WHERE sender_address = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, sender, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return scanBurnClaims(rows)
}

func (r *Repository) GetBurnClaimsByStatus(ctx context.Context, status entity.ClaimStatus, limit int32) ([]*entity.BurnClaim, error) {
	rows, err := r.db.Query(ctx, selectBurnClaim+`WHERE status = $1 ORDER BY created_at ASC LIMIT $2`, status.String(), limit)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return scanBurnClaims(rows)
}

func (r *Repository) CountBurnClaimsByStatus(ctx context.Context) (map[entity.ClaimStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM burn_claims GROUP BY status`)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()
	counts := make(map[entity.ClaimStatus]int64)
	for rows.Next() {
		var (
			status string
			count  int64
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		counts[entity.ClaimStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iterate rows")
	}
	return counts, nil
}

const updateBurnClaimStatus = `
UPDATE burn_claims
SET status = $2, attest_txid = COALESCE($3, attest_txid), updated_at = $4
WHERE inscription_id = $1 AND status = ANY($5)
`

func (r *Repository) UpdateBurnClaimStatus(ctx context.Context, inscriptionId string, from []entity.ClaimStatus, to entity.ClaimStatus, attestTxId *string) (bool, error) {
	fromStatuses := lo.Map(from, func(s entity.ClaimStatus, _ int) string { return s.String() })
	tag, err := r.db.Exec(ctx, updateBurnClaimStatus,
		inscriptionId,
		to.String(),
		attestTxId,
		time.Now().UnixMilli(),
		fromStatuses,
	)
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return tag.RowsAffected() > 0, nil
}

const confirmBurnClaims = `
UPDATE burn_claims
SET status = $1, updated_at = $2
WHERE status = $3 AND $4 - burn_block_height >= $5
`

func (r *Repository) ConfirmBurnClaims(ctx context.Context, currentHeight, requiredConfirmations int64) (int64, error) {
	tag, err := r.db.Exec(ctx, confirmBurnClaims,
		entity.ClaimStatusConfirmed.String(),
		time.Now().UnixMilli(),
		entity.ClaimStatusDetected.String(),
		currentHeight,
		requiredConfirmations,
	)
	if err != nil {
		return 0, errors.Wrap(err, "error during exec")
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) RetryFailedBurnClaims(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE burn_claims SET status = $1, updated_at = $2 WHERE status = $3`,
		entity.ClaimStatusConfirmed.String(),
		time.Now().UnixMilli(),
		entity.ClaimStatusFailed.String(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "error during exec")
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) DeleteDetectedBurnClaimsFromHeight(ctx context.Context, height int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM burn_claims WHERE status = $1 AND burn_block_height >= $2`,
		entity.ClaimStatusDetected.String(),
		height,
	)
	if err != nil {
		return 0, errors.Wrap(err, "error during exec")
	}
	return tag.RowsAffected(), nil
}

func scanBurnClaim(row pgx.Row) (*entity.BurnClaim, error) {
	var (
		claim       entity.BurnClaim
		burnTxid    string
		burnBlkHash string
		status      string
		createdAtMs int64
		updatedAtMs int64
	)
	if err := row.Scan(
		&claim.InscriptionId,
		&claim.CollectionName,
		&claim.TokenId,
		&claim.SenderAddress,
		&burnTxid,
		&claim.BurnBlockHeight,
		&burnBlkHash,
		&status,
		&claim.AttestTxId,
		&createdAtMs,
		&updatedAtMs,
	); err != nil {
		return nil, errors.WithStack(err)
	}
	parsedTxHash, err := chainhash.NewHashFromStr(burnTxid)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse burn txid")
	}
	parsedBlockHash, err := chainhash.NewHashFromStr(burnBlkHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse burn block hash")
	}
	claim.BurnTxHash = *parsedTxHash
	claim.BurnBlockHash = *parsedBlockHash
	claim.Status = entity.ClaimStatus(status)
	claim.CreatedAt = time.UnixMilli(createdAtMs).UTC()
	claim.UpdatedAt = time.UnixMilli(updatedAtMs).UTC()
	return &claim, nil
}

func scanBurnClaims(rows pgx.Rows) ([]*entity.BurnClaim, error) {
	defer rows.Close()
	claims := make([]*entity.BurnClaim, 0)
	for rows.Next() {
		claim, err := scanBurnClaim(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iterate rows")
	}
	return claims, nil
}
