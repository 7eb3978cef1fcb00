package postgres

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/modules/inscriptions/internal/entity"
	"github.com/jackc/pgx/v5"
)

const insertInscription = `
INSERT INTO inscriptions (id, content_type, content, block_height, block_hash, txid, vout, owner, timestamp, inscription_number)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO NOTHING
`

func (r *Repository) SaveInscription(ctx context.Context, inscription *entity.Inscription) (bool, error) {
	tag, err := r.db.Exec(ctx, insertInscription,
		inscription.Id,
		inscription.ContentType,
		inscription.Content,
		inscription.BlockHeight,
		inscription.BlockHash.String(),
		inscription.TxHash.String(),
		inscription.Vout,
		inscription.Owner,
		inscription.Timestamp.Unix(),
		inscription.InscriptionNumber,
	)
	if err != nil {
		return false, errors.Wrap(err, "error during exec")
	}
	return tag.RowsAffected() > 0, nil
}

const selectInscription = `
SELECT id, content_type, content, block_height, block_hash, txid, vout, owner, timestamp, inscription_number
FROM inscriptions
`

func (r *Repository) GetInscriptionById(ctx context.Context, id string) (*entity.Inscription, error) {
	row := r.db.QueryRow(ctx, selectInscription+`WHERE id = $1`, id)
	inscription, err := scanInscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during scan")
	}
	return inscription, nil
}

func (r *Repository) GetInscriptionsByOwner(ctx context.Context, owner string, limit, offset int32) ([]*entity.Inscription, error) {
	rows, err := r.db.Query(ctx, selectInscription+`WHERE owner = $1 ORDER BY inscription_number DESC LIMIT $2 OFFSET $3`, owner, limit, offset)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return scanInscriptions(rows)
}

func (r *Repository) GetLatestInscriptions(ctx context.Context, limit int32) ([]*entity.Inscription, error) {
	rows, err := r.db.Query(ctx, selectInscription+`ORDER BY inscription_number DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return scanInscriptions(rows)
}

func (r *Repository) GetInscriptionsByContentType(ctx context.Context, contentType string, limit int32) ([]*entity.Inscription, error) {
	rows, err := r.db.Query(ctx, selectInscription+`WHERE content_type = $1 ORDER BY inscription_number DESC LIMIT $2`, contentType, limit)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	return scanInscriptions(rows)
}

func (r *Repository) CountInscriptions(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inscriptions`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "error during scan")
	}
	return count, nil
}

func (r *Repository) GetInscriptionStats(ctx context.Context) (*entity.InscriptionStats, error) {
	var stats entity.InscriptionStats
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*), COUNT(DISTINCT owner) FILTER (WHERE owner <> '') FROM inscriptions`).
		Scan(&stats.TotalInscriptions, &stats.DistinctOwners); err != nil {
		return nil, errors.Wrap(err, "error during scan")
	}

	rows, err := r.db.Query(ctx, `SELECT content_type, COUNT(*) FROM inscriptions GROUP BY content_type ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "error during query")
	}
	defer rows.Close()
	for rows.Next() {
		var count entity.ContentTypeCount
		if err := rows.Scan(&count.ContentType, &count.Count); err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		stats.ContentTypes = append(stats.ContentTypes, count)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iterate rows")
	}
	return &stats, nil
}

func (r *Repository) GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error) {
	var (
		height    int64
		blockHash string
	)
	err := r.db.QueryRow(ctx, `SELECT block_height, block_hash FROM inscriptions ORDER BY block_height DESC LIMIT 1`).
		Scan(&height, &blockHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errors.WithStack(errs.NotFound)
		}
		return nil, errors.Wrap(err, "error during scan")
	}
	hash, err := chainhash.NewHashFromStr(blockHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse block hash")
	}
	return &entity.IndexedBlock{Height: height, Hash: *hash}, nil
}

func (r *Repository) DeleteInscriptionsFromHeight(ctx context.Context, height int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM inscriptions WHERE block_height >= $1`, height)
	if err != nil {
		return 0, errors.Wrap(err, "error during exec")
	}
	return tag.RowsAffected(), nil
}

func scanInscription(row pgx.Row) (*entity.Inscription, error) {
	var (
		inscription entity.Inscription
		blockHash   string
		txid        string
		timestamp   int64
	)
	if err := row.Scan(
		&inscription.Id,
		&inscription.ContentType,
		&inscription.Content,
		&inscription.BlockHeight,
		&blockHash,
		&txid,
		&inscription.Vout,
		&inscription.Owner,
		&timestamp,
		&inscription.InscriptionNumber,
	); err != nil {
		return nil, errors.WithStack(err)
	}
	parsedBlockHash, err := chainhash.NewHashFromStr(blockHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse block hash")
	}
	parsedTxHash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse txid")
	}
	inscription.BlockHash = *parsedBlockHash
	inscription.TxHash = *parsedTxHash
	inscription.Timestamp = time.Unix(timestamp, 0).UTC()
	return &inscription, nil
}

func scanInscriptions(rows pgx.Rows) ([]*entity.Inscription, error) {
	defer rows.Close()
	inscriptions := make([]*entity.Inscription, 0)
	for rows.Next() {
		inscription, err := scanInscription(rows)
		if err != nil {
			return nil, errors.Wrap(err, "error during scan")
		}
		inscriptions = append(inscriptions, inscription)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error during iterate rows")
	}
	return inscriptions, nil
}
