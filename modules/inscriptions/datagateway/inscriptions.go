package datagateway

import (
	"context"

	"github.com/gaze-network/ordbridge/modules/inscriptions/internal/entity"
)

type InscriptionDataGateway interface {
	// SaveInscription inserts the inscription. A conflict on id is a silent
	// no-op; the returned bool reports whether a new row was written.
	SaveInscription(ctx context.Context, inscription *entity.Inscription) (bool, error)

	// GetInscriptionById returns errs.NotFound when the id does not exist.
	GetInscriptionById(ctx context.Context, id string) (*entity.Inscription, error)
	GetInscriptionsByOwner(ctx context.Context, owner string, limit, offset int32) ([]*entity.Inscription, error)
	GetLatestInscriptions(ctx context.Context, limit int32) ([]*entity.Inscription, error)
	GetInscriptionsByContentType(ctx context.Context, contentType string, limit int32) ([]*entity.Inscription, error)

	CountInscriptions(ctx context.Context) (int64, error)
	GetInscriptionStats(ctx context.Context) (*entity.InscriptionStats, error)

	// GetLatestIndexedBlock returns errs.NotFound when the store is empty.
	GetLatestIndexedBlock(ctx context.Context) (*entity.IndexedBlock, error)

	// DeleteInscriptionsFromHeight removes every row with
	// block_height >= height and returns the number of rows removed.
	DeleteInscriptionsFromHeight(ctx context.Context, height int64) (int64, error)
}
