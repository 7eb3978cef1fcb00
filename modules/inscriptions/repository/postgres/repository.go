package postgres

import (
	"github.com/gaze-network/ordbridge/internal/postgres"
	"github.com/gaze-network/ordbridge/modules/inscriptions/datagateway"
)

// Make sure to implement the InscriptionDataGateway interface
var _ datagateway.InscriptionDataGateway = (*Repository)(nil)

type Repository struct {
	db postgres.Queryable
}

func NewRepository(db postgres.Queryable) *Repository {
	return &Repository{db: db}
}
