package postgres

import (
	"github.com/gaze-network/ordbridge/internal/postgres"
	"github.com/gaze-network/ordbridge/modules/bridge/datagateway"
)

// Make sure to implement the BridgeDataGateway interface
var _ datagateway.BridgeDataGateway = (*Repository)(nil)

type Repository struct {
	db postgres.Queryable
}

func NewRepository(db postgres.Queryable) *Repository {
	return &Repository{db: db}
}
