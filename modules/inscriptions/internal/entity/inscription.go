package entity

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

type Inscription struct {
	Id                string
	ContentType       string
	Content           []byte
	BlockHeight       int64
	BlockHash         chainhash.Hash
	TxHash            chainhash.Hash
	Vout              int32
	Owner             string
	Timestamp         time.Time
	InscriptionNumber int64

	// envelope extras, carried in-memory only
	Pointer         []byte
	Parent          []byte
	Metadata        []byte
	Metaprotocol    string
	ContentEncoding string
	Delegate        []byte
}

type ContentTypeCount struct {
	ContentType string
	Count       int64
}

type InscriptionStats struct {
	TotalInscriptions int64
	DistinctOwners    int64
	ContentTypes      []ContentTypeCount
}

// IndexedBlock is the newest block known to the store, used to resume
// indexing after a restart.
type IndexedBlock struct {
	Height int64
	Hash   chainhash.Hash
}
