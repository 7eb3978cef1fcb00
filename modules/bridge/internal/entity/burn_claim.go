package entity

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// ClaimStatus is the burn claim lifecycle state. Transitions:
//
//	detected  -> confirmed  (confirmation depth reached)
//	detected  -> underpaid  (set at insert when the fee check fails; terminal)
//	confirmed -> attested   (terminal)
//	confirmed -> failed
//	failed    -> confirmed  (explicit retry)
type ClaimStatus string

const (
	ClaimStatusDetected  ClaimStatus = "detected"
	ClaimStatusUnderpaid ClaimStatus = "underpaid"
	ClaimStatusConfirmed ClaimStatus = "confirmed"
	ClaimStatusAttested  ClaimStatus = "attested"
	ClaimStatusFailed    ClaimStatus = "failed"
)

func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusDetected, ClaimStatusUnderpaid, ClaimStatusConfirmed, ClaimStatusAttested, ClaimStatusFailed:
		return true
	}
	return false
}

func (s ClaimStatus) String() string {
	return string(s)
}

type BurnClaim struct {
	InscriptionId   string
	CollectionName  string
	TokenId         int64
	SenderAddress   string
	BurnTxHash      chainhash.Hash
	BurnBlockHeight int64
	BurnBlockHash   chainhash.Hash
	Status          ClaimStatus
	AttestTxId      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type BridgeStats struct {
	TotalClaims           int64
	ClaimsByStatus        map[ClaimStatus]int64
	CollectionSize        int
	BurnAddress           string
	RequiredConfirmations int64
	MinFeeSats            int64
}
