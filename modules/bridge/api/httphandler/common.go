package httphandler

import (
	"fmt"

	"github.com/gaze-network/ordbridge/modules/bridge/internal/entity"
)

type claimResponse struct {
	InscriptionId   string  `json:"inscriptionId"`
	CollectionName  string  `json:"collectionName"`
	TokenId         int64   `json:"tokenId"`
	SenderAddress   string  `json:"senderAddress"`
	BurnTxHash      string  `json:"burnTxHash"`
	BurnBlockHeight int64   `json:"burnBlockHeight"`
	BurnBlockHash   string  `json:"burnBlockHash"`
	Status          string  `json:"status"`
	AttestTxId      *string `json:"attestTxId,omitempty"`
	Message         string  `json:"message,omitempty"`
	CreatedAt       int64   `json:"createdAt"`
	UpdatedAt       int64   `json:"updatedAt"`
}

func (h *HttpHandler) newClaimResponse(src *entity.BurnClaim) claimResponse {
	resp := claimResponse{
		InscriptionId:   src.InscriptionId,
		CollectionName:  src.CollectionName,
		TokenId:         src.TokenId,
		SenderAddress:   src.SenderAddress,
		BurnTxHash:      src.BurnTxHash.String(),
		BurnBlockHeight: src.BurnBlockHeight,
		BurnBlockHash:   src.BurnBlockHash.String(),
		Status:          src.Status.String(),
		AttestTxId:      src.AttestTxId,
		CreatedAt:       src.CreatedAt.UnixMilli(),
		UpdatedAt:       src.UpdatedAt.UnixMilli(),
	}
	if src.Status == entity.ClaimStatusUnderpaid {
		resp.Message = fmt.Sprintf("burn fee below the required minimum of %d sats; the claim will not be bridged", h.bridge.MinFeeSats())
	}
	return resp
}
