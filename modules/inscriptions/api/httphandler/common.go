package httphandler

import (
	"encoding/base64"

	"github.com/gaze-network/ordbridge/modules/inscriptions/internal/entity"
)

type paginationRequest struct {
	Limit  int32 `query:"limit"`
	Offset int32 `query:"offset"`
}

type inscriptionResponse struct {
	Id                string `json:"id"`
	ContentType       string `json:"contentType"`
	Content           string `json:"content"`
	ContentSize       int    `json:"contentSize"`
	BlockHeight       int64  `json:"blockHeight"`
	BlockHash         string `json:"blockHash"`
	TxHash            string `json:"txHash"`
	Vout              int32  `json:"vout"`
	Owner             string `json:"owner"`
	Timestamp         int64  `json:"timestamp"`
	InscriptionNumber int64  `json:"inscriptionNumber"`
}

func newInscriptionResponse(src *entity.Inscription) inscriptionResponse {
	return inscriptionResponse{
		Id:                src.Id,
		ContentType:       src.ContentType,
		Content:           base64.StdEncoding.EncodeToString(src.Content),
		ContentSize:       len(src.Content),
		BlockHeight:       src.BlockHeight,
		BlockHash:         src.BlockHash.String(),
		TxHash:            src.TxHash.String(),
		Vout:              src.Vout,
		Owner:             src.Owner,
		Timestamp:         src.Timestamp.Unix(),
		InscriptionNumber: src.InscriptionNumber,
	}
}
