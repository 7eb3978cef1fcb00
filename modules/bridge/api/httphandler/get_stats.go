package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gofiber/fiber/v2"
)

type getStatsResult struct {
	TotalClaims           int64            `json:"totalClaims"`
	ClaimsByStatus        map[string]int64 `json:"claimsByStatus"`
	CollectionName        string           `json:"collectionName"`
	CollectionSymbol      string           `json:"collectionSymbol"`
	CollectionSize        int              `json:"collectionSize"`
	BurnAddress           string           `json:"burnAddress"`
	RequiredConfirmations int64            `json:"requiredConfirmations"`
	MinFeeSats            int64            `json:"minFeeSats"`
}

type getStatsResponse = common.HttpResponse[getStatsResult]

func (h *HttpHandler) GetStats(ctx *fiber.Ctx) (err error) {
	stats, err := h.bridge.Stats(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during Stats")
	}

	claimsByStatus := make(map[string]int64, len(stats.ClaimsByStatus))
	for status, count := range stats.ClaimsByStatus {
		claimsByStatus[status.String()] = count
	}
	result := getStatsResult{
		TotalClaims:           stats.TotalClaims,
		ClaimsByStatus:        claimsByStatus,
		CollectionName:        h.bridge.Collection().Name(),
		CollectionSymbol:      h.bridge.Collection().Symbol(),
		CollectionSize:        stats.CollectionSize,
		BurnAddress:           stats.BurnAddress,
		RequiredConfirmations: stats.RequiredConfirmations,
		MinFeeSats:            stats.MinFeeSats,
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getStatsResponse{
		Result: &result,
	}))
}
