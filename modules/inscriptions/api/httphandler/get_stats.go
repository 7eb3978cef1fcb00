package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/modules/inscriptions/internal/entity"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type contentTypeStat struct {
	ContentType string  `json:"contentType"`
	Count       int64   `json:"count"`
	Percent     float64 `json:"percent"`
}

type getStatsResult struct {
	TotalInscriptions int64             `json:"totalInscriptions"`
	DistinctOwners    int64             `json:"distinctOwners"`
	ContentTypes      []contentTypeStat `json:"contentTypes"`
}

type getStatsResponse = common.HttpResponse[getStatsResult]

func (h *HttpHandler) GetStats(ctx *fiber.Ctx) (err error) {
	stats, err := h.inscriptionDg.GetInscriptionStats(ctx.UserContext())
	if err != nil {
		return errors.Wrap(err, "error during GetInscriptionStats")
	}

	total := decimal.NewFromInt(stats.TotalInscriptions)
	result := getStatsResult{
		TotalInscriptions: stats.TotalInscriptions,
		DistinctOwners:    stats.DistinctOwners,
		ContentTypes: lo.Map(stats.ContentTypes, func(item entity.ContentTypeCount, _ int) contentTypeStat {
			var percent float64
			if stats.TotalInscriptions > 0 {
				percent = decimal.NewFromInt(item.Count).
					Div(total).
					Mul(decimal.NewFromInt(100)).
					Round(2).
					InexactFloat64()
			}
			return contentTypeStat{
				ContentType: item.ContentType,
				Count:       item.Count,
				Percent:     percent,
			}
		}),
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getStatsResponse{
		Result: &result,
	}))
}
