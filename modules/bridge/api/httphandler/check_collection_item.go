package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/modules/bridge/collection"
	"github.com/gofiber/fiber/v2"
)

type checkCollectionItemResult struct {
	InscriptionId string           `json:"inscriptionId"`
	InCollection  bool             `json:"inCollection"`
	Item          *collection.Item `json:"item,omitempty"`
}

type checkCollectionItemResponse = common.HttpResponse[checkCollectionItemResult]

func (h *HttpHandler) CheckCollectionItem(ctx *fiber.Ctx) (err error) {
	id := ctx.Params("id")
	if id == "" {
		return errs.NewPublicError("'id' is required")
	}

	item, ok := h.bridge.Collection().ByInscriptionId(id)
	result := checkCollectionItemResult{
		InscriptionId: id,
		InCollection:  ok,
		Item:          item,
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(checkCollectionItemResponse{
		Result: &result,
	}))
}
