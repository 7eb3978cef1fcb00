package httphandler

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gaze-network/ordbridge/modules/bridge/collection"
	"github.com/gofiber/fiber/v2"
)

type getCollectionTokenResponse = common.HttpResponse[collection.Item]

func (h *HttpHandler) GetCollectionToken(ctx *fiber.Ctx) (err error) {
	tokenId, err := strconv.ParseInt(ctx.Params("tokenId"), 10, 64)
	if err != nil {
		return errs.WithPublicMessage(errors.WithStack(err), "'tokenId' must be an integer")
	}

	item, ok := h.bridge.Collection().ByTokenId(tokenId)
	if !ok {
		return errors.WithStack(errs.NotFound)
	}
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getCollectionTokenResponse{
		Result: item,
	}))
}
