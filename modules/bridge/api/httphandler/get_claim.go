package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getClaimResponse = common.HttpResponse[claimResponse]

func (h *HttpHandler) GetClaim(ctx *fiber.Ctx) (err error) {
	id := ctx.Params("id")
	if id == "" {
		return errs.NewPublicError("'id' is required")
	}

	claim, err := h.bridge.GetClaim(ctx.UserContext(), id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(errs.NotFound)
		}
		return errors.Wrap(err, "error during GetClaim")
	}

	result := h.newClaimResponse(claim)
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getClaimResponse{
		Result: &result,
	}))
}
