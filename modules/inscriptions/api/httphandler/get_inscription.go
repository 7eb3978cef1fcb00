package httphandler

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/ordbridge/common"
	"github.com/gaze-network/ordbridge/common/errs"
	"github.com/gofiber/fiber/v2"
)

type getInscriptionRequest struct {
	Id string `params:"id"`
}

func (r *getInscriptionRequest) Validate() error {
	if r.Id == "" {
		return errs.NewPublicError("'id' is required")
	}
	return nil
}

type getInscriptionResponse = common.HttpResponse[inscriptionResponse]

func (h *HttpHandler) GetInscription(ctx *fiber.Ctx) (err error) {
	var req getInscriptionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	inscription, err := h.inscriptionDg.GetInscriptionById(ctx.UserContext(), req.Id)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errors.WithStack(errs.NotFound)
		}
		return errors.Wrap(err, "error during GetInscriptionById")
	}

	result := newInscriptionResponse(inscription)
	return errors.WithStack(ctx.Status(http.StatusOK).JSON(getInscriptionResponse{
		Result: &result,
	}))
}
